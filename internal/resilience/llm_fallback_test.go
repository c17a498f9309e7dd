package resilience_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aimeet/aimeet/internal/resilience"
	"github.com/aimeet/aimeet/pkg/provider/llm"
	"github.com/aimeet/aimeet/pkg/provider/llm/mock"
)

func TestLLMFallback_PrimaryServes(t *testing.T) {
	primary := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "from primary"},
	}
	fallback := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "from fallback"},
	}

	f := resilience.NewLLMFallback("openai", primary)
	f.AddFallback("ollama", fallback)

	resp, err := f.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "summarise"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v, want nil", err)
	}
	if resp.Content != "from primary" {
		t.Errorf("Content = %q, want %q", resp.Content, "from primary")
	}
	if len(fallback.CompleteCalls) != 0 {
		t.Errorf("fallback received %d calls, want 0", len(fallback.CompleteCalls))
	}
}

func TestLLMFallback_FailsOver(t *testing.T) {
	primary := &mock.Provider{CompleteErr: errors.New("rate limited")}
	fallback := &mock.Provider{
		CompleteResponse: &llm.CompletionResponse{Content: "from fallback"},
	}

	f := resilience.NewLLMFallback("openai", primary)
	f.AddFallback("ollama", fallback)

	req := llm.CompletionRequest{
		SystemPrompt: "You write meeting minutes.",
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: "summarise"}},
	}
	resp, err := f.Complete(context.Background(), req)
	if err != nil {
		t.Fatalf("Complete() error = %v, want nil", err)
	}
	if resp.Content != "from fallback" {
		t.Errorf("Content = %q, want %q", resp.Content, "from fallback")
	}
	if len(fallback.CompleteCalls) != 1 {
		t.Fatalf("fallback received %d calls, want 1", len(fallback.CompleteCalls))
	}
	if got := fallback.CompleteCalls[0].Req.SystemPrompt; got != req.SystemPrompt {
		t.Errorf("fallback SystemPrompt = %q, want %q", got, req.SystemPrompt)
	}
}

func TestLLMFallback_AllFail(t *testing.T) {
	primary := &mock.Provider{CompleteErr: errors.New("rate limited")}
	fallback := &mock.Provider{CompleteErr: errors.New("connection refused")}

	f := resilience.NewLLMFallback("openai", primary)
	f.AddFallback("ollama", fallback)

	_, err := f.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "summarise"}},
	})
	if !errors.Is(err, resilience.ErrAllBackendsFailed) {
		t.Errorf("Complete() error = %v, want %v", err, resilience.ErrAllBackendsFailed)
	}
}

func TestLLMFallback_Backends(t *testing.T) {
	f := resilience.NewLLMFallback("openai", &mock.Provider{})
	f.AddFallback("ollama", &mock.Provider{})
	f.AddFallback("groq", &mock.Provider{})

	got := f.Backends()
	want := []string{"openai", "ollama", "groq"}
	if len(got) != len(want) {
		t.Fatalf("Backends() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Backends()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
