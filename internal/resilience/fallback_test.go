package resilience

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeBackend struct {
	name  string
	err   error
	calls int
}

func (b *fakeBackend) do() error {
	b.calls++
	return b.err
}

func TestFallbackGroup_PrimarySucceeds(t *testing.T) {
	primary := &fakeBackend{name: "primary"}
	fallback := &fakeBackend{name: "fallback"}

	g := NewFallbackGroup("primary", primary)
	g.AddFallback("fallback", fallback)

	err := g.Execute(context.Background(), func(ctx context.Context, b *fakeBackend) error {
		return b.do()
	})
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}
	if primary.calls != 1 {
		t.Errorf("primary.calls = %d, want 1", primary.calls)
	}
	if fallback.calls != 0 {
		t.Errorf("fallback.calls = %d, want 0", fallback.calls)
	}
}

func TestFallbackGroup_FailsOverToSecondary(t *testing.T) {
	primary := &fakeBackend{name: "primary", err: errBackend}
	fallback := &fakeBackend{name: "fallback"}

	g := NewFallbackGroup("primary", primary)
	g.AddFallback("fallback", fallback)

	err := g.Execute(context.Background(), func(ctx context.Context, b *fakeBackend) error {
		return b.do()
	})
	if err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}
	if primary.calls != 1 {
		t.Errorf("primary.calls = %d, want 1", primary.calls)
	}
	if fallback.calls != 1 {
		t.Errorf("fallback.calls = %d, want 1", fallback.calls)
	}
}

func TestFallbackGroup_AllBackendsFail(t *testing.T) {
	primary := &fakeBackend{name: "primary", err: errors.New("primary down")}
	fallback := &fakeBackend{name: "fallback", err: errors.New("fallback down")}

	g := NewFallbackGroup("primary", primary)
	g.AddFallback("fallback", fallback)

	err := g.Execute(context.Background(), func(ctx context.Context, b *fakeBackend) error {
		return b.do()
	})
	if !errors.Is(err, ErrAllBackendsFailed) {
		t.Fatalf("Execute() error = %v, want %v", err, ErrAllBackendsFailed)
	}
	for _, want := range []string{"primary down", "fallback down"} {
		if got := err.Error(); !strings.Contains(got, want) {
			t.Errorf("Execute() error %q does not mention %q", got, want)
		}
	}
}

func TestFallbackGroup_TrippedPrimaryIsSkipped(t *testing.T) {
	primary := &fakeBackend{name: "primary", err: errBackend}
	fallback := &fakeBackend{name: "fallback"}

	g := NewFallbackGroup("primary", primary)
	g.AddFallback("fallback", fallback)

	// Three failures trip the primary's breaker.
	for i := 0; i < 3; i++ {
		if err := g.Execute(context.Background(), func(ctx context.Context, b *fakeBackend) error {
			return b.do()
		}); err != nil {
			t.Fatalf("round %d: Execute() error = %v, want nil", i, err)
		}
	}

	primaryCalls := primary.calls
	if err := g.Execute(context.Background(), func(ctx context.Context, b *fakeBackend) error {
		return b.do()
	}); err != nil {
		t.Fatalf("Execute() error = %v, want nil", err)
	}
	if primary.calls != primaryCalls {
		t.Errorf("primary.calls = %d, want %d (breaker open)", primary.calls, primaryCalls)
	}

	if state, ok := g.BreakerState("primary"); !ok || state != StateOpen {
		t.Errorf("BreakerState(primary) = %v, %v; want %v, true", state, ok, StateOpen)
	}
}

func TestFallbackGroup_ContextCancellation(t *testing.T) {
	primary := &fakeBackend{name: "primary"}

	g := NewFallbackGroup("primary", primary)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := g.Execute(ctx, func(ctx context.Context, b *fakeBackend) error {
		return b.do()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want %v", err, context.Canceled)
	}
	if primary.calls != 0 {
		t.Errorf("primary.calls = %d, want 0 after cancellation", primary.calls)
	}
}

func TestExecuteWithResult(t *testing.T) {
	primary := &fakeBackend{name: "primary", err: errBackend}
	fallback := &fakeBackend{name: "fallback"}

	g := NewFallbackGroup("primary", primary)
	g.AddFallback("fallback", fallback)

	got, err := ExecuteWithResult(context.Background(), g, func(ctx context.Context, b *fakeBackend) (string, error) {
		if err := b.do(); err != nil {
			return "", err
		}
		return b.name, nil
	})
	if err != nil {
		t.Fatalf("ExecuteWithResult() error = %v, want nil", err)
	}
	if got != "fallback" {
		t.Errorf("ExecuteWithResult() = %q, want %q", got, "fallback")
	}
}

func TestFallbackGroup_Backends(t *testing.T) {
	g := NewFallbackGroup("openai", &fakeBackend{})
	g.AddFallback("ollama", &fakeBackend{})

	got := g.Backends()
	want := []string{"openai", "ollama"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Backends() = %v, want %v", got, want)
	}
}
