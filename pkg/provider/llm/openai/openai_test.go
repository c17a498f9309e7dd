package openai

import (
	"strings"
	"testing"

	"github.com/openai/openai-go/v3/shared"

	"github.com/aimeet/aimeet/pkg/provider/llm"
)

func TestNewValidation(t *testing.T) {
	if _, err := New("", "gpt-4o"); err == nil {
		t.Error("New with empty apiKey: expected error, got nil")
	}
	if _, err := New("sk-test", ""); err == nil {
		t.Error("New with empty model: expected error, got nil")
	}
	if _, err := New("sk-test", "gpt-4o"); err != nil {
		t.Errorf("New with valid args: unexpected error: %v", err)
	}
}

func TestBuildParams_SystemPromptIsPrepended(t *testing.T) {
	p := &Provider{model: "gpt-4o"}
	params, err := p.buildParams(llm.CompletionRequest{
		SystemPrompt: "You write meeting minutes.",
		Messages:     []llm.Message{{Role: llm.RoleUser, Content: "summarise"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(params.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(params.Messages))
	}
	if params.Messages[0].OfSystem == nil {
		t.Error("expected first message to be system")
	}
	if params.Messages[1].OfUser == nil {
		t.Error("expected second message to be user")
	}
}

func TestBuildParams_RoleConversion(t *testing.T) {
	p := &Provider{model: "gpt-4o"}
	params, err := p.buildParams(llm.CompletionRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "be terse"},
			{Role: llm.RoleUser, Content: "hello"},
			{Role: llm.RoleAssistant, Content: "hi"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Messages[0].OfSystem == nil {
		t.Error("expected OfSystem to be set")
	}
	if params.Messages[1].OfUser == nil {
		t.Error("expected OfUser to be set")
	}
	if params.Messages[2].OfAssistant == nil {
		t.Error("expected OfAssistant to be set")
	}
}

func TestBuildParams_UnknownRole(t *testing.T) {
	p := &Provider{model: "gpt-4o"}
	_, err := p.buildParams(llm.CompletionRequest{
		Messages: []llm.Message{{Role: "tool", Content: "x"}},
	})
	if err == nil {
		t.Fatal("expected error for unknown role, got nil")
	}
	if !strings.Contains(err.Error(), "tool") {
		t.Errorf("error %q does not name the offending role", err)
	}
}

func TestBuildParams_ModelAndTuning(t *testing.T) {
	p := &Provider{model: "gpt-4o-mini"}
	params, err := p.buildParams(llm.CompletionRequest{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "hello"}},
		Temperature: 0.3,
		MaxTokens:   2048,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Model != shared.ChatModel("gpt-4o-mini") {
		t.Errorf("expected model gpt-4o-mini, got %s", params.Model)
	}
	if !params.Temperature.Valid() || params.Temperature.Value != 0.3 {
		t.Errorf("expected temperature 0.3, got %+v", params.Temperature)
	}
	if !params.MaxCompletionTokens.Valid() || params.MaxCompletionTokens.Value != 2048 {
		t.Errorf("expected max completion tokens 2048, got %+v", params.MaxCompletionTokens)
	}
}

func TestBuildParams_DefaultsLeftUnset(t *testing.T) {
	p := &Provider{model: "gpt-4o"}
	params, err := p.buildParams(llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.Temperature.Valid() {
		t.Error("expected temperature to stay unset for zero value")
	}
	if params.MaxCompletionTokens.Valid() {
		t.Error("expected max completion tokens to stay unset for zero value")
	}
	if params.ResponseFormat.OfJSONObject != nil {
		t.Error("expected no JSON response format without JSONOnly")
	}
}

func TestBuildParams_JSONOnly(t *testing.T) {
	p := &Provider{model: "gpt-4o"}
	params, err := p.buildParams(llm.CompletionRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hello"}},
		JSONOnly: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if params.ResponseFormat.OfJSONObject == nil {
		t.Error("expected JSON object response format")
	}
}
