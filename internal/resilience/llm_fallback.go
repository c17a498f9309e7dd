package resilience

import (
	"context"

	"github.com/aimeet/aimeet/pkg/provider/llm"
)

// LLMFallback wraps a chain of llm.Provider backends with circuit breakers and
// automatic failover. It implements llm.Provider itself, so the minutes
// generator needs no knowledge of the failover logic.
type LLMFallback struct {
	group *FallbackGroup[llm.Provider]
}

var _ llm.Provider = (*LLMFallback)(nil)

// NewLLMFallback creates a failover chain with the given primary provider.
func NewLLMFallback(primaryName string, primary llm.Provider) *LLMFallback {
	return &LLMFallback{
		group: NewFallbackGroup(primaryName, primary),
	}
}

// AddFallback appends a fallback provider to the chain.
func (f *LLMFallback) AddFallback(name string, provider llm.Provider) {
	f.group.AddFallback(name, provider)
}

// Complete tries each provider in chain order until one succeeds.
func (f *LLMFallback) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return ExecuteWithResult(ctx, f.group, func(ctx context.Context, p llm.Provider) (*llm.CompletionResponse, error) {
		return p.Complete(ctx, req)
	})
}

// Backends returns the provider names in chain order.
func (f *LLMFallback) Backends() []string {
	return f.group.Backends()
}
