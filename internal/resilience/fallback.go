package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrAllBackendsFailed is returned when the primary backend and every fallback
// in a [FallbackGroup] have failed or are unavailable.
var ErrAllBackendsFailed = errors.New("all backends failed")

// backendEntry pairs a backend with its circuit breaker.
type backendEntry[T any] struct {
	name    string
	backend T
	breaker *CircuitBreaker
}

// FallbackGroup manages a primary backend plus an ordered list of fallbacks,
// each guarded by its own [CircuitBreaker]. Operations are attempted against
// the primary first and proceed down the fallback chain on failure.
type FallbackGroup[T any] struct {
	entries []backendEntry[T]
}

// NewFallbackGroup creates a group with the given primary backend.
func NewFallbackGroup[T any](name string, primary T) *FallbackGroup[T] {
	g := &FallbackGroup[T]{}
	g.add(name, primary)
	return g
}

// AddFallback appends a fallback backend to the chain. Fallbacks are tried in
// the order they were added.
func (g *FallbackGroup[T]) AddFallback(name string, backend T) {
	g.add(name, backend)
}

func (g *FallbackGroup[T]) add(name string, backend T) {
	g.entries = append(g.entries, backendEntry[T]{
		name:    name,
		backend: backend,
		breaker: NewCircuitBreaker(CircuitBreakerConfig{
			Name:         name,
			MaxFailures:  3,
			ResetTimeout: 30 * time.Second,
		}),
	})
}

// Execute runs fn against each backend in order until one succeeds. Backends
// whose circuit breaker is open are skipped. If every backend fails, the
// returned error wraps [ErrAllBackendsFailed] together with each backend's
// individual failure.
func (g *FallbackGroup[T]) Execute(ctx context.Context, fn func(ctx context.Context, backend T) error) error {
	var failures []error

	for i, entry := range g.entries {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err := entry.breaker.Execute(func() error {
			return fn(ctx, entry.backend)
		})
		if err == nil {
			if i > 0 {
				slog.Info("fallback backend served request",
					"backend", entry.name,
					"position", i)
			}
			return nil
		}

		if errors.Is(err, ErrCircuitOpen) {
			slog.Debug("skipping backend with open circuit",
				"backend", entry.name)
		} else {
			slog.Warn("backend failed, trying next",
				"backend", entry.name,
				"error", err)
		}
		failures = append(failures, fmt.Errorf("%s: %w", entry.name, err))
	}

	return errors.Join(ErrAllBackendsFailed, errors.Join(failures...))
}

// ExecuteWithResult is like [FallbackGroup.Execute] but for operations that
// produce a value. Defined as a function because Go methods cannot introduce
// new type parameters.
func ExecuteWithResult[T, R any](ctx context.Context, g *FallbackGroup[T], fn func(ctx context.Context, backend T) (R, error)) (R, error) {
	var result R
	err := g.Execute(ctx, func(ctx context.Context, backend T) error {
		var innerErr error
		result, innerErr = fn(ctx, backend)
		return innerErr
	})
	return result, err
}

// Backends returns the names of all backends in chain order.
func (g *FallbackGroup[T]) Backends() []string {
	names := make([]string, len(g.entries))
	for i, entry := range g.entries {
		names[i] = entry.name
	}
	return names
}

// BreakerState returns the circuit breaker state for the named backend. The
// second return value reports whether the backend exists.
func (g *FallbackGroup[T]) BreakerState(name string) (State, bool) {
	for _, entry := range g.entries {
		if entry.name == name {
			return entry.breaker.State(), true
		}
	}
	return StateClosed, false
}
