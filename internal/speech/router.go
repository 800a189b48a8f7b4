package speech

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Router tries registered providers in registration order, falling through
// to the next when one fails. It never retries a provider within a call.
type Router struct {
	providers map[string]Provider
	fallback  []string // ordered fallback chain
	mu        sync.RWMutex
}

// NewRouter creates a new speech router.
func NewRouter() *Router {
	return &Router{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the end of the fallback chain.
func (r *Router) Register(name string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = provider
	r.fallback = append(r.fallback, name)
}

// Synthesize routes a request to the first provider that succeeds.
func (r *Router) Synthesize(ctx context.Context, req SynthesisRequest) (SynthesisResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range r.fallback {
		provider := r.providers[name]

		result, err := provider.Synthesize(ctx, req)
		if err != nil {
			slog.Warn("speech provider failed, trying next",
				"provider", name,
				"error", err,
			)
			continue
		}

		slog.Debug("speech synthesized",
			"provider", name,
			"voice", result.Voice,
			"bytes", len(result.Audio),
		)
		return result, nil
	}

	return SynthesisResult{}, fmt.Errorf("all speech providers failed")
}

// HasProvider returns true if at least one provider is registered.
func (r *Router) HasProvider() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers) > 0
}
