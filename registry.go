package voxd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Interface compliance check.
var _ Provider = (*Registry)(nil)

// Registry routes completion requests to providers by model id prefix. It is
// itself a Provider, so callers stay ignorant of which backend serves a
// model. Registration happens at startup; lookup is read-only after that.
type Registry struct {
	entries  []registryEntry
	fallback Provider
}

type registryEntry struct {
	prefix   string
	provider Provider
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register maps model ids starting with prefix to the given provider.
// Prefixes are tried in registration order.
func (r *Registry) Register(prefix string, p Provider) {
	r.entries = append(r.entries, registryEntry{prefix: prefix, provider: p})
}

// SetFallback sets the provider used when a request leaves Model empty.
func (r *Registry) SetFallback(p Provider) {
	r.fallback = p
}

// Stream dispatches to the provider registered for req.Model.
func (r *Registry) Stream(ctx context.Context, req Request) (Stream, error) {
	p, err := r.lookup(req.Model)
	if err != nil {
		return nil, err
	}
	return p.Stream(ctx, req)
}

// Structured dispatches to the provider registered for req.Model.
func (r *Registry) Structured(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	p, err := r.lookup(req.Model)
	if err != nil {
		return nil, err
	}
	return p.Structured(ctx, req)
}

func (r *Registry) lookup(model string) (Provider, error) {
	if model == "" {
		if r.fallback != nil {
			return r.fallback, nil
		}
		return nil, fmt.Errorf("no model specified and no fallback registered: %w", ErrUnknownModel)
	}
	for _, e := range r.entries {
		if strings.HasPrefix(model, e.prefix) {
			return e.provider, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", model, ErrUnknownModel)
}
