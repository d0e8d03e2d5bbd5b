package fetch

import (
	"context"
	"fmt"

	"brevity/internal/core"
)

// Router dispatches a URL to the adapter registered for its source kind.
type Router struct {
	adapters map[core.SourceKind]Adapter
}

// NewRouter registers adapters by their Kind. Later adapters replace
// earlier ones of the same kind.
func NewRouter(adapters ...Adapter) *Router {
	r := &Router{adapters: make(map[core.SourceKind]Adapter, len(adapters))}
	for _, a := range adapters {
		if a != nil {
			r.adapters[a.Kind()] = a
		}
	}
	return r
}

// Adapter returns the adapter for kind, if registered.
func (r *Router) Adapter(kind core.SourceKind) (Adapter, bool) {
	a, ok := r.adapters[kind]
	return a, ok
}

// Fetch routes rawURL to the adapter for kind.
func (r *Router) Fetch(ctx context.Context, kind core.SourceKind, rawURL string) (*core.ExtractedContent, error) {
	a, ok := r.adapters[kind]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for %s", kind)
	}
	return a.Fetch(ctx, rawURL)
}
