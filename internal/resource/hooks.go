package resource

import "context"

// Hooks are per-resource lifecycle extension points. Any nil callback is
// skipped. A pre-hook error aborts the operation before the mutation runs.
type Hooks struct {
	PreCreate  func(ctx context.Context, input Record) error
	PostCreate func(ctx context.Context, created Record)
	PreUpdate  func(ctx context.Context, existing Record, changes Record) error
	PostUpdate func(ctx context.Context, updated Record)
	PreDelete  func(ctx context.Context, existing Record) error
	PostDelete func(ctx context.Context, deleted Record)
}

var hookRegistry = map[string]*Hooks{}

// RegisterHooks attaches lifecycle hooks to a resource by name. Call during
// startup, before the routes are served.
func RegisterHooks(resourceName string, h *Hooks) {
	hookRegistry[resourceName] = h
}

func hooksFor(resourceName string) *Hooks {
	if h, ok := hookRegistry[resourceName]; ok {
		return h
	}
	return &Hooks{}
}
