// Package hooks provides the ordered callback registries behind the shell's
// hook points. It is the typed replacement for the preexec_functions /
// precmd_functions arrays that shell glue appends to: callbacks are named,
// run in registration order, and registration is idempotent.
package hooks

import "context"

// Func is a hook callback. The argument is the executed command line for
// pre-exec hooks and is empty for pre-prompt hooks.
type Func func(ctx context.Context, arg string)

type entry struct {
	name string
	fn   Func
}

// Registry is an ordered collection of named hooks.
type Registry struct {
	entries    []entry
	registered map[string]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{registered: make(map[string]bool)}
}

// Register adds a named hook. A name that is already present is not added
// again; the second registration reports false and the original hook keeps
// its position, so sourcing the integration twice cannot double-fire.
func (r *Registry) Register(name string, fn Func) bool {
	if r.registered[name] {
		return false
	}
	r.registered[name] = true
	r.entries = append(r.entries, entry{name: name, fn: fn})
	return true
}

// Fire runs every hook in registration order.
func (r *Registry) Fire(ctx context.Context, arg string) {
	for _, e := range r.entries {
		e.fn(ctx, arg)
	}
}

// Names returns the registered names in order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// Len returns the number of registered hooks.
func (r *Registry) Len() int {
	return len(r.entries)
}
