// Package schema provides a registry mapping type names to class descriptors.
package schema

import "sync"

// Registry maintains the mapping between type names and class descriptors.
// It is safe for concurrent use; descriptors themselves are immutable after
// registration.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*ClassDescriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*ClassDescriptor)}
}

// Register adds a class descriptor to the registry. Registering the same
// descriptor twice is a no-op; registering a different descriptor under an
// already-taken name returns a ConflictError.
func (r *Registry) Register(d *ClassDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byName[d.typeName]; ok {
		if existing == d {
			return nil
		}
		return &ConflictError{TypeName: d.typeName}
	}
	r.byName[d.typeName] = d
	return nil
}

// MustRegister is a helper that calls Register and panics on error.
// It is intended for use during application initialization.
func (r *Registry) MustRegister(d *ClassDescriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Lookup retrieves the descriptor for a type name.
func (r *Registry) Lookup(typeName string) (*ClassDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[typeName]
	return d, ok
}

// TypeNames returns the names of all registered classes.
func (r *Registry) TypeNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	return out
}
