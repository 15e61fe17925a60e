// Package bkm implements the Business Knowledge Model registry: a
// name -> (parameters, body) binding invocable from FEEL expressions by
// bare name.
package bkm

import "github.com/dmnfeel/engine/core/ast"

// BKM is a registered Business Knowledge Model: a named, parameterized FEEL
// expression.
type BKM struct {
	Name   string
	Params []string
	Body   ast.Node
}

// Registry is the engine-wide name -> BKM binding, in registration order.
type Registry struct {
	order []string
	byName map[string]*BKM
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*BKM)}
}

// Register adds or overwrites b under b.Name, reporting whether a prior
// definition was replaced (the caller logs a warning on overwrite during
// model loading).
func (r *Registry) Register(b *BKM) (overwritten bool) {
	if _, exists := r.byName[b.Name]; !exists {
		r.order = append(r.order, b.Name)
	} else {
		overwritten = true
	}
	r.byName[b.Name] = b
	return overwritten
}

// Remove deletes the BKM named name, reporting whether it existed.
func (r *Registry) Remove(name string) bool {
	if _, exists := r.byName[name]; !exists {
		return false
	}
	delete(r.byName, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Get looks up a BKM by exact name.
func (r *Registry) Get(name string) (*BKM, bool) {
	b, ok := r.byName[name]
	return b, ok
}

// Names returns all registered BKM names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Clear removes every registered BKM.
func (r *Registry) Clear() {
	r.order = nil
	r.byName = make(map[string]*BKM)
}
