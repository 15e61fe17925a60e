// Package resolver implements FEEL name resolution: normalizing names that
// differ in case, underscore/space usage, or whitespace run-length, and the
// binding-environment stack used during evaluation.
package resolver

import (
	"strings"

	"github.com/dmnfeel/engine/core/types"
)

// Normalize canonicalizes a name for loose comparison: lowercase, replace
// underscores with spaces, and collapse whitespace runs.
func Normalize(name string) string {
	lower := strings.ToLower(name)
	lower = strings.ReplaceAll(lower, "_", " ")
	fields := strings.Fields(lower)
	return strings.Join(fields, " ")
}

// Frame is a single binding scope: a set of names visible at one nesting
// level, resolved with the same loose-matching rules as top-level context
// lookup.
type Frame struct {
	order []string
	exact map[string]types.Value
	norm  map[string][]string // normalized name -> exact names sharing it, insertion order
}

// NewFrame returns an empty Frame.
func NewFrame() *Frame {
	return &Frame{exact: make(map[string]types.Value), norm: make(map[string][]string)}
}

// Bind sets name to v in the frame, in insertion order.
func (f *Frame) Bind(name string, v types.Value) {
	if _, exists := f.exact[name]; !exists {
		f.order = append(f.order, name)
		n := Normalize(name)
		f.norm[n] = append(f.norm[n], name)
	}
	f.exact[name] = v
}

// Lookup resolves name against the frame using exact match first, then
// normalized match; when multiple keys tie under normalization, the first
// inserted wins.
func (f *Frame) Lookup(name string) (types.Value, bool) {
	if v, ok := f.exact[name]; ok {
		return v, true
	}
	candidates, ok := f.norm[Normalize(name)]
	if !ok || len(candidates) == 0 {
		return types.Value{}, false
	}
	return f.exact[candidates[0]], true
}

// Env is the binding-environment stack: an ordered list of Frames, searched
// from the innermost frame outward, so an inner binding shadows an outer
// one. The outermost frame holds the root input context.
type Env struct {
	frames []*Frame
}

// NewEnv returns an Env whose sole (outermost) frame is root.
func NewEnv(root *Frame) *Env {
	return &Env{frames: []*Frame{root}}
}

// Push returns a new Env with an additional innermost frame; the receiver
// is left unmodified so sibling branches (e.g. for-loop iterations) do not
// observe each other's bindings.
func (e *Env) Push(f *Frame) *Env {
	frames := make([]*Frame, len(e.frames)+1)
	copy(frames, e.frames)
	frames[len(frames)-1] = f
	return &Env{frames: frames}
}

// Lookup resolves name starting from the innermost frame outward.
func (e *Env) Lookup(name string) (types.Value, bool) {
	for i := len(e.frames) - 1; i >= 0; i-- {
		if v, ok := e.frames[i].Lookup(name); ok {
			return v, true
		}
	}
	return types.Value{}, false
}

// Root returns an Env holding only the outermost (model input context)
// frame, discarding any frames pushed since. A BKM invocation starts from
// here: its body sees its own parameters and the root input context, never
// a caller's local bindings.
func (e *Env) Root() *Env {
	return &Env{frames: e.frames[:1]}
}
