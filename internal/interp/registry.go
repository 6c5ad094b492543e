// Package interp implements the {{expr}} interpolation engine and the helper
// registry it evaluates against. Helpers are pure, total functions: they
// never fail and never touch state, so repeated evaluation during export is
// safe to retry. Missing data degrades to an empty string rather than
// aborting a render mid-document.
package interp

// Helper is a pure function callable from an interpolation expression.
// Arguments arrive already evaluated, left to right.
type Helper func(args []interface{}) interface{}

// Registry maps helper names to functions. Built-ins are installed on
// construction; user registrations override them.
type Registry struct {
	helpers map[string]Helper
}

// NewRegistry creates a registry pre-populated with the built-in helpers.
func NewRegistry() *Registry {
	r := &Registry{helpers: make(map[string]Helper)}
	registerBuiltins(r)
	return r
}

// Register adds or overrides a helper by name.
func (r *Registry) Register(name string, h Helper) {
	r.helpers[name] = h
}

// Lookup returns the helper registered under name.
func (r *Registry) Lookup(name string) (Helper, bool) {
	h, ok := r.helpers[name]
	return h, ok
}

// Names returns the registered helper names (unordered).
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.helpers))
	for name := range r.helpers {
		names = append(names, name)
	}
	return names
}
