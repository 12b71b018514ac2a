package compiler

import "sort"

// Binding says where a name in call position resolves to.
type Binding struct {
	// Module is the namespace identifier the call is made on.
	Module string
	// Std marks names provided by the standard library, which use the
	// standard call convention instead of a plain member call.
	Std bool
}

// Env maps call-position names to the module that provides them. Each
// compilation owns its own Env.
type Env struct {
	bindings map[string]Binding
}

// StdNames are the names the standard library binds by default.
var StdNames = []string{"vec", "str", "object"}

// NewEnv creates an environment holding the standard library bindings.
func NewEnv(stdNamespace string) *Env {
	env := &Env{bindings: make(map[string]Binding)}
	for _, name := range StdNames {
		env.bindings[name] = Binding{Module: stdNamespace, Std: true}
	}
	return env
}

// Bind binds name to module, replacing any earlier binding.
func (e *Env) Bind(name, module string) {
	e.bindings[name] = Binding{Module: module}
}

// Lookup returns the binding for name.
func (e *Env) Lookup(name string) (Binding, bool) {
	b, ok := e.bindings[name]
	return b, ok
}

// Names returns every bound name in sorted order.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.bindings))
	for name := range e.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy.
func (e *Env) Clone() *Env {
	c := &Env{bindings: make(map[string]Binding, len(e.bindings))}
	for k, v := range e.bindings {
		c.bindings[k] = v
	}
	return c
}
