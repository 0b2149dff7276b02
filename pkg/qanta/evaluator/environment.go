package evaluator

import "sort"

// Environment represents the environment for variable bindings. Only the
// global environment has no outer environment. Closures keep their defining
// environment alive by holding a pointer to it.
type Environment struct {
	store map[string]Object
	outer *Environment
}

// NewEnvironment creates a new environment
func NewEnvironment() *Environment {
	return &Environment{store: make(map[string]Object)}
}

// NewEnclosedEnvironment creates a new environment with outer reference
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.outer = outer
	return env
}

// Outer returns the enclosing environment, or nil for the global one.
func (e *Environment) Outer() *Environment {
	return e.outer
}

// Define binds name in this environment only, replacing any existing
// binding here.
func (e *Environment) Define(name string, val Object) {
	e.store[name] = val
}

// Get retrieves a value by walking the whole chain outward.
func (e *Environment) Get(name string) (Object, bool) {
	for env := e; env != nil; env = env.outer {
		if value, ok := env.store[name]; ok {
			return value, true
		}
	}
	return nil, false
}

// GetAt retrieves a value from the environment exactly distance hops out.
func (e *Environment) GetAt(distance int, name string) (Object, bool) {
	env := e.Ancestor(distance)
	if env == nil {
		return nil, false
	}
	value, ok := env.store[name]
	return value, ok
}

// Assign updates the nearest binding of name. It never creates a binding
// and reports false if none exists.
func (e *Environment) Assign(name string, val Object) bool {
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			env.store[name] = val
			return true
		}
	}
	return false
}

// AssignAt updates name in the environment exactly distance hops out.
func (e *Environment) AssignAt(distance int, name string, val Object) bool {
	env := e.Ancestor(distance)
	if env == nil {
		return false
	}
	if _, ok := env.store[name]; !ok {
		return false
	}
	env.store[name] = val
	return true
}

// Ancestor returns the environment distance hops out, or nil if the chain
// is shorter than that.
func (e *Environment) Ancestor(distance int) *Environment {
	env := e
	for i := 0; i < distance && env != nil; i++ {
		env = env.outer
	}
	return env
}

// Hops returns how many outer links a full walk follows before finding
// name, or -1 if no environment defines it.
func (e *Environment) Hops(name string) int {
	hops := 0
	for env := e; env != nil; env = env.outer {
		if _, ok := env.store[name]; ok {
			return hops
		}
		hops++
	}
	return -1
}

// AllIdentifiers returns all identifiers available in this environment and its outer scopes.
// This is used for fuzzy matching in error messages.
func (e *Environment) AllIdentifiers() []string {
	seen := make(map[string]bool)
	var result []string

	for env := e; env != nil; env = env.outer {
		for name := range env.store {
			if !seen[name] {
				seen[name] = true
				result = append(result, name)
			}
		}
	}

	sort.Strings(result)
	return result
}
