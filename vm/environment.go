package vm

import "sort"

// Environment is one lexical scope. Variables are local to the scope that
// bound them; functions are visible to every scope below the one that
// defined them.
type Environment struct {
	parent    *Environment
	variables map[string]Value
	functions map[string]*FunctionDefinition
}

func newEnvironment(parent *Environment) *Environment {
	return &Environment{
		parent:    parent,
		variables: make(map[string]Value),
		functions: make(map[string]*FunctionDefinition),
	}
}

// Variable returns the value bound to name in this scope.
func (e *Environment) Variable(name string) (Value, bool) {
	v, ok := e.variables[name]
	return v, ok
}

// Bind sets name in this scope, replacing any earlier binding.
func (e *Environment) Bind(name string, v Value) {
	e.variables[name] = v
}

// Function looks name up here and then in each enclosing scope.
func (e *Environment) Function(name string) (*FunctionDefinition, bool) {
	for env := e; env != nil; env = env.parent {
		if f, ok := env.functions[name]; ok {
			return f, true
		}
	}
	return nil, false
}

// Define binds a function in this scope.
func (e *Environment) Define(f *FunctionDefinition) {
	e.functions[f.Name] = f
}

// VariableNames returns the names bound in this scope, sorted.
func (e *Environment) VariableNames() []string {
	names := make([]string, 0, len(e.variables))
	for name := range e.variables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FunctionNames returns the user functions visible from this scope, sorted.
func (e *Environment) FunctionNames() []string {
	seen := make(map[string]bool)
	var names []string
	for env := e; env != nil; env = env.parent {
		for name := range env.functions {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
