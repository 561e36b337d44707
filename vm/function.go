package vm

import (
	"fmt"
	"sort"
	"sync"

	"github.com/chazu/madeup/compiler"
	"github.com/chazu/madeup/geometry"
)

// ---------------------------------------------------------------------------
// Function definitions
// ---------------------------------------------------------------------------

// FormalParameter is a declared parameter. Default is evaluated in the
// caller's scope when the call neither supplies nor autoscopes a value; a
// nil Default makes the parameter required.
type FormalParameter struct {
	Name        string
	Description string
	Default     compiler.Expr
}

// NativeFunc implements a builtin. Its parameters are already bound in the
// call's environment.
type NativeFunc func(c *Call) (Value, error)

// FunctionDefinition is either a user function with an AST body or a
// builtin with a native implementation.
type FunctionDefinition struct {
	Name        string
	Description string
	Formals     []FormalParameter
	Body        compiler.Expr
	Native      NativeFunc
}

func (f *FunctionDefinition) hasFormal(name string) bool {
	for _, formal := range f.Formals {
		if formal.Name == name {
			return true
		}
	}
	return false
}

// Signature renders name(formal, formal = default, ...).
func (f *FunctionDefinition) Signature() string {
	s := f.Name + "("
	for i, formal := range f.Formals {
		if i > 0 {
			s += ", "
		}
		s += formal.Name
		if formal.Default != nil {
			s += " = " + compiler.Format(formal.Default)
		}
	}
	return s + ")"
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

// Registry is an immutable set of builtin functions and of the member
// functions each value kind exposes.
type Registry struct {
	functions map[string]*FunctionDefinition
	members   map[Kind]map[string]*FunctionDefinition
}

var builtinRegistry = sync.OnceValue(newBuiltinRegistry)

// Builtins returns the standard registry. It is built once and shared by
// every run.
func Builtins() *Registry {
	return builtinRegistry()
}

// Lookup finds a free function by name.
func (r *Registry) Lookup(name string) (*FunctionDefinition, bool) {
	f, ok := r.functions[name]
	return f, ok
}

// Member finds a function exposed by values of the given kind.
func (r *Registry) Member(kind Kind, name string) (*FunctionDefinition, bool) {
	f, ok := r.members[kind][name]
	return f, ok
}

// Functions returns every free function sorted by name.
func (r *Registry) Functions() []*FunctionDefinition {
	out := make([]*FunctionDefinition, 0, len(r.functions))
	for _, f := range r.functions {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Members returns the member functions of a kind sorted by name.
func (r *Registry) Members(kind Kind) []*FunctionDefinition {
	out := make([]*FunctionDefinition, 0, len(r.members[kind]))
	for _, f := range r.members[kind] {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// With returns a new registry holding r's functions plus defs. Later
// definitions replace earlier ones of the same name.
func (r *Registry) With(defs ...*FunctionDefinition) *Registry {
	out := &Registry{
		functions: make(map[string]*FunctionDefinition, len(r.functions)+len(defs)),
		members:   r.members,
	}
	for name, f := range r.functions {
		out.functions[name] = f
	}
	for _, f := range defs {
		out.functions[f.Name] = f
	}
	return out
}

type registryBuilder struct {
	r *Registry
}

func (b *registryBuilder) add(f *FunctionDefinition) {
	if _, dup := b.r.functions[f.Name]; dup {
		panic(fmt.Sprintf("vm: builtin %s registered twice", f.Name))
	}
	b.r.functions[f.Name] = f
}

func (b *registryBuilder) member(kind Kind, f *FunctionDefinition) {
	if b.r.members[kind] == nil {
		b.r.members[kind] = make(map[string]*FunctionDefinition)
	}
	b.r.members[kind][f.Name] = f
}

func newBuiltinRegistry() *Registry {
	b := &registryBuilder{r: &Registry{
		functions: make(map[string]*FunctionDefinition),
		members:   make(map[Kind]map[string]*FunctionDefinition),
	}}
	registerCoreBuiltins(b)
	registerMathBuiltins(b)
	registerTurtleBuiltins(b)
	registerGeometryBuiltins(b)
	registerMemberFunctions(b)
	return b.r
}

// ---------------------------------------------------------------------------
// Default expressions
// ---------------------------------------------------------------------------

func intDefault(v int64) compiler.Expr    { return &compiler.IntegerLiteral{Value: v} }
func realDefault(v float64) compiler.Expr { return &compiler.RealLiteral{Value: v} }
func boolDefault(v bool) compiler.Expr    { return &compiler.BooleanLiteral{Value: v} }
func stringDefault(v string) compiler.Expr {
	return &compiler.StringLiteral{Value: v}
}

func vectorDefault(v geometry.Vec3) compiler.Expr {
	return &compiler.VectorLiteral{Elements: []compiler.Expr{
		realDefault(v.X), realDefault(v.Y), realDefault(v.Z),
	}}
}
