package vm

import (
	"math"

	"github.com/chazu/madeup/compiler"
	"github.com/chazu/madeup/geometry"
)

// maxCallDepth bounds recursion so a runaway program fails with an error
// instead of exhausting the goroutine stack.
const maxCallDepth = 2000

// Call is the activation of a function. Native implementations read their
// bound parameters through it.
type Call struct {
	vm      *VM
	Env     *Environment
	Host    Value
	Site    compiler.Span
	Record  *CallRecord
	actuals map[string]*compiler.Actual
}

// ---------------------------------------------------------------------------
// Binding
// ---------------------------------------------------------------------------

// invoke binds actuals to f's formals in a fresh environment and runs the
// body. caller is the scope the call appears in.
func (vm *VM) invoke(f *FunctionDefinition, host Value, actuals []*compiler.Actual, site compiler.Span, caller *Environment) (Value, error) {
	record := newCallRecord(f, site)
	vm.calls = append(vm.calls, record)

	if vm.depth >= maxCallDepth {
		return nil, attach(errorAt(site, "I stopped calling %s because the calls nested more than %d deep.", f.Name, maxCallDepth), record)
	}
	vm.depth++
	defer func() { vm.depth-- }()

	env := newEnvironment(caller)
	call := &Call{vm: vm, Env: env, Host: host, Site: site, Record: record, actuals: make(map[string]*compiler.Actual)}

	fail := func(err error) (Value, error) {
		return nil, attach(locate(err, site), record)
	}

	for _, actual := range actuals {
		for _, name := range actual.Names {
			if !f.hasFormal(name) {
				return fail(errorAt(actual.Span(), "I don't know a parameter named %s for %s.", name, f.Name))
			}
			call.actuals[name] = actual
		}

		switch {
		case actual.Value == nil:
			name := actual.Names[0]
			v, ok := caller.Variable(name)
			if !ok {
				return fail(errorAt(actual.Span(), "I'm sorry, but I've never heard of %s before.", name))
			}
			env.Bind(name, v)
			record.mark(name, Explicit)

		case actual.Destructure:
			v, err := vm.eval(actual.Value, caller)
			if err != nil {
				return fail(err)
			}
			vec, ok := v.(*Vector)
			if !ok {
				return fail(errorAt(actual.Value.Span(), "I expected a vector to unpack, but I found %s.", describe(v)))
			}
			if len(vec.Elements) < len(actual.Names) {
				return fail(errorAt(actual.Value.Span(), "I expected a vector of at least %d elements to unpack, but it has %d.", len(actual.Names), len(vec.Elements)))
			}
			for i, name := range actual.Names {
				env.Bind(name, vec.Elements[i])
				record.mark(name, Explicit)
			}

		default:
			v, err := vm.eval(actual.Value, caller)
			if err != nil {
				return fail(err)
			}
			env.Bind(actual.Names[0], v)
			record.mark(actual.Names[0], Explicit)
		}
	}

	for _, formal := range f.Formals {
		if _, ok := env.Variable(formal.Name); ok {
			continue
		}
		if v, ok := caller.Variable(formal.Name); ok {
			env.Bind(formal.Name, v)
			record.mark(formal.Name, Autoscoped)
			continue
		}
		if formal.Default != nil {
			v, err := vm.eval(formal.Default, caller)
			if err != nil {
				return fail(err)
			}
			env.Bind(formal.Name, v)
			record.mark(formal.Name, Defaulted)
			continue
		}
		return fail(errorAt(site, "I expected a value for parameter %s of %s, but none was given.", formal.Name, f.Name))
	}

	var (
		result Value
		err    error
	)
	if f.Native != nil {
		result, err = f.Native(call)
	} else {
		result, err = vm.eval(f.Body, env)
	}
	if err != nil {
		return fail(err)
	}
	return result, nil
}

// ---------------------------------------------------------------------------
// Parameter access for native functions
// ---------------------------------------------------------------------------

// Value returns the bound value of a parameter.
func (c *Call) Value(name string) Value {
	v, _ := c.Env.Variable(name)
	return v
}

// span locates a problem with a parameter: the actual that supplied it, or
// the call site when it was defaulted or autoscoped.
func (c *Call) span(name string) compiler.Span {
	if a, ok := c.actuals[name]; ok {
		if a.Value != nil {
			return a.Value.Span()
		}
		return a.Span()
	}
	return c.Site
}

// Errorf returns an error located at the actual that supplied name.
func (c *Call) Errorf(name, format string, args ...interface{}) error {
	return errorAt(c.span(name), format, args...)
}

func (c *Call) expected(name, what string) error {
	return c.Errorf(name, "I expected %s to be %s, but it was %s.", name, what, describe(c.Value(name)))
}

// Number returns a numeric parameter.
func (c *Call) Number(name string) (float64, error) {
	n, ok := number(c.Value(name))
	if !ok {
		return 0, c.expected(name, "a number")
	}
	return n, nil
}

// Integer returns an integer parameter.
func (c *Call) Integer(name string) (int64, error) {
	n, ok := c.Value(name).(Integer)
	if !ok {
		return 0, c.expected(name, "an integer")
	}
	return int64(n), nil
}

// Boolean returns a boolean parameter.
func (c *Call) Boolean(name string) (bool, error) {
	b, ok := c.Value(name).(Boolean)
	if !ok {
		return false, c.expected(name, "a boolean")
	}
	return bool(b), nil
}

// Vector returns a vector parameter.
func (c *Call) Vector(name string) (*Vector, error) {
	v, ok := c.Value(name).(*Vector)
	if !ok {
		return nil, c.expected(name, "a vector")
	}
	return v, nil
}

// Vec3 returns a parameter that must be a vector of three numbers.
func (c *Call) Vec3(name string) (geometry.Vec3, error) {
	v, ok := vec3(c.Value(name))
	if !ok {
		return geometry.Vec3{}, c.expected(name, "a vector of three numbers")
	}
	return v, nil
}

// Degrees returns a numeric parameter that must be finite.
func (c *Call) Degrees(name string) (float64, error) {
	n, err := c.Number(name)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, c.Errorf(name, "I expected %s to be a finite number.", name)
	}
	return n, nil
}

// Name returns the name parameter shared by the solidifiers. The empty
// string means the mesh is unnamed.
func (c *Call) Name() string {
	switch v := c.Value("name").(type) {
	case *String:
		return v.Text
	case nil:
		return ""
	default:
		return v.String()
	}
}

// Source returns the program text covered by span.
func (c *Call) Source(span compiler.Span) string {
	return c.vm.excerpt(span)
}
