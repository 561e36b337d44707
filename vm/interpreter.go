package vm

import (
	"math"

	"github.com/chazu/madeup/compiler"
)

// ---------------------------------------------------------------------------
// Tree-walking evaluator
// ---------------------------------------------------------------------------

// eval evaluates e in env. Statements that produce nothing return a nil
// Value.
func (vm *VM) eval(e compiler.Expr, env *Environment) (Value, error) {
	v, err := vm.evaluate(e, env)
	if err != nil {
		return nil, err
	}
	vm.trace.record(e, v)
	return v, nil
}

func (vm *VM) evaluate(e compiler.Expr, env *Environment) (Value, error) {
	switch n := e.(type) {
	case *compiler.IntegerLiteral:
		return Integer(n.Value), nil
	case *compiler.RealLiteral:
		return Real(n.Value), nil
	case *compiler.BooleanLiteral:
		return Boolean(n.Value), nil
	case *compiler.StringLiteral:
		return NewString(n.Value), nil
	case *compiler.CharacterLiteral:
		return Character(n.Value), nil
	case *compiler.VectorLiteral:
		return vm.evalVector(n, env)
	case *compiler.RepeatPrevious:
		return nil, errorAt(n.Span(), "I found ~ with no element before it to repeat.")

	case *compiler.Binary:
		l, err := vm.eval(n.Left, env)
		if err != nil {
			return nil, err
		}
		r, err := vm.eval(n.Right, env)
		if err != nil {
			return nil, err
		}
		v, err := applyBinary(n.Operator, l, r)
		if err != nil {
			return nil, locate(err, n.Span())
		}
		vm.trace.operands(n, l, r)
		return v, nil

	case *compiler.Negate:
		operand, err := vm.eval(n.Operand, env)
		if err != nil {
			return nil, err
		}
		v, err := applyNegate(operand)
		if err != nil {
			return nil, locate(err, n.Span())
		}
		vm.trace.operands(n, operand)
		return v, nil

	case *compiler.Identifier:
		return vm.evalIdentifier(n, env)
	case *compiler.Member:
		return vm.evalMember(n, env)
	case *compiler.Subscript:
		return vm.evalSubscript(n, env)
	case *compiler.Assignment:
		return vm.evalAssignment(n, env)

	case *compiler.Call:
		f, ok := vm.lookupFunction(n.Name, env)
		if !ok {
			return nil, errorAt(n.NameSpan, "I'm sorry, but I've never heard of function %s before.", n.Name)
		}
		return vm.invoke(f, nil, n.Actuals, n.Span(), env)

	case *compiler.MemberCall:
		host, err := vm.eval(n.Host, env)
		if err != nil {
			return nil, err
		}
		if host == nil {
			return nil, errorAt(n.Host.Span(), "I can't call %s on nothing.", n.Name)
		}
		f, ok := vm.cfg.builtins.Member(host.Kind(), n.Name)
		if !ok {
			return nil, errorAt(n.Span(), "I don't know how to call %s on %s.", n.Name, host.Kind().Article())
		}
		return vm.invoke(f, host, n.Actuals, n.Span(), env)

	case *compiler.Block:
		var last Value
		for _, statement := range n.Statements {
			v, err := vm.eval(statement, env)
			if err != nil {
				return nil, err
			}
			last = v
		}
		return last, nil

	case *compiler.If:
		for i, condition := range n.Conditions {
			ok, err := vm.condition(condition, env)
			if err != nil {
				return nil, err
			}
			if ok {
				return vm.eval(n.Consequents[i], env)
			}
		}
		if n.Alternative != nil {
			return vm.eval(n.Alternative, env)
		}
		return nil, nil

	case *compiler.For:
		return vm.evalFor(n, env)
	case *compiler.ForOf:
		return vm.evalForOf(n, env)

	case *compiler.Repeat:
		count, err := vm.count(n.Count, env)
		if err != nil {
			return nil, err
		}
		var last Value
		for i := int64(0); i < count; i++ {
			if last, err = vm.eval(n.Body, env); err != nil {
				return nil, err
			}
		}
		return last, nil

	case *compiler.RepeatAround:
		count, err := vm.count(n.Count, env)
		if err != nil {
			return nil, err
		}
		var last Value
		for i := int64(0); i < count; i++ {
			if i > 0 {
				if _, err := vm.eval(n.Around, env); err != nil {
					return nil, err
				}
			}
			if last, err = vm.eval(n.Body, env); err != nil {
				return nil, err
			}
		}
		return last, nil

	case *compiler.FunctionDefinition:
		f := &FunctionDefinition{Name: n.Name, Body: n.Body}
		for _, formal := range n.Formals {
			f.Formals = append(f.Formals, FormalParameter{Name: formal.Name, Default: formal.Default})
		}
		env.Define(f)
		return nil, nil

	case *compiler.TimeWindow:
		inside, err := vm.window(n, env)
		if err != nil || !inside {
			return nil, err
		}
		return vm.eval(n.Body, env)
	}
	return nil, errorAt(e.Span(), "I don't know how to evaluate this %T.", e)
}

// ---------------------------------------------------------------------------
// Names and access
// ---------------------------------------------------------------------------

// lookupFunction searches user definitions outward from env and then the
// builtins.
func (vm *VM) lookupFunction(name string, env *Environment) (*FunctionDefinition, bool) {
	if f, ok := env.Function(name); ok {
		return f, true
	}
	return vm.cfg.builtins.Lookup(name)
}

// evalIdentifier reads a variable of the current scope. A name that is not
// a variable but names a function calls it with no arguments.
func (vm *VM) evalIdentifier(n *compiler.Identifier, env *Environment) (Value, error) {
	if v, ok := env.Variable(n.Name); ok {
		return v, nil
	}
	if f, ok := vm.lookupFunction(n.Name, env); ok {
		return vm.invoke(f, nil, nil, n.Span(), env)
	}
	return nil, errorAt(n.Span(), "I'm sorry, but I've never heard of %s before.", n.Name)
}

var memberIndex = map[string]int{"x": 0, "y": 1, "z": 2, "r": 0, "g": 1, "b": 2}

func (vm *VM) evalMember(n *compiler.Member, env *Environment) (Value, error) {
	base, err := vm.eval(n.Base, env)
	if err != nil {
		return nil, err
	}
	vec, i, err := memberSlot(n, base)
	if err != nil {
		return nil, err
	}
	return vec.Elements[i], nil
}

func memberSlot(n *compiler.Member, base Value) (*Vector, int, error) {
	vec, ok := base.(*Vector)
	i, known := memberIndex[n.Name]
	if !ok || !known {
		return nil, 0, errorAt(n.Span(), "I don't know a member named %s on %s.", n.Name, describe(base))
	}
	if i >= len(vec.Elements) {
		return nil, 0, errorAt(n.Span(), "I can't get %s of a vector with only %d elements.", n.Name, len(vec.Elements))
	}
	return vec, i, nil
}

func (vm *VM) evalSubscript(n *compiler.Subscript, env *Environment) (Value, error) {
	base, err := vm.eval(n.Base, env)
	if err != nil {
		return nil, err
	}
	index, err := vm.index(n, env)
	if err != nil {
		return nil, err
	}
	switch b := base.(type) {
	case *Vector:
		if index < 0 || index >= int64(len(b.Elements)) {
			return nil, errorAt(n.Index.Span(), "I can't get element %d of this vector because %d is not a legal index in a vector of length %d.", index, index, len(b.Elements))
		}
		return b.Elements[index], nil
	case *String:
		runes := []rune(b.Text)
		if index < 0 || index >= int64(len(runes)) {
			return nil, errorAt(n.Index.Span(), "I can't get character %d of this string because %d is not a legal index in a string of length %d.", index, index, len(runes))
		}
		return Character(runes[index]), nil
	case Integer:
		if index < 0 || index > 63 {
			return nil, errorAt(n.Index.Span(), "I can't get bit %d of an integer.", index)
		}
		return Integer((int64(b) >> index) & 1), nil
	}
	return nil, errorAt(n.Base.Span(), "I don't know how to subscript %s.", describe(base))
}

func (vm *VM) index(n *compiler.Subscript, env *Environment) (int64, error) {
	v, err := vm.eval(n.Index, env)
	if err != nil {
		return 0, err
	}
	i, ok := v.(Integer)
	if !ok {
		return 0, errorAt(n.Index.Span(), "I expected an integer index, but I found %s.", describe(v))
	}
	return int64(i), nil
}

// evalAssignment rebinds an identifier in the current scope or mutates an
// element of an existing vector or string.
func (vm *VM) evalAssignment(n *compiler.Assignment, env *Environment) (Value, error) {
	value, err := vm.eval(n.Value, env)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return nil, errorAt(n.Value.Span(), "I can't assign nothing.")
	}

	switch target := n.Target.(type) {
	case *compiler.Identifier:
		env.Bind(target.Name, value)
		return value, nil

	case *compiler.Member:
		base, err := vm.eval(target.Base, env)
		if err != nil {
			return nil, err
		}
		vec, i, err := memberSlot(target, base)
		if err != nil {
			return nil, err
		}
		vec.Elements[i] = value
		return value, nil

	case *compiler.Subscript:
		base, err := vm.eval(target.Base, env)
		if err != nil {
			return nil, err
		}
		index, err := vm.index(target, env)
		if err != nil {
			return nil, err
		}
		switch b := base.(type) {
		case *Vector:
			if index < 0 || index >= int64(len(b.Elements)) {
				return nil, errorAt(target.Index.Span(), "I can't set element %d of this vector because %d is not a legal index in a vector of length %d.", index, index, len(b.Elements))
			}
			b.Elements[index] = value
			return value, nil
		case *String:
			runes := []rune(b.Text)
			if index < 0 || index >= int64(len(runes)) {
				return nil, errorAt(target.Index.Span(), "I can't set character %d of this string because %d is not a legal index in a string of length %d.", index, index, len(runes))
			}
			c, ok := characterOf(value)
			if !ok {
				return nil, errorAt(n.Value.Span(), "I can only put a character into a string, but I found %s.", describe(value))
			}
			runes[index] = c
			b.Text = string(runes)
			return value, nil
		}
		return nil, errorAt(target.Base.Span(), "I don't know how to assign into %s.", describe(base))
	}
	return nil, errorAt(n.Target.Span(), "I can't assign to this.")
}

func characterOf(v Value) (rune, bool) {
	switch c := v.(type) {
	case Character:
		return rune(c), true
	case *String:
		runes := []rune(c.Text)
		if len(runes) == 1 {
			return runes[0], true
		}
	}
	return 0, false
}

func (vm *VM) evalVector(n *compiler.VectorLiteral, env *Environment) (Value, error) {
	elements := make([]Value, 0, len(n.Elements))
	for _, element := range n.Elements {
		if _, ok := element.(*compiler.RepeatPrevious); ok {
			if len(elements) == 0 {
				return nil, errorAt(element.Span(), "I found ~ with no element before it to repeat.")
			}
			elements = append(elements, elements[len(elements)-1])
			continue
		}
		v, err := vm.eval(element, env)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, errorAt(element.Span(), "I can't put nothing in a vector.")
		}
		elements = append(elements, v)
	}
	return NewVector(elements...), nil
}

// ---------------------------------------------------------------------------
// Control flow
// ---------------------------------------------------------------------------

func (vm *VM) condition(e compiler.Expr, env *Environment) (bool, error) {
	v, err := vm.eval(e, env)
	if err != nil {
		return false, err
	}
	b, ok := v.(Boolean)
	if !ok {
		return false, errorAt(e.Span(), "I expected a boolean condition, but I found %s.", describe(v))
	}
	return bool(b), nil
}

func (vm *VM) count(e compiler.Expr, env *Environment) (int64, error) {
	v, err := vm.eval(e, env)
	if err != nil {
		return 0, err
	}
	n, ok := v.(Integer)
	if !ok {
		return 0, errorAt(e.Span(), "I expected an integer repeat count, but I found %s.", describe(v))
	}
	return int64(n), nil
}

func (vm *VM) bound(e compiler.Expr, env *Environment, fallback Value) (Value, error) {
	if e == nil {
		return fallback, nil
	}
	v, err := vm.eval(e, env)
	if err != nil {
		return nil, err
	}
	if _, ok := number(v); !ok {
		return nil, errorAt(e.Span(), "I expected a number for this loop bound, but I found %s.", describe(v))
	}
	return v, nil
}

// evalFor runs a counting loop. The in and to forms stop before the upper
// bound; through includes it. A negative step counts down.
func (vm *VM) evalFor(n *compiler.For, env *Environment) (Value, error) {
	start, err := vm.bound(n.Start, env, Integer(0))
	if err != nil {
		return nil, err
	}
	stop, err := vm.bound(n.Stop, env, nil)
	if err != nil {
		return nil, err
	}
	by, err := vm.bound(n.By, env, Integer(1))
	if err != nil {
		return nil, err
	}
	step, _ := number(by)
	if step == 0 {
		return nil, errorAt(n.By.Span(), "I can't loop with a step of 0.")
	}

	a, _ := number(start)
	b, _ := number(stop)
	inclusive := n.Form == compiler.ForThrough
	within := func(x float64) bool {
		switch {
		case step > 0 && inclusive:
			return x <= b
		case step > 0:
			return x < b
		case inclusive:
			return x >= b
		default:
			return x > b
		}
	}

	_, realStart := start.(Real)
	_, realStep := by.(Real)
	integral := !realStart && !realStep

	var last Value
	for i := 0; ; i++ {
		x := a + float64(i)*step
		if !within(x) {
			break
		}
		if integral {
			env.Bind(n.Iterator.Name, Integer(int64(a)+int64(i)*int64(step)))
		} else {
			env.Bind(n.Iterator.Name, Real(x))
		}
		if last, err = vm.eval(n.Body, env); err != nil {
			return nil, err
		}
	}
	return last, nil
}

func (vm *VM) evalForOf(n *compiler.ForOf, env *Environment) (Value, error) {
	v, err := vm.eval(n.Vector, env)
	if err != nil {
		return nil, err
	}
	vec, ok := v.(*Vector)
	if !ok {
		return nil, errorAt(n.Vector.Span(), "I expected a vector to loop over, but I found %s.", describe(v))
	}
	elements := append([]Value(nil), vec.Elements...)
	var last Value
	for _, element := range elements {
		env.Bind(n.Iterator.Name, element)
		if last, err = vm.eval(n.Body, env); err != nil {
			return nil, err
		}
	}
	return last, nil
}

// window reports whether the run clock lies in the closed interval of a
// time window. A missing bound is unbounded.
func (vm *VM) window(n *compiler.TimeWindow, env *Environment) (bool, error) {
	from, to := math.Inf(-1), math.Inf(1)
	for _, edge := range []struct {
		e   compiler.Expr
		dst *float64
	}{{n.From, &from}, {n.To, &to}} {
		if edge.e == nil {
			continue
		}
		v, err := vm.eval(edge.e, env)
		if err != nil {
			return false, err
		}
		t, ok := number(v)
		if !ok {
			return false, errorAt(edge.e.Span(), "I expected a time, but I found %s.", describe(v))
		}
		*edge.dst = t
	}
	return from <= vm.cfg.clock && vm.cfg.clock <= to, nil
}
