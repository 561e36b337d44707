package vm

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/madeup/compiler"
)

// ---------------------------------------------------------------------------
// Operator table
// ---------------------------------------------------------------------------
//
// Every binary operator dispatches on the kinds of both operands through a
// single table built at init. A pairing missing from the table is an error
// naming both kinds.

type binaryKey struct {
	op          compiler.Operator
	left, right Kind
}

type binaryFunc func(l, r Value) (Value, error)

var binaryTable map[binaryKey]binaryFunc

func init() {
	binaryTable = buildBinaryTable()
}

var errDivideByZero = errors.New("I can't divide by zero.")

var arithmetic = []compiler.Operator{
	compiler.OpAdd, compiler.OpSubtract, compiler.OpMultiply,
	compiler.OpDivide, compiler.OpRemainder, compiler.OpPower,
}

var relational = []compiler.Operator{
	compiler.OpLess, compiler.OpLessEqual, compiler.OpMore, compiler.OpMoreEqual,
}

func buildBinaryTable() map[binaryKey]binaryFunc {
	t := make(map[binaryKey]binaryFunc)
	numeric := []Kind{KindInteger, KindReal}

	for _, op := range arithmetic {
		t[binaryKey{op, KindInteger, KindInteger}] = func(l, r Value) (Value, error) {
			return integerArithmetic(op, int64(l.(Integer)), int64(r.(Integer)))
		}
		for _, lk := range numeric {
			for _, rk := range numeric {
				if lk == KindInteger && rk == KindInteger {
					continue
				}
				t[binaryKey{op, lk, rk}] = func(l, r Value) (Value, error) {
					a, _ := number(l)
					b, _ := number(r)
					return realArithmetic(op, a, b), nil
				}
			}
		}

		// Vectors combine elementwise with vectors and broadcast scalars.
		t[binaryKey{op, KindVector, KindVector}] = func(l, r Value) (Value, error) {
			a, b := l.(*Vector), r.(*Vector)
			if len(a.Elements) != len(b.Elements) {
				return nil, fmt.Errorf("I can't apply %s to vectors of lengths %d and %d.", op, len(a.Elements), len(b.Elements))
			}
			out := make([]Value, len(a.Elements))
			for i := range a.Elements {
				v, err := applyBinary(op, a.Elements[i], b.Elements[i])
				if err != nil {
					return nil, err
				}
				out[i] = v
			}
			return NewVector(out...), nil
		}
		for _, k := range numeric {
			t[binaryKey{op, KindVector, k}] = func(l, r Value) (Value, error) {
				return broadcast(l.(*Vector), func(e Value) (Value, error) { return applyBinary(op, e, r) })
			}
			t[binaryKey{op, k, KindVector}] = func(l, r Value) (Value, error) {
				return broadcast(r.(*Vector), func(e Value) (Value, error) { return applyBinary(op, l, e) })
			}
		}
	}

	// Strings and characters concatenate with anything.
	for k := Kind(0); k < kindCount; k++ {
		for _, text := range []Kind{KindString, KindCharacter} {
			t[binaryKey{compiler.OpAdd, text, k}] = concatenate
			t[binaryKey{compiler.OpAdd, k, text}] = concatenate
		}
	}

	for _, op := range relational {
		for _, lk := range numeric {
			for _, rk := range numeric {
				t[binaryKey{op, lk, rk}] = func(l, r Value) (Value, error) {
					a, _ := number(l)
					b, _ := number(r)
					return Boolean(compare(op, a, b)), nil
				}
			}
		}
	}

	same := func(l, r Value) (Value, error) { return Boolean(equal(l, r)), nil }
	notSame := func(l, r Value) (Value, error) { return Boolean(!equal(l, r)), nil }
	for _, lk := range numeric {
		for _, rk := range numeric {
			t[binaryKey{compiler.OpSame, lk, rk}] = same
			t[binaryKey{compiler.OpNotSame, lk, rk}] = notSame
		}
	}
	for _, k := range []Kind{KindBoolean, KindString, KindCharacter, KindVector, KindPath, KindMesh} {
		t[binaryKey{compiler.OpSame, k, k}] = same
		t[binaryKey{compiler.OpNotSame, k, k}] = notSame
	}
	return t
}

// applyBinary evaluates l op r.
func applyBinary(op compiler.Operator, l, r Value) (Value, error) {
	if l == nil || r == nil {
		return nil, fmt.Errorf("I can't apply %s to %s and %s.", op, describe(l), describe(r))
	}
	f, ok := binaryTable[binaryKey{op, l.Kind(), r.Kind()}]
	if !ok {
		return nil, fmt.Errorf("I don't know how to apply %s to %s and %s.", op, l.Kind().Article(), r.Kind().Article())
	}
	return f(l, r)
}

// applyNegate evaluates -v.
func applyNegate(v Value) (Value, error) {
	switch x := v.(type) {
	case Integer:
		return -x, nil
	case Real:
		return -x, nil
	case *Vector:
		return broadcast(x, applyNegate)
	}
	return nil, fmt.Errorf("I don't know how to negate %s.", describe(v))
}

func broadcast(v *Vector, f func(Value) (Value, error)) (Value, error) {
	out := make([]Value, len(v.Elements))
	for i, e := range v.Elements {
		r, err := f(e)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return NewVector(out...), nil
}

func concatenate(l, r Value) (Value, error) {
	return NewString(l.String() + r.String()), nil
}

func integerArithmetic(op compiler.Operator, a, b int64) (Value, error) {
	switch op {
	case compiler.OpAdd:
		return Integer(a + b), nil
	case compiler.OpSubtract:
		return Integer(a - b), nil
	case compiler.OpMultiply:
		return Integer(a * b), nil
	case compiler.OpDivide:
		if b == 0 {
			return nil, errDivideByZero
		}
		return Integer(a / b), nil
	case compiler.OpRemainder:
		if b == 0 {
			return nil, errDivideByZero
		}
		return Integer(a % b), nil
	case compiler.OpPower:
		if b < 0 {
			return Real(math.Pow(float64(a), float64(b))), nil
		}
		result := int64(1)
		for base, e := a, b; e > 0; e >>= 1 {
			if e&1 == 1 {
				result *= base
			}
			base *= base
		}
		return Integer(result), nil
	}
	return nil, fmt.Errorf("I don't know how to apply %s to integers.", op)
}

func realArithmetic(op compiler.Operator, a, b float64) Value {
	switch op {
	case compiler.OpAdd:
		return Real(a + b)
	case compiler.OpSubtract:
		return Real(a - b)
	case compiler.OpMultiply:
		return Real(a * b)
	case compiler.OpDivide:
		return Real(a / b)
	case compiler.OpRemainder:
		return Real(math.Mod(a, b))
	default:
		return Real(math.Pow(a, b))
	}
}

func compare(op compiler.Operator, a, b float64) bool {
	switch op {
	case compiler.OpLess:
		return a < b
	case compiler.OpLessEqual:
		return a <= b
	case compiler.OpMore:
		return a > b
	default:
		return a >= b
	}
}
