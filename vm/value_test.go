package vm

import (
	"math"
	"strings"
	"testing"

	"github.com/chazu/madeup/compiler"
	"github.com/chazu/madeup/geometry"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func run(t *testing.T, source string, opts ...Option) *Result {
	t.Helper()
	r, err := Interpret(source, append([]Option{WithSeed(1)}, opts...)...)
	if err != nil {
		t.Fatalf("Interpret(%q): %v", source, err)
	}
	return r
}

func value(t *testing.T, source string, opts ...Option) Value {
	t.Helper()
	return run(t, source, opts...).Value
}

func runError(t *testing.T, source string) *Error {
	t.Helper()
	_, err := Interpret(source, WithSeed(1))
	if err == nil {
		t.Fatalf("Interpret(%q): expected an error", source)
	}
	ve, ok := err.(*Error)
	if !ok {
		t.Fatalf("Interpret(%q): err = %T %v, want *Error", source, err, err)
	}
	return ve
}

func reals(xs ...float64) *Vector {
	out := make([]Value, len(xs))
	for i, x := range xs {
		out[i] = Real(x)
	}
	return NewVector(out...)
}

func ints(xs ...int64) *Vector {
	out := make([]Value, len(xs))
	for i, x := range xs {
		out[i] = Integer(x)
	}
	return NewVector(out...)
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}

// ---------------------------------------------------------------------------
// Kinds and formatting
// ---------------------------------------------------------------------------

func TestKindArticle(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindInteger, "an integer"},
		{KindReal, "a real"},
		{KindString, "a string"},
		{KindMesh, "a mesh"},
	}
	for _, tt := range tests {
		if got := tt.kind.Article(); got != tt.want {
			t.Errorf("%v.Article() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	for k := KindInteger; k < kindCount; k++ {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v, want %v", k.String(), got, ok, k)
		}
	}
	if _, ok := ParseKind("matrix"); ok {
		t.Error("ParseKind(matrix) succeeded")
	}
}

func TestValueStrings(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Integer(-3), "-3"},
		{Real(2.5), "2.5"},
		{Real(4), "4"},
		{Real(-0.25), "-0.25"},
		{Real(math.Copysign(0, -1)), "0"},
		{Real(1e6), "1000000"},
		{Real(1e21), "1e+21"},
		{Real(1.5e-7), "1.5e-7"},
		{Real(math.Inf(1)), "Infinity"},
		{Real(math.Inf(-1)), "-Infinity"},
		{Real(math.NaN()), "NaN"},
		{Boolean(true), "true"},
		{Character('q'), "q"},
		{NewString("hi"), "hi"},
		{NewVector(Integer(1), NewString("a"), ints(2, 3)), "[1, a, [2, 3]]"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Operator table
// ---------------------------------------------------------------------------

func TestArithmetic(t *testing.T) {
	tests := []struct {
		source string
		want   Value
	}{
		{"1 + 2", Integer(3)},
		{"7 / 2", Integer(3)},
		{"-7 / 2", Integer(-3)},
		{"7 % 3", Integer(1)},
		{"2 ^ 10", Integer(1024)},
		{"n = 0 - 1\n2 ^ n", Real(0.5)},
		{"1 + 0.5", Real(1.5)},
		{"3.0 * 2", Real(6)},
		{"\"a\" + 1", NewString("a1")},
		{"1 + 'b'", NewString("1b")},
		{"[1, 2] + [3, 4]", ints(4, 6)},
		{"[1, 2] * 2", ints(2, 4)},
		{"10 - [1, 2]", ints(9, 8)},
		{"-[1, 2.5]", NewVector(Integer(-1), Real(-2.5))},
		{"3 < 4", Boolean(true)},
		{"3 >= 4", Boolean(false)},
		{"2 == 2.0", Boolean(true)},
		{"\"a\" != \"b\"", Boolean(true)},
		{"[1, 2] == [1, 2]", Boolean(true)},
	}
	for _, tt := range tests {
		got := value(t, tt.source)
		if got == nil || got.Kind() != tt.want.Kind() || !equal(got, tt.want) {
			t.Errorf("%s = %v (%v), want %v (%v)", tt.source, got, describe(got), tt.want, tt.want.Kind())
		}
	}
}

func TestArithmeticErrors(t *testing.T) {
	tests := []struct {
		source     string
		diagnostic string
	}{
		{"1 / 0", "0:0:0:5:I can't divide by zero."},
		{"x = 5 % 0", "0:0:4:9:I can't divide by zero."},
		{"true + 1", "0:0:0:8:I don't know how to apply + to a boolean and an integer."},
		{"1 == true", "0:0:0:9:I don't know how to apply == to an integer and a boolean."},
		{"[1, 2] + [1]", "0:0:0:12:I can't apply + to vectors of lengths 2 and 1."},
	}
	for _, tt := range tests {
		err := runError(t, tt.source)
		if got := Diagnostic(err); got != tt.diagnostic {
			t.Errorf("%s: diagnostic = %q, want %q", tt.source, got, tt.diagnostic)
		}
	}
}

// Every kind pair either has a table entry whose result follows the
// promotion rules or fails with an error naming both kinds.
func TestOperatorTotality(t *testing.T) {
	samples := []Value{
		Integer(2),
		Real(1.5),
		Boolean(true),
		Character('c'),
		NewString("s"),
		ints(1, 2),
		&PathValue{Path: geometry.NewPath(geometry.NewTurtle())},
		&Mesh{Trimesh: &geometry.Trimesh{}},
	}
	ops := []compiler.Operator{
		compiler.OpAdd, compiler.OpSubtract, compiler.OpMultiply, compiler.OpDivide,
		compiler.OpRemainder, compiler.OpPower, compiler.OpSame, compiler.OpNotSame,
		compiler.OpLess, compiler.OpLessEqual, compiler.OpMore, compiler.OpMoreEqual,
	}

	for _, op := range ops {
		for _, l := range samples {
			for _, r := range samples {
				got, err := applyBinary(op, l, r)
				if _, supported := binaryTable[binaryKey{op, l.Kind(), r.Kind()}]; !supported {
					if err == nil {
						t.Errorf("%v %s %v: expected an error", l.Kind(), op, r.Kind())
						continue
					}
					msg := err.Error()
					if !strings.Contains(msg, l.Kind().Article()) || !strings.Contains(msg, r.Kind().Article()) {
						t.Errorf("%v %s %v: error %q does not name both kinds", l.Kind(), op, r.Kind(), msg)
					}
					continue
				}
				if err != nil {
					t.Errorf("%v %s %v: unexpected error %v", l.Kind(), op, r.Kind(), err)
					continue
				}

				_, lnum := number(l)
				_, rnum := number(r)
				if !lnum || !rnum {
					continue
				}
				want := KindReal
				switch {
				case op >= compiler.OpSame:
					want = KindBoolean
				case l.Kind() == KindInteger && r.Kind() == KindInteger:
					want = KindInteger
				}
				if got.Kind() != want {
					t.Errorf("%v %s %v = %v, want %v", l.Kind(), op, r.Kind(), got.Kind(), want)
				}
			}
		}
	}
}

func TestEqualityIsDeep(t *testing.T) {
	a := NewVector(Integer(1), NewString("x"), ints(2))
	b := NewVector(Real(1), NewString("x"), ints(2))
	if !equal(a, b) {
		t.Errorf("equal(%v, %v) = false, want true", a, b)
	}
	b.Elements[1] = NewString("y")
	if equal(a, b) {
		t.Errorf("equal(%v, %v) = true, want false", a, b)
	}
}
