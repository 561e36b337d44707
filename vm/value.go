package vm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/chazu/madeup/geometry"
)

// ---------------------------------------------------------------------------
// Value kinds
// ---------------------------------------------------------------------------

// Kind identifies the runtime type of a Value.
type Kind int

const (
	KindInteger Kind = iota
	KindReal
	KindBoolean
	KindString
	KindCharacter
	KindVector
	KindPath
	KindMesh

	kindCount
)

var kindNames = map[Kind]string{
	KindInteger:   "integer",
	KindReal:      "real",
	KindBoolean:   "boolean",
	KindString:    "string",
	KindCharacter: "character",
	KindVector:    "vector",
	KindPath:      "path",
	KindMesh:      "mesh",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Article returns the kind preceded by its indefinite article, as used in
// error messages.
func (k Kind) Article() string {
	if k == KindInteger {
		return "an integer"
	}
	return "a " + k.String()
}

// ---------------------------------------------------------------------------
// Values
// ---------------------------------------------------------------------------

// Value is a runtime value. The set of implementations is closed: Integer,
// Real, Boolean, Character, *String, *Vector, *PathValue and *Mesh. A nil
// Value means a statement produced nothing.
type Value interface {
	Kind() Kind
	String() string
}

type Integer int64

func (Integer) Kind() Kind       { return KindInteger }
func (v Integer) String() string { return strconv.FormatInt(int64(v), 10) }

type Real float64

func (Real) Kind() Kind       { return KindReal }
func (v Real) String() string { return formatReal(float64(v)) }

// formatReal writes the shortest digits that read back as v. Magnitudes in
// [1e-6, 1e21) are written out in full; the rest use an exponent.
func formatReal(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}
	if a := math.Abs(v); a >= 1e-6 && a < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := strconv.FormatFloat(v, 'e', -1, 64)
	s = strings.Replace(s, "e+0", "e+", 1)
	return strings.Replace(s, "e-0", "e-", 1)
}

type Boolean bool

func (Boolean) Kind() Kind       { return KindBoolean }
func (v Boolean) String() string { return strconv.FormatBool(bool(v)) }

type Character rune

func (Character) Kind() Kind       { return KindCharacter }
func (v Character) String() string { return string(rune(v)) }

// String is mutable through subscript assignment, so it is shared by
// pointer like Vector.
type String struct {
	Text string
}

func (*String) Kind() Kind       { return KindString }
func (v *String) String() string { return v.Text }

// NewString returns a string value.
func NewString(s string) *String { return &String{Text: s} }

// Vector is an ordered, mutable list of values.
type Vector struct {
	Elements []Value
}

func (*Vector) Kind() Kind { return KindVector }

func (v *Vector) String() string {
	parts := make([]string, len(v.Elements))
	for i, e := range v.Elements {
		if e == nil {
			parts[i] = "nothing"
			continue
		}
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// NewVector returns a vector of the given elements.
func NewVector(elements ...Value) *Vector { return &Vector{Elements: elements} }

// VectorOf converts a geometric vector into a 3-vector of reals.
func VectorOf(v geometry.Vec3) *Vector {
	return NewVector(Real(v.X), Real(v.Y), Real(v.Z))
}

// PathValue wraps a sealed path captured by mold or rotate.
type PathValue struct {
	Path *geometry.Path
}

func (*PathValue) Kind() Kind { return KindPath }

func (v *PathValue) String() string {
	lines := make([]string, len(v.Path.Vertices))
	for i, vx := range v.Path.Vertices {
		lines[i] = fmt.Sprintf("{position: %v, radius: %g, color: %v}", vx.Position, vx.Radius, vx.Color)
	}
	return strings.Join(lines, "\n")
}

// Mesh is a solid added to the run's output.
type Mesh struct {
	Name    string
	Trimesh *geometry.Trimesh

	slot int
}

func (*Mesh) Kind() Kind { return KindMesh }

func (v *Mesh) String() string {
	name := v.Name
	if name == "" {
		name = "unnamed"
	}
	return fmt.Sprintf("mesh %s (%d vertices, %d faces)", name, len(v.Trimesh.Positions), len(v.Trimesh.Faces))
}

// ---------------------------------------------------------------------------
// Conversions
// ---------------------------------------------------------------------------

// describe names a value's kind for messages, treating nil as nothing.
func describe(v Value) string {
	if v == nil {
		return "nothing"
	}
	return v.Kind().Article()
}

// number returns the numeric value of an Integer or Real.
func number(v Value) (float64, bool) {
	switch n := v.(type) {
	case Integer:
		return float64(n), true
	case Real:
		return float64(n), true
	}
	return 0, false
}

// vec3 converts a vector of at least three numbers.
func vec3(v Value) (geometry.Vec3, bool) {
	vec, ok := v.(*Vector)
	if !ok || len(vec.Elements) < 3 {
		return geometry.Vec3{}, false
	}
	var c [3]float64
	for i := range c {
		n, ok := number(vec.Elements[i])
		if !ok {
			return geometry.Vec3{}, false
		}
		c[i] = n
	}
	return geometry.Vec3{X: c[0], Y: c[1], Z: c[2]}, true
}

// equal reports deep equality of two values of comparable kinds.
func equal(a, b Value) bool {
	if x, ok := number(a); ok {
		y, ok := number(b)
		return ok && x == y
	}
	switch x := a.(type) {
	case Boolean:
		y, ok := b.(Boolean)
		return ok && x == y
	case Character:
		y, ok := b.(Character)
		return ok && x == y
	case *String:
		y, ok := b.(*String)
		return ok && x.Text == y.Text
	case *Vector:
		y, ok := b.(*Vector)
		if !ok || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !equal(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	case *PathValue:
		return a == b
	case *Mesh:
		return a == b
	}
	return false
}
