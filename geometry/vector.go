// Package geometry holds the turtle, the recorded paths and the mesh
// synthesis algorithms that turn paths into triangle meshes.
package geometry

import (
	"fmt"
	"math"
)

// Epsilon is the coincidence tolerance for sealing paths, collapsing dowel
// stops and detecting full revolutions.
const Epsilon = 1e-6

// RowEpsilon is the tolerance table uses to decide whether its first and
// last rows coincide.
const RowEpsilon = 1e-5

// ---------------------------------------------------------------------------
// Vec3
// ---------------------------------------------------------------------------

// Vec3 is a 3-component vector used for positions, directions and colors.
type Vec3 struct {
	X, Y, Z float64
}

// V is shorthand for constructing a Vec3.
func V(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func (a Vec3) Add(b Vec3) Vec3             { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3             { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(s float64) Vec3        { return Vec3{a.X * s, a.Y * s, a.Z * s} }
func (a Vec3) Mul(b Vec3) Vec3             { return Vec3{a.X * b.X, a.Y * b.Y, a.Z * b.Z} }
func (a Vec3) Negate() Vec3                { return Vec3{-a.X, -a.Y, -a.Z} }
func (a Vec3) Dot(b Vec3) float64          { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }
func (a Vec3) Length() float64             { return math.Sqrt(a.Dot(a)) }
func (a Vec3) Distance(b Vec3) float64     { return a.Sub(b).Length() }
func (a Vec3) Lerp(b Vec3, t float64) Vec3 { return a.Add(b.Sub(a).Scale(t)) }

func (a Vec3) Cross(b Vec3) Vec3 {
	return Vec3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Normalize returns the unit vector in a's direction, or the zero vector
// when a has no length.
func (a Vec3) Normalize() Vec3 {
	l := a.Length()
	if l == 0 {
		return Vec3{}
	}
	return a.Scale(1 / l)
}

// Perpendicular returns a unit vector perpendicular to a, crossing a with
// the world axis it is least aligned with.
func (a Vec3) Perpendicular() Vec3 {
	ax, ay, az := math.Abs(a.X), math.Abs(a.Y), math.Abs(a.Z)
	var axis Vec3
	switch {
	case ax <= ay && ax <= az:
		axis = Vec3{1, 0, 0}
	case ay <= az:
		axis = Vec3{0, 1, 0}
	default:
		axis = Vec3{0, 0, 1}
	}
	return a.Cross(axis).Normalize()
}

// NearlyEqual reports whether a and b are within eps of each other.
func (a Vec3) NearlyEqual(b Vec3, eps float64) bool {
	return a.Distance(b) < eps
}

func (a Vec3) String() string {
	return fmt.Sprintf("[%g, %g, %g]", a.X, a.Y, a.Z)
}

// Array returns the components as a fixed array.
func (a Vec3) Array() [3]float64 { return [3]float64{a.X, a.Y, a.Z} }

// ---------------------------------------------------------------------------
// Mat4
// ---------------------------------------------------------------------------

// Mat4 is a 4x4 matrix stored column-major: element (row r, column c) is
// m[c*4+r].
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}

func (m Mat4) at(r, c int) float64 { return m[c*4+r] }

func (m *Mat4) set(r, c int, v float64) { m[c*4+r] = v }

// Mul returns m * n.
func (m Mat4) Mul(n Mat4) Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m.at(r, k) * n.at(k, c)
			}
			out.set(r, c, sum)
		}
	}
	return out
}

// Translate returns a translation by offset.
func Translate(offset Vec3) Mat4 {
	m := Identity()
	m.set(0, 3, offset.X)
	m.set(1, 3, offset.Y)
	m.set(2, 3, offset.Z)
	return m
}

// ScaleBy returns a scale by the per-axis factors.
func ScaleBy(factors Vec3) Mat4 {
	m := Identity()
	m.set(0, 0, factors.X)
	m.set(1, 1, factors.Y)
	m.set(2, 2, factors.Z)
	return m
}

// ScaleAround scales about a fixed pivot.
func ScaleAround(factors, pivot Vec3) Mat4 {
	return Translate(pivot).Mul(ScaleBy(factors)).Mul(Translate(pivot.Negate()))
}

// Rotate returns a right-handed rotation of degrees about axis.
func Rotate(axis Vec3, degrees float64) Mat4 {
	a := axis.Normalize()
	rad := degrees * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	t := 1 - c
	x, y, z := a.X, a.Y, a.Z

	m := Identity()
	m.set(0, 0, t*x*x+c)
	m.set(0, 1, t*x*y-s*z)
	m.set(0, 2, t*x*z+s*y)
	m.set(1, 0, t*x*y+s*z)
	m.set(1, 1, t*y*y+c)
	m.set(1, 2, t*y*z-s*x)
	m.set(2, 0, t*x*z-s*y)
	m.set(2, 1, t*y*z+s*x)
	m.set(2, 2, t*z*z+c)
	return m
}

// RotateAround rotates degrees about an axis passing through pivot.
func RotateAround(axis Vec3, degrees float64, pivot Vec3) Mat4 {
	return Translate(pivot).Mul(Rotate(axis, degrees)).Mul(Translate(pivot.Negate()))
}

// Point transforms p as a position (w = 1).
func (m Mat4) Point(p Vec3) Vec3 {
	return Vec3{
		m.at(0, 0)*p.X + m.at(0, 1)*p.Y + m.at(0, 2)*p.Z + m.at(0, 3),
		m.at(1, 0)*p.X + m.at(1, 1)*p.Y + m.at(1, 2)*p.Z + m.at(1, 3),
		m.at(2, 0)*p.X + m.at(2, 1)*p.Y + m.at(2, 2)*p.Z + m.at(2, 3),
	}
}

// Vector transforms v as a direction (w = 0).
func (m Mat4) Vector(v Vec3) Vec3 {
	return Vec3{
		m.at(0, 0)*v.X + m.at(0, 1)*v.Y + m.at(0, 2)*v.Z,
		m.at(1, 0)*v.X + m.at(1, 1)*v.Y + m.at(1, 2)*v.Z,
		m.at(2, 0)*v.X + m.at(2, 1)*v.Y + m.at(2, 2)*v.Z,
	}
}

// ---------------------------------------------------------------------------
// Plane
// ---------------------------------------------------------------------------

// Plane is the set of points through Point perpendicular to Normal.
type Plane struct {
	Point  Vec3
	Normal Vec3
}

// IntersectRay returns where the ray from origin along direction meets the
// plane. A ray parallel to the plane returns its origin.
func (pl Plane) IntersectRay(origin, direction Vec3) Vec3 {
	denom := pl.Normal.Dot(direction)
	if math.Abs(denom) < 1e-12 {
		return origin
	}
	t := pl.Normal.Dot(pl.Point.Sub(origin)) / denom
	return origin.Add(direction.Scale(t))
}

// ---------------------------------------------------------------------------
// Polylines
// ---------------------------------------------------------------------------

// PolylineNormal returns the unit Newell normal of a closed polyline. It
// points toward the side from which the vertices appear counterclockwise.
// Degenerate polylines yield the zero vector.
func PolylineNormal(positions []Vec3) Vec3 {
	var n Vec3
	for i, cur := range positions {
		next := positions[(i+1)%len(positions)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	return n.Normalize()
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

// angleBetween returns the angle in degrees between two unit vectors.
func angleBetween(a, b Vec3) float64 {
	d := math.Max(-1, math.Min(1, a.Dot(b)))
	return toDegrees(math.Acos(d))
}
