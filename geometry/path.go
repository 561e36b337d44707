package geometry

import (
	"errors"
	"math"
)

// ErrSealed is returned when a sealed path is asked to record more vertices.
var ErrSealed = errors.New("this path has already been sealed")

// Vertex is one recorded turtle visit.
type Vertex struct {
	Position Vec3
	Radius   float64
	Color    Vec3
}

// Path is an ordered recording of visits. It is sealed exactly once, when
// a solidifying operation consumes it, and is immutable afterwards.
type Path struct {
	Vertices []Vertex
	Turtle   Turtle
	Closed   bool

	sealed bool
}

// NewPath returns an open, unsealed, empty path.
func NewPath(t Turtle) *Path {
	return &Path{Turtle: t}
}

// Visit records a vertex at the turtle's current position.
func (p *Path) Visit(t Turtle, radius float64, color Vec3) error {
	if p.sealed {
		return ErrSealed
	}
	p.Vertices = append(p.Vertices, Vertex{Position: t.Position, Radius: radius, Color: color})
	p.Turtle = t
	return nil
}

// Sealed reports whether the path has been sealed.
func (p *Path) Sealed() bool { return p.sealed }

// Seal decides whether the path is closed. A path whose first and last
// vertices agree within Epsilon on position, color and radius is closed
// and drops its duplicate trailing vertex. Sealing twice is a no-op.
func (p *Path) Seal() {
	if p.sealed {
		return
	}
	p.sealed = true
	n := len(p.Vertices)
	if n < 2 {
		return
	}
	first, last := p.Vertices[0], p.Vertices[n-1]
	if first.Position.NearlyEqual(last.Position, Epsilon) &&
		first.Color.NearlyEqual(last.Color, Epsilon) &&
		math.Abs(first.Radius-last.Radius) < Epsilon {
		p.Closed = true
		p.Vertices = p.Vertices[:n-1]
	}
}

// Positions returns the vertex positions in order.
func (p *Path) Positions() []Vec3 {
	out := make([]Vec3, len(p.Vertices))
	for i, v := range p.Vertices {
		out[i] = v.Position
	}
	return out
}

// Colors returns the vertex colors in order.
func (p *Path) Colors() []Vec3 {
	out := make([]Vec3, len(p.Vertices))
	for i, v := range p.Vertices {
		out[i] = v.Color
	}
	return out
}

// Transformed returns a sealed copy of the path with m applied to every
// position. Radii and colors carry over unchanged.
func (p *Path) Transformed(m Mat4) *Path {
	out := &Path{
		Vertices: make([]Vertex, len(p.Vertices)),
		Turtle:   p.Turtle,
		Closed:   p.Closed,
		sealed:   true,
	}
	for i, v := range p.Vertices {
		v.Position = m.Point(v.Position)
		out.Vertices[i] = v
	}
	out.Turtle.Position = m.Point(p.Turtle.Position)
	out.Turtle.Forward = m.Vector(p.Turtle.Forward).Normalize()
	out.Turtle.Up = m.Vector(p.Turtle.Up).Normalize()
	return out
}

// Equal reports whether two paths visit the same positions within eps.
func (p *Path) Equal(o *Path, eps float64) bool {
	if len(p.Vertices) != len(o.Vertices) {
		return false
	}
	for i := range p.Vertices {
		if !p.Vertices[i].Position.NearlyEqual(o.Vertices[i].Position, eps) {
			return false
		}
	}
	return true
}
