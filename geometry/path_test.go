package geometry

import (
	"errors"
	"testing"
)

var orange = V(1, 0.5, 0)

// pathThrough records a visit at each point and seals the result.
func pathThrough(points ...Vec3) *Path {
	p := NewPath(NewTurtle())
	for _, pt := range points {
		turtle := NewTurtle()
		turtle.Relocate(pt)
		p.Visit(turtle, 0.5, orange)
	}
	p.Seal()
	return p
}

func TestSealDetectsClosure(t *testing.T) {
	tests := []struct {
		name       string
		points     []Vec3
		wantClosed bool
		wantCount  int
	}{
		{"square", []Vec3{V(0, 0, 0), V(1, 0, 0), V(1, 1, 0), V(0, 1, 0), V(0, 0, 0)}, true, 4},
		{"open", []Vec3{V(0, 0, 0), V(1, 0, 0), V(1, 1, 0)}, false, 3},
		{"nearly closed", []Vec3{V(0, 0, 0), V(1, 0, 0), V(1e-9, 0, 0)}, true, 2},
		{"single", []Vec3{V(0, 0, 0)}, false, 1},
		{"empty", nil, false, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := pathThrough(tc.points...)
			if p.Closed != tc.wantClosed {
				t.Errorf("closed = %v, want %v", p.Closed, tc.wantClosed)
			}
			if len(p.Vertices) != tc.wantCount {
				t.Errorf("vertices = %d, want %d", len(p.Vertices), tc.wantCount)
			}
		})
	}
}

func TestSealRequiresMatchingRadiusAndColor(t *testing.T) {
	p := NewPath(NewTurtle())
	turtle := NewTurtle()
	p.Visit(turtle, 0.5, orange)
	turtle.Advance(1)
	p.Visit(turtle, 0.5, orange)
	turtle.Advance(-1)
	p.Visit(turtle, 0.75, orange)
	p.Seal()
	if p.Closed {
		t.Error("path with differing end radii sealed closed")
	}
}

func TestSealIsIdempotent(t *testing.T) {
	p := pathThrough(V(0, 0, 0), V(1, 0, 0), V(0, 0, 0))
	p.Seal()
	if len(p.Vertices) != 2 {
		t.Errorf("second seal changed vertices to %d", len(p.Vertices))
	}
	err := p.Visit(NewTurtle(), 1, orange)
	if !errors.Is(err, ErrSealed) {
		t.Errorf("Visit after seal = %v, want ErrSealed", err)
	}
}

func TestPathTransformed(t *testing.T) {
	p := pathThrough(V(1, 0, 0), V(2, 0, 0))
	moved := p.Transformed(Translate(V(0, 1, 0)))
	if !near(moved.Vertices[1].Position, V(2, 1, 0)) {
		t.Errorf("moved vertex = %v", moved.Vertices[1].Position)
	}
	if !near(p.Vertices[1].Position, V(2, 0, 0)) {
		t.Error("Transformed mutated the original path")
	}
	if !moved.Sealed() {
		t.Error("transformed path is not sealed")
	}
}
