package geometry

import (
	"fmt"
	"math"
)

// Trimesh is an indexed triangle mesh with one color per position.
type Trimesh struct {
	Positions []Vec3
	Colors    []Vec3
	Faces     [][3]int
}

// Validate checks that every face index refers to a position and that
// there is one color per position.
func (m *Trimesh) Validate() error {
	if len(m.Colors) != len(m.Positions) {
		return fmt.Errorf("mesh has %d colors for %d positions", len(m.Colors), len(m.Positions))
	}
	for fi, f := range m.Faces {
		for _, i := range f {
			if i < 0 || i >= len(m.Positions) {
				return fmt.Errorf("face %d refers to vertex %d, but the mesh has only %d vertices", fi, i, len(m.Positions))
			}
		}
	}
	return nil
}

// SetColor paints every position the same color.
func (m *Trimesh) SetColor(c Vec3) {
	m.Colors = make([]Vec3, len(m.Positions))
	for i := range m.Colors {
		m.Colors[i] = c
	}
}

// ReverseWinding flips the orientation of every face.
func (m *Trimesh) ReverseWinding() {
	for i, f := range m.Faces {
		m.Faces[i] = [3]int{f[0], f[2], f[1]}
	}
}

// Clone returns a deep copy.
func (m *Trimesh) Clone() *Trimesh {
	return &Trimesh{
		Positions: append([]Vec3(nil), m.Positions...),
		Colors:    append([]Vec3(nil), m.Colors...),
		Faces:     append([][3]int(nil), m.Faces...),
	}
}

// Transformed returns a copy with every position transformed by t.
func (m *Trimesh) Transformed(t Mat4) *Trimesh {
	out := m.Clone()
	for i, p := range out.Positions {
		out.Positions[i] = t.Point(p)
	}
	return out
}

// Append adds other's geometry to m, offsetting its face indices.
func (m *Trimesh) Append(other *Trimesh) {
	base := len(m.Positions)
	m.Positions = append(m.Positions, other.Positions...)
	m.Colors = append(m.Colors, other.Colors...)
	for _, f := range other.Faces {
		m.Faces = append(m.Faces, [3]int{f[0] + base, f[1] + base, f[2] + base})
	}
}

// Bounds returns the axis-aligned bounding box. An empty mesh has zero
// bounds.
func (m *Trimesh) Bounds() (min, max Vec3) {
	if len(m.Positions) == 0 {
		return Vec3{}, Vec3{}
	}
	min = Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	max = Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range m.Positions {
		min = Vec3{math.Min(min.X, p.X), math.Min(min.Y, p.Y), math.Min(min.Z, p.Z)}
		max = Vec3{math.Max(max.X, p.X), math.Max(max.Y, p.Y), math.Max(max.Z, p.Z)}
	}
	return min, max
}

// FaceNormal returns the unit normal of face i by the right-hand rule.
func (m *Trimesh) FaceNormal(i int) Vec3 {
	f := m.Faces[i]
	a, b, c := m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]]
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}
