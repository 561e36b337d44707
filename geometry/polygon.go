package geometry

import (
	"errors"
	"fmt"
)

var (
	ErrPolygonVertices = errors.New("I expected this polygon to have at least three unique vertices.")
	ErrTableRows       = errors.New("I expected this table to have at least two rows.")
)

// Polygon fills a planar path. Its front face follows the path's winding;
// flip reverses it.
func Polygon(path *Path, flip bool) (*Trimesh, error) {
	if len(path.Vertices) < 3 {
		return nil, ErrPolygonVertices
	}
	positions := path.Positions()
	faces, err := Triangulate(positions)
	if err != nil {
		return nil, ErrPolygonVertices
	}
	mesh := &Trimesh{Positions: positions, Colors: path.Colors(), Faces: faces}
	if flip {
		mesh.ReverseWinding()
	}
	return mesh, nil
}

// Table stitches parallel rows into a surface. Each row is a sealed path
// with the same number of vertices. When the first and last rows coincide
// within RowEpsilon the surface wraps around into a circuit.
func Table(rows []*Path) (*Trimesh, error) {
	if len(rows) < 2 {
		return nil, ErrTableRows
	}
	width := len(rows[0].Vertices)
	for i, row := range rows {
		if len(row.Vertices) != width {
			return nil, fmt.Errorf("I expected every row of this table to have %d vertices, but row %d has %d.", width, i, len(row.Vertices))
		}
	}

	stop := len(rows) - 1
	if rows[0].Equal(rows[len(rows)-1], RowEpsilon) {
		rows = rows[:len(rows)-1]
		stop = len(rows)
	}

	mesh := &Trimesh{}
	for _, row := range rows {
		for _, v := range row.Vertices {
			mesh.Positions = append(mesh.Positions, v.Position)
			mesh.Colors = append(mesh.Colors, v.Color)
		}
	}

	total := len(mesh.Positions)
	for r := 0; r < stop; r++ {
		row := rows[r]
		base := r * width
		span := width - 1
		if row.Closed {
			span = width
		}
		for i := 0; i < span; i++ {
			next := (i + 1) % width
			mesh.Faces = append(mesh.Faces,
				[3]int{base + i, (base + i + width) % total, (base + next) % total},
				[3]int{base + next, (base + i + width) % total, (base + width + next) % total},
			)
		}
	}
	return mesh, nil
}

// RawMesh builds a mesh from explicit positions and faces, checking that
// every index is in range. Every position gets the same color.
func RawMesh(positions []Vec3, faces [][3]int, color Vec3) (*Trimesh, error) {
	mesh := &Trimesh{Positions: positions, Faces: faces}
	mesh.SetColor(color)
	if err := mesh.Validate(); err != nil {
		return nil, fmt.Errorf("I couldn't build this mesh: %w.", err)
	}
	return mesh, nil
}
