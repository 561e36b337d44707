package geometry

import (
	"errors"
	"math"
)

// ErrDegenerate is returned when a polygon has no area to triangulate.
var ErrDegenerate = errors.New("polygon is degenerate")

type point2 struct{ x, y float64 }

func cross2(o, a, b point2) float64 {
	return (a.x-o.x)*(b.y-o.y) - (a.y-o.y)*(b.x-o.x)
}

func inTriangle(p, a, b, c point2) bool {
	d1 := cross2(a, b, p)
	d2 := cross2(b, c, p)
	d3 := cross2(c, a, p)
	return d1 >= 0 && d2 >= 0 && d3 >= 0
}

// Triangulate splits a simple planar polygon into triangles indexing into
// positions. Triangles wind counterclockwise as seen from the polygon's
// Newell normal, so their normals agree with PolylineNormal(positions).
func Triangulate(positions []Vec3) ([][3]int, error) {
	if len(positions) < 3 {
		return nil, ErrDegenerate
	}
	n := PolylineNormal(positions)
	if n == (Vec3{}) {
		return nil, ErrDegenerate
	}
	e1 := n.Perpendicular()
	e2 := n.Cross(e1)

	flat := make([]point2, len(positions))
	for i, p := range positions {
		flat[i] = point2{p.Dot(e1), p.Dot(e2)}
	}

	const eps = 1e-12
	remaining := make([]int, len(positions))
	for i := range remaining {
		remaining[i] = i
	}

	var faces [][3]int
	for len(remaining) > 3 {
		clipped := false
		count := len(remaining)
		for i := 0; i < count; i++ {
			ia := remaining[(i+count-1)%count]
			ib := remaining[i]
			ic := remaining[(i+1)%count]
			a, b, c := flat[ia], flat[ib], flat[ic]

			turn := cross2(a, b, c)
			if math.Abs(turn) <= eps {
				// Collinear vertices contribute no area.
				remaining = append(remaining[:i], remaining[i+1:]...)
				clipped = true
				break
			}
			if turn < 0 {
				continue
			}

			ear := true
			for _, j := range remaining {
				if j == ia || j == ib || j == ic {
					continue
				}
				if inTriangle(flat[j], a, b, c) {
					ear = false
					break
				}
			}
			if !ear {
				continue
			}
			faces = append(faces, [3]int{ia, ib, ic})
			remaining = append(remaining[:i], remaining[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// Self-intersecting input; fan what is left.
			for i := 1; i+1 < len(remaining); i++ {
				faces = append(faces, [3]int{remaining[0], remaining[i], remaining[i+1]})
			}
			return faces, nil
		}
	}

	if len(remaining) == 3 {
		a, b, c := flat[remaining[0]], flat[remaining[1]], flat[remaining[2]]
		if math.Abs(cross2(a, b, c)) > eps {
			faces = append(faces, [3]int{remaining[0], remaining[1], remaining[2]})
		}
	}
	if len(faces) == 0 {
		return nil, ErrDegenerate
	}
	return faces, nil
}
