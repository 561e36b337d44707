package geometry

import (
	"errors"
	"math"
	"slices"
)

var (
	ErrRevolveVertices = errors.New("I expected this revolve to have at least two vertices.")
	ErrRevolveDegrees  = errors.New("I expected the number of degrees given to revolve to be in the interval [-360, 360].")
	ErrRevolveSides    = errors.New("I expected revolve to have at least one side.")
	ErrExtrudeVertices = errors.New("I expected this extrude to have at least 2 vertices.")
)

// RevolveOptions describes the sweep of a revolve.
type RevolveOptions struct {
	Sides   int
	Degrees float64
	Axis    Vec3
	Origin  Vec3
}

// capRing triangulates ring and returns it as standalone geometry whose normal
// points along want. A ring with no area gets no cap.
func capRing(ring, colors []Vec3, want Vec3) *Trimesh {
	faces, err := Triangulate(ring)
	if err != nil {
		return &Trimesh{}
	}
	m := &Trimesh{
		Positions: append([]Vec3(nil), ring...),
		Colors:    append([]Vec3(nil), colors...),
		Faces:     faces,
	}
	if PolylineNormal(ring).Dot(want) < 0 {
		m.ReverseWinding()
	}
	return m
}

// Revolve sweeps the path about an axis through origin. A full turn joins
// the last ring to the first; a partial turn of a closed cross-section is
// capped at both ends.
func Revolve(path *Path, opts RevolveOptions) (*Trimesh, error) {
	if opts.Degrees < -360 || opts.Degrees > 360 {
		return nil, ErrRevolveDegrees
	}
	if opts.Sides < 1 {
		return nil, ErrRevolveSides
	}
	if len(path.Vertices) < 2 {
		return nil, ErrRevolveVertices
	}

	axis := opts.Axis.Normalize()
	rotater := RotateAround(axis, opts.Degrees/float64(opts.Sides), opts.Origin)
	full := math.Abs(math.Abs(opts.Degrees)-360) < Epsilon
	rings := opts.Sides + 1
	if full {
		rings = opts.Sides
	}

	vertices := slices.Clone(path.Vertices)

	// Orient the cross-section so that its faces point away from the sweep.
	probe := 10.0
	if opts.Degrees < 0 {
		probe = -10
	}
	nudge := RotateAround(axis, probe, opts.Origin)
	var delta Vec3
	for _, v := range vertices {
		delta = nudge.Point(v.Position).Sub(v.Position)
		if delta.Length() >= Epsilon {
			break
		}
	}
	if PolylineNormal(path.Positions()).Dot(delta) < 0 {
		slices.Reverse(vertices)
	}

	count := len(vertices)
	positions := make([]Vec3, count*rings)
	colors := make([]Vec3, len(positions))
	for i, v := range vertices {
		p := v.Position
		for ring := 0; ring < rings; ring++ {
			positions[ring*count+i] = p
			colors[ring*count+i] = v.Color
			p = rotater.Point(p)
		}
	}

	span := count - 1
	if path.Closed {
		span = count
	}
	last := rings - 2
	if full {
		last = rings - 1
	}
	total := len(positions)
	var faces [][3]int
	for ring := 0; ring <= last; ring++ {
		base := ring * count
		for i := 0; i < span; i++ {
			next := (i + 1) % count
			faces = append(faces,
				[3]int{base + i, base + next, (base + i + count) % total},
				[3]int{base + next, (base + next + count) % total, (base + i + count) % total},
			)
		}
	}

	mesh := &Trimesh{Positions: positions, Colors: colors, Faces: faces}
	if !full && path.Closed {
		ringColors := make([]Vec3, count)
		for i, v := range vertices {
			ringColors[i] = v.Color
		}
		first := positions[:count]
		end := positions[total-count:]
		// The caps face away from the swept interior.
		mesh.Append(capRing(first, ringColors, sweepDirection(first, rotater).Negate()))
		mesh.Append(capRing(end, ringColors, sweepDirection(end, rotater)))
	}
	return mesh, nil
}

// sweepDirection is the mean displacement of a ring under one step of the
// rotation.
func sweepDirection(ring []Vec3, step Mat4) Vec3 {
	var sum Vec3
	for _, p := range ring {
		sum = sum.Add(step.Point(p).Sub(p))
	}
	return sum
}

// Extrude sweeps the path distance units along axis. A closed path is
// capped at both ends.
func Extrude(path *Path, axis Vec3, distance float64) (*Trimesh, error) {
	if len(path.Vertices) < 2 {
		return nil, ErrExtrudeVertices
	}
	offset := axis.Normalize().Scale(distance)
	direction := offset.Normalize()

	vertices := slices.Clone(path.Vertices)
	if PolylineNormal(path.Positions()).Dot(direction) > 0 {
		slices.Reverse(vertices)
	}

	count := len(vertices)
	positions := make([]Vec3, 0, 2*count)
	colors := make([]Vec3, 0, 2*count)
	for _, v := range vertices {
		positions = append(positions, v.Position)
		colors = append(colors, v.Color)
	}
	for _, v := range vertices {
		positions = append(positions, v.Position.Add(offset))
		colors = append(colors, v.Color)
	}

	span := count - 1
	if path.Closed {
		span = count
	}
	var faces [][3]int
	for i := 0; i < span; i++ {
		next := (i + 1) % count
		faces = append(faces,
			[3]int{i, i + count, next},
			[3]int{next, i + count, next + count},
		)
	}

	mesh := &Trimesh{Positions: positions, Colors: colors, Faces: faces}
	if path.Closed {
		mesh.Append(capRing(positions[:count], colors[:count], direction.Negate()))
		mesh.Append(capRing(positions[count:], colors[count:], direction))
	}
	return mesh, nil
}
