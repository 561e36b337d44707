package geometry

import (
	"errors"
	"math"
)

// DowelOptions controls the cross-section of a dowel.
type DowelOptions struct {
	Sides     int
	Twist     float64
	Sharpness float64
}

var (
	ErrDowelVertices  = errors.New("I expected this dowel to have at least two vertices.")
	ErrDowelSides     = errors.New("I expected this dowel to have at least three sides.")
	ErrDowelSharpness = errors.New("I expected sharpness to be greater than 0.")
)

type dowelVariant struct {
	radius float64
	color  Vec3
}

// A stop is a physically distinct position on the path. Consecutive
// coincident visits become extra variants of the same stop.
type dowelStop struct {
	position Vec3
	variants []dowelVariant
}

type dowelBuilder struct {
	n         int
	positions []Vec3
	colors    []Vec3
	faces     [][3]int
}

func (b *dowelBuilder) push(p, c Vec3) {
	b.positions = append(b.positions, p)
	b.colors = append(b.colors, c)
}

// face stitches side i of the ring starting at base to the ring after it.
func (b *dowelBuilder) face(base, i int) {
	n := b.n
	b.faces = append(b.faces,
		[3]int{base + i, base + (i+1)%n, base + (i+1)%n + n},
		[3]int{base + i, base + (i+1)%n + n, base + i + n},
	)
}

// rescale projects the ring at base onto plane along forward, pushes it as
// a new ring of the variant's radius and stitches it to the previous ring.
func (b *dowelBuilder) rescale(plane Plane, forward, fromCenter Vec3, v dowelVariant, base int) {
	toCenter := plane.IntersectRay(fromCenter, forward)
	zero := len(b.positions) - b.n
	for i := 0; i < b.n; i++ {
		to := plane.IntersectRay(b.positions[base+i], forward)
		offset := to.Sub(toCenter).Normalize()
		b.push(toCenter.Add(offset.Scale(v.radius)), v.color)
		b.face(zero, i)
	}
}

// wedges rotates the most recent ring about pivot in count steps.
func (b *dowelBuilder) wedges(axis, pivot Vec3, degrees float64, count int, color Vec3) {
	r := RotateAround(axis, degrees/float64(count), pivot)
	for w := 0; w < count; w++ {
		base := len(b.positions) - b.n
		for i := 0; i < b.n; i++ {
			b.push(r.Point(b.positions[base+i]), color)
			b.face(base, i)
		}
	}
}

// Dowel sweeps a regular polygonal cross-section along a sealed path.
// Bends no sharper than opts.Sharpness degrees are mitered; sharper bends
// are rounded with wedges of at most opts.Sharpness degrees each. A closed
// path yields a torus-like tube; an open one is capped at both ends.
func Dowel(path *Path, opts DowelOptions) (*Trimesh, error) {
	if opts.Sides < 3 {
		return nil, ErrDowelSides
	}
	if !(opts.Sharpness > 0) {
		return nil, ErrDowelSharpness
	}
	if len(path.Vertices) < 2 {
		return nil, ErrDowelVertices
	}

	var stops []*dowelStop
	for _, v := range path.Vertices {
		variant := dowelVariant{radius: v.Radius, color: v.Color}
		if len(stops) > 0 && stops[len(stops)-1].position.NearlyEqual(v.Position, Epsilon) {
			last := stops[len(stops)-1]
			last.variants = append(last.variants, variant)
			continue
		}
		stops = append(stops, &dowelStop{position: v.Position, variants: []dowelVariant{variant}})
	}

	closed := path.Closed
	if closed && len(stops) > 1 && stops[0].position.NearlyEqual(stops[len(stops)-1].position, Epsilon) {
		tail := stops[len(stops)-1]
		stops = stops[:len(stops)-1]
		stops[0].variants = append(append([]dowelVariant(nil), tail.variants...), stops[0].variants...)
	}
	if len(stops) < 2 {
		return nil, ErrDowelVertices
	}

	n := opts.Sides
	b := &dowelBuilder{n: n}

	// Seed rings, one per variant of the first stop.
	forward := stops[1].position.Sub(stops[0].position).Normalize()
	step := Rotate(forward, 360/float64(n))
	twist := Rotate(forward, opts.Twist)
	right := forward.Perpendicular()
	for _, v := range stops[0].variants {
		offset := twist.Vector(right.Scale(v.radius))
		for i := 0; i < n; i++ {
			b.push(stops[0].position.Add(offset), v.color)
			offset = step.Vector(offset)
		}
	}
	for ring := 0; ring < len(stops[0].variants)-1; ring++ {
		for i := 0; i < n; i++ {
			b.face(ring*n, i)
		}
	}

	if closed {
		first := stops[0]
		backward := stops[len(stops)-1].position.Sub(first.position).Normalize()
		degrees := angleBetween(forward, backward.Negate())
		axis := forward.Cross(backward).Normalize()

		if degrees <= opts.Sharpness || len(first.variants) > 1 || axis == (Vec3{}) {
			tangent := forward.Sub(backward).Normalize()
			plane := Plane{Point: first.position, Normal: tangent}
			for i, p := range b.positions {
				b.positions[i] = plane.IntersectRay(p, forward)
			}
		} else {
			reach := first.variants[0].radius / math.Sin((math.Pi-toRadians(degrees))/2)
			pivot := forward.Add(backward).Normalize().Scale(reach).Add(first.position)
			plane := Plane{Point: pivot, Normal: forward}
			back := RotateAround(axis, -degrees, pivot)
			for i := 0; i < n; i++ {
				b.positions[i] = back.Point(plane.IntersectRay(b.positions[i], forward))
			}
			b.wedges(axis, pivot, degrees, int(math.Ceil(degrees/opts.Sharpness)), first.variants[0].color)
		}
	}

	for i := 1; i < len(stops); i++ {
		stop, prev := stops[i], stops[i-1]
		to := stop.position.Sub(prev.position).Normalize()

		if i == len(stops)-1 && !closed {
			plane := Plane{Point: stop.position, Normal: to}
			base := len(b.positions) - n
			for _, v := range stop.variants {
				b.rescale(plane, to, prev.position, v, base)
			}
			continue
		}

		from := stops[(i+1)%len(stops)].position.Sub(stop.position).Normalize()
		degrees := angleBetween(from, to)
		axis := to.Cross(from).Normalize()

		if degrees <= opts.Sharpness || len(stop.variants) > 1 || axis == (Vec3{}) {
			perpendicular := Plane{Point: stop.position, Normal: to}
			zero := len(b.positions) - n
			for _, v := range stop.variants {
				b.rescale(perpendicular, to, prev.position, v, zero)
			}
			miter := Plane{Point: stop.position, Normal: to.Add(from).Normalize()}
			for j := zero + n; j < len(b.positions); j++ {
				b.positions[j] = miter.IntersectRay(b.positions[j], to)
			}
			continue
		}

		reach := stop.variants[0].radius / math.Sin((math.Pi-toRadians(degrees))/2)
		pivot := to.Negate().Add(from).Normalize().Scale(reach).Add(stop.position)
		plane := Plane{Point: pivot, Normal: to}
		b.rescale(plane, to, prev.position, stop.variants[0], len(b.positions)-n)
		b.wedges(axis, pivot, degrees, int(math.Ceil(degrees/opts.Sharpness)), stop.variants[0].color)
	}

	if closed {
		base := len(b.positions) - n
		for i := 0; i < n; i++ {
			b.faces = append(b.faces,
				[3]int{base + i, base + (i+1)%n, (i + 1) % n},
				[3]int{base + i, (i + 1) % n, i},
			)
		}
	} else {
		last := stops[len(stops)-1]
		b.push(stops[0].position, stops[0].variants[0].color)
		b.push(last.position, last.variants[len(last.variants)-1].color)
		count := len(b.positions)
		for i := 0; i < n; i++ {
			b.faces = append(b.faces,
				[3]int{count - 2, (i + 1) % n, i},
				[3]int{count - 1, count - 2 - n + i, count - 2 - n + (i+1)%n},
			)
		}
	}

	return &Trimesh{Positions: b.positions, Colors: b.colors, Faces: b.faces}, nil
}
