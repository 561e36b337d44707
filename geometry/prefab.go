package geometry

import "math"

// Cube returns an axis-aligned cube of the given side centered on center,
// with outward-facing triangles.
func Cube(side float64, center Vec3, color Vec3) *Trimesh {
	h := side / 2
	m := &Trimesh{}
	for i := 0; i < 8; i++ {
		x, y, z := -h, -h, -h
		if i&1 != 0 {
			x = h
		}
		if i&2 != 0 {
			y = h
		}
		if i&4 != 0 {
			z = h
		}
		m.Positions = append(m.Positions, center.Add(Vec3{x, y, z}))
	}
	m.Faces = [][3]int{
		{0, 2, 3}, {0, 3, 1}, // -z
		{4, 5, 7}, {4, 7, 6}, // +z
		{0, 1, 5}, {0, 5, 4}, // -y
		{2, 6, 7}, {2, 7, 3}, // +y
		{0, 4, 6}, {0, 6, 2}, // -x
		{1, 3, 7}, {1, 7, 5}, // +x
	}
	m.SetColor(color)
	return m
}

// Sphere returns a latitude/longitude sphere. nlon is the number of
// meridians and nlat the number of bands between the poles.
func Sphere(radius float64, center Vec3, nlon, nlat int, color Vec3) *Trimesh {
	if nlon < 3 {
		nlon = 3
	}
	if nlat < 2 {
		nlat = 2
	}
	m := &Trimesh{}
	m.Positions = append(m.Positions, center.Add(Vec3{0, 0, -radius}))
	for lat := 1; lat < nlat; lat++ {
		phi := math.Pi*float64(lat)/float64(nlat) - math.Pi/2
		for lon := 0; lon < nlon; lon++ {
			theta := 2 * math.Pi * float64(lon) / float64(nlon)
			m.Positions = append(m.Positions, center.Add(Vec3{
				radius * math.Cos(phi) * math.Cos(theta),
				radius * math.Cos(phi) * math.Sin(theta),
				radius * math.Sin(phi),
			}))
		}
	}
	north := len(m.Positions)
	m.Positions = append(m.Positions, center.Add(Vec3{0, 0, radius}))

	ring := func(lat, lon int) int { return 1 + (lat-1)*nlon + lon%nlon }
	for lon := 0; lon < nlon; lon++ {
		m.Faces = append(m.Faces, [3]int{0, ring(1, lon+1), ring(1, lon)})
	}
	for lat := 1; lat < nlat-1; lat++ {
		for lon := 0; lon < nlon; lon++ {
			a, b := ring(lat, lon), ring(lat, lon+1)
			c, d := ring(lat+1, lon), ring(lat+1, lon+1)
			m.Faces = append(m.Faces, [3]int{a, b, d}, [3]int{a, d, c})
		}
	}
	for lon := 0; lon < nlon; lon++ {
		m.Faces = append(m.Faces, [3]int{north, ring(nlat-1, lon), ring(nlat-1, lon+1)})
	}
	m.SetColor(color)
	return m
}
