package vm

import (
	"fmt"
	"math"

	"github.com/chazu/madeup/compiler"
	"github.com/chazu/madeup/geometry"
)

// ---------------------------------------------------------------------------
// Solidifiers
// ---------------------------------------------------------------------------
//
// Each solidifier seals the current path, builds geometry from it and adds
// the result to the run's meshes. The turtle carries on into a fresh path.

func nameFormal() FormalParameter {
	return FormalParameter{
		Name:        "name",
		Description: "A name for the object. It only identifies the object in exported files.",
		Default:     stringDefault(""),
	}
}

// solid finishes a solidifier: it names the mesh and adds it to the output.
func solid(c *Call, m *geometry.Trimesh, err error) (Value, error) {
	if err != nil {
		return nil, err
	}
	return c.vm.addMesh(c.Name(), m), nil
}

// perVertexName names the mesh built at vertex i of an n-vertex path.
func perVertexName(name string, i, n int) string {
	if name == "" || n == 1 {
		return name
	}
	return fmt.Sprintf("%s-%d", name, i)
}

func registerGeometryBuiltins(b *registryBuilder) {
	b.add(&FunctionDefinition{
		Name:        "mold",
		Description: "Seal the current path and return it as a reusable form.",
		Native: func(c *Call) (Value, error) {
			return &PathValue{Path: c.vm.seal()}, nil
		},
	})

	b.add(&FunctionDefinition{
		Name:        "rotate",
		Description: "Return a rotated copy of a path.",
		Formals: []FormalParameter{
			{Name: "path", Description: "The path to rotate."},
			degreesFormal("How far to rotate the path."),
			{Name: "axis", Description: "The axis of rotation."},
			{Name: "origin", Description: "A point on the axis of rotation.", Default: vectorDefault(geometry.Vec3{})},
		},
		Native: func(c *Call) (Value, error) {
			pv, ok := c.Value("path").(*PathValue)
			if !ok {
				return nil, c.expected("path", "a path")
			}
			degrees, err := c.Degrees("degrees")
			if err != nil {
				return nil, err
			}
			axis, err := c.Vec3("axis")
			if err != nil {
				return nil, err
			}
			origin, err := c.Vec3("origin")
			if err != nil {
				return nil, err
			}
			rotated := pv.Path.Transformed(geometry.RotateAround(axis.Normalize(), degrees, origin))
			c.vm.insertPath(rotated)
			return &PathValue{Path: rotated}, nil
		},
	})

	b.add(&FunctionDefinition{
		Name:        "dowel",
		Description: "Thicken the path into a solid tube whose cross section is a regular polygon.",
		Formals: []FormalParameter{
			{Name: "nsides", Description: "The number of sides of the cross section. 4 makes a square tube.", Default: intDefault(4)},
			{Name: "twist", Description: "How far to turn the cross section about the tube's axis, in degrees.", Default: realDefault(0)},
			{Name: "sharpness", Description: "The largest bend, in degrees, that stays sharp. Larger bends are rounded.", Default: realDefault(360)},
			nameFormal(),
		},
		Native: func(c *Call) (Value, error) {
			sides, err := c.Integer("nsides")
			if err != nil {
				return nil, err
			}
			if sides < 3 {
				return nil, c.Errorf("nsides", "%s", geometry.ErrDowelSides.Error())
			}
			twist, err := c.Degrees("twist")
			if err != nil {
				return nil, err
			}
			sharpness, err := c.Degrees("sharpness")
			if err != nil {
				return nil, err
			}
			if !(sharpness > 0) {
				return nil, c.Errorf("sharpness", "%s", geometry.ErrDowelSharpness.Error())
			}
			m, err := geometry.Dowel(c.vm.seal(), geometry.DowelOptions{Sides: int(sides), Twist: twist, Sharpness: sharpness})
			return solid(c, m, err)
		},
	})

	b.add(&FunctionDefinition{
		Name:        "revolve",
		Description: "Sweep the path around an axis to make a solid.",
		Formals: []FormalParameter{
			degreesFormal("How far to sweep, between -360 and 360."),
			{Name: "nsides", Description: "The number of steps in the sweep. More steps make a smoother surface.", Default: intDefault(4)},
			{Name: "axis", Description: "The axis to sweep around.", Default: vectorDefault(geometry.V(0, 1, 0))},
			{Name: "origin", Description: "A point on the axis.", Default: vectorDefault(geometry.Vec3{})},
			nameFormal(),
		},
		Native: func(c *Call) (Value, error) {
			degrees, err := c.Degrees("degrees")
			if err != nil {
				return nil, err
			}
			if degrees < -360 || degrees > 360 {
				return nil, c.Errorf("degrees", "%s", geometry.ErrRevolveDegrees.Error())
			}
			sides, err := c.Integer("nsides")
			if err != nil {
				return nil, err
			}
			if sides < 1 {
				return nil, c.Errorf("nsides", "%s", geometry.ErrRevolveSides.Error())
			}
			axis, err := c.Vec3("axis")
			if err != nil {
				return nil, err
			}
			origin, err := c.Vec3("origin")
			if err != nil {
				return nil, err
			}
			m, err := geometry.Revolve(c.vm.seal(), geometry.RevolveOptions{
				Sides:   int(sides),
				Degrees: degrees,
				Axis:    axis,
				Origin:  origin,
			})
			return solid(c, m, err)
		},
	})

	b.add(&FunctionDefinition{
		Name:        "extrude",
		Description: "Sweep the path along a straight line to make a solid.",
		Formals: []FormalParameter{
			{Name: "axis", Description: "The direction to sweep in."},
			{Name: "distance", Description: "How far to sweep."},
			nameFormal(),
		},
		Native: func(c *Call) (Value, error) {
			axis, err := c.Vec3("axis")
			if err != nil {
				return nil, err
			}
			if axis.Length() == 0 {
				return nil, c.Errorf("axis", "I expected the axis of extrude to have a direction.")
			}
			distance, err := c.Number("distance")
			if err != nil {
				return nil, err
			}
			m, err := geometry.Extrude(c.vm.seal(), axis, distance)
			return solid(c, m, err)
		},
	})

	b.add(&FunctionDefinition{
		Name:        "polygon",
		Description: "Fill the path in to make a flat object.",
		Formals: []FormalParameter{
			{Name: "flip", Description: "Whether to turn the polygon over by reversing its winding.", Default: boolDefault(false)},
			nameFormal(),
		},
		Native: func(c *Call) (Value, error) {
			flip, err := c.Boolean("flip")
			if err != nil {
				return nil, err
			}
			m, err := geometry.Polygon(c.vm.seal(), flip)
			return solid(c, m, err)
		},
	})

	b.add(&FunctionDefinition{
		Name:        "table",
		Description: "Connect a sequence of cross sections into a surface. Every cross section has the same number of vertices.",
		Formals: []FormalParameter{
			{Name: "rows", Description: "A vector of paths, each joined to its neighbors."},
			nameFormal(),
		},
		Native: func(c *Call) (Value, error) {
			rows, err := c.Vector("rows")
			if err != nil {
				return nil, err
			}
			paths := make([]*geometry.Path, len(rows.Elements))
			for i, e := range rows.Elements {
				pv, ok := e.(*PathValue)
				if !ok {
					return nil, c.Errorf("rows", "I expected row %d of table to be a path, but it was %s.", i, describe(e))
				}
				paths[i] = pv.Path
			}
			m, err := geometry.Table(paths)
			return solid(c, m, err)
		},
	})

	b.add(&FunctionDefinition{
		Name:        "mesh",
		Description: "Make a solid from explicit vertices and faces.",
		Formals: []FormalParameter{
			{Name: "positions", Description: "The 3-D positions of the vertices."},
			{Name: "colors", Description: "The colors of the individual vertices. When empty every vertex gets the default color.", Default: &compiler.VectorLiteral{}},
			{Name: "faces", Description: "Triples of vertex indices, one per triangle."},
			nameFormal(),
		},
		Native: func(c *Call) (Value, error) {
			positions, err := vec3List(c, "positions")
			if err != nil {
				return nil, err
			}
			colors, err := vec3List(c, "colors")
			if err != nil {
				return nil, err
			}
			faces, err := faceList(c)
			if err != nil {
				return nil, err
			}
			m, err := geometry.RawMesh(positions, faces, defaultColor)
			if err != nil {
				return nil, err
			}
			if len(colors) > 0 {
				m.Colors = colors
				if err := m.Validate(); err != nil {
					return nil, c.Errorf("colors", "I couldn't build this mesh: %s.", err)
				}
			}
			return c.vm.addMesh(c.Name(), m), nil
		},
	})

	cubes := func(c *Call) (Value, error) {
		p := c.vm.seal()
		name := c.Name()
		for i, v := range p.Vertices {
			c.vm.addMesh(perVertexName(name, i, len(p.Vertices)), geometry.Cube(v.Radius*2, v.Position, v.Color))
		}
		return nil, nil
	}
	spheres := func(c *Call) (Value, error) {
		sides, err := c.Integer("nsides")
		if err != nil {
			return nil, err
		}
		if sides < 3 {
			return nil, c.Errorf("nsides", "I expected spheres to have at least three sides.")
		}
		p := c.vm.seal()
		name := c.Name()
		nlat := int(math.Ceil(float64(sides) / 2))
		for i, v := range p.Vertices {
			c.vm.addMesh(perVertexName(name, i, len(p.Vertices)), geometry.Sphere(v.Radius, v.Position, int(sides), nlat, v.Color))
		}
		return nil, nil
	}
	for _, name := range []string{"cubes", "cube"} {
		b.add(&FunctionDefinition{
			Name:        name,
			Description: "Place a cube at every vertex of the path.",
			Formals:     []FormalParameter{nameFormal()},
			Native:      cubes,
		})
	}
	for _, name := range []string{"spheres", "sphere"} {
		b.add(&FunctionDefinition{
			Name:        name,
			Description: "Place a sphere at every vertex of the path.",
			Formals: []FormalParameter{
				{Name: "nsides", Description: "The number of lines of longitude on each sphere.", Default: intDefault(4)},
				nameFormal(),
			},
			Native: spheres,
		})
	}
}

func vec3List(c *Call, name string) ([]geometry.Vec3, error) {
	list, err := c.Vector(name)
	if err != nil {
		return nil, err
	}
	out := make([]geometry.Vec3, len(list.Elements))
	for i, e := range list.Elements {
		v, ok := vec3(e)
		if !ok {
			return nil, c.Errorf(name, "I expected element %d of %s to be a vector of three numbers, but it was %s.", i, name, describe(e))
		}
		out[i] = v
	}
	return out, nil
}

func faceList(c *Call) ([][3]int, error) {
	list, err := c.Vector("faces")
	if err != nil {
		return nil, err
	}
	out := make([][3]int, len(list.Elements))
	for i, e := range list.Elements {
		face, ok := e.(*Vector)
		if !ok || len(face.Elements) != 3 {
			return nil, c.Errorf("faces", "I expected face %d to be a vector of three integer indices.", i)
		}
		for j, index := range face.Elements {
			n, ok := index.(Integer)
			if !ok {
				return nil, c.Errorf("faces", "I expected face %d to be a vector of three integer indices.", i)
			}
			out[i][j] = int(n)
		}
	}
	return out, nil
}
