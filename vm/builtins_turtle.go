package vm

import (
	"math"

	"github.com/chazu/madeup/geometry"
)

// ---------------------------------------------------------------------------
// Turtle motion
// ---------------------------------------------------------------------------

var defaultColor = geometry.V(1, 0.5, 0)

func radiusFormal() FormalParameter {
	return FormalParameter{
		Name:        "radius",
		Description: "The radius of the vertex. It matters only when the path becomes a dowel, cubes or spheres.",
		Default:     realDefault(0.5),
	}
}

func colorFormal() FormalParameter {
	return FormalParameter{
		Name:        "color",
		Description: "The color of the vertex.",
		Default:     vectorDefault(defaultColor),
	}
}

func degreesFormal(description string) FormalParameter {
	return FormalParameter{Name: "degrees", Description: description}
}

// travel moves a copy of the turtle and records a vertex where it lands.
func travel(c *Call, move func(t *geometry.Turtle) error) (Value, error) {
	radius, err := c.Number("radius")
	if err != nil {
		return nil, err
	}
	color, err := c.Vec3("color")
	if err != nil {
		return nil, err
	}
	t := c.vm.turtle()
	if err := move(&t); err != nil {
		return nil, err
	}
	if err := c.vm.visit(t, radius, color); err != nil {
		return nil, err
	}
	return nil, nil
}

// turn rotates the turtle in place without recording a vertex.
func turn(rotate func(t *geometry.Turtle, degrees float64)) NativeFunc {
	return func(c *Call) (Value, error) {
		degrees, err := c.Degrees("degrees")
		if err != nil {
			return nil, err
		}
		c.vm.steer(func(t *geometry.Turtle) { rotate(t, degrees) })
		return nil, nil
	}
}

func registerTurtleBuiltins(b *registryBuilder) {
	b.add(&FunctionDefinition{
		Name:        "moveto",
		Description: "Move to a position in 3-D space.",
		Formals: []FormalParameter{
			{Name: "x", Description: "The x-coordinate of the position."},
			{Name: "y", Description: "The y-coordinate of the position."},
			{Name: "z", Description: "The z-coordinate of the position.", Default: realDefault(0)},
			radiusFormal(),
			colorFormal(),
		},
		Native: func(c *Call) (Value, error) {
			return travel(c, func(t *geometry.Turtle) error {
				var p [3]float64
				for i, name := range []string{"x", "y", "z"} {
					n, err := c.Number(name)
					if err != nil {
						return err
					}
					p[i] = n
				}
				t.Relocate(geometry.V(p[0], p[1], p[2]))
				return nil
			})
		},
	})

	b.add(&FunctionDefinition{
		Name:        "polarto",
		Description: "Move to a position given in 2-D polar coordinates.",
		Formals: []FormalParameter{
			{Name: "distance", Description: "How far the position lies from the origin."},
			degreesFormal("The angle of the position, measured from the positive x-axis."),
			{Name: "origin", Description: "The center of the circle the coordinates are measured in.", Default: vectorDefault(geometry.Vec3{})},
			radiusFormal(),
			colorFormal(),
		},
		Native: func(c *Call) (Value, error) {
			return travel(c, func(t *geometry.Turtle) error {
				distance, err := c.Number("distance")
				if err != nil {
					return err
				}
				degrees, err := c.Degrees("degrees")
				if err != nil {
					return err
				}
				origin, err := c.Vec3("origin")
				if err != nil {
					return err
				}
				radians := degrees * math.Pi / 180
				t.Relocate(geometry.V(
					distance*math.Cos(radians)+origin.X,
					distance*math.Sin(radians)+origin.Y,
					origin.Z,
				))
				return nil
			})
		},
	})

	b.add(&FunctionDefinition{
		Name:        "move",
		Description: "Move forward or backward along the current heading.",
		Formals: []FormalParameter{
			{Name: "distance", Description: "How far to move. Positive distances move forward and negative ones move backward."},
			radiusFormal(),
			colorFormal(),
		},
		Native: func(c *Call) (Value, error) {
			return travel(c, func(t *geometry.Turtle) error {
				distance, err := c.Number("distance")
				if err != nil {
					return err
				}
				t.Advance(distance)
				return nil
			})
		},
	})

	b.add(&FunctionDefinition{
		Name:        "stay",
		Description: "Record another vertex at the current position, possibly with a different radius or color.",
		Formals:     []FormalParameter{radiusFormal(), colorFormal()},
		Native: func(c *Call) (Value, error) {
			return travel(c, func(*geometry.Turtle) error { return nil })
		},
	})

	b.add(&FunctionDefinition{
		Name:        "yaw",
		Description: "Turn left or right about the turtle's up axis without recording a vertex.",
		Formals:     []FormalParameter{degreesFormal("How far to turn. Positive angles turn left.")},
		Native:      turn((*geometry.Turtle).Yaw),
	})

	b.add(&FunctionDefinition{
		Name:        "pitch",
		Description: "Turn up or down about the turtle's right axis without recording a vertex.",
		Formals:     []FormalParameter{degreesFormal("How far to turn. Positive angles raise the nose.")},
		Native:      turn((*geometry.Turtle).Pitch),
	})

	b.add(&FunctionDefinition{
		Name:        "roll",
		Description: "Turn about the turtle's forward axis without recording a vertex.",
		Formals:     []FormalParameter{degreesFormal("How far to turn.")},
		Native:      turn((*geometry.Turtle).Roll),
	})

	b.add(&FunctionDefinition{
		Name:        "home",
		Description: "Close the path by returning to its first vertex.",
		Native: func(c *Call) (Value, error) {
			p := c.vm.current()
			if len(p.Vertices) == 0 {
				return nil, errorAt(c.Site, "I expected home to be called on a non-empty path.")
			}
			first := p.Vertices[0]
			t := c.vm.turtle()
			t.Relocate(first.Position)
			if err := c.vm.visit(t, first.Radius, first.Color); err != nil {
				return nil, err
			}
			return nil, nil
		},
	})
}
