package vm

import (
	"math"

	"github.com/chazu/madeup/geometry"
)

// ---------------------------------------------------------------------------
// Member functions
// ---------------------------------------------------------------------------

func registerMemberFunctions(b *registryBuilder) {
	vector := func(name, description string, formals []FormalParameter, f func(c *Call, v *Vector) (Value, error)) {
		b.member(KindVector, &FunctionDefinition{
			Name:        name,
			Description: description,
			Formals:     formals,
			Native: func(c *Call) (Value, error) {
				return f(c, c.Host.(*Vector))
			},
		})
	}

	vector("size", "The number of elements in this vector.", nil, func(c *Call, v *Vector) (Value, error) {
		return Integer(len(v.Elements)), nil
	})

	vector("magnitude", "The length of this vector.", nil, func(c *Call, v *Vector) (Value, error) {
		m, err := magnitude(c, v)
		if err != nil {
			return nil, err
		}
		return Real(m), nil
	})

	vector("normalize", "A vector pointing the same way as this one with length 1.", nil, func(c *Call, v *Vector) (Value, error) {
		m, err := magnitude(c, v)
		if err != nil {
			return nil, err
		}
		out := make([]Value, len(v.Elements))
		for i, e := range v.Elements {
			n, _ := number(e)
			out[i] = Real(n / m)
		}
		return NewVector(out...), nil
	})

	vector("push", "Add an element to the end of this vector.", []FormalParameter{
		{Name: "item", Description: "The element to add."},
	}, func(c *Call, v *Vector) (Value, error) {
		item := c.Value("item")
		if item == nil {
			return nil, c.expected("item", "a value")
		}
		v.Elements = append(v.Elements, item)
		return v, nil
	})

	vector("pop", "Remove and return the last element of this vector.", nil, func(c *Call, v *Vector) (Value, error) {
		if len(v.Elements) == 0 {
			return nil, errorAt(c.Site, "I can't pop an element off an empty vector.")
		}
		last := v.Elements[len(v.Elements)-1]
		v.Elements = v.Elements[:len(v.Elements)-1]
		return last, nil
	})

	vector("rotate", "This 2-D vector turned counterclockwise about the origin.", []FormalParameter{
		degreesFormal("How far to turn."),
	}, func(c *Call, v *Vector) (Value, error) {
		x, y, err := planar(c, v)
		if err != nil {
			return nil, err
		}
		degrees, err := c.Degrees("degrees")
		if err != nil {
			return nil, err
		}
		rx, ry := rotate2(x, y, degrees)
		return NewVector(Real(rx), Real(ry)), nil
	})

	vector("rotateAround", "This 2-D vector turned counterclockwise about a pivot.", []FormalParameter{
		{Name: "pivot", Description: "The point to turn about."},
		degreesFormal("How far to turn."),
	}, func(c *Call, v *Vector) (Value, error) {
		x, y, err := planar(c, v)
		if err != nil {
			return nil, err
		}
		pivot, err := c.Vector("pivot")
		if err != nil {
			return nil, err
		}
		px, py, err := planar(c, pivot)
		if err != nil {
			return nil, err
		}
		degrees, err := c.Degrees("degrees")
		if err != nil {
			return nil, err
		}
		rx, ry := rotate2(x-px, y-py, degrees)
		return NewVector(Real(rx+px), Real(ry+py)), nil
	})

	vector("rotate90", "This 2-D vector turned a quarter turn clockwise.", nil, func(c *Call, v *Vector) (Value, error) {
		if len(v.Elements) < 2 {
			return nil, errorAt(c.Site, "I expected a vector of at least two elements.")
		}
		negated, err := applyNegate(v.Elements[0])
		if err != nil {
			return nil, err
		}
		return NewVector(v.Elements[1], negated), nil
	})

	vector("toCartesian", "Convert this [radius, degrees] pair from polar to Cartesian coordinates.", nil, func(c *Call, v *Vector) (Value, error) {
		if len(v.Elements) != 2 {
			return nil, errorAt(c.Site, "I can only convert a 2-D vector to Cartesian coordinates.")
		}
		r, rok := number(v.Elements[0])
		degrees, dok := number(v.Elements[1])
		if !rok || !dok {
			return nil, errorAt(c.Site, "I expected a vector of two numbers.")
		}
		radians := degrees * math.Pi / 180
		return NewVector(Real(r*math.Cos(radians)), Real(r*math.Sin(radians))), nil
	})

	b.member(KindString, &FunctionDefinition{
		Name:        "length",
		Description: "The number of characters in this string.",
		Native: func(c *Call) (Value, error) {
			return Integer(len([]rune(c.Host.(*String).Text))), nil
		},
	})

	b.member(KindMesh, &FunctionDefinition{
		Name:        "scale",
		Description: "A copy of this mesh scaled about a point. The copy replaces the original in the output.",
		Formals: []FormalParameter{
			{Name: "factors", Description: "The scale factors along x, y and z."},
			{Name: "origin", Description: "The point that stays fixed.", Default: vectorDefault(geometry.Vec3{})},
		},
		Native: func(c *Call) (Value, error) {
			original := c.Host.(*Mesh)
			factors, err := c.Vec3("factors")
			if err != nil {
				return nil, err
			}
			origin, err := c.Vec3("origin")
			if err != nil {
				return nil, err
			}
			scaled := &Mesh{Name: original.Name, Trimesh: original.Trimesh.Transformed(geometry.ScaleAround(factors, origin))}
			c.vm.replaceMesh(original, scaled)
			return scaled, nil
		},
	})
}

func magnitude(c *Call, v *Vector) (float64, error) {
	var sum float64
	for _, e := range v.Elements {
		n, ok := number(e)
		if !ok {
			return 0, errorAt(c.Site, "I expected a vector of numbers, but it holds %s.", describe(e))
		}
		sum += n * n
	}
	return math.Sqrt(sum), nil
}

func planar(c *Call, v *Vector) (float64, float64, error) {
	if len(v.Elements) < 2 {
		return 0, 0, errorAt(c.Site, "I expected a vector of at least two elements.")
	}
	x, xok := number(v.Elements[0])
	y, yok := number(v.Elements[1])
	if !xok || !yok {
		return 0, 0, errorAt(c.Site, "I expected a vector of numbers.")
	}
	return x, y, nil
}

func rotate2(x, y, degrees float64) (float64, float64) {
	radians := degrees * math.Pi / 180
	sin, cos := math.Sincos(radians)
	return x*cos - y*sin, x*sin + y*cos
}
