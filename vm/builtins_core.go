package vm

import (
	"math"

)

// ---------------------------------------------------------------------------
// Console, randomness and time
// ---------------------------------------------------------------------------

func registerCoreBuiltins(b *registryBuilder) {
	b.add(&FunctionDefinition{
		Name:        "print",
		Description: "Write a message to the console.",
		Formals: []FormalParameter{
			{Name: "message", Description: "The message to write."},
		},
		Native: func(c *Call) (Value, error) {
			c.vm.emit(pretty(c.Value("message")))
			return nil, nil
		},
	})

	b.add(&FunctionDefinition{
		Name:        "debug",
		Description: "Write some code to the console along with the value it produces.",
		Formals: []FormalParameter{
			{Name: "code", Description: "The expression to show and evaluate."},
		},
		Native: func(c *Call) (Value, error) {
			c.vm.emit(c.Source(c.span("code")) + ": " + pretty(c.Value("code")))
			return nil, nil
		},
	})

	b.add(&FunctionDefinition{
		Name: "seed",
		Description: "Restart the random number generator from a fixed value. Without a seed, each run " +
			"draws a different sequence from random; with one, the sequence repeats.",
		Formals: []FormalParameter{
			{Name: "value", Description: "The seed, which may be an integer, a real or a string."},
		},
		Native: func(c *Call) (Value, error) {
			if err := c.vm.random.Seed(c.Value("value")); err != nil {
				return nil, c.Errorf("value", "%s", err.Error())
			}
			return nil, nil
		},
	})

	b.add(&FunctionDefinition{
		Name: "random",
		Description: "Draw a random number from [min, max). When both bounds are integers the result " +
			"is an integer; otherwise it is a real.",
		Formals: []FormalParameter{
			{Name: "min", Description: "The smallest possible value.", Default: intDefault(0)},
			{Name: "max", Description: "The bound that the value stays below."},
		},
		Native: func(c *Call) (Value, error) {
			v, err := c.vm.random.Between(c.Value("min"), c.Value("max"))
			if err != nil {
				return nil, c.Errorf("max", "%s", err.Error())
			}
			return v, nil
		},
	})

	b.add(&FunctionDefinition{
		Name:        "time",
		Description: "The time of the run, which selects the active time windows.",
		Native: func(c *Call) (Value, error) {
			return Real(c.vm.cfg.clock), nil
		},
	})

	b.add(&FunctionDefinition{
		Name:        "interpolate",
		Description: "Blend between two values.",
		Formals: []FormalParameter{
			{Name: "start", Description: "The value at proportion 0."},
			{Name: "end", Description: "The value at proportion 1."},
			{Name: "proportion", Description: "How far to go from start toward end, usually in [0, 1]."},
			{Name: "method", Description: "The easing to apply, such as :linear or :sineInOut.", Default: stringDefault("linear")},
		},
		Native: func(c *Call) (Value, error) {
			t, err := c.Number("proportion")
			if err != nil {
				return nil, err
			}
			method, ok := c.Value("method").(*String)
			if !ok {
				return nil, c.expected("method", "an interpolation symbol")
			}
			v, err := Interpolate(c.Value("start"), c.Value("end"), t, method.Text)
			if err != nil {
				return nil, locate(err, c.Site)
			}
			return v, nil
		},
	})
}

// pretty renders a value for the console.
func pretty(v Value) string {
	if v == nil {
		return "nothing"
	}
	return v.String()
}

// ---------------------------------------------------------------------------
// Arithmetic and trigonometry
// ---------------------------------------------------------------------------

type unaryMath struct {
	name, description, formal, formalDescription string
	f                                            func(float64) float64
}

func registerMathBuiltins(b *registryBuilder) {
	degrees := func(f func(float64) float64) func(float64) float64 {
		return func(d float64) float64 { return f(d * math.Pi / 180) }
	}
	toDegrees := func(f func(float64) float64) func(float64) float64 {
		return func(x float64) float64 { return f(x) * 180 / math.Pi }
	}

	for _, m := range []unaryMath{
		{"sin", "The ratio of the opposite side to the hypotenuse of a right triangle.", "degrees", "The angle facing the opposite side.", degrees(math.Sin)},
		{"cos", "The ratio of the adjacent side to the hypotenuse of a right triangle.", "degrees", "The angle between the two sides.", degrees(math.Cos)},
		{"tan", "The ratio of the opposite side to the adjacent side of a right triangle.", "degrees", "The angle between the two sides.", degrees(math.Tan)},
		{"asin", "The angle of a right triangle with the given ratio of opposite side to hypotenuse.", "ratio", "The ratio of the two sides.", toDegrees(math.Asin)},
		{"acos", "The angle of a right triangle with the given ratio of adjacent side to hypotenuse.", "ratio", "The ratio of the two sides.", toDegrees(math.Acos)},
		{"atan", "The angle of a right triangle with the given ratio of opposite side to adjacent side.", "ratio", "The ratio of the two sides.", toDegrees(math.Atan)},
		{"sqrt", "The square root.", "x", "The number to take the square root of.", math.Sqrt},
	} {
		b.add(&FunctionDefinition{
			Name:        m.name,
			Description: m.description,
			Formals:     []FormalParameter{{Name: m.formal, Description: m.formalDescription}},
			Native: func(c *Call) (Value, error) {
				x, err := c.Number(m.formal)
				if err != nil {
					return nil, err
				}
				return Real(m.f(x)), nil
			},
		})
	}

	b.add(&FunctionDefinition{
		Name:        "atan2",
		Description: "The angle of a right triangle given its opposite and adjacent sides.",
		Formals: []FormalParameter{
			{Name: "a", Description: "The length of the opposite side."},
			{Name: "b", Description: "The length of the adjacent side."},
		},
		Native: func(c *Call) (Value, error) {
			a, b, err := pair(c)
			if err != nil {
				return nil, err
			}
			return Real(math.Atan2(a, b) * 180 / math.Pi), nil
		},
	})

	b.add(&FunctionDefinition{
		Name:        "hypotenuse",
		Description: "The hypotenuse of a right triangle given its other two sides.",
		Formals: []FormalParameter{
			{Name: "a", Description: "The length of one side."},
			{Name: "b", Description: "The length of the other side."},
		},
		Native: func(c *Call) (Value, error) {
			a, b, err := pair(c)
			if err != nil {
				return nil, err
			}
			return Real(math.Hypot(a, b)), nil
		},
	})

	b.add(&FunctionDefinition{
		Name:        "int",
		Description: "Convert a number to an integer by dropping its fraction.",
		Formals: []FormalParameter{
			{Name: "x", Description: "The number to convert."},
		},
		Native: func(c *Call) (Value, error) {
			x, err := c.Number("x")
			if err != nil {
				return nil, err
			}
			return Integer(math.Trunc(x)), nil
		},
	})
}

func pair(c *Call) (float64, float64, error) {
	a, err := c.Number("a")
	if err != nil {
		return 0, 0, err
	}
	b, err := c.Number("b")
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}
