package vm

import (
	"fmt"
	"math"
)

// Easing maps a proportion in [0, 1] to an eased proportion.
type Easing func(t float64) float64

var easings = map[string]Easing{
	"linear": func(t float64) float64 {
		return t
	},
	"nearest": func(t float64) float64 {
		if t <= 0.5 {
			return 0
		}
		return 1
	},
	"sineInOut": func(t float64) float64 {
		return 0.5 * (1 - math.Cos(math.Pi*t))
	},
	"quadraticInOut": func(t float64) float64 {
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t
	},
	"cubicInOut": func(t float64) float64 {
		if t < 0.5 {
			return 4 * t * t * t
		}
		return (t-1)*(2*t-2)*(2*t-2) + 1
	},
	"quarticInOut": func(t float64) float64 {
		if t < 0.5 {
			return 8 * math.Pow(t, 4)
		}
		return 1 - 8*math.Pow(t-1, 4)
	},
	"quinticInOut": func(t float64) float64 {
		if t < 0.5 {
			return 16 * math.Pow(t, 5)
		}
		return 1 + 16*math.Pow(t-1, 5)
	},
	"backInOut": func(t float64) float64 {
		const s = 1.70158 * 1.525
		t *= 2
		if t < 1 {
			return 0.5 * (t * t * ((s+1)*t - s))
		}
		t -= 2
		return 0.5 * (t*t*((s+1)*t+s) + 2)
	},
}

// LookupEasing returns the easing function with the given name.
func LookupEasing(method string) (Easing, bool) {
	e, ok := easings[method]
	return e, ok
}

// Interpolate blends from a to b by proportion t using the named easing.
// Numbers come out real, vectors blend elementwise, and booleans, strings
// and characters switch over at the midpoint.
func Interpolate(a, b Value, t float64, method string) (Value, error) {
	ease, ok := easings[method]
	if !ok {
		return nil, fmt.Errorf("I don't know an interpolation method named %s.", method)
	}
	return interpolate(a, b, ease(t), t)
}

func interpolate(a, b Value, eased, t float64) (Value, error) {
	if x, ok := number(a); ok {
		y, ok := number(b)
		if !ok {
			return nil, fmt.Errorf("I can't interpolate between %s and %s.", describe(a), describe(b))
		}
		return Real(x + (y-x)*eased), nil
	}

	switch x := a.(type) {
	case *Vector:
		y, ok := b.(*Vector)
		if !ok || len(x.Elements) != len(y.Elements) {
			return nil, fmt.Errorf("I can't interpolate between %s and %s.", describe(a), describe(b))
		}
		out := make([]Value, len(x.Elements))
		for i := range x.Elements {
			v, err := interpolate(x.Elements[i], y.Elements[i], eased, t)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return NewVector(out...), nil
	case Boolean, Character, *String:
		if a.Kind() != describeKind(b) {
			return nil, fmt.Errorf("I can't interpolate between %s and %s.", describe(a), describe(b))
		}
		if t <= 0.5 {
			return a, nil
		}
		return b, nil
	}
	return nil, fmt.Errorf("I can't interpolate between %s and %s.", describe(a), describe(b))
}

func describeKind(v Value) Kind {
	if v == nil {
		return kindCount
	}
	return v.Kind()
}
