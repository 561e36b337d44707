package vm

import (
	"testing"
)

func TestEasingEndpoints(t *testing.T) {
	for name := range easings {
		for _, tt := range []struct {
			t, want float64
		}{
			{0, 0},
			{1, 10},
		} {
			v, err := Interpolate(Integer(0), Integer(10), tt.t, name)
			if err != nil {
				t.Fatalf("%s: %v", name, err)
			}
			if got, _ := number(v); !near(got, tt.want) {
				t.Errorf("%s at %v = %v, want %v", name, tt.t, got, tt.want)
			}
		}
	}
}

func TestEasingMidpoint(t *testing.T) {
	for name := range easings {
		want := 5.0
		if name == "nearest" {
			want = 0
		}
		v, err := Interpolate(Integer(0), Integer(10), 0.5, name)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got, _ := number(v); !near(got, want) {
			t.Errorf("%s at 0.5 = %v, want %v", name, got, want)
		}
	}
}

func TestInterpolateKinds(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		t    float64
		want Value
	}{
		{"integers become reals", Integer(0), Integer(4), 0.25, Real(1)},
		{"vectors blend elementwise", ints(0, 10), ints(10, 20), 0.5, reals(5, 15)},
		{"booleans switch late", Boolean(false), Boolean(true), 0.5, Boolean(false)},
		{"booleans after midpoint", Boolean(false), Boolean(true), 0.6, Boolean(true)},
		{"strings", NewString("a"), NewString("b"), 0.9, NewString("b")},
		{"characters", Character('a'), Character('z'), 0.1, Character('a')},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Interpolate(tt.a, tt.b, tt.t, "linear")
			if err != nil {
				t.Fatal(err)
			}
			if got.Kind() != tt.want.Kind() || !equal(got, tt.want) {
				t.Errorf("Interpolate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInterpolateErrors(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Value
		method string
	}{
		{"mismatched kinds", Integer(1), NewString("x"), "linear"},
		{"mismatched lengths", ints(1, 2), ints(1), "linear"},
		{"boolean and string", Boolean(true), NewString("x"), "linear"},
		{"unknown method", Integer(0), Integer(1), "bounce"},
	}
	for _, tt := range tests {
		if _, err := Interpolate(tt.a, tt.b, 0.5, tt.method); err == nil {
			t.Errorf("%s: expected an error", tt.name)
		}
	}
}

func TestInterpolateBuiltin(t *testing.T) {
	v := value(t, "interpolate(start = 0, end = 10, proportion = 0.25, method = :quadraticInOut)")
	if got, _ := number(v); !near(got, 1.25) {
		t.Errorf("interpolate = %v, want 1.25", v)
	}
	if _, ok := LookupEasing("sineInOut"); !ok {
		t.Error("LookupEasing(sineInOut) failed")
	}
}
