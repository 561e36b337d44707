package vm

import (
	"testing"

	"github.com/chazu/madeup/compiler"
)

// ---------------------------------------------------------------------------
// Call records
// ---------------------------------------------------------------------------

func bindings(r *CallRecord) map[string]BindingKind {
	out := make(map[string]BindingKind)
	for _, p := range r.Parameters {
		out[p.Name] = p.Binding
	}
	return out
}

func TestCallRecordBindings(t *testing.T) {
	r := run(t, "moveto(x=1, y=2)")
	if len(r.Calls) != 1 {
		t.Fatalf("len(Calls) = %d, want 1", len(r.Calls))
	}
	rec := r.Calls[0]
	if rec.Function != "moveto" || rec.Description == "" {
		t.Errorf("record = %+v, want a documented moveto", rec)
	}
	want := map[string]BindingKind{
		"x":      Explicit,
		"y":      Explicit,
		"z":      Defaulted,
		"radius": Defaulted,
		"color":  Defaulted,
	}
	got := bindings(rec)
	for name, kind := range want {
		if got[name] != kind {
			t.Errorf("%s bound %v, want %v", name, got[name], kind)
		}
	}
	if rec.Span != (compiler.Span{LineStart: 0, LineEnd: 0, ColumnStart: 0, ColumnEnd: 16}) {
		t.Errorf("Span = %v, want 0:0:0:16", rec.Span)
	}
}

func TestCallRecordAutoscoping(t *testing.T) {
	r := run(t, "to area(width, height) = width * height\nwidth = 3\narea(height = 4)")
	if len(r.Calls) != 1 {
		t.Fatalf("len(Calls) = %d, want 1", len(r.Calls))
	}
	got := bindings(r.Calls[0])
	if got["width"] != Autoscoped || got["height"] != Explicit {
		t.Errorf("bindings = %v, want width autoscoped and height explicit", got)
	}
}

func TestCallRecordsInOrder(t *testing.T) {
	r := run(t, "moveto(x=0, y=0)\nmove(distance=1)\nyaw(degrees=90)")
	var names []string
	for _, c := range r.Calls {
		names = append(names, c.Function)
	}
	want := []string{"moveto", "move", "yaw"}
	if len(names) != len(want) {
		t.Fatalf("calls = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestFailedCallLeavesUnbound(t *testing.T) {
	r, err := Interpret("move(radius=1)", WithSeed(1))
	if err == nil {
		t.Fatal("expected a missing parameter error")
	}
	got := bindings(r.Calls[0])
	if got["distance"] != Unbound || got["radius"] != Explicit {
		t.Errorf("bindings = %v, want distance unbound and radius explicit", got)
	}
}

func TestBindingKindText(t *testing.T) {
	for kind, want := range map[BindingKind]string{
		Explicit:   "explicit",
		Autoscoped: "autoscoped",
		Defaulted:  "defaulted",
		Unbound:    "unbound",
	} {
		text, err := kind.MarshalText()
		if err != nil || string(text) != want {
			t.Errorf("MarshalText(%d) = %q, %v, want %q", kind, text, err, want)
		}
	}
}

// ---------------------------------------------------------------------------
// Parameter errors
// ---------------------------------------------------------------------------

func TestParameterTypeErrors(t *testing.T) {
	tests := []struct {
		source     string
		diagnostic string
	}{
		{"move(distance = \"far\")", "0:0:16:21:I expected distance to be a number, but it was a string."},
		{"dowel(nsides = 4.5)", "0:0:15:18:I expected nsides to be an integer, but it was a real."},
		{"polygon(flip = 1)", "0:0:15:16:I expected flip to be a boolean, but it was an integer."},
		{"moveto(x=0, y=0, color=[1, 0])", "0:0:23:29:I expected color to be a vector of three numbers, but it was a vector."},
	}
	for _, tt := range tests {
		err := runError(t, tt.source)
		if got := Diagnostic(err); got != tt.diagnostic {
			t.Errorf("%s: diagnostic = %q, want %q", tt.source, got, tt.diagnostic)
		}
	}
}

// An autoscoped parameter reports its problem at the call site.
func TestAutoscopedParameterErrorAtSite(t *testing.T) {
	err := runError(t, "radius = \"wide\"\nmove(distance = 1)")
	if got, want := Diagnostic(err), "1:1:0:18:I expected radius to be a number, but it was a string."; got != want {
		t.Errorf("diagnostic = %q, want %q", got, want)
	}
}
