package vm

import (
	"reflect"
	"testing"

	"github.com/chazu/madeup/compiler"
)

// ---------------------------------------------------------------------------
// Runs
// ---------------------------------------------------------------------------

func TestParseErrorsBecomeDiagnostics(t *testing.T) {
	var lines []string
	r, err := Interpret("repeat 3\nmove(distance=1)\n", WithLog(func(s string) { lines = append(lines, s) }))
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if len(lines) != 1 || lines[0] != Diagnostic(err) {
		t.Errorf("sink received %v, want [%q]", lines, Diagnostic(err))
	}
	if _, _, ok := ParseDiagnostic(r.Log[0]); !ok {
		t.Errorf("log line %q is not a located diagnostic", r.Log[0])
	}
}

func TestRenderMode(t *testing.T) {
	for _, tt := range []struct {
		text string
		want RenderMode
	}{
		{"solidify", Solidify},
		{"Pathify", Pathify},
		{"", Solidify},
	} {
		got, err := ParseRenderMode(tt.text)
		if err != nil || got != tt.want {
			t.Errorf("ParseRenderMode(%q) = %v, %v, want %v", tt.text, got, err, tt.want)
		}
	}
	if _, err := ParseRenderMode("sculpt"); err == nil {
		t.Error("ParseRenderMode(sculpt): expected an error")
	}

	var m RenderMode
	if err := m.UnmarshalText([]byte("pathify")); err != nil || m != Pathify {
		t.Errorf("UnmarshalText(pathify) = %v, %v", m, err)
	}
	if r := run(t, "stay", WithRenderMode(Pathify)); r.Mode != Pathify {
		t.Errorf("Result.Mode = %v, want pathify", r.Mode)
	}
}

func TestRunsAreIndependent(t *testing.T) {
	vm := New(WithSeed(1))
	if _, err := vm.Run("x = 1\nmoveto(x=0, y=0)"); err != nil {
		t.Fatal(err)
	}
	r, err := vm.Run("stay")
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Paths) != 1 || len(r.Paths[0].Vertices) != 1 {
		t.Errorf("second run paths = %+v, want a single one-vertex path", r.Paths)
	}
	if _, err := vm.Run("x"); err == nil {
		t.Error("x leaked from an earlier run")
	}
}

func TestFormatRoundTrip(t *testing.T) {
	source := "to f(a, b = 2) = a * b\nv = []\nfor i in 0..4\n  v.push(item = f(a = i))\nv"
	program, err := compiler.ParseSource(source)
	if err != nil {
		t.Fatal(err)
	}
	want := value(t, source)
	got := value(t, compiler.Format(program))
	if !equal(got, want) {
		t.Errorf("formatted program = %v, original = %v", got, want)
	}
}

// ---------------------------------------------------------------------------
// Logging
// ---------------------------------------------------------------------------

func TestLog(t *testing.T) {
	tests := []struct {
		source string
		want   []string
	}{
		{"print(message = \"hi\")", []string{"hi"}},
		{"print(message = 1.0)", []string{"1"}},
		{"print(message = 4.0)", []string{"4"}},
		{"print(message = 2.5)", []string{"2.5"}},
		{"print(message = 1000000.0)", []string{"1000000"}},
		{"print(message = [1.0, 0.5])", []string{"[1, 0.5]"}},
		{"print(message = [1, 'a'])", []string{"[1, a]"}},
		{"x = 2\ndebug(code = x * 3)", []string{"x * 3: 6"}},
		{"print(message = 1)\nprint(message = 2)", []string{"1", "2"}},
	}
	for _, tt := range tests {
		var sunk []string
		r := run(t, tt.source, WithLog(func(s string) { sunk = append(sunk, s) }))
		if !reflect.DeepEqual(r.Log, tt.want) {
			t.Errorf("%q: Log = %q, want %q", tt.source, r.Log, tt.want)
		}
		if !reflect.DeepEqual(sunk, tt.want) {
			t.Errorf("%q: sink = %q, want %q", tt.source, sunk, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// Randomness
// ---------------------------------------------------------------------------

func TestSeededRunsRepeat(t *testing.T) {
	source := "[random(max = 1000), random(max = 1000), random(min = 0.0, max = 1.0)]"
	a := value(t, source)
	b := value(t, source)
	if !equal(a, b) {
		t.Errorf("seeded runs differ: %v and %v", a, b)
	}

	reseeded := "seed(value = \"walnut\")\nx = random(max = 1000000)\nseed(value = \"walnut\")\ny = random(max = 1000000)\nx == y"
	if got := value(t, reseeded); got != Boolean(true) {
		t.Errorf("reseeding did not restart the stream")
	}
}

func TestRandomRange(t *testing.T) {
	for i := 0; i < 20; i++ {
		if got := value(t, "random(min = 5, max = 6)", WithSeed(int64(i))); got != Integer(5) {
			t.Fatalf("random(5, 6) = %v, want 5", got)
		}
	}
	v := value(t, "random(min = 1, max = 2.0)")
	r, ok := v.(Real)
	if !ok || r < 1 || r >= 2 {
		t.Errorf("random(1, 2.0) = %v, want a real in [1, 2)", v)
	}
}

func TestSeedRejectsVectors(t *testing.T) {
	err := runError(t, "seed(value = [1])")
	if err.Message != "I expected the seed to be an integer, real or string, but it was a vector." {
		t.Errorf("message = %q", err.Message)
	}
}

// ---------------------------------------------------------------------------
// Math builtins
// ---------------------------------------------------------------------------

func TestMathBuiltins(t *testing.T) {
	tests := []struct {
		source string
		want   float64
	}{
		{"sin(degrees = 90)", 1},
		{"cos(degrees = 180)", -1},
		{"asin(ratio = 1)", 90},
		{"atan2(a = 1, b = 1)", 45},
		{"hypotenuse(a = 3, b = 4)", 5},
		{"sqrt(x = 16)", 4},
		{"time()", 2.5},
	}
	for _, tt := range tests {
		got, ok := number(value(t, tt.source, WithTime(2.5)))
		if !ok || !near(got, tt.want) {
			t.Errorf("%s = %v, want %v", tt.source, got, tt.want)
		}
	}
	if got := value(t, "int(x = -2.7)"); got != Integer(-2) {
		t.Errorf("int(-2.7) = %v, want -2", got)
	}
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

func TestSession(t *testing.T) {
	s := NewSession(WithSeed(1))
	if _, err := s.Eval("to sq(x) = x * x"); err != nil {
		t.Fatal(err)
	}
	v, err := s.Eval("y = sq(x = 4)")
	if err != nil {
		t.Fatal(err)
	}
	if v != Integer(16) {
		t.Errorf("y = %v, want 16", v)
	}
	if got := s.Variables(); !reflect.DeepEqual(got, []string{"y"}) {
		t.Errorf("Variables() = %v, want [y]", got)
	}
	if got := s.Functions(); !reflect.DeepEqual(got, []string{"sq"}) {
		t.Errorf("Functions() = %v, want [sq]", got)
	}

	if _, err := s.Eval("z = nope"); err == nil {
		t.Fatal("expected an error")
	}
	if v, err := s.Eval("y + 1"); err != nil || v != Integer(17) {
		t.Errorf("after a failed chunk y + 1 = %v, %v, want 17", v, err)
	}

	if _, err := s.Eval("moveto(x=0, y=0)\nmoveto(x=1, y=0)"); err != nil {
		t.Fatal(err)
	}
	if r := s.Result(); len(r.Paths) != 1 || len(r.Paths[0].Vertices) != 2 {
		t.Errorf("session paths = %+v, want one path of two vertices", r.Paths)
	}

	s.Reset()
	if got := s.Variables(); len(got) != 0 {
		t.Errorf("Variables() after Reset = %v, want none", got)
	}
}

// ---------------------------------------------------------------------------
// Trace
// ---------------------------------------------------------------------------

func TestTrace(t *testing.T) {
	r := run(t, "x = 1 + 2", WithTrace())
	if r.Trace.Len() == 0 {
		t.Fatal("trace is empty")
	}

	e, ok := r.Trace.At(0, 4)
	if !ok || e.Value != Integer(1) {
		t.Errorf("At(0, 4) = %+v, want the literal 1", e)
	}

	e, ok = r.Trace.At(0, 6)
	if !ok {
		t.Fatal("At(0, 6) found nothing")
	}
	if _, isBinary := e.Node.(*compiler.Binary); !isBinary || e.Value != Integer(3) {
		t.Errorf("At(0, 6) = %T %v, want the sum 3", e.Node, e.Value)
	}
	if len(e.Prevalues) != 2 || e.Prevalues[0] != Integer(1) || e.Prevalues[1] != Integer(2) {
		t.Errorf("Prevalues = %v, want [1 2]", e.Prevalues)
	}

	if _, ok := r.Trace.At(3, 0); ok {
		t.Error("At(3, 0) found an entry past the end of the program")
	}
}

func TestTraceDisabled(t *testing.T) {
	if r := run(t, "x = 1"); r.Trace.Len() != 0 {
		t.Errorf("Trace.Len() = %d without WithTrace, want 0", r.Trace.Len())
	}
}

// ---------------------------------------------------------------------------
// Registry
// ---------------------------------------------------------------------------

func TestBuiltinRegistry(t *testing.T) {
	r := Builtins()
	for _, name := range []string{
		"print", "debug", "seed", "random", "sin", "cos", "tan", "asin", "acos", "atan", "atan2",
		"hypotenuse", "sqrt", "int", "time", "interpolate", "moveto", "polarto", "move", "stay",
		"yaw", "pitch", "roll", "home", "mold", "rotate", "dowel", "revolve", "extrude", "polygon",
		"table", "mesh", "cubes", "spheres",
	} {
		f, ok := r.Lookup(name)
		if !ok {
			t.Errorf("builtin %s is missing", name)
			continue
		}
		if f.Description == "" {
			t.Errorf("builtin %s has no description", name)
		}
	}

	fs := r.Functions()
	for i := 1; i < len(fs); i++ {
		if fs[i-1].Name >= fs[i].Name {
			t.Errorf("Functions() not sorted at %s, %s", fs[i-1].Name, fs[i].Name)
		}
	}

	var members []string
	for _, f := range r.Members(KindVector) {
		members = append(members, f.Name)
	}
	want := []string{"magnitude", "normalize", "pop", "push", "rotate", "rotate90", "rotateAround", "size", "toCartesian"}
	if !reflect.DeepEqual(members, want) {
		t.Errorf("vector members = %v, want %v", members, want)
	}
}

func TestRegistryWith(t *testing.T) {
	answer := &FunctionDefinition{
		Name:   "answer",
		Native: func(c *Call) (Value, error) { return Integer(42), nil },
	}
	r := Builtins().With(answer)
	if got := value(t, "answer()", WithBuiltins(r)); got != Integer(42) {
		t.Errorf("answer() = %v, want 42", got)
	}
	if _, ok := Builtins().Lookup("answer"); ok {
		t.Error("With modified the shared registry")
	}
}

func TestSignature(t *testing.T) {
	f, _ := Builtins().Lookup("move")
	if got, want := f.Signature(), "move(distance, radius = 0.5, color = [1.0, 0.5, 0.0])"; got != want {
		t.Errorf("Signature() = %q, want %q", got, want)
	}
}
