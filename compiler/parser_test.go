package compiler

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func mustParse(t *testing.T, source string) *Block {
	t.Helper()
	program, err := ParseSource(source)
	if err != nil {
		t.Fatalf("ParseSource(%q) error: %v", source, err)
	}
	return program
}

func single(t *testing.T, source string) Expr {
	t.Helper()
	program := mustParse(t, source)
	if len(program.Statements) != 1 {
		t.Fatalf("ParseSource(%q): got %d statements, want 1", source, len(program.Statements))
	}
	return program.Statements[0]
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "1 + 2 * 3"},
		{"(1 + 2) * 3", "(1 + 2) * 3"},
		{"1 - 2 - 3", "1 - 2 - 3"},
		{"1 - (2 - 3)", "1 - (2 - 3)"},
		{"2 ^ 3 ^ 2", "2 ^ 3 ^ 2"},
		{"-x ^ 2", "-x ^ 2"},
		{"(-x) ^ 2", "(-x) ^ 2"},
		{"a < b == c >= d", "a < b == c >= d"},
		{"x = y = 3", "x = y = 3"},
		{"v.x + v[1]", "v.x + v[1]"},
		{"p.rotate(degrees=90)", "p.rotate(degrees = 90)"},
	}

	for _, tc := range tests {
		got := Format(single(t, tc.input))
		if got != tc.want {
			t.Errorf("Format(parse(%q)) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParseBinaryShape(t *testing.T) {
	e := single(t, "1 + 2 * 3")
	add, ok := e.(*Binary)
	if !ok || add.Operator != OpAdd {
		t.Fatalf("root = %T, want + Binary", e)
	}
	mul, ok := add.Right.(*Binary)
	if !ok || mul.Operator != OpMultiply {
		t.Fatalf("right = %T, want * Binary", add.Right)
	}
}

func TestParseCallActuals(t *testing.T) {
	e := single(t, "dowel(nsides=8, twist, [x, y] = v)")
	call, ok := e.(*Call)
	if !ok {
		t.Fatalf("statement = %T, want *Call", e)
	}
	if call.Name != "dowel" {
		t.Errorf("name = %q, want dowel", call.Name)
	}
	if len(call.Actuals) != 3 {
		t.Fatalf("actuals = %d, want 3", len(call.Actuals))
	}
	if call.Actuals[0].Names[0] != "nsides" || call.Actuals[0].Value == nil {
		t.Errorf("actual[0] = %+v, want nsides with a value", call.Actuals[0])
	}
	if call.Actuals[1].Names[0] != "twist" || call.Actuals[1].Value != nil {
		t.Errorf("actual[1] = %+v, want autoscopic twist", call.Actuals[1])
	}
	if !call.Actuals[2].Destructure || len(call.Actuals[2].Names) != 2 {
		t.Errorf("actual[2] = %+v, want destructuring of two names", call.Actuals[2])
	}
}

func TestParseMultilineCall(t *testing.T) {
	source := "moveto(\n  x = 1,\n  y = 2\n)\nmove(distance=1)\n"
	program := mustParse(t, source)
	if len(program.Statements) != 2 {
		t.Fatalf("statements = %d, want 2", len(program.Statements))
	}
	call := program.Statements[0].(*Call)
	if len(call.Actuals) != 2 {
		t.Errorf("actuals = %d, want 2", len(call.Actuals))
	}
}

func TestParseMultilineVectorWithRepeat(t *testing.T) {
	source := "v = [\n  1,\n  ~,\n  3\n]\n"
	e := single(t, source)
	vec := e.(*Assignment).Value.(*VectorLiteral)
	if len(vec.Elements) != 3 {
		t.Fatalf("elements = %d, want 3", len(vec.Elements))
	}
	if _, ok := vec.Elements[1].(*RepeatPrevious); !ok {
		t.Errorf("element[1] = %T, want *RepeatPrevious", vec.Elements[1])
	}
}

func TestParseBlocks(t *testing.T) {
	source := `repeat 4
  move(distance=1)
  yaw(degrees=90)
around
  stay
for i in 0..3 by 1
  print(message=i)
for x of [1, 2]
  print(message=x)
`
	program := mustParse(t, source)
	if len(program.Statements) != 3 {
		t.Fatalf("statements = %d, want 3", len(program.Statements))
	}
	ra, ok := program.Statements[0].(*RepeatAround)
	if !ok {
		t.Fatalf("statement[0] = %T, want *RepeatAround", program.Statements[0])
	}
	if len(ra.Body.Statements) != 2 || len(ra.Around.Statements) != 1 {
		t.Errorf("repeat body/around = %d/%d statements, want 2/1", len(ra.Body.Statements), len(ra.Around.Statements))
	}
	loop, ok := program.Statements[1].(*For)
	if !ok || loop.Form != ForIn || loop.By == nil {
		t.Errorf("statement[1] = %#v, want for-in with by", program.Statements[1])
	}
	if _, ok := program.Statements[2].(*ForOf); !ok {
		t.Errorf("statement[2] = %T, want *ForOf", program.Statements[2])
	}
}

func TestParseIfForms(t *testing.T) {
	oneLine := single(t, "x = if a then 1 else if b then 2 else 3").(*Assignment).Value.(*If)
	if len(oneLine.Conditions) != 2 || oneLine.Alternative == nil {
		t.Errorf("one-line if: %d conditions, alternative %v", len(oneLine.Conditions), oneLine.Alternative)
	}

	source := `if a
  print(message=1)
else if b
  print(message=2)
else
  print(message=3)
`
	blockIf := single(t, source).(*If)
	if len(blockIf.Conditions) != 2 {
		t.Errorf("block if conditions = %d, want 2", len(blockIf.Conditions))
	}
	if _, ok := blockIf.Alternative.(*Block); !ok {
		t.Errorf("alternative = %T, want *Block", blockIf.Alternative)
	}
}

func TestParseFunctionDefinitions(t *testing.T) {
	source := `to double(x) = x * 2
to ring(n, r = 1)
  repeat n
    move(distance=r)
`
	program := mustParse(t, source)
	if len(program.Statements) != 2 {
		t.Fatalf("statements = %d, want 2", len(program.Statements))
	}
	ring := program.Statements[1].(*FunctionDefinition)
	if ring.Name != "ring" || len(ring.Formals) != 2 {
		t.Fatalf("definition = %+v", ring)
	}
	if ring.Formals[0].Default != nil || ring.Formals[1].Default == nil {
		t.Errorf("defaults: n=%v r=%v, want only r defaulted", ring.Formals[0].Default, ring.Formals[1].Default)
	}
}

func TestParseTimeWindows(t *testing.T) {
	source := "with 1 -> 2\n  stay\nwith -> 3\n  stay\nwith 4 ->\n  stay\n"
	program := mustParse(t, source)
	if len(program.Statements) != 3 {
		t.Fatalf("statements = %d, want 3", len(program.Statements))
	}
	last := program.Statements[2].(*TimeWindow)
	if last.From == nil || last.To != nil {
		t.Errorf("with 4 -> has From=%v To=%v", last.From, last.To)
	}
}

func TestParseSymbols(t *testing.T) {
	e := single(t, "c = :orange")
	vec, ok := e.(*Assignment).Value.(*VectorLiteral)
	if !ok || len(vec.Elements) != 3 {
		t.Fatalf(":orange = %T, want a 3-vector", e.(*Assignment).Value)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty block", "repeat 3\nmove(distance=1)\n", "empty block"},
		{"empty block at end", "repeat 3\n", "empty block"},
		{"indentation jump", "repeat 3\n    move(distance=1)\n  stay\n", "jumps around"},
		{"top-level indent", "  x = 1\n", "jumps around"},
		{"positional actual", "move(1)", "parameters to be named"},
		{"duplicate actual", "move(distance=1, distance=2)", "more than once"},
		{"leading tilde", "[~, 1]", "~ at the start"},
		{"unknown symbol", "x = :nope", "symbol :nope"},
		{"missing paren", "move(distance=1", "to close the call"},
		{"bad assignment", "1 = 2", "can't assign"},
		{"trailing junk", "x = 1 2", "I expected a linebreak"},
		{"unexpected token", "x = )", `")"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSource(tc.input)
			if err == nil {
				t.Fatalf("ParseSource(%q): expected error", tc.input)
			}
			var located *Error
			if !errors.As(err, &located) {
				t.Fatalf("error %T is not located", err)
			}
			if !strings.Contains(located.Message, tc.want) {
				t.Errorf("message = %q, want it to contain %q", located.Message, tc.want)
			}
		})
	}
}

func TestParseEmptyProgram(t *testing.T) {
	program := mustParse(t, "")
	if len(program.Statements) != 0 {
		t.Errorf("statements = %d, want 0", len(program.Statements))
	}
	program = mustParse(t, "// only a comment\n\n")
	if len(program.Statements) != 0 {
		t.Errorf("statements = %d, want 0", len(program.Statements))
	}
}

func TestFormatRoundTripsBlocks(t *testing.T) {
	source := `to f(a, b = 2)
  repeat a
    move(distance = b)
  around
    yaw(degrees = 90)
if a < 2
  x = [1, ~, 3]
else
  x = "s" + 'c'
`
	first := mustParse(t, source)
	printed := Format(first)
	second, err := ParseSource(printed)
	if err != nil {
		t.Fatalf("reparse of %q failed: %v", printed, err)
	}
	if again := Format(second); again != printed {
		t.Errorf("format is not stable:\n%s\n---\n%s", printed, again)
	}
}

func TestFormatReal(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{1, "1.0"},
		{0.5, "0.5"},
		{-2.25, "-2.25"},
		{1e6, "1000000.0"},
		{math.Inf(1), "Infinity"},
		{math.Inf(-1), "-Infinity"},
		{math.NaN(), "NaN"},
	}
	for _, tt := range tests {
		if got := FormatReal(tt.v); got != tt.want {
			t.Errorf("FormatReal(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}
