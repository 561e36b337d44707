package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/madeup/manifest"
	"github.com/chazu/madeup/vm"
	"github.com/chazu/madeup/vm/dist"
)

const triangle = "moveto(x=0, y=0)\nmoveto(x=1, y=0)\nmoveto(x=0, y=1)\npolygon(name = \"tri\")\nprint(message = \"done\")"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func loadManifest(t *testing.T, content string) *manifest.Manifest {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, manifest.FileName, content)
	m, err := manifest.Load(dir)
	if err != nil {
		t.Fatalf("manifest.Load: %v", err)
	}
	return m
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

func TestSettings_ManifestOptions(t *testing.T) {
	m := loadManifest(t, "[render]\nmode = \"pathify\"\ntime = 1.5\n")
	s := settings{set: map[string]bool{}}

	opts, err := s.options(m)
	if err != nil {
		t.Fatalf("options returned error: %v", err)
	}
	result, err := vm.Interpret("print(message = time())", opts...)
	if err != nil {
		t.Fatal(err)
	}
	if result.Mode != vm.Pathify {
		t.Errorf("Mode = %v, want pathify", result.Mode)
	}
	if len(result.Log) != 1 || result.Log[0] != "1.5" {
		t.Errorf("Log = %v, want [1.5]", result.Log)
	}
}

func TestSettings_FlagsOverrideManifest(t *testing.T) {
	m := loadManifest(t, "[render]\nmode = \"pathify\"\ntime = 1.5\n")
	s := settings{
		mode: "solidify",
		time: 4,
		set:  map[string]bool{"mode": true, "time": true},
	}

	opts, err := s.options(m)
	if err != nil {
		t.Fatalf("options returned error: %v", err)
	}
	result, err := vm.Interpret("print(message = time())", opts...)
	if err != nil {
		t.Fatal(err)
	}
	if result.Mode != vm.Solidify {
		t.Errorf("Mode = %v, want solidify", result.Mode)
	}
	if len(result.Log) != 1 || result.Log[0] != "4" {
		t.Errorf("Log = %v, want [4]", result.Log)
	}
}

func TestSettings_Seed(t *testing.T) {
	s := settings{seed: 11, set: map[string]bool{"seed": true}}
	opts, err := s.options(nil)
	if err != nil {
		t.Fatal(err)
	}

	source := "print(message = random(max = 1000000))"
	a, err := vm.Interpret(source, opts...)
	if err != nil {
		t.Fatal(err)
	}
	b, err := vm.Interpret(source, opts...)
	if err != nil {
		t.Fatal(err)
	}
	if a.Log[0] != b.Log[0] {
		t.Errorf("seeded runs drew %s and %s", a.Log[0], b.Log[0])
	}
}

func TestSettings_BadMode(t *testing.T) {
	s := settings{mode: "sculpt", set: map[string]bool{"mode": true}}
	if _, err := s.options(nil); err == nil {
		t.Error("options accepted an unknown render mode")
	}
}

func TestSettings_ServerDefaults(t *testing.T) {
	m := loadManifest(t, "[server]\naddr = \":9000\"\n")

	s := settings{addr: ":8080", set: map[string]bool{}}
	if got := s.serverAddr(m); got != ":9000" {
		t.Errorf("serverAddr = %q, want the manifest's :9000", got)
	}
	if got := s.serverAddr(nil); got != ":8080" {
		t.Errorf("serverAddr without manifest = %q, want :8080", got)
	}
	if got, want := s.storePath(m), filepath.Join(m.Dir, ".madeup", "sketches.db"); got != want {
		t.Errorf("storePath = %q, want %q", got, want)
	}
	if got := s.storePath(nil); got != "" {
		t.Errorf("storePath without manifest = %q, want none", got)
	}

	s = settings{addr: ":7000", store: "x.db", set: map[string]bool{"addr": true, "store": true}}
	if got := s.serverAddr(m); got != ":7000" {
		t.Errorf("serverAddr = %q, want the flag's :7000", got)
	}
	if got := s.storePath(m); got != "x.db" {
		t.Errorf("storePath = %q, want the flag's x.db", got)
	}
}

// ---------------------------------------------------------------------------
// Running files
// ---------------------------------------------------------------------------

func TestRunFile_Exports(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tri.mup", triangle)
	objPath := filepath.Join(dir, "tri.obj")
	cborPath := filepath.Join(dir, "tri.cbor")

	ok, err := runFile(path, []vm.Option{vm.WithSeed(1)}, exports{obj: objPath, cbor: cborPath})
	if err != nil {
		t.Fatalf("runFile returned error: %v", err)
	}
	if !ok {
		t.Fatal("runFile reported a failed run")
	}

	obj, err := os.ReadFile(objPath)
	if err != nil {
		t.Fatal(err)
	}
	text := string(obj)
	if !strings.HasPrefix(text, "o tri\n") {
		t.Errorf("OBJ starts %q, want the tri object", text)
	}
	if got := strings.Count(text, "\nv "); got != 3 {
		t.Errorf("OBJ has %d vertices, want 3", got)
	}
	if !strings.Contains(text, "\nf ") {
		t.Error("OBJ has no faces")
	}

	data, err := os.ReadFile(cborPath)
	if err != nil {
		t.Fatal(err)
	}
	report, err := dist.UnmarshalReport(data)
	if err != nil {
		t.Fatalf("UnmarshalReport: %v", err)
	}
	if report.Failed() || len(report.Snapshot.Meshes) != 1 {
		t.Errorf("report = %+v, want one mesh and no diagnostic", report)
	}
}

func TestRunFile_Failure(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bad.mup", "x = 1 / 0")
	objPath := filepath.Join(dir, "bad.obj")
	cborPath := filepath.Join(dir, "bad.cbor")

	ok, err := runFile(path, nil, exports{obj: objPath, cbor: cborPath})
	if err != nil {
		t.Fatalf("runFile returned error: %v", err)
	}
	if ok {
		t.Error("runFile reported success for a failing program")
	}
	if _, err := os.Stat(objPath); !os.IsNotExist(err) {
		t.Error("a failed run should not write OBJ")
	}

	data, err := os.ReadFile(cborPath)
	if err != nil {
		t.Fatalf("a failed run should still write its report: %v", err)
	}
	report, err := dist.UnmarshalReport(data)
	if err != nil {
		t.Fatal(err)
	}
	if report.Diagnostic != "0:0:4:9:I can't divide by zero." {
		t.Errorf("Diagnostic = %q", report.Diagnostic)
	}
}

func TestRunFile_Missing(t *testing.T) {
	if _, err := runFile(filepath.Join(t.TempDir(), "nope.mup"), nil, exports{}); err == nil {
		t.Error("runFile found a file that does not exist")
	}
}

// ---------------------------------------------------------------------------
// REPL
// ---------------------------------------------------------------------------

func TestComplete(t *testing.T) {
	tests := []struct {
		chunk string
		want  bool
	}{
		{"x = 1", true},
		{"print(message = 2)", true},
		{"repeat 4", false},
		{"to f(x)", false},
		{"repeat 2\n  x = 1", false},
	}
	for _, tt := range tests {
		if got := complete(tt.chunk); got != tt.want {
			t.Errorf("complete(%q) = %v, want %v", tt.chunk, got, tt.want)
		}
	}
}

func TestREPL_Eval(t *testing.T) {
	var out bytes.Buffer
	r := newREPL(&out, []vm.Option{vm.WithSeed(1)})

	r.eval("to sq(x) = x * x")
	r.eval("y = sq(x = 3)")
	out.Reset()

	r.eval("y + 1")
	if got := out.String(); got != "=> 10\n" {
		t.Errorf("output = %q, want %q", got, "=> 10\n")
	}

	out.Reset()
	r.eval("x = 1 / 0")
	if got := out.String(); !strings.Contains(got, "I can't divide by zero.") {
		t.Errorf("output = %q, want the diagnostic", got)
	}
}

func TestREPL_Commands(t *testing.T) {
	var out bytes.Buffer
	r := newREPL(&out, nil)
	r.eval("y = 2")
	r.eval("to f() = 1")

	tests := []struct {
		cmd  string
		want string
	}{
		{":vars", "y\n"},
		{":funcs", "f\n"},
		{":doc move", "move(distance, radius = 0.5, color = [1.0, 0.5, 0.0])\n"},
		{":doc teleport", "No builtin named teleport\n"},
		{":warp", "Unknown command: :warp (type :help for commands)\n"},
	}
	for _, tt := range tests {
		out.Reset()
		r.command(tt.cmd)
		if got := out.String(); !strings.HasPrefix(got, tt.want) {
			t.Errorf("%s printed %q, want %q", tt.cmd, got, tt.want)
		}
	}

	out.Reset()
	r.command(":reset")
	out.Reset()
	r.command(":vars")
	if got := out.String(); got != "\n" {
		t.Errorf(":vars after :reset printed %q, want nothing", got)
	}
}

func TestREPL_ExportOBJ(t *testing.T) {
	var out bytes.Buffer
	r := newREPL(&out, nil)
	r.eval(triangle)

	path := filepath.Join(t.TempDir(), "session.obj")
	r.command(":obj " + path)
	if !strings.Contains(out.String(), "Wrote 1 meshes") {
		t.Errorf("output = %q, want a confirmation", out.String())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "o tri\n") {
		t.Errorf("OBJ starts %q, want the tri object", data)
	}
}

// ---------------------------------------------------------------------------
// Reference docs
// ---------------------------------------------------------------------------

func TestWriteDocs(t *testing.T) {
	var b bytes.Buffer
	if err := writeDocs(&b, vm.Builtins()); err != nil {
		t.Fatalf("writeDocs returned error: %v", err)
	}
	html := b.String()

	for _, want := range []string{
		"<title>Madeup Builtins</title>",
		`<div class="function" id="move">`,
		"move(distance, radius = 0.5, color = [1.0, 0.5, 0.0])",
		"Move forward or backward along the current heading.",
		"(default 0.5)",
		"Members of vector values",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("reference is missing %q", want)
		}
	}
}
