package server

import (
	"strings"
	"testing"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/chazu/madeup/vm"
)

func newTestLSP(t *testing.T) *LspServer {
	t.Helper()
	s := NewLSP(vm.WithSeed(1))
	t.Cleanup(s.worker.Stop)
	return s
}

func hoverText(t *testing.T, h *protocol.Hover) string {
	t.Helper()
	if h == nil {
		t.Fatal("hover = nil, want content")
	}
	mc, ok := h.Contents.(protocol.MarkupContent)
	if !ok {
		t.Fatalf("hover contents = %T, want MarkupContent", h.Contents)
	}
	if mc.Kind != protocol.MarkupKindMarkdown {
		t.Errorf("hover markup kind = %q, want %q", mc.Kind, protocol.MarkupKindMarkdown)
	}
	return mc.Value
}

func labels(items []protocol.CompletionItem) map[string]protocol.CompletionItem {
	out := make(map[string]protocol.CompletionItem, len(items))
	for _, item := range items {
		out[item.Label] = item
	}
	return out
}

// ---------------------------------------------------------------------------
// Text extraction
// ---------------------------------------------------------------------------

func TestExtractPrefix(t *testing.T) {
	tests := []struct {
		text string
		line int
		char int
		want string
	}{
		{"mov", 0, 3, "mov"},
		{"x = mo", 0, 6, "mo"},
		{"x = 1\nrepeat 4\n  yaw(degrees = :cl", 2, 22, ":cl"},
		{"polygon(flip = :", 0, 16, ":"},
		{"my_var", 0, 6, "my_var"},
		{"move(", 0, 5, ""},
		{"", 0, 0, ""},
		{"short", 0, 50, "short"},
		{"one line", 4, 0, ""},
	}
	for _, tt := range tests {
		pos := protocol.Position{Line: protocol.UInteger(tt.line), Character: protocol.UInteger(tt.char)}
		if got := extractPrefix(tt.text, pos); got != tt.want {
			t.Errorf("extractPrefix(%q, %d:%d) = %q, want %q", tt.text, tt.line, tt.char, got, tt.want)
		}
	}
}

func TestExtractWord(t *testing.T) {
	tests := []struct {
		text string
		line int
		char int
		want string
	}{
		{"move(distance = 1)", 0, 2, "move"},
		{"move(distance = 1)", 0, 0, "move"},
		{"move(distance = 1)", 0, 8, "distance"},
		{"first\nsecond", 1, 3, "second"},
		{"my_var = 2", 0, 3, "my_var"},
		{"a + b", 0, 2, ""},
		{"single line", 5, 0, ""},
	}
	for _, tt := range tests {
		pos := protocol.Position{Line: protocol.UInteger(tt.line), Character: protocol.UInteger(tt.char)}
		if got := extractWord(tt.text, pos); got != tt.want {
			t.Errorf("extractWord(%q, %d:%d) = %q, want %q", tt.text, tt.line, tt.char, got, tt.want)
		}
	}
}

func TestBoolPtr(t *testing.T) {
	if p := boolPtr(true); p == nil || !*p {
		t.Errorf("boolPtr(true) = %v, want a pointer to true", p)
	}
	if p := boolPtr(false); p == nil || *p {
		t.Errorf("boolPtr(false) = %v, want a pointer to false", p)
	}
}

// ---------------------------------------------------------------------------
// Diagnostics
// ---------------------------------------------------------------------------

func TestLSP_Diagnostics_Clean(t *testing.T) {
	s := newTestLSP(t)
	doc := s.analyze("x = 1 + 2")

	got := diagnostics(doc)
	if got == nil || len(got) != 0 {
		t.Errorf("diagnostics = %v, want an empty non-nil slice", got)
	}
}

func TestLSP_Diagnostics_LexError(t *testing.T) {
	s := newTestLSP(t)
	doc := s.analyze("x = 1\ny = @")

	got := diagnostics(doc)
	if len(got) != 1 {
		t.Fatalf("len(diagnostics) = %d, want 1", len(got))
	}
	d := got[0]
	want := protocol.Range{
		Start: protocol.Position{Line: 1, Character: 4},
		End:   protocol.Position{Line: 1, Character: 5},
	}
	if d.Range != want {
		t.Errorf("Range = %+v, want %+v", d.Range, want)
	}
	if d.Severity == nil || *d.Severity != protocol.DiagnosticSeverityError {
		t.Error("diagnostic severity should be Error")
	}
	if d.Source == nil || *d.Source != lspName {
		t.Errorf("diagnostic source = %v, want %s", d.Source, lspName)
	}
	if d.Message == "" || strings.HasPrefix(d.Message, "1:1:") {
		t.Errorf("Message = %q, want the bare message", d.Message)
	}
}

func TestLSP_Diagnostics_RuntimeError(t *testing.T) {
	s := newTestLSP(t)
	doc := s.analyze("x = 1 / 0")

	got := diagnostics(doc)
	if len(got) != 1 {
		t.Fatalf("len(diagnostics) = %d, want 1", len(got))
	}
	want := protocol.Range{
		Start: protocol.Position{Line: 0, Character: 4},
		End:   protocol.Position{Line: 0, Character: 9},
	}
	if got[0].Range != want {
		t.Errorf("Range = %+v, want %+v", got[0].Range, want)
	}
	if got[0].Message != "I can't divide by zero." {
		t.Errorf("Message = %q, want %q", got[0].Message, "I can't divide by zero.")
	}
}

// ---------------------------------------------------------------------------
// Hover
// ---------------------------------------------------------------------------

func TestLSP_Hover_Builtin(t *testing.T) {
	s := newTestLSP(t)
	doc := s.analyze("move(distance = 1)")

	text := hoverText(t, s.hover(doc, protocol.Position{Line: 0, Character: 1}))
	if !strings.Contains(text, "**move(distance, radius = 0.5, color = [1.0, 0.5, 0.0])**") {
		t.Errorf("hover = %q, want the move signature", text)
	}
	if !strings.Contains(text, "Move forward or backward") {
		t.Errorf("hover = %q, want the move description", text)
	}
	if !strings.Contains(text, "- `distance`: ") {
		t.Errorf("hover = %q, want the formal docs", text)
	}
}

func TestLSP_Hover_UserFunction(t *testing.T) {
	s := newTestLSP(t)
	doc := s.analyze("to sq(x) = x * x\ny = sq(x = 4)")

	text := hoverText(t, s.hover(doc, protocol.Position{Line: 1, Character: 5}))
	if !strings.Contains(text, "**to sq(x)**") {
		t.Errorf("hover = %q, want the definition header", text)
	}
	if !strings.Contains(text, "was `16`") {
		t.Errorf("hover = %q, want the call's value", text)
	}
}

func TestLSP_Hover_TracedOperator(t *testing.T) {
	s := newTestLSP(t)
	doc := s.analyze("x = 1 + 2")

	text := hoverText(t, s.hover(doc, protocol.Position{Line: 0, Character: 6}))
	if !strings.Contains(text, "was `3` from `1` and `2`") {
		t.Errorf("hover = %q, want the sum and its operands", text)
	}
}

func TestLSP_Hover_Nothing(t *testing.T) {
	s := newTestLSP(t)
	doc := s.analyze("x = 1\n\n")

	if h := s.hover(doc, protocol.Position{Line: 2, Character: 0}); h != nil {
		t.Errorf("hover on a blank line = %+v, want nil", h)
	}
}

// ---------------------------------------------------------------------------
// Completion
// ---------------------------------------------------------------------------

func TestLSP_Complete_Symbols(t *testing.T) {
	s := newTestLSP(t)
	doc := s.analyze("x = 1")

	items := labels(s.complete(doc, ":cl"))
	for _, want := range []string{":clockwise", ":closed"} {
		item, ok := items[want]
		if !ok {
			t.Errorf("complete(:cl) is missing %s", want)
			continue
		}
		if item.InsertText == nil || *item.InsertText != want[1:] {
			t.Errorf("%s inserts %v, want %q", want, item.InsertText, want[1:])
		}
	}
	if _, ok := items[":counterclockwise"]; ok {
		t.Error("complete(:cl) should not offer :counterclockwise")
	}
}

func TestLSP_Complete_KeywordsAndBuiltins(t *testing.T) {
	s := newTestLSP(t)
	doc := s.analyze("x = 1")

	items := labels(s.complete(doc, "re"))
	if item, ok := items["repeat"]; !ok || item.Kind == nil || *item.Kind != protocol.CompletionItemKindKeyword {
		t.Error("complete(re) should offer the repeat keyword")
	}
	item, ok := items["revolve"]
	if !ok {
		t.Fatal("complete(re) should offer revolve")
	}
	if item.Kind == nil || *item.Kind != protocol.CompletionItemKindFunction {
		t.Error("revolve should complete as a function")
	}
	if item.Detail == nil || !strings.HasPrefix(*item.Detail, "revolve(") {
		t.Errorf("revolve detail = %v, want its signature", item.Detail)
	}
}

func TestLSP_Complete_UserDefinitions(t *testing.T) {
	s := newTestLSP(t)
	doc := s.analyze("to spiral(n = 3) = n\nspin = 2\nspin = 3")

	items := s.complete(doc, "sp")
	byLabel := labels(items)

	fn, ok := byLabel["spiral"]
	if !ok {
		t.Fatal("complete(sp) should offer the user function")
	}
	if fn.Detail == nil || *fn.Detail != "to spiral(n = 3)" {
		t.Errorf("spiral detail = %v, want its header", fn.Detail)
	}
	if v, ok := byLabel["spin"]; !ok || v.Kind == nil || *v.Kind != protocol.CompletionItemKindVariable {
		t.Error("complete(sp) should offer the spin variable")
	}

	count := 0
	for _, item := range items {
		if item.Label == "spin" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("spin offered %d times, want once", count)
	}
}

// ---------------------------------------------------------------------------
// Document store
// ---------------------------------------------------------------------------

func TestLSP_UpdateAndLookup(t *testing.T) {
	s := newTestLSP(t)
	uri := protocol.DocumentUri("file:///sketch.mup")

	if _, ok := s.lookup(uri); ok {
		t.Fatal("lookup found a document that was never opened")
	}
	s.update(uri, "x = 1")
	s.update(uri, "to f() = 2\ny = f()")

	doc, ok := s.lookup(uri)
	if !ok {
		t.Fatal("lookup lost the updated document")
	}
	if doc.err != nil {
		t.Errorf("analysis failed: %v", doc.err)
	}
	def := userFunction(doc.program, "f")
	if def == nil {
		t.Fatal("userFunction(f) = nil, want the definition")
	}
	if got := header(def); got != "to f()" {
		t.Errorf("header = %q, want %q", got, "to f()")
	}
	if userFunction(doc.program, "g") != nil {
		t.Error("userFunction(g) should be nil")
	}
}
