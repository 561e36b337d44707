package vm

import (
	"errors"
	"testing"

	"github.com/chazu/madeup/compiler"
)

func TestParseDiagnostic(t *testing.T) {
	tests := []struct {
		line    string
		span    compiler.Span
		message string
		ok      bool
	}{
		{"1:2:3:4:hello: world", compiler.Span{LineStart: 1, LineEnd: 2, ColumnStart: 3, ColumnEnd: 4}, "hello: world", true},
		{"0:0:0:5:I can't divide by zero.", compiler.Span{ColumnEnd: 5}, "I can't divide by zero.", true},
		{"hi", compiler.Span{}, "hi", false},
		{"1:2:x:4:nope", compiler.Span{}, "1:2:x:4:nope", false},
		{"1:2:3:4:line one\nline two", compiler.Span{LineStart: 1, LineEnd: 2, ColumnStart: 3, ColumnEnd: 4}, "line one\nline two", true},
	}
	for _, tt := range tests {
		span, message, ok := ParseDiagnostic(tt.line)
		if ok != tt.ok || span != tt.span || message != tt.message {
			t.Errorf("ParseDiagnostic(%q) = %v, %q, %v, want %v, %q, %v", tt.line, span, message, ok, tt.span, tt.message, tt.ok)
		}
	}
}

func TestDiagnosticRoundTrip(t *testing.T) {
	err := runError(t, "x = 1\ny = x / 0")
	span, message, ok := ParseDiagnostic(Diagnostic(err))
	if !ok {
		t.Fatalf("Diagnostic(%v) did not parse", err)
	}
	if span != *err.Span || message != err.Message {
		t.Errorf("round trip = %v %q, want %v %q", span, message, *err.Span, err.Message)
	}
}

func TestLocateKeepsExistingSpan(t *testing.T) {
	inner := compiler.Span{LineStart: 2, LineEnd: 2, ColumnStart: 1, ColumnEnd: 3}
	outer := compiler.Span{ColumnEnd: 9}

	located := locate(errorAt(inner, "inner"), outer)
	var ve *Error
	if !errors.As(located, &ve) || *ve.Span != inner {
		t.Errorf("locate moved a located error to %v", ve.Span)
	}

	located = locate(errors.New("plain"), outer)
	if !errors.As(located, &ve) || *ve.Span != outer || ve.Message != "plain" {
		t.Errorf("locate(plain) = %v, want it at %v", located, outer)
	}
}

func TestPlainDiagnostic(t *testing.T) {
	if got := Diagnostic(&Error{Message: "no place"}); got != "no place" {
		t.Errorf("Diagnostic = %q, want %q", got, "no place")
	}
}
