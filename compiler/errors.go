package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Source spans and located errors
// ---------------------------------------------------------------------------

// Span is a range of source text. Lines and columns are 0-based and the end
// column is exclusive.
type Span struct {
	LineStart   int `json:"lineStart" cbor:"lineStart"`
	LineEnd     int `json:"lineEnd" cbor:"lineEnd"`
	ColumnStart int `json:"columnStart" cbor:"columnStart"`
	ColumnEnd   int `json:"columnEnd" cbor:"columnEnd"`
}

// Join returns the span that starts where a starts and ends where b ends.
func Join(a, b Span) Span {
	return Span{
		LineStart:   a.LineStart,
		LineEnd:     b.LineEnd,
		ColumnStart: a.ColumnStart,
		ColumnEnd:   b.ColumnEnd,
	}
}

// String renders the span in the diagnostic prefix form ls:le:cs:ce.
func (s Span) String() string {
	return fmt.Sprintf("%d:%d:%d:%d", s.LineStart, s.LineEnd, s.ColumnStart, s.ColumnEnd)
}

// Contains reports whether the 0-based position falls inside the span.
func (s Span) Contains(line, column int) bool {
	if line < s.LineStart || line > s.LineEnd {
		return false
	}
	if line == s.LineStart && column < s.ColumnStart {
		return false
	}
	if line == s.LineEnd && column >= s.ColumnEnd {
		return false
	}
	return true
}

// Error is a lex or parse error. Syntax errors always carry a location.
type Error struct {
	Span    Span
	Message string
}

// Error renders the error as a location-tagged diagnostic.
func (e *Error) Error() string {
	return e.Span.String() + ":" + e.Message
}

func errorAt(span Span, format string, args ...interface{}) *Error {
	return &Error{Span: span, Message: fmt.Sprintf(format, args...)}
}
