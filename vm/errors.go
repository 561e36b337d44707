package vm

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/chazu/madeup/compiler"
)

// ---------------------------------------------------------------------------
// Call documentation records
// ---------------------------------------------------------------------------

// BindingKind says how a formal parameter received its value.
type BindingKind int

const (
	Explicit   BindingKind = iota // supplied by the call
	Autoscoped                    // forwarded from a same-named caller variable
	Defaulted                     // filled in from the formal's default
	Unbound                       // the call failed before it was bound
)

var bindingNames = map[BindingKind]string{
	Explicit:   "explicit",
	Autoscoped: "autoscoped",
	Defaulted:  "defaulted",
	Unbound:    "unbound",
}

func (k BindingKind) String() string { return bindingNames[k] }

// MarshalText renders the kind by name for JSON and CBOR encoders.
func (k BindingKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// ParameterRecord documents one formal of a called function.
type ParameterRecord struct {
	Name        string      `json:"name" cbor:"name"`
	Description string      `json:"description,omitempty" cbor:"description,omitempty"`
	Binding     BindingKind `json:"binding" cbor:"binding"`
}

// CallRecord documents one evaluated call: which function, where, and how
// each of its parameters was bound. Records are collected in call order.
type CallRecord struct {
	Span        compiler.Span     `json:"span" cbor:"span"`
	Function    string            `json:"function" cbor:"function"`
	Description string            `json:"description,omitempty" cbor:"description,omitempty"`
	Parameters  []ParameterRecord `json:"parameters" cbor:"parameters"`
}

func newCallRecord(f *FunctionDefinition, span compiler.Span) *CallRecord {
	r := &CallRecord{Span: span, Function: f.Name, Description: f.Description}
	for _, formal := range f.Formals {
		r.Parameters = append(r.Parameters, ParameterRecord{
			Name:        formal.Name,
			Description: formal.Description,
			Binding:     Unbound,
		})
	}
	return r
}

func (r *CallRecord) mark(name string, kind BindingKind) {
	for i := range r.Parameters {
		if r.Parameters[i].Name == name {
			r.Parameters[i].Binding = kind
			return
		}
	}
}

// ---------------------------------------------------------------------------
// Evaluation errors
// ---------------------------------------------------------------------------

// Error is an evaluation failure. Span is nil for a plain error; Call is
// the documentation of the call that failed, when there was one.
type Error struct {
	Span    *compiler.Span
	Message string
	Call    *CallRecord
}

func (e *Error) Error() string {
	if e.Span != nil {
		return e.Span.String() + ":" + e.Message
	}
	return e.Message
}

func errorAt(span compiler.Span, format string, args ...interface{}) *Error {
	return &Error{Span: &span, Message: fmt.Sprintf(format, args...)}
}

// locate gives an unlocated error the span of the construct that raised it.
// Errors that already carry a location keep it.
func locate(err error, span compiler.Span) error {
	if err == nil {
		return nil
	}
	var ve *Error
	if errors.As(err, &ve) {
		if ve.Span != nil {
			return ve
		}
		located := *ve
		located.Span = &span
		return &located
	}
	var ce *compiler.Error
	if errors.As(err, &ce) {
		return ce
	}
	return &Error{Span: &span, Message: err.Error()}
}

// attach records the failing call on an error that has none yet.
func attach(err error, record *CallRecord) error {
	var ve *Error
	if errors.As(err, &ve) && ve.Call == nil {
		ve.Call = record
	}
	return err
}

// ---------------------------------------------------------------------------
// Diagnostic strings
// ---------------------------------------------------------------------------

var diagnosticPattern = regexp.MustCompile(`(?s)^(\d+):(\d+):(\d+):(\d+):(.*)$`)

// Diagnostic renders an error as a log line. Located errors take the form
// lineStart:lineEnd:columnStart:columnEnd:message.
func Diagnostic(err error) string {
	var ve *Error
	if errors.As(err, &ve) {
		return ve.Error()
	}
	var ce *compiler.Error
	if errors.As(err, &ce) {
		return ce.Error()
	}
	return err.Error()
}

// ParseDiagnostic splits a log line into its span and message. ok is false
// for plain messages.
func ParseDiagnostic(line string) (span compiler.Span, message string, ok bool) {
	m := diagnosticPattern.FindStringSubmatch(line)
	if m == nil {
		return compiler.Span{}, line, false
	}
	var n [4]int
	for i := range n {
		v, err := strconv.Atoi(m[i+1])
		if err != nil {
			return compiler.Span{}, line, false
		}
		n[i] = v
	}
	span = compiler.Span{LineStart: n[0], LineEnd: n[1], ColumnStart: n[2], ColumnEnd: n[3]}
	return span, m[5], true
}
