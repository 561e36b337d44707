package vm

import "github.com/chazu/madeup/compiler"

// TraceEntry is the last value a node produced. Prevalues holds the operand
// values an operator consumed to produce it.
type TraceEntry struct {
	Node      compiler.Node
	Value     Value
	Prevalues []Value
}

// Trace maps AST nodes to the values they last evaluated to. It sits beside
// the tree so the tree itself stays immutable.
type Trace struct {
	entries map[compiler.Node]*TraceEntry
}

func newTrace() *Trace {
	return &Trace{entries: make(map[compiler.Node]*TraceEntry)}
}

func (t *Trace) record(n compiler.Node, v Value) {
	if t == nil {
		return
	}
	if e, ok := t.entries[n]; ok {
		e.Value = v
		return
	}
	t.entries[n] = &TraceEntry{Node: n, Value: v}
}

func (t *Trace) operands(n compiler.Node, prevalues ...Value) {
	if t == nil {
		return
	}
	e, ok := t.entries[n]
	if !ok {
		e = &TraceEntry{Node: n}
		t.entries[n] = e
	}
	e.Prevalues = prevalues
}

// Lookup returns the entry for a node.
func (t *Trace) Lookup(n compiler.Node) (*TraceEntry, bool) {
	if t == nil {
		return nil, false
	}
	e, ok := t.entries[n]
	return e, ok
}

// Len returns the number of traced nodes.
func (t *Trace) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// At returns the innermost traced node whose span contains the 0-based
// position.
func (t *Trace) At(line, column int) (*TraceEntry, bool) {
	if t == nil {
		return nil, false
	}
	var best *TraceEntry
	for n, e := range t.entries {
		s := n.Span()
		if !s.Contains(line, column) {
			continue
		}
		if best == nil || narrower(s, best.Node.Span()) {
			best = e
		}
	}
	return best, best != nil
}

func narrower(a, b compiler.Span) bool {
	al, bl := a.LineEnd-a.LineStart, b.LineEnd-b.LineStart
	if al != bl {
		return al < bl
	}
	if al == 0 {
		return a.ColumnEnd-a.ColumnStart < b.ColumnEnd-b.ColumnStart
	}
	return a.ColumnStart > b.ColumnStart || (a.ColumnStart == b.ColumnStart && a.ColumnEnd < b.ColumnEnd)
}
