package compiler

import "sort"

// ---------------------------------------------------------------------------
// Symbol table: :name literals resolved at parse time
// ---------------------------------------------------------------------------

type symbolKind int

const (
	symbolInteger symbolKind = iota
	symbolString
	symbolVector
)

type symbol struct {
	kind    symbolKind
	integer int64
	str     string
	vector  [3]float64
}

var symbols = map[string]symbol{
	"clockwise":        {kind: symbolInteger, integer: 0},
	"counterclockwise": {kind: symbolInteger, integer: 1},

	"open":   {kind: symbolInteger, integer: 0},
	"closed": {kind: symbolInteger, integer: 1},
	"none":   {kind: symbolInteger, integer: -1},

	"zero":     {kind: symbolVector, vector: [3]float64{0, 0, 0}},
	"up":       {kind: symbolVector, vector: [3]float64{0, 1, 0}},
	"down":     {kind: symbolVector, vector: [3]float64{0, -1, 0}},
	"right":    {kind: symbolVector, vector: [3]float64{1, 0, 0}},
	"left":     {kind: symbolVector, vector: [3]float64{-1, 0, 0}},
	"forward":  {kind: symbolVector, vector: [3]float64{0, 0, -1}},
	"backward": {kind: symbolVector, vector: [3]float64{0, 0, 1}},

	"black":      {kind: symbolVector, vector: [3]float64{0, 0, 0}},
	"red":        {kind: symbolVector, vector: [3]float64{1, 0, 0}},
	"green":      {kind: symbolVector, vector: [3]float64{0, 1, 0}},
	"blue":       {kind: symbolVector, vector: [3]float64{0, 0, 1}},
	"white":      {kind: symbolVector, vector: [3]float64{1, 1, 1}},
	"yellow":     {kind: symbolVector, vector: [3]float64{1, 1, 0}},
	"orange":     {kind: symbolVector, vector: [3]float64{1, 0.5, 0}},
	"cyan":       {kind: symbolVector, vector: [3]float64{0, 1, 1}},
	"magenta":    {kind: symbolVector, vector: [3]float64{1, 0, 1}},
	"cornflower": {kind: symbolVector, vector: [3]float64{0.392, 0.584, 0.929}},
	"crimson":    {kind: symbolVector, vector: [3]float64{0.863, 0.078, 0.235}},

	"linear":         {kind: symbolString, str: "linear"},
	"nearest":        {kind: symbolString, str: "nearest"},
	"sineInOut":      {kind: symbolString, str: "sineInOut"},
	"backInOut":      {kind: symbolString, str: "backInOut"},
	"quadraticInOut": {kind: symbolString, str: "quadraticInOut"},
	"cubicInOut":     {kind: symbolString, str: "cubicInOut"},
	"quarticInOut":   {kind: symbolString, str: "quarticInOut"},
	"quinticInOut":   {kind: symbolString, str: "quinticInOut"},
}

// LookupSymbol returns a fresh literal expression for the symbol name
// (without its leading colon), located at span.
func LookupSymbol(name string, span Span) (Expr, bool) {
	sym, ok := symbols[name]
	if !ok {
		return nil, false
	}
	switch sym.kind {
	case symbolInteger:
		return &IntegerLiteral{SpanVal: span, Value: sym.integer}, true
	case symbolString:
		return &StringLiteral{SpanVal: span, Value: sym.str}, true
	default:
		elements := make([]Expr, 3)
		for i, c := range sym.vector {
			elements[i] = &RealLiteral{SpanVal: span, Value: c}
		}
		return &VectorLiteral{SpanVal: span, Elements: elements}, true
	}
}

// SymbolNames returns every known symbol name, sorted, without colons.
func SymbolNames() []string {
	names := make([]string, 0, len(symbols))
	for name := range symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
