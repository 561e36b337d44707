package compiler

// ---------------------------------------------------------------------------
// AST: Abstract Syntax Tree for Madeup
// ---------------------------------------------------------------------------

// Node is the interface implemented by all AST nodes. Each node owns its
// children exclusively; nodes are never shared between parents.
type Node interface {
	Span() Span
	node() // marker method
}

// Expr is the interface for expression nodes. Every Madeup statement is an
// expression that produces a value (possibly none).
type Expr interface {
	Node
	expr() // marker method
}

// ---------------------------------------------------------------------------
// Literals
// ---------------------------------------------------------------------------

// IntegerLiteral represents an integer literal.
type IntegerLiteral struct {
	SpanVal Span
	Value   int64
}

func (n *IntegerLiteral) Span() Span { return n.SpanVal }
func (n *IntegerLiteral) node()      {}
func (n *IntegerLiteral) expr()      {}

// RealLiteral represents a floating-point literal.
type RealLiteral struct {
	SpanVal Span
	Value   float64
}

func (n *RealLiteral) Span() Span { return n.SpanVal }
func (n *RealLiteral) node()      {}
func (n *RealLiteral) expr()      {}

// BooleanLiteral represents true or false.
type BooleanLiteral struct {
	SpanVal Span
	Value   bool
}

func (n *BooleanLiteral) Span() Span { return n.SpanVal }
func (n *BooleanLiteral) node()      {}
func (n *BooleanLiteral) expr()      {}

// StringLiteral represents a string literal.
type StringLiteral struct {
	SpanVal Span
	Value   string
}

func (n *StringLiteral) Span() Span { return n.SpanVal }
func (n *StringLiteral) node()      {}
func (n *StringLiteral) expr()      {}

// CharacterLiteral represents a character literal ('a').
type CharacterLiteral struct {
	SpanVal Span
	Value   rune
}

func (n *CharacterLiteral) Span() Span { return n.SpanVal }
func (n *CharacterLiteral) node()      {}
func (n *CharacterLiteral) expr()      {}

// VectorLiteral represents [e1, e2, ...].
type VectorLiteral struct {
	SpanVal  Span
	Elements []Expr
}

func (n *VectorLiteral) Span() Span { return n.SpanVal }
func (n *VectorLiteral) node()      {}
func (n *VectorLiteral) expr()      {}

// RepeatPrevious is the ~ element of a vector literal. It stands for the
// value of the element immediately before it.
type RepeatPrevious struct {
	SpanVal Span
}

func (n *RepeatPrevious) Span() Span { return n.SpanVal }
func (n *RepeatPrevious) node()      {}
func (n *RepeatPrevious) expr()      {}

// ---------------------------------------------------------------------------
// Operators
// ---------------------------------------------------------------------------

// Operator identifies a binary operator.
type Operator int

const (
	OpAdd Operator = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpRemainder
	OpPower
	OpSame
	OpNotSame
	OpLess
	OpLessEqual
	OpMore
	OpMoreEqual
)

var operatorSpellings = [...]string{
	OpAdd:       "+",
	OpSubtract:  "-",
	OpMultiply:  "*",
	OpDivide:    "/",
	OpRemainder: "%",
	OpPower:     "^",
	OpSame:      "==",
	OpNotSame:   "!=",
	OpLess:      "<",
	OpLessEqual: "<=",
	OpMore:      ">",
	OpMoreEqual: ">=",
}

func (op Operator) String() string {
	if int(op) < len(operatorSpellings) {
		return operatorSpellings[op]
	}
	return "?"
}

// Precedence levels, low to high.
const (
	precAssignment = iota + 1
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precPower
	precPostfix
	precAtom
)

// Precedence returns the binding strength of the operator.
func (op Operator) Precedence() int {
	switch op {
	case OpSame, OpNotSame:
		return precEquality
	case OpLess, OpLessEqual, OpMore, OpMoreEqual:
		return precRelational
	case OpAdd, OpSubtract:
		return precAdditive
	case OpMultiply, OpDivide, OpRemainder:
		return precMultiplicative
	case OpPower:
		return precPower
	}
	return precAtom
}

// Binary represents left <op> right.
type Binary struct {
	SpanVal  Span
	Operator Operator
	Left     Expr
	Right    Expr
}

func (n *Binary) Span() Span { return n.SpanVal }
func (n *Binary) node()      {}
func (n *Binary) expr()      {}

// Negate represents unary minus.
type Negate struct {
	SpanVal Span
	Operand Expr
}

func (n *Negate) Span() Span { return n.SpanVal }
func (n *Negate) node()      {}
func (n *Negate) expr()      {}

// ---------------------------------------------------------------------------
// Names, access and assignment
// ---------------------------------------------------------------------------

// Identifier references a variable.
type Identifier struct {
	SpanVal Span
	Name    string
}

func (n *Identifier) Span() Span { return n.SpanVal }
func (n *Identifier) node()      {}
func (n *Identifier) expr()      {}

// Member represents base.name.
type Member struct {
	SpanVal Span
	Base    Expr
	Name    string
}

func (n *Member) Span() Span { return n.SpanVal }
func (n *Member) node()      {}
func (n *Member) expr()      {}

// Subscript represents base[index].
type Subscript struct {
	SpanVal Span
	Base    Expr
	Index   Expr
}

func (n *Subscript) Span() Span { return n.SpanVal }
func (n *Subscript) node()      {}
func (n *Subscript) expr()      {}

// Assignment represents target = value. The target is an Identifier,
// Member or Subscript.
type Assignment struct {
	SpanVal Span
	Target  Expr
	Value   Expr
}

func (n *Assignment) Span() Span { return n.SpanVal }
func (n *Assignment) node()      {}
func (n *Assignment) expr()      {}

// ---------------------------------------------------------------------------
// Calls
// ---------------------------------------------------------------------------

// Actual is one argument of a call. Arguments are always named. A nil Value
// marks an autoscopic actual that forwards the caller's variable of the
// same name. Destructure marks the [a, b] = vector form, which binds each
// name to the element at its position.
type Actual struct {
	SpanVal     Span
	Names       []string
	Value       Expr
	Destructure bool
}

func (n *Actual) Span() Span { return n.SpanVal }
func (n *Actual) node()      {}

// Call represents name(actuals...).
type Call struct {
	SpanVal  Span
	Name     string
	NameSpan Span
	Actuals  []*Actual
}

func (n *Call) Span() Span { return n.SpanVal }
func (n *Call) node()      {}
func (n *Call) expr()      {}

// MemberCall represents host.name(actuals...).
type MemberCall struct {
	SpanVal Span
	Host    Expr
	Name    string
	Actuals []*Actual
}

func (n *MemberCall) Span() Span { return n.SpanVal }
func (n *MemberCall) node()      {}
func (n *MemberCall) expr()      {}

// ---------------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------------

// Block is a sequence of statements at one indentation level.
type Block struct {
	SpanVal    Span
	Statements []Expr
}

func (n *Block) Span() Span { return n.SpanVal }
func (n *Block) node()      {}
func (n *Block) expr()      {}

// If represents a chain of conditions with an optional else. Conditions and
// Consequents have equal length.
type If struct {
	SpanVal     Span
	Conditions  []Expr
	Consequents []Expr
	Alternative Expr // nil when there is no else
}

func (n *If) Span() Span { return n.SpanVal }
func (n *If) node()      {}
func (n *If) expr()      {}

// ForForm distinguishes the counting loop spellings.
type ForForm int

const (
	ForIn      ForForm = iota // for x in a..b [by k]
	ForTo                     // for x to n
	ForThrough                // for x through n
)

// For represents a counting loop. Start and By are nil when omitted.
type For struct {
	SpanVal  Span
	Form     ForForm
	Iterator *Identifier
	Start    Expr
	Stop     Expr
	By       Expr
	Body     *Block
}

func (n *For) Span() Span { return n.SpanVal }
func (n *For) node()      {}
func (n *For) expr()      {}

// ForOf iterates over the elements of a vector.
type ForOf struct {
	SpanVal  Span
	Iterator *Identifier
	Vector   Expr
	Body     *Block
}

func (n *ForOf) Span() Span { return n.SpanVal }
func (n *ForOf) node()      {}
func (n *ForOf) expr()      {}

// Repeat runs its body Count times.
type Repeat struct {
	SpanVal Span
	Count   Expr
	Body    *Block
}

func (n *Repeat) Span() Span { return n.SpanVal }
func (n *Repeat) node()      {}
func (n *Repeat) expr()      {}

// RepeatAround runs Around between consecutive iterations of Body.
type RepeatAround struct {
	SpanVal Span
	Count   Expr
	Body    *Block
	Around  *Block
}

func (n *RepeatAround) Span() Span { return n.SpanVal }
func (n *RepeatAround) node()      {}
func (n *RepeatAround) expr()      {}

// Formal is a declared parameter of a user function.
type Formal struct {
	SpanVal Span
	Name    string
	Default Expr // nil when the parameter is required
}

func (n *Formal) Span() Span { return n.SpanVal }
func (n *Formal) node()      {}

// FunctionDefinition represents to name(formals) = body or a block body.
type FunctionDefinition struct {
	SpanVal Span
	Name    string
	Formals []*Formal
	Body    Expr
}

func (n *FunctionDefinition) Span() Span { return n.SpanVal }
func (n *FunctionDefinition) node()      {}
func (n *FunctionDefinition) expr()      {}

// TimeWindow runs Body only while the run clock lies within [From, To].
// Either bound may be nil.
type TimeWindow struct {
	SpanVal Span
	From    Expr
	To      Expr
	Body    *Block
}

func (n *TimeWindow) Span() Span { return n.SpanVal }
func (n *TimeWindow) node()      {}
func (n *TimeWindow) expr()      {}
