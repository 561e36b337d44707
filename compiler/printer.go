package compiler

import (
	"math"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Printer: renders an AST back to Madeup source
// ---------------------------------------------------------------------------

const printIndent = "  "

// Format renders an expression as source text that parses back to an
// equivalent tree. Parentheses are emitted only where precedence needs them.
func Format(e Expr) string {
	p := &printer{}
	if b, ok := e.(*Block); ok {
		p.statements(b)
	} else {
		p.expr(e, precAssignment)
	}
	return p.b.String()
}

type printer struct {
	b     strings.Builder
	depth int
}

func (p *printer) write(s string) {
	p.b.WriteString(s)
}

// statements writes each statement of b on its own line at the current depth.
func (p *printer) statements(b *Block) {
	for i, stmt := range b.Statements {
		if i > 0 {
			p.write("\n")
		}
		p.write(strings.Repeat(printIndent, p.depth))
		p.expr(stmt, precAssignment)
	}
}

// block writes a linebreak followed by b one level deeper.
func (p *printer) block(b *Block) {
	p.write("\n")
	p.depth++
	p.statements(b)
	p.depth--
}

// continuation starts a new line at the current depth, for else and around.
func (p *printer) continuation(keyword string) {
	p.write("\n")
	p.write(strings.Repeat(printIndent, p.depth))
	p.write(keyword)
}

func (p *printer) expr(e Expr, min int) {
	switch n := e.(type) {
	case *IntegerLiteral:
		p.write(strconv.FormatInt(n.Value, 10))
	case *RealLiteral:
		p.write(FormatReal(n.Value))
	case *BooleanLiteral:
		p.write(strconv.FormatBool(n.Value))
	case *StringLiteral:
		p.write(`"` + n.Value + `"`)
	case *CharacterLiteral:
		p.write("'" + string(n.Value) + "'")
	case *RepeatPrevious:
		p.write("~")

	case *VectorLiteral:
		p.write("[")
		for i, el := range n.Elements {
			if i > 0 {
				p.write(", ")
			}
			p.expr(el, precAssignment)
		}
		p.write("]")

	case *Binary:
		prec := n.Operator.Precedence()
		p.open(prec, min)
		p.expr(n.Left, prec)
		p.write(" " + n.Operator.String() + " ")
		p.expr(n.Right, prec+1)
		p.close(prec, min)

	case *Negate:
		p.open(precUnary, min)
		p.write("-")
		if startsWithMinus(n.Operand) {
			p.write("(")
			p.expr(n.Operand, precAssignment)
			p.write(")")
		} else {
			p.expr(n.Operand, precUnary)
		}
		p.close(precUnary, min)

	case *Identifier:
		p.write(n.Name)
	case *Member:
		p.expr(n.Base, precPostfix)
		p.write("." + n.Name)
	case *Subscript:
		p.expr(n.Base, precPostfix)
		p.write("[")
		p.expr(n.Index, precAssignment)
		p.write("]")
	case *Call:
		p.write(n.Name)
		p.actuals(n.Actuals)
	case *MemberCall:
		p.expr(n.Host, precPostfix)
		p.write("." + n.Name)
		p.actuals(n.Actuals)

	case *Assignment:
		p.open(precAssignment, min)
		p.expr(n.Target, precEquality)
		p.write(" = ")
		p.expr(n.Value, precAssignment)
		p.close(precAssignment, min)

	case *Block:
		p.block(n)

	case *If:
		p.conditional(n)

	case *For:
		p.write("for " + n.Iterator.Name)
		switch n.Form {
		case ForIn:
			p.write(" in ")
			p.expr(n.Start, precEquality)
			p.write("..")
			p.expr(n.Stop, precEquality)
			if n.By != nil {
				p.write(" by ")
				p.expr(n.By, precEquality)
			}
		case ForTo:
			p.write(" to ")
			p.expr(n.Stop, precEquality)
		case ForThrough:
			p.write(" through ")
			p.expr(n.Stop, precEquality)
		}
		p.block(n.Body)

	case *ForOf:
		p.write("for " + n.Iterator.Name + " of ")
		p.expr(n.Vector, precEquality)
		p.block(n.Body)

	case *Repeat:
		p.write("repeat ")
		p.expr(n.Count, precEquality)
		p.block(n.Body)

	case *RepeatAround:
		p.write("repeat ")
		p.expr(n.Count, precEquality)
		p.block(n.Body)
		p.continuation("around")
		p.block(n.Around)

	case *FunctionDefinition:
		p.write("to " + n.Name + "(")
		for i, f := range n.Formals {
			if i > 0 {
				p.write(", ")
			}
			p.write(f.Name)
			if f.Default != nil {
				p.write(" = ")
				p.expr(f.Default, precAssignment)
			}
		}
		p.write(")")
		if b, ok := n.Body.(*Block); ok {
			p.block(b)
		} else {
			p.write(" = ")
			p.expr(n.Body, precAssignment)
		}

	case *TimeWindow:
		p.write("with ")
		if n.From != nil {
			p.expr(n.From, precEquality)
			p.write(" ")
		}
		p.write("->")
		if n.To != nil {
			p.write(" ")
			p.expr(n.To, precEquality)
		}
		p.block(n.Body)
	}
}

func (p *printer) open(prec, min int) {
	if prec < min {
		p.write("(")
	}
}

func (p *printer) close(prec, min int) {
	if prec < min {
		p.write(")")
	}
}

func (p *printer) actuals(actuals []*Actual) {
	p.write("(")
	for i, a := range actuals {
		if i > 0 {
			p.write(", ")
		}
		switch {
		case a.Destructure:
			p.write("[" + strings.Join(a.Names, ", ") + "] = ")
			p.expr(a.Value, precAssignment)
		case a.Value == nil:
			p.write(a.Names[0])
		default:
			p.write(a.Names[0] + " = ")
			p.expr(a.Value, precAssignment)
		}
	}
	p.write(")")
}

func (p *printer) conditional(n *If) {
	blockForm := true
	for _, c := range n.Consequents {
		if _, ok := c.(*Block); !ok {
			blockForm = false
		}
	}

	for i, cond := range n.Conditions {
		if i == 0 {
			p.write("if ")
		} else if blockForm {
			p.continuation("else if ")
		} else {
			p.write(" else if ")
		}
		p.expr(cond, precEquality)
		if blockForm {
			p.block(n.Consequents[i].(*Block))
		} else {
			p.write(" then ")
			p.expr(n.Consequents[i], precEquality)
		}
	}
	if n.Alternative == nil {
		return
	}
	if b, ok := n.Alternative.(*Block); ok && blockForm {
		p.continuation("else")
		p.block(b)
		return
	}
	p.write(" else ")
	p.expr(n.Alternative, precEquality)
}

// FormatReal renders a real so that it lexes back as a real. Non-finite
// values have no literal form and print by name.
func FormatReal(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".") {
		s += ".0"
	}
	return s
}

func startsWithMinus(e Expr) bool {
	switch n := e.(type) {
	case *IntegerLiteral:
		return n.Value < 0
	case *RealLiteral:
		return n.Value < 0 || (n.Value == 0 && strconv.FormatFloat(n.Value, 'f', -1, 64)[0] == '-')
	case *Negate:
		return true
	case *Binary:
		return startsWithMinus(n.Left)
	}
	return false
}
