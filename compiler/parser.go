package compiler

import (
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Parser: Recursive descent parser for Madeup syntax
// ---------------------------------------------------------------------------

// Parser holds the parse state: a single forward index into the token
// stream and the stack of indentation widths of the open blocks.
type Parser struct {
	tokens  []Token
	i       int
	indents []int
}

// NewParser creates a parser over a lexed token stream.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens, indents: []int{0}}
}

// Parse builds the program block from tokens.
func Parse(tokens []Token) (*Block, error) {
	return NewParser(tokens).ParseProgram()
}

// ParseSource lexes and parses source text.
func ParseSource(source string) (*Block, error) {
	tokens, err := Lex(source)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

// ---------------------------------------------------------------------------
// Token helpers
// ---------------------------------------------------------------------------

func (p *Parser) has(t TokenType, offset int) bool {
	j := p.i + offset
	return j < len(p.tokens) && p.tokens[j].Type == t
}

func (p *Parser) current() Token {
	if p.i < len(p.tokens) {
		return p.tokens[p.i]
	}
	if len(p.tokens) > 0 {
		return p.tokens[len(p.tokens)-1]
	}
	return Token{Type: TokenEOF}
}

func (p *Parser) consume() Token {
	tok := p.current()
	if p.i < len(p.tokens) {
		p.i++
	}
	return tok
}

// expect consumes a token of type t or fails naming what was wanted.
func (p *Parser) expect(t TokenType, what string) (Token, error) {
	if p.has(t, 0) {
		return p.consume(), nil
	}
	return Token{}, p.unexpected(what)
}

func (p *Parser) unexpected(what string) *Error {
	tok := p.current()
	return errorAt(tok.Span, "I expected %s, but I encountered %s.", what, describe(tok))
}

func describe(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return "the end of the program"
	case TokenLinebreak:
		return "the end of the line"
	case TokenIndentation:
		return "indentation"
	}
	return strconv.Quote(tok.Source)
}

func (p *Parser) level() int {
	return p.indents[len(p.indents)-1]
}

// width returns the indentation width of the token at offset, or -1 if it
// is not an Indentation token.
func (p *Parser) width(offset int) int {
	if !p.has(TokenIndentation, offset) {
		return -1
	}
	return len(p.tokens[p.i+offset].Source)
}

// ---------------------------------------------------------------------------
// Program structure
// ---------------------------------------------------------------------------

// ParseProgram parses a whole program. Top-level statements carry no
// indentation.
func (p *Parser) ParseProgram() (*Block, error) {
	block := &Block{}
	for p.has(TokenIndentation, 0) {
		if w := p.width(0); w != 0 {
			return nil, errorAt(p.current().Span, "I expected consistent indentation, but the indentation jumps around.")
		}
		p.consume()
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
	if !p.has(TokenEOF, 0) {
		return nil, p.unexpected("a new statement")
	}
	block.SpanVal = spanOfStatements(block.Statements)
	return block, nil
}

// block parses an indented block. The linebreak that introduces it has
// already been consumed.
func (p *Parser) block() (*Block, error) {
	enclosing := p.level()
	w := p.width(0)
	if w <= enclosing {
		return nil, errorAt(p.current().Span, "I encountered an empty block, but those are forbidden.")
	}

	p.indents = append(p.indents, w)
	defer func() { p.indents = p.indents[:len(p.indents)-1] }()

	block := &Block{}
	for p.width(0) == w {
		p.consume()
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}

	if next := p.width(0); next > w || (next < w && next > enclosing) {
		return nil, errorAt(p.current().Span, "I expected consistent indentation, but the indentation jumps around.")
	}

	block.SpanVal = spanOfStatements(block.Statements)
	return block, nil
}

func spanOfStatements(stmts []Expr) Span {
	if len(stmts) == 0 {
		return Span{}
	}
	return Join(stmts[0].Span(), stmts[len(stmts)-1].Span())
}

// statement parses one expression and its terminator. Compound statements
// consume their own blocks, so they end at the next line's indentation.
func (p *Parser) statement() (Expr, error) {
	e, err := p.expression()
	if err != nil {
		return nil, err
	}
	switch {
	case p.has(TokenLinebreak, 0):
		p.consume()
	case p.has(TokenEOF, 0), p.has(TokenIndentation, 0):
	default:
		return nil, p.unexpected("a linebreak")
	}
	return e, nil
}

// ---------------------------------------------------------------------------
// Expressions by precedence
// ---------------------------------------------------------------------------

func (p *Parser) expression() (Expr, error) {
	return p.assignment()
}

func (p *Parser) assignment() (Expr, error) {
	lhs, err := p.equality()
	if err != nil {
		return nil, err
	}
	if !p.has(TokenAssign, 0) {
		return lhs, nil
	}
	eq := p.consume()
	switch lhs.(type) {
	case *Identifier, *Member, *Subscript:
	default:
		return nil, errorAt(eq.Span, "I can't assign a value to the left-hand side of this =.")
	}
	rhs, err := p.assignment()
	if err != nil {
		return nil, err
	}
	return &Assignment{SpanVal: Join(lhs.Span(), rhs.Span()), Target: lhs, Value: rhs}, nil
}

var binaryOperators = map[TokenType]Operator{
	TokenSame:         OpSame,
	TokenNotSame:      OpNotSame,
	TokenLess:         OpLess,
	TokenLessEqual:    OpLessEqual,
	TokenMore:         OpMore,
	TokenMoreEqual:    OpMoreEqual,
	TokenPlus:         OpAdd,
	TokenMinus:        OpSubtract,
	TokenAsterisk:     OpMultiply,
	TokenForwardSlash: OpDivide,
	TokenPercent:      OpRemainder,
	TokenCircumflex:   OpPower,
}

// binaryLevel parses a left-associative chain of the given operator tokens.
func (p *Parser) binaryLevel(next func() (Expr, error), types ...TokenType) (Expr, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for {
		matched := false
		for _, t := range types {
			if p.has(t, 0) {
				matched = true
				break
			}
		}
		if !matched {
			return left, nil
		}
		op := binaryOperators[p.consume().Type]
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &Binary{SpanVal: Join(left.Span(), right.Span()), Operator: op, Left: left, Right: right}
	}
}

func (p *Parser) equality() (Expr, error) {
	return p.binaryLevel(p.relational, TokenSame, TokenNotSame)
}

func (p *Parser) relational() (Expr, error) {
	return p.binaryLevel(p.additive, TokenLess, TokenLessEqual, TokenMore, TokenMoreEqual)
}

func (p *Parser) additive() (Expr, error) {
	return p.binaryLevel(p.multiplicative, TokenPlus, TokenMinus)
}

func (p *Parser) multiplicative() (Expr, error) {
	return p.binaryLevel(p.unary, TokenAsterisk, TokenForwardSlash, TokenPercent)
}

func (p *Parser) unary() (Expr, error) {
	if !p.has(TokenMinus, 0) {
		return p.power()
	}
	minus := p.consume()
	operand, err := p.unary()
	if err != nil {
		return nil, err
	}
	return &Negate{SpanVal: Join(minus.Span, operand.Span()), Operand: operand}, nil
}

func (p *Parser) power() (Expr, error) {
	return p.binaryLevel(p.postfix, TokenCircumflex)
}

// postfix parses member access, member calls and subscripts.
func (p *Parser) postfix() (Expr, error) {
	base, err := p.atom()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.has(TokenDot, 0):
			p.consume()
			name, err := p.expect(TokenIdentifier, "a name after the dot")
			if err != nil {
				return nil, err
			}
			if p.has(TokenLeftParenthesis, 0) {
				actuals, end, err := p.actuals()
				if err != nil {
					return nil, err
				}
				base = &MemberCall{SpanVal: Join(base.Span(), end), Host: base, Name: name.Source, Actuals: actuals}
			} else {
				base = &Member{SpanVal: Join(base.Span(), name.Span), Base: base, Name: name.Source}
			}

		case p.has(TokenLeftSquareBracket, 0):
			p.consume()
			index, err := p.expression()
			if err != nil {
				return nil, err
			}
			closing, err := p.expect(TokenRightSquareBracket, "a ] to close the subscript")
			if err != nil {
				return nil, err
			}
			base = &Subscript{SpanVal: Join(base.Span(), closing.Span), Base: base, Index: index}

		default:
			return base, nil
		}
	}
}

// ---------------------------------------------------------------------------
// Atoms
// ---------------------------------------------------------------------------

func (p *Parser) atom() (Expr, error) {
	tok := p.current()
	switch tok.Type {
	case TokenInteger:
		p.consume()
		v, err := strconv.ParseInt(tok.Source, 10, 64)
		if err != nil {
			return nil, errorAt(tok.Span, "I can't represent the integer %s.", tok.Source)
		}
		return &IntegerLiteral{SpanVal: tok.Span, Value: v}, nil

	case TokenReal:
		p.consume()
		v, err := strconv.ParseFloat(tok.Source, 64)
		if err != nil {
			return nil, errorAt(tok.Span, "I can't represent the number %s.", tok.Source)
		}
		return &RealLiteral{SpanVal: tok.Span, Value: v}, nil

	case TokenString:
		p.consume()
		return &StringLiteral{SpanVal: tok.Span, Value: tok.Source[1 : len(tok.Source)-1]}, nil

	case TokenCharacter:
		p.consume()
		r := []rune(tok.Source)
		return &CharacterLiteral{SpanVal: tok.Span, Value: r[1]}, nil

	case TokenBoolean:
		p.consume()
		return &BooleanLiteral{SpanVal: tok.Span, Value: tok.Source == "true"}, nil

	case TokenSymbol:
		p.consume()
		name := strings.TrimPrefix(tok.Source, ":")
		e, ok := LookupSymbol(name, tok.Span)
		if !ok {
			return nil, errorAt(tok.Span, "I don't know the symbol %s.", tok.Source)
		}
		return e, nil

	case TokenLeftParenthesis:
		p.consume()
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParenthesis, "a ) to close the parenthesized expression"); err != nil {
			return nil, err
		}
		return e, nil

	case TokenLeftSquareBracket:
		return p.vector()
	case TokenTo:
		return p.definition()
	case TokenIf:
		return p.conditional()
	case TokenFor:
		return p.loop()
	case TokenRepeat:
		return p.repeat()
	case TokenWith:
		return p.window()

	case TokenIdentifier:
		if p.has(TokenLeftParenthesis, 1) {
			return p.call()
		}
		p.consume()
		return &Identifier{SpanVal: tok.Span, Name: tok.Source}, nil
	}

	if tok.Type == TokenEOF || tok.Type == TokenLinebreak {
		return nil, p.unexpected("an expression")
	}
	return nil, errorAt(tok.Span, "I don't know what %q means here.", tok.Source)
}

// openList consumes an opening delimiter and, if the list continues on a
// more deeply indented line, enters multi-line mode by pushing that width.
func (p *Parser) openList(open TokenType, what string) (Token, bool, error) {
	opener, err := p.expect(open, what)
	if err != nil {
		return Token{}, false, err
	}
	if !p.has(TokenLinebreak, 0) {
		return opener, false, nil
	}
	w := p.width(1)
	if w <= p.level() {
		p.consume()
		return Token{}, false, errorAt(p.current().Span, "I expected the lines after %s to be indented one more level.", opener.Source)
	}
	p.consume()
	p.consume()
	p.indents = append(p.indents, w)
	return opener, true, nil
}

// separator consumes a comma between list items, plus the line change that
// may follow it in multi-line mode. It reports whether another item follows.
func (p *Parser) separator(multiline bool) (bool, error) {
	if !p.has(TokenComma, 0) {
		return false, nil
	}
	p.consume()
	if multiline && p.has(TokenLinebreak, 0) {
		p.consume()
		if p.width(0) != p.level() {
			return false, errorAt(p.current().Span, "I expected consistent indentation, but the indentation jumps around.")
		}
		p.consume()
	}
	return true, nil
}

// closeList expects the closing delimiter, which in multi-line mode sits on
// its own line back at the enclosing indentation.
func (p *Parser) closeList(close TokenType, multiline bool, what string) (Token, error) {
	if multiline {
		p.indents = p.indents[:len(p.indents)-1]
		if _, err := p.expect(TokenLinebreak, what); err != nil {
			return Token{}, err
		}
		if p.width(0) != p.level() {
			return Token{}, errorAt(p.current().Span, "I expected %s to return to the indentation where it started.", what)
		}
		p.consume()
	}
	return p.expect(close, what)
}

func (p *Parser) vector() (Expr, error) {
	opener, multiline, err := p.openList(TokenLeftSquareBracket, "a [")
	if err != nil {
		return nil, err
	}
	var elements []Expr
	if !p.has(TokenRightSquareBracket, 0) {
		for {
			if p.has(TokenTilde, 0) {
				tilde := p.consume()
				if len(elements) == 0 {
					return nil, errorAt(tilde.Span, "I found ~ at the start of a vector, but there's no earlier element to repeat.")
				}
				elements = append(elements, &RepeatPrevious{SpanVal: tilde.Span})
			} else {
				e, err := p.expression()
				if err != nil {
					return nil, err
				}
				elements = append(elements, e)
			}
			more, err := p.separator(multiline)
			if err != nil {
				return nil, err
			}
			if !more {
				break
			}
		}
	}
	closing, err := p.closeList(TokenRightSquareBracket, multiline, "a ] to close the vector")
	if err != nil {
		return nil, err
	}
	return &VectorLiteral{SpanVal: Join(opener.Span, closing.Span), Elements: elements}, nil
}

func (p *Parser) call() (Expr, error) {
	name := p.consume()
	actuals, end, err := p.actuals()
	if err != nil {
		return nil, err
	}
	return &Call{SpanVal: Join(name.Span, end), Name: name.Source, NameSpan: name.Span, Actuals: actuals}, nil
}

// actuals parses a parenthesized list of named arguments.
func (p *Parser) actuals() ([]*Actual, Span, error) {
	_, multiline, err := p.openList(TokenLeftParenthesis, "a (")
	if err != nil {
		return nil, Span{}, err
	}

	var actuals []*Actual
	seen := make(map[string]bool)
	if !p.has(TokenRightParenthesis, 0) {
		for {
			actual, err := p.actual()
			if err != nil {
				return nil, Span{}, err
			}
			for _, name := range actual.Names {
				if seen[name] {
					return nil, Span{}, errorAt(actual.SpanVal, "I found parameter %s supplied more than once.", name)
				}
				seen[name] = true
			}
			actuals = append(actuals, actual)

			more, err := p.separator(multiline)
			if err != nil {
				return nil, Span{}, err
			}
			if !more {
				break
			}
		}
	}

	closing, err := p.closeList(TokenRightParenthesis, multiline, "a ) to close the call")
	if err != nil {
		return nil, Span{}, err
	}
	return actuals, closing.Span, nil
}

func (p *Parser) actual() (*Actual, error) {
	tok := p.current()
	switch {
	case p.has(TokenIdentifier, 0) && p.has(TokenAssign, 1):
		p.consume()
		p.consume()
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		return &Actual{SpanVal: Join(tok.Span, value.Span()), Names: []string{tok.Source}, Value: value}, nil

	case p.has(TokenIdentifier, 0) && (p.has(TokenComma, 1) || p.has(TokenRightParenthesis, 1) || p.has(TokenLinebreak, 1)):
		p.consume()
		return &Actual{SpanVal: tok.Span, Names: []string{tok.Source}}, nil

	case p.has(TokenLeftSquareBracket, 0):
		p.consume()
		var names []string
		for {
			name, err := p.expect(TokenIdentifier, "a parameter name inside the brackets")
			if err != nil {
				return nil, err
			}
			names = append(names, name.Source)
			if !p.has(TokenComma, 0) {
				break
			}
			p.consume()
		}
		if _, err := p.expect(TokenRightSquareBracket, "a ] to close the parameter names"); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenAssign, "an = after the bracketed parameter names"); err != nil {
			return nil, err
		}
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		return &Actual{SpanVal: Join(tok.Span, value.Span()), Names: names, Value: value, Destructure: true}, nil
	}
	return nil, errorAt(tok.Span, "I expected the parameters to be named.")
}

// ---------------------------------------------------------------------------
// Compound statements
// ---------------------------------------------------------------------------

func (p *Parser) definition() (Expr, error) {
	to := p.consume()
	name, err := p.expect(TokenIdentifier, "a function name after to")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLeftParenthesis, "a ( to start the parameter list"); err != nil {
		return nil, err
	}

	var formals []*Formal
	seen := make(map[string]bool)
	if !p.has(TokenRightParenthesis, 0) {
		for {
			id, err := p.expect(TokenIdentifier, "a parameter name")
			if err != nil {
				return nil, err
			}
			if seen[id.Source] {
				return nil, errorAt(id.Span, "I found parameter %s declared more than once.", id.Source)
			}
			seen[id.Source] = true
			formal := &Formal{SpanVal: id.Span, Name: id.Source}
			if p.has(TokenAssign, 0) {
				p.consume()
				def, err := p.expression()
				if err != nil {
					return nil, err
				}
				formal.Default = def
				formal.SpanVal = Join(id.Span, def.Span())
			}
			formals = append(formals, formal)
			if !p.has(TokenComma, 0) {
				break
			}
			p.consume()
		}
	}
	if _, err := p.expect(TokenRightParenthesis, "a ) to close the parameter list"); err != nil {
		return nil, err
	}

	var body Expr
	switch {
	case p.has(TokenAssign, 0):
		p.consume()
		body, err = p.expression()
	case p.has(TokenLinebreak, 0):
		p.consume()
		body, err = p.block()
	default:
		return nil, p.unexpected("either = or a linebreak after the parameter list")
	}
	if err != nil {
		return nil, err
	}
	return &FunctionDefinition{SpanVal: Join(to.Span, body.Span()), Name: name.Source, Formals: formals, Body: body}, nil
}

func (p *Parser) conditional() (Expr, error) {
	start := p.consume()
	n := &If{}

	cond, err := p.expression()
	if err != nil {
		return nil, err
	}

	if p.has(TokenThen, 0) {
		p.consume()
		then, err := p.expression()
		if err != nil {
			return nil, err
		}
		n.Conditions = append(n.Conditions, cond)
		n.Consequents = append(n.Consequents, then)
		end := then.Span()

		for p.has(TokenElseIf, 0) {
			p.consume()
			c, err := p.expression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(TokenThen, "then after the condition"); err != nil {
				return nil, err
			}
			e, err := p.expression()
			if err != nil {
				return nil, err
			}
			n.Conditions = append(n.Conditions, c)
			n.Consequents = append(n.Consequents, e)
			end = e.Span()
		}
		if p.has(TokenElse, 0) {
			p.consume()
			e, err := p.expression()
			if err != nil {
				return nil, err
			}
			n.Alternative = e
			end = e.Span()
		}
		n.SpanVal = Join(start.Span, end)
		return n, nil
	}

	if _, err := p.expect(TokenLinebreak, "then or a linebreak after the condition"); err != nil {
		return nil, err
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	n.Conditions = append(n.Conditions, cond)
	n.Consequents = append(n.Consequents, then)
	end := then.Span()

	level := p.level()
	for p.width(0) == level && p.has(TokenElseIf, 1) {
		p.consume()
		p.consume()
		c, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenLinebreak, "a linebreak after the condition"); err != nil {
			return nil, err
		}
		b, err := p.block()
		if err != nil {
			return nil, err
		}
		n.Conditions = append(n.Conditions, c)
		n.Consequents = append(n.Consequents, b)
		end = b.Span()
	}
	if p.width(0) == level && p.has(TokenElse, 1) {
		p.consume()
		p.consume()
		if _, err := p.expect(TokenLinebreak, "a linebreak after else"); err != nil {
			return nil, err
		}
		b, err := p.block()
		if err != nil {
			return nil, err
		}
		n.Alternative = b
		end = b.Span()
	}
	n.SpanVal = Join(start.Span, end)
	return n, nil
}

func (p *Parser) loop() (Expr, error) {
	start := p.consume()
	id, err := p.expect(TokenIdentifier, "a loop variable after for")
	if err != nil {
		return nil, err
	}
	iterator := &Identifier{SpanVal: id.Span, Name: id.Source}

	if p.has(TokenOf, 0) {
		p.consume()
		vector, err := p.expression()
		if err != nil {
			return nil, err
		}
		body, err := p.loopBody()
		if err != nil {
			return nil, err
		}
		return &ForOf{SpanVal: Join(start.Span, body.Span()), Iterator: iterator, Vector: vector, Body: body}, nil
	}

	n := &For{Iterator: iterator}
	switch {
	case p.has(TokenIn, 0):
		p.consume()
		n.Form = ForIn
		if n.Start, err = p.expression(); err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRange, "a .. between the loop bounds"); err != nil {
			return nil, err
		}
		if n.Stop, err = p.expression(); err != nil {
			return nil, err
		}
		if p.has(TokenBy, 0) {
			p.consume()
			if n.By, err = p.expression(); err != nil {
				return nil, err
			}
		}
	case p.has(TokenTo, 0):
		p.consume()
		n.Form = ForTo
		if n.Stop, err = p.expression(); err != nil {
			return nil, err
		}
	case p.has(TokenThrough, 0):
		p.consume()
		n.Form = ForThrough
		if n.Stop, err = p.expression(); err != nil {
			return nil, err
		}
	default:
		return nil, p.unexpected("in, to, through, or of after the loop variable")
	}

	if n.Body, err = p.loopBody(); err != nil {
		return nil, err
	}
	n.SpanVal = Join(start.Span, n.Body.Span())
	return n, nil
}

func (p *Parser) loopBody() (*Block, error) {
	if _, err := p.expect(TokenLinebreak, "a linebreak before the loop body"); err != nil {
		return nil, err
	}
	return p.block()
}

func (p *Parser) repeat() (Expr, error) {
	start := p.consume()
	count, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenLinebreak, "a linebreak after the repeat count"); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}

	if p.width(0) == p.level() && p.has(TokenAround, 1) {
		p.consume()
		p.consume()
		if _, err := p.expect(TokenLinebreak, "a linebreak after around"); err != nil {
			return nil, err
		}
		around, err := p.block()
		if err != nil {
			return nil, err
		}
		return &RepeatAround{SpanVal: Join(start.Span, around.Span()), Count: count, Body: body, Around: around}, nil
	}
	return &Repeat{SpanVal: Join(start.Span, body.Span()), Count: count, Body: body}, nil
}

// window parses with a -> b, with -> b and with a -> followed by a block.
func (p *Parser) window() (Expr, error) {
	start := p.consume()
	n := &TimeWindow{}
	var err error
	if !p.has(TokenRightArrow, 0) {
		if n.From, err = p.expression(); err != nil {
			return nil, err
		}
	}
	arrow, err := p.expect(TokenRightArrow, "a -> in the time window")
	if err != nil {
		return nil, err
	}
	if !p.has(TokenLinebreak, 0) {
		if n.To, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if n.From == nil && n.To == nil {
		return nil, errorAt(arrow.Span, "I expected a time on at least one side of ->.")
	}
	if _, err := p.expect(TokenLinebreak, "a linebreak after the time window"); err != nil {
		return nil, err
	}
	if n.Body, err = p.block(); err != nil {
		return nil, err
	}
	n.SpanVal = Join(start.Span, n.Body.Span())
	return n, nil
}
