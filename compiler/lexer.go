package compiler

import (
	"unicode"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for Madeup syntax
// ---------------------------------------------------------------------------

// Lexer tokenizes Madeup source code. Indentation is significant, so every
// logical line starts with an Indentation token holding its leading
// whitespace. Blank and comment-only lines produce no tokens at all.
type Lexer struct {
	src    []rune
	pos    int // index of the next unread rune
	line   int // 0-based line of src[pos]
	col    int // 0-based column of src[pos]
	tokens []Token

	startPos  int
	startLine int
	startCol  int
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{src: []rune(input)}
}

// Lex converts source text into a token stream terminated by a single EOF
// token. It fails on the first unrecognized lexeme; no partial stream is
// returned.
func Lex(source string) ([]Token, error) {
	return NewLexer(source).Tokens()
}

// Tokens lexes the whole input.
func (l *Lexer) Tokens() ([]Token, error) {
	l.indentation()
	for l.pos < len(l.src) {
		if err := l.next(); err != nil {
			return nil, err
		}
	}
	l.begin()
	l.emit(TokenEOF)
	return l.tokens, nil
}

// peek returns the rune offset runes ahead without consuming it.
func (l *Lexer) peek(offset int) rune {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

// advance consumes one rune, tracking line and column.
func (l *Lexer) advance() rune {
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return r
}

// begin marks the start of the token about to be lexed.
func (l *Lexer) begin() {
	l.startPos = l.pos
	l.startLine = l.line
	l.startCol = l.col
}

// span returns the span from the marked start to the current position.
func (l *Lexer) span() Span {
	return Span{
		LineStart:   l.startLine,
		LineEnd:     l.line,
		ColumnStart: l.startCol,
		ColumnEnd:   l.col,
	}
}

func (l *Lexer) emit(t TokenType) {
	l.tokens = append(l.tokens, Token{
		Type:   t,
		Source: string(l.src[l.startPos:l.pos]),
		Span:   l.span(),
	})
}

func (l *Lexer) last() (Token, bool) {
	if len(l.tokens) == 0 {
		return Token{}, false
	}
	return l.tokens[len(l.tokens)-1], true
}

// indentation measures the leading whitespace of the next logical line.
// Lines that hold nothing but whitespace or a comment are absorbed.
func (l *Lexer) indentation() {
	for {
		l.begin()
		for l.pos < len(l.src) && (l.peek(0) == ' ' || l.peek(0) == '\t') {
			l.advance()
		}
		indentEnd := l.pos
		indentSpan := l.span()

		for l.pos < len(l.src) && l.peek(0) == '\r' {
			l.advance()
		}
		switch {
		case l.pos >= len(l.src):
			return
		case l.peek(0) == '\n':
			l.advance()
			continue
		case l.peek(0) == '/' && l.peek(1) == '/':
			l.skipComment()
			if l.pos < len(l.src) {
				l.advance()
			}
			continue
		}

		l.tokens = append(l.tokens, Token{
			Type:   TokenIndentation,
			Source: string(l.src[l.startPos:indentEnd]),
			Span:   indentSpan,
		})
		return
	}
}

func (l *Lexer) skipComment() {
	for l.pos < len(l.src) && l.peek(0) != '\n' {
		l.advance()
	}
}

// next lexes one token, or skips whitespace or a trailing comment.
func (l *Lexer) next() error {
	c := l.peek(0)
	l.begin()

	switch {
	case c == ' ' || c == '\t' || c == '\r':
		l.advance()
		return nil

	case c == '\n':
		l.advance()
		l.tokens = append(l.tokens, Token{
			Type:   TokenLinebreak,
			Source: "\n",
			Span:   Span{LineStart: l.startLine, LineEnd: l.startLine, ColumnStart: l.startCol, ColumnEnd: l.startCol + 1},
		})
		l.indentation()
		return nil

	case c == '/' && l.peek(1) == '/':
		l.skipComment()
		return nil

	case isDigit(c):
		return l.number()

	case c == '.':
		if isDigit(l.peek(1)) {
			return l.number()
		}
		l.advance()
		if l.peek(0) == '.' {
			l.advance()
			l.emit(TokenRange)
		} else {
			l.emit(TokenDot)
		}
		return nil

	case c == '-':
		if l.peek(1) == '>' {
			l.advance()
			l.advance()
			l.emit(TokenRightArrow)
			return nil
		}
		if isDigit(l.peek(1)) || (l.peek(1) == '.' && isDigit(l.peek(2))) {
			if prev, ok := l.last(); !ok || !prev.Type.endsOperand() {
				return l.number()
			}
		}
		l.advance()
		l.emit(TokenMinus)
		return nil

	case c == '"':
		return l.stringLiteral()

	case c == '\'':
		return l.characterLiteral()

	case c == ':' && isSymbolRune(l.peek(1)):
		l.advance()
		for isSymbolRune(l.peek(0)) {
			l.advance()
		}
		l.emit(TokenSymbol)
		return nil

	case unicode.IsLetter(c) || c == '_':
		l.identifier()
		return nil

	case c == '=':
		return l.maybeDouble('=', TokenSame, TokenAssign)
	case c == '<':
		return l.maybeDouble('=', TokenLessEqual, TokenLess)
	case c == '>':
		return l.maybeDouble('=', TokenMoreEqual, TokenMore)
	case c == '!' && l.peek(1) == '=':
		return l.maybeDouble('=', TokenNotSame, TokenNotSame)
	}

	if t, ok := singles[c]; ok {
		l.advance()
		l.emit(t)
		return nil
	}

	l.advance()
	return errorAt(l.span(), "I encountered %q, and I don't know what it means.", string(c))
}

var singles = map[rune]TokenType{
	'(': TokenLeftParenthesis,
	')': TokenRightParenthesis,
	'[': TokenLeftSquareBracket,
	']': TokenRightSquareBracket,
	'{': TokenLeftCurlyBrace,
	'}': TokenRightCurlyBrace,
	',': TokenComma,
	'+': TokenPlus,
	'*': TokenAsterisk,
	'/': TokenForwardSlash,
	'%': TokenPercent,
	'^': TokenCircumflex,
	'~': TokenTilde,
}

// maybeDouble emits double if the rune after the current one is second,
// otherwise single.
func (l *Lexer) maybeDouble(second rune, double, single TokenType) error {
	l.advance()
	if l.peek(0) == second {
		l.advance()
		l.emit(double)
		return nil
	}
	l.emit(single)
	return nil
}

// number lexes an optionally negative integer or real literal. A dot
// followed by a second dot is a range operator, not a fraction.
func (l *Lexer) number() error {
	typ := TokenInteger
	if l.peek(0) == '-' {
		l.advance()
	}
	for isDigit(l.peek(0)) {
		l.advance()
	}
	if l.peek(0) == '.' && l.peek(1) != '.' {
		typ = TokenReal
		l.advance()
		for isDigit(l.peek(0)) {
			l.advance()
		}
	}
	if (l.peek(0) == 'e' || l.peek(0) == 'E') && isDigit(l.peek(1)) {
		typ = TokenReal
		l.advance()
		for isDigit(l.peek(0)) {
			l.advance()
		}
	}
	l.emit(typ)
	return nil
}

func (l *Lexer) stringLiteral() error {
	l.advance()
	for l.pos < len(l.src) && l.peek(0) != '"' && l.peek(0) != '\n' {
		l.advance()
	}
	if l.peek(0) != '"' {
		return errorAt(l.span(), "I see a string literal, but it isn't closed with \".")
	}
	l.advance()
	l.emit(TokenString)
	return nil
}

func (l *Lexer) characterLiteral() error {
	l.advance()
	if l.pos < len(l.src) && l.peek(0) != '\'' && l.peek(0) != '\n' {
		l.advance()
	}
	if l.peek(0) != '\'' || l.pos-l.startPos != 2 {
		return errorAt(l.span(), "I see a character literal, but it isn't closed with '.")
	}
	l.advance()
	l.emit(TokenCharacter)
	return nil
}

// identifier lexes a name or keyword. An "if" directly after an "else"
// merges with it into a single ElseIf token.
func (l *Lexer) identifier() {
	for {
		c := l.peek(0)
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' {
			l.advance()
			continue
		}
		break
	}
	word := string(l.src[l.startPos:l.pos])
	typ, ok := keywords[word]
	if !ok {
		l.emit(TokenIdentifier)
		return
	}
	if typ == TokenIf {
		if prev, ok := l.last(); ok && prev.Type == TokenElse {
			l.tokens[len(l.tokens)-1] = Token{
				Type:   TokenElseIf,
				Source: "else if",
				Span:   Join(prev.Span, l.span()),
			}
			return
		}
	}
	l.emit(typ)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isSymbolRune(r rune) bool {
	return r == '-' || r == '_' || isDigit(r) || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
