package compiler

import (
	"fmt"
	"sort"
)

// ---------------------------------------------------------------------------
// Token types for the Madeup lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenIndentation // leading whitespace of a logical line
	TokenLinebreak

	// Literals
	TokenInteger   // 42, -7
	TokenReal      // 3.14, .5, 1e3
	TokenString    // "hello"
	TokenCharacter // 'a'
	TokenBoolean   // true, false
	TokenSymbol    // :up, :orange
	TokenIdentifier

	// Keywords
	TokenAround
	TokenBy
	TokenElse
	TokenElseIf // else if
	TokenFor
	TokenIf
	TokenIn
	TokenOf
	TokenRepeat
	TokenThen
	TokenThrough
	TokenTo
	TokenWith

	// Operators
	TokenAssign       // =
	TokenAsterisk     // *
	TokenCircumflex   // ^
	TokenComma        // ,
	TokenDot          // .
	TokenForwardSlash // /
	TokenLess         // <
	TokenLessEqual    // <=
	TokenMinus        // -
	TokenMore         // >
	TokenMoreEqual    // >=
	TokenNotSame      // !=
	TokenPercent      // %
	TokenPlus         // +
	TokenRange        // ..
	TokenRightArrow   // ->
	TokenSame         // ==
	TokenTilde        // ~

	// Delimiters
	TokenLeftParenthesis    // (
	TokenRightParenthesis   // )
	TokenLeftSquareBracket  // [
	TokenRightSquareBracket // ]
	TokenLeftCurlyBrace     // {
	TokenRightCurlyBrace    // }
)

var tokenNames = map[TokenType]string{
	TokenEOF:                "EOF",
	TokenIndentation:        "INDENTATION",
	TokenLinebreak:          "LINEBREAK",
	TokenInteger:            "INTEGER",
	TokenReal:               "REAL",
	TokenString:             "STRING",
	TokenCharacter:          "CHARACTER",
	TokenBoolean:            "BOOLEAN",
	TokenSymbol:             "SYMBOL",
	TokenIdentifier:         "IDENTIFIER",
	TokenAround:             "around",
	TokenBy:                 "by",
	TokenElse:               "else",
	TokenElseIf:             "else if",
	TokenFor:                "for",
	TokenIf:                 "if",
	TokenIn:                 "in",
	TokenOf:                 "of",
	TokenRepeat:             "repeat",
	TokenThen:               "then",
	TokenThrough:            "through",
	TokenTo:                 "to",
	TokenWith:               "with",
	TokenAssign:             "=",
	TokenAsterisk:           "*",
	TokenCircumflex:         "^",
	TokenComma:              ",",
	TokenDot:                ".",
	TokenForwardSlash:       "/",
	TokenLess:               "<",
	TokenLessEqual:          "<=",
	TokenMinus:              "-",
	TokenMore:               ">",
	TokenMoreEqual:          ">=",
	TokenNotSame:            "!=",
	TokenPercent:            "%",
	TokenPlus:               "+",
	TokenRange:              "..",
	TokenRightArrow:         "->",
	TokenSame:               "==",
	TokenTilde:              "~",
	TokenLeftParenthesis:    "(",
	TokenRightParenthesis:   ")",
	TokenLeftSquareBracket:  "[",
	TokenRightSquareBracket: "]",
	TokenLeftCurlyBrace:     "{",
	TokenRightCurlyBrace:    "}",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// keywords maps reserved spellings to their token types.
var keywords = map[string]TokenType{
	"around":  TokenAround,
	"by":      TokenBy,
	"else":    TokenElse,
	"false":   TokenBoolean,
	"for":     TokenFor,
	"if":      TokenIf,
	"in":      TokenIn,
	"of":      TokenOf,
	"repeat":  TokenRepeat,
	"then":    TokenThen,
	"through": TokenThrough,
	"to":      TokenTo,
	"true":    TokenBoolean,
	"with":    TokenWith,
}

// Keywords returns the reserved words of the language.
func Keywords() []string {
	words := make([]string, 0, len(keywords))
	for w := range keywords {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

// Token represents a lexical token. Tokens are immutable once lexed.
type Token struct {
	Type   TokenType
	Source string // literal text as it appears in the program
	Span   Span
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q at %s", t.Type, t.Source, t.Span)
}

// endsOperand reports whether a token of this type can be the last token of
// an operand. A dash after such a token is always subtraction.
func (t TokenType) endsOperand() bool {
	switch t {
	case TokenInteger, TokenReal, TokenString, TokenCharacter, TokenBoolean,
		TokenSymbol, TokenIdentifier, TokenRightParenthesis, TokenRightSquareBracket:
		return true
	}
	return false
}
