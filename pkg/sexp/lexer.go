package sexp

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// TokenType is the kind of a token handed to the parser.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenLeftParen
	TokenRightParen
	TokenSymbol
	TokenString
)

func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenLeftParen:
		return "'('"
	case TokenRightParen:
		return "')'"
	case TokenSymbol:
		return "symbol"
	case TokenString:
		return "string"
	}
	return fmt.Sprintf("token(%d)", int(t))
}

type Token struct {
	Type  TokenType
	Value string
	Line  int
}

// A '#' only starts a comment at the beginning of a token.
var fileLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"(?:\\[\s\S]|[^"\\])*"`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Symbol", Pattern: `[^\s()"#][^\s()"]*`},
})

// tokenTypes maps the lexer rules to parser tokens. Rules missing here are
// skipped.
var tokenTypes = func() map[lexer.TokenType]TokenType {
	sym := fileLexer.Symbols()
	return map[lexer.TokenType]TokenType{
		sym["LParen"]: TokenLeftParen,
		sym["RParen"]: TokenRightParen,
		sym["Symbol"]: TokenSymbol,
		sym["String"]: TokenString,
	}
}()

// Lexer turns a circuit file into parser tokens.
type Lexer struct {
	lex lexer.Lexer
	err error
}

// NewLexer creates a lexer reading r. Read errors surface on the first
// NextToken call.
func NewLexer(r io.Reader) *Lexer {
	lex, err := fileLexer.Lex("", r)
	return &Lexer{lex: lex, err: err}
}

// NextToken returns the next token, or a TokenEOF token at the end of input.
func (l *Lexer) NextToken() (Token, error) {
	if l.err != nil {
		return Token{}, l.err
	}
	for {
		tok, err := l.lex.Next()
		if err != nil {
			l.err = err
			return Token{}, err
		}
		if tok.EOF() {
			return Token{Type: TokenEOF, Line: tok.Pos.Line}, nil
		}
		typ, ok := tokenTypes[tok.Type]
		if !ok {
			continue
		}
		value := tok.Value
		if typ == TokenString {
			value = unquote(value)
		}
		return Token{Type: typ, Value: value, Line: tok.Pos.Line}, nil
	}
}

// unquote strips the quotes of a string token and resolves \n, \t and \r.
// Any other escaped rune stands for itself.
func unquote(s string) string {
	s = s[1 : len(s)-1]
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if escaped {
			switch r {
			case 'n':
				r = '\n'
			case 't':
				r = '\t'
			case 'r':
				r = '\r'
			}
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
