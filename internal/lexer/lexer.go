// Package lexer implements the jasp lexical analyzer.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jasp-lang/jasp/internal/position"
)

// TokenType represents the type of a token
type TokenType int

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(tt))
}

// Token types
const (
	TokenEOF TokenType = iota
	TokenError

	TokenInteger
	TokenFloat
	TokenString
	TokenKeyword
	TokenSymbol

	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenLBrace
	TokenRBrace
	TokenQuote
)

var tokenNames = map[TokenType]string{
	TokenEOF:      "EOF",
	TokenError:    "ERROR",
	TokenInteger:  "INTEGER",
	TokenFloat:    "FLOAT",
	TokenString:   "STRING",
	TokenKeyword:  "KEYWORD",
	TokenSymbol:   "SYMBOL",
	TokenLParen:   "(",
	TokenRParen:   ")",
	TokenLBracket: "[",
	TokenRBracket: "]",
	TokenLBrace:   "{",
	TokenRBrace:   "}",
	TokenQuote:    "'",
}

// Token represents a lexical token with position information.
//
// For strings Literal holds the decoded contents, for keywords the name
// without the leading colon, and for errors the message.
type Token struct {
	Type    TokenType
	Literal string
	Span    position.Span
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %q, Span: %s}", t.Type, t.Literal, t.Span)
}

// Lexer turns source text into tokens. Whitespace, commas and ';' line
// comments are skipped.
type Lexer struct {
	input        string
	filename     string
	position     int  // byte offset of ch
	readPosition int  // byte offset after ch
	ch           rune // current rune, 0 at end of input
	line         int  // line of ch
	column       int  // column of ch
}

// New creates a new lexer instance
func New(input string) *Lexer {
	return NewWithFilename(input, "")
}

// NewWithFilename creates a new lexer instance with filename for error reporting
func NewWithFilename(input, filename string) *Lexer {
	l := &Lexer{input: input, filename: filename, line: 1}
	l.readChar()
	return l
}

// readChar advances to the next rune
func (l *Lexer) readChar() {
	if l.position < l.readPosition {
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
	}
	l.column++

	l.position = l.readPosition
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.readPosition = len(l.input) + 1
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.readPosition += size
}

func (l *Lexer) atEOF() bool { return l.position >= len(l.input) }

// pos returns the position of the current rune
func (l *Lexer) pos() position.Position {
	offset := l.position
	if offset > len(l.input) {
		offset = len(l.input)
	}
	return position.Position{Filename: l.filename, Line: l.line, Column: l.column, Offset: offset}
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEOF() {
		switch {
		case l.ch == ',' || unicode.IsSpace(l.ch):
			l.readChar()
		case l.ch == ';':
			for !l.atEOF() && l.ch != '\n' {
				l.readChar()
			}
		default:
			return
		}
	}
}

var delimiters = map[rune]TokenType{
	'(':  TokenLParen,
	')':  TokenRParen,
	'[':  TokenLBracket,
	']':  TokenRBracket,
	'{':  TokenLBrace,
	'}':  TokenRBrace,
	'\'': TokenQuote,
}

// NextToken returns the next token. An error token ends the stream: every
// later call returns TokenEOF.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	start := l.pos()
	if l.atEOF() {
		return Token{Type: TokenEOF, Span: position.Span{Start: start, End: start}}
	}

	if tt, ok := delimiters[l.ch]; ok {
		lit := string(l.ch)
		l.readChar()
		return Token{Type: tt, Literal: lit, Span: position.Span{Start: start, End: l.pos()}}
	}

	switch l.ch {
	case '"':
		return l.readString(start)
	case ':':
		l.readChar()
		name := l.readAtom()
		span := position.Span{Start: start, End: l.pos()}
		if name == "" {
			return l.errorToken(span, "empty keyword")
		}
		return Token{Type: TokenKeyword, Literal: name, Span: span}
	}

	atom := l.readAtom()
	span := position.Span{Start: start, End: l.pos()}
	if atom == "" {
		// only reachable for a rune no rule accepts
		bad := l.ch
		l.readChar()
		return l.errorToken(position.Span{Start: start, End: l.pos()}, "unexpected character %q", bad)
	}
	return l.classifyAtom(atom, span)
}

func (l *Lexer) errorToken(span position.Span, format string, args ...interface{}) Token {
	// Park at end of input so the caller cannot read past an error.
	l.position = len(l.input)
	l.readPosition = len(l.input) + 1
	l.ch = 0
	return Token{Type: TokenError, Literal: fmt.Sprintf(format, args...), Span: span}
}

// IsSymbolChar reports whether r may appear in a symbol or keyword.
func IsSymbolChar(r rune) bool {
	if r == 0 || unicode.IsSpace(r) || r == utf8.RuneError {
		return false
	}
	switch r {
	case ',', '(', ')', '[', ']', '{', '}', '"', '\'', ';', ':':
		return false
	}
	return unicode.IsPrint(r)
}

func (l *Lexer) readAtom() string {
	start := l.position
	for !l.atEOF() && IsSymbolChar(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) classifyAtom(atom string, span position.Span) Token {
	body := strings.TrimLeft(atom, "+-")
	signs := len(atom) - len(body)

	if body == "" || !isDigit(rune(body[0])) || signs > 1 {
		if signs > 1 && body != "" && isDigit(rune(body[0])) {
			return l.errorToken(span, "malformed number %q", atom)
		}
		return Token{Type: TokenSymbol, Literal: atom, Span: span}
	}

	intPart := strings.TrimLeftFunc(body, isDigit)
	switch {
	case intPart == "":
		return Token{Type: TokenInteger, Literal: atom, Span: span}
	case intPart[0] == '.' && strings.TrimLeftFunc(intPart[1:], isDigit) == "":
		return Token{Type: TokenFloat, Literal: atom, Span: span}
	}
	return l.errorToken(span, "malformed number %q", atom)
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

var escapes = map[rune]rune{
	'"':  '"',
	'\\': '\\',
	'/':  '/',
	'n':  '\n',
	't':  '\t',
	'r':  '\r',
}

func (l *Lexer) readString(start position.Position) Token {
	l.readChar() // opening quote

	var b strings.Builder
	for {
		if l.atEOF() {
			return l.errorToken(position.Span{Start: start, End: l.pos()}, "unterminated string")
		}
		switch l.ch {
		case '"':
			l.readChar()
			return Token{Type: TokenString, Literal: b.String(), Span: position.Span{Start: start, End: l.pos()}}
		case '\\':
			escStart := l.pos()
			l.readChar()
			if l.atEOF() {
				return l.errorToken(position.Span{Start: start, End: l.pos()}, "unterminated string")
			}
			r, ok := escapes[l.ch]
			if !ok {
				bad := l.ch
				l.readChar()
				return l.errorToken(position.Span{Start: escStart, End: l.pos()}, "invalid escape sequence \\%c", bad)
			}
			b.WriteRune(r)
			l.readChar()
		default:
			if l.ch == utf8.RuneError && l.readPosition-l.position == 1 {
				badStart := l.pos()
				l.readChar()
				return l.errorToken(position.Span{Start: badStart, End: l.pos()}, "invalid UTF-8 in string")
			}
			b.WriteRune(l.ch)
			l.readChar()
		}
	}
}
