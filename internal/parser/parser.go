package parser

import (
	"github.com/jasp-lang/jasp/internal/ast"
	jerrors "github.com/jasp-lang/jasp/internal/errors"
	"github.com/jasp-lang/jasp/internal/lexer"
	"github.com/jasp-lang/jasp/internal/position"
)

// Parser represents the recursive descent parser
type Parser struct {
	lexer   *lexer.Lexer
	current lexer.Token
}

// closers maps each opening delimiter to its closing token and rule.
var closers = map[lexer.TokenType]struct {
	close lexer.TokenType
	rule  Rule
}{
	lexer.TokenLParen:   {lexer.TokenRParen, RuleList},
	lexer.TokenLBracket: {lexer.TokenRBracket, RuleVector},
	lexer.TokenLBrace:   {lexer.TokenRBrace, RuleObject},
}

// NewParser creates a new parser instance
func NewParser(l *lexer.Lexer) *Parser {
	p := &Parser{lexer: l}
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.current = p.lexer.NextToken()
}

// ParseTree parses a whole module into its concrete parse tree.
func ParseTree(source string) (*Pair, error) {
	return ParseTreeFile(source, "")
}

// ParseTreeFile is ParseTree with a filename recorded in every span.
func ParseTreeFile(source, filename string) (*Pair, error) {
	return NewParser(lexer.NewWithFilename(source, filename)).ParseModule()
}

// ParseModule parses expressions until end of input.
func (p *Parser) ParseModule() (*Pair, error) {
	module := &Pair{Rule: RuleModule}
	start := p.current.Span.Start

	for p.current.Type != lexer.TokenEOF {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		module.Children = append(module.Children, expr)
	}

	eoi := &Pair{Rule: RuleEOI, Span: p.current.Span}
	module.Children = append(module.Children, eoi)
	module.Span = position.Span{Start: start, End: eoi.Span.End}
	return module, nil
}

func (p *Parser) parseExpr() (*Pair, error) {
	tok := p.current

	switch tok.Type {
	case lexer.TokenError:
		return nil, p.lexError(tok)
	case lexer.TokenInteger:
		p.nextToken()
		return &Pair{Rule: RuleInteger, Span: tok.Span, Text: tok.Literal}, nil
	case lexer.TokenFloat:
		p.nextToken()
		return &Pair{Rule: RuleFloat, Span: tok.Span, Text: tok.Literal}, nil
	case lexer.TokenString:
		p.nextToken()
		return &Pair{Rule: RuleString, Span: tok.Span, Text: tok.Literal}, nil
	case lexer.TokenKeyword:
		p.nextToken()
		return &Pair{Rule: RuleKeyword, Span: tok.Span, Text: tok.Literal}, nil
	case lexer.TokenSymbol:
		p.nextToken()
		return &Pair{Rule: RuleSymbol, Span: tok.Span, Text: tok.Literal}, nil
	case lexer.TokenLParen, lexer.TokenLBracket, lexer.TokenLBrace:
		return p.parseCollection()
	case lexer.TokenQuote:
		return p.parseQuoted()
	case lexer.TokenEOF:
		return nil, incomplete(jerrors.Parse(tok.Span, "unexpected end of input"))
	default:
		return nil, jerrors.Parse(tok.Span, "unexpected %q", tok.Literal)
	}
}

func (p *Parser) parseCollection() (*Pair, error) {
	open := p.current
	want := closers[open.Type]
	pair := &Pair{Rule: want.rule}
	p.nextToken()

	for p.current.Type != want.close {
		switch p.current.Type {
		case lexer.TokenEOF:
			return nil, incomplete(jerrors.Parse(open.Span, "unclosed %q", open.Literal))
		case lexer.TokenRParen, lexer.TokenRBracket, lexer.TokenRBrace:
			return nil, jerrors.Parse(p.current.Span, "expected %q to close %q at %s, found %q",
				want.close.String(), open.Literal, open.Span.Start, p.current.Literal)
		}
		child, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		pair.Children = append(pair.Children, child)
	}

	pair.Span = position.Span{Start: open.Span.Start, End: p.current.Span.End}
	p.nextToken()
	return pair, nil
}

func (p *Parser) parseQuoted() (*Pair, error) {
	quote := p.current
	p.nextToken()

	switch p.current.Type {
	case lexer.TokenEOF:
		return nil, incomplete(jerrors.Parse(quote.Span, "quote is not followed by an expression"))
	case lexer.TokenRParen, lexer.TokenRBracket, lexer.TokenRBrace:
		return nil, jerrors.Parse(quote.Span.Union(p.current.Span), "quote is not followed by an expression")
	}

	inner, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &Pair{
		Rule:     RuleQuoted,
		Span:     position.Span{Start: quote.Span.Start, End: inner.Span.End},
		Children: []*Pair{inner},
	}, nil
}

func (p *Parser) lexError(tok lexer.Token) error {
	err := jerrors.Parse(tok.Span, "%s", tok.Literal)
	if tok.Literal == "unterminated string" {
		return incomplete(err)
	}
	return err
}

// incomplete marks errors caused by input ending too early, so interactive
// callers can ask for more lines.
func incomplete(err *jerrors.StandardError) *jerrors.StandardError {
	err.Context = map[string]interface{}{"incomplete": true}
	return err
}

// IsIncomplete reports whether err means the source ended inside a form.
func IsIncomplete(err error) bool {
	se, ok := jerrors.As(err)
	if !ok {
		return false
	}
	v, _ := se.Context["incomplete"].(bool)
	return v
}

// Parse parses source text straight into top-level intermediate AST forms.
func Parse(source string) ([]ast.Node, error) {
	return ParseFile(source, "")
}

// ParseFile is Parse with a filename recorded in error spans.
func ParseFile(source, filename string) ([]ast.Node, error) {
	tree, err := ParseTreeFile(source, filename)
	if err != nil {
		return nil, err
	}
	return Reduce(tree)
}
