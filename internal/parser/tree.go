// Package parser implements the jasp recursive descent parser.
//
// Parsing happens in two stages. ParseTree recognises the grammar and builds
// a concrete parse tree of Pairs, one per grammar rule. Reduce then lowers
// that tree into intermediate AST nodes, desugaring vectors, objects and
// quotes into call forms.
package parser

import (
	"fmt"
	"strings"

	"github.com/jasp-lang/jasp/internal/position"
)

// Rule names a grammar production
type Rule int

const (
	RuleModule Rule = iota
	RuleInteger
	RuleFloat
	RuleString
	RuleKeyword
	RuleSymbol
	RuleList
	RuleVector
	RuleObject
	RuleQuoted
	RuleEOI
)

var ruleNames = map[Rule]string{
	RuleModule:  "module",
	RuleInteger: "integer",
	RuleFloat:   "float",
	RuleString:  "string",
	RuleKeyword: "keyword",
	RuleSymbol:  "symbol",
	RuleList:    "list",
	RuleVector:  "vector",
	RuleObject:  "object",
	RuleQuoted:  "quoted",
	RuleEOI:     "EOI",
}

func (r Rule) String() string {
	if name, ok := ruleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("rule(%d)", int(r))
}

// Pair is one node of the concrete parse tree: the rule that matched, the
// span it covers and, for terminals, its text. A module's last child is
// always the EOI pair.
type Pair struct {
	Rule     Rule
	Span     position.Span
	Text     string
	Children []*Pair
}

// String renders the tree as an indented outline.
func (p *Pair) String() string {
	var b strings.Builder
	p.write(&b, 0)
	return b.String()
}

func (p *Pair) write(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(p.Rule.String())
	if len(p.Children) == 0 && p.Rule != RuleEOI && p.Rule != RuleModule {
		fmt.Fprintf(b, " %q", p.Text)
	}
	fmt.Fprintf(b, " @%s\n", p.Span)
	for _, c := range p.Children {
		c.write(b, depth+1)
	}
}
