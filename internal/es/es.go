// Package es defines the ESTree-shaped output tree produced by the compiler
// and its JSON serialization.
package es

import "fmt"

// Kind identifies a node kind. Its String form is the node's "type" tag.
type Kind int

const (
	KindProgram Kind = iota
	KindImportDeclaration
	KindExpressionStatement
	KindIdentifier
	KindLiteral
	KindNewExpression
	KindCallExpression
	KindMemberExpression
	KindUnaryExpression
	KindBinaryExpression
	KindArrayExpression
)

// kinds is the node catalogue. Adding a node kind means adding a row here.
var kinds = map[Kind]struct {
	tag        string
	expression bool
}{
	KindProgram:             {"Program", false},
	KindImportDeclaration:   {"ImportDeclaration", false},
	KindExpressionStatement: {"ExpressionStatement", false},
	KindIdentifier:          {"Identifier", true},
	KindLiteral:             {"Literal", true},
	KindNewExpression:       {"NewExpression", true},
	KindCallExpression:      {"CallExpression", true},
	KindMemberExpression:    {"MemberExpression", true},
	KindUnaryExpression:     {"UnaryExpression", true},
	KindBinaryExpression:    {"BinaryExpression", true},
	KindArrayExpression:     {"ArrayExpression", true},
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.tag
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsExpression reports whether nodes of this kind are expression-shaped.
func (k Kind) IsExpression() bool { return kinds[k].expression }

// Node is a node of the output tree.
type Node interface {
	Kind() Kind
	Children() []Node
}

// IsExpression reports whether n is expression-shaped.
func IsExpression(n Node) bool { return n != nil && n.Kind().IsExpression() }

// IntoStatement wraps an expression in an ExpressionStatement. Statements
// are returned unchanged.
func IntoStatement(n Node) Node {
	if IsExpression(n) {
		return &ExpressionStatement{Expression: n}
	}
	return n
}

// =============================================================================
// Statements
// =============================================================================

// SourceType of a program. Only modules are produced.
const SourceTypeModule = "module"

// Program is the root of every compiled module
type Program struct {
	SourceType string
	Body       []Node
}

// ImportDeclaration binds a namespace from a source module
type ImportDeclaration struct {
	Specifiers []*ImportSpecifier
	Source     *Literal
}

// ImportSpecifier names the local binding of an import
type ImportSpecifier struct {
	Local *Identifier
}

// ExpressionStatement evaluates an expression for effect
type ExpressionStatement struct {
	Expression Node
}

// =============================================================================
// Expressions
// =============================================================================

// Identifier is a bare name
type Identifier struct {
	Name string
}

// LiteralKind distinguishes the shapes a Literal value can take
type LiteralKind int

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralString
)

// Literal is a numeric or string constant. Exactly one of the value fields
// is meaningful, selected by ValueKind.
type Literal struct {
	ValueKind LiteralKind
	Int       int64
	Float     float64
	Str       string
}

// NewExpression is `new callee(arguments...)`
type NewExpression struct {
	Callee    Node
	Arguments []Node
}

// CallExpression is `callee(arguments...)`
type CallExpression struct {
	Callee    Node
	Arguments []Node
}

// MemberExpression is `object.property`
type MemberExpression struct {
	Object   Node
	Property Node
	Computed bool
	Optional bool
}

// UnaryOperator of a UnaryExpression
type UnaryOperator string

const (
	UnaryPlus   UnaryOperator = "+"
	UnaryMinus  UnaryOperator = "-"
	UnaryVoid   UnaryOperator = "void"
	UnaryTypeof UnaryOperator = "typeof"
)

// UnaryExpression is a prefix operator applied to an argument
type UnaryExpression struct {
	Operator UnaryOperator
	Argument Node
}

// BinaryOperator of a BinaryExpression
type BinaryOperator string

const (
	BinaryPlus     BinaryOperator = "+"
	BinaryMinus    BinaryOperator = "-"
	BinaryMultiply BinaryOperator = "*"
	BinaryDivide   BinaryOperator = "/"
	BinaryModulo   BinaryOperator = "%"
	BinaryPower    BinaryOperator = "**"
)

// BinaryExpression is `left operator right`
type BinaryExpression struct {
	Operator BinaryOperator
	Left     Node
	Right    Node
}

// ArrayExpression is `[elements...]`
type ArrayExpression struct {
	Elements []Node
}

func (*Program) Kind() Kind             { return KindProgram }
func (*ImportDeclaration) Kind() Kind   { return KindImportDeclaration }
func (*ExpressionStatement) Kind() Kind { return KindExpressionStatement }
func (*Identifier) Kind() Kind          { return KindIdentifier }
func (*Literal) Kind() Kind             { return KindLiteral }
func (*NewExpression) Kind() Kind       { return KindNewExpression }
func (*CallExpression) Kind() Kind      { return KindCallExpression }
func (*MemberExpression) Kind() Kind    { return KindMemberExpression }
func (*UnaryExpression) Kind() Kind     { return KindUnaryExpression }
func (*BinaryExpression) Kind() Kind    { return KindBinaryExpression }
func (*ArrayExpression) Kind() Kind     { return KindArrayExpression }

func (p *Program) Children() []Node { return p.Body }

func (d *ImportDeclaration) Children() []Node {
	children := make([]Node, 0, len(d.Specifiers)+1)
	for _, s := range d.Specifiers {
		children = append(children, s.Local)
	}
	if d.Source != nil {
		children = append(children, d.Source)
	}
	return children
}

func (s *ExpressionStatement) Children() []Node { return []Node{s.Expression} }
func (*Identifier) Children() []Node            { return nil }
func (*Literal) Children() []Node               { return nil }

func (e *NewExpression) Children() []Node {
	return append([]Node{e.Callee}, e.Arguments...)
}

func (e *CallExpression) Children() []Node {
	return append([]Node{e.Callee}, e.Arguments...)
}

func (e *MemberExpression) Children() []Node { return []Node{e.Object, e.Property} }
func (e *UnaryExpression) Children() []Node  { return []Node{e.Argument} }
func (e *BinaryExpression) Children() []Node { return []Node{e.Left, e.Right} }
func (e *ArrayExpression) Children() []Node  { return e.Elements }
