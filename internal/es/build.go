package es

// NewProgram creates a module program from statements.
func NewProgram(body ...Node) *Program {
	if body == nil {
		body = []Node{}
	}
	return &Program{SourceType: SourceTypeModule, Body: body}
}

// Ident creates an identifier.
func Ident(name string) *Identifier { return &Identifier{Name: name} }

// Int creates an integer literal.
func Int(v int64) *Literal { return &Literal{ValueKind: LiteralInt, Int: v} }

// Float creates a floating point literal.
func Float(v float64) *Literal { return &Literal{ValueKind: LiteralFloat, Float: v} }

// String creates a string literal.
func String(v string) *Literal { return &Literal{ValueKind: LiteralString, Str: v} }

// New creates `new callee(args...)`.
func New(callee Node, args ...Node) *NewExpression {
	return &NewExpression{Callee: callee, Arguments: nonNil(args)}
}

// Call creates `callee(args...)`.
func Call(callee Node, args ...Node) *CallExpression {
	return &CallExpression{Callee: callee, Arguments: nonNil(args)}
}

// Member creates the non-computed access `object.property`.
func Member(object Node, property string) *MemberExpression {
	return &MemberExpression{Object: object, Property: Ident(property)}
}

// Unary creates a prefix operation.
func Unary(op UnaryOperator, argument Node) *UnaryExpression {
	return &UnaryExpression{Operator: op, Argument: argument}
}

// Binary creates `left op right`.
func Binary(op BinaryOperator, left, right Node) *BinaryExpression {
	return &BinaryExpression{Operator: op, Left: left, Right: right}
}

// Array creates `[elements...]`.
func Array(elements ...Node) *ArrayExpression {
	return &ArrayExpression{Elements: nonNil(elements)}
}

// Void0 is the `void 0` spelling of undefined.
func Void0() *UnaryExpression { return Unary(UnaryVoid, Int(0)) }

// ImportAs creates `import * as name from source` style namespace binding.
func ImportAs(name, source string) *ImportDeclaration {
	return &ImportDeclaration{
		Specifiers: []*ImportSpecifier{{Local: Ident(name)}},
		Source:     String(source),
	}
}

func nonNil(nodes []Node) []Node {
	if nodes == nil {
		return []Node{}
	}
	return nodes
}
