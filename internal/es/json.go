package es

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// This file holds the JSON form of the tree. Every node serializes as an
// object whose first field is its "type" tag, followed by its kind-specific
// fields in a fixed order. The tree is written in one pass; each node's
// bytes are produced exactly once, whatever the nesting depth.

// Marshal renders a tree as compact JSON.
func Marshal(n Node) ([]byte, error) {
	e := &encoder{}
	e.node(n)
	return e.buf.Bytes(), nil
}

// MarshalIndent renders a tree as indented JSON, laid out as json.Indent
// would lay out the compact form.
func MarshalIndent(n Node, prefix, indent string) ([]byte, error) {
	e := &encoder{pretty: true, prefix: prefix, indent: indent}
	e.node(n)
	return e.buf.Bytes(), nil
}

func (p *Program) MarshalJSON() ([]byte, error)             { return Marshal(p) }
func (d *ImportDeclaration) MarshalJSON() ([]byte, error)   { return Marshal(d) }
func (s *ExpressionStatement) MarshalJSON() ([]byte, error) { return Marshal(s) }
func (i *Identifier) MarshalJSON() ([]byte, error)          { return Marshal(i) }
func (l *Literal) MarshalJSON() ([]byte, error)             { return Marshal(l) }
func (e *NewExpression) MarshalJSON() ([]byte, error)       { return Marshal(e) }
func (e *CallExpression) MarshalJSON() ([]byte, error)      { return Marshal(e) }
func (e *MemberExpression) MarshalJSON() ([]byte, error)    { return Marshal(e) }
func (e *UnaryExpression) MarshalJSON() ([]byte, error)     { return Marshal(e) }
func (e *BinaryExpression) MarshalJSON() ([]byte, error)    { return Marshal(e) }
func (e *ArrayExpression) MarshalJSON() ([]byte, error)     { return Marshal(e) }

func (s *ImportSpecifier) MarshalJSON() ([]byte, error) {
	e := &encoder{}
	e.specifier(s)
	return e.buf.Bytes(), nil
}

type encoder struct {
	buf    bytes.Buffer
	pretty bool
	prefix string
	indent string
	depth  int
}

func (e *encoder) node(n Node) {
	switch n := n.(type) {
	case *Program:
		if e.begin(n == nil, n) {
			e.field("source_type")
			e.string(n.SourceType)
			e.field("body")
			e.nodes(n.Body)
			e.end()
		}
	case *ImportDeclaration:
		if e.begin(n == nil, n) {
			e.field("specifiers")
			e.open('[')
			for i, s := range n.Specifiers {
				e.item(i)
				e.specifier(s)
			}
			e.close(']', len(n.Specifiers) == 0)
			e.field("source")
			e.node(nodeOrNil(n.Source))
			e.end()
		}
	case *ExpressionStatement:
		if e.begin(n == nil, n) {
			e.field("expression")
			e.node(n.Expression)
			e.end()
		}
	case *Identifier:
		if e.begin(n == nil, n) {
			e.field("name")
			e.string(n.Name)
			e.end()
		}
	case *Literal:
		if e.begin(n == nil, n) {
			e.field("value")
			switch n.ValueKind {
			case LiteralInt:
				e.buf.WriteString(strconv.FormatInt(n.Int, 10))
			case LiteralFloat:
				e.buf.Write(formatFloat(n.Float))
			default:
				e.string(n.Str)
			}
			e.end()
		}
	case *NewExpression:
		if e.begin(n == nil, n) {
			e.field("callee")
			e.node(n.Callee)
			e.field("arguments")
			e.nodes(n.Arguments)
			e.end()
		}
	case *CallExpression:
		if e.begin(n == nil, n) {
			e.field("callee")
			e.node(n.Callee)
			e.field("arguments")
			e.nodes(n.Arguments)
			e.end()
		}
	case *MemberExpression:
		if e.begin(n == nil, n) {
			e.field("object")
			e.node(n.Object)
			e.field("property")
			e.node(n.Property)
			e.field("computed")
			e.bool(n.Computed)
			e.field("optional")
			e.bool(n.Optional)
			e.end()
		}
	case *UnaryExpression:
		if e.begin(n == nil, n) {
			e.field("operator")
			e.string(string(n.Operator))
			e.field("argument")
			e.node(n.Argument)
			e.end()
		}
	case *BinaryExpression:
		if e.begin(n == nil, n) {
			e.field("operator")
			e.string(string(n.Operator))
			e.field("left")
			e.node(n.Left)
			e.field("right")
			e.node(n.Right)
			e.end()
		}
	case *ArrayExpression:
		if e.begin(n == nil, n) {
			e.field("elements")
			e.nodes(n.Elements)
			e.end()
		}
	default:
		e.buf.WriteString("null")
	}
}

// nodeOrNil keeps a nil *Literal from becoming a non-nil Node.
func nodeOrNil(l *Literal) Node {
	if l == nil {
		return nil
	}
	return l
}

func (e *encoder) specifier(s *ImportSpecifier) {
	if s == nil {
		e.buf.WriteString("null")
		return
	}
	e.open('{')
	e.item(0)
	e.key("type")
	e.string("ImportNameSpecifier")
	e.field("local")
	e.node(s.Local)
	e.end()
}

// begin opens a node object with its type tag. It writes null and reports
// false for a nil node.
func (e *encoder) begin(isNil bool, n Node) bool {
	if isNil {
		e.buf.WriteString("null")
		return false
	}
	e.open('{')
	e.item(0)
	e.key("type")
	e.string(n.Kind().String())
	return true
}

// end closes a node object; node objects always have fields.
func (e *encoder) end() { e.close('}', false) }

func (e *encoder) nodes(nodes []Node) {
	e.open('[')
	for i, n := range nodes {
		e.item(i)
		e.node(n)
	}
	e.close(']', len(nodes) == 0)
}

func (e *encoder) open(delim byte) {
	e.buf.WriteByte(delim)
	e.depth++
}

func (e *encoder) close(delim byte, empty bool) {
	e.depth--
	if !empty {
		e.newline()
	}
	e.buf.WriteByte(delim)
}

// item starts the i-th element of the innermost array or object.
func (e *encoder) item(i int) {
	if i > 0 {
		e.buf.WriteByte(',')
	}
	e.newline()
}

// field starts a field after the type tag.
func (e *encoder) field(name string) {
	e.item(1)
	e.key(name)
}

func (e *encoder) key(name string) {
	e.buf.WriteByte('"')
	e.buf.WriteString(name)
	e.buf.WriteString(`":`)
	if e.pretty {
		e.buf.WriteByte(' ')
	}
}

func (e *encoder) newline() {
	if !e.pretty {
		return
	}
	e.buf.WriteByte('\n')
	e.buf.WriteString(e.prefix)
	for i := 0; i < e.depth; i++ {
		e.buf.WriteString(e.indent)
	}
}

func (e *encoder) string(s string) {
	// Marshal of a string cannot fail.
	quoted, _ := json.Marshal(s)
	e.buf.Write(quoted)
}

func (e *encoder) bool(b bool) {
	e.buf.WriteString(strconv.FormatBool(b))
}

// formatFloat always keeps a fraction or exponent so floats stay floats on
// the other side. NaN and infinities have no JSON spelling and become null.
func formatFloat(f float64) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null")
	}
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	b := strconv.AppendFloat(nil, f, format, -1, 64)
	if format == 'f' && !bytes.ContainsRune(b, '.') {
		b = append(b, '.', '0')
	}
	return b
}
