package ast

import (
	"math"
	"strconv"
	"strings"
)

func (Undefined) String() string { return "undefined" }
func (Null) String() string      { return "null" }
func (n Int) String() string     { return strconv.FormatInt(n.Value, 10) }

func (n Float) String() string {
	if math.IsInf(n.Value, 0) || math.IsNaN(n.Value) {
		return strconv.FormatFloat(n.Value, 'g', -1, 64)
	}
	s := strconv.FormatFloat(n.Value, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

func (n String) String() string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range n.Value {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func (n List) String() string {
	parts := make([]string, len(n.Items))
	for i, item := range n.Items {
		parts[i] = item.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (n Keyword) String() string    { return ":" + n.FullName }
func (n Identifier) String() string { return n.Name }

// Format renders a sequence of top-level forms, one per line.
func Format(nodes []Node) string {
	var b strings.Builder
	for i, n := range nodes {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(n.String())
	}
	return b.String()
}
