// Package ast defines the intermediate Lisp syntax tree produced by the
// parser (or converted from host values) and consumed by the compiler.
//
// The tree is a closed set of value types. Collection literals have no node
// of their own: the parser rewrites [a b] into (vec a b) and {a b} into
// (object a b).
package ast

import "github.com/jasp-lang/jasp/internal/hash"

// Node is the base interface for all intermediate AST nodes
type Node interface {
	// String renders the node in surface syntax
	String() string
	node() // Marker method to close the set
}

// Undefined is the host undefined value.
type Undefined struct{}

// Null is the host null value.
type Null struct{}

// Int is an integer literal.
type Int struct {
	Value int64
}

// Float is a floating point literal.
type Float struct {
	Value float64
}

// String is a string literal with escapes already decoded.
type String struct {
	Value string
}

// List is an ordered sequence of nodes. The first element decides how a
// non-empty list is compiled.
type List struct {
	Items []Node
}

// Keyword is a :name or :module/name keyword. FullName and Hash are derived
// from Module and Name; use NewKeyword rather than filling them in by hand.
type Keyword struct {
	Module   string
	Name     string
	FullName string
	Hash     int64
}

// Identifier is a bare symbol. Hash is always hash.Cyrb53(Name).
type Identifier struct {
	Name string
	Hash int64
}

func (Undefined) node()  {}
func (Null) node()       {}
func (Int) node()        {}
func (Float) node()      {}
func (String) node()     {}
func (List) node()       {}
func (Keyword) node()    {}
func (Identifier) node() {}

// NewIdentifier creates an identifier with its derived hash.
func NewIdentifier(name string) Identifier {
	return Identifier{Name: name, Hash: hash.Cyrb53(name)}
}

// NewKeyword creates a keyword. The full name is "module/name", or just name
// when module is empty, and the hash is taken over the full name.
func NewKeyword(module, name string) Keyword {
	full := name
	if module != "" {
		full = module + "/" + name
	}
	return Keyword{
		Module:   module,
		Name:     name,
		FullName: full,
		Hash:     hash.Cyrb53(full),
	}
}

// NewList creates a list from items.
func NewList(items ...Node) List {
	if items == nil {
		items = []Node{}
	}
	return List{Items: items}
}

// Call builds the list (head args...), the shape collection sugar and quote
// desugar into.
func Call(head string, args ...Node) List {
	items := make([]Node, 0, len(args)+1)
	items = append(items, NewIdentifier(head))
	items = append(items, args...)
	return List{Items: items}
}

// Head returns the name of the list's leading identifier, if it has one.
func (l List) Head() (string, []Node, bool) {
	if len(l.Items) == 0 {
		return "", nil, false
	}
	id, ok := l.Items[0].(Identifier)
	if !ok {
		return "", nil, false
	}
	return id.Name, l.Items[1:], true
}

// Equal reports whether two trees are structurally identical. Keywords and
// identifiers compare by hash.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case Undefined:
		_, ok := b.(Undefined)
		return ok
	case Null:
		_, ok := b.(Null)
		return ok
	case Int:
		y, ok := b.(Int)
		return ok && x.Value == y.Value
	case Float:
		y, ok := b.(Float)
		return ok && x.Value == y.Value
	case String:
		y, ok := b.(String)
		return ok && x.Value == y.Value
	case Keyword:
		y, ok := b.(Keyword)
		return ok && x.Hash == y.Hash
	case Identifier:
		y, ok := b.(Identifier)
		return ok && x.Hash == y.Hash
	case List:
		y, ok := b.(List)
		if !ok || len(x.Items) != len(y.Items) {
			return false
		}
		for i := range x.Items {
			if !Equal(x.Items[i], y.Items[i]) {
				return false
			}
		}
		return true
	}
	return false
}
