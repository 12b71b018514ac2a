package compiler

import (
	"github.com/jasp-lang/jasp/internal/ast"
	jerrors "github.com/jasp-lang/jasp/internal/errors"
	"github.com/jasp-lang/jasp/internal/es"
)

// operator describes how a reserved arithmetic symbol lowers.
type operator struct {
	binary es.BinaryOperator
	// identity builds the result of the zero-argument form, nil if that is
	// an error.
	identity func() es.Node
	// unary lowers the one-argument form, nil if that is an error.
	unary func(arg es.Node) es.Node
	// minArgs is the smallest arity accepted at all.
	minArgs int
	// exact forces exactly minArgs arguments.
	exact bool
}

var operators = map[string]operator{
	"+": {
		binary:   es.BinaryPlus,
		unary:    func(arg es.Node) es.Node { return es.Unary(es.UnaryPlus, arg) },
		identity: func() es.Node { return es.Int(0) },
	},
	"-": {
		binary:   es.BinaryMinus,
		unary:    func(arg es.Node) es.Node { return es.Unary(es.UnaryMinus, arg) },
		identity: func() es.Node { return es.Int(0) },
	},
	"*": {
		binary:   es.BinaryMultiply,
		unary:    func(arg es.Node) es.Node { return arg },
		identity: func() es.Node { return es.Int(1) },
	},
	"/": {
		binary:   es.BinaryDivide,
		unary:    func(arg es.Node) es.Node { return es.Binary(es.BinaryDivide, es.Int(1), arg) },
		identity: notANumber,
	},
	// A power needs a base and an exponent; anything less is NaN.
	"**": {
		binary:   es.BinaryPower,
		unary:    func(es.Node) es.Node { return notANumber() },
		identity: notANumber,
	},
	"mod": {binary: es.BinaryModulo, minArgs: 2},
	"typeof": {
		unary:   func(arg es.Node) es.Node { return es.Unary(es.UnaryTypeof, arg) },
		minArgs: 1,
		exact:   true,
	},
}

func (s *session) compileOperator(name string, op operator, args []ast.Node) (es.Node, error) {
	if len(args) < op.minArgs || (op.exact && len(args) != op.minArgs) {
		return nil, jerrors.Syntax("%s expects %s, got %d", name, arity(op), len(args))
	}

	compiled, err := s.compileAll(args)
	if err != nil {
		return nil, err
	}

	switch len(compiled) {
	case 0:
		return op.identity(), nil
	case 1:
		if op.unary != nil {
			return op.unary(compiled[0]), nil
		}
	}

	acc := compiled[0]
	for _, next := range compiled[1:] {
		acc = es.Binary(op.binary, acc, next)
	}
	return acc, nil
}

func notANumber() es.Node { return es.Ident("NaN") }

func arity(op operator) string {
	switch {
	case op.exact && op.minArgs == 1:
		return "exactly 1 argument"
	case op.minArgs == 1:
		return "at least 1 argument"
	}
	return "at least 2 arguments"
}
