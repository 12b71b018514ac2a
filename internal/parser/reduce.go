package parser

import (
	"fmt"
	"strconv"

	"github.com/jasp-lang/jasp/internal/ast"
	jerrors "github.com/jasp-lang/jasp/internal/errors"
)

// Reduce lowers a module parse tree into its top-level forms.
func Reduce(module *Pair) ([]ast.Node, error) {
	if module == nil || module.Rule != RuleModule {
		return nil, fmt.Errorf("parser: reduce expects a module pair")
	}
	children := module.Children
	if len(children) == 0 || children[len(children)-1].Rule != RuleEOI {
		return nil, jerrors.Parse(module.Span, "module is missing its end-of-input marker")
	}
	return reduceAll(children[:len(children)-1])
}

func reduceAll(pairs []*Pair) ([]ast.Node, error) {
	nodes := make([]ast.Node, 0, len(pairs))
	for _, pair := range pairs {
		n, err := reduceExpr(pair)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func reduceExpr(pair *Pair) (ast.Node, error) {
	switch pair.Rule {
	case RuleInteger:
		i, err := strconv.ParseInt(pair.Text, 10, 64)
		if err != nil {
			return nil, jerrors.Parse(pair.Span, "malformed integer literal %q: %v", pair.Text, numError(err))
		}
		return ast.Int{Value: i}, nil
	case RuleFloat:
		f, err := strconv.ParseFloat(pair.Text, 64)
		if err != nil {
			return nil, jerrors.Parse(pair.Span, "malformed float literal %q: %v", pair.Text, numError(err))
		}
		return ast.Float{Value: f}, nil
	case RuleString:
		return ast.String{Value: pair.Text}, nil
	case RuleSymbol:
		return ast.NewIdentifier(pair.Text), nil
	case RuleKeyword:
		// The module part is filled in by a later pass.
		return ast.NewKeyword("", pair.Text), nil
	case RuleList:
		items, err := reduceAll(pair.Children)
		if err != nil {
			return nil, err
		}
		return ast.NewList(items...), nil
	case RuleVector:
		return reduceCall("vec", pair)
	case RuleObject:
		return reduceCall("object", pair)
	case RuleQuoted:
		if len(pair.Children) != 1 {
			return nil, jerrors.Parse(pair.Span, "quote expects exactly one expression")
		}
		inner, err := reduceExpr(pair.Children[0])
		if err != nil {
			return nil, err
		}
		return ast.Call("quote", inner), nil
	}
	return nil, jerrors.Parse(pair.Span, "unexpected %s in expression position", pair.Rule)
}

func reduceCall(head string, pair *Pair) (ast.Node, error) {
	items, err := reduceAll(pair.Children)
	if err != nil {
		return nil, err
	}
	return ast.Call(head, items...), nil
}

func numError(err error) error {
	if ne, ok := err.(*strconv.NumError); ok {
		return ne.Err
	}
	return err
}
