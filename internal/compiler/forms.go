package compiler

import (
	"github.com/jasp-lang/jasp/internal/ast"
	jerrors "github.com/jasp-lang/jasp/internal/errors"
	"github.com/jasp-lang/jasp/internal/es"
)

const (
	formVec    = "vec"
	formObject = "object"
	formQuote  = "quote"
	formImport = "import"
)

type specialForm func(s *session, args []ast.Node) (es.Node, error)

var specialForms map[string]specialForm

func init() {
	specialForms = map[string]specialForm{
		formVec:    (*session).compileVec,
		formObject: (*session).compileObject,
		formQuote:  (*session).compileQuote,
		formImport: func(*session, []ast.Node) (es.Node, error) {
			return nil, jerrors.Syntax("import is only allowed at top level")
		},
	}
}

func (s *session) compileVec(args []ast.Node) (es.Node, error) {
	elements, err := s.compileAll(args)
	if err != nil {
		return nil, err
	}
	return s.stdCall(formVec, elements), nil
}

func (s *session) compileObject(args []ast.Node) (es.Node, error) {
	if len(args)%2 != 0 {
		return nil, jerrors.Syntax("object needs an even number of forms, got %d", len(args))
	}
	elements, err := s.compileAll(args)
	if err != nil {
		return nil, err
	}
	return s.stdCall(formObject, elements), nil
}

func (s *session) compileQuote(args []ast.Node) (es.Node, error) {
	if len(args) != 1 {
		return nil, jerrors.Syntax("quote expects 1 form, got %d", len(args))
	}
	return s.quote(args[0])
}

// quote lowers a form as data: lists become arrays and are never called.
func (s *session) quote(node ast.Node) (es.Node, error) {
	list, ok := node.(ast.List)
	if !ok {
		return s.compile(node)
	}
	elements := make([]es.Node, 0, len(list.Items))
	for _, item := range list.Items {
		q, err := s.quote(item)
		if err != nil {
			return nil, err
		}
		elements = append(elements, q)
	}
	return es.Array(elements...), nil
}

// compileImport handles (import "source" alias name...). Every name is bound
// to alias for the remainder of the module.
func (s *session) compileImport(args []ast.Node) (es.Node, error) {
	if len(args) < 2 {
		return nil, jerrors.Syntax("import expects a source and an alias")
	}
	source, ok := args[0].(ast.String)
	if !ok {
		return nil, jerrors.Syntax("import source must be a string, got %s", args[0])
	}
	alias, ok := args[1].(ast.Identifier)
	if !ok {
		return nil, jerrors.Syntax("import alias must be an identifier, got %s", args[1])
	}

	names := make([]string, 0, len(args)-2)
	for _, arg := range args[2:] {
		id, ok := arg.(ast.Identifier)
		if !ok {
			return nil, jerrors.Syntax("imported name must be an identifier, got %s", arg)
		}
		names = append(names, id.Name)
	}
	for _, name := range names {
		s.env.Bind(name, alias.Name)
	}
	return es.ImportAs(alias.Name, source.Value), nil
}
