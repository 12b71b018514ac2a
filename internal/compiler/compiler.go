// Package compiler lowers intermediate AST forms into an ESTree program.
//
// Compilation is a single depth-first, left-to-right pass. A non-empty list
// whose head is an identifier is dispatched in this order: reserved
// operators, special forms, environment bindings. Anything still unresolved
// is a NotDefined error. Lists with any other head compile to a plain call
// and the empty list compiles to an empty array.
package compiler

import (
	"sort"

	"github.com/jasp-lang/jasp/internal/ast"
	jerrors "github.com/jasp-lang/jasp/internal/errors"
	"github.com/jasp-lang/jasp/internal/es"
	"github.com/jasp-lang/jasp/internal/interop"
)

// Defaults for the standard library import.
const (
	DefaultStdNamespace = "στδ"
	DefaultStdSource    = "../std/std.js"
)

// Options configure a Compiler
type Options struct {
	StdNamespace string
	StdSource    string
	// Bindings pre-binds names to modules: module -> names.
	Bindings map[string][]string
	Logger   interop.LogSink
}

// Compiler holds the configuration shared by compilations. It is safe for
// concurrent use; every Compile call works on its own environment.
type Compiler struct {
	options Options
	base    *Env
}

// New creates a compiler, filling in defaults for unset options.
func New(options Options) *Compiler {
	if options.StdNamespace == "" {
		options.StdNamespace = DefaultStdNamespace
	}
	if options.StdSource == "" {
		options.StdSource = DefaultStdSource
	}
	if options.Logger == nil {
		options.Logger = interop.NopSink{}
	}

	base := NewEnv(options.StdNamespace)
	modules := make([]string, 0, len(options.Bindings))
	for module := range options.Bindings {
		modules = append(modules, module)
	}
	sort.Strings(modules)
	for _, module := range modules {
		for _, name := range options.Bindings[module] {
			base.Bind(name, module)
		}
	}
	return &Compiler{options: options, base: base}
}

// Options returns the effective options.
func (c *Compiler) Options() Options { return c.options }

// Compile lowers top-level forms into a program. The first statement is
// always the standard library import. On error no program is returned.
func (c *Compiler) Compile(forms []ast.Node) (*es.Program, error) {
	s := &session{Compiler: c, env: c.base.Clone()}

	body := make([]es.Node, 0, len(forms)+1)
	body = append(body, es.ImportAs(c.options.StdNamespace, c.options.StdSource))

	for _, form := range forms {
		c.options.Logger.Log("Compile form", form)
		node, err := s.compileTopLevel(form)
		if err != nil {
			return nil, err
		}
		body = append(body, es.IntoStatement(node))
	}
	return es.NewProgram(body...), nil
}

// CompileHost converts a host list into forms and compiles them. Conversion
// failures are reported as Ast errors wrapping the cause.
func (c *Compiler) CompileHost(value interface{}) (*es.Program, error) {
	forms, err := ast.FromHostList(value, c.options.Logger)
	if err != nil {
		return nil, jerrors.Ast(err)
	}
	return c.Compile(forms)
}

// session is the state of one compilation.
type session struct {
	*Compiler
	env *Env
}

func (s *session) compileTopLevel(form ast.Node) (es.Node, error) {
	if list, ok := form.(ast.List); ok {
		if head, args, ok := list.Head(); ok && head == formImport {
			return s.compileImport(args)
		}
	}
	return s.compile(form)
}

func (s *session) compile(node ast.Node) (es.Node, error) {
	switch n := node.(type) {
	case ast.Undefined:
		return es.Void0(), nil
	case ast.Null:
		return es.Member(es.Ident(s.options.StdNamespace), "NULL"), nil
	case ast.Int:
		return es.Int(n.Value), nil
	case ast.Float:
		return es.Float(n.Value), nil
	case ast.String:
		return es.String(n.Value), nil
	case ast.Keyword:
		return es.New(s.std("Keyword"),
			es.String(n.Module), es.String(n.Name), es.Int(n.Hash), es.String(n.FullName)), nil
	case ast.Identifier:
		return es.New(s.std("Identifier"), es.String(n.Name), es.Int(n.Hash)), nil
	case ast.List:
		return s.compileList(n)
	case nil:
		return nil, jerrors.Syntax("missing form")
	}
	return nil, jerrors.Syntax("cannot compile %T", node)
}

func (s *session) compileList(list ast.List) (es.Node, error) {
	if len(list.Items) == 0 {
		return es.Array(), nil
	}

	head, args, ok := list.Head()
	if !ok {
		callee, err := s.compile(list.Items[0])
		if err != nil {
			return nil, err
		}
		compiled, err := s.compileAll(list.Items[1:])
		if err != nil {
			return nil, err
		}
		return es.Call(callee, compiled...), nil
	}

	if op, ok := operators[head]; ok {
		return s.compileOperator(head, op, args)
	}
	if form, ok := specialForms[head]; ok {
		return form(s, args)
	}
	if binding, ok := s.env.Lookup(head); ok {
		return s.compileBound(head, binding, args)
	}
	return nil, jerrors.NotDefined(head)
}

func (s *session) compileBound(name string, binding Binding, args []ast.Node) (es.Node, error) {
	compiled, err := s.compileAll(args)
	if err != nil {
		return nil, err
	}
	if binding.Std {
		return s.stdCall(name, compiled), nil
	}
	return es.Call(es.Member(es.Ident(binding.Module), name), compiled...), nil
}

// stdCall applies the standard call convention: collection constructors
// take their elements as a single array argument, everything else is a
// direct call.
func (s *session) stdCall(name string, args []es.Node) es.Node {
	switch name {
	case formVec:
		return s.collection("vecLiteral", args)
	case formObject:
		return s.collection("objectLiteral", args)
	}
	return es.Call(s.std(name), args...)
}

func (s *session) collection(constructor string, elements []es.Node) es.Node {
	if len(elements) == 0 {
		return es.Call(s.std(constructor))
	}
	return es.Call(s.std(constructor), es.Array(elements...))
}

func (s *session) std(property string) es.Node {
	return es.Member(es.Ident(s.options.StdNamespace), property)
}

func (s *session) compileAll(nodes []ast.Node) ([]es.Node, error) {
	out := make([]es.Node, 0, len(nodes))
	for _, n := range nodes {
		c, err := s.compile(n)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
