package compiler

import (
	"strings"
	"testing"

	"github.com/jasp-lang/jasp/internal/ast"
	jerrors "github.com/jasp-lang/jasp/internal/errors"
	"github.com/jasp-lang/jasp/internal/es"
	"github.com/jasp-lang/jasp/internal/hash"
	"github.com/jasp-lang/jasp/internal/interop"
	"github.com/jasp-lang/jasp/internal/parser"
)

func compileSource(t *testing.T, c *Compiler, src string) (*es.Program, error) {
	t.Helper()
	forms, err := parser.Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return c.Compile(forms)
}

// expr compiles a single form and returns its expression.
func expr(t *testing.T, src string) es.Node {
	t.Helper()
	prog, err := compileSource(t, New(Options{}), src)
	if err != nil {
		t.Fatalf("compile %q: %v", src, err)
	}
	if len(prog.Body) != 2 {
		t.Fatalf("expected import plus one statement, got %d", len(prog.Body))
	}
	stmt, ok := prog.Body[1].(*es.ExpressionStatement)
	if !ok {
		t.Fatalf("expected expression statement, got %T", prog.Body[1])
	}
	return stmt.Expression
}

func assertTree(t *testing.T, label string, expected, got es.Node) {
	t.Helper()
	want, err := es.Marshal(expected)
	if err != nil {
		t.Fatalf("%s: marshal expected: %v", label, err)
	}
	have, err := es.Marshal(got)
	if err != nil {
		t.Fatalf("%s: marshal got: %v", label, err)
	}
	if string(want) != string(have) {
		t.Errorf("%s - tree wrong.\nexpected=%s\ngot=     %s", label, want, have)
	}
}

func std(property string) es.Node {
	return es.Member(es.Ident(DefaultStdNamespace), property)
}

func TestProgramStartsWithStdImport(t *testing.T) {
	prog, err := New(Options{}).Compile(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prog.SourceType != "module" || len(prog.Body) != 1 {
		t.Fatalf("program wrong: %#v", prog)
	}
	assertTree(t, "import", es.ImportAs("στδ", "../std/std.js"), prog.Body[0])
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		input    ast.Node
		expected es.Node
	}{
		{ast.Int{Value: 7}, es.Int(7)},
		{ast.Float{Value: 2.5}, es.Float(2.5)},
		{ast.String{Value: "s"}, es.String("s")},
		{ast.Null{}, std("NULL")},
		{ast.Undefined{}, es.Unary(es.UnaryVoid, es.Int(0))},
		{ast.NewIdentifier("x"), es.New(std("Identifier"), es.String("x"), es.Int(hash.Cyrb53("x")))},
	}

	for i, tt := range tests {
		prog, err := New(Options{}).Compile([]ast.Node{tt.input})
		if err != nil {
			t.Fatalf("tests[%d] - unexpected error: %v", i, err)
		}
		got := prog.Body[1].(*es.ExpressionStatement).Expression
		assertTree(t, tt.input.String(), tt.expected, got)
	}
}

func TestKeywordIdentityRoundTrip(t *testing.T) {
	kw := ast.Keyword{Module: "m", Name: "k", FullName: "m/k", Hash: 12345}
	prog, err := New(Options{}).Compile([]ast.Node{kw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := prog.Body[1].(*es.ExpressionStatement).Expression
	expected := es.New(std("Keyword"), es.String("m"), es.String("k"), es.Int(12345), es.String("m/k"))
	assertTree(t, "keyword", expected, got)
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected es.Node
	}{
		{"(+)", es.Int(0)},
		{"(-)", es.Int(0)},
		{"(- 5)", es.Unary(es.UnaryMinus, es.Int(5))},
		{"(+ 5)", es.Unary(es.UnaryPlus, es.Int(5))},
		{"(+ 1 2 3)", es.Binary(es.BinaryPlus, es.Binary(es.BinaryPlus, es.Int(1), es.Int(2)), es.Int(3))},
		{"(- 10 1 2)", es.Binary(es.BinaryMinus, es.Binary(es.BinaryMinus, es.Int(10), es.Int(1)), es.Int(2))},
		{"(*)", es.Int(1)},
		{"(* 4)", es.Int(4)},
		{"(* 2 3)", es.Binary(es.BinaryMultiply, es.Int(2), es.Int(3))},
		{"(/)", es.Ident("NaN")},
		{"(/ 2)", es.Binary(es.BinaryDivide, es.Int(1), es.Int(2))},
		{"(/ 8 2 2)", es.Binary(es.BinaryDivide, es.Binary(es.BinaryDivide, es.Int(8), es.Int(2)), es.Int(2))},
		{"(**)", es.Ident("NaN")},
		{"(** 2)", es.Ident("NaN")},
		{"(** 2 3)", es.Binary(es.BinaryPower, es.Int(2), es.Int(3))},
		{"(** 1 2 3)", es.Binary(es.BinaryPower, es.Binary(es.BinaryPower, es.Int(1), es.Int(2)), es.Int(3))},
		{"(mod 7 2)", es.Binary(es.BinaryModulo, es.Int(7), es.Int(2))},
		{"(typeof 1)", es.Unary(es.UnaryTypeof, es.Int(1))},
		{"(+ 1.5 (- 2))", es.Binary(es.BinaryPlus, es.Float(1.5), es.Unary(es.UnaryMinus, es.Int(2)))},
	}

	for _, tt := range tests {
		assertTree(t, tt.input, tt.expected, expr(t, tt.input))
	}
}

func TestOperatorArityErrors(t *testing.T) {
	tests := []string{"(mod)", "(mod 2)", "(typeof)", "(typeof 1 2)", "(** (quote))"}

	for i, input := range tests {
		_, err := compileSource(t, New(Options{}), input)
		if !jerrors.Is(err, jerrors.KindSyntax) {
			t.Errorf("tests[%d] - %s: expected syntax error, got %v", i, input, err)
		}
	}
}

func TestEmptyListIsArray(t *testing.T) {
	assertTree(t, "()", es.Array(), expr(t, "()"))
}

func TestStandardCalls(t *testing.T) {
	tests := []struct {
		input    string
		expected es.Node
	}{
		{"(vec)", es.Call(std("vecLiteral"))},
		{"(vec 1 2)", es.Call(std("vecLiteral"), es.Array(es.Int(1), es.Int(2)))},
		{"[1 2]", es.Call(std("vecLiteral"), es.Array(es.Int(1), es.Int(2)))},
		{"(object)", es.Call(std("objectLiteral"))},
		{`{"a" 1}`, es.Call(std("objectLiteral"), es.Array(es.String("a"), es.Int(1)))},
		{`(str "a" 1)`, es.Call(std("str"), es.String("a"), es.Int(1))},
	}

	for _, tt := range tests {
		assertTree(t, tt.input, tt.expected, expr(t, tt.input))
	}
}

func TestObjectNeedsPairs(t *testing.T) {
	_, err := compileSource(t, New(Options{}), "{1 2 3}")
	if !jerrors.Is(err, jerrors.KindSyntax) {
		t.Errorf("expected syntax error, got %v", err)
	}
}

func TestNotDefined(t *testing.T) {
	_, err := compileSource(t, New(Options{}), "(foo 1 2)")
	if !jerrors.Is(err, jerrors.KindNotDefined) {
		t.Fatalf("expected NotDefined, got %v", err)
	}
	if name, _ := jerrors.Identifier(err); name != "foo" {
		t.Errorf("identifier wrong. expected=%q, got=%q", "foo", name)
	}
}

func TestNotDefinedInsideArguments(t *testing.T) {
	_, err := compileSource(t, New(Options{}), "(+ 1 (bar))")
	if name, _ := jerrors.Identifier(err); name != "bar" {
		t.Errorf("expected NotDefined bar, got %v", err)
	}
}

func TestComputedCallee(t *testing.T) {
	expected := es.Call(es.Call(std("str"), es.Int(1)), es.Int(2))
	assertTree(t, "((str 1) 2)", expected, expr(t, "((str 1) 2)"))

	expected = es.Call(es.Int(1), es.Int(2))
	assertTree(t, "(1 2)", expected, expr(t, "(1 2)"))
}

func TestBindings(t *testing.T) {
	c := New(Options{Bindings: map[string][]string{"dom": {"render"}}})
	prog, err := compileSource(t, c, "(render 1)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := prog.Body[1].(*es.ExpressionStatement).Expression
	assertTree(t, "render", es.Call(es.Member(es.Ident("dom"), "render"), es.Int(1)), got)
}

func TestStdNamespaceOption(t *testing.T) {
	c := New(Options{StdNamespace: "std", StdSource: "./std.js"})
	prog, err := compileSource(t, c, "1 (vec)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertTree(t, "import", es.ImportAs("std", "./std.js"), prog.Body[0])
	call := prog.Body[2].(*es.ExpressionStatement).Expression
	assertTree(t, "vec", es.Call(es.Member(es.Ident("std"), "vecLiteral")), call)
}

func TestQuote(t *testing.T) {
	tests := []struct {
		input    string
		expected es.Node
	}{
		{"'(foo 1)", es.Array(
			es.New(std("Identifier"), es.String("foo"), es.Int(hash.Cyrb53("foo"))),
			es.Int(1),
		)},
		{"'()", es.Array()},
		{"'7", es.Int(7)},
		{"'((1))", es.Array(es.Array(es.Int(1)))},
	}

	for _, tt := range tests {
		assertTree(t, tt.input, tt.expected, expr(t, tt.input))
	}

	if _, err := compileSource(t, New(Options{}), "(quote 1 2)"); !jerrors.Is(err, jerrors.KindSyntax) {
		t.Errorf("expected syntax error for quote arity, got %v", err)
	}
}

func TestImport(t *testing.T) {
	prog, err := compileSource(t, New(Options{}), `(import "./dom.js" dom render) (render 1)`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Body) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(prog.Body))
	}
	assertTree(t, "import", es.ImportAs("dom", "./dom.js"), prog.Body[1])
	call := prog.Body[2].(*es.ExpressionStatement).Expression
	assertTree(t, "call", es.Call(es.Member(es.Ident("dom"), "render"), es.Int(1)), call)
}

func TestImportErrors(t *testing.T) {
	tests := []string{
		`(+ (import "./a.js" a))`,
		`(import "./a.js")`,
		`(import a b)`,
		`(import "./a.js" "b")`,
		`(import "./a.js" a 1)`,
	}

	for i, input := range tests {
		_, err := compileSource(t, New(Options{}), input)
		if !jerrors.Is(err, jerrors.KindSyntax) {
			t.Errorf("tests[%d] - %s: expected syntax error, got %v", i, input, err)
		}
	}
}

func TestImportDoesNotLeakBetweenCompilations(t *testing.T) {
	c := New(Options{})
	if _, err := compileSource(t, c, `(import "./a.js" a f)`); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := compileSource(t, c, "(f)"); !jerrors.Is(err, jerrors.KindNotDefined) {
		t.Errorf("binding leaked into the next compilation: %v", err)
	}
}

func TestFailureReturnsNoProgram(t *testing.T) {
	prog, err := compileSource(t, New(Options{}), "1 (nope)")
	if err == nil || prog != nil {
		t.Errorf("expected nil program and error, got %v, %v", prog, err)
	}
}

func TestCompileLogsFormNodes(t *testing.T) {
	var logged []interface{}
	c := New(Options{Logger: interop.FuncSink(func(msg string, value interface{}) {
		if msg == "Compile form" {
			logged = append(logged, value)
		}
	})})

	if _, err := compileSource(t, c, "(+ 1 2) :k"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"(+ 1 2)", ":k"}
	if len(logged) != len(expected) {
		t.Fatalf("expected %d log calls, got %d", len(expected), len(logged))
	}
	for i, value := range logged {
		node, ok := value.(ast.Node)
		if !ok {
			t.Fatalf("logged[%d] - expected ast.Node, got %T", i, value)
		}
		if node.String() != expected[i] {
			t.Errorf("logged[%d] - form wrong. expected=%q, got=%q", i, expected[i], node.String())
		}
	}
}

func TestCompileHost(t *testing.T) {
	var logged []string
	c := New(Options{Logger: interop.FuncSink(func(msg string, _ interface{}) {
		logged = append(logged, msg)
	})})

	host := []interface{}{
		[]interface{}{interop.NewIdentifier("vec"), 1, 2.5},
		interop.NewKeyword("m", "k"),
	}
	prog, err := c.CompileHost(host)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Body) != 3 {
		t.Fatalf("expected 3 statements, got %d", len(prog.Body))
	}
	vec := prog.Body[1].(*es.ExpressionStatement).Expression
	assertTree(t, "vec", es.Call(std("vecLiteral"), es.Array(es.Int(1), es.Float(2.5))), vec)
	if len(logged) == 0 {
		t.Error("expected log messages")
	}
}

func TestCompileHostUnknownData(t *testing.T) {
	_, err := New(Options{}).CompileHost([]interface{}{struct{}{}})
	if !jerrors.Is(err, jerrors.KindAst) || !jerrors.Is(err, jerrors.KindUnknownData) {
		t.Fatalf("expected Ast error wrapping UnknownData, got %v", err)
	}
	if !strings.Contains(err.Error(), "$[0]") {
		t.Errorf("error should name the path, got %q", err.Error())
	}
}

func TestEnv(t *testing.T) {
	env := NewEnv("std")
	if b, ok := env.Lookup("vec"); !ok || !b.Std || b.Module != "std" {
		t.Errorf("vec binding wrong: %#v", b)
	}
	clone := env.Clone()
	clone.Bind("vec", "mine")
	if b, _ := env.Lookup("vec"); !b.Std {
		t.Error("clone must not affect the original")
	}
	if names := env.Names(); strings.Join(names, ",") != "object,str,vec" {
		t.Errorf("names wrong: %v", names)
	}
}
