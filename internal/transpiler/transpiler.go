// Package transpiler ties the pipeline together: source text is parsed,
// reduced, compiled and serialized in one synchronous call.
package transpiler

import (
	"fmt"

	"github.com/jasp-lang/jasp/internal/compiler"
	"github.com/jasp-lang/jasp/internal/es"
	"github.com/jasp-lang/jasp/internal/parser"
)

// Indent used for JSON output.
const Indent = "  "

// Transpiler runs the pipeline with fixed compiler options. It holds no
// per-call state and may be shared between goroutines.
type Transpiler struct {
	compiler *compiler.Compiler
}

// New creates a Transpiler.
func New(options compiler.Options) *Transpiler {
	return &Transpiler{compiler: compiler.New(options)}
}

// Compiler returns the underlying compiler.
func (t *Transpiler) Compiler() *compiler.Compiler { return t.compiler }

// TranspileTree parses and compiles source into a program tree.
func (t *Transpiler) TranspileTree(source, filename string) (*es.Program, error) {
	forms, err := parser.ParseFile(source, filename)
	if err != nil {
		return nil, err
	}
	return t.compiler.Compile(forms)
}

// Transpile parses and compiles source into indented JSON.
func (t *Transpiler) Transpile(source, filename string) ([]byte, error) {
	prog, err := t.TranspileTree(source, filename)
	if err != nil {
		return nil, err
	}
	return marshal(prog)
}

// CompileHost compiles a pre-built host list into indented JSON.
func (t *Transpiler) CompileHost(value interface{}) ([]byte, error) {
	prog, err := t.compiler.CompileHost(value)
	if err != nil {
		return nil, err
	}
	return marshal(prog)
}

func marshal(prog *es.Program) ([]byte, error) {
	out, err := es.MarshalIndent(prog, "", Indent)
	if err != nil {
		return nil, fmt.Errorf("serialize program: %w", err)
	}
	return out, nil
}

// Transpile runs the pipeline with default options.
func Transpile(source string) ([]byte, error) {
	return New(compiler.Options{}).Transpile(source, "")
}

// TranspileTree runs the pipeline with default options and returns the tree.
func TranspileTree(source string) (*es.Program, error) {
	return New(compiler.Options{}).TranspileTree(source, "")
}

// CompileHost compiles a host list with default options.
func CompileHost(value interface{}) ([]byte, error) {
	return New(compiler.Options{}).CompileHost(value)
}
