// Package repl implements the interactive jasp prompt.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jasp-lang/jasp/internal/ast"
	"github.com/jasp-lang/jasp/internal/compiler"
	"github.com/jasp-lang/jasp/internal/diagnostics"
	"github.com/jasp-lang/jasp/internal/parser"
	"github.com/jasp-lang/jasp/internal/position"
	"github.com/jasp-lang/jasp/internal/transpiler"
)

const (
	HistoryFile = ".jasp_history"
	PromptMain  = "jasp> "
	PromptCont  = "  ... "
)

const helpText = `Commands:
  :help            show this help
  :quit, :exit     leave the REPL
  :ast <src>       print the parsed forms
  :tree <src>      print the concrete parse tree
  :load <file>     transpile a file
Anything else is transpiled and printed as JSON.
`

// Prompter reads one line of input.
type Prompter interface {
	Prompt(prompt string) (string, error)
}

// REPL holds session settings. Every entry compiles against the options'
// initial environment; imports do not carry over between entries.
type REPL struct {
	out      io.Writer
	options  compiler.Options
	Colorize bool
}

// New creates a REPL writing to out.
func New(out io.Writer, options compiler.Options) *REPL {
	return &REPL{out: out, options: options}
}

// Run starts an interactive session on the terminal, keeping history in
// the user's home directory.
func (r *REPL) Run() error {
	fmt.Fprintln(r.out, "jasp REPL. Type :help for help, :quit to exit.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, HistoryFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	r.Loop(ln, func(entry string) {
		ln.AppendHistory(strings.ReplaceAll(entry, "\n", " "))
	})

	f, err := os.Create(histPath)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = ln.WriteHistory(f)
	return err
}

// Loop reads and evaluates entries until EOF or :quit. record, if not nil,
// receives every non-blank entry.
func (r *REPL) Loop(p Prompter, record func(string)) {
	for {
		entry, ok := ReadEntry(p)
		if !ok {
			fmt.Fprintln(r.out)
			return
		}
		if strings.TrimSpace(entry) == "" {
			continue
		}
		if record != nil {
			record(entry)
		}
		if r.Eval(entry) {
			return
		}
	}
}

// ReadEntry reads lines until they form a complete entry. Input stays open
// while the parser reports it as incomplete. ok is false at end of input.
func ReadEntry(p Prompter) (entry string, ok bool) {
	var b strings.Builder
	for {
		prompt := PromptMain
		if b.Len() > 0 {
			prompt = PromptCont
		}
		line, err := p.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C drops the pending entry.
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") {
			return src, true
		}
		if _, err := parser.ParseTree(src); err != nil && parser.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}

// Eval handles one entry and reports whether the session should end.
func (r *REPL) Eval(entry string) bool {
	trimmed := strings.TrimSpace(entry)
	if !strings.HasPrefix(trimmed, ":") {
		r.transpile(entry, "")
		return false
	}

	cmd, arg, _ := strings.Cut(trimmed, " ")
	arg = strings.TrimSpace(arg)
	switch strings.ToLower(cmd) {
	case ":help", ":h":
		fmt.Fprint(r.out, helpText)
	case ":quit", ":q", ":exit":
		return true
	case ":ast":
		forms, err := parser.Parse(arg)
		if err != nil {
			r.report(err, arg, "")
			return false
		}
		fmt.Fprintln(r.out, ast.Format(forms))
	case ":tree":
		tree, err := parser.ParseTree(arg)
		if err != nil {
			r.report(err, arg, "")
			return false
		}
		fmt.Fprint(r.out, tree.String())
	case ":load":
		if arg == "" {
			fmt.Fprintln(r.out, "usage: :load <file>")
			return false
		}
		src, err := os.ReadFile(arg)
		if err != nil {
			fmt.Fprintf(r.out, "cannot read %s: %v\n", arg, err)
			return false
		}
		r.transpile(string(src), arg)
	default:
		fmt.Fprintf(r.out, "unknown command %s. Type :help for help.\n", cmd)
	}
	return false
}

func (r *REPL) transpile(src, filename string) {
	out, err := transpiler.New(r.options).Transpile(src, filename)
	if err != nil {
		r.report(err, src, filename)
		return
	}
	fmt.Fprintln(r.out, string(out))
}

func (r *REPL) report(err error, src, filename string) {
	d := diagnostics.FromError(err, position.NewSourceFile(filename, src))
	fmt.Fprint(r.out, diagnostics.Format(d, r.Colorize))
}
