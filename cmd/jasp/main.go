// Package main provides the jasp command line tool. It parses the
// subcommand and delegates to a handler per command.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jasp-lang/jasp/internal/cli"
	"github.com/jasp-lang/jasp/internal/config"
	"github.com/jasp-lang/jasp/internal/diagnostics"
	"github.com/jasp-lang/jasp/internal/position"
	"github.com/jasp-lang/jasp/internal/term"
)

const tool = "jasp"

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// env is the process context a command runs in.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	wd     string
}

func main() {
	wd, err := os.Getwd()
	if err != nil {
		cli.ExitWithError("cannot determine working directory: %v", err)
	}
	e := &env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr, wd: wd}
	os.Exit(run(e, os.Args[1:]))
}

func run(e *env, args []string) int {
	if len(args) < 1 {
		usage(e.stderr)
		return exitUsage
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "help", "-h", "--help":
		if len(rest) > 0 {
			if cmd, ok := lookupCommand(rest[0]); ok {
				cli.PrintCommandUsage(e.stdout, tool, cmd)
				return exitOK
			}
		}
		usage(e.stdout)
		return exitOK
	case "version", "-v", "--version":
		jsonOutput := false
		for _, arg := range rest {
			if arg == "--json" || arg == "-j" {
				jsonOutput = true
				break
			}
		}
		cli.PrintVersion(e.stdout, "jasp", jsonOutput)
		return exitOK
	case "build":
		return runBuild(e, rest)
	case "transpile":
		return runTranspile(e, rest)
	case "parse":
		return runParse(e, rest)
	case "watch":
		return runWatch(e, rest)
	case "serve":
		return runServe(e, rest)
	case "repl":
		return runREPL(e, rest)
	default:
		fmt.Fprintf(e.stderr, "unknown subcommand: %s\n", sub)
		usage(e.stderr)
		return exitUsage
	}
}

var commands = []cli.CommandInfo{
	{
		Name:        "build",
		Description: "Transpile every project source to JSON",
		Usage:       "jasp build [OPTIONS] [files...]",
		Flags: []cli.FlagInfo{
			{Name: "config", Usage: "project file", Default: config.FileName},
			{Name: "out", Usage: "output directory"},
			{Name: "jobs", Usage: "parallel workers"},
			{Name: "cache-dir", Usage: "persist compiled artifacts in this directory"},
			{Name: "stats", Usage: "print output node counts per file"},
			{Name: "verbose", Short: "v", Usage: "verbose output"},
			{Name: "debug", Usage: "trace compilation"},
		},
		Examples: []string{"jasp build", "jasp build --out build --jobs 4 src/main.jasp"},
	},
	{
		Name:        "transpile",
		Description: "Transpile one file (or stdin) and print the JSON tree",
		Usage:       "jasp transpile [OPTIONS] [file|-]",
		Flags: []cli.FlagInfo{
			{Name: "config", Usage: "project file", Default: config.FileName},
			{Name: "o", Usage: "write output to a file instead of stdout"},
			{Name: "compact", Usage: "print JSON without indentation"},
			{Name: "debug", Usage: "trace compilation"},
		},
		Examples: []string{"jasp transpile main.jasp", "echo '(+ 1 2)' | jasp transpile"},
	},
	{
		Name:        "parse",
		Description: "Print the parsed forms of a file (or stdin)",
		Usage:       "jasp parse [--tree] [file|-]",
		Flags: []cli.FlagInfo{
			{Name: "tree", Usage: "print the concrete parse tree"},
		},
	},
	{
		Name:        "watch",
		Description: "Build, then rebuild sources as they change",
		Usage:       "jasp watch [OPTIONS]",
		Flags: []cli.FlagInfo{
			{Name: "config", Usage: "project file", Default: config.FileName},
			{Name: "out", Usage: "output directory"},
			{Name: "jobs", Usage: "parallel workers"},
			{Name: "verbose", Short: "v", Usage: "verbose output"},
		},
	},
	{
		Name:        "serve",
		Description: "Serve the transpiler over HTTP/1.1 and HTTP/3",
		Usage:       "jasp serve [OPTIONS]",
		Flags: []cli.FlagInfo{
			{Name: "config", Usage: "project file", Default: config.FileName},
			{Name: "addr", Usage: "HTTP/1.1 listen address", Default: config.DefaultAddr},
			{Name: "http3-addr", Usage: "HTTP/3 listen address (needs TLS)"},
			{Name: "tls-cert", Usage: "TLS certificate file"},
			{Name: "tls-key", Usage: "TLS key file"},
			{Name: "verbose", Short: "v", Usage: "log requests"},
		},
	},
	{
		Name:        "repl",
		Description: "Start interactive REPL",
		Usage:       "jasp repl [--config file]",
	},
	{
		Name:        "version",
		Description: "Show version information",
		Usage:       "jasp version [--json]",
	},
}

func lookupCommand(name string) (cli.CommandInfo, bool) {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd, true
		}
	}
	return cli.CommandInfo{}, false
}

func usage(w io.Writer) {
	cli.PrintUsage(w, tool, commands)
}

// loadConfig reads the project file. An empty path searches upwards from
// the working directory.
func loadConfig(e *env, path string) (*config.Config, error) {
	if path == "" {
		path = config.Find(e.wd)
	} else if !filepath.IsAbs(path) {
		path = filepath.Join(e.wd, path)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.CheckCompiler(cli.Version); err != nil {
		return nil, err
	}
	return cfg, nil
}

// report prints err as a diagnostic, with an excerpt when the source text
// is known.
func report(e *env, err error, source *position.SourceFile) {
	d := diagnostics.FromError(err, source)
	fmt.Fprint(e.stderr, diagnostics.Format(d, term.ColorEnabled(e.stderr)))
}
