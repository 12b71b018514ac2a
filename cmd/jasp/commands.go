package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/jasp-lang/jasp/internal/ast"
	"github.com/jasp-lang/jasp/internal/build"
	"github.com/jasp-lang/jasp/internal/cli"
	"github.com/jasp-lang/jasp/internal/config"
	"github.com/jasp-lang/jasp/internal/diagnostics"
	"github.com/jasp-lang/jasp/internal/es"
	"github.com/jasp-lang/jasp/internal/parser"
	"github.com/jasp-lang/jasp/internal/position"
	"github.com/jasp-lang/jasp/internal/repl"
	"github.com/jasp-lang/jasp/internal/server"
	"github.com/jasp-lang/jasp/internal/term"
	"github.com/jasp-lang/jasp/internal/transpiler"
	"github.com/jasp-lang/jasp/internal/watch"
)

// buildFlags are shared by build and watch.
type buildFlags struct {
	config   string
	out      string
	jobs     int
	cacheDir string
	stats    bool
	verbose  bool
	debug    bool
}

func (bf *buildFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&bf.config, "config", "", "project file (default: search upwards for "+config.FileName+")")
	fs.StringVar(&bf.out, "out", "", "output directory")
	fs.IntVar(&bf.jobs, "jobs", 0, "parallel workers (default: number of CPUs)")
	fs.BoolVar(&bf.verbose, "v", false, "verbose output")
	fs.BoolVar(&bf.debug, "debug", false, "trace compilation")
}

// apply overrides config values with the flags that were set.
func (bf *buildFlags) apply(cfg *config.Config) error {
	if bf.out != "" {
		cfg.Out = bf.out
	}
	if bf.jobs != 0 {
		cfg.Jobs = bf.jobs
	}
	return cfg.Validate()
}

func newFlagSet(e *env, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		if cmd, ok := lookupCommand(name); ok {
			cli.PrintCommandUsage(e.stderr, tool, cmd)
		}
	}
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK, false
		}
		return exitUsage, false
	}
	return exitOK, true
}

// checkArgs reports positional arguments beyond maxArgs along with the
// command usage.
func checkArgs(e *env, fs *flag.FlagSet, maxArgs int) bool {
	if err := cli.ValidateArgs(fs.Args(), maxArgs); err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		fs.Usage()
		return false
	}
	return true
}

// prepareBuild loads the config, applies flags and creates a builder with
// the requested cache.
func prepareBuild(e *env, bf *buildFlags) (*build.Builder, *cli.Logger, error) {
	logger := cli.NewLoggerTo(e.stderr, bf.verbose, bf.debug)
	cfg, err := loadConfig(e, bf.config)
	if err != nil {
		return nil, logger, err
	}
	if err := bf.apply(cfg); err != nil {
		return nil, logger, err
	}

	var cache build.Cache = build.NewInMemoryLRUCache(build.DefaultCacheCapacity)
	if bf.cacheDir != "" {
		dir := bf.cacheDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(e.wd, dir)
		}
		fc, err := build.NewFSCache(dir)
		if err != nil {
			return nil, logger, err
		}
		cache = fc
	}
	logger.Debug("config %s (root %s)", cfg.Path, cfg.Root)
	return build.NewBuilder(cfg, cache, logger), logger, nil
}

func runBuild(e *env, args []string) int {
	var bf buildFlags
	fs := newFlagSet(e, "build")
	bf.register(fs)
	fs.StringVar(&bf.cacheDir, "cache-dir", "", "persist compiled artifacts in this directory")
	fs.BoolVar(&bf.stats, "stats", false, "print output node counts per file")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	b, logger, err := prepareBuild(e, &bf)
	if err != nil {
		logger.Error("%v", err)
		return exitFailure
	}

	files := absPaths(e.wd, fs.Args())
	if len(files) == 0 {
		files, err = build.Discover(b.Config.Root, b.Config.Sources)
		if err != nil {
			logger.Error("%v", err)
			return exitFailure
		}
	}
	if len(files) == 0 {
		logger.Warn("no sources match %v under %s", b.Config.Sources, b.Config.Root)
		return exitOK
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return finishBuild(ctx, e, b, files, bf.stats)
}

// finishBuild runs one build and prints its diagnostics and, if asked,
// node statistics.
func finishBuild(ctx context.Context, e *env, b *build.Builder, files []string, stats bool) int {
	results, err := b.Build(ctx, files)

	colorize := term.ColorEnabled(e.stderr)
	for _, d := range b.Diagnostics.Diagnostics() {
		fmt.Fprint(e.stderr, diagnostics.Format(d, colorize))
	}
	if stats {
		printStats(e.stdout, results)
	}

	if err != nil {
		fmt.Fprintln(e.stderr, b.Diagnostics.FormatSummary())
		return exitFailure
	}
	cached := 0
	for _, r := range results {
		if r.Cached {
			cached++
		}
	}
	fmt.Fprintf(e.stdout, "built %d file(s) into %s (%d cached)\n", len(results), b.Config.OutDir(), cached)
	return exitOK
}

func printStats(w io.Writer, results []build.Result) {
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if r.Cached {
			fmt.Fprintf(w, "%s: cached\n", r.Source)
			continue
		}
		kinds := make([]string, 0, len(r.Nodes))
		for k := range r.Nodes {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		parts := make([]string, len(kinds))
		for i, k := range kinds {
			parts[i] = fmt.Sprintf("%s=%d", k, r.Nodes[k])
		}
		fmt.Fprintf(w, "%s: %s\n", r.Source, strings.Join(parts, " "))
	}
}

func runWatch(e *env, args []string) int {
	var bf buildFlags
	fs := newFlagSet(e, "watch")
	bf.register(fs)
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if !checkArgs(e, fs, 0) {
		return exitUsage
	}

	b, logger, err := prepareBuild(e, &bf)
	if err != nil {
		logger.Error("%v", err)
		return exitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	files, err := build.Discover(b.Config.Root, b.Config.Sources)
	if err != nil {
		logger.Error("%v", err)
		return exitFailure
	}
	if len(files) > 0 {
		finishBuild(ctx, e, b, files, false)
	}

	out := b.Config.OutDir()
	fmt.Fprintf(e.stdout, "watching %s\n", b.Config.Root)
	err = watch.Run(ctx, []string{b.Config.Root}, func(paths []string) {
		var changed []string
		for _, p := range paths {
			if strings.HasPrefix(p, out+string(filepath.Separator)) {
				continue
			}
			if _, err := os.Stat(p); err != nil {
				logger.Info("%s removed", p)
				continue
			}
			if build.Matches(b.Config.Root, b.Config.Sources, p) {
				changed = append(changed, p)
			}
		}
		if len(changed) == 0 {
			return
		}
		b.Diagnostics = diagnostics.NewManager()
		finishBuild(ctx, e, b, changed, false)
	})
	if err != nil && ctx.Err() == nil {
		logger.Error("%v", err)
		return exitFailure
	}
	return exitOK
}

// readSource reads the named file, or stdin for "" and "-".
func readSource(e *env, name string) (source, filename string, err error) {
	if name == "" || name == "-" {
		data, err := io.ReadAll(e.stdin)
		return string(data), "<stdin>", err
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.wd, path)
	}
	data, err := os.ReadFile(path)
	return string(data), name, err
}

func runTranspile(e *env, args []string) int {
	fs := newFlagSet(e, "transpile")
	configPath := fs.String("config", "", "project file")
	outPath := fs.String("o", "", "write output to a file instead of stdout")
	compact := fs.Bool("compact", false, "print JSON without indentation")
	debug := fs.Bool("debug", false, "trace compilation")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if !checkArgs(e, fs, 1) {
		return exitUsage
	}

	logger := cli.NewLoggerTo(e.stderr, false, *debug)
	cfg, err := loadConfig(e, *configPath)
	if err != nil {
		logger.Error("%v", err)
		return exitFailure
	}

	source, filename, err := readSource(e, fs.Arg(0))
	if err != nil {
		logger.Error("%v", err)
		return exitFailure
	}

	prog, err := transpiler.New(cfg.CompilerOptions(logger)).TranspileTree(source, filename)
	if err != nil {
		report(e, err, position.NewSourceFile(filename, source))
		return exitFailure
	}
	var out []byte
	if *compact {
		out, err = es.Marshal(prog)
	} else {
		out, err = es.MarshalIndent(prog, "", transpiler.Indent)
	}
	if err != nil {
		logger.Error("%v", err)
		return exitFailure
	}
	out = append(out, '\n')

	if *outPath == "" {
		_, _ = e.stdout.Write(out)
		return exitOK
	}
	path := *outPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.wd, path)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		logger.Error("%v", err)
		return exitFailure
	}
	return exitOK
}

func runParse(e *env, args []string) int {
	fs := newFlagSet(e, "parse")
	tree := fs.Bool("tree", false, "print the concrete parse tree")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if !checkArgs(e, fs, 1) {
		return exitUsage
	}

	source, filename, err := readSource(e, fs.Arg(0))
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitFailure
	}

	if *tree {
		pair, err := parser.ParseTreeFile(source, filename)
		if err != nil {
			report(e, err, position.NewSourceFile(filename, source))
			return exitFailure
		}
		fmt.Fprint(e.stdout, pair.String())
		return exitOK
	}

	forms, err := parser.ParseFile(source, filename)
	if err != nil {
		report(e, err, position.NewSourceFile(filename, source))
		return exitFailure
	}
	if len(forms) > 0 {
		fmt.Fprintln(e.stdout, ast.Format(forms))
	}
	return exitOK
}

func runServe(e *env, args []string) int {
	fs := newFlagSet(e, "serve")
	configPath := fs.String("config", "", "project file")
	addr := fs.String("addr", "", "HTTP/1.1 listen address")
	h3Addr := fs.String("http3-addr", "", "HTTP/3 listen address (needs TLS)")
	certFile := fs.String("tls-cert", "", "TLS certificate file")
	keyFile := fs.String("tls-key", "", "TLS key file")
	verbose := fs.Bool("v", false, "log requests")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if !checkArgs(e, fs, 0) {
		return exitUsage
	}

	logger := cli.NewLoggerTo(e.stderr, *verbose, false)
	cfg, err := loadConfig(e, *configPath)
	if err != nil {
		logger.Error("%v", err)
		return exitFailure
	}
	if *addr != "" {
		cfg.Serve.Addr = *addr
	}
	if *h3Addr != "" {
		cfg.Serve.HTTP3Addr = *h3Addr
	}
	if *certFile != "" {
		cfg.Serve.TLSCert = *certFile
	}
	if *keyFile != "" {
		cfg.Serve.TLSKey = *keyFile
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("%v", err)
		return exitFailure
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(e.stdout, "serving on %s\n", cfg.Serve.Addr)
	if err := server.New(cfg, logger).ListenAndServe(ctx); err != nil && ctx.Err() == nil {
		logger.Error("%v", err)
		return exitFailure
	}
	return exitOK
}

func runREPL(e *env, args []string) int {
	fs := newFlagSet(e, "repl")
	configPath := fs.String("config", "", "project file")
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if !checkArgs(e, fs, 0) {
		return exitUsage
	}

	logger := cli.NewLoggerTo(e.stderr, false, false)
	cfg, err := loadConfig(e, *configPath)
	if err != nil {
		logger.Error("%v", err)
		return exitFailure
	}

	r := repl.New(e.stdout, cfg.CompilerOptions(nil))
	r.Colorize = term.ColorEnabled(e.stdout)
	if err := r.Run(); err != nil {
		logger.Error("%v", err)
		return exitFailure
	}
	return exitOK
}

func absPaths(wd string, paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(wd, p)
		}
		out[i] = filepath.Clean(p)
	}
	return out
}
