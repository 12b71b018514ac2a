// Package build transpiles the source files of a project in parallel,
// caching artifacts by content.
package build

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jasp-lang/jasp/internal/cli"
	"github.com/jasp-lang/jasp/internal/compiler"
	"github.com/jasp-lang/jasp/internal/config"
	"github.com/jasp-lang/jasp/internal/diagnostics"
	"github.com/jasp-lang/jasp/internal/es"
	"github.com/jasp-lang/jasp/internal/position"
	"github.com/jasp-lang/jasp/internal/transpiler"
)

// Result captures the outcome for one source file.
type Result struct {
	Source string
	Output string
	Cached bool
	Err    error
	Took   time.Duration
	// Nodes counts output tree nodes per kind. Empty for cache hits.
	Nodes map[string]int
}

// Builder transpiles files according to a project config.
type Builder struct {
	Config      *config.Config
	Cache       Cache
	Logger      *cli.Logger
	Diagnostics *diagnostics.Manager

	options    compiler.Options
	transpiler *transpiler.Transpiler
}

// NewBuilder creates a builder. cache may be nil to disable caching.
func NewBuilder(cfg *config.Config, cache Cache, logger *cli.Logger) *Builder {
	if logger == nil {
		logger = cli.NewLogger(false, false)
	}
	options := cfg.CompilerOptions(logger)
	return &Builder{
		Config:      cfg,
		Cache:       cache,
		Logger:      logger,
		Diagnostics: diagnostics.NewManager(),
		options:     options,
		transpiler:  transpiler.New(options),
	}
}

// FileError is the failure of a single file.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return e.Path + ": " + e.Err.Error() }
func (e *FileError) Unwrap() error { return e.Err }

// Build transpiles every file. All files are attempted even when some fail;
// the returned error joins the per-file errors. Results keep the order of
// files.
func (b *Builder) Build(ctx context.Context, files []string) ([]Result, error) {
	results := make([]Result, len(files))

	g, gctx := errgroup.WithContext(ctx)
	jobs := b.Config.Jobs
	if jobs <= 0 {
		jobs = 1
	}
	g.SetLimit(jobs)

	for i, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Source: file, Err: err}
				return err
			}
			results[i] = b.BuildFile(file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, &FileError{Path: r.Source, Err: r.Err})
		}
	}
	b.Logger.Info("built %d file(s), %d failed", len(files), len(errs))
	return results, errors.Join(errs...)
}

// BuildFile transpiles one file and writes its output.
func (b *Builder) BuildFile(path string) Result {
	start := time.Now()
	result := Result{Source: path, Output: b.OutputPath(path)}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Err = err
		b.Diagnostics.AddError(err, nil)
		return result
	}
	source := string(data)

	output, cached, nodes, err := b.transpile(source, path)
	if err != nil {
		result.Err = err
		b.Diagnostics.AddError(err, position.NewSourceFile(path, source))
		return result
	}
	result.Cached = cached
	result.Nodes = nodes

	if err := writeFileAtomic(result.Output, output); err != nil {
		result.Err = err
		b.Diagnostics.AddError(err, nil)
		return result
	}

	result.Took = time.Since(start)
	b.Logger.Debug("%s -> %s (cached=%t, %s)", path, result.Output, cached, result.Took)
	return result
}

func (b *Builder) transpile(source, path string) ([]byte, bool, map[string]int, error) {
	key := KeyFor(source, b.options)
	if b.Cache != nil {
		art, ok, err := b.Cache.Get(key)
		if err != nil {
			b.Logger.Warn("cache read for %s failed: %v", path, err)
		} else if ok {
			return art.Output, true, nil, nil
		}
	}

	prog, err := b.transpiler.TranspileTree(source, path)
	if err != nil {
		return nil, false, nil, err
	}
	output, err := es.MarshalIndent(prog, "", transpiler.Indent)
	if err != nil {
		return nil, false, nil, fmt.Errorf("serialize %s: %w", path, err)
	}

	if b.Cache != nil {
		if err := b.Cache.Put(key, Artifact{Output: output}); err != nil {
			b.Logger.Warn("cache write for %s failed: %v", path, err)
		}
	}
	return output, false, es.Stats(prog), nil
}

// OutputPath maps a source file to <out>/<path relative to root>.json.
// Files outside the project root keep only their base name.
func (b *Builder) OutputPath(source string) string {
	rel, err := filepath.Rel(b.Config.Root, source)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		rel = filepath.Base(source)
	}
	return filepath.Join(b.Config.OutDir(), strings.TrimSuffix(rel, filepath.Ext(rel))+".json")
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
