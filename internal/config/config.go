// Package config loads jasp.yaml project files.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/jasp-lang/jasp/internal/compiler"
	"github.com/jasp-lang/jasp/internal/interop"
)

// FileName is the project file looked up by the CLI.
const FileName = "jasp.yaml"

// Defaults
const (
	DefaultSource = "**/*.jasp"
	DefaultOut    = "dist"
	DefaultAddr   = ":8080"
)

// Config is a parsed project file
type Config struct {
	// Path of the file the config was read from, empty for defaults.
	Path string `yaml:"-"`
	// Root is the directory relative paths are resolved against.
	Root string `yaml:"-"`

	Name     string              `yaml:"name"`
	Compiler string              `yaml:"compiler"`
	Std      StdConfig           `yaml:"std"`
	Bindings map[string][]string `yaml:"bindings"`
	Sources  []string            `yaml:"sources"`
	Out      string              `yaml:"out"`
	Jobs     int                 `yaml:"jobs"`
	Serve    ServeConfig         `yaml:"serve"`
}

// StdConfig selects the standard library import
type StdConfig struct {
	Namespace string `yaml:"namespace"`
	Source    string `yaml:"source"`
}

// ServeConfig configures `jasp serve`
type ServeConfig struct {
	Addr      string `yaml:"addr"`
	HTTP3Addr string `yaml:"http3_addr"`
	TLSCert   string `yaml:"tls_cert"`
	TLSKey    string `yaml:"tls_key"`
}

// ValidationError aggregates config validation failures.
type ValidationError struct {
	Path   string
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "config: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("config validation failed")
	if e.Path != "" {
		b.WriteString(" for " + e.Path)
	}
	b.WriteString(":")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// Default returns the configuration used when no project file exists.
func Default(root string) *Config {
	c := &Config{Root: root}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Std.Namespace == "" {
		c.Std.Namespace = compiler.DefaultStdNamespace
	}
	if c.Std.Source == "" {
		c.Std.Source = compiler.DefaultStdSource
	}
	if len(c.Sources) == 0 {
		c.Sources = []string{DefaultSource}
	}
	if c.Out == "" {
		c.Out = DefaultOut
	}
	if c.Jobs == 0 {
		c.Jobs = runtime.NumCPU()
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = DefaultAddr
	}
}

// Load reads and validates a project file. A missing file yields defaults
// rooted at the file's directory.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}

	file, err := os.Open(absPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(filepath.Dir(absPath)), nil
		}
		return nil, fmt.Errorf("config: open %s: %w", absPath, err)
	}
	defer file.Close()

	c, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", absPath, err)
	}
	c.Path = absPath
	c.Root = filepath.Dir(absPath)
	if err := c.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Path = absPath
		}
		return nil, err
	}
	return c, nil
}

// Decode parses a project file from r. Unknown fields are rejected and an
// empty document yields defaults.
func Decode(r io.Reader) (*Config, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	c := &Config{}
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	c.applyDefaults()
	return c, nil
}

// Find walks up from dir looking for a project file and returns its path,
// or the path it would have in dir.
func Find(dir string) string {
	start, err := filepath.Abs(dir)
	if err != nil {
		start = dir
	}
	for current := start; ; {
		candidate := filepath.Join(current, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(current)
		if parent == current {
			return filepath.Join(start, FileName)
		}
		current = parent
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	var errs ValidationError

	if c.Compiler != "" {
		if _, err := semver.NewConstraint(c.Compiler); err != nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("compiler: invalid version constraint %q: %v", c.Compiler, err))
		}
	}
	if strings.ContainsAny(c.Std.Namespace, " \t\n.") {
		errs.Issues = append(errs.Issues, fmt.Sprintf("std.namespace: %q is not an identifier", c.Std.Namespace))
	}
	for i, pattern := range c.Sources {
		switch {
		case pattern == "":
			errs.Issues = append(errs.Issues, fmt.Sprintf("sources[%d] must be a non-empty pattern", i))
		case !doublestar.ValidatePattern(pattern):
			errs.Issues = append(errs.Issues, fmt.Sprintf("sources[%d]: invalid pattern %q", i, pattern))
		}
	}
	if c.Jobs < 0 {
		errs.Issues = append(errs.Issues, "jobs must not be negative")
	}

	modules := make([]string, 0, len(c.Bindings))
	for module := range c.Bindings {
		modules = append(modules, module)
	}
	sort.Strings(modules)
	for _, module := range modules {
		if module == "" {
			errs.Issues = append(errs.Issues, "bindings: module name must not be empty")
		}
		for i, name := range c.Bindings[module] {
			if name == "" {
				errs.Issues = append(errs.Issues, fmt.Sprintf("bindings.%s[%d] must be a non-empty name", module, i))
			}
		}
	}

	if (c.Serve.TLSCert == "") != (c.Serve.TLSKey == "") {
		errs.Issues = append(errs.Issues, "serve: tls_cert and tls_key must be set together")
	}
	if c.Serve.HTTP3Addr != "" && c.Serve.TLSCert == "" {
		errs.Issues = append(errs.Issues, "serve: http3_addr requires tls_cert and tls_key")
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// CheckCompiler verifies that version satisfies the project's compiler
// constraint, if it has one.
func (c *Config) CheckCompiler(version string) error {
	if c.Compiler == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(c.Compiler)
	if err != nil {
		return fmt.Errorf("config: compiler constraint %q: %w", c.Compiler, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("config: tool version %q: %w", version, err)
	}
	if ok, reasons := constraint.Validate(v); !ok {
		msgs := make([]string, len(reasons))
		for i, r := range reasons {
			msgs[i] = r.Error()
		}
		return fmt.Errorf("config: jasp %s does not satisfy %q: %s", v, c.Compiler, strings.Join(msgs, "; "))
	}
	return nil
}

// Resolve makes p absolute against the config root.
func (c *Config) Resolve(p string) string {
	if filepath.IsAbs(p) || c.Root == "" {
		return p
	}
	return filepath.Join(c.Root, p)
}

// OutDir returns the absolute output directory.
func (c *Config) OutDir() string { return c.Resolve(c.Out) }

// CompilerOptions returns the compiler options the project asks for.
func (c *Config) CompilerOptions(logger interop.LogSink) compiler.Options {
	return compiler.Options{
		StdNamespace: c.Std.Namespace,
		StdSource:    c.Std.Source,
		Bindings:     c.Bindings,
		Logger:       logger,
	}
}
