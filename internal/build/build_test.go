package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jasp-lang/jasp/internal/compiler"
	"github.com/jasp-lang/jasp/internal/config"
	jerrors "github.com/jasp-lang/jasp/internal/errors"
)

func writeSource(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestInMemoryLRUCache(t *testing.T) {
	c := NewInMemoryLRUCache(2)
	_ = c.Put("k1", Artifact{Output: []byte("one")})
	_ = c.Put("k2", Artifact{Output: []byte("two")})
	if _, ok, _ := c.Get("k1"); !ok {
		t.Fatalf("expected hit k1")
	}
	_ = c.Put("k3", Artifact{Output: []byte("three")}) // evicts k2
	if _, ok, _ := c.Get("k2"); ok {
		t.Fatalf("expected eviction of k2")
	}

	stats := c.Stats()
	if stats.Entries != 2 || stats.Evictions != 1 || stats.Hits != 1 || stats.Misses != 1 {
		t.Errorf("stats wrong: %+v", stats)
	}
	if stats.Bytes != int64(len("one")+len("three")) {
		t.Errorf("bytes wrong: %d", stats.Bytes)
	}

	_ = c.Invalidate("k1")
	if c.Exists("k1") || c.Stats().Entries != 1 {
		t.Errorf("invalidate failed: %+v", c.Stats())
	}
}

func TestFSCache(t *testing.T) {
	fc, err := NewFSCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	key := CacheKey("abc")
	if _, ok, err := fc.Get(key); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%t err=%v", ok, err)
	}
	if err := fc.Put(key, Artifact{Output: []byte(`{"type":"Program"}`)}); err != nil {
		t.Fatal(err)
	}
	if !fc.Exists(key) {
		t.Fatalf("expected key to exist")
	}
	got, ok, err := fc.Get(key)
	if err != nil || !ok || string(got.Output) != `{"type":"Program"}` {
		t.Fatalf("round trip failed: %q %t %v", got.Output, ok, err)
	}
	if err := fc.Invalidate(key); err != nil {
		t.Fatal(err)
	}
	if fc.Exists(key) {
		t.Fatalf("expected removal")
	}
	if err := fc.Invalidate(key); err != nil {
		t.Errorf("invalidating a missing key must succeed, got %v", err)
	}
}

func TestKeyFor(t *testing.T) {
	base := compiler.Options{StdNamespace: "std", StdSource: "./std.js"}
	k := KeyFor("(+ 1 2)", base)
	if k != KeyFor("(+ 1 2)", base) {
		t.Error("key must be deterministic")
	}
	if k == KeyFor("(+ 1 3)", base) {
		t.Error("source must change the key")
	}
	other := base
	other.StdNamespace = "σ"
	if k == KeyFor("(+ 1 2)", other) {
		t.Error("options must change the key")
	}
	withBindings := base
	withBindings.Bindings = map[string][]string{"dom": {"render"}}
	if k == KeyFor("(+ 1 2)", withBindings) {
		t.Error("bindings must change the key")
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	a := writeSource(t, root, "a.jasp", "1")
	b := writeSource(t, root, "lib/deep/b.jasp", "2")
	writeSource(t, root, "lib/notes.txt", "x")

	files, err := Discover(root, []string{"**/*.jasp", "*.jasp"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 || files[0] != a || files[1] != b {
		t.Errorf("files wrong: %v", files)
	}

	if _, err := Discover(root, []string{"[bad"}); err == nil {
		t.Error("expected invalid pattern error")
	}

	if !Matches(root, []string{"**/*.jasp"}, b) || Matches(root, []string{"**/*.jasp"}, filepath.Join(root, "lib/notes.txt")) {
		t.Error("Matches wrong")
	}
}

func TestBuild(t *testing.T) {
	root := t.TempDir()
	good := writeSource(t, root, "src/main.jasp", "(+ 1 2) [1 2]")
	bad := writeSource(t, root, "src/bad.jasp", "(missing 1)")

	cfg := config.Default(root)
	cfg.Jobs = 2
	cache := NewInMemoryLRUCache(16)
	b := NewBuilder(cfg, cache, nil)

	results, err := b.Build(context.Background(), []string{good, bad})
	if err == nil {
		t.Fatal("expected build error")
	}
	var ferr *FileError
	if !errors.As(err, &ferr) || ferr.Path != bad {
		t.Errorf("error should name the failing file, got %v", err)
	}
	if !jerrors.Is(ferr.Err, jerrors.KindNotDefined) {
		t.Errorf("expected NotDefined, got %v", ferr.Err)
	}

	if results[0].Err != nil {
		t.Fatalf("good file failed: %v", results[0].Err)
	}
	expectedOut := filepath.Join(root, "dist", "src", "main.json")
	if results[0].Output != expectedOut {
		t.Errorf("output path wrong. expected=%s, got=%s", expectedOut, results[0].Output)
	}
	data, err := os.ReadFile(expectedOut)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if !strings.Contains(string(data), `"source_type": "module"`) {
		t.Errorf("unexpected output:\n%s", data)
	}
	if results[0].Nodes["BinaryExpression"] != 1 {
		t.Errorf("node stats wrong: %v", results[0].Nodes)
	}
	if !b.Diagnostics.HasErrors() {
		t.Error("failure must be recorded as a diagnostic")
	}

	again, err := NewBuilder(cfg, cache, nil).Build(context.Background(), []string{good})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !again[0].Cached {
		t.Error("second build should hit the cache")
	}
}

func TestBuildCancelled(t *testing.T) {
	root := t.TempDir()
	file := writeSource(t, root, "a.jasp", "1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewBuilder(config.Default(root), nil, nil).Build(ctx, []string{file})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestOutputPathOutsideRoot(t *testing.T) {
	root := t.TempDir()
	b := NewBuilder(config.Default(root), nil, nil)
	got := b.OutputPath(filepath.Join(filepath.Dir(root), "elsewhere", "x.jasp"))
	if got != filepath.Join(root, "dist", "x.json") {
		t.Errorf("output path wrong, got %s", got)
	}
}
