package build

import (
	"bytes"
	"compress/gzip"
	"container/list"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jasp-lang/jasp/internal/compiler"
	"github.com/jasp-lang/jasp/internal/hash"
)

// CacheKey uniquely identifies a build artifact: the source text together
// with every compiler option that can change the output.
type CacheKey string

// KeyFor derives the cache key of source compiled with options.
func KeyFor(source string, options compiler.Options) CacheKey {
	var fp strings.Builder
	fp.WriteString(options.StdNamespace)
	fp.WriteByte(0)
	fp.WriteString(options.StdSource)
	modules := make([]string, 0, len(options.Bindings))
	for m := range options.Bindings {
		modules = append(modules, m)
	}
	sort.Strings(modules)
	for _, m := range modules {
		fp.WriteByte(0)
		fp.WriteString(m)
		fp.WriteByte('=')
		fp.WriteString(strings.Join(options.Bindings[m], ","))
	}
	return CacheKey(fmt.Sprintf("%014x-%x-%014x", hash.Cyrb53(source), len(source), hash.Cyrb53(fp.String())))
}

// Artifact is a cached transpilation result.
type Artifact struct {
	Output []byte
}

// CacheStats exposes basic metrics.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Entries   int64
	Bytes     int64
	Evictions int64
}

// Cache abstracts a key->artifact store.
type Cache interface {
	Get(key CacheKey) (Artifact, bool, error)
	Put(key CacheKey, a Artifact) error
	Exists(key CacheKey) bool
	Invalidate(key CacheKey) error
	Stats() CacheStats
}

// InMemoryLRUCache is a thread-safe LRU cache with a max entry count.
type InMemoryLRUCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // front is most recently used
	table    map[CacheKey]*list.Element
	stats    CacheStats
}

type lruEntry struct {
	key CacheKey
	val Artifact
}

// DefaultCacheCapacity is the entry limit used when none is given.
const DefaultCacheCapacity = 1024

// NewInMemoryLRUCache creates a new cache with the given capacity (entries). If capacity<=0, defaults to DefaultCacheCapacity.
func NewInMemoryLRUCache(capacity int) *InMemoryLRUCache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &InMemoryLRUCache{
		capacity: capacity,
		order:    list.New(),
		table:    make(map[CacheKey]*list.Element),
	}
}

func (c *InMemoryLRUCache) Get(key CacheKey) (Artifact, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.table[key]; ok {
		c.order.MoveToFront(el)
		c.stats.Hits++
		return el.Value.(*lruEntry).val, true, nil
	}
	c.stats.Misses++
	return Artifact{}, false, nil
}

func (c *InMemoryLRUCache) Put(key CacheKey, a Artifact) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.table[key]; ok {
		entry := el.Value.(*lruEntry)
		c.stats.Bytes += int64(len(a.Output) - len(entry.val.Output))
		entry.val = a
		c.order.MoveToFront(el)
		return nil
	}

	c.table[key] = c.order.PushFront(&lruEntry{key: key, val: a})
	c.stats.Bytes += int64(len(a.Output))
	for c.order.Len() > c.capacity {
		c.remove(c.order.Back())
		c.stats.Evictions++
	}
	c.stats.Entries = int64(len(c.table))
	return nil
}

func (c *InMemoryLRUCache) remove(el *list.Element) {
	entry := c.order.Remove(el).(*lruEntry)
	delete(c.table, entry.key)
	c.stats.Bytes -= int64(len(entry.val.Output))
}

func (c *InMemoryLRUCache) Exists(key CacheKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.table[key]
	return ok
}

func (c *InMemoryLRUCache) Invalidate(key CacheKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.table[key]; ok {
		c.remove(el)
		c.stats.Entries = int64(len(c.table))
	}
	return nil
}

func (c *InMemoryLRUCache) Stats() CacheStats { c.mu.Lock(); defer c.mu.Unlock(); return c.stats }

// FSCache stores gzip-compressed artifacts under a root directory so they
// survive between runs.
type FSCache struct {
	root  string
	mu    sync.Mutex
	stats CacheStats
}

// NewFSCache ensures the root directory exists.
func NewFSCache(root string) (*FSCache, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &FSCache{root: root}, nil
}

func (fc *FSCache) pathForKey(key CacheKey) string {
	return filepath.Join(fc.root, string(key)+".json.gz")
}

func (fc *FSCache) Get(key CacheKey) (Artifact, bool, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	raw, err := os.ReadFile(fc.pathForKey(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fc.stats.Misses++
			return Artifact{}, false, nil
		}
		return Artifact{}, false, err
	}
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	if err != nil {
		return Artifact{}, false, fmt.Errorf("cache entry %s: %w", key, err)
	}
	defer zr.Close()
	data, err := io.ReadAll(zr)
	if err != nil {
		return Artifact{}, false, fmt.Errorf("cache entry %s: %w", key, err)
	}
	fc.stats.Hits++
	return Artifact{Output: data}, true, nil
}

func (fc *FSCache) Put(key CacheKey, a Artifact) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write(a.Output); err != nil {
		return err
	}
	if err := gw.Close(); err != nil {
		return err
	}

	// write atomically
	final := fc.pathForKey(key)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return err
	}
	fc.stats.Entries++
	fc.stats.Bytes += int64(len(a.Output))
	return nil
}

func (fc *FSCache) Exists(key CacheKey) bool {
	_, err := os.Stat(fc.pathForKey(key))
	return err == nil
}

func (fc *FSCache) Invalidate(key CacheKey) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	err := os.Remove(fc.pathForKey(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err == nil {
		fc.stats.Entries--
	}
	return err
}

func (fc *FSCache) Stats() CacheStats { fc.mu.Lock(); defer fc.mu.Unlock(); return fc.stats }
