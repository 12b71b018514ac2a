// Package watch reports batches of changed source files.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the watcher waits for events to settle.
const DefaultDebounce = 100 * time.Millisecond

// Op describes a set of file operations.
type Op uint8

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

// Event is a change to one path.
type Event struct {
	Path string
	Op   Op
}

func toOp(op fsnotify.Op) Op {
	var out Op
	if op&fsnotify.Create != 0 {
		out |= OpCreate
	}
	if op&fsnotify.Write != 0 {
		out |= OpWrite
	}
	if op&fsnotify.Remove != 0 {
		out |= OpRemove
	}
	if op&fsnotify.Rename != 0 {
		out |= OpRename
	}
	if op&fsnotify.Chmod != 0 {
		out |= OpChmod
	}
	return out
}

// IsJasp matches jasp source files.
func IsJasp(path string) bool { return strings.HasSuffix(path, ".jasp") }

// Watcher watches directory trees using OS-native notifications.
type Watcher struct {
	// Debounce is the quiet period before a batch is delivered.
	Debounce time.Duration
	// Match selects the paths that are reported.
	Match func(path string) bool

	w *fsnotify.Watcher
}

// New creates a Watcher reporting .jasp files.
func New() (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{Debounce: DefaultDebounce, Match: IsJasp, w: w}, nil
}

// AddRecursive watches dir and every directory below it. Hidden
// directories are skipped.
func (w *Watcher) AddRecursive(dir string) error {
	return w.addTree(dir, nil)
}

// addTree is AddRecursive, also passing every file found to visit.
func (w *Watcher) addTree(dir string, visit func(path string)) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if visit != nil {
				visit(path)
			}
			return nil
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.w.Add(path)
	})
}

// Close stops watching.
func (w *Watcher) Close() error { return w.w.Close() }

// Run delivers debounced batches of changed paths to onChange until ctx is
// done. Paths in a batch are sorted and unique. Directories created while
// running are watched too, and the files already inside them are reported as
// created.
func (w *Watcher) Run(ctx context.Context, onChange func(paths []string)) error {
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	match := w.Match
	if match == nil {
		match = IsJasp
	}

	pending := make(map[string]Op)
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			op := toOp(ev.Op)
			if op&OpCreate != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					found := false
					err := w.addTree(ev.Name, func(path string) {
						if match(path) {
							pending[path] |= OpCreate
							found = true
						}
					})
					if err != nil && !errors.Is(err, fs.ErrNotExist) {
						return err
					}
					if found {
						timer.Reset(debounce)
					}
					continue
				}
			}
			if op == OpChmod || !match(ev.Name) {
				continue
			}
			pending[ev.Name] |= op
			timer.Reset(debounce)

		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			return err

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			pending = make(map[string]Op)
			onChange(paths)
		}
	}
}

// Run watches dirs recursively and calls onChange with each batch of
// changed .jasp files until ctx is done.
func Run(ctx context.Context, dirs []string, onChange func(paths []string)) error {
	w, err := New()
	if err != nil {
		return err
	}
	defer w.Close()

	for _, dir := range dirs {
		if err := w.AddRecursive(dir); err != nil {
			return err
		}
	}
	return w.Run(ctx, onChange)
}
