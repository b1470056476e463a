package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"systest/pkg/logging"
)

const (
	// DefaultDebounce is how long to wait for further changes before
	// rebuilding.
	DefaultDebounce = 500 * time.Millisecond

	watchSubsystem = "Watch"
)

// BuildFunc runs one build. changed is empty for the initial build.
type BuildFunc func(ctx context.Context, changed []string)

// Watcher triggers builds on file changes.
type Watcher struct {
	paths    []string
	excludes []string
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
	next    *target
}

type target struct {
	paths    []string
	excludes []string
}

// New returns a watcher for the given files and directory trees. A zero
// debounce uses DefaultDebounce.
func New(debounce time.Duration, paths ...string) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		paths:    cleanAll(paths),
		debounce: debounce,
		pending:  make(map[string]bool),
	}
}

// Exclude ignores changes below the given directories.
func (w *Watcher) Exclude(dirs ...string) {
	w.excludes = append(w.excludes, cleanAll(dirs)...)
}

// Retarget replaces the watched paths and exclusions. It may be called from
// a BuildFunc; the new set takes effect once that build returns.
func (w *Watcher) Retarget(paths, excludes []string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.next = &target{paths: cleanAll(paths), excludes: cleanAll(excludes)}
}

// Run builds once, then again after each batch of changes, until ctx is
// done. Builds never overlap.
func (w *Watcher) Run(ctx context.Context, build BuildFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logging.Error(watchSubsystem, err, "Error closing filesystem watcher")
		}
	}()

	for _, p := range w.paths {
		w.add(watcher, p)
	}

	trigger := make(chan struct{}, 1)
	defer w.stopTimer()

	build(ctx, nil)
	w.retarget(watcher)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handle(watcher, event, trigger)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Error(watchSubsystem, err, "Filesystem watcher error")

		case <-trigger:
			changed := w.drain()
			if len(changed) == 0 {
				continue
			}
			logging.Info(watchSubsystem, "Change detected in %d file(s), rebuilding", len(changed))
			build(ctx, changed)
			w.retarget(watcher)
		}
	}
}

// retarget applies a pending Retarget, rewatching from scratch when the
// paths or exclusions changed.
func (w *Watcher) retarget(watcher *fsnotify.Watcher) {
	w.mu.Lock()
	next := w.next
	w.next = nil
	w.mu.Unlock()

	if next == nil || (slices.Equal(next.paths, w.paths) && slices.Equal(next.excludes, w.excludes)) {
		return
	}

	for _, dir := range watcher.WatchList() {
		if err := watcher.Remove(dir); err != nil {
			logging.Debug(watchSubsystem, "Failed to unwatch %s: %v", dir, err)
		}
	}
	w.paths, w.excludes = next.paths, next.excludes
	for _, p := range w.paths {
		w.add(watcher, p)
	}
	logging.Info(watchSubsystem, "Now watching %s", strings.Join(w.paths, ", "))
}

// add watches path. Directories are watched recursively; a single file is
// watched through its parent directory.
func (w *Watcher) add(watcher *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			path = filepath.Dir(path)
			if _, err := os.Stat(path); err != nil {
				logging.Debug(watchSubsystem, "Not watching missing path %s", path)
				return
			}
			w.addDir(watcher, path)
			return
		}
		logging.Warn(watchSubsystem, "Cannot watch %s: %v", path, err)
		return
	}

	if !info.IsDir() {
		w.addDir(watcher, filepath.Dir(path))
		return
	}

	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.excluded(p) {
			return filepath.SkipDir
		}
		w.addDir(watcher, p)
		return nil
	})
	if err != nil {
		logging.Warn(watchSubsystem, "Failed to walk %s: %v", path, err)
	}
}

func (w *Watcher) addDir(watcher *fsnotify.Watcher, dir string) {
	if err := watcher.Add(dir); err != nil {
		logging.Warn(watchSubsystem, "Failed to watch %s: %v", dir, err)
		return
	}
	logging.Debug(watchSubsystem, "Watching directory: %s", dir)
}

func (w *Watcher) handle(watcher *fsnotify.Watcher, event fsnotify.Event, trigger chan<- struct{}) {
	if event.Op == fsnotify.Chmod {
		return
	}
	name := filepath.Clean(event.Name)
	if w.excluded(name) || !w.relevant(name) {
		return
	}

	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			w.add(watcher, name)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[name] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case trigger <- struct{}{}:
		default:
		}
	})
}

// relevant reports whether name is one of the watched paths or below one.
// Events for siblings of a watched file are ignored.
func (w *Watcher) relevant(name string) bool {
	for _, p := range w.paths {
		if within(name, p) {
			return true
		}
	}
	return false
}

func (w *Watcher) excluded(name string) bool {
	for _, e := range w.excludes {
		if within(name, e) {
			return true
		}
	}
	return false
}

func (w *Watcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	sort.Strings(changed)
	w.pending = make(map[string]bool)
	return changed
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
}

func within(path, root string) bool {
	if path == root {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}

func cleanAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			out = append(out, filepath.Clean(p))
		}
	}
	return out
}
