package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vk/rustdex/internal/codec"
	"github.com/vk/rustdex/internal/ctxlog"
)

// DefaultDebounce is used when a Watcher is created with a non-positive delay.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports changes to a catalog source on disk. Bursts of events
// closer together than the debounce delay are reported once.
type Watcher struct {
	path     string
	dir      bool
	debounce time.Duration
	fsw      *fsnotify.Watcher
	exts     map[string]bool
}

// NewWatcher watches the catalog file or directory at path.
func NewWatcher(path string, debounce time.Duration) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("the embedded catalog cannot be watched")
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access catalog source: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	exts := make(map[string]bool)
	for _, ext := range codec.Extensions() {
		exts[ext] = true
	}

	w := &Watcher{
		path:     filepath.Clean(path),
		dir:      info.IsDir(),
		debounce: debounce,
		fsw:      fsw,
		exts:     exts,
	}

	// Editors often replace a file instead of writing it in place, so a
	// single file is watched through its parent directory.
	if w.dir {
		err = w.addRecursive(w.path)
	} else {
		err = fsw.Add(filepath.Dir(w.path))
	}
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	return w, nil
}

// Run blocks until ctx is cancelled, calling onChange after each settled
// burst of relevant file events. onChange runs on the watcher goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func(context.Context)) error {
	defer w.fsw.Close()
	logger := ctxlog.FromContext(ctx).With("source", w.path)
	logger.Info("Watching catalog source for changes.", "debounce", w.debounce)

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event, logger) {
				continue
			}
			logger.Debug("Catalog change detected.", "path", event.Name, "op", event.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("File watcher error.", "error", err)

		case <-timer.C:
			onChange(ctx)
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event, logger *slog.Logger) bool {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Clean(event.Name)
	if !w.dir {
		return name == w.path
	}

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			if hidden(filepath.Base(name)) {
				return false
			}
			if err := w.addRecursive(name); err != nil {
				logger.Warn("Failed to watch new directory.", "path", name, "error", err)
			}
			return true
		}
	}
	return w.exts[strings.ToLower(filepath.Ext(name))]
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && hidden(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "."
}
