// Package watch reloads a keymap file when it changes on disk.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Alia5/keylayer/internal/log"
	"github.com/Alia5/keylayer/keymap"
	"github.com/Alia5/keylayer/macro"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce absorbs the burst of events editors produce for one save.
const DefaultDebounce = 100 * time.Millisecond

// ReloadFunc receives every keymap that loaded cleanly.
type ReloadFunc func(t *keymap.Table, macros *macro.Table)

// Keymap watches one keymap file. Files that fail to load are logged and
// skipped; the previous keymap stays active.
type Keymap struct {
	path     string
	debounce time.Duration
	onReload ReloadFunc
	logger   *slog.Logger
}

// New creates a watcher for path. debounce <= 0 means DefaultDebounce.
func New(path string, debounce time.Duration, onReload ReloadFunc, logger *slog.Logger) *Keymap {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Keymap{
		path:     filepath.Clean(path),
		debounce: debounce,
		onReload: onReload,
		logger:   log.OrDiscard(logger),
	}
}

// Run watches until ctx is done. The directory is watched rather than the
// file so that editors replacing the file by rename keep being seen.
func (w *Keymap) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch directory: %w", err)
	}
	w.logger.Info("watching keymap", "path", w.path)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("keymap watcher error", "error", err)
		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Keymap) reload() {
	t, macros, err := keymap.Load(w.path)
	if err != nil {
		w.logger.Error("keymap reload failed", "path", w.path, "error", err)
		return
	}
	w.logger.Info("keymap changed", "path", w.path, "name", t.Name(), "layers", t.Layers())
	if w.onReload != nil {
		w.onReload(t, macros)
	}
}
