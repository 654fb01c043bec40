package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file whenever it is written or replaced.
type Watcher struct {
	path    string
	logger  *slog.Logger
	watcher *fsnotify.Watcher
}

// NewWatcher starts watching the directory holding path. Watching the
// directory rather than the file keeps the watch alive across editors that
// replace the file on save.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	return &Watcher{path: filepath.Clean(path), logger: logger, watcher: watcher}, nil
}

// Run delivers each successfully reloaded configuration to onChange until
// ctx is cancelled or the watcher is closed. Invalid configurations are
// logged and skipped.
func (w *Watcher) Run(ctx context.Context, onChange func(*IncidentsConfig)) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := LoadFile(w.path)
			if err == nil {
				err = cfg.Validate()
			}
			if err != nil {
				w.logger.Warn("ignoring config change", "path", w.path, "error", err)
				continue
			}
			w.logger.Info("config file changed", "path", w.path)
			onChange(cfg)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", "error", err)
		case <-ctx.Done():
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
