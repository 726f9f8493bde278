package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// catalogDebounce collapses the burst of events an editor save produces.
const catalogDebounce = 200 * time.Millisecond

// catalogWatcher calls a reload function whenever the catalog file changes.
// It watches the parent directory so that editors replacing the file by
// rename are seen too.
type catalogWatcher struct {
	path     string
	fs       *fsnotify.Watcher
	debounce time.Duration
}

// newCatalogWatcher starts watching path. Events are delivered once Run is
// called; the watch is registered before newCatalogWatcher returns.
func newCatalogWatcher(path string) (*catalogWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch catalog: %w", err)
	}
	if err := fs.Add(filepath.Dir(abs)); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watch catalog: %w", err)
	}
	return &catalogWatcher{path: abs, fs: fs, debounce: catalogDebounce}, nil
}

// Run delivers reloads until ctx is done. A failing reload is logged and
// the previous catalog stays in place.
func (w *catalogWatcher) Run(ctx context.Context, reload func() error) error {
	defer w.fs.Close()
	logger := loggerFromContext(ctx)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			logger.Debug("catalog event", "op", ev.Op.String())
			timer.Reset(w.debounce)
		case <-timer.C:
			if err := reload(); err != nil {
				logger.Warn("catalog reload failed, keeping the previous catalog", "path", w.path, "err", err)
				continue
			}
			logger.Info("catalog reloaded", "path", w.path)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logger.Warn("catalog watcher", "err", err)
		}
	}
}
