package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettleTime is how long a file must stay unchanged before it is imported.
const DefaultSettleTime = 500 * time.Millisecond

// ImportFunc is called after each successful import by a Watcher.
type ImportFunc func(path string, result ImportResult)

// Watcher imports *.json song files written to a directory.
type Watcher struct {
	store      *Store
	dir        string
	onImport   ImportFunc
	settleTime time.Duration
	fsw        *fsnotify.Watcher
}

// NewWatcher starts watching dir. Call Run to process events and Close when done.
func NewWatcher(store *Store, dir string, onImport ImportFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}
	logger.Infof("watching %s for song files", dir)

	return &Watcher{
		store:      store,
		dir:        dir,
		onImport:   onImport,
		settleTime: DefaultSettleTime,
		fsw:        fsw,
	}, nil
}

// SetSettleTime overrides DefaultSettleTime.
func (w *Watcher) SetSettleTime(d time.Duration) {
	w.settleTime = d
}

func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// Run processes filesystem events until ctx is cancelled or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.settleTime)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(event.Name), ".json") {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				pending[event.Name] = struct{}{}
				timer.Reset(w.settleTime)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("watcher error: %v", err)

		case <-timer.C:
			for path := range pending {
				result, err := ImportFile(ctx, w.store, path)
				if err != nil {
					logger.Errorf("importing %s: %v", path, err)
					continue
				}
				if w.onImport != nil {
					w.onImport(path, result)
				}
			}
			clear(pending)
		}
	}
}
