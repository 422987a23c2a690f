// Package watcher drives live preview: it watches a markdown document
// and the themes directory, and triggers a re-render when either changes.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// debounceDelay coalesces the burst of events editors emit per save.
const debounceDelay = 200 * time.Millisecond

// Watcher re-renders a preview whenever its inputs change.
type Watcher struct {
	*fsnotify.Watcher
	logger *logrus.Logger
}

// New creates a Watcher.
func New(logger *logrus.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{Watcher: w, logger: logger}, nil
}

// WatchPreview watches the markdown file's directory and the themes
// directory, calling render after each relevant change until ctx is
// cancelled. fsnotify watches on some platforms drop when a file is
// replaced by rename, so the containing directory is watched instead of
// the file itself.
func (w *Watcher) WatchPreview(ctx context.Context, mdPath, themesDir string, render func() error) error {
	mdPath, err := filepath.Abs(mdPath)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(mdPath)); err != nil {
		return err
	}
	if err := w.Add(themesDir); err != nil {
		return err
	}

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	schedule := func() {
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(debounceDelay, func() {
			select {
			case pending <- struct{}{}:
			default:
			}
		})
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !isRelevant(event.Name, mdPath) {
				continue
			}
			w.logger.Debugf("Change detected: %s", event.Name)
			schedule()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			w.logger.WithError(err).Warn("Watcher error")
		case <-pending:
			if err := render(); err != nil {
				w.logger.WithError(err).Error("Re-render failed")
			}
		}
	}
}

// isRelevant accepts the watched markdown file itself and any theme CSS.
func isRelevant(path, mdPath string) bool {
	if abs, err := filepath.Abs(path); err == nil && abs == mdPath {
		return true
	}
	return strings.EqualFold(filepath.Ext(path), ".css")
}
