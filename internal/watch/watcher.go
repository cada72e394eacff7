// SPDX-License-Identifier: MIT

// Package watch observes the skins directory and triggers a rescan when
// skins are installed, updated, or removed.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	xglog "github.com/beatkit/skind/internal/log"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher debounces filesystem events under the skins directory into a
// single rescan callback. New skin directories are added to the watch
// set as they appear, so edits inside a freshly installed skin are seen
// without a restart.
type Watcher struct {
	skinsDir string
	onChange func(context.Context)
	debounce time.Duration
	watcher  *fsnotify.Watcher
	logger   zerolog.Logger
	done     chan struct{}
}

// New creates a watcher over skinsDir. onChange runs after the debounce
// window closes; it must tolerate being called for no-op changes.
func New(skinsDir string, debounce time.Duration, onChange func(context.Context)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create skins watcher: %w", err)
	}

	w := &Watcher{
		skinsDir: skinsDir,
		onChange: onChange,
		debounce: debounce,
		watcher:  fw,
		logger:   xglog.WithComponent("watch"),
		done:     make(chan struct{}),
	}

	if err := fw.Add(skinsDir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch skins dir: %w", err)
	}

	// Watch existing skin directories one level down. Depth one is
	// enough: a change to any file inside a skin triggers a rescan of
	// the whole directory anyway.
	entries, err := os.ReadDir(skinsDir)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("read skins dir: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := fw.Add(filepath.Join(skinsDir, e.Name())); err != nil {
			w.logger.Warn().Err(err).
				Str(xglog.FieldPath, e.Name()).
				Msg("cannot watch skin directory")
		}
	}

	return w, nil
}

// Start runs the event loop until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	w.logger.Info().
		Str("event", "watch.started").
		Str(xglog.FieldPath, w.skinsDir).
		Msg("watching skins directory")

	go w.loop(ctx)
}

// Done is closed once the event loop has exited and the underlying
// watcher is released.
func (w *Watcher) Done() <-chan struct{} { return w.done }

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	defer func() { _ = w.watcher.Close() }()

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Str("event", "watch.stopped").Msg("skins watcher stopped")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			// A new top-level directory is a new skin: watch it too.
			if event.Has(fsnotify.Create) && filepath.Dir(event.Name) == filepath.Clean(w.skinsDir) {
				if st, err := os.Stat(event.Name); err == nil && st.IsDir() {
					if err := w.watcher.Add(event.Name); err != nil {
						w.logger.Warn().Err(err).
							Str(xglog.FieldPath, event.Name).
							Msg("cannot watch new skin directory")
					}
				}
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(w.debounce, func() {
				w.logger.Info().
					Str("event", "watch.rescan").
					Str(xglog.FieldPath, event.Name).
					Msg("skins directory changed")
				w.onChange(ctx)
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).
				Str("event", "watch.error").
				Msg("skins watcher error")
		}
	}
}
