// pkg/config/watcher.go
package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher watches the user config file for changes and reloads the Manager
// when modifications are detected, so edits made outside the shell take
// effect without a restart.
type Watcher struct {
	// manager is the configuration Manager to reload on changes
	manager *Manager

	// watcher is the fsnotify file watcher
	watcher *fsnotify.Watcher

	// debounceDelay is the time to wait before reloading after a change
	// (prevents multiple reloads for rapid successive writes)
	debounceDelay time.Duration

	// onReload is invoked after each successful reload (may be nil)
	onReload func()

	// logger for structured logging
	logger zerolog.Logger

	// mu protects the debounce timer
	mu sync.Mutex

	// debounceTimer is the active debounce timer (if any)
	debounceTimer *time.Timer
}

// NewWatcher creates a config file watcher for the manager's file path.
//
// Changes are debounced to avoid multiple reloads during rapid successive
// writes. Default debounce delay is 100ms. The onReload callback runs after
// each successful reload and may be nil.
func NewWatcher(manager *Manager, logger zerolog.Logger, onReload func()) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		manager:       manager,
		watcher:       watcher,
		debounceDelay: 100 * time.Millisecond,
		onReload:      onReload,
		logger:        logger.With().Str("component", "config.watcher").Logger(),
	}, nil
}

// Start begins watching the config file for changes.
//
// This method blocks until the context is canceled. It should be run in a
// separate goroutine:
//
//	go watcher.Start(ctx)
//
// Multiple rapid changes are coalesced into a single reload.
func (w *Watcher) Start(ctx context.Context) error {
	// fsnotify requires watching directories, not files directly
	configPath := w.manager.FilePath()
	configDir := filepath.Dir(configPath)
	configFile := filepath.Base(configPath)

	if err := w.watcher.Add(configDir); err != nil {
		w.logger.Error().
			Err(err).
			Str("dir", configDir).
			Msg("Failed to watch config directory")
		return err
	}

	w.logger.Debug().
		Str("file", configPath).
		Dur("debounce", w.debounceDelay).
		Msg("Started watching config file")

	defer func() {
		if err := w.watcher.Close(); err != nil {
			w.logger.Warn().Err(err).Msg("Error closing watcher")
		}
		w.logger.Debug().Msg("Stopped watching config file")
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				// Watcher closed
				return nil
			}

			// Only react to changes to the config file itself
			// (ignore other files in the same directory, the save lock
			// file and atomic-write temp files included)
			if filepath.Base(event.Name) != configFile {
				continue
			}

			// Only react to write/create events
			// (remove is handled by create on next write)
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				w.logger.Debug().
					Str("op", event.Op.String()).
					Str("file", event.Name).
					Msg("Detected config file change")

				w.scheduleReload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				// Watcher closed
				return nil
			}

			w.logger.Warn().
				Err(err).
				Msg("File watcher error")
		}
	}
}

// scheduleReload schedules a config reload after the debounce delay.
// If a reload is already scheduled, the timer is reset.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		if err := w.manager.Reload(); err != nil {
			w.logger.Error().
				Err(err).
				Msg("Failed to reload configuration")
			return
		}
		w.logger.Info().Msg("Configuration reloaded")
		if w.onReload != nil {
			w.onReload()
		}
	})
}

// Close stops the watcher and releases resources.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
