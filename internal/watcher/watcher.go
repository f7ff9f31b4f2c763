// Package watcher watches dataset files and publishes a debounced reload
// event per changed file.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/tracks/internal/log"
	"github.com/zjrosen/tracks/internal/pubsub"
)

// ReloadEvent names a dataset file whose contents changed.
type ReloadEvent struct {
	Path string
}

// Watcher monitors dataset files and publishes ReloadEvents.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	paths     map[string]string // cleaned absolute path -> path as configured
	debounce  time.Duration
	broker    *pubsub.Broker[ReloadEvent]
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	Paths       []string
	DebounceDur time.Duration
}

// DefaultConfig returns the defaults for watching paths.
func DefaultConfig(paths ...string) Config {
	return Config{
		Paths:       paths,
		DebounceDur: 250 * time.Millisecond,
	}
}

// New creates a watcher for cfg.Paths.
func New(cfg Config) (*Watcher, error) {
	paths := make(map[string]string, len(cfg.Paths))
	for _, p := range cfg.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		paths[abs] = p
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		paths:     paths,
		debounce:  cfg.DebounceDur,
		broker:    pubsub.NewBroker[ReloadEvent](),
		done:      make(chan struct{}),
	}, nil
}

// Subscribe returns a channel of reload events, closed when ctx is done or
// the watcher stops.
func (w *Watcher) Subscribe(ctx context.Context) <-chan pubsub.Event[ReloadEvent] {
	return w.broker.Subscribe(ctx)
}

// Broker exposes the event broker for bubbletea listeners.
func (w *Watcher) Broker() *pubsub.Broker[ReloadEvent] { return w.broker }

// Start watches the directories holding the files. Editors often replace a
// file instead of writing it, so the directory is watched rather than the
// file itself.
func (w *Watcher) Start() error {
	dirs := make([]string, 0, len(w.paths))
	for abs := range w.paths {
		dir := filepath.Dir(abs)
		if !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	for _, dir := range dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return fmt.Errorf("watching directory %s: %w", dir, err)
		}
	}

	go w.loop()
	return nil
}

// Stop terminates the watcher, releases resources and closes subscriber
// channels.
func (w *Watcher) Stop() error {
	close(w.done)
	err := w.fsWatcher.Close()
	w.broker.Close()
	return err
}

// loop processes file system events with debouncing. Each file debounces
// on a shared timer; when it fires every pending file is published once.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending []string
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			path, relevant := w.relevant(event)
			if !relevant {
				continue
			}
			if !slices.Contains(pending, path) {
				pending = append(pending, path)
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			for _, p := range pending {
				log.Debug(log.CatWatcher, "dataset changed", "path", p)
				w.broker.Publish(pubsub.ReloadedEvent, ReloadEvent{Path: p})
			}
			pending = pending[:0]

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "watch error", err)

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// relevant maps an event to the configured path it concerns.
func (w *Watcher) relevant(event fsnotify.Event) (string, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return "", false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return "", false
	}
	p, ok := w.paths[abs]
	return p, ok
}
