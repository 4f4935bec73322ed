// Package watcher surfaces external writes to the card database as
// refresh signals.
package watcher

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/zjrosen/ferry/internal/log"
)

// Watcher watches the directory holding the card database and coalesces
// bursts of writes into single refresh signals, so another ferry process
// or a script editing the db shows up on the board without a manual
// reload.
type Watcher struct {
	fsw      *fsnotify.Watcher
	dbPath   string
	debounce time.Duration
	signals  chan struct{}
	done     chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	DBPath      string
	DebounceDur time.Duration
}

// DefaultConfig returns the watcher defaults for a database path.
func DefaultConfig(dbPath string) Config {
	return Config{DBPath: dbPath, DebounceDur: time.Second}
}

// New creates a watcher for the configured database.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	return &Watcher{
		fsw:      fsw,
		dbPath:   cfg.DBPath,
		debounce: cfg.DebounceDur,
		signals:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}, nil
}

// Start watches the database directory and returns the signal channel.
func (w *Watcher) Start() (<-chan struct{}, error) {
	dir := filepath.Dir(w.dbPath)
	if err := w.fsw.Add(dir); err != nil {
		return nil, fmt.Errorf("watching directory %s: %w", dir, err)
	}
	log.Debug(log.CatWatcher, "watching database directory", "dir", dir)
	go w.loop()
	return w.signals, nil
}

// Stop terminates the watcher and releases its resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	// The timer starts stopped; the first relevant event arms it and
	// later events push it back, so a burst of writes yields one signal.
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.matches(event) {
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)

		case <-timer.C:
			select {
			case w.signals <- struct{}{}:
			default:
				// A signal is already waiting; the reload it triggers
				// will pick up this change too.
			}

		case _, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Watching continues through errors; the board just misses
			// auto refresh until the next successful write event.

		case <-w.done:
			return
		}
	}
}

// matches reports whether the event is a write or create touching the
// database file or its WAL.
func (w *Watcher) matches(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	dbBase := filepath.Base(w.dbPath)
	return base == dbBase || base == dbBase+"-wal"
}
