package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/nvimlink/internal/event"
	"github.com/dshills/nvimlink/internal/logging"
)

// TopicReloaded is published on the event bus when the watched configuration
// file changes and reloads successfully. The payload is the new Config.
const TopicReloaded = "config.reloaded"

// debounceDelay coalesces editor write bursts into one reload.
const debounceDelay = 100 * time.Millisecond

// Watcher watches a configuration file and republishes reloads on the bus.
type Watcher struct {
	path string
	bus  event.Bus
	log  *logging.Logger

	fsw *fsnotify.Watcher

	closeOnce sync.Once
	closeCh   chan struct{}
	doneCh    chan struct{}
}

// Watch starts watching the given configuration file. The containing
// directory is watched so editors that replace the file on save are seen.
func Watch(path string, bus event.Bus, log *logging.Logger) (*Watcher, error) {
	if log == nil {
		log = logging.NullLogger
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    path,
		bus:     bus,
		log:     log.WithComponent("config"),
		fsw:     fsw,
		closeCh: make(chan struct{}),
		doneCh:  make(chan struct{}),
	}

	go w.loop()
	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.closeCh)
		err = w.fsw.Close()
		<-w.doneCh
	})
	return err
}

// loop consumes fsnotify events, debounces writes to the watched file, and
// publishes reloads.
func (w *Watcher) loop() {
	defer close(w.doneCh)

	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounceDelay)
				timerCh = timer.C
			} else {
				// A fired-but-unconsumed timer must be drained before
				// Reset, or the stale tick fires a second reload.
				if !timer.Stop() {
					select {
					case <-timerCh:
					default:
					}
				}
				timer.Reset(debounceDelay)
			}

		case <-timerCh:
			timer = nil
			timerCh = nil
			w.reload()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error: %v", err)
		}
	}
}

// reload re-reads the configuration file and publishes it.
func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Error("reload %s: %v", w.path, err)
		return
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		w.log.Error("reload %s: %v", w.path, err)
		return
	}

	w.log.Info("configuration reloaded from %s", w.path)
	w.bus.Publish(TopicReloaded, cfg)
}
