package watcher

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher observes the input directory and signals when a table file lands
// or changes, so the poll loop can run an early cycle instead of waiting
// for the next tick. POS exports arrive as several writes in quick
// succession, so signals are debounced.
type Watcher struct {
	fs       *fsnotify.Watcher
	logger   *zap.Logger
	debounce time.Duration
	events   chan struct{}
}

// New starts watching dir. Callers receive coalesced triggers on Events
// and must call Close when done.
func New(dir string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create directory watcher: %w", err)
	}
	if err := fs.Add(dir); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		fs:       fs,
		logger:   logger,
		debounce: debounce,
		events:   make(chan struct{}, 1),
	}
	go w.run()
	return w, nil
}

// Events delivers one signal per debounced burst of table-file activity.
// The channel has capacity one; signals arriving while the consumer is
// busy collapse into the pending one.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) run() {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			w.logger.Debug("table file activity",
				zap.String("file", filepath.Base(ev.Name)),
				zap.String("op", ev.Op.String()))
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timerC:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			select {
			case w.events <- struct{}{}:
			default:
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("directory watch error", zap.Error(err))
		}
	}
}

// relevant reports whether an event concerns a table file appearing or
// changing. Removes and chmods never warrant an early cycle; deletions are
// picked up by the regular poll.
func relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return false
	}
	return strings.EqualFold(filepath.Ext(ev.Name), ".dbf")
}
