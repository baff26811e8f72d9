package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"dailies-server/internal/logging"
)

// refreshDebounce coalesces bursts of filesystem events (a copy-in produces
// many writes) into a single refresh.
const refreshDebounce = 2 * time.Second

// Watch monitors the dailies directory and refreshes the catalog when
// eligible files appear or disappear. It blocks until ctx is canceled, so
// callers run it in its own goroutine.
func (c *Catalog) Watch(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logging.Error("failed to create file watcher: %v", err)
		return
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logging.Error("failed to close file watcher: %v", err)
		}
	}()

	if err := watcher.Add(c.dailiesDir); err != nil {
		logging.Warn("failed to watch %s: %v", c.dailiesDir, err)
		return
	}
	logging.Debug("watching %s for media changes", c.dailiesDir)

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !relevantEvent(event) {
				continue
			}
			logging.Debug("media change detected: %s %s", event.Op, event.Name)
			if timer == nil {
				timer = time.NewTimer(refreshDebounce)
			} else {
				timer.Reset(refreshDebounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			if err := c.Refresh(ctx); err != nil {
				logging.Error("watch-triggered refresh failed: %v", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logging.Error("watcher error: %v", err)
		}
	}
}

// relevantEvent reports whether a filesystem event concerns an eligible
// media file appearing, finishing a write, or going away.
func relevantEvent(event fsnotify.Event) bool {
	if strings.Contains(event.Name, "/.") {
		return false
	}
	if !Eligible(event.Name) {
		return false
	}
	const ops = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename
	return event.Op&ops != 0
}
