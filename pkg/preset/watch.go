package preset

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits after the last change before reloading.
const DefaultDebounce = 100 * time.Millisecond

// WatchOptions configures [Watch].
type WatchOptions struct {
	Logger   *log.Logger
	Debounce time.Duration
}

// Watch reloads the catalog at path whenever the file changes and calls fn
// with each catalog that loads successfully. It watches the parent directory
// so editors that save by rename are handled. Watch blocks until ctx is
// cancelled and returns nil in that case.
func Watch(ctx context.Context, path string, fn func(*Catalog), opts WatchOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	delay := opts.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	debounce := time.NewTimer(delay)
	if !debounce.Stop() {
		<-debounce.C
	}
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			pending = true
			debounce.Reset(delay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("catalog watcher error", "error", err)

		case <-debounce.C:
			if !pending {
				continue
			}
			pending = false
			c, err := Load(abs)
			if err != nil {
				logger.Warn("catalog reload failed, keeping previous", "path", abs, "error", err)
				continue
			}
			logger.Info("catalog reloaded", "path", abs, "presets", c.Len())
			fn(c)
		}
	}
}
