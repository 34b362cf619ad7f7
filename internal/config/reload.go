package config

import (
	"errors"
	"time"

	"github.com/dshills/keydrive/internal/config/watcher"
)

// ReloadFunc receives the reloaded settings, or the error that prevented loading them.
type ReloadFunc func(cfg *Config, err error)

// Watch reloads opts.Path whenever it changes on disk.
// The caller closes the returned watcher.
func Watch(opts Options, debounce time.Duration, fn ReloadFunc) (*watcher.Watcher, error) {
	if opts.Path == "" {
		return nil, errors.New("config watch: no file to watch")
	}

	w, err := watcher.New(
		watcher.WithDebounce(debounce),
		watcher.WithErrorHandler(func(err error) { fn(nil, err) }),
	)
	if err != nil {
		return nil, err
	}

	if err := w.Watch(opts.Path); err != nil {
		_ = w.Close()
		return nil, err
	}

	w.OnChange(func(ev watcher.Event) {
		// A removed file keeps the current settings
		if ev.Op == watcher.OpRemove || ev.Op == watcher.OpRename {
			return
		}
		fn(Load(opts))
	})

	return w, nil
}
