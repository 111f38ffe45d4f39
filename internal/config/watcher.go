package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchRegistry reloads the flow file into holder whenever it changes on disk.
// A file that fails validation leaves the previous registry in place and is
// reported through onError. The watch stops when ctx is done.
func WatchRegistry(ctx context.Context, path string, holder *Holder, onReload func(*Registry), onError func(error)) error {
	if path == "" {
		return fmt.Errorf("no flow config path to watch")
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating config watcher: %w", err)
	}
	// editors often replace the file, so watch the directory
	if err := w.Add(filepath.Dir(target)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(target), err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				reg, err := LoadRegistry(target)
				if err != nil {
					if onError != nil {
						onError(err)
					}
					continue
				}
				holder.Store(reg)
				if onReload != nil {
					onReload(reg)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				if onError != nil {
					onError(err)
				}
			}
		}
	}()
	return nil
}
