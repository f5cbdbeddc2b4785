package transport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WaitForDevice blocks until the device node at path exists. Ports that are
// not filesystem paths, such as COM3, return immediately.
func WaitForDevice(ctx context.Context, path string) error {
	if !filepath.IsAbs(path) {
		return nil
	}
	if exists(path) {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	// The node may have appeared before the watch was in place.
	if exists(path) {
		return nil
	}

	target := filepath.Clean(path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return errors.New("device watcher closed")
			}
			if filepath.Clean(ev.Name) == target && ev.Has(fsnotify.Create) {
				return nil
			}
		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("device watcher closed")
			}
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
