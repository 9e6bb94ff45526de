package views

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the templates whenever an .html file in the renderer's
// directory changes. It blocks until ctx is done.
func (r *Renderer) Watch(ctx context.Context) error {
	if r.dir == "" {
		return errors.New("embedded views cannot be watched")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		_ = watcher.Close()
	}()

	if err := watcher.Add(r.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", r.dir, err)
	}
	r.logger.InfoContext(ctx, "Watching views for changes", "dir", r.dir)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(event.Name, ".html") {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue // chmod
			}
			if err := r.Reload(); err != nil {
				r.logger.WarnContext(ctx, "View reload failed, keeping previous views",
					"file", event.Name,
					"error", err)
				continue
			}
			r.logger.InfoContext(ctx, "Views reloaded", "file", event.Name, "op", event.Op.String())

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.WarnContext(ctx, "View watcher error", "error", err)
		}
	}
}
