package dataset

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads reg each time the dataset file at path is written or
// replaced. It runs until ctx is cancelled. A failed reload is logged and the
// previous catalog remains active.
//
// The parent directory is watched rather than the file: an atomic save
// renames a new inode over path, which a watch on the old inode never sees.
func Watch(ctx context.Context, path string, reg *Registry, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	path = filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	logger.Info("dataset: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			// A rename onto path arrives as Create.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if err := reg.Reload(ctx); err == nil {
				logger.Info("dataset: reloaded after change", "path", path)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("dataset: watcher error", "error", err)
		}
	}
}
