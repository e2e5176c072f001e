package file

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/mailmirror/internal/logger"
)

// Watch reloads the store whenever its file changes on disk, until the
// context is cancelled. Edits made through Set are re-read harmlessly; the
// point is picking up edits made with an external editor while the server
// runs.
func (s *ConfigStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// Watch the directory, not the file: editors that write via rename
	// replace the inode and a file-level watch would go stale.
	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != s.filePath {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := s.Load(); err != nil {
					logger.Warn("Reloading config %s: %v", s.filePath, err)
					continue
				}
				logger.Debug("Reloaded config from %s", s.filePath)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Config watcher: %v", err)
			}
		}
	}()

	return nil
}
