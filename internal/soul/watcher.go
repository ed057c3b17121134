package soul

import (
	"context"
	"log/slog"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the loader whenever the soul file is rewritten on disk.
// It runs until ctx is canceled. Errors reloading leave the previous cached
// text in place.
func Watch(ctx context.Context, l *Loader, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(l.Path()); err != nil {
		fsw.Close()
		return err
	}

	go func() {
		defer fsw.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				if _, err := l.Reload(); err != nil {
					logger.Warn("soul reload failed; keeping cached text", "error", err)
					continue
				}
				logger.Info("soul reloaded", "path", l.Path())
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				logger.Error("soul watcher error", "error", err)
			}
		}
	}()
	return nil
}
