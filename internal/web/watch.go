package web

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	appLog "calgen/internal/log"
)

// reloadDebounce collapses the burst of events editors produce on save.
const reloadDebounce = 200 * time.Millisecond

// Watch reloads the definitions whenever the file changes, until ctx is
// canceled. The parent directory is watched so that editors replacing the
// file by rename are noticed too. Stdin input is not watched.
func (s *Server) Watch(ctx context.Context) error {
	if s.cfg.Input == "-" {
		<-ctx.Done()
		return nil
	}

	path, err := filepath.Abs(s.cfg.Input)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	appLog.Info("watching definitions", "path", path)

	var (
		timer  *time.Timer
		fire   <-chan time.Time
		reload = func() {
			if err := s.Reload(); err != nil {
				appLog.Error("reload failed; keeping previous definitions", err, "path", path)
			}
		}
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			appLog.Debug("definitions changed", "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			reload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			appLog.Error("fsnotify error", err)
		}
	}
}
