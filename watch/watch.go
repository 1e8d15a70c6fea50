package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Run watches paths and calls fn once changes have been quiet for debounce.
// Directories are watched recursively, files through their parent directory so
// editors that replace the file on save are still seen. Run blocks until ctx is
// done. Errors from fn are logged and the loop keeps going.
func Run(ctx context.Context, paths []string, debounce time.Duration, fn func(context.Context) error, logger *zap.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "creating watcher")
	}
	defer watcher.Close()

	w := &set{
		watcher: watcher,
		files:   map[string]bool{},
		logger:  logger,
	}
	for _, path := range paths {
		if err := w.add(path); err != nil {
			return err
		}
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addDir(event.Name); err != nil {
						logger.Warn("Could not watch new directory", zap.String("path", event.Name), zap.Error(err))
					}
				}
			}

			logger.Debug("Change detected", zap.String("path", event.Name), zap.String("op", event.Op.String()))
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			if err := fn(ctx); err != nil && ctx.Err() == nil {
				logger.Error("Rebuild failed", zap.Error(err))
			}
		}
	}
}

type set struct {
	watcher *fsnotify.Watcher
	dirs    []string
	files   map[string]bool
	logger  *zap.Logger
}

func (s *set) add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.WithStack(err)
	}

	info, err := os.Stat(abs)
	if os.IsNotExist(err) {
		s.logger.Debug("Skipping missing watch path", zap.String("path", path))
		return nil
	}
	if err != nil {
		return errors.WithStack(err)
	}

	if info.IsDir() {
		s.dirs = append(s.dirs, abs)
		return s.addDir(abs)
	}

	s.files[abs] = true
	return errors.Wrapf(s.watcher.Add(filepath.Dir(abs)), "watching %s", path)
}

func (s *set) addDir(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		return errors.Wrapf(s.watcher.Add(path), "watching %s", path)
	})
}

// relevant drops chmod-only events and siblings of watched files.
func (s *set) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	if s.files[event.Name] {
		return true
	}
	for _, dir := range s.dirs {
		if event.Name == dir || strings.HasPrefix(event.Name, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
