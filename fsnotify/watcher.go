// Package fsnotify watches the notes directory for changes using the fsnotify library.
package fsnotify

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	fsnotifylib "github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the tree must stay quiet before a change is signalled.
const DefaultDebounce = 200 * time.Millisecond

// Watcher signals when files under a directory change. Bursts of events are
// coalesced into a single signal once the tree has been quiet for the
// debounce interval.
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger
}

// NewWatcher creates a Watcher for dir.
func NewWatcher(dir string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Watcher{dir: dir, debounce: debounce, logger: logger}
}

// Watch starts watching and returns a channel that receives a value after
// each settled burst of changes. The channel is closed when ctx is done.
// Inside .git only the top-level directory is watched, which is enough to
// see commits and staging without following object writes.
func (w *Watcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	fsw, err := fsnotifylib.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.addRecursive(fsw, w.dir); err != nil {
		fsw.Close()
		return nil, err
	}

	out := make(chan struct{}, 1)
	go w.loop(ctx, fsw, out)
	return out, nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotifylib.Watcher, out chan<- struct{}) {
	defer close(out)
	defer fsw.Close()

	var (
		timer  *time.Timer
		settle <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-settle:
			settle = nil
			select {
			case out <- struct{}{}:
			default:
			}

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if w.ignored(event.Name) {
				continue
			}
			if event.Has(fsnotifylib.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(fsw, event.Name); err != nil {
						w.logger.Warn("watch new directory", "path", event.Name, "error", err)
					}
				}
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			settle = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// ignored reports whether an event path is noise: anything below .git other
// than the files that change on commit or stage.
func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.dir, path)
	if err != nil {
		return false
	}
	dir, base := filepath.Split(rel)
	if filepath.Clean(dir) != ".git" {
		return false
	}
	switch base {
	case "index", "HEAD":
		return false
	}
	return true
}

func (w *Watcher) addRecursive(fsw *fsnotifylib.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := fsw.Add(path); err != nil {
			return err
		}
		if d.Name() == ".git" {
			return filepath.SkipDir
		}
		return nil
	})
}
