package browse

import (
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/lewtec/visor/internal/scan"
)

// dirWatcher flags when the image files of a browsed directory change on
// disk. The collection is immutable for the session's lifetime, so all it
// does is mark the session stale; the host decides when to rescan.
type dirWatcher struct {
	w        *fsnotify.Watcher
	staleBit atomic.Bool
	done     chan struct{}
	log      *slog.Logger
}

func newDirWatcher(dir string, log *slog.Logger) (*dirWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}

	dw := &dirWatcher{
		w:    w,
		done: make(chan struct{}),
		log:  log,
	}
	go dw.loop(dir)
	return dw, nil
}

func (dw *dirWatcher) loop(dir string) {
	for {
		select {
		case ev, ok := <-dw.w.Events:
			if !ok {
				return
			}
			// Ratings saves write into the same directory; only changes
			// to files that would be part of the collection count.
			if !scan.Relevant(filepath.Base(ev.Name)) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if dw.staleBit.CompareAndSwap(false, true) {
				dw.log.Info("image directory changed on disk, session is stale", "dir", dir, "file", filepath.Base(ev.Name))
			}
		case err, ok := <-dw.w.Errors:
			if !ok {
				return
			}
			dw.log.Warn("directory watcher error", "dir", dir, "error", err)
		case <-dw.done:
			return
		}
	}
}

func (dw *dirWatcher) stale() bool {
	return dw.staleBit.Load()
}

func (dw *dirWatcher) close() {
	close(dw.done)
	dw.w.Close()
}
