// Package browse implements a prefetching image browser core: a session
// over a directory of photos that keeps a window of decoded images ready
// around the one currently shown, backed by a bounded pool of decode
// workers, plus a persistent 3-level per-image rating.
//
// The package deliberately excludes windowing, layout and rendering. The
// Decoder and Uploader collaborators are the seams those live behind.
package browse

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/go-git/go-billy/v6"
	"github.com/go-git/go-billy/v6/osfs"
)

// Browser bundles the collaborators shared by sessions: the decode pool,
// the loading policy tuning and the display uploader.
type Browser struct {
	Config   Config
	Uploader Uploader
	Log      *slog.Logger

	// FS overrides the filesystem sessions scan and store ratings on.
	// When nil, a filesystem rooted at the opened directory is used.
	// Tests inject an in-memory filesystem here.
	FS billy.Filesystem

	pool *loaderPool
}

// New validates the config, spawns the decode pool and returns a ready
// Browser. Nil collaborators get production defaults: a JPEG decoder, an
// in-memory uploader and the default logger.
func New(cfg Config, decoder Decoder, uploader Uploader, log *slog.Logger) (*Browser, error) {
	if err := cfg.normalize(); err != nil {
		return nil, fmt.Errorf("while validating the browse config: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	if decoder == nil {
		decoder = JPEGDecoder{Log: log}
	}
	if uploader == nil {
		uploader = MemoryUploader{}
	}

	return &Browser{
		Config:   cfg,
		Uploader: uploader,
		Log:      log,
		pool:     newLoaderPool(cfg.Workers, decoder, log),
	}, nil
}

// OpenDirectory scans dir, loads its ratings sidecar and returns a
// session with the initial resident window already submitted for loading.
func (b *Browser) OpenDirectory(dir string) (*Session, error) {
	fsys := b.FS
	if fsys == nil {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("while checking the image directory: %w", err)
		}
		if !info.IsDir() {
			return nil, ErrNotADirectory
		}
		fsys = osfs.New(dir)
	}

	s, err := b.newSession(dir, fsys)
	if err != nil {
		return nil, err
	}

	// The watcher is advisory; a directory that cannot be watched still
	// browses fine.
	if b.FS == nil {
		w, err := newDirWatcher(dir, b.Log)
		if err != nil {
			b.Log.Warn("directory watcher unavailable", "dir", dir, "error", err)
		} else {
			s.watcher = w
		}
	}

	return s, nil
}

// Close tears down the decode pool, blocking until every worker has
// finished its current task and exited. Sessions must not receive after
// Close.
func (b *Browser) Close() {
	b.pool.Close()
}
