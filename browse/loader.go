package browse

import (
	"log/slog"

	"github.com/lewtec/visor/internal/workerpool"
)

// LoadRequest asks a worker to decode one collection entry.
type LoadRequest struct {
	Path  string
	Index int
}

// LoadResult carries the decoded image or the decode error back to the
// interaction goroutine, tagged with the collection index it belongs to.
// A single channel of these replaces any separate notification path, so a
// notification can never arrive before its payload.
type LoadResult struct {
	Index int
	Image *ImageData
	Err   error
}

// loaderPool is the decode pool shared by sessions of one Browser.
type loaderPool = workerpool.Pool[LoadRequest, LoadResult]

// loadWorker decodes images off the interaction goroutine.
type loadWorker struct {
	id      int
	decoder Decoder
	log     *slog.Logger
}

func (w *loadWorker) Execute(req LoadRequest, out chan<- LoadResult) {
	img, err := w.decoder.Decode(req.Path)
	if err != nil {
		w.log.Debug("image load failed", "worker", w.id, "path", req.Path, "index", req.Index, "error", err)
		out <- LoadResult{Index: req.Index, Err: err}
		return
	}
	w.log.Debug("image loaded", "worker", w.id, "path", req.Path, "index", req.Index)
	out <- LoadResult{Index: req.Index, Image: img}
}

func newLoaderPool(workers int, decoder Decoder, log *slog.Logger) *loaderPool {
	return workerpool.New(workers, func(id int) workerpool.Worker[LoadRequest, LoadResult] {
		return &loadWorker{id: id, decoder: decoder, log: log}
	}, log)
}
