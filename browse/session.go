package browse

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-git/go-billy/v6"

	"github.com/lewtec/visor/internal/ratings"
	"github.com/lewtec/visor/internal/scan"
)

// ErrNoImages is returned when a directory contains no eligible image
// files.
var ErrNoImages = errors.New("directory does not contain any images to display")

// ErrNotADirectory is returned when the session path is not a directory.
var ErrNotADirectory = errors.New("given path is not a directory")

// ErrNoMatches is returned by SetRatingFilter when no image carries the
// requested rating; the previous filter state is kept.
var ErrNoMatches = errors.New("no image matches the requested rating")

// EventKind classifies what ReceiveOne did with one load result.
type EventKind int

const (
	// EventLoaded means the image was uploaded and inserted in the cache.
	EventLoaded EventKind = iota
	// EventFailed means the load or upload failed; the index stays
	// uncached and is not retried.
	EventFailed
	// EventDiscarded means a stale or duplicate result arrived for an
	// index that is no longer pending. A benign race, not an error.
	EventDiscarded
	// EventClosed means the result channel is closed; no further events
	// will arrive.
	EventClosed
)

// Event reports the outcome of draining one load result.
type Event struct {
	Kind  EventKind
	Index int
	Err   error
}

// Session owns one browsed directory: the sorted collection, the cache of
// loaded images, the set of in-flight loads, and the per-image ratings.
//
// All state is owned by the interaction goroutine. The only concurrency
// crossing the session boundary is the pool's task and result channels;
// none of the maps below may be touched from a worker.
type Session struct {
	browser *Browser
	dir     string

	entries   []scan.Entry
	nameToIdx map[string]int

	// activeIdxs is the view the user traverses: positions into it are
	// what pivot and current mean, values are collection indices. Without
	// a rating filter it is simply 0..len(entries)-1.
	activeIdxs []int
	pivot      int
	current    int

	images  map[int]*LoadedImage // keyed by collection index
	pending map[int]struct{}     // keyed by collection index, disjoint from images

	store  *ratings.Store
	filter *ratings.Rating

	watcher *dirWatcher
	log     *slog.Logger
}

func (b *Browser) newSession(dir string, fsys billy.Filesystem) (*Session, error) {
	entries, err := scan.List(fsys, dir)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoImages
	}

	nameToIdx := make(map[string]int, len(entries))
	known := make(map[string]bool, len(entries))
	for idx, entry := range entries {
		nameToIdx[entry.Name] = idx
		known[entry.Name] = true
	}

	store, err := ratings.Load(fsys, known, b.Log)
	if err != nil {
		return nil, fmt.Errorf("while loading the ratings file: %w", err)
	}

	active := make([]int, len(entries))
	for i := range active {
		active[i] = i
	}

	s := &Session{
		browser:    b,
		dir:        dir,
		entries:    entries,
		nameToIdx:  nameToIdx,
		activeIdxs: active,
		images:     make(map[int]*LoadedImage, b.Config.policy().MaxResidentCount()),
		pending:    make(map[int]struct{}),
		store:      store,
		log:        b.Log,
	}
	s.updateLoaded()
	return s, nil
}

// Close stops the session's directory watcher. The decode pool belongs to
// the Browser and keeps running.
func (s *Session) Close() {
	if s.watcher != nil {
		s.watcher.close()
	}
}

// Count is the number of images in the current (possibly filtered) view.
func (s *Session) Count() int {
	return len(s.activeIdxs)
}

// CollectionCount is the number of images in the directory regardless of
// any rating filter.
func (s *Session) CollectionCount() int {
	return len(s.entries)
}

// Position is the zero-based position of the shown image within the
// current view.
func (s *Session) Position() int {
	return s.current
}

// CurrentIndex is the collection index of the shown image.
func (s *Session) CurrentIndex() int {
	return s.activeIdxs[s.current]
}

// CurrentName is the file name of the shown image.
func (s *Session) CurrentName() string {
	return s.entries[s.CurrentIndex()].Name
}

// CurrentPath is the file path of the shown image.
func (s *Session) CurrentPath() string {
	return s.entries[s.CurrentIndex()].Path
}

// CurrentImage returns the shown image if its load has completed.
// Navigation never blocks on this; it simply reports false until a result
// arrives.
func (s *Session) CurrentImage() (*LoadedImage, bool) {
	img, ok := s.images[s.CurrentIndex()]
	return img, ok
}

// Pending is the number of outstanding load requests.
func (s *Session) Pending() int {
	return len(s.pending)
}

// Stale reports whether the on-disk directory has diverged from the
// collection scanned at session start. The collection itself never
// changes within a session; a stale session should be reopened.
func (s *Session) Stale() bool {
	return s.watcher != nil && s.watcher.stale()
}

// OffsetCurrent moves the shown image by delta with clamping arithmetic:
// stepping past either end holds at the boundary.
func (s *Session) OffsetCurrent(delta int) {
	s.SetShown(s.current + delta)
}

// SetShown clamps idx into the current view, updates the shown image and
// reconciles the cache against the new resident set.
func (s *Session) SetShown(idx int) {
	if idx < 0 {
		idx = 0
	}
	if idx > len(s.activeIdxs)-1 {
		idx = len(s.activeIdxs) - 1
	}
	s.current = idx
	s.updateLoaded()
}

// updateLoaded asks the policy for the resident set, evicts every cached
// image outside it and submits a load for every resident position that is
// neither cached nor pending, in priority order.
func (s *Session) updateLoaded() {
	newPivot, set := s.browser.Config.policy().GetLoadSet(s.pivot, s.current, len(s.activeIdxs))
	s.pivot = newPivot

	resident := make(map[int]struct{}, len(set))
	for _, pos := range set {
		resident[s.activeIdxs[pos]] = struct{}{}
	}

	for collIdx, img := range s.images {
		if _, keep := resident[collIdx]; !keep {
			s.browser.Uploader.Discard(img.Handle)
			delete(s.images, collIdx)
		}
	}

	for _, pos := range set {
		collIdx := s.activeIdxs[pos]
		if s.needsLoad(collIdx) {
			s.submitLoad(collIdx)
		}
	}
}

func (s *Session) needsLoad(collIdx int) bool {
	_, cached := s.images[collIdx]
	_, inFlight := s.pending[collIdx]
	return !cached && !inFlight
}

func (s *Session) submitLoad(collIdx int) {
	s.pending[collIdx] = struct{}{}
	s.browser.pool.Submit(LoadRequest{
		Path:  s.entries[collIdx].Path,
		Index: collIdx,
	})
}

// ReceiveOne blocks until the next load result arrives and folds it into
// the cache. The session must be the only consumer of the pool's output.
func (s *Session) ReceiveOne() Event {
	res, ok := <-s.browser.pool.Output()
	if !ok {
		return Event{Kind: EventClosed}
	}
	return s.handleResult(res)
}

// TryReceiveOne is the non-blocking variant for hosts that poll from an
// event loop. The second return is false when no result is waiting.
func (s *Session) TryReceiveOne() (Event, bool) {
	select {
	case res, ok := <-s.browser.pool.Output():
		if !ok {
			return Event{Kind: EventClosed}, true
		}
		return s.handleResult(res), true
	default:
		return Event{}, false
	}
}

// handleResult reconciles one load result with the cache. Results for
// indices that are no longer pending are discarded: the index was either
// evicted while its load was in flight or already cached by an earlier
// result. Both are expected races under fast navigation.
func (s *Session) handleResult(res LoadResult) Event {
	if _, inFlight := s.pending[res.Index]; !inFlight {
		if res.Image != nil {
			s.log.Debug("discarding stale load result", "index", res.Index)
		}
		return Event{Kind: EventDiscarded, Index: res.Index, Err: res.Err}
	}

	delete(s.pending, res.Index)

	if res.Err != nil {
		s.log.Warn("image load failed", "index", res.Index, "path", s.entries[res.Index].Path, "error", res.Err)
		return Event{Kind: EventFailed, Index: res.Index, Err: res.Err}
	}

	handle, err := s.browser.Uploader.Upload(res.Image)
	if err != nil {
		s.log.Warn("image upload failed", "index", res.Index, "error", err)
		return Event{Kind: EventFailed, Index: res.Index, Err: err}
	}

	s.images[res.Index] = &LoadedImage{
		Width:    res.Image.Width,
		Height:   res.Image.Height,
		Rotation: res.Image.Rotation,
		Handle:   handle,
	}
	return Event{Kind: EventLoaded, Index: res.Index}
}

// CurrentRating returns the rating of the shown image.
func (s *Session) CurrentRating() ratings.Rating {
	return s.store.Get(s.CurrentName())
}

// SetCurrentRating rates the shown image and persists the change
// synchronously. A failed save keeps the in-memory rating; the caller
// decides whether to surface the error beyond logging.
func (s *Session) SetCurrentRating(r ratings.Rating) error {
	return s.store.Set(s.CurrentName(), r)
}

// RatingFilter returns the active rating filter, nil when the full
// collection is shown.
func (s *Session) RatingFilter() *ratings.Rating {
	return s.filter
}

// SetRatingFilter restricts the view to images with the given rating, or
// restores the full view when r is nil. The shown image maps to the
// nearest surviving position and the pivot resets there.
func (s *Session) SetRatingFilter(r *ratings.Rating) error {
	var newActive []int
	if r == nil {
		newActive = make([]int, len(s.entries))
		for i := range newActive {
			newActive[i] = i
		}
	} else {
		for idx, entry := range s.entries {
			if s.store.Get(entry.Name) == *r {
				newActive = append(newActive, idx)
			}
		}
		if len(newActive) == 0 {
			return ErrNoMatches
		}
	}

	collIdx := s.CurrentIndex()
	pos := sort.SearchInts(newActive, collIdx)
	if pos > len(newActive)-1 {
		pos = len(newActive) - 1
	}

	s.filter = r
	s.activeIdxs = newActive
	s.pivot = pos
	s.current = pos
	s.updateLoaded()
	return nil
}
