// Package ratings persists the per-image rating map of a directory to a
// ratings.yaml sidecar file. Saves go through a uniquely named temporary
// file in the same directory followed by an atomic rename, so a
// half-written sidecar is never observable.
package ratings

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-git/go-billy/v6"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// FileName is the sidecar file name, one per image directory.
const FileName = "ratings.yaml"

// ErrSidecarIsDir is returned when the sidecar path is occupied by a
// directory.
var ErrSidecarIsDir = errors.New("ratings file path is a directory")

// Store holds the ratings of one directory. Known files rated Low have no
// entry at all; entries for file names that match no known image are kept
// aside and written back verbatim on every save so they are not lost.
type Store struct {
	fsys     billy.Filesystem
	active   map[string]Rating
	orphaned map[string]Rating
	log      *slog.Logger
}

// Load reads the sidecar file from the root of fsys, which must be rooted
// at the image directory. A missing file yields an empty store. Entries
// naming a file in known become active ratings, all others are orphaned.
func Load(fsys billy.Filesystem, known map[string]bool, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	s := &Store{
		fsys:     fsys,
		active:   make(map[string]Rating),
		orphaned: make(map[string]Rating),
		log:      log,
	}

	info, err := fsys.Stat(FileName)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("while checking the ratings file: %w", err)
	}
	if info.IsDir() {
		return nil, ErrSidecarIsDir
	}

	f, err := fsys.Open(FileName)
	if err != nil {
		return nil, fmt.Errorf("while opening the ratings file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("while reading the ratings file: %w", err)
	}

	var levels map[string]int
	if err := yaml.Unmarshal(data, &levels); err != nil {
		return nil, fmt.Errorf("while deserializing the ratings file: %w", err)
	}

	for name, level := range levels {
		rating := FromLevel(level)
		if !known[name] {
			s.orphaned[name] = rating
			continue
		}
		if rating != Low {
			s.active[name] = rating
		}
	}

	return s, nil
}

// Get returns the rating of a file name, Low if none is stored.
func (s *Store) Get(name string) Rating {
	return s.active[name]
}

// Set stores a rating and synchronously saves the sidecar file. Setting
// Low removes the stored entry. A failed save is returned but never rolls
// back the in-memory state; the next successful save carries it.
func (s *Store) Set(name string, rating Rating) error {
	if rating == Low {
		delete(s.active, name)
	} else {
		s.active[name] = rating
	}
	return s.Save()
}

// Orphaned returns a copy of the entries that match no known image.
func (s *Store) Orphaned() map[string]Rating {
	out := make(map[string]Rating, len(s.orphaned))
	for name, rating := range s.orphaned {
		out[name] = rating
	}
	return out
}

// Save writes the union of active and orphaned entries as a name-sorted
// name-to-level mapping. The data goes to a uuid-named temporary file in
// the sidecar's own directory first and is then renamed over the sidecar
// path, which is atomic on the same volume.
func (s *Store) Save() error {
	merged := make(map[string]int, len(s.active)+len(s.orphaned))
	for name, rating := range s.orphaned {
		merged[name] = rating.Level()
	}
	for name, rating := range s.active {
		merged[name] = rating.Level()
	}

	data, err := yaml.Marshal(merged)
	if err != nil {
		return fmt.Errorf("while serializing the ratings map: %w", err)
	}

	tmpName := fmt.Sprintf("%s.%s", FileName, uuid.New())
	f, err := s.fsys.Create(tmpName)
	if err != nil {
		return fmt.Errorf("while creating the temporary ratings file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		s.fsys.Remove(tmpName)
		return fmt.Errorf("while writing the temporary ratings file: %w", err)
	}
	if err := f.Close(); err != nil {
		s.fsys.Remove(tmpName)
		return fmt.Errorf("while closing the temporary ratings file: %w", err)
	}

	if err := s.fsys.Rename(tmpName, FileName); err != nil {
		s.fsys.Remove(tmpName)
		return fmt.Errorf("while persisting the ratings file: %w", err)
	}

	return nil
}
