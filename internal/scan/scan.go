// Package scan discovers the image files of a directory. The resulting
// entries are sorted by file name and their positions are the collection
// indices every other package keys on.
package scan

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-git/go-billy/v6"
)

// Entry is one image file discovered at session start. Entries are
// immutable after List returns.
type Entry struct {
	// Name is the bare file name, used as the rating key.
	Name string
	// Path is the location handed to the decode worker.
	Path string
}

// List reads the root of fsys and returns the eligible image files sorted
// by name. dir is the real directory path fsys is rooted at and is only
// used to build Entry.Path.
func List(fsys billy.Filesystem, dir string) ([]Entry, error) {
	infos, err := fsys.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("while reading directory entries: %w", err)
	}

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		if !info.Type().IsRegular() {
			continue
		}
		if !Relevant(info.Name()) {
			continue
		}
		entries = append(entries, Entry{
			Name: info.Name(),
			Path: filepath.Join(dir, info.Name()),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

// Relevant reports whether a file name belongs in the collection: a
// jpg/jpeg extension (case-insensitive), not a macOS resource-fork shadow
// file ("._" prefix), and valid UTF-8 so the name can serve as a rating
// key.
func Relevant(name string) bool {
	if !utf8.ValidString(name) {
		return false
	}
	if strings.HasPrefix(name, "._") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return true
	}
	return false
}
