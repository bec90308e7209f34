package browse

import (
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSession_StaleAfterDirectoryChange(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.jpg"} {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("creating %s: %v", name, err)
		}
		if err := jpeg.Encode(f, image.NewRGBA(image.Rect(0, 0, 2, 2)), nil); err != nil {
			t.Fatalf("encoding %s: %v", name, err)
		}
		f.Close()
	}

	b, err := New(testConfig(), stubDecoder{}, nil, quietLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer b.Close()

	s, err := b.OpenDirectory(dir)
	if err != nil {
		t.Fatalf("OpenDirectory() error = %v", err)
	}
	defer s.Close()
	drainPending(t, s)

	if s.Stale() {
		t.Fatal("session stale right after open")
	}

	// A non-image file appearing must not mark the session stale; ratings
	// saves create exactly this kind of sibling file.
	if err := os.WriteFile(filepath.Join(dir, "ratings.yaml"), []byte("a.jpg: 1\n"), 0o644); err != nil {
		t.Fatalf("writing sidecar: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	if s.Stale() {
		t.Fatal("sidecar write marked the session stale")
	}

	if err := os.WriteFile(filepath.Join(dir, "c.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatalf("writing new image: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !s.Stale() {
		if time.Now().After(deadline) {
			t.Fatal("session never went stale after a new image appeared")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
