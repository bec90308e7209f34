package browse

import (
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"os"

	"github.com/rwcarlsen/goexif/exif"
)

// Rotation is the classification applied when displaying an image so it
// appears the way it was taken, derived from EXIF orientation metadata.
type Rotation int

const (
	RotationNone Rotation = iota
	Rotation90CW
	Rotation90CCW
	Rotation180
)

func (r Rotation) String() string {
	switch r {
	case Rotation90CW:
		return "90cw"
	case Rotation90CCW:
		return "90ccw"
	case Rotation180:
		return "180"
	}
	return "none"
}

// ImageData is a decoded pixel buffer plus its rotation classification,
// produced by a Decoder on a worker goroutine.
type ImageData struct {
	Pixels   image.Image
	Width    int
	Height   int
	Rotation Rotation
}

// Decoder turns a file path into decoded image data. Implementations are
// invoked from worker goroutines and must be safe for concurrent use. The
// session treats this as an opaque blocking call.
type Decoder interface {
	Decode(path string) (*ImageData, error)
}

// Handle is whatever the display collaborator returns for an uploaded
// image, typically a GPU texture reference. The session stores and
// discards handles but never interprets them.
type Handle interface{}

// Uploader turns decoded pixels into a displayable handle and releases
// handles of evicted images. It is only called from the interaction
// goroutine.
type Uploader interface {
	Upload(img *ImageData) (Handle, error)
	Discard(h Handle)
}

// LoadedImage is a cache entry: the image's decoded dimensions, the
// display handle owning its pixels, and its rotation.
type LoadedImage struct {
	Width    int
	Height   int
	Rotation Rotation
	Handle   Handle
}

// DisplaySize returns the dimensions with the rotation applied, so a 90
// degree rotated image swaps width and height.
func (li *LoadedImage) DisplaySize() (w, h int) {
	switch li.Rotation {
	case Rotation90CW, Rotation90CCW:
		return li.Height, li.Width
	}
	return li.Width, li.Height
}

// JPEGDecoder is the production Decoder: stdlib JPEG decode plus EXIF
// orientation lookup.
type JPEGDecoder struct {
	Log *slog.Logger
}

func (d JPEGDecoder) Decode(path string) (*ImageData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("while opening image file: %w", err)
	}
	defer f.Close()

	img, err := jpeg.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("while decoding %s: %w", path, err)
	}

	rotation := RotationNone
	if _, err := f.Seek(0, 0); err == nil {
		rotation = d.readRotation(f, path)
	}

	bounds := img.Bounds()
	return &ImageData{
		Pixels:   img,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Rotation: rotation,
	}, nil
}

// readRotation maps the EXIF orientation tag to a Rotation. Files without
// usable EXIF data are common, so any failure here degrades to
// RotationNone instead of failing the load.
func (d JPEGDecoder) readRotation(f *os.File, path string) Rotation {
	x, err := exif.Decode(f)
	if err != nil {
		return RotationNone
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return RotationNone
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return RotationNone
	}

	switch orientation {
	case 1:
		return RotationNone
	case 3:
		return Rotation180
	case 6:
		return Rotation90CW
	case 8:
		return Rotation90CCW
	}
	// 2, 4, 5 and 7 are mirrored variants nothing in the pipeline can
	// represent yet.
	d.logger().Warn("unsupported exif orientation", "path", path, "orientation", orientation)
	return RotationNone
}

func (d JPEGDecoder) logger() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}

// MemoryUploader is a display collaborator for hosts without a GPU: the
// handle simply keeps the decoded pixels alive.
type MemoryUploader struct{}

func (MemoryUploader) Upload(img *ImageData) (Handle, error) {
	return img.Pixels, nil
}

func (MemoryUploader) Discard(Handle) {}
