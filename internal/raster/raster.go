// Package raster provides random-access image opening, cropping, and saving
// for the tiling pipeline. A Raster is opened cheaply (header only); pixel
// data is decoded on first crop and owned by the handle until Close.
package raster

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultMaxPixels is the per-image pixel budget applied when Options
// leaves MaxPixels at zero. Large scenes are the normal case here, so the
// default is generous; callers that want no limit set MaxPixels negative.
const DefaultMaxPixels = int64(2) << 30

// Options configures how a raster is opened. The zero value applies
// DefaultMaxPixels.
type Options struct {
	// MaxPixels caps width*height. Zero means DefaultMaxPixels, negative
	// disables the check.
	MaxPixels int64
}

// UnsupportedFormatError reports a path no registered decoder accepts.
type UnsupportedFormatError struct {
	Path string
	Err  error
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported image format for %q: %v", e.Path, e.Err)
}

func (e *UnsupportedFormatError) Unwrap() error { return e.Err }

// PixelBudgetError reports an image larger than the configured budget.
type PixelBudgetError struct {
	Path   string
	Pixels int64
	Budget int64
}

func (e *PixelBudgetError) Error() string {
	return fmt.Sprintf("image %q has %d pixels, exceeding the budget of %d; raise Options.MaxPixels to open it",
		e.Path, e.Pixels, e.Budget)
}

// Raster is an opened image. Open reads only the header; the pixel buffer
// is decoded lazily on the first Crop and released by Close. A Raster is
// owned by a single operation and is not safe for concurrent use.
type Raster struct {
	path   string
	format string
	width  int
	height int
	mode   Mode
	dtype  string

	img    image.Image // nil until first Crop
	closed bool
}

// Open opens the image at path and reads its header. The returned handle
// must be closed by the caller on every exit path.
func Open(path string, opts Options) (*Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return nil, &UnsupportedFormatError{Path: path, Err: err}
	}

	budget := opts.MaxPixels
	if budget == 0 {
		budget = DefaultMaxPixels
	}
	if budget > 0 {
		if px := int64(cfg.Width) * int64(cfg.Height); px > budget {
			return nil, &PixelBudgetError{Path: path, Pixels: px, Budget: budget}
		}
	}

	return &Raster{
		path:   path,
		format: format,
		width:  cfg.Width,
		height: cfg.Height,
		mode:   ModeOfModel(cfg.ColorModel),
		dtype:  DtypeOfModel(cfg.ColorModel),
	}, nil
}

// Path returns the file path the raster was opened from.
func (r *Raster) Path() string { return r.path }

// Format returns the decoder name ("png", "jpeg", "tiff", "webp").
func (r *Raster) Format() string { return r.format }

// Size returns (width, height) in pixels. Header-only, no pixel decode.
func (r *Raster) Size() (int, int) { return r.width, r.height }

// Width returns the image width in pixels.
func (r *Raster) Width() int { return r.width }

// Height returns the image height in pixels.
func (r *Raster) Height() int { return r.height }

// Mode returns the tagged pixel mode derived from the image header.
func (r *Raster) Mode() Mode { return r.mode }

// Dtype returns the approximate per-sample dtype ("uint8" or "uint16"),
// probed from the header without decoding pixel data.
func (r *Raster) Dtype() string { return r.dtype }

// Crop extracts the given rectangle as an independent sample buffer.
// The rectangle must lie within the raster bounds.
func (r *Raster) Crop(rect image.Rectangle) (*Buffer, error) {
	if r.closed {
		return nil, fmt.Errorf("crop of closed raster %q", r.path)
	}
	full := image.Rect(0, 0, r.width, r.height)
	if !rect.In(full) || rect.Empty() {
		return nil, fmt.Errorf("crop %v outside raster bounds %v", rect, full)
	}
	if r.img == nil {
		if err := r.decode(); err != nil {
			return nil, err
		}
	}
	return bufferFrom(r.img, rect, r.mode), nil
}

func (r *Raster) decode() error {
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("failed to reopen image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return &UnsupportedFormatError{Path: r.path, Err: err}
	}
	r.img = img
	return nil
}

// Close releases the decoded pixel buffer. Safe to call more than once.
func (r *Raster) Close() error {
	r.img = nil
	r.closed = true
	return nil
}
