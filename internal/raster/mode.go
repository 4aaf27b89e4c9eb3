package raster

import (
	"fmt"
	"image"
	"image/color"
)

// ModeKind classifies a raster's pixel layout.
type ModeKind int

const (
	Grayscale ModeKind = iota
	RGB
	RGBA
	Other
)

func (k ModeKind) String() string {
	switch k {
	case Grayscale:
		return "Grayscale"
	case RGB:
		return "RGB"
	case RGBA:
		return "RGBA"
	default:
		return "Other"
	}
}

// Mode is a tagged pixel mode: the kind plus the channel count.
// Other carries an explicit channel count for layouts the standard
// kinds don't cover.
type Mode struct {
	Kind     ModeKind
	Channels int
}

var (
	ModeGray = Mode{Grayscale, 1}
	ModeRGB  = Mode{RGB, 3}
	ModeRGBA = Mode{RGBA, 4}
)

func (m Mode) String() string {
	if m.Kind == Other {
		return fmt.Sprintf("Other(%d)", m.Channels)
	}
	return m.Kind.String()
}

// ModeOf maps a decoded image to its tagged mode.
func ModeOf(img image.Image) Mode {
	return ModeOfModel(img.ColorModel())
}

// ModeOfModel maps a color model to a tagged mode. Paletted images are
// treated as RGB, matching how they are expanded before processing.
func ModeOfModel(model color.Model) Mode {
	switch model {
	case color.GrayModel, color.Gray16Model:
		return ModeGray
	case color.YCbCrModel, color.CMYKModel:
		return ModeRGB
	case color.NRGBAModel, color.RGBAModel, color.NRGBA64Model, color.RGBA64Model:
		return ModeRGBA
	}
	if _, ok := model.(color.Palette); ok {
		return ModeRGB
	}
	return ModeRGBA
}

// DtypeOfModel reports the approximate per-sample dtype of a color model.
func DtypeOfModel(model color.Model) string {
	switch model {
	case color.Gray16Model, color.NRGBA64Model, color.RGBA64Model:
		return "uint16"
	default:
		return "uint8"
	}
}

// Convert re-renders img in the target mode. Images already in the target
// mode are returned unchanged.
func Convert(img image.Image, mode Mode) image.Image {
	switch mode.Kind {
	case Grayscale:
		if g, ok := img.(*image.Gray); ok {
			return g
		}
		b := img.Bounds()
		out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				out.Set(x-b.Min.X, y-b.Min.Y, img.At(x, y))
			}
		}
		return out
	default:
		if n, ok := img.(*image.NRGBA); ok {
			return n
		}
		b := img.Bounds()
		out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				out.Set(x-b.Min.X, y-b.Min.Y, img.At(x, y))
			}
		}
		return out
	}
}

// NewCanvas allocates a zero-filled canvas in the given mode.
func NewCanvas(mode Mode, w, h int) image.Image {
	if mode.Kind == Grayscale {
		return image.NewGray(image.Rect(0, 0, w, h))
	}
	return image.NewNRGBA(image.Rect(0, 0, w, h))
}
