package raster

import (
	"image"
	"image/color"
)

// Buffer holds a crop's raw samples in row-major, channel-interleaved
// order. Sample values keep the source scale: 0..255 for 8-bit sources,
// 0..65535 for 16-bit. Each buffer is independently allocated; nothing is
// shared between tiles.
type Buffer struct {
	Width    int
	Height   int
	Channels int
	Depth    int // bits per sample in the source: 8 or 16
	Samples  []float64
}

// At returns the sample for channel c at (x, y).
func (b *Buffer) At(x, y, c int) float64 {
	return b.Samples[(y*b.Width+x)*b.Channels+c]
}

// Channel copies channel c into dst, which must have room for
// Width*Height values. Used for per-channel statistics.
func (b *Buffer) Channel(c int, dst []float64) []float64 {
	dst = dst[:0]
	for i := c; i < len(b.Samples); i += b.Channels {
		dst = append(dst, b.Samples[i])
	}
	return dst
}

func bufferFrom(img image.Image, rect image.Rectangle, mode Mode) *Buffer {
	w, h := rect.Dx(), rect.Dy()
	c := mode.Channels
	buf := &Buffer{
		Width:    w,
		Height:   h,
		Channels: c,
		Depth:    8,
		Samples:  make([]float64, w*h*c),
	}

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < h; y++ {
			row := src.Pix[src.PixOffset(rect.Min.X, rect.Min.Y+y):]
			for x := 0; x < w; x++ {
				buf.Samples[y*w+x] = float64(row[x])
			}
		}
		return buf
	case *image.Gray16:
		buf.Depth = 16
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				buf.Samples[y*w+x] = float64(src.Gray16At(rect.Min.X+x, rect.Min.Y+y).Y)
			}
		}
		return buf
	case *image.NRGBA64:
		buf.Depth = 16
	case *image.RGBA64:
		buf.Depth = 16
	}

	i := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			switch {
			case c == 1 && buf.Depth == 16:
				g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
				buf.Samples[i] = float64(g.Y)
				i++
			case c == 1:
				g := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
				buf.Samples[i] = float64(g.Y)
				i++
			case buf.Depth == 16:
				px := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
				buf.Samples[i] = float64(px.R)
				buf.Samples[i+1] = float64(px.G)
				buf.Samples[i+2] = float64(px.B)
				if c == 4 {
					buf.Samples[i+3] = float64(px.A)
				}
				i += c
			default:
				px := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				buf.Samples[i] = float64(px.R)
				buf.Samples[i+1] = float64(px.G)
				buf.Samples[i+2] = float64(px.B)
				if c == 4 {
					buf.Samples[i+3] = float64(px.A)
				}
				i += c
			}
		}
	}
	return buf
}

// ByteBuffer is an 8-bit sample buffer, the canonical form tiles are
// written in.
type ByteBuffer struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// At returns the sample for channel c at (x, y).
func (b *ByteBuffer) At(x, y, c int) uint8 {
	return b.Pix[(y*b.Width+x)*b.Channels+c]
}

// Image renders the buffer as a standard image for encoding. One channel
// maps to Gray, three to opaque NRGBA, four to NRGBA. Two channels are
// written as luminance plus alpha.
func (b *ByteBuffer) Image() image.Image {
	switch b.Channels {
	case 1:
		out := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
		copy(out.Pix, b.Pix)
		return out
	case 2:
		out := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
		for i := 0; i < b.Width*b.Height; i++ {
			v, a := b.Pix[i*2], b.Pix[i*2+1]
			out.Pix[i*4] = v
			out.Pix[i*4+1] = v
			out.Pix[i*4+2] = v
			out.Pix[i*4+3] = a
		}
		return out
	case 3:
		out := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
		for i := 0; i < b.Width*b.Height; i++ {
			out.Pix[i*4] = b.Pix[i*3]
			out.Pix[i*4+1] = b.Pix[i*3+1]
			out.Pix[i*4+2] = b.Pix[i*3+2]
			out.Pix[i*4+3] = 255
		}
		return out
	default:
		out := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
		copy(out.Pix, b.Pix[:b.Width*b.Height*4])
		return out
	}
}
