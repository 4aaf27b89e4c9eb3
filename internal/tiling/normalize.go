package tiling

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"raster-tiler/internal/raster"
)

// NormalizeMode selects how samples are brought down to 8 bits.
type NormalizeMode int

const (
	// NormalizeMinMax stretches each channel independently to [0, 255].
	NormalizeMinMax NormalizeMode = iota
	// NormalizeClip clamps samples to [0, 255] with no rescaling.
	NormalizeClip
)

func (m NormalizeMode) String() string {
	switch m {
	case NormalizeMinMax:
		return "minmax"
	case NormalizeClip:
		return "clip"
	default:
		return "unknown"
	}
}

// ParseNormalizeMode parses "minmax" or "clip".
func ParseNormalizeMode(s string) (NormalizeMode, error) {
	switch s {
	case "minmax":
		return NormalizeMinMax, nil
	case "clip":
		return NormalizeClip, nil
	default:
		return 0, &ConfigError{Param: "normalize_mode", Reason: fmt.Sprintf("must be 'minmax' or 'clip', got %q", s)}
	}
}

// ValidateBands rejects duplicate or negative band indices. Range checks
// against the actual channel count happen in Process, once the crop's
// channel count is known.
func ValidateBands(bands []int) error {
	seen := make(map[int]bool, len(bands))
	for _, b := range bands {
		if b < 0 {
			return &ConfigError{Param: "selected_bands", Reason: "indices must be >= 0"}
		}
		if seen[b] {
			return &ConfigError{Param: "selected_bands", Reason: fmt.Sprintf("duplicate index %d", b)}
		}
		seen[b] = true
	}
	return nil
}

// Process applies an optional band selection to a crop and converts it to
// 8-bit. Crops that are already 8-bit pass through unchanged after the
// selection. Pure and stateless: safe to call concurrently across tiles.
func Process(buf *raster.Buffer, bands []int, mode NormalizeMode) (*raster.ByteBuffer, error) {
	src := buf
	if len(bands) > 0 {
		for _, b := range bands {
			if b >= buf.Channels {
				return nil, &BandIndexError{Index: b, Channels: buf.Channels}
			}
		}
		src = selectBands(buf, bands)
	}

	out := &raster.ByteBuffer{
		Width:    src.Width,
		Height:   src.Height,
		Channels: src.Channels,
		Pix:      make([]uint8, len(src.Samples)),
	}

	if src.Depth == 8 {
		for i, v := range src.Samples {
			out.Pix[i] = uint8(v)
		}
		return out, nil
	}

	switch mode {
	case NormalizeClip:
		for i, v := range src.Samples {
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			out.Pix[i] = uint8(v)
		}
	default:
		// Per-channel stretch; channels are scaled independently so one
		// hot channel cannot wash out the others.
		scratch := make([]float64, 0, src.Width*src.Height)
		for c := 0; c < src.Channels; c++ {
			ch := src.Channel(c, scratch)
			mn, mx := floats.Min(ch), floats.Max(ch)
			if mx <= mn {
				for i := c; i < len(out.Pix); i += src.Channels {
					out.Pix[i] = 0
				}
				continue
			}
			scale := 255.0 / (mx - mn)
			j := 0
			for i := c; i < len(src.Samples); i += src.Channels {
				out.Pix[i] = uint8((ch[j]-mn)*scale + 0.5)
				j++
			}
		}
	}
	return out, nil
}

func selectBands(buf *raster.Buffer, bands []int) *raster.Buffer {
	out := &raster.Buffer{
		Width:    buf.Width,
		Height:   buf.Height,
		Channels: len(bands),
		Depth:    buf.Depth,
		Samples:  make([]float64, buf.Width*buf.Height*len(bands)),
	}
	n := buf.Width * buf.Height
	for p := 0; p < n; p++ {
		for j, b := range bands {
			out.Samples[p*len(bands)+j] = buf.Samples[p*buf.Channels+b]
		}
	}
	return out
}
