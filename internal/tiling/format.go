package tiling

import (
	"fmt"

	"raster-tiler/internal/raster"
)

// Policy decides what happens when a tile's channel count does not fit
// the target format.
type Policy int

const (
	// PolicyAuto truncates to the nearest compatible channel count and
	// records an advisory note.
	PolicyAuto Policy = iota
	// PolicyStrict fails with a FormatError instead.
	PolicyStrict
)

func (p Policy) String() string {
	if p == PolicyStrict {
		return "strict"
	}
	return "auto"
}

// ParsePolicy parses "auto" or "strict".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "auto":
		return PolicyAuto, nil
	case "strict":
		return PolicyStrict, nil
	default:
		return 0, &ConfigError{Param: "policy", Reason: fmt.Sprintf("must be 'auto' or 'strict', got %q", s)}
	}
}

// Reconcile checks a tile's channel count against the target extension.
// JPEG and WEBP carry 1 or 3 channels; PNG and TIFF carry up to 4. Under
// PolicyAuto an incompatible buffer is truncated to the nearest compatible
// count and an advisory note is returned; under PolicyStrict the tile
// fails with a FormatError. ext must already be normalized.
func Reconcile(buf *raster.ByteBuffer, ext string, policy Policy) (*raster.ByteBuffer, string, error) {
	var keep int
	switch ext {
	case ".jpg", ".jpeg", ".webp":
		if buf.Channels == 1 || buf.Channels == 3 {
			return buf, "", nil
		}
		keep = 3
		if buf.Channels < 3 {
			keep = 1
		}
	default: // .png, .tif, .tiff
		if buf.Channels <= 4 {
			return buf, "", nil
		}
		keep = 4
	}

	if policy == PolicyStrict {
		return nil, "", &FormatError{Channels: buf.Channels, Ext: ext}
	}

	note := fmt.Sprintf("incompatible channels (%d) for %s; using first %d", buf.Channels, ext, keep)
	return truncateChannels(buf, keep), note, nil
}

func truncateChannels(buf *raster.ByteBuffer, keep int) *raster.ByteBuffer {
	out := &raster.ByteBuffer{
		Width:    buf.Width,
		Height:   buf.Height,
		Channels: keep,
		Pix:      make([]uint8, buf.Width*buf.Height*keep),
	}
	n := buf.Width * buf.Height
	for p := 0; p < n; p++ {
		copy(out.Pix[p*keep:(p+1)*keep], buf.Pix[p*buf.Channels:p*buf.Channels+keep])
	}
	return out
}
