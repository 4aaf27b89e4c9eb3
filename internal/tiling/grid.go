// Package tiling implements the tiling engine: grid planning, per-tile
// band selection and normalization, format reconciliation, filename
// rendering, and the split orchestration.
package tiling

import (
	"fmt"
	"image"
	"math"
)

// TileSpec is one tile's bounding box in source pixel coordinates,
// half-open on both axes: [Y0,Y1) x [X0,X1).
type TileSpec struct {
	Y0 int
	X0 int
	Y1 int
	X1 int
}

// Rect returns the tile bounds as an image.Rectangle.
func (s TileSpec) Rect() image.Rectangle {
	return image.Rect(s.X0, s.Y0, s.X1, s.Y1)
}

// Width returns X1-X0.
func (s TileSpec) Width() int { return s.X1 - s.X0 }

// Height returns Y1-Y0.
func (s TileSpec) Height() int { return s.Y1 - s.Y0 }

// Grid is an ordered tile plan over a raster. Specs are in row-major
// order; Step is the stride used to derive manifest tile_x/tile_y.
type Grid struct {
	Specs    []TileSpec
	Step     int
	TileSize int
	Width    int
	Height   int
}

// Plan enumerates tile origins over an h x w raster. Tiles step by
// tileSize minus the overlap and are clipped at the raster boundary, so
// every pixel is covered and no spec extends past the bounds. Pure and
// deterministic: identical inputs always yield the identical sequence.
func Plan(h, w, tileSize int, overlapPct float64) (*Grid, error) {
	if h <= 0 || w <= 0 {
		return nil, &ConfigError{Param: "image size", Reason: fmt.Sprintf("dimensions must be positive, got %dx%d", w, h)}
	}
	if tileSize <= 0 {
		return nil, &ConfigError{Param: "tile_size", Reason: "must be a positive integer"}
	}
	if overlapPct < 0 || overlapPct >= 100 {
		return nil, &ConfigError{Param: "overlap_pct", Reason: "must be in [0, 100)"}
	}

	overlapPx := int(math.Round(float64(tileSize) * overlapPct / 100.0))
	if overlapPx >= tileSize {
		return nil, &ConfigError{Param: "overlap_pct", Reason: fmt.Sprintf("overlap of %dpx leaves no step for tile size %d", overlapPx, tileSize)}
	}

	step := tileSize
	if overlapPx > 0 {
		step = tileSize - overlapPx
		if step < 1 {
			step = 1
		}
	}

	g := &Grid{Step: step, TileSize: tileSize, Width: w, Height: h}
	for y := 0; y < h; y += step {
		for x := 0; x < w; x += step {
			g.Specs = append(g.Specs, TileSpec{
				Y0: y,
				X0: x,
				Y1: min(y+tileSize, h),
				X1: min(x+tileSize, w),
			})
		}
	}
	return g, nil
}
