// Package merge reconstructs a full raster from tiles, either by decoding
// positions from filenames or by reading manifest rows. Overlapping
// regions resolve last-write-wins in processing order: lexicographic
// filename order for folder scans, row order for manifests.
package merge

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"raster-tiler/internal/manifest"
	"raster-tiler/internal/raster"
)

var (
	// ErrNoTiles means a folder scan matched nothing.
	ErrNoTiles = errors.New("no tiles found matching '*_<y>_<x>.<ext>' (e.g. scene_tile_00064_00256.png)")
	// ErrEmptySelection means manifest filtering left nothing to merge.
	ErrEmptySelection = errors.New("no manifest rows to merge after filtering")
	// ErrCancelled is returned when the progress callback requested a
	// stop; no output file is written.
	ErrCancelled = errors.New("merge cancelled")
)

// ProgressFunc is invoked once per tile; returning true cancels the merge.
type ProgressFunc func(done, total int) bool

// Estimate scans a tile folder and reports the canvas size and pixel mode
// a folder merge would produce, without writing anything.
func Estimate(tilesDir string) (int, int, raster.Mode, error) {
	tiles, err := scanTiles(tilesDir)
	if err != nil {
		return 0, 0, raster.Mode{}, fmt.Errorf("failed to scan %q: %w", tilesDir, err)
	}
	if len(tiles) == 0 {
		return 0, 0, raster.Mode{}, ErrNoTiles
	}
	w, h, mode, err := estimateCanvas(tiles)
	if err != nil {
		return 0, 0, raster.Mode{}, err
	}
	return w, h, mode, nil
}

// estimateCanvas sizes the canvas to the maximum extent of all readable
// tiles and infers the pixel mode from the first one that opens. Tiles
// are not assumed uniform: boundary tiles are legitimately smaller.
func estimateCanvas(tiles []tileRef) (int, int, raster.Mode, error) {
	var (
		maxRight, maxBottom int
		mode                raster.Mode
		haveMode            bool
	)
	for _, t := range tiles {
		cfg, err := decodeConfig(t.path)
		if err != nil {
			continue
		}
		if !haveMode {
			mode = raster.ModeOfModel(cfg.ColorModel)
			haveMode = true
		}
		if r := t.x + cfg.Width; r > maxRight {
			maxRight = r
		}
		if b := t.y + cfg.Height; b > maxBottom {
			maxBottom = b
		}
	}
	if !haveMode {
		return 0, 0, raster.Mode{}, ErrNoTiles
	}
	return maxRight, maxBottom, mode, nil
}

func decodeConfig(path string) (image.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Config{}, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	return cfg, err
}

// FromFolder reconstructs a raster from position-encoded tile filenames
// and saves it to outputPath. Returns the merged (width, height).
func FromFolder(tilesDir, outputPath string, progress ProgressFunc) (int, int, error) {
	tiles, err := scanTiles(tilesDir)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to scan %q: %w", tilesDir, err)
	}
	if len(tiles) == 0 {
		return 0, 0, ErrNoTiles
	}

	w, h, mode, err := estimateCanvas(tiles)
	if err != nil {
		return 0, 0, err
	}
	canvas := raster.NewCanvas(mode, w, h)

	for i, t := range tiles {
		if progress != nil && progress(i, len(tiles)) {
			return 0, 0, ErrCancelled
		}
		img, err := imaging.Open(t.path)
		if err != nil {
			continue
		}
		paste(canvas, img, mode, t.x, t.y)
	}

	if err := saveCanvas(canvas, outputPath); err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// ManifestOptions configures a manifest-mode merge.
type ManifestOptions struct {
	// FoldFilter keeps only rows whose fold column matches,
	// case-insensitively. Empty means all rows.
	FoldFilter string
	// PathColumn names the tile-path column to read; empty auto-detects
	// t1_path, then t2_path, then path.
	PathColumn string
	Progress   ProgressFunc
}

// FromManifest reconstructs a raster from manifest rows and saves it to
// outputPath. The manifest's declared geometry is authoritative: a tile
// whose decoded size disagrees with its row is resized to match. Rows
// with an unresolvable path or non-numeric geometry are skipped. Rows are
// processed in file order, which reproduces the splitter's intended
// overlap resolution.
func FromManifest(manifestPath, outputPath string, opts ManifestOptions) (int, int, error) {
	table, err := manifest.Load(manifestPath)
	if err != nil {
		return 0, 0, err
	}
	if err := table.RequireGeometry(); err != nil {
		return 0, 0, err
	}
	pathCol, err := table.DetectPathColumn(opts.PathColumn)
	if err != nil {
		return 0, 0, err
	}

	records := table.Records
	if f := strings.TrimSpace(opts.FoldFilter); f != "" {
		var kept [][]string
		for _, rec := range records {
			if strings.EqualFold(table.Field(rec, "fold"), f) {
				kept = append(kept, rec)
			}
		}
		records = kept
	}
	if len(records) == 0 {
		return 0, 0, ErrEmptySelection
	}

	// Canvas extent from declared geometry; mode from the first row whose
	// tile actually opens.
	var (
		maxRight, maxBottom int
		mode                raster.Mode
		haveMode            bool
	)
	for _, rec := range records {
		x0, y0, w, h, ok := rowGeometry(table, rec)
		if !ok {
			continue
		}
		if r := x0 + w; r > maxRight {
			maxRight = r
		}
		if b := y0 + h; b > maxBottom {
			maxBottom = b
		}
		if !haveMode {
			if cfg, err := decodeConfig(strings.TrimSpace(table.Field(rec, pathCol))); err == nil {
				mode = raster.ModeOfModel(cfg.ColorModel)
				haveMode = true
			}
		}
	}
	if !haveMode || maxRight == 0 || maxBottom == 0 {
		return 0, 0, fmt.Errorf("%w: no row with a resolvable tile path", ErrEmptySelection)
	}
	canvas := raster.NewCanvas(mode, maxRight, maxBottom)

	for i, rec := range records {
		if opts.Progress != nil && opts.Progress(i, len(records)) {
			return 0, 0, ErrCancelled
		}
		x0, y0, w, h, ok := rowGeometry(table, rec)
		if !ok {
			continue
		}
		img, err := imaging.Open(strings.TrimSpace(table.Field(rec, pathCol)))
		if err != nil {
			continue
		}
		if b := img.Bounds(); b.Dx() != w || b.Dy() != h {
			img = imaging.Resize(img, w, h, imaging.Linear)
		}
		paste(canvas, img, mode, x0, y0)
	}

	if err := saveCanvas(canvas, outputPath); err != nil {
		return 0, 0, err
	}
	return maxRight, maxBottom, nil
}

func rowGeometry(table *manifest.Table, rec []string) (x0, y0, w, h int, ok bool) {
	vals := [4]int{}
	for i, name := range []string{"x0", "y0", "w", "h"} {
		v, err := parseIntField(table.Field(rec, name))
		if err != nil {
			return 0, 0, 0, 0, false
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], vals[3], true
}

// parseIntField accepts plain integers and float renderings of them
// ("256" or "256.0"), which show up in manifests round-tripped through
// spreadsheet tools.
func parseIntField(s string) (int, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// paste draws tile onto canvas at (x, y), converting it to the canvas
// mode first. draw.Src makes later tiles overwrite earlier ones.
func paste(canvas image.Image, tile image.Image, mode raster.Mode, x, y int) {
	converted := raster.Convert(tile, mode)
	b := converted.Bounds()
	dst := canvas.(draw.Image)
	draw.Draw(dst, image.Rect(x, y, x+b.Dx(), y+b.Dy()), converted, b.Min, draw.Src)
}

func saveCanvas(canvas image.Image, outputPath string) error {
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("could not create output directory: %w", err)
		}
	}
	return raster.SaveImage(canvas, outputPath)
}
