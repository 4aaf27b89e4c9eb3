package tiling

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raster-tiler/internal/manifest"
	"raster-tiler/internal/raster"
)

// testScene renders a w x h image whose pixel values encode position, so
// tile content mismatches are detectable.
func testScene(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: uint8(x + y), A: 255})
		}
	}
	return img
}

func writeScene(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, raster.SaveImage(testScene(w, h), path))
}

func TestSplitSingleRaster(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "scene.png")
	out := filepath.Join(dir, "out")
	writeScene(t, src, 64, 48)

	res, err := Split(Options{
		PrimaryPath:   src,
		OutputDir:     out,
		TileSize:      32,
		WriteManifest: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, res.Tiles)
	assert.Equal(t, 64, res.Width)
	assert.Equal(t, 48, res.Height)
	assert.Equal(t, "uint8", res.Dtype)
	assert.False(t, res.SecondaryUsed)
	assert.False(t, res.Cancelled)
	// Without a secondary raster, tiles land directly in the output dir.
	assert.Equal(t, out, res.PrimaryDir)

	for _, name := range []string{
		"scene_tile_0_0.png", "scene_tile_0_32.png",
		"scene_tile_32_0.png", "scene_tile_32_32.png",
	} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}

	table, err := manifest.Load(res.PrimaryManifest)
	require.NoError(t, err)
	require.Len(t, table.Records, 4)

	rec := table.Records[3]
	assert.Equal(t, "scene", table.Field(rec, "scene_id"))
	assert.Equal(t, "1", table.Field(rec, "tile_x"))
	assert.Equal(t, "1", table.Field(rec, "tile_y"))
	assert.Equal(t, "32", table.Field(rec, "x0"))
	assert.Equal(t, "32", table.Field(rec, "y0"))
	assert.Equal(t, "32", table.Field(rec, "w"))
	assert.Equal(t, "16", table.Field(rec, "h"))
	assert.Equal(t, "train", table.Field(rec, "fold"))
	assert.Empty(t, table.Field(rec, "t2_path"))
}

func TestSplitTileContent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "scene.png")
	out := filepath.Join(dir, "out")
	writeScene(t, src, 64, 64)

	_, err := Split(Options{PrimaryPath: src, OutputDir: out, TileSize: 32})
	require.NoError(t, err)

	r, err := raster.Open(filepath.Join(out, "scene_tile_32_32.png"), raster.Options{})
	require.NoError(t, err)
	defer r.Close()

	buf, err := r.Crop(image.Rect(0, 0, 32, 32))
	require.NoError(t, err)
	// Tile pixel (0,0) is source pixel (32,32).
	assert.Equal(t, float64(32), buf.At(0, 0, 0))
	assert.Equal(t, float64(32), buf.At(0, 0, 1))
	assert.Equal(t, float64(64), buf.At(0, 0, 2))
}

func TestSplitDualRasters(t *testing.T) {
	dir := t.TempDir()
	t1 := filepath.Join(dir, "before.png")
	t2 := filepath.Join(dir, "after.png")
	out := filepath.Join(dir, "out")
	writeScene(t, t1, 64, 64)
	writeScene(t, t2, 64, 64)

	res, err := Split(Options{
		PrimaryPath:   t1,
		SecondaryPath: t2,
		OutputDir:     out,
		TileSize:      32,
		WriteManifest: true,
	})
	require.NoError(t, err)

	assert.True(t, res.SecondaryUsed)
	assert.Equal(t, filepath.Join(out, "T1"), res.PrimaryDir)
	assert.Equal(t, filepath.Join(out, "T2"), res.SecondaryDir)

	_, err = os.Stat(filepath.Join(res.PrimaryDir, "before_tile_0_0.png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(res.SecondaryDir, "before_T2_tile_0_0.png"))
	assert.NoError(t, err)

	// Both roles carry the same manifest: identical grid, shared indices.
	for _, path := range []string{res.PrimaryManifest, res.SecondaryManifest} {
		table, err := manifest.Load(path)
		require.NoError(t, err)
		require.Len(t, table.Records, 4)
		assert.NotEmpty(t, table.Field(table.Records[0], "t1_path"))
		assert.NotEmpty(t, table.Field(table.Records[0], "t2_path"))
	}
}

func TestSplitSecondarySizeMismatchDropped(t *testing.T) {
	dir := t.TempDir()
	t1 := filepath.Join(dir, "a.png")
	t2 := filepath.Join(dir, "b.png")
	out := filepath.Join(dir, "out")
	writeScene(t, t1, 64, 64)
	writeScene(t, t2, 63, 64)

	res, err := Split(Options{
		PrimaryPath:   t1,
		SecondaryPath: t2,
		OutputDir:     out,
		TileSize:      32,
	})
	require.NoError(t, err)

	// The mismatched secondary is dropped and the run behaves single-raster.
	assert.False(t, res.SecondaryUsed)
	assert.Equal(t, out, res.PrimaryDir)
	assert.Equal(t, 4, res.Tiles)
}

func TestSplitCancellation(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "scene.png")
	out := filepath.Join(dir, "out")
	writeScene(t, src, 64, 64)

	res, err := Split(Options{
		PrimaryPath:   src,
		OutputDir:     out,
		TileSize:      32,
		WriteManifest: true,
		Progress: func(done, total int) bool {
			return done == 2
		},
	})
	require.NoError(t, err)

	assert.True(t, res.Cancelled)
	assert.Equal(t, 2, res.Tiles)

	// Completed tiles remain valid and described by the manifest.
	table, err := manifest.Load(res.PrimaryManifest)
	require.NoError(t, err)
	assert.Len(t, table.Records, 2)
}

func TestSplitStrictPolicyFails(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "scene.png")
	writeScene(t, src, 32, 32)

	_, err := Split(Options{
		PrimaryPath: src,
		OutputDir:   filepath.Join(dir, "out"),
		TileSize:    32,
		Extension:   ".jpg",
		Policy:      PolicyStrict,
	})

	var tileErr *TileError
	require.ErrorAs(t, err, &tileErr)
	var fmtErr *FormatError
	assert.ErrorAs(t, err, &fmtErr)
}

func TestSplitAutoPolicyNote(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "scene.png")
	writeScene(t, src, 32, 32)

	res, err := Split(Options{
		PrimaryPath: src,
		OutputDir:   filepath.Join(dir, "out"),
		TileSize:    32,
		Extension:   ".jpg",
	})
	require.NoError(t, err)
	assert.Contains(t, res.Note, "incompatible channels")
	assert.Equal(t, 1, res.Tiles)
}

func TestSplitValidation(t *testing.T) {
	cases := []struct {
		name string
		opts Options
	}{
		{"missing input", Options{OutputDir: "x", TileSize: 32}},
		{"missing output", Options{PrimaryPath: "x.png", TileSize: 32}},
		{"bad tile size", Options{PrimaryPath: "x.png", OutputDir: "o", TileSize: 0}},
		{"bad overlap", Options{PrimaryPath: "x.png", OutputDir: "o", TileSize: 32, OverlapPct: 100}},
		{"bad extension", Options{PrimaryPath: "x.png", OutputDir: "o", TileSize: 32, Extension: ".bmp"}},
		{"duplicate bands", Options{PrimaryPath: "x.png", OutputDir: "o", TileSize: 32, SelectedBands: []int{1, 1}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Split(tc.opts)
			assert.Error(t, err)
		})
	}
}

func TestSplitBadPatternFailsBeforeIO(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	_, err := Split(Options{
		PrimaryPath: filepath.Join(dir, "missing.png"),
		OutputDir:   out,
		TileSize:    32,
		NamePattern: "{base}_{bogus}",
	})
	var patErr *PatternError
	require.ErrorAs(t, err, &patErr)

	// Pattern validation runs before the input is even opened.
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
}
