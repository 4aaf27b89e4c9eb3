package tiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanExactPartition(t *testing.T) {
	g, err := Plan(1024, 1024, 512, 0)
	require.NoError(t, err)

	assert.Len(t, g.Specs, 4)
	assert.Equal(t, 512, g.Step)
	for _, spec := range g.Specs {
		assert.Equal(t, 512, spec.Width())
		assert.Equal(t, 512, spec.Height())
	}
}

func TestPlanClipsBoundaryTiles(t *testing.T) {
	g, err := Plan(1000, 1000, 512, 0)
	require.NoError(t, err)

	require.Len(t, g.Specs, 4)
	last := g.Specs[len(g.Specs)-1]
	assert.Equal(t, TileSpec{Y0: 512, X0: 512, Y1: 1000, X1: 1000}, last)
	assert.Equal(t, 488, last.Width())
	assert.Equal(t, 488, last.Height())
}

func TestPlanCoversEveryPixel(t *testing.T) {
	cases := []struct {
		name     string
		h, w     int
		tileSize int
		overlap  float64
	}{
		{"square no overlap", 1000, 1000, 512, 0},
		{"wide", 300, 1700, 256, 0},
		{"overlap", 1000, 1000, 512, 25},
		{"tiny image large tile", 10, 10, 512, 0},
		{"single pixel", 1, 1, 64, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g, err := Plan(tc.h, tc.w, tc.tileSize, tc.overlap)
			require.NoError(t, err)
			require.NotEmpty(t, g.Specs)

			covered := make([]bool, tc.h*tc.w)
			for _, spec := range g.Specs {
				assert.GreaterOrEqual(t, spec.X0, 0)
				assert.GreaterOrEqual(t, spec.Y0, 0)
				assert.LessOrEqual(t, spec.X1, tc.w)
				assert.LessOrEqual(t, spec.Y1, tc.h)
				for y := spec.Y0; y < spec.Y1; y++ {
					for x := spec.X0; x < spec.X1; x++ {
						covered[y*tc.w+x] = true
					}
				}
			}
			for i, ok := range covered {
				if !ok {
					t.Fatalf("pixel %d not covered", i)
				}
			}
		})
	}
}

func TestPlanOverlapStep(t *testing.T) {
	g, err := Plan(1000, 1000, 512, 25)
	require.NoError(t, err)

	// 25% of 512 rounds to 128px of overlap, so tiles step by 384.
	assert.Equal(t, 384, g.Step)
	require.Len(t, g.Specs, 9)
	assert.Equal(t, 384, g.Specs[1].X0)
	assert.Equal(t, 768, g.Specs[2].X0)
	assert.Equal(t, 1000, g.Specs[2].X1)
}

func TestPlanRowMajorOrder(t *testing.T) {
	g, err := Plan(100, 100, 50, 0)
	require.NoError(t, err)

	require.Len(t, g.Specs, 4)
	assert.Equal(t, TileSpec{Y0: 0, X0: 0, Y1: 50, X1: 50}, g.Specs[0])
	assert.Equal(t, TileSpec{Y0: 0, X0: 50, Y1: 50, X1: 100}, g.Specs[1])
	assert.Equal(t, TileSpec{Y0: 50, X0: 0, Y1: 100, X1: 50}, g.Specs[2])
	assert.Equal(t, TileSpec{Y0: 50, X0: 50, Y1: 100, X1: 100}, g.Specs[3])
}

func TestPlanDeterministic(t *testing.T) {
	a, err := Plan(999, 1234, 300, 10)
	require.NoError(t, err)
	b, err := Plan(999, 1234, 300, 10)
	require.NoError(t, err)
	assert.Equal(t, a.Specs, b.Specs)
}

func TestPlanRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name     string
		h, w     int
		tileSize int
		overlap  float64
	}{
		{"zero height", 0, 100, 64, 0},
		{"zero width", 100, 0, 64, 0},
		{"zero tile size", 100, 100, 0, 0},
		{"negative tile size", 100, 100, -1, 0},
		{"negative overlap", 100, 100, 64, -1},
		{"overlap at 100", 100, 100, 64, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Plan(tc.h, tc.w, tc.tileSize, tc.overlap)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestPlanDegenerateOverlap(t *testing.T) {
	// 99.9% of 2px rounds to the full tile size, leaving no step.
	_, err := Plan(100, 100, 2, 99.9)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "overlap_pct", cfgErr.Param)
}
