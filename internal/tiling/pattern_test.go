package tiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderName(t *testing.T) {
	cases := []struct {
		name    string
		pattern string
		want    string
	}{
		{"default", "{base}_tile_{y}_{x}", "scene_tile_64_256.png"},
		{"row col aliases", "{base}_{row}_{col}", "scene_64_256.png"},
		{"index", "{base}_{i}", "scene_7.png"},
		{"padded index", "tile_{i:05d}", "tile_00007.png"},
		{"width only index", "tile_{i:3d}", "tile_  7.png"},
		{"ext token", "{base}.{ext}", "scene.png"},
		{"literal text", "out-{y}x{x}", "out-64x256.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := RenderName(tc.pattern, "scene", 64, 256, 7, ".png")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRenderNameAppendsExtension(t *testing.T) {
	got, err := RenderName("{base}_{y}_{x}", "s", 0, 0, 0, ".webp")
	require.NoError(t, err)
	assert.Equal(t, "s_0_0.webp", got)

	// Already-present extensions are not doubled, case-insensitively.
	got, err = RenderName("{base}.PNG", "s", 0, 0, 0, ".png")
	require.NoError(t, err)
	assert.Equal(t, "s.PNG", got)
}

func TestRenderNameUnknownToken(t *testing.T) {
	_, err := RenderName("{base}_{zoom}", "s", 0, 0, 0, ".png")
	var patErr *PatternError
	require.ErrorAs(t, err, &patErr)
	assert.Equal(t, "{zoom}", patErr.Token)
}

func TestRenderNameBadFormatSpec(t *testing.T) {
	_, err := RenderName("{i:.2f}", "s", 0, 0, 0, ".png")
	var patErr *PatternError
	assert.ErrorAs(t, err, &patErr)
}

func TestRenderNameUnterminatedBrace(t *testing.T) {
	_, err := RenderName("{base}_{y", "s", 0, 0, 0, ".png")
	var patErr *PatternError
	assert.ErrorAs(t, err, &patErr)
}
