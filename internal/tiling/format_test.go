package tiling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raster-tiler/internal/raster"
)

func byteBuffer(w, h, channels int, pix []uint8) *raster.ByteBuffer {
	return &raster.ByteBuffer{Width: w, Height: h, Channels: channels, Pix: pix}
}

func TestReconcileCompatiblePassthrough(t *testing.T) {
	cases := []struct {
		channels int
		ext      string
	}{
		{1, ".jpg"},
		{3, ".jpg"},
		{1, ".webp"},
		{3, ".webp"},
		{1, ".png"},
		{4, ".png"},
		{4, ".tif"},
	}
	for _, tc := range cases {
		buf := byteBuffer(1, 1, tc.channels, make([]uint8, tc.channels))
		out, note, err := Reconcile(buf, tc.ext, PolicyAuto)
		require.NoError(t, err)
		assert.Empty(t, note)
		assert.Same(t, buf, out, "%d channels to %s should pass through", tc.channels, tc.ext)
	}
}

func TestReconcileAutoTruncatesJPEG(t *testing.T) {
	buf := byteBuffer(2, 1, 4, []uint8{1, 2, 3, 4, 5, 6, 7, 8})
	out, note, err := Reconcile(buf, ".jpg", PolicyAuto)
	require.NoError(t, err)

	assert.Equal(t, 3, out.Channels)
	assert.Equal(t, []uint8{1, 2, 3, 5, 6, 7}, out.Pix)
	assert.Contains(t, note, "incompatible channels (4)")
}

func TestReconcileAutoTwoChannelJPEG(t *testing.T) {
	// Two channels cannot reach three, so the nearest compatible count is one.
	buf := byteBuffer(2, 1, 2, []uint8{10, 20, 30, 40})
	out, note, err := Reconcile(buf, ".jpg", PolicyAuto)
	require.NoError(t, err)

	assert.Equal(t, 1, out.Channels)
	assert.Equal(t, []uint8{10, 30}, out.Pix)
	assert.NotEmpty(t, note)
}

func TestReconcileAutoTruncatesPNG(t *testing.T) {
	buf := byteBuffer(1, 1, 5, []uint8{1, 2, 3, 4, 5})
	out, note, err := Reconcile(buf, ".png", PolicyAuto)
	require.NoError(t, err)

	assert.Equal(t, 4, out.Channels)
	assert.Equal(t, []uint8{1, 2, 3, 4}, out.Pix)
	assert.NotEmpty(t, note)
}

func TestReconcileStrictFails(t *testing.T) {
	buf := byteBuffer(1, 1, 4, []uint8{1, 2, 3, 4})
	_, _, err := Reconcile(buf, ".webp", PolicyStrict)

	var fmtErr *FormatError
	require.ErrorAs(t, err, &fmtErr)
	assert.Equal(t, 4, fmtErr.Channels)
	assert.Equal(t, ".webp", fmtErr.Ext)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("auto")
	require.NoError(t, err)
	assert.Equal(t, PolicyAuto, p)

	p, err = ParsePolicy("strict")
	require.NoError(t, err)
	assert.Equal(t, PolicyStrict, p)

	_, err = ParsePolicy("lenient")
	assert.Error(t, err)
}
