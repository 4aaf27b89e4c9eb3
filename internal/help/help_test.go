package help

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextSubstitutesTitleAndVersion(t *testing.T) {
	s := Text("Raster Tiler", "1.2.3")
	assert.Contains(t, s, "# Raster Tiler — 1.2.3")
	assert.NotContains(t, s, "{APP_TITLE}")
	assert.NotContains(t, s, "{APP_VERSION}")
}

func TestTextDocumentsTwoBandEncoding(t *testing.T) {
	s := Text("x", "y")
	assert.Contains(t, s, "luminance + alpha")
}
