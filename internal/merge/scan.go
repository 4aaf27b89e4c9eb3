package merge

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

// tilePattern matches filenames ending in _<y>_<x>.<ext>, the naming the
// splitter's default pattern produces. y and x are the tile's top-left
// pixel offsets in the source raster.
var tilePattern = regexp.MustCompile(`(?i)_(\d+)_(\d+)\.(\w+)$`)

type tileRef struct {
	path string
	name string
	x    int
	y    int
}

// scanTiles lists the position-encoded tile files in dir, in lexicographic
// filename order. Files without the _<y>_<x> suffix are skipped, not
// errors.
func scanTiles(dir string) ([]tileRef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var tiles []tileRef
	// ReadDir sorts by name, which fixes the paste order and therefore
	// which tile wins on overlap.
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := tilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		y, _ := strconv.Atoi(m[1])
		x, _ := strconv.Atoi(m[2])
		tiles = append(tiles, tileRef{
			path: filepath.Join(dir, e.Name()),
			name: e.Name(),
			x:    x,
			y:    y,
		})
	}
	return tiles, nil
}
