package panels

import (
	"fmt"
	"strconv"
	"strings"
)

// parseBandList parses a comma-separated list of band indices, e.g.
// "0,1,2". An empty string means all bands.
func parseBandList(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	bands := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid band index %q: expected an integer", part)
		}
		bands = append(bands, idx)
	}
	return bands, nil
}
