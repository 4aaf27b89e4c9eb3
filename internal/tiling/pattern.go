package tiling

import (
	"fmt"
	"strconv"
	"strings"
)

// RenderName expands a tile name pattern. Tokens: {base} {y} {x} {row}
// {col} {i} {ext}; {i} accepts an integer format spec such as {i:05d}.
// If the rendered name lacks the target extension it is appended. ext
// must already be normalized.
func RenderName(pattern, base string, y, x, i int, ext string) (string, error) {
	var b strings.Builder
	for pos := 0; pos < len(pattern); {
		ch := pattern[pos]
		if ch != '{' {
			b.WriteByte(ch)
			pos++
			continue
		}
		end := strings.IndexByte(pattern[pos:], '}')
		if end < 0 {
			return "", &PatternError{Token: pattern[pos:]}
		}
		token := pattern[pos+1 : pos+end]
		pos += end + 1

		switch token {
		case "base":
			b.WriteString(base)
		case "y", "row":
			b.WriteString(strconv.Itoa(y))
		case "x", "col":
			b.WriteString(strconv.Itoa(x))
		case "i":
			b.WriteString(strconv.Itoa(i))
		case "ext":
			b.WriteString(strings.TrimPrefix(ext, "."))
		default:
			if spec, ok := strings.CutPrefix(token, "i:"); ok {
				s, err := formatInt(i, spec)
				if err != nil {
					return "", &PatternError{Token: "{" + token + "}"}
				}
				b.WriteString(s)
				continue
			}
			return "", &PatternError{Token: "{" + token + "}"}
		}
	}

	name := b.String()
	if !strings.HasSuffix(strings.ToLower(name), ext) {
		name += ext
	}
	return name, nil
}

// formatInt applies a Python-style integer format spec ("d", "5d",
// "05d") to v.
func formatInt(v int, spec string) (string, error) {
	if spec == "" || spec == "d" {
		return strconv.Itoa(v), nil
	}
	if !strings.HasSuffix(spec, "d") {
		return "", fmt.Errorf("unsupported format spec %q", spec)
	}
	width := strings.TrimSuffix(spec, "d")
	pad := false
	if strings.HasPrefix(width, "0") {
		pad = true
		width = strings.TrimPrefix(width, "0")
	}
	n := 0
	if width != "" {
		var err error
		n, err = strconv.Atoi(width)
		if err != nil {
			return "", fmt.Errorf("unsupported format spec %q", spec)
		}
	}
	if pad {
		return fmt.Sprintf("%0*d", n, v), nil
	}
	return fmt.Sprintf("%*d", n, v), nil
}
