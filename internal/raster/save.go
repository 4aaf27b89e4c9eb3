package raster

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// validExts lists the output extensions the saver understands.
var validExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// ValidExtensions returns the supported output extensions, sorted.
func ValidExtensions() []string {
	exts := make([]string, 0, len(validExts))
	for e := range validExts {
		exts = append(exts, e)
	}
	sort.Strings(exts)
	return exts
}

// NormalizeExt lower-cases ext, ensures a leading dot, and rejects
// extensions the saver cannot write.
func NormalizeExt(ext string) (string, error) {
	if ext == "" {
		return "", fmt.Errorf("output extension is empty")
	}
	e := strings.ToLower(ext)
	if !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	if !validExts[e] {
		return "", fmt.Errorf("unsupported extension %q, supported: %s",
			ext, strings.Join(ValidExtensions(), " "))
	}
	return e, nil
}

// SaveImage encodes img to path in the format implied by its extension.
// JPEG is written at quality 95; WEBP is written lossless.
func SaveImage(img image.Image, path string) error {
	ext, err := NormalizeExt(filepath.Ext(path))
	if err != nil {
		return err
	}

	if ext == ".webp" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %q: %w", path, err)
		}
		if err := webp.Encode(f, img, &webp.Options{Lossless: true}); err != nil {
			f.Close()
			return fmt.Errorf("failed to encode webp %q: %w", path, err)
		}
		return f.Close()
	}

	if err := imaging.Save(img, path, imaging.JPEGQuality(95)); err != nil {
		return fmt.Errorf("failed to save %q: %w", path, err)
	}
	return nil
}
