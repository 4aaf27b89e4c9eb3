// Package help holds the user-facing help page shown in the GUI.
package help

import "strings"

const text = `# {APP_TITLE} — {APP_VERSION}

## Quick overview

This tool prepares very large imagery for deep learning:

- Split an image into tiles with an optional overlap (as a percentage).
- Optionally split a second image (T2) on the exact same grid.
- Write a manifest for T1 and for T2, each in its own folder.
- Merge tiles back either from filenames or from a manifest.csv.

## Core inputs

1. T1 Input: the main image to be tiled.
2. T2 Input (optional): must have the exact same dimensions as T1,
   otherwise it is skipped.
3. Output Folder: subfolders T1/ and T2/ are created when T2 is used.
4. Tile Size: tile width and height in pixels (e.g. 256, 512, 1024).
5. Overlap (%): percentage of tile size, 0 up to (not including) 100.
6. Output Format: .png / .jpg / .jpeg / .tif / .tiff / .webp.
7. Base (T1/T2): filename prefix. If empty, Base(T1) is the T1 filename
   without extension and Base(T2) is Base(T1) + "_T2".
8. Filename Pattern with tokens {base} {y} {x} {row} {col} {i} {ext},
   for example "{base}_tile_{y}_{x}" or "{base}_{y}_{x}" with "{i:05d}"
   for zero-padded indices. Merge-from-folder expects the name to end
   with _y_x.

## Band selection

If your image has multiple bands, choose which bands to export. JPEG and
WEBP outputs need 1 (grayscale) or 3 (RGB) channels; PNG and TIFF carry
up to 4. A two-band selection written to PNG/TIFF is stored as
luminance + alpha (the first band replicated to RGB, the second as the
alpha channel), so it decodes as an RGBA file.

## Manifest

Columns: scene_id, tile_x, tile_y, x0, y0, w, h, t1_path, t2_path,
label_path, fold. tile_x/tile_y are grid indices (step = tile_size -
overlap_px); x0/y0 is the tile's top-left pixel in the source; w/h is
the tile's on-disk size. An optional manifest.db (SQLite) can be written
alongside for ad-hoc queries.

## Merge

- From Folder: requires filenames ending with _y_x.ext.
- From manifest.csv (recommended): reads x0, y0, w, h and the path
  column (t1_path / t2_path / path), optionally filtered by fold.
  Manifest-based merge is more accurate because it uses exact
  coordinates and does not rely on a naming scheme.

## Common errors

- "overlap leaves no step": decrease the overlap or increase tile size.
- "T2 dimensions do not match": T2 must have the same size as T1; the
  split continues with T1 only.
- "exceeding the budget": the image is larger than the configured pixel
  budget; raise it or tile a smaller source.
- "unsupported image format": convert to TIFF/PNG/JPEG/WEBP first.
`

// Text returns the help page with the title and version substituted.
// The page is Markdown, rendered by the GUI's rich text widget.
func Text(appTitle, appVersion string) string {
	s := strings.ReplaceAll(text, "{APP_TITLE}", appTitle)
	return strings.ReplaceAll(s, "{APP_VERSION}", appVersion)
}
