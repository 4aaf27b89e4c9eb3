// Package manifest reads and writes the per-tile provenance table. The
// primary artifact is manifest.csv; an optional SQLite export exists as a
// query convenience and is never required for correctness.
package manifest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// FileName is the manifest file written into each tile directory.
const FileName = "manifest.csv"

// Columns is the fixed CSV column order.
var Columns = []string{
	"scene_id", "tile_x", "tile_y", "x0", "y0", "w", "h",
	"t1_path", "t2_path", "label_path", "fold",
}

// PathColumns are the accepted tile-path column names when reading,
// in detection order.
var PathColumns = []string{"t1_path", "t2_path", "path"}

// Row is one tile's provenance record. Rows are created once at write
// time and never mutated.
type Row struct {
	SceneID   string
	TileX     int
	TileY     int
	X0        int
	Y0        int
	W         int
	H         int
	T1Path    string
	T2Path    string
	LabelPath string
	Fold      string
}

func (r Row) record() []string {
	return []string{
		r.SceneID,
		strconv.Itoa(r.TileX), strconv.Itoa(r.TileY),
		strconv.Itoa(r.X0), strconv.Itoa(r.Y0),
		strconv.Itoa(r.W), strconv.Itoa(r.H),
		r.T1Path, r.T2Path, r.LabelPath, r.Fold,
	}
}

// Write serializes rows to dir/manifest.csv in their given order, header
// first. Rows are never reordered or deduplicated.
func Write(rows []Row, dir string) (string, error) {
	path := filepath.Join(dir, FileName)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create manifest: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write manifest header: %w", err)
	}
	for _, r := range rows {
		if err := w.Write(r.record()); err != nil {
			f.Close()
			return "", fmt.Errorf("failed to write manifest row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to flush manifest: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close manifest: %w", err)
	}
	return path, nil
}

// SchemaError reports a manifest missing a required column.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	if e.Column == "path" {
		return "manifest must contain a path column (t1_path / t2_path / path)"
	}
	return fmt.Sprintf("manifest missing column: %s", e.Column)
}

// Table is a loaded manifest, rows in file order.
type Table struct {
	columns map[string]int
	Records [][]string
}

// Load reads a manifest CSV. Short records are padded so column lookups
// stay safe; no schema validation happens here beyond the header parse.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("manifest %q is empty", path)
	}

	t := &Table{columns: make(map[string]int, len(all[0]))}
	for i, name := range all[0] {
		t.columns[name] = i
	}
	width := len(all[0])
	for _, rec := range all[1:] {
		for len(rec) < width {
			rec = append(rec, "")
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

// Column returns the index of the named column, or -1.
func (t *Table) Column(name string) int {
	if i, ok := t.columns[name]; ok {
		return i
	}
	return -1
}

// Field returns the named column's value in rec, or "".
func (t *Table) Field(rec []string, name string) string {
	i := t.Column(name)
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

// RequireGeometry verifies the x0/y0/w/h columns exist.
func (t *Table) RequireGeometry() error {
	for _, name := range []string{"x0", "y0", "w", "h"} {
		if t.Column(name) < 0 {
			return &SchemaError{Column: name}
		}
	}
	return nil
}

// DetectPathColumn returns the tile-path column to read. An explicit
// preferred name must exist; otherwise the first present PathColumns
// entry wins.
func (t *Table) DetectPathColumn(preferred string) (string, error) {
	if preferred != "" {
		if t.Column(preferred) < 0 {
			return "", &SchemaError{Column: preferred}
		}
		return preferred, nil
	}
	for _, name := range PathColumns {
		if t.Column(name) >= 0 {
			return name, nil
		}
	}
	return "", &SchemaError{Column: "path"}
}
