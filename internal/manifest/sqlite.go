package manifest

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DBFileName is the optional SQLite export written next to manifest.csv.
const DBFileName = "manifest.db"

const createTiles = `CREATE TABLE IF NOT EXISTS tiles (
	scene_id   TEXT NOT NULL,
	tile_x     INTEGER NOT NULL,
	tile_y     INTEGER NOT NULL,
	x0         INTEGER NOT NULL,
	y0         INTEGER NOT NULL,
	w          INTEGER NOT NULL,
	h          INTEGER NOT NULL,
	t1_path    TEXT NOT NULL,
	t2_path    TEXT NOT NULL DEFAULT '',
	label_path TEXT NOT NULL DEFAULT '',
	fold       TEXT NOT NULL DEFAULT 'train'
)`

// ExportSQLite writes rows to dir/manifest.db, replacing any previous
// export. This is a convenience artifact: callers treat a failure here as
// advisory, never as a failure of the CSV manifest.
func ExportSQLite(rows []Row, dir string) (string, error) {
	path := filepath.Join(dir, DBFileName)
	// Replace rather than append so re-runs stay idempotent, like tile
	// files and the CSV.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to replace %q: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return "", fmt.Errorf("failed to open sqlite export: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(createTiles); err != nil {
		return "", fmt.Errorf("failed to create tiles table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin sqlite transaction: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO tiles
		(scene_id, tile_x, tile_y, x0, y0, w, h, t1_path, t2_path, label_path, fold)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("failed to prepare insert: %w", err)
	}
	for _, r := range rows {
		if _, err := stmt.Exec(r.SceneID, r.TileX, r.TileY, r.X0, r.Y0, r.W, r.H,
			r.T1Path, r.T2Path, r.LabelPath, r.Fold); err != nil {
			stmt.Close()
			tx.Rollback()
			return "", fmt.Errorf("failed to insert tile row: %w", err)
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit sqlite export: %w", err)
	}
	return path, nil
}
