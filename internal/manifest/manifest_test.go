package manifest

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []Row {
	return []Row{
		{SceneID: "scene", TileX: 0, TileY: 0, X0: 0, Y0: 0, W: 256, H: 256,
			T1Path: "t1/a_0_0.png", T2Path: "t2/b_0_0.png", Fold: "train"},
		{SceneID: "scene", TileX: 1, TileY: 0, X0: 256, Y0: 0, W: 128, H: 256,
			T1Path: "t1/a_0_256.png", LabelPath: "labels/a.png", Fold: "val"},
	}
}

func TestWriteLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path, err := Write(sampleRows(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, FileName), path)

	table, err := Load(path)
	require.NoError(t, err)
	require.Len(t, table.Records, 2)

	first := table.Records[0]
	assert.Equal(t, "scene", table.Field(first, "scene_id"))
	assert.Equal(t, "0", table.Field(first, "tile_x"))
	assert.Equal(t, "256", table.Field(first, "w"))
	assert.Equal(t, "t1/a_0_0.png", table.Field(first, "t1_path"))
	assert.Equal(t, "t2/b_0_0.png", table.Field(first, "t2_path"))
	assert.Equal(t, "train", table.Field(first, "fold"))

	second := table.Records[1]
	assert.Equal(t, "labels/a.png", table.Field(second, "label_path"))
	assert.Empty(t, table.Field(second, "t2_path"))
}

func TestWritePreservesRowOrder(t *testing.T) {
	dir := t.TempDir()
	rows := []Row{
		{SceneID: "z", TileX: 1, TileY: 1},
		{SceneID: "a", TileX: 0, TileY: 0},
	}
	path, err := Write(rows, dir)
	require.NoError(t, err)

	table, err := Load(path)
	require.NoError(t, err)
	require.Len(t, table.Records, 2)
	assert.Equal(t, "z", table.Field(table.Records[0], "scene_id"))
	assert.Equal(t, "a", table.Field(table.Records[1], "scene_id"))
}

func TestLoadPadsShortRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.csv")
	csv := "x0,y0,w,h,path\n0,0,4,4\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	table, err := Load(path)
	require.NoError(t, err)
	require.Len(t, table.Records, 1)
	assert.Empty(t, table.Field(table.Records[0], "path"))
}

func TestRequireGeometry(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.csv")
	require.NoError(t, os.WriteFile(path, []byte("y0,w,h,path\n"), 0o644))

	table, err := Load(path)
	require.NoError(t, err)

	err = table.RequireGeometry()
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "x0", schemaErr.Column)
}

func TestDetectPathColumn(t *testing.T) {
	dir := t.TempDir()
	write := func(header string) *Table {
		path := filepath.Join(dir, "m.csv")
		require.NoError(t, os.WriteFile(path, []byte(header+"\n"), 0o644))
		table, err := Load(path)
		require.NoError(t, err)
		return table
	}

	col, err := write("x0,y0,w,h,t1_path,t2_path").DetectPathColumn("")
	require.NoError(t, err)
	assert.Equal(t, "t1_path", col)

	col, err = write("x0,y0,w,h,path").DetectPathColumn("")
	require.NoError(t, err)
	assert.Equal(t, "path", col)

	col, err = write("x0,y0,w,h,t1_path,t2_path").DetectPathColumn("t2_path")
	require.NoError(t, err)
	assert.Equal(t, "t2_path", col)

	_, err = write("x0,y0,w,h,t1_path").DetectPathColumn("t2_path")
	var schemaErr *SchemaError
	assert.ErrorAs(t, err, &schemaErr)

	_, err = write("x0,y0,w,h").DetectPathColumn("")
	assert.ErrorAs(t, err, &schemaErr)
}

func TestExportSQLite(t *testing.T) {
	dir := t.TempDir()
	path, err := ExportSQLite(sampleRows(), dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DBFileName), path)

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM tiles").Scan(&count))
	assert.Equal(t, 2, count)

	var scene, fold string
	var w int
	require.NoError(t, db.QueryRow(
		"SELECT scene_id, fold, w FROM tiles WHERE tile_x = 1").Scan(&scene, &fold, &w))
	assert.Equal(t, "scene", scene)
	assert.Equal(t, "val", fold)
	assert.Equal(t, 128, w)

	// Re-export replaces the previous file instead of appending.
	_, err = ExportSQLite(sampleRows()[:1], dir)
	require.NoError(t, err)
	db2, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db2.Close()
	require.NoError(t, db2.QueryRow("SELECT COUNT(*) FROM tiles").Scan(&count))
	assert.Equal(t, 1, count)
}
