package tiling

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"raster-tiler/internal/manifest"
	"raster-tiler/internal/raster"
)

// ProgressFunc is invoked once per tile before the tile is processed.
// Returning true requests cooperative cancellation; the run stops before
// the next tile so every tile file on disk is complete.
type ProgressFunc func(done, total int) bool

// Options configures a split run. PrimaryPath, OutputDir, and TileSize
// are required; everything else has a working default.
type Options struct {
	PrimaryPath   string
	SecondaryPath string // optional co-registered raster, tiled on the identical grid
	OutputDir     string

	TileSize   int
	OverlapPct float64
	Extension  string // output tile format, default ".png"

	SelectedBands []int
	Normalize     NormalizeMode
	Policy        Policy

	// NamePattern names tile files; see RenderName for the tokens.
	NamePattern string
	// PrimaryBase overrides the {base} token for primary tiles; defaults
	// to the primary file's stem. SecondaryBase defaults to the primary
	// base plus "_T2".
	PrimaryBase   string
	SecondaryBase string

	WriteManifest bool
	SQLiteExport  bool // also write manifest.db next to each manifest.csv
	SceneID       string
	LabelPath     string
	Fold          string

	// MaxPixels is passed to the image accessor; zero applies its default
	// budget.
	MaxPixels int64

	Progress ProgressFunc
}

// DefaultNamePattern is the tile name pattern used when none is given.
// The trailing _{y}_{x} is what folder-merge recovers positions from.
const DefaultNamePattern = "{base}_tile_{y}_{x}"

// Result summarizes a finished (or cancelled) split run.
type Result struct {
	Tiles  int // grid positions processed
	Width  int // source raster width
	Height int // source raster height
	Dtype  string

	PrimaryDir   string
	SecondaryDir string

	PrimaryManifest   string // empty if no rows were written
	SecondaryManifest string

	SecondaryUsed bool
	Cancelled     bool

	// Note carries the first advisory encountered (format truncation or a
	// secondary-tile failure). Later advisories are dropped to avoid
	// repeating the same warning across thousands of tiles.
	Note string
}

// Split streams a raster (or a co-registered pair) to tiles on disk.
// Validation happens before any file is touched; the primary raster is
// required and its failures are fatal, while secondary failures degrade
// to advisory notes.
func Split(opts Options) (*Result, error) {
	ext, err := validate(&opts)
	if err != nil {
		return nil, err
	}

	primary, err := raster.Open(opts.PrimaryPath, raster.Options{MaxPixels: opts.MaxPixels})
	if err != nil {
		return nil, err
	}
	defer primary.Close()

	w, h := primary.Size()
	res := &Result{Width: w, Height: h, Dtype: primary.Dtype()}

	// The secondary raster is optional enrichment: a missing, unreadable,
	// or size-mismatched file drops it and the run proceeds primary-only.
	var secondary *raster.Raster
	if opts.SecondaryPath != "" {
		if s, err := raster.Open(opts.SecondaryPath, raster.Options{MaxPixels: opts.MaxPixels}); err == nil {
			if sw, sh := s.Size(); sw == w && sh == h {
				secondary = s
				defer secondary.Close()
			} else {
				s.Close()
			}
		}
	}
	res.SecondaryUsed = secondary != nil

	grid, err := Plan(h, w, opts.TileSize, opts.OverlapPct)
	if err != nil {
		return nil, err
	}

	primaryBase := opts.PrimaryBase
	if primaryBase == "" {
		primaryBase = stem(opts.PrimaryPath)
	}
	secondaryBase := opts.SecondaryBase
	if secondaryBase == "" {
		secondaryBase = primaryBase + "_T2"
	}

	res.PrimaryDir = opts.OutputDir
	if secondary != nil {
		res.PrimaryDir = filepath.Join(opts.OutputDir, "T1")
		res.SecondaryDir = filepath.Join(opts.OutputDir, "T2")
	}
	if err := os.MkdirAll(res.PrimaryDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create output directory: %w", err)
	}
	if secondary != nil {
		if err := os.MkdirAll(res.SecondaryDir, 0o755); err != nil {
			return nil, fmt.Errorf("could not create output directory: %w", err)
		}
	}

	sceneID := opts.SceneID
	if sceneID == "" {
		sceneID = primaryBase
	}
	fold := strings.ToLower(opts.Fold)
	if fold == "" {
		fold = "train"
	}

	var rows []manifest.Row
	total := len(grid.Specs)

	for i, spec := range grid.Specs {
		if opts.Progress != nil && opts.Progress(i, total) {
			res.Cancelled = true
			break
		}

		primaryName, err := RenderName(opts.NamePattern, primaryBase, spec.Y0, spec.X0, i, ext)
		if err != nil {
			return nil, err
		}
		primaryPath := filepath.Join(res.PrimaryDir, primaryName)

		note, err := writeTile(primary, spec, opts, ext, primaryPath)
		if err != nil {
			// Flush whatever provenance we have: tiles already on disk
			// stay valid and the manifest should describe them.
			flushManifests(rows, res, secondary != nil, opts)
			return nil, &TileError{X: spec.X0, Y: spec.Y0, Err: err}
		}
		if res.Note == "" {
			res.Note = note
		}

		secondaryPath := ""
		if secondary != nil {
			name, err := RenderName(opts.NamePattern, secondaryBase, spec.Y0, spec.X0, i, ext)
			if err != nil {
				return nil, err
			}
			path := filepath.Join(res.SecondaryDir, name)
			if _, err := writeTile(secondary, spec, opts, ext, path); err != nil {
				if res.Note == "" {
					res.Note = fmt.Sprintf("secondary tile failed at (y=%d, x=%d): %v", spec.Y0, spec.X0, err)
				}
			} else {
				secondaryPath = path
			}
		}

		if opts.WriteManifest {
			rows = append(rows, manifest.Row{
				SceneID:   sceneID,
				TileX:     spec.X0 / grid.Step,
				TileY:     spec.Y0 / grid.Step,
				X0:        spec.X0,
				Y0:        spec.Y0,
				W:         spec.Width(),
				H:         spec.Height(),
				T1Path:    primaryPath,
				T2Path:    secondaryPath,
				LabelPath: opts.LabelPath,
				Fold:      fold,
			})
		}
		res.Tiles++
	}

	if err := flushManifests(rows, res, secondary != nil, opts); err != nil {
		return nil, err
	}
	return res, nil
}

func validate(opts *Options) (string, error) {
	if opts.PrimaryPath == "" {
		return "", &ConfigError{Param: "primary_path", Reason: "input image path is empty"}
	}
	if opts.OutputDir == "" {
		return "", &ConfigError{Param: "output_dir", Reason: "output directory is empty"}
	}
	if opts.TileSize <= 0 {
		return "", &ConfigError{Param: "tile_size", Reason: "must be a positive integer"}
	}
	if opts.OverlapPct < 0 || opts.OverlapPct >= 100 {
		return "", &ConfigError{Param: "overlap_pct", Reason: "must be in [0, 100)"}
	}
	if err := ValidateBands(opts.SelectedBands); err != nil {
		return "", err
	}
	if opts.NamePattern == "" {
		opts.NamePattern = DefaultNamePattern
	}
	if opts.Extension == "" {
		opts.Extension = ".png"
	}
	ext, err := raster.NormalizeExt(opts.Extension)
	if err != nil {
		return "", &ConfigError{Param: "extension", Reason: err.Error()}
	}
	// Dry-run the pattern so token errors surface before any I/O.
	if _, err := RenderName(opts.NamePattern, "probe", 0, 0, 0, ext); err != nil {
		return "", err
	}
	return ext, nil
}

// writeTile runs one raster through crop, band/normalize, format guard,
// and encode. Returns the format guard's advisory note, if any.
func writeTile(r *raster.Raster, spec TileSpec, opts Options, ext, path string) (string, error) {
	crop, err := r.Crop(spec.Rect())
	if err != nil {
		return "", err
	}
	buf, err := Process(crop, opts.SelectedBands, opts.Normalize)
	if err != nil {
		return "", err
	}
	buf, note, err := Reconcile(buf, ext, opts.Policy)
	if err != nil {
		return "", err
	}
	if err := raster.SaveImage(buf.Image(), path); err != nil {
		return note, err
	}
	return note, nil
}

func flushManifests(rows []manifest.Row, res *Result, dual bool, opts Options) error {
	if !opts.WriteManifest || len(rows) == 0 {
		return nil
	}
	path, err := manifest.Write(rows, res.PrimaryDir)
	if err != nil {
		return fmt.Errorf("failed to write manifest CSV: %w", err)
	}
	res.PrimaryManifest = path
	if dual {
		path, err := manifest.Write(rows, res.SecondaryDir)
		if err != nil {
			return fmt.Errorf("failed to write manifest CSV: %w", err)
		}
		res.SecondaryManifest = path
	}
	if opts.SQLiteExport {
		// Convenience artifact only; its absence never fails the run.
		if _, err := manifest.ExportSQLite(rows, res.PrimaryDir); err != nil && res.Note == "" {
			res.Note = fmt.Sprintf("sqlite export skipped: %v", err)
		}
	}
	return nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
