// Command tilesplit splits a raster into fixed-size tiles from the command line.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"raster-tiler/internal/storage"
	"raster-tiler/internal/tiling"
)

func main() {
	input := flag.String("in", "", "Path to the primary (T1) input image")
	inputT2 := flag.String("t2", "", "Path to the optional secondary (T2) input image")
	output := flag.String("out", "", "Output directory")
	size := flag.Int("size", 512, "Tile size in pixels")
	overlap := flag.Float64("overlap", 0, "Overlap between adjacent tiles in percent")
	ext := flag.String("ext", ".png", "Tile file extension (.png, .jpg, .tif, .webp)")
	bands := flag.String("bands", "", "Comma-separated band indices, e.g. 0,1,2 (empty = all)")
	normalize := flag.String("normalize", "minmax", "Normalization for deep rasters: minmax or clip")
	policy := flag.String("policy", "auto", "Format compatibility policy: auto or strict")
	pattern := flag.String("pattern", tiling.DefaultNamePattern, "Tile name pattern")
	base := flag.String("base", "", "Base name for T1 tiles (default: input filename)")
	baseT2 := flag.String("t2-base", "", "Base name for T2 tiles (default: T1 base + _T2)")
	scene := flag.String("scene", "", "Scene identifier recorded in the manifest")
	label := flag.String("label", "", "Label path recorded in the manifest")
	fold := flag.String("fold", "train", "Fold recorded in the manifest (train/val/test)")
	manifest := flag.Bool("manifest", true, "Write manifest.csv next to the tiles")
	sqlite := flag.Bool("sqlite", false, "Also export manifest.db (SQLite)")
	maxPixels := flag.Int64("max-pixels", 0, "Pixel budget for input images (0 = default, -1 = unlimited)")
	quiet := flag.Bool("q", false, "Suppress progress output")

	s3Bucket := flag.String("s3-bucket", "", "Upload results to this S3 bucket after splitting")
	s3Prefix := flag.String("s3-prefix", "", "Key prefix for uploaded objects")
	s3Endpoint := flag.String("s3-endpoint", "", "Custom S3 endpoint (e.g. MinIO)")
	s3Region := flag.String("s3-region", "us-east-1", "S3 region")
	flag.Parse()

	if *input == "" || *output == "" {
		fmt.Println("Usage: tilesplit -in <image> -out <dir> [-t2 <image>] [-size N] [-overlap PCT] ...")
		os.Exit(1)
	}

	bandList, err := parseBands(*bands)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tilesplit: %v\n", err)
		os.Exit(1)
	}
	normMode, err := tiling.ParseNormalizeMode(*normalize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tilesplit: %v\n", err)
		os.Exit(1)
	}
	polMode, err := tiling.ParsePolicy(*policy)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tilesplit: %v\n", err)
		os.Exit(1)
	}

	opts := tiling.Options{
		PrimaryPath:   *input,
		SecondaryPath: *inputT2,
		OutputDir:     *output,
		TileSize:      *size,
		OverlapPct:    *overlap,
		Extension:     *ext,
		SelectedBands: bandList,
		Normalize:     normMode,
		Policy:        polMode,
		NamePattern:   *pattern,
		PrimaryBase:   *base,
		SecondaryBase: *baseT2,
		WriteManifest: *manifest,
		SQLiteExport:  *sqlite,
		SceneID:       *scene,
		LabelPath:     *label,
		Fold:          *fold,
		MaxPixels:     *maxPixels,
	}
	if !*quiet {
		opts.Progress = func(done, total int) bool {
			fmt.Printf("\rTiles: %d/%d", done, total)
			return false
		}
	}

	result, err := tiling.Split(opts)
	if !*quiet {
		fmt.Println()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "tilesplit: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %d tiles from %dx%d (%s) to %s\n",
		result.Tiles, result.Width, result.Height, result.Dtype, result.PrimaryDir)
	if result.SecondaryUsed {
		fmt.Printf("T2 tiles written to %s\n", result.SecondaryDir)
	}
	if result.PrimaryManifest != "" {
		fmt.Printf("Manifest: %s\n", result.PrimaryManifest)
	}
	if result.Note != "" {
		fmt.Printf("Note: %s\n", result.Note)
	}

	if *s3Bucket != "" {
		// In dual-time mode the tiles live under T1/ and T2/, so each role
		// directory is uploaded under its own key prefix.
		type target struct {
			dir    string
			prefix string
		}
		targets := []target{{result.PrimaryDir, *s3Prefix}}
		if result.SecondaryUsed {
			targets = []target{
				{result.PrimaryDir, joinKey(*s3Prefix, "T1")},
				{result.SecondaryDir, joinKey(*s3Prefix, "T2")},
			}
		}

		uploaded := 0
		for _, tgt := range targets {
			cfg := storage.Config{
				Endpoint:  *s3Endpoint,
				Region:    *s3Region,
				AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
				SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
				Bucket:    *s3Bucket,
				Prefix:    tgt.prefix,
				Dir:       tgt.dir,
			}
			n, err := storage.UploadDir(context.Background(), cfg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "tilesplit: upload failed: %v\n", err)
				os.Exit(1)
			}
			uploaded += n
		}
		fmt.Printf("Uploaded %d files to s3://%s/%s\n", uploaded, *s3Bucket, *s3Prefix)
	}
}

func joinKey(prefix, sub string) string {
	if prefix == "" {
		return sub
	}
	return prefix + "/" + sub
}

func parseBands(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var bands []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idx, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid band index %q", part)
		}
		bands = append(bands, idx)
	}
	return bands, nil
}
