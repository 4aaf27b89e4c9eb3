// Command tilemerge reassembles tiles into a single raster from the command line.
package main

import (
	"flag"
	"fmt"
	"os"

	"raster-tiler/internal/merge"
)

func main() {
	tilesDir := flag.String("tiles", "", "Folder of tiles named <base>_<y>_<x>.<ext>")
	manifest := flag.String("manifest", "", "Manifest CSV to merge from instead of a folder")
	output := flag.String("o", "", "Output image path")
	fold := flag.String("fold", "", "Only merge manifest rows with this fold value")
	column := flag.String("col", "", "Manifest path column to use (default: auto-detect)")
	estimate := flag.Bool("estimate", false, "Print the estimated output size and exit")
	quiet := flag.Bool("q", false, "Suppress progress output")
	flag.Parse()

	if *tilesDir == "" && *manifest == "" {
		fmt.Println("Usage: tilemerge {-tiles <dir> | -manifest <csv>} -o <image> [-fold F] [-col C]")
		os.Exit(1)
	}

	if *estimate {
		if *tilesDir == "" {
			fmt.Fprintln(os.Stderr, "tilemerge: -estimate requires -tiles")
			os.Exit(1)
		}
		w, h, mode, err := merge.Estimate(*tilesDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "tilemerge: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Estimated output: %dx%d (%s)\n", w, h, mode)
		return
	}

	if *output == "" {
		fmt.Fprintln(os.Stderr, "tilemerge: -o is required")
		os.Exit(1)
	}

	var progress merge.ProgressFunc
	if !*quiet {
		progress = func(done, total int) bool {
			fmt.Printf("\rTiles: %d/%d", done, total)
			return false
		}
	}

	var (
		w, h int
		err  error
	)
	if *manifest != "" {
		w, h, err = merge.FromManifest(*manifest, *output, merge.ManifestOptions{
			FoldFilter: *fold,
			PathColumn: *column,
			Progress:   progress,
		})
	} else {
		w, h, err = merge.FromFolder(*tilesDir, *output, progress)
	}
	if !*quiet {
		fmt.Println()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "tilemerge: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Merged %dx%d image written to %s\n", w, h, *output)
}
