// Package panels provides UI panels for the application.
package panels

import (
	"fmt"
	"image"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"raster-tiler/internal/raster"
	"raster-tiler/internal/tiling"
	"raster-tiler/ui/prefs"
)

// Preference keys for the split form.
const (
	prefInput      = "split.input"
	prefInputT2    = "split.inputT2"
	prefOutput     = "split.output"
	prefTileSize   = "split.tileSize"
	prefOverlap    = "split.overlap"
	prefExtension  = "split.extension"
	prefPattern    = "split.pattern"
	prefBands      = "split.bands"
	prefNormalize  = "split.normalize"
	prefPolicy     = "split.policy"
	prefSceneID    = "split.sceneID"
	prefLabelPath  = "split.labelPath"
	prefFold       = "split.fold"
	prefManifest   = "split.manifest"
	prefSQLite     = "split.sqlite"
	prefT1Base     = "split.t1Base"
	prefT2Base     = "split.t2Base"
)

// SplitPanel drives a split run: input selection, tiling parameters, and
// progress. The run itself executes on a background goroutine; the core
// is invoked with a progress callback that doubles as the cancel poll.
type SplitPanel struct {
	window fyne.Window
	prefs  *prefs.Prefs

	input      *widget.Entry
	inputT2    *widget.Entry
	outputDir  *widget.Entry
	tileSize   *widget.Entry
	overlap    *widget.Entry
	extension  *widget.Select
	pattern    *widget.Entry
	t1Base     *widget.Entry
	t2Base     *widget.Entry
	bands      *widget.Entry
	normalize  *widget.Select
	policy     *widget.Select
	sceneID    *widget.Entry
	labelPath  *widget.Entry
	fold       *widget.Select
	manifest   *widget.Check
	sqlite     *widget.Check
	progress   *widget.ProgressBar
	status     *widget.Label
	splitBtn   *widget.Button
	cancelBtn  *widget.Button

	container fyne.CanvasObject
	running   atomic.Bool
	cancelled atomic.Bool
}

// NewSplitPanel creates the split panel, restoring the last-used values
// from preferences.
func NewSplitPanel(win fyne.Window, p *prefs.Prefs) *SplitPanel {
	sp := &SplitPanel{window: win, prefs: p}

	sp.input = widget.NewEntry()
	sp.input.SetText(p.String(prefInput, ""))
	sp.inputT2 = widget.NewEntry()
	sp.inputT2.SetText(p.String(prefInputT2, ""))
	sp.inputT2.SetPlaceHolder("optional, same dimensions as T1")
	sp.outputDir = widget.NewEntry()
	sp.outputDir.SetText(p.String(prefOutput, ""))

	sp.tileSize = widget.NewEntry()
	sp.tileSize.SetText(strconv.Itoa(p.Int(prefTileSize, 512)))
	sp.overlap = widget.NewEntry()
	sp.overlap.SetText(strconv.FormatFloat(p.Float(prefOverlap, 0), 'f', -1, 64))

	sp.extension = widget.NewSelect(raster.ValidExtensions(), nil)
	sp.extension.SetSelected(p.String(prefExtension, ".png"))

	sp.pattern = widget.NewEntry()
	sp.pattern.SetText(p.String(prefPattern, tiling.DefaultNamePattern))
	sp.t1Base = widget.NewEntry()
	sp.t1Base.SetText(p.String(prefT1Base, ""))
	sp.t1Base.SetPlaceHolder("default: input filename")
	sp.t2Base = widget.NewEntry()
	sp.t2Base.SetText(p.String(prefT2Base, ""))
	sp.t2Base.SetPlaceHolder("default: T1 base + _T2")

	sp.bands = widget.NewEntry()
	sp.bands.SetText(p.String(prefBands, ""))
	sp.bands.SetPlaceHolder("e.g. 0,1,2 (empty = all bands)")

	sp.normalize = widget.NewSelect([]string{"minmax", "clip"}, nil)
	sp.normalize.SetSelected(p.String(prefNormalize, "minmax"))
	sp.policy = widget.NewSelect([]string{"auto", "strict"}, nil)
	sp.policy.SetSelected(p.String(prefPolicy, "auto"))

	sp.sceneID = widget.NewEntry()
	sp.sceneID.SetText(p.String(prefSceneID, ""))
	sp.sceneID.SetPlaceHolder("default: T1 base")
	sp.labelPath = widget.NewEntry()
	sp.labelPath.SetText(p.String(prefLabelPath, ""))
	sp.labelPath.SetPlaceHolder("optional label/annotation path")
	sp.fold = widget.NewSelect([]string{"train", "val", "test"}, nil)
	sp.fold.SetSelected(p.String(prefFold, "train"))

	sp.manifest = widget.NewCheck("Write manifest.csv", nil)
	sp.manifest.SetChecked(p.Bool(prefManifest, true))
	sp.sqlite = widget.NewCheck("Also export manifest.db (SQLite)", nil)
	sp.sqlite.SetChecked(p.Bool(prefSQLite, false))

	sp.progress = widget.NewProgressBar()
	sp.status = widget.NewLabel("")
	sp.status.Wrapping = fyne.TextWrapWord

	sp.splitBtn = widget.NewButton("Split", sp.startSplit)
	sp.cancelBtn = widget.NewButton("Cancel", func() { sp.cancelled.Store(true) })
	sp.cancelBtn.Disable()
	previewBtn := widget.NewButton("Preview First Tile", sp.showPreview)
	resetBtn := widget.NewButton("Reset", sp.resetForm)

	form := widget.NewForm(
		widget.NewFormItem("T1 Input", sp.withBrowse(sp.input, false)),
		widget.NewFormItem("T2 Input", sp.withBrowse(sp.inputT2, false)),
		widget.NewFormItem("Output Folder", sp.withBrowse(sp.outputDir, true)),
		widget.NewFormItem("Tile Size", sp.tileSize),
		widget.NewFormItem("Overlap (%)", sp.overlap),
		widget.NewFormItem("Format", sp.extension),
		widget.NewFormItem("Name Pattern", sp.pattern),
		widget.NewFormItem("Base (T1)", sp.t1Base),
		widget.NewFormItem("Base (T2)", sp.t2Base),
		widget.NewFormItem("Bands", sp.bands),
		widget.NewFormItem("Normalize", sp.normalize),
		widget.NewFormItem("Policy", sp.policy),
		widget.NewFormItem("Scene ID", sp.sceneID),
		widget.NewFormItem("Label Path", sp.labelPath),
		widget.NewFormItem("Fold", sp.fold),
	)

	sp.container = container.NewVScroll(container.NewVBox(
		form,
		sp.manifest,
		sp.sqlite,
		container.NewHBox(sp.splitBtn, sp.cancelBtn, previewBtn, resetBtn),
		sp.progress,
		sp.status,
	))
	return sp
}

// Container returns the panel container.
func (sp *SplitPanel) Container() fyne.CanvasObject {
	return sp.container
}

func (sp *SplitPanel) withBrowse(entry *widget.Entry, folder bool) fyne.CanvasObject {
	browse := widget.NewButton("Browse…", func() {
		if folder {
			dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
				if err == nil && uri != nil {
					entry.SetText(uri.Path())
				}
			}, sp.window)
			return
		}
		dialog.ShowFileOpen(func(r fyne.URIReadCloser, err error) {
			if err == nil && r != nil {
				entry.SetText(r.URI().Path())
				r.Close()
			}
		}, sp.window)
	})
	return container.NewBorder(nil, nil, nil, browse, entry)
}

// options assembles the split options from the form, saving the form to
// preferences as a side effect.
func (sp *SplitPanel) options() (tiling.Options, error) {
	var opts tiling.Options

	tileSize, err := strconv.Atoi(strings.TrimSpace(sp.tileSize.Text))
	if err != nil || tileSize <= 0 {
		return opts, fmt.Errorf("tile size must be a positive integer")
	}
	overlap := 0.0
	if s := strings.TrimSpace(sp.overlap.Text); s != "" {
		overlap, err = strconv.ParseFloat(s, 64)
		if err != nil {
			return opts, fmt.Errorf("overlap (%%) must be a number")
		}
	}
	bands, err := parseBandList(sp.bands.Text)
	if err != nil {
		return opts, err
	}
	normalize, err := tiling.ParseNormalizeMode(sp.normalize.Selected)
	if err != nil {
		return opts, err
	}
	policy, err := tiling.ParsePolicy(sp.policy.Selected)
	if err != nil {
		return opts, err
	}

	opts = tiling.Options{
		PrimaryPath:   strings.TrimSpace(sp.input.Text),
		SecondaryPath: strings.TrimSpace(sp.inputT2.Text),
		OutputDir:     strings.TrimSpace(sp.outputDir.Text),
		TileSize:      tileSize,
		OverlapPct:    overlap,
		Extension:     sp.extension.Selected,
		SelectedBands: bands,
		Normalize:     normalize,
		Policy:        policy,
		NamePattern:   strings.TrimSpace(sp.pattern.Text),
		PrimaryBase:   strings.TrimSpace(sp.t1Base.Text),
		SecondaryBase: strings.TrimSpace(sp.t2Base.Text),
		WriteManifest: sp.manifest.Checked,
		SQLiteExport:  sp.sqlite.Checked,
		SceneID:       strings.TrimSpace(sp.sceneID.Text),
		LabelPath:     strings.TrimSpace(sp.labelPath.Text),
		Fold:          sp.fold.Selected,
	}

	sp.saveForm(opts)
	return opts, nil
}

func (sp *SplitPanel) saveForm(opts tiling.Options) {
	p := sp.prefs
	p.SetString(prefInput, opts.PrimaryPath)
	p.SetString(prefInputT2, opts.SecondaryPath)
	p.SetString(prefOutput, opts.OutputDir)
	p.SetInt(prefTileSize, opts.TileSize)
	p.SetFloat(prefOverlap, opts.OverlapPct)
	p.SetString(prefExtension, opts.Extension)
	p.SetString(prefPattern, opts.NamePattern)
	p.SetString(prefT1Base, opts.PrimaryBase)
	p.SetString(prefT2Base, opts.SecondaryBase)
	p.SetString(prefBands, sp.bands.Text)
	p.SetString(prefNormalize, opts.Normalize.String())
	p.SetString(prefPolicy, opts.Policy.String())
	p.SetString(prefSceneID, opts.SceneID)
	p.SetString(prefLabelPath, opts.LabelPath)
	p.SetString(prefFold, opts.Fold)
	p.SetBool(prefManifest, opts.WriteManifest)
	p.SetBool(prefSQLite, opts.SQLiteExport)
	_ = p.Save()
}

func (sp *SplitPanel) startSplit() {
	if sp.running.Load() {
		return
	}
	opts, err := sp.options()
	if err != nil {
		dialog.ShowError(err, sp.window)
		return
	}

	sp.running.Store(true)
	sp.cancelled.Store(false)
	sp.splitBtn.Disable()
	sp.cancelBtn.Enable()
	sp.progress.SetValue(0)
	sp.status.SetText("Splitting tiles…")

	opts.Progress = func(done, total int) bool {
		sp.progress.SetValue(float64(done) / float64(total))
		return sp.cancelled.Load()
	}

	go func() {
		result, err := tiling.Split(opts)

		sp.running.Store(false)
		sp.splitBtn.Enable()
		sp.cancelBtn.Disable()

		if err != nil {
			sp.status.SetText("Split failed.")
			dialog.ShowError(err, sp.window)
			return
		}
		sp.progress.SetValue(1)

		lines := []string{
			fmt.Sprintf("Tiles: %d (source %dx%d, %s)", result.Tiles, result.Width, result.Height, result.Dtype),
			"T1 dir: " + result.PrimaryDir,
		}
		if result.PrimaryManifest != "" {
			lines = append(lines, "T1 manifest: "+result.PrimaryManifest)
		}
		if result.SecondaryUsed {
			lines = append(lines, "T2 dir: "+result.SecondaryDir)
			if result.SecondaryManifest != "" {
				lines = append(lines, "T2 manifest: "+result.SecondaryManifest)
			}
		}
		if result.Note != "" {
			lines = append(lines, "Note: "+result.Note)
		}
		if result.Cancelled {
			sp.status.SetText("Split cancelled; tiles written so far are valid.")
		} else {
			sp.status.SetText("Split done.")
		}
		dialog.ShowInformation("Splitting complete", strings.Join(lines, "\n"), sp.window)
	}()
}

// showPreview renders the first tile with the current band selection and
// normalization, without writing anything to disk.
func (sp *SplitPanel) showPreview() {
	path := strings.TrimSpace(sp.input.Text)
	if path == "" {
		dialog.ShowError(fmt.Errorf("please select a valid input image (T1)"), sp.window)
		return
	}
	tileSize, err := strconv.Atoi(strings.TrimSpace(sp.tileSize.Text))
	if err != nil || tileSize <= 0 {
		dialog.ShowError(fmt.Errorf("tile size must be a positive integer"), sp.window)
		return
	}
	bands, err := parseBandList(sp.bands.Text)
	if err != nil {
		dialog.ShowError(err, sp.window)
		return
	}
	normalize, err := tiling.ParseNormalizeMode(sp.normalize.Selected)
	if err != nil {
		dialog.ShowError(err, sp.window)
		return
	}

	r, err := raster.Open(path, raster.Options{})
	if err != nil {
		dialog.ShowError(err, sp.window)
		return
	}
	defer r.Close()

	w, h := r.Size()
	crop, err := r.Crop(image.Rect(0, 0, min(w, tileSize), min(h, tileSize)))
	if err != nil {
		dialog.ShowError(err, sp.window)
		return
	}
	buf, err := tiling.Process(crop, bands, normalize)
	if err != nil {
		dialog.ShowError(err, sp.window)
		return
	}

	img := fynecanvas.NewImageFromImage(buf.Image())
	img.FillMode = fynecanvas.ImageFillContain
	img.SetMinSize(fyne.NewSize(384, 384))
	dialog.ShowCustom("Preview — "+filepath.Base(path), "Close", img, sp.window)
}

func (sp *SplitPanel) resetForm() {
	sp.input.SetText("")
	sp.inputT2.SetText("")
	sp.outputDir.SetText("")
	sp.tileSize.SetText("512")
	sp.overlap.SetText("0")
	sp.extension.SetSelected(".png")
	sp.pattern.SetText(tiling.DefaultNamePattern)
	sp.t1Base.SetText("")
	sp.t2Base.SetText("")
	sp.bands.SetText("")
	sp.normalize.SetSelected("minmax")
	sp.policy.SetSelected("auto")
	sp.sceneID.SetText("")
	sp.labelPath.SetText("")
	sp.fold.SetSelected("train")
	sp.manifest.SetChecked(true)
	sp.sqlite.SetChecked(false)
	sp.progress.SetValue(0)
	sp.status.SetText("Reset to defaults.")
	sp.prefs.Reset()
}
