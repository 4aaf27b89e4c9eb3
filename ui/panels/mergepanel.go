package panels

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"raster-tiler/internal/merge"
	"raster-tiler/ui/prefs"
)

const (
	prefMergeTiles    = "merge.tilesDir"
	prefMergeManifest = "merge.manifest"
	prefMergeOutput   = "merge.output"
	prefMergeFold     = "merge.fold"
	prefMergePathCol  = "merge.pathColumn"
)

// MergePanel reassembles tiles into a single image, either from a folder
// of filename-indexed tiles or from a manifest with declared geometry.
type MergePanel struct {
	window fyne.Window
	prefs  *prefs.Prefs

	tilesDir     *widget.Entry
	manifestPath *widget.Entry
	output       *widget.Entry
	foldFilter   *widget.Entry
	pathColumn   *widget.Select
	progress     *widget.ProgressBar
	status       *widget.Label
	folderBtn    *widget.Button
	manifestBtn  *widget.Button
	cancelBtn    *widget.Button

	container fyne.CanvasObject
	running   atomic.Bool
	cancelled atomic.Bool
}

// NewMergePanel creates the merge panel.
func NewMergePanel(win fyne.Window, p *prefs.Prefs) *MergePanel {
	mp := &MergePanel{window: win, prefs: p}

	mp.tilesDir = widget.NewEntry()
	mp.tilesDir.SetText(p.String(prefMergeTiles, ""))
	mp.manifestPath = widget.NewEntry()
	mp.manifestPath.SetText(p.String(prefMergeManifest, ""))
	mp.manifestPath.SetPlaceHolder("manifest.csv for manifest-driven merge")
	mp.output = widget.NewEntry()
	mp.output.SetText(p.String(prefMergeOutput, ""))
	mp.output.SetPlaceHolder("e.g. merged.png")

	mp.foldFilter = widget.NewEntry()
	mp.foldFilter.SetText(p.String(prefMergeFold, ""))
	mp.foldFilter.SetPlaceHolder("optional fold filter, e.g. val")

	mp.pathColumn = widget.NewSelect([]string{"(auto)", "t1_path", "t2_path", "path"}, nil)
	mp.pathColumn.SetSelected(p.String(prefMergePathCol, "(auto)"))

	mp.progress = widget.NewProgressBar()
	mp.status = widget.NewLabel("")
	mp.status.Wrapping = fyne.TextWrapWord

	estimateBtn := widget.NewButton("Estimate Size", mp.estimate)
	mp.folderBtn = widget.NewButton("Merge Folder", mp.mergeFolder)
	mp.manifestBtn = widget.NewButton("Merge From Manifest", mp.mergeManifest)
	mp.cancelBtn = widget.NewButton("Cancel", func() { mp.cancelled.Store(true) })
	mp.cancelBtn.Disable()

	form := widget.NewForm(
		widget.NewFormItem("Tiles Folder", mp.withFolderBrowse(mp.tilesDir)),
		widget.NewFormItem("Manifest", mp.withFileBrowse(mp.manifestPath)),
		widget.NewFormItem("Output Image", mp.withSaveBrowse(mp.output)),
		widget.NewFormItem("Fold Filter", mp.foldFilter),
		widget.NewFormItem("Path Column", mp.pathColumn),
	)

	mp.container = container.NewVScroll(container.NewVBox(
		form,
		container.NewHBox(estimateBtn, mp.folderBtn, mp.manifestBtn, mp.cancelBtn),
		mp.progress,
		mp.status,
	))
	return mp
}

// Container returns the panel container.
func (mp *MergePanel) Container() fyne.CanvasObject {
	return mp.container
}

func (mp *MergePanel) withFolderBrowse(entry *widget.Entry) fyne.CanvasObject {
	browse := widget.NewButton("Browse…", func() {
		dialog.ShowFolderOpen(func(uri fyne.ListableURI, err error) {
			if err == nil && uri != nil {
				entry.SetText(uri.Path())
			}
		}, mp.window)
	})
	return container.NewBorder(nil, nil, nil, browse, entry)
}

func (mp *MergePanel) withFileBrowse(entry *widget.Entry) fyne.CanvasObject {
	browse := widget.NewButton("Browse…", func() {
		dialog.ShowFileOpen(func(r fyne.URIReadCloser, err error) {
			if err == nil && r != nil {
				entry.SetText(r.URI().Path())
				r.Close()
			}
		}, mp.window)
	})
	return container.NewBorder(nil, nil, nil, browse, entry)
}

func (mp *MergePanel) withSaveBrowse(entry *widget.Entry) fyne.CanvasObject {
	browse := widget.NewButton("Browse…", func() {
		dialog.ShowFileSave(func(w fyne.URIWriteCloser, err error) {
			if err == nil && w != nil {
				entry.SetText(w.URI().Path())
				w.Close()
			}
		}, mp.window)
	})
	return container.NewBorder(nil, nil, nil, browse, entry)
}

func (mp *MergePanel) saveForm() {
	p := mp.prefs
	p.SetString(prefMergeTiles, mp.tilesDir.Text)
	p.SetString(prefMergeManifest, mp.manifestPath.Text)
	p.SetString(prefMergeOutput, mp.output.Text)
	p.SetString(prefMergeFold, mp.foldFilter.Text)
	p.SetString(prefMergePathCol, mp.pathColumn.Selected)
	_ = p.Save()
}

func (mp *MergePanel) estimate() {
	dir := strings.TrimSpace(mp.tilesDir.Text)
	if dir == "" {
		dialog.ShowError(fmt.Errorf("please select a tiles folder"), mp.window)
		return
	}
	mp.saveForm()
	w, h, mode, err := merge.Estimate(dir)
	if err != nil {
		dialog.ShowError(err, mp.window)
		return
	}
	dialog.ShowInformation("Estimated output",
		fmt.Sprintf("Approximately %dx%d pixels (%s).", w, h, mode), mp.window)
}

func (mp *MergePanel) mergeFolder() {
	dir := strings.TrimSpace(mp.tilesDir.Text)
	out := strings.TrimSpace(mp.output.Text)
	if dir == "" || out == "" {
		dialog.ShowError(fmt.Errorf("please select a tiles folder and an output image path"), mp.window)
		return
	}
	mp.run(func(progress merge.ProgressFunc) (string, error) {
		w, h, err := merge.FromFolder(dir, out, progress)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Merged %dx%d image written to %s", w, h, filepath.Base(out)), nil
	})
}

func (mp *MergePanel) mergeManifest() {
	path := strings.TrimSpace(mp.manifestPath.Text)
	out := strings.TrimSpace(mp.output.Text)
	if path == "" || out == "" {
		dialog.ShowError(fmt.Errorf("please select a manifest and an output image path"), mp.window)
		return
	}
	col := mp.pathColumn.Selected
	if col == "(auto)" {
		col = ""
	}
	opts := merge.ManifestOptions{
		FoldFilter: strings.TrimSpace(mp.foldFilter.Text),
		PathColumn: col,
	}
	mp.run(func(progress merge.ProgressFunc) (string, error) {
		opts.Progress = progress
		w, h, err := merge.FromManifest(path, out, opts)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Merged %dx%d image written to %s", w, h, filepath.Base(out)), nil
	})
}

// run executes a merge operation on a background goroutine with progress
// and cancellation wired to the panel widgets.
func (mp *MergePanel) run(op func(merge.ProgressFunc) (string, error)) {
	if mp.running.Load() {
		return
	}
	mp.saveForm()
	mp.running.Store(true)
	mp.cancelled.Store(false)
	mp.folderBtn.Disable()
	mp.manifestBtn.Disable()
	mp.cancelBtn.Enable()
	mp.progress.SetValue(0)
	mp.status.SetText("Merging tiles…")

	progress := func(done, total int) bool {
		if total > 0 {
			mp.progress.SetValue(float64(done) / float64(total))
		}
		return mp.cancelled.Load()
	}

	go func() {
		msg, err := op(progress)

		mp.running.Store(false)
		mp.folderBtn.Enable()
		mp.manifestBtn.Enable()
		mp.cancelBtn.Disable()

		if err != nil {
			mp.status.SetText("Merge failed.")
			dialog.ShowError(err, mp.window)
			return
		}
		mp.progress.SetValue(1)
		mp.status.SetText(msg)
		dialog.ShowInformation("Merging complete", msg, mp.window)
	}()
}
