// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"

	"raster-tiler/internal/version"
	"raster-tiler/ui/panels"
	"raster-tiler/ui/prefs"
)

const appTitle = "Raster Tiler"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	prefs *prefs.Prefs

	splitPanel *panels.SplitPanel
	mergePanel *panels.MergePanel
	helpPanel  *panels.HelpPanel
}

// New creates a new main window.
func New(fyneApp fyne.App, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		prefs:  p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.SetCloseIntercept(func() {
		_ = p.Save()
		win.Close()
	})

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.splitPanel = panels.NewSplitPanel(mw.Window, mw.prefs)
	mw.mergePanel = panels.NewMergePanel(mw.Window, mw.prefs)
	mw.helpPanel = panels.NewHelpPanel(appTitle)

	tabs := container.NewAppTabs(
		container.NewTabItem("Split", mw.splitPanel.Container()),
		container.NewTabItem("Merge", mw.mergePanel.Container()),
		container.NewTabItem("Help", mw.helpPanel.Container()),
	)

	mw.SetContent(tabs)
	mw.Resize(fyne.NewSize(820, 640))
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Quit", func() {
			_ = mw.prefs.Save()
			mw.app.Quit()
		}),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, helpMenu))
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s v%s\n\n"+
			"Split large rasters into fixed-size tiles and merge\n"+
			"tiles back into a single image.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			appTitle, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
