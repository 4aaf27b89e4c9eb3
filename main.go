// Package main provides the entry point for the Raster Tiler application.
package main

import (
	"log"

	"fyne.io/fyne/v2/app"

	"raster-tiler/internal/version"
	"raster-tiler/ui/mainwindow"
	"raster-tiler/ui/prefs"
)

const appTitle = "Raster Tiler"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	fyneApp := app.NewWithID("raster-tiler")
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, appPrefs)
	win.ShowAndRun()
}
