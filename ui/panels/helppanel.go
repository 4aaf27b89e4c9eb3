package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"raster-tiler/internal/help"
	"raster-tiler/internal/version"
)

// HelpPanel renders the built-in user guide.
type HelpPanel struct {
	container fyne.CanvasObject
}

// NewHelpPanel creates the help panel.
func NewHelpPanel(appTitle string) *HelpPanel {
	text := widget.NewRichTextFromMarkdown(help.Text(appTitle, version.Version))
	text.Wrapping = fyne.TextWrapWord
	return &HelpPanel{container: container.NewVScroll(text)}
}

// Container returns the panel container.
func (hp *HelpPanel) Container() fyne.CanvasObject {
	return hp.container
}
