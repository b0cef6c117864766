// Package theme holds the colours the renderer paints with.
package theme

import (
	"image/color"
)

// Theme is the palette for the annotation canvas.
type Theme struct {
	Name string

	// Canvas
	Background color.RGBA // behind the image and outside its bounds
	Foreground color.RGBA

	// Boxes
	EdgeHighlight     color.RGBA // armed edge of the selected box
	SelectedOutline   color.RGBA
	CaptionBackground color.RGBA
	CaptionText       color.RGBA
	Point             color.RGBA // collected corners in insert mode

	// Status bar
	StatusBackground color.RGBA
	StatusText       color.RGBA
	StatusInsert     color.RGBA // mode marker while collecting corners
}

// Default returns the built in dark theme.
func Default() *Theme {
	return &Theme{
		Name:              "Default",
		Background:        color.RGBA{32, 32, 32, 255},
		Foreground:        color.RGBA{230, 230, 230, 255},
		EdgeHighlight:     color.RGBA{255, 0, 0, 255},
		SelectedOutline:   color.RGBA{255, 255, 255, 255},
		CaptionBackground: color.RGBA{0, 0, 0, 160},
		CaptionText:       color.RGBA{255, 255, 255, 255},
		Point:             color.RGBA{255, 255, 0, 255},
		StatusBackground:  color.RGBA{16, 16, 16, 230},
		StatusText:        color.RGBA{220, 220, 220, 255},
		StatusInsert:      color.RGBA{255, 170, 0, 255},
	}
}

// Fields lists the colour keys a theme file may set, in declaration order.
func Fields() []string {
	return colorFields()
}
