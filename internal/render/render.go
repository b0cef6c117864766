// Package render paints an annotation scene onto an RGBA buffer.
package render

import (
	"fmt"
	"image"
	"image/draw"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/example/boxannotator/internal/annotate"
	"github.com/example/boxannotator/internal/boxes"
	"github.com/example/boxannotator/internal/theme"
)

// Renderer holds the fixed drawing resources for a window.
type Renderer struct {
	Theme  *theme.Theme
	Face   font.Face
	Filter xdraw.Interpolator
	Halo   int
}

// New returns a renderer using the 7x13 bitmap face and nearest neighbour
// sampling.
func New(th *theme.Theme) *Renderer {
	if th == nil {
		th = theme.Default()
	}
	return &Renderer{Theme: th, Face: basicfont.Face7x13, Filter: xdraw.NearestNeighbor, Halo: 2}
}

// GoFace returns the Go Regular face at size points.
func GoFace(size float64) (font.Face, error) {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	return face, nil
}

// Draw paints one frame. dst is the window-sized buffer and img the decoded
// current image, which may be nil while loading.
func (r *Renderer) Draw(dst *image.RGBA, img image.Image, sc annotate.Scene) {
	th := r.Theme
	cv := &Canvas{Dst: dst, View: sc.View, Fill: th.Background}
	cv.ClearRect(sc.Visible)

	if sc.Loaded && img != nil {
		r.Filter.Transform(dst, sc.ImageToWindow, img, img.Bounds(), draw.Over, nil)
		p := cv.Point(sc.Cursor)
		b := dst.Bounds()
		if p.In(b) {
			drawLine(dst, b.Min.X, p.Y, b.Max.X-1, p.Y, sc.CursorColor, 1)
			drawLine(dst, p.X, b.Min.Y, p.X, b.Max.Y-1, sc.CursorColor, 1)
		}
	}

	for _, sb := range sc.Boxes {
		rect := cv.Rect(sb.Rect)
		if !sb.Selected {
			drawRect(dst, rect, sb.Color, 1)
			continue
		}
		drawRect(dst, rect.Inset(-1), th.SelectedOutline, 1)
		drawRect(dst, rect, sb.Color, 1)
		if sb.Edge != boxes.EdgeNone {
			x0, y0, x1, y1 := edgeSegment(rect, sb.Edge)
			drawLine(dst, x0, y0, x1, y1, th.EdgeHighlight, 3)
		}
		if sb.Caption != "" {
			r.caption(dst, rect, sb.Caption)
		}
	}

	for _, p := range sc.Points {
		drawCross(dst, cv.Point(p), 4, th.Point)
	}

	r.status(dst, sc)
}

func edgeSegment(r image.Rectangle, e boxes.Edge) (x0, y0, x1, y1 int) {
	switch e {
	case boxes.EdgeTop:
		return r.Min.X, r.Min.Y, r.Max.X - 1, r.Min.Y
	case boxes.EdgeRight:
		return r.Max.X - 1, r.Min.Y, r.Max.X - 1, r.Max.Y - 1
	case boxes.EdgeBottom:
		return r.Min.X, r.Max.Y - 1, r.Max.X - 1, r.Max.Y - 1
	default:
		return r.Min.X, r.Min.Y, r.Min.X, r.Max.Y - 1
	}
}

// caption sits just above box, or just inside its top when there is no
// room above.
func (r *Renderer) caption(dst *image.RGBA, box image.Rectangle, text string) {
	tile := textMask(r.Face, text, r.Halo)
	at := image.Pt(box.Min.X, box.Min.Y-2-tile.Rect.Dy())
	if at.Y < dst.Bounds().Min.Y {
		at.Y = box.Min.Y + 2
	}
	Halo(dst, tile, at, HaloOptions{Radius: r.Halo, Gain: 3, Color: r.Theme.CaptionBackground})
	draw.DrawMask(dst, tile.Bounds().Add(at), image.NewUniform(r.Theme.CaptionText), image.Point{}, tile, image.Point{}, draw.Over)
}

// StatusHeight is the height of the status bar for face.
func StatusHeight(face font.Face) int { return face.Metrics().Height.Ceil() + 4 }

func (r *Renderer) status(dst *image.RGBA, sc annotate.Scene) {
	b := dst.Bounds()
	bar := image.Rect(b.Min.X, b.Max.Y-StatusHeight(r.Face), b.Max.X, b.Max.Y)
	draw.Draw(dst, bar, image.NewUniform(r.Theme.StatusBackground), image.Point{}, draw.Over)

	col := r.Theme.StatusText
	if sc.Mode == annotate.ModeCollecting {
		col = r.Theme.StatusInsert
	}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: r.Face,
		Dot: fixed.Point26_6{X: fixed.I(bar.Min.X + 4), Y: fixed.I(bar.Min.Y+2) + r.Face.Metrics().Ascent}}
	d.DrawString(Status(sc))
}

// Status is the status bar text for sc.
func Status(sc annotate.Scene) string {
	if sc.Count == 0 {
		return "no images  o: open"
	}
	s := fmt.Sprintf("%d/%d %s  label %s  %s", sc.Index+1, sc.Count, filepath.Base(sc.Image), sc.Label, sc.Mode)
	if !sc.Loaded || sc.Pending {
		s += "  loading"
	}
	if sc.Hidden {
		s += "  hidden"
	}
	return s
}
