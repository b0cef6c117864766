// Package transform converts positions between the viewport, window,
// canvas and image coordinate spaces and owns the pan/zoom state.
//
// The chain is:
//
//	viewport --(minus canvas origin)--> window
//	window   --(inverse view)---------> canvas
//	canvas   --((p-offset)/scale)-----> image
//
// scale and offset are the fit-to-canvas baseline. Pan and zoom are
// accumulated separately in the view matrix, which only affects the
// window/canvas step.
package transform

import (
	"errors"
	"fmt"
	"math"

	"golang.org/x/image/math/f64"

	"github.com/example/boxannotator/internal/geom"
)

var (
	// ErrEmptyImage is returned when an image dimension is not positive.
	ErrEmptyImage = errors.New("image dimensions must be positive")
	// ErrEmptyCanvas is returned when the canvas has no area to fit into.
	ErrEmptyCanvas = errors.New("canvas dimensions must be positive")
)

// Identity is the view matrix with no pan or zoom applied.
var Identity = f64.Aff3{1, 0, 0, 0, 1, 0}

// Surface is a drawing target that can be cleared in canvas coordinates.
type Surface interface {
	ClearRect(r geom.Box)
}

// Transformer is the sole owner of scale, offset and the accumulated view
// transform. The zero value is not usable; call New.
type Transformer struct {
	width, height float64
	origin        geom.Position

	scale  float64
	offset geom.Position
	view   f64.Aff3
}

// New returns a Transformer for a canvas of the given size with unit scale
// and no pan or zoom.
func New(width, height float64) *Transformer {
	return &Transformer{width: width, height: height, scale: 1, view: Identity}
}

// Size returns the canvas dimensions.
func (t *Transformer) Size() (width, height float64) { return t.width, t.height }

// SetSize records new canvas dimensions. It does not refit; callers follow
// up with Fit once the image size is known.
func (t *Transformer) SetSize(width, height float64) {
	t.width = width
	t.height = height
}

// SetOrigin records where the canvas sits in the viewport.
func (t *Transformer) SetOrigin(p geom.Position) { t.origin = p }

// Scale returns the image to canvas scale factor.
func (t *Transformer) Scale() float64 { return t.scale }

// Offset returns the canvas position of the image origin.
func (t *Transformer) Offset() geom.Position { return t.offset }

// View returns the accumulated canvas to window transform.
func (t *Transformer) View() f64.Aff3 { return t.view }

// ResetScale sets the scale that fits an image of the given size inside the
// canvas while preserving aspect ratio.
func (t *Transformer) ResetScale(imageW, imageH float64) error {
	if imageW <= 0 || imageH <= 0 {
		return fmt.Errorf("reset scale %vx%v: %w", imageW, imageH, ErrEmptyImage)
	}
	if t.width <= 0 || t.height <= 0 {
		return fmt.Errorf("reset scale on %vx%v canvas: %w", t.width, t.height, ErrEmptyCanvas)
	}
	t.scale = math.Min(t.width/imageW, t.height/imageH)
	return nil
}

// ResetOffset centres the scaled image on the canvas.
func (t *Transformer) ResetOffset(imageW, imageH float64) {
	t.offset = geom.Position{
		X: (t.width - t.scale*imageW) / 2,
		Y: (t.height - t.scale*imageH) / 2,
	}
}

// ResetView drops any accumulated pan and zoom.
func (t *Transformer) ResetView() { t.view = Identity }

// Fit resets scale, offset and view for an image of the given size.
func (t *Transformer) Fit(imageW, imageH float64) error {
	if err := t.ResetScale(imageW, imageH); err != nil {
		return err
	}
	t.ResetOffset(imageW, imageH)
	t.ResetView()
	return nil
}

// ViewportToWindow converts a page-relative position to one relative to
// the canvas element.
func (t *Transformer) ViewportToWindow(p geom.Position) geom.Position {
	return p.Sub(t.origin)
}

// WindowToCanvas undoes the accumulated pan and zoom.
func (t *Transformer) WindowToCanvas(p geom.Position) geom.Position {
	return apply(invert(t.view), p)
}

// CanvasToWindow applies the accumulated pan and zoom.
func (t *Transformer) CanvasToWindow(p geom.Position) geom.Position {
	return apply(t.view, p)
}

// CanvasToImage maps a canvas position into image space.
func (t *Transformer) CanvasToImage(p geom.Position) geom.Position {
	return geom.Position{
		X: (p.X - t.offset.X) / t.scale,
		Y: (p.Y - t.offset.Y) / t.scale,
	}
}

// ImageToCanvas maps an image position into canvas space.
func (t *Transformer) ImageToCanvas(p geom.Position) geom.Position {
	return geom.Position{
		X: p.X*t.scale + t.offset.X,
		Y: p.Y*t.scale + t.offset.Y,
	}
}

// ImageToCanvasBox maps the box corner into canvas space and scales its
// dimensions.
func (t *Transformer) ImageToCanvasBox(b geom.Box) geom.Box {
	c := t.ImageToCanvas(geom.Position{X: b.X, Y: b.Y})
	b.X = c.X
	b.Y = c.Y
	b.Width *= t.scale
	b.Height *= t.scale
	return b
}

// ViewportToImage runs the whole chain for an input event position.
func (t *Transformer) ViewportToImage(p geom.Position) geom.Position {
	return t.CanvasToImage(t.WindowToCanvas(t.ViewportToWindow(p)))
}

// Translate composes a pan by delta, given in canvas units.
func (t *Transformer) Translate(delta geom.Position) {
	t.view = mul(t.view, translation(delta.X, delta.Y))
}

// Zoom scales the view by factor around anchor, given in canvas units.
// A factor above one zooms in.
func (t *Transformer) Zoom(anchor geom.Position, factor float64) {
	if factor <= 0 {
		return
	}
	m := mul(translation(anchor.X, anchor.Y), scaling(factor))
	m = mul(m, translation(-anchor.X, -anchor.Y))
	t.view = mul(t.view, m)
}

// TranslateToBox pans so the centre of b, in image space, lands on the
// centre of the visible canvas.
func (t *Transformer) TranslateToBox(b geom.Box) {
	center := t.ImageToCanvasBox(b).Center()
	mid := t.WindowToCanvas(geom.Position{X: t.width / 2, Y: t.height / 2})
	t.Translate(mid.Sub(center))
}

// VisibleRect returns the canvas-space rectangle currently shown in the
// window, taking pan and zoom into account.
func (t *Transformer) VisibleRect() geom.Box {
	start := t.WindowToCanvas(geom.Position{})
	end := t.WindowToCanvas(geom.Position{X: t.width, Y: t.height})
	return geom.Box{X: start.X, Y: start.Y, Width: end.X - start.X, Height: end.Y - start.Y}
}

// Clear wipes the whole visible area of s.
func (t *Transformer) Clear(s Surface) {
	s.ClearRect(t.VisibleRect())
}

func apply(m f64.Aff3, p geom.Position) geom.Position {
	return geom.Position{
		X: m[0]*p.X + m[1]*p.Y + m[2],
		Y: m[3]*p.X + m[4]*p.Y + m[5],
	}
}

// mul returns a∘b: the transform that applies b first and then a.
func mul(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

func invert(m f64.Aff3) f64.Aff3 {
	det := m[0]*m[4] - m[1]*m[3]
	if det == 0 {
		return Identity
	}
	i0 := m[4] / det
	i1 := -m[1] / det
	i3 := -m[3] / det
	i4 := m[0] / det
	return f64.Aff3{
		i0, i1, -(i0*m[2] + i1*m[5]),
		i3, i4, -(i3*m[2] + i4*m[5]),
	}
}

func translation(x, y float64) f64.Aff3 { return f64.Aff3{1, 0, x, 0, 1, y} }

func scaling(f float64) f64.Aff3 { return f64.Aff3{f, 0, 0, 0, f, 0} }

// Compose returns the matrix mapping image space straight to window space,
// suitable for golang.org/x/image/draw transformers.
func (t *Transformer) Compose() f64.Aff3 {
	fit := f64.Aff3{t.scale, 0, t.offset.X, 0, t.scale, t.offset.Y}
	return mul(t.view, fit)
}
