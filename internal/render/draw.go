package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/example/boxannotator/internal/geom"
)

// Canvas addresses an RGBA buffer in canvas coordinates through a view
// transform.
type Canvas struct {
	Dst  *image.RGBA
	View f64.Aff3
	Fill color.Color
}

// Point maps a canvas position to the nearest window pixel.
func (c *Canvas) Point(p geom.Position) image.Point {
	v := c.View
	return image.Pt(
		int(math.Round(v[0]*p.X+v[1]*p.Y+v[2])),
		int(math.Round(v[3]*p.X+v[4]*p.Y+v[5])),
	)
}

// Rect maps a canvas box to a window rectangle.
func (c *Canvas) Rect(b geom.Box) image.Rectangle {
	return image.Rectangle{
		Min: c.Point(geom.Pt(b.X, b.Y)),
		Max: c.Point(geom.Pt(b.X+b.Width, b.Y+b.Height)),
	}.Canon()
}

// ClearRect fills r with the canvas fill colour.
func (c *Canvas) ClearRect(r geom.Box) {
	draw.Draw(c.Dst, c.Rect(r).Intersect(c.Dst.Bounds()), image.NewUniform(c.Fill), image.Point{}, draw.Src)
}

func setThickPixel(img *image.RGBA, x, y, thick int, col color.Color) {
	r := thick / 2
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			if p := image.Pt(x+dx, y+dy); p.In(img.Bounds()) {
				img.Set(p.X, p.Y, col)
			}
		}
	}
}

// drawLine is Bresenham with a square pen. Axis-aligned segments are
// clipped to img first.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick int) {
	if x0 == x1 || y0 == y1 {
		clip := img.Bounds().Inset(-thick)
		if x0 == x1 && (x0 < clip.Min.X || x0 >= clip.Max.X) || y0 == y1 && (y0 < clip.Min.Y || y0 >= clip.Max.Y) {
			return
		}
		x0, x1 = clampSpan(x0, x1, clip.Min.X, clip.Max.X-1)
		y0, y1 = clampSpan(y0, y1, clip.Min.Y, clip.Max.Y-1)
	}
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		setThickPixel(img, x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func clampSpan(a, b, lo, hi int) (int, int) {
	return min(max(a, lo), hi), min(max(b, lo), hi)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func drawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	drawLine(img, rect.Min.X, rect.Min.Y, rect.Max.X-1, rect.Min.Y, col, thick)
	drawLine(img, rect.Max.X-1, rect.Min.Y, rect.Max.X-1, rect.Max.Y-1, col, thick)
	drawLine(img, rect.Max.X-1, rect.Max.Y-1, rect.Min.X, rect.Max.Y-1, col, thick)
	drawLine(img, rect.Min.X, rect.Max.Y-1, rect.Min.X, rect.Min.Y, col, thick)
}

func drawCross(img *image.RGBA, p image.Point, size int, col color.Color) {
	drawLine(img, p.X-size, p.Y, p.X+size, p.Y, col, 1)
	drawLine(img, p.X, p.Y-size, p.X, p.Y+size, col, 1)
}

// textMask renders s into an alpha tile padded by pad on every side.
func textMask(face font.Face, s string, pad int) *image.Alpha {
	m := face.Metrics()
	w := font.MeasureString(face, s).Ceil()
	tile := image.NewAlpha(image.Rect(0, 0, w+2*pad, m.Height.Ceil()+2*pad))
	d := &font.Drawer{Dst: tile, Src: image.Opaque, Face: face,
		Dot: fixed.Point26_6{X: fixed.I(pad), Y: fixed.I(pad) + m.Ascent}}
	d.DrawString(s)
	return tile
}
