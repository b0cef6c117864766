package render

import (
	"image"
	"image/color"
	"image/draw"
)

// HaloOptions configures the blurred backdrop painted under text.
type HaloOptions struct {
	Radius int
	// Gain scales the blurred coverage before painting; values above one
	// widen the solid part of the halo.
	Gain  float64
	Color color.RGBA
}

// Halo paints a blurred copy of mask onto dst with its top-left corner at
// at. Painting the mask itself afterwards leaves text readable over any
// background.
func Halo(dst draw.Image, mask *image.Alpha, at image.Point, opts HaloOptions) {
	if mask == nil || mask.Bounds().Empty() || opts.Color.A == 0 {
		return
	}
	radius := opts.Radius
	if radius < 0 {
		radius = 0
	}
	blurred := blurAlpha(mask, radius)
	if opts.Gain > 0 && opts.Gain != 1 {
		for i, a := range blurred.Pix {
			v := float64(a) * opts.Gain
			if v > 255 {
				v = 255
			}
			blurred.Pix[i] = uint8(v)
		}
	}
	b := blurred.Bounds()
	draw.DrawMask(dst, b.Sub(b.Min).Add(at), image.NewUniform(opts.Color), image.Point{}, blurred, b.Min, draw.Over)
}

// blurAlpha is a separable box blur using running sums per row and column.
func blurAlpha(src *image.Alpha, radius int) *image.Alpha {
	bounds := src.Bounds()
	out := image.NewAlpha(bounds)
	if radius <= 0 {
		draw.Draw(out, bounds, src, bounds.Min, draw.Src)
		return out
	}
	w, h := bounds.Dx(), bounds.Dy()
	tmp := image.NewAlpha(bounds)
	at := func(img *image.Alpha, x, y int) int { return img.PixOffset(bounds.Min.X+x, bounds.Min.Y+y) }

	prefix := make([]int, max(w, h)+1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			prefix[x+1] = prefix[x] + int(src.Pix[at(src, x, y)])
		}
		for x := 0; x < w; x++ {
			x0, x1 := max(x-radius, 0), min(x+radius, w-1)
			tmp.Pix[at(tmp, x, y)] = uint8((prefix[x1+1] - prefix[x0]) / (x1 - x0 + 1))
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			prefix[y+1] = prefix[y] + int(tmp.Pix[at(tmp, x, y)])
		}
		for y := 0; y < h; y++ {
			y0, y1 := max(y-radius, 0), min(y+radius, h-1)
			out.Pix[at(out, x, y)] = uint8((prefix[y1+1] - prefix[y0]) / (y1 - y0 + 1))
		}
	}
	return out
}
