package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/boxannotator/internal/geom"
)

const eps = 1e-9

func assertPos(t *testing.T, want, got geom.Position) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps, "x")
	assert.InDelta(t, want.Y, got.Y, eps, "y")
}

func TestResetScaleFitsAndCenters(t *testing.T) {
	tests := []struct {
		name       string
		canvasW    float64
		canvasH    float64
		imageW     float64
		imageH     float64
		wantScale  float64
		wantOffset geom.Position
	}{
		{"wide canvas", 800, 400, 200, 200, 2, geom.Pt(200, 0)},
		{"tall canvas", 400, 800, 200, 100, 2, geom.Pt(0, 300)},
		{"downscale", 100, 100, 400, 200, 0.25, geom.Pt(0, 25)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(tt.canvasW, tt.canvasH)
			require.NoError(t, tr.ResetScale(tt.imageW, tt.imageH))
			tr.ResetOffset(tt.imageW, tt.imageH)
			assert.InDelta(t, tt.wantScale, tr.Scale(), eps)
			assertPos(t, tt.wantOffset, tr.Offset())

			imageBox := tr.ImageToCanvasBox(geom.Box{Width: tt.imageW, Height: tt.imageH})
			assertPos(t, geom.Pt(tt.canvasW/2, tt.canvasH/2), imageBox.Center())
		})
	}
}

func TestResetScaleRejectsEmpty(t *testing.T) {
	tr := New(100, 100)
	assert.ErrorIs(t, tr.ResetScale(0, 10), ErrEmptyImage)
	assert.ErrorIs(t, tr.ResetScale(10, -1), ErrEmptyImage)
	assert.Equal(t, 1.0, tr.Scale(), "scale must stay positive after a rejected reset")

	assert.ErrorIs(t, New(0, 100).ResetScale(10, 10), ErrEmptyCanvas)
}

func TestCanvasImageRoundTrip(t *testing.T) {
	for _, s := range []float64{0.1, 1, 3.7} {
		tr := New(640, 480)
		tr.scale = s
		tr.offset = geom.Pt(-12.5, 33)
		for _, p := range []geom.Position{geom.Pt(0, 0), geom.Pt(17.25, -3), geom.Pt(639, 479)} {
			assertPos(t, p, tr.ImageToCanvas(tr.CanvasToImage(p)))
			assertPos(t, p, tr.CanvasToImage(tr.ImageToCanvas(p)))
		}
	}
}

func TestImageToCanvasBoxScalesWithoutOffset(t *testing.T) {
	tr := New(100, 100)
	tr.scale = 2
	tr.offset = geom.Pt(10, 20)
	got := tr.ImageToCanvasBox(geom.Box{Label: "a", X: 1, Y: 2, Width: 3, Height: 4})
	assert.Equal(t, geom.Box{Label: "a", X: 12, Y: 24, Width: 6, Height: 8}, got)
}

func TestZoomRoundTrip(t *testing.T) {
	tr := New(800, 600)
	tr.Translate(geom.Pt(13, -7))
	before := tr.View()

	anchor := geom.Pt(250, 175)
	tr.Zoom(anchor, 1.2)
	assert.NotEqual(t, before, tr.View())
	tr.Zoom(anchor, 1/1.2)

	after := tr.View()
	for i := range before {
		assert.InDelta(t, before[i], after[i], 1e-9, "element %d", i)
	}
}

func TestZoomKeepsAnchorFixed(t *testing.T) {
	tr := New(800, 600)
	anchor := geom.Pt(120, 80)
	window := tr.CanvasToWindow(anchor)
	tr.Zoom(anchor, 1.2)
	assertPos(t, window, tr.CanvasToWindow(anchor))
	assertPos(t, anchor, tr.WindowToCanvas(window))
}

func TestTranslateOnlyAffectsView(t *testing.T) {
	tr := New(400, 400)
	require.NoError(t, tr.Fit(200, 100))
	scale, offset := tr.Scale(), tr.Offset()

	tr.Translate(geom.Pt(10, 5))
	assert.Equal(t, scale, tr.Scale())
	assert.Equal(t, offset, tr.Offset())
	assertPos(t, geom.Pt(-10, -5), tr.WindowToCanvas(geom.Pt(0, 0)))
}

func TestTranslateToBoxCentersBox(t *testing.T) {
	tr := New(400, 300)
	require.NoError(t, tr.Fit(400, 300))
	tr.Zoom(geom.Pt(50, 50), 2)

	b := geom.Box{X: 300, Y: 200, Width: 40, Height: 20}
	tr.TranslateToBox(b)

	center := tr.CanvasToWindow(tr.ImageToCanvasBox(b).Center())
	assertPos(t, geom.Pt(200, 150), center)
}

type recordingSurface struct{ cleared []geom.Box }

func (r *recordingSurface) ClearRect(b geom.Box) { r.cleared = append(r.cleared, b) }

func TestClearCoversVisibleArea(t *testing.T) {
	tr := New(200, 100)
	s := &recordingSurface{}
	tr.Clear(s)
	require.Len(t, s.cleared, 1)
	assert.Equal(t, geom.Box{Width: 200, Height: 100}, s.cleared[0])

	tr.Translate(geom.Pt(50, 0))
	tr.Zoom(geom.Pt(0, 0), 2)
	tr.Clear(s)
	require.Len(t, s.cleared, 2)
	got := s.cleared[1]
	assert.InDelta(t, -25, got.X, eps)
	assert.InDelta(t, 0, got.Y, eps)
	assert.InDelta(t, 100, got.Width, eps)
	assert.InDelta(t, 50, got.Height, eps)
}

func TestViewportToImageChain(t *testing.T) {
	tr := New(200, 200)
	require.NoError(t, tr.Fit(100, 100))
	tr.SetOrigin(geom.Pt(30, 40))
	got := tr.ViewportToImage(geom.Pt(130, 140))
	assertPos(t, geom.Pt(50, 50), got)
}
