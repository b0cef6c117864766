package annotate

import (
	"fmt"
	"image/color"
	"math"

	"golang.org/x/image/math/f64"

	"github.com/example/boxannotator/internal/boxes"
	"github.com/example/boxannotator/internal/geom"
)

// SceneBox is a box ready to paint, in canvas coordinates.
type SceneBox struct {
	Index    int
	Rect     geom.Box
	Color    color.RGBA
	Selected bool
	Edge     boxes.Edge
	Caption  string
}

// Scene is everything a renderer needs for one frame. Positions are in
// canvas space; View maps them into the window and ImageToWindow maps image
// pixels straight into the window.
type Scene struct {
	Loaded        bool
	Pending       bool
	View          f64.Aff3
	ImageToWindow f64.Aff3
	Visible       geom.Box

	Boxes       []SceneBox
	Cursor      geom.Position
	CursorColor color.RGBA
	Points      []geom.Position

	Mode   Mode
	Hidden bool
	Image  string
	Index  int
	Count  int
	Label  string
}

// Scene snapshots the current state. Unselected boxes are left out while
// hidden; the selected box is always last so it paints on top.
func (s *Session) Scene() Scene {
	sc := Scene{
		Loaded:        s.loaded,
		Pending:       s.pending,
		View:          s.tr.View(),
		ImageToWindow: s.tr.Compose(),
		Visible:       s.tr.VisibleRect(),
		Cursor:        s.cursor,
		CursorColor:   s.labels.Color(s.CurrentLabel()),
		Mode:          s.mode,
		Hidden:        s.hide,
		Image:         s.store.Current(),
		Index:         s.store.Index(),
		Count:         s.store.Len(),
		Label:         s.CurrentLabel(),
	}
	for _, p := range s.clicks.Points() {
		sc.Points = append(sc.Points, s.tr.ImageToCanvas(p))
	}

	selected := s.sel.Selected()
	bs := s.store.Boxes()
	if !s.hide {
		for i, b := range bs {
			if i != selected {
				sc.Boxes = append(sc.Boxes, s.sceneBox(i, b, false))
			}
		}
	}
	if selected >= 0 && selected < len(bs) {
		sc.Boxes = append(sc.Boxes, s.sceneBox(selected, bs[selected], true))
	}
	return sc
}

func (s *Session) sceneBox(i int, b geom.Box, selected bool) SceneBox {
	sb := SceneBox{
		Index:    i,
		Rect:     s.tr.ImageToCanvasBox(b),
		Color:    s.labels.Color(b.Label),
		Selected: selected,
		Edge:     boxes.EdgeNone,
	}
	if selected {
		sb.Edge = s.sel.Edge()
		sb.Caption = Caption(b)
	}
	return sb
}

// Caption is the text drawn above a selected box: its label and rounded
// image-space size.
func Caption(b geom.Box) string {
	return fmt.Sprintf("%s %.0fx%.0f", b.Label, math.Round(b.Width), math.Round(b.Height))
}
