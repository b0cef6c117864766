package annotate

import (
	"strings"
	"time"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/boxannotator/internal/boxes"
	"github.com/example/boxannotator/internal/geom"
	"github.com/example/boxannotator/internal/labels"
)

// HandleMouse applies a pointer event given in viewport coordinates. It
// reports whether the scene changed.
func (s *Session) HandleMouse(e mouse.Event) bool {
	s.window = s.tr.ViewportToWindow(geom.Pt(float64(e.X), float64(e.Y)))
	s.cursor = s.tr.WindowToCanvas(s.window)

	switch {
	case e.Button == mouse.ButtonWheelUp || e.Button == mouse.ButtonWheelDown:
		return s.wheel(e.Button == mouse.ButtonWheelUp)
	case e.Direction == mouse.DirPress && (e.Button == mouse.ButtonMiddle || e.Button == mouse.ButtonRight):
		return s.deletePress()
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
		s.leftPress()
		return false
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
		s.leftRelease(e.Modifiers&key.ModShift != 0)
		return true
	case e.Direction == mouse.DirNone:
		s.drag()
		return true
	}
	return false
}

func (s *Session) imagePoint() geom.Position { return s.tr.CanvasToImage(s.cursor) }

// wheel resizes the selected box when the pointer is over it and zooms
// around the pointer otherwise. Scrolling up shrinks the box and zooms in.
func (s *Session) wheel(up bool) bool {
	s.sel.Disarm()
	if b, ok := s.selectedBox(); ok && b.Contains(s.imagePoint()) {
		d := s.wheelStep
		if up {
			d = -d
		}
		return s.mutated("inflate", s.store.Inflate(s.sel.Selected(), d))
	}
	f := s.zoomStep
	if !up {
		f = 1 / f
	}
	s.tr.Zoom(s.cursor, f)
	return true
}

func (s *Session) deletePress() bool {
	if s.mode == ModeCollecting {
		s.clicks.Decrement()
		return true
	}
	if !s.editable() {
		return false
	}
	deleted, err := s.sel.DeleteAt(s.store, s.imagePoint())
	if !deleted && err == nil {
		return true
	}
	return s.mutated("delete", err)
}

func (s *Session) leftPress() {
	s.leftDown = true
	if s.mode == ModeCollecting {
		return
	}
	s.dragFrom = s.cursor
	s.dragged = false
	if b, ok := s.selectedBox(); ok && b.Contains(s.imagePoint()) {
		s.mode = ModeMoving
	} else {
		s.mode = ModePanning
	}
}

func (s *Session) drag() {
	if !s.leftDown {
		return
	}
	switch s.mode {
	case ModePanning:
		s.sel.Disarm()
		s.tr.Translate(s.cursor.Sub(s.dragFrom))
		s.cursor = s.tr.WindowToCanvas(s.window)
		s.dragFrom = s.cursor
		s.dragged = true
	case ModeMoving:
		b, ok := s.selectedBox()
		if !ok || !b.Contains(s.imagePoint()) {
			return
		}
		s.sel.Disarm()
		d := s.tr.CanvasToImage(s.cursor).Sub(s.tr.CanvasToImage(s.dragFrom))
		s.dragFrom = s.cursor
		s.dragged = true
		s.mutated("move", s.store.Move(s.sel.Selected(), d))
	}
}

// leftRelease ends a drag and then treats the release as a click, unless
// the drag moved something.
func (s *Session) leftRelease(shift bool) {
	s.leftDown = false
	if s.mode == ModePanning || s.mode == ModeMoving {
		if s.dragged {
			s.sel.SuppressNextClick()
		}
		s.dragged = false
		s.mode = ModeIdle
	}
	s.click(shift)
}

func (s *Session) click(shift bool) {
	if s.mode == ModeCollecting {
		s.collect()
		return
	}
	if s.sel.ConsumeSuppressed() || s.pending {
		return
	}
	p := s.imagePoint()
	if shift {
		s.sel.ClickBackward(s.store.Boxes(), p)
	} else {
		s.sel.Click(s.store.Boxes(), p)
	}

	now := s.now()
	if !s.lastClick.IsZero() && now.Sub(s.lastClick) <= s.doubleClick {
		s.lastClick = time.Time{}
		s.onDoubleClick()
		return
	}
	s.lastClick = now
}

// onDoubleClick refits the view when the second click landed on empty space.
func (s *Session) onDoubleClick() {
	if len(s.sel.Candidates()) > 0 {
		return
	}
	s.Refit()
}

func (s *Session) collect() {
	if !s.editable() || !s.clicks.Click(s.imagePoint(), s.imageBounds()) {
		return
	}
	if !s.clicks.IsComplete() {
		return
	}
	b, err := s.clicks.Finalize(s.CurrentLabel())
	if err != nil {
		s.log.WithError(err).Warn("finalize box")
		return
	}
	_, err = s.store.Push(b)
	s.clicks.Deactivate()
	s.mode = ModeIdle
	s.mutated("insert", err)
}

// HandleKey applies a key press. It reports whether the scene changed.
func (s *Session) HandleKey(e key.Event) bool {
	if e.Direction == key.DirRelease {
		return false
	}
	if e.Modifiers&key.ModControl != 0 {
		switch e.Code {
		case key.CodeC:
			s.commands.Copy()
		case key.CodeV:
			s.commands.Paste()
		}
		return false
	}
	if e.Code == key.CodeEscape {
		s.sel.Clear()
		s.clicks.Deactivate()
		s.mode = ModeIdle
		return true
	}
	if i := strings.IndexRune(labels.OrdinalKeys, e.Rune); e.Rune > 0 && i >= 0 {
		return s.chooseLabel(i)
	}

	switch e.Rune {
	case 'r':
		if !s.editable() {
			return false
		}
		s.sel.Clear()
		s.clicks.Activate()
		s.mode = ModeCollecting
	case 'a':
		s.hide = !s.hide
	case 'x':
		if i := s.sel.Selected(); i >= 0 {
			return s.mutated("square", s.store.Square(i))
		}
		return false
	case 's':
		return s.grow(boxes.EdgeLeft)
	case 'g':
		return s.grow(boxes.EdgeRight)
	case 'd':
		if s.sel.Selected() < 0 {
			s.PreviousImage()
			return true
		}
		return s.grow(boxes.EdgeTop)
	case 'f':
		if s.sel.Selected() < 0 {
			s.NextImage()
			return true
		}
		return s.grow(boxes.EdgeBottom)
	case 'F':
		return s.cycleBox(true)
	case 'D':
		return s.cycleBox(false)
	case 'o':
		s.commands.OpenImages()
		return false
	case 'i':
		s.commands.OpenAnnotations()
		return false
	case 'p':
		s.commands.OpenLabelMap()
		return false
	case 'u':
		s.commands.Export()
		return false
	default:
		return false
	}
	return true
}

func (s *Session) chooseLabel(i int) bool {
	s.labelIndex = i
	if sel := s.sel.Selected(); sel >= 0 {
		s.mutated("relabel", s.store.Relabel(sel, s.CurrentLabel()))
	}
	return true
}

func (s *Session) grow(dir boxes.Edge) bool {
	if s.sel.Selected() < 0 {
		return false
	}
	moved, err := s.sel.GrowEdge(s.store, dir)
	if moved || err != nil {
		s.mutated("edge "+dir.String(), err)
	}
	return true
}

func (s *Session) cycleBox(forward bool) bool {
	n := len(s.store.Boxes())
	if n == 0 {
		return false
	}
	var i int
	if forward {
		i = s.sel.Next(n)
	} else {
		i = s.sel.Previous(n)
	}
	b, err := s.store.Box(i)
	if err != nil {
		return false
	}
	s.tr.TranslateToBox(b)
	return true
}
