// Package selection resolves pointer positions to boxes and tracks the
// selected box, its armed edge and the click-cycling cursor.
package selection

import (
	"slices"
	"sort"

	"github.com/example/boxannotator/internal/boxes"
	"github.com/example/boxannotator/internal/geom"
)

// HitCandidates returns the indices of the boxes containing p, smallest area
// first. Ties keep insertion order. Zero-area boxes never match.
func HitCandidates(bs []geom.Box, p geom.Position) []int {
	var out []int
	for i, b := range bs {
		if b.Area() > 0 && b.Contains(p) {
			out = append(out, i)
		}
	}
	sort.SliceStable(out, func(a, c int) bool {
		return bs[out[a]].Area() < bs[out[c]].Area()
	})
	return out
}

// Controller is the selection state machine. The zero value is not ready;
// use New.
type Controller struct {
	selected int
	edge     boxes.Edge

	candidates []int
	cursor     int

	cancelClick bool
}

// New returns a Controller with nothing selected.
func New() *Controller {
	c := &Controller{}
	c.Reset()
	return c
}

// Selected returns the selected box index or -1.
func (c *Controller) Selected() int { return c.selected }

// Edge returns the armed edge of the selected box.
func (c *Controller) Edge() boxes.Edge { return c.edge }

// Candidates returns the candidate set of the last click or delete.
func (c *Controller) Candidates() []int { return slices.Clone(c.candidates) }

// Cursor returns the position within Candidates, or -1.
func (c *Controller) Cursor() int { return c.cursor }

// Select makes i the selected box and disarms any edge.
func (c *Controller) Select(i int) {
	c.selected = i
	c.edge = boxes.EdgeNone
}

// Clear drops the selection but keeps the cycling context.
func (c *Controller) Clear() {
	c.selected = -1
	c.edge = boxes.EdgeNone
}

// Disarm forgets the armed edge so the next edge command arms again.
func (c *Controller) Disarm() { c.edge = boxes.EdgeNone }

// Reset returns to the initial state. It must be called whenever the active
// image changes.
func (c *Controller) Reset() {
	c.Clear()
	c.candidates = nil
	c.cursor = -1
	c.cancelClick = false
}

// Click selects among the boxes under p. Repeated clicks over the same
// candidate set step forward through it. It returns the new selection or -1.
func (c *Controller) Click(bs []geom.Box, p geom.Position) int {
	return c.click(bs, p, false)
}

// ClickBackward is Click with the cycling direction reversed.
func (c *Controller) ClickBackward(bs []geom.Box, p geom.Position) int {
	return c.click(bs, p, true)
}

func (c *Controller) click(bs []geom.Box, p geom.Position, backward bool) int {
	cands := HitCandidates(bs, p)
	if len(cands) == 0 {
		c.Clear()
		c.candidates = nil
		c.cursor = -1
		return -1
	}
	if !slices.Equal(cands, c.candidates) {
		c.candidates = cands
		c.cursor = -1
	}
	n := len(cands)
	switch {
	case !backward:
		c.cursor = boxes.Wrap(c.cursor+1, n)
	case c.cursor < 0:
		c.cursor = n - 1
	default:
		c.cursor = boxes.Wrap(c.cursor-1, n)
	}
	c.Select(cands[c.cursor])
	return c.selected
}

// DeleteAt removes the cursor candidate under p from store, or the smallest
// candidate when the set under p changed since the last click. The
// remaining candidates are recomputed and the cursor clamped into them; the
// selection follows the cursor or clears when none remain. It reports
// whether a box was deleted.
func (c *Controller) DeleteAt(store *boxes.Store, p geom.Position) (bool, error) {
	cands := HitCandidates(store.Boxes(), p)
	if len(cands) == 0 {
		c.Clear()
		c.candidates = nil
		c.cursor = -1
		return false, nil
	}
	if !slices.Equal(cands, c.candidates) || c.cursor < 0 {
		c.cursor = 0
	}
	c.cursor = min(c.cursor, len(cands)-1)
	if err := store.Delete(cands[c.cursor]); err != nil {
		return false, err
	}

	c.candidates = HitCandidates(store.Boxes(), p)
	if len(c.candidates) == 0 {
		c.Clear()
		c.cursor = -1
		return true, nil
	}
	c.cursor = min(c.cursor, len(c.candidates)-1)
	c.Select(c.candidates[c.cursor])
	return true, nil
}

// GrowEdge handles an edge command towards dir. The first command after a
// selection arms dir. Later commands along the same axis move the armed
// edge; a command on the other axis re-arms. It reports whether the box
// geometry changed.
func (c *Controller) GrowEdge(store *boxes.Store, dir boxes.Edge) (bool, error) {
	if c.selected < 0 || dir == boxes.EdgeNone {
		return false, nil
	}
	moved, err := store.Shift(c.selected, c.edge, dir)
	if err != nil {
		return false, err
	}
	if !moved {
		c.edge = dir
	}
	return moved, nil
}

// Next selects the box after the current one among n boxes, wrapping.
func (c *Controller) Next(n int) int {
	if n == 0 {
		c.Clear()
		return -1
	}
	c.Select(boxes.Wrap(c.selected+1, n))
	c.candidates = nil
	return c.selected
}

// Previous selects the box before the current one among n boxes, wrapping.
// With nothing selected it picks the last box.
func (c *Controller) Previous(n int) int {
	if n == 0 {
		c.Clear()
		return -1
	}
	i := n - 1
	if c.selected >= 0 {
		i = boxes.Wrap(c.selected-1, n)
	}
	c.Select(i)
	c.candidates = nil
	return c.selected
}

// SuppressNextClick marks the next click as the tail of a drag.
func (c *Controller) SuppressNextClick() { c.cancelClick = true }

// ConsumeSuppressed reports and clears the drag suppression flag.
func (c *Controller) ConsumeSuppressed() bool {
	s := c.cancelClick
	c.cancelClick = false
	return s
}
