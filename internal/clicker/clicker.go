// Package clicker collects the four corner clicks that define a box in
// insert mode.
package clicker

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/example/boxannotator/internal/geom"
)

// Corners is the number of clicks that complete a box.
const Corners = 4

// ErrIncomplete is returned by Finalize before all corners are collected.
var ErrIncomplete = errors.New("box needs four corner clicks")

// Collector buffers up to Corners image-space points.
type Collector struct {
	active bool
	points []geom.Position
}

// Active reports whether collection mode is on.
func (c *Collector) Active() bool { return c.active }

// Activate turns collection on and clears the buffer.
func (c *Collector) Activate() {
	c.active = true
	c.points = c.points[:0]
}

// Deactivate turns collection off and clears the buffer.
func (c *Collector) Deactivate() {
	c.active = false
	c.points = c.points[:0]
}

// Click records p if it lies within bounds and the buffer has room. It
// reports whether the point was kept.
func (c *Collector) Click(p geom.Position, bounds geom.Box) bool {
	if !bounds.Contains(p) || len(c.points) >= Corners {
		return false
	}
	c.points = append(c.points, p)
	return true
}

// Points returns a copy of the buffered points.
func (c *Collector) Points() []geom.Position {
	return append([]geom.Position(nil), c.points...)
}

// Len returns the number of buffered points.
func (c *Collector) Len() int { return len(c.points) }

// IsComplete reports whether all corners have been clicked.
func (c *Collector) IsComplete() bool { return len(c.points) == Corners }

// Decrement drops the most recent point.
func (c *Collector) Decrement() {
	if len(c.points) > 0 {
		c.points = c.points[:len(c.points)-1]
	}
}

// Finalize builds the box spanning the collected extremes and empties the
// buffer.
func (c *Collector) Finalize(label string) (geom.Box, error) {
	if !c.IsComplete() {
		return geom.Box{}, fmt.Errorf("finalize with %d points: %w", len(c.points), ErrIncomplete)
	}
	xs := make([]float64, len(c.points))
	ys := make([]float64, len(c.points))
	for i, p := range c.points {
		xs[i], ys[i] = p.X, p.Y
	}
	c.points = c.points[:0]

	minX, minY := floats.Min(xs), floats.Min(ys)
	return geom.Box{
		Label:  label,
		X:      minX,
		Y:      minY,
		Width:  floats.Max(xs) - minX,
		Height: floats.Max(ys) - minY,
	}, nil
}
