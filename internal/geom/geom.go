// Package geom holds the positions and labelled boxes shared by the
// annotation engine. Positions carry no space tag; callers convert between
// viewport, window, canvas and image space through the transform package.
package geom

import "math"

// Position is a real-valued point.
type Position struct {
	X float64
	Y float64
}

// Pt is shorthand for Position{x, y}.
func Pt(x, y float64) Position { return Position{X: x, Y: y} }

// Add returns p+q.
func (p Position) Add(q Position) Position { return Position{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Position) Sub(q Position) Position { return Position{p.X - q.X, p.Y - q.Y} }

// Box is an axis-aligned labelled rectangle in image space.
//
// The JSON shape is the persisted annotation format and must not change.
type Box struct {
	Label  string  `json:"label"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies within b, edges included.
func (b Box) Contains(p Position) bool {
	return p.X >= b.X && p.X <= b.X+b.Width &&
		p.Y >= b.Y && p.Y <= b.Y+b.Height
}

// Area returns Width*Height.
func (b Box) Area() float64 { return b.Width * b.Height }

// Center returns the midpoint of b.
func (b Box) Center() Position {
	return Position{b.X + b.Width/2, b.Y + b.Height/2}
}

// Normalize moves the origin to the minimum corner and makes both
// dimensions non-negative.
func (b Box) Normalize() Box {
	if b.Width < 0 {
		b.X += b.Width
		b.Width = -b.Width
	}
	if b.Height < 0 {
		b.Y += b.Height
		b.Height = -b.Height
	}
	return b
}

// Square returns the largest square sharing b's centre with side
// min(Width, Height).
func (b Box) Square() Box {
	c := b.Center()
	side := math.Min(b.Width, b.Height)
	b.Width = side
	b.Height = side
	b.X = c.X - side/2
	b.Y = c.Y - side/2
	return b
}

// Inflate grows b by d on every axis, keeping it centred. Shrinking stops
// at zero size.
func (b Box) Inflate(d float64) Box {
	dw := math.Max(d, -b.Width)
	dh := math.Max(d, -b.Height)
	b.X -= dw / 2
	b.Width += dw
	b.Y -= dh / 2
	b.Height += dh
	return b
}

// Rect builds the box spanning the two corners, normalized.
func Rect(label string, a, c Position) Box {
	return Box{Label: label, X: a.X, Y: a.Y, Width: c.X - a.X, Height: c.Y - a.Y}.Normalize()
}
