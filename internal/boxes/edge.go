package boxes

import "github.com/example/boxannotator/internal/geom"

// Edge names a side of a box. The numbering matches the order the sides
// are visited clockwise from the top.
type Edge int

const (
	EdgeNone Edge = iota - 1
	EdgeTop
	EdgeRight
	EdgeBottom
	EdgeLeft
)

// Step is the amount an armed edge moves per key press, in image units.
const Step = 1.0

func (e Edge) String() string {
	switch e {
	case EdgeTop:
		return "top"
	case EdgeRight:
		return "right"
	case EdgeBottom:
		return "bottom"
	case EdgeLeft:
		return "left"
	default:
		return "none"
	}
}

// Opposite returns the paired edge: left/right and top/bottom.
func (e Edge) Opposite() Edge {
	switch e {
	case EdgeTop:
		return EdgeBottom
	case EdgeBottom:
		return EdgeTop
	case EdgeLeft:
		return EdgeRight
	case EdgeRight:
		return EdgeLeft
	default:
		return EdgeNone
	}
}

// ShiftEdge moves the armed edge of b one Step in direction dir.
//
// When dir equals armed the edge grows outward. When dir is the opposite of
// armed the armed edge moves inward, shrinking the box, and stops at zero
// size. Any other combination leaves b untouched and returns false; the
// caller then arms dir.
func ShiftEdge(b *geom.Box, armed, dir Edge) bool {
	if armed == EdgeNone || (dir != armed && dir != armed.Opposite()) {
		return false
	}
	grow := dir == armed
	switch armed {
	case EdgeLeft:
		if grow {
			b.X -= Step
			b.Width += Step
		} else if b.Width >= Step {
			b.X += Step
			b.Width -= Step
		}
	case EdgeRight:
		if grow {
			b.Width += Step
		} else if b.Width >= Step {
			b.Width -= Step
		}
	case EdgeTop:
		if grow {
			b.Y -= Step
			b.Height += Step
		} else if b.Height >= Step {
			b.Y += Step
			b.Height -= Step
		}
	case EdgeBottom:
		if grow {
			b.Height += Step
		} else if b.Height >= Step {
			b.Height -= Step
		}
	}
	return true
}
