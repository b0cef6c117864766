// Package boxes owns the per-image box collections and the cursor over the
// loaded image list.
package boxes

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/example/boxannotator/internal/geom"
)

var (
	// ErrIndexOutOfRange is returned when a box index does not address the
	// current collection.
	ErrIndexOutOfRange = errors.New("box index out of range")
	// ErrNoImages is returned by operations that need a current image.
	ErrNoImages = errors.New("no images loaded")
)

// Store holds one ordered collection per image. Insertion order is z-order.
type Store struct {
	names []string
	boxes [][]geom.Box
	index int
}

// NewStore returns a Store over the given image paths, positioned on the
// first one.
func NewStore(names ...string) *Store {
	s := &Store{}
	s.SetImages(names)
	return s
}

// SetImages replaces the image list and drops every collection.
func (s *Store) SetImages(names []string) {
	s.names = append([]string(nil), names...)
	s.boxes = make([][]geom.Box, len(names))
	s.index = 0
}

// Len returns the number of images.
func (s *Store) Len() int { return len(s.names) }

// Index returns the position of the current image.
func (s *Store) Index() int { return s.index }

// Current returns the current image path, or "" with no images.
func (s *Store) Current() string {
	if len(s.names) == 0 {
		return ""
	}
	return s.names[s.index]
}

// Name returns the path of image i, or "" when i is out of range.
func (s *Store) Name(i int) string {
	if i < 0 || i >= len(s.names) {
		return ""
	}
	return s.names[i]
}

// Names returns a copy of the image paths.
func (s *Store) Names() []string { return append([]string(nil), s.names...) }

// Next moves to the following image, wrapping at the end.
func (s *Store) Next() string { return s.step(1) }

// Previous moves to the preceding image, wrapping at the start.
func (s *Store) Previous() string { return s.step(-1) }

// Seek moves to image i.
func (s *Store) Seek(i int) error {
	if i < 0 || i >= len(s.names) {
		return fmt.Errorf("seek image %d of %d: %w", i, len(s.names), ErrIndexOutOfRange)
	}
	s.index = i
	return nil
}

func (s *Store) step(d int) string {
	n := len(s.names)
	if n == 0 {
		return ""
	}
	s.index = Wrap(s.index+d, n)
	return s.names[s.index]
}

// Wrap returns i floored modulo n. n must be positive.
func Wrap(i, n int) int {
	return ((i % n) + n) % n
}

// Boxes returns the current image's collection. The slice is owned by the
// store; callers must not retain it across mutations.
func (s *Store) Boxes() []geom.Box {
	if len(s.boxes) == 0 {
		return nil
	}
	return s.boxes[s.index]
}

// BoxesAt returns a copy of the collection for image i.
func (s *Store) BoxesAt(i int) []geom.Box {
	if i < 0 || i >= len(s.boxes) {
		return nil
	}
	return append([]geom.Box(nil), s.boxes[i]...)
}

// SetBoxes replaces the collection for image i. Boxes are normalized.
func (s *Store) SetBoxes(i int, bs []geom.Box) error {
	if i < 0 || i >= len(s.boxes) {
		return fmt.Errorf("set boxes for image %d of %d: %w", i, len(s.boxes), ErrIndexOutOfRange)
	}
	out := make([]geom.Box, len(bs))
	for j, b := range bs {
		out[j] = b.Normalize()
	}
	s.boxes[i] = out
	return nil
}

// Box returns box i of the current image.
func (s *Store) Box(i int) (geom.Box, error) {
	cur := s.Boxes()
	if i < 0 || i >= len(cur) {
		return geom.Box{}, fmt.Errorf("box %d of %d: %w", i, len(cur), ErrIndexOutOfRange)
	}
	return cur[i], nil
}

// Push normalizes b and appends it to the current image. It returns the new
// box's index.
func (s *Store) Push(b geom.Box) (int, error) {
	if len(s.boxes) == 0 {
		return -1, ErrNoImages
	}
	s.boxes[s.index] = append(s.boxes[s.index], b.Normalize())
	return len(s.boxes[s.index]) - 1, nil
}

// Delete removes box i in place. Indices above i shift down by one.
func (s *Store) Delete(i int) error {
	cur := s.Boxes()
	if i < 0 || i >= len(cur) {
		return fmt.Errorf("delete box %d of %d: %w", i, len(cur), ErrIndexOutOfRange)
	}
	s.boxes[s.index] = append(cur[:i], cur[i+1:]...)
	return nil
}

// Update applies fn to box i and stores the normalized result.
func (s *Store) Update(i int, fn func(*geom.Box)) error {
	cur := s.Boxes()
	if i < 0 || i >= len(cur) {
		return fmt.Errorf("update box %d of %d: %w", i, len(cur), ErrIndexOutOfRange)
	}
	b := cur[i]
	fn(&b)
	cur[i] = b.Normalize()
	return nil
}

// Square replaces box i with the largest centred square inside it.
func (s *Store) Square(i int) error {
	return s.Update(i, func(b *geom.Box) { *b = b.Square() })
}

// Relabel sets the label of box i.
func (s *Store) Relabel(i int, label string) error {
	return s.Update(i, func(b *geom.Box) { b.Label = label })
}

// Move translates box i by d.
func (s *Store) Move(i int, d geom.Position) error {
	return s.Update(i, func(b *geom.Box) {
		b.X += d.X
		b.Y += d.Y
	})
}

// Inflate grows box i by d around its centre, never below zero size.
func (s *Store) Inflate(i int, d float64) error {
	return s.Update(i, func(b *geom.Box) { *b = b.Inflate(d) })
}

// Shift moves the armed edge of box i towards dir. It reports whether the
// geometry was eligible to change; false means dir should be armed instead.
func (s *Store) Shift(i int, armed, dir Edge) (bool, error) {
	var moved bool
	err := s.Update(i, func(b *geom.Box) { moved = ShiftEdge(b, armed, dir) })
	return moved, err
}

// BaseName strips the directory and the last extension from name.
func BaseName(name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

// BaseNames returns BaseName for every image, in order.
func (s *Store) BaseNames() []string {
	out := make([]string, len(s.names))
	for i, n := range s.names {
		out[i] = BaseName(n)
	}
	return out
}

// IndexOfBase returns the first image whose base name is base, or -1.
func (s *Store) IndexOfBase(base string) int {
	for i, n := range s.names {
		if BaseName(n) == base {
			return i
		}
	}
	return -1
}
