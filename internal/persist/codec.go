// Package persist reads and writes box annotations: the per-image JSON box
// array and the zip archive that bundles one array per image.
package persist

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/example/boxannotator/internal/geom"
)

// ErrMalformed is returned when input is not a JSON array of boxes with
// exactly the fields label, x, y, width and height.
var ErrMalformed = errors.New("malformed box annotations")

type wireBox struct {
	Label  *string  `json:"label"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Width  *float64 `json:"width"`
	Height *float64 `json:"height"`
}

// MarshalBoxes encodes bs as the JSON box array. A nil slice encodes as [].
func MarshalBoxes(bs []geom.Box) ([]byte, error) {
	if bs == nil {
		bs = []geom.Box{}
	}
	return json.Marshal(bs)
}

// EncodeBoxes writes the JSON box array to w.
func EncodeBoxes(w io.Writer, bs []geom.Box) error {
	data, err := MarshalBoxes(bs)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// UnmarshalBoxes decodes a JSON box array. Nothing is returned unless every
// element is well formed.
func UnmarshalBoxes(data []byte) ([]geom.Box, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var wire []wireBox
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if wire == nil {
		return nil, fmt.Errorf("%w: expected array", ErrMalformed)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrMalformed)
	}
	out := make([]geom.Box, len(wire))
	for i, w := range wire {
		if w.Label == nil || w.X == nil || w.Y == nil || w.Width == nil || w.Height == nil {
			return nil, fmt.Errorf("%w: box %d is missing a field", ErrMalformed, i)
		}
		out[i] = geom.Box{Label: *w.Label, X: *w.X, Y: *w.Y, Width: *w.Width, Height: *w.Height}.Normalize()
	}
	return out, nil
}

// DecodeBoxes reads a JSON box array from r.
func DecodeBoxes(r io.Reader) ([]geom.Box, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return UnmarshalBoxes(data)
}
