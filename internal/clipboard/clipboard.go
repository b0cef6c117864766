// Package clipboard moves box annotations through the system clipboard as
// JSON text.
package clipboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/boxannotator/internal/geom"
	"github.com/example/boxannotator/internal/persist"
)

// ErrEmpty is returned when the clipboard holds no text.
var ErrEmpty = errors.New("clipboard does not contain text data")

// Backend is a text clipboard.
type Backend interface {
	WriteText(text string) error
	ReadText() (string, error)
}

// System is the desktop clipboard.
type System struct{}

func (System) WriteText(text string) error { return WriteText(text) }
func (System) ReadText() (string, error) { return ReadText() }

// CopyBoxes writes bs as a JSON array.
func CopyBoxes(b Backend, bs []geom.Box) error {
	data, err := persist.MarshalBoxes(bs)
	if err != nil {
		return err
	}
	return b.WriteText(string(data))
}

// PasteBoxes reads a JSON box array. Anything else on the clipboard is an
// error wrapping persist.ErrMalformed.
func PasteBoxes(b Backend) ([]geom.Box, error) {
	text, err := b.ReadText()
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmpty
	}
	bs, err := persist.UnmarshalBoxes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("paste: %w", err)
	}
	return bs, nil
}
