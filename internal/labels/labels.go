// Package labels provides the ordered label map: label keys, their display
// colours and the keyboard ordinals that pick them.
package labels

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// OrdinalKeys are the keyboard characters selecting labels 0..23.
const OrdinalKeys = "1234567890-=!@#$%^&*()_+"

// Fallback is the colour used for labels missing from the map.
const Fallback = "red"

// ErrInvalid is returned for label map files that are not a flat JSON
// object of strings.
var ErrInvalid = errors.New("invalid label map")

// Entry is one label key and its colour as written by the user.
type Entry struct {
	Key   string
	Color string
}

// Map is an ordered label map. Integer-like keys sort ascending ahead of
// the others, which keep their insertion order.
type Map struct {
	entries []Entry
	index   map[string]int
}

var defaultColors = []string{
	"#66ff66", "#34d1b7", "#33ddff", "#2a7dd1", "#f59331", "#f5d578",
	"#fafa37", "#a0a022", "#8c78f0", "#32237c", "#ffffff", "#000000",
}

// Default returns the built-in map with keys "0" to "11".
func Default() *Map {
	es := make([]Entry, len(defaultColors))
	for i, c := range defaultColors {
		es[i] = Entry{Key: strconv.Itoa(i), Color: c}
	}
	m, _ := New(es)
	return m
}

// New builds a map from entries. A repeated key keeps its first position
// and takes the last colour.
func New(entries []Entry) (*Map, error) {
	m := &Map{index: map[string]int{}}
	for _, e := range entries {
		if _, err := ParseColor(e.Color); err != nil {
			return nil, fmt.Errorf("label %q: %w", e.Key, err)
		}
		if i, ok := m.index[e.Key]; ok {
			m.entries[i].Color = e.Color
			continue
		}
		m.entries = append(m.entries, e)
		m.index[e.Key] = len(m.entries) - 1
	}
	m.order()
	return m, nil
}

func (m *Map) order() {
	sort.SliceStable(m.entries, func(a, b int) bool {
		na, aok := arrayIndex(m.entries[a].Key)
		nb, bok := arrayIndex(m.entries[b].Key)
		switch {
		case aok && bok:
			return na < nb
		default:
			return aok && !bok
		}
	})
	for i, e := range m.entries {
		m.index[e.Key] = i
	}
}

// arrayIndex reports whether k is a canonical non-negative integer.
func arrayIndex(k string) (uint64, bool) {
	n, err := strconv.ParseUint(k, 10, 32)
	if err != nil || strconv.FormatUint(n, 10) != k {
		return 0, false
	}
	return n, true
}

// Parse reads a JSON object mapping label keys to colour strings.
func Parse(r io.Reader) (*Map, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%w: expected object", ErrInvalid)
	}
	var es []Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected %v", ErrInvalid, tok)
		}
		var c string
		if err := dec.Decode(&c); err != nil {
			return nil, fmt.Errorf("%w: value for %q: %v", ErrInvalid, key, err)
		}
		es = append(es, Entry{Key: key, Color: c})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return New(es)
}

// Load reads a label map file.
func Load(path string) (*Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// MarshalJSON writes the map as an object in map order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(e.Key)
		v, _ := json.Marshal(e.Color)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Len returns the number of labels.
func (m *Map) Len() int { return len(m.entries) }

// Entries returns a copy of the entries in order.
func (m *Map) Entries() []Entry { return append([]Entry(nil), m.entries...) }

// Key returns the label key at position i.
func (m *Map) Key(i int) (string, bool) {
	if i < 0 || i >= len(m.entries) {
		return "", false
	}
	return m.entries[i].Key, true
}

// Has reports whether label is in the map.
func (m *Map) Has(label string) bool {
	_, ok := m.index[label]
	return ok
}

// Color returns the colour for label, or Fallback when it is unmapped.
func (m *Map) Color(label string) color.RGBA {
	name := Fallback
	if i, ok := m.index[label]; ok {
		name = m.entries[i].Color
	}
	c, err := ParseColor(name)
	if err != nil {
		return colornames.Red
	}
	return c
}

// KeyForRune maps an ordinal key press to the label key at that position.
func (m *Map) KeyForRune(r rune) (string, bool) {
	i := strings.IndexRune(OrdinalKeys, r)
	if i < 0 {
		return "", false
	}
	return m.Key(i)
}

// ParseColor accepts #rgb, #rrggbb and CSS colour names.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("colour %q: %w", s, err)
		}
		r, g, b := c.RGB255()
		return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
	}
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return c, nil
	}
	return color.RGBA{}, fmt.Errorf("unknown colour %q", s)
}
