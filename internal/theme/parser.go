package theme

import (
	"bufio"
	"errors"
	"fmt"
	"image/color"
	"io"
	"reflect"
	"strconv"
	"strings"
)

// ErrColor is returned for colour values that are not #RRGGBB or #RRGGBBAA.
var ErrColor = errors.New("invalid colour")

var rgbaType = reflect.TypeOf(color.RGBA{})

// Parse reads a theme file. Each line is "Key: #RRGGBB" or "Key = #RRGGBBAA";
// keys match field names without regard to case and unknown keys are
// skipped.
func Parse(r io.Reader) (*Theme, error) {
	t := Default()
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		key, value, ok := cut(line)
		if !ok {
			continue
		}
		if err := t.Set(key, value); err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
	}
	return t, scanner.Err()
}

func cut(line string) (string, string, bool) {
	i := strings.IndexAny(line, "=:")
	if i < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:i]), strings.Trim(strings.TrimSpace(line[i+1:]), `"`), true
}

// Set assigns one key. Name sets the theme name; any other key names a
// colour field.
func (t *Theme) Set(key, value string) error {
	if strings.EqualFold(key, "Name") {
		t.Name = value
		return nil
	}
	field := t.field(key)
	if !field.IsValid() {
		return nil
	}
	c, err := ParseColor(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	field.Set(reflect.ValueOf(c))
	return nil
}

// Get returns the colour stored under key.
func (t *Theme) Get(key string) (color.RGBA, bool) {
	field := t.field(key)
	if !field.IsValid() {
		return color.RGBA{}, false
	}
	return field.Interface().(color.RGBA), true
}

func (t *Theme) field(key string) reflect.Value {
	val := reflect.ValueOf(t).Elem()
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if f.Type == rgbaType && strings.EqualFold(f.Name, key) {
			return val.Field(i)
		}
	}
	return reflect.Value{}
}

func colorFields() []string {
	typ := reflect.TypeOf(Theme{})
	var names []string
	for i := 0; i < typ.NumField(); i++ {
		if typ.Field(i).Type == rgbaType {
			names = append(names, typ.Field(i).Name)
		}
	}
	return names
}

// ParseColor parses #RRGGBB or #RRGGBBAA.
func ParseColor(s string) (color.RGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return color.RGBA{}, fmt.Errorf("%q: %w", s, ErrColor)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%q: %w", s, ErrColor)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xFF
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Hex formats c the way ParseColor reads it.
func Hex(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// Write emits t in the format Parse reads.
func (t *Theme) Write(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Name: %s\n", t.Name); err != nil {
		return err
	}
	for _, k := range colorFields() {
		c, _ := t.Get(k)
		if _, err := fmt.Fprintf(w, "%s: %s\n", k, Hex(c)); err != nil {
			return err
		}
	}
	return nil
}
