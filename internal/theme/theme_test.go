package theme

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	input := `
# comment
Name: Night
background: #111111
EdgeHighlight = #00FF0080
Unknown: #123456
not a pair
`
	th, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if th.Name != "Night" {
		t.Errorf("Name = %q", th.Name)
	}
	if th.Background != (color.RGBA{0x11, 0x11, 0x11, 0xFF}) {
		t.Errorf("Background = %+v", th.Background)
	}
	if th.EdgeHighlight != (color.RGBA{0, 0xFF, 0, 0x80}) {
		t.Errorf("EdgeHighlight = %+v", th.EdgeHighlight)
	}
	if th.Point != Default().Point {
		t.Errorf("unset keys keep the default, got %+v", th.Point)
	}
}

func TestParseBadColour(t *testing.T) {
	for _, v := range []string{"red", "#12345", "#GGGGGG"} {
		if _, err := Parse(strings.NewReader("Background: " + v)); err == nil {
			t.Errorf("%s: expected error", v)
		}
	}
}

func TestWriteCircular(t *testing.T) {
	orig := Default()
	orig.Name = "custom"
	orig.CaptionBackground = color.RGBA{1, 2, 3, 4}

	var buf bytes.Buffer
	if err := orig.Write(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := Parse(&buf)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if *got != *orig {
		t.Errorf("round trip mismatch:\n%+v\n%+v", got, orig)
	}
}

func TestBuiltinThemesParse(t *testing.T) {
	names := Builtin()
	if len(names) == 0 {
		t.Fatal("no built in themes")
	}
	l := &Loader{}
	for _, n := range names {
		th, err := l.Load(n)
		if err != nil {
			t.Errorf("%s: %v", n, err)
			continue
		}
		if th.EdgeHighlight != (color.RGBA{255, 0, 0, 255}) {
			t.Errorf("%s: edge highlight %+v", n, th.EdgeHighlight)
		}
	}
}

func TestLoaderSearchOrder(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mine.theme"), []byte("Name: Mine\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := &Loader{Dirs: []string{filepath.Join(dir, "missing"), dir}}

	th, err := l.Load("mine")
	if err != nil || th.Name != "Mine" {
		t.Fatalf("Load(mine) = %v, %v", th, err)
	}
	th, err = l.Load(filepath.Join(dir, "mine.theme"))
	if err != nil || th.Name != "Mine" {
		t.Fatalf("Load(path) = %v, %v", th, err)
	}
	if th, _ := l.Load(""); th.Name != "Default" {
		t.Errorf("empty name gave %q", th.Name)
	}
	if _, err := l.Load("nope"); err == nil {
		t.Error("expected not found")
	}
}
