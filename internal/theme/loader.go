package theme

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

//go:embed defaults/*.theme
var embedded embed.FS

// ErrNotFound is returned when no source has the requested theme.
var ErrNotFound = errors.New("theme not found")

// Loader finds themes by name or path.
type Loader struct {
	Dirs []string
}

// NewLoader searches the user's data home and then the system data dirs.
func NewLoader() *Loader {
	l := &Loader{Dirs: []string{filepath.Join(xdg.DataHome, "boxannotator", "themes")}}
	for _, d := range xdg.DataDirs {
		l.Dirs = append(l.Dirs, filepath.Join(d, "boxannotator", "themes"))
	}
	return l
}

// Load resolves name in order: an existing file path, a built in theme,
// then each of l.Dirs. An empty name is the default theme.
func (l *Loader) Load(name string) (*Theme, error) {
	if name == "" {
		return Default(), nil
	}
	if _, err := os.Stat(name); err == nil {
		return parseFile(name)
	}

	filename := name
	if !strings.HasSuffix(filename, ".theme") {
		filename += ".theme"
	}
	if f, err := embedded.Open("defaults/" + filename); err == nil {
		defer f.Close()
		return parseNamed(f, filename)
	}
	for _, d := range l.Dirs {
		p := filepath.Join(d, filename)
		if _, err := os.Stat(p); err == nil {
			return parseFile(p)
		}
	}
	return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
}

// Builtin lists the names of the embedded themes.
func Builtin() []string {
	entries, err := embedded.ReadDir("defaults")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".theme"))
	}
	return names
}

func parseFile(path string) (*Theme, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseNamed(f, path)
}

func parseNamed(r io.Reader, name string) (*Theme, error) {
	t, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("theme %s: %w", name, err)
	}
	return t, nil
}
