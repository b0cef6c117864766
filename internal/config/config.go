// Package config reads and writes the rc file.
package config

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"

	"github.com/example/boxannotator/internal/labels"
	"github.com/example/boxannotator/internal/theme"
)

// ThemeEnv overrides the configured theme.
const ThemeEnv = "BOXANNOTATOR_THEME"

// Notify holds notification settings.
type Notify struct {
	Export bool
	Import bool
	Load   bool
}

// Config holds the application configuration.
type Config struct {
	Theme       string
	SaveDir     string
	LabelMap    string
	Workspace   string
	ZoomStep    float64
	WheelStep   float64
	DoubleClick time.Duration
	Notify      Notify
	Labels      []labels.Entry
	Themes      map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		ZoomStep:    1.2,
		WheelStep:   1,
		DoubleClick: 400 * time.Millisecond,
		Themes:      make(map[string]*theme.Theme),
	}
}

// ThemeName applies the environment override.
func (c *Config) ThemeName() string {
	if v := os.Getenv(ThemeEnv); v != "" {
		return v
	}
	return c.Theme
}

// ResolveTheme returns a theme defined in the rc file, or loads it with l.
func (c *Config) ResolveTheme(name string, l *theme.Loader) (*theme.Theme, error) {
	if t, ok := c.Themes[name]; ok {
		return t, nil
	}
	return l.Load(name)
}

// LabelMapFor picks the label map: a map file wins over the [labels]
// section, which wins over the built in map.
func (c *Config) LabelMapFor() (*labels.Map, error) {
	if c.LabelMap != "" {
		p, err := homedir.Expand(c.LabelMap)
		if err != nil {
			return nil, err
		}
		return labels.Load(p)
	}
	if len(c.Labels) > 0 {
		return labels.New(c.Labels)
	}
	return labels.Default(), nil
}

// SaveDirectory returns SaveDir with ~ expanded, or the working directory.
func (c *Config) SaveDirectory() (string, error) {
	if c.SaveDir == "" {
		return os.Getwd()
	}
	return homedir.Expand(c.SaveDir)
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder
	_ = c.Write(&sb)
	return sb.String()
}

// Write emits c in the format Parse reads.
func (c *Config) Write(w io.Writer) error {
	var sb strings.Builder
	root := []struct{ key, value string }{
		{"theme", c.Theme},
		{"save_dir", c.SaveDir},
		{"label_map", c.LabelMap},
		{"workspace", c.Workspace},
	}
	for _, kv := range root {
		if kv.value != "" {
			fmt.Fprintf(&sb, "%s = %s\n", kv.key, kv.value)
		}
	}
	fmt.Fprintf(&sb, "zoom_step = %s\n", strconv.FormatFloat(c.ZoomStep, 'g', -1, 64))
	fmt.Fprintf(&sb, "wheel_step = %s\n", strconv.FormatFloat(c.WheelStep, 'g', -1, 64))
	fmt.Fprintf(&sb, "double_click_ms = %d\n", c.DoubleClick.Milliseconds())
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "export = %v\n", c.Notify.Export)
	fmt.Fprintf(&sb, "import = %v\n", c.Notify.Import)
	fmt.Fprintf(&sb, "load = %v\n", c.Notify.Load)
	sb.WriteString("\n")

	if len(c.Labels) > 0 {
		sb.WriteString("[labels]\n")
		for _, e := range c.Labels {
			fmt.Fprintf(&sb, "%s = %s\n", e.Key, e.Color)
		}
		sb.WriteString("\n")
	}

	var names []string
	for name := range c.Themes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		if err := c.Themes[name].Write(&sb); err != nil {
			return err
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
