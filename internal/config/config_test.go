package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/boxannotator/internal/theme"
)

func TestParse(t *testing.T) {
	input := `
theme = my_custom_theme
save_dir = /tmp/exports
zoom_step = 1.5
double_click_ms = 250

[notify]
export = true
import = false
load = true

[labels]
cat = #ff0000
dog = blue

[theme.my_custom_theme]
Background = #111111
Foreground = #FFFFFF
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Theme != "my_custom_theme" {
		t.Errorf("Expected theme 'my_custom_theme', got '%s'", cfg.Theme)
	}
	if cfg.SaveDir != "/tmp/exports" {
		t.Errorf("Expected save_dir '/tmp/exports', got '%s'", cfg.SaveDir)
	}
	if cfg.ZoomStep != 1.5 {
		t.Errorf("zoom_step = %v", cfg.ZoomStep)
	}
	if cfg.WheelStep != 1 {
		t.Errorf("wheel_step default = %v", cfg.WheelStep)
	}
	if cfg.DoubleClick != 250*time.Millisecond {
		t.Errorf("double click = %v", cfg.DoubleClick)
	}
	if cfg.Notify != (Notify{Export: true, Load: true}) {
		t.Errorf("notify = %+v", cfg.Notify)
	}

	m, err := cfg.LabelMapFor()
	if err != nil {
		t.Fatalf("label map: %v", err)
	}
	if k, _ := m.Key(1); k != "dog" {
		t.Errorf("second label = %q", k)
	}

	th, ok := cfg.Themes["my_custom_theme"]
	if !ok {
		t.Fatal("Expected theme 'my_custom_theme' to be loaded")
	}
	if th.Background.R != 0x11 || th.Background.G != 0x11 || th.Background.B != 0x11 {
		t.Errorf("Unexpected Background color: %+v", th.Background)
	}
}

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"zoom_step = 0.5",
		"double_click_ms = soon",
		"[notify]\nexport = maybe",
		"[labels]\ncat = notacolour",
		"[theme.x]\nBackground = #12",
	} {
		if _, err := Parse(strings.NewReader(input)); err == nil {
			t.Errorf("%q: expected error", input)
		}
	}
}

func TestCircular(t *testing.T) {
	input := `theme = dark
save_dir = ~/annotations
workspace = /var/lib/ws.db

[notify]
export = true
import = true
load = false

[labels]
1 = #00ff00
0 = red

[theme.custom]
Name = custom
Background = #000000
Foreground = #FFFFFF
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	generated := cfg.String()

	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("Circular parse failed: %v\n%s", err, generated)
	}

	if cfg.Theme != cfg2.Theme {
		t.Errorf("Theme mismatch: %q vs %q", cfg.Theme, cfg2.Theme)
	}
	if cfg.SaveDir != cfg2.SaveDir || cfg.Workspace != cfg2.Workspace {
		t.Errorf("path mismatch: %+v vs %+v", cfg, cfg2)
	}
	if cfg.Notify != cfg2.Notify {
		t.Errorf("Notify mismatch: %+v vs %+v", cfg.Notify, cfg2.Notify)
	}
	if cfg.DoubleClick != cfg2.DoubleClick || cfg.ZoomStep != cfg2.ZoomStep {
		t.Errorf("step mismatch")
	}
	if len(cfg2.Labels) != 2 || cfg2.Labels[0] != cfg.Labels[0] {
		t.Errorf("labels mismatch: %+v", cfg2.Labels)
	}

	t1 := cfg.Themes["custom"]
	t2 := cfg2.Themes["custom"]
	if t1 == nil || t2 == nil {
		t.Fatalf("Custom theme missing in one config")
	}
	if *t1 != *t2 {
		t.Errorf("Theme mismatch: %+v vs %+v", t1, t2)
	}
}

func TestThemeNameFromEnv(t *testing.T) {
	cfg := New()
	cfg.Theme = "light"
	t.Setenv(ThemeEnv, "")
	if got := cfg.ThemeName(); got != "light" {
		t.Errorf("ThemeName() = %q", got)
	}
	t.Setenv(ThemeEnv, "dark")
	if got := cfg.ThemeName(); got != "dark" {
		t.Errorf("ThemeName() with env = %q", got)
	}
}

func TestResolveThemePrefersConfig(t *testing.T) {
	cfg := New()
	cfg.Themes["mine"] = theme.Default()
	cfg.Themes["mine"].Name = "mine"
	th, err := cfg.ResolveTheme("mine", &theme.Loader{})
	if err != nil || th.Name != "mine" {
		t.Fatalf("ResolveTheme = %v, %v", th, err)
	}
	if _, err := cfg.ResolveTheme("absent", &theme.Loader{}); err == nil {
		t.Error("expected not found")
	}
}

func TestLoaderOverrideAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "rc")
	l := NewLoader("1.0", path)

	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load without file: %v", err)
	}
	cfg.SaveDir = "/srv/out"
	written, err := l.Save(cfg)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if written != path {
		t.Errorf("saved to %q", written)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatal(err)
	}

	again, err := l.Load()
	if err != nil {
		t.Fatal(err)
	}
	if again.SaveDir != "/srv/out" {
		t.Errorf("reloaded save_dir %q", again.SaveDir)
	}
}
