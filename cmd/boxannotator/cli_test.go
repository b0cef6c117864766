package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/boxannotator/internal/appstate"
	"github.com/example/boxannotator/internal/geom"
	"github.com/example/boxannotator/internal/persist"
)

// testRoot returns a root reading its configuration from a file in a
// temporary directory and writing to a buffer.
func testRoot(t *testing.T, rc string) (*root, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.rc")
	if err := os.WriteFile(path, []byte(rc), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	original := configPathOverride
	configPathOverride = path
	t.Cleanup(func() { configPathOverride = original })

	r := newRoot()
	var out bytes.Buffer
	r.stdout = &out
	return r, &out
}

func TestRunWithoutCommandIsUsageError(t *testing.T) {
	r, _ := testRoot(t, "")
	err := r.Run(nil)
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if want := "Commands:"; !strings.Contains(uerr.Error(), want) {
		t.Fatalf("expected help to contain %q, got %q", want, uerr.Error())
	}
	if want := "-notify-export"; !strings.Contains(uerr.Error(), want) {
		t.Fatalf("expected help to list %q, got %q", want, uerr.Error())
	}
}

func TestRunUnknownCommand(t *testing.T) {
	r, _ := testRoot(t, "")
	var uerr *UsageError
	if err := r.Run([]string{"bogus"}); !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
}

func TestVersion(t *testing.T) {
	r, out := testRoot(t, "")
	if err := r.Run([]string{"version"}); err != nil {
		t.Fatalf("version: %v", err)
	}
	if want := "boxannotator version dev"; !strings.Contains(out.String(), want) {
		t.Fatalf("expected %q, got %q", want, out.String())
	}
}

func TestParseAnnotateRequiresSources(t *testing.T) {
	r, _ := testRoot(t, "")
	_, err := parseAnnotateCmd([]string{"-no-workspace"}, r)
	var uerr *UsageError
	if !errors.As(err, &uerr) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if want := "insert mode"; !strings.Contains(uerr.Error(), want) {
		t.Fatalf("expected key help, got %q", uerr.Error())
	}
}

func TestAnnotateRunWiresHost(t *testing.T) {
	var got *appstate.AppState
	original := runWindow
	runWindow = func(a *appstate.AppState) { got = a }
	t.Cleanup(func() { runWindow = original })

	r, _ := testRoot(t, "zoom_step = 1.5\n")
	dir := t.TempDir()
	ws := filepath.Join(dir, "ws", "workspace.db")
	err := r.Run([]string{"annotate", "-workspace", ws, "-save-dir", dir, "-import", "a.zip", "-import", "b", "-width", "640", "-height", "480", "images"})
	if err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if got == nil {
		t.Fatalf("window was not run")
	}
	h := got.Host
	if h.Session == nil {
		t.Fatalf("session not created")
	}
	if h.SaveDir != dir {
		t.Fatalf("save dir %q, want %q", h.SaveDir, dir)
	}
	if len(h.Sources) != 1 || h.Sources[0] != "images" {
		t.Fatalf("unexpected sources %v", h.Sources)
	}
	if len(h.Imports) != 2 || h.Imports[1] != "b" {
		t.Fatalf("unexpected imports %v", h.Imports)
	}
	if got.Width != 640 || got.Height != 480 {
		t.Fatalf("size %dx%d", got.Width, got.Height)
	}
	if h.Workspace == nil {
		t.Fatalf("workspace not opened")
	}
	if _, err := os.Stat(ws); err != nil {
		t.Fatalf("workspace file: %v", err)
	}
}

func TestAnnotateRunWithoutWorkspace(t *testing.T) {
	var got *appstate.AppState
	original := runWindow
	runWindow = func(a *appstate.AppState) { got = a }
	t.Cleanup(func() { runWindow = original })

	r, _ := testRoot(t, "")
	if err := r.Run([]string{"annotate", "-no-workspace", "-save-dir", t.TempDir(), "x.png"}); err != nil {
		t.Fatalf("annotate: %v", err)
	}
	if got.Host.Workspace != nil {
		t.Fatalf("workspace should be disabled")
	}
}

func writeBoxes(t *testing.T, path string, bs ...geom.Box) {
	t.Helper()
	data, err := persist.MarshalBoxes(bs)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestExportBundlesDirectory(t *testing.T) {
	r, out := testRoot(t, "")
	dir := t.TempDir()
	writeBoxes(t, filepath.Join(dir, "cat.json"), geom.Box{Label: "0", X: 1, Y: 2, Width: 3, Height: 4})
	writeBoxes(t, filepath.Join(dir, "dog.json"))
	archive := filepath.Join(t.TempDir(), "out.zip")

	if err := r.Run([]string{"export", "-o", archive, dir}); err != nil {
		t.Fatalf("export: %v", err)
	}
	if want := "2 images"; !strings.Contains(out.String(), want) {
		t.Fatalf("expected %q in %q", want, out.String())
	}
	es, err := persist.OpenArchive(archive)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(es) != 2 || es[0].Base != "cat" || len(es[0].Boxes) != 1 {
		t.Fatalf("unexpected entries %+v", es)
	}
}

func TestExportRejectsMalformed(t *testing.T) {
	r, _ := testRoot(t, "")
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	archive := filepath.Join(t.TempDir(), "out.zip")
	err := r.Run([]string{"export", "-o", archive, dir})
	if err == nil {
		t.Fatalf("expected error")
	}
	if want := "failed to export"; !strings.Contains(err.Error(), want) {
		t.Fatalf("expected %q, got %v", want, err)
	}
	if _, err := os.Stat(archive); !os.IsNotExist(err) {
		t.Fatalf("partial archive left behind: %v", err)
	}
}

func TestLabelsTable(t *testing.T) {
	r, out := testRoot(t, "[labels]\ncat = #ff0000\ndog = blue\n")
	if err := r.Run([]string{"labels"}); err != nil {
		t.Fatalf("labels: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and two rows, got %q", out.String())
	}
	if f := strings.Fields(lines[2]); len(f) != 3 || f[0] != "2" || f[1] != "dog" || f[2] != "blue" {
		t.Fatalf("unexpected row %q", lines[2])
	}
}

func TestLabelsJSON(t *testing.T) {
	r, out := testRoot(t, "")
	if err := r.Run([]string{"labels", "-json"}); err != nil {
		t.Fatalf("labels: %v", err)
	}
	if want := `"0": "#66ff66"`; !strings.Contains(out.String(), want) {
		t.Fatalf("expected %q in %q", want, out.String())
	}
}

func TestConfigPrintAndSave(t *testing.T) {
	r, out := testRoot(t, "zoom_step = 2\n")
	if err := r.Run([]string{"config", "print"}); err != nil {
		t.Fatalf("print: %v", err)
	}
	if want := "zoom_step = 2"; !strings.Contains(out.String(), want) {
		t.Fatalf("expected %q in %q", want, out.String())
	}

	r, _ = testRoot(t, "wheel_step = 3\n")
	if err := r.Run([]string{"config", "save"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(configPathOverride)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	if want := "wheel_step = 3"; !strings.Contains(string(data), want) {
		t.Fatalf("expected %q in %q", want, data)
	}
}

func TestConfigUnknownSubcommand(t *testing.T) {
	r, _ := testRoot(t, "")
	err := r.Run([]string{"config", "frob"})
	if err == nil || !strings.Contains(err.Error(), "unknown config command") {
		t.Fatalf("unexpected error %v", err)
	}
}
