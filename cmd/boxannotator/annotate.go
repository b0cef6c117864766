package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/adrg/xdg"
	"github.com/mitchellh/go-homedir"

	"github.com/example/boxannotator/internal/annotate"
	"github.com/example/boxannotator/internal/appstate"
	"github.com/example/boxannotator/internal/boxes"
	"github.com/example/boxannotator/internal/render"
	"github.com/example/boxannotator/internal/workspace"
)

const workspaceRelPath = "boxannotator/workspace.db"

// runWindow opens the window and blocks until it closes.
var runWindow = func(a *appstate.AppState) { a.Run() }

type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// annotateCmd opens the annotation window.
type annotateCmd struct {
	*root
	fs          *flag.FlagSet
	imports     listFlag
	saveDir     string
	workspace   string
	noWorkspace bool
	width       int
	height      int
	sources     []string
}

func (a *annotateCmd) FlagSet() *flag.FlagSet {
	return a.fs
}

func parseAnnotateCmd(args []string, r *root) (*annotateCmd, error) {
	fs := flag.NewFlagSet("annotate", flag.ContinueOnError)
	a := &annotateCmd{root: r, fs: fs}
	fs.Var(&a.imports, "import", "annotation archive, file or directory to import (repeatable)")
	fs.StringVar(&a.saveDir, "save-dir", "", "directory exports are written to")
	fs.StringVar(&a.workspace, "workspace", "", "autosave database path")
	fs.BoolVar(&a.noWorkspace, "no-workspace", false, "disable autosave")
	fs.IntVar(&a.width, "width", 0, "initial window width")
	fs.IntVar(&a.height, "height", 0, "initial window height")
	fs.Usage = usageFunc(a)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	a.sources = fs.Args()
	if len(a.sources) == 0 {
		return nil, &UsageError{of: a}
	}
	if a.width < 0 || a.height < 0 {
		return nil, fmt.Errorf("window size %dx%d: must not be negative", a.width, a.height)
	}
	return a, nil
}

func (a *annotateCmd) workspacePath() (string, error) {
	switch {
	case a.workspace != "":
		return homedir.Expand(a.workspace)
	case a.config.Workspace != "":
		return homedir.Expand(a.config.Workspace)
	}
	return xdg.DataFile(workspaceRelPath)
}

func (a *annotateCmd) Run() error {
	cfg := a.config
	if a.saveDir != "" {
		cfg.SaveDir = a.saveDir
	}
	saveDir, err := cfg.SaveDirectory()
	if err != nil {
		return fmt.Errorf("save directory: %w", err)
	}
	m, err := cfg.LabelMapFor()
	if err != nil {
		return fmt.Errorf("label map: %w", err)
	}

	h := appstate.NewHost(cfg, a.log)
	h.Sources = a.sources
	h.Imports = a.imports
	h.SaveDir = saveDir
	h.Notifier = a.notifier

	if !a.noWorkspace {
		path, err := a.workspacePath()
		if err != nil {
			return fmt.Errorf("workspace path: %w", err)
		}
		ws, err := workspace.Open(path)
		if err != nil {
			return err
		}
		defer ws.Close()
		h.Workspace = ws
		a.log.WithField("path", path).Debug("workspace opened")
	}

	h.Session = annotate.New(boxes.NewStore(), 0, 0,
		annotate.WithCommands(h),
		annotate.WithLabels(m),
		annotate.WithZoomStep(cfg.ZoomStep),
		annotate.WithWheelStep(cfg.WheelStep),
		annotate.WithDoubleClick(cfg.DoubleClick),
		annotate.WithLogger(a.log),
	)

	st := appstate.New(h,
		appstate.WithRenderer(render.New(a.activeTheme)),
		appstate.WithSize(a.width, a.height),
		appstate.WithTitle(a.program),
	)
	runWindow(st)
	return nil
}
