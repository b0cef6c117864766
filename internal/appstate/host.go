package appstate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/boxannotator/internal/annotate"
	"github.com/example/boxannotator/internal/boxes"
	"github.com/example/boxannotator/internal/clipboard"
	"github.com/example/boxannotator/internal/config"
	"github.com/example/boxannotator/internal/imageload"
	"github.com/example/boxannotator/internal/notify"
	"github.com/example/boxannotator/internal/persist"
	"github.com/example/boxannotator/internal/workspace"
)

// loadedEvent carries a finished decode back onto the event loop.
type loadedEvent struct {
	ticket annotate.Ticket
	result imageload.Result
}

// Host performs the actions a Session delegates: decoding images, file
// import and export, clipboard and autosave. It runs on the event loop
// goroutine except for the decode callbacks, which only post events.
type Host struct {
	Session   *annotate.Session
	Loader    *imageload.Loader
	Workspace *workspace.Store
	Notifier  *notify.Notifier
	Clipboard clipboard.Backend
	Config    *config.Config

	Sources []string // image files and directories
	Imports []string // annotation archives, files and directories
	SaveDir string

	// Send posts an event to the window's queue.
	Send func(e any)
	Now  func() time.Time
	Log  logrus.FieldLogger

	image   image.Image
	ctx     context.Context
	cancel  context.CancelFunc
	message string
	until   time.Time
}

// NewHost returns a Host with defaults for everything but Session, which the
// caller creates with annotate.WithCommands(h).
func NewHost(cfg *config.Config, log logrus.FieldLogger) *Host {
	if cfg == nil {
		cfg = config.New()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Host{
		Loader:    imageload.New(imageload.WithLogger(log)),
		Clipboard: clipboard.System{},
		Config:    cfg,
		Send:      func(any) {},
		Now:       time.Now,
		Log:       log,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Close stops pending decodes.
func (h *Host) Close() { h.cancel() }

// Image returns the decoded current image, or nil before the first load.
func (h *Host) Image() image.Image { return h.image }

// Message returns the transient status message if it has not expired.
func (h *Host) Message() string {
	if h.message == "" || h.Now().After(h.until) {
		return ""
	}
	return h.message
}

// DismissMessage clears the status message.
func (h *Host) DismissMessage() { h.message = "" }

func (h *Host) say(format string, args ...any) {
	h.message = fmt.Sprintf(format, args...)
	h.until = h.Now().Add(2 * time.Second)
	h.Log.Info(h.message)
}

// LoadImage starts an asynchronous decode of t.Path.
func (h *Host) LoadImage(t annotate.Ticket) {
	h.Loader.LoadAsync(h.ctx, t.Generation, t.Path, func(r imageload.Result) {
		h.Send(loadedEvent{ticket: t, result: r})
	})
}

// Loaded completes a decode on the event loop. It reports whether the
// displayed image changed.
func (h *Host) Loaded(e loadedEvent) bool {
	if e.result.Err != nil {
		if err := h.Session.ImageFailed(e.ticket, e.result.Err); err != nil && !errors.Is(err, annotate.ErrStaleLoad) {
			h.say("cannot open %s", filepath.Base(e.ticket.Path))
			return true
		}
		return false
	}
	b := e.result.Image.Bounds()
	if err := h.Session.ImageLoaded(e.ticket, b.Dx(), b.Dy()); err != nil {
		if !errors.Is(err, annotate.ErrStaleLoad) {
			h.Log.WithError(err).Warn("image rejected")
		}
		return false
	}
	h.image = e.result.Image
	return true
}

// OpenImages rescans the configured sources and restores saved boxes.
func (h *Host) OpenImages() {
	names, err := ScanImages(h.Sources)
	if err != nil {
		h.Log.WithError(err).Warn("scan images")
		h.say("cannot read images: %v", err)
		return
	}
	if len(names) == 0 {
		h.say("no images found")
		return
	}
	h.image = nil
	h.Session.SetImages(names)
	if h.Workspace != nil {
		n, err := h.Workspace.RestoreAll(h.Session.Store())
		if err != nil {
			h.Log.WithError(err).Warn("restore workspace")
		} else if n > 0 {
			h.Log.WithField("images", n).Info("restored saved boxes")
		}
		h.Session.Reselect()
	}
	h.Notifier.Load(len(names))
}

// OpenAnnotations imports the configured files, or the newest archive in
// the save directory when none are configured.
func (h *Host) OpenAnnotations() {
	paths := h.Imports
	if len(paths) == 0 {
		latest, err := LatestArchive(h.SaveDir)
		if err != nil {
			h.say("nothing to import")
			return
		}
		paths = []string{latest}
	}
	es, err := ReadAnnotations(paths)
	if err != nil {
		h.Log.WithError(err).Warn("import skipped entries")
	}
	st := h.Session.Store()
	unmatched, err := persist.Apply(st, es)
	if err != nil {
		h.Log.WithError(err).Warn("import could not store entries")
	}
	h.Session.Reselect()
	applied := len(es) - len(unmatched)
	if len(unmatched) > 0 {
		h.Log.WithField("names", unmatched).Warn("annotations match no image")
	}
	h.autosaveAll()
	h.say("imported %d of %d", applied, len(es))
	h.Notifier.Import(paths[0], applied, len(unmatched))
}

// OpenLabelMap reloads the label map from the configuration.
func (h *Host) OpenLabelMap() {
	m, err := h.Config.LabelMapFor()
	if err != nil {
		h.Log.WithError(err).Warn("label map")
		h.say("label map: %v", err)
		return
	}
	h.Session.SetLabels(m)
	h.say("%d labels", m.Len())
}

// Export writes every image's boxes to a new archive in the save directory.
func (h *Host) Export() {
	path, size, err := persist.ExportFile(h.SaveDir, h.Session.Store(), h.Now())
	if err != nil {
		h.Log.WithError(err).Warn("export")
		h.say("export failed: %v", err)
		return
	}
	h.say("exported %s", filepath.Base(path))
	h.Notifier.Export(path, size)
}

// Copy places the current image's boxes on the clipboard.
func (h *Host) Copy() {
	bs := h.Session.Store().Boxes()
	if err := clipboard.CopyBoxes(h.Clipboard, bs); err != nil {
		h.Log.WithError(err).Warn("copy")
		h.say("copy failed")
		return
	}
	h.say("copied %d boxes", len(bs))
}

// Paste replaces the current image's boxes with the clipboard contents.
func (h *Host) Paste() {
	bs, err := clipboard.PasteBoxes(h.Clipboard)
	if err != nil {
		h.Log.WithError(err).Warn("paste")
		h.say("clipboard has no boxes")
		return
	}
	if err := h.Session.ReplaceBoxes(bs); err != nil {
		h.Log.WithError(err).Warn("paste")
		return
	}
	h.say("pasted %d boxes", len(bs))
}

// Autosave writes the current image's boxes when they changed since the
// last call.
func (h *Host) Autosave() {
	if !h.Session.TakeChanged() || h.Workspace == nil {
		return
	}
	st := h.Session.Store()
	if st.Len() == 0 {
		return
	}
	base := boxes.BaseName(st.Current())
	if err := h.Workspace.Save(base, st.Boxes()); err != nil {
		h.Log.WithError(err).WithField("image", base).Warn("autosave")
	}
}

func (h *Host) autosaveAll() {
	h.Session.TakeChanged()
	if h.Workspace == nil {
		return
	}
	if err := h.Workspace.SaveAll(h.Session.Store()); err != nil {
		h.Log.WithError(err).Warn("autosave")
	}
}
