// Package annotate holds the interaction state of an annotation session and
// turns pointer and keyboard events into transformer, selection and store
// operations.
//
// A Session is single threaded. Every handler runs to completion and reports
// whether the scene needs repainting; Scene itself never mutates state.
package annotate

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/example/boxannotator/internal/boxes"
	"github.com/example/boxannotator/internal/clicker"
	"github.com/example/boxannotator/internal/geom"
	"github.com/example/boxannotator/internal/labels"
	"github.com/example/boxannotator/internal/selection"
	"github.com/example/boxannotator/internal/transform"
)

// ErrStaleLoad is returned when a load completes after a newer request.
var ErrStaleLoad = errors.New("stale image load")

const (
	DefaultZoomStep    = 1.2
	DefaultWheelStep   = 1.0
	DefaultDoubleClick = 400 * time.Millisecond
)

// Mode is the pointer interaction in progress.
type Mode int

const (
	ModeIdle Mode = iota
	ModePanning
	ModeMoving
	ModeCollecting
)

func (m Mode) String() string {
	switch m {
	case ModePanning:
		return "panning"
	case ModeMoving:
		return "moving"
	case ModeCollecting:
		return "insert"
	default:
		return "normal"
	}
}

// Ticket identifies one image load request.
type Ticket struct {
	Generation uint64
	Index      int
	Path       string
}

// Commands are the actions a Session delegates to its host.
type Commands interface {
	// LoadImage starts decoding t.Path and reports back through
	// Session.ImageLoaded or Session.ImageFailed.
	LoadImage(t Ticket)
	OpenImages()
	OpenAnnotations()
	OpenLabelMap()
	Export()
	Copy()
	Paste()
}

type nopCommands struct{}

func (nopCommands) LoadImage(Ticket) {}
func (nopCommands) OpenImages() {}
func (nopCommands) OpenAnnotations() {}
func (nopCommands) OpenLabelMap() {}
func (nopCommands) Export() {}
func (nopCommands) Copy() {}
func (nopCommands) Paste() {}

// Session is the consolidated interaction state.
type Session struct {
	log      logrus.FieldLogger
	commands Commands
	now      func() time.Time

	zoomStep    float64
	wheelStep   float64
	doubleClick time.Duration

	store  *boxes.Store
	tr     *transform.Transformer
	sel    *selection.Controller
	clicks clicker.Collector
	labels *labels.Map

	labelIndex int
	hide       bool
	mode       Mode

	imageW, imageH float64
	loaded         bool
	generation     uint64
	pending        bool
	target         int

	window   geom.Position
	cursor   geom.Position
	dragFrom geom.Position
	dragged  bool
	leftDown bool

	lastClick time.Time
	changed   bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option { return func(s *Session) { s.log = log } }

// WithCommands sets the host actions.
func WithCommands(c Commands) Option { return func(s *Session) { s.commands = c } }

// WithLabels sets the label map.
func WithLabels(m *labels.Map) Option { return func(s *Session) { s.labels = m } }

// WithZoomStep sets the wheel zoom factor. Values not above one are ignored.
func WithZoomStep(f float64) Option {
	return func(s *Session) {
		if f > 1 {
			s.zoomStep = f
		}
	}
}

// WithWheelStep sets how much a wheel notch grows the selected box.
func WithWheelStep(d float64) Option {
	return func(s *Session) {
		if d > 0 {
			s.wheelStep = d
		}
	}
}

// WithDoubleClick sets the double click interval.
func WithDoubleClick(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.doubleClick = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// New returns a Session over store for a canvas of the given size.
func New(store *boxes.Store, width, height float64, opts ...Option) *Session {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	s := &Session{
		log:         discard,
		commands:    nopCommands{},
		now:         time.Now,
		zoomStep:    DefaultZoomStep,
		wheelStep:   DefaultWheelStep,
		doubleClick: DefaultDoubleClick,
		store:       store,
		tr:          transform.New(width, height),
		sel:         selection.New(),
		labels:      labels.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Store returns the box store.
func (s *Session) Store() *boxes.Store { return s.store }

// Transformer returns the coordinate transformer.
func (s *Session) Transformer() *transform.Transformer { return s.tr }

// Selection returns the selection controller.
func (s *Session) Selection() *selection.Controller { return s.sel }

// Labels returns the label map.
func (s *Session) Labels() *labels.Map { return s.labels }

// SetLabels replaces the label map. The current label index is kept.
func (s *Session) SetLabels(m *labels.Map) {
	s.labels = m
	s.log.WithField("labels", m.Len()).Info("label map replaced")
}

// Mode returns the interaction mode.
func (s *Session) Mode() Mode { return s.mode }

// Hidden reports whether unselected boxes are hidden.
func (s *Session) Hidden() bool { return s.hide }

// Loaded reports whether the current image has finished loading.
func (s *Session) Loaded() bool { return s.loaded }

// Pending reports whether an image load is in flight. The store stays on
// the displayed image until the load completes.
func (s *Session) Pending() bool { return s.pending }

// editable reports whether annotations of the displayed image may change.
func (s *Session) editable() bool { return s.loaded && !s.pending }

// ImageSize returns the dimensions of the displayed image.
func (s *Session) ImageSize() (float64, float64) { return s.imageW, s.imageH }

// LabelIndex returns the ordinal of the current label.
func (s *Session) LabelIndex() int { return s.labelIndex }

// CurrentLabel returns the label given to new boxes.
func (s *Session) CurrentLabel() string {
	if k, ok := s.labels.Key(s.labelIndex); ok {
		return k
	}
	return strconv.Itoa(s.labelIndex)
}

// TakeChanged reports whether annotations changed since the last call.
func (s *Session) TakeChanged() bool {
	c := s.changed
	s.changed = false
	return c
}

// Resize records a new canvas size and refits the image baseline. The
// accumulated pan and zoom are kept.
func (s *Session) Resize(width, height float64) {
	s.tr.SetSize(width, height)
	if !s.loaded {
		return
	}
	if err := s.tr.ResetScale(s.imageW, s.imageH); err != nil {
		s.log.WithError(err).Warn("resize")
		return
	}
	s.tr.ResetOffset(s.imageW, s.imageH)
}

// SetOrigin records where the canvas sits in the viewport.
func (s *Session) SetOrigin(p geom.Position) { s.tr.SetOrigin(p) }

// SetImages replaces the image list and requests the first image.
func (s *Session) SetImages(names []string) {
	s.store.SetImages(names)
	s.loaded = false
	s.log.WithField("images", len(names)).Info("images opened")
	s.requestImage(0)
}

// ReplaceBoxes sets the current image's boxes and drops the selection.
func (s *Session) ReplaceBoxes(bs []geom.Box) error {
	if err := s.store.SetBoxes(s.store.Index(), bs); err != nil {
		return err
	}
	s.sel.Reset()
	s.changed = true
	return nil
}

// Reselect drops the selection after the store was changed from outside.
func (s *Session) Reselect() { s.sel.Reset() }

// requestImage resets the selection, leaves insert mode and asks the host
// to load image i. Completions for earlier requests are rejected from here
// on.
func (s *Session) requestImage(i int) {
	s.sel.Reset()
	s.clicks.Deactivate()
	if s.mode == ModeCollecting {
		s.mode = ModeIdle
	}
	s.generation++
	if s.store.Len() == 0 {
		s.loaded = false
		s.pending = false
		return
	}
	s.pending = true
	s.target = i
	t := Ticket{Generation: s.generation, Index: i, Path: s.store.Name(i)}
	s.log.WithFields(logrus.Fields{"image": t.Path, "generation": t.Generation}).Debug("image requested")
	s.commands.LoadImage(t)
}

// Generation returns the identifier of the newest load request.
func (s *Session) Generation() uint64 { return s.generation }

// ImageLoaded completes load t with the decoded dimensions and makes
// t.Index the current image. A superseded ticket or empty dimensions leave
// the displayed image and its annotations untouched.
func (s *Session) ImageLoaded(t Ticket, width, height int) error {
	if t.Generation != s.generation {
		return fmt.Errorf("load %s generation %d, want %d: %w", t.Path, t.Generation, s.generation, ErrStaleLoad)
	}
	s.pending = false
	if width <= 0 || height <= 0 {
		return fmt.Errorf("load %s: %dx%d: %w", t.Path, width, height, transform.ErrEmptyImage)
	}
	if err := s.store.Seek(t.Index); err != nil {
		return fmt.Errorf("load %s: %w", t.Path, err)
	}
	if err := s.tr.Fit(float64(width), float64(height)); err != nil {
		return fmt.Errorf("load %s: %w", t.Path, err)
	}
	s.imageW, s.imageH = float64(width), float64(height)
	s.loaded = true
	s.sel.Reset()
	s.log.WithFields(logrus.Fields{"image": t.Path, "width": width, "height": height}).Info("image loaded")
	return nil
}

// ImageFailed reports a failed load. The previous image and its
// annotations stay current.
func (s *Session) ImageFailed(t Ticket, err error) error {
	if t.Generation != s.generation {
		return fmt.Errorf("load %s: %w", t.Path, ErrStaleLoad)
	}
	s.pending = false
	s.log.WithError(err).WithField("image", t.Path).Warn("image load failed")
	return fmt.Errorf("load %s: %w", t.Path, err)
}

// NextImage requests the image after the displayed one, or after the one
// already requested.
func (s *Session) NextImage() { s.stepImage(1) }

// PreviousImage requests the image before the displayed one, or before the
// one already requested.
func (s *Session) PreviousImage() { s.stepImage(-1) }

func (s *Session) stepImage(d int) {
	n := s.store.Len()
	if n == 0 {
		return
	}
	from := s.store.Index()
	if s.pending {
		from = s.target
	}
	s.requestImage(boxes.Wrap(from+d, n))
}

// Refit clears the selection and drops pan and zoom.
func (s *Session) Refit() {
	s.sel.Clear()
	if !s.loaded {
		s.tr.ResetView()
		return
	}
	if err := s.tr.Fit(s.imageW, s.imageH); err != nil {
		s.log.WithError(err).Warn("refit")
	}
}

func (s *Session) imageBounds() geom.Box {
	return geom.Box{Width: s.imageW, Height: s.imageH}
}

func (s *Session) selectedBox() (geom.Box, bool) {
	i := s.sel.Selected()
	if i < 0 {
		return geom.Box{}, false
	}
	b, err := s.store.Box(i)
	if err != nil {
		s.sel.Clear()
		return geom.Box{}, false
	}
	return b, true
}

// mutated records an edit. Any edit other than an edge shift disarms the
// selected box's edge.
func (s *Session) mutated(action string, err error) bool {
	if !strings.HasPrefix(action, "edge") {
		s.sel.Disarm()
	}
	if err != nil {
		s.log.WithError(err).WithField("action", action).Warn("edit failed")
		return false
	}
	s.changed = true
	s.log.WithFields(logrus.Fields{
		"action": action,
		"image":  s.store.Current(),
		"box":    s.sel.Selected(),
	}).Debug("annotations edited")
	return true
}
