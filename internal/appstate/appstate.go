// Package appstate runs the annotation window: a shiny event loop feeding
// an annotate.Session and painting its scene.
package appstate

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/boxannotator/internal/annotate"
	"github.com/example/boxannotator/internal/render"
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

const (
	defaultWidth  = 1024
	defaultHeight = 768
)

// AppState holds the window configuration.
type AppState struct {
	Host     *Host
	Renderer *render.Renderer
	Title    string
	Width    int
	Height   int

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithRenderer sets the renderer.
func WithRenderer(r *render.Renderer) Option { return func(a *AppState) { a.Renderer = r } }

// WithSize sets the initial window size.
func WithSize(w, h int) Option {
	return func(a *AppState) {
		if w > 0 && h > 0 {
			a.Width, a.Height = w, h
		}
	}
}

// WithTitle sets the window title.
func WithTitle(t string) Option { return func(a *AppState) { a.Title = t } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState around h.
func New(h *Host, opts ...Option) *AppState {
	a := &AppState{Host: h, Title: "boxannotator", Width: defaultWidth, Height: defaultHeight}
	for _, o := range opts {
		o(a)
	}
	if a.Renderer == nil {
		a.Renderer = render.New(nil)
	}
	return a
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		a.Host.Close()
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver.
func (a *AppState) Run() { driver.Main(a.Main) }

type paintState struct {
	width, height int
	scene         annotate.Scene
	image         image.Image
	message       string
}

// Main is the event loop. All session state is touched on this goroutine;
// frames are painted on a second one from snapshots.
func (a *AppState) Main(s screen.Screen) {
	h := a.Host
	sess := h.Session
	width, height := a.Width, a.Height

	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: a.Title})
	if err != nil {
		h.Log.WithError(err).Error("new window")
		return
	}
	defer w.Release()
	defer a.notifyClose()

	h.Send = w.Send
	sess.Resize(float64(width), float64(height-render.StatusHeight(a.Renderer.Face)))

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	defer close(paintCh)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			a.drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()

	h.OpenImages()
	if len(h.Imports) > 0 {
		h.OpenAnnotations()
	}

	for {
		var dirty bool
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			sess.Resize(float64(width), float64(height-render.StatusHeight(a.Renderer.Face)))
			dirty = true
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := paintState{width: width, height: height, scene: sess.Scene(), image: h.Image(), message: h.Message()}
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case loadedEvent:
			dirty = h.Loaded(e)
		case mouse.Event:
			if e.Direction == mouse.DirPress && h.Message() != "" {
				h.DismissMessage()
			}
			dirty = sess.HandleMouse(e)
		case key.Event:
			if e.Code == key.CodeQ && e.Modifiers&key.ModControl != 0 {
				return
			}
			dirty = sess.HandleKey(e) || h.Message() != ""
		case error:
			h.Log.WithError(e).Warn("window event")
		}
		h.Autosave()
		if dirty {
			w.Send(paint.Event{})
		}
	}
}

func (a *AppState) drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		a.Host.Log.WithError(err).Warn("new buffer")
		return
	}
	defer b.Release()

	a.Renderer.Draw(b.RGBA(), st.image, st.scene)
	if ctx.Err() != nil {
		return
	}
	if st.message != "" {
		drawMessage(b.RGBA(), st.message)
	}
	if ctx.Err() != nil {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

// drawMessage centres msg in a framed panel.
func drawMessage(dst *image.RGBA, msg string) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: face}
	wmsg := d.MeasureString(msg).Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	descent := face.Metrics().Descent.Ceil()
	bounds := dst.Bounds()
	px := (bounds.Dx() - wmsg) / 2
	py := (bounds.Dy()-ascent-descent)/2 + ascent
	rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
	draw.Draw(dst, rect, &image.Uniform{color.RGBA{255, 255, 255, 230}}, image.Point{}, draw.Over)
	draw.Draw(dst, image.Rect(rect.Min.X, rect.Max.Y-2, rect.Max.X, rect.Max.Y), image.Black, image.Point{}, draw.Src)
	d.Dot = fixed.P(px, py)
	d.DrawString(msg)
}
