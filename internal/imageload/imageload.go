// Package imageload decodes images for annotation, caching recent decodes
// and validating their dimensions before they reach the transformer.
package imageload

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/example/boxannotator/internal/transform"
)

// DefaultCacheSize is the number of decoded images kept.
const DefaultCacheSize = 8

// Decoder turns a path into an image. imaging.Open with EXIF orientation
// is used unless WithDecoder overrides it.
type Decoder func(path string) (image.Image, error)

// Result is delivered once per asynchronous load.
type Result struct {
	Ticket uint64
	Path   string
	Image  image.Image
	Err    error
}

// Loader is safe for concurrent use.
type Loader struct {
	cache  *lru.Cache[string, image.Image]
	decode Decoder
	log    logrus.FieldLogger
}

// Option configures a Loader.
type Option func(*Loader)

// WithDecoder replaces the file decoder.
func WithDecoder(d Decoder) Option { return func(l *Loader) { l.decode = d } }

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option { return func(l *Loader) { l.log = log } }

// WithCacheSize sets how many decoded images are kept.
func WithCacheSize(n int) Option {
	return func(l *Loader) {
		if c, err := lru.New[string, image.Image](n); err == nil {
			l.cache = c
		}
	}
}

// New returns a Loader.
func New(opts ...Option) *Loader {
	c, _ := lru.New[string, image.Image](DefaultCacheSize)
	l := &Loader{
		cache:  c,
		decode: decodeFile,
		log:    logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

func decodeFile(path string) (image.Image, error) {
	return imaging.Open(path, imaging.AutoOrientation(true))
}

// Load decodes path, or returns the cached image. Images with an empty
// bounding rectangle are rejected.
func (l *Loader) Load(path string) (image.Image, error) {
	if img, ok := l.cache.Get(path); ok {
		return img, nil
	}
	img, err := l.decode(path)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("decode %s: %dx%d: %w", path, b.Dx(), b.Dy(), transform.ErrEmptyImage)
	}
	l.cache.Add(path, img)
	l.log.WithFields(logrus.Fields{"image": path, "width": b.Dx(), "height": b.Dy()}).Debug("decoded image")
	return img, nil
}

// LoadAsync decodes path on a new goroutine and hands the result to done.
// done is not called when ctx is cancelled first.
func (l *Loader) LoadAsync(ctx context.Context, ticket uint64, path string, done func(Result)) {
	go func() {
		img, err := l.Load(path)
		if ctx.Err() != nil {
			return
		}
		done(Result{Ticket: ticket, Path: path, Image: img, Err: err})
	}()
}

// Forget drops path from the cache.
func (l *Loader) Forget(path string) { l.cache.Remove(path) }
