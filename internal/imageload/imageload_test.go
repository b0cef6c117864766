package imageload

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/boxannotator/internal/transform"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	p := filepath.Join(t.TempDir(), "img.png")
	f, err := os.Create(p)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return p
}

func TestLoadDecodesAndCaches(t *testing.T) {
	p := writePNG(t, 30, 20)
	calls := 0
	l := New(WithDecoder(func(path string) (image.Image, error) {
		calls++
		return decodeFile(path)
	}))
	img, err := l.Load(p)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 30, 20), img.Bounds())

	_, err = l.Load(p)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	l.Forget(p)
	_, err = l.Load(p)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestLoadRejectsEmptyImage(t *testing.T) {
	l := New(WithDecoder(func(string) (image.Image, error) {
		return image.NewRGBA(image.Rect(0, 0, 0, 5)), nil
	}))
	_, err := l.Load("empty")
	assert.ErrorIs(t, err, transform.ErrEmptyImage)
}

func TestLoadReportsDecodeFailure(t *testing.T) {
	boom := errors.New("boom")
	l := New(WithDecoder(func(string) (image.Image, error) { return nil, boom }))
	_, err := l.Load("x")
	assert.ErrorIs(t, err, boom)
}

func TestLoadAsyncDeliversTicket(t *testing.T) {
	p := writePNG(t, 4, 4)
	l := New()
	got := make(chan Result, 1)
	l.LoadAsync(context.Background(), 7, p, func(r Result) { got <- r })
	select {
	case r := <-got:
		require.NoError(t, r.Err)
		assert.Equal(t, uint64(7), r.Ticket)
		assert.Equal(t, p, r.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("no result")
	}
}

func TestLoadAsyncCancelled(t *testing.T) {
	release := make(chan struct{})
	l := New(WithDecoder(func(string) (image.Image, error) {
		<-release
		return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
	}))
	ctx, cancel := context.WithCancel(context.Background())
	called := make(chan struct{}, 1)
	l.LoadAsync(ctx, 1, "x", func(Result) { called <- struct{}{} })
	cancel()
	close(release)
	select {
	case <-called:
		t.Fatal("callback ran after cancel")
	case <-time.After(50 * time.Millisecond):
	}
}
