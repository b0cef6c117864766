//go:build ((linux || freebsd || openbsd || netbsd || dragonfly) && cgo) || windows || (darwin && cgo)

package clipboard

import (
	"errors"
	"os"
	"runtime"
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce     sync.Once
	initErr      error
	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
)

// ensureInit starts the clipboard library once. X11 and Wayland builds need
// a display.
func ensureInit() error {
	initOnce.Do(func() {
		if needsDisplay() && os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
			initErr = errNoDisplay
			return
		}
		initErr = clipboard.Init()
	})
	return initErr
}

func needsDisplay() bool {
	return runtime.GOOS != "windows" && runtime.GOOS != "darwin"
}

// WriteText replaces the clipboard contents with text.
func WriteText(text string) error {
	if err := ensureInit(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// ReadText returns the clipboard text, or ErrEmpty.
func ReadText() (string, error) {
	if err := ensureInit(); err != nil {
		return "", err
	}
	if data := clipboard.Read(clipboard.FmtText); len(data) > 0 {
		return string(data), nil
	}
	return "", ErrEmpty
}
