//go:build !(linux || freebsd || openbsd || netbsd || dragonfly || windows || (darwin && cgo))

package clipboard

import "errors"

var errUnsupported = errors.New("clipboard text operations are not supported on this platform")

func WriteText(string) error { return errUnsupported }

func ReadText() (string, error) { return "", errUnsupported }
