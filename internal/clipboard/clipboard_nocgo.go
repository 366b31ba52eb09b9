//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"errors"
	"sync"
)

var (
	initOnce       sync.Once
	initErr        error
	errCGODisabled = errors.New("clipboard operations require cgo support")
)

// ensureInit distinguishes a missing display from a build without cgo so
// the message points at the actual fix.
func ensureInit() error {
	initOnce.Do(func() {
		if hasDisplay() {
			initErr = errCGODisabled
			return
		}
		initErr = errNoDisplay
	})
	return initErr
}

func WriteImageData(data []byte) error {
	if err := ensureInit(); err != nil {
		return err
	}
	return checkPNG(data)
}

func ReadImageData() ([]byte, error) { return nil, ensureInit() }

func WriteText(string) error { return ensureInit() }

func ReadText() (string, error) { return "", ensureInit() }
