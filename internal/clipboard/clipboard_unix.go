//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && cgo

package clipboard

import (
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
)

func ensureInit() error {
	initOnce.Do(func() {
		if !hasDisplay() {
			initErr = errNoDisplay
			return
		}
		initErr = clipboard.Init()
	})
	return initErr
}

func read(f clipboard.Format, empty error) ([]byte, error) {
	if err := ensureInit(); err != nil {
		return nil, err
	}
	data := clipboard.Read(f)
	if len(data) == 0 {
		return nil, empty
	}
	return data, nil
}

// WriteImageData publishes PNG-encoded image data to the clipboard.
func WriteImageData(data []byte) error {
	if err := ensureInit(); err != nil {
		return err
	}
	if err := checkPNG(data); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtImage, data)
	return nil
}

// ReadImageData returns the PNG image data currently on the clipboard.
func ReadImageData() ([]byte, error) {
	return read(clipboard.FmtImage, ErrNoImage)
}

// WriteText places text, such as an exported data URL, on the clipboard.
func WriteText(text string) error {
	if err := ensureInit(); err != nil {
		return err
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

// ReadText returns the clipboard text; paste falls back to it as a path or
// URL when no image is present.
func ReadText() (string, error) {
	data, err := read(clipboard.FmtText, ErrNoText)
	return string(data), err
}
