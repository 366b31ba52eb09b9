// Package clipboard exchanges encoded canvas images and text with the
// desktop clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"os"
)

var (
	// ErrNoImage is returned by ReadImageData when the clipboard holds no
	// image.
	ErrNoImage = errors.New("clipboard does not contain image data")
	// ErrNoText is returned by ReadText when the clipboard holds no text.
	ErrNoText = errors.New("clipboard does not contain text data")

	errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")
)

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// checkPNG rejects anything but PNG data; the canvas is always published
// as PNG so other applications can paste it.
func checkPNG(data []byte) error {
	if _, err := png.DecodeConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("clipboard image must be PNG: %w", err)
	}
	return nil
}
