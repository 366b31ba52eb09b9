//go:build !(linux || freebsd || openbsd || netbsd || dragonfly)

package clipboard

import "errors"

var errUnsupported = errors.New("clipboard operations are not supported on this platform")

func WriteImageData(data []byte) error {
	if err := checkPNG(data); err != nil {
		return err
	}
	return errUnsupported
}

func ReadImageData() ([]byte, error) { return nil, errUnsupported }

func WriteText(string) error { return errUnsupported }

func ReadText() (string, error) { return "", errUnsupported }
