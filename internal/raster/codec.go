package raster

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif" // register GIF decoding
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Format selects the encoding used for export.
type Format int

const (
	FormatPNG Format = iota
	FormatJPEG
)

// ParseFormat accepts "png", "jpeg" or "jpg" (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png", "":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	}
	return 0, fmt.Errorf("unsupported image format %q", s)
}

func (f Format) String() string {
	if f == FormatJPEG {
		return "jpeg"
	}
	return "png"
}

func (f Format) MIMEType() string { return "image/" + f.String() }

func (f Format) Extension() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return ".png"
}

// Encode writes the buffer to w in the requested format at the canvas's
// logical resolution.
func (s *Surface) Encode(w io.Writer, f Format) error {
	if !s.Ready() {
		return ErrEncodeUnavailable
	}
	switch f {
	case FormatPNG:
		return png.Encode(w, s.img)
	case FormatJPEG:
		return jpeg.Encode(w, s.img, &jpeg.Options{Quality: s.jpegQuality})
	}
	return fmt.Errorf("unsupported image format %v", f)
}

// EncodeBytes is Encode into a byte slice.
func (s *Surface) EncodeBytes(f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Encode(&buf, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DataURL wraps encoded image data as a base64 data URL.
func DataURL(data []byte, f Format) string {
	if len(data) == 0 {
		return ""
	}
	return "data:" + f.MIMEType() + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Decode reads an encoded image and replaces the buffer with it. On any error
// the buffer is left untouched.
func (s *Surface) Decode(r io.Reader) error {
	img, err := DecodeImage(r)
	if err != nil {
		return err
	}
	return s.Load(Fit(img, s.Bounds().Size(), s.background))
}

// Load copies an image already fitted to the surface size into the buffer.
func (s *Surface) Load(img *image.RGBA) error {
	if img == nil || !img.Bounds().Eq(s.img.Bounds()) {
		return fmt.Errorf("raster: image does not match surface %v", s.img.Bounds())
	}
	draw.Draw(s.img, s.img.Bounds(), img, img.Bounds().Min, draw.Src)
	s.ready = true
	return nil
}

// MaxDecodePixels caps the width×height an encoded image may declare.
// Decoders allocate the full buffer up front, so the header is checked first.
const MaxDecodePixels = 64 << 20

// ErrImageTooLarge is returned for images declaring more than MaxDecodePixels.
var ErrImageTooLarge = errors.New("image dimensions too large")

// CheckDimensions rejects non-positive sizes and sizes over MaxDecodePixels.
func CheckDimensions(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("invalid image dimensions %dx%d", w, h)
	}
	if int64(w)*int64(h) > MaxDecodePixels {
		return fmt.Errorf("%w: %dx%d", ErrImageTooLarge, w, h)
	}
	return nil
}

// DecodeConfig reads the image header and checks the declared size.
func DecodeConfig(data []byte) (image.Config, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return cfg, fmt.Errorf("decode image: %w", err)
	}
	if err := CheckDimensions(cfg.Width, cfg.Height); err != nil {
		return cfg, fmt.Errorf("decode image: %w", err)
	}
	return cfg, nil
}

// DecodeImage decodes PNG, JPEG, GIF, BMP, TIFF or WebP data. The header is
// read first and images over MaxDecodePixels are rejected before decoding.
func DecodeImage(r io.Reader) (image.Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if _, err := DecodeConfig(data); err != nil {
		return nil, err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("decode image: empty %s image", format)
	}
	return img, nil
}

// Fit flattens img onto background and scales it to size. Images already at
// the target size are copied without resampling.
func Fit(img image.Image, size image.Point, background color.Color) *image.RGBA {
	dst := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(dst, dst.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)
	src := img.Bounds()
	if src.Size() == size {
		draw.Draw(dst, dst.Bounds(), img, src.Min, draw.Over)
		return dst
	}
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)
	return dst
}
