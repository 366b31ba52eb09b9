// Package raster owns the canvas pixel buffer and performs every pixel
// mutation: strokes, shape outlines, flood fill, snapshot/restore and
// encode/decode. No other package reads or writes raw pixels.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
)

const (
	DefaultWidth       = 1024
	DefaultHeight      = 768
	DefaultJPEGQuality = 92
)

// White is the canvas background and the eraser colour.
var White = color.RGBA{255, 255, 255, 255}

// ErrEncodeUnavailable is returned when encoding before InitBlank.
var ErrEncodeUnavailable = errors.New("raster: surface not initialised")

// Surface is a fixed-size RGBA canvas.
type Surface struct {
	img         *image.RGBA
	dc          *gg.Context
	background  color.RGBA
	jpegQuality int
	ready       bool
}

// Option configures a Surface during creation.
type Option func(*Surface)

// WithBackground sets the colour used by InitBlank and for flattening
// transparent images on decode.
func WithBackground(c color.RGBA) Option {
	return func(s *Surface) { s.background = opaque(c) }
}

// WithJPEGQuality sets the quality used when encoding JPEG.
func WithJPEGQuality(q int) Option {
	return func(s *Surface) {
		if q >= 1 && q <= 100 {
			s.jpegQuality = q
		}
	}
}

// New allocates a width×height surface. The buffer is not usable for export
// until InitBlank has been called.
func New(width, height int, opts ...Option) (*Surface, error) {
	if err := CheckDimensions(width, height); err != nil {
		return nil, fmt.Errorf("raster: canvas: %w", err)
	}
	s := &Surface{
		img:         image.NewRGBA(image.Rect(0, 0, width, height)),
		background:  White,
		jpegQuality: DefaultJPEGQuality,
	}
	for _, o := range opts {
		o(s)
	}
	s.dc = gg.NewContextForRGBA(s.img)
	return s, nil
}

// InitBlank fills the buffer with the background colour.
func (s *Surface) InitBlank() {
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(s.background), image.Point{}, draw.Src)
	s.ready = true
}

// Ready reports whether InitBlank or a decode has populated the buffer.
func (s *Surface) Ready() bool { return s != nil && s.ready }

func (s *Surface) Bounds() image.Rectangle { return s.img.Bounds() }
func (s *Surface) Width() int { return s.img.Bounds().Dx() }
func (s *Surface) Height() int { return s.img.Bounds().Dy() }
func (s *Surface) Background() color.RGBA { return s.background }

// At returns the pixel at (x, y); out-of-bounds reads return transparent.
func (s *Surface) At(x, y int) color.RGBA {
	return s.img.RGBAAt(x, y)
}

// Render scales the buffer into dr on dst. Nearest neighbour keeps pixels
// crisp when zoomed in.
func (s *Surface) Render(dst draw.Image, dr image.Rectangle) {
	xdraw.NearestNeighbor.Scale(dst, dr, s.img, s.img.Bounds(), draw.Over, nil)
}

func opaque(c color.RGBA) color.RGBA {
	c.A = 255
	return c
}
