package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
)

// Snapshot is an immutable copy of the whole buffer.
type Snapshot struct {
	rect   image.Rectangle
	stride int
	pix    []byte
}

// Snapshot copies the current buffer.
func (s *Surface) Snapshot() *Snapshot {
	pix := make([]byte, len(s.img.Pix))
	copy(pix, s.img.Pix)
	return &Snapshot{rect: s.img.Rect, stride: s.img.Stride, pix: pix}
}

// Restore overwrites the buffer with snap. A snapshot taken from a surface of
// a different size is rejected and the buffer is left as it was.
func (s *Surface) Restore(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("raster: nil snapshot")
	}
	if !snap.rect.Eq(s.img.Rect) || len(snap.pix) != len(s.img.Pix) {
		return fmt.Errorf("raster: snapshot %v does not match surface %v", snap.rect, s.img.Rect)
	}
	copy(s.img.Pix, snap.pix)
	s.ready = true
	return nil
}

func (s *Snapshot) Bounds() image.Rectangle { return s.rect }

// At returns the pixel at (x, y) in the snapshot.
func (s *Snapshot) At(x, y int) color.RGBA {
	if !image.Pt(x, y).In(s.rect) {
		return color.RGBA{}
	}
	o := (y-s.rect.Min.Y)*s.stride + (x-s.rect.Min.X)*4
	return color.RGBA{s.pix[o], s.pix[o+1], s.pix[o+2], s.pix[o+3]}
}

// Equal reports whether both snapshots hold identical pixels.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.rect.Eq(o.rect) && bytes.Equal(s.pix, o.pix)
}

// Image returns a copy of the snapshot as an RGBA image.
func (s *Snapshot) Image() *image.RGBA {
	img := image.NewRGBA(s.rect)
	copy(img.Pix, s.pix)
	return img
}
