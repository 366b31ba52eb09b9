package render

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

type solidCanvas struct {
	rect image.Rectangle
	col  color.RGBA
}

func (s solidCanvas) CanvasRect() image.Rectangle { return s.rect }

func (s solidCanvas) Render(dst draw.Image) image.Rectangle {
	draw.Draw(dst, s.rect, image.NewUniform(s.col), image.Point{}, draw.Src)
	return s.rect.Intersect(dst.Bounds())
}

var (
	light = color.RGBA{220, 220, 220, 255}
	dark  = color.RGBA{192, 192, 192, 255}
	white = color.RGBA{255, 255, 255, 255}
)

func TestViewportDraw(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 200, 120))
	marker := color.RGBA{1, 2, 3, 255}
	draw.Draw(dst, dst.Bounds(), image.NewUniform(marker), image.Point{}, draw.Src)

	v := NewViewport(light, dark)
	area := image.Rect(40, 20, 200, 120)
	canvas := solidCanvas{rect: image.Rect(60, 30, 120, 70), col: white}
	got := v.Draw(dst, area, canvas)

	if !got.Eq(canvas.rect) {
		t.Fatalf("unexpected canvas rect %v", got)
	}
	if c := dst.RGBAAt(10, 10); c != marker {
		t.Errorf("pixel outside area was changed: %v", c)
	}
	if c := dst.RGBAAt(90, 50); c != white {
		t.Errorf("expected canvas pixel, got %v", c)
	}
	if c := dst.RGBAAt(190, 110); c != light && c != dark {
		t.Errorf("expected checkerboard, got %v", c)
	}
	// Just past the bottom right corner, inside the shadow offset.
	sh := dst.RGBAAt(122, 72)
	if sh == light || sh == dark || sh.R >= dark.R {
		t.Errorf("expected shadowed backdrop, got %v", sh)
	}
}

func TestViewportCachesShadowMask(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	v := NewViewport(light, dark)
	canvas := solidCanvas{rect: image.Rect(10, 10, 50, 50), col: white}
	v.Draw(dst, dst.Bounds(), canvas)
	first := v.mask
	v.Draw(dst, dst.Bounds(), solidCanvas{rect: image.Rect(20, 20, 60, 60), col: white})
	if v.mask != first {
		t.Error("expected mask to be reused for the same canvas size")
	}
	v.Draw(dst, dst.Bounds(), solidCanvas{rect: image.Rect(20, 20, 80, 60), col: white})
	if v.mask == first {
		t.Error("expected new mask after resize")
	}
}

func TestViewportEmptyArea(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 10, 10))
	v := NewViewport(light, dark)
	if r := v.Draw(dst, image.Rect(20, 20, 30, 30), solidCanvas{rect: image.Rect(0, 0, 5, 5)}); !r.Empty() {
		t.Errorf("expected empty result, got %v", r)
	}
}
