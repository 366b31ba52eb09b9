package render

import (
	"image"
	"image/color"
	"testing"
)

func TestApplyShadowExpandsBounds(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	subject := image.Pt(5, 5)
	img.Set(subject.X, subject.Y, color.RGBA{R: 255, A: 255})

	opts := ShadowOptions{Radius: 4, Offset: image.Pt(8, 6), Opacity: 0.5}
	out := ApplyShadow(img, opts)
	if out.Image == nil {
		t.Fatal("expected output image")
	}
	expected := image.Rect(0, 0, 22, 20)
	if !out.Image.Bounds().Eq(expected) {
		t.Fatalf("unexpected bounds %v, want %v", out.Image.Bounds(), expected)
	}
	if out.Offset != (image.Point{}) {
		t.Fatalf("unexpected offset %v", out.Offset)
	}
	// Spot check that the shadow alpha was written near the offset pixel.
	shadowPt := subject.Add(opts.Offset).Add(out.Offset)
	if out.Image.RGBAAt(shadowPt.X, shadowPt.Y).A == 0 {
		t.Fatalf("expected shadow alpha at %v", shadowPt)
	}
}

func TestApplyShadowNoShadowWhenOpacityZero(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	fill := color.RGBA{R: 200, G: 100, B: 50, A: 255}
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, fill)
		}
	}
	out := ApplyShadow(img, ShadowOptions{Radius: 12, Offset: image.Pt(20, 10), Opacity: 0})
	if out.Image != img {
		t.Fatal("expected the input image back")
	}
}

func TestApplyShadowBlurredAlpha(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{A: 255})
	opts := ShadowOptions{Radius: 2, Offset: image.Pt(3, 0), Opacity: 1}

	out := ApplyShadow(img, opts)
	if out.Image == nil {
		t.Fatal("expected output image")
	}
	if out.Image.Bounds().Dx() <= img.Bounds().Dx() {
		t.Fatalf("expected wider output bounds")
	}
	// Check that blur spreads alpha beyond the exact offset location.
	base := img.Bounds().Min.Add(opts.Offset).Add(out.Offset)
	baseAlpha := out.Image.RGBAAt(base.X, base.Y).A
	if baseAlpha == 0 {
		t.Fatal("expected alpha at base shadow location")
	}
	// Neighbor pixel should also have alpha because of blur.
	neighbor := out.Image.RGBAAt(base.X+1, base.Y)
	if neighbor.A == 0 {
		t.Fatalf("expected blurred alpha to reach neighbor, base alpha=%d", baseAlpha)
	}
}

func TestShadowMask(t *testing.T) {
	m := ShadowMask(image.Pt(20, 10), 3)
	if !m.Bounds().Eq(image.Rect(0, 0, 26, 16)) {
		t.Fatalf("unexpected bounds %v", m.Bounds())
	}
	if got := m.GrayAt(13, 8).Y; got != 0xff {
		t.Errorf("expected opaque centre, got %d", got)
	}
	if got := m.GrayAt(0, 0).Y; got >= 0x40 {
		t.Errorf("expected faint corner, got %d", got)
	}
	if got := m.GrayAt(3, 8).Y; got == 0 || got == 0xff {
		t.Errorf("expected soft edge, got %d", got)
	}
	if !ShadowMask(image.Pt(0, 5), 3).Bounds().Empty() {
		t.Error("expected empty mask for empty size")
	}
}
