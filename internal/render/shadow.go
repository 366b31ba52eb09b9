// Package render composes the editor viewport: backdrop, drop shadow and the
// zoomed canvas.
package render

import (
	"image"
	"image/color"
	"image/draw"
)

// ShadowOptions configures a drop shadow. Radius is the box blur radius and
// Opacity the shadow's peak alpha in 0..1.
type ShadowOptions struct {
	Radius  int
	Offset  image.Point
	Opacity float64
}

func (o ShadowOptions) normalized() ShadowOptions {
	o.Radius = max(o.Radius, 0)
	o.Opacity = min(max(o.Opacity, 0), 1)
	return o
}

func (o ShadowOptions) shade() *image.Uniform {
	return image.NewUniform(color.RGBA{A: uint8(o.Opacity*255 + 0.5)})
}

// ShadowResult captures the output of ApplyShadow.
type ShadowResult struct {
	// Image holds the source composited over its shadow, zero based.
	Image *image.RGBA
	// Offset is where the source's top-left corner landed inside Image.
	Offset image.Point
}

// DefaultShadowOptions is the soft shadow used behind the white canvas and
// by "draw -shadow".
func DefaultShadowOptions() ShadowOptions {
	return ShadowOptions{
		Radius:  12,
		Offset:  image.Pt(6, 6),
		Opacity: 0.45,
	}
}

// ApplyShadow returns img over a blurred shadow of its alpha channel. The
// result grows to hold both and is transparent outside them. With zero
// opacity, or an empty image, img itself is returned.
func ApplyShadow(img *image.RGBA, opts ShadowOptions) ShadowResult {
	if img == nil {
		return ShadowResult{}
	}
	opts = opts.normalized()
	if img.Bounds().Empty() || opts.Opacity == 0 {
		return ShadowResult{Image: img}
	}

	src := img.Bounds()
	shadow := src.Inset(-opts.Radius).Add(opts.Offset)
	union := src.Union(shadow)
	dst := image.NewRGBA(union.Sub(union.Min))

	mask := blurGray(alphaMask(img, opts.Radius), opts.Radius)
	draw.DrawMask(dst, mask.Bounds().Add(shadow.Min.Sub(union.Min)), opts.shade(), image.Point{}, mask, image.Point{}, draw.Over)
	draw.Draw(dst, src.Sub(union.Min), img, src.Min, draw.Over)

	return ShadowResult{Image: dst, Offset: src.Min.Sub(union.Min)}
}

// ShadowMask returns the blurred alpha mask of an opaque size.X×size.Y
// rectangle, padded by the blur radius on every side.
func ShadowMask(size image.Point, radius int) *image.Gray {
	radius = max(radius, 0)
	if size.X <= 0 || size.Y <= 0 {
		return image.NewGray(image.Rectangle{})
	}
	mask := image.NewGray(image.Rect(0, 0, size.X+2*radius, size.Y+2*radius))
	for y := radius; y < radius+size.Y; y++ {
		row := mask.Pix[y*mask.Stride+radius : y*mask.Stride+radius+size.X]
		for i := range row {
			row[i] = 0xff
		}
	}
	return blurGray(mask, radius)
}

// alphaMask copies img's alpha channel into a zero based mask padded by pad
// on every side.
func alphaMask(img *image.RGBA, pad int) *image.Gray {
	b := img.Bounds()
	mask := image.NewGray(image.Rect(0, 0, b.Dx()+2*pad, b.Dy()+2*pad))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			mask.Pix[(y-b.Min.Y+pad)*mask.Stride+x-b.Min.X+pad] = img.RGBAAt(x, y).A
		}
	}
	return mask
}

// blurGray applies a separable box blur: rows first, then columns.
func blurGray(src *image.Gray, radius int) *image.Gray {
	b := src.Bounds()
	out := image.NewGray(b)
	copy(out.Pix, src.Pix)
	if radius <= 0 {
		return out
	}
	w, h := b.Dx(), b.Dy()
	prefix := make([]int, max(w, h)+1)
	for y := 0; y < h; y++ {
		boxBlur(out.Pix[y*out.Stride:], 1, w, radius, prefix)
	}
	for x := 0; x < w; x++ {
		boxBlur(out.Pix[x:], out.Stride, h, radius, prefix)
	}
	return out
}

// boxBlur averages n samples spaced stride apart in place over a 2r+1
// window clipped at both ends. prefix must hold n+1 entries.
func boxBlur(pix []uint8, stride, n, r int, prefix []int) {
	prefix[0] = 0
	for i := 0; i < n; i++ {
		prefix[i+1] = prefix[i] + int(pix[i*stride])
	}
	for i := 0; i < n; i++ {
		lo, hi := max(i-r, 0), min(i+r, n-1)
		pix[i*stride] = uint8((prefix[hi+1] - prefix[lo]) / (hi - lo + 1))
	}
}
