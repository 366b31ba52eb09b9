package render

import (
	"image"
	"image/color"
	"image/draw"
)

// Canvas is what a Viewport shows. editor.Editor satisfies it.
type Canvas interface {
	// CanvasRect is the screen rectangle the canvas covers.
	CanvasRect() image.Rectangle
	// Render draws the canvas into dst and returns the rectangle drawn.
	Render(dst draw.Image) image.Rectangle
}

// Viewport draws the area around and under the canvas. It caches the
// checkerboard and the shadow mask between frames.
type Viewport struct {
	CheckerLight color.RGBA
	CheckerDark  color.RGBA
	CheckerSize  int
	Shadow       ShadowOptions

	backdrop   *image.RGBA
	mask       *image.Gray
	maskSize   image.Point
	maskRadius int
}

// NewViewport returns a viewport with the default shadow and an 8px checker.
func NewViewport(light, dark color.RGBA) *Viewport {
	return &Viewport{
		CheckerLight: light,
		CheckerDark:  dark,
		CheckerSize:  8,
		Shadow:       DefaultShadowOptions(),
	}
}

// SetColors changes the checkerboard colours, dropping the cached backdrop.
func (v *Viewport) SetColors(light, dark color.RGBA) {
	if light != v.CheckerLight || dark != v.CheckerDark {
		v.backdrop = nil
	}
	v.CheckerLight = light
	v.CheckerDark = dark
}

// Draw fills area of dst with the backdrop, the canvas drop shadow and the
// canvas itself. Nothing outside area is touched. It returns the canvas
// rectangle as drawn.
func (v *Viewport) Draw(dst *image.RGBA, area image.Rectangle, c Canvas) image.Rectangle {
	area = area.Intersect(dst.Bounds())
	if area.Empty() {
		return image.Rectangle{}
	}
	sub, ok := dst.SubImage(area).(*image.RGBA)
	if !ok {
		return image.Rectangle{}
	}
	v.drawBackdrop(sub, area)
	r := c.CanvasRect()
	v.drawShadow(sub, r)
	return c.Render(sub)
}

func (v *Viewport) drawBackdrop(dst *image.RGBA, area image.Rectangle) {
	if v.backdrop == nil || !v.backdrop.Bounds().Eq(area) {
		v.backdrop = image.NewRGBA(area)
		size := v.CheckerSize
		if size <= 0 {
			size = 8
		}
		drawCheckerboard(v.backdrop, area, size, v.CheckerLight, v.CheckerDark)
	}
	draw.Draw(dst, area, v.backdrop, area.Min, draw.Src)
}

func (v *Viewport) drawShadow(dst *image.RGBA, canvas image.Rectangle) {
	opts := v.Shadow.normalized()
	if opts.Opacity == 0 || canvas.Empty() {
		return
	}
	size := canvas.Size()
	if v.mask == nil || v.maskSize != size || v.maskRadius != opts.Radius {
		v.mask = ShadowMask(size, opts.Radius)
		v.maskSize = size
		v.maskRadius = opts.Radius
	}
	at := canvas.Min.Sub(image.Pt(opts.Radius, opts.Radius)).Add(opts.Offset)
	draw.DrawMask(dst, v.mask.Bounds().Add(at), opts.shade(), image.Point{}, v.mask, image.Point{}, draw.Over)
}

// drawCheckerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func drawCheckerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.RGBA) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if ((x/size)+(y/size))%2 == 0 {
				dst.SetRGBA(x, y, light)
			} else {
				dst.SetRGBA(x, y, dark)
			}
		}
	}
}
