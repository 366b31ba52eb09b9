// Package geom maps pointer positions between screen space and the canvas's
// logical pixel space.
package geom

import (
	"image"
	"math"
)

const (
	MinZoom     = 0.5
	MaxZoom     = 3.0
	DefaultZoom = 1.0
	// ZoomStep is applied once per wheel notch.
	ZoomStep = 0.1
)

// Point is a position in either screen or logical space.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// FromImage converts an integer image point.
func FromImage(p image.Point) Point { return Point{X: float64(p.X), Y: float64(p.Y)} }

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Mul(k float64) Point { return Point{p.X * k, p.Y * k} }
func (p Point) Div(k float64) Point { return Point{p.X / k, p.Y / k} }
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }
func (p Point) Eq(q Point) bool { return p.X == q.X && p.Y == q.Y }
func (p Point) Finite() bool { return finite(p.X) && finite(p.Y) }
func (p Point) Floor() image.Point { return image.Pt(int(math.Floor(p.X)), int(math.Floor(p.Y))) }
func (p Point) In(r image.Rectangle) bool { return p.Floor().In(r) }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// ToLogical converts a screen position into logical canvas coordinates given
// the surface origin on screen and the current zoom and pan.
func ToLogical(screen, origin Point, zoom float64, pan Point) Point {
	if zoom == 0 {
		zoom = DefaultZoom
	}
	return screen.Sub(origin).Sub(pan).Div(zoom)
}

// ToScreen is the rendering transform, translate(pan) then scale(zoom), and
// the exact inverse of ToLogical.
func ToScreen(logical, origin Point, zoom float64, pan Point) Point {
	return logical.Mul(zoom).Add(pan).Add(origin)
}

// ClampZoom bounds z to [MinZoom, MaxZoom].
func ClampZoom(z float64) float64 {
	if !finite(z) {
		return DefaultZoom
	}
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// View is the zoom and pan applied when the canvas is shown on screen. It
// never changes the stored buffer resolution.
type View struct {
	Zoom float64
	Pan  Point
}

// NewView returns the identity view.
func NewView() View { return View{Zoom: DefaultZoom} }

func (v View) ToLogical(screen, origin Point) Point {
	return ToLogical(screen, origin, v.Zoom, v.Pan)
}

func (v View) ToScreen(logical, origin Point) Point {
	return ToScreen(logical, origin, v.Zoom, v.Pan)
}

// SetZoom sets the zoom factor, clamped to its bounds.
func (v *View) SetZoom(z float64) { v.Zoom = ClampZoom(z) }

// ZoomBy adds delta to the zoom factor, clamped to its bounds.
func (v *View) ZoomBy(delta float64) { v.SetZoom(v.Zoom + delta) }

// PanBy moves the pan offset by a screen-space delta.
func (v *View) PanBy(d Point) {
	if !d.Finite() {
		return
	}
	v.Pan = v.Pan.Add(d)
}

// Reset restores zoom 1 and pan (0,0).
func (v *View) Reset() { *v = NewView() }

// ScreenRect returns the on-screen rectangle covered by a logical canvas of
// the given size.
func (v View) ScreenRect(size image.Point, origin Point) image.Rectangle {
	min := v.ToScreen(Point{}, origin)
	max := v.ToScreen(FromImage(size), origin)
	return image.Rect(int(math.Round(min.X)), int(math.Round(min.Y)), int(math.Round(max.X)), int(math.Round(max.Y)))
}
