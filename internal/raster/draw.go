package raster

import (
	"fmt"
	"image/color"
	"math"

	"github.com/example/sketchpad/internal/geom"
)

// Shape selects the outline drawn by DrawPreviewShape.
type Shape int

const (
	ShapeLine Shape = iota
	ShapeRect
	ShapeEllipse
	ShapeTriangle
)

func (s Shape) String() string {
	switch s {
	case ShapeLine:
		return "line"
	case ShapeRect:
		return "rect"
	case ShapeEllipse:
		return "ellipse"
	case ShapeTriangle:
		return "triangle"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// StrokeSegment draws a round-capped, round-joined segment. Successive calls
// during one gesture extend the visible stroke.
func (s *Surface) StrokeSegment(from, to geom.Point, c color.RGBA, width float64) {
	if !from.Finite() || !to.Finite() {
		return
	}
	width = s.pen(c, width)
	if from.Eq(to) {
		s.dc.DrawCircle(from.X, from.Y, width/2)
		s.dc.Fill()
		return
	}
	s.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	s.dc.Stroke()
}

// DrawPreviewShape restores base and outlines shape between anchor and
// current on top of it, so each call replaces the previous preview frame.
func (s *Surface) DrawPreviewShape(shape Shape, anchor, current geom.Point, c color.RGBA, width float64, base *Snapshot) {
	if base != nil {
		if err := s.Restore(base); err != nil {
			return
		}
	}
	if !anchor.Finite() || !current.Finite() {
		return
	}
	s.pen(c, width)
	switch shape {
	case ShapeLine:
		s.dc.DrawLine(anchor.X, anchor.Y, current.X, current.Y)
	case ShapeRect:
		x, y := math.Min(anchor.X, current.X), math.Min(anchor.Y, current.Y)
		s.dc.DrawRectangle(x, y, math.Abs(current.X-anchor.X), math.Abs(current.Y-anchor.Y))
	case ShapeEllipse:
		s.dc.DrawCircle(anchor.X, anchor.Y, anchor.Dist(current))
	case ShapeTriangle:
		s.dc.MoveTo((anchor.X+current.X)/2, anchor.Y)
		s.dc.LineTo(current.X, current.Y)
		s.dc.LineTo(anchor.X, current.Y)
		s.dc.ClosePath()
	default:
		return
	}
	s.dc.Stroke()
}

func (s *Surface) pen(c color.RGBA, width float64) float64 {
	if width < 1 || math.IsNaN(width) {
		width = 1
	}
	s.dc.ClearPath()
	s.dc.SetColor(opaque(c))
	s.dc.SetLineWidth(width)
	s.dc.SetLineCapRound()
	s.dc.SetLineJoinRound()
	return width
}
