package tool

import (
	"fmt"
	"image/color"

	"github.com/example/sketchpad/internal/geom"
	"github.com/example/sketchpad/internal/history"
	"github.com/example/sketchpad/internal/raster"
)

// State is the gesture phase of a Machine.
type State int

const (
	Idle State = iota
	Drawing
	PreviewingShape
	Panning
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	case PreviewingShape:
		return "previewing"
	case Panning:
		return "panning"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// WheelStep is the zoom change per wheel notch.
const WheelStep = geom.ZoomStep

type strokeGesture struct {
	last  geom.Point
	color color.RGBA
	width float64
}

type shapeGesture struct {
	shape  raster.Shape
	anchor geom.Point
	color  color.RGBA
	width  float64
	base   *raster.Snapshot
}

type panGesture struct {
	last geom.Point
}

// Machine interprets pointer events in screen coordinates. Brush, eraser and
// shape gestures commit one history entry when they end; fills commit
// immediately; panning and zooming never commit.
type Machine struct {
	surface *raster.Surface
	history *history.Manager
	view    geom.View
	origin  geom.Point
	gesture any
}

// NewMachine returns an idle machine with the default view. Until Attach is
// called every pointer event is ignored.
func NewMachine() *Machine {
	return &Machine{view: geom.NewView()}
}

// Attach binds the machine to a surface and its history, dropping any
// gesture in progress.
func (m *Machine) Attach(s *raster.Surface, h *history.Manager) {
	m.gesture = nil
	m.surface = s
	m.history = h
}

// State reports the current gesture phase.
func (m *Machine) State() State {
	switch m.gesture.(type) {
	case *strokeGesture:
		return Drawing
	case *shapeGesture:
		return PreviewingShape
	case *panGesture:
		return Panning
	}
	return Idle
}

func (m *Machine) View() geom.View { return m.view }

// SetView replaces the view, clamping its zoom.
func (m *Machine) SetView(v geom.View) {
	v.SetZoom(v.Zoom)
	m.view = v
}

// ResetView restores zoom 1 and zero pan.
func (m *Machine) ResetView() { m.view.Reset() }

// SetOrigin sets the screen position of the canvas's unpanned top-left corner.
func (m *Machine) SetOrigin(p geom.Point) {
	if p.Finite() {
		m.origin = p
	}
}

func (m *Machine) Origin() geom.Point { return m.origin }

// ToLogical maps a screen point through the current view.
func (m *Machine) ToLogical(screen geom.Point) geom.Point {
	return m.view.ToLogical(screen, m.origin)
}

// PointerDown starts a gesture with the given settings. It reports whether
// the surface or view changed.
func (m *Machine) PointerDown(screen geom.Point, st Settings) bool {
	if m.surface == nil || m.gesture != nil || !screen.Finite() {
		return false
	}
	st, err := st.Normalize()
	if err != nil {
		return false
	}
	p := m.ToLogical(screen)
	width := float64(st.Size)
	switch st.Tool {
	case Brush, Eraser:
		m.gesture = &strokeGesture{last: p, color: st.Color(), width: width}
		return false
	case Fill:
		seed := p.Floor()
		if !seed.In(m.surface.Bounds()) {
			return false
		}
		// A fill that changes nothing still commits and drops the redo stack.
		m.surface.FloodFill(seed, st.Color())
		m.commit()
		return true
	case Pan:
		m.gesture = &panGesture{last: screen}
		return false
	}
	shape, ok := st.Tool.Shape()
	if !ok {
		return false
	}
	m.gesture = &shapeGesture{
		shape:  shape,
		anchor: p,
		color:  st.Color(),
		width:  width,
		base:   m.surface.Snapshot(),
	}
	return false
}

// PointerMove extends the active gesture. It reports whether the surface or
// view changed.
func (m *Machine) PointerMove(screen geom.Point) bool {
	if m.surface == nil || !screen.Finite() {
		return false
	}
	switch g := m.gesture.(type) {
	case *strokeGesture:
		p := m.ToLogical(screen)
		m.surface.StrokeSegment(g.last, p, g.color, g.width)
		g.last = p
		return true
	case *shapeGesture:
		m.surface.DrawPreviewShape(g.shape, g.anchor, m.ToLogical(screen), g.color, g.width, g.base)
		return true
	case *panGesture:
		m.view.PanBy(screen.Sub(g.last))
		g.last = screen
		return true
	}
	return false
}

// PointerUp ends the active gesture, committing strokes and shapes.
func (m *Machine) PointerUp() bool {
	if m.surface == nil {
		return false
	}
	switch m.gesture.(type) {
	case *strokeGesture, *shapeGesture:
		m.gesture = nil
		m.commit()
		return true
	case *panGesture:
		m.gesture = nil
	}
	return false
}

// PointerLeave behaves like PointerUp so gestures are never left dangling.
func (m *Machine) PointerLeave() bool { return m.PointerUp() }

// Wheel zooms in for negative dy and out for positive dy, in any state.
func (m *Machine) Wheel(dy float64) bool {
	before := m.view.Zoom
	switch {
	case dy < 0:
		m.view.ZoomBy(WheelStep)
	case dy > 0:
		m.view.ZoomBy(-WheelStep)
	}
	return m.view.Zoom != before
}

// Abort drops the active gesture without committing. A shape preview is
// rolled back to the surface it started from.
func (m *Machine) Abort() {
	if g, ok := m.gesture.(*shapeGesture); ok && m.surface != nil {
		_ = m.surface.Restore(g.base)
	}
	m.gesture = nil
}

func (m *Machine) commit() {
	if m.history != nil {
		m.history.Commit(m.surface.Snapshot())
	}
}
