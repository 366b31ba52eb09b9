package appstate

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/event/mouse"

	"github.com/example/sketchpad/internal/geom"
	"github.com/example/sketchpad/internal/tool"
)

// windowFixture is an app with a 640x400 canvas laid out in a window that
// fits it exactly.
func windowFixture(t *testing.T) (*AppState, layout, *pointerState) {
	t.Helper()
	a := newTestApp(t, 640, 400)
	l := newLayout(640+toolbarWidth, 400+statusHeight)
	a.Editor.SetOrigin(geom.FromImage(l.origin()))
	return a, l, &pointerState{hover: noTarget, hoverShortcut: -1}
}

func at(p image.Point, b mouse.Button, d mouse.Direction) mouse.Event {
	return mouse.Event{X: float32(p.X), Y: float32(p.Y), Button: b, Direction: d}
}

func centre(r image.Rectangle) image.Point {
	return image.Pt((r.Min.X+r.Max.X)/2, (r.Min.Y+r.Max.Y)/2)
}

func dark(c interface{ RGBA() (r, g, b, a uint32) }) bool {
	r, g, b, _ := c.RGBA()
	return r < 0x4000 && g < 0x4000 && b < 0x4000
}

func TestMouseStrokeInViewport(t *testing.T) {
	ctx := context.Background()
	a, l, ptr := windowFixture(t)
	o := l.origin()

	a.handleMouse(ctx, ptr, l, at(o.Add(image.Pt(10, 10)), mouse.ButtonLeft, mouse.DirPress))
	require.True(t, ptr.dragging)
	assert.Equal(t, tool.Drawing, a.Editor.State())

	a.handleMouse(ctx, ptr, l, at(o.Add(image.Pt(50, 50)), mouse.ButtonNone, mouse.DirNone))
	a.handleMouse(ctx, ptr, l, at(o.Add(image.Pt(50, 50)), mouse.ButtonLeft, mouse.DirRelease))
	assert.False(t, ptr.dragging)
	assert.Equal(t, tool.Idle, a.Editor.State())
	assert.Equal(t, 2, a.Editor.HistoryLen())
	assert.True(t, dark(a.Editor.At(30, 30)), "stroke crosses the diagonal")
}

func TestMouseLeavingViewportEndsGesture(t *testing.T) {
	ctx := context.Background()
	a, l, ptr := windowFixture(t)
	o := l.origin()

	a.handleMouse(ctx, ptr, l, at(o.Add(image.Pt(10, 10)), mouse.ButtonLeft, mouse.DirPress))
	a.handleMouse(ctx, ptr, l, at(o.Add(image.Pt(40, 10)), mouse.ButtonNone, mouse.DirNone))
	a.handleMouse(ctx, ptr, l, at(image.Pt(40, 10), mouse.ButtonNone, mouse.DirNone))

	assert.False(t, ptr.dragging)
	assert.Equal(t, tool.Idle, a.Editor.State())
	assert.Equal(t, 2, a.Editor.HistoryLen(), "leave commits like release")

	a.handleMouse(ctx, ptr, l, at(o.Add(image.Pt(60, 60)), mouse.ButtonNone, mouse.DirNone))
	a.handleMouse(ctx, ptr, l, at(o.Add(image.Pt(60, 60)), mouse.ButtonLeft, mouse.DirRelease))
	assert.Equal(t, 2, a.Editor.HistoryLen())
}

func TestMouseWheelZoomsOnlyOverViewport(t *testing.T) {
	ctx := context.Background()
	a, l, ptr := windowFixture(t)

	a.handleMouse(ctx, ptr, l, at(image.Pt(10, 10), mouse.ButtonWheelUp, mouse.DirStep))
	assert.Equal(t, 1.0, a.Editor.View().Zoom)

	a.handleMouse(ctx, ptr, l, at(centre(l.viewport), mouse.ButtonWheelUp, mouse.DirStep))
	assert.InDelta(t, 1.1, a.Editor.View().Zoom, 1e-9)
	a.handleMouse(ctx, ptr, l, at(centre(l.viewport), mouse.ButtonWheelDown, mouse.DirStep))
	a.handleMouse(ctx, ptr, l, at(centre(l.viewport), mouse.ButtonWheelDown, mouse.DirStep))
	assert.InDelta(t, 0.9, a.Editor.View().Zoom, 1e-9)
}

func TestMouseToolbar(t *testing.T) {
	ctx := context.Background()
	a, l, ptr := windowFixture(t)
	palette := tool.Palette()

	a.handleMouse(ctx, ptr, l, at(centre(l.tools[2]), mouse.ButtonLeft, mouse.DirPress))
	assert.Equal(t, tool.Fill, a.Editor.Settings().Tool)

	a.handleMouse(ctx, ptr, l, at(centre(l.swatches[4]), mouse.ButtonLeft, mouse.DirPress))
	a.handleMouse(ctx, ptr, l, at(centre(l.swatches[2]), mouse.ButtonRight, mouse.DirPress))
	st := a.Editor.Settings()
	assert.Equal(t, palette[4].Color, st.Primary)
	assert.Equal(t, palette[2].Color, st.Secondary)

	a.handleMouse(ctx, ptr, l, at(centre(l.sizes[4]), mouse.ButtonLeft, mouse.DirPress))
	assert.Equal(t, tool.BrushSizes[4], a.Editor.Settings().Size)

	a.handleMouse(ctx, ptr, l, at(centre(l.secondary), mouse.ButtonLeft, mouse.DirPress))
	assert.Equal(t, tool.Secondary, a.Editor.Settings().Active)
	a.handleMouse(ctx, ptr, l, at(centre(l.primary), mouse.ButtonLeft, mouse.DirPress))
	assert.Equal(t, tool.Primary, a.Editor.Settings().Active)
}

func TestMouseHoverRepaintsOnlyOnChange(t *testing.T) {
	ctx := context.Background()
	a, l, ptr := windowFixture(t)

	repaint, _ := a.handleMouse(ctx, ptr, l, at(centre(l.tools[1]), mouse.ButtonNone, mouse.DirNone))
	assert.True(t, repaint)
	assert.Equal(t, target{targetTool, 1}, ptr.hover)

	repaint, _ = a.handleMouse(ctx, ptr, l, at(centre(l.tools[1]).Add(image.Pt(1, 0)), mouse.ButtonNone, mouse.DirNone))
	assert.False(t, repaint)
}

func TestMouseStatusShortcuts(t *testing.T) {
	ctx := context.Background()
	a, l, ptr := windowFixture(t)
	o := l.origin()
	a.handleMouse(ctx, ptr, l, at(o.Add(image.Pt(10, 10)), mouse.ButtonLeft, mouse.DirPress))
	a.handleMouse(ctx, ptr, l, at(o.Add(image.Pt(20, 20)), mouse.ButtonLeft, mouse.DirRelease))
	require.Equal(t, 2, a.Editor.HistoryLen())

	scs := statusShortcuts(a.Theme, l, 1, nil)
	find := func(action string) image.Point {
		for _, sc := range scs {
			if sc.action == action {
				return centre(sc.Rect())
			}
		}
		t.Fatalf("no shortcut for %s", action)
		return image.Point{}
	}

	_, quit := a.handleMouse(ctx, ptr, l, at(find(actionUndo), mouse.ButtonLeft, mouse.DirPress))
	assert.False(t, quit)
	assert.Equal(t, 1, a.Editor.HistoryLen())

	_, quit = a.handleMouse(ctx, ptr, l, at(find(actionQuit), mouse.ButtonLeft, mouse.DirPress))
	assert.True(t, quit)
}

func TestPressDismissesMessage(t *testing.T) {
	ctx := context.Background()
	a, l, ptr := windowFixture(t)
	a.setMessage("hello")

	a.handleMouse(ctx, ptr, l, at(centre(l.viewport), mouse.ButtonLeft, mouse.DirPress))
	assert.False(t, ptr.dragging)
	assert.Equal(t, tool.Idle, a.Editor.State())
	assert.Empty(t, a.currentMessage())
}
