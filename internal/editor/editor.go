// Package editor is the control surface a host drives: pointer events, tool
// settings, undo/redo, export, clear and asynchronous image loading. All
// methods are safe to call from multiple goroutines.
package editor

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"net/http"
	"sync"

	"github.com/example/sketchpad/internal/geom"
	"github.com/example/sketchpad/internal/history"
	"github.com/example/sketchpad/internal/raster"
	"github.com/example/sketchpad/internal/tool"
)

// ErrNotMounted is returned by operations that need a canvas before Mount.
var ErrNotMounted = errors.New("editor: canvas not mounted")

type Editor struct {
	mu sync.Mutex

	width       int
	height      int
	maxHistory  int
	background  color.RGBA
	jpegQuality int
	client      *http.Client
	onChange    func()

	surface  *raster.Surface
	history  *history.Manager
	machine  *tool.Machine
	settings tool.Settings
	loadSeq  uint64
}

type Option func(*Editor)

// WithSize sets the logical canvas resolution.
func WithSize(w, h int) Option {
	return func(e *Editor) {
		e.width = w
		e.height = h
	}
}

// WithMaxHistory sets how many history entries, base included, are kept.
func WithMaxHistory(n int) Option {
	return func(e *Editor) { e.maxHistory = n }
}

// WithBackground sets the blank canvas colour, also used to flatten loaded
// images. The colour is made opaque.
func WithBackground(c color.RGBA) Option {
	return func(e *Editor) {
		c.A = 255
		e.background = c
	}
}

func WithJPEGQuality(q int) Option {
	return func(e *Editor) { e.jpegQuality = q }
}

// WithHTTPClient sets the client used to fetch http and https load sources.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Editor) {
		if c != nil {
			e.client = c
		}
	}
}

// WithOnChange registers a callback run after anything visible changes. It is
// called without the editor lock held and may run on a load goroutine.
func WithOnChange(fn func()) Option {
	return func(e *Editor) { e.onChange = fn }
}

// New returns an unmounted editor.
func New(opts ...Option) *Editor {
	e := &Editor{
		width:       raster.DefaultWidth,
		height:      raster.DefaultHeight,
		maxHistory:  history.DefaultMaxHistory,
		background:  raster.White,
		jpegQuality: raster.DefaultJPEGQuality,
		client:      http.DefaultClient,
		machine:     tool.NewMachine(),
		settings:    tool.DefaultSettings(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Mount allocates the canvas, fills it with the background and makes the
// blank canvas the history base. Mounting again starts over.
func (e *Editor) Mount() error {
	e.mu.Lock()
	s, err := raster.New(e.width, e.height,
		raster.WithBackground(e.background),
		raster.WithJPEGQuality(e.jpegQuality))
	if err != nil {
		e.mu.Unlock()
		return err
	}
	s.InitBlank()
	h := history.New(e.maxHistory)
	h.Reset(s.Snapshot())
	e.surface = s
	e.history = h
	e.machine.Attach(s, h)
	e.machine.ResetView()
	e.loadSeq++
	e.mu.Unlock()
	e.changed(true)
	return nil
}

// Mounted reports whether Mount has succeeded.
func (e *Editor) Mounted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.surface != nil
}

func (e *Editor) changed(ok bool) {
	if ok && e.onChange != nil {
		e.onChange()
	}
}

// Undo shows the previous history entry. It reports false when there is
// nothing to undo.
func (e *Editor) Undo() bool {
	e.mu.Lock()
	ok := e.step((*history.Manager).Undo)
	e.mu.Unlock()
	e.changed(ok)
	return ok
}

// Redo reapplies the most recently undone entry.
func (e *Editor) Redo() bool {
	e.mu.Lock()
	ok := e.step((*history.Manager).Redo)
	e.mu.Unlock()
	e.changed(ok)
	return ok
}

func (e *Editor) step(move func(*history.Manager) (*raster.Snapshot, bool)) bool {
	if e.surface == nil {
		return false
	}
	e.machine.Abort()
	snap, ok := move(e.history)
	if !ok {
		return false
	}
	if err := e.surface.Restore(snap); err != nil {
		log.Printf("restore history: %v", err)
		return false
	}
	return true
}

// ExportImage encodes the canvas at its logical resolution. It returns nil if
// the canvas is not mounted or encoding fails.
func (e *Editor) ExportImage(f raster.Format) []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.surface == nil {
		return nil
	}
	data, err := e.surface.EncodeBytes(f)
	if err != nil {
		log.Printf("export %s: %v", f, err)
		return nil
	}
	return data
}

// ExportDataURL is ExportImage wrapped as a data URL, or "" on failure.
func (e *Editor) ExportDataURL(f raster.Format) string {
	return raster.DataURL(e.ExportImage(f), f)
}

// Clear blanks the canvas, resets the view and history and discards any
// load still in flight.
func (e *Editor) Clear() {
	e.mu.Lock()
	e.loadSeq++
	ok := e.surface != nil
	if ok {
		e.machine.Abort()
		e.surface.InitBlank()
		e.history.Reset(e.surface.Snapshot())
		e.machine.ResetView()
	}
	e.mu.Unlock()
	e.changed(ok)
}

// Settings returns the current tool selection.
func (e *Editor) Settings() tool.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// SetSettings validates and replaces the tool selection. It applies from the
// next gesture on.
func (e *Editor) SetSettings(st tool.Settings) error {
	st, err := st.Normalize()
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.settings = st
	e.mu.Unlock()
	e.changed(true)
	return nil
}

func (e *Editor) update(fn func(*tool.Settings)) tool.Settings {
	e.mu.Lock()
	st := e.settings
	fn(&st)
	if norm, err := st.Normalize(); err == nil {
		e.settings = norm
	}
	st = e.settings
	e.mu.Unlock()
	e.changed(true)
	return st
}

func (e *Editor) SetTool(t tool.Tool) error {
	if !t.Valid() {
		return fmt.Errorf("unknown tool %v", t)
	}
	e.update(func(st *tool.Settings) { st.Tool = t })
	return nil
}

// SetBrushSize sets the brush diameter, clamped to the allowed range, and
// returns the value applied.
func (e *Editor) SetBrushSize(n int) int {
	return e.update(func(st *tool.Settings) { st.Size = n }).Size
}

func (e *Editor) SetColors(primary, secondary color.RGBA) {
	e.update(func(st *tool.Settings) {
		st.Primary = primary
		st.Secondary = secondary
	})
}

// SetColor replaces the colour in one slot.
func (e *Editor) SetColor(slot tool.Slot, c color.RGBA) {
	e.update(func(st *tool.Settings) {
		if slot == tool.Secondary {
			st.Secondary = c
		} else {
			st.Primary = c
		}
	})
}

func (e *Editor) SetActive(slot tool.Slot) {
	e.update(func(st *tool.Settings) { st.Active = slot })
}

// SwapActive toggles which colour slot paints.
func (e *Editor) SwapActive() tool.Slot {
	return e.update(func(st *tool.Settings) { st.Active = st.Active.Other() }).Active
}

// PointerDown starts a gesture at a screen position.
func (e *Editor) PointerDown(screen geom.Point) {
	e.mu.Lock()
	ok := e.machine.PointerDown(screen, e.settings)
	e.mu.Unlock()
	e.changed(ok)
}

func (e *Editor) PointerMove(screen geom.Point) {
	e.mu.Lock()
	ok := e.machine.PointerMove(screen)
	e.mu.Unlock()
	e.changed(ok)
}

func (e *Editor) PointerUp() {
	e.mu.Lock()
	ok := e.machine.PointerUp()
	e.mu.Unlock()
	e.changed(ok)
}

// PointerLeave ends the gesture as PointerUp would.
func (e *Editor) PointerLeave() {
	e.mu.Lock()
	ok := e.machine.PointerLeave()
	e.mu.Unlock()
	e.changed(ok)
}

// Wheel zooms the view; negative dy zooms in.
func (e *Editor) Wheel(dy float64) {
	e.mu.Lock()
	ok := e.machine.Wheel(dy)
	e.mu.Unlock()
	e.changed(ok)
}

// ZoomBy changes the zoom by delta, clamped.
func (e *Editor) ZoomBy(delta float64) {
	e.mu.Lock()
	v := e.machine.View()
	before := v.Zoom
	v.ZoomBy(delta)
	e.machine.SetView(v)
	ok := v.Zoom != before
	e.mu.Unlock()
	e.changed(ok)
}

func (e *Editor) ResetView() {
	e.mu.Lock()
	e.machine.ResetView()
	e.mu.Unlock()
	e.changed(true)
}

// SetOrigin sets where the unpanned canvas corner sits on screen.
func (e *Editor) SetOrigin(p geom.Point) {
	e.mu.Lock()
	e.machine.SetOrigin(p)
	e.mu.Unlock()
}

func (e *Editor) View() geom.View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine.View()
}

func (e *Editor) State() tool.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine.State()
}

// HistoryLen is the number of history entries, base included, or zero before
// Mount.
func (e *Editor) HistoryLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.history == nil {
		return 0
	}
	return e.history.Len()
}

func (e *Editor) RedoLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.history == nil {
		return 0
	}
	return e.history.RedoLen()
}

// Size is the logical canvas resolution.
func (e *Editor) Size() image.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	return image.Pt(e.width, e.height)
}

// At returns a canvas pixel in logical coordinates.
func (e *Editor) At(x, y int) color.RGBA {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.surface == nil {
		return color.RGBA{}
	}
	return e.surface.At(x, y)
}

// Snapshot copies the canvas, or returns nil before Mount.
func (e *Editor) Snapshot() *raster.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.surface == nil {
		return nil
	}
	return e.surface.Snapshot()
}

// CanvasRect is the screen rectangle covered by the canvas under the current
// view.
func (e *Editor) CanvasRect() image.Rectangle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.machine.View().ScreenRect(image.Pt(e.width, e.height), e.machine.Origin())
}

// Render draws the canvas into dst through the current view and returns the
// screen rectangle it covers.
func (e *Editor) Render(dst draw.Image) image.Rectangle {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.surface == nil {
		return image.Rectangle{}
	}
	r := e.machine.View().ScreenRect(e.surface.Bounds().Size(), e.machine.Origin())
	e.surface.Render(dst, r)
	return r
}
