// Package appstate is the desktop window around an editor.Editor: toolbar,
// viewport and status bar drawn with shiny.
package appstate

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"

	"github.com/example/sketchpad/internal/theme"
	"github.com/example/sketchpad/internal/tool"
)

const (
	toolbarWidth    = 96
	statusHeight    = 24
	buttonHeight    = 24
	swatchSize      = 16
	swatchStep      = 18
	sizeRowHeight   = 16
	indicatorHeight = 48
	sectionGap      = 4
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

// toolKeys maps each tool to its single-key shortcut, in toolbar order.
var toolKeys = map[tool.Tool]rune{
	tool.Brush:     'b',
	tool.Eraser:    'e',
	tool.Fill:      'f',
	tool.Line:      'l',
	tool.Rectangle: 'r',
	tool.Ellipse:   'o',
	tool.Triangle:  't',
	tool.Pan:       'p',
}

var toolLabels = map[tool.Tool]string{
	tool.Brush:     "B:Brush",
	tool.Eraser:    "E:Eraser",
	tool.Fill:      "F:Fill",
	tool.Line:      "L:Line",
	tool.Rectangle: "R:Rect",
	tool.Ellipse:   "O:Ellipse",
	tool.Triangle:  "T:Triangle",
	tool.Pan:       "P:Pan",
}

// KeyShortcut describes a keyboard combination that triggers an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

// shortcutList is a helper to easily satisfy the KeyboardShortcuts interface.
type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// Button represents an interactive UI element.
// Activate performs the button's action when clicked.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// CacheButton wraps another Button and caches its rendered states.
// It delegates all interface methods to the wrapped Button while
// caching the result of Draw for each state.
type CacheButton struct {
	Button
	cache [3]*image.RGBA
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, state ButtonState) {
	if cb.cache[state] == nil {
		rect := cb.Button.Rect()
		img := image.NewRGBA(rect)
		cb.Button.Draw(img, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, cb.Button.Rect(), cb.cache[state], cb.Button.Rect().Min, draw.Src)
}

func (cb *CacheButton) Rect() image.Rectangle { return cb.Button.Rect() }

func (cb *CacheButton) SetRect(r image.Rectangle) {
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [3]*image.RGBA{}
	}
}

func (cb *CacheButton) Activate() { cb.Button.Activate() }

// buttonColor picks the theme background for a button state.
func buttonColor(th *theme.Theme, state ButtonState) color.RGBA {
	switch state {
	case StateHover:
		return th.ButtonBackgroundHover
	case StatePressed:
		return th.ButtonBackgroundPress
	}
	return th.ButtonBackground
}

// Shortcut is a clickable label in the status bar.
type Shortcut struct {
	label  string
	action string
	rect   image.Rectangle
	theme  *theme.Theme
	onTap  func(string)
}

func (s *Shortcut) Draw(dst *image.RGBA, state ButtonState) {
	draw.Draw(dst, s.rect, &image.Uniform{buttonColor(s.theme, state)}, image.Point{}, draw.Src)
	drawRect(dst, s.rect, s.theme.ButtonBorder, 1)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(s.theme.ButtonText), Face: basicfont.Face7x13,
		Dot: fixed.P(s.rect.Min.X+2, s.rect.Min.Y+14)}
	d.DrawString(s.label)
}

func (s *Shortcut) Rect() image.Rectangle { return s.rect }

func (s *Shortcut) SetRect(r image.Rectangle) {
	if r != s.rect {
		s.rect = r
	}
}

func (s *Shortcut) Activate() {
	if s.onTap != nil {
		s.onTap(s.action)
	}
}

// ToolButton represents a toolbar button that selects a drawing tool.
type ToolButton struct {
	label string
	tool  tool.Tool
	rect  image.Rectangle
	theme *theme.Theme
	// onSelect is called when the button is activated.
	onSelect func(tool.Tool)
}

func (tb *ToolButton) Draw(dst *image.RGBA, state ButtonState) {
	draw.Draw(dst, tb.rect, &image.Uniform{buttonColor(tb.theme, state)}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(tb.theme.ButtonText), Face: basicfont.Face7x13,
		Dot: fixed.P(tb.rect.Min.X+4, tb.rect.Min.Y+16)}
	d.DrawString(tb.label)
}

func (tb *ToolButton) Rect() image.Rectangle { return tb.rect }

func (tb *ToolButton) SetRect(r image.Rectangle) {
	if r != tb.rect {
		tb.rect = r
	}
}

func (tb *ToolButton) Activate() {
	if tb.onSelect != nil {
		tb.onSelect(tb.tool)
	}
}

// newToolButtons builds one cached button per tool in toolbar order.
func newToolButtons(th *theme.Theme, onSelect func(tool.Tool)) []*CacheButton {
	tools := tool.Tools()
	out := make([]*CacheButton, 0, len(tools))
	for _, t := range tools {
		out = append(out, &CacheButton{Button: &ToolButton{label: toolLabels[t], tool: t, theme: th, onSelect: onSelect}})
	}
	return out
}

type targetKind int

const (
	targetNone targetKind = iota
	targetTool
	targetSwatch
	targetSize
	targetPrimary
	targetSecondary
	targetViewport
	targetStatus
)

// target is the widget under a window position.
type target struct {
	kind  targetKind
	index int
}

var noTarget = target{kind: targetNone, index: -1}

// layout holds the window regions for one window size.
type layout struct {
	width, height int

	tools     []image.Rectangle
	swatches  []image.Rectangle
	sizes     []image.Rectangle
	primary   image.Rectangle
	secondary image.Rectangle
	indicator image.Rectangle
	toolbar   image.Rectangle
	viewport  image.Rectangle
	status    image.Rectangle
}

func newLayout(width, height int) layout {
	l := layout{width: width, height: height}
	l.toolbar = image.Rect(0, 0, toolbarWidth, height-statusHeight)
	l.viewport = image.Rect(toolbarWidth, 0, width, height-statusHeight)
	l.status = image.Rect(0, height-statusHeight, width, height)

	y := 0
	for range tool.Tools() {
		l.tools = append(l.tools, image.Rect(0, y, toolbarWidth, y+buttonHeight))
		y += buttonHeight
	}

	y += sectionGap
	x := 4
	for range tool.Palette() {
		l.swatches = append(l.swatches, image.Rect(x, y, x+swatchSize, y+swatchSize))
		x += swatchStep
		if x+swatchSize > toolbarWidth {
			x = 4
			y += swatchStep
		}
	}
	if x != 4 {
		y += swatchStep
	}

	y += sectionGap
	for range tool.BrushSizes {
		l.sizes = append(l.sizes, image.Rect(0, y, toolbarWidth, y+sizeRowHeight))
		y += sizeRowHeight
	}

	y += sectionGap
	l.indicator = image.Rect(0, y, toolbarWidth, y+indicatorHeight)
	l.primary = image.Rect(8, y+4, 32, y+28)
	l.secondary = image.Rect(40, y+4, 64, y+28)
	return l
}

// origin is where the unpanned canvas corner sits.
func (l layout) origin() image.Point { return l.viewport.Min }

// hit reports the widget under p. Status bar shortcuts are resolved
// separately since their rectangles depend on the label text.
func (l layout) hit(p image.Point) target {
	switch {
	case p.In(l.status):
		return target{kind: targetStatus, index: -1}
	case p.In(l.viewport):
		return target{kind: targetViewport, index: -1}
	case !p.In(l.toolbar):
		return noTarget
	}
	for i, r := range l.tools {
		if p.In(r) {
			return target{kind: targetTool, index: i}
		}
	}
	for i, r := range l.swatches {
		if p.In(r) {
			return target{kind: targetSwatch, index: i}
		}
	}
	for i, r := range l.sizes {
		if p.In(r) {
			return target{kind: targetSize, index: i}
		}
	}
	if p.In(l.primary) {
		return target{kind: targetPrimary, index: -1}
	}
	if p.In(l.secondary) {
		return target{kind: targetSecondary, index: -1}
	}
	return noTarget
}

func setThickPixel(img *image.RGBA, x, y, thick int, col color.Color) {
	r := thick / 2
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			px := x + dx
			py := y + dy
			if image.Pt(px, py).In(img.Bounds()) {
				img.Set(px, py, col)
			}
		}
	}
}

// drawLine draws chrome lines such as the brush size samples. Canvas strokes
// go through the raster package instead.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, col color.Color, thick int) {
	dx := math.Abs(float64(x1 - x0))
	dy := math.Abs(float64(y1 - y0))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		setThickPixel(img, x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func drawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	drawLine(img, rect.Min.X, rect.Min.Y, rect.Max.X-1, rect.Min.Y, col, thick)
	drawLine(img, rect.Max.X-1, rect.Min.Y, rect.Max.X-1, rect.Max.Y-1, col, thick)
	drawLine(img, rect.Max.X-1, rect.Max.Y-1, rect.Min.X, rect.Max.Y-1, col, thick)
	drawLine(img, rect.Min.X, rect.Max.Y-1, rect.Min.X, rect.Min.Y, col, thick)
}

func drawFilledCircle(img *image.RGBA, cx, cy, r int, col color.Color) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				px := cx + dx
				py := cy + dy
				if image.Pt(px, py).In(img.Bounds()) {
					img.Set(px, py, col)
				}
			}
		}
	}
}
