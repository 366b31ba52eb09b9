package appstate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"sync"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/example/sketchpad/internal/render"
	"github.com/example/sketchpad/internal/theme"
	"github.com/example/sketchpad/internal/tool"
)

var (
	messageFaceOnce sync.Once
	messageFace     font.Face
)

// overlayFace returns the large face used for transient messages, falling
// back to the fixed bitmap face if the embedded font cannot be parsed.
func overlayFace() font.Face {
	messageFaceOnce.Do(func() {
		messageFace = basicfont.Face7x13
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			log.Printf("parse font: %v", err)
			return
		}
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: 28, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			log.Printf("font face: %v", err)
			return
		}
		messageFace = face
	})
	return messageFace
}

// paintState is everything a frame needs besides the canvas itself. It is
// copied to the paint goroutine so the event loop never waits on drawing.
type paintState struct {
	layout        layout
	settings      tool.Settings
	zoom          float64
	hover         target
	hoverShortcut int
	message       string
	historyLen    int
	redoLen       int
}

// painter owns the per-window render caches. Only the paint goroutine uses
// it.
type painter struct {
	theme    *theme.Theme
	canvas   render.Canvas
	viewport *render.Viewport
	buttons  []*CacheButton
}

func newPainter(th *theme.Theme, canvas render.Canvas) *painter {
	if th == nil {
		th = theme.Default()
	}
	return &painter{
		theme:    th,
		canvas:   canvas,
		viewport: render.NewViewport(th.CheckerLight, th.CheckerDark),
		buttons:  newToolButtons(th, nil),
	}
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, p *painter, st paintState) {
	b, err := s.NewBuffer(image.Point{st.layout.width, st.layout.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	if !p.compose(ctx, b.RGBA(), st) {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

// compose draws a whole frame into dst. It reports false if ctx was
// cancelled part way through.
func (p *painter) compose(ctx context.Context, dst *image.RGBA, st paintState) bool {
	th := p.theme
	l := st.layout
	draw.Draw(dst, dst.Bounds(), &image.Uniform{th.Background}, image.Point{}, draw.Src)

	p.viewport.Draw(dst, l.viewport, p.canvas)
	if ctx.Err() != nil {
		return false
	}

	p.drawToolbar(dst, st)
	drawStatus(dst, th, st)
	if ctx.Err() != nil {
		return false
	}

	if st.message != "" {
		drawMessage(dst, l.viewport, th, st.message)
	}
	return ctx.Err() == nil
}

func (p *painter) drawToolbar(dst *image.RGBA, st paintState) {
	th := p.theme
	l := st.layout
	draw.Draw(dst, l.toolbar, &image.Uniform{th.ToolbarBackground}, image.Point{}, draw.Src)

	for i, cb := range p.buttons {
		if i >= len(l.tools) {
			break
		}
		cb.SetRect(l.tools[i])
		state := StateDefault
		if tb, ok := cb.Button.(*ToolButton); ok && tb.tool == st.settings.Tool {
			state = StatePressed
		} else if st.hover.kind == targetTool && st.hover.index == i {
			state = StateHover
		}
		cb.Draw(dst, state)
	}

	for i, pc := range tool.Palette() {
		if i >= len(l.swatches) {
			break
		}
		rect := l.swatches[i]
		draw.Draw(dst, rect, &image.Uniform{pc.Color}, image.Point{}, draw.Src)
		if st.hover.kind == targetSwatch && st.hover.index == i {
			draw.Draw(dst, rect, &image.Uniform{color.NRGBA{255, 255, 255, 80}}, image.Point{}, draw.Over)
		}
		border := th.SwatchBorder
		if pc.Color == st.settings.Color() && st.settings.Tool != tool.Eraser {
			border = th.SwatchActive
		}
		drawRect(dst, rect, border, 1)
	}

	sample := st.settings.Color()
	for i, size := range tool.BrushSizes {
		if i >= len(l.sizes) {
			break
		}
		rect := l.sizes[i]
		state := StateDefault
		if size == st.settings.Size {
			state = StatePressed
		} else if st.hover.kind == targetSize && st.hover.index == i {
			state = StateHover
		}
		draw.Draw(dst, rect, &image.Uniform{buttonColor(th, state)}, image.Point{}, draw.Src)
		d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.ButtonText), Face: basicfont.Face7x13,
			Dot: fixed.P(rect.Min.X+4, rect.Min.Y+12)}
		d.DrawString(fmt.Sprintf("%d", size))
		thick := size
		if thick > sizeRowHeight-4 {
			thick = sizeRowHeight - 4
		}
		mid := rect.Min.Y + sizeRowHeight/2
		drawLine(dst, rect.Min.X+30, mid, rect.Max.X-4-thick/2, mid, sample, thick)
	}

	p.drawIndicator(dst, l, st.settings)
}

// drawIndicator shows both colour slots with the active one outlined.
func (p *painter) drawIndicator(dst *image.RGBA, l layout, st tool.Settings) {
	th := p.theme
	for _, slot := range []tool.Slot{tool.Primary, tool.Secondary} {
		rect, c := l.primary, st.Primary
		if slot == tool.Secondary {
			rect, c = l.secondary, st.Secondary
		}
		draw.Draw(dst, rect, &image.Uniform{c}, image.Point{}, draw.Src)
		if slot == st.Active {
			drawRect(dst, rect.Inset(-2), th.SwatchActive, 2)
		} else {
			drawRect(dst, rect, th.SwatchBorder, 1)
		}
	}
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.Foreground), Face: basicfont.Face7x13,
		Dot: fixed.P(l.primary.Min.X, l.primary.Max.Y+14)}
	d.DrawString("X:swap")
}

// statusShortcuts lays out the clickable status bar labels. Drawing and hit
// testing both use it so the two never disagree.
func statusShortcuts(th *theme.Theme, l layout, zoom float64, onTap func(string)) []*Shortcut {
	items := []struct{ label, action string }{
		{"^Z:undo", actionUndo},
		{"^Y:redo", actionRedo},
		{"^S:save", actionSave},
		{"^C:copy", actionCopy},
		{"^V:paste", actionPaste},
		{"^N:clear", actionClear},
		{fmt.Sprintf("+/-:zoom (%.0f%%)", zoom*100), actionZoomIn},
		{"0:reset", actionResetView},
		{"Q:quit", actionQuit},
	}
	meas := &font.Drawer{Face: basicfont.Face7x13}
	x := l.status.Min.X + 4
	y := l.status.Min.Y + 18
	out := make([]*Shortcut, 0, len(items))
	for _, it := range items {
		w := meas.MeasureString(it.label).Ceil()
		sc := &Shortcut{label: it.label, action: it.action, theme: th, onTap: onTap}
		sc.SetRect(image.Rect(x-2, y-14, x+w+2, y+4))
		out = append(out, sc)
		x = sc.rect.Max.X + 8
	}
	return out
}

// shortcutAt returns the index of the status shortcut under p, or -1.
func shortcutAt(shortcuts []*Shortcut, p image.Point) int {
	for i, sc := range shortcuts {
		if p.In(sc.Rect()) {
			return i
		}
	}
	return -1
}

func drawStatus(dst *image.RGBA, th *theme.Theme, st paintState) {
	l := st.layout
	draw.Draw(dst, l.status, &image.Uniform{th.StatusBackground}, image.Point{}, draw.Src)
	shortcuts := statusShortcuts(th, l, st.zoom, nil)
	for i, sc := range shortcuts {
		state := StateDefault
		if i == st.hoverShortcut {
			state = StateHover
		}
		sc.Draw(dst, state)
	}
	info := fmt.Sprintf("%s %dpx  %d/%d", st.settings.Tool, st.settings.Size, st.historyLen, st.historyLen+st.redoLen)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.StatusText), Face: basicfont.Face7x13}
	w := d.MeasureString(info).Ceil()
	x := l.status.Max.X - w - 6
	if len(shortcuts) > 0 && x < shortcuts[len(shortcuts)-1].rect.Max.X+8 {
		return
	}
	d.Dot = fixed.P(x, l.status.Min.Y+16)
	d.DrawString(info)
}

// drawMessage centres msg over area in a translucent box.
func drawMessage(dst *image.RGBA, area image.Rectangle, th *theme.Theme, msg string) {
	face := overlayFace()
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.Foreground), Face: face}
	wmsg := d.MeasureString(msg).Ceil()
	ascent := face.Metrics().Ascent.Ceil()
	descent := face.Metrics().Descent.Ceil()
	px := area.Min.X + (area.Dx()-wmsg)/2
	py := area.Min.Y + (area.Dy()-ascent-descent)/2 + ascent
	rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
	bg := color.NRGBA{th.Background.R, th.Background.G, th.Background.B, 230}
	draw.Draw(dst, rect, &image.Uniform{bg}, image.Point{}, draw.Over)
	drawRect(dst, rect, th.ButtonBorder, 2)
	d.Dot = fixed.P(px, py)
	d.DrawString(msg)
}
