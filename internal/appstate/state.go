package appstate

import (
	"context"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/sketchpad/internal/clipboard"
	"github.com/example/sketchpad/internal/editor"
	"github.com/example/sketchpad/internal/geom"
	"github.com/example/sketchpad/internal/notify"
	"github.com/example/sketchpad/internal/raster"
	"github.com/example/sketchpad/internal/theme"
	"github.com/example/sketchpad/internal/tool"
)

// AppState holds the window configuration and the editor it drives.
type AppState struct {
	Editor   *editor.Editor
	Theme    *theme.Theme
	Title    string
	Output   string
	Format   raster.Format
	Notifier *notify.Notifier

	updateCh chan struct{}
	keymap   map[KeyShortcut]string

	mu           sync.Mutex
	message      string
	messageUntil time.Time
	confirmClear bool

	now                func() time.Time
	writeClipboard     func([]byte) error
	readClipboardImage func() ([]byte, error)
	readClipboardText  func() (string, error)

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithEditor sets the editor shown in the window. It must be mounted before
// Run.
func WithEditor(e *editor.Editor) Option { return func(a *AppState) { a.Editor = e } }

// WithTheme sets the colours used for the window chrome.
func WithTheme(t *theme.Theme) Option { return func(a *AppState) { a.Theme = t } }

// WithTitle sets the window title.
func WithTitle(title string) Option { return func(a *AppState) { a.Title = title } }

// WithOutput sets the file written by the save shortcut.
func WithOutput(out string) Option { return func(a *AppState) { a.Output = out } }

// WithFormat sets the encoding used by the save shortcut.
func WithFormat(f raster.Format) Option { return func(a *AppState) { a.Format = f } }

// WithNotifier sets the desktop notifier for save, copy and load failures.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.Notifier = n } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{
		Title:              "Sketchpad",
		Format:             raster.FormatPNG,
		updateCh:           make(chan struct{}, 1),
		keymap:             defaultKeymap(),
		now:                time.Now,
		writeClipboard:     clipboard.WriteImageData,
		readClipboardImage: clipboard.ReadImageData,
		readClipboardText:  clipboard.ReadText,
	}
	for _, o := range opts {
		o(a)
	}
	if a.Theme == nil {
		a.Theme = theme.Default()
	}
	return a
}

// NotifyImageChanged requests a repaint. It never blocks and is safe to pass
// as the editor's change callback before the window exists.
func (a *AppState) NotifyImageChanged() {
	if a == nil || a.updateCh == nil {
		return
	}
	select {
	case a.updateCh <- struct{}{}:
	default:
	}
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

// Run executes the UI loop using shiny's driver. It returns when the window
// is closed.
func (a *AppState) Run() { driver.Main(a.Main) }

// pointerState tracks the mouse between events.
type pointerState struct {
	dragging      bool
	hover         target
	hoverShortcut int
}

func (a *AppState) Main(s screen.Screen) {
	canvas := a.Editor.Size()
	width := canvas.X + toolbarWidth
	height := canvas.Y + statusHeight
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: a.Title})
	if err != nil {
		log.Printf("new window: %v", err)
		return
	}
	defer w.Release()
	defer a.notifyClose()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-a.updateCh:
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	p := newPainter(a.Theme, a.Editor)
	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			fctx, fcancel := context.WithCancel(ctx)
			paintMu.Lock()
			paintCancel = fcancel
			paintMu.Unlock()
			drawFrame(fctx, s, w, p, st)
			paintMu.Lock()
			paintCancel = nil
			if fctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			fcancel()
		}
	}()
	defer close(paintCh)
	stopPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	l := newLayout(width, height)
	a.Editor.SetOrigin(geom.FromImage(l.origin()))
	ptr := pointerState{hover: noTarget, hoverShortcut: -1}

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				stopPaint()
				return
			}
		case size.Event:
			l = newLayout(e.WidthPx, e.HeightPx)
			a.Editor.SetOrigin(geom.FromImage(l.origin()))
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := a.paintState(l, ptr)
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			repaint, quit := a.handleMouse(ctx, &ptr, l, e)
			if quit {
				stopPaint()
				return
			}
			if repaint {
				w.Send(paint.Event{})
			}
		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			action, ok := lookupKey(a.keymap, e)
			if !ok {
				a.confirmClear = false
				continue
			}
			if a.perform(ctx, action) {
				stopPaint()
				return
			}
			w.Send(paint.Event{})
		case error:
			log.Printf("window: %v", e)
		}
	}
}

func (a *AppState) paintState(l layout, ptr pointerState) paintState {
	return paintState{
		layout:        l,
		settings:      a.Editor.Settings(),
		zoom:          a.Editor.View().Zoom,
		hover:         ptr.hover,
		hoverShortcut: ptr.hoverShortcut,
		message:       a.currentMessage(),
		historyLen:    a.Editor.HistoryLen(),
		redoLen:       a.Editor.RedoLen(),
	}
}

// handleMouse routes a mouse event to the toolbar, the status bar or the
// editor's pointer API. Once a gesture starts in the viewport it owns the
// pointer until release; leaving the viewport ends it with PointerLeave.
func (a *AppState) handleMouse(ctx context.Context, ptr *pointerState, l layout, e mouse.Event) (repaint, quit bool) {
	pos := image.Pt(int(e.X), int(e.Y))
	screenPos := geom.Pt(float64(e.X), float64(e.Y))
	over := l.hit(pos)

	switch e.Button {
	case mouse.ButtonWheelUp, mouse.ButtonWheelDown:
		if over.kind != targetViewport {
			return false, false
		}
		if e.Button == mouse.ButtonWheelUp {
			a.Editor.Wheel(-1)
		} else {
			a.Editor.Wheel(1)
		}
		return true, false
	}

	if ptr.dragging {
		switch {
		case e.Direction == mouse.DirRelease && e.Button == mouse.ButtonLeft:
			ptr.dragging = false
			a.Editor.PointerUp()
		case over.kind != targetViewport:
			ptr.dragging = false
			a.Editor.PointerLeave()
		case e.Direction == mouse.DirNone:
			a.Editor.PointerMove(screenPos)
		}
		return true, false
	}

	if e.Direction == mouse.DirPress && a.dismissMessage() {
		return true, false
	}

	prevHover, prevShortcut := ptr.hover, ptr.hoverShortcut
	ptr.hover = over
	ptr.hoverShortcut = -1
	var shortcuts []*Shortcut
	if over.kind == targetStatus {
		shortcuts = statusShortcuts(a.Theme, l, a.Editor.View().Zoom, func(action string) {
			quit = a.perform(ctx, action)
		})
		ptr.hoverShortcut = shortcutAt(shortcuts, pos)
	}
	repaint = ptr.hover != prevHover || ptr.hoverShortcut != prevShortcut

	if e.Direction != mouse.DirPress {
		return repaint, false
	}
	switch over.kind {
	case targetViewport:
		if e.Button == mouse.ButtonLeft {
			ptr.dragging = true
			a.Editor.PointerDown(screenPos)
		}
	case targetTool:
		if e.Button == mouse.ButtonLeft {
			if err := a.Editor.SetTool(tool.Tools()[over.index]); err != nil {
				log.Printf("select tool: %v", err)
			}
		}
	case targetSwatch:
		c := tool.Palette()[over.index].Color
		switch e.Button {
		case mouse.ButtonLeft:
			a.Editor.SetColor(tool.Primary, c)
		case mouse.ButtonRight:
			a.Editor.SetColor(tool.Secondary, c)
		}
	case targetSize:
		if e.Button == mouse.ButtonLeft {
			a.Editor.SetBrushSize(tool.BrushSizes[over.index])
		}
	case targetPrimary:
		a.Editor.SetActive(tool.Primary)
	case targetSecondary:
		a.Editor.SetActive(tool.Secondary)
	case targetStatus:
		if e.Button == mouse.ButtonLeft && ptr.hoverShortcut >= 0 {
			shortcuts[ptr.hoverShortcut].Activate()
		}
	}
	return true, quit
}
