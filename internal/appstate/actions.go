package appstate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"golang.org/x/mobile/event/key"

	"github.com/example/sketchpad/internal/editor"
	"github.com/example/sketchpad/internal/raster"
	"github.com/example/sketchpad/internal/tool"
)

const messageDuration = 2 * time.Second

const (
	actionUndo      = "undo"
	actionRedo      = "redo"
	actionSave      = "save"
	actionCopy      = "copy"
	actionPaste     = "paste"
	actionClear     = "clear"
	actionSwap      = "swap"
	actionSmaller   = "smaller"
	actionBigger    = "bigger"
	actionZoomIn    = "zoom-in"
	actionZoomOut   = "zoom-out"
	actionResetView = "reset-view"
	actionQuit      = "quit"
	toolPrefix      = "tool:"
)

// defaultKeymap returns the window shortcuts. Shift is ignored when matching
// so that "+" works on layouts where it needs shift.
func defaultKeymap() map[KeyShortcut]string {
	m := map[KeyShortcut]string{}
	bind := func(action string, keys KeyboardShortcuts) {
		for _, sc := range keys.KeyboardShortcuts() {
			m[sc] = action
		}
	}
	for t, r := range toolKeys {
		bind(toolPrefix+t.String(), shortcutList{{Rune: r}})
	}
	bind(actionSwap, shortcutList{{Rune: 'x'}})
	bind(actionSmaller, shortcutList{{Rune: '['}})
	bind(actionBigger, shortcutList{{Rune: ']'}})
	bind(actionUndo, shortcutList{{Rune: 'z', Modifiers: key.ModControl}, {Code: key.CodeZ, Modifiers: key.ModControl}})
	bind(actionRedo, shortcutList{{Rune: 'y', Modifiers: key.ModControl}, {Code: key.CodeY, Modifiers: key.ModControl}})
	bind(actionSave, shortcutList{{Rune: 's', Modifiers: key.ModControl}, {Code: key.CodeS, Modifiers: key.ModControl}})
	bind(actionCopy, shortcutList{{Rune: 'c', Modifiers: key.ModControl}, {Code: key.CodeC, Modifiers: key.ModControl}})
	bind(actionPaste, shortcutList{{Rune: 'v', Modifiers: key.ModControl}, {Code: key.CodeV, Modifiers: key.ModControl}})
	bind(actionClear, shortcutList{{Rune: 'n', Modifiers: key.ModControl}, {Code: key.CodeN, Modifiers: key.ModControl}})
	bind(actionZoomIn, shortcutList{{Rune: '+'}, {Rune: '='}, {Code: key.CodeKeypadPlusSign}})
	bind(actionZoomOut, shortcutList{{Rune: '-'}, {Code: key.CodeKeypadHyphenMinus}})
	bind(actionResetView, shortcutList{{Rune: '0'}})
	bind(actionQuit, shortcutList{{Rune: 'q'}})
	return m
}

// lookupKey resolves a key press to an action, trying the typed rune before
// the physical key code.
func lookupKey(keymap map[KeyShortcut]string, e key.Event) (string, bool) {
	mods := e.Modifiers &^ key.ModShift
	if e.Rune > 0 {
		if action, ok := keymap[KeyShortcut{Rune: unicode.ToLower(e.Rune), Modifiers: mods}]; ok {
			return action, true
		}
	}
	action, ok := keymap[KeyShortcut{Code: e.Code, Modifiers: mods}]
	return action, ok
}

// stepBrushSize moves to the next quick-pick size in direction dir, falling
// back to the size limits past either end.
func stepBrushSize(cur, dir int) int {
	if dir < 0 {
		next := tool.MinSize
		for _, s := range tool.BrushSizes {
			if s < cur && s > next {
				next = s
			}
		}
		return next
	}
	next := tool.MaxSize
	for _, s := range tool.BrushSizes {
		if s > cur && s < next {
			next = s
		}
	}
	return next
}

// perform runs a named action. It reports whether the window should close.
func (a *AppState) perform(ctx context.Context, action string) bool {
	if action != actionClear {
		a.confirmClear = false
	}
	if strings.HasPrefix(action, toolPrefix) {
		t, err := tool.ParseTool(strings.TrimPrefix(action, toolPrefix))
		if err != nil {
			log.Printf("shortcut %s: %v", action, err)
			return false
		}
		if err := a.Editor.SetTool(t); err != nil {
			log.Printf("shortcut %s: %v", action, err)
		}
		return false
	}
	switch action {
	case actionUndo:
		if !a.Editor.Undo() {
			a.setMessage("nothing to undo")
		}
	case actionRedo:
		if !a.Editor.Redo() {
			a.setMessage("nothing to redo")
		}
	case actionSave:
		if _, err := a.save(); err != nil {
			log.Printf("save: %v", err)
			a.setMessage("save failed")
		}
	case actionCopy:
		if err := a.copyImage(); err != nil {
			log.Printf("copy: %v", err)
			a.setMessage("copy failed")
		}
	case actionPaste:
		a.paste(ctx)
	case actionClear:
		if !a.confirmClear {
			a.confirmClear = true
			a.setMessage("press ^N again to clear")
			return false
		}
		a.confirmClear = false
		a.Editor.Clear()
		a.setMessage("canvas cleared")
	case actionSwap:
		slot := a.Editor.SwapActive()
		a.setMessage(slot.String() + " colour active")
	case actionSmaller:
		a.Editor.SetBrushSize(stepBrushSize(a.Editor.Settings().Size, -1))
	case actionBigger:
		a.Editor.SetBrushSize(stepBrushSize(a.Editor.Settings().Size, 1))
	case actionZoomIn:
		a.Editor.ZoomBy(tool.WheelStep)
	case actionZoomOut:
		a.Editor.ZoomBy(-tool.WheelStep)
	case actionResetView:
		a.Editor.ResetView()
	case actionQuit:
		return true
	default:
		log.Printf("unknown action %q", action)
	}
	return false
}

// outputPath is where ^S writes; the extension follows the export format.
func (a *AppState) outputPath() string {
	if a.Output != "" {
		return a.Output
	}
	return "sketch" + a.Format.Extension()
}

// save writes the exported canvas to the output path and returns the
// absolute path written.
func (a *AppState) save() (string, error) {
	data := a.Editor.ExportImage(a.Format)
	if data == nil {
		return "", errors.New("nothing to export")
	}
	path := a.outputPath()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	a.setMessage("saved " + filepath.Base(path))
	log.Printf("saved %s", path)
	a.Notifier.Save(path)
	return path, nil
}

func (a *AppState) copyImage() error {
	data := a.Editor.ExportImage(raster.FormatPNG)
	if data == nil {
		return errors.New("nothing to export")
	}
	if err := a.writeClipboard(data); err != nil {
		return err
	}
	a.setMessage("image copied to clipboard")
	log.Print("image copied to clipboard")
	a.Notifier.Copy("canvas", data)
	return nil
}

// paste loads clipboard image data, or failing that a path or URL held as
// clipboard text.
func (a *AppState) paste(ctx context.Context) {
	if data, err := a.readClipboardImage(); err == nil && len(data) > 0 {
		a.Editor.LoadImage(ctx, editor.Bytes("clipboard", data), a.loadDone("clipboard"))
		return
	}
	text, err := a.readClipboardText()
	if err != nil || strings.TrimSpace(text) == "" {
		a.setMessage("clipboard has no image")
		return
	}
	src, err := editor.ParseSource(text)
	if err != nil {
		a.setMessage("clipboard has no image")
		return
	}
	a.setMessage("loading " + src.String())
	a.Editor.LoadImage(ctx, src, a.loadDone(src.String()))
}

// Load replaces the canvas with src in the background, reporting the result
// in the status overlay.
func (a *AppState) Load(ctx context.Context, src editor.Source) {
	a.Editor.LoadImage(ctx, src, a.loadDone(src.String()))
}

func (a *AppState) loadDone(name string) func(error) {
	return func(err error) {
		switch {
		case err == nil:
			a.setMessage("loaded " + shortName(name))
		case errors.Is(err, editor.ErrLoadSuperseded):
		default:
			a.setMessage("load failed: " + shortName(name))
			a.Notifier.LoadFailed(name, err)
		}
	}
}

func shortName(name string) string {
	if strings.HasPrefix(name, "data:") {
		return "data URL"
	}
	if len(name) > 48 {
		return "…" + name[len(name)-47:]
	}
	return name
}

func (a *AppState) setMessage(msg string) {
	a.mu.Lock()
	a.message = msg
	a.messageUntil = a.now().Add(messageDuration)
	a.mu.Unlock()
	a.NotifyImageChanged()
}

// currentMessage returns the overlay text while it is still showing.
func (a *AppState) currentMessage() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.message == "" || !a.now().Before(a.messageUntil) {
		return ""
	}
	return a.message
}

func (a *AppState) dismissMessage() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.message == "" || !a.now().Before(a.messageUntil) {
		return false
	}
	a.messageUntil = time.Time{}
	return true
}
