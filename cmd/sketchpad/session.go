package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/example/sketchpad/internal/clipboard"
	"github.com/example/sketchpad/internal/editor"
	"github.com/example/sketchpad/internal/geom"
	"github.com/example/sketchpad/internal/raster"
	"github.com/example/sketchpad/internal/tool"
)

type commandList []string

func (c *commandList) String() string {
	return strings.Join(*c, ";")
}

func (c *commandList) Set(value string) error {
	*c = append(*c, value)
	return nil
}

func writef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

// sessionCmd drives one editor from text commands. Coordinates are screen
// positions with the canvas origin at 0,0, so zoom and pan apply exactly as
// they do in the window.
type sessionCmd struct {
	*root
	fs     *flag.FlagSet
	execs  commandList
	width  int
	height int
	load   string

	ed *editor.Editor

	writeClipboardImage func([]byte) error
	writeClipboardText  func(string) error
}

func parseSessionCmd(args []string, r *root) (*sessionCmd, error) {
	fs := flag.NewFlagSet("session", flag.ExitOnError)
	c := &sessionCmd{
		root:                r.subcommand("session"),
		fs:                  fs,
		writeClipboardImage: clipboard.WriteImageData,
		writeClipboardText:  clipboard.WriteText,
	}
	fs.Usage = usageFunc(c)
	width, height := raster.DefaultWidth, raster.DefaultHeight
	if c.config != nil {
		width = orDefault(c.config.Width, width)
		height = orDefault(c.config.Height, height)
	}
	fs.Var(&c.execs, "e", "execute a command instead of reading stdin (may be specified multiple times)")
	fs.IntVar(&c.width, "width", width, "canvas width in pixels")
	fs.IntVar(&c.height, "height", height, "canvas height in pixels")
	fs.StringVar(&c.load, "load", "", "image to load before the first command")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *sessionCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *sessionCmd) Run() error {
	c.ed = editor.New(c.editorOptions(c.width, c.height)...)
	if err := c.ed.Mount(); err != nil {
		return fmt.Errorf("create canvas: %w", err)
	}
	if c.load != "" {
		if _, err := c.executeLine("load " + c.load); err != nil {
			return err
		}
	}

	if len(c.execs) > 0 {
		for _, line := range c.execs {
			done, err := c.executeLine(line)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		return nil
	}

	in := c.stdin
	if in == nil {
		in = os.Stdin
	}
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		done, err := c.executeLine(scanner.Text())
		if err != nil {
			if werr := writef(c.errOut(), "error: %v\n", err); werr != nil {
				return werr
			}
			continue
		}
		if done {
			return nil
		}
	}
	return scanner.Err()
}

// executeLine runs a single command. It reports true when the session should
// end.
func (c *sessionCmd) executeLine(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	ed := c.ed

	switch cmd {
	case "quit", "exit":
		return true, nil
	case "tool":
		if len(args) != 1 {
			return false, errors.New("usage: tool <name>")
		}
		t, err := tool.ParseTool(args[0])
		if err != nil {
			return false, err
		}
		return false, ed.SetTool(t)
	case "size":
		if len(args) != 1 {
			return false, errors.New("usage: size <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return false, fmt.Errorf("invalid size %q", args[0])
		}
		ed.SetBrushSize(n)
	case "color", "colour":
		if len(args) < 1 || len(args) > 2 {
			return false, errors.New("usage: color <colour> [primary|secondary]")
		}
		col, err := tool.ParseColor(args[0])
		if err != nil {
			return false, err
		}
		slot := tool.Primary
		if len(args) == 2 {
			if slot, err = parseSlot(args[1]); err != nil {
				return false, err
			}
		}
		ed.SetColor(slot, col)
	case "active":
		if len(args) != 1 {
			return false, errors.New("usage: active <primary|secondary>")
		}
		slot, err := parseSlot(args[0])
		if err != nil {
			return false, err
		}
		ed.SetActive(slot)
	case "down", "move":
		p, err := parsePoint(args)
		if err != nil {
			return false, fmt.Errorf("%s: %w", cmd, err)
		}
		if cmd == "down" {
			ed.PointerDown(p)
		} else {
			ed.PointerMove(p)
		}
	case "up":
		ed.PointerUp()
	case "leave":
		ed.PointerLeave()
	case "wheel":
		if len(args) != 1 {
			return false, errors.New("usage: wheel <dy>")
		}
		dy, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return false, fmt.Errorf("invalid wheel delta %q", args[0])
		}
		ed.Wheel(dy)
	case "undo":
		if !ed.Undo() {
			return false, writef(c.out(), "nothing to undo\n")
		}
	case "redo":
		if !ed.Redo() {
			return false, writef(c.out(), "nothing to redo\n")
		}
	case "clear":
		ed.Clear()
	case "load":
		if len(args) != 1 {
			return false, errors.New("usage: load <path|url|data:|clipboard>")
		}
		src, err := editor.ParseSource(args[0])
		if err != nil {
			return false, err
		}
		if err := ed.Load(context.Background(), src); err != nil {
			return false, err
		}
	case "export":
		return false, c.export(args)
	case "status":
		return false, c.status()
	default:
		return false, fmt.Errorf("unknown command %q", cmd)
	}
	return false, nil
}

// export writes the canvas to a file, prints a data URL when the target is
// "data" or copies it when the target is "clipboard".
func (c *sessionCmd) export(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: export <file|data|clipboard> [png|jpeg]")
	}
	target, name := args[0], ""
	if len(args) == 2 {
		name = args[1]
	}
	format, err := c.outputFormat(name, target)
	if err != nil {
		return err
	}
	if target == "clipboard" {
		return c.exportClipboard(format)
	}
	if target == "data" {
		url := c.ed.ExportDataURL(format)
		if url == "" {
			return raster.ErrEncodeUnavailable
		}
		return writef(c.out(), "%s\n", url)
	}
	data := c.ed.ExportImage(format)
	if len(data) == 0 {
		return raster.ErrEncodeUnavailable
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return err
	}
	c.notifySave(target)
	return writef(c.out(), "wrote %s\n", target)
}

// exportClipboard publishes PNG as image data. Clipboard images must be PNG,
// so JPEG is copied as a data URL in text form.
func (c *sessionCmd) exportClipboard(format raster.Format) error {
	data := c.ed.ExportImage(format)
	if len(data) == 0 {
		return raster.ErrEncodeUnavailable
	}
	var err error
	if format == raster.FormatPNG {
		err = c.writeClipboardImage(data)
	} else {
		err = c.writeClipboardText(raster.DataURL(data, format))
	}
	if err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	c.notifyCopy("canvas", data)
	return writef(c.out(), "copied %s\n", format)
}

func (c *sessionCmd) status() error {
	st := c.ed.Settings()
	v := c.ed.View()
	return writef(c.out(), "tool=%s size=%d primary=%s secondary=%s active=%s state=%s zoom=%.2f pan=%g,%g history=%d redo=%d\n",
		st.Tool, st.Size, tool.FormatColor(st.Primary), tool.FormatColor(st.Secondary), st.Active,
		c.ed.State(), v.Zoom, v.Pan.X, v.Pan.Y, c.ed.HistoryLen(), c.ed.RedoLen())
}

func parseSlot(s string) (tool.Slot, error) {
	switch strings.ToLower(s) {
	case "primary", "1":
		return tool.Primary, nil
	case "secondary", "2":
		return tool.Secondary, nil
	}
	return tool.Primary, fmt.Errorf("unknown colour slot %q", s)
}

func parsePoint(args []string) (geom.Point, error) {
	if len(args) != 2 {
		return geom.Point{}, errors.New("expected x y")
	}
	x, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("invalid x %q", args[0])
	}
	y, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return geom.Point{}, fmt.Errorf("invalid y %q", args[1])
	}
	return geom.Pt(x, y), nil
}
