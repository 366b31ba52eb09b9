package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"os"
	"strconv"
	"strings"

	"github.com/example/sketchpad/internal/clipboard"
	"github.com/example/sketchpad/internal/editor"
	"github.com/example/sketchpad/internal/geom"
	"github.com/example/sketchpad/internal/raster"
	"github.com/example/sketchpad/internal/render"
	"github.com/example/sketchpad/internal/tool"
)

type drawCmd struct {
	*root
	fs            *flag.FlagSet
	file          string
	output        string
	format        string
	fromClipboard bool
	toClipboard   bool
	colorSpec     string
	size          int
	width         int
	height        int
	shadow        bool

	op     string
	coords []int
	color  color.RGBA

	// readClipboard and writeClipboard are replaced in tests.
	readClipboard  func() ([]byte, error)
	writeClipboard func([]byte) error
}

func parseDrawCmd(args []string, r *root) (*drawCmd, error) {
	if r == nil {
		r = &root{program: "sketchpad"}
	}
	fs := flag.NewFlagSet("draw", flag.ExitOnError)
	d := &drawCmd{
		root:           r.subcommand("draw"),
		fs:             fs,
		readClipboard:  clipboard.ReadImageData,
		writeClipboard: clipboard.WriteImageData,
	}
	fs.Usage = usageFunc(d)
	fs.StringVar(&d.file, "file", "", "image to draw on; created blank when missing")
	fs.StringVar(&d.output, "output", "", "file to write (default -file)")
	fs.StringVar(&d.format, "format", "", "output format: png or jpeg (default from the output extension)")
	fs.BoolVar(&d.fromClipboard, "from-clipboard", false, "draw on the clipboard image instead of -file")
	fs.BoolVar(&d.toClipboard, "to-clipboard", false, "also copy the result to the clipboard as PNG")
	fs.StringVar(&d.colorSpec, "color", "black", "colour name or #rrggbb")
	fs.IntVar(&d.size, "size", tool.DefaultSize, "brush diameter in pixels")
	fs.IntVar(&d.width, "width", raster.DefaultWidth, "width of a new canvas")
	fs.IntVar(&d.height, "height", raster.DefaultHeight, "height of a new canvas")
	fs.BoolVar(&d.shadow, "shadow", false, "add a drop shadow around the written image")

	flagArgs, positionals, err := splitDrawArgs(args)
	if err != nil {
		return nil, err
	}
	if err := fs.Parse(flagArgs); err != nil {
		return nil, err
	}
	if len(positionals) == 0 {
		return nil, &UsageError{of: d}
	}
	if d.fromClipboard && d.output == "" && !d.toClipboard {
		return nil, errors.New("output file is required when reading from the clipboard")
	}
	if !d.fromClipboard && d.file == "" {
		return nil, errors.New("-file is required")
	}
	if d.output == "" {
		d.output = d.file
	}
	c, err := tool.ParseColor(d.colorSpec)
	if err != nil {
		return nil, err
	}
	d.color = c
	d.op = strings.ToLower(positionals[0])
	for _, s := range positionals[1:] {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate %q", s)
		}
		d.coords = append(d.coords, v)
	}
	if err := d.checkArity(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *drawCmd) FlagSet() *flag.FlagSet {
	return d.fs
}

func (d *drawCmd) checkArity() error {
	n := len(d.coords)
	switch d.op {
	case "stroke", "erase":
		if n < 2 || n%2 != 0 {
			return fmt.Errorf("%s expects one or more x y pairs", d.op)
		}
	case "line", "rect", "rectangle", "ellipse", "circle", "triangle":
		if n != 4 {
			return fmt.Errorf("%s expects x0 y0 x1 y1", d.op)
		}
	case "fill":
		if n != 2 {
			return errors.New("fill expects x y")
		}
	case "clear":
		if n != 0 {
			return errors.New("clear takes no coordinates")
		}
	default:
		return fmt.Errorf("unknown draw operation %q", d.op)
	}
	return nil
}

func (d *drawCmd) Run() error {
	ctx := context.Background()
	ed, err := d.openCanvas(ctx)
	if err != nil {
		return err
	}
	if err := d.apply(ed); err != nil {
		return err
	}

	format, err := d.outputFormat(d.format, d.output)
	if err != nil {
		return err
	}
	snap := ed.Snapshot()
	if snap == nil {
		return editor.ErrNotMounted
	}
	img := snap.Image()
	if d.shadow {
		img = render.ApplyShadow(img, render.DefaultShadowOptions()).Image
	}

	if d.output != "" {
		data, err := d.encode(img, format)
		if err != nil {
			return err
		}
		if err := os.WriteFile(d.output, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", d.output, err)
		}
		d.notifySave(d.output)
	}
	if d.toClipboard {
		data, err := d.encode(img, raster.FormatPNG)
		if err != nil {
			return err
		}
		if err := d.writeClipboard(data); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		d.notifyCopy("drawing", data)
	}
	return nil
}

// openCanvas mounts an editor sized to the source image and loads it. A
// missing -file starts from a blank canvas.
func (d *drawCmd) openCanvas(ctx context.Context) (*editor.Editor, error) {
	var (
		data []byte
		name string
		err  error
	)
	if d.fromClipboard {
		name = "clipboard"
		data, err = d.readClipboard()
		if err != nil {
			return nil, fmt.Errorf("read clipboard: %w", err)
		}
	} else {
		name = d.file
		data, err = os.ReadFile(d.file)
		if errors.Is(err, os.ErrNotExist) {
			ed := editor.New(d.editorOptions(d.width, d.height)...)
			return ed, ed.Mount()
		}
		if err != nil {
			return nil, err
		}
	}

	cfg, err := raster.DecodeConfig(data)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	ed := editor.New(d.editorOptions(cfg.Width, cfg.Height)...)
	if err := ed.Mount(); err != nil {
		return nil, err
	}
	if err := ed.Load(ctx, editor.Bytes(name, data)); err != nil {
		return nil, err
	}
	return ed, nil
}

// apply runs the operation through the editor's pointer API so the result
// matches what the window would produce for the same gesture.
func (d *drawCmd) apply(ed *editor.Editor) error {
	ed.SetColor(tool.Primary, d.color)
	ed.SetBrushSize(d.size)

	var t tool.Tool
	switch d.op {
	case "clear":
		ed.Clear()
		return nil
	case "stroke":
		t = tool.Brush
	case "erase":
		t = tool.Eraser
	case "line":
		t = tool.Line
	case "rect", "rectangle":
		t = tool.Rectangle
	case "ellipse", "circle":
		t = tool.Ellipse
	case "triangle":
		t = tool.Triangle
	case "fill":
		t = tool.Fill
	}
	if err := ed.SetTool(t); err != nil {
		return err
	}
	pts := make([]geom.Point, 0, len(d.coords)/2)
	for i := 0; i+1 < len(d.coords); i += 2 {
		pts = append(pts, geom.Pt(float64(d.coords[i]), float64(d.coords[i+1])))
	}
	ed.PointerDown(pts[0])
	if len(pts) == 1 && (t == tool.Brush || t == tool.Eraser) {
		// A lone point is a dot.
		ed.PointerMove(pts[0])
	}
	for _, p := range pts[1:] {
		ed.PointerMove(p)
	}
	ed.PointerUp()
	return nil
}

// encode writes img in format f. JPEG output is flattened onto white first
// since a drop shadow leaves transparent margins.
func (d *drawCmd) encode(img *image.RGBA, f raster.Format) ([]byte, error) {
	var opts []raster.Option
	if d.config != nil && d.config.JPEGQuality > 0 {
		opts = append(opts, raster.WithJPEGQuality(d.config.JPEGQuality))
	}
	size := img.Bounds().Size()
	if f == raster.FormatJPEG {
		img = raster.Fit(img, size, raster.White)
	}
	s, err := raster.New(size.X, size.Y, opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Load(img); err != nil {
		return nil, err
	}
	return s.EncodeBytes(f)
}

var drawFlagNames = map[string]struct{}{
	"file":           {},
	"output":         {},
	"format":         {},
	"from-clipboard": {},
	"to-clipboard":   {},
	"color":          {},
	"size":           {},
	"width":          {},
	"height":         {},
	"shadow":         {},
}

var drawBoolFlags = map[string]struct{}{
	"from-clipboard": {},
	"to-clipboard":   {},
	"shadow":         {},
}

// splitDrawArgs separates known flags from positional arguments so flags may
// follow the operation and negative coordinates are not mistaken for flags.
func splitDrawArgs(args []string) ([]string, []string, error) {
	var flags []string
	var positionals []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			positionals = append(positionals, arg)
			continue
		}
		name := strings.TrimLeft(arg, "-")
		if name == "" {
			positionals = append(positionals, arg)
			continue
		}
		parts := strings.SplitN(name, "=", 2)
		base := strings.ToLower(parts[0])
		if _, ok := drawFlagNames[base]; !ok {
			positionals = append(positionals, arg)
			continue
		}
		norm := "-" + base
		if len(parts) == 2 {
			flags = append(flags, norm+"="+parts[1])
			continue
		}
		if _, ok := drawBoolFlags[base]; ok {
			flags = append(flags, norm)
			continue
		}
		if i+1 >= len(args) {
			return nil, nil, fmt.Errorf("flag %s requires a value", arg)
		}
		flags = append(flags, norm, args[i+1])
		i++
	}
	return flags, positionals, nil
}
