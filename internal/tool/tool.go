// Package tool holds the drawing tool selection and the gesture state
// machine that turns pointer events into surface mutations.
package tool

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/example/sketchpad/internal/raster"
)

type Tool int

const (
	Brush Tool = iota
	Eraser
	Fill
	Line
	Rectangle
	Ellipse
	Triangle
	Pan
)

var toolNames = []string{"brush", "eraser", "fill", "line", "rectangle", "ellipse", "triangle", "pan"}

// Tools lists every tool in toolbar order.
func Tools() []Tool {
	return []Tool{Brush, Eraser, Fill, Line, Rectangle, Ellipse, Triangle, Pan}
}

func (t Tool) String() string {
	if t.Valid() {
		return toolNames[t]
	}
	return fmt.Sprintf("Tool(%d)", int(t))
}

func (t Tool) Valid() bool { return t >= Brush && t <= Pan }

// Shape reports the outline drawn by a shape tool.
func (t Tool) Shape() (raster.Shape, bool) {
	switch t {
	case Line:
		return raster.ShapeLine, true
	case Rectangle:
		return raster.ShapeRect, true
	case Ellipse:
		return raster.ShapeEllipse, true
	case Triangle:
		return raster.ShapeTriangle, true
	}
	return 0, false
}

// ParseTool accepts a tool name or one of the short aliases used on the
// command line.
func ParseTool(s string) (Tool, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "pen", "stroke":
		return Brush, nil
	case "erase":
		return Eraser, nil
	case "bucket":
		return Fill, nil
	case "rect":
		return Rectangle, nil
	case "circle":
		return Ellipse, nil
	case "hand", "move":
		return Pan, nil
	}
	for i, n := range toolNames {
		if n == name {
			return Tool(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tool %q", s)
}

// Slot selects which of the two colours is active.
type Slot int

const (
	Primary Slot = iota
	Secondary
)

func (s Slot) String() string {
	switch s {
	case Primary:
		return "primary"
	case Secondary:
		return "secondary"
	}
	return fmt.Sprintf("Slot(%d)", int(s))
}

// Other returns the opposite slot.
func (s Slot) Other() Slot {
	if s == Primary {
		return Secondary
	}
	return Primary
}

const (
	MinSize     = 1
	MaxSize     = 100
	DefaultSize = 5
)

// Settings is the tool selection read at the start of every gesture.
type Settings struct {
	Tool      Tool
	Size      int
	Primary   color.RGBA
	Secondary color.RGBA
	Active    Slot
}

// DefaultSettings is a 5px black brush with white as the secondary colour.
func DefaultSettings() Settings {
	return Settings{
		Tool:      Brush,
		Size:      DefaultSize,
		Primary:   color.RGBA{0, 0, 0, 255},
		Secondary: raster.White,
		Active:    Primary,
	}
}

// Normalize clamps the size, drops colour alpha and rejects unknown tools or
// slots.
func (s Settings) Normalize() (Settings, error) {
	if !s.Tool.Valid() {
		return s, fmt.Errorf("unknown tool %v", s.Tool)
	}
	if s.Active != Primary && s.Active != Secondary {
		return s, fmt.Errorf("unknown colour slot %v", s.Active)
	}
	s.Size = ClampSize(s.Size)
	s.Primary.A = 255
	s.Secondary.A = 255
	return s, nil
}

// ClampSize bounds a brush diameter to MinSize..MaxSize.
func ClampSize(n int) int {
	if n < MinSize {
		return MinSize
	}
	if n > MaxSize {
		return MaxSize
	}
	return n
}

// Color is the colour a gesture paints with: white for the eraser, otherwise
// the active slot.
func (s Settings) Color() color.RGBA {
	if s.Tool == Eraser {
		return raster.White
	}
	if s.Active == Secondary {
		return s.Secondary
	}
	return s.Primary
}

// PaletteColor is a named swatch shown in the toolbar.
type PaletteColor struct {
	Name  string
	Color color.RGBA
}

var palette = []PaletteColor{
	{"Black", color.RGBA{0, 0, 0, 255}},
	{"White", color.RGBA{255, 255, 255, 255}},
	{"Red", color.RGBA{255, 0, 0, 255}},
	{"Lime", color.RGBA{0, 255, 0, 255}},
	{"Blue", color.RGBA{0, 0, 255, 255}},
	{"Yellow", color.RGBA{255, 255, 0, 255}},
	{"Cyan", color.RGBA{0, 255, 255, 255}},
	{"Magenta", color.RGBA{255, 0, 255, 255}},
	{"Maroon", color.RGBA{128, 0, 0, 255}},
	{"Green", color.RGBA{0, 128, 0, 255}},
	{"Navy", color.RGBA{0, 0, 128, 255}},
	{"Olive", color.RGBA{128, 128, 0, 255}},
	{"Teal", color.RGBA{0, 128, 128, 255}},
	{"Purple", color.RGBA{128, 0, 128, 255}},
	{"Orange", color.RGBA{255, 165, 0, 255}},
	{"Gray", color.RGBA{128, 128, 128, 255}},
}

// Palette returns a copy of the toolbar swatches.
func Palette() []PaletteColor {
	out := make([]PaletteColor, len(palette))
	copy(out, palette)
	return out
}

// BrushSizes are the quick-pick diameters offered by the toolbar.
var BrushSizes = []int{1, 3, 5, 10, 20, 40}

// ParseColor accepts CSS colour names, palette names, #RRGGBB and #RRGGBBAA.
// The alpha component is parsed but dropped by Settings.Normalize.
func ParseColor(s string) (color.RGBA, error) {
	spec := strings.ToLower(strings.TrimSpace(s))
	if spec == "" {
		return color.RGBA{}, fmt.Errorf("color cannot be empty")
	}
	if c, ok := colornames.Map[spec]; ok {
		return c, nil
	}
	for _, entry := range palette {
		if strings.EqualFold(entry.Name, spec) {
			return entry.Color, nil
		}
	}
	if !strings.HasPrefix(spec, "#") || (len(spec) != 7 && len(spec) != 9) {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	var comp [4]uint8
	comp[3] = 255
	for i := 0; i*2+1 < len(spec); i++ {
		v, err := strconv.ParseUint(spec[1+i*2:3+i*2], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid color %q", s)
		}
		comp[i] = uint8(v)
	}
	return color.RGBA{comp[0], comp[1], comp[2], comp[3]}, nil
}

// FormatColor renders c as #RRGGBB.
func FormatColor(c color.RGBA) string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}
