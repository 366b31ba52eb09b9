package raster

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/sketchpad/internal/geom"
)

var (
	black = color.RGBA{0, 0, 0, 255}
	red   = color.RGBA{255, 0, 0, 255}
)

func newBlank(t *testing.T, w, h int) *Surface {
	t.Helper()
	s, err := New(w, h)
	require.NoError(t, err)
	s.InitBlank()
	return s
}

func dark(c color.RGBA) bool {
	return c.R < 64 && c.G < 64 && c.B < 64 && c.A == 255
}

func TestNewRejectsInvalidSize(t *testing.T) {
	_, err := New(0, 10)
	require.Error(t, err)
	_, err = New(10, -1)
	require.Error(t, err)
}

func TestInitBlankIsWhite(t *testing.T) {
	s := newBlank(t, 8, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			require.Equal(t, White, s.At(x, y))
		}
	}
}

func TestEncodeBeforeInit(t *testing.T) {
	s, err := New(4, 4)
	require.NoError(t, err)
	_, err = s.EncodeBytes(FormatPNG)
	require.ErrorIs(t, err, ErrEncodeUnavailable)

	var nilSurface *Surface
	assert.False(t, nilSurface.Ready())
}

func TestStrokeSegmentAndRestore(t *testing.T) {
	s := newBlank(t, DefaultWidth, DefaultHeight)
	base := s.Snapshot()

	s.StrokeSegment(geom.Pt(10, 10), geom.Pt(10, 50), black, 5)
	assert.True(t, dark(s.At(10, 30)), "stroke body, got %v", s.At(10, 30))
	assert.True(t, dark(s.At(10, 9)), "round cap extends past the start point")
	assert.Equal(t, White, s.At(20, 30))
	assert.False(t, s.Snapshot().Equal(base))

	require.NoError(t, s.Restore(base))
	assert.True(t, s.Snapshot().Equal(base))
}

func TestStrokeZeroLengthDrawsDot(t *testing.T) {
	s := newBlank(t, 20, 20)
	s.StrokeSegment(geom.Pt(10, 10), geom.Pt(10, 10), black, 6)
	assert.True(t, dark(s.At(10, 10)))
	assert.Equal(t, White, s.At(0, 0))
}

func TestStrokeOffCanvasIsClipped(t *testing.T) {
	s := newBlank(t, 20, 20)
	s.StrokeSegment(geom.Pt(-50, 10), geom.Pt(70, 10), black, 3)
	assert.True(t, dark(s.At(0, 10)))
	assert.True(t, dark(s.At(19, 10)))
}

func TestFloodFillSameColourIsNoop(t *testing.T) {
	s := newBlank(t, 32, 32)
	s.StrokeSegment(geom.Pt(0, 16), geom.Pt(32, 16), black, 4)
	before := s.Snapshot()

	assert.Zero(t, s.FloodFill(image.Pt(5, 5), White))
	assert.True(t, s.Snapshot().Equal(before))
}

func TestFloodFillOutOfBoundsIsNoop(t *testing.T) {
	s := newBlank(t, 8, 8)
	before := s.Snapshot()
	assert.Zero(t, s.FloodFill(image.Pt(-1, 3), red))
	assert.Zero(t, s.FloodFill(image.Pt(8, 0), red))
	assert.True(t, s.Snapshot().Equal(before))
}

func TestFloodFillWholeBuffer(t *testing.T) {
	s := newBlank(t, 10, 10)
	assert.Equal(t, 100, s.FloodFill(image.Pt(3, 7), red))
	assert.Equal(t, red, s.At(0, 0))
	assert.Equal(t, red, s.At(9, 9))
}

func TestFloodFillEnclosedRectangle(t *testing.T) {
	s := newBlank(t, DefaultWidth, DefaultHeight)
	s.DrawPreviewShape(ShapeRect, geom.Pt(100, 100), geom.Pt(200, 200), black, 3, nil)

	filled := s.FloodFill(image.Pt(150, 150), red)
	assert.Greater(t, filled, 90*90)
	assert.Less(t, filled, 100*100)

	assert.Equal(t, red, s.At(150, 150))
	assert.Equal(t, red, s.At(103, 150))
	assert.Equal(t, red, s.At(197, 197))

	for _, p := range []image.Point{{100, 150}, {200, 150}, {150, 100}, {150, 200}} {
		assert.True(t, dark(s.At(p.X, p.Y)), "outline at %v got %v", p, s.At(p.X, p.Y))
	}
	for _, p := range []image.Point{{50, 50}, {250, 150}, {150, 250}, {0, 0}, {1023, 767}} {
		assert.Equal(t, White, s.At(p.X, p.Y), "outside at %v", p)
	}
}

func TestFloodFillDoesNotCrossDiagonals(t *testing.T) {
	s := newBlank(t, 3, 3)
	// Black corners only touch each other diagonally.
	for _, p := range []image.Point{{0, 0}, {2, 0}, {0, 2}, {2, 2}} {
		s.img.SetRGBA(p.X, p.Y, black)
	}
	assert.Equal(t, 1, s.FloodFill(image.Pt(0, 0), red))
	assert.Equal(t, black, s.At(2, 2))
}

func TestPreviewReplacesPreviousFrame(t *testing.T) {
	s := newBlank(t, 100, 100)
	base := s.Snapshot()

	s.DrawPreviewShape(ShapeLine, geom.Pt(10, 10), geom.Pt(90, 10), black, 3, base)
	require.True(t, dark(s.At(50, 10)))

	s.DrawPreviewShape(ShapeLine, geom.Pt(10, 10), geom.Pt(10, 90), black, 3, base)
	assert.Equal(t, White, s.At(50, 10))
	assert.True(t, dark(s.At(10, 50)))
}

func TestPreviewEllipseIsCircleAroundAnchor(t *testing.T) {
	s := newBlank(t, 100, 100)
	s.DrawPreviewShape(ShapeEllipse, geom.Pt(50, 50), geom.Pt(70, 50), black, 3, nil)
	assert.True(t, dark(s.At(70, 50)))
	assert.True(t, dark(s.At(50, 30)))
	assert.True(t, dark(s.At(30, 50)))
	assert.Equal(t, White, s.At(50, 50))
}

func TestPreviewTriangle(t *testing.T) {
	s := newBlank(t, 100, 100)
	s.DrawPreviewShape(ShapeTriangle, geom.Pt(20, 20), geom.Pt(60, 60), black, 3, nil)
	assert.True(t, dark(s.At(40, 20)), "apex above the midpoint")
	assert.True(t, dark(s.At(40, 60)), "base at current.y")
	assert.True(t, dark(s.At(20, 60)))
	assert.Equal(t, White, s.At(40, 45))
	assert.Equal(t, White, s.At(20, 20))
}

func TestRestoreRejectsMismatchedSnapshot(t *testing.T) {
	a := newBlank(t, 4, 4)
	b := newBlank(t, 5, 4)
	b.FloodFill(image.Pt(0, 0), red)
	before := a.Snapshot()

	require.Error(t, a.Restore(b.Snapshot()))
	require.Error(t, a.Restore(nil))
	assert.True(t, a.Snapshot().Equal(before))
}

func TestPNGRoundTrip(t *testing.T) {
	s := newBlank(t, 64, 48)
	s.StrokeSegment(geom.Pt(5, 5), geom.Pt(60, 40), red, 7)
	data, err := s.EncodeBytes(FormatPNG)
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Width)
	assert.Equal(t, 48, cfg.Height)

	other := newBlank(t, 64, 48)
	require.NoError(t, other.Decode(bytes.NewReader(data)))
	assert.True(t, other.Snapshot().Equal(s.Snapshot()))
}

func TestJPEGEncode(t *testing.T) {
	s := newBlank(t, 32, 16)
	data, err := s.EncodeBytes(FormatJPEG)
	require.NoError(t, err)
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(32, 16), image.Pt(cfg.Width, cfg.Height))
}

func TestDecodeMalformedLeavesBuffer(t *testing.T) {
	s := newBlank(t, 16, 16)
	s.FloodFill(image.Pt(0, 0), red)
	before := s.Snapshot()

	err := s.Decode(strings.NewReader("definitely not an image"))
	require.Error(t, err)
	assert.True(t, s.Snapshot().Equal(before))
}

// pngHeader returns a PNG signature and IHDR chunk declaring a w×h 16-bit
// RGBA image, with no pixel data.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	chunk := make([]byte, 0, 17)
	chunk = append(chunk, "IHDR"...)
	chunk = binary.BigEndian.AppendUint32(chunk, w)
	chunk = binary.BigEndian.AppendUint32(chunk, h)
	chunk = append(chunk, 16, 6, 0, 0, 0)
	_ = binary.Write(&buf, binary.BigEndian, uint32(13))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestDecodeRejectsOversizedHeader(t *testing.T) {
	data := pngHeader(200000, 200000)
	_, err := DecodeConfig(data)
	require.ErrorIs(t, err, ErrImageTooLarge)

	_, err = DecodeImage(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrImageTooLarge)

	s := newBlank(t, 16, 16)
	before := s.Snapshot()
	require.ErrorIs(t, s.Decode(bytes.NewReader(data)), ErrImageTooLarge)
	assert.True(t, s.Snapshot().Equal(before))
}

func TestCheckDimensions(t *testing.T) {
	assert.NoError(t, CheckDimensions(8192, 8192))
	assert.ErrorIs(t, CheckDimensions(8193, 8192), ErrImageTooLarge)
	assert.Error(t, CheckDimensions(0, 10))
	assert.Error(t, CheckDimensions(10, -1))
}

func TestDecodeScalesToSurface(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		if i%4 == 0 || i%4 == 3 {
			src.Pix[i] = 255
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	s := newBlank(t, 8, 8)
	require.NoError(t, s.Decode(&buf))
	c := s.At(4, 4)
	assert.GreaterOrEqual(t, int(c.R), 250)
	assert.LessOrEqual(t, int(c.G), 5)
	assert.Equal(t, uint8(255), c.A)
}

func TestDecodeFlattensTransparency(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	s, err := New(4, 4)
	require.NoError(t, err)
	require.NoError(t, s.Decode(&buf))
	assert.True(t, s.Ready())
	assert.Equal(t, White, s.At(2, 2))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JPG")
	require.NoError(t, err)
	assert.Equal(t, FormatJPEG, f)
	assert.Equal(t, "image/jpeg", f.MIMEType())
	assert.Equal(t, ".jpg", f.Extension())

	f, err = ParseFormat("png")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)

	_, err = ParseFormat("gif")
	assert.Error(t, err)
}

func TestDataURL(t *testing.T) {
	assert.Equal(t, "", DataURL(nil, FormatPNG))
	assert.True(t, strings.HasPrefix(DataURL([]byte{1, 2, 3}, FormatJPEG), "data:image/jpeg;base64,"))
}
