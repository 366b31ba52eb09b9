package appstate

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/mobile/event/key"

	"github.com/example/sketchpad/internal/theme"
	"github.com/example/sketchpad/internal/tool"
)

func TestLayoutHit(t *testing.T) {
	l := newLayout(1120, 792)
	require.Len(t, l.tools, len(tool.Tools()))
	require.Len(t, l.swatches, len(tool.Palette()))
	require.Len(t, l.sizes, len(tool.BrushSizes))

	assert.Equal(t, image.Rect(96, 0, 1120, 768), l.viewport)
	assert.Equal(t, image.Pt(96, 0), l.origin())

	cases := []struct {
		name string
		p    image.Point
		want target
	}{
		{"first tool", image.Pt(10, 5), target{targetTool, 0}},
		{"last tool", image.Pt(10, 191), target{targetTool, 7}},
		{"first swatch", image.Pt(5, 200), target{targetSwatch, 0}},
		{"second swatch", image.Pt(23, 197), target{targetSwatch, 1}},
		{"gap between swatch rows", image.Pt(5, 213), noTarget},
		{"first size", image.Pt(50, 280), target{targetSize, 0}},
		{"primary", image.Pt(10, 380), target{targetPrimary, -1}},
		{"secondary", image.Pt(50, 380), target{targetSecondary, -1}},
		{"viewport", image.Pt(500, 300), target{targetViewport, -1}},
		{"status", image.Pt(500, 780), target{targetStatus, -1}},
		{"outside", image.Pt(2000, 5), noTarget},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, l.hit(tc.p))
		})
	}
}

func TestLookupKey(t *testing.T) {
	km := defaultKeymap()
	cases := []struct {
		name string
		ev   key.Event
		want string
	}{
		{"ctrl z", key.Event{Rune: 'z', Code: key.CodeZ, Modifiers: key.ModControl}, actionUndo},
		{"ctrl z without rune", key.Event{Rune: -1, Code: key.CodeZ, Modifiers: key.ModControl}, actionUndo},
		{"ctrl y", key.Event{Rune: 'y', Code: key.CodeY, Modifiers: key.ModControl}, actionRedo},
		{"upper case tool", key.Event{Rune: 'B', Code: key.CodeB, Modifiers: key.ModShift}, "tool:brush"},
		{"ellipse", key.Event{Rune: 'o', Code: key.CodeO}, "tool:ellipse"},
		{"shifted plus", key.Event{Rune: '+', Code: key.CodeEqualSign, Modifiers: key.ModShift}, actionZoomIn},
		{"keypad minus", key.Event{Rune: -1, Code: key.CodeKeypadHyphenMinus}, actionZoomOut},
		{"brackets", key.Event{Rune: ']', Code: key.CodeRightSquareBracket}, actionBigger},
		{"quit", key.Event{Rune: 'q', Code: key.CodeQ}, actionQuit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := lookupKey(km, tc.ev)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}

	_, ok := lookupKey(km, key.Event{Rune: 'z', Code: key.CodeZ})
	assert.False(t, ok, "plain z is unbound")
	_, ok = lookupKey(km, key.Event{Rune: 'q', Code: key.CodeQ, Modifiers: key.ModControl})
	assert.False(t, ok, "ctrl q is unbound")
}

func TestEveryToolHasAShortcut(t *testing.T) {
	km := defaultKeymap()
	for _, tl := range tool.Tools() {
		r, ok := toolKeys[tl]
		require.True(t, ok, "tool %v", tl)
		action, ok := km[KeyShortcut{Rune: r}]
		require.True(t, ok)
		got, err := tool.ParseTool(action[len(toolPrefix):])
		require.NoError(t, err)
		assert.Equal(t, tl, got)
	}
}

func TestStepBrushSize(t *testing.T) {
	cases := []struct{ cur, dir, want int }{
		{5, -1, 3},
		{5, 1, 10},
		{7, 1, 10},
		{7, -1, 5},
		{1, -1, tool.MinSize},
		{40, 1, tool.MaxSize},
		{100, -1, 40},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, stepBrushSize(tc.cur, tc.dir), "step %d by %d", tc.cur, tc.dir)
	}
}

func TestCacheButton(t *testing.T) {
	th := theme.Default()
	got := tool.Tool(-1)
	cb := &CacheButton{Button: &ToolButton{label: "F:Fill", tool: tool.Fill, theme: th, onSelect: func(t tool.Tool) { got = t }}}
	cb.SetRect(image.Rect(0, 0, toolbarWidth, buttonHeight))

	dst := image.NewRGBA(image.Rect(0, 0, toolbarWidth, buttonHeight*2))
	cb.Draw(dst, StatePressed)
	assert.Equal(t, th.ButtonBackgroundPress, dst.RGBAAt(90, 2))
	assert.NotNil(t, cb.cache[StatePressed])
	assert.Nil(t, cb.cache[StateDefault])

	cb.SetRect(image.Rect(0, buttonHeight, toolbarWidth, buttonHeight*2))
	assert.Nil(t, cb.cache[StatePressed], "moving the button drops the cache")
	cb.Draw(dst, StateDefault)
	assert.Equal(t, th.ButtonBackground, dst.RGBAAt(90, buttonHeight+2))

	cb.Activate()
	assert.Equal(t, tool.Fill, got)
}

func TestStatusShortcutsDoNotOverlap(t *testing.T) {
	l := newLayout(1120, 792)
	scs := statusShortcuts(theme.Default(), l, 1, nil)
	require.NotEmpty(t, scs)
	for i, sc := range scs {
		assert.True(t, sc.Rect().In(l.status), "%s inside status bar", sc.label)
		if i > 0 {
			assert.False(t, sc.Rect().Overlaps(scs[i-1].Rect()), "%s overlaps %s", sc.label, scs[i-1].label)
		}
	}
	assert.Equal(t, 0, shortcutAt(scs, scs[0].Rect().Min))
	assert.Equal(t, -1, shortcutAt(scs, image.Pt(-5, -5)))
}
