package notify

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/sketchpad/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
	iconExisted bool
}

func recorder(n *Notifier) *[]sent {
	var out []sent
	n.send = func(title, body string, opts platform.Options) error {
		_, err := os.Stat(opts.IconPath)
		out = append(out, sent{title: title, body: body, opts: opts, iconExisted: opts.IconPath != "" && err == nil})
		return nil
	}
	return &out
}

func TestDisabledEventsAreSilent(t *testing.T) {
	n := New(DefaultPreferences())
	got := recorder(n)
	n.Save("a.png")
	n.Copy("", nil)
	n.LoadFailed("x", errors.New("boom"))
	assert.Empty(t, *got)

	var nilNotifier *Notifier
	nilNotifier.Save("a.png")
	nilNotifier.Enable(EventSave, true)
}

func TestSaveUsesFileAsIcon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, os.WriteFile(path, []byte("png"), 0o644))

	n := New(DefaultPreferences())
	n.Enable(EventSave, true)
	got := recorder(n)
	n.Save(path)

	require.Len(t, *got, 1)
	assert.Equal(t, "Sketchpad", (*got)[0].title)
	assert.Equal(t, "Saved "+path, (*got)[0].body)
	assert.Equal(t, path, (*got)[0].opts.IconPath)
}

func TestCopyPreviewIsTemporary(t *testing.T) {
	n := New(DefaultPreferences())
	n.Enable(EventCopy, true)
	got := recorder(n)
	n.Copy("", []byte("png"))

	require.Len(t, *got, 1)
	assert.Equal(t, "Copied image to clipboard", (*got)[0].body)
	assert.True(t, (*got)[0].iconExisted)
	_, err := os.Stat((*got)[0].opts.IconPath)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadFailed(t *testing.T) {
	n := New(DefaultPreferences())
	n.Enable(EventLoadFailed, true)
	got := recorder(n)
	n.LoadFailed("https://example.com/a.png", errors.New("404"))
	require.Len(t, *got, 1)
	assert.Equal(t, "Could not load https://example.com/a.png: 404", (*got)[0].body)
	assert.Equal(t, platform.UrgencyCritical, (*got)[0].opts.Urgency)
}

func TestLoadPreferencesFromEnv(t *testing.T) {
	t.Setenv("SKETCHPAD_NOTIFY_TITLE", "Doodles")
	t.Setenv("SKETCHPAD_NOTIFY_SAVE_TEXT", "Stored %s")
	prefs := LoadPreferences()
	assert.Equal(t, "Doodles", prefs.Title)
	assert.Equal(t, "Stored %s", prefs.Events[EventSave].Template)
	assert.Equal(t, DefaultPreferences().Events[EventCopy], prefs.Events[EventCopy])
}
