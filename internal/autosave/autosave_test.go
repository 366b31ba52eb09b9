package autosave

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/sketchpad/internal/raster"
)

type fakeExporter struct {
	mu    sync.Mutex
	data  []byte
	calls int
}

func (f *fakeExporter) ExportImage(raster.Format) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.data
}

func (f *fakeExporter) set(b []byte) {
	f.mu.Lock()
	f.data = b
	f.mu.Unlock()
}

func TestCacheWriteReadClear(t *testing.T) {
	c := &Cache{Path: filepath.Join(t.TempDir(), "nested", "autosave.png")}
	_, err := c.Read()
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, c.Write([]byte("one")))
	require.NoError(t, c.Write([]byte("two")))
	got, err := c.Read()
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
	_, err = os.Stat(c.Path + ".tmp")
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, c.Clear())
	require.NoError(t, c.Clear())
	_, err = c.Read()
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Error(t, c.Write(nil))
}

func TestSaveNowSkipsUnchanged(t *testing.T) {
	c := &Cache{Path: filepath.Join(t.TempDir(), "a.png")}
	src := &fakeExporter{}
	s := NewSaver(c, src, raster.FormatPNG, time.Minute)

	wrote, err := s.SaveNow()
	require.NoError(t, err)
	assert.False(t, wrote, "nothing exported yet")

	src.set([]byte("frame-1"))
	wrote, err = s.SaveNow()
	require.NoError(t, err)
	assert.True(t, wrote)

	wrote, err = s.SaveNow()
	require.NoError(t, err)
	assert.False(t, wrote)

	src.set([]byte("frame-2"))
	wrote, err = s.SaveNow()
	require.NoError(t, err)
	assert.True(t, wrote)
	got, err := c.Read()
	require.NoError(t, err)
	assert.Equal(t, "frame-2", string(got))
}

func TestNewSaverInterval(t *testing.T) {
	assert.Equal(t, DefaultInterval, NewSaver(&Cache{}, &fakeExporter{}, raster.FormatPNG, 0).Interval())
	assert.Equal(t, time.Second, NewSaver(&Cache{}, &fakeExporter{}, raster.FormatPNG, time.Millisecond).Interval())
}

func TestStartRunsOnSchedule(t *testing.T) {
	c := &Cache{Path: filepath.Join(t.TempDir(), "a.png")}
	src := &fakeExporter{data: []byte("frame")}
	s := NewSaver(c, src, raster.FormatPNG, time.Second)
	require.NoError(t, s.Start())
	require.NoError(t, s.Start())
	defer s.Stop(context.Background())

	require.Eventually(t, func() bool {
		data, err := c.Read()
		return err == nil && string(data) == "frame"
	}, 5*time.Second, 50*time.Millisecond)
}

func TestStopWithoutStart(t *testing.T) {
	s := NewSaver(&Cache{}, &fakeExporter{}, raster.FormatPNG, time.Second)
	s.Stop(context.Background())
}
