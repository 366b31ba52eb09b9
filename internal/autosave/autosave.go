// Package autosave periodically writes the encoded canvas to a local cache
// file so an interrupted session can be resumed.
package autosave

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/example/sketchpad/internal/raster"
)

// DefaultInterval is used when no interval is configured.
const DefaultInterval = 30 * time.Second

// Cache is a single cached image file.
type Cache struct {
	Path string
}

// DefaultPath returns autosave.png under the user cache directory.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sketchpad", "autosave.png"), nil
}

// Write replaces the cached image. The old file is only replaced once the
// new data is fully on disk.
func (c *Cache) Write(data []byte) error {
	if len(data) == 0 {
		return errors.New("autosave: refusing to cache empty image")
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return fmt.Errorf("autosave: %w", err)
	}
	tmp := c.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("autosave: %w", err)
	}
	if err := os.Rename(tmp, c.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("autosave: %w", err)
	}
	return nil
}

// Read returns the cached image data. A missing cache reports an error
// matching os.ErrNotExist.
func (c *Cache) Read() ([]byte, error) {
	return os.ReadFile(c.Path)
}

// Clear removes the cached image, if any.
func (c *Cache) Clear() error {
	if err := os.Remove(c.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Exporter is the part of the editor the saver samples.
type Exporter interface {
	ExportImage(raster.Format) []byte
}

// Saver samples an Exporter on a schedule and caches changed images.
type Saver struct {
	cache    *Cache
	src      Exporter
	format   raster.Format
	interval time.Duration

	mu      sync.Mutex
	cron    *cron.Cron
	last    [sha256.Size]byte
	hasLast bool
}

// NewSaver returns a stopped saver. Intervals under one second are raised to
// one second.
func NewSaver(cache *Cache, src Exporter, format raster.Format, interval time.Duration) *Saver {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if interval < time.Second {
		interval = time.Second
	}
	return &Saver{cache: cache, src: src, format: format, interval: interval}
}

func (s *Saver) Interval() time.Duration { return s.interval }

// SaveNow caches the current image. It reports whether a file was written;
// unchanged images and failed exports are skipped.
func (s *Saver) SaveNow() (bool, error) {
	data := s.src.ExportImage(s.format)
	if len(data) == 0 {
		return false, nil
	}
	sum := sha256.Sum256(data)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasLast && sum == s.last {
		return false, nil
	}
	if err := s.cache.Write(data); err != nil {
		return false, err
	}
	s.last = sum
	s.hasLast = true
	return true, nil
}

// Start schedules SaveNow every interval. Calling Start twice is a no-op.
func (s *Saver) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc("@every "+s.interval.String(), s.tick); err != nil {
		return fmt.Errorf("autosave: schedule: %w", err)
	}
	c.Start()
	s.cron = c
	return nil
}

func (s *Saver) tick() {
	if _, err := s.SaveNow(); err != nil {
		log.Printf("autosave: %v", err)
	}
}

// Stop cancels the schedule and waits for a running save, bounded by ctx.
func (s *Saver) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
}
