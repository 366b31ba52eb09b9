// Package config reads and writes the sketchpad rc file.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/sketchpad/internal/theme"
)

// Notify holds notification settings.
type Notify struct {
	Save bool
	Copy bool
	Load bool // load failures
}

// Autosave controls the periodic local cache.
type Autosave struct {
	Enabled  bool
	Interval time.Duration
	Path     string // empty means the user cache directory
}

// Config holds the application configuration. Zero numeric fields mean
// "use the built-in default".
type Config struct {
	Theme       string
	SaveDir     string
	Width       int
	Height      int
	MaxHistory  int
	Format      string
	JPEGQuality int
	Autosave    Autosave
	Notify      Notify
	Themes      map[string]*theme.Theme
}

// New creates a new Config with defaults.
func New() *Config {
	return &Config{
		Theme: "", // Default to empty to allow fallback to Env/Default
		Autosave: Autosave{
			Enabled:  true,
			Interval: 30 * time.Second,
		},
		Notify: Notify{
			Save: false,
			Copy: false,
			Load: true,
		},
		Themes: make(map[string]*theme.Theme),
	}
}

// String implements fmt.Stringer and returns the configuration in RC format.
func (c *Config) String() string {
	var sb strings.Builder

	// Root section
	if c.Theme != "" {
		fmt.Fprintf(&sb, "theme = %s\n", c.Theme)
	}
	if c.SaveDir != "" {
		fmt.Fprintf(&sb, "save_dir = %s\n", c.SaveDir)
	}
	writeInt(&sb, "width", c.Width)
	writeInt(&sb, "height", c.Height)
	writeInt(&sb, "max_history", c.MaxHistory)
	if c.Format != "" {
		fmt.Fprintf(&sb, "format = %s\n", c.Format)
	}
	writeInt(&sb, "jpeg_quality", c.JPEGQuality)
	sb.WriteString("\n")

	sb.WriteString("[autosave]\n")
	fmt.Fprintf(&sb, "enabled = %v\n", c.Autosave.Enabled)
	if c.Autosave.Interval > 0 {
		fmt.Fprintf(&sb, "interval = %s\n", c.Autosave.Interval)
	}
	if c.Autosave.Path != "" {
		fmt.Fprintf(&sb, "path = %s\n", c.Autosave.Path)
	}
	sb.WriteString("\n")

	sb.WriteString("[notify]\n")
	fmt.Fprintf(&sb, "save = %v\n", c.Notify.Save)
	fmt.Fprintf(&sb, "copy = %v\n", c.Notify.Copy)
	fmt.Fprintf(&sb, "load = %v\n", c.Notify.Load)
	sb.WriteString("\n")

	// Sort keys for deterministic output
	var themeNames []string
	for name := range c.Themes {
		themeNames = append(themeNames, name)
	}
	sort.Strings(themeNames)

	for _, name := range themeNames {
		t := c.Themes[name]
		fmt.Fprintf(&sb, "[theme.%s]\n", name)
		fmt.Fprintf(&sb, "Name: %s\n", t.Name)
		for _, f := range t.Fields() {
			fmt.Fprintf(&sb, "%s: %s\n", f[0], f[1])
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeInt(sb *strings.Builder, key string, v int) {
	if v != 0 {
		fmt.Fprintf(sb, "%s = %d\n", key, v)
	}
}
