package config

import (
	"os"
	"path/filepath"
)

// EnvPath names an environment variable that points at a config file. It is
// consulted after the build-time override.
const EnvPath = "SKETCHPAD_CONFIG"

// Loader finds and reads the rc file.
type Loader struct {
	Version      string // "dev" builds also look for ./.sketchpadrc
	OverridePath string // set at build time with -ldflags
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load reads the first config file found by GetConfigPath. No file at all
// yields the defaults from New.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		return New(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

func configDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "sketchpad")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "sketchpad")
}

// DefaultPath is where "config save" writes when no file exists yet.
func DefaultPath() string {
	return filepath.Join(configDir(), "config.rc")
}

// Save writes cfg to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(cfg.String()), 0o644)
}

// candidates lists config locations in priority order.
func (l *Loader) candidates() []string {
	var paths []string
	if l.OverridePath != "" {
		paths = append(paths, l.OverridePath)
	}
	if p := os.Getenv(EnvPath); p != "" {
		paths = append(paths, p)
	}
	if l.Version == "dev" {
		if wd, err := os.Getwd(); err == nil {
			paths = append(paths, filepath.Join(wd, ".sketchpadrc"))
		}
	}
	return append(paths, DefaultPath(), filepath.Join(configDir(), "sketchpad.rc"))
}

// GetConfigPath returns the first existing config file, or "" when there is
// none.
func (l *Loader) GetConfigPath() string {
	for _, p := range l.candidates() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
