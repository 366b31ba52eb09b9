package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/example/sketchpad/internal/appstate"
	"github.com/example/sketchpad/internal/autosave"
	"github.com/example/sketchpad/internal/editor"
	"github.com/example/sketchpad/internal/raster"
)

// autosaveStopTimeout bounds how long closing the window waits for a
// scheduled save that is already running.
const autosaveStopTimeout = 2 * time.Second

type editCmd struct {
	*root
	fs       *flag.FlagSet
	width    int
	height   int
	output   string
	format   string
	load     string
	resume   bool
	autosave bool
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	c := &editCmd{root: r.subcommand("edit"), fs: fs}
	fs.Usage = usageFunc(c)
	cfg := c.config
	fs.IntVar(&c.width, "width", orDefault(cfg.Width, raster.DefaultWidth), "canvas width in pixels")
	fs.IntVar(&c.height, "height", orDefault(cfg.Height, raster.DefaultHeight), "canvas height in pixels")
	fs.StringVar(&c.output, "output", "", "file written by ^S (default sketch.<format> in save_dir)")
	fs.StringVar(&c.format, "format", cfg.Format, "save format: png or jpeg")
	fs.StringVar(&c.load, "load", "", "image to open: path, http(s) URL, data URL or clipboard")
	fs.BoolVar(&c.resume, "resume", false, "reopen the autosaved canvas")
	fs.BoolVar(&c.autosave, "autosave", cfg.Autosave.Enabled, "periodically cache the canvas for -resume")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: c}
	}
	if c.width <= 0 || c.height <= 0 {
		return nil, fmt.Errorf("canvas size must be positive, got %dx%d", c.width, c.height)
	}
	if c.resume && c.load != "" {
		return nil, errors.New("-resume and -load cannot be combined")
	}
	return c, nil
}

func (c *editCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func (c *editCmd) Run() error {
	format, err := c.outputFormat(c.format, c.output)
	if err != nil {
		return err
	}
	output := c.output
	if output == "" && c.config.SaveDir != "" {
		output = filepath.Join(c.config.SaveDir, "sketch"+format.Extension())
	}

	var app *appstate.AppState
	opts := append(c.editorOptions(c.width, c.height), editor.WithOnChange(func() { app.NotifyImageChanged() }))
	ed := editor.New(opts...)
	if err := ed.Mount(); err != nil {
		return fmt.Errorf("create canvas: %w", err)
	}

	cache, err := c.cache()
	if err != nil && (c.resume || c.autosave) {
		log.Printf("autosave: %v", err)
	}

	var saver *autosave.Saver
	if cache != nil && c.autosave {
		saver = autosave.NewSaver(cache, ed, raster.FormatPNG, c.config.Autosave.Interval)
		if err := saver.Start(); err != nil {
			log.Printf("%v", err)
			saver = nil
		}
	}

	app = appstate.New(
		appstate.WithEditor(ed),
		appstate.WithTheme(c.activeTheme),
		appstate.WithOutput(output),
		appstate.WithFormat(format),
		appstate.WithNotifier(c.notifier),
		appstate.WithOnClose(func() { stopAutosave(saver) }),
	)

	switch {
	case c.resume:
		if cache == nil {
			return errors.New("no autosave location available")
		}
		data, err := cache.Read()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return errors.New("nothing to resume")
			}
			return fmt.Errorf("read autosave: %w", err)
		}
		app.Load(context.Background(), editor.Bytes("autosave", data))
	case c.load != "":
		src, err := editor.ParseSource(c.load)
		if err != nil {
			return err
		}
		app.Load(context.Background(), src)
	}

	app.Run()
	return nil
}

func (c *editCmd) cache() (*autosave.Cache, error) {
	path := c.config.Autosave.Path
	if path == "" {
		var err error
		if path, err = autosave.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return &autosave.Cache{Path: path}, nil
}

// stopAutosave cancels the schedule and caches the final canvas.
func stopAutosave(s *autosave.Saver) {
	if s == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), autosaveStopTimeout)
	defer cancel()
	s.Stop(ctx)
	if _, err := s.SaveNow(); err != nil {
		log.Printf("%v", err)
	}
}
