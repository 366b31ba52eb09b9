package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/sketchpad/internal/config"
	"github.com/example/sketchpad/internal/editor"
	"github.com/example/sketchpad/internal/notify"
	"github.com/example/sketchpad/internal/raster"
	"github.com/example/sketchpad/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs          *flag.FlagSet
	program     string
	notifier    *notify.Notifier
	config      *config.Config
	saveAlerts  bool
	copyAlerts  bool
	loadAlerts  bool
	themeName   string
	activeTheme *theme.Theme
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
}

func (r *root) Program() string {
	return r.program
}

func (r *root) subcommand(name string) *root {
	program := strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	return &root{
		program:     program,
		notifier:    r.notifier,
		config:      r.config,
		saveAlerts:  r.saveAlerts,
		copyAlerts:  r.copyAlerts,
		loadAlerts:  r.loadAlerts,
		themeName:   r.themeName,
		activeTheme: r.activeTheme,
		stdin:       r.stdin,
		stdout:      r.stdout,
		stderr:      r.stderr,
	}
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	prefs := notify.LoadPreferences()
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:       flag.NewFlagSet("sketchpad", flag.ExitOnError),
		program:  "sketchpad",
		notifier: notify.New(prefs),
		config:   cfg,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving an image")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.BoolVar(&r.loadAlerts, "notify-load", cfg.Notify.Load, "show a desktop notification when an image fails to load")

	// Precedence: CLI > Env > Config > Default
	r.fs.StringVar(&r.themeName, "theme", "", "color theme to use (default, dark, high_contrast)")
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
		r.notifier.Enable(notify.EventLoadFailed, r.loadAlerts)
	}
	r.activeTheme = r.resolveTheme()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "edit":
		cmd, err = parseEditCmd(subArgs, r)
	case "draw":
		cmd, err = parseDrawCmd(subArgs, r)
	case "session":
		cmd, err = parseSessionCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

// resolveTheme picks the chrome theme: -theme, then SKETCHPAD_THEME, then
// the config file. Themes defined in the config shadow the built-in ones.
func (r *root) resolveTheme() *theme.Theme {
	name := r.themeName
	if name == "" {
		name = os.Getenv("SKETCHPAD_THEME")
	}
	if name == "" && r.config != nil {
		name = r.config.Theme
	}
	if r.config != nil {
		if t, ok := r.config.Themes[name]; ok {
			return t
		}
	}
	t, err := theme.NewLoader().Load(name)
	if err != nil {
		if name != "" && name != "default" {
			fmt.Fprintf(r.errOut(), "warning: failed to load theme '%s': %v. using default.\n", name, err)
		}
		return theme.Default()
	}
	return t
}

// editorOptions turns the config file's canvas settings into editor options.
// Zero width or height keeps the editor default.
func (r *root) editorOptions(width, height int) []editor.Option {
	var opts []editor.Option
	if width > 0 && height > 0 {
		opts = append(opts, editor.WithSize(width, height))
	}
	if r.config != nil {
		if r.config.MaxHistory > 0 {
			opts = append(opts, editor.WithMaxHistory(r.config.MaxHistory))
		}
		if r.config.JPEGQuality > 0 {
			opts = append(opts, editor.WithJPEGQuality(r.config.JPEGQuality))
		}
	}
	return opts
}

// outputFormat resolves an explicit format name, then the output file's
// extension, then the config file.
func (r *root) outputFormat(name, output string) (raster.Format, error) {
	if name != "" {
		return raster.ParseFormat(name)
	}
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), "."); ext != "" {
		if f, err := raster.ParseFormat(ext); err == nil {
			return f, nil
		}
	}
	if r.config != nil && r.config.Format != "" {
		return raster.ParseFormat(r.config.Format)
	}
	return raster.FormatPNG, nil
}

func (r *root) out() io.Writer {
	if r == nil || r.stdout == nil {
		return os.Stdout
	}
	return r.stdout
}

func (r *root) errOut() io.Writer {
	if r == nil || r.stderr == nil {
		return os.Stderr
	}
	return r.stderr
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (r *root) notifySave(path string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Save(path)
}

func (r *root) notifyCopy(detail string, preview []byte) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Copy(detail, preview)
}
