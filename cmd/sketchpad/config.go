package main

import (
	"flag"
	"fmt"

	"github.com/example/sketchpad/internal/config"
)

type configCmd struct {
	*root
	fs     *flag.FlagSet
	action string
	path   string
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	c := &configCmd{root: r.subcommand("config"), fs: fs}
	fs.Usage = usageFunc(c)
	fs.StringVar(&c.path, "path", "", "file written by save (default: the loaded config file)")
	if len(args) < 1 {
		return nil, &UsageError{of: c}
	}
	c.action = args[0]
	if err := fs.Parse(args[1:]); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *configCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func (c *configCmd) Run() error {
	switch c.action {
	case "print":
		return c.runPrint()
	case "save":
		return c.runSave()
	default:
		return fmt.Errorf("unknown config command: %s", c.action)
	}
}

func (c *configCmd) runPrint() error {
	_, err := fmt.Fprint(c.out(), c.config.String())
	return err
}

func (c *configCmd) runSave() error {
	path := c.path
	if path == "" {
		path = config.NewLoader(version, configPathOverride).GetConfigPath()
	}
	if path == "" {
		path = config.DefaultPath()
	}
	if err := config.Save(c.config, path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	fmt.Fprintf(c.errOut(), "Configuration saved to %s\n", path)
	return nil
}
