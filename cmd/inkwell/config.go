package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/example/inkwell/internal/config"
)

type configCmd struct {
	*root
	fs     *flag.FlagSet
	output string
	stdout io.Writer
}

func (c *configCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseConfigCmd(args []string, r *root) (*configCmd, error) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	c := &configCmd{root: r.subcommand("config"), fs: fs, stdout: os.Stdout}
	fs.StringVar(&c.output, "o", "", "file written by save; defaults to the loaded file or the user config path")
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *configCmd) Run() error {
	args := c.fs.Args()
	if len(args) < 1 {
		return &UsageError{of: c}
	}

	switch args[0] {
	case "print":
		fmt.Fprint(c.stdout, c.root.config.String())
		return nil
	case "path":
		fmt.Fprintln(c.stdout, c.savePath())
		return nil
	case "save":
		return c.runSave()
	default:
		return fmt.Errorf("unknown config command: %s", args[0])
	}
}

// savePath is the file save writes: -o, the file that was loaded, or the
// default user path.
func (c *configCmd) savePath() string {
	if c.output != "" {
		return c.output
	}
	override := c.configPath
	if override == "" {
		override = configPathOverride
	}
	if path := config.NewLoader(version, override).GetConfigPath(); path != "" {
		return path
	}
	return config.DefaultPath()
}

func (c *configCmd) runSave() error {
	path := c.savePath()
	if path == "" {
		return fmt.Errorf("no config path available")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(c.root.config.String()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	c.logger.Info("configuration saved", "path", path)
	return nil
}
