package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/example/inkwell/internal/config"
	"github.com/example/inkwell/internal/notify"
	"github.com/example/inkwell/internal/pad"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs         *flag.FlagSet
	program    string
	notifier   *notify.Notifier
	config     *config.Config
	logger     *log.Logger
	configPath string
	verbose    bool
	saveAlerts bool
	copyAlerts bool
}

func (r *root) Program() string {
	return r.program
}

func (r *root) subcommand(name string) *root {
	program := strings.TrimSpace(strings.Join([]string{r.program, name}, " "))
	return &root{
		program:    program,
		notifier:   r.notifier,
		config:     r.config,
		logger:     r.logger,
		configPath: r.configPath,
		verbose:    r.verbose,
		saveAlerts: r.saveAlerts,
		copyAlerts: r.copyAlerts,
	}
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

// newLogger creates a logger with short timestamps at the given level.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "inkwell",
	})
}

func newRoot() *root {
	logger := newLogger(os.Stderr, log.InfoLevel)
	cfg, err := loadConfig(configPathOverride)
	if err != nil {
		logger.Warn("failed to load config", "err", err)
		cfg = config.New()
	}

	r := &root{
		fs:       flag.NewFlagSet("inkwell", flag.ExitOnError),
		program:  "inkwell",
		notifier: notify.New(notify.LoadPreferences()),
		config:   cfg,
		logger:   logger,
	}
	r.fs.BoolVar(&r.verbose, "v", false, "enable debug logging")
	r.fs.StringVar(&r.configPath, "config", "", "configuration file to load instead of the default search path")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving a drawing")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.Usage = usageFunc(r)
	return r
}

// loadConfig reads the configuration file and applies INKWELL_* overrides.
func loadConfig(override string) (*config.Config, error) {
	cfg, err := config.NewLoader(version, override).Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.verbose {
		r.logger.SetLevel(log.DebugLevel)
	}
	pad.SetLogger(slog.New(r.logger))

	if r.configPath != "" {
		cfg, err := loadConfig(r.configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", r.configPath, err)
		}
		r.config = cfg
		set := map[string]bool{}
		r.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
		if !set["notify-save"] {
			r.saveAlerts = cfg.Notify.Save
		}
		if !set["notify-copy"] {
			r.copyAlerts = cfg.Notify.Copy
		}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "pad":
		cmd, err = parsePadCmd(subArgs, r)
	case "render":
		cmd, err = parseRenderCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{root: r, out: os.Stdout}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	start := time.Now()
	if runErr := cmd.Run(); runErr != nil {
		return runErr
	}
	r.logger.Debug("done", "command", cmdName, "elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		r.logger.Error(err)
		os.Exit(1)
	}
}
