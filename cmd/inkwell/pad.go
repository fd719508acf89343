package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/example/inkwell/internal/appstate"
	"github.com/example/inkwell/internal/config"
	"github.com/example/inkwell/internal/display"
	"github.com/example/inkwell/internal/export"
)

// padCmd opens the practice window.
type padCmd struct {
	*root
	fs      *flag.FlagSet
	cfg     *config.Config
	output  string
	dataURL bool
	stdout  io.Writer
}

func (p *padCmd) FlagSet() *flag.FlagSet {
	return p.fs
}

func parsePadCmd(args []string, r *root) (*padCmd, error) {
	fs := flag.NewFlagSet("pad", flag.ExitOnError)
	p := &padCmd{root: r.subcommand("pad"), fs: fs, cfg: copyConfig(r.config), stdout: os.Stdout}
	bindCanvasFlags(fs, p.cfg)
	fs.StringVar(&p.output, "output", "", "file written by Ctrl+S (.png, .jpg or .pdf); defaults to a timestamped PNG in the save directory")
	fs.BoolVar(&p.dataURL, "data-url", false, "print every export to stdout, one data URL per line")
	fs.Usage = usageFunc(p)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: p}
	}
	return p, nil
}

func (p *padCmd) Run() error {
	scale, err := display.Scale()
	if err != nil {
		p.logger.Debug("display scale unavailable", "err", err)
	}
	pc, err := p.cfg.PadConfig(scale)
	if err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	p.logger.Debug("opening pad", "width", pc.Width, "height", pc.Height, "fluid", pc.Fluid, "scale", pc.DeviceScale)

	opts := []appstate.Option{
		appstate.WithConfig(pc),
		appstate.WithNotifier(p.notifier),
		appstate.WithSaveDir(p.cfg.Export.SaveDir),
		appstate.WithOutput(p.output),
	}
	if t := p.cfg.Export.Title; t != "" {
		opts = append(opts, appstate.WithTitle(t))
	}
	if p.dataURL {
		opts = append(opts, appstate.WithOnExport(func(img export.Image) {
			fmt.Fprintln(p.stdout, img.DataURL)
		}))
	}
	return appstate.New(opts...).Run()
}
