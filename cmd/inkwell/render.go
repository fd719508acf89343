package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/example/inkwell/internal/clipboard"
	"github.com/example/inkwell/internal/config"
	"github.com/example/inkwell/internal/export"
	"github.com/example/inkwell/internal/pad"
	"github.com/example/inkwell/internal/render"
	"github.com/example/inkwell/internal/replay"
)

// writeClipboardFn publishes the rendered drawing; tests replace it.
var writeClipboardFn = clipboard.WriteImage

// renderCmd replays a script without a window and saves the result.
type renderCmd struct {
	*root
	fs      *flag.FlagSet
	cfg     *config.Config
	script  string
	output  string
	copy    bool
	dataURL bool
	stdout  io.Writer
}

func (c *renderCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseRenderCmd(args []string, r *root) (*renderCmd, error) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	c := &renderCmd{root: r.subcommand("render"), fs: fs, cfg: copyConfig(r.config), stdout: os.Stdout}
	bindCanvasFlags(fs, c.cfg)
	fs.StringVar(&c.output, "o", "drawing.png", "output file (.png, .jpg or .pdf); empty to skip saving")
	fs.BoolVar(&c.copy, "copy", false, "copy the drawing to the clipboard")
	fs.BoolVar(&c.dataURL, "data-url", false, "print the final export as a data URL")
	fs.Usage = usageFunc(c)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: c}
	}
	c.script = fs.Arg(0)
	return c, nil
}

func (c *renderCmd) Run() error {
	script, err := replay.Load(c.script)
	if err != nil {
		return fmt.Errorf("failed to load script: %w", err)
	}
	pc, err := c.cfg.PadConfig(1)
	if err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if pc.Fluid {
		c.logger.Warn("fluid canvas has no window to follow; using -width and -height")
		pc.Fluid = false
	}

	var (
		mu   sync.Mutex
		last export.Image
		seen bool
	)
	p, err := pad.New(pc, pad.WithOnDrawEnd(func(img export.Image) {
		mu.Lock()
		last, seen = img, true
		mu.Unlock()
	}))
	if err != nil {
		return err
	}
	defer p.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	stats, err := replay.Run(ctx, p, script)
	if err != nil {
		return fmt.Errorf("replay %s: %w", c.script, err)
	}
	c.logger.Info("replayed script", "steps", stats.Steps, "strokes", len(p.Strokes()))

	img := p.Image()
	if img == nil {
		return fmt.Errorf("no drawing surface")
	}
	if c.output != "" {
		if err := export.SaveFile(c.output, img, export.SheetOptions{Title: c.cfg.Export.Title}); err != nil {
			return fmt.Errorf("failed to save %s: %w", c.output, err)
		}
		c.logger.Info("saved drawing", "path", c.output)
		c.notifier.Save(c.output)
	}
	if c.copy {
		if err := writeClipboardFn(render.Flatten(img, color.White)); err != nil {
			if errors.Is(err, clipboard.ErrEmpty) {
				return fmt.Errorf("nothing to copy: %w", err)
			}
			return fmt.Errorf("failed to copy drawing: %w", err)
		}
		c.notifier.Copy("", img)
	}
	if c.dataURL {
		mu.Lock()
		out, ok := last, seen
		mu.Unlock()
		if !ok {
			c.logger.Warn("script produced no export")
		}
		fmt.Fprintln(c.stdout, out.DataURL)
	}
	return nil
}
