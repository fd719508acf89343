package main

import (
	"flag"

	"github.com/example/inkwell/internal/config"
)

// bindCanvasFlags registers the drawing settings shared by pad and render.
// Values default to cfg and are written back into it on parse.
func bindCanvasFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.IntVar(&cfg.Canvas.Width, "width", cfg.Canvas.Width, "surface width in device pixels")
	fs.IntVar(&cfg.Canvas.Height, "height", cfg.Canvas.Height, "surface height in device pixels")
	fs.BoolVar(&cfg.Canvas.Fluid, "fluid", cfg.Canvas.Fluid, "size the surface from the window instead of -width and -height")
	fs.StringVar(&cfg.Pen.Color, "color", cfg.Pen.Color, "pen colour as #rrggbb or a colour name")
	fs.Float64Var(&cfg.Pen.Width, "pen-width", cfg.Pen.Width, "pen stroke width")
	fs.Float64Var(&cfg.Eraser.Width, "eraser-width", cfg.Eraser.Width, "eraser stroke width")
	fs.StringVar(&cfg.Export.Format, "format", cfg.Export.Format, "export image format (png or jpeg)")
	fs.StringVar(&cfg.Export.Title, "title", cfg.Export.Title, "title printed on PDF sheets")
}

// copyConfig returns a copy subcommands can override with flags.
func copyConfig(cfg *config.Config) *config.Config {
	if cfg == nil {
		return config.New()
	}
	c := *cfg
	return &c
}
