package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/example/inkwell/internal/export"
	"github.com/example/inkwell/internal/pad"
	"github.com/example/inkwell/internal/stroke"
)

// Duration is a time.Duration written as "300ms" in config files.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Canvas holds surface sizing settings.
type Canvas struct {
	Width  int     `toml:"width"`
	Height int     `toml:"height"`
	Fluid  bool    `toml:"fluid"`
	Scale  float64 `toml:"scale"`
}

// Pen holds the style of new pen strokes.
type Pen struct {
	Color string  `toml:"color"`
	Width float64 `toml:"width"`
}

// Eraser holds the width of new eraser strokes.
type Eraser struct {
	Width float64 `toml:"width"`
}

// Input holds pointer filtering settings.
type Input struct {
	PalmThreshold float64 `toml:"palm_threshold"`
}

// Export holds export settings.
type Export struct {
	Format  string   `toml:"format"`
	Delay   Duration `toml:"delay"`
	SaveDir string   `toml:"save_dir"`
	Title   string   `toml:"title"`
}

// Notify holds notification settings.
type Notify struct {
	Save bool `toml:"save"`
	Copy bool `toml:"copy"`
}

// Config holds the application configuration.
type Config struct {
	Canvas Canvas `toml:"canvas"`
	Pen    Pen    `toml:"pen"`
	Eraser Eraser `toml:"eraser"`
	Input  Input  `toml:"input"`
	Export Export `toml:"export"`
	Notify Notify `toml:"notify"`
}

// New creates a new Config with defaults.
func New() *Config {
	d := pad.DefaultConfig()
	return &Config{
		Canvas: Canvas{Width: d.Width, Height: d.Height, Scale: 0},
		Pen:    Pen{Color: d.PenColor, Width: d.PenWidth},
		Eraser: Eraser{Width: d.EraserWidth},
		Input:  Input{PalmThreshold: d.PalmThreshold},
		Export: Export{Format: string(d.ExportFormat), Delay: Duration{d.ExportDelay}},
	}
}

// Parse reads a TOML configuration. Keys that are missing keep their
// defaults; unknown keys are ignored.
func Parse(r io.Reader) (*Config, error) {
	cfg := New()
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// String implements fmt.Stringer and returns the configuration as TOML.
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("# inkwell configuration\n\n")
	if err := toml.NewEncoder(&sb).Encode(c); err != nil {
		return fmt.Sprintf("# encode config: %v\n", err)
	}
	return sb.String()
}

// ApplyEnv overrides settings from INKWELL_* environment variables.
func (c *Config) ApplyEnv() error {
	if v, ok := lookup("INKWELL_CANVAS"); ok {
		switch strings.ToLower(v) {
		case "fluid":
			c.Canvas.Fluid = true
		case "fixed":
			c.Canvas.Fluid = false
		default:
			return fmt.Errorf("INKWELL_CANVAS: unknown mode %q", v)
		}
	}
	if v, ok := lookup("INKWELL_PEN_COLOR"); ok {
		c.Pen.Color = v
	}
	if v, ok := lookup("INKWELL_PEN_WIDTH"); ok {
		w, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("INKWELL_PEN_WIDTH: %w", err)
		}
		c.Pen.Width = w
	}
	if v, ok := lookup("INKWELL_EXPORT_FORMAT"); ok {
		c.Export.Format = v
	}
	if v, ok := lookup("INKWELL_SAVE_DIR"); ok {
		c.Export.SaveDir = v
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// PadConfig converts the file settings into a pad configuration. scale is
// used in fluid mode when the file leaves canvas.scale unset.
func (c *Config) PadConfig(scale float64) (pad.Config, error) {
	pc := pad.DefaultConfig()
	pc.Width, pc.Height = c.Canvas.Width, c.Canvas.Height
	pc.Fluid = c.Canvas.Fluid
	pc.DeviceScale = scale
	if c.Canvas.Scale > 0 {
		pc.DeviceScale = c.Canvas.Scale
	}
	pc.PenColor = c.Pen.Color
	pc.PenWidth = c.Pen.Width
	pc.EraserWidth = c.Eraser.Width
	pc.Tool = stroke.ToolPen
	pc.PalmThreshold = c.Input.PalmThreshold
	pc.ExportDelay = c.Export.Delay.Duration
	f, err := export.ParseFormat(c.Export.Format)
	if err != nil {
		return pc, err
	}
	pc.ExportFormat = f
	if err := pc.Validate(); err != nil {
		return pc, err
	}
	return pc, nil
}
