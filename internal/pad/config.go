package pad

import (
	"fmt"
	"time"

	"github.com/example/inkwell/internal/export"
	"github.com/example/inkwell/internal/input"
	"github.com/example/inkwell/internal/stroke"
)

// Config is the host-facing configuration of a Pad.
type Config struct {
	// Width and Height are the backing resolution in fixed mode, and the
	// initial resolution in fluid mode until the first observation.
	Width  int
	Height int
	// Fluid makes the backing resolution follow ObserveLayout.
	Fluid bool
	// DeviceScale multiplies observed layout sizes in fluid mode.
	DeviceScale float64

	PenColor    string
	PenWidth    float64
	EraserWidth float64
	Tool        stroke.Tool

	// PalmThreshold is the touch contact size above which a press is
	// rejected.
	PalmThreshold float64

	ExportDelay  time.Duration
	ExportFormat export.Format
	// ResizeDelay coalesces fluid observations.
	ResizeDelay time.Duration
}

// DefaultResizeDelay is one frame at 60 Hz.
const DefaultResizeDelay = 16 * time.Millisecond

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Width:         600,
		Height:        400,
		DeviceScale:   1,
		PenColor:      "#000000",
		PenWidth:      4,
		EraserWidth:   20,
		Tool:          stroke.ToolPen,
		PalmThreshold: input.DefaultPalmThreshold,
		ExportDelay:   export.DefaultDelay,
		ExportFormat:  export.FormatPNG,
		ResizeDelay:   DefaultResizeDelay,
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if !c.Fluid && (c.Width <= 0 || c.Height <= 0) {
		return fmt.Errorf("fixed canvas size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("canvas size must not be negative, got %dx%d", c.Width, c.Height)
	}
	if c.DeviceScale < 0 {
		return fmt.Errorf("device scale must not be negative, got %v", c.DeviceScale)
	}
	if c.PenWidth <= 0 {
		return fmt.Errorf("pen width must be positive, got %v", c.PenWidth)
	}
	if c.EraserWidth <= 0 {
		return fmt.Errorf("eraser width must be positive, got %v", c.EraserWidth)
	}
	if _, err := stroke.ParseColor(c.PenColor); err != nil {
		return fmt.Errorf("pen colour: %w", err)
	}
	if c.PalmThreshold < 0 {
		return fmt.Errorf("palm threshold must not be negative, got %v", c.PalmThreshold)
	}
	if c.ExportDelay < 0 || c.ResizeDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if _, err := export.ParseFormat(string(c.ExportFormat)); err != nil {
		return err
	}
	return nil
}

func (c Config) settings() input.Settings {
	return input.Settings{
		Tool: c.Tool,
		Style: stroke.Style{
			Color:       c.PenColor,
			Width:       c.PenWidth,
			EraserWidth: c.EraserWidth,
		},
		PalmThreshold: c.PalmThreshold,
	}
}
