// Package display works out how many device pixels back one layout pixel.
package display

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"strconv"
	"strings"
)

const (
	// BaseDPI is the density that maps to a scale of 1.
	BaseDPI = 96.0
	// MinScale and MaxScale bound every scale returned by this package.
	MinScale = 1.0
	MaxScale = 4.0
)

var errNoMonitors = errors.New("no monitors available")

// Monitor describes one connected output.
type Monitor struct {
	Index    int
	Name     string
	Rect     image.Rectangle
	WidthMM  int
	HeightMM int
	Primary  bool
}

// DPI returns the horizontal density of the monitor, or 0 when the physical
// size is unknown.
func (m Monitor) DPI() float64 {
	if m.WidthMM <= 0 || m.Rect.Dx() <= 0 {
		return 0
	}
	return float64(m.Rect.Dx()) / (float64(m.WidthMM) / 25.4)
}

// ScaleForDPI maps a density to a device scale in quarter steps.
func ScaleForDPI(dpi float64) float64 {
	if dpi <= 0 || math.IsNaN(dpi) || math.IsInf(dpi, 0) {
		return MinScale
	}
	s := math.Round(dpi/BaseDPI*4) / 4
	return clamp(s)
}

func clamp(s float64) float64 {
	switch {
	case s < MinScale:
		return MinScale
	case s > MaxScale:
		return MaxScale
	}
	return s
}

// Scale returns the device scale for the primary monitor. INKWELL_SCALE
// takes precedence. On failure MinScale is returned along with the error.
func Scale() (float64, error) {
	if v := strings.TrimSpace(os.Getenv("INKWELL_SCALE")); v != "" {
		s, err := strconv.ParseFloat(v, 64)
		if err != nil || s <= 0 {
			return MinScale, fmt.Errorf("INKWELL_SCALE: invalid value %q", v)
		}
		return clamp(s), nil
	}
	dpi, err := probeDPI()
	if err != nil {
		return MinScale, err
	}
	return ScaleForDPI(dpi), nil
}

// FindMonitor resolves a selector ("primary", an index, or part of a name)
// against the provided list.
func FindMonitor(monitors []Monitor, selector string) (Monitor, error) {
	if len(monitors) == 0 {
		return Monitor{}, errNoMonitors
	}
	sel := strings.ToLower(strings.TrimSpace(selector))
	if sel == "" || sel == "primary" {
		for _, mon := range monitors {
			if mon.Primary {
				return mon, nil
			}
		}
		return monitors[0], nil
	}
	sel = strings.TrimPrefix(sel, "#")
	if idx, err := strconv.Atoi(sel); err == nil {
		if idx < 0 || idx >= len(monitors) {
			return Monitor{}, fmt.Errorf("monitor index %d out of range", idx)
		}
		return monitors[idx], nil
	}
	for _, mon := range monitors {
		if strings.Contains(strings.ToLower(mon.Name), sel) {
			return mon, nil
		}
	}
	return Monitor{}, fmt.Errorf("monitor %q not found", selector)
}

// parseXftDPI extracts Xft.dpi from an X resource database string.
func parseXftDPI(resources string) (float64, bool) {
	for _, line := range strings.Split(resources, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(key) != "Xft.dpi" {
			continue
		}
		dpi, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || dpi <= 0 {
			return 0, false
		}
		return dpi, true
	}
	return 0, false
}
