// Package sizing keeps the backing resolution in step with the configured
// size (fixed mode) or the observed on-screen box (fluid mode).
package sizing

import (
	"fmt"
	"math"
	"strings"

	"github.com/example/inkwell/internal/diag"
)

// Mode selects how the backing resolution is chosen.
type Mode int

const (
	Fixed Mode = iota
	Fluid
)

func (m Mode) String() string {
	if m == Fluid {
		return "fluid"
	}
	return "fixed"
}

// ParseMode accepts "fixed" or "fluid".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed", "":
		return Fixed, nil
	case "fluid":
		return Fluid, nil
	default:
		return Fixed, fmt.Errorf("unknown sizing mode %q", s)
	}
}

// Controller is not safe for concurrent use. The deferral function passed
// to New must run callbacks under the same lock the owner uses to call the
// Controller.
type Controller struct {
	mode          Mode
	scale         float64
	width, height int

	observedW, observedH float64
	observed             bool

	deferFn  func(func())
	resizeFn func(width, height int)
}

// New returns a Controller that calls resize whenever the backing
// resolution changes. deferFn coalesces fluid observations; each call must
// replace any previously deferred callback. A nil deferFn applies
// observations immediately.
func New(resize func(width, height int), deferFn func(func())) *Controller {
	return &Controller{scale: 1, resizeFn: resize, deferFn: deferFn}
}

// Mode returns the active mode.
func (c *Controller) Mode() Mode { return c.mode }

// Size returns the current backing resolution.
func (c *Controller) Size() (int, int) { return c.width, c.height }

// SetFixed switches to fixed mode and applies width x height if it differs
// from the current resolution.
func (c *Controller) SetFixed(width, height int) {
	c.mode = Fixed
	c.observed = false
	c.apply(width, height)
}

// SetFluid switches to fluid mode. The backing resolution follows the next
// observation multiplied by scale.
func (c *Controller) SetFluid(scale float64) {
	c.mode = Fluid
	c.SetScale(scale)
}

// SetScale sets the device scale used in fluid mode.
func (c *Controller) SetScale(scale float64) {
	if scale <= 0 || math.IsNaN(scale) {
		scale = 1
	}
	c.scale = scale
	if c.mode == Fluid && c.observed {
		c.schedule()
	}
}

// Observe records the on-screen content box. It is ignored in fixed mode.
func (c *Controller) Observe(width, height float64) {
	if c.mode != Fluid {
		return
	}
	c.observedW, c.observedH = width, height
	c.observed = true
	c.schedule()
}

func (c *Controller) schedule() {
	if c.deferFn == nil {
		c.flush()
		return
	}
	c.deferFn(c.flush)
}

func (c *Controller) flush() {
	if c.mode != Fluid || !c.observed {
		return
	}
	w := int(math.Round(c.observedW * c.scale))
	h := int(math.Round(c.observedH * c.scale))
	c.apply(w, h)
}

func (c *Controller) apply(width, height int) {
	if width <= 0 || height <= 0 {
		diag.Logger().Debug("ignored surface size", "width", width, "height", height)
		return
	}
	if width == c.width && height == c.height {
		return
	}
	diag.Logger().Debug("surface resized", "mode", c.mode, "width", width, "height", height)
	c.width, c.height = width, height
	if c.resizeFn != nil {
		c.resizeFn(width, height)
	}
}
