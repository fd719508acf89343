// Package pad is the drawing session: it wires input arbitration, stroke
// history, rendering, surface sizing and export behind one API the host
// feeds with pointer events and commands.
//
// Hosts call the Pad from their event loop. Debounced exports and coalesced
// resizes fire on timer goroutines, so every method takes the Pad's lock;
// host callbacks run without it and may call back into the Pad.
package pad

import (
	"image"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/example/inkwell/internal/diag"
	"github.com/example/inkwell/internal/export"
	"github.com/example/inkwell/internal/history"
	"github.com/example/inkwell/internal/input"
	"github.com/example/inkwell/internal/render"
	"github.com/example/inkwell/internal/schedule"
	"github.com/example/inkwell/internal/sizing"
	"github.com/example/inkwell/internal/stroke"
)

// SetLogger installs the logger used by the engine and the rasterizer.
func SetLogger(l *slog.Logger) { diag.SetLogger(l) }

// Option configures a Pad during creation.
type Option func(*Pad)

// WithOnDrawEnd registers the export callback. It receives a data URL after
// each settled change and export.Empty after Clear.
func WithOnDrawEnd(fn func(export.Image)) Option { return func(p *Pad) { p.onDrawEnd = fn } }

// WithOnRepaint registers a callback invoked after the surface changed.
func WithOnRepaint(fn func()) Option { return func(p *Pad) { p.onRepaint = fn } }

// Pad is one drawing session.
type Pad struct {
	id string

	mu       sync.Mutex
	cfg      Config
	renderer *render.Renderer
	history  history.History
	arbiter  input.Arbiter
	sizer    *sizing.Controller
	dirty    bool
	closed   bool

	resizeDeb *schedule.Debouncer
	exporter  *export.Notifier

	onDrawEnd func(export.Image)
	onRepaint func()
}

// New creates a Pad from cfg.
func New(cfg Config, opts ...Option) (*Pad, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ExportFormat, _ = export.ParseFormat(string(cfg.ExportFormat))
	p := &Pad{
		id:        uuid.NewString(),
		cfg:       cfg,
		renderer:  render.New(0, 0),
		resizeDeb: schedule.NewDebouncer(cfg.ResizeDelay),
	}
	for _, o := range opts {
		o(p)
	}
	p.exporter = export.NewNotifier(cfg.ExportDelay, p.snapshot, p.onDrawEnd)
	p.exporter.SetFormat(cfg.ExportFormat)
	p.sizer = sizing.New(p.resizeLocked, p.deferResize)

	p.mu.Lock()
	p.applySizingLocked(Config{}, cfg)
	p.mu.Unlock()

	diag.Logger().Info("pad created", "pad", p.id, "mode", p.sizer.Mode(), "width", cfg.Width, "height", cfg.Height)
	return p, nil
}

// ID identifies the session in logs.
func (p *Pad) ID() string { return p.id }

// update runs fn under the lock and notifies the host of a repaint after
// releasing it.
func (p *Pad) update(fn func()) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.dirty = false
	fn()
	repainted := p.dirty
	p.mu.Unlock()
	if repainted && p.onRepaint != nil {
		p.onRepaint()
	}
}

func (p *Pad) repaintLocked() {
	committed := p.history.Committed()
	strokes := committed
	if s := p.arbiter.InProgress(); s != nil {
		strokes = make([]stroke.Stroke, 0, len(committed)+1)
		strokes = append(strokes, committed...)
		strokes = append(strokes, *s)
	}
	p.renderer.Repaint(strokes)
	p.dirty = true
}

func (p *Pad) resizeLocked(width, height int) {
	if err := p.renderer.Resize(width, height); err != nil {
		diag.Logger().Warn("resize failed", "pad", p.id, "err", err)
		return
	}
	p.repaintLocked()
}

func (p *Pad) deferResize(fn func()) {
	p.resizeDeb.Schedule(func() { p.update(fn) })
}

func (p *Pad) applySizingLocked(old, cfg Config) {
	if !cfg.Fluid {
		p.sizer.SetFixed(cfg.Width, cfg.Height)
		return
	}
	if !old.Fluid {
		// Start from the configured size until the host reports a layout.
		p.sizer.SetFixed(cfg.Width, cfg.Height)
		p.sizer.SetFluid(cfg.DeviceScale)
		return
	}
	p.sizer.SetScale(cfg.DeviceScale)
}

// HandlePointer feeds one pointer event. layout describes where the surface
// is displayed; its backing size is filled in by the Pad.
func (p *Pad) HandlePointer(ev input.Event, layout input.Layout) input.Result {
	var res input.Result
	p.update(func() {
		layout.BackingWidth, layout.BackingHeight = p.sizer.Size()
		res = p.arbiter.Handle(ev, layout, p.cfg.settings())
		for _, s := range res.Committed {
			if p.history.Commit(s) {
				diag.Logger().Debug("stroke committed", "pad", p.id, "stroke", s.ID, "points", len(s.Points), "eraser", s.Eraser)
				p.exporter.Changed()
			}
		}
		if res.Changed {
			p.repaintLocked()
		}
	})
	return res
}

// Undo removes the newest committed stroke. It reports false when there
// was nothing to undo.
func (p *Pad) Undo() bool {
	ok := false
	p.update(func() {
		if ok = p.history.Undo(); ok {
			p.repaintLocked()
			p.exporter.Changed()
		}
	})
	return ok
}

// Redo restores the most recently undone stroke.
func (p *Pad) Redo() bool {
	ok := false
	p.update(func() {
		if ok = p.history.Redo(); ok {
			p.repaintLocked()
			p.exporter.Changed()
		}
	})
	return ok
}

// Clear drops all strokes, abandons any stroke in progress and delivers
// export.Empty.
func (p *Pad) Clear() {
	cleared := false
	p.update(func() {
		p.arbiter.Abandon()
		p.history.Clear()
		p.exporter.Reset()
		p.repaintLocked()
		cleared = true
	})
	if cleared {
		p.exporter.Drain()
	}
}

// SetTool selects the tool for new strokes. A stroke in progress is
// abandoned without being committed.
func (p *Pad) SetTool(t stroke.Tool) {
	p.update(func() {
		p.cfg.Tool = t
		if p.arbiter.Abandon() {
			p.repaintLocked()
		}
	})
}

// Configure replaces the configuration. Style changes apply to new strokes
// only; size changes resize and repaint.
func (p *Pad) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.ExportFormat, _ = export.ParseFormat(string(cfg.ExportFormat))
	p.update(func() {
		old := p.cfg
		p.cfg = cfg
		if cfg.Tool != old.Tool && p.arbiter.Abandon() {
			p.repaintLocked()
		}
		p.resizeDeb.SetDelay(cfg.ResizeDelay)
		p.exporter.SetDelay(cfg.ExportDelay)
		p.exporter.SetFormat(cfg.ExportFormat)
		p.applySizingLocked(old, cfg)
	})
	return nil
}

// ObserveLayout reports the displayed content box in layout pixels. It
// only has an effect in fluid mode, after the coalescing delay.
func (p *Pad) ObserveLayout(width, height float64) {
	p.update(func() { p.sizer.Observe(width, height) })
}

// Flush applies a pending resize and runs a pending export immediately.
func (p *Pad) Flush() {
	p.resizeDeb.Flush()
	p.exporter.Flush()
}

// Close cancels pending work and releases the surface.
func (p *Pad) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	err := p.renderer.Close()
	p.mu.Unlock()
	p.resizeDeb.Stop()
	p.exporter.Close()
	return err
}

func (p *Pad) snapshot() image.Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	img := p.renderer.Image()
	if img == nil {
		return nil
	}
	return img
}

// Image returns a copy of the visible raster, or nil without a surface.
func (p *Pad) Image() *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renderer.Image()
}

// Strokes returns a copy of the committed strokes.
func (p *Pad) Strokes() []stroke.Stroke {
	p.mu.Lock()
	defer p.mu.Unlock()
	committed := p.history.Committed()
	out := make([]stroke.Stroke, len(committed))
	for i, s := range committed {
		out[i] = s.Clone()
	}
	return out
}

// InProgress returns a copy of the stroke being drawn.
func (p *Pad) InProgress() (stroke.Stroke, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.arbiter.InProgress()
	if s == nil {
		return stroke.Stroke{}, false
	}
	return s.Clone(), true
}

// RedoLen reports how many strokes can be redone.
func (p *Pad) RedoLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history.RedoLen()
}

// Drawing returns the pointer ownership state.
func (p *Pad) Drawing() input.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.arbiter.State()
}

// Tool returns the tool used for new strokes.
func (p *Pad) Tool() stroke.Tool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg.Tool
}

// Size returns the backing resolution.
func (p *Pad) Size() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sizer.Size()
}

// Config returns the active configuration.
func (p *Pad) Config() Config {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg
}
