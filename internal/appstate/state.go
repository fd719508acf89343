// Package appstate hosts a drawing pad in a desktop window.
package appstate

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"github.com/example/inkwell/internal/clipboard"
	"github.com/example/inkwell/internal/diag"
	"github.com/example/inkwell/internal/export"
	"github.com/example/inkwell/internal/input"
	"github.com/example/inkwell/internal/notify"
	"github.com/example/inkwell/internal/pad"
	"github.com/example/inkwell/internal/render"
	"github.com/example/inkwell/internal/stroke"
)

// AppState holds the window configuration and the pad it hosts.
type AppState struct {
	Config  pad.Config
	Output  string
	SaveDir string
	Title   string
	Sheet   export.SheetOptions

	notifier *notify.Notifier
	onExport func(export.Image)
	onClose  func()

	updateCh  chan struct{}
	closing   atomic.Bool
	closeOnce sync.Once
	err       error
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithConfig sets the pad configuration.
func WithConfig(cfg pad.Config) Option { return func(a *AppState) { a.Config = cfg } }

// WithOutput sets a fixed file path for saves. Without it each save writes
// a timestamped PNG into the save directory.
func WithOutput(out string) Option { return func(a *AppState) { a.Output = out } }

// WithSaveDir sets the directory for timestamped saves.
func WithSaveDir(dir string) Option { return func(a *AppState) { a.SaveDir = dir } }

// WithTitle sets the window title and the heading of PDF sheets.
func WithTitle(title string) Option {
	return func(a *AppState) {
		a.Title = title
		a.Sheet.Title = title
	}
}

// WithNotifier sends desktop notifications after save and copy.
func WithNotifier(n *notify.Notifier) Option { return func(a *AppState) { a.notifier = n } }

// WithOnExport registers a callback for every delivered export.
func WithOnExport(fn func(export.Image)) Option { return func(a *AppState) { a.onExport = fn } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{
		Config:   pad.DefaultConfig(),
		Title:    "Inkwell",
		updateCh: make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

type exportEvent struct {
	image export.Image
}

// NotifyImageChanged requests a repaint of the window.
func (a *AppState) NotifyImageChanged() {
	select {
	case a.updateCh <- struct{}{}:
	default:
	}
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

func (a *AppState) deliver(img export.Image) {
	if a.onExport != nil {
		a.onExport(img)
	}
}

// Run executes the UI loop using shiny's driver and returns the error that
// stopped it, if any.
func (a *AppState) Run() error {
	driver.Main(a.Main)
	return a.err
}

// outputPath is where a save made at now is written.
func (a *AppState) outputPath(now time.Time) string {
	if a.Output != "" {
		return a.Output
	}
	dir := a.SaveDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, fmt.Sprintf("inkwell-%s.png", now.Format("20060102-150405")))
}

// exportSummary describes an export for the status line.
func exportSummary(img export.Image) string {
	if img.Cleared {
		return "cleared"
	}
	return fmt.Sprintf("%.1f KB", float64(len(img.DataURL))/1024)
}

func windowSize(cfg pad.Config, buttons int) (int, int) {
	w := cfg.Width + 2*margin
	h := cfg.Height + toolbarHeight + statusHeight + 2*margin
	if minW := buttons * buttonWidth; w < minW {
		w = minW
	}
	return w, h
}

func (a *AppState) Main(s screen.Screen) {
	defer a.notifyClose()

	cfg := a.Config
	scale := cfg.DeviceScale
	if scale <= 0 {
		scale = 1
	}

	var (
		hover        = -1
		message      string
		messageUntil time.Time
		lastExport   string
		quit         bool
	)
	flash := func(msg string) {
		message = msg
		messageUntil = time.Now().Add(messageShown)
		diag.Logger().Info(msg)
	}

	var actions map[string]func()
	trigger := func(name string) {
		if fn, ok := actions[name]; ok {
			fn()
		}
	}
	toolbar := newToolbar(trigger)

	width, height := windowSize(cfg, len(toolbar))
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: a.Title})
	if err != nil {
		a.err = fmt.Errorf("new window: %w", err)
		return
	}
	defer w.Release()
	canvas := canvasRect(width, height)

	p, err := pad.New(cfg,
		pad.WithOnRepaint(a.NotifyImageChanged),
		pad.WithOnDrawEnd(func(img export.Image) {
			if a.closing.Load() {
				a.deliver(img)
				return
			}
			w.Send(exportEvent{image: img})
		}),
	)
	if err != nil {
		a.err = err
		return
	}
	defer func() {
		a.closing.Store(true)
		p.Flush()
		if err := p.Close(); err != nil {
			diag.Logger().Warn("close pad", "err", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-a.updateCh:
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()
	defer close(done)

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	defer close(paintCh)

	actions = map[string]func(){
		"pen":    func() { p.SetTool(stroke.ToolPen) },
		"eraser": func() { p.SetTool(stroke.ToolEraser) },
		"undo":   func() { p.Undo() },
		"redo":   func() { p.Redo() },
		"clear":  func() { p.Clear() },
		"quit":   func() { quit = true },
		"save": func() {
			img := p.Image()
			if img == nil || len(p.Strokes()) == 0 {
				flash("nothing to save")
				return
			}
			path := a.outputPath(time.Now())
			if err := export.SaveFile(path, img, a.Sheet); err != nil {
				diag.Logger().Error("save", "path", path, "err", err)
				flash("save failed")
				return
			}
			a.notifier.Save(path)
			flash("saved " + filepath.Base(path))
		},
		"copy": func() {
			img := p.Image()
			if img == nil {
				flash("nothing to copy")
				return
			}
			if err := clipboard.WriteImage(render.Flatten(img, color.White)); err != nil {
				if errors.Is(err, clipboard.ErrEmpty) {
					flash("nothing to copy")
					return
				}
				diag.Logger().Error("copy", "err", err)
				flash("copy failed")
				return
			}
			a.notifier.Copy("", img)
			flash("copied to clipboard")
		},
	}

	layout := func() input.Layout { return layoutFor(canvas, scale) }
	// cancelStroke ends the active stroke the way a cancelled pointer would.
	cancelStroke := func() {
		if st := p.Drawing(); st.Drawing {
			p.HandlePointer(input.Event{Type: input.Leave, PointerID: st.PointerID, Kind: st.Kind}, layout())
		}
	}

	for !quit {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
			if e.Crosses(lifecycle.StageFocused) == lifecycle.CrossOff {
				cancelStroke()
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			canvas = canvasRect(width, height)
			if cfg.Fluid {
				l := layout()
				p.ObserveLayout(l.Width, l.Height)
			}
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := paintState{
				width:        width,
				height:       height,
				canvas:       canvas,
				drawing:      p.Image(),
				tool:         p.Tool(),
				toolbar:      toolbar,
				hover:        hover,
				status:       statusLine(p.Tool(), len(p.Strokes()), p.RedoLen(), lastExport),
				message:      message,
				messageUntil: messageUntil,
			}
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case exportEvent:
			lastExport = exportSummary(e.image)
			a.deliver(e.image)
			w.Send(paint.Event{})
		case mouse.Event:
			if int(e.Y) < toolbarHeight && !p.Drawing().Drawing {
				prev := hover
				hover = -1
				pt := image.Pt(int(e.X), int(e.Y))
				for i, cb := range toolbar {
					if pt.In(cb.Rect()) {
						hover = i
						if e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
							cb.Activate()
						}
						break
					}
				}
				if hover != prev || e.Direction == mouse.DirPress {
					w.Send(paint.Event{})
				}
				continue
			}
			if hover != -1 {
				hover = -1
				w.Send(paint.Event{})
			}
			if ev, ok := mouseEvent(e, scale); ok {
				p.HandlePointer(ev, layout())
			}
		case touch.Event:
			p.HandlePointer(touchEvent(e, scale), layout())
		case key.Event:
			if action, ok := keyAction(e); ok {
				trigger(action)
				w.Send(paint.Event{})
			}
		case error:
			diag.Logger().Error("window", "err", e)
		}
	}
}
