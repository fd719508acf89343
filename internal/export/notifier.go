package export

import (
	"image"
	"sync"
	"time"

	"github.com/example/inkwell/internal/diag"
	"github.com/example/inkwell/internal/schedule"
)

// DefaultDelay is the quiet period before a change is exported.
const DefaultDelay = 300 * time.Millisecond

// Notifier debounces exports. Snapshot is called from the timer goroutine
// (or from Flush) and must take whatever lock guards the surface.
//
// Deliveries are serialized in the order they were queued. Reset starts a
// new generation: exports scheduled before it are dropped even if their
// timer already fired, so the empty signal is never followed by a raster
// of the cleared drawing.
type Notifier struct {
	deb      *schedule.Debouncer
	snapshot func() image.Image
	deliver  func(Image)

	mu       sync.Mutex
	format   Format
	gen      uint64
	queue    []Image
	draining bool
}

// NewNotifier returns a Notifier that exports snapshot() through deliver.
// A nil deliver disables delivery.
func NewNotifier(delay time.Duration, snapshot func() image.Image, deliver func(Image)) *Notifier {
	if delay < 0 {
		delay = DefaultDelay
	}
	return &Notifier{
		deb:      schedule.NewDebouncer(delay),
		snapshot: snapshot,
		deliver:  deliver,
		format:   FormatPNG,
	}
}

// SetFormat selects the data URL encoding.
func (n *Notifier) SetFormat(f Format) {
	n.mu.Lock()
	n.format = f
	n.mu.Unlock()
}

// SetDelay changes the quiet period.
func (n *Notifier) SetDelay(d time.Duration) {
	if d < 0 {
		d = DefaultDelay
	}
	n.deb.SetDelay(d)
}

// Changed schedules an export, replacing any pending one.
func (n *Notifier) Changed() {
	if n.deliver == nil {
		return
	}
	n.mu.Lock()
	gen := n.gen
	n.mu.Unlock()
	n.deb.Schedule(func() { n.export(gen) })
}

// Reset drops pending and in-flight exports and queues the empty signal.
// It does not deliver; call Drain once no locks the callback needs are held.
func (n *Notifier) Reset() {
	n.mu.Lock()
	n.gen++
	if n.deliver != nil {
		n.queue = append(n.queue, Empty)
	}
	n.mu.Unlock()
	n.deb.Cancel()
}

// Cleared resets the notifier and delivers the empty signal at once.
func (n *Notifier) Cleared() {
	n.Reset()
	n.Drain()
}

// Drain delivers queued images in order. A call made while another
// goroutine (or the callback itself) is draining returns immediately; the
// active drain picks up the new entries.
func (n *Notifier) Drain() {
	n.mu.Lock()
	if n.draining {
		n.mu.Unlock()
		return
	}
	n.draining = true
	for len(n.queue) > 0 {
		next := n.queue[0]
		n.queue = n.queue[1:]
		n.mu.Unlock()
		n.deliver(next)
		n.mu.Lock()
	}
	n.draining = false
	n.mu.Unlock()
}

// Flush runs a pending export now and reports whether there was one.
func (n *Notifier) Flush() bool {
	return n.deb.Flush()
}

// Pending reports whether an export is scheduled.
func (n *Notifier) Pending() bool {
	return n.deb.Pending()
}

// Close cancels pending work. Later changes are ignored.
func (n *Notifier) Close() {
	n.deb.Stop()
}

func (n *Notifier) current(gen uint64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return gen == n.gen
}

func (n *Notifier) export(gen uint64) {
	if !n.current(gen) {
		return
	}
	img := n.snapshot()
	if img == nil {
		diag.Logger().Debug("export skipped", "reason", "no surface")
		return
	}
	n.mu.Lock()
	f := n.format
	n.mu.Unlock()
	url, err := Encode(img, f)
	if err != nil {
		diag.Logger().Warn("export failed", "err", err)
		return
	}
	n.mu.Lock()
	if gen != n.gen {
		n.mu.Unlock()
		diag.Logger().Debug("export skipped", "reason", "cleared")
		return
	}
	n.queue = append(n.queue, Image{DataURL: url})
	n.mu.Unlock()
	diag.Logger().Info("drawing exported", "format", string(f), "bytes", len(url))
	n.Drain()
}
