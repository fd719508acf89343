// Package input decides which pointer owns drawing and turns its events into
// stroke points.
package input

import (
	"fmt"
	"strings"

	"github.com/example/inkwell/internal/diag"
	"github.com/example/inkwell/internal/stroke"
)

// Kind is the physical device behind a pointer.
type Kind int

const (
	KindMouse Kind = iota
	KindPen
	KindTouch
)

func (k Kind) String() string {
	switch k {
	case KindMouse:
		return "mouse"
	case KindPen:
		return "pen"
	case KindTouch:
		return "touch"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind accepts "mouse", "pen" or "touch".
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mouse", "":
		return KindMouse, nil
	case "pen", "stylus":
		return KindPen, nil
	case "touch", "finger":
		return KindTouch, nil
	default:
		return KindMouse, fmt.Errorf("unknown pointer kind %q", s)
	}
}

// Type is the phase of a pointer event.
type Type int

const (
	Press Type = iota
	Move
	Release
	Leave
)

func (t Type) String() string {
	switch t {
	case Press:
		return "press"
	case Move:
		return "move"
	case Release:
		return "release"
	case Leave:
		return "leave"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// ParseType accepts the event phase names used by replay scripts.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "press", "down":
		return Press, nil
	case "move":
		return Move, nil
	case "release", "up":
		return Release, nil
	case "leave", "cancel":
		return Leave, nil
	default:
		return Press, fmt.Errorf("unknown event type %q", s)
	}
}

// PrimaryButton is the button index of a primary click or a default pen or
// touch contact.
const PrimaryButton = 0

// Event is one pointer event in layout coordinates.
type Event struct {
	Type          Type
	PointerID     int
	Kind          Kind
	Button        int
	ContactWidth  float64
	ContactHeight float64
	ClientX       float64
	ClientY       float64
}

// Layout is the displayed box of the surface and its backing resolution.
type Layout struct {
	Left, Top     float64
	Width, Height float64
	BackingWidth  int
	BackingHeight int
}

// Map converts layout coordinates to backing pixels, scaling each axis on
// its own. A degenerate box maps one to one.
func (l Layout) Map(clientX, clientY float64) stroke.Point {
	x := clientX - l.Left
	y := clientY - l.Top
	if l.Width > 0 && l.BackingWidth > 0 {
		x *= float64(l.BackingWidth) / l.Width
	}
	if l.Height > 0 && l.BackingHeight > 0 {
		y *= float64(l.BackingHeight) / l.Height
	}
	return stroke.Point{X: x, Y: y}
}

// Result tells the host what an event did.
type Result struct {
	// PreventDefault asks the host to suppress its own gesture handling
	// (scrolling, zooming) for the event.
	PreventDefault bool
	// Changed is set when the in-progress stroke gained a point or was
	// replaced, so the surface needs a repaint.
	Changed bool
	// Committed holds strokes finalized by the event, oldest first.
	Committed []stroke.Stroke
}

// State is the ownership state. The zero value is idle.
type State struct {
	Drawing   bool
	PointerID int
	Kind      Kind
}

// Settings feeds the arbiter the current tool and style.
type Settings struct {
	Tool          stroke.Tool
	Style         stroke.Style
	PalmThreshold float64
}

// DefaultPalmThreshold is the touch contact size, in layout pixels, above
// which a contact is treated as a resting palm.
const DefaultPalmThreshold = 40

// Arbiter is the input state machine. It lets one pointer draw at a time.
type Arbiter struct {
	state   State
	current *stroke.Stroke
}

// State returns the current ownership state.
func (a *Arbiter) State() State { return a.state }

// InProgress returns the stroke being drawn, or nil.
func (a *Arbiter) InProgress() *stroke.Stroke { return a.current }

// Abandon drops the in-progress stroke without committing it.
func (a *Arbiter) Abandon() bool {
	had := a.current != nil
	a.current = nil
	a.state = State{}
	return had
}

// Handle applies ev. The caller commits the returned strokes and repaints
// when Changed is set.
func (a *Arbiter) Handle(ev Event, layout Layout, set Settings) Result {
	switch ev.Type {
	case Press:
		return a.press(ev, layout, set)
	case Move:
		return a.move(ev, layout)
	case Release, Leave:
		return a.finish(ev)
	}
	return Result{}
}

func (a *Arbiter) press(ev Event, layout Layout, set Settings) Result {
	log := diag.Logger()
	if ev.Button != PrimaryButton {
		log.Debug("ignored press", "reason", "button", "button", ev.Button, "pointer", ev.PointerID)
		return Result{}
	}
	threshold := set.PalmThreshold
	if threshold <= 0 {
		threshold = DefaultPalmThreshold
	}
	if ev.Kind == KindTouch && (ev.ContactWidth > threshold || ev.ContactHeight > threshold) {
		log.Debug("ignored press", "reason", "palm", "pointer", ev.PointerID,
			"width", ev.ContactWidth, "height", ev.ContactHeight)
		return Result{PreventDefault: true}
	}

	var res Result
	if a.state.Drawing {
		if ev.Kind != KindPen || a.state.Kind == KindPen {
			log.Debug("ignored press", "reason", "busy", "pointer", ev.PointerID, "owner", a.state.PointerID)
			return Result{}
		}
		log.Debug("pen takes over", "pointer", ev.PointerID, "from", a.state.PointerID)
		res.Committed = a.finalize()
	}

	a.state = State{Drawing: true, PointerID: ev.PointerID, Kind: ev.Kind}
	a.current = stroke.New(set.Tool, set.Style, layout.Map(ev.ClientX, ev.ClientY))
	res.PreventDefault = true
	res.Changed = true
	return res
}

func (a *Arbiter) move(ev Event, layout Layout) Result {
	if !a.owns(ev) {
		return Result{}
	}
	a.current.Append(layout.Map(ev.ClientX, ev.ClientY))
	return Result{PreventDefault: true, Changed: true}
}

func (a *Arbiter) finish(ev Event) Result {
	if !a.owns(ev) {
		return Result{}
	}
	return Result{Committed: a.finalize()}
}

func (a *Arbiter) owns(ev Event) bool {
	return a.state.Drawing && ev.PointerID == a.state.PointerID && a.current != nil
}

// finalize ends the current stream and returns the stroke to commit, if any.
func (a *Arbiter) finalize() []stroke.Stroke {
	s := a.current
	a.current = nil
	a.state = State{}
	if s.Len() == 0 {
		return nil
	}
	return []stroke.Stroke{*s}
}
