package input

import (
	"testing"

	"github.com/example/inkwell/internal/stroke"
)

var (
	square   = Layout{Width: 100, Height: 100, BackingWidth: 100, BackingHeight: 100}
	settings = Settings{Tool: stroke.ToolPen, Style: stroke.Style{Color: "#000", Width: 4, EraserWidth: 20}}
)

func ev(typ Type, id int, kind Kind, x, y float64) Event {
	return Event{Type: typ, PointerID: id, Kind: kind, ClientX: x, ClientY: y}
}

func TestBasicStroke(t *testing.T) {
	var a Arbiter
	res := a.Handle(ev(Press, 1, KindMouse, 10, 10), square, settings)
	if !res.PreventDefault || !res.Changed {
		t.Fatalf("press should start drawing: %+v", res)
	}
	a.Handle(ev(Move, 1, KindMouse, 20, 20), square, settings)
	a.Handle(ev(Move, 1, KindMouse, 30, 30), square, settings)
	res = a.Handle(ev(Release, 1, KindMouse, 99, 99), square, settings)

	if len(res.Committed) != 1 {
		t.Fatalf("expected one committed stroke, got %d", len(res.Committed))
	}
	want := []stroke.Point{{X: 10, Y: 10}, {X: 20, Y: 20}, {X: 30, Y: 30}}
	got := res.Committed[0].Points
	if len(got) != len(want) {
		t.Fatalf("expected %d points, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("point %d = %v, want %v", i, got[i], want[i])
		}
	}
	if a.State().Drawing || a.InProgress() != nil {
		t.Fatal("expected idle after release")
	}
}

func TestSecondaryButtonIgnored(t *testing.T) {
	var a Arbiter
	e := ev(Press, 1, KindMouse, 10, 10)
	e.Button = 2
	res := a.Handle(e, square, settings)
	if res.PreventDefault || res.Changed || a.State().Drawing {
		t.Fatalf("secondary press must not change state: %+v", res)
	}
}

func TestPalmRejection(t *testing.T) {
	var a Arbiter
	e := ev(Press, 7, KindTouch, 10, 10)
	e.ContactWidth = 80
	res := a.Handle(e, square, settings)
	if !res.PreventDefault {
		t.Fatal("palm press should suppress the default gesture")
	}
	if a.State().Drawing {
		t.Fatal("palm press must not start drawing")
	}
	if res := a.Handle(ev(Move, 7, KindTouch, 20, 20), square, settings); res.Changed {
		t.Fatal("moves from a rejected palm must be ignored")
	}

	// A small fingertip is accepted, and the threshold is configurable.
	e.ContactWidth = 10
	if res := a.Handle(e, square, settings); !res.Changed {
		t.Fatal("fingertip should draw")
	}
	a.Abandon()
	e.ContactWidth = 30
	strict := settings
	strict.PalmThreshold = 20
	if res := a.Handle(e, square, strict); res.Changed {
		t.Fatal("expected custom threshold to reject contact")
	}

	// Pens are never palm-filtered.
	p := ev(Press, 8, KindPen, 10, 10)
	p.ContactWidth = 100
	if res := a.Handle(p, square, settings); !res.Changed {
		t.Fatal("palm gate applies to touch only")
	}
}

func TestSingleActivePointer(t *testing.T) {
	var a Arbiter
	a.Handle(ev(Press, 1, KindMouse, 10, 10), square, settings)
	if res := a.Handle(ev(Press, 2, KindTouch, 50, 50), square, settings); res.Changed || res.PreventDefault {
		t.Fatalf("concurrent touch should be ignored: %+v", res)
	}
	if res := a.Handle(ev(Move, 2, KindTouch, 60, 60), square, settings); res.Changed {
		t.Fatal("non-owner move must not append")
	}
	if res := a.Handle(ev(Release, 2, KindTouch, 60, 60), square, settings); len(res.Committed) != 0 {
		t.Fatal("non-owner release must not finalize")
	}
	if res := a.Handle(ev(Press, 1, KindMouse, 12, 12), square, settings); res.Changed {
		t.Fatal("repeat press from owner should be ignored")
	}
	if a.InProgress().Len() != 1 {
		t.Fatalf("expected owner stroke untouched, got %d points", a.InProgress().Len())
	}
	if st := a.State(); st.PointerID != 1 || st.Kind != KindMouse {
		t.Fatalf("unexpected owner %+v", st)
	}
}

func TestPenOverride(t *testing.T) {
	var a Arbiter
	a.Handle(ev(Press, 3, KindTouch, 10, 10), square, settings)
	a.Handle(ev(Move, 3, KindTouch, 20, 10), square, settings)

	res := a.Handle(ev(Press, 4, KindPen, 50, 50), square, settings)
	if len(res.Committed) != 1 || res.Committed[0].Len() != 2 {
		t.Fatalf("expected the touch stroke to be finalized, got %+v", res.Committed)
	}
	if st := a.State(); st.PointerID != 4 || st.Kind != KindPen {
		t.Fatalf("expected pen ownership, got %+v", st)
	}

	// A second pen cannot take over from a pen.
	if res := a.Handle(ev(Press, 5, KindPen, 70, 70), square, settings); res.Changed {
		t.Fatal("pen must not override pen")
	}
	// Late events from the old touch are ignored.
	if res := a.Handle(ev(Move, 3, KindTouch, 30, 10), square, settings); res.Changed {
		t.Fatal("old owner should be ignored after override")
	}
}

func TestZeroMovementTap(t *testing.T) {
	var a Arbiter
	a.Handle(ev(Press, 1, KindTouch, 40, 40), square, settings)
	res := a.Handle(ev(Leave, 1, KindTouch, 40, 40), square, settings)
	if len(res.Committed) != 1 || res.Committed[0].Len() != 1 {
		t.Fatalf("tap should commit a one-point stroke, got %+v", res.Committed)
	}
	if a.State().Drawing {
		t.Fatal("expected idle")
	}
}

func TestEraserStyle(t *testing.T) {
	var a Arbiter
	set := settings
	set.Tool = stroke.ToolEraser
	a.Handle(ev(Press, 1, KindMouse, 5, 5), square, set)
	s := a.InProgress()
	if !s.Eraser || s.Width != 20 {
		t.Fatalf("expected eraser stroke, got %+v", s)
	}
}

func TestAbandon(t *testing.T) {
	var a Arbiter
	a.Handle(ev(Press, 1, KindMouse, 5, 5), square, settings)
	if !a.Abandon() {
		t.Fatal("expected abandoned stroke")
	}
	if res := a.Handle(ev(Release, 1, KindMouse, 5, 5), square, settings); len(res.Committed) != 0 {
		t.Fatal("abandoned stroke must not commit")
	}
}

func TestLayoutMapScalesAxesIndependently(t *testing.T) {
	l := Layout{Left: 10, Top: 20, Width: 200, Height: 50, BackingWidth: 100, BackingHeight: 100}
	p := l.Map(110, 45)
	if p.X != 50 || p.Y != 50 {
		t.Fatalf("unexpected mapping %v", p)
	}
	if p := (Layout{}).Map(3, 4); p.X != 3 || p.Y != 4 {
		t.Fatalf("degenerate layout should map 1:1, got %v", p)
	}
}

func TestParseNames(t *testing.T) {
	if k, err := ParseKind("Pen"); err != nil || k != KindPen {
		t.Fatalf("ParseKind: %v %v", k, err)
	}
	if _, err := ParseKind("trackball"); err == nil {
		t.Fatal("expected error")
	}
	if typ, err := ParseType("up"); err != nil || typ != Release {
		t.Fatalf("ParseType: %v %v", typ, err)
	}
	if KindTouch.String() != "touch" || Leave.String() != "leave" {
		t.Fatal("unexpected names")
	}
}
