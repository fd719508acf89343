package appstate

import (
	"image"

	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/touch"

	"github.com/example/inkwell/internal/input"
)

// mousePointer is the pointer id of the system mouse. Touch contacts start
// above it.
const mousePointer = 1

// bindings maps key combinations to window actions.
var bindings = map[KeyShortcut]string{
	{Code: key.CodeZ, Modifiers: key.ModControl}:                "undo",
	{Code: key.CodeY, Modifiers: key.ModControl}:                "redo",
	{Code: key.CodeZ, Modifiers: key.ModControl | key.ModShift}: "redo",
	{Code: key.CodeDeleteForward}:                               "clear",
	{Code: key.CodeDeleteBackspace}:                             "clear",
	{Code: key.CodeP}:                                           "pen",
	{Code: key.CodeE}:                                           "eraser",
	{Code: key.CodeS, Modifiers: key.ModControl}:                "save",
	{Code: key.CodeC, Modifiers: key.ModControl}:                "copy",
	{Code: key.CodeQ}:                                           "quit",
	{Code: key.CodeEscape}:                                      "quit",
}

// keyAction returns the action bound to a key press, if any.
func keyAction(e key.Event) (string, bool) {
	if e.Direction != key.DirPress {
		return "", false
	}
	ks := KeyShortcut{Code: e.Code, Modifiers: e.Modifiers & (key.ModControl | key.ModShift)}
	action, ok := bindings[ks]
	return action, ok
}

// layoutFor describes the canvas box in layout pixels.
func layoutFor(canvas image.Rectangle, scale float64) input.Layout {
	if scale <= 0 {
		scale = 1
	}
	return input.Layout{
		Left:   float64(canvas.Min.X) / scale,
		Top:    float64(canvas.Min.Y) / scale,
		Width:  float64(canvas.Dx()) / scale,
		Height: float64(canvas.Dy()) / scale,
	}
}

// mouseEvent converts a window mouse event. Wheel events and presses of
// buttons shiny cannot name are reported as not applicable.
func mouseEvent(e mouse.Event, scale float64) (input.Event, bool) {
	if scale <= 0 {
		scale = 1
	}
	ev := input.Event{
		PointerID: mousePointer,
		Kind:      input.KindMouse,
		Button:    int(e.Button) - 1,
		ClientX:   float64(e.X) / scale,
		ClientY:   float64(e.Y) / scale,
	}
	switch e.Direction {
	case mouse.DirPress:
		if e.Button <= mouse.ButtonNone {
			return ev, false
		}
		ev.Type = input.Press
	case mouse.DirRelease:
		ev.Type = input.Release
	case mouse.DirNone:
		ev.Type = input.Move
	default:
		return ev, false
	}
	return ev, true
}

// touchEvent converts a touch contact. Each sequence is its own pointer.
func touchEvent(e touch.Event, scale float64) input.Event {
	if scale <= 0 {
		scale = 1
	}
	ev := input.Event{
		PointerID: int(e.Sequence) + mousePointer + 1,
		Kind:      input.KindTouch,
		Button:    input.PrimaryButton,
		ClientX:   float64(e.X) / scale,
		ClientY:   float64(e.Y) / scale,
	}
	switch e.Type {
	case touch.TypeBegin:
		ev.Type = input.Press
	case touch.TypeMove:
		ev.Type = input.Move
	default:
		ev.Type = input.Release
	}
	return ev
}
