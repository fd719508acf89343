// Package replay drives a pad from a recorded TOML script so drawings can be
// rendered without a window.
//
// A script is a list of [[event]] tables. Pointer steps carry the fields of
// an input.Event; command steps name an operation:
//
//	[layout]
//	width = 300
//	height = 200
//
//	[[event]]
//	type = "press"
//	pointer = 1
//	x = 10
//	y = 10
//
//	[[event]]
//	type = "stroke"
//	points = [[10, 10], [40, 12], [80, 30]]
//
//	[[event]]
//	type = "undo"
package replay

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/example/inkwell/internal/diag"
	"github.com/example/inkwell/internal/input"
	"github.com/example/inkwell/internal/pad"
	"github.com/example/inkwell/internal/stroke"
)

// Layout is the displayed box events are expressed in. A zero width or
// height uses the pad's backing size.
type Layout struct {
	Left   float64 `toml:"left"`
	Top    float64 `toml:"top"`
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
}

// Step is one scripted event or command.
type Step struct {
	Type          string       `toml:"type"`
	Pointer       int          `toml:"pointer"`
	Kind          string       `toml:"kind"`
	Button        int          `toml:"button"`
	X             float64      `toml:"x"`
	Y             float64      `toml:"y"`
	ContactWidth  float64      `toml:"contact_width"`
	ContactHeight float64      `toml:"contact_height"`
	Tool          string       `toml:"tool"`
	Points        [][2]float64 `toml:"points"`
}

// Script is a parsed replay file.
type Script struct {
	Layout Layout `toml:"layout"`
	Events []Step `toml:"event"`
}

// Stats summarises a replay run.
type Stats struct {
	Steps    int
	Pointer  int
	Commands int
}

// Parse decodes a script and checks every step.
func Parse(r io.Reader) (*Script, error) {
	var s Script
	md, err := toml.NewDecoder(r).Decode(&s)
	if err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		diag.Logger().Warn("replay script has unknown keys", "keys", fmt.Sprint(undecoded))
	}
	for i, st := range s.Events {
		if err := st.validate(); err != nil {
			return nil, fmt.Errorf("event %d: %w", i+1, err)
		}
	}
	return &s, nil
}

// Load reads a script from path.
func Load(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

func (st Step) validate() error {
	switch name(st.Type) {
	case "undo", "redo", "clear":
		return nil
	case "tool":
		_, err := stroke.ParseTool(st.Tool)
		return err
	case "stroke":
		if len(st.Points) == 0 {
			return fmt.Errorf("stroke needs at least one point")
		}
		_, err := input.ParseKind(st.Kind)
		return err
	}
	if _, err := input.ParseType(st.Type); err != nil {
		return err
	}
	_, err := input.ParseKind(st.Kind)
	return err
}

func name(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Run applies every step of s to p in order, then flushes pending work so
// the final export has been delivered when it returns.
func Run(ctx context.Context, p *pad.Pad, s *Script) (Stats, error) {
	var stats Stats
	for i, st := range s.Events {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		n, err := apply(p, layoutFor(p, s.Layout), st)
		if err != nil {
			return stats, fmt.Errorf("event %d: %w", i+1, err)
		}
		stats.Steps++
		if n > 0 {
			stats.Pointer += n
		} else {
			stats.Commands++
		}
	}
	p.Flush()
	diag.Logger().Debug("replay finished", "pad", p.ID(), "steps", stats.Steps, "strokes", len(p.Strokes()))
	return stats, nil
}

func layoutFor(p *pad.Pad, l Layout) input.Layout {
	out := input.Layout{Left: l.Left, Top: l.Top, Width: l.Width, Height: l.Height}
	if out.Width <= 0 || out.Height <= 0 {
		w, h := p.Size()
		out.Width, out.Height = float64(w), float64(h)
	}
	return out
}

// apply runs one step and returns how many pointer events it produced.
func apply(p *pad.Pad, layout input.Layout, st Step) (int, error) {
	switch name(st.Type) {
	case "undo":
		p.Undo()
		return 0, nil
	case "redo":
		p.Redo()
		return 0, nil
	case "clear":
		p.Clear()
		return 0, nil
	case "tool":
		t, err := stroke.ParseTool(st.Tool)
		if err != nil {
			return 0, err
		}
		p.SetTool(t)
		return 0, nil
	case "stroke":
		return drawStroke(p, layout, st)
	}
	ev, err := st.event()
	if err != nil {
		return 0, err
	}
	p.HandlePointer(ev, layout)
	return 1, nil
}

func (st Step) event() (input.Event, error) {
	typ, err := input.ParseType(st.Type)
	if err != nil {
		return input.Event{}, err
	}
	kind, err := input.ParseKind(st.Kind)
	if err != nil {
		return input.Event{}, err
	}
	return input.Event{
		Type:          typ,
		PointerID:     st.Pointer,
		Kind:          kind,
		Button:        st.Button,
		ContactWidth:  st.ContactWidth,
		ContactHeight: st.ContactHeight,
		ClientX:       st.X,
		ClientY:       st.Y,
	}, nil
}

// drawStroke expands a points list into press, moves and release.
func drawStroke(p *pad.Pad, layout input.Layout, st Step) (int, error) {
	kind, err := input.ParseKind(st.Kind)
	if err != nil {
		return 0, err
	}
	ev := input.Event{PointerID: st.Pointer, Kind: kind, Button: st.Button, ContactWidth: st.ContactWidth, ContactHeight: st.ContactHeight}
	for i, pt := range st.Points {
		ev.Type = input.Move
		if i == 0 {
			ev.Type = input.Press
		}
		ev.ClientX, ev.ClientY = pt[0], pt[1]
		p.HandlePointer(ev, layout)
	}
	ev.Type = input.Release
	p.HandlePointer(ev, layout)
	return len(st.Points) + 1, nil
}
