package replay

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/inkwell/internal/export"
	"github.com/example/inkwell/internal/pad"
)

func newPad(t *testing.T) (*pad.Pad, *[]export.Image) {
	t.Helper()
	cfg := pad.DefaultConfig()
	cfg.Width, cfg.Height = 100, 100
	cfg.ExportDelay = time.Hour
	var (
		mu  sync.Mutex
		got []export.Image
	)
	p, err := pad.New(cfg, pad.WithOnDrawEnd(func(img export.Image) {
		mu.Lock()
		got = append(got, img)
		mu.Unlock()
	}))
	if err != nil {
		t.Fatalf("pad.New: %v", err)
	}
	t.Cleanup(func() { _ = p.Close() })
	return p, &got
}

const basic = `
[[event]]
type = "press"
pointer = 1
x = 10
y = 10

[[event]]
type = "move"
pointer = 1
x = 50
y = 50

[[event]]
type = "release"
pointer = 1
`

func TestRunBasicStroke(t *testing.T) {
	s, err := Parse(strings.NewReader(basic))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p, got := newPad(t)
	stats, err := Run(context.Background(), p, s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Steps != 3 || stats.Pointer != 3 || stats.Commands != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	strokes := p.Strokes()
	if len(strokes) != 1 || len(strokes[0].Points) != 2 {
		t.Fatalf("expected one two-point stroke, got %+v", strokes)
	}
	if len(*got) != 1 || !strings.HasPrefix((*got)[0].DataURL, "data:image/png;base64,") {
		t.Fatalf("expected one PNG export after flush, got %+v", *got)
	}
}

func TestRunCommandsAndStrokeShorthand(t *testing.T) {
	script := `
[layout]
width = 50
height = 50

[[event]]
type = "stroke"
points = [[5, 5], [10, 10], [20, 5]]

[[event]]
type = "tool"
tool = "eraser"

[[event]]
type = "stroke"
pointer = 2
kind = "pen"
points = [[10, 10]]

[[event]]
type = "undo"

[[event]]
type = "redo"
`
	s, err := Parse(strings.NewReader(script))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p, _ := newPad(t)
	stats, err := Run(context.Background(), p, s)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.Commands != 3 {
		t.Fatalf("expected 3 commands, got %+v", stats)
	}
	strokes := p.Strokes()
	if len(strokes) != 2 {
		t.Fatalf("expected 2 strokes, got %d", len(strokes))
	}
	if strokes[0].Eraser || !strokes[1].Eraser {
		t.Fatalf("unexpected tools %+v", strokes)
	}
	// A 50x50 layout over a 100x100 surface doubles both axes.
	if pt := strokes[0].Points[2]; pt.X != 40 || pt.Y != 10 {
		t.Fatalf("expected mapped point (40,10), got %+v", pt)
	}
}

func TestRunClear(t *testing.T) {
	s, err := Parse(strings.NewReader(basic + "\n[[event]]\ntype = \"clear\"\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p, got := newPad(t)
	if _, err := Run(context.Background(), p, s); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(p.Strokes()) != 0 {
		t.Fatal("clear should drop every stroke")
	}
	if len(*got) != 1 || !(*got)[0].Cleared {
		t.Fatalf("expected only the empty signal, got %+v", *got)
	}
}

func TestParseRejectsBadSteps(t *testing.T) {
	for _, script := range []string{
		"[[event]]\ntype = \"jump\"\n",
		"[[event]]\ntype = \"press\"\nkind = \"hoof\"\n",
		"[[event]]\ntype = \"tool\"\ntool = \"brush\"\n",
		"[[event]]\ntype = \"stroke\"\n",
		"[[event]\n",
	} {
		if _, err := Parse(strings.NewReader(script)); err == nil {
			t.Errorf("expected error for %q", script)
		}
	}
}

func TestRunHonoursContext(t *testing.T) {
	s, err := Parse(strings.NewReader(basic))
	if err != nil {
		t.Fatal(err)
	}
	p, _ := newPad(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, p, s); err == nil {
		t.Fatal("expected context error")
	}
	if len(p.Strokes()) != 0 {
		t.Fatal("no step should run after cancellation")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.toml")
	if err := os.WriteFile(path, []byte(basic), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(s.Events))
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
