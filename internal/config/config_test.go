package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/inkwell/internal/export"
)

func TestParse(t *testing.T) {
	input := `
[canvas]
width = 320
height = 240
fluid = true

[pen]
color = "navy"
width = 6.5

[input]
palm_threshold = 55

[export]
format = "jpeg"
delay = "150ms"
save_dir = "/tmp/practice"

[notify]
save = true
copy = false
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if cfg.Canvas.Width != 320 || cfg.Canvas.Height != 240 || !cfg.Canvas.Fluid {
		t.Errorf("unexpected canvas %+v", cfg.Canvas)
	}
	if cfg.Pen.Color != "navy" || cfg.Pen.Width != 6.5 {
		t.Errorf("unexpected pen %+v", cfg.Pen)
	}
	if cfg.Eraser.Width != 20 {
		t.Errorf("expected default eraser width, got %v", cfg.Eraser.Width)
	}
	if cfg.Input.PalmThreshold != 55 {
		t.Errorf("expected palm threshold 55, got %v", cfg.Input.PalmThreshold)
	}
	if cfg.Export.Delay.Duration != 150*time.Millisecond {
		t.Errorf("expected 150ms delay, got %v", cfg.Export.Delay)
	}
	if cfg.Export.SaveDir != "/tmp/practice" {
		t.Errorf("Expected save_dir '/tmp/practice', got '%s'", cfg.Export.SaveDir)
	}
	if !cfg.Notify.Save {
		t.Error("Expected notify.save to be true")
	}
	if cfg.Notify.Copy {
		t.Error("Expected notify.copy to be false")
	}
}

func TestParseInvalid(t *testing.T) {
	if _, err := Parse(strings.NewReader("[export]\ndelay = \"soon\"\n")); err == nil {
		t.Fatal("expected error for invalid duration")
	}
	if _, err := Parse(strings.NewReader("[canvas\n")); err == nil {
		t.Fatal("expected syntax error")
	}
}

func TestCircular(t *testing.T) {
	input := `[canvas]
width = 800
height = 600
scale = 2.0

[pen]
color = "#336699"
width = 3.0

[export]
format = "png"
delay = "1s"
title = "Hiragana"

[notify]
save = true
copy = true
`
	// 1. Parse initial input
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Initial parse failed: %v", err)
	}

	// 2. Generate string representation
	generated := cfg.String()

	// 3. Parse generated string
	cfg2, err := Parse(strings.NewReader(generated))
	if err != nil {
		t.Fatalf("Circular parse failed: %v\n%s", err, generated)
	}

	// 4. Compare
	if *cfg != *cfg2 {
		t.Errorf("Config mismatch:\n%+v\n%+v", cfg, cfg2)
	}
}

func TestPadConfig(t *testing.T) {
	cfg := New()
	cfg.Canvas.Fluid = true
	cfg.Export.Format = "jpg"
	pc, err := cfg.PadConfig(1.5)
	if err != nil {
		t.Fatalf("PadConfig: %v", err)
	}
	if !pc.Fluid || pc.DeviceScale != 1.5 || pc.ExportFormat != export.FormatJPEG {
		t.Fatalf("unexpected pad config %+v", pc)
	}

	cfg.Canvas.Scale = 3
	if pc, _ := cfg.PadConfig(1.5); pc.DeviceScale != 3 {
		t.Fatalf("file scale should win, got %v", pc.DeviceScale)
	}

	cfg.Pen.Width = 0
	if _, err := cfg.PadConfig(1); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("INKWELL_CANVAS", "fluid")
	t.Setenv("INKWELL_PEN_COLOR", "#ff0000")
	t.Setenv("INKWELL_PEN_WIDTH", "7")
	t.Setenv("INKWELL_EXPORT_FORMAT", "jpeg")
	t.Setenv("INKWELL_SAVE_DIR", "/srv/out")
	cfg := New()
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if !cfg.Canvas.Fluid || cfg.Pen.Color != "#ff0000" || cfg.Pen.Width != 7 || cfg.Export.Format != "jpeg" || cfg.Export.SaveDir != "/srv/out" {
		t.Fatalf("env not applied: %+v", cfg)
	}

	t.Setenv("INKWELL_PEN_WIDTH", "wide")
	if err := cfg.ApplyEnv(); err == nil {
		t.Fatal("expected error for bad width")
	}
}

func TestLoaderPrefersOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	override := filepath.Join(dir, "override.toml")
	if err := os.WriteFile(override, []byte("[pen]\nwidth = 9.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	xdg := DefaultPath()
	if err := os.MkdirAll(filepath.Dir(xdg), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(xdg, []byte("[pen]\nwidth = 2.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := NewLoader("1.0.0", override).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pen.Width != 9 {
		t.Fatalf("expected override file, got width %v", cfg.Pen.Width)
	}

	cfg, err = NewLoader("1.0.0", filepath.Join(dir, "missing.toml")).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pen.Width != 2 {
		t.Fatalf("expected XDG file, got width %v", cfg.Pen.Width)
	}
}

func TestLoaderDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	l := NewLoader("1.0.0", "")
	if p := l.GetConfigPath(); p != "" {
		t.Fatalf("expected no config path, got %q", p)
	}
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Pen.Width != New().Pen.Width {
		t.Fatal("expected defaults")
	}
}
