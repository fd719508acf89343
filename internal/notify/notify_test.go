package notify

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/inkwell/internal/platform"
)

type sent struct {
	title, body string
	opts        platform.Options
	iconExisted bool
}

func capture(t *testing.T) *[]sent {
	t.Helper()
	var got []sent
	original := sendFn
	sendFn = func(title, body string, opts platform.Options) error {
		_, err := os.Stat(opts.IconPath)
		got = append(got, sent{title, body, opts, opts.IconPath != "" && err == nil})
		return nil
	}
	t.Cleanup(func() { sendFn = original })
	return &got
}

func TestDisabledEventsAreSilent(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Save("a.png")
	n.Copy("", nil)
	if len(*got) != 0 {
		t.Fatalf("expected no notifications, got %v", *got)
	}
	var nilNotifier *Notifier
	nilNotifier.Save("a.png")
}

func TestSaveUsesAbsolutePathAndIcon(t *testing.T) {
	got := capture(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "drawing.png")
	if err := os.WriteFile(path, []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}
	n := New(DefaultPreferences())
	n.Enable(EventSave, true)
	n.Save(path)
	if len(*got) != 1 {
		t.Fatalf("expected one notification, got %d", len(*got))
	}
	s := (*got)[0]
	if s.title != "Inkwell" || s.body != "Saved "+path || s.opts.IconPath != path {
		t.Fatalf("unexpected notification %+v", s)
	}
}

func TestCopyPreviewIsRemoved(t *testing.T) {
	got := capture(t)
	n := New(DefaultPreferences())
	n.Enable(EventCopy, true)
	n.Copy("", image.NewNRGBA(image.Rect(0, 0, 4, 4)))
	if len(*got) != 1 {
		t.Fatalf("expected one notification, got %d", len(*got))
	}
	s := (*got)[0]
	if s.body != "Copied drawing to clipboard" {
		t.Fatalf("unexpected body %q", s.body)
	}
	if !s.iconExisted {
		t.Fatal("preview should exist while the notification is sent")
	}
	if _, err := os.Stat(s.opts.IconPath); !os.IsNotExist(err) {
		t.Fatalf("preview should be removed afterwards, stat err %v", err)
	}
}

func TestLoadPreferences(t *testing.T) {
	t.Setenv("INKWELL_NOTIFY_TITLE", "Practice")
	t.Setenv("INKWELL_NOTIFY_SAVE_TEXT", "Wrote %s")
	prefs := LoadPreferences()
	if prefs.Title != "Practice" || prefs.Events[EventSave].Template != "Wrote %s" {
		t.Fatalf("unexpected prefs %+v", prefs)
	}
	if prefs.Events[EventCopy].Template != DefaultPreferences().Events[EventCopy].Template {
		t.Fatal("copy template should keep its default")
	}
}
