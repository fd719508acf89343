//go:build linux || freebsd || openbsd || netbsd || dragonfly

package clipboard

import (
	"errors"
	"image"
	"sync"
	"testing"
)

func TestEnsureInitWithoutDisplay(t *testing.T) {
	t.Setenv("DISPLAY", "")
	t.Setenv("WAYLAND_DISPLAY", "")

	initOnce = sync.Once{}
	initErr = nil
	t.Cleanup(func() {
		initOnce = sync.Once{}
		initErr = nil
	})

	err := WriteText("data:image/png;base64,AAAA")
	if !errors.Is(err, errNoDisplay) {
		t.Fatalf("expected errNoDisplay, got %v", err)
	}
	err = WriteImage(image.NewNRGBA(image.Rect(0, 0, 2, 2)))
	if !errors.Is(err, errNoDisplay) {
		t.Fatalf("expected errNoDisplay for image, got %v", err)
	}
}

func TestEmptyPayloadRejectedBeforeInit(t *testing.T) {
	if err := WriteText(""); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
	if err := WriteImage(image.NewNRGBA(image.Rect(0, 0, 0, 0))); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty for empty image, got %v", err)
	}
}
