// Package clipboard publishes finished drawings to the system clipboard.
package clipboard

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"os"
	"slices"
)

var errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")

// ErrEmpty is returned when there is nothing to publish.
var ErrEmpty = errors.New("clipboard: nothing to copy")

const targetsTarget = "TARGETS"

// Selection targets offered for each kind of payload.
var (
	textTargets  = []string{"UTF8_STRING", "STRING", "text/plain;charset=utf-8"}
	imageTargets = []string{"image/png"}
)

func checkDisplay() error {
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return errNoDisplay
	}
	return nil
}

func encodePNG(img image.Image) ([]byte, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, ErrEmpty
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// payload is what we currently hold on the clipboard.
type payload struct {
	text []byte
	png  []byte
}

// targets lists the conversions the payload can answer, TARGETS first.
func (p payload) targets() []string {
	out := []string{targetsTarget}
	if len(p.text) > 0 {
		out = append(out, textTargets...)
	}
	if len(p.png) > 0 {
		out = append(out, imageTargets...)
	}
	return out
}

// convert returns the bytes served for a target name.
func (p payload) convert(target string) ([]byte, bool) {
	switch {
	case len(p.text) > 0 && slices.Contains(textTargets, target):
		return p.text, true
	case len(p.png) > 0 && slices.Contains(imageTargets, target):
		return p.png, true
	}
	return nil, false
}
