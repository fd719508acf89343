// Package export turns the drawn raster into payloads for the host: data
// URLs delivered after each committed change, and files on request.
package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/example/inkwell/internal/render"
)

// Format is the encoding used for data URLs.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// ParseFormat accepts png, jpeg or jpg.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png", "":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	default:
		return FormatPNG, fmt.Errorf("unknown export format %q", s)
	}
}

// MIME returns the media type of f.
func (f Format) MIME() string {
	if f == FormatJPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// JPEGQuality is used for JPEG data URLs and files.
const JPEGQuality = 90

// Image is delivered to the host after a change. Cleared is set, and
// DataURL left empty, when the drawing was deliberately reset.
type Image struct {
	DataURL string
	Cleared bool
}

// Empty is the signal delivered by a clear.
var Empty = Image{Cleared: true}

// Encode renders img as a base64 data URL.
func Encode(img image.Image, f Format) (string, error) {
	var buf bytes.Buffer
	switch f {
	case FormatJPEG:
		if err := jpeg.Encode(&buf, render.Flatten(img, color.White), &jpeg.Options{Quality: JPEGQuality}); err != nil {
			return "", fmt.Errorf("encode jpeg: %w", err)
		}
	default:
		if err := png.Encode(&buf, img); err != nil {
			return "", fmt.Errorf("encode png: %w", err)
		}
	}
	return "data:" + f.MIME() + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ErrNotDataURL is returned by Decode for strings without a base64 image
// payload.
var ErrNotDataURL = errors.New("export: not a base64 image data URL")

// Decode parses a data URL produced by Encode.
func Decode(dataURL string) (image.Image, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return nil, ErrNotDataURL
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") || !strings.HasPrefix(meta, "image/") {
		return nil, ErrNotDataURL
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data url: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode data url: %w", err)
	}
	return img, nil
}
