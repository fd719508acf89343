package render

import (
	"errors"
	"image"
	"image/color"

	xdraw "golang.org/x/image/draw"
)

// ErrDetached is returned when encoding a renderer without a surface.
var ErrDetached = errors.New("render: no drawable surface")

// Flatten composites img over an opaque background, for formats without
// transparency.
func Flatten(img image.Image, bg color.Color) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(out, out.Bounds(), image.NewUniform(bg), image.Point{}, xdraw.Src)
	xdraw.Draw(out, out.Bounds(), img, b.Min, xdraw.Over)
	return out
}

// Scale draws src stretched into dst's rect r. Non-uniform scaling is
// allowed.
func Scale(dst xdraw.Image, r image.Rectangle, src image.Image) {
	xdraw.ApproxBiLinear.Scale(dst, r, src, src.Bounds(), xdraw.Over, nil)
}
