// Package render rasterizes strokes onto the pad's backing surface.
//
// Every repaint clears the surface and replays the full stroke list, so the
// pixels are a pure function of the strokes and the surface size.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"github.com/gogpu/gg"

	"github.com/example/inkwell/internal/diag"
	"github.com/example/inkwell/internal/stroke"
)

// Renderer owns the visible surface and a scratch surface used to compute
// eraser coverage. A nil or zero-sized Renderer ignores every call.
type Renderer struct {
	dc      *gg.Context
	scratch *gg.Context
}

// New returns a Renderer with a width x height surface. Non-positive sizes
// yield a detached Renderer that attaches on the first valid Resize.
func New(width, height int) *Renderer {
	r := &Renderer{}
	if width > 0 && height > 0 {
		r.attach(width, height)
	}
	return r
}

func (r *Renderer) attach(width, height int) {
	r.dc = gg.NewContext(width, height)
	r.scratch = gg.NewContext(width, height)
	diag.Logger().Debug("surface attached", "width", width, "height", height)
}

// Attached reports whether there is a surface to draw on.
func (r *Renderer) Attached() bool {
	return r != nil && r.dc != nil
}

// Size returns the backing resolution, or zero when detached.
func (r *Renderer) Size() (int, int) {
	if !r.Attached() {
		return 0, 0
	}
	return r.dc.Width(), r.dc.Height()
}

// Resize changes the backing resolution. Existing pixels are discarded; the
// caller repaints from the stroke list. A non-positive size detaches the
// surface.
func (r *Renderer) Resize(width, height int) error {
	if r == nil {
		return nil
	}
	if width <= 0 || height <= 0 {
		r.detach()
		return nil
	}
	if !r.Attached() {
		r.attach(width, height)
		return nil
	}
	if err := r.dc.Resize(width, height); err != nil {
		return fmt.Errorf("resize surface: %w", err)
	}
	if err := r.scratch.Resize(width, height); err != nil {
		return fmt.Errorf("resize scratch surface: %w", err)
	}
	return nil
}

func (r *Renderer) detach() {
	if r.dc != nil {
		_ = r.dc.Close()
		_ = r.scratch.Close()
	}
	r.dc, r.scratch = nil, nil
}

// Close releases the surfaces.
func (r *Renderer) Close() error {
	if r != nil {
		r.detach()
	}
	return nil
}

// Repaint clears the surface and draws strokes in order. Eraser strokes
// remove coverage from everything drawn before them.
func (r *Renderer) Repaint(strokes []stroke.Stroke) {
	if !r.Attached() {
		return
	}
	r.dc.Clear()
	for i := range strokes {
		s := &strokes[i]
		if len(s.Points) == 0 {
			continue
		}
		if s.Eraser {
			r.erase(s)
			continue
		}
		col, err := stroke.ParseColor(s.Color)
		if err != nil {
			diag.Logger().Debug("stroke colour", "id", s.ID, "err", err)
			col = color.RGBA{A: 0xff}
		}
		r.dc.SetColor(col)
		if err := trace(r.dc, s); err != nil {
			diag.Logger().Debug("paint stroke", "id", s.ID, "err", err)
		}
	}
}

// trace draws s with the context's current colour. A single point becomes a
// dot of diameter s.Width. Longer strokes run through the midpoints of
// successive points using each interior point as a quadratic control point,
// then finish with a straight segment to the last input point.
func trace(dc *gg.Context, s *stroke.Stroke) error {
	pts := s.Points
	if len(pts) == 1 {
		dc.DrawCircle(pts[0].X, pts[0].Y, s.Width/2)
		return dc.Fill()
	}
	dc.SetLineWidth(s.Width)
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.MoveTo(pts[0].X, pts[0].Y)
	for i := 1; i < len(pts)-1; i++ {
		m := pts[i].Mid(pts[i+1])
		dc.QuadraticTo(pts[i].X, pts[i].Y, m.X, m.Y)
	}
	last := pts[len(pts)-1]
	dc.LineTo(last.X, last.Y)
	return dc.Stroke()
}

// erase applies destination-out: the stroke is rasterized opaque on the
// scratch surface and its coverage Sa scales every channel of the visible
// surface by (1-Sa). Pixels are premultiplied, so colour must shrink with
// alpha or later strokes blend the erased colour back in.
func (r *Renderer) erase(s *stroke.Stroke) {
	r.scratch.Clear()
	r.scratch.SetColor(color.White)
	if err := trace(r.scratch, s); err != nil {
		diag.Logger().Debug("erase stroke", "id", s.ID, "err", err)
		return
	}
	w, h := r.dc.Width(), r.dc.Height()
	minX, minY, maxX, maxY := s.Bounds()
	x0 := clamp(int(math.Floor(minX)), 0, w)
	y0 := clamp(int(math.Floor(minY)), 0, h)
	x1 := clamp(int(math.Ceil(maxX))+1, 0, w)
	y1 := clamp(int(math.Ceil(maxY))+1, 0, h)

	cov := r.scratch.ResizeTarget().Data()
	dst := r.dc.ResizeTarget().Data()
	for y := y0; y < y1; y++ {
		row := y * w * 4
		for x := x0; x < x1; x++ {
			i := row + x*4
			a := uint32(cov[i+3])
			if a == 0 {
				continue
			}
			for c := i; c < i+4; c++ {
				dst[c] = uint8((uint32(dst[c])*(255-a) + 127) / 255)
			}
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Image returns a copy of the surface, or nil when detached. The surface is
// premultiplied, which is the layout image.RGBA expects.
func (r *Renderer) Image() *image.RGBA {
	if !r.Attached() {
		return nil
	}
	return r.dc.ResizeTarget().ToImage()
}

// EncodePNG writes the surface as PNG.
func (r *Renderer) EncodePNG(w io.Writer) error {
	img := r.Image()
	if img == nil {
		return ErrDetached
	}
	return png.Encode(w, img)
}

// EncodeJPEG writes the surface as JPEG flattened onto bg.
func (r *Renderer) EncodeJPEG(w io.Writer, quality int, bg color.Color) error {
	img := r.Image()
	if img == nil {
		return ErrDetached
	}
	return jpeg.Encode(w, Flatten(img, bg), &jpeg.Options{Quality: quality})
}
