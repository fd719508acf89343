package appstate

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"time"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/mobile/event/key"

	"github.com/example/inkwell/internal/diag"
	"github.com/example/inkwell/internal/render"
	"github.com/example/inkwell/internal/stroke"
)

const (
	toolbarHeight = 24
	statusHeight  = 24
	buttonWidth   = 64
	margin        = 8
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

var (
	chromeColor  = color.RGBA{220, 220, 220, 255}
	deskColor    = color.RGBA{160, 160, 160, 255}
	paperColor   = color.RGBA{255, 255, 255, 255}
	guideColor   = color.RGBA{200, 215, 240, 255}
	messageFace  font.Face
	messageShown = 2 * time.Second
)

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		diag.Logger().Error("parse font", "err", err)
		messageFace = basicfont.Face7x13
		return
	}
	messageFace, err = opentype.NewFace(f, &opentype.FaceOptions{Size: 32, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		diag.Logger().Error("font face", "err", err)
		messageFace = basicfont.Face7x13
	}
}

// KeyShortcut is one key combination bound to an action.
type KeyShortcut struct {
	Rune      rune
	Code      key.Code
	Modifiers key.Modifiers
}

// KeyboardShortcuts returns the shortcuts associated with an action.
type KeyboardShortcuts interface {
	KeyboardShortcuts() []KeyShortcut
}

// shortcutList is a helper to easily satisfy the KeyboardShortcuts interface.
type shortcutList []KeyShortcut

func (s shortcutList) KeyboardShortcuts() []KeyShortcut { return []KeyShortcut(s) }

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// Button represents an interactive UI element.
// Activate performs the button's action when clicked.
type Button interface {
	Draw(dst *image.RGBA, state ButtonState)
	Rect() image.Rectangle
	SetRect(r image.Rectangle)
	Activate()
}

// CacheButton wraps another Button and caches its rendered states.
type CacheButton struct {
	Button
	cache [3]*image.RGBA
}

var _ Button = (*CacheButton)(nil)

func (cb *CacheButton) Draw(dst *image.RGBA, state ButtonState) {
	if cb.cache[state] == nil {
		rect := cb.Button.Rect()
		img := image.NewRGBA(rect)
		cb.Button.Draw(img, state)
		cb.cache[state] = img
	}
	draw.Draw(dst, cb.Button.Rect(), cb.cache[state], cb.Button.Rect().Min, draw.Src)
}

func (cb *CacheButton) Rect() image.Rectangle { return cb.Button.Rect() }

func (cb *CacheButton) SetRect(r image.Rectangle) {
	if r != cb.Button.Rect() {
		cb.Button.SetRect(r)
		cb.cache = [3]*image.RGBA{}
	}
}

func (cb *CacheButton) Activate() { cb.Button.Activate() }

// ActionButton is a labelled toolbar button that runs a named action.
type ActionButton struct {
	label  string
	action string
	tool   *stroke.Tool
	rect   image.Rectangle
	// trigger is called with action when the button is activated.
	trigger func(string)
}

func (b *ActionButton) Draw(dst *image.RGBA, state ButtonState) {
	c := color.RGBA{200, 200, 200, 255}
	switch state {
	case StateHover:
		c = color.RGBA{180, 180, 180, 255}
	case StatePressed:
		c = color.RGBA{150, 150, 150, 255}
	}
	draw.Draw(dst, b.rect, &image.Uniform{c}, image.Point{}, draw.Src)
	drawRect(dst, b.rect, color.Black, 1)
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13,
		Dot: fixed.P(b.rect.Min.X+4, b.rect.Min.Y+16)}
	d.DrawString(b.label)
}

func (b *ActionButton) Rect() image.Rectangle { return b.rect }

func (b *ActionButton) SetRect(r image.Rectangle) { b.rect = r }

func (b *ActionButton) Activate() {
	if b.trigger != nil {
		b.trigger(b.action)
	}
}

func newToolbar(trigger func(string)) []*CacheButton {
	pen, eraser := stroke.ToolPen, stroke.ToolEraser
	buttons := []*ActionButton{
		{label: "P:Pen", action: "pen", tool: &pen},
		{label: "E:Eraser", action: "eraser", tool: &eraser},
		{label: "^Z:Undo", action: "undo"},
		{label: "^Y:Redo", action: "redo"},
		{label: "Del:Clear", action: "clear"},
		{label: "^S:Save", action: "save"},
		{label: "^C:Copy", action: "copy"},
	}
	out := make([]*CacheButton, 0, len(buttons))
	for _, b := range buttons {
		b.trigger = trigger
		out = append(out, &CacheButton{Button: b})
	}
	return out
}

func drawToolbar(dst *image.RGBA, buttons []*CacheButton, tool stroke.Tool, hover int) {
	draw.Draw(dst, image.Rect(0, 0, dst.Bounds().Dx(), toolbarHeight), &image.Uniform{chromeColor}, image.Point{}, draw.Src)
	x := 0
	for i, cb := range buttons {
		cb.SetRect(image.Rect(x, 0, x+buttonWidth, toolbarHeight))
		state := StateDefault
		if ab, ok := cb.Button.(*ActionButton); ok && ab.tool != nil && *ab.tool == tool {
			state = StatePressed
		} else if i == hover {
			state = StateHover
		}
		cb.Draw(dst, state)
		x += buttonWidth
	}
}

func drawStatus(dst *image.RGBA, width, height int, status string) {
	rect := image.Rect(0, height-statusHeight, width, height)
	draw.Draw(dst, rect, &image.Uniform{chromeColor}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: basicfont.Face7x13,
		Dot: fixed.P(4, height-statusHeight+16)}
	d.DrawString(status)
}

func drawRect(img *image.RGBA, rect image.Rectangle, col color.Color, thick int) {
	u := &image.Uniform{col}
	draw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+thick), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Max.Y-thick, rect.Max.X, rect.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+thick, rect.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(rect.Max.X-thick, rect.Min.Y, rect.Max.X, rect.Max.Y), u, image.Point{}, draw.Src)
}

// drawGuides rules the paper with writing lines every 64 device pixels of
// the displayed box.
func drawGuides(dst *image.RGBA, r image.Rectangle) {
	for y := r.Min.Y + 64; y < r.Max.Y; y += 64 {
		draw.Draw(dst, image.Rect(r.Min.X, y, r.Max.X, y+1), &image.Uniform{guideColor}, image.Point{}, draw.Src)
	}
}

// canvasRect is the box the drawing occupies inside a window of the given
// size. Fluid canvases fill the space between the bars; fixed ones are
// stretched into the same box, so both axes may scale differently.
func canvasRect(winW, winH int) image.Rectangle {
	maxX, maxY := winW-margin, winH-statusHeight-margin
	// image.Rect swaps inverted corners, so check before building it.
	if maxX <= margin || maxY <= toolbarHeight+margin {
		return image.Rectangle{}
	}
	return image.Rect(margin, toolbarHeight+margin, maxX, maxY)
}

func statusLine(tool stroke.Tool, strokes, redo int, lastExport string) string {
	s := fmt.Sprintf("Tool: %s  Strokes: %d  Redo: %d", tool, strokes, redo)
	if lastExport != "" {
		s += "  Export: " + lastExport
	}
	return s + "  Q:quit"
}

type paintState struct {
	width, height int
	canvas        image.Rectangle
	drawing       *image.RGBA
	tool          stroke.Tool
	toolbar       []*CacheButton
	hover         int
	status        string
	message       string
	messageUntil  time.Time
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.width, st.height})
	if err != nil {
		diag.Logger().Error("new buffer", "err", err)
		return
	}
	defer b.Release()
	dst := b.RGBA()

	draw.Draw(dst, dst.Bounds(), &image.Uniform{deskColor}, image.Point{}, draw.Src)
	if !st.canvas.Empty() {
		draw.Draw(dst, st.canvas, &image.Uniform{paperColor}, image.Point{}, draw.Src)
		drawGuides(dst, st.canvas)
		if st.drawing != nil && !st.drawing.Bounds().Empty() {
			render.Scale(dst, st.canvas, st.drawing)
		}
	}
	if ctx.Err() != nil {
		return
	}

	drawToolbar(dst, st.toolbar, st.tool, st.hover)
	drawStatus(dst, st.width, st.height, st.status)

	if st.message != "" && time.Now().Before(st.messageUntil) {
		d := &font.Drawer{Dst: dst, Src: image.Black, Face: messageFace}
		wmsg := d.MeasureString(st.message).Ceil()
		ascent := messageFace.Metrics().Ascent.Ceil()
		descent := messageFace.Metrics().Descent.Ceil()
		px := (st.width - wmsg) / 2
		py := (st.height-ascent-descent)/2 + ascent
		rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
		draw.Draw(dst, rect, &image.Uniform{color.RGBA{255, 255, 255, 230}}, image.Point{}, draw.Over)
		drawRect(dst, rect, color.Black, 2)
		d.Dot = fixed.P(px, py)
		d.DrawString(st.message)
	}

	if ctx.Err() != nil {
		return
	}
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}
