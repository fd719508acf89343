// Package stroke holds the vector model drawn by the pad: points, strokes and
// the tool that styles newly started strokes.
package stroke

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/colornames"
)

// Point is a coordinate in backing-surface pixels.
type Point struct {
	X, Y float64
}

// Mid returns the point halfway between p and q.
func (p Point) Mid(q Point) Point {
	return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// Tool selects how newly started strokes are styled.
type Tool int

const (
	ToolPen Tool = iota
	ToolEraser
)

func (t Tool) String() string {
	switch t {
	case ToolPen:
		return "pen"
	case ToolEraser:
		return "eraser"
	default:
		return fmt.Sprintf("tool(%d)", int(t))
	}
}

// ParseTool accepts "pen" or "eraser".
func ParseTool(s string) (Tool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pen", "":
		return ToolPen, nil
	case "eraser", "erase":
		return ToolEraser, nil
	default:
		return ToolPen, fmt.Errorf("unknown tool %q", s)
	}
}

// EraseColor is the placeholder colour carried by eraser strokes. The
// renderer only uses its coverage.
const EraseColor = "#000000"

// Style describes the pen and eraser used for new strokes.
type Style struct {
	Color       string
	Width       float64
	EraserWidth float64
}

// Stroke is an ordered run of points drawn by one pointer.
type Stroke struct {
	ID     string
	Points []Point
	Color  string
	Width  float64
	Eraser bool
}

// New starts a stroke at first using the style for tool.
func New(tool Tool, style Style, first Point) *Stroke {
	s := &Stroke{
		ID:     uuid.NewString(),
		Points: []Point{first},
		Color:  style.Color,
		Width:  style.Width,
	}
	if tool == ToolEraser {
		s.Eraser = true
		s.Color = EraseColor
		s.Width = style.EraserWidth
	}
	return s
}

// Append records the next input point.
func (s *Stroke) Append(p Point) {
	s.Points = append(s.Points, p)
}

// Len reports the number of recorded points.
func (s *Stroke) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

// Clone returns a copy that shares no point storage with s.
func (s Stroke) Clone() Stroke {
	s.Points = append([]Point(nil), s.Points...)
	return s
}

// Bounds returns the box covered by the stroke including its width.
// An empty stroke yields the zero box.
func (s Stroke) Bounds() (minX, minY, maxX, maxY float64) {
	if len(s.Points) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, p := range s.Points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	pad := s.Width/2 + 1
	return minX - pad, minY - pad, maxX + pad, maxY + pad
}

// ParseColor resolves a colour identifier. It accepts #rgb, #rrggbb,
// #rrggbbaa and SVG colour names such as "navy".
func ParseColor(id string) (color.RGBA, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return color.RGBA{A: 0xff}, nil
	}
	if !strings.HasPrefix(id, "#") {
		if c, ok := colornames.Map[strings.ToLower(id)]; ok {
			return c, nil
		}
		return color.RGBA{}, fmt.Errorf("unknown colour %q", id)
	}
	hex := id[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", id)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q: %w", id, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
