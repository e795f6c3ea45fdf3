package canvas

import (
	"math"

	"nodeboard/render"
)

// Surface exposes a MatrixCanvas as a render.Surface. The container is
// measured in cells and reported in logical pixels.
type Surface struct {
	cols, rows int
	ratio      float64
	canvas     *MatrixCanvas
	ascii      bool
}

// NewSurface creates a surface for a container of cols by rows cells.
// The canvas is allocated by the first Resize.
func NewSurface(cols, rows int) *Surface {
	return &Surface{cols: cols, rows: rows, ratio: 1}
}

// SetContainerCells changes the container size.
func (s *Surface) SetContainerCells(cols, rows int) {
	s.cols, s.rows = cols, rows
}

// SetPixelRatio sets the device pixel ratio reported by Size.
func (s *Surface) SetPixelRatio(ratio float64) {
	if ratio > 0 {
		s.ratio = ratio
	}
}

// SetASCII makes strokes use plain ASCII glyphs.
func (s *Surface) SetASCII(ascii bool) {
	s.ascii = ascii
	if s.canvas != nil {
		s.canvas.SetASCII(ascii)
	}
}

// Size implements render.Surface.
func (s *Surface) Size() (int, int, float64) {
	return s.cols * CellWidth, s.rows * CellHeight, s.ratio
}

// Resize implements render.Surface. The canvas keeps one cell per
// CellWidth by CellHeight logical pixels, whatever the device ratio.
func (s *Surface) Resize(width, height int) {
	cellW, cellH := s.deviceCell()
	cols := int(math.Ceil(float64(width) / cellW))
	rows := int(math.Ceil(float64(height) / cellH))
	if s.canvas != nil {
		if w, h := s.canvas.Size(); w == cols && h == rows {
			s.canvas.Clear()
			return
		}
	}
	s.canvas = NewMatrixCanvas(cols, rows)
	if s.canvas != nil {
		s.canvas.SetASCII(s.ascii)
	}
}

// Context implements render.Surface.
func (s *Surface) Context() (render.Context, bool) {
	if s.canvas == nil {
		return nil, false
	}
	return &cellContext{surface: s, m: identity}, true
}

// Canvas returns the backing canvas, or nil before the first Resize.
func (s *Surface) Canvas() *MatrixCanvas {
	return s.canvas
}

func (s *Surface) deviceCell() (float64, float64) {
	ratio := s.ratio
	if ratio <= 0 {
		ratio = 1
	}
	return CellWidth * ratio, CellHeight * ratio
}

// affine is a scale followed by a translation.
type affine struct {
	sx, sy, tx, ty float64
}

var identity = affine{sx: 1, sy: 1}

func (a affine) apply(x, y float64) (float64, float64) {
	return x*a.sx + a.tx, y*a.sy + a.ty
}

// cellContext strokes into the surface canvas. Cells have a fixed stroke
// thickness, so line width is ignored.
type cellContext struct {
	surface *Surface
	m       affine
	stack   []affine
	color   string
}

func (c *cellContext) Save() {
	c.stack = append(c.stack, c.m)
}

func (c *cellContext) Restore() {
	if n := len(c.stack); n > 0 {
		c.m = c.stack[n-1]
		c.stack = c.stack[:n-1]
	}
}

func (c *cellContext) Translate(x, y float64) {
	c.m.tx += x * c.m.sx
	c.m.ty += y * c.m.sy
}

func (c *cellContext) Scale(sx, sy float64) {
	c.m.sx *= sx
	c.m.sy *= sy
}

func (c *cellContext) Clear() {
	c.surface.canvas.Clear()
}

func (c *cellContext) SetLineWidth(float64) {}

func (c *cellContext) SetStrokeColor(hex string) {
	c.color = hex
}

func (c *cellContext) StrokeLine(x1, y1, x2, y2 float64) {
	cellW, cellH := c.surface.deviceCell()
	dx1, dy1 := c.m.apply(x1, y1)
	dx2, dy2 := c.m.apply(x2, y2)
	c.surface.canvas.DrawLine(
		int(math.Floor(dx1/cellW)), int(math.Floor(dy1/cellH)),
		int(math.Floor(dx2/cellW)), int(math.Floor(dy2/cellH)),
		c.color,
	)
}
