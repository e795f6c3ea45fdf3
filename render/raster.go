package render

import (
	"image"
	"image/color"

	"github.com/fogleman/gg"
)

// Raster is an off-screen Surface backed by a gg image context.
type Raster struct {
	width, height int
	ratio         float64
	background    color.Color
	dc            *gg.Context
}

// NewRaster creates a raster surface for a container of the given logical
// size at the given device pixel ratio. Nothing is allocated until the
// first Resize.
func NewRaster(width, height int, ratio float64) *Raster {
	return &Raster{width: width, height: height, ratio: ratio, background: color.White}
}

// SetContainerSize changes the logical container size.
func (r *Raster) SetContainerSize(width, height int) {
	r.width, r.height = width, height
}

// SetBackground sets the color Clear fills with.
func (r *Raster) SetBackground(c color.Color) {
	r.background = c
}

// Size implements Surface.
func (r *Raster) Size() (int, int, float64) {
	return r.width, r.height, r.ratio
}

// Resize implements Surface.
func (r *Raster) Resize(width, height int) {
	if r.dc == nil || r.dc.Width() != width || r.dc.Height() != height {
		r.dc = gg.NewContext(width, height)
		return
	}
	r.dc.Identity()
}

// Context implements Surface.
func (r *Raster) Context() (Context, bool) {
	if r.dc == nil {
		return nil, false
	}
	return &rasterContext{dc: r.dc, background: r.background, scale: 1}, true
}

// GG exposes the underlying context so callers can draw on top of the
// connections, for example node boxes and labels.
func (r *Raster) GG() *gg.Context {
	return r.dc
}

// Image returns the painted image, or nil before the first paint.
func (r *Raster) Image() image.Image {
	if r.dc == nil {
		return nil
	}
	return r.dc.Image()
}

// rasterContext adapts gg to Context. gg strokes in device space, so the
// uniform scale is tracked here to keep line widths in user space.
type rasterContext struct {
	dc         *gg.Context
	background color.Color
	scale      float64
	stack      []float64
}

func (c *rasterContext) Save() {
	c.dc.Push()
	c.stack = append(c.stack, c.scale)
}

func (c *rasterContext) Restore() {
	c.dc.Pop()
	if n := len(c.stack); n > 0 {
		c.scale = c.stack[n-1]
		c.stack = c.stack[:n-1]
	}
}

func (c *rasterContext) Translate(x, y float64) {
	c.dc.Translate(x, y)
}

func (c *rasterContext) Scale(sx, sy float64) {
	c.dc.Scale(sx, sy)
	c.scale *= sx
}

func (c *rasterContext) Clear() {
	c.dc.SetColor(c.background)
	c.dc.Clear()
}

func (c *rasterContext) SetLineWidth(w float64) {
	c.dc.SetLineWidth(w * c.scale)
}

func (c *rasterContext) SetStrokeColor(hex string) {
	c.dc.SetHexColor(hex)
}

func (c *rasterContext) StrokeLine(x1, y1, x2, y2 float64) {
	c.dc.DrawLine(x1, y1, x2, y2)
	c.dc.Stroke()
}
