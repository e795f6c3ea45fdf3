package canvas

import (
	"math"

	"nodeboard/diagram"
)

// Rect is a cell rectangle.
type Rect struct {
	X, Y, Width, Height int
}

// Contains reports whether a cell lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// NodeRect returns the cells a node covers on screen under pan and zoom.
// Boxes are at least three cells each way so the label row always exists.
func NodeRect(n diagram.Node, pan diagram.Point, zoom float64) Rect {
	if zoom <= 0 {
		zoom = 1
	}
	left := pan.X + n.X*zoom
	top := pan.Y + n.Y*zoom
	right := left + diagram.NodeWidth*zoom
	bottom := top + diagram.NodeHeight*zoom

	r := Rect{
		X: int(math.Floor(left / CellWidth)),
		Y: int(math.Floor(top / CellHeight)),
	}
	r.Width = max(int(math.Ceil(right/CellWidth))-r.X, 3)
	r.Height = max(int(math.Ceil(bottom/CellHeight))-r.Y, 3)
	return r
}

// CellCenter returns the logical pixel at the middle of a cell.
func CellCenter(x, y int) diagram.Point {
	return diagram.Point{
		X: float64(x)*CellWidth + CellWidth/2,
		Y: float64(y)*CellHeight + CellHeight/2,
	}
}

// DrawNode draws a node as a box in its color with its label centered on
// the middle row.
func (c *MatrixCanvas) DrawNode(n diagram.Node, pan diagram.Point, zoom float64, style BoxStyle) Rect {
	r := NodeRect(n, pan, zoom)
	c.DrawBox(r.X, r.Y, r.Width, r.Height, style, n.Color)

	label := FitText(n.Text, r.Width-2)
	row := r.Y + r.Height/2
	c.DrawText(r.X+1+CenterOffset(label, r.Width-2), row, label, "")
	return r
}

// DrawNodes draws every node in order, so later nodes cover earlier ones.
func (c *MatrixCanvas) DrawNodes(nodes []diagram.Node, pan diagram.Point, zoom float64, style BoxStyle) {
	for _, n := range nodes {
		c.DrawNode(n, pan, zoom, style)
	}
}
