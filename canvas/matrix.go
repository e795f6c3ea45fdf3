package canvas

import (
	"errors"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Common errors
var (
	ErrOutOfBounds = errors.New("position out of bounds")
	ErrInvalidSize = errors.New("invalid canvas size")
)

// continuation fills the cell to the right of a wide character.
const continuation = '\x00'

// BoxStyle holds the glyphs for a rectangle outline.
type BoxStyle struct {
	TopLeft, TopRight, BottomLeft, BottomRight rune
	Horizontal, Vertical                       rune
}

// Box styles.
var (
	RoundedBox = BoxStyle{'╭', '╮', '╰', '╯', '─', '│'}
	HeavyBox   = BoxStyle{'┏', '┓', '┗', '┛', '━', '┃'}
	ASCIIBox   = BoxStyle{'+', '+', '+', '+', '-', '|'}
)

// MatrixCanvas is a grid of runes with an optional color per cell.
//
// Coordinates are in cells, origin top-left, y growing downward. Drawing
// clips silently at the edges. MatrixCanvas is not safe for concurrent use.
type MatrixCanvas struct {
	runes  [][]rune
	colors [][]string
	width  int
	height int
	merger *CharacterMerger
	ascii  bool
}

// NewMatrixCanvas creates a blank canvas. It returns nil for a
// non-positive size.
func NewMatrixCanvas(width, height int) *MatrixCanvas {
	if width <= 0 || height <= 0 {
		return nil
	}
	c := &MatrixCanvas{
		runes:  make([][]rune, height),
		colors: make([][]string, height),
		width:  width,
		height: height,
		merger: NewCharacterMerger(),
	}
	for y := range c.runes {
		c.runes[y] = make([]rune, width)
		c.colors[y] = make([]string, width)
	}
	c.Clear()
	return c
}

// SetASCII switches line glyphs to plain ASCII.
func (c *MatrixCanvas) SetASCII(ascii bool) {
	c.ascii = ascii
}

// Size returns the width and height in cells.
func (c *MatrixCanvas) Size() (width, height int) {
	return c.width, c.height
}

func (c *MatrixCanvas) inBounds(x, y int) bool {
	return x >= 0 && x < c.width && y >= 0 && y < c.height
}

// Get returns the rune at a cell, or a space outside the canvas.
func (c *MatrixCanvas) Get(x, y int) rune {
	if !c.inBounds(x, y) {
		return ' '
	}
	return c.runes[y][x]
}

// ColorAt returns the hex color of a cell, or "" when it has none.
func (c *MatrixCanvas) ColorAt(x, y int) string {
	if !c.inBounds(x, y) {
		return ""
	}
	return c.colors[y][x]
}

// Set merges a glyph into a cell.
func (c *MatrixCanvas) Set(x, y int, r rune) error {
	if !c.inBounds(x, y) {
		return ErrOutOfBounds
	}
	c.runes[y][x] = c.merger.Merge(c.runes[y][x], r)
	return nil
}

// put overwrites a cell, ignoring positions outside the canvas.
func (c *MatrixCanvas) put(x, y int, r rune, color string) {
	if c.inBounds(x, y) {
		c.runes[y][x] = r
		c.colors[y][x] = color
	}
}

// Clear resets every cell to an uncolored space.
func (c *MatrixCanvas) Clear() {
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			c.runes[y][x] = ' '
			c.colors[y][x] = ""
		}
	}
}

// Lines returns each row as a string. Wide character continuations are
// dropped so each line has the display width of the canvas.
func (c *MatrixCanvas) Lines() []string {
	lines := make([]string, c.height)
	var sb strings.Builder
	for y := 0; y < c.height; y++ {
		sb.Reset()
		for _, r := range c.runes[y] {
			if r != continuation {
				sb.WriteRune(r)
			}
		}
		lines[y] = sb.String()
	}
	return lines
}

// String returns the canvas as newline separated rows.
func (c *MatrixCanvas) String() string {
	return strings.Join(c.Lines(), "\n")
}

// DrawLine strokes a line between two cells with Bresenham's algorithm.
// The glyph follows the overall slope and merges with lines already there.
func (c *MatrixCanvas) DrawLine(x1, y1, x2, y2 int, color string) {
	glyph := lineGlyph(x2-x1, y2-y1, c.ascii)
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}

	x, y := x1, y1
	err := dx + dy
	for {
		c.stroke(x, y, glyph, color)
		if x == x2 && y == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func (c *MatrixCanvas) stroke(x, y int, glyph rune, color string) {
	if !c.inBounds(x, y) {
		return
	}
	merged := c.merger.Merge(c.runes[y][x], glyph)
	if c.ascii {
		merged = asciiGlyph(merged)
	}
	c.runes[y][x] = merged
	c.colors[y][x] = color
}

// DrawBox draws a rectangle outline and blanks its interior, so boxes hide
// the lines beneath them. Parts outside the canvas are clipped.
func (c *MatrixCanvas) DrawBox(x, y, width, height int, style BoxStyle, color string) error {
	if width < 2 || height < 2 {
		return ErrInvalidSize
	}
	right, bottom := x+width-1, y+height-1
	for row := y; row <= bottom; row++ {
		for col := x; col <= right; col++ {
			var r rune
			switch {
			case row == y && col == x:
				r = style.TopLeft
			case row == y && col == right:
				r = style.TopRight
			case row == bottom && col == x:
				r = style.BottomLeft
			case row == bottom && col == right:
				r = style.BottomRight
			case row == y || row == bottom:
				r = style.Horizontal
			case col == x || col == right:
				r = style.Vertical
			default:
				r = ' '
			}
			c.put(col, row, r, color)
		}
	}
	return nil
}

// DrawText writes text starting at a cell, clipping at the edges. A wide
// character that would straddle the right edge is not drawn.
func (c *MatrixCanvas) DrawText(x, y int, text, color string) {
	if y < 0 || y >= c.height {
		return
	}
	col := x
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col+w > c.width {
			return
		}
		if col >= 0 {
			c.put(col, y, r, color)
			if w == 2 {
				c.put(col+1, y, continuation, color)
			}
		}
		col += w
	}
}
