// Package canvas provides a character-cell drawing target for diagrams.
//
// A MatrixCanvas is a grid of runes. A Surface wraps one so the connection
// renderer can paint into it as if it were a pixel surface: every cell
// stands for CellWidth by CellHeight logical pixels.
package canvas

// Cell size in logical pixels. Terminal cells are roughly twice as tall as
// they are wide.
const (
	CellWidth  = 8
	CellHeight = 16
)
