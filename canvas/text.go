package canvas

import (
	"github.com/mattn/go-runewidth"
)

// Ellipsis marks truncated labels.
const Ellipsis = "…"

// MeasureText returns the display width of a string in terminal cells.
func MeasureText(text string) int {
	return runewidth.StringWidth(text)
}

// FitText truncates text to fit within maxWidth cells, ending it with an
// ellipsis when anything was cut.
func FitText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= maxWidth {
		return text
	}
	if maxWidth <= runewidth.StringWidth(Ellipsis) {
		return runewidth.Truncate(text, maxWidth, "")
	}
	return runewidth.Truncate(text, maxWidth, Ellipsis)
}

// CenterOffset returns the column offset that centers text in a span of
// width cells. Text wider than the span starts at 0.
func CenterOffset(text string, width int) int {
	w := runewidth.StringWidth(text)
	if w >= width {
		return 0
	}
	return (width - w) / 2
}
