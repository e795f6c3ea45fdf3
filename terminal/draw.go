package terminal

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"nodeboard/canvas"
	"nodeboard/render"
)

// asciiHighlightBox marks the active node when box-drawing glyphs are off.
var asciiHighlightBox = canvas.BoxStyle{
	TopLeft: '#', TopRight: '#', BottomLeft: '#', BottomRight: '#',
	Horizontal: '=', Vertical: '#',
}

var (
	statusStyle  = tcell.StyleDefault.Reverse(true)
	warningStyle = tcell.StyleDefault.Foreground(tcell.ColorRed).Reverse(true)
)

// present runs after the renderer has stroked the connections: it draws
// the nodes over them, copies the canvas to the screen and adds the status
// line.
func (a *App) present(f render.Frame) {
	c := a.surface.Canvas()
	if c == nil {
		return
	}
	highlight := map[string]bool{
		a.engine.DraggingNodeID(): true,
		a.engine.PendingSource():  true,
		a.editing:                 true,
	}
	for _, n := range f.Nodes {
		if a.editing == n.ID {
			n.Text = string(a.editBuf)
		}
		c.DrawNode(n, f.Pan, f.Zoom, a.boxStyle(highlight[n.ID]))
	}

	a.screen.Clear()
	w, h := c.Size()
	for y := 0; y < h && y < a.height-1; y++ {
		for x := 0; x < w && x < a.width; x++ {
			r := c.Get(x, y)
			if r == 0 {
				continue
			}
			style := tcell.StyleDefault
			if hex := c.ColorAt(x, y); hex != "" && a.caps.Color {
				style = style.Foreground(tcell.GetColor(hex))
			}
			a.screen.SetContent(x, y, r, nil, style)
		}
	}
	a.drawStatus(len(f.Nodes), len(f.Connections), f.Zoom)
	a.screen.Show()
}

func (a *App) boxStyle(highlighted bool) canvas.BoxStyle {
	switch {
	case a.caps.ASCII && highlighted:
		return asciiHighlightBox
	case a.caps.ASCII:
		return canvas.ASCIIBox
	case highlighted:
		return canvas.HeavyBox
	default:
		return canvas.RoundedBox
	}
}

func (a *App) drawStatus(nodes, connections int, zoom float64) {
	if a.height <= 0 {
		return
	}
	y := a.height - 1

	var left string
	if a.editing != "" {
		cursor := "▏"
		if a.caps.ASCII {
			cursor = "_"
		}
		left = fmt.Sprintf(" label: %s%s (enter to save, esc to cancel)", string(a.editBuf), cursor)
	} else {
		name := "no diagram"
		if d, ok := a.store.Active(); ok {
			name = d.Name
		}
		left = fmt.Sprintf(" %s | %s | %d nodes %d links | zoom %.0f%%",
			a.engine.Mode(), name, nodes, connections, zoom*100)
		if a.engine.PendingSource() != "" {
			left += " | pick a target node"
		}
		if a.message != "" {
			left += " | " + a.message
		}
	}

	style := statusStyle
	if err := a.store.PersistError(); err != nil && a.editing == "" {
		left += " | not saved: " + err.Error()
		style = warningStyle
	}

	line := canvas.FitText(left, a.width)
	if pad := a.width - canvas.MeasureText(line); pad > 0 {
		line += strings.Repeat(" ", pad)
	}
	x := 0
	for _, r := range line {
		a.screen.SetContent(x, y, r, nil, style)
		x += max(canvas.MeasureText(string(r)), 1)
	}
}
