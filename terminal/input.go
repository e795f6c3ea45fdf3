package terminal

import (
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"nodeboard/canvas"
	"nodeboard/interaction"
)

var modeKeys = map[rune]interaction.Mode{
	'm': interaction.ModeMove,
	'a': interaction.ModeAdd,
	'c': interaction.ModeConnect,
	'd': interaction.ModeDelete,
	'p': interaction.ModePan,
}

func (a *App) handleKey(ev *tcell.EventKey) {
	a.message = ""
	switch ev.Key() {
	case tcell.KeyCtrlC:
		a.quit = true
		return
	case tcell.KeyEscape:
		// Drops a half-made connection or a stuck gesture.
		a.engine.SetMode(a.engine.Mode())
		return
	case tcell.KeyRune:
	default:
		return
	}

	r := ev.Rune()
	if m, ok := modeKeys[r]; ok {
		a.engine.SetMode(m)
		return
	}
	switch r {
	case 'q':
		a.quit = true
	case '+', '=':
		a.engine.ZoomIn()
	case '-', '_':
		a.engine.ZoomOut()
	case '0':
		a.engine.ResetView()
	case 'x':
		a.store.ClearBoard()
		a.setMessage("board cleared")
	case 'n':
		d := a.store.CreateDiagram("")
		a.engine.SetMode(a.engine.Mode())
		a.setMessage("created %s", d.Name)
	case '[':
		a.cycleDiagram(-1)
	case ']':
		a.cycleDiagram(1)
	case 'e':
		a.startEdit()
	}
}

// startEdit begins editing the label of the node under the mouse.
func (a *App) startEdit() {
	n, ok := a.engine.NodeAt(a.lastMouse)
	if !a.hasPointer || !ok {
		a.setMessage("point at a node to edit its label")
		return
	}
	a.editing = n.ID
	a.editBuf = []rune(n.Text)
	a.invalidate()
}

func (a *App) handleEditKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter:
		if !a.store.CommitNodeText(a.editing, string(a.editBuf)) {
			a.setMessage("label left unchanged")
		}
		a.editing, a.editBuf = "", nil
	case tcell.KeyEscape:
		a.editing, a.editBuf = "", nil
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if n := len(a.editBuf); n > 0 {
			a.editBuf = a.editBuf[:n-1]
		}
	case tcell.KeyRune:
		a.editBuf = append(a.editBuf, ev.Rune())
	default:
		return
	}
	a.invalidate()
}

// handleMouse turns tcell button state into pointer down/move/up. Each
// event is reported at the center of its cell, and the wheel zooms.
func (a *App) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	pos := canvas.CellCenter(x, y)
	buttons := ev.Buttons()

	switch {
	case buttons&tcell.WheelUp != 0:
		a.engine.ZoomIn()
		return
	case buttons&tcell.WheelDown != 0:
		a.engine.ZoomOut()
		return
	}

	pressed := buttons&tcell.Button1 != 0
	switch {
	case pressed && !a.mouseDown:
		a.mouseDown = true
		a.log.Debug("pointer down", zap.Int("col", x), zap.Int("row", y))
		a.engine.HandlePointer(interaction.PointerEvent{Kind: interaction.PointerDown, Position: pos})
	case pressed && pos != a.lastMouse:
		a.engine.HandlePointer(interaction.PointerEvent{
			Kind:        interaction.PointerMove,
			Position:    pos,
			Movement:    pos.Sub(a.lastMouse),
			HasMovement: true,
		})
	case !pressed && a.mouseDown:
		a.mouseDown = false
		a.engine.HandlePointer(interaction.PointerEvent{Kind: interaction.PointerUp, Position: pos})
		a.invalidate()
	}
	a.lastMouse = pos
	a.hasPointer = true
}
