// Package interaction turns raw pointer and touch input into pan, zoom and
// node changes according to the selected tool mode.
package interaction

import (
	"math"

	"go.uber.org/zap"

	"nodeboard/diagram"
)

// Zoom limits and the default step used by ZoomIn/ZoomOut.
const (
	MinZoom         = 0.5
	MaxZoom         = 3.0
	DefaultZoomStep = 0.2
)

// Board is the part of the diagram store the engine needs. The engine never
// edits node records itself; it asks the board.
type Board interface {
	Nodes() []diagram.Node
	AddNode(n diagram.Node) diagram.Node
	UpdateNode(id string, patch diagram.NodePatch) bool
	RemoveNode(id string) bool
	AddConnection(c diagram.Connection) (diagram.Connection, bool)
}

// Option configures an Engine.
type Option func(*Engine)

// WithZoomStep sets the ZoomIn/ZoomOut increment.
func WithZoomStep(step float64) Option {
	return func(e *Engine) {
		if step > 0 {
			e.zoomStep = step
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithChangeHandler registers fn to run after any change to pan, zoom or
// the board. Front-ends use it to invalidate the renderer.
func WithChangeHandler(fn func()) Option {
	return func(e *Engine) {
		e.onChange = fn
	}
}

// Engine is the gesture state machine. It is not safe for concurrent use.
type Engine struct {
	board    Board
	log      *zap.Logger
	onChange func()
	zoomStep float64

	mode    Mode
	pan     diagram.Point
	zoom    float64
	gesture Gesture

	pendingSource string // connect mode: first tapped node
}

// NewEngine creates an engine in move mode with an identity view.
func NewEngine(board Board, opts ...Option) *Engine {
	e := &Engine{
		board:    board,
		log:      zap.NewNop(),
		zoomStep: DefaultZoomStep,
		mode:     ModeMove,
		zoom:     1,
		gesture:  Idle{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) changed() {
	if e.onChange != nil {
		e.onChange()
	}
}

// Mode returns the current tool mode.
func (e *Engine) Mode() Mode {
	return e.mode
}

// SetMode switches tools. Any pending connection and any gesture in
// progress are dropped so they cannot leak into the new mode.
func (e *Engine) SetMode(m Mode) {
	e.log.Debug("tool mode changed", zap.Stringer("from", e.mode), zap.Stringer("to", m))
	e.mode = m
	e.pendingSource = ""
	e.gesture = Idle{}
	e.changed()
}

// Pan returns the screen-space pan offset.
func (e *Engine) Pan() diagram.Point {
	return e.pan
}

// Zoom returns the current zoom factor.
func (e *Engine) Zoom() float64 {
	return e.zoom
}

// Gesture returns the gesture in progress.
func (e *Engine) Gesture() Gesture {
	return e.gesture
}

// DraggingNodeID returns the node being dragged, or "".
func (e *Engine) DraggingNodeID() string {
	if g, ok := e.gesture.(Dragging); ok {
		return g.NodeID
	}
	return ""
}

// PendingSource returns the node chosen as connection source, or "".
func (e *Engine) PendingSource() string {
	return e.pendingSource
}

// ScreenToDiagram converts a screen point to diagram space.
func (e *Engine) ScreenToDiagram(p diagram.Point) diagram.Point {
	return p.Sub(e.pan).Scale(1 / e.zoom)
}

// DiagramToScreen converts a diagram point to screen space.
func (e *Engine) DiagramToScreen(p diagram.Point) diagram.Point {
	return p.Scale(e.zoom).Add(e.pan)
}

// NodeAt returns the top-most node under a screen point. Later nodes are
// drawn above earlier ones.
func (e *Engine) NodeAt(screen diagram.Point) (diagram.Node, bool) {
	p := e.ScreenToDiagram(screen)
	nodes := e.board.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].Contains(p) {
			return nodes[i], true
		}
	}
	return diagram.Node{}, false
}

// ZoomIn increases zoom by one step, clamped.
func (e *Engine) ZoomIn() {
	e.setZoom(e.zoom + e.zoomStep)
}

// ZoomOut decreases zoom by one step, clamped.
func (e *Engine) ZoomOut() {
	e.setZoom(e.zoom - e.zoomStep)
}

// ResetView puts pan back at the origin and zoom at 1.
func (e *Engine) ResetView() {
	e.pan = diagram.Point{}
	e.zoom = 1
	e.changed()
}

func (e *Engine) setZoom(z float64) {
	e.zoom = clampZoom(z)
	e.changed()
}

func clampZoom(z float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// HandlePointer feeds one pointer event through the state machine.
func (e *Engine) HandlePointer(ev PointerEvent) {
	if len(ev.Touches) >= 2 {
		e.pinch(ev.Touches)
		return
	}
	if _, ok := e.gesture.(Pinching); ok {
		// Fewer than two touches left: the pinch is over. The remaining
		// finger must lift before a new gesture can start.
		e.gesture = Idle{}
		return
	}

	switch ev.Kind {
	case PointerDown:
		e.pointerDown(ev)
	case PointerMove:
		e.pointerMove(ev)
	case PointerUp, PointerCancel:
		e.gesture = Idle{}
	}
}

func (e *Engine) pointerDown(ev PointerEvent) {
	hit, onNode := e.NodeAt(ev.Position)

	switch e.mode {
	case ModeMove:
		if onNode {
			e.gesture = Dragging{NodeID: hit.ID, Anchor: hit.Position(), Last: ev.Position}
			e.changed()
			return
		}
		e.gesture = Panning{Start: ev.Position.Sub(e.pan)}
	case ModePan:
		e.gesture = Panning{Start: ev.Position.Sub(e.pan)}
	case ModeAdd:
		if !onNode {
			e.addNodeAt(ev.Position)
		}
	case ModeConnect:
		if onNode {
			e.connectTap(hit.ID)
		}
	case ModeDelete:
		if onNode && e.board.RemoveNode(hit.ID) {
			e.changed()
		}
	}
}

func (e *Engine) pointerMove(ev PointerEvent) {
	switch g := e.gesture.(type) {
	case Dragging:
		delta := ev.Position.Sub(g.Last)
		if ev.HasMovement {
			delta = ev.Movement
		}
		g.Last = ev.Position
		g.Offset = g.Offset.Add(delta.Scale(1 / e.zoom))
		if !e.board.UpdateNode(g.NodeID, diagram.MoveTo(g.Anchor.Add(g.Offset))) {
			// The node went away underneath us.
			e.gesture = Idle{}
			return
		}
		e.gesture = g
		e.changed()
	case Panning:
		e.pan = ev.Position.Sub(g.Start)
		e.changed()
	}
}

func (e *Engine) pinch(touches []diagram.Point) {
	d := distance(touches[0], touches[1])
	g, ok := e.gesture.(Pinching)
	if !ok || g.LastDistance == 0 {
		// A pinch overrides any drag or pan from the first finger.
		e.gesture = Pinching{LastDistance: d}
		return
	}
	if d == 0 {
		return
	}
	e.zoom = clampZoom(e.zoom * d / g.LastDistance)
	e.gesture = Pinching{LastDistance: d}
	e.changed()
}

func (e *Engine) addNodeAt(screen diagram.Point) {
	p := e.ScreenToDiagram(screen)
	n := e.board.AddNode(diagram.Node{
		X:     p.X - diagram.NodeWidth/2,
		Y:     p.Y - diagram.NodeHeight/2,
		Text:  diagram.DefaultNodeText,
		Color: diagram.PaletteColor(len(e.board.Nodes())),
	})
	e.log.Debug("node added", zap.String("nodeID", n.ID))
	e.changed()
}

func (e *Engine) connectTap(id string) {
	switch e.pendingSource {
	case "":
		e.pendingSource = id
	case id:
		e.pendingSource = ""
	default:
		if c, ok := e.board.AddConnection(diagram.Connection{From: e.pendingSource, To: id}); ok {
			e.log.Debug("nodes connected",
				zap.String("connectionID", c.ID), zap.String("from", c.From), zap.String("to", c.To))
		}
		e.pendingSource = ""
	}
	e.changed()
}

func distance(a, b diagram.Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
