package interaction

import "nodeboard/diagram"

// Gesture is the state of the gesture in progress. Exactly one is active at
// a time, so dragging and panning can never overlap.
type Gesture interface {
	gesture()
}

// Idle means no gesture is in progress.
type Idle struct{}

// Dragging moves one node. Anchor is the node position when the drag began
// and Offset the accumulated diagram-space movement since then.
type Dragging struct {
	NodeID string
	Anchor diagram.Point
	Offset diagram.Point
	Last   diagram.Point // screen position of the previous event
}

// Panning moves the canvas. Start is pointer position minus pan at press.
type Panning struct {
	Start diagram.Point
}

// Pinching zooms with two touches. LastDistance is the finger distance seen
// on the previous frame.
type Pinching struct {
	LastDistance float64
}

func (Idle) gesture()     {}
func (Dragging) gesture() {}
func (Panning) gesture()  {}
func (Pinching) gesture() {}

// PointerKind identifies a pointer event.
type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerCancel
)

// PointerEvent is a raw pointer or touch event in screen coordinates,
// relative to the canvas container.
type PointerEvent struct {
	Kind     PointerKind
	Position diagram.Point

	// Movement is the native per-event delta, valid when HasMovement is set.
	// Mouse sources usually report it; touch sources do not.
	Movement    diagram.Point
	HasMovement bool

	// Touches lists every active touch point for touch input.
	Touches []diagram.Point
}
