package interaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodeboard/diagram"
	"nodeboard/storage"
	"nodeboard/store"
)

// ===== Test helpers =====

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *store.Store, storage.Blob) {
	t.Helper()
	blob := storage.NewMemory()
	s := store.New(blob)
	return NewEngine(s, opts...), s, blob
}

func pt(x, y float64) diagram.Point {
	return diagram.Point{X: x, Y: y}
}

func down(x, y float64) PointerEvent {
	return PointerEvent{Kind: PointerDown, Position: pt(x, y)}
}

func move(x, y float64) PointerEvent {
	return PointerEvent{Kind: PointerMove, Position: pt(x, y)}
}

func moveBy(x, y, dx, dy float64) PointerEvent {
	return PointerEvent{Kind: PointerMove, Position: pt(x, y), Movement: pt(dx, dy), HasMovement: true}
}

func up(x, y float64) PointerEvent {
	return PointerEvent{Kind: PointerUp, Position: pt(x, y)}
}

func touches(kind PointerKind, points ...diagram.Point) PointerEvent {
	return PointerEvent{Kind: kind, Position: points[0], Touches: points}
}

// tap performs a full press/release at a screen point.
func tap(e *Engine, x, y float64) {
	e.HandlePointer(down(x, y))
	e.HandlePointer(up(x, y))
}

// ===== Modes =====

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"move", ModeMove, false},
		{"a", ModeAdd, false},
		{"connect", ModeConnect, false},
		{"d", ModeDelete, false},
		{"pan", ModePan, false},
		{"zoom", ModeMove, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetModeClearsPartialGestures(t *testing.T) {
	e, s, _ := newTestEngine(t)
	n := s.AddNode(diagram.Node{X: 0, Y: 0})

	e.SetMode(ModeConnect)
	tap(e, 10, 10)
	require.Equal(t, n.ID, e.PendingSource())

	e.SetMode(ModeMove)
	assert.Equal(t, "", e.PendingSource())

	e.HandlePointer(down(10, 10))
	require.Equal(t, n.ID, e.DraggingNodeID())
	e.SetMode(ModeMove)
	assert.Equal(t, Idle{}, e.Gesture())

	// A stray move after the switch must not move the node.
	e.HandlePointer(move(200, 200))
	got, _ := s.Node(n.ID)
	assert.Equal(t, n.Position(), got.Position())
}

// ===== Add / connect / delete =====

func TestAddModeCentersNodeOnTap(t *testing.T) {
	e, s, _ := newTestEngine(t)
	e.SetMode(ModeAdd)

	tap(e, 100, 100)

	nodes := s.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, 100-diagram.NodeWidth/2, nodes[0].X)
	assert.Equal(t, 100-diagram.NodeHeight/2, nodes[0].Y)
	assert.Equal(t, diagram.PaletteColor(0), nodes[0].Color)
	assert.Equal(t, diagram.DefaultNodeText, nodes[0].Text)

	// Tapping an existing node in add mode does nothing.
	tap(e, 100, 100)
	assert.Len(t, s.Nodes(), 1)

	tap(e, 400, 400)
	nodes = s.Nodes()
	require.Len(t, nodes, 2)
	assert.Equal(t, diagram.PaletteColor(1), nodes[1].Color)
}

func TestAddModeRespectsTransform(t *testing.T) {
	e, s, _ := newTestEngine(t)
	e.ZoomIn() // 1.2
	e.SetMode(ModePan)
	e.HandlePointer(down(0, 0))
	e.HandlePointer(move(50, 20))
	e.HandlePointer(up(50, 20))

	e.SetMode(ModeAdd)
	tap(e, 170, 140)

	nodes := s.Nodes()
	require.Len(t, nodes, 1)
	assert.InDelta(t, (170-50)/1.2-diagram.NodeWidth/2, nodes[0].X, 1e-9)
	assert.InDelta(t, (140-20)/1.2-diagram.NodeHeight/2, nodes[0].Y, 1e-9)
}

func TestConnectMode(t *testing.T) {
	e, s, _ := newTestEngine(t)
	a := s.AddNode(diagram.Node{X: 0, Y: 0})
	b := s.AddNode(diagram.Node{X: 300, Y: 0})
	e.SetMode(ModeConnect)

	t.Run("EmptyTapIgnored", func(t *testing.T) {
		tap(e, 1000, 1000)
		assert.Equal(t, "", e.PendingSource())
	})

	t.Run("SameNodeCancels", func(t *testing.T) {
		tap(e, 10, 10)
		assert.Equal(t, a.ID, e.PendingSource())
		tap(e, 10, 10)
		assert.Equal(t, "", e.PendingSource())
		assert.Empty(t, s.Connections())
	})

	t.Run("TwoNodesConnect", func(t *testing.T) {
		tap(e, 10, 10)
		tap(e, 310, 10)

		conns := s.Connections()
		require.Len(t, conns, 1)
		assert.Equal(t, a.ID, conns[0].From)
		assert.Equal(t, b.ID, conns[0].To)
		assert.Equal(t, "", e.PendingSource())
	})

	t.Run("DuplicatesAllowed", func(t *testing.T) {
		tap(e, 10, 10)
		tap(e, 310, 10)
		assert.Len(t, s.Connections(), 2)
	})
}

func TestDeleteModeRemovesNodeAndConnections(t *testing.T) {
	e, s, _ := newTestEngine(t)
	a := s.AddNode(diagram.Node{X: 0, Y: 0})
	b := s.AddNode(diagram.Node{X: 300, Y: 0})
	c := s.AddNode(diagram.Node{X: 600, Y: 0})
	s.AddConnection(diagram.Connection{From: a.ID, To: b.ID})
	s.AddConnection(diagram.Connection{From: b.ID, To: c.ID})
	s.AddConnection(diagram.Connection{From: c.ID, To: a.ID})

	e.SetMode(ModeDelete)
	tap(e, 5, 5)

	_, ok := s.Node(a.ID)
	assert.False(t, ok)
	for _, conn := range s.Connections() {
		assert.False(t, conn.Touches(a.ID))
	}
	assert.Len(t, s.Connections(), 1)

	tap(e, 2000, 2000)
	assert.Len(t, s.Nodes(), 2, "empty tap in delete mode is ignored")
}

// ===== Dragging =====

func TestDragUsesNativeMovement(t *testing.T) {
	e, s, _ := newTestEngine(t)
	n := s.AddNode(diagram.Node{X: 100, Y: 100})

	e.HandlePointer(down(110, 110))
	require.Equal(t, n.ID, e.DraggingNodeID())
	// Positions disagree with movement on purpose: the native delta wins.
	e.HandlePointer(moveBy(999, 999, 10, 5))
	e.HandlePointer(moveBy(999, 999, -4, 15))
	e.HandlePointer(up(999, 999))

	got, _ := s.Node(n.ID)
	assert.InDelta(t, 106, got.X, 1e-9)
	assert.InDelta(t, 120, got.Y, 1e-9)
	assert.Equal(t, "", e.DraggingNodeID())
}

func TestDragFallsBackToAbsolutePositions(t *testing.T) {
	e, s, _ := newTestEngine(t)
	n := s.AddNode(diagram.Node{X: 100, Y: 100})

	e.HandlePointer(down(110, 110))
	e.HandlePointer(move(120, 130))
	e.HandlePointer(move(150, 90))
	e.HandlePointer(PointerEvent{Kind: PointerCancel})

	got, _ := s.Node(n.ID)
	assert.InDelta(t, 140, got.X, 1e-9)
	assert.InDelta(t, 80, got.Y, 1e-9)
	assert.Equal(t, Idle{}, e.Gesture())
}

func TestDragDeltaSumsDividedByZoom(t *testing.T) {
	e, s, _ := newTestEngine(t)
	n := s.AddNode(diagram.Node{X: 0, Y: 0})
	e.ZoomIn()
	e.ZoomIn() // 1.4

	deltas := []diagram.Point{pt(7, 3), pt(-2, 11), pt(13.5, -4), pt(0.25, 0.75)}
	anchor := n.Position()
	zoom := e.Zoom()

	e.HandlePointer(down(10, 10))
	for _, d := range deltas {
		e.HandlePointer(moveBy(0, 0, d.X, d.Y))
	}
	e.HandlePointer(up(0, 0))

	want := anchor
	for _, d := range deltas {
		want = want.Add(d.Scale(1 / zoom))
	}
	got, _ := s.Node(n.ID)
	assert.InDelta(t, want.X, got.X, 1e-9)
	assert.InDelta(t, want.Y, got.Y, 1e-9)
}

func TestDragPicksTopMostNode(t *testing.T) {
	e, s, _ := newTestEngine(t)
	s.AddNode(diagram.Node{X: 0, Y: 0})
	top := s.AddNode(diagram.Node{X: 10, Y: 10})

	e.HandlePointer(down(20, 20))
	assert.Equal(t, top.ID, e.DraggingNodeID())
}

func TestMoveWithoutDragIsIgnored(t *testing.T) {
	e, s, _ := newTestEngine(t)
	n := s.AddNode(diagram.Node{X: 0, Y: 0})

	e.HandlePointer(move(50, 50))
	e.HandlePointer(up(50, 50))

	got, _ := s.Node(n.ID)
	assert.Equal(t, n.Position(), got.Position())
	assert.Equal(t, pt(0, 0), e.Pan())
}

func TestDragStopsWhenNodeDisappears(t *testing.T) {
	e, s, _ := newTestEngine(t)
	n := s.AddNode(diagram.Node{X: 0, Y: 0})

	e.HandlePointer(down(5, 5))
	s.RemoveNode(n.ID)
	e.HandlePointer(move(50, 50))

	assert.Equal(t, Idle{}, e.Gesture())
	assert.Empty(t, s.Nodes())
}

// ===== Panning =====

func TestPanIsAbsolute(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.SetMode(ModePan)

	e.HandlePointer(down(100, 100))
	e.HandlePointer(move(130, 90))
	e.HandlePointer(move(160, 120))
	e.HandlePointer(up(160, 120))
	assert.Equal(t, pt(60, 20), e.Pan())

	// A second pan continues from the current offset.
	e.HandlePointer(down(0, 0))
	e.HandlePointer(move(-10, 5))
	e.HandlePointer(up(-10, 5))
	assert.Equal(t, pt(50, 25), e.Pan())
}

func TestMoveModePansOnEmptyCanvas(t *testing.T) {
	e, s, _ := newTestEngine(t)
	n := s.AddNode(diagram.Node{X: 0, Y: 0})

	e.HandlePointer(down(500, 500))
	assert.IsType(t, Panning{}, e.Gesture())
	e.HandlePointer(move(520, 540))
	e.HandlePointer(up(520, 540))

	assert.Equal(t, pt(20, 40), e.Pan())
	got, _ := s.Node(n.ID)
	assert.Equal(t, n.Position(), got.Position())
}

// ===== Zoom =====

func TestZoomButtonsClamp(t *testing.T) {
	e, _, _ := newTestEngine(t)

	for i := 0; i < 20; i++ {
		e.ZoomIn()
		assert.LessOrEqual(t, e.Zoom(), MaxZoom)
	}
	assert.Equal(t, MaxZoom, e.Zoom())

	for i := 0; i < 20; i++ {
		e.ZoomOut()
		assert.GreaterOrEqual(t, e.Zoom(), MinZoom)
	}
	assert.Equal(t, MinZoom, e.Zoom())
}

func TestZoomStepOption(t *testing.T) {
	e, _, _ := newTestEngine(t, WithZoomStep(0.5))
	e.ZoomIn()
	assert.InDelta(t, 1.5, e.Zoom(), 1e-9)
}

func TestResetView(t *testing.T) {
	e, _, _ := newTestEngine(t)
	e.ZoomIn()
	e.SetMode(ModePan)
	e.HandlePointer(down(0, 0))
	e.HandlePointer(move(40, 40))
	e.HandlePointer(up(40, 40))

	e.ResetView()

	assert.Equal(t, pt(0, 0), e.Pan())
	assert.Equal(t, 1.0, e.Zoom())
}

func TestPinchIsIncremental(t *testing.T) {
	e, _, _ := newTestEngine(t)

	// distances 100, 150, 120
	e.HandlePointer(touches(PointerDown, pt(0, 0), pt(100, 0)))
	assert.Equal(t, 1.0, e.Zoom())

	e.HandlePointer(touches(PointerMove, pt(0, 0), pt(150, 0)))
	assert.InDelta(t, 1.5, e.Zoom(), 1e-9)

	e.HandlePointer(touches(PointerMove, pt(0, 0), pt(0, 120)))
	assert.InDelta(t, 1.2, e.Zoom(), 1e-9)

	e.HandlePointer(touches(PointerUp, pt(0, 0)))
	assert.Equal(t, Idle{}, e.Gesture())
}

func TestPinchClampsAndRestartsClean(t *testing.T) {
	e, _, _ := newTestEngine(t)

	e.HandlePointer(touches(PointerDown, pt(0, 0), pt(10, 0)))
	e.HandlePointer(touches(PointerMove, pt(0, 0), pt(1000, 0)))
	assert.Equal(t, MaxZoom, e.Zoom())
	e.HandlePointer(touches(PointerMove, pt(0, 0), pt(1, 0)))
	assert.Equal(t, MinZoom, e.Zoom())

	e.HandlePointer(touches(PointerUp, pt(0, 0)))

	// New pinch: the first frame only records the baseline.
	e.HandlePointer(touches(PointerDown, pt(0, 0), pt(40, 0)))
	assert.Equal(t, MinZoom, e.Zoom())
	e.HandlePointer(touches(PointerMove, pt(0, 0), pt(80, 0)))
	assert.InDelta(t, 1.0, e.Zoom(), 1e-9)
}

func TestPinchOverridesDrag(t *testing.T) {
	e, s, _ := newTestEngine(t)
	n := s.AddNode(diagram.Node{X: 0, Y: 0})

	e.HandlePointer(down(10, 10))
	require.Equal(t, n.ID, e.DraggingNodeID())

	e.HandlePointer(touches(PointerDown, pt(10, 10), pt(110, 10)))
	assert.IsType(t, Pinching{}, e.Gesture())

	e.HandlePointer(touches(PointerMove, pt(10, 10), pt(210, 10)))
	// One finger lifts; the other keeps moving but must not drag.
	e.HandlePointer(touches(PointerUp, pt(10, 10)))
	e.HandlePointer(move(60, 60))

	got, _ := s.Node(n.ID)
	assert.Equal(t, n.Position(), got.Position())
	assert.InDelta(t, 2.0, e.Zoom(), 1e-9)
}

func TestChangeHandlerRuns(t *testing.T) {
	calls := 0
	e, _, _ := newTestEngine(t, WithChangeHandler(func() { calls++ }))

	e.ZoomIn()
	e.SetMode(ModeAdd)
	tap(e, 10, 10)

	assert.Equal(t, 3, calls)
}

// ===== End to end =====

func TestEditSessionSurvivesReload(t *testing.T) {
	e, s, blob := newTestEngine(t)
	s.CreateDiagram("Map A")
	second := s.AddNode(diagram.Node{X: 400, Y: 400, Text: "second"})

	e.SetMode(ModeAdd)
	tap(e, 100, 100)
	var first diagram.Node
	for _, n := range s.Nodes() {
		if n.ID != second.ID {
			first = n
		}
	}
	require.NotEmpty(t, first.ID)
	assert.Equal(t, 100-diagram.NodeWidth/2, first.X)
	assert.Equal(t, 100-diagram.NodeHeight/2, first.Y)

	e.SetMode(ModeConnect)
	tap(e, 100, 100)
	tap(e, 410, 410)
	conns := s.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, first.ID, conns[0].From)
	assert.Equal(t, second.ID, conns[0].To)

	e.SetMode(ModeDelete)
	tap(e, 100, 100)
	_, ok := s.Node(first.ID)
	assert.False(t, ok)
	assert.Empty(t, s.Connections())

	reloaded := store.New(blob, store.WithInitialDiagram(s.ActiveID()))
	assert.Equal(t, s.Nodes(), reloaded.Nodes())
	assert.Equal(t, s.Connections(), reloaded.Connections())
	active, _ := reloaded.Active()
	assert.Equal(t, "Map A", active.Name)
}
