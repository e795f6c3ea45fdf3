package render

import (
	"fmt"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nodeboard/diagram"
)

// ===== Test helpers =====

// recorder is a Surface and Context that logs every call.
type recorder struct {
	width, height int
	ratio         float64
	noContext     bool

	resized [][2]int
	calls   []string
	lines   [][4]float64
	widths  []float64
}

func (r *recorder) Size() (int, int, float64) { return r.width, r.height, r.ratio }

func (r *recorder) Resize(w, h int) {
	r.resized = append(r.resized, [2]int{w, h})
	r.calls = append(r.calls, fmt.Sprintf("resize %dx%d", w, h))
}

func (r *recorder) Context() (Context, bool) {
	if r.noContext {
		return nil, false
	}
	return r, true
}

func (r *recorder) Save()    { r.calls = append(r.calls, "save") }
func (r *recorder) Restore() { r.calls = append(r.calls, "restore") }
func (r *recorder) Clear()   { r.calls = append(r.calls, "clear") }

func (r *recorder) Translate(x, y float64) {
	r.calls = append(r.calls, fmt.Sprintf("translate %g,%g", x, y))
}

func (r *recorder) Scale(sx, sy float64) {
	r.calls = append(r.calls, fmt.Sprintf("scale %g,%g", sx, sy))
}

func (r *recorder) SetLineWidth(w float64) {
	r.widths = append(r.widths, w)
	r.calls = append(r.calls, fmt.Sprintf("width %g", w))
}

func (r *recorder) SetStrokeColor(string) {}

func (r *recorder) StrokeLine(x1, y1, x2, y2 float64) {
	r.lines = append(r.lines, [4]float64{x1, y1, x2, y2})
	r.calls = append(r.calls, "line")
}

func twoNodeFrame() Frame {
	return Frame{
		Nodes: []diagram.Node{
			{ID: "a", X: 0, Y: 0},
			{ID: "b", X: 200, Y: 100},
		},
		Connections: []diagram.Connection{
			{ID: "1", From: "a", To: "b"},
		},
		Zoom: 1,
	}
}

func staticSource(f Frame) Source {
	return func() Frame { return f }
}

// ===== Paint algorithm =====

func TestPaintOrder(t *testing.T) {
	f := twoNodeFrame()
	f.Pan = diagram.Point{X: 15, Y: -5}
	f.Zoom = 2
	surface := &recorder{width: 300, height: 200, ratio: 2}

	r := New(staticSource(f), NewManualScheduler())
	r.Attach(surface)
	drawn := r.Paint()

	assert.Equal(t, 1, drawn)
	assert.Equal(t, []string{
		"resize 600x400",
		"scale 2,2",
		"clear",
		"save",
		"translate 15,-5",
		"scale 2,2",
		"width 1",
		"line",
		"restore",
	}, surface.calls)
}

func TestLinesJoinNodeCenters(t *testing.T) {
	surface := &recorder{width: 10, height: 10, ratio: 1}
	r := New(staticSource(twoNodeFrame()), NewManualScheduler())
	r.Attach(surface)
	r.Paint()

	require.Len(t, surface.lines, 1)
	assert.Equal(t, [4]float64{
		diagram.NodeWidth / 2, diagram.NodeHeight / 2,
		200 + diagram.NodeWidth/2, 100 + diagram.NodeHeight/2,
	}, surface.lines[0])
}

func TestLineWidthCompensatesZoom(t *testing.T) {
	for _, zoom := range []float64{0.5, 1, 1.5, 3} {
		t.Run(fmt.Sprint(zoom), func(t *testing.T) {
			f := twoNodeFrame()
			f.Zoom = zoom
			surface := &recorder{width: 10, height: 10, ratio: 1}
			r := New(staticSource(f), NewManualScheduler(), WithLineWidth(3))
			r.Attach(surface)
			r.Paint()

			require.Len(t, surface.widths, 1)
			assert.InDelta(t, 3.0, surface.widths[0]*zoom, 1e-9)
		})
	}
}

func TestMissingEndpointsAreSkipped(t *testing.T) {
	f := twoNodeFrame()
	f.Connections = append(f.Connections,
		diagram.Connection{ID: "2", From: "a", To: "gone"},
		diagram.Connection{ID: "3", From: "gone", To: "b"},
		diagram.Connection{ID: "4", From: "b", To: "a"},
		diagram.Connection{ID: "5", From: "a", To: "b"},
	)
	surface := &recorder{width: 10, height: 10, ratio: 1}
	r := New(staticSource(f), NewManualScheduler())
	r.Attach(surface)

	assert.Equal(t, 3, r.Paint())
	assert.Len(t, surface.lines, 3)
}

func TestPaintWithoutSurfaceIsNoop(t *testing.T) {
	called := false
	r := New(func() Frame { called = true; return Frame{} }, NewManualScheduler())

	assert.Equal(t, 0, r.Paint())
	assert.False(t, called)

	surface := &recorder{width: 10, height: 10, ratio: 1, noContext: true}
	r.Attach(surface)
	assert.Equal(t, 0, r.Paint())
	assert.False(t, called)

	r.Attach(&recorder{width: 0, height: 10, ratio: 1})
	assert.Equal(t, 0, r.Paint())
}

func TestFitDefaultsRatio(t *testing.T) {
	surface := &recorder{width: 101, height: 50, ratio: 0}
	_, ok := Fit(surface)
	require.True(t, ok)
	assert.Equal(t, [][2]int{{101, 50}}, surface.resized)

	surface = &recorder{width: 101, height: 50, ratio: 1.5}
	Fit(surface)
	assert.Equal(t, [][2]int{{152, 75}}, surface.resized)
}

// ===== Frame scheduling =====

func TestInvalidateCoalesces(t *testing.T) {
	sched := NewManualScheduler()
	reads := 0
	r := New(func() Frame { reads++; return twoNodeFrame() }, sched)
	surface := &recorder{width: 10, height: 10, ratio: 1}
	r.Attach(surface)

	r.Invalidate()
	r.Invalidate()
	r.Invalidate()
	assert.Equal(t, 1, sched.Pending())
	assert.Equal(t, 0, reads, "nothing paints before the frame")

	assert.Equal(t, 1, sched.RunFrame())
	assert.Equal(t, 1, reads)
	assert.Len(t, surface.lines, 1)

	assert.Equal(t, 0, sched.RunFrame())
}

func TestPaintReadsLatestState(t *testing.T) {
	sched := NewManualScheduler()
	f := twoNodeFrame()
	r := New(func() Frame { return f }, sched)
	surface := &recorder{width: 10, height: 10, ratio: 1}
	r.Attach(surface)

	r.Invalidate()
	f.Nodes[1].X = 1000
	sched.RunFrame()

	require.Len(t, surface.lines, 1)
	assert.Equal(t, 1000+diagram.NodeWidth/2, surface.lines[0][2])
}

func TestCloseCancelsPendingPaint(t *testing.T) {
	sched := NewManualScheduler()
	surface := &recorder{width: 10, height: 10, ratio: 1}
	r := New(staticSource(twoNodeFrame()), sched)
	r.Attach(surface)

	r.Invalidate()
	r.Close()

	assert.Equal(t, 0, sched.Pending())
	sched.RunFrame()
	assert.Empty(t, surface.calls)

	// Invalidating after teardown paints nothing either.
	r.Invalidate()
	sched.RunFrame()
	assert.Empty(t, surface.calls)
}

func TestManualSchedulerDefersNestedRequests(t *testing.T) {
	sched := NewManualScheduler()
	var order []int
	sched.RequestFrame(func() {
		order = append(order, 1)
		sched.RequestFrame(func() { order = append(order, 3) })
	})
	cancelled := sched.RequestFrame(func() { order = append(order, 99) })
	sched.RequestFrame(func() { order = append(order, 2) })
	sched.CancelFrame(cancelled)

	assert.Equal(t, 2, sched.RunFrame())
	assert.Equal(t, []int{1, 2}, order)
	assert.Equal(t, 1, sched.RunFrame())
	assert.Equal(t, []int{1, 2, 3}, order)
}

// ===== Raster backend =====

func TestRasterPaint(t *testing.T) {
	f := Frame{
		Nodes: []diagram.Node{
			{ID: "a", X: 0, Y: 30},
			{ID: "b", X: 200, Y: 30},
		},
		Connections: []diagram.Connection{{ID: "1", From: "a", To: "b"}},
		Zoom:        1,
	}
	surface := NewRaster(400, 100, 2)

	_, ok := surface.Context()
	assert.False(t, ok, "no context before the first fit")

	r := New(staticSource(f), NewManualScheduler(), WithLineWidth(4), WithStrokeColor("#000000"))
	r.Attach(surface)
	require.Equal(t, 1, r.Paint())

	img := surface.Image()
	require.NotNil(t, img)
	assert.Equal(t, 800, img.Bounds().Dx())
	assert.Equal(t, 200, img.Bounds().Dy())

	// Line runs along y=50 logical, y=100 device.
	onLine := color.GrayModel.Convert(img.At(320, 100)).(color.Gray)
	offLine := color.GrayModel.Convert(img.At(320, 20)).(color.Gray)
	assert.Less(t, onLine.Y, uint8(128))
	assert.Equal(t, uint8(255), offLine.Y)
}

func TestRasterKeepsStrokeWidthUnderZoom(t *testing.T) {
	paintHeight := func(zoom float64) int {
		f := Frame{
			Nodes: []diagram.Node{
				{ID: "a", X: 0, Y: 0},
				{ID: "b", X: 100, Y: 0},
			},
			Connections: []diagram.Connection{{ID: "1", From: "a", To: "b"}},
			Zoom:        zoom,
		}
		surface := NewRaster(400, 100, 1)
		r := New(staticSource(f), NewManualScheduler(), WithLineWidth(6), WithStrokeColor("#000000"))
		r.Attach(surface)
		r.Paint()

		img := surface.Image()
		x := int(110 * zoom)
		dark := 0
		for y := 0; y < img.Bounds().Dy(); y++ {
			if color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y < 128 {
				dark++
			}
		}
		return dark
	}

	base := paintHeight(1)
	assert.InDelta(t, 6, base, 1)
	assert.InDelta(t, base, paintHeight(2), 1)
	assert.InDelta(t, base, paintHeight(0.5), 1)
}

func TestAfterPaintSeesPaintedFrame(t *testing.T) {
	var got []Frame
	f := twoNodeFrame()
	r := New(staticSource(f), NewManualScheduler(), WithAfterPaint(func(fr Frame) { got = append(got, fr) }))

	r.Paint()
	assert.Empty(t, got, "no hook without a surface")

	r.Attach(&recorder{width: 10, height: 10, ratio: 1})
	r.Paint()
	require.Len(t, got, 1)
	assert.Equal(t, f, got[0])
}
