package render

import (
	"go.uber.org/zap"

	"nodeboard/diagram"
)

// Default stroke settings for connection lines.
const (
	DefaultLineWidth   = 2.0
	DefaultStrokeColor = "#64748b"
)

// Frame is a read-only snapshot of everything one paint needs.
type Frame struct {
	Nodes       []diagram.Node
	Connections []diagram.Connection
	Pan         diagram.Point
	Zoom        float64
}

// Source produces the frame to paint. It is called at paint time, so the
// latest state is drawn no matter how many invalidations came first.
type Source func() Frame

// Option configures a Renderer.
type Option func(*Renderer)

// WithLineWidth sets the on-screen connection thickness.
func WithLineWidth(w float64) Option {
	return func(r *Renderer) {
		if w > 0 {
			r.lineWidth = w
		}
	}
}

// WithStrokeColor sets the connection color.
func WithStrokeColor(hex string) Option {
	return func(r *Renderer) {
		r.color = hex
	}
}

// WithLogger sets the renderer logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Renderer) {
		if log != nil {
			r.log = log
		}
	}
}

// WithAfterPaint registers fn to run after each successful paint with the
// frame that was drawn. Screen owners use it to draw nodes over the lines.
func WithAfterPaint(fn func(Frame)) Option {
	return func(r *Renderer) {
		r.afterPaint = fn
	}
}

// Renderer draws connection lines. Nodes themselves are drawn by whoever
// owns the screen.
type Renderer struct {
	source    Source
	scheduler Scheduler
	surface   Surface
	log       *zap.Logger

	lineWidth  float64
	color      string
	afterPaint func(Frame)

	pending    FrameID
	hasPending bool
}

// New creates a renderer that reads frames from source and defers painting
// through scheduler.
func New(source Source, scheduler Scheduler, opts ...Option) *Renderer {
	r := &Renderer{
		source:    source,
		scheduler: scheduler,
		log:       zap.NewNop(),
		lineWidth: DefaultLineWidth,
		color:     DefaultStrokeColor,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Attach sets the surface to paint on.
func (r *Renderer) Attach(s Surface) {
	r.surface = s
}

// Detach forgets the surface. Later paints are no-ops.
func (r *Renderer) Detach() {
	r.surface = nil
}

// Invalidate schedules a paint for the next frame. A paint already
// scheduled is cancelled first, so bursts of changes paint once.
func (r *Renderer) Invalidate() {
	if r.hasPending {
		r.scheduler.CancelFrame(r.pending)
	}
	r.pending = r.scheduler.RequestFrame(func() {
		r.hasPending = false
		r.Paint()
	})
	r.hasPending = true
}

// Close cancels any scheduled paint and detaches the surface.
func (r *Renderer) Close() {
	if r.hasPending {
		r.scheduler.CancelFrame(r.pending)
		r.hasPending = false
	}
	r.Detach()
}

// Paint draws the current frame immediately and returns the number of
// connections drawn. A missing surface or context paints nothing.
func (r *Renderer) Paint() int {
	ctx, ok := Fit(r.surface)
	if !ok {
		r.log.Debug("no drawing context, skipping paint")
		return 0
	}
	f := r.source()
	n := DrawConnections(ctx, f, r.lineWidth, r.color)
	if r.afterPaint != nil {
		r.afterPaint(f)
	}
	return n
}

// DrawConnections clears ctx and strokes a straight line between the
// centers of each connected node pair. Connections with a missing endpoint
// are skipped. The stroke width is divided by the zoom so lines keep the
// same thickness on screen.
func DrawConnections(ctx Context, f Frame, lineWidth float64, color string) int {
	zoom := f.Zoom
	if zoom <= 0 {
		zoom = 1
	}

	ctx.Clear()
	ctx.Save()
	defer ctx.Restore()

	ctx.Translate(f.Pan.X, f.Pan.Y)
	ctx.Scale(zoom, zoom)
	ctx.SetLineWidth(lineWidth / zoom)
	ctx.SetStrokeColor(color)

	nodes := diagram.NodeIndex(f.Nodes)
	drawn := 0
	for _, c := range f.Connections {
		from, ok := nodes[c.From]
		if !ok {
			continue
		}
		to, ok := nodes[c.To]
		if !ok {
			continue
		}
		a, b := from.Center(), to.Center()
		ctx.StrokeLine(a.X, a.Y, b.X, b.Y)
		drawn++
	}
	return drawn
}
