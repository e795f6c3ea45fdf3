// Package render paints diagram connections onto a drawing surface under
// the current pan and zoom, at most once per animation frame.
package render

// Context is the 2D drawing API the renderer paints through. Transforms
// compose like an HTML canvas: later calls apply in the already-transformed
// space, and line widths are in user space.
type Context interface {
	Save()
	Restore()
	Translate(x, y float64)
	Scale(sx, sy float64)
	Clear()
	SetLineWidth(w float64)
	SetStrokeColor(hex string)
	StrokeLine(x1, y1, x2, y2 float64)
}

// Surface is a resizable drawing target inside some container.
type Surface interface {
	// Size reports the container size in logical pixels and the device
	// pixel ratio.
	Size() (width, height int, pixelRatio float64)

	// Resize sets the backing store size in device pixels. It resets the
	// context transform to identity.
	Resize(width, height int)

	// Context returns the drawing context, or false while none is available
	// (for example before the surface is mounted).
	Context() (Context, bool)
}

// Fit sizes the surface backing store to its container at device pixel
// density and scales the context so callers can draw in logical pixels.
func Fit(s Surface) (Context, bool) {
	if s == nil {
		return nil, false
	}
	w, h, ratio := s.Size()
	if w <= 0 || h <= 0 {
		return nil, false
	}
	if ratio <= 0 {
		ratio = 1
	}
	s.Resize(int(float64(w)*ratio+0.5), int(float64(h)*ratio+0.5))

	ctx, ok := s.Context()
	if !ok || ctx == nil {
		return nil, false
	}
	ctx.Scale(ratio, ratio)
	return ctx, true
}
