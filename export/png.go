package export

import (
	"bytes"
	"fmt"
	"math"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"nodeboard/diagram"
	"nodeboard/render"
)

// PNG drawing constants, in logical pixels.
const (
	pngFontSize     = 12.0
	pngCornerRadius = 6.0
	pngBorderWidth  = 1.5
	pngBorderColor  = "#334155"
	pngTextColor    = "#0f172a"
)

var monoFont = sync.OnceValues(func() (*truetype.Font, error) {
	return truetype.Parse(gomono.TTF)
})

// PNGExporter exports diagrams to a PNG image at the stored positions.
type PNGExporter struct {
	// Scale is the device pixel ratio of the image.
	Scale float64
	// Padding is the blank border around the nodes, in logical pixels.
	Padding float64
}

// NewPNGExporter creates a new PNG exporter
func NewPNGExporter() *PNGExporter {
	return &PNGExporter{Scale: 1, Padding: 20}
}

// Export renders the diagram: connection lines from the renderer onto a
// raster surface, then filled node boxes with their labels on top.
func (e *PNGExporter) Export(d *diagram.Diagram) ([]byte, error) {
	if err := checkDiagram(d); err != nil {
		return nil, err
	}
	scale := e.Scale
	if scale <= 0 {
		scale = 1
	}

	ttf, err := monoFont()
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    pngFontSize * scale,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	lo, hi, _ := diagram.Bounds(d.Nodes)
	width := int(math.Ceil(hi.X - lo.X + 2*e.Padding))
	height := int(math.Ceil(hi.Y - lo.Y + 2*e.Padding))
	surface := render.NewRaster(width, height, scale)

	frame := render.Frame{
		Nodes:       d.Nodes,
		Connections: d.Connections,
		Pan:         diagram.Point{X: e.Padding - lo.X, Y: e.Padding - lo.Y},
		Zoom:        1,
	}
	r := render.New(func() render.Frame { return frame }, render.NewManualScheduler(),
		render.WithAfterPaint(func(f render.Frame) {
			dc := surface.GG()
			dc.SetFontFace(face)
			drawNodesPNG(dc, f, scale)
		}),
	)
	r.Attach(surface)
	r.Paint()
	r.Close()

	var buf bytes.Buffer
	if err := surface.GG().EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// drawNodesPNG draws node boxes in diagram space. gg strokes and text
// are sized in device pixels, hence the scale.
func drawNodesPNG(dc *gg.Context, f render.Frame, scale float64) {
	dc.Push()
	defer dc.Pop()
	dc.Translate(f.Pan.X, f.Pan.Y)
	dc.Scale(f.Zoom, f.Zoom)

	for _, n := range f.Nodes {
		dc.DrawRoundedRectangle(n.X, n.Y, diagram.NodeWidth, diagram.NodeHeight, pngCornerRadius)
		fill := n.Color
		if fill == "" {
			fill = "#ffffff"
		}
		dc.SetHexColor(fill)
		dc.FillPreserve()
		dc.SetHexColor(pngBorderColor)
		dc.SetLineWidth(pngBorderWidth * scale)
		dc.Stroke()

		c := n.Center()
		dc.SetHexColor(pngTextColor)
		label := fitLabel(dc, n.Text, (diagram.NodeWidth-8)*scale)
		dc.DrawStringAnchored(label, c.X, c.Y, 0.5, 0.5)
	}
}

// fitLabel shortens text with an ellipsis until it measures at most
// maxWidth device pixels.
func fitLabel(dc *gg.Context, text string, maxWidth float64) string {
	if w, _ := dc.MeasureString(text); w <= maxWidth {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		s := string(runes) + "…"
		if w, _ := dc.MeasureString(s); w <= maxWidth {
			return s
		}
	}
	return ""
}

// GetFileExtension returns the file extension for PNG
func (e *PNGExporter) GetFileExtension() string {
	return ".png"
}

// GetFormatName returns the format name
func (e *PNGExporter) GetFormatName() string {
	return "PNG"
}
