package export

import (
	"math"
	"strings"

	"nodeboard/canvas"
	"nodeboard/diagram"
	"nodeboard/render"
)

// ASCIIExporter exports diagrams to box-drawing art. Connection lines are
// drawn by the renderer onto a character canvas and node boxes on top, as
// the terminal editor shows them at zoom 1.
type ASCIIExporter struct {
	// Margin is the number of blank cells around the drawing.
	Margin int
	// ASCII restricts output to plain ASCII characters.
	ASCII bool
}

// NewASCIIExporter creates a new ASCII exporter
func NewASCIIExporter() *ASCIIExporter {
	return &ASCIIExporter{}
}

// Export converts the diagram to text art
func (e *ASCIIExporter) Export(d *diagram.Diagram) ([]byte, error) {
	if err := checkDiagram(d); err != nil {
		return nil, err
	}

	lo, hi, _ := diagram.Bounds(d.Nodes)
	margin := max(e.Margin, 0)
	// One spare cell each way: boxes snap outward to whole cells.
	cols := int(math.Ceil((hi.X-lo.X)/canvas.CellWidth)) + 2*margin + 1
	rows := int(math.Ceil((hi.Y-lo.Y)/canvas.CellHeight)) + 2*margin + 1

	style := canvas.RoundedBox
	if e.ASCII {
		style = canvas.ASCIIBox
	}
	surface := canvas.NewSurface(cols, rows)
	surface.SetASCII(e.ASCII)

	frame := render.Frame{
		Nodes:       d.Nodes,
		Connections: d.Connections,
		Pan: diagram.Point{
			X: float64(margin*canvas.CellWidth) - lo.X,
			Y: float64(margin*canvas.CellHeight) - lo.Y,
		},
		Zoom: 1,
	}
	r := render.New(func() render.Frame { return frame }, render.NewManualScheduler(),
		render.WithAfterPaint(func(f render.Frame) {
			surface.Canvas().DrawNodes(f.Nodes, f.Pan, f.Zoom, style)
		}),
	)
	r.Attach(surface)
	r.Paint()
	r.Close()

	lines := surface.Canvas().Lines()
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return []byte(strings.Join(lines, "\n") + "\n"), nil
}

// GetFileExtension returns the recommended file extension
func (e *ASCIIExporter) GetFileExtension() string {
	return ".txt"
}

// GetFormatName returns the format name
func (e *ASCIIExporter) GetFormatName() string {
	if e.ASCII {
		return "ASCII Art"
	}
	return "Unicode Art"
}
