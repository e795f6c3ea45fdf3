// Package export converts a diagram to text and image formats
package export

import (
	"errors"
	"fmt"
	"strings"

	"nodeboard/diagram"
)

// Common errors
var (
	ErrNilDiagram   = errors.New("diagram is nil")
	ErrEmptyDiagram = errors.New("diagram has no nodes")
)

// Format represents an export format
type Format string

const (
	// FormatJSON exports the stored diagram record
	FormatJSON Format = "json"
	// FormatASCII exports to box-drawing art
	FormatASCII Format = "ascii"
	// FormatMermaid exports to Mermaid flowchart syntax
	FormatMermaid Format = "mermaid"
	// FormatGraphviz exports to Graphviz DOT syntax
	FormatGraphviz Format = "dot"
	// FormatPlantUML exports to PlantUML syntax
	FormatPlantUML Format = "plantuml"
	// FormatD2 exports to D2 syntax
	FormatD2 Format = "d2"
	// FormatPNG exports a raster image
	FormatPNG Format = "png"
)

// Exporter interface for different export formats
type Exporter interface {
	// Export converts a diagram to the target format
	Export(d *diagram.Diagram) ([]byte, error)
	// GetFileExtension returns the recommended file extension for this format
	GetFileExtension() string
	// GetFormatName returns a human-readable name for this format
	GetFormatName() string
}

// NewExporter creates an exporter for the specified format
func NewExporter(format Format) (Exporter, error) {
	switch format {
	case FormatJSON:
		return NewJSONExporter(), nil
	case FormatASCII:
		return NewASCIIExporter(), nil
	case FormatMermaid:
		return NewMermaidExporter(), nil
	case FormatGraphviz:
		return NewGraphvizExporter(), nil
	case FormatPlantUML:
		return NewPlantUMLExporter(), nil
	case FormatD2:
		return NewD2Exporter(), nil
	case FormatPNG:
		return NewPNGExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", format)
	}
}

// ParseFormat converts a string to a Format
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "json":
		return FormatJSON, nil
	case "ascii", "text", "txt":
		return FormatASCII, nil
	case "mermaid", "mmd":
		return FormatMermaid, nil
	case "dot", "graphviz", "gv":
		return FormatGraphviz, nil
	case "plantuml", "puml":
		return FormatPlantUML, nil
	case "d2":
		return FormatD2, nil
	case "png":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unknown format: %s", s)
	}
}

// GetAvailableFormats returns a list of all available export formats
func GetAvailableFormats() []Format {
	return []Format{
		FormatJSON,
		FormatASCII,
		FormatMermaid,
		FormatGraphviz,
		FormatPlantUML,
		FormatD2,
		FormatPNG,
	}
}

// GetFormatDescriptions returns human-readable descriptions of all formats
func GetFormatDescriptions() map[Format]string {
	return map[Format]string{
		FormatJSON:     "Diagram record as stored",
		FormatASCII:    "Box-drawing art at the stored positions",
		FormatMermaid:  "Mermaid flowchart (for Markdown)",
		FormatGraphviz: "Graphviz DOT with pinned positions",
		FormatPlantUML: "PlantUML component diagram",
		FormatD2:       "D2 diagram with pinned positions",
		FormatPNG:      "PNG image",
	}
}

// checkDiagram rejects diagrams the graph formats cannot express.
func checkDiagram(d *diagram.Diagram) error {
	if d == nil {
		return ErrNilDiagram
	}
	if len(d.Nodes) == 0 {
		return ErrEmptyDiagram
	}
	return nil
}

// aliases gives each node a short identifier in diagram order. Node ids
// are UUIDs, which most text formats cannot use unquoted.
func aliases(nodes []diagram.Node) map[string]string {
	m := make(map[string]string, len(nodes))
	for i, n := range nodes {
		m[n.ID] = fmt.Sprintf("N%d", i+1)
	}
	return m
}

// edges returns the connections whose endpoints both exist, as alias pairs.
func edges(d *diagram.Diagram, ids map[string]string) [][2]string {
	var out [][2]string
	for _, c := range d.Connections {
		from, ok := ids[c.From]
		if !ok {
			continue
		}
		to, ok := ids[c.To]
		if !ok {
			continue
		}
		out = append(out, [2]string{from, to})
	}
	return out
}

// nodeLabel returns the node text, or its alias for blank text.
func nodeLabel(n diagram.Node, alias string) string {
	if strings.TrimSpace(n.Text) == "" {
		return alias
	}
	return n.Text
}
