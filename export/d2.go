package export

import (
	"fmt"
	"strings"

	"nodeboard/diagram"
)

// D2Exporter exports diagrams to D2 syntax
type D2Exporter struct{}

// NewD2Exporter creates a new D2 exporter
func NewD2Exporter() *D2Exporter {
	return &D2Exporter{}
}

// Export converts the diagram to D2. Each node keeps its stored position
// through top/left, which the TALA layout engine honors.
func (e *D2Exporter) Export(d *diagram.Diagram) ([]byte, error) {
	if err := checkDiagram(d); err != nil {
		return nil, err
	}

	var sb strings.Builder
	if d.Name != "" {
		fmt.Fprintf(&sb, "# %s\n\n", d.Name)
	}

	ids := aliases(d.Nodes)
	for _, n := range d.Nodes {
		id := ids[n.ID]
		fmt.Fprintf(&sb, "%s: %s {\n", id, e.escapeLabel(nodeLabel(n, id)))
		fmt.Fprintf(&sb, "  top: %d\n", int(n.Y))
		fmt.Fprintf(&sb, "  left: %d\n", int(n.X))
		fmt.Fprintf(&sb, "  width: %d\n", int(diagram.NodeWidth))
		fmt.Fprintf(&sb, "  height: %d\n", int(diagram.NodeHeight))
		if n.Color != "" {
			fmt.Fprintf(&sb, "  style.fill: \"%s\"\n", n.Color)
		}
		sb.WriteString("}\n")
	}

	conns := edges(d, ids)
	if len(conns) > 0 {
		sb.WriteString("\n")
	}
	for _, edge := range conns {
		fmt.Fprintf(&sb, "%s -- %s\n", edge[0], edge[1])
	}
	return []byte(sb.String()), nil
}

// escapeLabel quotes labels containing characters D2 treats as syntax
func (e *D2Exporter) escapeLabel(label string) string {
	label = strings.ReplaceAll(label, "\n", " ")
	if strings.ContainsAny(label, `:;{}[]#|'"-`) {
		return `"` + strings.ReplaceAll(label, `"`, `\"`) + `"`
	}
	return label
}

// GetFileExtension returns the file extension for D2
func (e *D2Exporter) GetFileExtension() string {
	return ".d2"
}

// GetFormatName returns the format name
func (e *D2Exporter) GetFormatName() string {
	return "D2"
}
