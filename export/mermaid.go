package export

import (
	"fmt"
	"strings"

	"nodeboard/diagram"
)

// MermaidExporter exports diagrams to Mermaid syntax
type MermaidExporter struct{}

// NewMermaidExporter creates a new Mermaid exporter
func NewMermaidExporter() *MermaidExporter {
	return &MermaidExporter{}
}

// Export converts the diagram to a Mermaid flowchart. Connections are
// undirected, so they use the plain link.
func (e *MermaidExporter) Export(d *diagram.Diagram) ([]byte, error) {
	if err := checkDiagram(d); err != nil {
		return nil, err
	}

	var sb strings.Builder
	if d.Name != "" {
		fmt.Fprintf(&sb, "---\ntitle: %s\n---\n", e.escapeLabel(d.Name))
	}
	sb.WriteString("flowchart LR\n")

	ids := aliases(d.Nodes)
	for _, n := range d.Nodes {
		id := ids[n.ID]
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", id, e.escapeLabel(nodeLabel(n, id)))
	}
	for _, edge := range edges(d, ids) {
		fmt.Fprintf(&sb, "    %s --- %s\n", edge[0], edge[1])
	}
	for _, n := range d.Nodes {
		if n.Color != "" {
			fmt.Fprintf(&sb, "    style %s fill:%s\n", ids[n.ID], n.Color)
		}
	}
	return []byte(sb.String()), nil
}

// escapeLabel escapes characters that end a quoted Mermaid label
func (e *MermaidExporter) escapeLabel(label string) string {
	label = strings.ReplaceAll(label, `"`, "#quot;")
	label = strings.ReplaceAll(label, "\n", "<br/>")
	return label
}

// GetFileExtension returns the file extension for Mermaid
func (e *MermaidExporter) GetFileExtension() string {
	return ".mmd"
}

// GetFormatName returns the format name
func (e *MermaidExporter) GetFormatName() string {
	return "Mermaid"
}
