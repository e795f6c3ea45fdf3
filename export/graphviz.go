package export

import (
	"fmt"
	"strings"

	"nodeboard/diagram"
)

// GraphvizExporter exports diagrams to Graphviz DOT syntax
type GraphvizExporter struct{}

// NewGraphvizExporter creates a new Graphviz exporter
func NewGraphvizExporter() *GraphvizExporter {
	return &GraphvizExporter{}
}

// Export converts the diagram to an undirected DOT graph. Node positions
// are pinned in points with y flipped, so neato -n reproduces the layout.
func (e *GraphvizExporter) Export(d *diagram.Diagram) ([]byte, error) {
	if err := checkDiagram(d); err != nil {
		return nil, err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "graph \"%s\" {\n", e.escapeLabel(d.Name))
	sb.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white];\n\n")

	ids := aliases(d.Nodes)
	for _, n := range d.Nodes {
		id := ids[n.ID]
		attrs := []string{
			fmt.Sprintf("label=\"%s\"", e.escapeLabel(nodeLabel(n, id))),
			fmt.Sprintf("pos=\"%s\"", e.position(n)),
		}
		if n.Color != "" {
			attrs = append(attrs, fmt.Sprintf("fillcolor=\"%s\"", n.Color))
		}
		fmt.Fprintf(&sb, "  %s [%s];\n", id, strings.Join(attrs, ", "))
	}

	conns := edges(d, ids)
	if len(conns) > 0 {
		sb.WriteString("\n")
	}
	for _, edge := range conns {
		fmt.Fprintf(&sb, "  %s -- %s;\n", edge[0], edge[1])
	}

	sb.WriteString("}\n")
	return []byte(sb.String()), nil
}

// position returns the node center in DOT coordinates.
func (e *GraphvizExporter) position(n diagram.Node) string {
	c := n.Center()
	return fmt.Sprintf("%g,%g!", c.X, -c.Y)
}

// escapeLabel escapes special characters in labels
func (e *GraphvizExporter) escapeLabel(label string) string {
	label = strings.ReplaceAll(label, `\`, `\\`)
	label = strings.ReplaceAll(label, `"`, `\"`)
	label = strings.ReplaceAll(label, "\n", `\n`)
	return label
}

// GetFileExtension returns the file extension for DOT
func (e *GraphvizExporter) GetFileExtension() string {
	return ".dot"
}

// GetFormatName returns the format name
func (e *GraphvizExporter) GetFormatName() string {
	return "Graphviz DOT"
}
