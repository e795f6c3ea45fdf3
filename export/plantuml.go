package export

import (
	"fmt"
	"strings"

	"nodeboard/diagram"
)

// PlantUMLExporter exports diagrams to PlantUML syntax
type PlantUMLExporter struct{}

// NewPlantUMLExporter creates a new PlantUML exporter
func NewPlantUMLExporter() *PlantUMLExporter {
	return &PlantUMLExporter{}
}

// Export converts the diagram to a PlantUML component diagram with each
// node as a rectangle.
func (e *PlantUMLExporter) Export(d *diagram.Diagram) ([]byte, error) {
	if err := checkDiagram(d); err != nil {
		return nil, err
	}

	var sb strings.Builder
	sb.WriteString("@startuml\n")
	if d.Name != "" {
		fmt.Fprintf(&sb, "title %s\n", e.escapeLabel(d.Name))
	}
	sb.WriteString("skinparam backgroundColor white\n\n")

	ids := aliases(d.Nodes)
	for _, n := range d.Nodes {
		id := ids[n.ID]
		fmt.Fprintf(&sb, "rectangle \"%s\" as %s", e.escapeLabel(nodeLabel(n, id)), id)
		if n.Color != "" {
			fmt.Fprintf(&sb, " %s", n.Color)
		}
		sb.WriteString("\n")
	}

	conns := edges(d, ids)
	if len(conns) > 0 {
		sb.WriteString("\n")
	}
	for _, edge := range conns {
		fmt.Fprintf(&sb, "%s -- %s\n", edge[0], edge[1])
	}

	sb.WriteString("@enduml\n")
	return []byte(sb.String()), nil
}

// escapeLabel escapes special characters in labels
func (e *PlantUMLExporter) escapeLabel(label string) string {
	label = strings.ReplaceAll(label, `"`, `'`)
	label = strings.ReplaceAll(label, "\n", `\n`)
	return label
}

// GetFileExtension returns the file extension for PlantUML
func (e *PlantUMLExporter) GetFileExtension() string {
	return ".puml"
}

// GetFormatName returns the format name
func (e *PlantUMLExporter) GetFormatName() string {
	return "PlantUML"
}
