// Package importer reads diagrams written in other text formats. When the
// source does not place every node, nodes are set out on a grid in source
// order.
package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"nodeboard/diagram"
)

// Grid used for sources without positions.
const (
	gridColumns = 4
	gridSpacing = 80.0
)

// Importer converts one text format into a diagram.
type Importer interface {
	// CanImport checks if the given content can be imported by this importer
	CanImport(content string) bool

	// Import converts the input content into a diagram
	Import(content string) (*diagram.Diagram, error)

	// GetFormatName returns the human-readable name of the format
	GetFormatName() string

	// GetFileExtensions returns common file extensions for this format
	GetFileExtensions() []string
}

// ImporterRegistry manages available importers
type ImporterRegistry struct {
	importers []Importer
}

// NewImporterRegistry creates a registry with every built-in importer.
func NewImporterRegistry() *ImporterRegistry {
	return &ImporterRegistry{
		importers: []Importer{
			NewMermaidImporter(),
			NewGraphvizImporter(),
			NewD2Importer(),
		},
	}
}

// Register adds a new importer to the registry
func (r *ImporterRegistry) Register(importer Importer) {
	r.importers = append(r.importers, importer)
}

// DetectFormat returns the first importer that accepts content.
func (r *ImporterRegistry) DetectFormat(content string) (Importer, error) {
	for _, imp := range r.importers {
		if imp.CanImport(content) {
			return imp, nil
		}
	}
	return nil, fmt.Errorf("unable to detect format")
}

// ForFile picks an importer by file extension.
func (r *ImporterRegistry) ForFile(filename string) (Importer, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, imp := range r.importers {
		for _, e := range imp.GetFileExtensions() {
			if e == ext {
				return imp, true
			}
		}
	}
	return nil, false
}

// Import attempts to import content using auto-detection
func (r *ImporterRegistry) Import(content string) (*diagram.Diagram, error) {
	importer, err := r.DetectFormat(content)
	if err != nil {
		return nil, err
	}
	return importer.Import(content)
}

// ImportWithFormat imports content with the importer whose name or file
// extension matches format.
func (r *ImporterRegistry) ImportWithFormat(content, format string) (*diagram.Diagram, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))

	for _, imp := range r.importers {
		if strings.ToLower(imp.GetFormatName()) == format {
			return imp.Import(content)
		}
		for _, ext := range imp.GetFileExtensions() {
			if ext == "."+format {
				return imp.Import(content)
			}
		}
	}

	return nil, fmt.Errorf("unknown format: %s", format)
}

// GetAvailableFormats returns a list of available import formats
func (r *ImporterRegistry) GetAvailableFormats() []string {
	formats := make([]string, len(r.importers))
	for i, imp := range r.importers {
		formats[i] = imp.GetFormatName()
	}
	return formats
}

// builder collects nodes and connections in source order. Ids are the
// identifiers the source format uses.
type builder struct {
	d          *diagram.Diagram
	index      map[string]int
	positioned map[string]bool
}

func newBuilder() *builder {
	return &builder{
		d:          &diagram.Diagram{Nodes: []diagram.Node{}, Connections: []diagram.Connection{}},
		index:      make(map[string]int),
		positioned: make(map[string]bool),
	}
}

// node returns the node for id, creating it labelled with its id.
func (b *builder) node(id string) *diagram.Node {
	if i, ok := b.index[id]; ok {
		return &b.d.Nodes[i]
	}
	b.d.Nodes = append(b.d.Nodes, diagram.Node{ID: id, Text: id})
	b.index[id] = len(b.d.Nodes) - 1
	return &b.d.Nodes[len(b.d.Nodes)-1]
}

func (b *builder) label(id, text string) {
	if text = strings.TrimSpace(text); text != "" {
		b.node(id).Text = text
	}
}

// namedColors maps the color names common in hand-written sources to hex.
var namedColors = map[string]string{
	"red":    "#fecaca",
	"orange": "#fed7aa",
	"yellow": "#fde68a",
	"green":  "#bbf7d0",
	"blue":   "#bfdbfe",
	"purple": "#ddd6fe",
	"pink":   "#fbcfe8",
	"gray":   "#e5e7eb",
	"grey":   "#e5e7eb",
	"white":  "#ffffff",
}

// color sets a fill given as hex or a known name; anything else is dropped.
func (b *builder) color(id, value string) {
	value = strings.Trim(strings.TrimSpace(value), `"`)
	if hex, ok := namedColors[strings.ToLower(value)]; ok {
		value = hex
	}
	if isHexColor(value) {
		b.node(id).Color = strings.ToLower(value)
	}
}

// place sets the node's top-left corner.
func (b *builder) place(id string, p diagram.Point) {
	n := b.node(id)
	n.X, n.Y = p.X, p.Y
	b.positioned[id] = true
}

func (b *builder) connect(ids ...string) {
	for i := 0; i+1 < len(ids); i++ {
		b.node(ids[i])
		b.node(ids[i+1])
		b.d.Connections = append(b.d.Connections, diagram.Connection{
			ID:   fmt.Sprintf("c%d", len(b.d.Connections)+1),
			From: ids[i],
			To:   ids[i+1],
		})
	}
}

// finish places the nodes on a grid unless the source placed all of them.
func (b *builder) finish(format string) (*diagram.Diagram, error) {
	if len(b.d.Nodes) == 0 {
		return nil, fmt.Errorf("no nodes found in %s diagram", format)
	}
	if len(b.positioned) < len(b.d.Nodes) {
		for i := range b.d.Nodes {
			b.d.Nodes[i].X = float64(i%gridColumns) * (diagram.NodeWidth + gridSpacing)
			b.d.Nodes[i].Y = float64(i/gridColumns) * (diagram.NodeHeight + gridSpacing)
		}
	}
	return b.d, nil
}

func isHexColor(s string) bool {
	if len(s) != 4 && len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
		s = strings.ReplaceAll(s, `\"`, `"`)
	}
	return s
}
