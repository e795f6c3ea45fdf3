package importer

import (
	"regexp"
	"strconv"
	"strings"

	"nodeboard/diagram"
)

// D2Importer imports D2 diagram format
type D2Importer struct{}

// NewD2Importer creates a new D2 importer
func NewD2Importer() *D2Importer {
	return &D2Importer{}
}

var d2EdgeRe = regexp.MustCompile(`\s*(?:<->|<-|->|--)\s*`)

// CanImport checks if the content is a D2 diagram
func (d *D2Importer) CanImport(content string) bool {
	content = strings.TrimSpace(content)
	hasOtherMarkers := strings.HasPrefix(content, "@startuml") ||
		strings.HasPrefix(content, "graph") ||
		strings.HasPrefix(content, "digraph") ||
		strings.HasPrefix(content, "flowchart") ||
		strings.HasPrefix(content, "sequenceDiagram") ||
		strings.HasPrefix(content, "{") ||
		strings.HasPrefix(content, "[")
	if hasOtherMarkers {
		return false
	}

	hasArrows := strings.Contains(content, "->") || strings.Contains(content, "--")
	hasD2Syntax := strings.Contains(content, ".style.") || strings.Contains(content, ": {") ||
		strings.Contains(content, "top:") || strings.Contains(content, ".shape:")
	return hasArrows || hasD2Syntax
}

// Import converts D2 content into a diagram. Containers are flattened:
// their own properties are read but nested shapes are skipped. A leading
// comment names the diagram.
func (d *D2Importer) Import(content string) (*diagram.Diagram, error) {
	b := newBuilder()

	var (
		current    string // shape whose block is open
		depth      int
		statements int
	)

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if comment, ok := strings.CutPrefix(line, "#"); ok {
			if statements == 0 && b.d.Name == "" {
				b.d.Name = strings.TrimSpace(comment)
			}
			continue
		}
		statements++

		if depth > 0 {
			switch {
			case line == "}":
				depth--
				if depth == 0 {
					current = ""
				}
			case strings.HasSuffix(line, "{"):
				depth++
			case depth == 1 && current != "":
				key, value, _ := strings.Cut(line, ":")
				d.setProperty(b, current, strings.TrimSpace(key), value)
			}
			continue
		}

		if decl, ok := strings.CutSuffix(line, "{"); ok {
			depth = 1
			current = ""
			if key, _, _ := splitKey(decl); !d2EdgeRe.MatchString(key) {
				current = d.declare(b, decl)
			}
			continue
		}

		if key, _, _ := splitKey(line); d2EdgeRe.MatchString(key) {
			d.parseConnection(b, line)
			continue
		}
		d.declare(b, line)
	}

	return b.finish("D2")
}

// declare handles "id", "id: label" and "id.prop: value", returning the id.
func (d *D2Importer) declare(b *builder, decl string) string {
	key, value, hasValue := splitKey(decl)
	key = unquote(key)
	if key == "" {
		return ""
	}

	if id, prop, ok := strings.Cut(key, "."); ok && d.isProperty(prop) {
		d.setProperty(b, id, prop, value)
		return id
	}

	b.node(key)
	if hasValue {
		b.label(key, unquote(value))
	}
	return key
}

func (d *D2Importer) isProperty(prop string) bool {
	switch prop {
	case "label", "top", "left", "width", "height", "shape", "style.fill":
		return true
	}
	return strings.HasPrefix(prop, "style.")
}

func (d *D2Importer) setProperty(b *builder, id, prop, value string) {
	value = unquote(value)
	switch prop {
	case "label":
		b.label(id, value)
	case "style.fill":
		b.color(id, value)
	case "top", "left":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return
		}
		n := b.node(id)
		p := diagram.Point{X: n.X, Y: n.Y}
		if prop == "top" {
			p.Y = v
		} else {
			p.X = v
		}
		b.place(id, p)
	}
}

// parseConnection reads a chain such as "a -> b -- c: label".
func (d *D2Importer) parseConnection(b *builder, line string) {
	chain, _, _ := splitKey(line)
	parts := d2EdgeRe.Split(chain, -1)

	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		id := unquote(p)
		if id == "" {
			return
		}
		ids = append(ids, id)
	}
	b.connect(ids...)
}

// splitKey cuts s at its first colon outside quotes.
func splitKey(s string) (key, value string, ok bool) {
	i := indexOutsideQuotes(s, ':')
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+1:], true
}

// GetFormatName returns the format name
func (d *D2Importer) GetFormatName() string {
	return "D2"
}

// GetFileExtensions returns common file extensions
func (d *D2Importer) GetFileExtensions() []string {
	return []string{".d2"}
}
