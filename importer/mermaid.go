package importer

import (
	"fmt"
	"regexp"
	"strings"

	"nodeboard/diagram"
)

// MermaidImporter imports Mermaid flowcharts
type MermaidImporter struct{}

// NewMermaidImporter creates a new Mermaid importer
func NewMermaidImporter() *MermaidImporter {
	return &MermaidImporter{}
}

var (
	mermaidHeaderRe = regexp.MustCompile(`^(?:graph|flowchart)(?:\s+(?:TB|TD|BT|RL|LR))?\s*;?$`)
	// id followed by a shape such as [text], (text), ((text)), {text}
	mermaidNodeRe  = regexp.MustCompile(`([A-Za-z0-9_]+)\s*(\(\(|\[\[|\[\(|\(\[|\{\{|\[|\(|\{|>)("[^"]*"|[^\]\)\}"]*)(\)\)|\]\]|\)\]|\]\)|\}\}|\]|\)|\})`)
	mermaidLinkRe  = regexp.MustCompile(`\s*<?(?:-{2,}|={2,}|-\.+-)>?\s*`)
	mermaidLabelRe = regexp.MustCompile(`\|[^|]*\|`)
	mermaidIDRe    = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
	mermaidStyleRe = regexp.MustCompile(`^style\s+([A-Za-z0-9_]+)\s+(.*)$`)
)

// CanImport checks if the content is a Mermaid flowchart
func (m *MermaidImporter) CanImport(content string) bool {
	_, body := m.splitFrontMatter(content)
	return mermaidHeaderRe.MatchString(m.header(body))
}

func (m *MermaidImporter) header(body string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(body), "\n")
	return strings.TrimSpace(first)
}

// Import converts a Mermaid flowchart into a diagram. Link direction and
// node shapes are dropped; every node becomes a box.
func (m *MermaidImporter) Import(content string) (*diagram.Diagram, error) {
	title, body := m.splitFrontMatter(content)
	body = strings.TrimSpace(body)
	if strings.HasPrefix(body, "sequenceDiagram") {
		return nil, fmt.Errorf("mermaid sequence diagrams are not supported")
	}
	if !mermaidHeaderRe.MatchString(m.header(body)) {
		return nil, fmt.Errorf("unsupported Mermaid diagram type")
	}

	b := newBuilder()
	b.d.Name = title

	lines := strings.Split(body, "\n")
	for _, line := range lines[1:] { // skip the header line
		line = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line), ";"))
		if line == "" || strings.HasPrefix(line, "%%") || m.isIgnored(line) {
			continue
		}

		if match := mermaidStyleRe.FindStringSubmatch(line); match != nil {
			for _, prop := range strings.Split(match[2], ",") {
				if key, value, ok := strings.Cut(prop, ":"); ok && strings.TrimSpace(key) == "fill" {
					b.color(match[1], value)
				}
			}
			continue
		}

		m.parseStatement(b, line)
	}

	return b.finish("Mermaid")
}

// parseStatement handles node declarations and link chains. Link labels
// are dropped and shapes are replaced by their bare id once the node label
// is recorded.
func (m *MermaidImporter) parseStatement(b *builder, line string) {
	line = mermaidLabelRe.ReplaceAllString(line, "")
	line = mermaidNodeRe.ReplaceAllStringFunc(line, func(decl string) string {
		match := mermaidNodeRe.FindStringSubmatch(decl)
		b.node(match[1])
		b.label(match[1], m.unescapeLabel(match[3]))
		return match[1]
	})

	parts := mermaidLinkRe.Split(line, -1)
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if !mermaidIDRe.MatchString(p) {
			return
		}
		ids = append(ids, p)
	}
	if len(ids) == 1 {
		b.node(ids[0])
		return
	}
	b.connect(ids...)
}

func (m *MermaidImporter) isIgnored(line string) bool {
	keyword, _, _ := strings.Cut(line, " ")
	for _, k := range []string{"subgraph", "end", "classDef", "class", "linkStyle", "click", "direction"} {
		if keyword == k {
			return true
		}
	}
	return false
}

// splitFrontMatter separates a leading ---/--- block and returns its title.
func (m *MermaidImporter) splitFrontMatter(content string) (string, string) {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "---") {
		return "", content
	}
	rest := strings.TrimPrefix(trimmed, "---")
	front, body, ok := strings.Cut(rest, "\n---")
	if !ok {
		return "", content
	}

	var title string
	for _, line := range strings.Split(front, "\n") {
		if value, ok := strings.CutPrefix(strings.TrimSpace(line), "title:"); ok {
			title = m.unescapeLabel(strings.TrimSpace(value))
		}
	}
	return title, body
}

func (m *MermaidImporter) unescapeLabel(label string) string {
	label = unquote(label)
	label = strings.ReplaceAll(label, "#quot;", `"`)
	label = strings.ReplaceAll(label, "<br/>", "\n")
	return label
}

// GetFormatName returns the format name
func (m *MermaidImporter) GetFormatName() string {
	return "Mermaid"
}

// GetFileExtensions returns common file extensions
func (m *MermaidImporter) GetFileExtensions() []string {
	return []string{".mmd", ".mermaid"}
}
