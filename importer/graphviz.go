package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"nodeboard/diagram"
)

// GraphvizImporter imports Graphviz DOT format
type GraphvizImporter struct{}

// NewGraphvizImporter creates a new Graphviz importer
func NewGraphvizImporter() *GraphvizImporter {
	return &GraphvizImporter{}
}

var (
	dotHeaderRe = regexp.MustCompile(`^(?:strict\s+)?(?:di)?graph\b[^{\n]*\{`)
	dotEdgeRe   = regexp.MustCompile(`\s*(?:--|->)\s*`)
	dotAttrRe   = regexp.MustCompile(`([A-Za-z_]+)\s*=\s*("(?:[^"\\]|\\.)*"|[^,;\s\]]+)`)
)

// CanImport checks if the content is a Graphviz DOT diagram
func (g *GraphvizImporter) CanImport(content string) bool {
	return dotHeaderRe.MatchString(g.stripComments(content))
}

// Import converts DOT content into a diagram. Subgraphs are flattened and
// edge direction is dropped. A pinned pos (as written by the DOT exporter)
// places the node; otherwise the diagram is laid out.
func (g *GraphvizImporter) Import(content string) (*diagram.Diagram, error) {
	content = g.stripComments(content)
	if !dotHeaderRe.MatchString(content) {
		return nil, fmt.Errorf("not a DOT graph")
	}

	open := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if end < open {
		return nil, fmt.Errorf("unterminated DOT graph")
	}

	b := newBuilder()
	b.d.Name = g.graphName(content[:open])

	for _, stmt := range g.splitStatements(content[open+1 : end]) {
		g.parseStatement(b, stmt)
	}
	return b.finish("DOT")
}

func (g *GraphvizImporter) parseStatement(b *builder, stmt string) {
	keyword, _, _ := strings.Cut(stmt, " ")
	keyword, _, _ = strings.Cut(keyword, "[")
	switch keyword {
	case "node", "edge", "graph", "subgraph":
		return
	}

	head, attrs := stmt, ""
	if i := indexOutsideQuotes(stmt, '['); i >= 0 {
		head = stmt[:i]
		attrs = strings.TrimSuffix(strings.TrimSpace(stmt[i+1:]), "]")
	} else if strings.Contains(stmt, "=") && !dotEdgeRe.MatchString(stmt) {
		return // graph attribute such as rankdir=LR
	}

	var ids []string
	for _, part := range dotEdgeRe.Split(strings.TrimSpace(head), -1) {
		id := unquote(part)
		if id == "" {
			return
		}
		ids = append(ids, id)
	}

	if len(ids) > 1 {
		b.connect(ids...)
		return
	}
	b.node(ids[0])
	g.applyAttributes(b, ids[0], attrs)
}

func (g *GraphvizImporter) applyAttributes(b *builder, id, attrs string) {
	for _, match := range dotAttrRe.FindAllStringSubmatch(attrs, -1) {
		value := g.unescape(unquote(match[2]))
		switch match[1] {
		case "label":
			if value != `\N` {
				b.label(id, value)
			}
		case "fillcolor":
			b.color(id, value)
		case "pos":
			if center, ok := g.parsePos(value); ok {
				b.place(id, diagram.Point{
					X: center.X - diagram.NodeWidth/2,
					Y: center.Y - diagram.NodeHeight/2,
				})
			}
		}
	}
}

// parsePos reads "x,y" or "x,y!" and flips y back to screen orientation.
func (g *GraphvizImporter) parsePos(value string) (diagram.Point, bool) {
	xs, ys, ok := strings.Cut(strings.TrimSuffix(value, "!"), ",")
	if !ok {
		return diagram.Point{}, false
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return diagram.Point{}, false
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return diagram.Point{}, false
	}
	return diagram.Point{X: x, Y: -y}, true
}

func (g *GraphvizImporter) graphName(header string) string {
	fields := strings.Fields(header)
	for len(fields) > 0 && (fields[0] == "strict" || fields[0] == "graph" || fields[0] == "digraph") {
		fields = fields[1:]
	}
	return g.unescape(unquote(strings.Join(fields, " ")))
}

// splitStatements splits a graph body on semicolons, newlines and
// subgraph braces, leaving quoted strings and attribute lists whole.
func (g *GraphvizImporter) splitStatements(body string) []string {
	var (
		stmts   []string
		current strings.Builder
		quoted  bool
		depth   int
	)
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			stmts = append(stmts, s)
		}
		current.Reset()
	}

	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case quoted:
			current.WriteByte(c)
			if c == '\\' && i+1 < len(body) {
				i++
				current.WriteByte(body[i])
			} else if c == '"' {
				quoted = false
			}
		case c == '"':
			quoted = true
			current.WriteByte(c)
		case c == '[':
			depth++
			current.WriteByte(c)
		case c == ']':
			depth--
			current.WriteByte(c)
		case depth == 0 && (c == ';' || c == '\n' || c == '{' || c == '}'):
			flush()
		default:
			current.WriteByte(c)
		}
	}
	flush()
	return stmts
}

// stripComments drops // and # line comments.
func (g *GraphvizImporter) stripComments(content string) string {
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

func (g *GraphvizImporter) unescape(s string) string {
	return strings.NewReplacer(`\n`, "\n", `\\`, `\`).Replace(s)
}

func indexOutsideQuotes(s string, target byte) int {
	quoted := false
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && quoted:
			i++
		case s[i] == '"':
			quoted = !quoted
		case s[i] == target && !quoted:
			return i
		}
	}
	return -1
}

// GetFormatName returns the format name
func (g *GraphvizImporter) GetFormatName() string {
	return "Graphviz"
}

// GetFileExtensions returns common file extensions
func (g *GraphvizImporter) GetFileExtensions() []string {
	return []string{".dot", ".gv"}
}
