// Package diagram contains the document types shared by the store, the
// interaction engine and the renderers.
package diagram

import (
	"math"
	"time"
)

// Node geometry is fixed; every node is drawn as a NodeWidth x NodeHeight box
// anchored at its top-left corner.
const (
	NodeWidth  = 120.0
	NodeHeight = 40.0
)

// DefaultNodeText is the label given to nodes created from the canvas.
const DefaultNodeText = "New Node"

// Point represents a 2D coordinate. Depending on context it is either in
// screen space (pixels) or diagram space (untransformed).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p + q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale returns p with both components multiplied by f.
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Node represents a labeled box in the diagram.
type Node struct {
	ID    string  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Text  string  `json:"text"`
	Color string  `json:"color"`
}

// Position returns the top-left corner of the node.
func (n Node) Position() Point {
	return Point{X: n.X, Y: n.Y}
}

// Center returns the visual center of the node.
func (n Node) Center() Point {
	return Point{
		X: n.X + NodeWidth/2,
		Y: n.Y + NodeHeight/2,
	}
}

// Contains checks if a diagram-space point is inside the node.
func (n Node) Contains(p Point) bool {
	return p.X >= n.X && p.X < n.X+NodeWidth &&
		p.Y >= n.Y && p.Y < n.Y+NodeHeight
}

// NodePatch is a partial node update. Nil fields are left untouched.
type NodePatch struct {
	X     *float64
	Y     *float64
	Text  *string
	Color *string
}

// MoveTo builds a patch that only changes the node position.
func MoveTo(p Point) NodePatch {
	x, y := p.X, p.Y
	return NodePatch{X: &x, Y: &y}
}

// Apply returns n with the non-nil patch fields applied.
func (p NodePatch) Apply(n Node) Node {
	if p.X != nil {
		n.X = *p.X
	}
	if p.Y != nil {
		n.Y = *p.Y
	}
	if p.Text != nil {
		n.Text = *p.Text
	}
	if p.Color != nil {
		n.Color = *p.Color
	}
	return n
}

// Connection is an undirected edge between two nodes. Duplicates between the
// same pair are allowed.
type Connection struct {
	ID   string `json:"id"`
	From string `json:"from"`
	To   string `json:"to"`
}

// Touches reports whether the connection references the node id.
func (c Connection) Touches(nodeID string) bool {
	return c.From == nodeID || c.To == nodeID
}

// Diagram is a named, independently persisted document.
type Diagram struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// FindNode returns the node with the given id.
func (d *Diagram) FindNode(id string) (Node, bool) {
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Clone creates a deep copy of the diagram.
func (d *Diagram) Clone() *Diagram {
	if d == nil {
		return nil
	}
	clone := *d
	clone.Nodes = CloneNodes(d.Nodes)
	clone.Connections = CloneConnections(d.Connections)
	return &clone
}

// CloneNodes copies a node slice, always returning a non-nil slice.
func CloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	copy(out, nodes)
	return out
}

// CloneConnections copies a connection slice, always returning a non-nil slice.
func CloneConnections(conns []Connection) []Connection {
	out := make([]Connection, len(conns))
	copy(out, conns)
	return out
}

// PruneConnections drops every connection whose endpoints are not both in
// nodes. The input slice is not modified.
func PruneConnections(nodes []Node, conns []Connection) []Connection {
	ids := NodeIndex(nodes)
	out := make([]Connection, 0, len(conns))
	for _, c := range conns {
		if _, ok := ids[c.From]; !ok {
			continue
		}
		if _, ok := ids[c.To]; !ok {
			continue
		}
		out = append(out, c)
	}
	return out
}

// NodeIndex maps node ids to nodes.
func NodeIndex(nodes []Node) map[string]Node {
	idx := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		idx[n.ID] = n
	}
	return idx
}

// Bounds returns the top-left and bottom-right corners of the smallest
// rectangle covering every node box. ok is false for no nodes.
func Bounds(nodes []Node) (min, max Point, ok bool) {
	for i, n := range nodes {
		lo := n.Position()
		hi := lo.Add(Point{X: NodeWidth, Y: NodeHeight})
		if i == 0 {
			min, max = lo, hi
			continue
		}
		min.X, min.Y = math.Min(min.X, lo.X), math.Min(min.Y, lo.Y)
		max.X, max.Y = math.Max(max.X, hi.X), math.Max(max.Y, hi.Y)
	}
	return min, max, len(nodes) > 0
}
