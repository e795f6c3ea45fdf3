package diagram

// EnsureUniqueConnectionIDs gives every connection a non-empty id that no
// other connection in the diagram uses. Hand-edited or legacy payloads may
// carry blank or repeated ids; the first holder of an id keeps it.
func EnsureUniqueConnectionIDs(d *Diagram, newID func() string) {
	if d == nil || len(d.Connections) == 0 {
		return
	}

	seen := make(map[string]bool, len(d.Connections))
	for i := range d.Connections {
		id := d.Connections[i].ID
		if id == "" || seen[id] {
			id = newID()
			for seen[id] {
				id = newID()
			}
			d.Connections[i].ID = id
		}
		seen[id] = true
	}
}

// EnsureUniqueNodeIDs gives every node a non-empty id that no other node
// uses. The first holder of a repeated id keeps it, along with every
// connection naming it; later holders get fresh ids and start unconnected.
func EnsureUniqueNodeIDs(d *Diagram, newID func() string) {
	if d == nil {
		return
	}

	taken := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		if n.ID != "" {
			taken[n.ID] = true
		}
	}

	seen := make(map[string]bool, len(d.Nodes))
	for i := range d.Nodes {
		id := d.Nodes[i].ID
		if id == "" || seen[id] {
			id = newID()
			for taken[id] {
				id = newID()
			}
			d.Nodes[i].ID = id
			taken[id] = true
		}
		seen[id] = true
	}
}
