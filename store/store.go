// Package store owns the diagram collection and the active diagram's editing
// state, and writes the whole collection through to a local key-value store
// after every structural change.
package store

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"nodeboard/diagram"
	"nodeboard/storage"
)

// DefaultDiagramName is used when a diagram is created with a blank name.
const DefaultDiagramName = "Untitled Diagram"

// ErrNotFound is returned when a diagram id does not exist.
var ErrNotFound = errors.New("diagram not found")

// Store is the single owner of diagrams, nodes and connections. Callers get
// copies; all changes go through Store methods.
//
// A Store is not safe for concurrent use. It is meant to be driven from one
// event loop.
type Store struct {
	blob      storage.Blob
	key       string
	log       *zap.Logger
	now       func() time.Time
	newID     func() string
	initialID string

	diagrams []diagram.Diagram
	activeID string

	// Editing mirror of the active diagram.
	nodes       []diagram.Node
	connections []diagram.Connection

	persistErr error
}

// New builds a Store on top of blob. A nil blob keeps everything in memory.
//
// The persisted collection is read once. If it is missing or unreadable the
// store starts with one fresh diagram; otherwise the first diagram (or the
// one named by WithInitialDiagram) becomes active.
func New(blob storage.Blob, opts ...Option) *Store {
	s := &Store{
		blob:        blob,
		key:         DefaultKey,
		log:         zap.NewNop(),
		now:         defaultClock,
		newID:       defaultID,
		nodes:       []diagram.Node{},
		connections: []diagram.Connection{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.diagrams = s.load()
	if len(s.diagrams) == 0 {
		s.CreateDiagram(DefaultDiagramName)
		return s
	}

	active := s.diagrams[0].ID
	if s.initialID != "" {
		if s.indexOf(s.initialID) >= 0 {
			active = s.initialID
		} else {
			s.log.Warn("initial diagram not found, using first",
				zap.String("diagramID", s.initialID))
		}
	}
	s.activate(active)
	return s
}

// load reads and decodes the persisted collection. Any failure is treated as
// "nothing stored".
func (s *Store) load() []diagram.Diagram {
	if s.blob == nil {
		return nil
	}
	data, ok, err := s.blob.Get(s.key)
	if err != nil {
		s.log.Warn("failed to read diagrams, starting in memory",
			zap.String("key", s.key), zap.Error(err))
		return nil
	}
	if !ok {
		return nil
	}
	diagrams, err := diagram.DecodeCollection(data)
	if err != nil {
		s.log.Warn("stored diagrams are corrupt, ignoring them",
			zap.String("key", s.key), zap.Error(err))
		return nil
	}
	for i := range diagrams {
		d := &diagrams[i]
		if d.ID == "" {
			d.ID = s.newID()
		}
		diagram.EnsureUniqueNodeIDs(d, s.newID)
		diagram.EnsureUniqueConnectionIDs(d, s.newID)
		d.Connections = diagram.PruneConnections(d.Nodes, d.Connections)
	}
	return diagrams
}

// persist writes the whole collection. Failures are logged and remembered
// but never returned: the in-memory state stays authoritative.
func (s *Store) persist() {
	if s.blob == nil {
		return
	}
	data, err := diagram.EncodeCollection(s.diagrams)
	if err == nil {
		err = s.blob.Set(s.key, data)
	}
	if err != nil {
		if s.persistErr == nil {
			s.log.Warn("failed to save diagrams, continuing in memory",
				zap.String("key", s.key), zap.Error(err))
		}
		s.persistErr = err
		return
	}
	if s.persistErr != nil {
		s.log.Info("diagram storage recovered", zap.String("key", s.key))
	}
	s.persistErr = nil
}

// PersistError returns the error from the most recent failed write, or nil
// if the last write succeeded.
func (s *Store) PersistError() error {
	return s.persistErr
}

func (s *Store) indexOf(id string) int {
	for i := range s.diagrams {
		if s.diagrams[i].ID == id {
			return i
		}
	}
	return -1
}

// activate mirrors a diagram into editing state. The id must exist.
func (s *Store) activate(id string) {
	d := s.diagrams[s.indexOf(id)]
	s.activeID = id
	s.nodes = diagram.CloneNodes(d.Nodes)
	s.connections = diagram.CloneConnections(d.Connections)
}

func (s *Store) clearEditing() {
	s.activeID = ""
	s.nodes = []diagram.Node{}
	s.connections = []diagram.Connection{}
}

// commit writes the editing state back into the active diagram and persists.
// An edit made after the last diagram was deleted starts a new diagram.
func (s *Store) commit() {
	i := s.indexOf(s.activeID)
	if i < 0 {
		d := s.newDiagram(DefaultDiagramName)
		s.diagrams = append(s.diagrams, d)
		s.activeID = d.ID
		i = len(s.diagrams) - 1
		s.log.Debug("no active diagram, created one for the change", zap.String("diagramID", d.ID))
	}
	d := &s.diagrams[i]
	d.Nodes = diagram.CloneNodes(s.nodes)
	d.Connections = diagram.CloneConnections(s.connections)
	d.UpdatedAt = s.now()
	s.persist()
}

// CreateDiagram adds an empty diagram and makes it active. A blank name falls
// back to DefaultDiagramName.
func (s *Store) CreateDiagram(name string) diagram.Diagram {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultDiagramName
	}
	d := s.newDiagram(name)
	s.diagrams = append(s.diagrams, d)
	s.activate(d.ID)
	s.log.Debug("diagram created", zap.String("diagramID", d.ID), zap.String("name", name))
	s.persist()
	return *d.Clone()
}

func (s *Store) newDiagram(name string) diagram.Diagram {
	now := s.now()
	return diagram.Diagram{
		ID:          s.newID(),
		Name:        name,
		Nodes:       []diagram.Node{},
		Connections: []diagram.Connection{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ImportDiagram adds a diagram read from elsewhere and makes it active. The
// record is normalized the same way stored diagrams are: an id that is
// missing or already taken is replaced, node and connection ids are made
// unique, and dangling connections are dropped. Uncolored nodes get the
// palette color for their position.
func (s *Store) ImportDiagram(d diagram.Diagram) diagram.Diagram {
	d = *d.Clone()
	if d.ID == "" || s.indexOf(d.ID) >= 0 {
		d.ID = s.newID()
	}
	d.Name = strings.TrimSpace(d.Name)
	if d.Name == "" {
		d.Name = DefaultDiagramName
	}
	if d.Nodes == nil {
		d.Nodes = []diagram.Node{}
	}
	diagram.EnsureUniqueNodeIDs(&d, s.newID)
	diagram.EnsureUniqueConnectionIDs(&d, s.newID)
	d.Connections = diagram.PruneConnections(d.Nodes, d.Connections)
	for i := range d.Nodes {
		if d.Nodes[i].Color == "" {
			d.Nodes[i].Color = diagram.PaletteColor(i)
		}
	}

	now := s.now()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = now
	}
	d.UpdatedAt = now

	s.diagrams = append(s.diagrams, d)
	s.activate(d.ID)
	s.log.Debug("diagram imported", zap.String("diagramID", d.ID),
		zap.Int("nodes", len(d.Nodes)), zap.Int("connections", len(d.Connections)))
	s.persist()
	return *d.Clone()
}

// LoadDiagram replaces the editing state with the diagram's contents.
func (s *Store) LoadDiagram(id string) error {
	if s.indexOf(id) < 0 {
		return ErrNotFound
	}
	s.activate(id)
	s.log.Debug("diagram loaded", zap.String("diagramID", id))
	return nil
}

// DeleteDiagram removes a diagram. Deleting the active one activates the
// first remaining diagram, or leaves the editor empty when none remain.
func (s *Store) DeleteDiagram(id string) error {
	i := s.indexOf(id)
	if i < 0 {
		return ErrNotFound
	}
	s.diagrams = append(s.diagrams[:i], s.diagrams[i+1:]...)
	if id == s.activeID {
		if len(s.diagrams) > 0 {
			s.activate(s.diagrams[0].ID)
		} else {
			s.clearEditing()
		}
	}
	s.log.Debug("diagram deleted", zap.String("diagramID", id))
	s.persist()
	return nil
}

// RenameDiagram renames the active diagram. Blank names are rejected.
func (s *Store) RenameDiagram(newName string) bool {
	newName = strings.TrimSpace(newName)
	i := s.indexOf(s.activeID)
	if newName == "" || i < 0 {
		return false
	}
	s.diagrams[i].Name = newName
	s.diagrams[i].UpdatedAt = s.now()
	s.persist()
	return true
}

// AddNode appends a node to the active diagram. Missing ids are generated,
// a missing color is picked round-robin from the palette, and a blank label
// becomes diagram.DefaultNodeText. The stored node is returned.
func (s *Store) AddNode(n diagram.Node) diagram.Node {
	if n.ID == "" {
		n.ID = s.newID()
	}
	if n.Color == "" {
		n.Color = diagram.PaletteColor(len(s.nodes))
	}
	if strings.TrimSpace(n.Text) == "" {
		n.Text = diagram.DefaultNodeText
	}
	s.nodes = append(s.nodes, n)
	s.commit()
	return n
}

// UpdateNode applies a partial update. A patch that would blank the label
// keeps the previous text; the rest of the patch still applies.
func (s *Store) UpdateNode(id string, patch diagram.NodePatch) bool {
	for i := range s.nodes {
		if s.nodes[i].ID != id {
			continue
		}
		if patch.Text != nil {
			text := strings.TrimSpace(*patch.Text)
			if text == "" {
				patch.Text = nil
			} else {
				patch.Text = &text
			}
		}
		s.nodes[i] = patch.Apply(s.nodes[i])
		s.commit()
		return true
	}
	return false
}

// CommitNodeText finishes a label edit. Blank text is discarded.
func (s *Store) CommitNodeText(id, text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	return s.UpdateNode(id, diagram.NodePatch{Text: &text})
}

// RemoveNode deletes a node and every connection that references it.
func (s *Store) RemoveNode(id string) bool {
	for i := range s.nodes {
		if s.nodes[i].ID != id {
			continue
		}
		s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
		kept := s.connections[:0]
		for _, c := range s.connections {
			if !c.Touches(id) {
				kept = append(kept, c)
			}
		}
		s.connections = kept
		s.commit()
		return true
	}
	return false
}

// AddConnection appends a connection. Duplicates are allowed; a connection
// whose endpoints are not both present is rejected.
func (s *Store) AddConnection(c diagram.Connection) (diagram.Connection, bool) {
	if !s.hasNode(c.From) || !s.hasNode(c.To) {
		return diagram.Connection{}, false
	}
	if c.ID == "" {
		c.ID = s.newID()
	}
	s.connections = append(s.connections, c)
	s.commit()
	return c, true
}

// RemoveConnection deletes a single connection by id.
func (s *Store) RemoveConnection(id string) bool {
	for i := range s.connections {
		if s.connections[i].ID == id {
			s.connections = append(s.connections[:i], s.connections[i+1:]...)
			s.commit()
			return true
		}
	}
	return false
}

// ClearBoard empties the active diagram's nodes and connections. Without
// an active diagram there is nothing to save.
func (s *Store) ClearBoard() {
	s.nodes = []diagram.Node{}
	s.connections = []diagram.Connection{}
	if s.activeID == "" {
		return
	}
	s.commit()
}

func (s *Store) hasNode(id string) bool {
	for i := range s.nodes {
		if s.nodes[i].ID == id {
			return true
		}
	}
	return false
}

// Node returns a node of the active diagram by id.
func (s *Store) Node(id string) (diagram.Node, bool) {
	for _, n := range s.nodes {
		if n.ID == id {
			return n, true
		}
	}
	return diagram.Node{}, false
}

// Nodes returns a snapshot of the active diagram's nodes.
func (s *Store) Nodes() []diagram.Node {
	return diagram.CloneNodes(s.nodes)
}

// Connections returns a snapshot of the active diagram's connections.
func (s *Store) Connections() []diagram.Connection {
	return diagram.CloneConnections(s.connections)
}

// ActiveID returns the id of the active diagram, or "" when none is active.
func (s *Store) ActiveID() string {
	return s.activeID
}

// Active returns a copy of the active diagram.
func (s *Store) Active() (diagram.Diagram, bool) {
	i := s.indexOf(s.activeID)
	if i < 0 {
		return diagram.Diagram{}, false
	}
	return *s.diagrams[i].Clone(), true
}

// Diagrams returns a copy of the whole collection in storage order.
func (s *Store) Diagrams() []diagram.Diagram {
	out := make([]diagram.Diagram, len(s.diagrams))
	for i := range s.diagrams {
		out[i] = *s.diagrams[i].Clone()
	}
	return out
}
