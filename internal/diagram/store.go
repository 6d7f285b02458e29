// Package diagram is the graph state engine behind the editor: nodes, edges,
// handles, the group hierarchy, connection rules, selection, viewport,
// undo/redo history and the clipboard.
//
// A Store is owned by a single goroutine. Every method runs to completion
// before returning; there is no internal locking. Rejected operations return
// false (or are no-ops) and leave the state untouched.
package diagram

import (
	"cmp"
	"log/slog"
	"maps"
	"slices"

	"flowedit/internal/geom"
)

// Store owns all mutable diagram state.
type Store struct {
	opts Options
	log  *slog.Logger

	nodes    []*Node
	nodeByID map[string]*Node
	edges    []*Edge
	edgeByID map[string]*Edge
	handles  map[HandleKey]Handle

	selectedNodes map[string]struct{}
	selectedEdges map[string]struct{}

	viewport Viewport
	draft    *DraftConnection
	marquee  *marquee
	dragging map[string]bool

	clipboard Snapshot

	undoStack []Snapshot
	redoStack []Snapshot
	restoring bool
	batching  bool

	locked    bool
	listeners []listener
	nextSub   int
}

// New returns an empty store.
func New(opts Options) *Store {
	opts = opts.withDefaults()
	return &Store{
		opts:          opts,
		log:           opts.Logger,
		nodeByID:      make(map[string]*Node),
		edgeByID:      make(map[string]*Edge),
		handles:       make(map[HandleKey]Handle),
		selectedNodes: make(map[string]struct{}),
		selectedEdges: make(map[string]struct{}),
		dragging:      make(map[string]bool),
		viewport:      Viewport{Zoom: 1},
		locked:        opts.Locked,
	}
}

// Options returns the effective configuration.
func (s *Store) Options() Options { return s.opts }

func (s *Store) Locked() bool { return s.locked }

// SetLocked toggles locked mode. Viewport, selection and renderer feedback
// keep working while locked.
func (s *Store) SetLocked(locked bool) {
	s.locked = locked
	if locked {
		s.draft = nil
	}
}

func (s *Store) reject(op string, args ...any) bool {
	s.log.Debug("diagram: rejected "+op, args...)
	return false
}

// ─── Nodes ───

// Node returns a copy of the node with the given id.
func (s *Store) Node(id string) (Node, bool) {
	n, ok := s.nodeByID[id]
	if !ok {
		return Node{}, false
	}
	return n.clone(), true
}

// Nodes returns copies of all nodes in document order.
func (s *Store) Nodes() []Node {
	out := make([]Node, len(s.nodes))
	for i, n := range s.nodes {
		out[i] = n.clone()
	}
	return out
}

// AddNode inserts n. An empty id is replaced with a generated one; use
// AddNodeID to learn it.
func (s *Store) AddNode(n Node) bool {
	_, ok := s.AddNodeID(n)
	return ok
}

// AddNodeID inserts n and returns its id.
func (s *Store) AddNodeID(n Node) (string, bool) {
	if s.locked {
		return "", s.reject("add node", "id", n.ID, "reason", "locked")
	}
	if n.ID == "" {
		n.ID = s.opts.NewID()
	}
	if _, exists := s.nodeByID[n.ID]; exists {
		return "", s.reject("add node", "id", n.ID, "reason", "duplicate id")
	}
	if n.ParentID != "" {
		if _, ok := s.nodeByID[n.ParentID]; !ok {
			return "", s.reject("add node", "id", n.ID, "reason", "unknown parent", "parent", n.ParentID)
		}
	}
	if s.opts.SnapToGrid {
		n.Position = geom.SnapPoint(n.Position, s.opts.GridSize)
	}

	s.PushSnapshot()
	s.insertNode(n.clone())
	s.log.Debug("diagram: added node", "id", n.ID, "type", n.Type)
	return n.ID, true
}

func (s *Store) insertNode(n Node) {
	p := &n
	s.nodes = append(s.nodes, p)
	s.nodeByID[n.ID] = p
}

// RemoveNode deletes the node, its descendants and every edge touching any
// of them.
func (s *Store) RemoveNode(id string) bool {
	if s.locked {
		return s.reject("remove node", "id", id, "reason", "locked")
	}
	if _, ok := s.nodeByID[id]; !ok {
		return s.reject("remove node", "id", id, "reason", "unknown node")
	}
	s.PushSnapshot()
	s.removeNode(id)
	return true
}

// removeNode deletes children first, then touching edges, then the node.
func (s *Store) removeNode(id string) {
	if _, ok := s.nodeByID[id]; !ok {
		return
	}
	for _, child := range s.childIDs(id) {
		s.removeNode(child)
	}
	s.edges = slices.DeleteFunc(s.edges, func(e *Edge) bool {
		if !e.touches(id) {
			return false
		}
		delete(s.edgeByID, e.ID)
		delete(s.selectedEdges, e.ID)
		return true
	})
	s.nodes = slices.DeleteFunc(s.nodes, func(n *Node) bool { return n.ID == id })
	delete(s.nodeByID, id)
	delete(s.selectedNodes, id)
	delete(s.dragging, id)
	if s.draft != nil && s.draft.SourceNode == id {
		s.draft = nil
	}
	s.log.Debug("diagram: removed node", "id", id)
}

// UpdateNodeData shallow-merges patch into the node's data. A nil value
// deletes the key.
func (s *Store) UpdateNodeData(id string, patch map[string]any) bool {
	if s.locked {
		return s.reject("update node data", "id", id, "reason", "locked")
	}
	n, ok := s.nodeByID[id]
	if !ok {
		return s.reject("update node data", "id", id, "reason", "unknown node")
	}
	s.PushSnapshot()
	if n.Data == nil {
		n.Data = make(map[string]any, len(patch))
	}
	for k, v := range patch {
		if v == nil {
			delete(n.Data, k)
			continue
		}
		n.Data[k] = v
	}
	return true
}

// NodeUpdate lists the optional fields UpdateNode may change.
type NodeUpdate struct {
	Type   *string
	ZIndex *int
}

func (s *Store) UpdateNode(id string, u NodeUpdate) bool {
	if s.locked {
		return s.reject("update node", "id", id, "reason", "locked")
	}
	n, ok := s.nodeByID[id]
	if !ok {
		return s.reject("update node", "id", id, "reason", "unknown node")
	}
	s.PushSnapshot()
	if u.Type != nil {
		n.Type = *u.Type
	}
	if u.ZIndex != nil {
		z := *u.ZIndex
		n.ZIndex = &z
	}
	return true
}

// UpdateNodePosition moves the node to p (parent-relative when parented),
// snapping to the grid when enabled.
func (s *Store) UpdateNodePosition(id string, p geom.Point) bool {
	if s.locked {
		return s.reject("move node", "id", id, "reason", "locked")
	}
	n, ok := s.nodeByID[id]
	if !ok {
		return s.reject("move node", "id", id, "reason", "unknown node")
	}
	s.PushSnapshot()
	n.Position = s.snap(p)
	return true
}

func (s *Store) snap(p geom.Point) geom.Point {
	if !s.opts.SnapToGrid {
		return p
	}
	return geom.SnapPoint(p, s.opts.GridSize)
}

// ResizeNode sets the authored size, as a user resize does.
func (s *Store) ResizeNode(id string, w, h float64) bool {
	if s.locked {
		return s.reject("resize node", "id", id, "reason", "locked")
	}
	n, ok := s.nodeByID[id]
	if !ok || w < 0 || h < 0 {
		return s.reject("resize node", "id", id, "w", w, "h", h)
	}
	s.PushSnapshot()
	n.Width, n.Height = &w, &h
	return true
}

// UpdateNodeDimensions records the size measured by the renderer. It is
// feedback, not an edit: no history entry and allowed while locked.
func (s *Store) UpdateNodeDimensions(id string, w, h float64) bool {
	n, ok := s.nodeByID[id]
	if !ok {
		return false
	}
	n.ComputedWidth, n.ComputedHeight = w, h
	return true
}

// ─── Edges ───

func (s *Store) Edge(id string) (Edge, bool) {
	e, ok := s.edgeByID[id]
	if !ok {
		return Edge{}, false
	}
	return e.clone(), true
}

// Edges returns copies of all edges in document order.
func (s *Store) Edges() []Edge {
	out := make([]Edge, len(s.edges))
	for i, e := range s.edges {
		out[i] = e.clone()
	}
	return out
}

// AddEdge validates and inserts e, filling in a generated id and the
// default render type when missing.
func (s *Store) AddEdge(e Edge) bool {
	_, ok := s.AddEdgeID(e)
	return ok
}

// AddEdgeID is AddEdge returning the id of the new edge.
func (s *Store) AddEdgeID(e Edge) (string, bool) {
	if s.locked {
		return "", s.reject("add edge", "reason", "locked")
	}
	if !s.CanConnect(e.Source, e.SourceHandle, e.Target, e.TargetHandle) {
		return "", s.reject("add edge", "source", e.Source, "sourceHandle", e.SourceHandle,
			"target", e.Target, "targetHandle", e.TargetHandle, "reason", "invalid connection")
	}
	for _, existing := range s.edges {
		if existing.sameEndpoints(e) {
			return "", s.reject("add edge", "source", e.Source, "target", e.Target, "reason", "duplicate")
		}
	}
	if e.ID == "" {
		e.ID = s.opts.NewID()
	}
	if _, exists := s.edgeByID[e.ID]; exists {
		return "", s.reject("add edge", "id", e.ID, "reason", "duplicate id")
	}
	if e.Type == "" {
		e.Type = s.opts.DefaultEdgeType
	}

	s.PushSnapshot()
	s.insertEdge(e.clone())
	s.log.Debug("diagram: connected", "id", e.ID, "source", e.Source, "target", e.Target)
	s.emit(Event{Kind: Connected, EdgeIDs: []string{e.ID}, Edge: &e})
	return e.ID, true
}

func (s *Store) insertEdge(e Edge) {
	p := &e
	s.edges = append(s.edges, p)
	s.edgeByID[e.ID] = p
}

func (s *Store) RemoveEdge(id string) bool {
	if s.locked {
		return s.reject("remove edge", "id", id, "reason", "locked")
	}
	if _, ok := s.edgeByID[id]; !ok {
		return s.reject("remove edge", "id", id, "reason", "unknown edge")
	}
	s.PushSnapshot()
	s.removeEdge(id)
	return true
}

func (s *Store) removeEdge(id string) {
	s.edges = slices.DeleteFunc(s.edges, func(e *Edge) bool { return e.ID == id })
	delete(s.edgeByID, id)
	delete(s.selectedEdges, id)
}

// EdgeUpdate lists the optional fields UpdateEdge may change. Endpoints are
// fixed once connected.
type EdgeUpdate struct {
	Type     *geom.RenderType
	Label    *string
	Style    map[string]string
	Animated *bool
}

func (s *Store) UpdateEdge(id string, u EdgeUpdate) bool {
	if s.locked {
		return s.reject("update edge", "id", id, "reason", "locked")
	}
	e, ok := s.edgeByID[id]
	if !ok {
		return s.reject("update edge", "id", id, "reason", "unknown edge")
	}
	if u.Type != nil && !u.Type.Valid() {
		return s.reject("update edge", "id", id, "reason", "unknown render type", "type", *u.Type)
	}
	s.PushSnapshot()
	if u.Type != nil {
		e.Type = *u.Type
	}
	if u.Label != nil {
		e.Label = *u.Label
	}
	if u.Style != nil {
		e.Style = maps.Clone(u.Style)
	}
	if u.Animated != nil {
		e.Animated = *u.Animated
	}
	return true
}

// ─── Handles ───

// RegisterHandle adds or replaces a handle. Called by the renderer as nodes
// mount and whenever an anchor moves.
func (s *Store) RegisterHandle(h Handle) bool {
	if h.NodeID == "" || h.ID == "" {
		return false
	}
	if h.Direction != Input && h.Direction != Output {
		return false
	}
	h.AcceptedTypes = slices.Clone(h.AcceptedTypes)
	s.handles[h.key()] = h
	return true
}

func (s *Store) UnregisterHandle(nodeID, handleID string) {
	delete(s.handles, HandleKey{Node: nodeID, Handle: handleID})
}

func (s *Store) Handle(nodeID, handleID string) (Handle, bool) {
	h, ok := s.handles[HandleKey{Node: nodeID, Handle: handleID}]
	if !ok {
		return Handle{}, false
	}
	h.AcceptedTypes = slices.Clone(h.AcceptedTypes)
	return h, true
}

// HandlePosition returns the absolute anchor of a registered handle.
func (s *Store) HandlePosition(nodeID, handleID string) (geom.Point, bool) {
	h, ok := s.handles[HandleKey{Node: nodeID, Handle: handleID}]
	return h.Position, ok
}

// NodeHandles returns the handles registered for a node, sorted by id.
func (s *Store) NodeHandles(nodeID string) []Handle {
	var out []Handle
	for k, h := range s.handles {
		if k.Node == nodeID {
			h.AcceptedTypes = slices.Clone(h.AcceptedTypes)
			out = append(out, h)
		}
	}
	slices.SortFunc(out, func(a, b Handle) int { return cmp.Compare(a.ID, b.ID) })
	return out
}
