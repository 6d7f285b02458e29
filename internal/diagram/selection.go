package diagram

import (
	"flowedit/internal/geom"
)

// SelectNode selects a node. Without additive the previous node and edge
// selection is replaced.
func (s *Store) SelectNode(id string, additive bool) bool {
	if _, ok := s.nodeByID[id]; !ok {
		return false
	}
	if !additive {
		s.clearSelection()
	}
	s.selectedNodes[id] = struct{}{}
	return true
}

// SelectEdge selects an edge. Without additive the previous node and edge
// selection is replaced.
func (s *Store) SelectEdge(id string, additive bool) bool {
	if _, ok := s.edgeByID[id]; !ok {
		return false
	}
	if !additive {
		s.clearSelection()
	}
	s.selectedEdges[id] = struct{}{}
	return true
}

// Deselect removes a node or edge from the selection.
func (s *Store) Deselect(id string) {
	delete(s.selectedNodes, id)
	delete(s.selectedEdges, id)
}

// SetSelection replaces the selection. Unknown ids are ignored.
func (s *Store) SetSelection(nodeIDs, edgeIDs []string) {
	s.clearSelection()
	for _, id := range nodeIDs {
		if _, ok := s.nodeByID[id]; ok {
			s.selectedNodes[id] = struct{}{}
		}
	}
	for _, id := range edgeIDs {
		if _, ok := s.edgeByID[id]; ok {
			s.selectedEdges[id] = struct{}{}
		}
	}
}

func (s *Store) ClearSelection() { s.clearSelection() }

func (s *Store) clearSelection() {
	clear(s.selectedNodes)
	clear(s.selectedEdges)
}

func (s *Store) IsNodeSelected(id string) bool {
	_, ok := s.selectedNodes[id]
	return ok
}

func (s *Store) IsEdgeSelected(id string) bool {
	_, ok := s.selectedEdges[id]
	return ok
}

// SelectedNodes returns selected node ids in document order.
func (s *Store) SelectedNodes() []string {
	var ids []string
	for _, n := range s.nodes {
		if _, ok := s.selectedNodes[n.ID]; ok {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// SelectedEdges returns selected edge ids in document order.
func (s *Store) SelectedEdges() []string {
	var ids []string
	for _, e := range s.edges {
		if _, ok := s.selectedEdges[e.ID]; ok {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// ClickNode selects the node and notifies listeners.
func (s *Store) ClickNode(id string, additive bool) bool {
	if !s.SelectNode(id, additive) {
		return false
	}
	s.emit(Event{Kind: NodeClicked, NodeIDs: []string{id}})
	return true
}

// ClickEdge selects the edge and notifies listeners.
func (s *Store) ClickEdge(id string, additive bool) bool {
	if !s.SelectEdge(id, additive) {
		return false
	}
	s.emit(Event{Kind: EdgeClicked, EdgeIDs: []string{id}})
	return true
}

// DeleteSelected removes every selected edge and node (with descendants
// and their edges) as one undoable step.
func (s *Store) DeleteSelected() bool {
	if s.locked {
		return s.reject("delete selection", "reason", "locked")
	}
	if !s.opts.Deletable {
		return s.reject("delete selection", "reason", "deletion disabled")
	}
	nodeIDs, edgeIDs := s.SelectedNodes(), s.SelectedEdges()
	if len(nodeIDs) == 0 && len(edgeIDs) == 0 {
		return false
	}

	s.PushSnapshot()
	for _, id := range edgeIDs {
		s.removeEdge(id)
	}
	for _, id := range nodeIDs {
		s.removeNode(id)
	}
	s.clearSelection()
	s.log.Debug("diagram: deleted selection", "nodes", len(nodeIDs), "edges", len(edgeIDs))
	s.emit(Event{Kind: SelectionDeleted, NodeIDs: nodeIDs, EdgeIDs: edgeIDs})
	return true
}

// ─── Marquee ───

type marquee struct {
	start, end geom.Point
}

// StartMarquee begins a rubber-band selection at p (canvas coordinates).
func (s *Store) StartMarquee(p geom.Point) {
	s.marquee = &marquee{start: p, end: p}
}

func (s *Store) UpdateMarquee(p geom.Point) {
	if s.marquee != nil {
		s.marquee.end = p
	}
}

// Marquee returns the current rubber-band rectangle.
func (s *Store) Marquee() (geom.Rect, bool) {
	if s.marquee == nil {
		return geom.Rect{}, false
	}
	return geom.RectFromPoints(s.marquee.start, s.marquee.end), true
}

// FinishMarquee selects every node whose bounds lie fully inside the
// rectangle and returns their ids. With additive the previous selection is
// kept.
func (s *Store) FinishMarquee(additive bool) []string {
	r, ok := s.Marquee()
	s.marquee = nil
	if !ok {
		return nil
	}
	if !additive {
		s.clearSelection()
	}
	var ids []string
	for _, n := range s.nodes {
		if r.ContainsRect(s.bounds(n)) {
			s.selectedNodes[n.ID] = struct{}{}
			ids = append(ids, n.ID)
		}
	}
	return ids
}

func (s *Store) CancelMarquee() { s.marquee = nil }
