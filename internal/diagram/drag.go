package diagram

import (
	"flowedit/internal/geom"
)

// StartNodeDrag records one history entry for the whole drag and notifies
// listeners. Frames then go through DragNode.
func (s *Store) StartNodeDrag(id string) bool {
	if s.locked {
		return s.reject("start drag", "id", id, "reason", "locked")
	}
	if _, ok := s.nodeByID[id]; !ok {
		return s.reject("start drag", "id", id, "reason", "unknown node")
	}
	if s.dragging[id] {
		return true
	}
	s.PushSnapshot()
	s.dragging[id] = true
	s.emit(Event{Kind: DragStarted, NodeIDs: []string{id}})
	return true
}

// DragNode moves a node being dragged. Positions are parent-relative and
// snapped; group membership is left alone until EndNodeDrag.
func (s *Store) DragNode(id string, p geom.Point) bool {
	n, ok := s.nodeByID[id]
	if !ok || !s.dragging[id] || s.locked {
		return false
	}
	n.Position = s.snap(p)
	return true
}

// DragNodeBy moves a dragged node by an absolute delta.
func (s *Store) DragNodeBy(id string, delta geom.Point) bool {
	n, ok := s.nodeByID[id]
	if !ok {
		return false
	}
	return s.DragNode(id, n.Position.Add(delta))
}

// EndNodeDrag finishes a drag and re-evaluates group membership once. A
// dragged group collects or releases the nodes under it; any other node
// joins the smallest group under its center, or leaves its group.
func (s *Store) EndNodeDrag(id string) bool {
	n, ok := s.nodeByID[id]
	if !ok || !s.dragging[id] {
		return false
	}
	delete(s.dragging, id)

	switch {
	case s.locked:
		s.log.Debug("diagram: drag ended while locked", "id", id)
	case n.IsGroup():
		s.applyMoves(s.membershipChanges(id))
	case s.hasGroupOrNoParent(n):
		center := s.bounds(n).Center()
		exclude := append([]string{id}, s.Descendants(id)...)
		target, _ := s.FindContainingGroup(center, exclude...)
		if target != n.ParentID {
			s.reparent(id, target)
		}
	}
	s.emit(Event{Kind: DragEnded, NodeIDs: []string{id}})
	return true
}

// Dragging reports whether a drag is in progress for id.
func (s *Store) Dragging(id string) bool { return s.dragging[id] }
