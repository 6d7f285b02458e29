package diagram

import (
	"flowedit/internal/geom"
)

// AbsolutePosition resolves a node's canvas position by summing the
// relative positions up its parent chain.
func (s *Store) AbsolutePosition(id string) (geom.Point, bool) {
	n, ok := s.nodeByID[id]
	if !ok {
		return geom.Point{}, false
	}
	return s.absolute(n), true
}

func (s *Store) absolute(n *Node) geom.Point {
	p := n.Position
	seen := map[string]bool{n.ID: true}
	for parentID := n.ParentID; parentID != ""; {
		parent, ok := s.nodeByID[parentID]
		if !ok || seen[parentID] {
			break
		}
		seen[parentID] = true
		p = p.Add(parent.Position)
		parentID = parent.ParentID
	}
	return p
}

// NodeBounds returns the node's rectangle in canvas coordinates.
func (s *Store) NodeBounds(id string) (geom.Rect, bool) {
	n, ok := s.nodeByID[id]
	if !ok {
		return geom.Rect{}, false
	}
	return s.bounds(n), true
}

func (s *Store) bounds(n *Node) geom.Rect {
	p := s.absolute(n)
	w, h := n.Size()
	return geom.Rect{X: p.X, Y: p.Y, W: w, H: h}
}

// Children returns copies of the direct children of a node.
func (s *Store) Children(id string) []Node {
	var out []Node
	for _, n := range s.nodes {
		if n.ParentID == id && id != "" {
			out = append(out, n.clone())
		}
	}
	return out
}

func (s *Store) childIDs(id string) []string {
	var ids []string
	for _, n := range s.nodes {
		if n.ParentID == id {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// Descendants returns the ids of every node below id, depth first.
func (s *Store) Descendants(id string) []string {
	var out []string
	seen := map[string]bool{id: true}
	var walk func(string)
	walk = func(parent string) {
		for _, child := range s.childIDs(parent) {
			if seen[child] {
				continue
			}
			seen[child] = true
			out = append(out, child)
			walk(child)
		}
	}
	walk(id)
	return out
}

// isAncestor reports whether ancestor appears on the parent chain of id,
// id itself included.
func (s *Store) isAncestor(ancestor, id string) bool {
	seen := map[string]bool{}
	for cur := id; cur != ""; {
		if cur == ancestor {
			return true
		}
		if seen[cur] {
			return false
		}
		seen[cur] = true
		n, ok := s.nodeByID[cur]
		if !ok {
			return false
		}
		cur = n.ParentID
	}
	return false
}

// SetParent moves a node under parentID, or to the top level when parentID
// is empty. The node keeps its absolute position. Reparenting under the
// node itself or one of its descendants is rejected.
func (s *Store) SetParent(id, parentID string) bool {
	if s.locked {
		return s.reject("set parent", "id", id, "reason", "locked")
	}
	if !s.canReparent(id, parentID) {
		return false
	}
	if s.nodeByID[id].ParentID == parentID {
		return true
	}
	s.PushSnapshot()
	s.reparent(id, parentID)
	return true
}

func (s *Store) canReparent(id, parentID string) bool {
	if _, ok := s.nodeByID[id]; !ok {
		return s.reject("set parent", "id", id, "reason", "unknown node")
	}
	if parentID == "" {
		return true
	}
	if _, ok := s.nodeByID[parentID]; !ok {
		return s.reject("set parent", "id", id, "parent", parentID, "reason", "unknown parent")
	}
	if s.isAncestor(id, parentID) {
		return s.reject("set parent", "id", id, "parent", parentID, "reason", "cycle")
	}
	return true
}

// reparent re-expresses the position relative to the new parent, computed
// from absolute positions so the node does not move on screen.
func (s *Store) reparent(id, parentID string) {
	n := s.nodeByID[id]
	abs := s.absolute(n)
	if parentID == "" {
		n.Position = abs
	} else {
		n.Position = abs.Sub(s.absolute(s.nodeByID[parentID]))
	}
	n.ParentID = parentID
	s.log.Debug("diagram: reparented", "id", id, "parent", parentID)
}

// FindContainingGroup returns the smallest group whose bounds contain p,
// skipping the excluded ids. On equal areas the group later in document
// order (drawn on top) wins.
func (s *Store) FindContainingGroup(p geom.Point, exclude ...string) (string, bool) {
	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	best := ""
	bestArea := 0.0
	for _, n := range s.nodes {
		if !n.IsGroup() || skip[n.ID] {
			continue
		}
		r := s.bounds(n)
		if !r.Contains(p) {
			continue
		}
		if best == "" || r.Area() <= bestArea {
			best, bestArea = n.ID, r.Area()
		}
	}
	return best, best != ""
}

// SyncGroupMembership re-evaluates which non-group nodes belong to the
// group by testing their centers against its bounds.
func (s *Store) SyncGroupMembership(groupID string) bool {
	if s.locked {
		return s.reject("sync group", "id", groupID, "reason", "locked")
	}
	g, ok := s.nodeByID[groupID]
	if !ok || !g.IsGroup() {
		return s.reject("sync group", "id", groupID, "reason", "not a group")
	}
	moves := s.membershipChanges(groupID)
	if len(moves) == 0 {
		return true
	}
	s.PushSnapshot()
	s.applyMoves(moves)
	return true
}

type parentMove struct {
	id, parent string
}

// membershipChanges computes every reparent the group needs without
// touching state, so a sync is applied all at once.
func (s *Store) membershipChanges(groupID string) []parentMove {
	g := s.nodeByID[groupID]
	gr := s.bounds(g)
	var moves []parentMove
	for _, n := range s.nodes {
		if n.IsGroup() || n.ID == groupID || !s.hasGroupOrNoParent(n) {
			continue
		}
		center := s.bounds(n).Center()
		inside := gr.Contains(center)
		switch {
		case inside && n.ParentID != groupID:
			if s.inMoreSpecificGroup(n, center, gr.Area()) {
				continue
			}
			if s.isAncestor(n.ID, groupID) {
				continue
			}
			moves = append(moves, parentMove{n.ID, groupID})
		case !inside && n.ParentID == groupID:
			moves = append(moves, parentMove{n.ID, ""})
		}
	}
	return moves
}

// hasGroupOrNoParent reports whether n may be moved by group membership.
// Children of ordinary nodes stay attached to them.
func (s *Store) hasGroupOrNoParent(n *Node) bool {
	parent, ok := s.nodeByID[n.ParentID]
	return !ok || parent.IsGroup()
}

// inMoreSpecificGroup reports whether n already sits in a smaller group
// that still contains its center.
func (s *Store) inMoreSpecificGroup(n *Node, center geom.Point, area float64) bool {
	if n.ParentID == "" {
		return false
	}
	parent, ok := s.nodeByID[n.ParentID]
	if !ok || !parent.IsGroup() {
		return false
	}
	pr := s.bounds(parent)
	return pr.Contains(center) && pr.Area() < area
}

func (s *Store) applyMoves(moves []parentMove) {
	for _, m := range moves {
		s.reparent(m.id, m.parent)
	}
}
