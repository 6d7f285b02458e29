package diagram

import (
	"math"

	"flowedit/internal/geom"
)

// ClipboardSink mirrors copied subgraphs to an external clipboard. The
// store's own clipboard stays authoritative; sink errors are only logged.
type ClipboardSink interface {
	Publish(Snapshot) error
}

// Clipboard returns a copy of the internal clipboard.
func (s *Store) Clipboard() Snapshot { return s.clipboard.Clone() }

// SetClipboard replaces the internal clipboard, e.g. with a subgraph read
// back from the system clipboard.
func (s *Store) SetClipboard(snap Snapshot) {
	s.clipboard = snap.Clone()
}

// CopySelection copies the selected nodes.
func (s *Store) CopySelection() bool {
	return s.Copy(s.SelectedNodes()...)
}

// Copy stores the induced subgraph of ids on the clipboard. Selected groups
// bring all of their descendants; edges are kept only when both endpoints
// were copied. Nodes whose parent was not copied are stored top-level at
// their absolute position.
func (s *Store) Copy(ids ...string) bool {
	set := make(map[string]bool)
	for _, id := range ids {
		n, ok := s.nodeByID[id]
		if !ok {
			continue
		}
		set[id] = true
		if n.IsGroup() {
			for _, d := range s.Descendants(id) {
				set[d] = true
			}
		}
	}
	if len(set) == 0 {
		return false
	}

	var clip Snapshot
	for _, n := range s.nodes {
		if !set[n.ID] {
			continue
		}
		c := n.clone()
		if !set[n.ParentID] {
			c.Position = s.absolute(n)
			c.ParentID = ""
		}
		clip.Nodes = append(clip.Nodes, c)
	}
	for _, e := range s.edges {
		if set[e.Source] && set[e.Target] {
			clip.Edges = append(clip.Edges, e.clone())
		}
	}
	s.clipboard = clip
	s.log.Debug("diagram: copied", "nodes", len(clip.Nodes), "edges", len(clip.Edges))

	if s.opts.Clipboard != nil {
		if err := s.opts.Clipboard.Publish(clip.Clone()); err != nil {
			s.log.Warn("diagram: system clipboard write failed", "err", err)
		}
	}
	return true
}

// Paste inserts a fresh copy of the clipboard centred on target. Every
// node and edge gets a new id; the pasted nodes become the selection.
func (s *Store) Paste(target geom.Point) bool {
	if s.locked {
		return s.reject("paste", "reason", "locked")
	}
	if s.clipboard.Empty() {
		return false
	}
	clip := s.clipboard.Clone()

	copied := make(map[string]bool, len(clip.Nodes))
	for _, n := range clip.Nodes {
		copied[n.ID] = true
	}
	topLevel := func(n Node) bool { return n.ParentID == "" || !copied[n.ParentID] }

	offset := target.Sub(topLevelCenter(clip.Nodes, topLevel))

	idMap := make(map[string]string, len(clip.Nodes))
	for _, n := range clip.Nodes {
		idMap[n.ID] = s.freshNodeID()
	}

	s.PushSnapshot()
	pasted := make([]string, 0, len(clip.Nodes))
	for _, n := range clip.Nodes {
		if topLevel(n) {
			n.Position = n.Position.Add(offset)
			n.ParentID = ""
		} else {
			n.ParentID = idMap[n.ParentID]
		}
		n.ID = idMap[n.ID]
		s.insertNode(n)
		pasted = append(pasted, n.ID)
	}
	for _, e := range clip.Edges {
		src, okSrc := idMap[e.Source]
		dst, okDst := idMap[e.Target]
		if !okSrc || !okDst {
			continue
		}
		e.ID = s.freshEdgeID()
		e.Source, e.Target = src, dst
		for i := range e.Waypoints {
			e.Waypoints[i] = e.Waypoints[i].Add(offset)
		}
		s.insertEdge(e)
	}
	s.SetSelection(pasted, nil)
	s.log.Debug("diagram: pasted", "nodes", len(pasted), "edges", len(clip.Edges), "offset", offset)
	return true
}

// topLevelCenter is the centre of the bounding box of the top-level nodes.
func topLevelCenter(nodes []Node, topLevel func(Node) bool) geom.Point {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		if !topLevel(n) {
			continue
		}
		w, h := n.Size()
		minX = math.Min(minX, n.Position.X)
		minY = math.Min(minY, n.Position.Y)
		maxX = math.Max(maxX, n.Position.X+w)
		maxY = math.Max(maxY, n.Position.Y+h)
	}
	if math.IsInf(minX, 1) {
		return geom.Point{}
	}
	return geom.Point{X: (minX + maxX) / 2, Y: (minY + maxY) / 2}
}

func (s *Store) freshNodeID() string {
	for {
		if id := s.opts.NewID(); s.nodeByID[id] == nil {
			return id
		}
	}
}

func (s *Store) freshEdgeID() string {
	for {
		if id := s.opts.NewID(); s.edgeByID[id] == nil {
			return id
		}
	}
}
