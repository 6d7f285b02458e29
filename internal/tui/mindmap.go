package tui

import (
	"cmp"
	"slices"

	"flowedit/internal/diagram"
	"flowedit/internal/geom"
)

// children returns the nodes fed by id's output, top to bottom.
func (m *Model) children(id string) []diagram.Node {
	var out []diagram.Node
	for _, e := range m.store.Edges() {
		if e.Source != id {
			continue
		}
		if n, ok := m.store.Node(e.Target); ok {
			out = append(out, n)
		}
	}
	slices.SortFunc(out, func(a, b diagram.Node) int {
		pa, _ := m.store.AbsolutePosition(a.ID)
		pb, _ := m.store.AbsolutePosition(b.ID)
		return cmp.Compare(pa.Y, pb.Y)
	})
	return out
}

// addConnectedChild creates a box to the right of the node under the
// cursor, below any children it already has, and connects the two in one
// undo step.
func (m *Model) addConnectedChild() {
	parentID, ok := m.nodeUnderCursor()
	if !ok {
		m.setError("No node under cursor")
		return
	}
	parent, _ := m.store.NodeBounds(parentID)
	w, h := m.cellSize()

	pos := geom.Pt(parent.Max().X+4*w, parent.Y)
	if kids := m.children(parentID); len(kids) > 0 {
		last, _ := m.store.NodeBounds(kids[len(kids)-1].ID)
		pos.Y = last.Max().Y + h
	}

	width, height := newBoxWidth*w, minBoxHeight*h
	if m.store.Locked() {
		m.setError("Diagram is locked")
		return
	}
	m.store.Batch(func() bool {
		id, ok := m.addNode(diagram.Node{
			Type:     "default",
			Position: pos,
			Data:     map[string]any{"label": "Child"},
			Width:    &width,
			Height:   &height,
		})
		if !ok {
			return false
		}
		m.syncHandles()
		if _, ok := m.store.AddEdgeID(diagram.Edge{
			Source: parentID, SourceHandle: "out",
			Target: id, TargetHandle: "in",
		}); !ok {
			m.setError("Cannot connect the new node")
		}
		return true
	})
}
