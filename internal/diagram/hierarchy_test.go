package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowedit/internal/geom"
)

func TestAbsolutePositionFollowsGroup(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s,
		groupNode("G", 0, 0, 200, 200),
		child(box("C", 50, 50, 20, 20), "G"),
	)
	assert.Equal(t, geom.Pt(50, 50), absPos(t, s, "C"))

	require.True(t, s.UpdateNodePosition("G", geom.Pt(300, 300)))
	assert.Equal(t, geom.Pt(350, 350), absPos(t, s, "C"))

	_, ok := s.AbsolutePosition("missing")
	assert.False(t, ok)
}

func TestSetParentPreservesAbsolutePosition(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s,
		groupNode("G1", 100, 100, 300, 300),
		child(groupNode("G2", 40, 40, 100, 100), "G1"),
		box("n", 170, 160, 10, 10),
	)
	start := absPos(t, s, "n")

	steps := []string{"G2", "G1", "", "G2", ""}
	for _, parent := range steps {
		require.True(t, s.SetParent("n", parent), "reparent to %q", parent)
		assert.Equal(t, start, absPos(t, s, "n"), "after reparent to %q", parent)
		n, _ := s.Node("n")
		assert.Equal(t, parent, n.ParentID)
	}

	require.True(t, s.SetParent("n", "G2"))
	n, _ := s.Node("n")
	assert.Equal(t, geom.Pt(30, 20), n.Position, "relative to G2 at (140,140)")
}

func TestSetParentRejectsCycles(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s,
		groupNode("A", 0, 0, 500, 500),
		child(groupNode("B", 10, 10, 300, 300), "A"),
		child(groupNode("C", 10, 10, 100, 100), "B"),
	)
	before := s.Serialize()
	undo, _ := s.HistoryLen()

	assert.False(t, s.SetParent("A", "B"))
	assert.False(t, s.SetParent("A", "C"))
	assert.False(t, s.SetParent("B", "C"))
	assert.False(t, s.SetParent("A", "A"))
	assert.False(t, s.SetParent("A", "missing"))
	assert.False(t, s.SetParent("missing", "A"))

	assert.Equal(t, before, s.Serialize())
	after, _ := s.HistoryLen()
	assert.Equal(t, undo, after, "rejected reparent leaves no history")

	assert.True(t, s.SetParent("C", "A"), "moving up the tree is fine")
}

func TestFindContainingGroupPrefersSmallest(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s,
		groupNode("big", 0, 0, 300, 300),
		groupNode("small", 50, 50, 100, 100),
		box("plain", 60, 60, 10, 10),
	)
	p := geom.Pt(75, 75)

	id, ok := s.FindContainingGroup(p)
	require.True(t, ok)
	assert.Equal(t, "small", id)

	id, _ = s.FindContainingGroup(p, "small")
	assert.Equal(t, "big", id)

	id, _ = s.FindContainingGroup(geom.Pt(250, 250))
	assert.Equal(t, "big", id)

	_, ok = s.FindContainingGroup(geom.Pt(400, 400))
	assert.False(t, ok)
}

func TestSyncGroupMembership(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s,
		groupNode("G", 0, 0, 200, 200),
		groupNode("inner", 100, 100, 80, 80),
		child(box("leaver", 500, 500, 10, 10), "G"),
		box("joiner", 20, 20, 10, 10),
		child(box("nested", 5, 5, 10, 10), "inner"),
		box("outside", 400, 0, 10, 10),
	)
	leaverAbs := absPos(t, s, "leaver")
	joinerAbs := absPos(t, s, "joiner")

	require.True(t, s.SyncGroupMembership("G"))

	leaver, _ := s.Node("leaver")
	assert.Empty(t, leaver.ParentID, "center outside the group leaves it")
	assert.Equal(t, leaverAbs, absPos(t, s, "leaver"))

	joiner, _ := s.Node("joiner")
	assert.Equal(t, "G", joiner.ParentID)
	assert.Equal(t, joinerAbs, absPos(t, s, "joiner"))

	nested, _ := s.Node("nested")
	assert.Equal(t, "inner", nested.ParentID, "smaller group keeps its member")

	outside, _ := s.Node("outside")
	assert.Empty(t, outside.ParentID)

	assert.False(t, s.SyncGroupMembership("joiner"), "not a group")
}

func TestDragEndReevaluatesMembership(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s,
		groupNode("G", 0, 0, 200, 200),
		box("n", 400, 400, 20, 20),
	)
	var kinds []EventKind
	s.Subscribe(func(ev Event) { kinds = append(kinds, ev.Kind) })
	undoBefore, _ := s.HistoryLen()

	require.True(t, s.StartNodeDrag("n"))
	require.True(t, s.DragNode("n", geom.Pt(300, 300)))
	require.True(t, s.DragNode("n", geom.Pt(50, 50)))
	n, _ := s.Node("n")
	assert.Empty(t, n.ParentID, "membership is not touched mid-drag")

	require.True(t, s.EndNodeDrag("n"))
	n, _ = s.Node("n")
	assert.Equal(t, "G", n.ParentID)
	assert.Equal(t, geom.Pt(50, 50), absPos(t, s, "n"))

	undoAfter, _ := s.HistoryLen()
	assert.Equal(t, undoBefore+1, undoAfter, "a whole drag is one history entry")
	assert.Equal(t, []EventKind{DragStarted, DragEnded}, kinds)

	require.True(t, s.Undo())
	n, _ = s.Node("n")
	assert.Empty(t, n.ParentID)
	assert.Equal(t, geom.Pt(400, 400), n.Position)

	assert.False(t, s.DragNode("n", geom.Pt(0, 0)), "not dragging")
	assert.False(t, s.EndNodeDrag("n"))
}

func TestDraggingGroupCollectsNodes(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s,
		groupNode("G", 0, 0, 100, 100),
		box("n", 300, 300, 20, 20),
	)
	require.True(t, s.StartNodeDrag("G"))
	require.True(t, s.DragNode("G", geom.Pt(260, 260)))
	require.True(t, s.EndNodeDrag("G"))

	n, _ := s.Node("n")
	assert.Equal(t, "G", n.ParentID)
	assert.Equal(t, geom.Pt(40, 40), n.Position)
	assert.Equal(t, geom.Pt(300, 300), absPos(t, s, "n"))
}

func TestSyncGroupMembershipKeepsChildrenOfNodes(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s,
		groupNode("G", 0, 0, 200, 200),
		box("p", 20, 20, 60, 60),
		child(box("c", 10, 10, 10, 10), "p"),
	)
	cAbs := absPos(t, s, "c")

	require.True(t, s.SyncGroupMembership("G"))
	p, _ := s.Node("p")
	assert.Equal(t, "G", p.ParentID)
	c, _ := s.Node("c")
	assert.Equal(t, "p", c.ParentID, "a node keeps its own children")
	assert.Equal(t, cAbs, absPos(t, s, "c"))
}

func TestDragEndWhileLockedKeepsParent(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s,
		groupNode("G", 0, 0, 200, 200),
		box("a", 50, 50, 20, 20),
	)
	var kinds []EventKind
	s.Subscribe(func(ev Event) { kinds = append(kinds, ev.Kind) })

	require.True(t, s.StartNodeDrag("a"))
	s.SetLocked(true)
	assert.False(t, s.DragNode("a", geom.Pt(120, 120)))
	require.True(t, s.EndNodeDrag("a"))

	a, _ := s.Node("a")
	assert.Empty(t, a.ParentID, "no reparenting while locked")
	assert.Equal(t, geom.Pt(50, 50), a.Position)
	assert.False(t, s.Dragging("a"))
	assert.Equal(t, []EventKind{DragStarted, DragEnded}, kinds)
}

func TestChildrenAndDescendants(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s,
		groupNode("A", 0, 0, 500, 500),
		child(groupNode("B", 10, 10, 300, 300), "A"),
		child(box("c", 10, 10, 10, 10), "B"),
		child(box("d", 50, 50, 10, 10), "A"),
	)
	var names []string
	for _, c := range s.Children("A") {
		names = append(names, c.ID)
	}
	assert.Equal(t, []string{"B", "d"}, names)
	assert.Equal(t, []string{"B", "c", "d"}, s.Descendants("A"))
	assert.Empty(t, s.Children("c"))
}
