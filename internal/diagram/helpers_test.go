package diagram

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"flowedit/internal/geom"
)

func newTestStore(t *testing.T, mutate ...func(*Options)) *Store {
	t.Helper()
	opts := DefaultOptions()
	seq := 0
	opts.NewID = func() string {
		seq++
		return fmt.Sprintf("gen%d", seq)
	}
	for _, m := range mutate {
		m(&opts)
	}
	return New(opts)
}

func box(id string, x, y, w, h float64) Node {
	return Node{ID: id, Type: "default", Position: geom.Pt(x, y), Width: &w, Height: &h}
}

func groupNode(id string, x, y, w, h float64) Node {
	n := box(id, x, y, w, h)
	n.Type = GroupType
	return n
}

func child(n Node, parent string) Node {
	n.ParentID = parent
	return n
}

func mustAdd(t *testing.T, s *Store, nodes ...Node) {
	t.Helper()
	for _, n := range nodes {
		require.True(t, s.AddNode(n), "add node %s", n.ID)
	}
}

// registerPorts gives a node an "in" input on its left and an "out"
// output on its right, both of portType.
func registerPorts(t *testing.T, s *Store, nodeID, portType string, accept ...string) {
	t.Helper()
	r, ok := s.NodeBounds(nodeID)
	require.True(t, ok)
	require.True(t, s.RegisterHandle(Handle{
		ID: "in", NodeID: nodeID, Direction: Input, PortType: portType,
		AcceptedTypes: accept, Position: geom.Anchor(r, geom.Left), Side: geom.Left,
	}))
	require.True(t, s.RegisterHandle(Handle{
		ID: "out", NodeID: nodeID, Direction: Output, PortType: portType,
		Position: geom.Anchor(r, geom.Right), Side: geom.Right,
	}))
}

func connect(t *testing.T, s *Store, from, to string) string {
	t.Helper()
	id, ok := s.AddEdgeID(Edge{Source: from, SourceHandle: "out", Target: to, TargetHandle: "in"})
	require.True(t, ok, "connect %s -> %s", from, to)
	return id
}

func absPos(t *testing.T, s *Store, id string) geom.Point {
	t.Helper()
	p, ok := s.AbsolutePosition(id)
	require.True(t, ok, "absolute position of %s", id)
	return p
}

func ptr[T any](v T) *T { return &v }
