package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowedit/internal/geom"
)

func TestCanConnectPorts(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		target   string
		accepted []string
		want     bool
	}{
		{"same type", "x", "x", nil, true},
		{"accepted extra type", "x", "y", []string{"x"}, true},
		{"mismatch without accept list", "x", "y", nil, false},
		{"accept list without source type", "x", "y", []string{"z"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanConnectPorts(tt.source, tt.target, tt.accepted))
		})
	}
}

func portStore(t *testing.T) *Store {
	t.Helper()
	s := newTestStore(t)
	mustAdd(t, s,
		box("A", 0, 0, 50, 50),
		box("B", 200, 0, 50, 50),
		box("C", 200, 200, 50, 50),
		box("D", 400, 0, 50, 50),
	)
	registerPorts(t, s, "A", "x")
	registerPorts(t, s, "B", "x")
	registerPorts(t, s, "C", "y", "x")
	registerPorts(t, s, "D", "y")
	return s
}

func TestCanConnect(t *testing.T) {
	s := portStore(t)

	assert.True(t, s.CanConnect("A", "out", "B", "in"))
	assert.True(t, s.CanConnect("A", "out", "C", "in"), "input accepts x")
	assert.False(t, s.CanConnect("A", "out", "D", "in"), "y without accept list")
	assert.False(t, s.CanConnect("A", "out", "A", "in"), "self loop")
	assert.False(t, s.CanConnect("A", "in", "B", "in"), "source must be an output")
	assert.False(t, s.CanConnect("A", "out", "B", "out"), "target must be an input")
	assert.False(t, s.CanConnect("A", "out", "B", "missing"))
	assert.False(t, s.CanConnect("A", "out", "Z", "in"))
}

func TestAddEdgeRejectsExactDuplicates(t *testing.T) {
	s := portStore(t)
	var connected int
	s.Subscribe(func(ev Event) {
		if ev.Kind == Connected {
			connected++
		}
	})

	first := Edge{Source: "A", SourceHandle: "out", Target: "B", TargetHandle: "in"}
	require.True(t, s.AddEdge(first))
	assert.False(t, s.AddEdge(first), "same tuple")
	assert.True(t, s.AddEdge(Edge{Source: "B", SourceHandle: "out", Target: "A", TargetHandle: "in"}),
		"reverse direction is a different tuple")
	assert.False(t, s.AddEdge(Edge{Source: "A", SourceHandle: "out", Target: "D", TargetHandle: "in"}))

	assert.Len(t, s.Edges(), 2)
	assert.Equal(t, 2, connected)
}

func TestDraftConnection(t *testing.T) {
	s := portStore(t)

	assert.False(t, s.StartConnection("B", "in"), "drafts start from outputs")
	require.True(t, s.StartConnection("A", "out"))
	d, ok := s.Draft()
	require.True(t, ok)
	assert.Equal(t, "x", d.SourcePortType)
	assert.Equal(t, geom.Pt(50, 25), d.SourceAnchor)
	assert.Equal(t, geom.Right, d.SourceSide)

	s.UpdateConnection(geom.Pt(150, 80))
	d, _ = s.Draft()
	assert.Equal(t, geom.Pt(150, 80), d.Pointer)
	path, ok := s.DraftPath()
	require.True(t, ok)
	pts := path.Points()
	assert.Equal(t, geom.Pt(50, 25), pts[0])
	assert.Equal(t, geom.Pt(150, 80), pts[len(pts)-1])

	assert.True(t, s.CanConnectDraft("B", "in"))
	assert.False(t, s.CanConnectDraft("D", "in"))

	assert.False(t, s.FinishConnection("D", "in"), "incompatible target")
	_, ok = s.Draft()
	assert.False(t, ok, "draft cleared after a failed finish")

	require.True(t, s.StartConnection("A", "out"))
	require.True(t, s.FinishConnection("B", "in"))
	assert.Len(t, s.Edges(), 1)

	require.True(t, s.StartConnection("A", "out"))
	assert.False(t, s.CanConnectDraft("B", "in"), "would duplicate")
	s.CancelConnection()
	_, ok = s.Draft()
	assert.False(t, ok)
	assert.False(t, s.FinishConnection("B", "in"))
}

func TestRegisterHandle(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, box("A", 0, 0, 10, 10))

	assert.False(t, s.RegisterHandle(Handle{ID: "h", NodeID: "A", Direction: "sideways"}))
	assert.False(t, s.RegisterHandle(Handle{ID: "", NodeID: "A", Direction: Input}))

	accepted := []string{"a"}
	require.True(t, s.RegisterHandle(Handle{ID: "h", NodeID: "A", Direction: Input, PortType: "p", AcceptedTypes: accepted, Position: geom.Pt(1, 2)}))
	accepted[0] = "mutated"

	h, ok := s.Handle("A", "h")
	require.True(t, ok)
	assert.Equal(t, []string{"a"}, h.AcceptedTypes)
	pos, ok := s.HandlePosition("A", "h")
	require.True(t, ok)
	assert.Equal(t, geom.Pt(1, 2), pos)

	require.True(t, s.RegisterHandle(Handle{ID: "g", NodeID: "A", Direction: Output}))
	var ids []string
	for _, h := range s.NodeHandles("A") {
		ids = append(ids, h.ID)
	}
	assert.Equal(t, []string{"g", "h"}, ids)

	s.UnregisterHandle("A", "h")
	_, ok = s.Handle("A", "h")
	assert.False(t, ok)
}
