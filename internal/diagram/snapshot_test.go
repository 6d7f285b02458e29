package diagram

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowedit/internal/geom"
)

func sampleSnapshot() Snapshot {
	w, h := 120.0, 80.0
	return Snapshot{
		Nodes: []Node{
			{ID: "g", Type: GroupType, Position: geom.Pt(0, 0), Width: &w, Height: &h},
			{ID: "a", Type: "default", Position: geom.Pt(10, 10), ParentID: "g", Data: map[string]any{"label": "A"}, ZIndex: ptr(2)},
			{ID: "b", Type: "default", Position: geom.Pt(300, 0)},
		},
		Edges: []Edge{
			{ID: "e1", Source: "a", SourceHandle: "out", Target: "b", TargetHandle: "in", Type: geom.Orthogonal,
				Waypoints: []geom.Point{geom.Pt(200, 40)}, Label: "flow", Style: map[string]string{"stroke": "red"}, Animated: true},
		},
	}
}

func TestLoadSerializeRoundTrip(t *testing.T) {
	s := newTestStore(t)
	snap := sampleSnapshot()
	require.NoError(t, s.Load(snap))
	assert.Equal(t, snap, s.Serialize())

	snap.Nodes[1].Data["label"] = "changed"
	n, _ := s.Node("a")
	assert.Equal(t, "A", n.Label(), "load copies its input")
}

func TestLoadResetsHistoryAndSelection(t *testing.T) {
	s := newTestStore(t)
	mustAdd(t, s, box("old", 0, 0, 10, 10))
	s.SelectNode("old", false)

	require.NoError(t, s.Load(sampleSnapshot()))
	assert.False(t, s.CanUndo())
	assert.Empty(t, s.SelectedNodes())
	_, ok := s.Node("old")
	assert.False(t, ok)

	s.SetLocked(true)
	assert.NoError(t, s.Load(Snapshot{}), "load is allowed while locked")
	assert.Empty(t, s.Nodes())
}

func TestSerializeOmitsMeasuredSize(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Load(sampleSnapshot()))
	require.True(t, s.UpdateNodeDimensions("b", 90, 30))

	n, _ := s.Node("b")
	assert.Equal(t, 90.0, n.ComputedWidth)
	for _, n := range s.Serialize().Nodes {
		assert.Zero(t, n.ComputedWidth)
		assert.Zero(t, n.ComputedHeight)
	}
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	snap := sampleSnapshot()
	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, snap))
	assert.Contains(t, buf.String(), `"parentId": "g"`)
	assert.Contains(t, buf.String(), `"type": "orthogonal"`)

	got, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(snap, got); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotKeepsEmptyMaps(t *testing.T) {
	snap := Snapshot{
		Nodes: []Node{
			{ID: "a", Type: "default", Data: map[string]any{}},
			{ID: "b", Type: "default"},
		},
		Edges: []Edge{
			{ID: "e", Source: "a", SourceHandle: "out", Target: "b", TargetHandle: "in", Style: map[string]string{}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, snap))

	got, err := ReadSnapshot(&buf)
	require.NoError(t, err)
	require.Len(t, got.Nodes, 2)
	assert.NotNil(t, got.Nodes[0].Data)
	assert.Empty(t, got.Nodes[0].Data)
	assert.Nil(t, got.Nodes[1].Data)
	require.Len(t, got.Edges, 1)
	assert.NotNil(t, got.Edges[0].Style)
}

func TestWriteEmptySnapshot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, Snapshot{}))
	assert.JSONEq(t, `{"nodes":[],"edges":[]}`, buf.String())
}

func TestReadSnapshotRejectsGarbage(t *testing.T) {
	_, err := ReadSnapshot(strings.NewReader("{nodes"))
	assert.ErrorContains(t, err, "decode snapshot")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
		want   error
	}{
		{"duplicate node", func(s *Snapshot) { s.Nodes[2].ID = "a" }, ErrDuplicateNode},
		{"empty node id", func(s *Snapshot) { s.Nodes[2].ID = "" }, ErrDuplicateNode},
		{"unknown parent", func(s *Snapshot) { s.Nodes[1].ParentID = "nope" }, ErrUnknownParent},
		{"cycle", func(s *Snapshot) { s.Nodes[0].ParentID = "a" }, ErrParentCycle},
		{"self parent", func(s *Snapshot) { s.Nodes[2].ParentID = "b" }, ErrParentCycle},
		{"dangling target", func(s *Snapshot) { s.Edges[0].Target = "zzz" }, ErrUnknownEndpoint},
		{"duplicate edge", func(s *Snapshot) { s.Edges = append(s.Edges, s.Edges[0]) }, ErrDuplicateEdge},
		{"edge type", func(s *Snapshot) { s.Edges[0].Type = "zigzag" }, ErrUnknownEdgeType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := sampleSnapshot()
			tt.mutate(&snap)
			store := newTestStore(t)
			mustAdd(t, store, box("keep", 0, 0, 10, 10))

			err := store.Load(snap)
			require.ErrorIs(t, err, tt.want)
			assert.Len(t, store.Nodes(), 1, "store unchanged on error")
		})
	}
	assert.NoError(t, Validate(sampleSnapshot()))
}
