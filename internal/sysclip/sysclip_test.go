package sysclip

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowedit/internal/diagram"
	"flowedit/internal/geom"
	"flowedit/internal/render"
)

type fakeBoard struct {
	text string
	err  error
}

func (f *fakeBoard) clipboard() *Clipboard {
	return &Clipboard{
		read: func() (string, error) { return f.text, f.err },
		write: func(s string) error {
			if f.err != nil {
				return f.err
			}
			f.text = s
			return nil
		},
	}
}

func subgraph() diagram.Snapshot {
	w := 40.0
	return diagram.Snapshot{
		Nodes: []diagram.Node{
			{ID: "a", Type: "default", Position: geom.Pt(0, 0), Width: &w, Data: map[string]any{"label": "A"}},
			{ID: "b", Type: "default", Position: geom.Pt(100, 0)},
		},
		Edges: []diagram.Edge{
			{ID: "e", Source: "a", SourceHandle: "out", Target: "b", TargetHandle: "in", Type: geom.Curve},
		},
	}
}

func TestPublishFetchRoundTrip(t *testing.T) {
	board := &fakeBoard{}
	c := board.clipboard()

	require.NoError(t, c.Publish(subgraph()))
	assert.Contains(t, board.text, `"format":"flowedit/subgraph"`)

	got, err := c.Fetch()
	require.NoError(t, err)
	assert.Equal(t, subgraph(), got)
}

func TestFetchPlainText(t *testing.T) {
	board := &fakeBoard{text: "first line\r\nsecond\x07\r\n"}

	got, err := board.clipboard().Fetch()
	require.NoError(t, err)
	require.Len(t, got.Nodes, 1)
	n := got.Nodes[0]
	assert.Equal(t, "first line\nsecond", n.Label())
	w, h := n.Size()
	assert.Equal(t, 12*render.CellWidth, w)
	assert.Equal(t, 4*render.CellHeight, h)
}

func TestFetchErrors(t *testing.T) {
	_, err := (&fakeBoard{text: "  \n"}).clipboard().Fetch()
	assert.ErrorIs(t, err, ErrEmpty)

	boom := errors.New("no xclip")
	_, err = (&fakeBoard{err: boom}).clipboard().Fetch()
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, (&fakeBoard{err: boom}).clipboard().Publish(subgraph()), boom)
}

func TestDecodeRejectsInvalidSubgraph(t *testing.T) {
	bad := subgraph()
	bad.Edges[0].Target = "missing"
	text, err := Encode(bad)
	require.NoError(t, err)

	_, err = Decode(text)
	assert.ErrorIs(t, err, diagram.ErrUnknownEndpoint)
}

func TestForeignJSONIsText(t *testing.T) {
	got, err := Decode(`{"format":"other","graph":{}}`)
	require.NoError(t, err)
	require.Len(t, got.Nodes, 1)
	assert.Equal(t, `{"format":"other","graph":{}}`, got.Nodes[0].Label())
}

func TestDecodeStripsHTML(t *testing.T) {
	got, err := Decode("<div><b>A</b> &amp; B</div>")
	require.NoError(t, err)
	require.Len(t, got.Nodes, 1)
	assert.Equal(t, "A & B", got.Nodes[0].Label())
}
