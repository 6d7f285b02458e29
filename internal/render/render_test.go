package render

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowedit/internal/diagram"
	"flowedit/internal/geom"
)

func newStore(t *testing.T) *diagram.Store {
	t.Helper()
	s := diagram.New(diagram.DefaultOptions())
	add := func(id string, x, y float64) {
		w, h := 80.0, 48.0
		require.True(t, s.AddNode(diagram.Node{
			ID: id, Type: "default", Position: geom.Pt(x, y),
			Width: &w, Height: &h, Data: map[string]any{"label": id},
		}))
		r, _ := s.NodeBounds(id)
		require.True(t, s.RegisterHandle(diagram.Handle{ID: "in", NodeID: id, Direction: diagram.Input,
			PortType: "flow", Position: geom.Anchor(r, geom.Left), Side: geom.Left}))
		require.True(t, s.RegisterHandle(diagram.Handle{ID: "out", NodeID: id, Direction: diagram.Output,
			PortType: "flow", Position: geom.Anchor(r, geom.Right), Side: geom.Right}))
	}
	add("A", 0, 0)
	add("B", 160, 0)
	require.True(t, s.AddEdge(diagram.Edge{
		ID: "e", Source: "A", SourceHandle: "out", Target: "B", TargetHandle: "in", Type: geom.Straight,
	}))
	return s
}

func TestTextDrawsBoxesAndEdges(t *testing.T) {
	s := newStore(t)
	got := Text(s, s.Viewport(), 32, 4, Overlay{})

	border := "+--------+" + strings.Repeat(" ", 10) + "+--------+  "
	want := []string{
		border,
		"|A       |" + strings.Repeat("─", 9) + "▶" + "|B       |  ",
		border,
		strings.Repeat(" ", 32),
	}
	assert.Equal(t, want, got)
}

func TestTextOverlay(t *testing.T) {
	s := newStore(t)
	cursor := geom.Pt(248, 50)
	got := Text(s, s.Viewport(), 32, 4, Overlay{
		Selected: map[string]bool{"A": true},
		Cursor:   &cursor,
	})

	assert.Equal(t, "##########", got[0][:10])
	assert.True(t, strings.HasSuffix(got[3], "█"))
}

func TestTextFollowsViewport(t *testing.T) {
	s := newStore(t)
	got := Text(s, diagram.Viewport{X: -160, Y: 0, Zoom: 1}, 12, 3, Overlay{})
	assert.Equal(t, "+--------+  ", got[0], "B now starts at the left edge")
	assert.Equal(t, "|B       |  ", got[1])
}

func TestTextGroupFrame(t *testing.T) {
	s := diagram.New(diagram.DefaultOptions())
	w, h := 40.0, 48.0
	require.True(t, s.AddNode(diagram.Node{ID: "g", Type: diagram.GroupType, Position: geom.Pt(0, 0), Width: &w, Height: &h}))

	got := Text(s, s.Viewport(), 6, 3, Overlay{})
	assert.Equal(t, []string{"+...+ ", ":   : ", "+...+ "}, got)
}

func TestWriteText(t *testing.T) {
	s := newStore(t)
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, s, s.Viewport(), 32, 4))
	assert.Equal(t, 4, strings.Count(buf.String(), "\n"))
}

func TestEncodePNG(t *testing.T) {
	s := newStore(t)

	var buf bytes.Buffer
	require.NoError(t, EncodePNG(&buf, s, DefaultPNGOptions()))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	// Nodes span (0,0)-(240,48), padded by 20 on every side.
	assert.Equal(t, 280, img.Bounds().Dx())
	assert.Equal(t, 88, img.Bounds().Dy())

	opts := DefaultPNGOptions()
	opts.Scale = 2
	scaled, err := Image(s, opts)
	require.NoError(t, err)
	assert.Equal(t, 560, scaled.Bounds().Dx())
}

func TestExportPNG(t *testing.T) {
	s := newStore(t)
	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, ExportPNG(s, path, DefaultPNGOptions()))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	empty := diagram.New(diagram.DefaultOptions())
	assert.ErrorIs(t, ExportPNG(empty, path, DefaultPNGOptions()), ErrNothingToExport)
}

func TestParseHex(t *testing.T) {
	c, ok := parseHex("#ff8000")
	require.True(t, ok)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0x80, B: 0x00, A: 0xff}, c)

	c, ok = parseHex("#0f0")
	require.True(t, ok)
	assert.Equal(t, color.RGBA{R: 0, G: 0xff, B: 0, A: 0xff}, c)

	_, ok = parseHex("red")
	assert.False(t, ok)
}
