// Package render draws a diagram as a character grid for the terminal
// editor and as a PNG image for export.
package render

import (
	"errors"

	"flowedit/internal/diagram"
	"flowedit/internal/geom"
)

// ErrNothingToExport is returned when the diagram has no nodes.
var ErrNothingToExport = errors.New("render: nothing to export")

// Source is the read side of a diagram store.
type Source interface {
	Nodes() []diagram.Node
	NodeBounds(id string) (geom.Rect, bool)
	Edges() []diagram.Edge
	EdgePath(id string) (geom.Path, bool)
}

// layers splits nodes into groups, drawn first, and the rest, drawn over
// the edges.
func layers(src Source) (groups, boxes []placed) {
	for _, n := range src.Nodes() {
		r, ok := src.NodeBounds(n.ID)
		if !ok {
			continue
		}
		p := placed{node: n, rect: r}
		if n.IsGroup() {
			groups = append(groups, p)
		} else {
			boxes = append(boxes, p)
		}
	}
	return groups, boxes
}

type placed struct {
	node diagram.Node
	rect geom.Rect
}

// extent is the rectangle covering every node and edge path.
func extent(src Source) (geom.Rect, bool) {
	var (
		r  geom.Rect
		ok bool
	)
	grow := func(b geom.Rect) {
		if !ok {
			r, ok = b, true
			return
		}
		r = r.Union(b)
	}
	for _, n := range src.Nodes() {
		if b, found := src.NodeBounds(n.ID); found {
			grow(b)
		}
	}
	if !ok {
		return geom.Rect{}, false
	}
	for _, e := range src.Edges() {
		if p, found := src.EdgePath(e.ID); found {
			grow(p.Bounds())
		}
	}
	return r, true
}
