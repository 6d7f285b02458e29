package diagram

import (
	"cmp"
	"slices"

	"flowedit/internal/geom"
)

// EdgePath routes an edge between its anchors. Registered handles supply
// the anchor and side; without them the facing sides of the two node boxes
// are used.
func (s *Store) EdgePath(id string) (geom.Path, bool) {
	e, ok := s.edgeByID[id]
	if !ok {
		return geom.Path{}, false
	}
	src, okSrc := s.nodeByID[e.Source]
	dst, okDst := s.nodeByID[e.Target]
	if !okSrc || !okDst {
		return geom.Path{}, false
	}
	srcBox, dstBox := s.bounds(src), s.bounds(dst)
	srcSide, dstSide := geom.FacingSides(srcBox, dstBox)
	a, b := geom.Anchor(srcBox, srcSide), geom.Anchor(dstBox, dstSide)
	if h, ok := s.handles[HandleKey{Node: e.Source, Handle: e.SourceHandle}]; ok {
		a, srcSide = h.Position, h.Side
	}
	if h, ok := s.handles[HandleKey{Node: e.Target, Handle: e.TargetHandle}]; ok {
		b, dstSide = h.Position, h.Side
	}
	kind := e.Type
	if !kind.Valid() {
		kind = s.opts.DefaultEdgeType
	}
	return geom.Route(kind, a, srcSide, b, dstSide, e.Waypoints, s.opts.Curvature), true
}

// EdgeLabelPosition is where a renderer should draw the edge's label.
func (s *Store) EdgeLabelPosition(id string) (geom.Point, bool) {
	p, ok := s.EdgePath(id)
	if !ok {
		return geom.Point{}, false
	}
	return p.Midpoint(), true
}

// NodeAt returns the top-most node under p. Non-group nodes win over groups,
// higher z-index wins over lower, later nodes win over earlier ones.
func (s *Store) NodeAt(p geom.Point) (string, bool) {
	type hit struct {
		n     *Node
		order int
	}
	var hits []hit
	for i, n := range s.nodes {
		if s.bounds(n).Contains(p) {
			hits = append(hits, hit{n, i})
		}
	}
	if len(hits) == 0 {
		return "", false
	}
	top := slices.MaxFunc(hits, func(a, b hit) int {
		if c := cmp.Compare(boolRank(!a.n.IsGroup()), boolRank(!b.n.IsGroup())); c != 0 {
			return c
		}
		if c := cmp.Compare(zIndex(a.n), zIndex(b.n)); c != 0 {
			return c
		}
		return cmp.Compare(a.order, b.order)
	})
	return top.n.ID, true
}

// EdgeAt returns the edge whose path passes closest to p within tolerance.
func (s *Store) EdgeAt(p geom.Point, tolerance float64) (string, bool) {
	best, bestDist := "", tolerance
	for _, e := range s.edges {
		path, ok := s.EdgePath(e.ID)
		if !ok {
			continue
		}
		if _, d := path.Nearest(p); d <= bestDist {
			best, bestDist = e.ID, d
		}
	}
	return best, best != ""
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func zIndex(n *Node) int {
	if n.ZIndex == nil {
		return 0
	}
	return *n.ZIndex
}
