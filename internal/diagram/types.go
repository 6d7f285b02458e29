package diagram

import (
	"maps"
	"slices"

	"flowedit/internal/geom"
)

// GroupType is the node type that renderers draw as a container. Grouping
// is by convention only: any node may be a parent.
const GroupType = "group"

// Node is one box on the canvas. Position is relative to the parent when
// ParentID is set, absolute otherwise.
type Node struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Position geom.Point     `json:"position"`
	Data     map[string]any `json:"data"`
	Width    *float64       `json:"width,omitempty"`
	Height   *float64       `json:"height,omitempty"`
	ParentID string         `json:"parentId,omitempty"`
	ZIndex   *int           `json:"zIndex,omitempty"`

	// Last size measured by the renderer. Never serialized.
	ComputedWidth  float64 `json:"-"`
	ComputedHeight float64 `json:"-"`
}

func (n Node) IsGroup() bool { return n.Type == GroupType }

// Size returns the authored size when set, else the measured one.
func (n Node) Size() (w, h float64) {
	w, h = n.ComputedWidth, n.ComputedHeight
	if n.Width != nil {
		w = *n.Width
	}
	if n.Height != nil {
		h = *n.Height
	}
	return w, h
}

// Label returns the "label" entry of Data when it is a string.
func (n Node) Label() string {
	s, _ := n.Data["label"].(string)
	return s
}

func (n Node) clone() Node {
	c := n
	c.Data = maps.Clone(n.Data)
	if n.Width != nil {
		w := *n.Width
		c.Width = &w
	}
	if n.Height != nil {
		h := *n.Height
		c.Height = &h
	}
	if n.ZIndex != nil {
		z := *n.ZIndex
		c.ZIndex = &z
	}
	return c
}

// Direction of a handle.
type Direction string

const (
	Input  Direction = "input"
	Output Direction = "output"
)

// Handle is a typed connection point registered by the renderer while its
// node is mounted. Handles are never part of a snapshot.
type Handle struct {
	ID            string
	NodeID        string
	Direction     Direction
	PortType      string
	AcceptedTypes []string
	// Absolute canvas position of the anchor.
	Position geom.Point
	// Side of the node the handle protrudes from.
	Side geom.Side
}

// HandleKey identifies a handle within the registry.
type HandleKey struct {
	Node   string
	Handle string
}

func (h Handle) key() HandleKey { return HandleKey{Node: h.NodeID, Handle: h.ID} }

// Edge connects an output handle to an input handle.
type Edge struct {
	ID           string            `json:"id"`
	Source       string            `json:"source"`
	SourceHandle string            `json:"sourceHandle"`
	Target       string            `json:"target"`
	TargetHandle string            `json:"targetHandle"`
	Type         geom.RenderType   `json:"type,omitempty"`
	Waypoints    []geom.Point      `json:"waypoints,omitempty"`
	Label        string            `json:"label,omitempty"`
	Style        map[string]string `json:"style"`
	Animated     bool              `json:"animated,omitempty"`
}

func (e Edge) clone() Edge {
	c := e
	c.Waypoints = slices.Clone(e.Waypoints)
	c.Style = maps.Clone(e.Style)
	return c
}

func (e Edge) sameEndpoints(o Edge) bool {
	return e.Source == o.Source && e.SourceHandle == o.SourceHandle &&
		e.Target == o.Target && e.TargetHandle == o.TargetHandle
}

func (e Edge) touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}

// Viewport maps canvas coordinates to screen pixels:
// screen = canvas*Zoom + (X, Y).
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// DraftConnection is the edge being dragged out of an output handle.
type DraftConnection struct {
	SourceNode     string
	SourceHandle   string
	SourcePortType string
	SourceAnchor   geom.Point
	SourceSide     geom.Side
	Pointer        geom.Point
}

// Snapshot is the exchange format for undo/redo, clipboard, import and export.
type Snapshot struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Clone deep-copies s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Nodes: make([]Node, len(s.Nodes)),
		Edges: make([]Edge, len(s.Edges)),
	}
	for i, n := range s.Nodes {
		out.Nodes[i] = n.clone()
	}
	for i, e := range s.Edges {
		out.Edges[i] = e.clone()
	}
	return out
}

// Empty reports whether s holds no nodes.
func (s Snapshot) Empty() bool { return len(s.Nodes) == 0 }
