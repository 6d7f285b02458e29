package diagram

import (
	"slices"

	"flowedit/internal/geom"
)

// CanConnectPorts reports whether an output of sourceType may feed an input
// of targetType that additionally accepts the listed types.
func CanConnectPorts(sourceType, targetType string, accepted []string) bool {
	return sourceType == targetType || slices.Contains(accepted, sourceType)
}

// CanConnect validates a prospective edge: distinct existing nodes, both
// handles registered, output to input, and compatible port types.
func (s *Store) CanConnect(sourceNode, sourceHandle, targetNode, targetHandle string) bool {
	if sourceNode == targetNode {
		return false
	}
	if _, ok := s.nodeByID[sourceNode]; !ok {
		return false
	}
	if _, ok := s.nodeByID[targetNode]; !ok {
		return false
	}
	src, ok := s.handles[HandleKey{Node: sourceNode, Handle: sourceHandle}]
	if !ok {
		return false
	}
	dst, ok := s.handles[HandleKey{Node: targetNode, Handle: targetHandle}]
	if !ok {
		return false
	}
	if src.Direction != Output || dst.Direction != Input {
		return false
	}
	return CanConnectPorts(src.PortType, dst.PortType, dst.AcceptedTypes)
}

// StartConnection begins dragging a new edge out of an output handle.
// Any previous draft is replaced.
func (s *Store) StartConnection(nodeID, handleID string) bool {
	if s.locked {
		return s.reject("start connection", "node", nodeID, "reason", "locked")
	}
	h, ok := s.handles[HandleKey{Node: nodeID, Handle: handleID}]
	if !ok || h.Direction != Output {
		return s.reject("start connection", "node", nodeID, "handle", handleID, "reason", "not an output handle")
	}
	if _, ok := s.nodeByID[nodeID]; !ok {
		return s.reject("start connection", "node", nodeID, "reason", "unknown node")
	}
	s.draft = &DraftConnection{
		SourceNode:     nodeID,
		SourceHandle:   handleID,
		SourcePortType: h.PortType,
		SourceAnchor:   h.Position,
		SourceSide:     h.Side,
		Pointer:        h.Position,
	}
	return true
}

// UpdateConnection moves the loose end of the draft.
func (s *Store) UpdateConnection(pointer geom.Point) {
	if s.draft != nil {
		s.draft.Pointer = pointer
	}
}

// FinishConnection tries to commit the draft onto the target handle. The
// draft is cleared whether or not the edge was created.
func (s *Store) FinishConnection(targetNode, targetHandle string) bool {
	if s.draft == nil {
		return false
	}
	d := *s.draft
	s.draft = nil
	return s.AddEdge(Edge{
		Source:       d.SourceNode,
		SourceHandle: d.SourceHandle,
		Target:       targetNode,
		TargetHandle: targetHandle,
	})
}

func (s *Store) CancelConnection() { s.draft = nil }

// Draft returns the in-progress connection, if any.
func (s *Store) Draft() (DraftConnection, bool) {
	if s.draft == nil {
		return DraftConnection{}, false
	}
	return *s.draft, true
}

// DraftPath is the preview path from the source anchor to the pointer. The
// pointer end is treated as entering from the side facing the source.
func (s *Store) DraftPath() (geom.Path, bool) {
	if s.draft == nil {
		return geom.Path{}, false
	}
	d := s.draft
	end := geom.InferSide(d.SourceAnchor.Sub(d.Pointer))
	return geom.Route(s.opts.DefaultEdgeType, d.SourceAnchor, d.SourceSide, d.Pointer, end, nil, s.opts.Curvature), true
}

// CanConnectDraft reports whether finishing the draft on the given handle
// would succeed, letting the renderer highlight valid targets.
func (s *Store) CanConnectDraft(targetNode, targetHandle string) bool {
	if s.draft == nil {
		return false
	}
	if !s.CanConnect(s.draft.SourceNode, s.draft.SourceHandle, targetNode, targetHandle) {
		return false
	}
	probe := Edge{Source: s.draft.SourceNode, SourceHandle: s.draft.SourceHandle, Target: targetNode, TargetHandle: targetHandle}
	for _, e := range s.edges {
		if e.sameEndpoints(probe) {
			return false
		}
	}
	return true
}
