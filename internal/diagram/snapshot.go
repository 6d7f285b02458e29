package diagram

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var (
	ErrDuplicateNode   = errors.New("diagram: duplicate node id")
	ErrDuplicateEdge   = errors.New("diagram: duplicate edge id")
	ErrUnknownParent   = errors.New("diagram: unknown parent node")
	ErrParentCycle     = errors.New("diagram: parent chain contains a cycle")
	ErrUnknownEndpoint = errors.New("diagram: edge endpoint not found")
	ErrUnknownEdgeType = errors.New("diagram: unknown edge render type")
)

// Serialize returns a deep copy of the authored graph. Runtime-only fields
// (handles, measured sizes) are left out.
func (s *Store) Serialize() Snapshot {
	snap := Snapshot{
		Nodes: make([]Node, len(s.nodes)),
		Edges: make([]Edge, len(s.edges)),
	}
	for i, n := range s.nodes {
		c := n.clone()
		c.ComputedWidth, c.ComputedHeight = 0, 0
		snap.Nodes[i] = c
	}
	for i, e := range s.edges {
		snap.Edges[i] = e.clone()
	}
	return snap
}

// Load replaces the graph with snap, resetting selection and history. The
// snapshot is validated first; on error the store is unchanged.
func (s *Store) Load(snap Snapshot) error {
	if err := Validate(snap); err != nil {
		return err
	}
	s.replaceGraph(snap.Clone())
	s.clearSelection()
	s.draft = nil
	s.marquee = nil
	clear(s.dragging)
	s.ClearHistory()
	s.log.Info("diagram: loaded snapshot", "nodes", len(snap.Nodes), "edges", len(snap.Edges))
	return nil
}

// Validate checks the structural invariants of a snapshot: unique ids,
// known parents, an acyclic parent graph and edges between known nodes.
func Validate(snap Snapshot) error {
	nodes := make(map[string]Node, len(snap.Nodes))
	for _, n := range snap.Nodes {
		if _, dup := nodes[n.ID]; dup || n.ID == "" {
			return fmt.Errorf("%w: %q", ErrDuplicateNode, n.ID)
		}
		nodes[n.ID] = n
	}
	for _, n := range snap.Nodes {
		if n.ParentID == "" {
			continue
		}
		if _, ok := nodes[n.ParentID]; !ok {
			return fmt.Errorf("%w: %q (parent of %q)", ErrUnknownParent, n.ParentID, n.ID)
		}
		seen := map[string]bool{n.ID: true}
		for cur := n.ParentID; cur != ""; cur = nodes[cur].ParentID {
			if seen[cur] {
				return fmt.Errorf("%w: at %q", ErrParentCycle, n.ID)
			}
			seen[cur] = true
		}
	}
	edges := make(map[string]bool, len(snap.Edges))
	for _, e := range snap.Edges {
		if edges[e.ID] || e.ID == "" {
			return fmt.Errorf("%w: %q", ErrDuplicateEdge, e.ID)
		}
		edges[e.ID] = true
		if _, ok := nodes[e.Source]; !ok {
			return fmt.Errorf("%w: source %q of edge %q", ErrUnknownEndpoint, e.Source, e.ID)
		}
		if _, ok := nodes[e.Target]; !ok {
			return fmt.Errorf("%w: target %q of edge %q", ErrUnknownEndpoint, e.Target, e.ID)
		}
		if e.Type != "" && !e.Type.Valid() {
			return fmt.Errorf("%w: %q on edge %q", ErrUnknownEdgeType, e.Type, e.ID)
		}
	}
	return nil
}

// ReadSnapshot decodes a JSON snapshot.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return Snapshot{}, fmt.Errorf("diagram: decode snapshot: %w", err)
	}
	return snap, nil
}

// WriteSnapshot encodes snap as indented JSON.
func WriteSnapshot(w io.Writer, snap Snapshot) error {
	if snap.Nodes == nil {
		snap.Nodes = []Node{}
	}
	if snap.Edges == nil {
		snap.Edges = []Edge{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("diagram: encode snapshot: %w", err)
	}
	return nil
}
