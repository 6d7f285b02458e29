package diagram

import (
	"slices"

	"flowedit/internal/geom"
)

// AddWaypoint appends p to the edge's waypoints.
func (s *Store) AddWaypoint(edgeID string, p geom.Point) bool {
	e, ok := s.editableEdge("add waypoint", edgeID)
	if !ok {
		return false
	}
	s.PushSnapshot()
	e.Waypoints = append(e.Waypoints, p)
	return true
}

// InsertWaypoint inserts p before index; index == len appends.
func (s *Store) InsertWaypoint(edgeID string, index int, p geom.Point) bool {
	e, ok := s.editableEdge("insert waypoint", edgeID)
	if !ok {
		return false
	}
	if index < 0 || index > len(e.Waypoints) {
		return s.reject("insert waypoint", "edge", edgeID, "index", index)
	}
	s.PushSnapshot()
	e.Waypoints = slices.Insert(e.Waypoints, index, p)
	return true
}

func (s *Store) UpdateWaypoint(edgeID string, index int, p geom.Point) bool {
	e, ok := s.editableEdge("update waypoint", edgeID)
	if !ok {
		return false
	}
	if index < 0 || index >= len(e.Waypoints) {
		return s.reject("update waypoint", "edge", edgeID, "index", index)
	}
	s.PushSnapshot()
	e.Waypoints[index] = p
	return true
}

// RemoveWaypoint deletes one waypoint. Removing the last one clears the
// list entirely.
func (s *Store) RemoveWaypoint(edgeID string, index int) bool {
	e, ok := s.editableEdge("remove waypoint", edgeID)
	if !ok {
		return false
	}
	if index < 0 || index >= len(e.Waypoints) {
		return s.reject("remove waypoint", "edge", edgeID, "index", index)
	}
	s.PushSnapshot()
	e.Waypoints = slices.Delete(e.Waypoints, index, index+1)
	if len(e.Waypoints) == 0 {
		e.Waypoints = nil
	}
	return true
}

func (s *Store) ClearWaypoints(edgeID string) bool {
	e, ok := s.editableEdge("clear waypoints", edgeID)
	if !ok {
		return false
	}
	if len(e.Waypoints) == 0 {
		return true
	}
	s.PushSnapshot()
	e.Waypoints = nil
	return true
}

func (s *Store) editableEdge(op, id string) (*Edge, bool) {
	if s.locked {
		return nil, s.reject(op, "edge", id, "reason", "locked")
	}
	e, ok := s.edgeByID[id]
	if !ok {
		return nil, s.reject(op, "edge", id, "reason", "unknown edge")
	}
	return e, true
}
