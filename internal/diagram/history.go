package diagram

// PushSnapshot records the current graph on the undo stack and clears the
// redo stack. It does nothing while a snapshot is being restored or a
// batch is open.
func (s *Store) PushSnapshot() {
	if s.restoring || s.batching {
		return
	}
	s.undoStack = s.trim(append(s.undoStack, s.Serialize()))
	s.redoStack = nil
}

// Batch runs fn as a single undo step. fn reports whether it changed the
// graph; when it did not, the step is dropped and the redo stack is kept.
// Nested batches fold into the outermost one.
func (s *Store) Batch(fn func() bool) bool {
	if s.locked {
		return s.reject("batch", "reason", "locked")
	}
	if s.batching {
		return fn()
	}
	redo := s.redoStack
	s.PushSnapshot()
	s.batching = true
	changed := fn()
	s.batching = false
	if !changed {
		s.undoStack = s.undoStack[:len(s.undoStack)-1]
		s.redoStack = redo
	}
	return changed
}

func (s *Store) trim(stack []Snapshot) []Snapshot {
	if over := len(stack) - s.opts.HistoryDepth; over > 0 {
		clear(stack[:over])
		stack = stack[over:]
	}
	return stack
}

func (s *Store) CanUndo() bool { return len(s.undoStack) > 0 }
func (s *Store) CanRedo() bool { return len(s.redoStack) > 0 }

// HistoryLen returns the depth of the undo and redo stacks.
func (s *Store) HistoryLen() (undo, redo int) {
	return len(s.undoStack), len(s.redoStack)
}

// ClearHistory drops both stacks.
func (s *Store) ClearHistory() {
	s.undoStack = nil
	s.redoStack = nil
}

// Undo restores the most recent snapshot, saving the current state for Redo.
func (s *Store) Undo() bool {
	if s.locked {
		return s.reject("undo", "reason", "locked")
	}
	if len(s.undoStack) == 0 {
		return false
	}
	s.restoring = true
	s.redoStack = s.trim(append(s.redoStack, s.Serialize()))
	last := len(s.undoStack) - 1
	snap := s.undoStack[last]
	s.undoStack = s.undoStack[:last]
	s.restore(snap)
	s.restoring = false

	s.log.Debug("diagram: undo", "undo", len(s.undoStack), "redo", len(s.redoStack))
	s.emit(Event{Kind: Undone})
	return true
}

// Redo re-applies the most recently undone snapshot.
func (s *Store) Redo() bool {
	if s.locked {
		return s.reject("redo", "reason", "locked")
	}
	if len(s.redoStack) == 0 {
		return false
	}
	s.restoring = true
	s.undoStack = s.trim(append(s.undoStack, s.Serialize()))
	last := len(s.redoStack) - 1
	snap := s.redoStack[last]
	s.redoStack = s.redoStack[:last]
	s.restore(snap)
	s.restoring = false

	s.log.Debug("diagram: redo", "undo", len(s.undoStack), "redo", len(s.redoStack))
	s.emit(Event{Kind: Redone})
	return true
}

// restore replaces nodes and edges wholesale and clears the selection.
// Measured sizes carry over for nodes that survive, since the renderer will
// not re-measure a node that never unmounted.
func (s *Store) restore(snap Snapshot) {
	measured := make(map[string][2]float64, len(s.nodes))
	for _, n := range s.nodes {
		measured[n.ID] = [2]float64{n.ComputedWidth, n.ComputedHeight}
	}

	s.replaceGraph(snap.Clone())
	for _, n := range s.nodes {
		if m, ok := measured[n.ID]; ok {
			n.ComputedWidth, n.ComputedHeight = m[0], m[1]
		}
	}
	s.clearSelection()
	s.draft = nil
	s.marquee = nil
	clear(s.dragging)
}

func (s *Store) replaceGraph(snap Snapshot) {
	s.nodes = s.nodes[:0]
	s.edges = s.edges[:0]
	clear(s.nodeByID)
	clear(s.edgeByID)
	for _, n := range snap.Nodes {
		s.insertNode(n)
	}
	for _, e := range snap.Edges {
		s.insertEdge(e)
	}
}
