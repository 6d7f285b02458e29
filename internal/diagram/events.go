package diagram

import "slices"

// EventKind identifies a notification sent to subscribers.
type EventKind int

const (
	NodeClicked EventKind = iota
	EdgeClicked
	DragStarted
	DragEnded
	Connected
	SelectionDeleted
	ViewportChanged
	Undone
	Redone
)

var eventNames = [...]string{
	"node-clicked", "edge-clicked", "drag-started", "drag-ended", "connected",
	"selection-deleted", "viewport-changed", "undo", "redo",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[k]
}

// Event is delivered after the operation that caused it has completed.
type Event struct {
	Kind     EventKind
	NodeIDs  []string
	EdgeIDs  []string
	Edge     *Edge
	Viewport Viewport
}

type listener struct {
	id int
	fn func(Event)
}

// Subscribe registers fn for every event and returns a function that
// removes it. Listeners run synchronously on the caller's goroutine.
func (s *Store) Subscribe(fn func(Event)) (cancel func()) {
	id := s.nextSub
	s.nextSub++
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	return func() {
		s.listeners = slices.DeleteFunc(s.listeners, func(l listener) bool { return l.id == id })
	}
}

func (s *Store) emit(ev Event) {
	for _, l := range slices.Clone(s.listeners) {
		l.fn(ev)
	}
}
