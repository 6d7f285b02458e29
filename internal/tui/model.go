// Package tui is the terminal host for a diagram store: it maps keys and
// mouse input onto store operations and draws the store every frame.
package tui

import (
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"flowedit/internal/config"
	"flowedit/internal/diagram"
	"flowedit/internal/geom"
	"flowedit/internal/render"
)

// Fetcher reads a subgraph from outside the editor, usually the system
// clipboard.
type Fetcher interface {
	Fetch() (diagram.Snapshot, error)
}

// Options wires a Model to its collaborators.
type Options struct {
	Filename string
	Config   *config.Config
	Logger   *slog.Logger
	// Clipboard, when set, is read by the paste-from-system key.
	Clipboard Fetcher
}

type Model struct {
	store *diagram.Store
	cfg   *config.Config
	log   *slog.Logger
	clip  Fetcher

	width      int
	height     int
	cursorX    int
	cursorY    int
	zPanMode   bool
	mode       Mode
	help       bool
	helpScroll int

	// Node being moved or resized.
	selectedNode string
	resizeW      float64
	resizeH      float64
	editText     string

	// mouse drag: node id and the grab offset from its origin
	mouseDrag   string
	mouseOffset geom.Point

	filename      string
	input         string
	fileOp        FileOperation
	confirmAction ConfirmAction

	errorMessage   string
	successMessage string
	dirty          bool

	// Nodes for which handles are registered.
	ported map[string]bool
}

// New returns a Model editing store.
func New(store *diagram.Store, opts Options) *Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	m := &Model{
		store:    store,
		cfg:      cfg,
		log:      log,
		clip:     opts.Clipboard,
		filename: opts.Filename,
		ported:   make(map[string]bool),
	}
	store.Subscribe(m.onEvent)
	m.syncHandles()
	return m
}

// Store returns the store the model edits.
func (m *Model) Store() *diagram.Store { return m.store }

func (m *Model) Mode() Mode { return m.mode }

// Cursor returns the cursor cell.
func (m *Model) Cursor() (x, y int) { return m.cursorX, m.cursorY }

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) onEvent(ev diagram.Event) {
	switch ev.Kind {
	case diagram.Connected, diagram.SelectionDeleted, diagram.DragEnded, diagram.Undone, diagram.Redone:
		m.dirty = true
	}
	m.log.Debug("tui: event", "kind", ev.Kind.String(), "nodes", ev.NodeIDs, "edges", ev.EdgeIDs)
}

// cellWorld maps the centre of a terminal cell to canvas coordinates.
func (m *Model) cellWorld(x, y int) geom.Point {
	return m.store.ScreenToWorld(cellScreen(x, y))
}

func cellScreen(x, y int) geom.Point {
	return geom.Pt(float64(x)*render.CellWidth+render.CellWidth/2, float64(y)*render.CellHeight+render.CellHeight/2)
}

// cellOrigin maps the top-left corner of a cell to canvas coordinates.
func (m *Model) cellOrigin(x, y int) geom.Point {
	return m.store.ScreenToWorld(geom.Pt(float64(x)*render.CellWidth, float64(y)*render.CellHeight))
}

func (m *Model) cursorWorld() geom.Point { return m.cellWorld(m.cursorX, m.cursorY) }

// cellSize is one terminal cell in canvas units at the current zoom.
func (m *Model) cellSize() (w, h float64) {
	z := m.store.Viewport().Zoom
	return render.CellWidth / z, render.CellHeight / z
}

func (m *Model) nodeUnderCursor() (string, bool) {
	return m.store.NodeAt(m.cursorWorld())
}

func (m *Model) edgeUnderCursor() (string, bool) {
	w, _ := m.cellSize()
	return m.store.EdgeAt(m.cursorWorld(), w)
}

// syncHandles registers an input on the left and an output on the right of
// every non-group node, and drops handles of nodes that are gone.
func (m *Model) syncHandles() {
	seen := make(map[string]bool)
	for _, n := range m.store.Nodes() {
		if n.IsGroup() {
			continue
		}
		r, ok := m.store.NodeBounds(n.ID)
		if !ok {
			continue
		}
		seen[n.ID] = true
		m.store.RegisterHandle(diagram.Handle{
			ID: "in", NodeID: n.ID, Direction: diagram.Input, PortType: portType,
			Position: geom.Anchor(r, geom.Left), Side: geom.Left,
		})
		m.store.RegisterHandle(diagram.Handle{
			ID: "out", NodeID: n.ID, Direction: diagram.Output, PortType: portType,
			Position: geom.Anchor(r, geom.Right), Side: geom.Right,
		})
	}
	for id := range m.ported {
		if !seen[id] {
			m.store.UnregisterHandle(id, "in")
			m.store.UnregisterHandle(id, "out")
		}
	}
	m.ported = seen
}

func (m *Model) canvasHeight() int {
	return max(m.height-1, 1)
}

func (m *Model) ensureCursorInBounds() {
	m.cursorX = max(m.cursorX, 0)
	m.cursorY = max(m.cursorY, 0)
	if m.width > 0 && m.cursorX >= m.width {
		m.cursorX = m.width - 1
	}
	// Leave room for status line
	if maxY := max(m.height-2, 0); m.cursorY > maxY {
		m.cursorY = maxY
	}
}

func (m *Model) setError(msg string) {
	m.errorMessage = msg
	m.successMessage = ""
}

func (m *Model) setSuccess(msg string) {
	m.successMessage = msg
	m.errorMessage = ""
}
