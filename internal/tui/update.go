package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"flowedit/internal/diagram"
	"flowedit/internal/geom"
	"flowedit/internal/render"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorInBounds()
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.KeyMsg:
		if m.help {
			m.handleHelpKey(msg.String())
			return m, nil
		}
		switch m.mode {
		case ModeNormal:
			cmd = m.handleNormalKey(msg)
		case ModeEditing:
			m.handleEditKey(msg)
		case ModeResize:
			m.handleResizeKey(msg)
		case ModeMove:
			m.handleMoveKey(msg)
		case ModeConnect:
			m.handleConnectKey(msg)
		case ModeMultiSelect:
			m.handleSelectKey(msg)
		case ModeFileInput:
			m.handleFileKey(msg)
		case ModeConfirm:
			cmd = m.handleConfirmKey(msg)
		}
	}
	m.syncHandles()
	return m, cmd
}

func (m *Model) handleNormalKey(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyEscape {
		m.zPanMode = false
		m.store.ClearSelection()
		m.store.CancelConnection()
		m.errorMessage, m.successMessage = "", ""
		return nil
	}

	key := msg.String()
	if isDirection(key) {
		m.handleNavigation(key, m.getMoveSpeed(key))
		return nil
	}

	switch key {
	case "ctrl+c", "q":
		if !m.dirty {
			return tea.Quit
		}
		m.mode = ModeConfirm
		m.confirmAction = ConfirmQuit
	case "?":
		m.help = !m.help
	case "z":
		m.zPanMode = !m.zPanMode
	case "+", "=":
		m.store.ZoomAt(1.25, cellScreen(m.cursorX, m.cursorY))
	case "-":
		m.store.ZoomAt(0.8, cellScreen(m.cursorX, m.cursorY))
	case "0":
		m.store.FitView(float64(m.width)*render.CellWidth, float64(m.canvasHeight())*render.CellHeight, render.CellWidth*2)
	case "!":
		m.store.SetLocked(!m.store.Locked())
		if m.store.Locked() {
			m.setSuccess("Locked")
		} else {
			m.setSuccess("Unlocked")
		}

	case "b":
		m.addBox()
	case "g":
		m.addGroup()
	case "o":
		m.addConnectedChild()
	case "e":
		m.startEdit()
	case "m":
		m.startMove()
	case "r":
		m.startResize()
	case "a":
		m.startConnect()
	case " ":
		m.toggleSelectUnderCursor()
	case "v":
		m.store.StartMarquee(m.cursorWorld())
		m.mode = ModeMultiSelect
	case "d", "x":
		m.deleteUnderCursor()
	case "c":
		m.copySelection()
	case "p":
		m.paste()
	case "P":
		m.pasteFromSystem()
	case "w":
		m.addWaypoint()
	case "W":
		m.clearWaypoints()
	case "t":
		m.cycleEdgeType()
	case "G":
		m.syncGroupUnderCursor()

	case "u":
		if m.store.Undo() {
			m.setSuccess("Undo")
		}
	case "U":
		if m.store.Redo() {
			m.setSuccess("Redo")
		}

	case "s":
		m.promptFile(FileOpSave)
	case "S":
		m.promptFile(FileOpSavePNG)
	case "T":
		m.promptFile(FileOpSaveVisualTXT)
	case "O":
		m.promptFile(FileOpOpen)
	case "n":
		if m.dirty {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmNewChart
		} else {
			m.newChart()
		}
	}
	return nil
}

func (m *Model) addBox() {
	w, h := m.cellSize()
	width, height := newBoxWidth*w, minBoxHeight*h
	m.addNode(diagram.Node{
		Type:     "default",
		Position: m.cellOrigin(m.cursorX, m.cursorY),
		Data:     map[string]any{"label": "Box"},
		Width:    &width,
		Height:   &height,
	})
}

func (m *Model) addGroup() {
	w, h := m.cellSize()
	width, height := newGroupWidth*w, newGroupHeight*h
	m.addNode(diagram.Node{
		Type:     diagram.GroupType,
		Position: m.cellOrigin(m.cursorX, m.cursorY),
		Data:     map[string]any{"label": "Group"},
		Width:    &width,
		Height:   &height,
	})
}

// addNode inserts n at top level, or inside the group under its origin.
func (m *Model) addNode(n diagram.Node) (string, bool) {
	if parent, ok := m.store.FindContainingGroup(n.Position); ok && !n.IsGroup() {
		origin, _ := m.store.AbsolutePosition(parent)
		n.ParentID = parent
		n.Position = n.Position.Sub(origin)
	}
	id, ok := m.store.AddNodeID(n)
	if !ok {
		m.setError("Cannot add node here")
		return "", false
	}
	m.dirty = true
	m.store.SelectNode(id, false)
	return id, true
}

func (m *Model) startEdit() {
	id, ok := m.nodeUnderCursor()
	if !ok {
		m.setError("No node under cursor")
		return
	}
	n, _ := m.store.Node(id)
	m.selectedNode = id
	m.editText = n.Label()
	m.mode = ModeEditing
}

func (m *Model) handleEditKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = ModeNormal
		m.selectedNode = ""
	case tea.KeyEnter:
		if m.store.UpdateNodeData(m.selectedNode, map[string]any{"label": m.editText}) {
			m.dirty = true
		}
		m.mode = ModeNormal
		m.selectedNode = ""
	case tea.KeyBackspace:
		if r := []rune(m.editText); len(r) > 0 {
			m.editText = string(r[:len(r)-1])
		}
	case tea.KeyRunes:
		m.editText += string(msg.Runes)
	default:
		if msg.String() == " " {
			m.editText += " "
		}
	}
}

func (m *Model) startMove() {
	id, ok := m.nodeUnderCursor()
	if !ok {
		m.setError("No node under cursor")
		return
	}
	if !m.store.StartNodeDrag(id) {
		m.setError("Diagram is locked")
		return
	}
	m.selectedNode = id
	m.store.SelectNode(id, false)
	m.mode = ModeMove
}

func (m *Model) handleMoveKey(msg tea.KeyMsg) {
	key := msg.String()
	switch {
	case isDirection(key):
		speed := m.getMoveSpeed(key)
		m.store.DragNodeBy(m.selectedNode, m.step(key, speed))
		m.handleCursorMove(key, speed)
	case msg.Type == tea.KeyEnter:
		m.store.EndNodeDrag(m.selectedNode)
		m.dirty = true
		m.mode = ModeNormal
		m.selectedNode = ""
	case msg.Type == tea.KeyEscape:
		// The drag start recorded the pre-move state.
		m.store.EndNodeDrag(m.selectedNode)
		m.store.Undo()
		m.mode = ModeNormal
		m.selectedNode = ""
	}
}

func (m *Model) startResize() {
	id, ok := m.nodeUnderCursor()
	if !ok {
		m.setError("No node under cursor")
		return
	}
	if m.store.Locked() {
		m.setError("Diagram is locked")
		return
	}
	n, _ := m.store.Node(id)
	m.selectedNode = id
	m.resizeW, m.resizeH = n.Size()
	m.mode = ModeResize
}

func (m *Model) handleResizeKey(msg tea.KeyMsg) {
	key := msg.String()
	switch {
	case isDirection(key):
		d := m.step(key, m.getMoveSpeed(key))
		w, h := m.cellSize()
		m.resizeW = max(m.resizeW+d.X, minBoxWidth*w)
		m.resizeH = max(m.resizeH+d.Y, minBoxHeight*h)
	case msg.Type == tea.KeyEnter:
		if m.store.ResizeNode(m.selectedNode, m.resizeW, m.resizeH) {
			m.dirty = true
		}
		m.mode = ModeNormal
		m.selectedNode = ""
	case msg.Type == tea.KeyEscape:
		m.mode = ModeNormal
		m.selectedNode = ""
	}
}

// resizePreview is the outline drawn while resizing.
func (m *Model) resizePreview() (geom.Rect, bool) {
	if m.mode != ModeResize {
		return geom.Rect{}, false
	}
	p, ok := m.store.AbsolutePosition(m.selectedNode)
	if !ok {
		return geom.Rect{}, false
	}
	return geom.Rect{X: p.X, Y: p.Y, W: m.resizeW, H: m.resizeH}, true
}

func (m *Model) startConnect() {
	id, ok := m.nodeUnderCursor()
	if !ok {
		m.setError("Start a connection on a node")
		return
	}
	if !m.store.StartConnection(id, "out") {
		m.setError("Cannot connect from here")
		return
	}
	m.store.UpdateConnection(m.cursorWorld())
	m.mode = ModeConnect
}

func (m *Model) handleConnectKey(msg tea.KeyMsg) {
	key := msg.String()
	switch {
	case isDirection(key):
		m.handleCursorMove(key, m.getMoveSpeed(key))
		m.store.UpdateConnection(m.cursorWorld())
	case key == "a" || msg.Type == tea.KeyEnter:
		target, ok := m.nodeUnderCursor()
		if !ok {
			m.setError("Finish the connection on a node")
			return
		}
		if m.store.FinishConnection(target, "in") {
			m.setSuccess("Connected")
		} else {
			m.setError("Those ports cannot be connected")
		}
		m.mode = ModeNormal
	case msg.Type == tea.KeyEscape:
		m.store.CancelConnection()
		m.mode = ModeNormal
	}
}

func (m *Model) toggleSelectUnderCursor() {
	if id, ok := m.nodeUnderCursor(); ok {
		if m.store.IsNodeSelected(id) {
			m.store.Deselect(id)
		} else {
			m.store.ClickNode(id, true)
		}
		return
	}
	if id, ok := m.edgeUnderCursor(); ok {
		if m.store.IsEdgeSelected(id) {
			m.store.Deselect(id)
		} else {
			m.store.ClickEdge(id, true)
		}
	}
}

func (m *Model) handleSelectKey(msg tea.KeyMsg) {
	key := msg.String()
	switch {
	case isDirection(key):
		m.handleCursorMove(key, m.getMoveSpeed(key))
		m.store.UpdateMarquee(m.cursorWorld())
	case key == "v" || msg.Type == tea.KeyEnter:
		m.store.UpdateMarquee(m.cursorWorld())
		ids := m.store.FinishMarquee(false)
		m.setSuccess(fmt.Sprintf("Selected %d nodes", len(ids)))
		m.mode = ModeNormal
	case msg.Type == tea.KeyEscape:
		m.store.CancelMarquee()
		m.mode = ModeNormal
	}
}

// deleteUnderCursor deletes the selection, or the node or edge under the
// cursor when nothing is selected.
func (m *Model) deleteUnderCursor() {
	if len(m.store.SelectedNodes()) == 0 && len(m.store.SelectedEdges()) == 0 {
		if id, ok := m.nodeUnderCursor(); ok {
			m.store.SelectNode(id, false)
		} else if id, ok := m.edgeUnderCursor(); ok {
			m.store.SelectEdge(id, false)
		} else {
			return
		}
	}
	if !m.store.DeleteSelected() {
		m.setError("Nothing was deleted")
	}
}

func (m *Model) copySelection() {
	ids := m.store.SelectedNodes()
	if len(ids) == 0 {
		if id, ok := m.nodeUnderCursor(); ok {
			ids = []string{id}
		}
	}
	if !m.store.Copy(ids...) {
		m.setError("Nothing to copy")
		return
	}
	m.setSuccess(fmt.Sprintf("Copied %d nodes", len(m.store.Clipboard().Nodes)))
}

func (m *Model) paste() {
	if m.store.Paste(m.cursorWorld()) {
		m.dirty = true
		return
	}
	m.setError("Clipboard is empty")
}

func (m *Model) pasteFromSystem() {
	if m.clip == nil {
		m.setError("System clipboard unavailable")
		return
	}
	snap, err := m.clip.Fetch()
	if err != nil {
		m.log.Warn("tui: clipboard read failed", "err", err)
		m.setError(err.Error())
		return
	}
	m.store.SetClipboard(snap)
	m.paste()
}

func (m *Model) addWaypoint() {
	id, ok := m.edgeUnderCursor()
	if !ok {
		m.setError("No connection under cursor")
		return
	}
	if m.store.AddWaypoint(id, m.cursorWorld()) {
		m.dirty = true
	}
}

func (m *Model) clearWaypoints() {
	if id, ok := m.edgeUnderCursor(); ok && m.store.ClearWaypoints(id) {
		m.dirty = true
	}
}

var edgeTypes = []geom.RenderType{geom.Curve, geom.Straight, geom.Orthogonal}

func (m *Model) cycleEdgeType() {
	id, ok := m.edgeUnderCursor()
	if !ok {
		m.setError("No connection under cursor")
		return
	}
	e, _ := m.store.Edge(id)
	next := edgeTypes[0]
	for i, t := range edgeTypes {
		if t == e.Type {
			next = edgeTypes[(i+1)%len(edgeTypes)]
		}
	}
	if m.store.UpdateEdge(id, diagram.EdgeUpdate{Type: &next}) {
		m.dirty = true
		m.setSuccess("Connection: " + string(next))
	}
}

func (m *Model) syncGroupUnderCursor() {
	id, ok := m.store.FindContainingGroup(m.cursorWorld())
	if !ok {
		m.setError("No group under cursor")
		return
	}
	if m.store.SyncGroupMembership(id) {
		m.dirty = true
	}
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch strings.ToLower(msg.String()) {
	case "y":
		m.mode = ModeNormal
		switch m.confirmAction {
		case ConfirmQuit:
			return tea.Quit
		case ConfirmNewChart:
			m.newChart()
		case ConfirmOverwriteFile:
			m.runFileOp(m.input)
		}
	case "n", "esc":
		m.mode = ModeNormal
	}
	return nil
}

func (m *Model) handleHelpKey(key string) {
	switch key {
	case "esc", "q", "?":
		m.help = false
		m.helpScroll = 0
	case "j", "down":
		maxScroll := max(len(helpLines)-m.canvasHeight(), 0)
		m.helpScroll = min(m.helpScroll+1, maxScroll)
	case "k", "up":
		m.helpScroll = max(m.helpScroll-1, 0)
	}
}

func (m *Model) newChart() {
	if err := m.store.Load(diagram.Snapshot{}); err != nil {
		m.setError(err.Error())
		return
	}
	m.store.SetViewport(diagram.Viewport{Zoom: 1})
	m.filename = ""
	m.dirty = false
	m.cursorX, m.cursorY = 0, 0
}
