package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"flowedit/internal/render"
)

var (
	modeStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("0")).Background(lipgloss.Color("6"))
	lockedStyle  = modeStyle.Copy().Background(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

func (m *Model) View() string {
	if m.help {
		return m.helpView()
	}

	width := max(m.width, 1)
	height := m.canvasHeight()

	ov := render.Overlay{Selected: make(map[string]bool)}
	for _, id := range m.store.SelectedNodes() {
		ov.Selected[id] = true
	}
	for _, id := range m.store.SelectedEdges() {
		ov.Selected[id] = true
	}
	if m.selectedNode != "" {
		ov.Selected[m.selectedNode] = true
	}
	if path, ok := m.store.DraftPath(); ok {
		ov.Draft = &path
	}
	if r, ok := m.store.Marquee(); ok {
		ov.Marquee = &r
	} else if r, ok := m.resizePreview(); ok {
		ov.Marquee = &r
	}
	if m.mode != ModeFileInput {
		p := m.cursorWorld()
		ov.Cursor = &p
	}

	var b strings.Builder
	for _, line := range render.Text(m.store, m.store.Viewport(), width, height, ov) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(m.statusLine())
	return b.String()
}

func (m *Model) statusLine() string {
	name := m.mode.String()
	if m.mode == ModeNormal && m.zPanMode {
		name = "PAN"
	}
	badge := modeStyle
	if m.store.Locked() {
		badge = lockedStyle
		name += " LOCKED"
	}

	var parts []string
	switch m.mode {
	case ModeEditing:
		parts = append(parts, "Text: "+m.editText+"█", "Enter=save, Esc=cancel")
	case ModeResize:
		parts = append(parts, "hjkl/arrows=resize, Enter=finish, Esc=cancel")
	case ModeMove:
		parts = append(parts, "hjkl/arrows=move, Enter=finish, Esc=cancel")
	case ModeConnect:
		parts = append(parts, "Move to a target node, a/Enter=connect, Esc=cancel")
	case ModeMultiSelect:
		parts = append(parts, "Drag out a box, v/Enter=select, Esc=cancel")
	case ModeFileInput:
		parts = append(parts, fmt.Sprintf("%s filename: %s█", m.fileOp, m.input), "Enter=confirm, Esc=cancel")
	case ModeConfirm:
		parts = append(parts, m.confirmMessage())
	default:
		file := m.filename
		if file == "" {
			file = "[new]"
		}
		if m.dirty {
			file += "*"
		}
		vp := m.store.Viewport()
		parts = append(parts,
			file,
			fmt.Sprintf("%d%%", int(vp.Zoom*100+0.5)),
			fmt.Sprintf("%d nodes, %d edges", len(m.store.Nodes()), len(m.store.Edges())),
		)
		if n := len(m.store.SelectedNodes()) + len(m.store.SelectedEdges()); n > 0 {
			parts = append(parts, fmt.Sprintf("%d selected", n))
		}
	}

	switch {
	case m.errorMessage != "":
		parts = append(parts, errorStyle.Render("ERROR: "+m.errorMessage))
	case m.successMessage != "":
		parts = append(parts, successStyle.Render(m.successMessage))
	case m.mode == ModeNormal:
		parts = append(parts, dimStyle.Render("? for help | q to quit"))
	}
	return badge.Render(name) + " " + strings.Join(parts, " | ")
}

func (m *Model) confirmMessage() string {
	switch m.confirmAction {
	case ConfirmQuit:
		return "Quit with unsaved changes? (y/n)"
	case ConfirmNewChart:
		return "Create new chart? Unsaved changes will be lost. (y/n)"
	case ConfirmOverwriteFile:
		return fmt.Sprintf("File %s already exists. Overwrite? (y/n)", m.input)
	}
	return "(y/n)"
}

var helpLines = []string{
	"flowedit help",
	"=============",
	"",
	"Navigation:",
	"-----------",
	"  h/←/j/↓/k/↑/l/→  Move cursor around the screen",
	"  Shift+h/j/k/l    Move cursor 2x faster",
	"  z                Toggle pan mode (direction keys scroll the canvas)",
	"  +/-              Zoom in/out around the cursor",
	"  0                Fit the whole diagram on screen",
	"  mouse wheel      Zoom around the pointer",
	"",
	"Nodes:",
	"------",
	"  b                Create new box at cursor position",
	"  g                Create new group at cursor position",
	"  o                Create a connected box to the right of the node under cursor",
	"  e                Edit label of node under cursor",
	"  r                Resize node under cursor",
	"  m                Move node under cursor (or drag with the mouse)",
	"  G                Pull nodes inside the group under cursor into it",
	"",
	"Connections:",
	"------------",
	"  a                Start a connection on a node, 'a' again on the target",
	"  w                Add a waypoint to the connection under cursor",
	"  W                Remove all waypoints of the connection under cursor",
	"  t                Cycle curve/straight/orthogonal on the connection under cursor",
	"",
	"Selection:",
	"----------",
	"  space            Toggle selection of the node or connection under cursor",
	"  v                Start a selection box, 'v' again to select what it covers",
	"  d/x              Delete the selection, or what is under the cursor",
	"  c                Copy the selection, or the node under cursor",
	"  p                Paste at cursor position",
	"  P                Paste from the system clipboard",
	"",
	"Files:",
	"------",
	"  s                Save diagram as JSON",
	"  S                Export as PNG image",
	"  T                Export as text, exactly as on screen",
	"  O                Open a saved diagram",
	"  n                Start a new diagram",
	"",
	"General:",
	"--------",
	"  u                Undo last action",
	"  U                Redo last undone action",
	"  !                Toggle lock (no edits while locked)",
	"  Esc              Clear selection/cancel current operation",
	"  ?                Toggle this help screen",
	"  q/Ctrl+C         Quit",
}

func (m *Model) helpView() string {
	visible := m.canvasHeight()
	start := min(m.helpScroll, max(len(helpLines)-visible, 0))
	end := min(start+visible, len(helpLines))

	status := fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, Esc to close", start+1, end, len(helpLines))
	return strings.Join(helpLines[start:end], "\n") + "\n" + status
}
