package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// handleMouse drags nodes with the left button and zooms with the wheel.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	m.cursorX, m.cursorY = msg.X, msg.Y
	m.ensureCursorInBounds()
	world := m.cursorWorld()

	switch msg.Type {
	case tea.MouseLeft:
		if m.mode != ModeNormal || m.mouseDrag != "" {
			if m.mouseDrag != "" {
				m.dragTo()
			}
			return
		}
		id, ok := m.store.NodeAt(world)
		if !ok {
			m.store.ClearSelection()
			return
		}
		m.store.ClickNode(id, msg.Ctrl)
		if !m.store.StartNodeDrag(id) {
			return
		}
		abs, _ := m.store.AbsolutePosition(id)
		m.mouseDrag = id
		m.mouseOffset = world.Sub(abs)

	case tea.MouseMotion:
		if m.mouseDrag != "" {
			m.dragTo()
		}

	case tea.MouseRelease:
		if m.mouseDrag != "" {
			m.dragTo()
			m.store.EndNodeDrag(m.mouseDrag)
			m.mouseDrag = ""
			m.dirty = true
		}

	case tea.MouseWheelUp:
		m.store.ZoomAt(1.1, cellScreen(msg.X, msg.Y))
	case tea.MouseWheelDown:
		m.store.ZoomAt(1/1.1, cellScreen(msg.X, msg.Y))
	}
}

// dragTo moves the dragged node so the grab point follows the cursor.
// DragNode takes parent-relative positions.
func (m *Model) dragTo() {
	n, ok := m.store.Node(m.mouseDrag)
	if !ok {
		m.mouseDrag = ""
		return
	}
	target := m.cursorWorld().Sub(m.mouseOffset)
	if n.ParentID != "" {
		if origin, ok := m.store.AbsolutePosition(n.ParentID); ok {
			target = target.Sub(origin)
		}
	}
	m.store.DragNode(m.mouseDrag, target)
}
