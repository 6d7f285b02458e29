package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"flowedit/internal/geom"
	"flowedit/internal/render"
)

func (m *Model) handleNavigation(key string, speed int) (tea.Model, tea.Cmd) {
	if m.zPanMode {
		return m.handlePan(key, speed), nil
	}
	return m.handleCursorMove(key, speed), nil
}

// handlePan scrolls the canvas one cell per step, in screen pixels.
func (m *Model) handlePan(key string, speed int) tea.Model {
	dx, dy := direction(key)
	m.store.Pan(-float64(dx*speed)*render.CellWidth, -float64(dy*speed)*render.CellHeight)
	return m
}

func (m *Model) handleCursorMove(key string, speed int) tea.Model {
	dx, dy := direction(key)
	m.cursorX += dx * speed
	m.cursorY += dy * speed
	m.ensureCursorInBounds()
	return m
}

// step is a direction key as a canvas-space delta of whole cells.
func (m *Model) step(key string, speed int) geom.Point {
	dx, dy := direction(key)
	w, h := m.cellSize()
	return geom.Pt(float64(dx*speed)*w, float64(dy*speed)*h)
}

func direction(key string) (dx, dy int) {
	switch key {
	case "h", "left", "H", "shift+left":
		return -1, 0
	case "l", "right", "L", "shift+right":
		return 1, 0
	case "k", "up", "K", "shift+up":
		return 0, -1
	case "j", "down", "J", "shift+down":
		return 0, 1
	}
	return 0, 0
}

func isDirection(key string) bool {
	dx, dy := direction(key)
	return dx != 0 || dy != 0
}

func (m *Model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}
