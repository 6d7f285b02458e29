package tui

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"flowedit/internal/diagram"
	"flowedit/internal/render"
)

func (op FileOperation) String() string {
	switch op {
	case FileOpSave:
		return "Save"
	case FileOpSavePNG:
		return "Export PNG"
	case FileOpSaveVisualTXT:
		return "Export text"
	case FileOpOpen:
		return "Open"
	}
	return "?"
}

func (op FileOperation) extension() string {
	switch op {
	case FileOpSavePNG:
		return ".png"
	case FileOpSaveVisualTXT:
		return ".txt"
	}
	return ".json"
}

func (m *Model) promptFile(op FileOperation) {
	m.mode = ModeFileInput
	m.fileOp = op
	m.errorMessage, m.successMessage = "", ""
	m.input = ""
	if op != FileOpOpen && m.filename != "" {
		// Auto-fill from the open chart, without its extension
		base := filepath.Base(m.filename)
		m.input = strings.TrimSuffix(base, filepath.Ext(base))
	}
}

func (m *Model) handleFileKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = ModeNormal
		m.input = ""
		m.errorMessage = ""
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	case tea.KeyEnter:
		name := strings.TrimSpace(m.input)
		if name == "" {
			m.setError("Please enter a filename")
			return
		}
		if filepath.Ext(name) == "" {
			name += m.fileOp.extension()
		}
		path := m.cfg.GetSavePath(name)
		if m.fileOp != FileOpOpen {
			if _, err := os.Stat(path); err == nil {
				m.input = path
				m.mode = ModeConfirm
				m.confirmAction = ConfirmOverwriteFile
				return
			}
		}
		m.runFileOp(path)
	default:
		if msg.String() == " " {
			m.input += " "
		}
	}
}

// runFileOp performs the pending file operation on path. Errors keep the
// prompt open so the name can be fixed.
func (m *Model) runFileOp(path string) {
	var err error
	switch m.fileOp {
	case FileOpSave:
		err = m.save(path)
	case FileOpSavePNG:
		err = render.ExportPNG(m.store, path, render.DefaultPNGOptions())
	case FileOpSaveVisualTXT:
		err = m.exportVisualTXT(path)
	case FileOpOpen:
		err = m.Open(path)
	}
	if err != nil {
		m.log.Error("tui: file operation failed", "op", m.fileOp.String(), "path", path, "err", err)
		m.mode = ModeFileInput
		m.setError(err.Error())
		return
	}
	m.log.Info("tui: file operation", "op", m.fileOp.String(), "path", path)
	m.mode = ModeNormal
	m.input = ""
	abs, _ := filepath.Abs(path)
	if m.fileOp == FileOpOpen {
		m.setSuccess("Opened " + abs)
	} else {
		m.setSuccess("Saved to " + abs)
	}
}

func (m *Model) save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := diagram.WriteSnapshot(f, m.store.Serialize()); err != nil {
		return err
	}
	m.filename = path
	m.dirty = false
	return nil
}

// Open replaces the chart with the snapshot stored at path. A missing file
// starts an empty chart under that name.
func (m *Model) Open(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		m.newChart()
		m.filename = path
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	snap, err := diagram.ReadSnapshot(f)
	if err != nil {
		return err
	}
	if err := m.store.Load(snap); err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	m.filename = path
	m.dirty = false
	m.syncHandles()
	return nil
}

// exportVisualTXT writes the canvas as it appears on screen, without the
// cursor or any selection.
func (m *Model) exportVisualTXT(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	width := m.width
	if width < 1 {
		width = 80
	}
	height := m.height - 1
	if height < 1 {
		height = 24
	}
	return render.WriteText(f, m.store, m.store.Viewport(), width, height)
}
