// Package sysclip mirrors copied subgraphs to the operating system
// clipboard and reads them back, so diagrams can move between editor
// instances.
package sysclip

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"

	"flowedit/internal/diagram"
	"flowedit/internal/geom"
	"flowedit/internal/render"
)

// ErrEmpty is returned when the clipboard holds nothing usable.
var ErrEmpty = errors.New("sysclip: clipboard is empty")

const format = "flowedit/subgraph"

type envelope struct {
	Format string           `json:"format"`
	Graph  diagram.Snapshot `json:"graph"`
}

// Clipboard reads and writes the system clipboard.
type Clipboard struct {
	read  func() (string, error)
	write func(string) error
}

func New() *Clipboard {
	return &Clipboard{read: readClipboardText, write: clipboard.WriteAll}
}

// Available reports whether a clipboard utility was found.
func Available() bool { return !clipboard.Unsupported }

// Publish stores snap on the system clipboard.
func (c *Clipboard) Publish(snap diagram.Snapshot) error {
	text, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := c.write(text); err != nil {
		return fmt.Errorf("sysclip: write: %w", err)
	}
	return nil
}

// Fetch reads the system clipboard. A copied subgraph is returned as is;
// any other text becomes a single node labelled with it.
func (c *Clipboard) Fetch() (diagram.Snapshot, error) {
	text, err := c.read()
	if err != nil {
		return diagram.Snapshot{}, fmt.Errorf("sysclip: read: %w", err)
	}
	return Decode(text)
}

// Encode wraps snap in the clipboard envelope.
func Encode(snap diagram.Snapshot) (string, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(envelope{Format: format, Graph: snap}); err != nil {
		return "", fmt.Errorf("sysclip: encode: %w", err)
	}
	return buf.String(), nil
}

// Decode turns clipboard text back into a snapshot.
func Decode(text string) (diagram.Snapshot, error) {
	text = cleanClipboardText(text)
	if strings.TrimSpace(text) == "" {
		return diagram.Snapshot{}, ErrEmpty
	}
	var env envelope
	if err := json.Unmarshal([]byte(text), &env); err == nil && env.Format == format {
		if err := diagram.Validate(env.Graph); err != nil {
			return diagram.Snapshot{}, fmt.Errorf("sysclip: %w", err)
		}
		return env.Graph, nil
	}
	return textNode(text), nil
}

// textNode sizes a box to fit text in the editor's character grid.
func textNode(text string) diagram.Snapshot {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	longest := 0
	for _, l := range lines {
		longest = max(longest, len([]rune(l)))
	}
	w := float64(max(longest+2, 10)) * render.CellWidth
	h := float64(len(lines)+2) * render.CellHeight
	return diagram.Snapshot{Nodes: []diagram.Node{{
		ID:       "text",
		Type:     "default",
		Position: geom.Pt(0, 0),
		Data:     map[string]any{"label": strings.Join(lines, "\n")},
		Width:    &w,
		Height:   &h,
	}}}
}

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

func isHTML(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "<") &&
		(strings.Contains(text, "<html") || strings.Contains(text, "<body") || strings.Contains(text, "<div"))
}

// stripTags keeps the text between tags and resolves entities.
func stripTags(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return html.UnescapeString(b.String())
}

// cleanClipboardText drops markup and control characters and normalizes
// line endings.
func cleanClipboardText(text string) string {
	if isHTML(text) {
		text = stripTags(text)
	}
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\r' || r == '\t' || r >= 32 {
			b.WriteRune(r)
		}
	}
	s := strings.ReplaceAll(b.String(), "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
