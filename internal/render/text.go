package render

import (
	"fmt"
	"io"
	"math"

	"flowedit/internal/diagram"
	"flowedit/internal/geom"
)

// Size of one terminal cell in screen pixels.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

// Overlay is the editor state drawn on top of the diagram.
type Overlay struct {
	// Selected holds node and edge ids drawn highlighted.
	Selected map[string]bool
	Draft    *geom.Path
	Marquee  *geom.Rect
	Cursor   *geom.Point
}

type grid struct {
	cells  [][]rune
	vp     diagram.Viewport
	width  int
	height int
}

func newGrid(width, height int, vp diagram.Viewport) *grid {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if vp.Zoom <= 0 {
		vp.Zoom = 1
	}
	g := &grid{cells: make([][]rune, height), vp: vp, width: width, height: height}
	for i := range g.cells {
		g.cells[i] = make([]rune, width)
		for j := range g.cells[i] {
			g.cells[i][j] = ' '
		}
	}
	return g
}

// cell maps a world point to the terminal cell that contains it.
func (g *grid) cell(p geom.Point) (int, int) {
	sx := p.X*g.vp.Zoom + g.vp.X
	sy := p.Y*g.vp.Zoom + g.vp.Y
	return int(math.Floor(sx / CellWidth)), int(math.Floor(sy / CellHeight))
}

// cellRect maps a world rectangle to inclusive cell bounds, at least two
// cells in each direction so a border always shows.
func (g *grid) cellRect(r geom.Rect) (x0, y0, x1, y1 int) {
	z := g.vp.Zoom
	x0 = int(math.Round((r.X*z + g.vp.X) / CellWidth))
	y0 = int(math.Round((r.Y*z + g.vp.Y) / CellHeight))
	x1 = int(math.Round(((r.X+r.W)*z+g.vp.X)/CellWidth)) - 1
	y1 = int(math.Round(((r.Y+r.H)*z+g.vp.Y)/CellHeight)) - 1
	x1 = max(x1, x0+1)
	y1 = max(y1, y0+1)
	return x0, y0, x1, y1
}

func (g *grid) set(x, y int, r rune) {
	if y >= 0 && y < g.height && x >= 0 && x < g.width {
		g.cells[y][x] = r
	}
}

func (g *grid) text(x, y int, s string, limit int) {
	i := 0
	for _, r := range s {
		if limit >= 0 && i >= limit {
			return
		}
		g.set(x+i, y, r)
		i++
	}
}

type frame struct {
	corner, horizontal, vertical rune
}

var (
	boxFrame      = frame{'+', '-', '|'}
	selectedFrame = frame{'#', '#', '#'}
	groupFrame    = frame{'+', '.', ':'}
	marqueeFrame  = frame{'+', '~', '~'}
)

func (g *grid) box(r geom.Rect, f frame, label string) {
	x0, y0, x1, y1 := g.cellRect(r)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			edgeRow := y == y0 || y == y1
			edgeCol := x == x0 || x == x1
			switch {
			case edgeRow && edgeCol:
				g.set(x, y, f.corner)
			case edgeRow:
				g.set(x, y, f.horizontal)
			case edgeCol:
				g.set(x, y, f.vertical)
			}
		}
	}
	if label != "" && y1-y0 >= 2 {
		g.text(x0+1, y0+1, label, x1-x0-1)
	}
}

// clear blanks the interior of a box so edges do not show through it.
func (g *grid) clear(r geom.Rect) {
	x0, y0, x1, y1 := g.cellRect(r)
	for y := y0 + 1; y < y1; y++ {
		for x := x0 + 1; x < x1; x++ {
			g.set(x, y, ' ')
		}
	}
}

// trace walks the cells under a polyline without repeating any.
func (g *grid) trace(pts []geom.Point) [][2]int {
	var out [][2]int
	push := func(x, y int) {
		if n := len(out); n > 0 && out[n-1] == [2]int{x, y} {
			return
		}
		out = append(out, [2]int{x, y})
	}
	for i := 1; i < len(pts); i++ {
		ax, ay := g.cell(pts[i-1])
		bx, by := g.cell(pts[i])
		steps := max(abs(bx-ax), abs(by-ay))
		if steps == 0 {
			push(ax, ay)
			continue
		}
		for s := 0; s <= steps; s++ {
			t := float64(s) / float64(steps)
			push(ax+int(math.Round(float64(bx-ax)*t)), ay+int(math.Round(float64(by-ay)*t)))
		}
	}
	return out
}

func stroke(dx, dy int) rune {
	switch {
	case dy == 0:
		return '─'
	case dx == 0:
		return '│'
	case (dx > 0) == (dy > 0):
		return '\\'
	default:
		return '/'
	}
}

func arrow(dx, dy int) rune {
	switch {
	case abs(dx) >= abs(dy) && dx > 0:
		return '▶'
	case abs(dx) >= abs(dy):
		return '◀'
	case dy > 0:
		return '▼'
	default:
		return '▲'
	}
}

// line draws a polyline, ending in an arrow head placed just outside end
// when end is non-nil. It returns the cell halfway along the line.
func (g *grid) line(pts []geom.Point, end *geom.Rect, selected bool) (midX, midY int, ok bool) {
	cells := g.trace(pts)
	if end != nil {
		x0, y0, x1, y1 := g.cellRect(*end)
		for len(cells) > 1 {
			c := cells[len(cells)-1]
			if c[0] < x0 || c[0] > x1 || c[1] < y0 || c[1] > y1 {
				break
			}
			cells = cells[:len(cells)-1]
		}
	}
	for i, c := range cells {
		var dx, dy int
		switch {
		case i+1 < len(cells):
			dx, dy = cells[i+1][0]-c[0], cells[i+1][1]-c[1]
		case i > 0:
			dx, dy = c[0]-cells[i-1][0], c[1]-cells[i-1][1]
		}
		r := stroke(dx, dy)
		if selected {
			r = '═'
			if dx == 0 && dy != 0 {
				r = '║'
			}
		}
		if end != nil && i == len(cells)-1 && i > 0 {
			r = arrow(dx, dy)
		}
		g.set(c[0], c[1], r)
	}
	if len(cells) == 0 {
		return 0, 0, false
	}
	mid := cells[len(cells)/2]
	return mid[0], mid[1], true
}

func (g *grid) lines() []string {
	out := make([]string, g.height)
	for i, row := range g.cells {
		out[i] = string(row)
	}
	return out
}

// Text renders the diagram into width×height terminal cells as seen
// through vp. Groups go first, edges next and plain nodes last so boxes
// cover the lines that run into them.
func Text(src Source, vp diagram.Viewport, width, height int, ov Overlay) []string {
	g := newGrid(width, height, vp)
	groups, boxes := layers(src)

	for _, p := range groups {
		f := groupFrame
		if ov.Selected[p.node.ID] {
			f = selectedFrame
		}
		g.box(p.rect, f, p.node.Label())
	}

	rects := make(map[string]geom.Rect, len(groups)+len(boxes))
	for _, p := range groups {
		rects[p.node.ID] = p.rect
	}
	for _, p := range boxes {
		rects[p.node.ID] = p.rect
	}
	for _, e := range src.Edges() {
		path, ok := src.EdgePath(e.ID)
		if !ok {
			continue
		}
		var end *geom.Rect
		if r, ok := rects[e.Target]; ok {
			end = &r
		}
		x, y, ok := g.line(path.Points(), end, ov.Selected[e.ID])
		if e.Label != "" && ok {
			g.text(x-len([]rune(e.Label))/2, y, e.Label, -1)
		}
	}
	if ov.Draft != nil {
		g.line(ov.Draft.Points(), nil, false)
	}

	for _, p := range boxes {
		f := boxFrame
		if ov.Selected[p.node.ID] {
			f = selectedFrame
		}
		g.clear(p.rect)
		g.box(p.rect, f, p.node.Label())
	}

	if ov.Marquee != nil {
		g.box(*ov.Marquee, marqueeFrame, "")
	}
	if ov.Cursor != nil {
		x, y := g.cell(*ov.Cursor)
		g.set(x, y, '█')
	}
	return g.lines()
}

// WriteText writes the rendered grid line by line, without any overlay.
func WriteText(w io.Writer, src Source, vp diagram.Viewport, width, height int) error {
	for _, line := range Text(src, vp, width, height, Overlay{}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
