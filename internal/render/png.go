package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"flowedit/internal/geom"
)

// PNGOptions controls image export.
type PNGOptions struct {
	// Scale is pixels per canvas unit.
	Scale    float64
	Padding  float64
	FontSize float64
}

func DefaultPNGOptions() PNGOptions {
	return PNGOptions{Scale: 1, Padding: 20, FontSize: 12}
}

var (
	groupFill  = color.RGBA{R: 0xf2, G: 0xf4, B: 0xf8, A: 0xff}
	groupLine  = color.RGBA{R: 0x8a, G: 0x93, B: 0xa6, A: 0xff}
	labelColor = color.Black
)

// Image draws the whole diagram.
func Image(src Source, opts PNGOptions) (image.Image, error) {
	dc, err := draw(src, opts)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// ExportPNG writes the diagram to filename.
func ExportPNG(src Source, filename string, opts PNGOptions) error {
	dc, err := draw(src, opts)
	if err != nil {
		return err
	}
	return dc.SavePNG(filename)
}

// EncodePNG writes the diagram to w.
func EncodePNG(w io.Writer, src Source, opts PNGOptions) error {
	dc, err := draw(src, opts)
	if err != nil {
		return err
	}
	return dc.EncodePNG(w)
}

func draw(src Source, opts PNGOptions) (*gg.Context, error) {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.FontSize <= 0 {
		opts.FontSize = 12
	}
	bounds, ok := extent(src)
	if !ok {
		return nil, ErrNothingToExport
	}
	bounds = bounds.Inset(-opts.Padding)

	width := int(math.Ceil(bounds.W * opts.Scale))
	height := int(math.Ceil(bounds.H * opts.Scale))
	dc := gg.NewContext(max(width, 1), max(height, 1))
	dc.SetColor(color.White)
	dc.Clear()

	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, fmt.Errorf("render: parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(ttf, &truetype.Options{
		Size:    opts.FontSize * opts.Scale,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	// Canvas units to pixels.
	dc.Scale(opts.Scale, opts.Scale)
	dc.Translate(-bounds.X, -bounds.Y)

	groups, boxes := layers(src)
	for _, p := range groups {
		drawGroup(dc, p)
	}
	for _, e := range src.Edges() {
		path, ok := src.EdgePath(e.ID)
		if !ok {
			continue
		}
		drawEdge(dc, path, e.Label, e.Style["stroke"])
	}
	for _, p := range boxes {
		drawBox(dc, p)
	}
	return dc, nil
}

func drawGroup(dc *gg.Context, p placed) {
	r := p.rect
	dc.SetColor(groupFill)
	dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	dc.Fill()

	dc.SetColor(groupLine)
	dc.SetLineWidth(1)
	dc.SetDash(4, 3)
	dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	dc.Stroke()
	dc.SetDash()

	if label := p.node.Label(); label != "" {
		dc.SetColor(groupLine)
		dc.DrawStringAnchored(label, r.X+6, r.Y+6, 0, 1)
	}
}

func drawBox(dc *gg.Context, p placed) {
	r := p.rect
	dc.SetColor(color.White)
	dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, 4)
	dc.Fill()

	dc.SetColor(color.Black)
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, 4)
	dc.Stroke()

	if label := p.node.Label(); label != "" {
		c := r.Center()
		dc.SetColor(labelColor)
		dc.DrawStringAnchored(label, c.X, c.Y, 0.5, 0.5)
	}
}

func drawEdge(dc *gg.Context, path geom.Path, label, stroke string) {
	pts := path.Points()
	if len(pts) < 2 {
		return
	}
	line := color.Color(color.Black)
	if c, ok := parseHex(stroke); ok {
		line = c
	}

	dc.SetColor(line)
	dc.SetLineWidth(1.5)
	dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.Stroke()
	drawArrow(dc, pts[len(pts)-2], pts[len(pts)-1])

	if label != "" {
		m := path.Midpoint()
		w, h := dc.MeasureString(label)
		dc.SetColor(color.White)
		dc.DrawRectangle(m.X-w/2-2, m.Y-h/2-2, w+4, h+4)
		dc.Fill()
		dc.SetColor(labelColor)
		dc.DrawStringAnchored(label, m.X, m.Y, 0.5, 0.5)
	}
}

func drawArrow(dc *gg.Context, from, to geom.Point) {
	dx, dy := to.X-from.X, to.Y-from.Y
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length

	const (
		size  = 8.0
		angle = 0.5
	)
	dc.MoveTo(to.X, to.Y)
	dc.LineTo(to.X-size*dx+size*dy*angle, to.Y-size*dy-size*dx*angle)
	dc.LineTo(to.X-size*dx-size*dy*angle, to.Y-size*dy+size*dx*angle)
	dc.ClosePath()
	dc.Fill()
}

// parseHex reads "#rgb" and "#rrggbb" colors.
func parseHex(s string) (color.Color, bool) {
	if len(s) == 0 || s[0] != '#' {
		return nil, false
	}
	var r, g, b uint8
	switch len(s) {
	case 7:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err != nil {
			return nil, false
		}
	case 4:
		if _, err := fmt.Sscanf(s, "#%1x%1x%1x", &r, &g, &b); err != nil {
			return nil, false
		}
		r, g, b = r*17, g*17, b*17
	default:
		return nil, false
	}
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, true
}
