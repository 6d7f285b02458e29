package diagram

import (
	"math"

	"flowedit/internal/geom"
)

func (s *Store) Viewport() Viewport { return s.viewport }

// SetViewport replaces the viewport, clamping zoom to the configured range.
func (s *Store) SetViewport(v Viewport) {
	v.Zoom = s.clampZoom(v.Zoom)
	if v == s.viewport {
		return
	}
	s.viewport = v
	s.emit(Event{Kind: ViewportChanged, Viewport: v})
}

func (s *Store) clampZoom(z float64) float64 {
	if z <= 0 || math.IsNaN(z) {
		z = 1
	}
	return math.Max(s.opts.MinZoom, math.Min(s.opts.MaxZoom, z))
}

// Pan shifts the viewport by a screen-pixel delta.
func (s *Store) Pan(dx, dy float64) {
	v := s.viewport
	v.X += dx
	v.Y += dy
	s.SetViewport(v)
}

// SetZoom changes the zoom around the screen origin.
func (s *Store) SetZoom(zoom float64) {
	v := s.viewport
	v.Zoom = zoom
	s.SetViewport(v)
}

// ZoomAt multiplies the zoom by factor, keeping the canvas point under the
// screen position fixed.
func (s *Store) ZoomAt(factor float64, screen geom.Point) {
	world := s.ScreenToWorld(screen)
	zoom := s.clampZoom(s.viewport.Zoom * factor)
	s.SetViewport(Viewport{
		X:    screen.X - world.X*zoom,
		Y:    screen.Y - world.Y*zoom,
		Zoom: zoom,
	})
}

func (s *Store) ScreenToWorld(p geom.Point) geom.Point {
	v := s.viewport
	return geom.Point{X: (p.X - v.X) / v.Zoom, Y: (p.Y - v.Y) / v.Zoom}
}

func (s *Store) WorldToScreen(p geom.Point) geom.Point {
	v := s.viewport
	return geom.Point{X: p.X*v.Zoom + v.X, Y: p.Y*v.Zoom + v.Y}
}

// GraphBounds returns the rectangle covering every node.
func (s *Store) GraphBounds() (geom.Rect, bool) {
	if len(s.nodes) == 0 {
		return geom.Rect{}, false
	}
	r := s.bounds(s.nodes[0])
	for _, n := range s.nodes[1:] {
		r = r.Union(s.bounds(n))
	}
	return r, true
}

// FitView zooms and pans so every node fits a width×height screen with the
// given padding in pixels. Returns false for an empty graph.
func (s *Store) FitView(width, height, padding float64) bool {
	r, ok := s.GraphBounds()
	if !ok || width <= 0 || height <= 0 {
		return false
	}
	availW := math.Max(width-2*padding, 1)
	availH := math.Max(height-2*padding, 1)
	zoom := s.opts.MaxZoom
	if r.W > 0 {
		zoom = math.Min(zoom, availW/r.W)
	}
	if r.H > 0 {
		zoom = math.Min(zoom, availH/r.H)
	}
	zoom = s.clampZoom(zoom)
	c := r.Center()
	s.SetViewport(Viewport{
		X:    width/2 - c.X*zoom,
		Y:    height/2 - c.Y*zoom,
		Zoom: zoom,
	})
	return true
}
