package diagram

import (
	"log/slog"

	"github.com/google/uuid"

	"flowedit/internal/geom"
)

// Options configures a Store. Start from DefaultOptions; zero numeric
// fields fall back to the defaults in New.
type Options struct {
	MinZoom float64
	MaxZoom float64

	SnapToGrid bool
	GridSize   float64

	// Deletable permits removing nodes and edges through DeleteSelected.
	Deletable       bool
	DefaultEdgeType geom.RenderType
	// Locked suppresses every structural mutation.
	Locked       bool
	HistoryDepth int
	Curvature    float64

	Logger *slog.Logger
	// NewID generates node and edge ids. Defaults to random UUIDs.
	NewID func() string
	// Clipboard, when set, receives every copied subgraph.
	Clipboard ClipboardSink
}

const (
	defaultMinZoom      = 0.5
	defaultMaxZoom      = 2.0
	defaultGridSize     = 15.0
	defaultHistoryDepth = 100
)

func DefaultOptions() Options {
	return Options{
		MinZoom:         defaultMinZoom,
		MaxZoom:         defaultMaxZoom,
		GridSize:        defaultGridSize,
		Deletable:       true,
		DefaultEdgeType: geom.Curve,
		HistoryDepth:    defaultHistoryDepth,
		Curvature:       geom.DefaultCurvature,
	}
}

func (o Options) withDefaults() Options {
	if o.MinZoom <= 0 {
		o.MinZoom = defaultMinZoom
	}
	if o.MaxZoom < o.MinZoom {
		o.MaxZoom = max(defaultMaxZoom, o.MinZoom)
	}
	if o.GridSize <= 0 {
		o.GridSize = defaultGridSize
	}
	if !o.DefaultEdgeType.Valid() {
		o.DefaultEdgeType = geom.Curve
	}
	if o.HistoryDepth <= 0 {
		o.HistoryDepth = defaultHistoryDepth
	}
	if o.Curvature <= 0 {
		o.Curvature = geom.DefaultCurvature
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}
