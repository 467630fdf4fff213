package layout

import apperr "github.com/matzehuels/memlayout/pkg/errors"

// Default viewport.
const (
	DefaultWidth  = 1280.0
	DefaultHeight = 800.0
	DefaultSplit  = 0.4
)

// Geometry is the viewport the graph is laid out in. Split is the fraction
// of the width taken by the editor panel; the graph panel gets the rest.
type Geometry struct {
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
	Split  float64 `json:"split" toml:"split"`
}

// DefaultGeometry returns the default viewport.
func DefaultGeometry() Geometry {
	return Geometry{Width: DefaultWidth, Height: DefaultHeight, Split: DefaultSplit}
}

// SetDefaults fills a zero width or height with defaults. A zero split is
// meaningful (no editor panel) and is kept.
func (g *Geometry) SetDefaults() {
	if g.Width == 0 {
		g.Width = DefaultWidth
	}
	if g.Height == 0 {
		g.Height = DefaultHeight
	}
}

// Validate reports an INVALID_VIEWPORT error for unusable dimensions.
func (g Geometry) Validate() error {
	return apperr.ValidateViewport(g.Width, g.Height, g.Split)
}

// PanelWidth is the width left to the graph.
func (g Geometry) PanelWidth() float64 {
	return g.Width * (1 - g.Split)
}

// LayerX returns the left x-coordinate of the stack and heap columns. The
// stack column is centered at a quarter of the graph panel and the heap
// column at three quarters.
func (g Geometry) LayerX(nodeWidth float64) (stackX, heapX float64) {
	panel := g.PanelWidth()
	return panel/4 - nodeWidth/2, panel*3/4 - nodeWidth/2
}
