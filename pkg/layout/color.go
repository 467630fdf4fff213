package layout

import (
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/memlayout/pkg/memgraph"
)

// WarningColor is the fixed color of dangling edges.
const WarningColor = memgraph.WarningColor

// Hues within this distance of red are skipped so fresh colors never read
// as the warning color.
const warningHueMargin = 25.0

// EdgeColorPolicy picks edge colors. Dangling edges always get
// [WarningColor]; other edges keep an existing color for the same pair when
// one is known and otherwise get a fresh hue from the theme's palette:
// light colors on the dark theme, dark colors on the light theme.
//
// A policy is not safe for concurrent use.
type EdgeColorPolicy struct {
	theme Theme
	rng   *rand.Rand
}

// NewEdgeColorPolicy creates a policy. A zero seed draws a random one.
func NewEdgeColorPolicy(theme Theme, seed uint64) *EdgeColorPolicy {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &EdgeColorPolicy{
		theme: theme,
		rng:   rand.New(rand.NewPCG(seed, seed^0xdeadbeef)),
	}
}

// Color returns the color for an edge of the given kind. existing is the
// color already assigned to the same (source, target) pair, or "".
func (p *EdgeColorPolicy) Color(kind memgraph.EdgeKind, existing string) string {
	if kind == memgraph.EdgeDangling {
		return WarningColor
	}
	if existing != "" {
		return existing
	}
	return p.Fresh()
}

// Fresh returns a new random color from the theme's palette.
func (p *EdgeColorPolicy) Fresh() string {
	hue := warningHueMargin + p.rng.Float64()*(360-2*warningHueMargin)
	sat := 0.6 + p.rng.Float64()*0.3
	light := 0.62 + p.rng.Float64()*0.13
	if p.theme == ThemeLight {
		light = 0.28 + p.rng.Float64()*0.12
	}
	return colorful.Hsl(hue, sat, light).Clamped().Hex()
}
