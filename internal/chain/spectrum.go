package chain

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Spectrum is one anchoring of the chain: every node's position on the
// cycle as a percentage (0-100), counted from the start node.
// A Spectrum never changes; anchoring again returns a new one.
type Spectrum struct {
	chain   *Chain
	start   Node
	percent []float64 // indexed by Node.Index
}

// Anchor assigns evenly spaced percentages i*(100/Len) to the nodes,
// walking the full cycle from start.
func (c *Chain) Anchor(start Node) *Spectrum {
	step := 100 / float64(c.Len())
	s := &Spectrum{
		chain:   c,
		start:   c.Node(start.Index),
		percent: make([]float64, c.Len()),
	}
	i := 0
	for n := range c.Walk(start) {
		s.percent[n.Index] = float64(i) * step
		i++
	}
	return s
}

// Start returns the node placed at 0%.
func (s *Spectrum) Start() Node {
	return s.start
}

// Percent returns the assigned percentage of n.
func (s *Spectrum) Percent(n Node) float64 {
	return s.percent[s.chain.wrap(n.Index)]
}

// Percentages returns the assigned percentages in anchor order
// (index 0 is the chain's first node, not the spectrum start).
func (s *Spectrum) Percentages() []float64 {
	out := make([]float64, len(s.percent))
	copy(out, s.percent)
	return out
}

// Exact estimates where col sits on the spectrum, given its nearest node.
// Every channel contributes col*nextPercent divided by the transition
// (rising channel) or by col-next (falling channel); unchanged channels
// contribute nothing. Only one or two channels change per transition, so
// the sum approximates the interpolated position. A zero sum falls back
// to the nearest node's own percentage.
func (s *Spectrum) Exact(col colorful.Color, nearest Node) float64 {
	next := s.chain.Next(nearest)
	nextPercent := s.Percent(next)

	p := channelPercent(nearest.Transition.R, col.R, next.Color.R, nextPercent) +
		channelPercent(nearest.Transition.G, col.G, next.Color.G, nextPercent) +
		channelPercent(nearest.Transition.B, col.B, next.Color.B, nextPercent)
	if p == 0 {
		return s.Percent(nearest)
	}
	return p
}

func channelPercent(transition, value, nextValue, nextPercent float64) float64 {
	switch {
	case value == nextValue:
		return 0
	case transition >= 0:
		return (value * nextPercent) / transition
	default:
		return (value * nextPercent) / (value - nextValue)
	}
}

// At maps a percentage back to a color: p is reduced modulo 100, the
// bracketing pair of nodes is located from the start node and their
// colors are blended linearly in RGB. A non-finite p yields the start
// node's color.
func (s *Spectrum) At(p float64) colorful.Color {
	if !finite(p) {
		return s.start.Color
	}
	p = math.Mod(p, 100)
	if p < 0 {
		p += 100
	}

	step := 100 / float64(s.chain.Len())
	k := int(p / step)
	if k >= s.chain.Len() {
		k = s.chain.Len() - 1
	}
	lo := s.chain.Node(s.start.Index + k)
	hi := s.chain.Next(lo)

	t := (p - s.Percent(lo)) / step
	return lo.Color.BlendRgb(hi.Color, t)
}

// ---- Range Generation

// Stop is one generated gradient color and its unwrapped spectrum position.
type Stop struct {
	Percent float64
	Color   colorful.Color
}

// Gradient walks the cycle forward from the position of from to the
// position of to, producing steps evenly spaced stops. The first stop is
// one increment past from and the last lands on to. When to does not lie
// ahead of from, the walk continues around the cycle (adding 100% laps), so
// Stop.Percent is strictly increasing.
func (c *Chain) Gradient(steps int, from, to colorful.Color, mode MatchMode) ([]Stop, error) {
	if steps <= 0 {
		return nil, ErrInvalidSteps
	}

	startNode, ok := c.Match(mode, from)
	if !ok {
		return nil, fmt.Errorf("start color %s: %w", from.Hex(), ErrNoMatch)
	}
	endNode, ok := c.Match(mode, to)
	if !ok {
		return nil, fmt.Errorf("end color %s: %w", to.Hex(), ErrNoMatch)
	}

	spectrum := c.Anchor(startNode)
	startPercent := spectrum.Exact(from, startNode)
	endPercent := spectrum.Exact(to, endNode)
	if !finite(startPercent) || !finite(endPercent) {
		return nil, ErrUnplaceable
	}
	if endPercent <= startPercent {
		endPercent += 100 * (math.Floor((startPercent-endPercent)/100) + 1)
	}

	increment := (endPercent - startPercent) / float64(steps)
	stops := make([]Stop, steps)
	for i := range stops {
		p := startPercent + float64(i+1)*increment
		stops[i] = Stop{Percent: p, Color: spectrum.At(p)}
	}
	return stops, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
