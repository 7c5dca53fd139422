package chain

import (
	"errors"
	"iter"

	"github.com/lucasb-eyer/go-colorful"
)

// MinLength is the smallest number of colors a chain accepts.
const MinLength = 8

var (
	ErrInvalidConfiguration = errors.New("chain needs at least 8 colors")
	ErrNoMatch              = errors.New("no chain node matches color")
	ErrInvalidSteps         = errors.New("gradient needs a positive number of steps")
	ErrUnplaceable          = errors.New("color has no finite spectrum position")
)

// ---- Default Palette
// Corner points of a hue wheel. Every transition moves one or two channels:
//   a -> b [r+0.5, g-0.25]    e -> f [r-0.5, g+0.25]
//   b -> c [g-0.75]           f -> g [g+0.75]
//   c -> d [b+0.75]           g -> h [b-0.75]
//   d -> e [r-0.5, b+0.25]    h -> a [r+0.5, b-0.25]

var defaultColors = []colorful.Color{
	{R: 0.5, G: 1, B: 0},
	{R: 1, G: 0.75, B: 0},
	{R: 1, G: 0, B: 0},
	{R: 1, G: 0, B: 0.75},
	{R: 0.5, G: 0, B: 1},
	{R: 0, G: 0.25, B: 1},
	{R: 0, G: 1, B: 1},
	{R: 0, G: 1, B: 0.25},
}

// DefaultColors returns a copy of the built-in palette.
func DefaultColors() []colorful.Color {
	out := make([]colorful.Color, len(defaultColors))
	copy(out, defaultColors)
	return out
}

// ---- Nodes

// Delta is the signed per-channel change from a node's color to its successor's.
type Delta struct {
	R, G, B float64
}

// Node is one reference color on the chain.
type Node struct {
	Index      int
	Color      colorful.Color
	Transition Delta
}

// Matches reports whether c lies on the node's side of every channel
// transition: the differential c-node must have the transition's sign,
// with zero counted as non-negative.
func (n Node) Matches(c colorful.Color) bool {
	return channelIsClose(c.R-n.Color.R, n.Transition.R) &&
		channelIsClose(c.G-n.Color.G, n.Transition.G) &&
		channelIsClose(c.B-n.Color.B, n.Transition.B)
}

func channelIsClose(differential, transition float64) bool {
	return (transition >= 0 && differential >= 0) || (transition < 0 && differential < 0)
}

// ---- Chain

// Chain is a closed cycle of reference colors. Node 0 is the anchor.
// Links are arena indices, so a Chain is immutable after New and safe
// for concurrent readers.
//
// Lookups and percentages assume each transition changes only one or two
// channels (as the default palette does). New does not check this.
type Chain struct {
	nodes []Node
}

// New builds a chain from colors in order, closing the cycle from the last
// color back to the first.
func New(colors ...colorful.Color) (*Chain, error) {
	if len(colors) < MinLength {
		return nil, ErrInvalidConfiguration
	}

	nodes := make([]Node, len(colors))
	for i, c := range colors {
		next := colors[(i+1)%len(colors)]
		nodes[i] = Node{
			Index: i,
			Color: c,
			Transition: Delta{
				R: next.R - c.R,
				G: next.G - c.G,
				B: next.B - c.B,
			},
		}
	}
	return &Chain{nodes: nodes}, nil
}

// Default returns a chain over the built-in palette.
func Default() *Chain {
	c, err := New(defaultColors...)
	if err != nil {
		panic("chain: default palette: " + err.Error())
	}
	return c
}

// Len returns the number of nodes on the cycle.
func (c *Chain) Len() int {
	return len(c.nodes)
}

// First returns the anchor node.
func (c *Chain) First() Node {
	return c.nodes[0]
}

// Node returns the node at index i, wrapping around the cycle.
func (c *Chain) Node(i int) Node {
	return c.nodes[c.wrap(i)]
}

// Next returns the successor of n.
func (c *Chain) Next(n Node) Node {
	return c.nodes[c.wrap(n.Index+1)]
}

// Previous returns the predecessor of n.
func (c *Chain) Previous(n Node) Node {
	return c.nodes[c.wrap(n.Index-1)]
}

// Nodes returns a copy of the nodes in anchor order.
func (c *Chain) Nodes() []Node {
	out := make([]Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// Walk yields every node exactly once, starting at start and following
// the successor links around the cycle.
func (c *Chain) Walk(start Node) iter.Seq[Node] {
	return func(yield func(Node) bool) {
		i := c.wrap(start.Index)
		for range c.nodes {
			if !yield(c.nodes[i]) {
				return
			}
			i = c.wrap(i + 1)
		}
	}
}

func (c *Chain) wrap(i int) int {
	n := len(c.nodes)
	return ((i % n) + n) % n
}

// ---- Lookup

// MatchMode selects how Match picks among candidate nodes.
type MatchMode int

const (
	// MatchLast keeps the last candidate visited from the anchor.
	MatchLast MatchMode = iota
	// MatchClosest keeps the candidate with the smallest RGB distance.
	MatchClosest
)

// String returns the flag spelling of the mode.
func (m MatchMode) String() string {
	switch m {
	case MatchLast:
		return "last"
	case MatchClosest:
		return "closest"
	default:
		return "unknown"
	}
}

// ParseMatchMode parses "last" or "closest".
func ParseMatchMode(s string) (MatchMode, bool) {
	switch s {
	case "last", "":
		return MatchLast, true
	case "closest":
		return MatchClosest, true
	}
	return MatchLast, false
}

// Nearest walks the cycle from the anchor and returns the last node that
// Matches c. It reports false when no node matches.
//
// Known defect: near a transition boundary an earlier, better node can be
// shadowed by a later one, e.g. (1, 0.41, 0) resolves to (1, 0, 0) rather
// than (1, 0.75, 0). Closest does not have this problem.
func (c *Chain) Nearest(col colorful.Color) (Node, bool) {
	var (
		found Node
		ok    bool
	)
	for n := range c.Walk(c.First()) {
		if n.Matches(col) {
			found, ok = n, true
		}
	}
	return found, ok
}

// Closest returns the matching node with the smallest RGB distance to col.
// Ties keep the node visited first.
func (c *Chain) Closest(col colorful.Color) (Node, bool) {
	var (
		found Node
		ok    bool
		best  float64
	)
	for n := range c.Walk(c.First()) {
		if !n.Matches(col) {
			continue
		}
		d := n.Color.DistanceRgb(col)
		if !ok || d < best {
			found, best, ok = n, d, true
		}
	}
	return found, ok
}

// Match dispatches to Nearest or Closest.
func (c *Chain) Match(mode MatchMode, col colorful.Color) (Node, bool) {
	if mode == MatchClosest {
		return c.Closest(col)
	}
	return c.Nearest(col)
}
