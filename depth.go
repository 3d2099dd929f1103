package nbt

// DefaultMaxDepth is the nesting limit used by ParseText.
const DefaultMaxDepth = 512

// depthGuard bounds the nesting of containers during a single top-level
// read or parse. It must not be shared between calls.
type depthGuard struct {
	max      int // 0 means unlimited
	depth    int
	exceeded func(max int) error
}

// enter runs f one level deeper, failing before f runs if that would
// exceed the limit.
func (g *depthGuard) enter(f func() error) error {
	if g.max > 0 && g.depth >= g.max {
		return g.exceeded(g.max)
	}
	g.depth++
	defer func() { g.depth-- }()
	return f()
}
