// Package analysis provides read-only analyses over a netlist: logic depth
// and feedback-loop detection. Analyses consume the netlist's traversal API
// only; they never mutate the graph.
package analysis

import (
	"errors"
	"fmt"

	"github.com/pflow-xyz/go-netlist/netlist"
)

// ErrCombLoop reports a combinational cycle where a depth is undefined.
var ErrCombLoop = errors.New("analysis: combinational loop")

// Depth holds the combinational depth of every node at build time: inputs
// are at depth 0, an instance is one level deeper than its deepest driver,
// and an output sits at its driver's depth. The result is a snapshot;
// mutating the netlist afterwards does not update it.
type Depth struct {
	nl    *netlist.Netlist
	depth map[netlist.ID]int
	cut   string
}

// Option configures depth computation.
type Option func(*Depth)

// WithCutAttr treats nodes carrying the given attribute as depth-0 sources.
// Marking sequential elements this way lets feedback loops through them
// analyze as acyclic paths.
func WithCutAttr(attr string) Option {
	return func(d *Depth) {
		d.cut = attr
	}
}

const (
	colorWhite = iota
	colorGray
	colorBlack
)

// NewDepth computes the depth of every node in nl. It fails with ErrCombLoop
// if the graph contains a cycle not cut by the configured attribute.
func NewDepth(nl *netlist.Netlist, opts ...Option) (*Depth, error) {
	d := &Depth{
		nl:    nl,
		depth: make(map[netlist.ID]int),
	}
	for _, o := range opts {
		o(d)
	}
	color := make(map[netlist.ID]int)
	for _, h := range nl.Nodes() {
		if _, err := d.visit(h, color); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Depth) visit(h netlist.Handle, color map[netlist.ID]int) (int, error) {
	id := h.ID()
	switch color[id] {
	case colorBlack:
		return d.depth[id], nil
	case colorGray:
		return 0, ErrCombLoop
	}
	color[id] = colorGray

	kind, err := h.Kind()
	if err != nil {
		return 0, err
	}
	cut := false
	if d.cut != "" {
		if cut, err = h.HasAttr(d.cut); err != nil {
			return 0, err
		}
	}

	depth := 0
	if kind != netlist.KindInput && !cut {
		arity, err := h.Arity()
		if err != nil {
			return 0, err
		}
		deepest := 0
		for pin := 0; pin < arity; pin++ {
			drv, bound, err := h.Driver(pin)
			if err != nil {
				return 0, err
			}
			if !bound {
				continue
			}
			dd, err := d.visit(drv, color)
			if err != nil {
				// Name the loop entry point once, at the frame that saw it.
				if err == ErrCombLoop {
					if name, nerr := h.Name(); nerr == nil {
						return 0, fmt.Errorf("through %s pin %d: %w", name, pin, ErrCombLoop)
					}
				}
				return 0, err
			}
			if dd > deepest {
				deepest = dd
			}
		}
		depth = deepest
		if kind == netlist.KindInstance {
			depth++
		}
	}

	color[id] = colorBlack
	d.depth[id] = depth
	return depth, nil
}

// Of returns the depth of the node behind h. ok is false for handles the
// snapshot does not cover, including nodes added after it was built.
func (d *Depth) Of(h netlist.Handle) (int, bool) {
	depth, ok := d.depth[h.ID()]
	return depth, ok
}

// Max returns the largest depth in the snapshot, the critical path length
// in gate levels.
func (d *Depth) Max() int {
	max := 0
	for _, v := range d.depth {
		if v > max {
			max = v
		}
	}
	return max
}
