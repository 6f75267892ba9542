package analysis

import "github.com/pflow-xyz/go-netlist/netlist"

// HasCycle reports whether the netlist contains any feedback loop.
func HasCycle(nl *netlist.Netlist) bool {
	color := make(map[netlist.ID]int)
	for _, h := range nl.Nodes() {
		if cycleFrom(h, color) {
			return true
		}
	}
	return false
}

// CycleFrom reports whether a feedback loop is reachable from start by
// following input pins toward their drivers.
func CycleFrom(start netlist.Handle) bool {
	return cycleFrom(start, make(map[netlist.ID]int))
}

// cycleFrom runs a three-color DFS: hitting a gray node means the walk
// re-entered its own driver chain.
func cycleFrom(h netlist.Handle, color map[netlist.ID]int) bool {
	id := h.ID()
	switch color[id] {
	case colorBlack:
		return false
	case colorGray:
		return true
	}
	color[id] = colorGray
	arity, err := h.Arity()
	if err != nil {
		// Stale handles have no drivers to follow.
		color[id] = colorBlack
		return false
	}
	for pin := 0; pin < arity; pin++ {
		drv, bound, err := h.Driver(pin)
		if err != nil || !bound {
			continue
		}
		if cycleFrom(drv, color) {
			return true
		}
	}
	color[id] = colorBlack
	return false
}
