package netlist

// Nodes returns a handle to every live node, in registry order. The slice
// is a snapshot: mutating the netlist afterwards does not change it, and
// handles to nodes removed later simply go stale.
func (nl *Netlist) Nodes() []Handle {
	return nl.handlesFor(nl.reg.ids())
}

// Connections enumerates every live binding exactly once, consumer-major in
// registry order with pins in ascending order. The order is deterministic
// for a fixed graph state.
func (nl *Netlist) Connections() []Connection {
	out := make([]Connection, 0, nl.edges)
	for _, id := range nl.reg.ids() {
		n := nl.reg.resolve(id)
		for pin, drv := range n.ins {
			if drv.IsNil() {
				continue
			}
			out = append(out, Connection{
				From: Endpoint{Node: drv},
				To:   Endpoint{Node: id, Pin: pin},
			})
		}
	}
	return out
}

// DFS returns the nodes reachable from start by following input pins toward
// their drivers (consumer to producer), in preorder. Visits are tracked per
// identity, so each reachable node appears exactly once and the walk
// terminates even when sequential feedback makes the graph truly cyclic.
func (nl *Netlist) DFS(start Handle) ([]Handle, error) {
	if _, err := nl.nodeOf(start); err != nil {
		return nil, err
	}
	var order []Handle
	seen := make(map[ID]struct{})
	stack := []ID{start.id}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		order = append(order, nl.handle(id))
		n := nl.reg.resolve(id)
		// Push drivers in reverse so pin 0 is explored first.
		for pin := n.arity() - 1; pin >= 0; pin-- {
			d := n.ins[pin]
			if d.IsNil() {
				continue
			}
			if _, ok := seen[d]; !ok {
				stack = append(stack, d)
			}
		}
	}
	return order, nil
}
