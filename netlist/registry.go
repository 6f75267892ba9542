package netlist

// registry is the arena that owns all node storage. Nodes live in a flat
// slot slice; identities are slot indices paired with a generation counter.
// Freeing a slot bumps its generation, so an old identity held by a caller
// can never resolve to the node that later reuses the slot.
type registry struct {
	slots []slot
	free  []int
	live  int
}

type slot struct {
	node node
	gen  uint32
	dead bool
}

// allocate stores n and returns its new identity. Never fails.
func (r *registry) allocate(n node) ID {
	r.live++
	if k := len(r.free); k > 0 {
		i := r.free[k-1]
		r.free = r.free[:k-1]
		s := &r.slots[i]
		s.node = n
		s.dead = false
		return ID{index: i, gen: s.gen}
	}
	// Generations start at 1 so the zero ID stays unresolvable.
	r.slots = append(r.slots, slot{node: n, gen: 1})
	return ID{index: len(r.slots) - 1, gen: 1}
}

// resolve returns the node stored under id, or nil if id is stale: the
// slot was freed, reused under a newer generation, or never allocated.
func (r *registry) resolve(id ID) *node {
	if id.gen == 0 || id.index < 0 || id.index >= len(r.slots) {
		return nil
	}
	s := &r.slots[id.index]
	if s.dead || s.gen != id.gen {
		return nil
	}
	return &s.node
}

// remove frees the slot under id. Reports whether id was live.
func (r *registry) remove(id ID) bool {
	if r.resolve(id) == nil {
		return false
	}
	s := &r.slots[id.index]
	s.node = node{}
	s.dead = true
	s.gen++
	r.free = append(r.free, id.index)
	r.live--
	return true
}

func (r *registry) len() int {
	return r.live
}

// ids returns the identities of all live slots in registry order.
func (r *registry) ids() []ID {
	out := make([]ID, 0, r.live)
	for i := range r.slots {
		s := &r.slots[i]
		if !s.dead {
			out = append(out, ID{index: i, gen: s.gen})
		}
	}
	return out
}
