package netlist

// Kind discriminates the closed set of node variants. Every consumer of a
// node switches on Kind explicitly; there is no open hierarchy.
type Kind int

const (
	// KindInput is a netlist-level source: no fan-in, one output pin.
	KindInput Kind = iota
	// KindOutput is a netlist-level sink: one input pin, no output pin.
	KindOutput
	// KindInstance is a gate instantiation: one input pin per gate port,
	// one output pin.
	KindInstance
)

func (k Kind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindOutput:
		return "output"
	case KindInstance:
		return "instance"
	}
	return "unknown"
}

// ID is the stable identity of a node: a registry slot index paired with a
// generation counter. Identities stay valid for the life of the node and
// are never reissued for a different node, so a stale ID fails resolution
// instead of silently aliasing whatever reused its slot. The zero ID never
// resolves.
type ID struct {
	index int
	gen   uint32
}

// IsNil reports whether id is the zero identity, used for unbound pins.
func (id ID) IsNil() bool {
	return id.gen == 0
}

// node is the registry's record for one circuit node.
type node struct {
	kind Kind
	name string // port name for inputs/outputs, instance name for instances
	gate Gate   // meaningful only for KindInstance

	// ins holds the driver of each input pin, the nil ID when unbound.
	// Inputs have no pins, outputs exactly one, instances gate.Arity().
	ins []ID

	// fanout is the exact inverse of the ins bindings across the netlist:
	// every consumer endpoint currently driven by this node's output pin.
	fanout map[Endpoint]struct{}

	attrs map[string]string
}

// arity returns the number of input pins on n.
func (n *node) arity() int {
	return len(n.ins)
}

// hasOutput reports whether n has an output pin and can drive consumers.
func (n *node) hasOutput() bool {
	return n.kind != KindOutput
}
