// Package netlist models a digital circuit as a mutable graph: inputs,
// outputs, and gate instances (nodes) connected by nets (directed bindings
// from a producer's output pin to consumer input pins).
//
// The Netlist is the sole owner of all node storage. Callers hold handles,
// which are identities resolved through the owning netlist on every access;
// a handle to a removed node fails explicitly instead of dangling. Each
// consumer pin is driven by at most one producer, while a producer may fan
// out to any number of consumer pins.
//
// All operations are synchronous and run to completion. The package does no
// internal locking; concurrent use requires the caller to serialize access
// to the whole netlist with a one-writer-or-many-readers discipline.
package netlist

import "fmt"

// Netlist is the top-level container for a circuit module: the node
// registry, the connection state, and the declared input/output port lists
// in caller-specified order.
type Netlist struct {
	name    string
	reg     registry
	inputs  []ID
	outputs []ID
	names   map[string]ID // declared port and instance names
	edges   int
}

// New creates an empty netlist for a module with the given name.
func New(name string) *Netlist {
	return &Netlist{
		name:  name,
		names: make(map[string]ID),
	}
}

// Name returns the module name.
func (nl *Netlist) Name() string {
	return nl.name
}

// NodeCount returns the number of live nodes.
func (nl *Netlist) NodeCount() int {
	return nl.reg.len()
}

// EdgeCount returns the number of live bindings.
func (nl *Netlist) EdgeCount() int {
	return nl.edges
}

// nodeOf resolves a handle against this netlist.
func (nl *Netlist) nodeOf(h Handle) (*node, error) {
	if h.nl != nl {
		return nil, ErrWrongNetlist
	}
	n := nl.reg.resolve(h.id)
	if n == nil {
		return nil, ErrStaleHandle
	}
	return n, nil
}

func (nl *Netlist) handle(id ID) Handle {
	return Handle{id: id, nl: nl}
}

// InsertInput adds an input port and returns a handle to its node. The name
// joins the declared-name namespace shared by ports and instances.
func (nl *Netlist) InsertInput(name string) (Handle, error) {
	if _, taken := nl.names[name]; taken {
		return Handle{}, fmt.Errorf("insert input %q: %w", name, ErrDuplicateName)
	}
	id := nl.reg.allocate(node{kind: KindInput, name: name})
	nl.names[name] = id
	nl.inputs = append(nl.inputs, id)
	return nl.handle(id), nil
}

// InsertGate instantiates gate under the given instance name, binding each
// input pin to the corresponding driver's output pin. The whole call is
// all-or-nothing: on any error the netlist is unchanged.
func (nl *Netlist) InsertGate(gate Gate, name string, drivers ...Handle) (Handle, error) {
	if len(drivers) != gate.Arity() {
		return Handle{}, fmt.Errorf("instantiate %s %q: want %d drivers, have %d: %w",
			gate.Name, name, gate.Arity(), len(drivers), ErrArityMismatch)
	}
	// Validate every driver before touching the registry.
	for i, d := range drivers {
		dn, err := nl.nodeOf(d)
		if err != nil {
			return Handle{}, fmt.Errorf("instantiate %s %q: driver %d: %w", gate.Name, name, i, err)
		}
		if !dn.hasOutput() {
			return Handle{}, fmt.Errorf("instantiate %s %q: driver %d is an output node: %w",
				gate.Name, name, i, ErrPinRange)
		}
	}
	h, err := nl.InsertGateDisconnected(gate, name)
	if err != nil {
		return Handle{}, err
	}
	for i, d := range drivers {
		// Cannot fail: the instance is fresh and the drivers were validated.
		if err := nl.bind(h.id, i, d.id); err != nil {
			return Handle{}, fmt.Errorf("instantiate %s %q: pin %d: %w", gate.Name, name, i, err)
		}
	}
	return h, nil
}

// InsertGateDisconnected instantiates gate with every input pin unbound,
// for construction flows that wire pins up afterwards via Connect.
func (nl *Netlist) InsertGateDisconnected(gate Gate, name string) (Handle, error) {
	if _, taken := nl.names[name]; taken {
		return Handle{}, fmt.Errorf("instantiate %s %q: %w", gate.Name, name, ErrDuplicateName)
	}
	id := nl.reg.allocate(node{
		kind: KindInstance,
		name: name,
		gate: gate,
		ins:  make([]ID, gate.Arity()),
	})
	nl.names[name] = id
	return nl.handle(id), nil
}

// expose creates an Output node named name, bound to h's output pin, and
// appends it to the declared output list.
func (nl *Netlist) expose(h Handle, name string) (Handle, error) {
	n, err := nl.nodeOf(h)
	if err != nil {
		return Handle{}, err
	}
	if !n.hasOutput() {
		return Handle{}, fmt.Errorf("expose %q: %w", name, ErrNotExposable)
	}
	if _, taken := nl.names[name]; taken {
		return Handle{}, fmt.Errorf("expose %q: %w", name, ErrDuplicateName)
	}
	id := nl.reg.allocate(node{kind: KindOutput, name: name, ins: make([]ID, 1)})
	nl.names[name] = id
	nl.outputs = append(nl.outputs, id)
	if err := nl.bind(id, 0, h.id); err != nil {
		// Unreachable: both endpoints were just validated.
		return Handle{}, fmt.Errorf("expose %q: %w", name, err)
	}
	return nl.handle(id), nil
}

// Remove deletes the node behind h. Removal is conservative: it fails with
// ErrStillReferenced while any consumer pin is still driven by the node, so
// mutation passes must rewire fanout before deleting. On success the slot
// is freed and every handle to the node goes stale.
func (nl *Netlist) Remove(h Handle) error {
	n, err := nl.nodeOf(h)
	if err != nil {
		return err
	}
	if len(n.fanout) > 0 {
		return fmt.Errorf("remove %s %q: %w", n.kind, n.name, ErrStillReferenced)
	}
	for pin := range n.ins {
		if n.ins[pin].IsNil() {
			continue
		}
		if _, err := nl.unbind(h.id, pin); err != nil {
			return fmt.Errorf("remove %s %q: pin %d: %w", n.kind, n.name, pin, err)
		}
	}
	switch n.kind {
	case KindInput:
		nl.inputs = dropID(nl.inputs, h.id)
	case KindOutput:
		nl.outputs = dropID(nl.outputs, h.id)
	}
	delete(nl.names, n.name)
	nl.reg.remove(h.id)
	return nil
}

func dropID(ids []ID, id ID) []ID {
	for i := range ids {
		if ids[i] == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// Sweep removes instance nodes with no consumers, repeating until a fixed
// point so chains of dead logic disappear in one call. Input and output
// port nodes are never swept. Returns the number of nodes removed.
func (nl *Netlist) Sweep() int {
	removed := 0
	for {
		n := 0
		for _, id := range nl.reg.ids() {
			nd := nl.reg.resolve(id)
			if nd.kind != KindInstance || len(nd.fanout) != 0 {
				continue
			}
			if err := nl.Remove(nl.handle(id)); err == nil {
				n++
			}
		}
		if n == 0 {
			return removed
		}
		removed += n
	}
}

// ReplaceUses rebinds every consumer pin currently driven by old so that it
// is driven by repl instead. Consumer pins on repl itself are rebound too,
// which is how transformation passes splice a node into its own fan-in and
// create sequential feedback loops on purpose.
func (nl *Netlist) ReplaceUses(old, repl Handle) error {
	on, err := nl.nodeOf(old)
	if err != nil {
		return fmt.Errorf("replace uses: old: %w", err)
	}
	rn, err := nl.nodeOf(repl)
	if err != nil {
		return fmt.Errorf("replace uses: replacement: %w", err)
	}
	if !rn.hasOutput() {
		return fmt.Errorf("replace uses: replacement %q has no output pin: %w", rn.name, ErrPinRange)
	}
	// Snapshot the endpoints first; bind mutates the fanout set.
	eps := make([]Endpoint, 0, len(on.fanout))
	for ep := range on.fanout {
		eps = append(eps, ep)
	}
	for _, ep := range eps {
		if err := nl.bind(ep.Node, ep.Pin, repl.id); err != nil {
			return fmt.Errorf("replace uses: rebind: %w", err)
		}
	}
	return nil
}

// Verify checks the structural invariants: every instance and output pin is
// bound to a live producer, the fanout records mirror the fan-in bindings
// exactly, and the declared port lists reference nodes of the right kind.
// It returns the first violation found.
func (nl *Netlist) Verify() error {
	for _, id := range nl.reg.ids() {
		n := nl.reg.resolve(id)
		for pin, drv := range n.ins {
			if drv.IsNil() {
				return fmt.Errorf("verify: %s %q pin %d: %w", n.kind, n.name, pin, ErrUnboundPin)
			}
			dn := nl.reg.resolve(drv)
			if dn == nil {
				return fmt.Errorf("verify: %s %q pin %d driver: %w", n.kind, n.name, pin, ErrStaleHandle)
			}
			if _, ok := dn.fanout[Endpoint{Node: id, Pin: pin}]; !ok {
				return fmt.Errorf("verify: %s %q pin %d: binding missing from driver fanout", n.kind, n.name, pin)
			}
		}
		for ep := range n.fanout {
			cn := nl.reg.resolve(ep.Node)
			if cn == nil || ep.Pin < 0 || ep.Pin >= cn.arity() || cn.ins[ep.Pin] != id {
				return fmt.Errorf("verify: %s %q: fanout entry has no matching fan-in binding", n.kind, n.name)
			}
		}
	}
	for _, id := range nl.inputs {
		n := nl.reg.resolve(id)
		if n == nil || n.kind != KindInput {
			return fmt.Errorf("verify: declared input list: %w", ErrStaleHandle)
		}
	}
	for _, id := range nl.outputs {
		n := nl.reg.resolve(id)
		if n == nil || n.kind != KindOutput {
			return fmt.Errorf("verify: declared output list: %w", ErrStaleHandle)
		}
	}
	return nil
}

// Inputs returns handles to the declared input ports in insertion order.
func (nl *Netlist) Inputs() []Handle {
	return nl.handlesFor(nl.inputs)
}

// Outputs returns handles to the declared output ports in insertion order.
func (nl *Netlist) Outputs() []Handle {
	return nl.handlesFor(nl.outputs)
}

func (nl *Netlist) handlesFor(ids []ID) []Handle {
	out := make([]Handle, len(ids))
	for i, id := range ids {
		out[i] = nl.handle(id)
	}
	return out
}

// Find returns the node declared under name: an input or output port, or a
// gate instance.
func (nl *Netlist) Find(name string) (Handle, bool) {
	id, ok := nl.names[name]
	if !ok {
		return Handle{}, false
	}
	return nl.handle(id), true
}
