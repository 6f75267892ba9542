package netlist

import (
	"fmt"
	"sort"
)

// Handle is a safe, copyable reference to one node. It carries the node's
// identity and a back-reference to the owning netlist; every operation
// resolves the identity first, so a handle to a removed node fails with
// ErrStaleHandle rather than reaching a different node. Handles are not an
// ownership stake: the netlist owns all storage.
type Handle struct {
	id ID
	nl *Netlist
}

// ID returns the node's stable identity.
func (h Handle) ID() ID {
	return h.id
}

// Eq reports whether two handles refer to the same node of the same netlist.
func (h Handle) Eq(other Handle) bool {
	return h.id == other.id && h.nl == other.nl
}

// IsValid reports whether the handle still resolves to a live node.
func (h Handle) IsValid() bool {
	return h.nl != nil && h.nl.reg.resolve(h.id) != nil
}

// resolve guards against the zero handle before delegating to the owner.
func (h Handle) resolve() (*node, error) {
	if h.nl == nil {
		return nil, ErrStaleHandle
	}
	return h.nl.nodeOf(h)
}

// Kind returns the node's variant.
func (h Handle) Kind() (Kind, error) {
	n, err := h.resolve()
	if err != nil {
		return 0, err
	}
	return n.kind, nil
}

// Name returns the port name for inputs and outputs, and the instance name
// for gate instances.
func (h Handle) Name() (string, error) {
	n, err := h.resolve()
	if err != nil {
		return "", err
	}
	return n.name, nil
}

// Gate returns the gate template behind an instance node. ok is false for
// input and output nodes. The returned value is a copy; mutating its input
// slice does not reach the stored template.
func (h Handle) Gate() (g Gate, ok bool, err error) {
	n, err := h.resolve()
	if err != nil {
		return Gate{}, false, err
	}
	if n.kind != KindInstance {
		return Gate{}, false, nil
	}
	return NewGate(n.gate.Name, n.gate.Inputs, n.gate.Output), true, nil
}

// Arity returns the number of input pins on the node.
func (h Handle) Arity() (int, error) {
	n, err := h.resolve()
	if err != nil {
		return 0, err
	}
	return n.arity(), nil
}

// Connect binds the node's input pin to the driver's output pin, replacing
// any previous binding on that pin.
func (h Handle) Connect(pin int, driver Handle) error {
	if _, err := h.resolve(); err != nil {
		return err
	}
	if _, err := h.nl.nodeOf(driver); err != nil {
		return fmt.Errorf("connect pin %d: driver: %w", pin, err)
	}
	return h.nl.bind(h.id, pin, driver.id)
}

// Disconnect unbinds the node's input pin and returns a handle to the old
// driver.
func (h Handle) Disconnect(pin int) (Handle, error) {
	if _, err := h.resolve(); err != nil {
		return Handle{}, err
	}
	old, err := h.nl.unbind(h.id, pin)
	if err != nil {
		return Handle{}, err
	}
	return h.nl.handle(old), nil
}

// Driver returns the producer bound to the node's input pin. ok is false
// while the pin is unbound, which is the normal state mid-construction.
func (h Handle) Driver(pin int) (driver Handle, ok bool, err error) {
	if _, err := h.resolve(); err != nil {
		return Handle{}, false, err
	}
	id, ok, err := h.nl.driverOf(h.id, pin)
	if err != nil || !ok {
		return Handle{}, false, err
	}
	return h.nl.handle(id), true, nil
}

// Fanout returns the consumer endpoints driven by the node's output pin,
// ordered deterministically for a fixed graph state.
func (h Handle) Fanout() ([]Endpoint, error) {
	n, err := h.resolve()
	if err != nil {
		return nil, err
	}
	out := make([]Endpoint, 0, len(n.fanout))
	for ep := range n.fanout {
		out = append(out, ep)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Node.index != out[j].Node.index {
			return out[i].Node.index < out[j].Node.index
		}
		return out[i].Pin < out[j].Pin
	})
	return out, nil
}

// ExposeWithName makes the node a module output: a new Output node is
// created under the given port name and bound to this node's output pin.
// Valid on inputs and instances only.
func (h Handle) ExposeWithName(name string) (Handle, error) {
	if _, err := h.resolve(); err != nil {
		return Handle{}, err
	}
	return h.nl.expose(h, name)
}

// Expose is ExposeWithName with the port name derived from the driven net:
// the instance name joined with the gate's output port. Input nodes need an
// explicit port name and are refused.
func (h Handle) Expose() (Handle, error) {
	n, err := h.resolve()
	if err != nil {
		return Handle{}, err
	}
	if n.kind != KindInstance {
		return Handle{}, fmt.Errorf("expose %s %q without a port name: %w", n.kind, n.name, ErrNotExposable)
	}
	return h.nl.expose(h, n.name+"_"+n.gate.Output)
}
