package netlist

// Endpoint addresses one pin on one node. On the consumer side Pin is the
// input pin index; on the producer side it is always 0, since every driving
// node has a single output pin.
type Endpoint struct {
	Node ID
	Pin  int
}

// Connection is one directed net binding, from a producer's output pin to a
// consumer's input pin.
type Connection struct {
	From Endpoint
	To   Endpoint
}

// bind installs producer as the driver of the consumer's pin, replacing any
// previous binding. Fan-in and fanout records are updated in the same call,
// so no caller can observe them disagreeing. A failed bind changes nothing.
func (nl *Netlist) bind(consumer ID, pin int, producer ID) error {
	cn := nl.reg.resolve(consumer)
	if cn == nil {
		return ErrStaleHandle
	}
	pn := nl.reg.resolve(producer)
	if pn == nil {
		return ErrStaleHandle
	}
	if pin < 0 || pin >= cn.arity() {
		return ErrPinRange
	}
	if !pn.hasOutput() {
		// Output nodes have no output pin to drive from.
		return ErrPinRange
	}
	ep := Endpoint{Node: consumer, Pin: pin}
	if old := cn.ins[pin]; !old.IsNil() {
		if on := nl.reg.resolve(old); on != nil {
			delete(on.fanout, ep)
		}
		nl.edges--
	}
	cn.ins[pin] = producer
	if pn.fanout == nil {
		pn.fanout = make(map[Endpoint]struct{})
	}
	pn.fanout[ep] = struct{}{}
	nl.edges++
	return nil
}

// unbind severs the binding on the consumer's pin and returns the old
// driver's identity.
func (nl *Netlist) unbind(consumer ID, pin int) (ID, error) {
	cn := nl.reg.resolve(consumer)
	if cn == nil {
		return ID{}, ErrStaleHandle
	}
	if pin < 0 || pin >= cn.arity() {
		return ID{}, ErrPinRange
	}
	old := cn.ins[pin]
	if old.IsNil() {
		return ID{}, ErrUnboundPin
	}
	if on := nl.reg.resolve(old); on != nil {
		delete(on.fanout, Endpoint{Node: consumer, Pin: pin})
	}
	cn.ins[pin] = ID{}
	nl.edges--
	return old, nil
}

// driverOf returns the producer bound to the consumer's pin. ok is false
// when the pin is unbound.
func (nl *Netlist) driverOf(consumer ID, pin int) (ID, bool, error) {
	cn := nl.reg.resolve(consumer)
	if cn == nil {
		return ID{}, false, ErrStaleHandle
	}
	if pin < 0 || pin >= cn.arity() {
		return ID{}, false, ErrPinRange
	}
	d := cn.ins[pin]
	return d, !d.IsNil(), nil
}
