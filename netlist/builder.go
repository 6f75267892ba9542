package netlist

import "fmt"

// Builder provides a fluent API for constructing netlists by declared name.
// The first error sticks and short-circuits the remaining calls; Done
// reports it.
//
// Example:
//
//	and := netlist.NewGate("AND", []string{"A", "B"}, "Y")
//	nl, err := netlist.Build("example").
//	    Input("a").
//	    Input("b").
//	    Gate(and, "inst_0", "a", "b").
//	    Expose("y", "inst_0").
//	    Done()
type Builder struct {
	nl  *Netlist
	err error
}

// Build creates a new Builder for a module with the given name.
func Build(name string) *Builder {
	return &Builder{nl: New(name)}
}

// Input adds an input port.
func (b *Builder) Input(name string) *Builder {
	if b.err != nil {
		return b
	}
	_, b.err = b.nl.InsertInput(name)
	return b
}

// Gate instantiates gate under name, wiring its pins in order to the nodes
// declared under the driver names.
func (b *Builder) Gate(gate Gate, name string, drivers ...string) *Builder {
	if b.err != nil {
		return b
	}
	hs := make([]Handle, len(drivers))
	for i, d := range drivers {
		h, ok := b.nl.Find(d)
		if !ok {
			b.err = fmt.Errorf("gate %q: driver %q: %w", name, d, ErrUnknownName)
			return b
		}
		hs[i] = h
	}
	_, b.err = b.nl.InsertGate(gate, name, hs...)
	return b
}

// GateDisconnected instantiates gate under name with all pins unbound.
func (b *Builder) GateDisconnected(gate Gate, name string) *Builder {
	if b.err != nil {
		return b
	}
	_, b.err = b.nl.InsertGateDisconnected(gate, name)
	return b
}

// Connect binds pin on the node declared under name to the node declared
// under driver.
func (b *Builder) Connect(name string, pin int, driver string) *Builder {
	if b.err != nil {
		return b
	}
	h, ok := b.nl.Find(name)
	if !ok {
		b.err = fmt.Errorf("connect %q: %w", name, ErrUnknownName)
		return b
	}
	d, ok := b.nl.Find(driver)
	if !ok {
		b.err = fmt.Errorf("connect %q: driver %q: %w", name, driver, ErrUnknownName)
		return b
	}
	b.err = h.Connect(pin, d)
	return b
}

// Expose declares an output port named port, driven by the node declared
// under driver.
func (b *Builder) Expose(port, driver string) *Builder {
	if b.err != nil {
		return b
	}
	h, ok := b.nl.Find(driver)
	if !ok {
		b.err = fmt.Errorf("expose %q: driver %q: %w", port, driver, ErrUnknownName)
		return b
	}
	_, b.err = h.ExposeWithName(port)
	return b
}

// Done returns the constructed netlist, or the first error hit along the
// chain.
func (b *Builder) Done() (*Netlist, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.nl, nil
}
