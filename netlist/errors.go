package netlist

import "errors"

var (
	// Naming errors
	ErrDuplicateName = errors.New("netlist: name already declared")
	ErrUnknownName   = errors.New("netlist: no node declared under that name")

	// Structural errors
	ErrArityMismatch = errors.New("netlist: driver count does not match gate arity")
	ErrPinRange      = errors.New("netlist: pin index out of range")
	ErrUnboundPin    = errors.New("netlist: input pin is unbound")
	ErrNotExposable  = errors.New("netlist: node cannot be exposed as an output")

	// Identity errors
	ErrStaleHandle  = errors.New("netlist: handle does not resolve to a live node")
	ErrWrongNetlist = errors.New("netlist: handle belongs to a different netlist")

	// Removal errors
	ErrStillReferenced = errors.New("netlist: node still has consumers")
)
