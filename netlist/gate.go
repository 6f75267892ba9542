package netlist

// Gate describes a logical function template: a name, ordered input port
// names, and a single output port name. A Gate is an immutable value; the
// instances stamped out from it share the definition and nothing else.
type Gate struct {
	Name   string
	Inputs []string
	Output string
}

// NewGate creates a gate template. The input slice is copied so later
// mutation by the caller cannot change the template's arity.
func NewGate(name string, inputs []string, output string) Gate {
	return Gate{
		Name:   name,
		Inputs: append([]string(nil), inputs...),
		Output: output,
	}
}

// Arity returns the number of input pins an instance of g carries.
func (g Gate) Arity() int {
	return len(g.Inputs)
}

// InputIndex returns the pin index of the named input port.
func (g Gate) InputIndex(port string) (int, bool) {
	for i, p := range g.Inputs {
		if p == port {
			return i, true
		}
	}
	return 0, false
}
