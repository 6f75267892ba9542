package netlist

import (
	"errors"
	"testing"
)

func andGate() Gate {
	return NewGate("AND", []string{"A", "B"}, "Y")
}

func invGate() Gate {
	return NewGate("INV", []string{"I"}, "O")
}

// simpleExample builds the canonical two-input AND module:
// inputs a, b -> AND inst_0 -> output y.
func simpleExample(t *testing.T) *Netlist {
	t.Helper()
	nl := New("example")
	a, err := nl.InsertInput("a")
	if err != nil {
		t.Fatalf("insert a: %v", err)
	}
	b, err := nl.InsertInput("b")
	if err != nil {
		t.Fatalf("insert b: %v", err)
	}
	inst, err := nl.InsertGate(andGate(), "inst_0", a, b)
	if err != nil {
		t.Fatalf("insert gate: %v", err)
	}
	if _, err := inst.ExposeWithName("y"); err != nil {
		t.Fatalf("expose y: %v", err)
	}
	return nl
}

func name(t *testing.T, h Handle) string {
	t.Helper()
	s, err := h.Name()
	if err != nil {
		t.Fatalf("name: %v", err)
	}
	return s
}

func TestAndGateScenario(t *testing.T) {
	nl := simpleExample(t)

	if nl.Name() != "example" {
		t.Errorf("module name = %q, want %q", nl.Name(), "example")
	}
	if got := nl.NodeCount(); got != 4 {
		t.Errorf("node count = %d, want 4", got)
	}
	if got := nl.EdgeCount(); got != 3 {
		t.Errorf("edge count = %d, want 3", got)
	}

	outs := nl.Outputs()
	if len(outs) != 1 || name(t, outs[0]) != "y" {
		t.Fatalf("declared outputs = %v, want [y]", outs)
	}
	ins := nl.Inputs()
	if len(ins) != 2 || name(t, ins[0]) != "a" || name(t, ins[1]) != "b" {
		t.Fatalf("declared inputs wrong, got %d entries", len(ins))
	}

	inst, ok := nl.Find("inst_0")
	if !ok {
		t.Fatal("inst_0 not found")
	}
	// a drives pin A, b drives pin B, inst_0 drives y.
	for pin, want := range []string{"a", "b"} {
		d, bound, err := inst.Driver(pin)
		if err != nil || !bound {
			t.Fatalf("driver of pin %d: bound=%v err=%v", pin, bound, err)
		}
		if name(t, d) != want {
			t.Errorf("driver of pin %d = %q, want %q", pin, name(t, d), want)
		}
	}
	d, bound, err := outs[0].Driver(0)
	if err != nil || !bound {
		t.Fatalf("driver of y: bound=%v err=%v", bound, err)
	}
	if !d.Eq(inst) {
		t.Errorf("y is driven by %q, want inst_0", name(t, d))
	}

	if conns := nl.Connections(); len(conns) != 3 {
		t.Errorf("connections = %d, want 3", len(conns))
	}
	if err := nl.Verify(); err != nil {
		t.Errorf("verify: %v", err)
	}
}

func TestDuplicateNameRejected(t *testing.T) {
	nl := New("dups")
	if _, err := nl.InsertInput("a"); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	_, err := nl.InsertInput("a")
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("second insert err = %v, want ErrDuplicateName", err)
	}
	if got := nl.NodeCount(); got != 1 {
		t.Errorf("node count after failed insert = %d, want 1", got)
	}
	if got := len(nl.Inputs()); got != 1 {
		t.Errorf("declared inputs = %d, want 1", got)
	}
}

func TestInsertGateErrorsAreNoOps(t *testing.T) {
	nl := New("atomic")
	a, _ := nl.InsertInput("a")
	b, _ := nl.InsertInput("b")

	other := New("other")
	foreign, _ := other.InsertInput("x")

	tests := []struct {
		name    string
		drivers []Handle
		want    error
	}{
		{"too few drivers", []Handle{a}, ErrArityMismatch},
		{"too many drivers", []Handle{a, b, a}, ErrArityMismatch},
		{"foreign handle", []Handle{a, foreign}, ErrWrongNetlist},
		{"zero handle", []Handle{a, {}}, ErrWrongNetlist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes, edges := nl.NodeCount(), nl.EdgeCount()
			_, err := nl.InsertGate(andGate(), "inst_0", tt.drivers...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if nl.NodeCount() != nodes || nl.EdgeCount() != edges {
				t.Errorf("failed insert mutated the graph: %d/%d -> %d/%d",
					nodes, edges, nl.NodeCount(), nl.EdgeCount())
			}
		})
	}
}

func TestOutputNodeCannotDrive(t *testing.T) {
	nl := simpleExample(t)
	y := nl.Outputs()[0]
	_, err := nl.InsertGate(invGate(), "inst_1", y)
	if !errors.Is(err, ErrPinRange) {
		t.Fatalf("gate driven by output node: err = %v, want ErrPinRange", err)
	}
}

func TestDisconnectedInsertionAndConnect(t *testing.T) {
	nl := New("late_wiring")
	a, _ := nl.InsertInput("a")
	inst, err := nl.InsertGateDisconnected(invGate(), "inst_0")
	if err != nil {
		t.Fatalf("insert disconnected: %v", err)
	}

	if _, bound, err := inst.Driver(0); err != nil || bound {
		t.Fatalf("fresh pin: bound=%v err=%v, want unbound", bound, err)
	}
	if err := nl.Verify(); !errors.Is(err, ErrUnboundPin) {
		t.Fatalf("verify with unbound pin: %v, want ErrUnboundPin", err)
	}

	pin, ok := invGate().InputIndex("I")
	if !ok {
		t.Fatal("INV has no port I")
	}
	if err := inst.Connect(pin, a); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := inst.ExposeWithName("o"); err != nil {
		t.Fatalf("expose: %v", err)
	}
	if err := nl.Verify(); err != nil {
		t.Errorf("verify after wiring: %v", err)
	}

	old, err := inst.Disconnect(pin)
	if err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if !old.Eq(a) {
		t.Errorf("disconnect returned %q, want a", name(t, old))
	}
	if _, err := inst.Disconnect(pin); !errors.Is(err, ErrUnboundPin) {
		t.Errorf("double disconnect err = %v, want ErrUnboundPin", err)
	}
}

func TestExposeDerivedName(t *testing.T) {
	nl := New("derived")
	a, _ := nl.InsertInput("a")
	inst, _ := nl.InsertGate(invGate(), "inst_0", a)

	out, err := inst.Expose()
	if err != nil {
		t.Fatalf("expose: %v", err)
	}
	if got := name(t, out); got != "inst_0_O" {
		t.Errorf("derived port name = %q, want inst_0_O", got)
	}
	// Inputs need an explicit port name.
	if _, err := a.Expose(); !errors.Is(err, ErrNotExposable) {
		t.Errorf("expose input err = %v, want ErrNotExposable", err)
	}
	if _, err := a.ExposeWithName("a_out"); err != nil {
		t.Errorf("expose input with name: %v", err)
	}
	// Output nodes have no output pin to expose.
	if _, err := out.ExposeWithName("again"); !errors.Is(err, ErrNotExposable) {
		t.Errorf("expose output err = %v, want ErrNotExposable", err)
	}
}

func TestRemove(t *testing.T) {
	nl := simpleExample(t)
	a, _ := nl.Find("a")
	inst, _ := nl.Find("inst_0")
	y := nl.Outputs()[0]

	if err := nl.Remove(a); !errors.Is(err, ErrStillReferenced) {
		t.Fatalf("remove driven input err = %v, want ErrStillReferenced", err)
	}
	if err := nl.Remove(inst); !errors.Is(err, ErrStillReferenced) {
		t.Fatalf("remove exposed instance err = %v, want ErrStillReferenced", err)
	}

	// Output node has no fanout, so it goes first.
	if err := nl.Remove(y); err != nil {
		t.Fatalf("remove output: %v", err)
	}
	if err := nl.Remove(inst); err != nil {
		t.Fatalf("remove instance: %v", err)
	}
	if err := nl.Remove(a); err != nil {
		t.Fatalf("remove input: %v", err)
	}

	if got := nl.NodeCount(); got != 1 {
		t.Errorf("node count = %d, want 1", got)
	}
	if got := nl.EdgeCount(); got != 0 {
		t.Errorf("edge count = %d, want 0", got)
	}
	if len(nl.Outputs()) != 0 || len(nl.Inputs()) != 1 {
		t.Errorf("port lists not pruned: %d inputs, %d outputs", len(nl.Inputs()), len(nl.Outputs()))
	}
	if err := nl.Verify(); err != nil {
		t.Errorf("verify after removals: %v", err)
	}
}

func TestStaleHandleNeverAliases(t *testing.T) {
	nl := New("stale")
	a, _ := nl.InsertInput("a")
	if err := nl.Remove(a); err != nil {
		t.Fatalf("remove: %v", err)
	}

	// The freed slot is reused by the next insertion; the old handle must
	// stay stale rather than resolve to the new node.
	b, err := nl.InsertInput("b")
	if err != nil {
		t.Fatalf("reinsert: %v", err)
	}
	if a.ID() == b.ID() {
		t.Fatal("identity reissued for a different node")
	}
	if a.IsValid() {
		t.Error("stale handle reports valid")
	}
	if _, err := a.Name(); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("Name on stale handle err = %v, want ErrStaleHandle", err)
	}
	if err := nl.Remove(a); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("double remove err = %v, want ErrStaleHandle", err)
	}
	if got := name(t, b); got != "b" {
		t.Errorf("new node name = %q, want b", got)
	}
}

func TestSweep(t *testing.T) {
	nl := simpleExample(t)
	a, _ := nl.Find("a")
	b, _ := nl.Find("b")

	// A gate nobody consumes, feeding a second dead gate.
	dead1, err := nl.InsertGate(andGate(), "dead_0", a, b)
	if err != nil {
		t.Fatalf("insert dead_0: %v", err)
	}
	if _, err := nl.InsertGate(invGate(), "dead_1", dead1); err != nil {
		t.Fatalf("insert dead_1: %v", err)
	}

	if removed := nl.Sweep(); removed != 2 {
		t.Errorf("sweep removed %d, want 2 (the whole dead chain)", removed)
	}
	if got := nl.NodeCount(); got != 4 {
		t.Errorf("node count after sweep = %d, want 4", got)
	}
	if removed := nl.Sweep(); removed != 0 {
		t.Errorf("second sweep removed %d, want 0", removed)
	}
	// Unused inputs are ports, not dead logic.
	if got := len(nl.Inputs()); got != 2 {
		t.Errorf("sweep touched declared inputs: %d left", got)
	}
	if err := nl.Verify(); err != nil {
		t.Errorf("verify after sweep: %v", err)
	}
}

func TestReplaceUses(t *testing.T) {
	nl := simpleExample(t)
	a, _ := nl.Find("a")
	inst, _ := nl.Find("inst_0")

	// Splice an inverter onto a: every consumer of a, including the
	// inverter's own input, gets rebound to the inverter's output. The
	// self-binding is the feedback-loop construction used by tests below.
	inv, err := nl.InsertGate(invGate(), "inv_0", a)
	if err != nil {
		t.Fatalf("insert inverter: %v", err)
	}
	if err := nl.ReplaceUses(a, inv); err != nil {
		t.Fatalf("replace uses: %v", err)
	}

	d, bound, err := inst.Driver(0)
	if err != nil || !bound {
		t.Fatalf("inst_0 pin 0: bound=%v err=%v", bound, err)
	}
	if !d.Eq(inv) {
		t.Errorf("inst_0 pin 0 driven by %q, want inv_0", name(t, d))
	}
	d, bound, err = inv.Driver(0)
	if err != nil || !bound {
		t.Fatalf("inv_0 pin 0: bound=%v err=%v", bound, err)
	}
	if !d.Eq(inv) {
		t.Errorf("inv_0 pin 0 driven by %q, want itself", name(t, d))
	}

	// a has no consumers left and can be removed now.
	fo, err := a.Fanout()
	if err != nil {
		t.Fatalf("fanout: %v", err)
	}
	if len(fo) != 0 {
		t.Errorf("a still has %d consumers", len(fo))
	}
	if err := nl.Verify(); err != nil {
		t.Errorf("verify after replace: %v", err)
	}
}

func TestReplaceUsesRejectsOutputReplacement(t *testing.T) {
	nl := simpleExample(t)
	a, _ := nl.Find("a")
	y := nl.Outputs()[0]
	if err := nl.ReplaceUses(a, y); !errors.Is(err, ErrPinRange) {
		t.Fatalf("replace with output node err = %v, want ErrPinRange", err)
	}
}
