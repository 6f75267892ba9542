package netlist

import "testing"

func TestNewGateCopiesInputs(t *testing.T) {
	ports := []string{"A", "B"}
	g := NewGate("AND", ports, "Y")
	ports[0] = "mutated"
	if g.Inputs[0] != "A" {
		t.Errorf("gate shares the caller's slice: %q", g.Inputs[0])
	}
	if g.Arity() != 2 {
		t.Errorf("arity = %d, want 2", g.Arity())
	}
}

func TestGateAccessorCopiesInputs(t *testing.T) {
	nl := simpleExample(t)
	inst, _ := nl.Find("inst_0")
	g, ok, err := inst.Gate()
	if err != nil || !ok {
		t.Fatalf("gate: ok=%v err=%v", ok, err)
	}
	g.Inputs[0] = "mutated"

	again, _, err := inst.Gate()
	if err != nil {
		t.Fatal(err)
	}
	if again.Inputs[0] != "A" {
		t.Errorf("stored template mutated through accessor: %q", again.Inputs[0])
	}
}

func TestGateInputIndex(t *testing.T) {
	g := NewGate("FA", []string{"CIN", "A", "B"}, "S")
	tests := []struct {
		port string
		pin  int
		ok   bool
	}{
		{"CIN", 0, true},
		{"A", 1, true},
		{"B", 2, true},
		{"S", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.port, func(t *testing.T) {
			pin, ok := g.InputIndex(tt.port)
			if pin != tt.pin || ok != tt.ok {
				t.Errorf("InputIndex(%q) = %d,%v, want %d,%v", tt.port, pin, ok, tt.pin, tt.ok)
			}
		})
	}
}
