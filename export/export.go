// Package export converts a netlist into a dense directed multigraph for
// gonum's general-purpose graph algorithms. The conversion is a one-shot
// snapshot, not a live view: later netlist mutation does not change an
// exported graph.
package export

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"

	"github.com/pflow-xyz/go-netlist/netlist"
)

// Node wraps one netlist node as a gonum graph node. Dense IDs are assigned
// in registry order starting at 0.
type Node struct {
	id int64
	H  netlist.Handle
}

// ID implements graph.Node.
func (n Node) ID() int64 {
	return n.id
}

// Line wraps one net binding as a gonum multigraph line. Parallel lines
// occur whenever one producer drives several pins of the same consumer.
type Line struct {
	graph.Line
	Conn netlist.Connection
}

// Graph is a netlist snapshot as a gonum directed multigraph. The embedded
// graph satisfies gonum's algorithm interfaces; the lookup maps recover the
// original node and binding behind every graph element.
type Graph struct {
	*multi.DirectedGraph

	handles map[int64]netlist.Handle
	index   map[netlist.ID]int64
	lines   []Line
}

// FromNetlist snapshots nl. Every live node becomes one graph node and
// every binding one directed line from producer to consumer.
func FromNetlist(nl *netlist.Netlist) *Graph {
	g := &Graph{
		DirectedGraph: multi.NewDirectedGraph(),
		handles:       make(map[int64]netlist.Handle, nl.NodeCount()),
		index:         make(map[netlist.ID]int64, nl.NodeCount()),
	}
	for i, h := range nl.Nodes() {
		n := Node{id: int64(i), H: h}
		g.AddNode(n)
		g.handles[n.id] = h
		g.index[h.ID()] = n.id
	}
	for _, c := range nl.Connections() {
		from := g.DirectedGraph.Node(g.index[c.From.Node])
		to := g.DirectedGraph.Node(g.index[c.To.Node])
		l := Line{Line: g.NewLine(from, to), Conn: c}
		g.SetLine(l)
		g.lines = append(g.lines, l)
	}
	return g
}

// HandleFor returns the netlist node behind a dense graph node ID.
func (g *Graph) HandleFor(id int64) (netlist.Handle, bool) {
	h, ok := g.handles[id]
	return h, ok
}

// IndexOf returns the dense graph node ID assigned to a netlist identity.
func (g *Graph) IndexOf(id netlist.ID) (int64, bool) {
	i, ok := g.index[id]
	return i, ok
}

// Bindings returns every exported line in the deterministic order the
// netlist enumerated its connections.
func (g *Graph) Bindings() []Line {
	return g.lines
}
