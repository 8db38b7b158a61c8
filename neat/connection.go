package neat

import (
	"fmt"
	"math/rand"
)

// Connection is a directed, weighted edge between two nodes. A connection is
// linked into its endpoints' Out/In lists, into exactly one of the owning
// network's Connections or SelfConns lists and, when gated, into its gater's
// Gated list and the network's Gates list.
type Connection struct {
	From   *Node
	To     *Node
	Weight float64
	// Gain scales the weight; a gater writes its activation here.
	Gain  float64
	Gater *Node

	Eligibility         float64
	PreviousDeltaWeight float64
	TotalDeltaWeight    float64
	XTrace              ExtendedTrace
}

// ExtendedTrace holds the gating-induced trace values of a connection, keyed by
// the node whose state the gating influences. Entries keep insertion order so
// gradient sums are reproducible.
type ExtendedTrace struct {
	Nodes  []*Node
	Values []float64
}

func (xt *ExtendedTrace) index(node *Node) int {
	return indexOf(xt.Nodes, node)
}

func (xt *ExtendedTrace) reset() {
	xt.Nodes = nil
	xt.Values = nil
}

// NewConnection creates an unlinked connection with the given weight.
func NewConnection(from, to *Node, weight float64) *Connection {
	return &Connection{
		From:   from,
		To:     to,
		Weight: weight,
		Gain:   1,
	}
}

// NewRandomConnection creates an unlinked connection with a weight drawn
// uniformly from [-0.1, 0.1].
func NewRandomConnection(from, to *Node, rng *rand.Rand) *Connection {
	return NewConnection(from, to, randomWeight(rng))
}

// IsSelf reports whether the connection is a self-loop.
func (c *Connection) IsSelf() bool {
	return c.From == c.To
}

// String returns a string representation of the Connection.
func (c *Connection) String() string {
	return fmt.Sprintf("Connection(Weight: %.3f, Gain: %.3f, Gated: %t)", c.Weight, c.Gain, c.Gater != nil)
}

// InnovationID returns the Cantor pairing of a (from, to) index pair. It is the
// key used to align connection genes during crossover.
func InnovationID(a, b int) int {
	return (a+b)*(a+b+1)/2 + b
}
