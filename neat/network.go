package neat

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/google/uuid"
	unilogger "github.com/neuronlabs/uni-logger"
)

// Network is a genome: an ordered list of nodes (inputs first, outputs last)
// plus global indexes of every connection, self-connection and gate. The
// indexes mirror the per-node connection lists; all structural edits go through
// Network methods so both views stay consistent.
//
// A Network is not safe for concurrent mutation. Independent networks may be
// activated concurrently.
type Network struct {
	ID     uuid.UUID // Identity of this genome, regenerated for offspring and copies.
	Input  int
	Output int

	Nodes       []*Node
	Connections []*Connection // excludes self-connections
	Gates       []*Connection
	SelfConns   []*Connection

	Dropout float64
	// Score is the fitness used by CrossOver to rank parents.
	Score float64

	rng  *rand.Rand
	diag diagnostics
}

// newEmptyNetwork creates a network with no nodes or connections.
func newEmptyNetwork(input, output int, rng *rand.Rand) *Network {
	if rng == nil {
		rng = NewRand(0)
	}
	return &Network{
		ID:     uuid.New(),
		Input:  input,
		Output: output,
		rng:    rng,
	}
}

// NewNetwork creates a network of input and output nodes where every input is
// connected to every output. rng drives every stochastic operation of the
// network; nil selects a time-seeded source.
func NewNetwork(input, output int, rng *rand.Rand) (*Network, error) {
	if input <= 0 || output <= 0 {
		return nil, fmt.Errorf("%w: input (%d) and output (%d) sizes must be positive", ErrConstruction, input, output)
	}
	n := newEmptyNetwork(input, output, rng)

	for i := 0; i < input+output; i++ {
		t := Output
		if i < input {
			t = Input
		}
		n.Nodes = append(n.Nodes, NewNode(t, n.rng))
	}

	scale := float64(input) * math.Sqrt(2/float64(input))
	for i := 0; i < input; i++ {
		for j := input; j < input+output; j++ {
			if _, err := n.Connect(n.Nodes[i], n.Nodes[j], n.rng.Float64()*scale); err != nil {
				return nil, err
			}
		}
	}
	return n, nil
}

// SetLogger routes the network's diagnostics (skipped mutations, ignored
// gates, training progress) to logger. nil silences them.
func (n *Network) SetLogger(logger unilogger.LeveledLogger) {
	n.diag = diagnostics{logger: logger}
}

// SetRand replaces the network's random source.
func (n *Network) SetRand(rng *rand.Rand) {
	n.rng = rng
}

// Rand returns the network's random source.
func (n *Network) Rand() *rand.Rand {
	return n.rng
}

// String returns a short summary of the network.
func (n *Network) String() string {
	return fmt.Sprintf("Network(ID: %s, Input: %d, Output: %d, Nodes: %d, Connections: %d, SelfConns: %d, Gates: %d)",
		n.ID, n.Input, n.Output, len(n.Nodes), len(n.Connections), len(n.SelfConns), len(n.Gates))
}

// IndexOf returns the position of node in the network, or -1.
func (n *Network) IndexOf(node *Node) int {
	return indexOf(n.Nodes, node)
}

// Activate feeds input into the input nodes, activates every other node in
// order with trace bookkeeping, and returns the output activations. When
// training, non-boundary nodes are dropped out with probability Dropout.
func (n *Network) Activate(input []float64, training bool) ([]float64, error) {
	if len(input) != n.Input {
		return nil, fmt.Errorf("%w: got %d inputs, network has %d", ErrShapeMismatch, len(input), n.Input)
	}

	output := make([]float64, 0, n.Output)
	for i, node := range n.Nodes {
		switch node.Type {
		case Input:
			node.Feed(input[i])
		case Output:
			output = append(output, node.Activate())
		default:
			if training {
				node.Mask = 1
				if n.rng.Float64() < n.Dropout {
					node.Mask = 0
				}
			}
			node.Activate()
		}
	}
	return output, nil
}

// NoTraceActivate is Activate without trace bookkeeping or dropout; use it for
// inference.
func (n *Network) NoTraceActivate(input []float64) ([]float64, error) {
	if len(input) != n.Input {
		return nil, fmt.Errorf("%w: got %d inputs, network has %d", ErrShapeMismatch, len(input), n.Input)
	}

	output := make([]float64, 0, n.Output)
	for i, node := range n.Nodes {
		switch node.Type {
		case Input:
			node.Feed(input[i])
		case Output:
			output = append(output, node.NoTraceActivate())
		default:
			node.NoTraceActivate()
		}
	}
	return output, nil
}

// Propagate back-propagates the error between target and the last traced
// activation. Deltas accumulate until a call with update set commits them.
func (n *Network) Propagate(rate, momentum float64, update bool, target []float64) error {
	if len(target) != n.Output {
		return fmt.Errorf("%w: got %d targets, network has %d outputs", ErrShapeMismatch, len(target), n.Output)
	}

	targetIndex := len(target)
	for i := len(n.Nodes) - 1; i >= len(n.Nodes)-n.Output; i-- {
		targetIndex--
		n.Nodes[i].Propagate(rate, momentum, update, target[targetIndex])
	}
	for i := len(n.Nodes) - n.Output - 1; i >= n.Input; i-- {
		n.Nodes[i].Propagate(rate, momentum, update, 0)
	}
	return nil
}

// Clear resets the runtime context of every node.
func (n *Network) Clear() {
	for _, node := range n.Nodes {
		node.Clear()
	}
}

// Connect links from to to with the given weight and indexes the new
// connection. Connecting a node to itself enables its self-connection.
func (n *Network) Connect(from, to *Node, weight float64) (*Connection, error) {
	if n.IndexOf(from) == -1 || n.IndexOf(to) == -1 {
		return nil, fmt.Errorf("%w: cannot connect nodes outside the network", ErrNotFound)
	}
	conn, err := from.Connect(to, weight)
	if err != nil {
		return nil, err
	}
	if from == to {
		n.SelfConns = append(n.SelfConns, conn)
	} else {
		n.Connections = append(n.Connections, conn)
	}
	return conn, nil
}

// ConnectRandom is Connect with the default weight: uniform in [-0.1, 0.1] for
// regular connections, 1 for self-connections.
func (n *Network) ConnectRandom(from, to *Node) (*Connection, error) {
	weight := 0.0
	if from != to {
		weight = randomWeight(n.rng)
	}
	return n.Connect(from, to, weight)
}

// Disconnect removes the connection from from to to, ungating it first.
func (n *Network) Disconnect(from, to *Node) error {
	if !n.disconnect(from, to) {
		return fmt.Errorf("%w: no connection between the given nodes", ErrNotFound)
	}
	return nil
}

func (n *Network) disconnect(from, to *Node) bool {
	list := &n.Connections
	if from == to {
		list = &n.SelfConns
	}

	var found *Connection
	for _, conn := range *list {
		if conn.From == from && conn.To == to {
			found = conn
			break
		}
	}
	if found == nil {
		return false
	}
	if found.Gater != nil {
		n.ungate(found)
	}
	*list, _ = removeConnection(*list, found)
	from.Disconnect(to, false)
	return true
}

// Gate makes node the gater of conn. Gating an already gated connection is
// skipped with a warning.
func (n *Network) Gate(node *Node, conn *Connection) error {
	if n.IndexOf(node) == -1 {
		return fmt.Errorf("%w: gater node is not part of the network", ErrNotFound)
	}
	if !n.owns(conn) {
		return fmt.Errorf("%w: connection is not part of the network", ErrNotFound)
	}
	if conn.Gater != nil {
		n.diag.warningf("gate skipped: connection is already gated")
		return nil
	}
	node.Gate(conn)
	n.Gates = append(n.Gates, conn)
	return nil
}

// Ungate removes the gate from conn.
func (n *Network) Ungate(conn *Connection) error {
	if !n.ungate(conn) {
		return fmt.Errorf("%w: connection is not gated", ErrNotFound)
	}
	return nil
}

func (n *Network) ungate(conn *Connection) bool {
	var ok bool
	n.Gates, ok = removeConnection(n.Gates, conn)
	if !ok {
		return false
	}
	conn.Gater.Ungate(conn)
	return true
}

// owns reports whether conn is indexed by the network.
func (n *Network) owns(conn *Connection) bool {
	list := n.Connections
	if conn.IsSelf() {
		list = n.SelfConns
	}
	for _, c := range list {
		if c == conn {
			return true
		}
	}
	return false
}

// Remove deletes a hidden or constant node. Every former input of the node is
// connected to every former output it did not already project to, and gaters
// of the removed connections are redistributed over the new connections.
func (n *Network) Remove(node *Node) error {
	return n.remove(node, DefaultMutation(SubNode).KeepGates)
}

func (n *Network) remove(node *Node, keepGates bool) error {
	index := n.IndexOf(node)
	if index == -1 {
		return fmt.Errorf("%w: node does not exist in the network", ErrNotFound)
	}
	if node.Type == Input || node.Type == Output {
		return fmt.Errorf("%w: cannot remove %s node", ErrConstruction, node.Type)
	}

	var gaters []*Node
	n.disconnect(node, node)

	var inputs []*Node
	in := append([]*Connection(nil), node.In...)
	for i := len(in) - 1; i >= 0; i-- {
		conn := in[i]
		if keepGates && conn.Gater != nil && conn.Gater != node {
			gaters = append(gaters, conn.Gater)
		}
		inputs = append(inputs, conn.From)
		n.disconnect(conn.From, node)
	}

	var outputs []*Node
	out := append([]*Connection(nil), node.Out...)
	for i := len(out) - 1; i >= 0; i-- {
		conn := out[i]
		if keepGates && conn.Gater != nil && conn.Gater != node {
			gaters = append(gaters, conn.Gater)
		}
		outputs = append(outputs, conn.To)
		n.disconnect(node, conn.To)
	}

	var created []*Connection
	for _, input := range inputs {
		for _, output := range outputs {
			if input.IsProjectingTo(output) {
				continue
			}
			conn, err := n.ConnectRandom(input, output)
			if err != nil {
				return err
			}
			created = append(created, conn)
		}
	}

	for _, gater := range gaters {
		if len(created) == 0 {
			break
		}
		i := n.rng.Intn(len(created))
		if err := n.Gate(gater, created[i]); err != nil {
			return err
		}
		created = append(created[:i], created[i+1:]...)
	}

	for i := len(node.Gated) - 1; i >= 0; i-- {
		if conn := node.Gated[i]; !n.ungate(conn) {
			node.Ungate(conn)
		}
	}

	n.disconnect(node, node)
	n.Nodes = append(n.Nodes[:index], n.Nodes[index+1:]...)
	return nil
}
