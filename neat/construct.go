package neat

import (
	"fmt"
	"math/rand"
)

// Construct assembles a network from nodes that were wired with the Node
// connect and gate methods. Nodes typed Output, or projecting and gating
// nothing, become outputs; nodes typed Input, or without incoming connections,
// become inputs. Inputs are moved to the front and outputs to the back, each
// keeping their relative order.
func Construct(nodes []*Node, rng *rand.Rand) (*Network, error) {
	member := make(map[*Node]bool, len(nodes))
	for _, node := range nodes {
		member[node] = true
	}

	// Types are only written once the node set is known to be valid.
	var inputs, hidden, outputs []*Node
	for _, node := range nodes {
		switch {
		case node.Type == Output || len(node.Out)+len(node.Gated) == 0:
			outputs = append(outputs, node)
		case node.Type == Input || len(node.In) == 0:
			inputs = append(inputs, node)
		default:
			hidden = append(hidden, node)
		}
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, fmt.Errorf("%w: given nodes have no clear input/output node", ErrConstruction)
	}

	n := newEmptyNetwork(len(inputs), len(outputs), rng)
	n.Nodes = make([]*Node, 0, len(nodes))
	n.Nodes = append(n.Nodes, inputs...)
	n.Nodes = append(n.Nodes, hidden...)
	n.Nodes = append(n.Nodes, outputs...)

	for _, node := range n.Nodes {
		for _, conn := range node.Out {
			if !member[conn.To] {
				return nil, fmt.Errorf("%w: connection leaves the given nodes", ErrConstruction)
			}
		}
		for _, conn := range node.Gated {
			if !member[conn.From] || !member[conn.To] {
				return nil, fmt.Errorf("%w: gated connection leaves the given nodes", ErrConstruction)
			}
		}
	}

	for _, node := range inputs {
		node.Type = Input
	}
	for _, node := range outputs {
		node.Type = Output
	}
	for _, node := range n.Nodes {
		n.Connections = append(n.Connections, node.Out...)
		n.Gates = append(n.Gates, node.Gated...)
		if node.Self.Weight != 0 {
			n.SelfConns = append(n.SelfConns, node.Self)
		}
	}
	return n, nil
}
