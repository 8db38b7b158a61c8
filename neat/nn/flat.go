package nn

import (
	"fmt"

	"github.com/baldhumanity/recurrent-neat-go/neat" // Import the parent neat package
)

// flatConn is an incoming connection of a flatNode, by node position.
type flatConn struct {
	From   int
	Weight float64
	Gater  int // -1 when ungated
}

// flatNode is a non-input node decoded from the flattened encoding.
type flatNode struct {
	Index      int
	Bias       float64
	Squash     neat.Squash
	SelfWeight float64
	SelfGater  int
	In         []flatConn
}

// FlatNetwork evaluates a network from its flattened encoding without the
// graph representation. It keeps activations and states between calls, so
// recurrent and gated networks behave as they would under NoTraceActivate.
type FlatNetwork struct {
	Input       int
	Output      int
	Activations []float64
	States      []float64
	nodes       []flatNode
}

// NewFlatNetwork decodes a flattened network produced by Network.Serialize.
func NewFlatNetwork(flat neat.Flat) (*FlatNetwork, error) {
	data := flat.Data
	if len(data) < 2 {
		return nil, fmt.Errorf("flat encoding too short (%d values)", len(data))
	}
	size := len(flat.Activations)
	if len(flat.States) != size {
		return nil, fmt.Errorf("mismatch between activation count (%d) and state count (%d)", size, len(flat.States))
	}

	net := &FlatNetwork{
		Input:       int(data[0]),
		Output:      int(data[1]),
		Activations: append([]float64(nil), flat.Activations...),
		States:      append([]float64(nil), flat.States...),
	}
	if net.Input <= 0 || net.Output <= 0 || net.Input+net.Output > size {
		return nil, fmt.Errorf("invalid sizes: %d inputs, %d outputs for %d nodes", net.Input, net.Output, size)
	}

	index := func(v float64, allowNone bool) (int, error) {
		i := int(v)
		if float64(i) != v || i >= size || i < -1 || (i == -1 && !allowNone) {
			return 0, fmt.Errorf("node index %v out of range", v)
		}
		return i, nil
	}

	for i := 2; i < len(data); {
		if i+5 > len(data) {
			return nil, fmt.Errorf("truncated node header at position %d", i)
		}
		var node flatNode
		var err error
		if node.Index, err = index(data[i], false); err != nil {
			return nil, err
		}
		node.Bias = data[i+1]
		node.Squash = neat.Squash(int(data[i+2]))
		if !node.Squash.Valid() {
			return nil, fmt.Errorf("node %d: %w: id %v", node.Index, neat.ErrUnknownSquash, data[i+2])
		}
		node.SelfWeight = data[i+3]
		if node.SelfGater, err = index(data[i+4], true); err != nil {
			return nil, err
		}
		i += 5

		for {
			if i >= len(data) {
				return nil, fmt.Errorf("node %d: missing terminator", node.Index)
			}
			if data[i] == neat.FlatTerminator {
				i++
				break
			}
			if i+3 > len(data) {
				return nil, fmt.Errorf("node %d: truncated connection at position %d", node.Index, i)
			}
			var conn flatConn
			if conn.From, err = index(data[i], false); err != nil {
				return nil, err
			}
			conn.Weight = data[i+1]
			if conn.Gater, err = index(data[i+2], true); err != nil {
				return nil, err
			}
			node.In = append(node.In, conn)
			i += 3
		}
		net.nodes = append(net.nodes, node)
	}
	return net, nil
}

// gain returns the activation of gater, or 1 when there is none.
func (net *FlatNetwork) gain(gater int) float64 {
	if gater == -1 {
		return 1
	}
	return net.Activations[gater]
}

// Activate computes the network's output for a given slice of input values.
// The input slice must match the number of input nodes.
func (net *FlatNetwork) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != net.Input {
		return nil, fmt.Errorf("%w: mismatch between input count (%d) and network input nodes (%d)",
			neat.ErrShapeMismatch, len(inputs), net.Input)
	}
	copy(net.Activations, inputs)

	for _, node := range net.nodes {
		state := net.gain(node.SelfGater)*node.SelfWeight*net.States[node.Index] + node.Bias
		for _, conn := range node.In {
			state += net.Activations[conn.From] * conn.Weight * net.gain(conn.Gater)
		}
		net.States[node.Index] = state
		net.Activations[node.Index] = node.Squash.Apply(state, false)
	}

	outputs := make([]float64, net.Output)
	copy(outputs, net.Activations[len(net.Activations)-net.Output:])
	return outputs, nil
}

// Test returns the mean cost of the flat network over set. A nil cost selects
// MSE.
func (net *FlatNetwork) Test(set []neat.Sample, cost neat.CostFunc) (float64, error) {
	if len(set) == 0 {
		return 0, fmt.Errorf("test set is empty")
	}
	if cost == nil {
		cost = neat.MSE
	}
	sum := 0.0
	for i, sample := range set {
		if len(sample.Output) != net.Output {
			return 0, fmt.Errorf("%w: sample %d has %d outputs, network has %d",
				neat.ErrShapeMismatch, i, len(sample.Output), net.Output)
		}
		output, err := net.Activate(sample.Input)
		if err != nil {
			return 0, fmt.Errorf("sample %d: %w", i, err)
		}
		sum += cost(sample.Output, output)
	}
	return sum / float64(len(set)), nil
}
