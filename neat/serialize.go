package neat

import (
	"encoding/json"
	"fmt"
	"math/rand"
)

// GenomeJSON is the wire shape of a network. Node order is significant: the
// first Input nodes are inputs, the last Output nodes are outputs, and
// connection endpoints and gaters are indexes into Nodes.
type GenomeJSON struct {
	Input       int              `json:"input"`
	Output      int              `json:"output"`
	Dropout     float64          `json:"dropout"`
	Nodes       []NodeJSON       `json:"nodes"`
	Connections []ConnectionJSON `json:"connections"`
}

// NodeJSON is the wire shape of a node.
type NodeJSON struct {
	Index  int     `json:"index"`
	Bias   float64 `json:"bias"`
	Squash string  `json:"squash"`
	Type   string  `json:"type"`
}

// ConnectionJSON is the wire shape of a connection. Self-connections have
// From == To. Gater is null for ungated connections.
type ConnectionJSON struct {
	From   int     `json:"from"`
	To     int     `json:"to"`
	Weight float64 `json:"weight"`
	Gater  *int    `json:"gater"`
}

// ToJSON converts the network to its wire shape. Regular connections are
// listed first, then self-connections, each in index order.
func (n *Network) ToJSON() GenomeJSON {
	index := make(map[*Node]int, len(n.Nodes))
	g := GenomeJSON{
		Input:       n.Input,
		Output:      n.Output,
		Dropout:     n.Dropout,
		Nodes:       make([]NodeJSON, 0, len(n.Nodes)),
		Connections: make([]ConnectionJSON, 0, len(n.Connections)+len(n.SelfConns)),
	}
	for i, node := range n.Nodes {
		index[node] = i
		g.Nodes = append(g.Nodes, NodeJSON{
			Index:  i,
			Bias:   node.Bias,
			Squash: node.Squash.String(),
			Type:   node.Type.String(),
		})
	}
	for _, conn := range n.allConnections() {
		c := ConnectionJSON{
			From:   index[conn.From],
			To:     index[conn.To],
			Weight: conn.Weight,
		}
		if conn.Gater != nil {
			gater := index[conn.Gater]
			c.Gater = &gater
		}
		g.Connections = append(g.Connections, c)
	}
	return g
}

// FromJSON rebuilds a network from its wire shape. Boundary node placement,
// squash names and every index are validated; a malformed genome yields an
// error wrapping ErrConstruction, ErrUnknownSquash or ErrDuplicateEdge.
func FromJSON(g GenomeJSON, rng *rand.Rand) (*Network, error) {
	if g.Input <= 0 || g.Output <= 0 {
		return nil, fmt.Errorf("%w: input (%d) and output (%d) sizes must be positive", ErrConstruction, g.Input, g.Output)
	}
	if len(g.Nodes) < g.Input+g.Output {
		return nil, fmt.Errorf("%w: %d nodes cannot hold %d inputs and %d outputs",
			ErrConstruction, len(g.Nodes), g.Input, g.Output)
	}

	n := newEmptyNetwork(g.Input, g.Output, rng)
	n.Dropout = g.Dropout

	for i, nj := range g.Nodes {
		t, err := ParseNodeType(nj.Type)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		var want string
		switch {
		case i < g.Input:
			if t != Input {
				want = "input"
			}
		case i >= len(g.Nodes)-g.Output:
			if t != Output {
				want = "output"
			}
		default:
			if t == Input || t == Output {
				want = "hidden or constant"
			}
		}
		if want != "" {
			return nil, fmt.Errorf("%w: node %d is %s, expected %s", ErrConstruction, i, t, want)
		}

		squash, err := GetSquash(nj.Squash)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}

		node := &Node{Bias: nj.Bias, Squash: squash, Type: t, Mask: 1}
		node.Self = NewConnection(node, node, 0)
		n.Nodes = append(n.Nodes, node)
	}

	valid := func(i int) bool { return i >= 0 && i < len(n.Nodes) }
	for i, cj := range g.Connections {
		if !valid(cj.From) || !valid(cj.To) {
			return nil, fmt.Errorf("%w: connection %d references node %d->%d out of range",
				ErrConstruction, i, cj.From, cj.To)
		}
		conn, err := n.Connect(n.Nodes[cj.From], n.Nodes[cj.To], cj.Weight)
		if err != nil {
			return nil, fmt.Errorf("connection %d: %w", i, err)
		}
		conn.Weight = cj.Weight

		if cj.Gater == nil {
			continue
		}
		if !valid(*cj.Gater) {
			return nil, fmt.Errorf("%w: connection %d gater %d out of range", ErrConstruction, i, *cj.Gater)
		}
		if err := n.Gate(n.Nodes[*cj.Gater], conn); err != nil {
			return nil, fmt.Errorf("connection %d: %w", i, err)
		}
	}
	return n, nil
}

// MarshalJSON encodes the network in its wire shape.
func (n *Network) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.ToJSON())
}

// UnmarshalJSON replaces the network with the decoded genome. The random
// source and logger of n are kept.
func (n *Network) UnmarshalJSON(data []byte) error {
	var g GenomeJSON
	if err := json.Unmarshal(data, &g); err != nil {
		return err
	}
	decoded, err := FromJSON(g, n.rng)
	if err != nil {
		return err
	}
	decoded.diag = n.diag
	*n = *decoded
	return nil
}

// Clone returns a deep copy of the genome through the JSON round trip. The copy
// gets a new ID and shares the random source and logger of n; runtime state
// (activations, traces) is not copied.
func (n *Network) Clone() (*Network, error) {
	clone, err := FromJSON(n.ToJSON(), n.rng)
	if err != nil {
		return nil, fmt.Errorf("failed to clone network %s: %w", n.ID, err)
	}
	clone.Score = n.Score
	clone.diag = n.diag
	return clone, nil
}

// Flat is the flattened numeric encoding of a network used to evaluate it
// outside of its graph representation.
//
// Data holds the input and output sizes, then for every non-input node: its
// index, bias, squash id, self weight and self gater index (-1 when ungated),
// followed by (from index, weight, gater index) triples for each incoming
// connection and a FlatTerminator. Activations and States snapshot the
// runtime state of every node.
type Flat struct {
	Activations []float64
	States      []float64
	Data        []float64
}

// FlatTerminator ends the incoming connection run of a node in Flat.Data.
const FlatTerminator = -2

// Serialize produces the flattened encoding of the network.
func (n *Network) Serialize() Flat {
	index := make(map[*Node]int, len(n.Nodes))
	flat := Flat{
		Activations: make([]float64, 0, len(n.Nodes)),
		States:      make([]float64, 0, len(n.Nodes)),
		Data:        []float64{float64(n.Input), float64(n.Output)},
	}
	for i, node := range n.Nodes {
		index[node] = i
		flat.Activations = append(flat.Activations, node.Activation)
		flat.States = append(flat.States, node.State)
	}

	gaterIndex := func(conn *Connection) float64 {
		if conn.Gater == nil {
			return -1
		}
		return float64(index[conn.Gater])
	}

	for i := n.Input; i < len(n.Nodes); i++ {
		node := n.Nodes[i]
		flat.Data = append(flat.Data,
			float64(i), node.Bias, float64(node.Squash), node.Self.Weight, gaterIndex(node.Self))
		for _, conn := range node.In {
			flat.Data = append(flat.Data, float64(index[conn.From]), conn.Weight, gaterIndex(conn))
		}
		flat.Data = append(flat.Data, FlatTerminator)
	}
	return flat
}
