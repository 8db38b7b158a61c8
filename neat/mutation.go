package neat

import (
	"fmt"

	"github.com/iancoleman/strcase"
)

// MutationKind identifies a structural or parametric mutation operator.
type MutationKind int

const (
	AddNode MutationKind = iota
	SubNode
	AddConn
	SubConn
	ModWeight
	ModBias
	ModActivation
	AddSelfConn
	SubSelfConn
	AddGate
	SubGate
	AddBackConn
	SubBackConn
	SwapNodes
	numMutationKinds
)

var mutationKindNames = [numMutationKinds]string{
	AddNode:       "ADD_NODE",
	SubNode:       "SUB_NODE",
	AddConn:       "ADD_CONN",
	SubConn:       "SUB_CONN",
	ModWeight:     "MOD_WEIGHT",
	ModBias:       "MOD_BIAS",
	ModActivation: "MOD_ACTIVATION",
	AddSelfConn:   "ADD_SELF_CONN",
	SubSelfConn:   "SUB_SELF_CONN",
	AddGate:       "ADD_GATE",
	SubGate:       "SUB_GATE",
	AddBackConn:   "ADD_BACK_CONN",
	SubBackConn:   "SUB_BACK_CONN",
	SwapNodes:     "SWAP_NODES",
}

// String returns the operator name, e.g. "ADD_NODE".
func (k MutationKind) String() string {
	if k < 0 || k >= numMutationKinds {
		return fmt.Sprintf("MutationKind(%d)", int(k))
	}
	return mutationKindNames[k]
}

// ParseMutationKind resolves an operator name such as "ADD_NODE" or "add-node".
func ParseMutationKind(name string) (MutationKind, error) {
	key := strcase.ToScreamingSnake(name)
	for i, n := range mutationKindNames {
		if n == name || n == key {
			return MutationKind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMutation, name)
}

// Mutation is a mutation operator together with its parameters. Only the
// fields relevant to Kind are read.
type Mutation struct {
	Kind MutationKind
	// Min and Max bound the uniform perturbation of ModWeight and ModBias.
	Min, Max float64
	// MutateOutput lets ModActivation and SwapNodes pick output nodes.
	MutateOutput bool
	// Allowed is the squash set ModActivation draws from; empty means all.
	Allowed []Squash
	// KeepGates makes SubNode reassign gaters of the removed connections.
	KeepGates bool
}

// DefaultMutation returns the operator with its default parameters.
func DefaultMutation(kind MutationKind) Mutation {
	m := Mutation{Kind: kind}
	switch kind {
	case SubNode:
		m.KeepGates = true
	case ModWeight, ModBias:
		m.Min, m.Max = -1, 1
	case ModActivation:
		m.MutateOutput = true
		m.Allowed = AllSquashes()
	case SwapNodes:
		m.MutateOutput = true
	}
	return m
}

// AllMutations returns every operator with default parameters.
func AllMutations() []Mutation {
	all := make([]Mutation, 0, numMutationKinds)
	for k := MutationKind(0); k < numMutationKinds; k++ {
		all = append(all, DefaultMutation(k))
	}
	return all
}

// FFWMutations returns the operators that never introduce recurrence or gating.
func FFWMutations() []Mutation {
	kinds := []MutationKind{AddNode, SubNode, AddConn, SubConn, ModWeight, ModBias, ModActivation, SwapNodes}
	ffw := make([]Mutation, 0, len(kinds))
	for _, k := range kinds {
		ffw = append(ffw, DefaultMutation(k))
	}
	return ffw
}

// Mutate applies one mutation operator. An operator without a legal target is
// logged and skipped: applied is false and err is nil. err is only set for
// unknown operators or a broken network.
func (n *Network) Mutate(m Mutation) (applied bool, err error) {
	switch m.Kind {
	case AddNode:
		return n.mutateAddNode()
	case SubNode:
		return n.mutateSubNode(m)
	case AddConn:
		return n.mutateAddConn(false)
	case SubConn:
		return n.mutateSubConn(false)
	case ModWeight:
		return n.mutateModWeight(m)
	case ModBias:
		node := n.Nodes[n.Input+n.rng.Intn(len(n.Nodes)-n.Input)]
		return true, node.Mutate(m, n.rng)
	case ModActivation:
		return n.mutateModActivation(m)
	case AddSelfConn:
		return n.mutateAddSelfConn()
	case SubSelfConn:
		return n.mutateSubSelfConn()
	case AddGate:
		return n.mutateAddGate()
	case SubGate:
		return n.mutateSubGate()
	case AddBackConn:
		return n.mutateAddConn(true)
	case SubBackConn:
		return n.mutateSubConn(true)
	case SwapNodes:
		return n.mutateSwapNodes(m)
	}
	return false, fmt.Errorf("%w: %s", ErrUnknownMutation, m.Kind)
}

// mutateAddNode splits a random connection with a new hidden node. A gate on
// the split connection moves to one of the two halves.
func (n *Network) mutateAddNode() (bool, error) {
	if len(n.Connections) == 0 {
		n.diag.exhausted(AddNode, "no connections to split")
		return false, nil
	}

	conn := n.Connections[n.rng.Intn(len(n.Connections))]
	from, to, gater := conn.From, conn.To, conn.Gater
	if err := n.Disconnect(from, to); err != nil {
		return false, err
	}

	node := NewNode(Hidden, n.rng)
	if err := node.Mutate(DefaultMutation(ModActivation), n.rng); err != nil {
		return false, err
	}

	// Keep the new node ahead of its target and of the output block.
	pos := n.IndexOf(to)
	if limit := len(n.Nodes) - n.Output; limit < pos {
		pos = limit
	}
	n.Nodes = append(n.Nodes, nil)
	copy(n.Nodes[pos+1:], n.Nodes[pos:])
	n.Nodes[pos] = node

	in, err := n.ConnectRandom(from, node)
	if err != nil {
		return false, err
	}
	out, err := n.ConnectRandom(node, to)
	if err != nil {
		return false, err
	}

	if gater != nil {
		target := in
		if n.rng.Float64() < 0.5 {
			target = out
		}
		if err := n.Gate(gater, target); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (n *Network) mutateSubNode(m Mutation) (bool, error) {
	hidden := len(n.Nodes) - n.Output - n.Input
	if hidden == 0 {
		n.diag.exhausted(SubNode, "no more nodes left to remove")
		return false, nil
	}
	node := n.Nodes[n.Input+n.rng.Intn(hidden)]
	if err := n.remove(node, m.KeepGates); err != nil {
		return false, err
	}
	return true, nil
}

// mutateAddConn adds a random missing connection. Forward connections run from
// a lower to a higher index and never leave the output block; backward ones run
// from a higher to a lower non-input index.
func (n *Network) mutateAddConn(backward bool) (bool, error) {
	kind := AddConn
	var available [][2]*Node
	if backward {
		kind = AddBackConn
		for i := n.Input; i < len(n.Nodes); i++ {
			for j := n.Input; j < i; j++ {
				if !n.Nodes[i].IsProjectingTo(n.Nodes[j]) {
					available = append(available, [2]*Node{n.Nodes[i], n.Nodes[j]})
				}
			}
		}
	} else {
		for i := 0; i < len(n.Nodes)-n.Output; i++ {
			start := i + 1
			if start < n.Input {
				start = n.Input
			}
			for j := start; j < len(n.Nodes); j++ {
				if !n.Nodes[i].IsProjectingTo(n.Nodes[j]) {
					available = append(available, [2]*Node{n.Nodes[i], n.Nodes[j]})
				}
			}
		}
	}

	if len(available) == 0 {
		n.diag.exhausted(kind, "no more connections to be made")
		return false, nil
	}
	pair := available[n.rng.Intn(len(available))]
	if _, err := n.ConnectRandom(pair[0], pair[1]); err != nil {
		return false, err
	}
	return true, nil
}

// mutateSubConn removes a random connection whose endpoints both keep another
// connection on the same side.
func (n *Network) mutateSubConn(backward bool) (bool, error) {
	kind := SubConn
	if backward {
		kind = SubBackConn
	}

	var possible []*Connection
	for _, conn := range n.Connections {
		if len(conn.From.Out) <= 1 || len(conn.To.In) <= 1 {
			continue
		}
		forward := n.IndexOf(conn.To) > n.IndexOf(conn.From)
		if forward != backward {
			possible = append(possible, conn)
		}
	}

	if len(possible) == 0 {
		n.diag.exhausted(kind, "no connections to remove")
		return false, nil
	}
	conn := possible[n.rng.Intn(len(possible))]
	if err := n.Disconnect(conn.From, conn.To); err != nil {
		return false, err
	}
	return true, nil
}

func (n *Network) mutateModWeight(m Mutation) (bool, error) {
	all := n.allConnections()
	if len(all) == 0 {
		n.diag.exhausted(ModWeight, "no connections to modify")
		return false, nil
	}
	conn := all[n.rng.Intn(len(all))]
	conn.Weight += uniform(n.rng, m.Min, m.Max)
	return true, nil
}

// mutableRange returns how many nodes after the inputs a node-level mutation
// may pick from.
func (n *Network) mutableRange(mutateOutput bool) int {
	if mutateOutput {
		return len(n.Nodes) - n.Input
	}
	return len(n.Nodes) - n.Input - n.Output
}

func (n *Network) mutateModActivation(m Mutation) (bool, error) {
	span := n.mutableRange(m.MutateOutput)
	if span <= 0 {
		n.diag.exhausted(ModActivation, "no nodes that allow mutation of activation function")
		return false, nil
	}
	node := n.Nodes[n.Input+n.rng.Intn(span)]
	if err := node.Mutate(m, n.rng); err != nil {
		return false, err
	}
	return true, nil
}

func (n *Network) mutateAddSelfConn() (bool, error) {
	var possible []*Node
	for _, node := range n.Nodes[n.Input:] {
		if node.Self.Weight == 0 {
			possible = append(possible, node)
		}
	}
	if len(possible) == 0 {
		n.diag.exhausted(AddSelfConn, "no more self-connections to add")
		return false, nil
	}
	node := possible[n.rng.Intn(len(possible))]
	if _, err := n.ConnectRandom(node, node); err != nil {
		return false, err
	}
	return true, nil
}

func (n *Network) mutateSubSelfConn() (bool, error) {
	if len(n.SelfConns) == 0 {
		n.diag.exhausted(SubSelfConn, "no more self-connections to remove")
		return false, nil
	}
	conn := n.SelfConns[n.rng.Intn(len(n.SelfConns))]
	if err := n.Disconnect(conn.From, conn.To); err != nil {
		return false, err
	}
	return true, nil
}

func (n *Network) mutateAddGate() (bool, error) {
	var possible []*Connection
	for _, conn := range n.allConnections() {
		if conn.Gater == nil {
			possible = append(possible, conn)
		}
	}
	if len(possible) == 0 {
		n.diag.exhausted(AddGate, "no more connections to gate")
		return false, nil
	}

	gater := n.Nodes[n.Input+n.rng.Intn(len(n.Nodes)-n.Input)]
	conn := possible[n.rng.Intn(len(possible))]
	if err := n.Gate(gater, conn); err != nil {
		return false, err
	}
	return true, nil
}

func (n *Network) mutateSubGate() (bool, error) {
	if len(n.Gates) == 0 {
		n.diag.exhausted(SubGate, "no more connections to ungate")
		return false, nil
	}
	conn := n.Gates[n.rng.Intn(len(n.Gates))]
	if err := n.Ungate(conn); err != nil {
		return false, err
	}
	return true, nil
}

// mutateSwapNodes exchanges bias and squash between two random nodes.
func (n *Network) mutateSwapNodes(m Mutation) (bool, error) {
	span := n.mutableRange(m.MutateOutput)
	if span < 2 {
		n.diag.exhausted(SwapNodes, "no nodes that allow swapping of bias and activation function")
		return false, nil
	}
	a := n.Nodes[n.Input+n.rng.Intn(span)]
	b := n.Nodes[n.Input+n.rng.Intn(span)]
	a.Bias, b.Bias = b.Bias, a.Bias
	a.Squash, b.Squash = b.Squash, a.Squash
	return true, nil
}

// allConnections returns the regular connections followed by the self-connections.
func (n *Network) allConnections() []*Connection {
	all := make([]*Connection, 0, len(n.Connections)+len(n.SelfConns))
	all = append(all, n.Connections...)
	return append(all, n.SelfConns...)
}
