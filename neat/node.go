package neat

import (
	"fmt"
	"math/rand"
)

// NodeType is the role of a node within a network.
type NodeType int

const (
	Hidden NodeType = iota
	Input
	Output
	// Constant nodes propagate error but never update their incoming weights or bias.
	Constant
)

var nodeTypeNames = map[NodeType]string{
	Hidden:   "hidden",
	Input:    "input",
	Output:   "output",
	Constant: "constant",
}

// String returns the wire name of the node type.
func (t NodeType) String() string {
	if name, ok := nodeTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("NodeType(%d)", int(t))
}

// ParseNodeType resolves a wire name ("input", "hidden", "output", "constant").
func ParseNodeType(name string) (NodeType, error) {
	for t, n := range nodeTypeNames {
		if n == name {
			return t, nil
		}
	}
	return Hidden, fmt.Errorf("%w: unknown node type %q", ErrConstruction, name)
}

// NodeError holds the error terms computed during propagation.
type NodeError struct {
	Responsibility float64
	Projected      float64
	Gated          float64
}

// Node is a single unit of a network. In, Out and Gated are maintained by the
// connect/disconnect/gate/ungate methods; edit them only through those (or
// through the owning Network, which also keeps its global indexes in step).
type Node struct {
	Bias   float64
	Squash Squash
	Type   NodeType

	Activation float64
	State      float64
	Old        float64 // state before the last traced activation
	Derivative float64
	// Mask is 0 while the node is dropped out, 1 otherwise.
	Mask float64

	PreviousDeltaBias float64
	TotalDeltaBias    float64

	In    []*Connection
	Out   []*Connection
	Gated []*Connection
	// Self is always allocated; a zero weight means there is no self-connection.
	Self *Connection

	Error NodeError
}

// NewNode creates an unconnected node. Input nodes start with a zero bias, all
// other nodes with a bias drawn uniformly from [-0.1, 0.1].
func NewNode(t NodeType, rng *rand.Rand) *Node {
	n := &Node{
		Squash: Logistic,
		Type:   t,
		Mask:   1,
	}
	if t != Input {
		n.Bias = uniform(rng, -0.1, 0.1)
	}
	n.Self = NewConnection(n, n, 0)
	return n
}

// String returns a string representation of the Node.
func (n *Node) String() string {
	return fmt.Sprintf("Node(Type: %s, Bias: %.3f, Squash: %s, In: %d, Out: %d, Gated: %d)",
		n.Type, n.Bias, n.Squash, len(n.In), len(n.Out), len(n.Gated))
}

// Feed sets the activation of the node directly, as done for input nodes.
// Connections gated by the node take the value as their gain.
func (n *Node) Feed(value float64) float64 {
	n.Activation = value
	for _, conn := range n.Gated {
		conn.Gain = value
	}
	return n.Activation
}

// Activate computes the node's activation and updates the eligibility and
// extended traces of its incoming connections.
func (n *Node) Activate() float64 {
	n.Old = n.State

	n.State = n.Self.Gain*n.Self.Weight*n.State + n.Bias
	for _, conn := range n.In {
		n.State += conn.From.Activation * conn.Weight * conn.Gain
	}

	n.Activation = n.Squash.Apply(n.State, false) * n.Mask
	n.Derivative = n.Squash.Apply(n.State, true)

	// Collect the nodes whose state this node influences through gating, and
	// how strongly. The gain update must come after the influence is read.
	var nodes []*Node
	var influences []float64
	for _, conn := range n.Gated {
		target := conn.To
		if i := indexOf(nodes, target); i > -1 {
			influences[i] += conn.Weight * conn.From.Activation
		} else {
			influence := conn.Weight * conn.From.Activation
			if target.Self.Gater == n {
				influence += target.Old
			}
			nodes = append(nodes, target)
			influences = append(influences, influence)
		}
		conn.Gain = n.Activation
	}

	for _, conn := range n.In {
		conn.Eligibility = n.Self.Gain*n.Self.Weight*conn.Eligibility + conn.From.Activation*conn.Gain

		for j, target := range nodes {
			influence := influences[j]
			if i := conn.XTrace.index(target); i > -1 {
				conn.XTrace.Values[i] = target.Self.Gain*target.Self.Weight*conn.XTrace.Values[i] +
					n.Derivative*conn.Eligibility*influence
			} else {
				conn.XTrace.Nodes = append(conn.XTrace.Nodes, target)
				conn.XTrace.Values = append(conn.XTrace.Values, n.Derivative*conn.Eligibility*influence)
			}
		}
	}

	return n.Activation
}

// NoTraceActivate computes the node's activation without any trace bookkeeping.
func (n *Node) NoTraceActivate() float64 {
	n.State = n.Self.Gain*n.Self.Weight*n.State + n.Bias
	for _, conn := range n.In {
		n.State += conn.From.Activation * conn.Weight * conn.Gain
	}

	n.Activation = n.Squash.Apply(n.State, false)
	for _, conn := range n.Gated {
		conn.Gain = n.Activation
	}
	return n.Activation
}

// Propagate computes the node's error terms and accumulates weight and bias
// deltas, committing them when update is set. target is only read for output
// nodes.
func (n *Node) Propagate(rate, momentum float64, update bool, target float64) {
	if n.Type == Output {
		n.Error.Responsibility = target - n.Activation
		n.Error.Projected = n.Error.Responsibility
	} else {
		sum := 0.0
		for _, conn := range n.Out {
			sum += conn.To.Error.Responsibility * conn.Weight * conn.Gain
		}
		n.Error.Projected = n.Derivative * sum

		sum = 0.0
		for _, conn := range n.Gated {
			node := conn.To
			influence := 0.0
			if node.Self.Gater == n {
				influence = node.Old
			}
			influence += conn.Weight * conn.From.Activation
			sum += node.Error.Responsibility * influence
		}
		n.Error.Gated = n.Derivative * sum

		n.Error.Responsibility = n.Error.Projected + n.Error.Gated
	}

	if n.Type == Constant {
		return
	}

	for _, conn := range n.In {
		gradient := n.Error.Projected * conn.Eligibility
		for j, node := range conn.XTrace.Nodes {
			gradient += node.Error.Responsibility * conn.XTrace.Values[j]
		}

		conn.TotalDeltaWeight += rate * gradient * n.Mask
		if update {
			conn.TotalDeltaWeight += momentum * conn.PreviousDeltaWeight
			conn.Weight += conn.TotalDeltaWeight
			conn.PreviousDeltaWeight = conn.TotalDeltaWeight
			conn.TotalDeltaWeight = 0
		}
	}

	n.TotalDeltaBias += rate * n.Error.Responsibility
	if update {
		n.TotalDeltaBias += momentum * n.PreviousDeltaBias
		n.Bias += n.TotalDeltaBias
		n.PreviousDeltaBias = n.TotalDeltaBias
		n.TotalDeltaBias = 0
	}
}

// Connect creates a connection from n to target and links it into both nodes.
// Connecting a node to itself enables its self-connection (weight 0 selects the
// default self weight of 1). An existing edge yields ErrDuplicateEdge together
// with the existing connection.
func (n *Node) Connect(target *Node, weight float64) (*Connection, error) {
	if target == n {
		if n.Self.Weight != 0 {
			return n.Self, fmt.Errorf("%w: self-connection already exists", ErrDuplicateEdge)
		}
		if weight == 0 {
			weight = 1
		}
		n.Self.Weight = weight
		return n.Self, nil
	}
	if n.IsProjectingTo(target) {
		return nil, fmt.Errorf("%w: already projecting to target node", ErrDuplicateEdge)
	}

	conn := NewConnection(n, target, weight)
	target.In = append(target.In, conn)
	n.Out = append(n.Out, conn)
	return conn, nil
}

// Disconnect removes the connection from n to target, ungating it first. A
// self-disconnection zeroes the self weight. With twoSided the reverse edge is
// removed as well. It reports whether an edge from n to target was removed.
func (n *Node) Disconnect(target *Node, twoSided bool) bool {
	if n == target {
		found := n.Self.Weight != 0
		n.Self.Weight = 0
		return found
	}

	found := false
	for i, conn := range n.Out {
		if conn.To != target {
			continue
		}
		n.Out = append(n.Out[:i], n.Out[i+1:]...)
		target.In, _ = removeConnection(target.In, conn)
		if conn.Gater != nil {
			conn.Gater.Ungate(conn)
		}
		found = true
		break
	}

	if twoSided {
		target.Disconnect(n, false)
	}
	return found
}

// Gate makes n the gater of the given connections.
func (n *Node) Gate(conns ...*Connection) {
	for _, conn := range conns {
		n.Gated = append(n.Gated, conn)
		conn.Gater = n
	}
}

// Ungate detaches n from the given connections and resets their gain.
func (n *Node) Ungate(conns ...*Connection) {
	for i := len(conns) - 1; i >= 0; i-- {
		conn := conns[i]
		n.Gated, _ = removeConnection(n.Gated, conn)
		conn.Gater = nil
		conn.Gain = 1
	}
}

// Clear resets the node's runtime context: activation, state, errors and the
// traces of its incoming connections. Gains of gated connections drop to zero.
func (n *Node) Clear() {
	for _, conn := range n.In {
		conn.Eligibility = 0
		conn.XTrace.reset()
	}
	for _, conn := range n.Gated {
		conn.Gain = 0
	}
	n.Error = NodeError{}
	n.Old, n.State, n.Activation = 0, 0, 0
}

// Mutate applies a node-level mutation. Only ModActivation and ModBias apply to
// single nodes.
func (n *Node) Mutate(m Mutation, rng *rand.Rand) error {
	switch m.Kind {
	case ModActivation:
		allowed := m.Allowed
		if len(allowed) == 0 {
			allowed = AllSquashes()
		}
		current := -1
		for i, s := range allowed {
			if s == n.Squash {
				current = i
				break
			}
		}
		offset := 1
		if len(allowed) > 1 {
			offset += rng.Intn(len(allowed) - 1)
		}
		n.Squash = allowed[(current+offset)%len(allowed)]
	case ModBias:
		n.Bias += uniform(rng, m.Min, m.Max)
	default:
		return fmt.Errorf("%w: %s cannot be applied to a node", ErrUnknownMutation, m.Kind)
	}
	return nil
}

// IsProjectingTo reports whether n has an outgoing connection to node.
func (n *Node) IsProjectingTo(node *Node) bool {
	if node == n {
		return n.Self.Weight != 0
	}
	for _, conn := range n.Out {
		if conn.To == node {
			return true
		}
	}
	return false
}

// IsProjectedBy reports whether node has an outgoing connection to n.
func (n *Node) IsProjectedBy(node *Node) bool {
	if node == n {
		return n.Self.Weight != 0
	}
	for _, conn := range n.In {
		if conn.From == node {
			return true
		}
	}
	return false
}
