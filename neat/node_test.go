package neat

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewSource(7))
}

func TestNewNode(t *testing.T) {
	rng := testRand()

	input := NewNode(Input, rng)
	assert.Equal(t, 0.0, input.Bias)
	assert.Equal(t, Logistic, input.Squash)
	assert.Equal(t, 1.0, input.Mask)
	assert.Equal(t, 0.0, input.Self.Weight)
	assert.True(t, input.Self.IsSelf())

	for i := 0; i < 50; i++ {
		hidden := NewNode(Hidden, rng)
		assert.True(t, hidden.Bias >= -0.1 && hidden.Bias <= 0.1, "bias %v", hidden.Bias)
	}
}

func TestNodeTypeNames(t *testing.T) {
	for _, nt := range []NodeType{Hidden, Input, Output, Constant} {
		parsed, err := ParseNodeType(nt.String())
		require.NoError(t, err)
		assert.Equal(t, nt, parsed)
	}
	_, err := ParseNodeType("bias")
	assert.True(t, errors.Is(err, ErrConstruction))
}

func TestNodeConnect(t *testing.T) {
	rng := testRand()
	a, b := NewNode(Input, rng), NewNode(Output, rng)

	t.Run("Regular", func(t *testing.T) {
		conn, err := a.Connect(b, 0.5)
		require.NoError(t, err)
		assert.Equal(t, 0.5, conn.Weight)
		assert.Equal(t, 1.0, conn.Gain)
		assert.Equal(t, []*Connection{conn}, a.Out)
		assert.Equal(t, []*Connection{conn}, b.In)
		assert.True(t, a.IsProjectingTo(b))
		assert.True(t, b.IsProjectedBy(a))
		assert.False(t, b.IsProjectingTo(a))
	})

	t.Run("Duplicate", func(t *testing.T) {
		_, err := a.Connect(b, 0.1)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDuplicateEdge))
		assert.Len(t, a.Out, 1)
	})

	t.Run("Self", func(t *testing.T) {
		conn, err := b.Connect(b, 0)
		require.NoError(t, err)
		assert.Same(t, b.Self, conn)
		assert.Equal(t, 1.0, conn.Weight)
		assert.True(t, b.IsProjectingTo(b))

		_, err = b.Connect(b, 0.3)
		assert.True(t, errors.Is(err, ErrDuplicateEdge))
		assert.Equal(t, 1.0, b.Self.Weight)
	})

	t.Run("Disconnect", func(t *testing.T) {
		assert.True(t, b.Disconnect(b, false))
		assert.Equal(t, 0.0, b.Self.Weight)
		assert.False(t, b.Disconnect(b, false))

		assert.True(t, a.Disconnect(b, true))
		assert.Empty(t, a.Out)
		assert.Empty(t, b.In)
		assert.False(t, a.Disconnect(b, false))
	})
}

func TestNodeGate(t *testing.T) {
	rng := testRand()
	a, b, g := NewNode(Input, rng), NewNode(Output, rng), NewNode(Hidden, rng)
	conn, err := a.Connect(b, 1)
	require.NoError(t, err)

	g.Gate(conn)
	assert.Same(t, g, conn.Gater)
	assert.Equal(t, []*Connection{conn}, g.Gated)

	g.Bias = 2
	g.Activate()
	assert.InDelta(t, g.Activation, conn.Gain, 1e-12)

	g.Ungate(conn)
	assert.Nil(t, conn.Gater)
	assert.Empty(t, g.Gated)
	assert.Equal(t, 1.0, conn.Gain)

	g.Gate(conn)
	a.Disconnect(b, false)
	assert.Nil(t, conn.Gater)
	assert.Empty(t, g.Gated)
}

func TestNodeActivateAndPropagate(t *testing.T) {
	rng := testRand()
	a, b := NewNode(Input, rng), NewNode(Output, rng)
	b.Bias = 0
	conn, err := a.Connect(b, 0.5)
	require.NoError(t, err)

	a.Feed(1)
	out := b.Activate()
	want := 1 / (1 + math.Exp(-0.5))
	assert.InDelta(t, want, out, 1e-12)
	assert.InDelta(t, 0.5, b.State, 1e-12)
	assert.InDelta(t, want*(1-want), b.Derivative, 1e-12)
	assert.InDelta(t, 1.0, conn.Eligibility, 1e-12)

	t.Run("NoTrace", func(t *testing.T) {
		b.State = 0
		assert.InDelta(t, want, b.NoTraceActivate(), 1e-12)
	})

	t.Run("AccumulateThenCommit", func(t *testing.T) {
		b.Propagate(0.1, 0, false, 1)
		assert.Equal(t, 0.5, conn.Weight)
		assert.InDelta(t, 0.1*(1-want), conn.TotalDeltaWeight, 1e-12)

		b.Propagate(0.1, 0, true, 1)
		assert.InDelta(t, 0.5+0.2*(1-want), conn.Weight, 1e-12)
		assert.InDelta(t, 0.2*(1-want), b.Bias, 1e-12)
		assert.Equal(t, 0.0, conn.TotalDeltaWeight)
		assert.InDelta(t, 0.2*(1-want), conn.PreviousDeltaWeight, 1e-12)
	})

	t.Run("Constant", func(t *testing.T) {
		b.Type = Constant
		weight, bias := conn.Weight, b.Bias
		b.Propagate(0.1, 0, true, 0)
		assert.Equal(t, weight, conn.Weight)
		assert.Equal(t, bias, b.Bias)
	})
}

func TestNodeSelfConnectionState(t *testing.T) {
	rng := testRand()
	n := NewNode(Hidden, rng)
	n.Bias = 1
	n.Squash = Identity
	_, err := n.Connect(n, 0.5)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, n.Activate(), 1e-12)
	assert.InDelta(t, 1.5, n.Activate(), 1e-12)
	assert.InDelta(t, 1.0, n.Old, 1e-12)

	n.Clear()
	assert.Equal(t, 0.0, n.State)
	assert.Equal(t, 0.0, n.Old)
	assert.InDelta(t, 1.0, n.Activate(), 1e-12)
}

func TestNodeClearGatedGain(t *testing.T) {
	rng := testRand()
	a, b, g := NewNode(Input, rng), NewNode(Output, rng), NewNode(Hidden, rng)
	conn, err := a.Connect(b, 1)
	require.NoError(t, err)
	g.Gate(conn)
	conn.Eligibility = 3
	conn.XTrace.Nodes = []*Node{b}
	conn.XTrace.Values = []float64{1}

	b.Clear()
	assert.Equal(t, 0.0, conn.Eligibility)
	assert.Empty(t, conn.XTrace.Nodes)

	g.Clear()
	assert.Equal(t, 0.0, conn.Gain)
}

func TestNodeMutate(t *testing.T) {
	rng := testRand()
	n := NewNode(Hidden, rng)

	t.Run("ModActivation", func(t *testing.T) {
		for i := 0; i < 30; i++ {
			before := n.Squash
			require.NoError(t, n.Mutate(DefaultMutation(ModActivation), rng))
			assert.NotEqual(t, before, n.Squash)
		}
	})

	t.Run("ModActivationAllowed", func(t *testing.T) {
		m := DefaultMutation(ModActivation)
		m.Allowed = []Squash{Tanh, ReLU}
		n.Squash = Tanh
		require.NoError(t, n.Mutate(m, rng))
		assert.Equal(t, ReLU, n.Squash)
		require.NoError(t, n.Mutate(m, rng))
		assert.Equal(t, Tanh, n.Squash)
	})

	t.Run("ModBias", func(t *testing.T) {
		m := Mutation{Kind: ModBias, Min: 0.5, Max: 0.5}
		before := n.Bias
		require.NoError(t, n.Mutate(m, rng))
		assert.InDelta(t, before+0.5, n.Bias, 1e-12)
	})

	t.Run("Unknown", func(t *testing.T) {
		err := n.Mutate(DefaultMutation(AddNode), rng)
		assert.True(t, errors.Is(err, ErrUnknownMutation))
	})
}

// gatedSelfLoop wires x -> g and x -> h, with g gating both x -> h and the
// self-connection of h. All squashes are the identity and all biases zero.
func gatedSelfLoop(t *testing.T) (x, g, h *Node, cg, c1 *Connection) {
	t.Helper()
	rng := testRand()
	x, g, h = NewNode(Input, rng), NewNode(Hidden, rng), NewNode(Output, rng)
	for _, node := range []*Node{g, h} {
		node.Bias = 0
		node.Squash = Identity
	}

	var err error
	cg, err = x.Connect(g, 0.5)
	require.NoError(t, err)
	c1, err = x.Connect(h, 2)
	require.NoError(t, err)
	_, err = h.Connect(h, 0.5)
	require.NoError(t, err)
	g.Gate(c1, h.Self)
	return x, g, h, cg, c1
}

func TestNodeGatedTraces(t *testing.T) {
	x, g, h, cg, c1 := gatedSelfLoop(t)
	step := func() {
		x.Feed(1)
		g.Activate()
		h.Activate()
	}

	step()
	assert.InDelta(t, 1.0, h.State, 1e-12)
	assert.InDelta(t, 0.5, c1.Eligibility, 1e-12)
	assert.InDelta(t, 1.0, cg.Eligibility, 1e-12)
	require.Equal(t, []*Node{h}, cg.XTrace.Nodes)
	assert.InDelta(t, 2.0, cg.XTrace.Values[0], 1e-12)

	step()
	assert.InDelta(t, 1.25, h.State, 1e-12)
	assert.InDelta(t, 0.625, c1.Eligibility, 1e-12)
	// 0.5*0.5*2 decayed through the gated self-loop, plus 2 + 0.5*1 influence.
	assert.InDelta(t, 3.0, cg.XTrace.Values[0], 1e-12)

	step()
	assert.InDelta(t, 1.25, h.Old, 1e-12)
	assert.InDelta(t, 1.3125, h.State, 1e-12)
	assert.InDelta(t, 0.65625, c1.Eligibility, 1e-12)
	// Influence now carries the previous state of h: 2 + 1 + 0.5*1.25.
	assert.InDelta(t, 4.375, cg.XTrace.Values[0], 1e-12)
	assert.Len(t, c1.XTrace.Nodes, 0, "h gates nothing")

	h.Propagate(0.1, 0, false, 2.3125)
	assert.InDelta(t, 1.0, h.Error.Responsibility, 1e-12)
	assert.InDelta(t, 0.065625, c1.TotalDeltaWeight, 1e-12)

	g.Propagate(0.1, 0, true, 0)
	assert.InDelta(t, 0.0, g.Error.Projected, 1e-12)
	// (1.25 + 2*1) through x -> h plus (1.25 + 0.5*1.3125) through the self-loop.
	assert.InDelta(t, 5.15625, g.Error.Gated, 1e-12)
	assert.InDelta(t, 5.15625, g.Error.Responsibility, 1e-12)
	assert.InDelta(t, 0.4375, cg.PreviousDeltaWeight, 1e-12)
	assert.InDelta(t, 0.9375, cg.Weight, 1e-12)
	assert.Zero(t, cg.TotalDeltaWeight)
}

func TestNodeGatedTracesWithoutSelfGate(t *testing.T) {
	x, g, h, cg, _ := gatedSelfLoop(t)
	g.Ungate(h.Self)
	h.Self.Gain = 1

	for i := 0; i < 2; i++ {
		x.Feed(1)
		g.Activate()
		h.Activate()
	}
	// Only x -> h is gated, so the influence on h is its weight times x: 2.
	// The trace decays through the ungated self weight: 0.5*2 + 2.
	assert.InDelta(t, 3.0, cg.XTrace.Values[0], 1e-12)

	h.Propagate(0.1, 0, false, h.Activation+1)
	g.Propagate(0.1, 0, false, 0)
	assert.InDelta(t, 2.0, g.Error.Gated, 1e-12)
}

func TestNodeFeedSetsGatedGain(t *testing.T) {
	rng := testRand()
	x, a, b := NewNode(Input, rng), NewNode(Input, rng), NewNode(Output, rng)
	conn, err := a.Connect(b, 1)
	require.NoError(t, err)
	x.Gate(conn)

	x.Feed(0.25)
	assert.Equal(t, 0.25, conn.Gain)

	x.Clear()
	assert.Equal(t, 0.0, conn.Gain)
}
