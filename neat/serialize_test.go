package neat

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTrip(t *testing.T) {
	n := evolvedNetwork(t, 3, 2, 150)
	n.Dropout = 0.25

	data, err := json.Marshal(n)
	require.NoError(t, err)

	var decoded Network
	require.NoError(t, json.Unmarshal(data, &decoded))
	assertConsistent(t, &decoded)

	assert.Equal(t, n.ToJSON(), decoded.ToJSON())
	assert.Equal(t, n.Input, decoded.Input)
	assert.Equal(t, n.Output, decoded.Output)
	assert.Equal(t, 0.25, decoded.Dropout)
	assert.Len(t, decoded.SelfConns, len(n.SelfConns))
	assert.Len(t, decoded.Gates, len(n.Gates))
}

func TestJSONShape(t *testing.T) {
	n := newTestNetwork(t, 1, 1)
	require.NoError(t, n.Gate(n.Nodes[1], n.Connections[0]))
	_, err := n.ConnectRandom(n.Nodes[1], n.Nodes[1])
	require.NoError(t, err)

	data, err := json.Marshal(n)
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 1.0, raw["input"])
	assert.Equal(t, 1.0, raw["output"])

	nodes := raw["nodes"].([]interface{})
	require.Len(t, nodes, 2)
	assert.Equal(t, "input", nodes[0].(map[string]interface{})["type"])
	assert.Equal(t, "LOGISTIC", nodes[1].(map[string]interface{})["squash"])

	conns := raw["connections"].([]interface{})
	require.Len(t, conns, 2)
	assert.Equal(t, 1.0, conns[0].(map[string]interface{})["gater"])
	self := conns[1].(map[string]interface{})
	assert.Equal(t, self["from"], self["to"])
	assert.Nil(t, self["gater"])
	assert.Contains(t, self, "gater")
}

func TestFromJSONErrors(t *testing.T) {
	valid := func() GenomeJSON {
		return GenomeJSON{
			Input:  1,
			Output: 1,
			Nodes: []NodeJSON{
				{Index: 0, Squash: "LOGISTIC", Type: "input"},
				{Index: 1, Squash: "TANH", Type: "hidden"},
				{Index: 2, Squash: "IDENTITY", Type: "output"},
			},
			Connections: []ConnectionJSON{
				{From: 0, To: 1, Weight: 0.5},
				{From: 1, To: 2, Weight: -0.5},
			},
		}
	}

	n, err := FromJSON(valid(), testRand())
	require.NoError(t, err)
	assert.Equal(t, Tanh, n.Nodes[1].Squash)
	assertConsistent(t, n)

	gater := 5
	for name, tc := range map[string]struct {
		mutate func(g *GenomeJSON)
		want   error
	}{
		"UnknownSquash":   {func(g *GenomeJSON) { g.Nodes[1].Squash = "SWISH" }, ErrUnknownSquash},
		"UnknownType":     {func(g *GenomeJSON) { g.Nodes[1].Type = "bias" }, ErrConstruction},
		"InputNotFirst":   {func(g *GenomeJSON) { g.Nodes[0].Type = "hidden" }, ErrConstruction},
		"OutputNotLast":   {func(g *GenomeJSON) { g.Nodes[2].Type = "hidden" }, ErrConstruction},
		"StrayOutput":     {func(g *GenomeJSON) { g.Nodes[1].Type = "output" }, ErrConstruction},
		"TooFewNodes":     {func(g *GenomeJSON) { g.Input = 3 }, ErrConstruction},
		"EndpointRange":   {func(g *GenomeJSON) { g.Connections[0].To = 7 }, ErrConstruction},
		"GaterRange":      {func(g *GenomeJSON) { g.Connections[0].Gater = &gater }, ErrConstruction},
		"DuplicateEdge":   {func(g *GenomeJSON) { g.Connections = append(g.Connections, g.Connections[0]) }, ErrDuplicateEdge},
		"NonPositiveSize": {func(g *GenomeJSON) { g.Output = 0 }, ErrConstruction},
	} {
		t.Run(name, func(t *testing.T) {
			g := valid()
			tc.mutate(&g)
			_, err := FromJSON(g, testRand())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), err.Error())
		})
	}
}

func TestClone(t *testing.T) {
	n := evolvedNetwork(t, 2, 1, 50)
	n.Score = 3
	clone, err := n.Clone()
	require.NoError(t, err)

	assert.NotEqual(t, n.ID, clone.ID)
	assert.Equal(t, 3.0, clone.Score)
	assert.Equal(t, n.ToJSON(), clone.ToJSON())

	_, err = clone.Mutate(DefaultMutation(AddNode))
	require.NoError(t, err)
	assert.NotEqual(t, len(n.Nodes), len(clone.Nodes))
}

func TestSerialize(t *testing.T) {
	n := newTestNetwork(t, 2, 1)
	out := n.Nodes[2]
	require.NoError(t, n.Gate(n.Nodes[0], n.Connections[1]))
	_, err := n.Connect(out, out, 0.75)
	require.NoError(t, err)

	flat := n.Serialize()
	assert.Len(t, flat.Activations, 3)
	assert.Len(t, flat.States, 3)

	w0, w1 := n.Connections[0].Weight, n.Connections[1].Weight
	want := []float64{
		2, 1,
		2, out.Bias, float64(Logistic), 0.75, -1,
		0, w0, -1,
		1, w1, 0,
		FlatTerminator,
	}
	assert.Equal(t, want, flat.Data)
}
