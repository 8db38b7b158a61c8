package neat

import (
	"math"
	"math/rand"
	"time"
)

// clamp restricts a value to a given range [minVal, maxVal].
func clamp(value, minVal, maxVal float64) float64 {
	return math.Max(minVal, math.Min(value, maxVal))
}

// uniform draws a value in [minVal, maxVal).
func uniform(rng *rand.Rand, minVal, maxVal float64) float64 {
	return rng.Float64()*(maxVal-minVal) + minVal
}

// randomWeight draws the default initial weight of a new connection.
func randomWeight(rng *rand.Rand) float64 {
	return uniform(rng, -0.1, 0.1)
}

// NewRand returns a random source seeded with seed, or with the current time when
// seed is zero.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// indexOf returns the position of node in nodes, or -1.
func indexOf(nodes []*Node, node *Node) int {
	for i, n := range nodes {
		if n == node {
			return i
		}
	}
	return -1
}

// removeConnection deletes the first occurrence of conn from list, preserving order.
func removeConnection(list []*Connection, conn *Connection) ([]*Connection, bool) {
	for i, c := range list {
		if c == conn {
			return append(list[:i], list[i+1:]...), true
		}
	}
	return list, false
}
