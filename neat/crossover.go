package neat

import (
	"fmt"
	"math/rand"
	"sort"
)

// connectionGene is a connection expressed in parent node indexes.
type connectionGene struct {
	From   int
	To     int
	Weight float64
	Gater  int // -1 when ungated
}

// genes maps innovation ids to the connection and self-connection genes of n.
func (n *Network) genes() map[int]connectionGene {
	index := make(map[*Node]int, len(n.Nodes))
	for i, node := range n.Nodes {
		index[node] = i
	}

	genes := make(map[int]connectionGene, len(n.Connections)+len(n.SelfConns))
	for _, conn := range n.allConnections() {
		gene := connectionGene{
			From:   index[conn.From],
			To:     index[conn.To],
			Weight: conn.Weight,
			Gater:  -1,
		}
		if conn.Gater != nil {
			gene.Gater = index[conn.Gater]
		}
		genes[InnovationID(gene.From, gene.To)] = gene
	}
	return genes
}

func sortedKeys(genes map[int]connectionGene) []int {
	keys := make([]int, 0, len(genes))
	for k := range genes {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// cloneNode copies the heritable attributes of a node into a fresh node.
func cloneNode(node *Node) *Node {
	clone := &Node{
		Bias:   node.Bias,
		Squash: node.Squash,
		Type:   node.Type,
		Mask:   1,
	}
	clone.Self = NewConnection(clone, clone, 0)
	return clone
}

// CrossOver creates an offspring from two parents with equal input and output
// sizes. Connection genes are aligned by innovation id: matching genes come from
// a random parent, disjoint and excess genes only from a parent that is not
// less fit (by Score) than the other, or from both when equal is set. rng drives
// every random choice and becomes the offspring's random source.
func CrossOver(network1, network2 *Network, equal bool, rng *rand.Rand) (*Network, error) {
	if network1.Input != network2.Input || network1.Output != network2.Output {
		return nil, fmt.Errorf("%w: networks don't have the same input/output size", ErrConstruction)
	}
	if rng == nil {
		rng = NewRand(0)
	}

	offspring := newEmptyNetwork(network1.Input, network1.Output, rng)
	offspring.diag = network1.diag

	score1, score2 := network1.Score, network2.Score
	len1, len2 := len(network1.Nodes), len(network2.Nodes)

	// Determine offspring node size.
	var size int
	switch {
	case equal || score1 == score2:
		lo, hi := len1, len2
		if lo > hi {
			lo, hi = hi, lo
		}
		size = lo + rng.Intn(hi-lo+1)
	case score1 > score2:
		size = len1
	default:
		size = len2
	}

	outputSize := network1.Output
	nodeAt := func(n *Network, i int) *Node {
		if i < len(n.Nodes) {
			return n.Nodes[i]
		}
		return nil
	}

	// Assign nodes from parents to offspring.
	for i := 0; i < size; i++ {
		var node, other *Node
		if i < size-outputSize {
			node, other = nodeAt(network1, i), nodeAt(network2, i)
			if rng.Float64() < 0.5 {
				node, other = other, node
			}
			if (node == nil || node.Type == Output) && other != nil {
				node = other
			}
		} else if rng.Float64() >= 0.5 {
			node = network1.Nodes[len1+i-size]
		} else {
			node = network2.Nodes[len2+i-size]
		}
		offspring.Nodes = append(offspring.Nodes, cloneNode(node))
	}

	genes1, genes2 := network1.genes(), network2.genes()
	keys1, keys2 := sortedKeys(genes1), sortedKeys(genes2)

	// Split matching genes from disjoint and excess genes.
	var inherited []connectionGene
	for i := len(keys1) - 1; i >= 0; i-- {
		key := keys1[i]
		if gene2, ok := genes2[key]; ok {
			gene := genes1[key]
			if rng.Float64() < 0.5 {
				gene = gene2
			}
			inherited = append(inherited, gene)
			delete(genes2, key)
		} else if score1 >= score2 || equal {
			inherited = append(inherited, genes1[key])
		}
	}
	if score2 >= score1 || equal {
		for _, key := range keys2 {
			if gene, ok := genes2[key]; ok {
				inherited = append(inherited, gene)
			}
		}
	}

	for _, gene := range inherited {
		if gene.From >= size || gene.To >= size {
			continue
		}
		conn, err := offspring.Connect(offspring.Nodes[gene.From], offspring.Nodes[gene.To], gene.Weight)
		if err != nil {
			return nil, fmt.Errorf("failed to inherit connection %d->%d: %w", gene.From, gene.To, err)
		}
		conn.Weight = gene.Weight
		if gene.Gater != -1 && gene.Gater < size {
			if err := offspring.Gate(offspring.Nodes[gene.Gater], conn); err != nil {
				return nil, fmt.Errorf("failed to inherit gate on %d->%d: %w", gene.From, gene.To, err)
			}
		}
	}

	offspring.diag.debugf("crossover %s x %s -> %s (%d nodes, %d genes)",
		network1.ID, network2.ID, offspring.ID, size, len(inherited))
	return offspring, nil
}

// Merge chains two networks: the outputs of network1 feed what used to be the
// inputs of network2. Both parents are copied, never modified. Connections and
// gates that referenced an input node of network2 are moved to the mirrored
// output node of network1 (network2 input k maps to the k-th node from the end
// of network1).
func Merge(network1, network2 *Network) (*Network, error) {
	if network1.Output != network2.Input {
		return nil, fmt.Errorf("%w: output size of network1 (%d) should be the same as the input size of network2 (%d)",
			ErrConstruction, network1.Output, network2.Input)
	}

	first, err := network1.Clone()
	if err != nil {
		return nil, err
	}
	second, err := network2.Clone()
	if err != nil {
		return nil, err
	}

	mirror := make(map[*Node]*Node, second.Input)
	for k := 0; k < second.Input; k++ {
		mirror[second.Nodes[k]] = first.Nodes[len(first.Nodes)-1-k]
	}

	// Redirect every connection touching an input of network2.
	for _, conn := range second.Connections {
		if target, ok := mirror[conn.From]; ok {
			conn.From.Out, _ = removeConnection(conn.From.Out, conn)
			conn.From = target
			target.Out = append(target.Out, conn)
		}
		if target, ok := mirror[conn.To]; ok {
			conn.To.In, _ = removeConnection(conn.To.In, conn)
			conn.To = target
			target.In = append(target.In, conn)
		}
	}
	for _, conn := range second.Gates {
		if target, ok := mirror[conn.Gater]; ok {
			conn.Gater.Gated, _ = removeConnection(conn.Gater.Gated, conn)
			conn.Gater = target
			target.Gated = append(target.Gated, conn)
		}
	}

	for _, node := range first.Nodes[len(first.Nodes)-first.Output:] {
		node.Type = Hidden
	}

	first.Nodes = append(first.Nodes, second.Nodes[second.Input:]...)
	first.Connections = append(first.Connections, second.Connections...)
	for _, conn := range second.SelfConns {
		if _, ok := mirror[conn.From]; !ok {
			first.SelfConns = append(first.SelfConns, conn)
		}
	}
	for _, conn := range second.Gates {
		if _, dropped := mirror[conn.From]; dropped && conn.IsSelf() {
			conn.Gater.Ungate(conn)
			continue
		}
		first.Gates = append(first.Gates, conn)
	}
	first.Output = second.Output

	first.diag = network1.diag
	first.diag.debugf("merged %s into %s -> %s", network2.ID, network1.ID, first.ID)
	return first, nil
}
