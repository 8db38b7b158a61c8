// Package neat provides a Go implementation of gated recurrent NEAT genomes.
//
// A genome is a network of nodes with per-node biases and squash functions,
// weighted connections, optional self-connections and gates, where a third
// node's activation scales a connection. Networks are activated with
// eligibility and extended traces, so they can be trained online with an
// error propagation rule, and evolved with structural and parametric
// mutation, innovation-aligned crossover and merging.
//
// The implementation lives in the neat subpackage; neat/nn evaluates the
// flattened numeric encoding of a genome.
//
// Basic usage:
//
//	// Load configuration
//	config, err := neat.LoadConfig("path/to/config.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	// Create a network and train it
//	network, err := config.NewNetwork(2, 1)
//	if err != nil {
//		log.Fatalf("Error creating network: %v", err)
//	}
//	opts, _ := config.TrainOptions()
//	if _, err := network.Train(set, opts); err != nil {
//		log.Fatalf("Error training network: %v", err)
//	}
//
//	// Evolve its topology
//	methods, _ := config.Mutations()
//	if _, err := network.Mutate(methods[0]); err != nil {
//		log.Fatalf("Error mutating network: %v", err)
//	}
package neat
