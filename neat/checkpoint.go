package neat

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"

	"github.com/google/uuid"
)

// CheckpointData is the on-disk content of a checkpoint: a generation counter
// and the genomes alive at that point.
type CheckpointData struct {
	Generation int              `json:"generation"`
	Genomes    []CheckpointGenome `json:"genomes"`
}

// CheckpointGenome is one saved network with its identity and fitness.
type CheckpointGenome struct {
	ID     uuid.UUID  `json:"id"`
	Score  float64    `json:"score"`
	Genome GenomeJSON `json:"genome"`
}

// SaveCheckpoint writes networks to a gzip compressed JSON file.
func SaveCheckpoint(filePath string, generation int, networks []*Network) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	// Use gzip for compression
	gzWriter := gzip.NewWriter(file)

	data := CheckpointData{
		Generation: generation,
		Genomes:    make([]CheckpointGenome, 0, len(networks)),
	}
	for _, n := range networks {
		data.Genomes = append(data.Genomes, CheckpointGenome{
			ID:     n.ID,
			Score:  n.Score,
			Genome: n.ToJSON(),
		})
	}

	if err := json.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return fmt.Errorf("failed to encode checkpoint data: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush checkpoint file '%s': %w", filePath, err)
	}
	return nil
}

// LoadCheckpoint reads a checkpoint written by SaveCheckpoint. The restored
// networks keep their saved IDs and scores and share rng.
func LoadCheckpoint(checkpointPath string, rng *rand.Rand) (generation int, networks []*Network, err error) {
	file, err := os.Open(checkpointPath)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to open checkpoint file '%s': %w", checkpointPath, err)
	}
	defer file.Close()

	// Use gzip for decompression
	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	var data CheckpointData
	if err := json.NewDecoder(gzReader).Decode(&data); err != nil {
		return 0, nil, fmt.Errorf("failed to decode checkpoint data: %w", err)
	}

	if rng == nil {
		rng = NewRand(0)
	}
	networks = make([]*Network, 0, len(data.Genomes))
	for i, saved := range data.Genomes {
		n, err := FromJSON(saved.Genome, rng)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to restore genome %d (%s) from checkpoint: %w", i, saved.ID, err)
		}
		n.ID = saved.ID
		n.Score = saved.Score
		networks = append(networks, n)
	}
	return data.Generation, networks, nil
}
