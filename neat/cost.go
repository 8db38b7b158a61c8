package neat

import (
	"fmt"
	"math"

	"github.com/iancoleman/strcase"
	"gonum.org/v1/gonum/floats"
)

// CostFunc measures the error between a target and an output of equal length.
type CostFunc func(target, output []float64) float64

// Cost function registry, keyed by config name.
var costFunctions = map[string]CostFunc{
	"CROSS_ENTROPY": CrossEntropy,
	"MSE":           MSE,
	"BINARY":        Binary,
	"MAE":           MAE,
	"MAPE":          MAPE,
	"MSLE":          MSLE,
}

// GetCost resolves a cost function by name ("MSE", "cross_entropy", "crossEntropy", ...).
func GetCost(name string) (CostFunc, error) {
	fn, ok := costFunctions[strcase.ToScreamingSnake(name)]
	if !ok {
		return nil, fmt.Errorf("unknown cost function '%s'", name)
	}
	return fn, nil
}

// outputs are clipped away from zero before taking logarithms.
const costEpsilon = 1e-15

// CrossEntropy is the mean binary cross entropy.
func CrossEntropy(target, output []float64) float64 {
	sum := 0.0
	for i, o := range output {
		o = math.Max(o, costEpsilon)
		sum -= target[i]*math.Log(o) + (1-target[i])*math.Log(1-o)
	}
	return sum / float64(len(output))
}

// MSE is the mean squared error.
func MSE(target, output []float64) float64 {
	diff := make([]float64, len(output))
	floats.SubTo(diff, target, output)
	return floats.Dot(diff, diff) / float64(len(output))
}

// Binary counts the outputs that round to a different half-unit than their target.
func Binary(target, output []float64) float64 {
	misses := 0.0
	for i, o := range output {
		if math.Round(target[i]*2) != math.Round(o*2) {
			misses++
		}
	}
	return misses
}

// MAE is the mean absolute error.
func MAE(target, output []float64) float64 {
	return floats.Distance(target, output, 1) / float64(len(output))
}

// MAPE is the mean absolute percentage error.
func MAPE(target, output []float64) float64 {
	sum := 0.0
	for i, o := range output {
		sum += math.Abs((o - target[i]) / math.Max(target[i], costEpsilon))
	}
	return sum / float64(len(output))
}

// MSLE sums the log differences between target and output.
func MSLE(target, output []float64) float64 {
	sum := 0.0
	for i, o := range output {
		sum += math.Log(math.Max(target[i], costEpsilon)) - math.Log(math.Max(o, costEpsilon))
	}
	return sum
}
