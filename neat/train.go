package neat

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Sample is one input/target pair of a data set.
type Sample struct {
	Input  []float64 `json:"input"`
	Output []float64 `json:"output"`
}

// CrossValidation holds back the tail of the training set for testing.
type CrossValidation struct {
	TestSize  float64 // fraction of the set used for testing
	TestError float64 // training stops once the test error reaches this value
}

// TrainOptions controls Network.Train. At least one of Error and Iterations must
// be positive.
type TrainOptions struct {
	Rate       float64
	Momentum   float64
	Dropout    float64
	BatchSize  int     // 0 selects online learning (1)
	Iterations int     // 0 trains until Error is reached
	Error      float64 // 0 trains for Iterations
	Cost       CostFunc
	RatePolicy RatePolicy
	Shuffle    bool
	Clear      bool
	LogEvery   int // log progress every LogEvery iterations, 0 disables

	CrossValidate *CrossValidation
	// Schedule, when set, is called after every iteration.
	Schedule func(iteration int, err float64)
}

// DefaultTrainOptions returns the options used when a field is left zero.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		Rate:       0.3,
		BatchSize:  1,
		Error:      0.05,
		Cost:       MSE,
		RatePolicy: FixedRate(),
	}
}

// TrainResult summarises a training run.
type TrainResult struct {
	Error      float64
	Iterations int
	Time       time.Duration
}

// Train adjusts weights and biases over set with the traced activation and
// propagation rule until the error target or the iteration limit is reached.
// When dropout was used, the masks of hidden nodes are left at 1-Dropout so
// traced inference sees the expected activation scale.
func (n *Network) Train(set []Sample, opts TrainOptions) (TrainResult, error) {
	if len(set) == 0 {
		return TrainResult{}, errors.New("training set is empty")
	}
	if err := n.checkSet(set); err != nil {
		return TrainResult{}, err
	}
	if opts.Iterations <= 0 && opts.Error <= 0 {
		return TrainResult{}, errors.New("at least one of the following options must be specified: error, iterations")
	}

	defaults := DefaultTrainOptions()
	if opts.Rate == 0 {
		n.diag.warningf("using default learning rate %v", defaults.Rate)
		opts.Rate = defaults.Rate
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaults.BatchSize
	}
	if opts.Cost == nil {
		opts.Cost = defaults.Cost
	}
	if opts.RatePolicy == nil {
		opts.RatePolicy = defaults.RatePolicy
	}
	if opts.BatchSize > len(set) {
		return TrainResult{}, fmt.Errorf("batch size (%d) must be smaller or equal to dataset length (%d)", opts.BatchSize, len(set))
	}

	targetError := opts.Error
	if targetError <= 0 {
		targetError = -1
	}
	n.Dropout = opts.Dropout

	trainSet, testSet := set, []Sample(nil)
	if cv := opts.CrossValidate; cv != nil {
		numTrain := int(math.Ceil((1 - cv.TestSize) * float64(len(set))))
		if numTrain <= 0 || numTrain >= len(set) {
			return TrainResult{}, fmt.Errorf("cross validation test size %v leaves an empty train or test set", cv.TestSize)
		}
		trainSet, testSet = set[:numTrain], set[numTrain:]
	}

	if opts.Shuffle {
		trainSet = append([]Sample(nil), trainSet...)
	}

	start := time.Now()
	iteration := 0
	currentError := 1.0
	for currentError > targetError && (opts.Iterations <= 0 || iteration < opts.Iterations) {
		if opts.CrossValidate != nil && currentError <= opts.CrossValidate.TestError {
			break
		}
		iteration++
		rate := opts.RatePolicy(opts.Rate, iteration)

		trainError := n.trainSet(trainSet, opts.BatchSize, rate, opts.Momentum, opts.Cost)
		if opts.Clear {
			n.Clear()
		}
		currentError = trainError
		if testSet != nil {
			result, err := n.Test(testSet, opts.Cost)
			if err != nil {
				return TrainResult{}, err
			}
			currentError = result.Error
			if opts.Clear {
				n.Clear()
			}
		}

		if opts.Shuffle {
			n.rng.Shuffle(len(trainSet), func(i, j int) {
				trainSet[i], trainSet[j] = trainSet[j], trainSet[i]
			})
		}
		if opts.LogEvery > 0 && iteration%opts.LogEvery == 0 {
			n.diag.infof("iteration %d error %.6f rate %.6f", iteration, currentError, rate)
		}
		if opts.Schedule != nil {
			opts.Schedule(iteration, currentError)
		}
	}

	if opts.Clear {
		n.Clear()
	}
	n.scaleDropoutMasks()

	return TrainResult{Error: currentError, Iterations: iteration, Time: time.Since(start)}, nil
}

// trainSet runs one epoch and returns the mean training error.
func (n *Network) trainSet(set []Sample, batchSize int, rate, momentum float64, cost CostFunc) float64 {
	sum := 0.0
	for i, sample := range set {
		update := (i+1)%batchSize == 0 || i+1 == len(set)
		// Shapes were checked up front.
		output, _ := n.Activate(sample.Input, true)
		_ = n.Propagate(rate, momentum, update, sample.Output)
		sum += cost(sample.Output, output)
	}
	return sum / float64(len(set))
}

// TestResult summarises a Test run.
type TestResult struct {
	Error float64
	Time  time.Duration
}

// Test returns the mean cost of the network over set without changing any
// weights or masks. A nil cost selects MSE.
func (n *Network) Test(set []Sample, cost CostFunc) (TestResult, error) {
	if len(set) == 0 {
		return TestResult{}, errors.New("test set is empty")
	}
	if err := n.checkSet(set); err != nil {
		return TestResult{}, err
	}
	if cost == nil {
		cost = MSE
	}

	start := time.Now()
	sum := 0.0
	for _, sample := range set {
		output, _ := n.NoTraceActivate(sample.Input)
		sum += cost(sample.Output, output)
	}
	return TestResult{Error: sum / float64(len(set)), Time: time.Since(start)}, nil
}

func (n *Network) checkSet(set []Sample) error {
	for i, sample := range set {
		if len(sample.Input) != n.Input || len(sample.Output) != n.Output {
			return fmt.Errorf("%w: sample %d has %d inputs and %d outputs, network has %d and %d",
				ErrShapeMismatch, i, len(sample.Input), len(sample.Output), n.Input, n.Output)
		}
	}
	return nil
}

func (n *Network) scaleDropoutMasks() {
	if n.Dropout == 0 {
		return
	}
	for _, node := range n.Nodes {
		if node.Type == Hidden || node.Type == Constant {
			node.Mask = 1 - n.Dropout
		}
	}
}
