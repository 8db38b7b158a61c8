package neat

import (
	"fmt"
	"math"
	"strings"
)

// RatePolicy derives the learning rate of an iteration from the base rate.
type RatePolicy func(baseRate float64, iteration int) float64

// FixedRate keeps the base rate.
func FixedRate() RatePolicy {
	return func(baseRate float64, _ int) float64 {
		return baseRate
	}
}

// StepRate multiplies the rate by gamma every stepSize iterations. Zero
// arguments select gamma 0.9 and step size 100.
func StepRate(gamma float64, stepSize int) RatePolicy {
	if gamma == 0 {
		gamma = 0.9
	}
	if stepSize == 0 {
		stepSize = 100
	}
	return func(baseRate float64, iteration int) float64 {
		return baseRate * math.Pow(gamma, math.Floor(float64(iteration)/float64(stepSize)))
	}
}

// ExpRate decays the rate by gamma every iteration. Zero selects gamma 0.999.
func ExpRate(gamma float64) RatePolicy {
	if gamma == 0 {
		gamma = 0.999
	}
	return func(baseRate float64, iteration int) float64 {
		return baseRate * math.Pow(gamma, float64(iteration))
	}
}

// InvRate decays the rate as (1 + gamma*iteration)^-power. Zero arguments
// select gamma 0.001 and power 2.
func InvRate(gamma, power float64) RatePolicy {
	if gamma == 0 {
		gamma = 0.001
	}
	if power == 0 {
		power = 2
	}
	return func(baseRate float64, iteration int) float64 {
		return baseRate * math.Pow(1+gamma*float64(iteration), -power)
	}
}

// GetRatePolicy builds a policy by name (FIXED, STEP, EXP or INV).
func GetRatePolicy(name string, gamma float64, stepSize int, power float64) (RatePolicy, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "FIXED", "":
		return FixedRate(), nil
	case "STEP":
		return StepRate(gamma, stepSize), nil
	case "EXP":
		return ExpRate(gamma), nil
	case "INV":
		return InvRate(gamma, power), nil
	}
	return nil, fmt.Errorf("unknown rate policy '%s'", name)
}
