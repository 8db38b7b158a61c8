package neat

import (
	"fmt"
	"math"

	"github.com/iancoleman/strcase"
)

// Squash identifies one of the registered activation functions. The numeric
// order is load-bearing: it is the squash id used by the flattened encoding.
type Squash int

const (
	Logistic Squash = iota
	Tanh
	Identity
	Step
	ReLU
	Softsign
	Sinusoid
	Gaussian
	BentIdentity
	Bipolar
	BipolarSigmoid
	HardTanh
	Absolute
	Inverse
	SELU
	numSquashes
)

// SquashFunc computes an activation, or its derivative when derivate is true.
type SquashFunc func(x float64, derivate bool) float64

var squashNames = [numSquashes]string{
	Logistic:       "LOGISTIC",
	Tanh:           "TANH",
	Identity:       "IDENTITY",
	Step:           "STEP",
	ReLU:           "RELU",
	Softsign:       "SOFTSIGN",
	Sinusoid:       "SINUSOID",
	Gaussian:       "GAUSSIAN",
	BentIdentity:   "BENT_IDENTITY",
	Bipolar:        "BIPOLAR",
	BipolarSigmoid: "BIPOLAR_SIGMOID",
	HardTanh:       "HARD_TANH",
	Absolute:       "ABSOLUTE",
	Inverse:        "INVERSE",
	SELU:           "SELU",
}

var squashFunctions = [numSquashes]SquashFunc{
	Logistic:       logistic,
	Tanh:           tanh,
	Identity:       identity,
	Step:           step,
	ReLU:           relu,
	Softsign:       softsign,
	Sinusoid:       sinusoid,
	Gaussian:       gaussian,
	BentIdentity:   bentIdentity,
	Bipolar:        bipolar,
	BipolarSigmoid: bipolarSigmoid,
	HardTanh:       hardTanh,
	Absolute:       absolute,
	Inverse:        inverse,
	SELU:           selu,
}

// squashAliases maps alternative names onto registered squashes.
var squashAliases = map[string]Squash{
	"SIGMOID": Logistic,
	"SINE":    Sinusoid,
	"ABS":     Absolute,
}

// AllSquashes lists every registered squash in id order.
func AllSquashes() []Squash {
	all := make([]Squash, numSquashes)
	for i := range all {
		all[i] = Squash(i)
	}
	return all
}

// String returns the canonical registry name.
func (s Squash) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Squash(%d)", int(s))
	}
	return squashNames[s]
}

// Valid reports whether s is a registered squash.
func (s Squash) Valid() bool {
	return s >= 0 && s < numSquashes
}

// Apply evaluates the squash (or its derivative) at x.
func (s Squash) Apply(x float64, derivate bool) float64 {
	return squashFunctions[s](x, derivate)
}

// GetSquash resolves a squash by name. Names are matched case and separator
// insensitively, so "bent-identity", "bentIdentity" and "BENT_IDENTITY" all resolve.
func GetSquash(name string) (Squash, error) {
	key := strcase.ToScreamingSnake(name)
	for i, n := range squashNames {
		if n == name || n == key {
			return Squash(i), nil
		}
	}
	if s, ok := squashAliases[key]; ok {
		return s, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSquash, name)
}

// --- Activation function implementations ---

func logistic(x float64, derivate bool) float64 {
	fx := 1.0 / (1.0 + math.Exp(-x))
	if !derivate {
		return fx
	}
	return fx * (1 - fx)
}

func tanh(x float64, derivate bool) float64 {
	if derivate {
		t := math.Tanh(x)
		return 1 - t*t
	}
	return math.Tanh(x)
}

func identity(x float64, derivate bool) float64 {
	if derivate {
		return 1
	}
	return x
}

func step(x float64, derivate bool) float64 {
	if derivate {
		return 0
	}
	if x > 0 {
		return 1
	}
	return 0
}

func relu(x float64, derivate bool) float64 {
	if derivate {
		if x > 0 {
			return 1
		}
		return 0
	}
	return math.Max(0, x)
}

func softsign(x float64, derivate bool) float64 {
	d := 1 + math.Abs(x)
	if derivate {
		return 1 / (d * d)
	}
	return x / d
}

func sinusoid(x float64, derivate bool) float64 {
	if derivate {
		return math.Cos(x)
	}
	return math.Sin(x)
}

func gaussian(x float64, derivate bool) float64 {
	d := math.Exp(-x * x)
	if derivate {
		return -2 * x * d
	}
	return d
}

func bentIdentity(x float64, derivate bool) float64 {
	d := math.Sqrt(x*x + 1)
	if derivate {
		return x/(2*d) + 1
	}
	return (d-1)/2 + x
}

func bipolar(x float64, derivate bool) float64 {
	if derivate {
		return 0
	}
	if x > 0 {
		return 1
	}
	return -1
}

func bipolarSigmoid(x float64, derivate bool) float64 {
	d := 2/(1+math.Exp(-x)) - 1
	if derivate {
		return 0.5 * (1 + d) * (1 - d)
	}
	return d
}

func hardTanh(x float64, derivate bool) float64 {
	if derivate {
		if x > -1 && x < 1 {
			return 1
		}
		return 0
	}
	return clamp(x, -1, 1)
}

func absolute(x float64, derivate bool) float64 {
	if derivate {
		if x < 0 {
			return -1
		}
		return 1
	}
	return math.Abs(x)
}

func inverse(x float64, derivate bool) float64 {
	if derivate {
		return -1
	}
	return 1 - x
}

const (
	seluAlpha = 1.6732632423543772
	seluScale = 1.0507009873554805
)

func selu(x float64, derivate bool) float64 {
	fx := x
	if x <= 0 {
		fx = seluAlpha*math.Exp(x) - seluAlpha
	}
	if derivate {
		if x > 0 {
			return seluScale
		}
		return (fx + seluAlpha) * seluScale
	}
	return fx * seluScale
}
