package neat

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
)

func TestSquashDerivatives(t *testing.T) {
	// Points away from the kinks of the piecewise functions.
	points := []float64{-1.3, -0.4, 0.7, 1.9}
	settings := &fd.Settings{Formula: fd.Central, Step: 1e-6}

	for _, s := range AllSquashes() {
		s := s
		t.Run(s.String(), func(t *testing.T) {
			for _, x := range points {
				numeric := fd.Derivative(func(x float64) float64 { return s.Apply(x, false) }, x, settings)
				assert.InDelta(t, numeric, s.Apply(x, true), 1e-5, "x=%v", x)
			}
		})
	}
}

func TestSquashValues(t *testing.T) {
	assert.InDelta(t, 0.5, Logistic.Apply(0, false), 1e-12)
	assert.Equal(t, 0.0, ReLU.Apply(-3, false))
	assert.Equal(t, 1.0, Step.Apply(0.1, false))
	assert.Equal(t, 0.0, Step.Apply(0, false))
	assert.Equal(t, -1.0, Bipolar.Apply(0, false))
	assert.Equal(t, 1.0, HardTanh.Apply(4, false))
	assert.Equal(t, -1.0, HardTanh.Apply(-4, false))
	assert.Equal(t, 3.0, Absolute.Apply(-3, false))
	assert.Equal(t, -1.0, Inverse.Apply(2, false))
	assert.InDelta(t, 0.0, SELU.Apply(0, false), 1e-12)
	assert.InDelta(t, math.Tanh(0.25), BipolarSigmoid.Apply(0.5, false), 1e-12)
}

func TestGetSquash(t *testing.T) {
	t.Run("Canonical", func(t *testing.T) {
		for _, s := range AllSquashes() {
			got, err := GetSquash(s.String())
			require.NoError(t, err)
			assert.Equal(t, s, got)
		}
	})

	t.Run("Variants", func(t *testing.T) {
		for name, want := range map[string]Squash{
			"bent-identity":   BentIdentity,
			"bentIdentity":    BentIdentity,
			"bipolar_sigmoid": BipolarSigmoid,
			"hard-tanh":       HardTanh,
			"logistic":        Logistic,
			"sigmoid":         Logistic,
			"selu":            SELU,
		} {
			got, err := GetSquash(name)
			require.NoError(t, err, name)
			assert.Equal(t, want, got, name)
		}
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := GetSquash("SWISH")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownSquash))
	})
}

func TestSquashIDs(t *testing.T) {
	// The flattened encoding relies on these ids.
	assert.Equal(t, 0, int(Logistic))
	assert.Equal(t, 8, int(BentIdentity))
	assert.Equal(t, 14, int(SELU))
	assert.Len(t, AllSquashes(), 15)
	assert.False(t, Squash(15).Valid())
	assert.Equal(t, "Squash(15)", Squash(15).String())
}
