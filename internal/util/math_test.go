package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantile(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	assert.Equal(t, 1.0, Quantile(values, 0))
	assert.Equal(t, 3.0, Quantile(values, 0.5))
	assert.Equal(t, 5.0, Quantile(values, 1))
	assert.InDelta(t, 2.0, Quantile(values, 0.25), 1e-9)
}

func TestQuantileInterpolates(t *testing.T) {
	values := []float64{10, 20}
	assert.InDelta(t, 15.0, Quantile(values, 0.5), 1e-9)
}

func TestQuantileEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Quantile(nil, 0.5))
}

func TestQuantileDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	_ = Quantile(values, 0.5)
	assert.Equal(t, []float64{3, 1, 2}, values)
}
