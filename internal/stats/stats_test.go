package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregation(t *testing.T) {
	values := []float64{4, 1, 7}

	assert.Equal(t, 4.0, Mean(values))
	assert.Equal(t, 1.0, Min(values))
	assert.Equal(t, 7.0, Max(values))

	assert.Zero(t, Mean(nil))
	assert.Zero(t, Min(nil))
	assert.Zero(t, Max(nil))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, []float64{0.5, 0, 1}, Normalize([]float64{4, 1, 7}))
	assert.Equal(t, []float64{0, 0}, Normalize([]float64{3, 3}))
	assert.Empty(t, Normalize(nil))
}

func TestPercentiles_Interpolation(t *testing.T) {
	values := []float64{10, 40, 20, 30}

	got := Percentiles(values, []float64{0, 50, 100, 200, -5})
	assert.InDeltaSlice(t, []float64{10, 25, 40, 40, 10}, got, 1e-9, "p is clamped to 0-100")
	assert.Equal(t, []float64{10, 40, 20, 30}, values, "input is not reordered")
}

func TestPercentiles(t *testing.T) {
	got := Percentiles([]float64{0, 100}, []float64{20, 50, 80})
	assert.InDeltaSlice(t, []float64{20, 50, 80}, got, 1e-9)

	assert.Equal(t, []float64{0, 0}, Percentiles(nil, []float64{20, 80}))
}
