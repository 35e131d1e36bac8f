package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVarianceIsSampleVariance(t *testing.T) {
	assert.Zero(t, variance(nil))
	assert.Zero(t, variance([]float64{4}), "a single observation has no spread")
	assert.InDelta(t, 2.5, variance([]float64{1, 2, 3, 4, 5}), 1e-9)
}

func TestTrendSlope(t *testing.T) {
	assert.Zero(t, trendSlope(nil))
	assert.Zero(t, trendSlope([]float64{7}))
	assert.InDelta(t, 1.0, trendSlope([]float64{1, 2, 3, 4}), 1e-9)
	assert.InDelta(t, -2.0, trendSlope([]float64{9, 7, 5, 3}), 1e-9)
	assert.Zero(t, trendSlope([]float64{6, 6, 6}))
}
