package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormCDF(t *testing.T) {
	t.Run("known values", func(t *testing.T) {
		assert.InDelta(t, 0.5, NormCDF(0), 1e-6)
		assert.InDelta(t, 0.8413447, NormCDF(1), 1e-6)
		assert.InDelta(t, 0.9750021, NormCDF(1.96), 1e-6)
		assert.InDelta(t, 0.0013499, NormCDF(-3), 1e-6)
	})

	t.Run("symmetry", func(t *testing.T) {
		for _, x := range []float64{0, 0.1, 0.5, 1, 1.367, 2, 3.5, 6} {
			assert.InDelta(t, 1-NormCDF(x), NormCDF(-x), 1e-9, "x=%v", x)
		}
	})

	t.Run("monotonic", func(t *testing.T) {
		prev := NormCDF(-8)
		for x := -7.5; x <= 8; x += 0.5 {
			cur := NormCDF(x)
			assert.GreaterOrEqual(t, cur, prev, "x=%v", x)
			prev = cur
		}
	})

	t.Run("tails", func(t *testing.T) {
		assert.Less(t, NormCDF(-10), 1e-12)
		assert.Greater(t, NormCDF(10), 1-1e-12)
	})
}
