package function

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSampleIndex(t *testing.T) {
	variants := []Variant{{Implementation: "a", Weight: 1}, {Implementation: "b", Weight: 3}, {Implementation: "off", Weight: 0}}

	t.Run("converges to weight ratio", func(t *testing.T) {
		r := rand.New(rand.NewPCG(7, 11))
		counts := make([]int, len(variants))
		const trials = 20000
		for range trials {
			idx, _ := sampleIndex(variants, r.Float64)
			counts[idx]++
		}
		assert.InDelta(t, 0.25, float64(counts[0])/trials, 0.02)
		assert.InDelta(t, 0.75, float64(counts[1])/trials, 0.02)
		assert.Zero(t, counts[2])
	})

	t.Run("deterministic with fixed draws", func(t *testing.T) {
		idx, sample := sampleIndex(variants, func() float64 { return 0.2 })
		assert.Equal(t, 0, idx)
		assert.InDelta(t, 0.8, sample, 1e-9)

		idx, _ = sampleIndex(variants, func() float64 { return 0.25 })
		assert.Equal(t, 1, idx)

		idx, _ = sampleIndex(variants, func() float64 { return 0.999999 })
		assert.Equal(t, 1, idx)
	})

	t.Run("no positive weight", func(t *testing.T) {
		idx, _ := sampleIndex([]Variant{{Implementation: "a"}}, rand.Float64)
		assert.Equal(t, -1, idx)
	})
}
