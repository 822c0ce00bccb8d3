package match

import (
	"math"
	"testing"

	"github.com/occlab/nocmatch/ai/mock"
	"github.com/stretchr/testify/assert"
)

func TestCosine(t *testing.T) {
	t.Run("identical vectors", func(t *testing.T) {
		v := []float32{1, 2, 3}
		assert.InDelta(t, 1.0, Cosine(v, v), 1e-6)
	})

	t.Run("orthogonal vectors", func(t *testing.T) {
		assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-6)
	})

	t.Run("opposite vectors", func(t *testing.T) {
		assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-6)
	})

	t.Run("scale invariant", func(t *testing.T) {
		a := []float32{1, 2, 3}
		b := []float32{10, 20, 30}
		assert.InDelta(t, 1.0, Cosine(a, b), 1e-6)
	})

	t.Run("zero vector", func(t *testing.T) {
		assert.Equal(t, float32(0), Cosine([]float32{0, 0}, []float32{1, 1}))
	})

	t.Run("length mismatch", func(t *testing.T) {
		assert.Equal(t, float32(0), Cosine([]float32{1}, []float32{1, 1}))
	})

	t.Run("empty vectors", func(t *testing.T) {
		assert.Equal(t, float32(0), Cosine(nil, nil))
	})
}

func TestCosine_Range(t *testing.T) {
	texts := []string{"accountant", "software developer", "nurse", "welder"}
	for _, a := range texts {
		va := mock.DeterministicVector(a, 64)
		for _, b := range texts {
			vb := mock.DeterministicVector(b, 64)
			score := float64(Cosine(va, vb))
			assert.False(t, math.IsNaN(score))
			assert.GreaterOrEqual(t, score, -1.0-1e-6)
			assert.LessOrEqual(t, score, 1.0+1e-6)
		}
	}
}
