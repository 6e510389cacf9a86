package game_test

import (
	"math/rand/v2"
	"testing"

	"kingdom-server/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSource struct{ value int }

func (f fixedSource) IntN(n int) int { return f.value % n }

func TestPickWeighted(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, -1, game.PickWeighted(nil, game.DefaultRandSource()))
		assert.Equal(t, -1, game.PickWeighted([]int{0, -2}, game.DefaultRandSource()))
	})

	t.Run("Deterministic boundaries", func(t *testing.T) {
		weights := []int{1, 3, 1}
		assert.Equal(t, 0, game.PickWeighted(weights, fixedSource{0}))
		assert.Equal(t, 1, game.PickWeighted(weights, fixedSource{1}))
		assert.Equal(t, 1, game.PickWeighted(weights, fixedSource{3}))
		assert.Equal(t, 2, game.PickWeighted(weights, fixedSource{4}))
	})

	t.Run("Non-positive weights are never picked", func(t *testing.T) {
		weights := []int{0, 2, -1}
		for v := 0; v < 10; v++ {
			assert.Equal(t, 1, game.PickWeighted(weights, fixedSource{v}))
		}
	})

	t.Run("Equal weights converge to uniform", func(t *testing.T) {
		src := rand.New(rand.NewPCG(42, 7))
		const samples = 30000
		counts := make([]int, 3)
		for i := 0; i < samples; i++ {
			idx := game.PickWeighted([]int{1, 1, 1}, src)
			require.GreaterOrEqual(t, idx, 0)
			counts[idx]++
		}
		for _, c := range counts {
			assert.InDelta(t, 1.0/3.0, float64(c)/samples, 0.02)
		}
	})
}
