package game_test

import (
	"encoding/json"
	"errors"
	"testing"

	"kingdom-server/internal/game"
	"kingdom-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseState() models.CountryState {
	return game.DefaultRules().Initial
}

func TestApply(t *testing.T) {
	t.Run("Integer deltas are added", func(t *testing.T) {
		state := baseState()
		errs := game.Apply(&state, models.EffectSet{"support": 15, "treasury": -500})

		assert.Empty(t, errs)
		assert.Equal(t, 65, state.Support)
		assert.Equal(t, 500, state.Treasury)
	})

	t.Run("Result does not depend on key order", func(t *testing.T) {
		a := baseState()
		b := baseState()
		var fromJSON models.EffectSet
		require.NoError(t, json.Unmarshal([]byte(`{"treasury": 200, "support": -5}`), &fromJSON))

		game.Apply(&a, models.EffectSet{"support": -5, "treasury": 200})
		game.Apply(&b, fromJSON)

		assert.Equal(t, game.Snapshot(a), game.Snapshot(b))
		assert.Equal(t, 45, a.Support)
		assert.Equal(t, 1200, a.Treasury)
	})

	t.Run("Levels are replaced", func(t *testing.T) {
		state := baseState()
		errs := game.Apply(&state, models.EffectSet{"army": "high", "peasants": "low"})

		assert.Empty(t, errs)
		assert.Equal(t, models.LevelHigh, state.Army)
		assert.Equal(t, models.LevelLow, state.Peasants)
	})

	t.Run("Unknown key is skipped, others applied", func(t *testing.T) {
		state := baseState()
		errs := game.Apply(&state, models.EffectSet{"gold": 10, "support": 1})

		require.Len(t, errs, 1)
		assert.True(t, errors.Is(errs[0], models.ErrUnknownEffectKey))
		assert.Equal(t, 51, state.Support)
	})

	t.Run("Invalid level is rejected, not stored", func(t *testing.T) {
		state := baseState()
		errs := game.Apply(&state, models.EffectSet{"army": "legendary", "treasury": 1})

		require.Len(t, errs, 1)
		assert.True(t, errors.Is(errs[0], models.ErrInvalidEffectValue))
		assert.Equal(t, models.LevelMedium, state.Army)
		assert.Equal(t, 1001, state.Treasury)
	})

	t.Run("Fractional delta is rejected", func(t *testing.T) {
		state := baseState()
		errs := game.Apply(&state, models.EffectSet{"support": 1.5})

		require.Len(t, errs, 1)
		assert.True(t, errors.Is(errs[0], models.ErrInvalidEffectValue))
		assert.Equal(t, 50, state.Support)
	})

	t.Run("Year is not an effect field", func(t *testing.T) {
		state := baseState()
		errs := game.Apply(&state, models.EffectSet{"current_year": 5})

		require.Len(t, errs, 1)
		assert.True(t, errors.Is(errs[0], models.ErrUnknownEffectKey))
		assert.Equal(t, 1, state.Year)
	})
}

func TestAdvanceYear(t *testing.T) {
	state := baseState()
	for i := 0; i < 7; i++ {
		game.AdvanceYear(&state)
	}
	assert.Equal(t, 8, state.Year)
}

func TestSnapshotRestore(t *testing.T) {
	t.Run("Round trip", func(t *testing.T) {
		state := models.CountryState{Support: 3, Treasury: -20, Army: models.LevelLow, Peasants: models.LevelHigh, Year: 12}
		restored, err := game.Restore(game.Snapshot(state))

		require.NoError(t, err)
		assert.Equal(t, state, restored)
	})

	t.Run("Round trip through JSON", func(t *testing.T) {
		state := baseState()
		raw, err := json.Marshal(state)
		require.NoError(t, err)

		restored, err := game.RestoreJSON(raw)
		require.NoError(t, err)
		assert.Equal(t, state, restored)
	})

	cases := []struct {
		name string
		data map[string]any
	}{
		{"nil", nil},
		{"missing field", map[string]any{"support": 1, "treasury": 1, "army": "low", "current_year": 1}},
		{"negative support", map[string]any{"support": -1, "treasury": 1, "army": "low", "peasants": "low", "current_year": 1}},
		{"zero year", map[string]any{"support": 1, "treasury": 1, "army": "low", "peasants": "low", "current_year": 0}},
		{"unknown level", map[string]any{"support": 1, "treasury": 1, "army": "huge", "peasants": "low", "current_year": 1}},
		{"wrong type", map[string]any{"support": "a lot", "treasury": 1, "army": "low", "peasants": "low", "current_year": 1}},
	}
	for _, tc := range cases {
		t.Run("Invalid: "+tc.name, func(t *testing.T) {
			_, err := game.Restore(tc.data)
			assert.ErrorIs(t, err, models.ErrInvalidState)
		})
	}

	t.Run("Broken JSON", func(t *testing.T) {
		_, err := game.RestoreJSON([]byte(`{"support":`))
		assert.ErrorIs(t, err, models.ErrInvalidState)
	})
}

func TestCheckGameOver(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*models.CountryState)
		expected game.GameOverReason
	}{
		{"support 0 ends", func(s *models.CountryState) { s.Support = 0 }, game.GameOverDeposed},
		{"support 1 continues", func(s *models.CountryState) { s.Support = 1 }, game.GameOverNone},
		{"treasury -1 ends", func(s *models.CountryState) { s.Treasury = -1 }, game.GameOverBankrupt},
		{"treasury 0 continues", func(s *models.CountryState) { s.Treasury = 0 }, game.GameOverNone},
		{"year 41 ends", func(s *models.CountryState) { s.Year = 41 }, game.GameOverOldAge},
		{"year 40 continues", func(s *models.CountryState) { s.Year = 40 }, game.GameOverNone},
		{"deposed wins over bankrupt", func(s *models.CountryState) { s.Support = -3; s.Treasury = -3; s.Year = 50 }, game.GameOverDeposed},
		{"bankrupt wins over old age", func(s *models.CountryState) { s.Treasury = -3; s.Year = 50 }, game.GameOverBankrupt},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := baseState()
			tc.mutate(&state)
			assert.Equal(t, tc.expected, game.CheckGameOver(state, game.DefaultMaxYear))
		})
	}

	assert.NotEmpty(t, game.GameOverDeposed.Message())
	assert.Empty(t, game.GameOverNone.Message())
}

func TestYearlyEconomy(t *testing.T) {
	state := baseState()
	balance := game.ApplyYearlyEconomy(&state)

	assert.Equal(t, 300, balance)
	assert.Equal(t, 1300, state.Treasury)

	state.Army = models.LevelHigh
	state.Peasants = models.LevelLow
	assert.Equal(t, -400, game.YearlyBalance(state))
}

func TestRulesValidate(t *testing.T) {
	assert.NoError(t, game.DefaultRules().Validate())

	rules := game.DefaultRules()
	rules.Initial.Army = "none"
	assert.Error(t, rules.Validate())

	rules = game.DefaultRules()
	rules.MaxSelectionAttempts = 0
	assert.Error(t, rules.Validate())
}
