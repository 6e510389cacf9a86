package game_test

import (
	"testing"

	"kingdom-server/internal/game"
	"kingdom-server/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestValidateEffects(t *testing.T) {
	assert.NoError(t, game.ValidateEffects(nil))
	assert.NoError(t, game.ValidateEffects(models.EffectSet{"support": 5, "treasury": -200.0, "army": "high"}))

	err := game.ValidateEffects(models.EffectSet{"gold": 5, "support": 1.5})
	assert.ErrorIs(t, err, models.ErrUnknownEffectKey)
	assert.ErrorIs(t, err, models.ErrInvalidEffectValue)
}

func TestValidateConditions(t *testing.T) {
	assert.NoError(t, game.ValidateConditions(models.TriggerConditions{
		"support": {"<=": 20.0},
		"army":    {">=": "medium"},
		"year":    {">": 3},
	}))

	cases := map[string]models.TriggerConditions{
		"unknown field":    {"mood": {"==": 1}},
		"unknown operator": {"support": {"~": 1}},
		"bad level":        {"peasants": {"==": "huge"}},
		"number for level": {"army": {">=": 2}},
		"string for delta": {"treasury": {">": "lots"}},
	}
	for name, conds := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, game.ValidateConditions(conds), models.ErrInvalidCatalogEntry)
		})
	}
}
