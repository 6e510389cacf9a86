package game_test

import (
	"testing"

	"kingdom-server/internal/game"
	"kingdom-server/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestMatches(t *testing.T) {
	state := models.CountryState{Support: 20, Treasury: 300, Army: models.LevelMedium, Peasants: models.LevelLow, Year: 10}

	cases := []struct {
		name       string
		conditions models.TriggerConditions
		expected   bool
	}{
		{"nil conditions", nil, true},
		{"empty conditions", models.TriggerConditions{}, true},
		{"single <= holds", models.TriggerConditions{"support": {"<=": 20}}, true},
		{"single < fails", models.TriggerConditions{"support": {"<": 20}}, false},
		{"range within one field", models.TriggerConditions{"treasury": {">": 100, "<": 500}}, true},
		{"range within one field fails", models.TriggerConditions{"treasury": {">": 100, "<": 200}}, false},
		{"AND across fields", models.TriggerConditions{"support": {">=": 10}, "current_year": {"==": 10}}, true},
		{"AND across fields fails", models.TriggerConditions{"support": {">=": 10}, "current_year": {"!=": 10}}, false},
		{"year alias", models.TriggerConditions{"year": {">": 5}}, true},
		{"level ordinal", models.TriggerConditions{"army": {">=": "medium"}, "peasants": {"<": "medium"}}, true},
		{"level equality", models.TriggerConditions{"army": {"==": "high"}}, false},
		{"unknown field ignored", models.TriggerConditions{"mana": {">": 100}}, true},
		{"unknown operator ignored", models.TriggerConditions{"support": {"~=": 1}}, true},
		{"number from JSON", models.TriggerConditions{"support": {"==": float64(20)}}, true},
		{"wrong literal type fails", models.TriggerConditions{"support": {"==": "twenty"}}, false},
		{"unknown level literal fails", models.TriggerConditions{"army": {"==": "legion"}}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, game.Matches(tc.conditions, state))
		})
	}
}
