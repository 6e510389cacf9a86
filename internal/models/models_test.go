package models_test

import (
	"errors"
	"fmt"
	"testing"

	"kingdom-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountryStateValidate(t *testing.T) {
	valid := models.CountryState{Support: 0, Treasury: -10, Army: models.LevelLow, Peasants: models.LevelHigh, Year: 1}
	assert.NoError(t, valid.Validate(), "negative treasury is a legal (losing) state")

	cases := map[string]models.CountryState{
		"negative support": {Support: -1, Army: models.LevelLow, Peasants: models.LevelLow, Year: 1},
		"zero year":        {Support: 10, Army: models.LevelLow, Peasants: models.LevelLow, Year: 0},
		"unknown army":     {Support: 10, Army: "huge", Peasants: models.LevelLow, Year: 1},
		"empty peasants":   {Support: 10, Army: models.LevelLow, Year: 1},
	}
	for name, state := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, state.Validate(), models.ErrInvalidState)
		})
	}
}

func TestLevelRank(t *testing.T) {
	assert.Less(t, models.LevelLow.Rank(), models.LevelMedium.Rank())
	assert.Less(t, models.LevelMedium.Rank(), models.LevelHigh.Rank())
	assert.Zero(t, models.Level("legendary").Rank())

	_, err := models.ParseLevel("legendary")
	assert.ErrorIs(t, err, models.ErrInvalidEffectValue)
}

func TestPlayerRecordResetPlaythrough(t *testing.T) {
	initial := models.CountryState{Support: 50, Treasury: 1000, Army: models.LevelMedium, Peasants: models.LevelMedium, Year: 1}
	record := models.NewPlayerRecord(7, initial)
	require.Equal(t, 1, record.PlaythroughCount)
	require.NotNil(t, record.CompletedNarrativeBlockIDs)
	require.NotNil(t, record.MessageIDs)

	eventID := int64(3)
	record.CurrentEventID = &eventID
	record.CompletedNarrativeBlockIDs = append(record.CompletedNarrativeBlockIDs, 1, 2)
	record.MessageIDs = append(record.MessageIDs, 10)
	record.Country.Support = 0
	record.Country.Year = 12
	assert.True(t, record.HasCompletedBlock(2))

	record.ResetPlaythrough(initial)

	assert.Equal(t, 2, record.PlaythroughCount)
	assert.Equal(t, initial, record.Country)
	assert.Nil(t, record.CurrentEventID)
	assert.Empty(t, record.CompletedNarrativeBlockIDs)
	assert.Empty(t, record.MessageIDs)
	assert.False(t, record.HasCompletedBlock(2))
}

func TestNarrativeBlockAvailableIn(t *testing.T) {
	zero, second := 0, 2
	assert.True(t, models.NarrativeBlock{}.AvailableIn(3))
	assert.True(t, models.NarrativeBlock{RequiredPlaythrough: &zero}.AvailableIn(3))
	assert.True(t, models.NarrativeBlock{RequiredPlaythrough: &second}.AvailableIn(2))
	assert.False(t, models.NarrativeBlock{RequiredPlaythrough: &second}.AvailableIn(1))
}

func TestCallbackData(t *testing.T) {
	action, value, err := models.ParseCallbackData(models.ChoiceCallbackData(2))
	require.NoError(t, err)
	assert.Equal(t, "choice", action)
	assert.Equal(t, int64(2), value)

	action, value, err = models.ParseCallbackData(models.NarrativeCallbackData(15))
	require.NoError(t, err)
	assert.Equal(t, "narrative", action)
	assert.Equal(t, int64(15), value)

	for _, bad := range []string{"", "choice", "choice_x", "choice_-1", "restart_1"} {
		_, _, err := models.ParseCallbackData(bad)
		assert.ErrorIs(t, err, models.ErrInvalidPlayerAction, bad)
	}
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, models.UserMessage(nil))
	assert.Equal(t,
		"Игра не найдена. Пожалуйста, начните заново командой /start.",
		models.UserMessage(fmt.Errorf("turn: %w", models.ErrNoActiveEvent)))
	assert.Equal(t, "Ошибка обработки выбора.", models.UserMessage(models.ErrInvalidChoiceIndex))
	assert.NotEmpty(t, models.UserMessage(errors.New("boom")))
}
