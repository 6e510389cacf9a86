package messaging_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	repoMocks "kingdom-server/internal/interfaces/mocks"
	"kingdom-server/internal/messaging"
	"kingdom-server/internal/models"
	"kingdom-server/internal/service"
	serviceMocks "kingdom-server/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func TestPlayerActionProcessor_Process(t *testing.T) {
	ctx := context.Background()
	ok := &service.TurnResult{Outcome: service.OutcomeEvent}

	t.Run("Start", func(t *testing.T) {
		turns := new(serviceMocks.TurnController)
		presenter := new(repoMocks.Presenter)
		processor := messaging.NewPlayerActionProcessor(turns, presenter, zap.NewNop())

		turns.On("Start", mock.Anything, int64(42)).Return(ok, nil).Once()

		err := processor.Process(ctx, []byte(`{"telegram_id": 42, "action": "start"}`))

		assert.NoError(t, err)
		turns.AssertExpectations(t)
		presenter.AssertNotCalled(t, "Present", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Choice from explicit index", func(t *testing.T) {
		turns := new(serviceMocks.TurnController)
		processor := messaging.NewPlayerActionProcessor(turns, new(repoMocks.Presenter), zap.NewNop())

		turns.On("MakeChoice", mock.Anything, int64(42), 0).Return(ok, nil).Once()

		err := processor.Process(ctx, []byte(`{"telegram_id": 42, "action": "choice", "option_index": 0}`))

		assert.NoError(t, err)
		turns.AssertExpectations(t)
	})

	t.Run("Callback data is parsed", func(t *testing.T) {
		turns := new(serviceMocks.TurnController)
		processor := messaging.NewPlayerActionProcessor(turns, new(repoMocks.Presenter), zap.NewNop())

		turns.On("MakeChoice", mock.Anything, int64(42), 2).Return(ok, nil).Once()
		turns.On("AdvanceNarrative", mock.Anything, int64(42), int64(7)).Return(ok, nil).Once()

		assert.NoError(t, processor.Process(ctx, []byte(`{"telegram_id": 42, "callback_data": "choice_2"}`)))
		assert.NoError(t, processor.Process(ctx, []byte(`{"telegram_id": 42, "callback_data": "narrative_7"}`)))
		turns.AssertExpectations(t)
	})

	t.Run("Rejected choice notifies player and is not an error", func(t *testing.T) {
		turns := new(serviceMocks.TurnController)
		presenter := new(repoMocks.Presenter)
		processor := messaging.NewPlayerActionProcessor(turns, presenter, zap.NewNop())

		turns.On("MakeChoice", mock.Anything, int64(42), 5).
			Return(nil, fmt.Errorf("choice 5: %w", models.ErrInvalidChoiceIndex)).Once()
		presenter.On("Present", mock.Anything, int64(42), mock.MatchedBy(func(p models.Presentation) bool {
			return p.Kind == models.PresentationNotice && p.Text == "Ошибка обработки выбора."
		})).Return(int64(0), nil).Once()

		err := processor.Process(ctx, []byte(`{"telegram_id": 42, "action": "choice", "option_index": 5}`))

		assert.NoError(t, err)
		turns.AssertExpectations(t)
		presenter.AssertExpectations(t)
	})

	t.Run("Storage failure is returned", func(t *testing.T) {
		turns := new(serviceMocks.TurnController)
		processor := messaging.NewPlayerActionProcessor(turns, new(repoMocks.Presenter), zap.NewNop())

		turns.On("Start", mock.Anything, int64(42)).
			Return(nil, fmt.Errorf("%w: db down", models.ErrStorageUnavailable)).Once()

		err := processor.Process(ctx, []byte(`{"telegram_id": 42, "action": "start"}`))

		assert.ErrorIs(t, err, models.ErrStorageUnavailable)
	})

	t.Run("Malformed payloads", func(t *testing.T) {
		turns := new(serviceMocks.TurnController)
		processor := messaging.NewPlayerActionProcessor(turns, new(repoMocks.Presenter), zap.NewNop())

		bodies := []string{
			`not json`,
			`{"action": "start"}`,
			`{"telegram_id": 1, "action": "dance"}`,
			`{"telegram_id": 1, "action": "choice"}`,
			`{"telegram_id": 1, "action": "narrative_next"}`,
			`{"telegram_id": 1, "callback_data": "restart_1"}`,
		}
		for _, body := range bodies {
			err := processor.Process(ctx, []byte(body))
			assert.ErrorIs(t, err, models.ErrInvalidPlayerAction, body)
		}
		turns.AssertNotCalled(t, "Start", mock.Anything, mock.Anything)
	})

	t.Run("Notice failure is only logged", func(t *testing.T) {
		turns := new(serviceMocks.TurnController)
		presenter := new(repoMocks.Presenter)
		processor := messaging.NewPlayerActionProcessor(turns, presenter, zap.NewNop())

		turns.On("MakeChoice", mock.Anything, int64(42), 0).Return(nil, models.ErrNoActiveEvent).Once()
		presenter.On("Present", mock.Anything, int64(42), mock.Anything).Return(int64(0), errors.New("gateway down")).Once()

		assert.NoError(t, processor.Process(ctx, []byte(`{"telegram_id": 42, "action": "choice", "option_index": 0}`)))
	})
}
