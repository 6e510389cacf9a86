package mocks

import (
	"context"
	"kingdom-server/internal/models"
	"kingdom-server/internal/service"

	"github.com/stretchr/testify/mock"
)

// TurnController is a mock type for the TurnController type
type TurnController struct {
	mock.Mock
}

func (m *TurnController) Start(ctx context.Context, telegramID int64) (*service.TurnResult, error) {
	args := m.Called(ctx, telegramID)
	var r0 *service.TurnResult
	if args.Get(0) != nil {
		r0 = args.Get(0).(*service.TurnResult)
	}
	return r0, args.Error(1)
}

func (m *TurnController) AdvanceNarrative(ctx context.Context, telegramID int64, blockID int64) (*service.TurnResult, error) {
	args := m.Called(ctx, telegramID, blockID)
	var r0 *service.TurnResult
	if args.Get(0) != nil {
		r0 = args.Get(0).(*service.TurnResult)
	}
	return r0, args.Error(1)
}

func (m *TurnController) MakeChoice(ctx context.Context, telegramID int64, optionIndex int) (*service.TurnResult, error) {
	args := m.Called(ctx, telegramID, optionIndex)
	var r0 *service.TurnResult
	if args.Get(0) != nil {
		r0 = args.Get(0).(*service.TurnResult)
	}
	return r0, args.Error(1)
}

func (m *TurnController) GetPlayer(ctx context.Context, telegramID int64) (*models.PlayerRecord, error) {
	args := m.Called(ctx, telegramID)
	var r0 *models.PlayerRecord
	if args.Get(0) != nil {
		r0 = args.Get(0).(*models.PlayerRecord)
	}
	return r0, args.Error(1)
}
