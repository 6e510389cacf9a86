package mocks

import (
	"context"
	"kingdom-server/internal/models"

	"github.com/stretchr/testify/mock"
)

// PlayerRepository is a mock type for the PlayerRepository type
type PlayerRepository struct {
	mock.Mock
}

func (m *PlayerRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.PlayerRecord, error) {
	args := m.Called(ctx, telegramID)
	var r0 *models.PlayerRecord
	if rf, ok := args.Get(0).(func(context.Context, int64) *models.PlayerRecord); ok {
		r0 = rf(ctx, telegramID)
	} else if args.Get(0) != nil {
		r0 = args.Get(0).(*models.PlayerRecord)
	}
	return r0, args.Error(1)
}

func (m *PlayerRepository) Save(ctx context.Context, record *models.PlayerRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *PlayerRepository) Delete(ctx context.Context, telegramID int64) error {
	args := m.Called(ctx, telegramID)
	return args.Error(0)
}
