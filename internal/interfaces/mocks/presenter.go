package mocks

import (
	"context"
	"kingdom-server/internal/models"

	"github.com/stretchr/testify/mock"
)

// Presenter is a mock type for the Presenter type
type Presenter struct {
	mock.Mock
}

func (m *Presenter) Present(ctx context.Context, telegramID int64, content models.Presentation) (int64, error) {
	args := m.Called(ctx, telegramID, content)
	return args.Get(0).(int64), args.Error(1)
}

func (m *Presenter) Retire(ctx context.Context, telegramID int64, messageIDs []int64) error {
	args := m.Called(ctx, telegramID, messageIDs)
	return args.Error(0)
}

// PlayerLocker is a mock type for the PlayerLocker type
type PlayerLocker struct {
	mock.Mock
}

func (m *PlayerLocker) Lock(ctx context.Context, telegramID int64) (func(), error) {
	args := m.Called(ctx, telegramID)
	var r0 func()
	if args.Get(0) != nil {
		r0 = args.Get(0).(func())
	}
	return r0, args.Error(1)
}
