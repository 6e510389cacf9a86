package interfaces

import (
	"context"

	"kingdom-server/internal/models"
)

// Presenter - транспорт, который показывает сообщения игроку и удаляет устаревшие.
//
//go:generate mockery --name Presenter --output ./mocks --outpkg mocks --case=underscore
type Presenter interface {
	// Present показывает сообщение и возвращает идентификатор созданного сообщения.
	Present(ctx context.Context, telegramID int64, content models.Presentation) (int64, error)
	// Retire удаляет сообщения. Сообщение могло быть уже удалено, это не ошибка.
	Retire(ctx context.Context, telegramID int64, messageIDs []int64) error
}

// PlayerLocker сериализует ходы одного игрока.
//
//go:generate mockery --name PlayerLocker --output ./mocks --outpkg mocks --case=underscore
type PlayerLocker interface {
	// Lock блокирует игрока до вызова unlock или истечения ctx.
	// Возвращает models.ErrPlayerBusy, если блокировку не удалось получить вовремя.
	Lock(ctx context.Context, telegramID int64) (unlock func(), err error)
}
