package service

import (
	"context"
	"fmt"
	"sync"

	"kingdom-server/internal/interfaces"
	"kingdom-server/internal/models"
)

// localPlayerLocker - блокировка игроков внутри одного процесса.
// Для нескольких реплик используется database.RedisPlayerLocker.
type localPlayerLocker struct {
	mu    sync.Mutex
	slots map[int64]*lockSlot
}

type lockSlot struct {
	ch   chan struct{} // буфер 1: занят, когда в канале есть значение
	refs int
}

var _ interfaces.PlayerLocker = (*localPlayerLocker)(nil)

// NewLocalPlayerLocker создает блокировку игроков в памяти процесса.
func NewLocalPlayerLocker() interfaces.PlayerLocker {
	return &localPlayerLocker{slots: make(map[int64]*lockSlot)}
}

func (l *localPlayerLocker) Lock(ctx context.Context, telegramID int64) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[telegramID]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[telegramID] = slot
	}
	slot.refs++
	l.mu.Unlock()

	select {
	case slot.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(telegramID, slot)
		return nil, fmt.Errorf("%w: %w", models.ErrPlayerBusy, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.ch
			l.release(telegramID, slot)
		})
	}, nil
}

func (l *localPlayerLocker) release(telegramID int64, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, telegramID)
	}
}
