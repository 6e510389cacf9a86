package database

import (
	"context"
	"fmt"
	"time"

	"kingdom-server/internal/interfaces"
	"kingdom-server/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	playerLockKeyPrefix     = "kingdom:player_lock:"
	defaultPlayerLockTTL    = 30 * time.Second
	defaultPlayerLockRetry  = 50 * time.Millisecond
	playerLockReleaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`
)

var releasePlayerLock = redis.NewScript(playerLockReleaseScript)

// Compile-time check to ensure redisPlayerLocker implements PlayerLocker
var _ interfaces.PlayerLocker = (*redisPlayerLocker)(nil)

// redisPlayerLocker сериализует ходы игрока между несколькими экземплярами сервера.
// Блокировка живет не дольше ttl, даже если экземпляр упал, не освободив ее.
type redisPlayerLocker struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
	logger *zap.Logger
}

// NewRedisPlayerLocker создает блокировщик на основе SET NX.
// ttl <= 0 означает значение по умолчанию (30 секунд).
func NewRedisPlayerLocker(client *redis.Client, ttl time.Duration, logger *zap.Logger) interfaces.PlayerLocker {
	if ttl <= 0 {
		ttl = defaultPlayerLockTTL
	}
	return &redisPlayerLocker{
		client: client,
		ttl:    ttl,
		retry:  defaultPlayerLockRetry,
		logger: logger.Named("RedisPlayerLocker"),
	}
}

func (l *redisPlayerLocker) Lock(ctx context.Context, telegramID int64) (func(), error) {
	key := fmt.Sprintf("%s%d", playerLockKeyPrefix, telegramID)
	token := uuid.NewString()
	logFields := []zap.Field{zap.Int64("telegramID", telegramID)}

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil && ctx.Err() == nil {
			l.logger.Error("Failed to acquire player lock", append(logFields, zap.Error(err))...)
			return nil, fmt.Errorf("%w: player lock: %w", models.ErrStorageUnavailable, err)
		}
		if ok {
			return l.unlockFunc(key, token, logFields), nil
		}

		select {
		case <-ctx.Done():
			l.logger.Warn("Player lock wait timed out", logFields...)
			return nil, fmt.Errorf("%w: %w", models.ErrPlayerBusy, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *redisPlayerLocker) unlockFunc(key, token string, logFields []zap.Field) func() {
	released := false
	return func() {
		if released {
			return
		}
		released = true

		// Контекст хода может быть уже отменен, освобождаем блокировку отдельно.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releasePlayerLock.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			l.logger.Warn("Failed to release player lock, it will expire by TTL", append(logFields, zap.Error(err))...)
		}
	}
}
