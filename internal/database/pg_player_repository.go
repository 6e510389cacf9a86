package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"kingdom-server/internal/game"
	"kingdom-server/internal/interfaces"
	"kingdom-server/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	playerFields = `telegram_id, state, current_event_id, playthrough_count, completed_narrative_block_ids, message_ids, created_at, updated_at`

	getPlayerByTelegramIDQuery = `
        SELECT ` + playerFields + `
        FROM players
        WHERE telegram_id = $1
    `
	upsertPlayerQuery = `
        INSERT INTO players
            (telegram_id, state, current_event_id, playthrough_count, completed_narrative_block_ids, message_ids, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, NOW(), NOW())
        ON CONFLICT (telegram_id) DO UPDATE SET
            state = EXCLUDED.state,
            current_event_id = EXCLUDED.current_event_id,
            playthrough_count = EXCLUDED.playthrough_count,
            completed_narrative_block_ids = EXCLUDED.completed_narrative_block_ids,
            message_ids = EXCLUDED.message_ids,
            updated_at = NOW()
        RETURNING created_at, updated_at
    `
	deletePlayerQuery = `DELETE FROM players WHERE telegram_id = $1`
)

// Compile-time check to ensure pgPlayerRepository implements the interface
var _ interfaces.PlayerRepository = (*pgPlayerRepository)(nil)

// pgPlayerRepository is the PostgreSQL implementation of PlayerRepository
type pgPlayerRepository struct {
	db     interfaces.DBTX // Can be *pgxpool.Pool or pgx.Tx
	logger *zap.Logger
}

// NewPgPlayerRepository creates a new repository instance.
func NewPgPlayerRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.PlayerRepository {
	return &pgPlayerRepository{
		db:     db,
		logger: logger.Named("PgPlayerRepo"),
	}
}

// GetByTelegramID загружает игрока. Состояние страны проверяется при разборе:
// испорченное состояние возвращается как ошибка, оборачивающая models.ErrInvalidState.
func (r *pgPlayerRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*models.PlayerRecord, error) {
	logFields := []zap.Field{zap.Int64("telegramID", telegramID)}

	var (
		record    models.PlayerRecord
		rawState  []byte
		completed []int64
		messages  []int64
	)
	err := r.db.QueryRow(ctx, getPlayerByTelegramIDQuery, telegramID).Scan(
		&record.TelegramID,
		&rawState,
		&record.CurrentEventID,
		&record.PlaythroughCount,
		&completed,
		&messages,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Player not found", logFields...)
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get player", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to get player %d: %w", telegramID, err)
	}

	country, err := game.RestoreJSON(rawState)
	if err != nil {
		r.logger.Warn("Stored country state is invalid", append(logFields, zap.ByteString("state", rawState), zap.Error(err))...)
		return nil, fmt.Errorf("player %d: %w", telegramID, err)
	}
	record.Country = country
	record.CompletedNarrativeBlockIDs = nonNil(completed)
	record.MessageIDs = nonNil(messages)

	return &record, nil
}

// Save вставляет или обновляет запись игрока целиком.
func (r *pgPlayerRepository) Save(ctx context.Context, record *models.PlayerRecord) error {
	logFields := []zap.Field{
		zap.Int64("telegramID", record.TelegramID),
		zap.Int("playthrough", record.PlaythroughCount),
		zap.Int("year", record.Country.Year),
	}

	state, err := json.Marshal(record.Country)
	if err != nil {
		return fmt.Errorf("failed to marshal country state: %w", err)
	}

	err = r.db.QueryRow(ctx, upsertPlayerQuery,
		record.TelegramID,
		state,
		record.CurrentEventID,
		record.PlaythroughCount,
		pq.Array(nonNil(record.CompletedNarrativeBlockIDs)),
		pq.Array(nonNil(record.MessageIDs)),
	).Scan(&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		r.logger.Error("Failed to upsert player", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to save player %d: %w", record.TelegramID, err)
	}

	r.logger.Debug("Player saved", logFields...)
	return nil
}

func (r *pgPlayerRepository) Delete(ctx context.Context, telegramID int64) error {
	tag, err := r.db.Exec(ctx, deletePlayerQuery, telegramID)
	if err != nil {
		r.logger.Error("Failed to delete player", zap.Int64("telegramID", telegramID), zap.Error(err))
		return fmt.Errorf("failed to delete player %d: %w", telegramID, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	r.logger.Info("Player deleted", zap.Int64("telegramID", telegramID))
	return nil
}

// nonNil гарантирует пустой массив вместо NULL.
func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
