package interfaces

import (
	"context"

	"kingdom-server/internal/models"
)

// PlayerRepository defines the interface for loading and saving player records.
//
//go:generate mockery --name PlayerRepository --output ./mocks --outpkg mocks --case=underscore
type PlayerRepository interface {
	// GetByTelegramID retrieves a player record by telegram id.
	// Returns models.ErrNotFound if the player has never played.
	// Returns an error wrapping models.ErrInvalidState if the stored country state is corrupted.
	GetByTelegramID(ctx context.Context, telegramID int64) (*models.PlayerRecord, error)

	// Save inserts or updates (upsert) the whole player record.
	Save(ctx context.Context, record *models.PlayerRecord) error

	// Delete removes the player record. Returns models.ErrNotFound if it does not exist.
	Delete(ctx context.Context, telegramID int64) error
}
