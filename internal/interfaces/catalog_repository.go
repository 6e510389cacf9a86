package interfaces

import (
	"context"

	"kingdom-server/internal/models"
)

// EventCatalogRepository provides read access to the event catalog for the game
// and write access for the admin API.
//
//go:generate mockery --name EventCatalogRepository --output ./mocks --outpkg mocks --case=underscore
type EventCatalogRepository interface {
	// ListEvents returns events matching the filter, ordered by id.
	ListEvents(ctx context.Context, filter models.EventFilter) ([]models.EventCatalogEntry, error)

	// GetEvent returns models.ErrNotFound if the event does not exist.
	GetEvent(ctx context.Context, id int64) (*models.EventCatalogEntry, error)

	// ListOptions returns the options of an event ordered by display_order, then id.
	// Returns an empty slice if the event has no options.
	ListOptions(ctx context.Context, eventID int64) ([]models.EventOption, error)

	CreateEvent(ctx context.Context, event *models.EventCatalogEntry) error
	CreateOption(ctx context.Context, option *models.EventOption) error
	DeleteEvent(ctx context.Context, id int64) error
}

// NarrativeBlockRepository provides access to narrative blocks.
//
//go:generate mockery --name NarrativeBlockRepository --output ./mocks --outpkg mocks --case=underscore
type NarrativeBlockRepository interface {
	// ListBlocks returns blocks of blockType available in the given playthrough
	// (required_playthrough NULL, 0 or equal), excluding excludeIDs, ordered by sequence_order, then id.
	ListBlocks(ctx context.Context, blockType string, playthrough int, excludeIDs []int64) ([]models.NarrativeBlock, error)

	// GetBlock returns models.ErrNotFound if the block does not exist.
	GetBlock(ctx context.Context, id int64) (*models.NarrativeBlock, error)

	// ListAllBlocks returns every block ordered by block_type, sequence_order, id.
	ListAllBlocks(ctx context.Context) ([]models.NarrativeBlock, error)

	CreateBlock(ctx context.Context, block *models.NarrativeBlock) error
	DeleteBlock(ctx context.Context, id int64) error
}
