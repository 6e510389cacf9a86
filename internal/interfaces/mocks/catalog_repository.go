package mocks

import (
	"context"
	"kingdom-server/internal/models"

	"github.com/stretchr/testify/mock"
)

// EventCatalogRepository is a mock type for the EventCatalogRepository type
type EventCatalogRepository struct {
	mock.Mock
}

func (m *EventCatalogRepository) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.EventCatalogEntry, error) {
	args := m.Called(ctx, filter)
	var r0 []models.EventCatalogEntry
	if args.Get(0) != nil {
		r0 = args.Get(0).([]models.EventCatalogEntry)
	}
	return r0, args.Error(1)
}

func (m *EventCatalogRepository) GetEvent(ctx context.Context, id int64) (*models.EventCatalogEntry, error) {
	args := m.Called(ctx, id)
	var r0 *models.EventCatalogEntry
	if args.Get(0) != nil {
		r0 = args.Get(0).(*models.EventCatalogEntry)
	}
	return r0, args.Error(1)
}

func (m *EventCatalogRepository) ListOptions(ctx context.Context, eventID int64) ([]models.EventOption, error) {
	args := m.Called(ctx, eventID)
	var r0 []models.EventOption
	if args.Get(0) != nil {
		r0 = args.Get(0).([]models.EventOption)
	}
	return r0, args.Error(1)
}

func (m *EventCatalogRepository) CreateEvent(ctx context.Context, event *models.EventCatalogEntry) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *EventCatalogRepository) CreateOption(ctx context.Context, option *models.EventOption) error {
	args := m.Called(ctx, option)
	return args.Error(0)
}

func (m *EventCatalogRepository) DeleteEvent(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// NarrativeBlockRepository is a mock type for the NarrativeBlockRepository type
type NarrativeBlockRepository struct {
	mock.Mock
}

func (m *NarrativeBlockRepository) ListBlocks(ctx context.Context, blockType string, playthrough int, excludeIDs []int64) ([]models.NarrativeBlock, error) {
	args := m.Called(ctx, blockType, playthrough, excludeIDs)
	var r0 []models.NarrativeBlock
	if args.Get(0) != nil {
		r0 = args.Get(0).([]models.NarrativeBlock)
	}
	return r0, args.Error(1)
}

func (m *NarrativeBlockRepository) GetBlock(ctx context.Context, id int64) (*models.NarrativeBlock, error) {
	args := m.Called(ctx, id)
	var r0 *models.NarrativeBlock
	if args.Get(0) != nil {
		r0 = args.Get(0).(*models.NarrativeBlock)
	}
	return r0, args.Error(1)
}

func (m *NarrativeBlockRepository) ListAllBlocks(ctx context.Context) ([]models.NarrativeBlock, error) {
	args := m.Called(ctx)
	var r0 []models.NarrativeBlock
	if args.Get(0) != nil {
		r0 = args.Get(0).([]models.NarrativeBlock)
	}
	return r0, args.Error(1)
}

func (m *NarrativeBlockRepository) CreateBlock(ctx context.Context, block *models.NarrativeBlock) error {
	args := m.Called(ctx, block)
	return args.Error(0)
}

func (m *NarrativeBlockRepository) DeleteBlock(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
