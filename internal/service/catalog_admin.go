package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"kingdom-server/internal/game"
	"kingdom-server/internal/interfaces"
	"kingdom-server/internal/models"

	"go.uber.org/zap"
)

// CatalogAdmin - операции админки над каталогом событий, блоками повествования и игроками.
// Все записи проверяются до сохранения, ошибки проверки оборачивают models.ErrInvalidCatalogEntry.
type CatalogAdmin interface {
	ListEvents(ctx context.Context) ([]models.EventCatalogEntry, error)
	GetEvent(ctx context.Context, id int64) (*models.EventCatalogEntry, []models.EventOption, error)
	CreateEvent(ctx context.Context, event *models.EventCatalogEntry) error
	DeleteEvent(ctx context.Context, id int64) error
	AddOption(ctx context.Context, option *models.EventOption) error

	ListBlocks(ctx context.Context) ([]models.NarrativeBlock, error)
	CreateBlock(ctx context.Context, block *models.NarrativeBlock) error
	DeleteBlock(ctx context.Context, id int64) error

	GetPlayer(ctx context.Context, telegramID int64) (*models.PlayerRecord, error)
	ResetPlayer(ctx context.Context, telegramID int64) error
}

type catalogAdmin struct {
	catalog interfaces.EventCatalogRepository
	blocks  interfaces.NarrativeBlockRepository
	players interfaces.PlayerRepository
	logger  *zap.Logger
}

var _ CatalogAdmin = (*catalogAdmin)(nil)

// NewCatalogAdmin создает сервис админки.
func NewCatalogAdmin(
	catalog interfaces.EventCatalogRepository,
	blocks interfaces.NarrativeBlockRepository,
	players interfaces.PlayerRepository,
	logger *zap.Logger,
) CatalogAdmin {
	return &catalogAdmin{
		catalog: catalog,
		blocks:  blocks,
		players: players,
		logger:  logger.Named("CatalogAdmin"),
	}
}

func (s *catalogAdmin) ListEvents(ctx context.Context) ([]models.EventCatalogEntry, error) {
	events, err := s.catalog.ListEvents(ctx, models.EventFilter{MaxMinYear: maxYearFilter})
	if err != nil {
		return nil, s.storageError("list events", err)
	}
	return events, nil
}

func (s *catalogAdmin) GetEvent(ctx context.Context, id int64) (*models.EventCatalogEntry, []models.EventOption, error) {
	event, err := s.catalog.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil, err
		}
		return nil, nil, s.storageError("get event", err)
	}
	options, err := s.catalog.ListOptions(ctx, id)
	if err != nil {
		return nil, nil, s.storageError("list options", err)
	}
	return event, options, nil
}

func (s *catalogAdmin) CreateEvent(ctx context.Context, event *models.EventCatalogEntry) error {
	if err := validateEvent(event); err != nil {
		return err
	}
	if err := s.catalog.CreateEvent(ctx, event); err != nil {
		return s.storageError("create event", err)
	}
	s.logger.Info("Event created", zap.Int64("eventID", event.ID), zap.String("type", string(event.EventType)))
	return nil
}

func (s *catalogAdmin) DeleteEvent(ctx context.Context, id int64) error {
	if err := s.catalog.DeleteEvent(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return s.storageError("delete event", err)
	}
	s.logger.Info("Event deleted", zap.Int64("eventID", id))
	return nil
}

func (s *catalogAdmin) AddOption(ctx context.Context, option *models.EventOption) error {
	if strings.TrimSpace(option.ButtonText) == "" {
		return fmt.Errorf("%w: button_text is required", models.ErrInvalidCatalogEntry)
	}
	if err := game.ValidateEffects(option.Effects); err != nil {
		return fmt.Errorf("%w: %w", models.ErrInvalidCatalogEntry, err)
	}

	if _, err := s.catalog.GetEvent(ctx, option.EventID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return s.storageError("get event", err)
	}
	if option.NextEventID != nil {
		if _, err := s.catalog.GetEvent(ctx, *option.NextEventID); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return fmt.Errorf("%w: next event %d does not exist", models.ErrInvalidCatalogEntry, *option.NextEventID)
			}
			return s.storageError("get next event", err)
		}
	}

	if err := s.catalog.CreateOption(ctx, option); err != nil {
		return s.storageError("create option", err)
	}
	s.logger.Info("Option added", zap.Int64("eventID", option.EventID), zap.Int64("optionID", option.ID))
	return nil
}

func (s *catalogAdmin) ListBlocks(ctx context.Context) ([]models.NarrativeBlock, error) {
	blocks, err := s.blocks.ListAllBlocks(ctx)
	if err != nil {
		return nil, s.storageError("list blocks", err)
	}
	return blocks, nil
}

func (s *catalogAdmin) CreateBlock(ctx context.Context, block *models.NarrativeBlock) error {
	switch {
	case strings.TrimSpace(block.BlockType) == "":
		return fmt.Errorf("%w: block_type is required", models.ErrInvalidCatalogEntry)
	case strings.TrimSpace(block.Text) == "":
		return fmt.Errorf("%w: text is required", models.ErrInvalidCatalogEntry)
	case block.RequiredPlaythrough != nil && *block.RequiredPlaythrough < 0:
		return fmt.Errorf("%w: required_playthrough must not be negative", models.ErrInvalidCatalogEntry)
	}
	if err := s.blocks.CreateBlock(ctx, block); err != nil {
		return s.storageError("create block", err)
	}
	s.logger.Info("Narrative block created", zap.Int64("blockID", block.ID), zap.String("blockType", block.BlockType))
	return nil
}

func (s *catalogAdmin) DeleteBlock(ctx context.Context, id int64) error {
	if err := s.blocks.DeleteBlock(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return s.storageError("delete block", err)
	}
	s.logger.Info("Narrative block deleted", zap.Int64("blockID", id))
	return nil
}

func (s *catalogAdmin) GetPlayer(ctx context.Context, telegramID int64) (*models.PlayerRecord, error) {
	player, err := s.players.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrInvalidState) {
			return nil, err
		}
		return nil, s.storageError("get player", err)
	}
	return player, nil
}

// ResetPlayer удаляет запись игрока, следующий /start начнет игру с нуля.
func (s *catalogAdmin) ResetPlayer(ctx context.Context, telegramID int64) error {
	if err := s.players.Delete(ctx, telegramID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return err
		}
		return s.storageError("delete player", err)
	}
	s.logger.Info("Player reset", zap.Int64("telegramID", telegramID))
	return nil
}

func (s *catalogAdmin) storageError(op string, err error) error {
	s.logger.Error("Storage operation failed", zap.String("op", op), zap.Error(err))
	return fmt.Errorf("%w: %s: %w", models.ErrStorageUnavailable, op, err)
}

// maxYearFilter снимает ограничение по min_year при выборке для админки.
const maxYearFilter = 1<<31 - 1

func validateEvent(e *models.EventCatalogEntry) error {
	switch {
	case !e.EventType.Valid():
		return fmt.Errorf("%w: unknown event type %q", models.ErrInvalidCatalogEntry, e.EventType)
	case strings.TrimSpace(e.Description) == "":
		return fmt.Errorf("%w: description is required", models.ErrInvalidCatalogEntry)
	case e.FrequencyWeight < 1:
		return fmt.Errorf("%w: frequency_weight must be >= 1", models.ErrInvalidCatalogEntry)
	case e.MinYear < 1:
		return fmt.Errorf("%w: min_year must be >= 1", models.ErrInvalidCatalogEntry)
	}
	return game.ValidateConditions(e.TriggerConditions)
}
