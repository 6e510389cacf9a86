package service

import (
	"context"
	"errors"
	"fmt"

	"kingdom-server/internal/game"
	"kingdom-server/internal/interfaces"
	"kingdom-server/internal/models"

	"go.uber.org/zap"
)

// SelectedEvent - выбранное событие вместе с упорядоченным списком вариантов.
type SelectedEvent struct {
	Event   models.EventCatalogEntry
	Options []models.EventOption
}

// EventSelector выбирает следующее событие для игрока.
// Условные события имеют строгий приоритет над случайными и событиями персонажей.
type EventSelector struct {
	catalog     interfaces.EventCatalogRepository
	rnd         game.RandSource
	maxAttempts int
	logger      *zap.Logger
}

// NewEventSelector создает селектор. rnd == nil означает глобальный генератор.
func NewEventSelector(catalog interfaces.EventCatalogRepository, rnd game.RandSource, maxAttempts int, logger *zap.Logger) *EventSelector {
	if rnd == nil {
		rnd = game.DefaultRandSource()
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &EventSelector{
		catalog:     catalog,
		rnd:         rnd,
		maxAttempts: maxAttempts,
		logger:      logger.Named("EventSelector"),
	}
}

// SelectNext выбирает событие для текущего состояния страны.
// Возвращает nil, nil, если подходящих событий нет (или все выбранные оказались без вариантов).
func (s *EventSelector) SelectNext(ctx context.Context, state models.CountryState) (*SelectedEvent, error) {
	discarded := make(map[int64]struct{})

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		candidates, err := s.candidates(ctx, state, discarded)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			s.logger.Info("No candidate events", zap.Int("year", state.Year), zap.Int("attempt", attempt))
			return nil, nil
		}

		weights := make([]int, len(candidates))
		for i, c := range candidates {
			weights[i] = c.FrequencyWeight
		}
		chosen := candidates[game.PickWeighted(weights, s.rnd)]

		options, err := s.LoadOptions(ctx, chosen.ID)
		if err != nil {
			return nil, err
		}
		if len(options) > 0 {
			s.logger.Debug("Event selected",
				zap.Int64("eventID", chosen.ID),
				zap.String("eventType", string(chosen.EventType)),
				zap.Int("candidates", len(candidates)),
				zap.Int("attempt", attempt),
			)
			return &SelectedEvent{Event: chosen, Options: options}, nil
		}

		s.logger.Warn("Selected event has no options, discarding",
			zap.Int64("eventID", chosen.ID),
			zap.Int("attempt", attempt),
		)
		discarded[chosen.ID] = struct{}{}
		selectionRetriesTotal.Inc()
	}

	s.logger.Warn("Event selection gave up after max attempts", zap.Int("maxAttempts", s.maxAttempts))
	return nil, nil
}

// SelectByHint пытается показать событие, на которое указывает выбранный вариант.
// Условия триггера не проверяются, но min_year соблюдается. Если подсказка непригодна,
// выполняется обычный SelectNext.
func (s *EventSelector) SelectByHint(ctx context.Context, state models.CountryState, eventID int64) (*SelectedEvent, error) {
	logFields := []zap.Field{zap.Int64("hintEventID", eventID), zap.Int("year", state.Year)}

	event, err := s.catalog.GetEvent(ctx, eventID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		s.logger.Warn("Hinted event not found, falling back to regular selection", logFields...)
		return s.SelectNext(ctx, state)
	case err != nil:
		return nil, fmt.Errorf("%w: get hinted event %d: %w", models.ErrStorageUnavailable, eventID, err)
	}

	if event.MinYear > state.Year {
		s.logger.Debug("Hinted event is not available yet", append(logFields, zap.Int("minYear", event.MinYear))...)
		return s.SelectNext(ctx, state)
	}

	options, err := s.LoadOptions(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	if len(options) == 0 {
		s.logger.Warn("Hinted event has no options, falling back to regular selection", logFields...)
		return s.SelectNext(ctx, state)
	}
	return &SelectedEvent{Event: *event, Options: options}, nil
}

// LoadOptions возвращает варианты события в порядке показа.
func (s *EventSelector) LoadOptions(ctx context.Context, eventID int64) ([]models.EventOption, error) {
	options, err := s.catalog.ListOptions(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("%w: list options for event %d: %w", models.ErrStorageUnavailable, eventID, err)
	}
	return options, nil
}

// candidates возвращает события, из которых делается взвешенный выбор.
func (s *EventSelector) candidates(ctx context.Context, state models.CountryState, discarded map[int64]struct{}) ([]models.EventCatalogEntry, error) {
	conditional, err := s.catalog.ListEvents(ctx, models.EventFilter{
		Types:      []models.EventType{models.EventTypeConditional},
		MaxMinYear: state.Year,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list conditional events: %w", models.ErrStorageUnavailable, err)
	}

	var matched []models.EventCatalogEntry
	for _, e := range s.usable(conditional, state.Year, discarded) {
		if game.Matches(e.TriggerConditions, state) {
			matched = append(matched, e)
		}
	}
	if len(matched) > 0 {
		return matched, nil
	}

	ambient, err := s.catalog.ListEvents(ctx, models.EventFilter{
		Types:      []models.EventType{models.EventTypeRandom, models.EventTypeCharacter},
		MaxMinYear: state.Year,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list random events: %w", models.ErrStorageUnavailable, err)
	}
	return s.usable(ambient, state.Year, discarded), nil
}

// usable отбрасывает уже отклоненные события и записи с некорректными данными.
func (s *EventSelector) usable(events []models.EventCatalogEntry, year int, discarded map[int64]struct{}) []models.EventCatalogEntry {
	result := make([]models.EventCatalogEntry, 0, len(events))
	for _, e := range events {
		if _, skip := discarded[e.ID]; skip {
			continue
		}
		if e.MinYear > year {
			continue
		}
		if err := validateCatalogEntry(e); err != nil {
			s.logger.Warn("Skipping invalid catalog entry", zap.Int64("eventID", e.ID), zap.Error(err))
			invalidCatalogEntriesTotal.Inc()
			continue
		}
		result = append(result, e)
	}
	return result
}

func validateCatalogEntry(e models.EventCatalogEntry) error {
	if e.FrequencyWeight < 1 {
		return fmt.Errorf("%w: event %d has frequency weight %d", models.ErrInvalidCatalogEntry, e.ID, e.FrequencyWeight)
	}
	if !e.EventType.Valid() {
		return fmt.Errorf("%w: event %d has unknown type %q", models.ErrInvalidCatalogEntry, e.ID, e.EventType)
	}
	return nil
}
