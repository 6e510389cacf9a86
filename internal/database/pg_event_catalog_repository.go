package database

import (
	"context"
	"errors"
	"fmt"

	"kingdom-server/internal/interfaces"
	"kingdom-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	eventFields  = `id, name, description, character_name, image_url, event_type, trigger_conditions, min_year, frequency_weight, created_at`
	optionFields = `id, event_id, button_text, effects, outcome_text, result_image_url, next_event_id, display_order`

	listEventsQuery = `
        SELECT ` + eventFields + `
        FROM events
        WHERE event_type = ANY($1) AND min_year <= $2
        ORDER BY id
    `
	getEventByIDQuery = `SELECT ` + eventFields + ` FROM events WHERE id = $1`
	listOptionsQuery  = `
        SELECT ` + optionFields + `
        FROM event_options
        WHERE event_id = $1
        ORDER BY display_order, id
    `
	createEventQuery = `
        INSERT INTO events (name, description, character_name, image_url, event_type, trigger_conditions, min_year, frequency_weight)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, created_at
    `
	createOptionQuery = `
        INSERT INTO event_options (event_id, button_text, effects, outcome_text, result_image_url, next_event_id, display_order)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id
    `
	deleteEventQuery = `DELETE FROM events WHERE id = $1`
)

// Compile-time check to ensure pgEventCatalogRepository implements the interface
var _ interfaces.EventCatalogRepository = (*pgEventCatalogRepository)(nil)

type pgEventCatalogRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgEventCatalogRepository создает репозиторий каталога событий.
func NewPgEventCatalogRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.EventCatalogRepository {
	return &pgEventCatalogRepository{
		db:     db,
		logger: logger.Named("PgEventCatalogRepo"),
	}
}

// ListEvents возвращает события указанных типов с min_year <= filter.MaxMinYear.
// Пустой список типов означает все типы.
func (r *pgEventCatalogRepository) ListEvents(ctx context.Context, filter models.EventFilter) ([]models.EventCatalogEntry, error) {
	types := make([]string, 0, len(filter.Types))
	for _, t := range filter.Types {
		types = append(types, string(t))
	}
	if len(types) == 0 {
		types = []string{string(models.EventTypeConditional), string(models.EventTypeRandom), string(models.EventTypeCharacter)}
	}
	logFields := []zap.Field{zap.Strings("types", types), zap.Int("maxMinYear", filter.MaxMinYear)}

	events := make([]models.EventCatalogEntry, 0)
	if err := pgxscan.Select(ctx, r.db, &events, listEventsQuery, pq.Array(types), filter.MaxMinYear); err != nil {
		r.logger.Error("Failed to list events", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	r.logger.Debug("Events listed", append(logFields, zap.Int("count", len(events)))...)
	return events, nil
}

func (r *pgEventCatalogRepository) GetEvent(ctx context.Context, id int64) (*models.EventCatalogEntry, error) {
	var event models.EventCatalogEntry
	if err := pgxscan.Get(ctx, r.db, &event, getEventByIDQuery, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Event not found", zap.Int64("eventID", id))
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get event", zap.Int64("eventID", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get event %d: %w", id, err)
	}
	return &event, nil
}

func (r *pgEventCatalogRepository) ListOptions(ctx context.Context, eventID int64) ([]models.EventOption, error) {
	options := make([]models.EventOption, 0)
	if err := pgxscan.Select(ctx, r.db, &options, listOptionsQuery, eventID); err != nil {
		r.logger.Error("Failed to list event options", zap.Int64("eventID", eventID), zap.Error(err))
		return nil, fmt.Errorf("failed to list options of event %d: %w", eventID, err)
	}
	return options, nil
}

// CreateEvent вставляет событие и заполняет ID и CreatedAt.
func (r *pgEventCatalogRepository) CreateEvent(ctx context.Context, event *models.EventCatalogEntry) error {
	logFields := []zap.Field{zap.String("eventType", string(event.EventType))}

	var conditions any
	if len(event.TriggerConditions) > 0 {
		conditions = event.TriggerConditions
	}

	err := r.db.QueryRow(ctx, createEventQuery,
		event.Name,
		event.Description,
		event.CharacterName,
		event.ImageURL,
		string(event.EventType),
		conditions,
		event.MinYear,
		event.FrequencyWeight,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		r.logger.Error("Failed to create event", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to create event: %w", err)
	}

	r.logger.Info("Event created", append(logFields, zap.Int64("eventID", event.ID))...)
	return nil
}

// CreateOption вставляет вариант ответа и заполняет ID.
func (r *pgEventCatalogRepository) CreateOption(ctx context.Context, option *models.EventOption) error {
	logFields := []zap.Field{zap.Int64("eventID", option.EventID)}

	effects := option.Effects
	if effects == nil {
		effects = models.EffectSet{}
	}

	err := r.db.QueryRow(ctx, createOptionQuery,
		option.EventID,
		option.ButtonText,
		effects,
		option.OutcomeText,
		option.ResultImageURL,
		option.NextEventID,
		option.DisplayOrder,
	).Scan(&option.ID)
	if err != nil {
		r.logger.Error("Failed to create event option", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to create option for event %d: %w", option.EventID, err)
	}

	r.logger.Info("Event option created", append(logFields, zap.Int64("optionID", option.ID))...)
	return nil
}

// DeleteEvent удаляет событие вместе с вариантами ответа (ON DELETE CASCADE).
func (r *pgEventCatalogRepository) DeleteEvent(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, deleteEventQuery, id)
	if err != nil {
		r.logger.Error("Failed to delete event", zap.Int64("eventID", id), zap.Error(err))
		return fmt.Errorf("failed to delete event %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	r.logger.Info("Event deleted", zap.Int64("eventID", id))
	return nil
}
