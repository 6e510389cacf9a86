package models

import "time"

// EventType определяет, как событие попадает в выборку.
// Совпадает с CHECK-ограничением колонки events.event_type.
type EventType string

const (
	EventTypeConditional EventType = "conditional" // Событие с условиями, имеет приоритет над остальными.
	EventTypeRandom      EventType = "random"      // Фоновое случайное событие.
	EventTypeCharacter   EventType = "character"   // Визит персонажа, выбирается вместе со случайными.
)

// Valid сообщает, является ли тип события известным.
func (t EventType) Valid() bool {
	switch t {
	case EventTypeConditional, EventTypeRandom, EventTypeCharacter:
		return true
	}
	return false
}

// EffectSet - набор изменений состояния страны: имя поля -> дельта (для числовых полей)
// или новое значение (для уровней). Хранится как JSONB.
type EffectSet map[string]any

// TriggerConditions - условия появления события: имя поля -> оператор -> значение.
// Например {"support": {"<=": 20}, "army": {">=": "medium"}}.
type TriggerConditions map[string]map[string]any

// EventCatalogEntry представляет событие из каталога.
// Ядро никогда не изменяет эти записи, они перечитываются при каждом выборе.
type EventCatalogEntry struct {
	ID                int64             `json:"id" db:"id"`
	Name              *string           `json:"name,omitempty" db:"name"`
	Description       string            `json:"description" db:"description"`
	CharacterName     *string           `json:"character_name,omitempty" db:"character_name"`
	ImageURL          *string           `json:"image_url,omitempty" db:"image_url"`
	EventType         EventType         `json:"event_type" db:"event_type"`
	TriggerConditions TriggerConditions `json:"trigger_conditions,omitempty" db:"trigger_conditions"`
	MinYear           int               `json:"min_year" db:"min_year"`
	FrequencyWeight   int               `json:"frequency_weight" db:"frequency_weight"` // Относительный вес, должен быть >= 1
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
}

// EventOption - вариант ответа на событие.
// Индекс выбора игрока соответствует порядку DisplayOrder (при равенстве - по ID).
type EventOption struct {
	ID             int64     `json:"id" db:"id"`
	EventID        int64     `json:"event_id" db:"event_id"`
	ButtonText     string    `json:"button_text" db:"button_text"`
	Effects        EffectSet `json:"effects" db:"effects"`
	OutcomeText    *string   `json:"outcome_text,omitempty" db:"outcome_text"`
	ResultImageURL *string   `json:"result_image_url,omitempty" db:"result_image_url"`
	NextEventID    *int64    `json:"next_event_id,omitempty" db:"next_event_id"` // Подсказка: какое событие показать следующим
	DisplayOrder   int       `json:"display_order" db:"display_order"`
}

// HasOutcome сообщает, нужно ли показывать отдельное сообщение с результатом выбора.
func (o EventOption) HasOutcome() bool {
	return (o.OutcomeText != nil && *o.OutcomeText != "") || (o.ResultImageURL != nil && *o.ResultImageURL != "")
}

// EventFilter - параметры выборки событий из каталога.
type EventFilter struct {
	Types      []EventType
	MaxMinYear int // Только события с min_year <= MaxMinYear
}
