package admin

import "kingdom-server/internal/models"

// errorResponse - тело ответа об ошибке админки.
type errorResponse struct {
	Message string `json:"message"`
}

type createEventRequest struct {
	Name              *string                  `json:"name"`
	Description       string                   `json:"description" binding:"required"`
	CharacterName     *string                  `json:"character_name"`
	ImageURL          *string                  `json:"image_url" binding:"omitempty,url"`
	EventType         models.EventType         `json:"event_type" binding:"required,oneof=conditional random character"`
	TriggerConditions models.TriggerConditions `json:"trigger_conditions"`
	MinYear           int                      `json:"min_year" binding:"omitempty,min=1"`
	FrequencyWeight   int                      `json:"frequency_weight" binding:"omitempty,min=1"`
}

func (r createEventRequest) toModel() *models.EventCatalogEntry {
	e := &models.EventCatalogEntry{
		Name:              r.Name,
		Description:       r.Description,
		CharacterName:     r.CharacterName,
		ImageURL:          r.ImageURL,
		EventType:         r.EventType,
		TriggerConditions: r.TriggerConditions,
		MinYear:           r.MinYear,
		FrequencyWeight:   r.FrequencyWeight,
	}
	if e.MinYear == 0 {
		e.MinYear = 1
	}
	if e.FrequencyWeight == 0 {
		e.FrequencyWeight = 1
	}
	return e
}

type createOptionRequest struct {
	ButtonText     string           `json:"button_text" binding:"required"`
	Effects        models.EffectSet `json:"effects"`
	OutcomeText    *string          `json:"outcome_text"`
	ResultImageURL *string          `json:"result_image_url" binding:"omitempty,url"`
	NextEventID    *int64           `json:"next_event_id" binding:"omitempty,min=1"`
	DisplayOrder   int              `json:"display_order" binding:"min=0"`
}

type createBlockRequest struct {
	BlockType           string  `json:"block_type" binding:"required"`
	Text                string  `json:"text" binding:"required"`
	ImageURL            *string `json:"image_url" binding:"omitempty,url"`
	ButtonText          string  `json:"button_text"`
	SequenceOrder       int     `json:"sequence_order" binding:"min=0"`
	IsFinalInSequence   bool    `json:"is_final_in_sequence"`
	RequiredPlaythrough *int    `json:"required_playthrough" binding:"omitempty,min=0"`
}

// eventDetails - событие вместе с вариантами, в порядке показа игроку.
type eventDetails struct {
	models.EventCatalogEntry
	Options []models.EventOption `json:"options"`
}
