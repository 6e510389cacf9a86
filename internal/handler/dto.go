package handler

import (
	"time"

	"kingdom-server/internal/models"
	"kingdom-server/internal/service"
)

// APIError представляет стандартизированный ответ об ошибке.
type APIError struct {
	Message string `json:"message"`
}

// ChoiceRequest - тело POST /api/v1/players/:id/choice.
type ChoiceRequest struct {
	OptionIndex *int `json:"option_index" validate:"required,min=0"`
}

// PlayerView - состояние игрока для клиента.
type PlayerView struct {
	TelegramID                 int64               `json:"telegram_id"`
	State                      models.CountryState `json:"state"`
	CurrentEventID             *int64              `json:"current_event_id,omitempty"`
	PlaythroughCount           int                 `json:"playthrough_count"`
	CompletedNarrativeBlockIDs []int64             `json:"completed_narrative_block_ids"`
	MessageIDs                 []int64             `json:"message_ids"`
	UpdatedAt                  time.Time           `json:"updated_at"`
}

// TurnResponse - результат хода.
type TurnResponse struct {
	Outcome           service.TurnOutcome   `json:"outcome"`
	Messages          []models.Presentation `json:"messages"`
	GameOverReason    string                `json:"game_over_reason,omitempty"`
	GameOverMessage   string                `json:"game_over_message,omitempty"`
	FinalState        *models.CountryState  `json:"final_state,omitempty"`
	RetiredMessageIDs []int64               `json:"retired_message_ids,omitempty"`
	Player            *PlayerView           `json:"player,omitempty"`
}

func toPlayerView(p *models.PlayerRecord) *PlayerView {
	if p == nil {
		return nil
	}
	return &PlayerView{
		TelegramID:                 p.TelegramID,
		State:                      p.Country,
		CurrentEventID:             p.CurrentEventID,
		PlaythroughCount:           p.PlaythroughCount,
		CompletedNarrativeBlockIDs: p.CompletedNarrativeBlockIDs,
		MessageIDs:                 p.MessageIDs,
		UpdatedAt:                  p.UpdatedAt,
	}
}

func toTurnResponse(r *service.TurnResult) TurnResponse {
	resp := TurnResponse{
		Outcome:           r.Outcome,
		Messages:          r.Presented,
		FinalState:        r.FinalCountry,
		RetiredMessageIDs: r.RetiredMessageIDs,
		Player:            toPlayerView(r.Player),
	}
	if resp.Messages == nil {
		resp.Messages = []models.Presentation{}
	}
	if r.GameOverReason != "" {
		resp.GameOverReason = string(r.GameOverReason)
		resp.GameOverMessage = r.GameOverReason.Message()
	}
	return resp
}
