package models

import (
	"slices"
	"time"
)

// PlayerRecord - сохраняемое состояние игрока (таблица players).
type PlayerRecord struct {
	TelegramID                 int64        `json:"telegram_id" db:"telegram_id"`
	Country                    CountryState `json:"state" db:"state"`
	CurrentEventID             *int64       `json:"current_event_id,omitempty" db:"current_event_id"` // Задан, только пока игрок не ответил на показанное событие
	PlaythroughCount           int          `json:"playthrough_count" db:"playthrough_count"`
	CompletedNarrativeBlockIDs []int64      `json:"completed_narrative_block_ids" db:"completed_narrative_block_ids"`
	MessageIDs                 []int64      `json:"message_ids" db:"message_ids"` // Сообщения текущего хода, удаляются на следующем
	CreatedAt                  time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt                  time.Time    `json:"updated_at" db:"updated_at"`
}

// NewPlayerRecord создает запись для нового игрока с начальным состоянием страны.
func NewPlayerRecord(telegramID int64, initial CountryState) *PlayerRecord {
	return &PlayerRecord{
		TelegramID:                 telegramID,
		Country:                    initial,
		PlaythroughCount:           1,
		CompletedNarrativeBlockIDs: []int64{},
		MessageIDs:                 []int64{},
	}
}

// HasCompletedBlock сообщает, прочитан ли блок повествования в текущем прохождении.
func (p *PlayerRecord) HasCompletedBlock(blockID int64) bool {
	return slices.Contains(p.CompletedNarrativeBlockIDs, blockID)
}

// ResetPlaythrough начинает новое прохождение после конца игры.
func (p *PlayerRecord) ResetPlaythrough(initial CountryState) {
	p.PlaythroughCount++
	p.Country = initial
	p.CompletedNarrativeBlockIDs = []int64{}
	p.CurrentEventID = nil
	p.MessageIDs = []int64{}
}
