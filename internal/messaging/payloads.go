package messaging

import "kingdom-server/internal/models"

// Типы команд для шлюза чата.
const (
	CommandRender = "render"
	CommandDelete = "delete"
)

// Действия игрока во входящей очереди.
const (
	ActionStart         = "start"
	ActionNarrativeNext = "narrative_next"
	ActionChoice        = "choice"
)

// RenderCommand - команда шлюзу показать сообщение игроку.
// Шлюз отвечает RenderReply в очередь ReplyTo с тем же CorrelationId.
type RenderCommand struct {
	Type       string                  `json:"type"`
	TelegramID int64                   `json:"telegram_id"`
	Kind       models.PresentationKind `json:"kind"`
	Title      string                  `json:"title,omitempty"`
	Text       string                  `json:"text"`
	ImageURL   string                  `json:"image_url,omitempty"`
	Buttons    []models.Button         `json:"buttons,omitempty"`
}

// RenderReply - ответ шлюза на RenderCommand.
type RenderReply struct {
	MessageID int64  `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

// DeleteCommand - команда удалить сообщения. Ответа не требует.
type DeleteCommand struct {
	Type       string  `json:"type"`
	TelegramID int64   `json:"telegram_id"`
	MessageIDs []int64 `json:"message_ids"`
}

// PlayerActionPayload - действие игрока, пришедшее из шлюза.
// Вместо Action/BlockID/OptionIndex шлюз может передать сырые CallbackData нажатой кнопки.
type PlayerActionPayload struct {
	TelegramID   int64  `json:"telegram_id"`
	Action       string `json:"action,omitempty"`
	BlockID      int64  `json:"block_id,omitempty"`
	OptionIndex  *int   `json:"option_index,omitempty"`
	CallbackData string `json:"callback_data,omitempty"`
}
