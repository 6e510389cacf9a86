package models

import (
	"fmt"
	"strconv"
	"strings"
)

// PresentationKind - тип показываемого игроку сообщения.
type PresentationKind string

const (
	PresentationNarrative  PresentationKind = "narrative"
	PresentationEvent      PresentationKind = "event"
	PresentationOutcome    PresentationKind = "outcome"
	PresentationGameOver   PresentationKind = "game_over"
	PresentationStoryEnded PresentationKind = "story_ended"
	PresentationNoContent  PresentationKind = "no_content"
	PresentationNotice     PresentationKind = "notice" // Короткое служебное сообщение об отклоненном действии
)

// Button - кнопка под сообщением. CallbackData возвращается транспортом при нажатии.
type Button struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// Presentation - содержимое одного сообщения, независимое от конкретного чат-протокола.
type Presentation struct {
	Kind     PresentationKind `json:"kind"`
	Title    string           `json:"title,omitempty"`
	Text     string           `json:"text"`
	ImageURL string           `json:"image_url,omitempty"`
	Buttons  []Button         `json:"buttons,omitempty"`
}

// ChoiceCallbackData формирует callback data для варианта ответа с индексом i.
func ChoiceCallbackData(i int) string {
	return fmt.Sprintf("choice_%d", i)
}

// ParseCallbackData разбирает callback data кнопки: "choice_<i>" или "narrative_<id>".
func ParseCallbackData(data string) (action string, value int64, err error) {
	prefix, raw, ok := strings.Cut(data, "_")
	if !ok || (prefix != "choice" && prefix != "narrative") {
		return "", 0, fmt.Errorf("%w: unknown callback data %q", ErrInvalidPlayerAction, data)
	}
	value, err = strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return "", 0, fmt.Errorf("%w: bad callback value %q", ErrInvalidPlayerAction, data)
	}
	return prefix, value, nil
}

// NarrativeCallbackData формирует callback data для кнопки "далее" блока повествования.
func NarrativeCallbackData(blockID int64) string {
	return fmt.Sprintf("narrative_%d", blockID)
}
