package service

import (
	"fmt"
	"strings"

	"kingdom-server/internal/game"
	"kingdom-server/internal/models"
)

const (
	defaultNarrativeButton = "Далее"
	storyEndedText         = "Странно, но событий больше нет... Возможно, вы достигли конца? Начните заново? /start"
	noContentText          = "Не удалось начать игру. Нет доступных событий."
)

func narrativePresentation(block *models.NarrativeBlock) models.Presentation {
	button := block.ButtonText
	if button == "" {
		button = defaultNarrativeButton
	}
	return models.Presentation{
		Kind:     models.PresentationNarrative,
		Text:     block.Text,
		ImageURL: deref(block.ImageURL),
		Buttons:  []models.Button{{Text: button, CallbackData: models.NarrativeCallbackData(block.ID)}},
	}
}

func eventPresentation(selected *SelectedEvent) models.Presentation {
	buttons := make([]models.Button, len(selected.Options))
	for i, opt := range selected.Options {
		buttons[i] = models.Button{Text: opt.ButtonText, CallbackData: models.ChoiceCallbackData(i)}
	}

	title := deref(selected.Event.CharacterName)
	if title == "" {
		title = deref(selected.Event.Name)
	}
	return models.Presentation{
		Kind:     models.PresentationEvent,
		Title:    title,
		Text:     selected.Event.Description,
		ImageURL: deref(selected.Event.ImageURL),
		Buttons:  buttons,
	}
}

func outcomePresentation(option models.EventOption) models.Presentation {
	return models.Presentation{
		Kind:     models.PresentationOutcome,
		Text:     deref(option.OutcomeText),
		ImageURL: deref(option.ResultImageURL),
	}
}

func gameOverPresentation(reason game.GameOverReason, final models.CountryState, option models.EventOption) models.Presentation {
	var b strings.Builder
	if text := deref(option.OutcomeText); text != "" {
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "Игра окончена! %s\n", reason.Message())
	fmt.Fprintf(&b, "Лет правления: %d. Поддержка: %d, казна: %d.\n", final.Year-1, final.Support, final.Treasury)
	b.WriteString("Начать заново? /start")

	return models.Presentation{
		Kind:     models.PresentationGameOver,
		Text:     b.String(),
		ImageURL: deref(option.ResultImageURL),
	}
}

func storyEndedPresentation() models.Presentation {
	return models.Presentation{Kind: models.PresentationStoryEnded, Text: storyEndedText}
}

func noContentPresentation() models.Presentation {
	return models.Presentation{Kind: models.PresentationNoContent, Text: noContentText}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
