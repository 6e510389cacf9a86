package service

import (
	"context"
	"errors"
	"fmt"

	"kingdom-server/internal/game"
	"kingdom-server/internal/models"

	"go.uber.org/zap"
)

func (s *turnControllerImpl) Start(ctx context.Context, telegramID int64) (*TurnResult, error) {
	return s.runTurn(ctx, actionStart, telegramID, func(ctx context.Context, record *models.PlayerRecord, result *TurnResult) error {
		s.retireMessages(ctx, record, result)
		return s.continueStory(ctx, record, result)
	})
}

func (s *turnControllerImpl) AdvanceNarrative(ctx context.Context, telegramID int64, blockID int64) (*TurnResult, error) {
	return s.runTurn(ctx, actionNarrative, telegramID, func(ctx context.Context, record *models.PlayerRecord, result *TurnResult) error {
		logFields := []zap.Field{zap.Int64("telegramID", telegramID), zap.Int64("blockID", blockID)}

		s.retireMessages(ctx, record, result)

		block, err := s.sequencer.GetBlock(ctx, blockID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				// Кнопка от удаленного блока или от прошлого прохождения.
				s.logger.Warn("Pressed narrative block not found, continuing story", logFields...)
				return s.continueStory(ctx, record, result)
			}
			return err
		}
		s.sequencer.MarkCompleted(record, block.ID)

		if block.IsFinalInSequence {
			s.logger.Debug("Narrative sequence finished, entering gameplay", logFields...)
			return s.enterPlaying(ctx, record, result, nil, OutcomeNoContent)
		}

		next, err := s.sequencer.NextBlock(ctx, block.BlockType, record.PlaythroughCount, record.CompletedNarrativeBlockIDs)
		if err != nil {
			return err
		}
		if next == nil {
			s.logger.Warn("Narrative block is not final but has no successor, entering gameplay",
				append(logFields, zap.String("blockType", block.BlockType))...)
			return s.enterPlaying(ctx, record, result, nil, OutcomeNoContent)
		}
		return s.showNarrative(ctx, record, result, next)
	})
}

func (s *turnControllerImpl) MakeChoice(ctx context.Context, telegramID int64, optionIndex int) (*TurnResult, error) {
	return s.runTurn(ctx, actionChoice, telegramID, func(ctx context.Context, record *models.PlayerRecord, result *TurnResult) error {
		logFields := []zap.Field{zap.Int64("telegramID", telegramID), zap.Int("optionIndex", optionIndex)}

		if record.CurrentEventID == nil {
			s.logger.Warn("Choice without active event", logFields...)
			return models.ErrNoActiveEvent
		}
		eventID := *record.CurrentEventID
		logFields = append(logFields, zap.Int64("eventID", eventID))

		options, err := s.selector.LoadOptions(ctx, eventID)
		if err != nil {
			return err
		}
		if len(options) == 0 {
			// Событие исчезло из каталога или потеряло варианты: не держим ссылку на него.
			s.logger.Warn("Active event has no options anymore, clearing it", logFields...)
			record.CurrentEventID = nil
			if err := s.save(ctx, record); err != nil {
				return err
			}
			return models.ErrNoActiveEvent
		}
		if optionIndex < 0 || optionIndex >= len(options) {
			s.logger.Warn("Choice index out of range", append(logFields, zap.Int("optionsCount", len(options)))...)
			return fmt.Errorf("%w: %d not in [0, %d)", models.ErrInvalidChoiceIndex, optionIndex, len(options))
		}
		option := options[optionIndex]

		s.retireMessages(ctx, record, result)

		for _, applyErr := range game.Apply(&record.Country, option.Effects) {
			s.logger.Warn("Skipping effect", append(logFields, zap.Int64("optionID", option.ID), zap.Error(applyErr))...)
		}
		game.AdvanceYear(&record.Country)
		if s.rules.YearlyEconomy {
			balance := game.ApplyYearlyEconomy(&record.Country)
			s.logger.Debug("Yearly economy applied", append(logFields, zap.Int("balance", balance))...)
		}

		if reason := game.CheckGameOver(record.Country, s.rules.MaxYear); reason != game.GameOverNone {
			return s.gameOver(ctx, record, result, reason, option)
		}

		if option.HasOutcome() {
			if err := s.present(ctx, record, result, outcomePresentation(option)); err != nil {
				s.logger.Warn("Failed to present choice outcome", append(logFields, zap.Error(err))...)
			}
		}

		return s.enterPlaying(ctx, record, result, option.NextEventID, OutcomeStoryEnded)
	})
}

// continueStory показывает следующий блок вступления или переходит к событиям.
func (s *turnControllerImpl) continueStory(ctx context.Context, record *models.PlayerRecord, result *TurnResult) error {
	block, err := s.sequencer.NextBlock(ctx, s.rules.IntroBlockType, record.PlaythroughCount, record.CompletedNarrativeBlockIDs)
	if err != nil {
		return err
	}
	if block != nil {
		return s.showNarrative(ctx, record, result, block)
	}
	return s.enterPlaying(ctx, record, result, nil, OutcomeNoContent)
}

func (s *turnControllerImpl) showNarrative(ctx context.Context, record *models.PlayerRecord, result *TurnResult, block *models.NarrativeBlock) error {
	if err := s.present(ctx, record, result, narrativePresentation(block)); err != nil {
		s.logger.Error("Failed to present narrative block",
			zap.Int64("telegramID", record.TelegramID), zap.Int64("blockID", block.ID), zap.Error(err))
		// Блок не отмечаем: игрок увидит его при следующей попытке.
		if saveErr := s.save(ctx, record); saveErr != nil {
			return errors.Join(err, saveErr)
		}
		return err
	}
	s.sequencer.MarkCompleted(record, block.ID)

	result.Outcome = OutcomeNarrative
	result.Block = block
	return s.save(ctx, record)
}

// enterPlaying выбирает и показывает следующее событие. Если событий нет, ход заканчивается
// исходом whenEmpty (OutcomeNoContent при старте, OutcomeStoryEnded после выбора).
func (s *turnControllerImpl) enterPlaying(ctx context.Context, record *models.PlayerRecord, result *TurnResult, hint *int64, whenEmpty TurnOutcome) error {
	record.CurrentEventID = nil

	var (
		selected *SelectedEvent
		err      error
	)
	if hint != nil {
		selected, err = s.selector.SelectByHint(ctx, record.Country, *hint)
	} else {
		selected, err = s.selector.SelectNext(ctx, record.Country)
	}
	if err != nil {
		return err
	}

	if selected == nil {
		return s.finishWithoutEvent(ctx, record, result, whenEmpty)
	}

	if err := s.present(ctx, record, result, eventPresentation(selected)); err != nil {
		s.logger.Error("Failed to present event",
			zap.Int64("telegramID", record.TelegramID), zap.Int64("eventID", selected.Event.ID), zap.Error(err))
		if saveErr := s.save(ctx, record); saveErr != nil {
			return errors.Join(err, saveErr)
		}
		return err
	}

	eventID := selected.Event.ID
	record.CurrentEventID = &eventID

	result.Outcome = OutcomeEvent
	result.Event = &selected.Event
	result.Options = selected.Options
	return s.save(ctx, record)
}

// finishWithoutEvent завершает ход, когда показать нечего. Это не конец игры: прохождение не сбрасывается.
func (s *turnControllerImpl) finishWithoutEvent(ctx context.Context, record *models.PlayerRecord, result *TurnResult, outcome TurnOutcome) error {
	s.logger.Warn("No event available for player",
		zap.Int64("telegramID", record.TelegramID),
		zap.Int("year", record.Country.Year),
		zap.String("outcome", string(outcome)),
	)

	result.Outcome = outcome
	if outcome == OutcomeStoryEnded {
		s.presentTerminal(ctx, record, result, storyEndedPresentation())
		record.MessageIDs = []int64{}
	} else {
		s.presentTerminal(ctx, record, result, noContentPresentation())
	}
	record.CurrentEventID = nil
	return s.save(ctx, record)
}

// gameOver сбрасывает прохождение, сохраняет запись и только потом сообщает игроку.
func (s *turnControllerImpl) gameOver(ctx context.Context, record *models.PlayerRecord, result *TurnResult, reason game.GameOverReason, option models.EventOption) error {
	final := record.Country
	s.logger.Info("Game over",
		zap.Int64("telegramID", record.TelegramID),
		zap.String("reason", string(reason)),
		zap.Int("year", final.Year),
		zap.Int("playthrough", record.PlaythroughCount),
	)
	gameOversTotal.WithLabelValues(string(reason)).Inc()

	record.ResetPlaythrough(s.rules.Initial)

	result.Outcome = OutcomeGameOver
	result.GameOverReason = reason
	result.FinalCountry = &final

	if err := s.save(ctx, record); err != nil {
		return err
	}
	s.presentTerminal(ctx, record, result, gameOverPresentation(reason, final, option))
	return nil
}
