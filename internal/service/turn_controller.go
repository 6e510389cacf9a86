package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"kingdom-server/internal/game"
	"kingdom-server/internal/interfaces"
	"kingdom-server/internal/models"

	"go.uber.org/zap"
)

// TurnOutcome - чем закончился ход.
type TurnOutcome string

const (
	OutcomeNarrative  TurnOutcome = "narrative"   // Показан блок повествования
	OutcomeEvent      TurnOutcome = "event"       // Показано событие, ждем выбора
	OutcomeGameOver   TurnOutcome = "game_over"   // Прохождение закончилось, игрок сброшен
	OutcomeStoryEnded TurnOutcome = "story_ended" // После выбора не нашлось следующего события
	OutcomeNoContent  TurnOutcome = "no_content"  // Нечего показать при старте
	OutcomeRejected   TurnOutcome = "rejected"    // Ход отклонен (нет активного события, неверный индекс и т.п.)
)

// Названия действий для логов и метрик.
const (
	actionStart     = "start"
	actionNarrative = "narrative_next"
	actionChoice    = "choice"
)

// TurnResult - результат одного хода для адаптера (HTTP, очередь).
type TurnResult struct {
	Outcome           TurnOutcome
	Presented         []models.Presentation      // Все показанные за ход сообщения, по порядку
	Block             *models.NarrativeBlock     // Показанный блок (OutcomeNarrative)
	Event             *models.EventCatalogEntry  // Показанное событие (OutcomeEvent)
	Options           []models.EventOption       // Варианты показанного события
	GameOverReason    game.GameOverReason        // Причина конца игры (OutcomeGameOver)
	FinalCountry      *models.CountryState       // Состояние страны в момент конца игры
	RetiredMessageIDs []int64                    // Сообщения прошлого хода, отправленные на удаление
	Player            *models.PlayerRecord       // Запись игрока после хода
}

// TurnController обрабатывает ходы игроков.
type TurnController interface {
	// Start начинает или продолжает игру: следующий блок вступления или событие.
	Start(ctx context.Context, telegramID int64) (*TurnResult, error)

	// AdvanceNarrative обрабатывает нажатие "далее" на блоке повествования.
	AdvanceNarrative(ctx context.Context, telegramID int64, blockID int64) (*TurnResult, error)

	// MakeChoice применяет выбранный вариант текущего события.
	// Возвращает models.ErrNoActiveEvent или models.ErrInvalidChoiceIndex без изменения состояния.
	MakeChoice(ctx context.Context, telegramID int64, optionIndex int) (*TurnResult, error)

	// GetPlayer возвращает сохраненную запись игрока или models.ErrNotFound.
	GetPlayer(ctx context.Context, telegramID int64) (*models.PlayerRecord, error)
}

type turnControllerImpl struct {
	players     interfaces.PlayerRepository
	selector    *EventSelector
	sequencer   *NarrativeSequencer
	presenter   interfaces.Presenter
	locker      interfaces.PlayerLocker
	rules       game.Rules
	turnTimeout time.Duration
	logger      *zap.Logger
}

// NewTurnController создает контроллер ходов. locker == nil означает блокировку в памяти процесса.
func NewTurnController(
	players interfaces.PlayerRepository,
	selector *EventSelector,
	sequencer *NarrativeSequencer,
	presenter interfaces.Presenter,
	locker interfaces.PlayerLocker,
	rules game.Rules,
	turnTimeout time.Duration,
	logger *zap.Logger,
) TurnController {
	if locker == nil {
		locker = NewLocalPlayerLocker()
	}
	return &turnControllerImpl{
		players:     players,
		selector:    selector,
		sequencer:   sequencer,
		presenter:   presenter,
		locker:      locker,
		rules:       rules,
		turnTimeout: turnTimeout,
		logger:      logger.Named("TurnController"),
	}
}

// turnFunc - тело хода. Выполняется под блокировкой игрока с уже загруженной записью.
type turnFunc func(ctx context.Context, record *models.PlayerRecord, result *TurnResult) error

// runTurn выполняет ход: блокировка игрока, загрузка записи, тело хода, метрики.
func (s *turnControllerImpl) runTurn(ctx context.Context, action string, telegramID int64, fn turnFunc) (*TurnResult, error) {
	started := time.Now()
	defer func() {
		turnDuration.WithLabelValues(action).Observe(time.Since(started).Seconds())
	}()

	if s.turnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.turnTimeout)
		defer cancel()
	}

	logFields := []zap.Field{zap.String("action", action), zap.Int64("telegramID", telegramID)}

	unlock, err := s.locker.Lock(ctx, telegramID)
	if err != nil {
		s.logger.Warn("Failed to lock player", append(logFields, zap.Error(err))...)
		turnsTotal.WithLabelValues(action, string(OutcomeRejected)).Inc()
		return nil, err
	}
	defer unlock()

	record, err := s.loadPlayer(ctx, telegramID)
	if err != nil {
		s.logger.Error("Failed to load player, aborting turn", append(logFields, zap.Error(err))...)
		turnsTotal.WithLabelValues(action, string(OutcomeRejected)).Inc()
		return nil, err
	}

	result := &TurnResult{Player: record}
	err = fn(ctx, record, result)

	outcome := result.Outcome
	if outcome == "" {
		outcome = OutcomeRejected
	}
	turnsTotal.WithLabelValues(action, string(outcome)).Inc()

	if err != nil {
		s.logger.Warn("Turn finished with error", append(logFields, zap.String("outcome", string(outcome)), zap.Error(err))...)
		if result.Outcome == "" {
			return nil, err
		}
		return result, err
	}
	s.logger.Info("Turn finished", append(logFields,
		zap.String("outcome", string(outcome)),
		zap.Int("year", record.Country.Year),
		zap.Int("playthrough", record.PlaythroughCount),
	)...)
	return result, nil
}

// loadPlayer загружает запись игрока. Отсутствующая запись и запись с испорченным состоянием
// заменяются новой; ошибка хранилища прерывает ход.
func (s *turnControllerImpl) loadPlayer(ctx context.Context, telegramID int64) (*models.PlayerRecord, error) {
	record, err := s.players.GetByTelegramID(ctx, telegramID)
	switch {
	case err == nil:
		if record.CompletedNarrativeBlockIDs == nil {
			record.CompletedNarrativeBlockIDs = []int64{}
		}
		if record.MessageIDs == nil {
			record.MessageIDs = []int64{}
		}
		if record.PlaythroughCount < 1 {
			record.PlaythroughCount = 1
		}
		return record, nil
	case errors.Is(err, models.ErrNotFound):
		s.logger.Info("Creating new player record", zap.Int64("telegramID", telegramID))
		return models.NewPlayerRecord(telegramID, s.rules.Initial), nil
	case errors.Is(err, models.ErrInvalidState):
		s.logger.Warn("Stored player state is invalid, starting fresh", zap.Int64("telegramID", telegramID), zap.Error(err))
		return models.NewPlayerRecord(telegramID, s.rules.Initial), nil
	default:
		return nil, fmt.Errorf("%w: load player %d: %w", models.ErrStorageUnavailable, telegramID, err)
	}
}

// save сохраняет запись. Уже показанное игроку не откатывается.
func (s *turnControllerImpl) save(ctx context.Context, record *models.PlayerRecord) error {
	if err := s.players.Save(ctx, record); err != nil {
		s.logger.Error("Failed to save player record", zap.Int64("telegramID", record.TelegramID), zap.Error(err))
		return fmt.Errorf("%w: save player %d: %w", models.ErrStorageUnavailable, record.TelegramID, err)
	}
	return nil
}

// retireMessages удаляет сообщения прошлого хода. Ошибки удаления не прерывают ход.
func (s *turnControllerImpl) retireMessages(ctx context.Context, record *models.PlayerRecord, result *TurnResult) {
	if len(record.MessageIDs) == 0 {
		return
	}
	ids := slices.Clone(record.MessageIDs)
	if err := s.presenter.Retire(ctx, record.TelegramID, ids); err != nil {
		s.logger.Warn("Failed to retire previous messages",
			zap.Int64("telegramID", record.TelegramID),
			zap.Int64s("messageIDs", ids),
			zap.Error(err),
		)
	}
	result.RetiredMessageIDs = append(result.RetiredMessageIDs, ids...)
	record.MessageIDs = []int64{}
}

// present показывает сообщение и запоминает его id, чтобы удалить на следующем ходу.
func (s *turnControllerImpl) present(ctx context.Context, record *models.PlayerRecord, result *TurnResult, content models.Presentation) error {
	msgID, err := s.presenter.Present(ctx, record.TelegramID, content)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", models.ErrPresentationFailed, content.Kind, err)
	}
	record.MessageIDs = append(record.MessageIDs, msgID)
	result.Presented = append(result.Presented, content)
	return nil
}

// presentTerminal показывает финальное сообщение, которое не удаляется на следующем ходу.
func (s *turnControllerImpl) presentTerminal(ctx context.Context, record *models.PlayerRecord, result *TurnResult, content models.Presentation) {
	if _, err := s.presenter.Present(ctx, record.TelegramID, content); err != nil {
		s.logger.Warn("Failed to present terminal message",
			zap.Int64("telegramID", record.TelegramID),
			zap.String("kind", string(content.Kind)),
			zap.Error(err),
		)
		return
	}
	result.Presented = append(result.Presented, content)
}

func (s *turnControllerImpl) GetPlayer(ctx context.Context, telegramID int64) (*models.PlayerRecord, error) {
	record, err := s.players.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrInvalidState) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: get player %d: %w", models.ErrStorageUnavailable, telegramID, err)
	}
	return record, nil
}
