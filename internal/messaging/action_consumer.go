package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kingdom-server/internal/interfaces"
	"kingdom-server/internal/models"
	"kingdom-server/internal/service"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// --- PlayerActionProcessor ---

// PlayerActionProcessor превращает входящие действия игрока в ходы.
// Вынесен отдельно от консьюмера для тестируемости.
type PlayerActionProcessor struct {
	turns     service.TurnController
	presenter interfaces.Presenter
	logger    *zap.Logger
}

func NewPlayerActionProcessor(turns service.TurnController, presenter interfaces.Presenter, logger *zap.Logger) *PlayerActionProcessor {
	return &PlayerActionProcessor{
		turns:     turns,
		presenter: presenter,
		logger:    logger.Named("PlayerActionProcessor"),
	}
}

// Process обрабатывает одно действие.
// Отклоненные игрой действия (нет активного события, неверный выбор, ход занят) не считаются
// ошибкой: игрок получает короткое сообщение, а сообщение из очереди подтверждается.
// Возвращает models.ErrInvalidPlayerAction для непригодного payload и ошибку хода для сбоев хранилища/шлюза.
func (p *PlayerActionProcessor) Process(ctx context.Context, body []byte) error {
	var payload PlayerActionPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return fmt.Errorf("%w: ошибка десериализации действия: %w", models.ErrInvalidPlayerAction, err)
	}
	if err := normalizeAction(&payload); err != nil {
		return err
	}

	logFields := []zap.Field{zap.Int64("telegramID", payload.TelegramID), zap.String("action", payload.Action)}
	p.logger.Debug("Processing player action", logFields...)

	var err error
	switch payload.Action {
	case ActionStart:
		_, err = p.turns.Start(ctx, payload.TelegramID)
	case ActionNarrativeNext:
		_, err = p.turns.AdvanceNarrative(ctx, payload.TelegramID, payload.BlockID)
	case ActionChoice:
		_, err = p.turns.MakeChoice(ctx, payload.TelegramID, *payload.OptionIndex)
	}
	if err == nil {
		return nil
	}

	if isRejection(err) {
		p.logger.Info("Player action rejected", append(logFields, zap.Error(err))...)
		p.notify(ctx, payload.TelegramID, err)
		return nil
	}

	p.logger.Error("Player action failed", append(logFields, zap.Error(err))...)
	return err
}

// notify показывает игроку короткое сообщение об ошибке. Сообщение не запоминается.
func (p *PlayerActionProcessor) notify(ctx context.Context, telegramID int64, cause error) {
	notice := models.Presentation{Kind: models.PresentationNotice, Text: models.UserMessage(cause)}
	if _, err := p.presenter.Present(ctx, telegramID, notice); err != nil {
		p.logger.Warn("Failed to notify player", zap.Int64("telegramID", telegramID), zap.Error(err))
	}
}

// normalizeAction проверяет payload и разбирает CallbackData, если действие не задано явно.
func normalizeAction(payload *PlayerActionPayload) error {
	if payload.TelegramID <= 0 {
		return fmt.Errorf("%w: telegram_id is required", models.ErrInvalidPlayerAction)
	}

	if payload.Action == "" && payload.CallbackData != "" {
		kind, value, err := models.ParseCallbackData(payload.CallbackData)
		if err != nil {
			return err
		}
		switch kind {
		case "choice":
			idx := int(value)
			payload.Action = ActionChoice
			payload.OptionIndex = &idx
		case "narrative":
			payload.Action = ActionNarrativeNext
			payload.BlockID = value
		}
	}

	switch payload.Action {
	case ActionStart:
	case ActionNarrativeNext:
		if payload.BlockID <= 0 {
			return fmt.Errorf("%w: block_id is required", models.ErrInvalidPlayerAction)
		}
	case ActionChoice:
		if payload.OptionIndex == nil {
			return fmt.Errorf("%w: option_index is required", models.ErrInvalidPlayerAction)
		}
	default:
		return fmt.Errorf("%w: unknown action %q", models.ErrInvalidPlayerAction, payload.Action)
	}
	return nil
}

func isRejection(err error) bool {
	return errors.Is(err, models.ErrNoActiveEvent) ||
		errors.Is(err, models.ErrInvalidChoiceIndex) ||
		errors.Is(err, models.ErrPlayerBusy)
}

// deliveryDecision - что сделать с сообщением после обработки.
type deliveryDecision int

const (
	decisionAck deliveryDecision = iota
	decisionRequeue
	decisionDrop
)

// decide: непригодный payload отбрасывается, сбой хода повторяется один раз.
func decide(err error, redelivered bool) deliveryDecision {
	switch {
	case err == nil:
		return decisionAck
	case errors.Is(err, models.ErrInvalidPlayerAction):
		return decisionDrop
	case redelivered:
		return decisionDrop
	default:
		return decisionRequeue
	}
}

// --- PlayerActionConsumer ---

// PlayerActionConsumer читает действия игроков из RabbitMQ.
type PlayerActionConsumer struct {
	conn           *amqp.Connection
	processor      *PlayerActionProcessor
	queueName      string
	processTimeout time.Duration
	stopChannel    chan struct{}
	logger         *zap.Logger
}

// NewPlayerActionConsumer создает консьюмера действий игроков.
func NewPlayerActionConsumer(
	conn *amqp.Connection,
	processor *PlayerActionProcessor,
	queueName string,
	processTimeout time.Duration,
	logger *zap.Logger,
) *PlayerActionConsumer {
	return &PlayerActionConsumer{
		conn:           conn,
		processor:      processor,
		queueName:      queueName,
		processTimeout: processTimeout,
		stopChannel:    make(chan struct{}),
		logger:         logger.Named("PlayerActionConsumer"),
	}
}

// StartConsuming начинает прослушивание очереди. Блокируется до Stop или закрытия канала.
func (c *PlayerActionConsumer) StartConsuming() error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("consumer: не удалось открыть канал RabbitMQ: %w", err)
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("consumer: не удалось объявить очередь '%s': %w", c.queueName, err)
	}

	if err = ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("consumer: не удалось установить QoS: %w", err)
	}

	msgs, err := ch.Consume(
		q.Name,
		"kingdom-action-consumer", // consumer tag
		false,                     // auto-ack = false
		false,                     // exclusive
		false,                     // no-local
		false,                     // no-wait
		nil,                       // args
	)
	if err != nil {
		return fmt.Errorf("consumer: не удалось зарегистрировать консьюмера: %w", err)
	}
	c.logger.Info("Consumer started", zap.String("queue", q.Name))

	for {
		select {
		case d, ok := <-msgs:
			if !ok {
				c.logger.Info("RabbitMQ delivery channel closed")
				return nil
			}
			c.handleDelivery(d)
		case <-c.stopChannel:
			c.logger.Info("Stop signal received")
			return nil
		}
	}
}

func (c *PlayerActionConsumer) handleDelivery(d amqp.Delivery) {
	ctx := context.Background()
	if c.processTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.processTimeout)
		defer cancel()
	}

	err := c.processor.Process(ctx, d.Body)
	logFields := []zap.Field{zap.Uint64("deliveryTag", d.DeliveryTag), zap.Bool("redelivered", d.Redelivered)}

	switch decide(err, d.Redelivered) {
	case decisionAck:
		_ = d.Ack(false)
	case decisionRequeue:
		c.logger.Warn("Requeueing player action", append(logFields, zap.Error(err))...)
		_ = d.Nack(false, true)
	case decisionDrop:
		c.logger.Error("Dropping player action", append(logFields, zap.Error(err))...)
		_ = d.Nack(false, false)
	}
}

// Stop останавливает консьюмер.
func (c *PlayerActionConsumer) Stop() {
	c.logger.Info("Stopping consumer...")
	close(c.stopChannel)
}
