package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"kingdom-server/internal/interfaces"
	"kingdom-server/internal/models"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const defaultRenderReplyTimeout = 10 * time.Second

// ErrReplyTimeout - шлюз не ответил на команду показа вовремя.
var ErrReplyTimeout = errors.New("render reply timeout")

// Publisher - часть amqp.Channel, нужная для отправки команд.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Compile-time check to ensure RabbitMQPresenter implements Presenter
var _ interfaces.Presenter = (*RabbitMQPresenter)(nil)

// RabbitMQPresenter показывает сообщения через шлюз чата.
// Present работает как RPC: команда уходит в очередь команд, ответ с id сообщения
// приходит в эксклюзивную очередь ответов этого экземпляра.
type RabbitMQPresenter struct {
	channel      *amqp.Channel // nil в тестах
	publisher    Publisher
	queueName    string
	replyQueue   string
	replyTimeout time.Duration
	logger       *zap.Logger

	publishMu sync.Mutex // amqp.Channel не безопасен для параллельной публикации
	pendingMu sync.Mutex
	pending   map[string]chan RenderReply
}

// NewRabbitMQPresenter открывает канал, объявляет очередь команд и очередь ответов
// и запускает чтение ответов.
func NewRabbitMQPresenter(conn *amqp.Connection, queueName string, replyTimeout time.Duration, logger *zap.Logger) (*RabbitMQPresenter, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("presenter: не удалось открыть канал: %w", err)
	}

	if _, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	); err != nil {
		ch.Close()
		return nil, fmt.Errorf("presenter: не удалось объявить очередь '%s': %w", queueName, err)
	}

	replyQ, err := ch.QueueDeclare(
		"",    // имя выдаст брокер
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("presenter: не удалось объявить очередь ответов: %w", err)
	}

	replies, err := ch.Consume(
		replyQ.Name,
		"",    // consumer tag
		true,  // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("presenter: не удалось подписаться на очередь ответов: %w", err)
	}

	p := newPresenter(ch, queueName, replyQ.Name, replyTimeout, logger)
	p.channel = ch
	go p.consumeReplies(replies)

	p.logger.Info("Presenter initialized", zap.String("queue", queueName), zap.String("replyQueue", replyQ.Name))
	return p, nil
}

func newPresenter(pub Publisher, queueName, replyQueue string, replyTimeout time.Duration, logger *zap.Logger) *RabbitMQPresenter {
	if replyTimeout <= 0 {
		replyTimeout = defaultRenderReplyTimeout
	}
	return &RabbitMQPresenter{
		publisher:    pub,
		queueName:    queueName,
		replyQueue:   replyQueue,
		replyTimeout: replyTimeout,
		logger:       logger.Named("RabbitMQPresenter"),
		pending:      make(map[string]chan RenderReply),
	}
}

// Present отправляет команду показа и ждет id созданного сообщения.
func (p *RabbitMQPresenter) Present(ctx context.Context, telegramID int64, content models.Presentation) (int64, error) {
	correlationID := uuid.NewString()
	logFields := []zap.Field{
		zap.Int64("telegramID", telegramID),
		zap.String("kind", string(content.Kind)),
		zap.String("correlationID", correlationID),
	}

	body, err := json.Marshal(RenderCommand{
		Type:       CommandRender,
		TelegramID: telegramID,
		Kind:       content.Kind,
		Title:      content.Title,
		Text:       content.Text,
		ImageURL:   content.ImageURL,
		Buttons:    content.Buttons,
	})
	if err != nil {
		return 0, fmt.Errorf("presenter: ошибка сериализации команды: %w", err)
	}

	replyCh := make(chan RenderReply, 1)
	p.pendingMu.Lock()
	p.pending[correlationID] = replyCh
	p.pendingMu.Unlock()
	defer func() {
		p.pendingMu.Lock()
		delete(p.pending, correlationID)
		p.pendingMu.Unlock()
	}()

	if err := p.publish(ctx, amqp.Publishing{
		ContentType:   "application/json",
		DeliveryMode:  amqp.Persistent,
		CorrelationId: correlationID,
		ReplyTo:       p.replyQueue,
		Timestamp:     time.Now(),
		Body:          body,
	}); err != nil {
		p.logger.Error("Failed to publish render command", append(logFields, zap.Error(err))...)
		return 0, err
	}

	timer := time.NewTimer(p.replyTimeout)
	defer timer.Stop()

	select {
	case reply := <-replyCh:
		if reply.Error != "" {
			p.logger.Warn("Gateway failed to render message", append(logFields, zap.String("gatewayError", reply.Error))...)
			return 0, fmt.Errorf("presenter: шлюз не смог показать сообщение: %s", reply.Error)
		}
		p.logger.Debug("Message presented", append(logFields, zap.Int64("messageID", reply.MessageID))...)
		return reply.MessageID, nil
	case <-timer.C:
		p.logger.Warn("Render reply timed out", append(logFields, zap.Duration("timeout", p.replyTimeout))...)
		return 0, ErrReplyTimeout
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Retire отправляет одну команду удаления без ожидания ответа.
func (p *RabbitMQPresenter) Retire(ctx context.Context, telegramID int64, messageIDs []int64) error {
	if len(messageIDs) == 0 {
		return nil
	}
	body, err := json.Marshal(DeleteCommand{
		Type:       CommandDelete,
		TelegramID: telegramID,
		MessageIDs: messageIDs,
	})
	if err != nil {
		return fmt.Errorf("presenter: ошибка сериализации команды удаления: %w", err)
	}

	err = p.publish(ctx, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		p.logger.Warn("Failed to publish delete command",
			zap.Int64("telegramID", telegramID), zap.Int64s("messageIDs", messageIDs), zap.Error(err))
		return err
	}
	return nil
}

// Close закрывает канал. Ожидающие Present завершатся по таймауту.
func (p *RabbitMQPresenter) Close() error {
	if p.channel == nil {
		return nil
	}
	return p.channel.Close()
}

func (p *RabbitMQPresenter) publish(ctx context.Context, msg amqp.Publishing) error {
	p.publishMu.Lock()
	defer p.publishMu.Unlock()
	if err := p.publisher.PublishWithContext(ctx, "", p.queueName, false, false, msg); err != nil {
		return fmt.Errorf("presenter: не удалось опубликовать в очередь '%s': %w", p.queueName, err)
	}
	return nil
}

func (p *RabbitMQPresenter) consumeReplies(replies <-chan amqp.Delivery) {
	for d := range replies {
		p.handleReply(d)
	}
	p.logger.Info("Reply channel closed")
}

// handleReply передает ответ ожидающему Present. Ответы без адресата отбрасываются.
func (p *RabbitMQPresenter) handleReply(d amqp.Delivery) {
	var reply RenderReply
	if err := json.Unmarshal(d.Body, &reply); err != nil {
		p.logger.Warn("Malformed render reply", zap.String("correlationID", d.CorrelationId), zap.Error(err))
		reply = RenderReply{Error: "malformed reply"}
	}

	p.pendingMu.Lock()
	replyCh, ok := p.pending[d.CorrelationId]
	p.pendingMu.Unlock()
	if !ok {
		p.logger.Debug("Late or unknown render reply", zap.String("correlationID", d.CorrelationId))
		return
	}

	select {
	case replyCh <- reply:
	default:
	}
}
