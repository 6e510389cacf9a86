package messaging_test

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"kingdom-server/internal/messaging"
	"kingdom-server/internal/models"
	"kingdom-server/internal/service"
	serviceMocks "kingdom-server/internal/service/mocks"

	"github.com/docker/docker/client"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

const (
	renderQueue  = "render_commands_test"
	actionsQueue = "player_actions_test"
)

// BrokerIntegrationSuite гоняет Presenter и консьюмер действий через настоящий RabbitMQ.
// Шлюз чата заменен горутиной, которая отвечает на render-команды.
type BrokerIntegrationSuite struct {
	suite.Suite
	ctx          context.Context
	rmqContainer *rabbitmq.RabbitMQContainer
	conn         *amqp.Connection
	presenter    *messaging.RabbitMQPresenter

	gatewayCh  *amqp.Channel
	nextID     atomic.Int64
	deletes    chan messaging.DeleteCommand
	stopSignal chan struct{}
}

func (s *BrokerIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	var err error

	s.rmqContainer, err = rabbitmq.Run(s.ctx,
		"rabbitmq:3-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").WithStartupTimeout(2*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start rabbitmq container")

	url, err := s.rmqContainer.AmqpURL(s.ctx)
	require.NoError(s.T(), err)
	s.conn, err = amqp.Dial(url)
	require.NoError(s.T(), err)

	s.presenter, err = messaging.NewRabbitMQPresenter(s.conn, renderQueue, 5*time.Second, zap.NewNop())
	require.NoError(s.T(), err)

	s.deletes = make(chan messaging.DeleteCommand, 10)
	s.stopSignal = make(chan struct{})
	s.startGateway()
}

// startGateway отвечает на render-команды возрастающими id и складывает delete-команды в канал.
func (s *BrokerIntegrationSuite) startGateway() {
	var err error
	s.gatewayCh, err = s.conn.Channel()
	require.NoError(s.T(), err)

	msgs, err := s.gatewayCh.Consume(renderQueue, "test-gateway", true, false, false, false, nil)
	require.NoError(s.T(), err)

	go func() {
		for {
			select {
			case <-s.stopSignal:
				return
			case d, ok := <-msgs:
				if !ok {
					return
				}
				var envelope struct {
					Type string `json:"type"`
				}
				if err := json.Unmarshal(d.Body, &envelope); err != nil {
					continue
				}
				switch envelope.Type {
				case messaging.CommandDelete:
					var cmd messaging.DeleteCommand
					if json.Unmarshal(d.Body, &cmd) == nil {
						s.deletes <- cmd
					}
				case messaging.CommandRender:
					body, _ := json.Marshal(messaging.RenderReply{MessageID: s.nextID.Add(1)})
					_ = s.gatewayCh.PublishWithContext(context.Background(), "", d.ReplyTo, false, false, amqp.Publishing{
						ContentType:   "application/json",
						CorrelationId: d.CorrelationId,
						Body:          body,
					})
				}
			}
		}
	}()
}

func (s *BrokerIntegrationSuite) TearDownSuite() {
	if s.stopSignal != nil {
		close(s.stopSignal)
	}
	if s.presenter != nil {
		_ = s.presenter.Close()
	}
	if s.gatewayCh != nil {
		_ = s.gatewayCh.Close()
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
	if s.rmqContainer != nil {
		if err := s.rmqContainer.Terminate(s.ctx); err != nil {
			s.T().Logf("failed to terminate rabbitmq container: %v", err)
		}
	}
}

func TestBrokerIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv)
	if err != nil {
		t.Skipf("Docker client init error: %v", err)
	}
	if _, err := cli.Ping(context.Background()); err != nil {
		t.Skipf("Docker daemon is not running or accessible: %v", err)
	}
	cli.Close()

	suite.Run(t, new(BrokerIntegrationSuite))
}

func (s *BrokerIntegrationSuite) TestPresentAndRetire() {
	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()

	first, err := s.presenter.Present(ctx, 42, models.Presentation{Kind: models.PresentationEvent, Text: "Караван"})
	s.Require().NoError(err)
	second, err := s.presenter.Present(ctx, 42, models.Presentation{Kind: models.PresentationOutcome, Text: "Казна пополнилась"})
	s.Require().NoError(err)
	s.NotEqual(first, second)

	s.Require().NoError(s.presenter.Retire(ctx, 42, []int64{first, second}))
	select {
	case cmd := <-s.deletes:
		s.Equal(int64(42), cmd.TelegramID)
		s.Equal([]int64{first, second}, cmd.MessageIDs)
	case <-ctx.Done():
		s.Fail("delete command was not delivered")
	}
}

func (s *BrokerIntegrationSuite) TestActionConsumer() {
	turns := new(serviceMocks.TurnController)
	processed := make(chan int, 1)
	turns.On("MakeChoice", mock.Anything, int64(7), 1).
		Run(func(args mock.Arguments) { processed <- args.Int(2) }).
		Return(&service.TurnResult{Outcome: service.OutcomeEvent}, nil).Once()

	processor := messaging.NewPlayerActionProcessor(turns, s.presenter, zap.NewNop())
	consumer := messaging.NewPlayerActionConsumer(s.conn, processor, actionsQueue, 5*time.Second, zap.NewNop())
	done := make(chan error, 1)
	go func() { done <- consumer.StartConsuming() }()
	defer func() {
		consumer.Stop()
		<-done
	}()

	ch, err := s.conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()
	_, err = ch.QueueDeclare(actionsQueue, true, false, false, false, nil)
	s.Require().NoError(err)

	body, err := json.Marshal(messaging.PlayerActionPayload{TelegramID: 7, CallbackData: "choice_1"})
	s.Require().NoError(err)
	s.Require().NoError(ch.PublishWithContext(s.ctx, "", actionsQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}))

	select {
	case idx := <-processed:
		s.Equal(1, idx)
	case <-time.After(10 * time.Second):
		s.Fail("player action was not consumed")
	}
	turns.AssertExpectations(s.T())
}
