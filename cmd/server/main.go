package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kingdom-server/internal/authutils"
	"kingdom-server/internal/config"
	"kingdom-server/internal/database"
	"kingdom-server/internal/game"
	"kingdom-server/internal/handler"
	"kingdom-server/internal/interfaces"
	"kingdom-server/internal/logger"
	"kingdom-server/internal/messaging"
	"kingdom-server/internal/middleware"
	"kingdom-server/internal/service"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	log.Println("Запуск kingdom-server...")

	// Конфиг загружаем ДО инициализации логгера
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	appLogger, err := logger.New(logger.Config{
		Level:    cfg.LogLevel,
		Encoding: cfg.LogEncoding,
	})
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer appLogger.Sync()
	appLogger.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))

	rules, err := cfg.Rules()
	if err != nil {
		appLogger.Fatal("Invalid game rules", zap.Error(err))
	}

	// Подключение к PostgreSQL
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	dbPool, err := database.NewPool(dbCtx, cfg.Database(), appLogger)
	dbCancel()
	if err != nil {
		appLogger.Fatal("Не удалось подключиться к БД", zap.Error(err))
	}
	defer database.ClosePool(dbPool, appLogger)

	if cfg.AutoMigrate {
		migrateCtx, migrateCancel := context.WithTimeout(context.Background(), time.Minute)
		err = database.Migrate(migrateCtx, dbPool)
		migrateCancel()
		if err != nil {
			appLogger.Fatal("Не удалось применить миграции", zap.Error(err))
		}
		appLogger.Info("Migrations applied")
	}

	// Блокировки игроков: Redis, если задан адрес, иначе в памяти процесса
	var locker interfaces.PlayerLocker
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = redisClient.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			appLogger.Fatal("Не удалось подключиться к Redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		defer redisClient.Close()
		locker = database.NewRedisPlayerLocker(redisClient, cfg.PlayerLockTTL, appLogger)
		appLogger.Info("Using Redis player locks", zap.String("addr", cfg.RedisAddr))
	} else {
		locker = service.NewLocalPlayerLocker()
		appLogger.Info("REDIS_ADDR is empty, using in-process player locks")
	}

	// Подключение к RabbitMQ
	rabbitConn, err := connectRabbitMQ(cfg.RabbitMQURL, appLogger)
	if err != nil {
		appLogger.Fatal("Не удалось подключиться к RabbitMQ", zap.Error(err))
	}
	defer rabbitConn.Close()
	appLogger.Info("Успешное подключение к RabbitMQ")

	presenter, err := messaging.NewRabbitMQPresenter(rabbitConn, cfg.RenderCommandsQueue, cfg.RenderReplyTimeout, appLogger)
	if err != nil {
		appLogger.Fatal("Не удалось создать Presenter", zap.Error(err))
	}
	defer presenter.Close()

	// Инициализация зависимостей
	playerRepo := database.NewPgPlayerRepository(dbPool, appLogger)
	catalogRepo := database.NewPgEventCatalogRepository(dbPool, appLogger)
	blockRepo := database.NewPgNarrativeBlockRepository(dbPool, appLogger)

	selector := service.NewEventSelector(catalogRepo, game.DefaultRandSource(), rules.MaxSelectionAttempts, appLogger)
	sequencer := service.NewNarrativeSequencer(blockRepo, appLogger)
	turns := service.NewTurnController(playerRepo, selector, sequencer, presenter, locker, rules, cfg.TurnTimeout, appLogger)

	verifier, err := authutils.NewJWTVerifier(cfg.InterServiceSecret, appLogger)
	if err != nil {
		appLogger.Fatal("Не удалось создать проверку межсервисных токенов", zap.Error(err))
	}

	// Консьюмер действий игроков
	processor := messaging.NewPlayerActionProcessor(turns, presenter, appLogger)
	actionConsumer := messaging.NewPlayerActionConsumer(rabbitConn, processor, cfg.PlayerActionsQueue, cfg.TurnTimeout, appLogger)
	go func() {
		appLogger.Info("Запуск горутины консьюмера действий игроков...")
		if err := actionConsumer.StartConsuming(); err != nil {
			appLogger.Error("Консьюмер действий игроков завершился с ошибкой", zap.Error(err))
		}
		appLogger.Info("Горутина консьюмера действий игроков завершена.")
	}()

	// Настройка Echo
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.EchoZapLogger(appLogger))
	e.Use(echoMiddleware.Recover())
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	handler.NewGameHandler(turns, verifier, appLogger).RegisterRoutes(e)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.TurnTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		appLogger.Info("Game API слушает", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Ошибка запуска HTTP сервера", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Получен сигнал завершения, начинаем graceful shutdown...")

	actionConsumer.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Error("Ошибка при graceful shutdown HTTP сервера", zap.Error(err))
	}

	appLogger.Info("kingdom-server успешно остановлен")
}

// connectRabbitMQ пытается подключиться к RabbitMQ с несколькими попытками.
func connectRabbitMQ(url string, logger *zap.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	maxRetries := 5
	retryDelay := 5 * time.Second
	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		logger.Warn("Не удалось подключиться к RabbitMQ",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Duration("retry_delay", retryDelay),
			zap.Error(err),
		)
		time.Sleep(retryDelay)
	}
	return nil, err
}
