package config

import (
	"fmt"
	"log"
	"time"

	"kingdom-server/internal/database"
	"kingdom-server/internal/game"
	"kingdom-server/internal/models"
	"kingdom-server/internal/utils"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию игрового сервера.
type Config struct {
	// Настройки сервера
	Port        string `envconfig:"GAME_SERVER_PORT" default:"8082"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	// Настройки PostgreSQL
	DBHost           string `envconfig:"DB_HOST" required:"true"`
	DBPort           int    `envconfig:"DB_PORT" default:"5432"`
	DBUser           string `envconfig:"DB_USER" required:"true"`
	DBName           string `envconfig:"DB_NAME" required:"true"`
	DBSSLMode        string `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns       int    `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBMaxIdleMinutes int    `envconfig:"DB_MAX_IDLE_MINUTES" default:"5"`
	AutoMigrate      bool   `envconfig:"AUTO_MIGRATE" default:"true"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string `ignored:"true"`

	// Настройки Redis. Пустой адрес - блокировки игроков внутри процесса.
	RedisAddr     string        `envconfig:"REDIS_ADDR"`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`
	PlayerLockTTL time.Duration `envconfig:"PLAYER_LOCK_TTL" default:"30s"`
	RedisPassword string        `ignored:"true"`

	// Настройки RabbitMQ
	RabbitMQURL         string        `envconfig:"RABBITMQ_URL" required:"true"`
	RenderCommandsQueue string        `envconfig:"RENDER_COMMANDS_QUEUE" default:"render_commands"`
	PlayerActionsQueue  string        `envconfig:"PLAYER_ACTIONS_QUEUE" default:"player_actions"`
	RenderReplyTimeout  time.Duration `envconfig:"RENDER_REPLY_TIMEOUT" default:"10s"`
	TurnTimeout         time.Duration `envconfig:"TURN_TIMEOUT" default:"15s"`

	// Правила игры
	InitialSupport    int    `envconfig:"GAME_INITIAL_SUPPORT" default:"50"`
	InitialTreasury   int    `envconfig:"GAME_INITIAL_TREASURY" default:"1000"`
	InitialArmy       string `envconfig:"GAME_INITIAL_ARMY" default:"medium"`
	InitialPeasants   string `envconfig:"GAME_INITIAL_PEASANTS" default:"medium"`
	MaxYear           int    `envconfig:"GAME_MAX_YEAR" default:"40"`
	SelectionAttempts int    `envconfig:"GAME_SELECTION_ATTEMPTS" default:"5"`
	IntroBlockType    string `envconfig:"GAME_INTRO_BLOCK_TYPE" default:"intro"`
	YearlyEconomy     bool   `envconfig:"GAME_YEARLY_ECONOMY" default:"false"`

	// Секрет межсервисных токенов, без envconfig тега
	InterServiceSecret string `ignored:"true"`
}

// Database возвращает параметры подключения к PostgreSQL.
func (c *Config) Database() database.Config {
	return database.Config{
		Host:               c.DBHost,
		Port:               c.DBPort,
		User:               c.DBUser,
		Password:           c.DBPassword,
		Name:               c.DBName,
		SSLMode:            c.DBSSLMode,
		MaxConnections:     c.DBMaxConns,
		MaxConnIdleMinutes: c.DBMaxIdleMinutes,
	}
}

// Rules собирает правила игры из конфигурации и проверяет их.
func (c *Config) Rules() (game.Rules, error) {
	rules := game.DefaultRules()
	rules.Initial.Support = c.InitialSupport
	rules.Initial.Treasury = c.InitialTreasury
	rules.Initial.Army = models.Level(c.InitialArmy)
	rules.Initial.Peasants = models.Level(c.InitialPeasants)
	rules.MaxYear = c.MaxYear
	rules.MaxSelectionAttempts = c.SelectionAttempts
	rules.IntroBlockType = c.IntroBlockType
	rules.YearlyEconomy = c.YearlyEconomy

	if err := rules.Validate(); err != nil {
		return game.Rules{}, fmt.Errorf("invalid game rules: %w", err)
	}
	return rules, nil
}

// LoadConfig загружает конфигурацию из .env (если есть), переменных окружения и секретов.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	// Загружаем НЕсекретные переменные
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации kingdom-server: %w", err)
	}

	// Загружаем ОБЯЗАТЕЛЬНЫЕ секреты
	var loadErr error
	cfg.DBPassword, loadErr = utils.ReadSecret("db_password")
	if loadErr != nil {
		return nil, loadErr
	}
	cfg.InterServiceSecret, loadErr = utils.ReadSecret("inter_service_secret")
	if loadErr != nil {
		return nil, loadErr
	}
	if cfg.RedisAddr != "" {
		cfg.RedisPassword, loadErr = utils.ReadOptionalSecret("redis_password")
		if loadErr != nil {
			return nil, loadErr
		}
	}

	if _, err := cfg.Rules(); err != nil {
		return nil, err
	}

	log.Printf("Конфигурация kingdom-server загружена (секреты из файлов):")
	log.Printf("  Port: %s", cfg.Port)
	log.Printf("  LogLevel: %s", cfg.LogLevel)
	log.Printf("  DB: postgres://%s:***@%s:%d/%s?sslmode=%s", cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)
	log.Printf("  Redis: %q (db %d)", cfg.RedisAddr, cfg.RedisDB)
	log.Printf("  Render Commands Queue: %s", cfg.RenderCommandsQueue)
	log.Printf("  Player Actions Queue: %s", cfg.PlayerActionsQueue)
	log.Println("  Inter-service Secret: [ЗАГРУЖЕН]")

	return &cfg, nil
}
