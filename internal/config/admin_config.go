package config

import (
	"fmt"
	"log"
	"strings"

	"kingdom-server/internal/database"
	"kingdom-server/internal/utils"

	"github.com/ilyakaznacheev/cleanenv"
)

// AdminConfig - конфигурация админского API.
type AdminConfig struct {
	Port               string         `yaml:"port" env:"ADMIN_SERVER_PORT" env-default:"8084"`
	CORSAllowedOrigins string         `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-default:"*"`
	Log                AdminLogConfig `yaml:"log"`
	DB                 AdminDBConfig  `yaml:"db"`

	InterServiceSecret string `yaml:"-" env:"-"`
}

type AdminLogConfig struct {
	Level    string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding string `yaml:"encoding" env:"LOG_ENCODING" env-default:"json"`
}

type AdminDBConfig struct {
	Host           string `yaml:"host" env:"DB_HOST" env-required:"true"`
	Port           int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User           string `yaml:"user" env:"DB_USER" env-required:"true"`
	Name           string `yaml:"name" env:"DB_NAME" env-required:"true"`
	SSLMode        string `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`
	MaxConnections int    `yaml:"max_connections" env:"DB_MAX_CONNECTIONS" env-default:"5"`
	MaxIdleMinutes int    `yaml:"max_idle_minutes" env:"DB_MAX_IDLE_MINUTES" env-default:"5"`
	Password       string `yaml:"-" env:"-"`
}

// Database возвращает параметры подключения к PostgreSQL.
func (c *AdminConfig) Database() database.Config {
	return database.Config{
		Host:               c.DB.Host,
		Port:               c.DB.Port,
		User:               c.DB.User,
		Password:           c.DB.Password,
		Name:               c.DB.Name,
		SSLMode:            c.DB.SSLMode,
		MaxConnections:     c.DB.MaxConnections,
		MaxConnIdleMinutes: c.DB.MaxIdleMinutes,
	}
}

// AllowedOrigins разбирает CORS_ALLOWED_ORIGINS (через запятую).
func (c *AdminConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// LoadAdminConfig читает admin.yml, если он есть, иначе только переменные окружения.
func LoadAdminConfig(configPath string) (*AdminConfig, error) {
	var cfg AdminConfig

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v. Попытка чтения из переменных окружения.", configPath, err)
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("ошибка загрузки конфигурации admin: %w", err)
		}
	}

	var loadErr error
	cfg.DB.Password, loadErr = utils.ReadSecret("db_password")
	if loadErr != nil {
		return nil, loadErr
	}
	cfg.InterServiceSecret, loadErr = utils.ReadSecret("inter_service_secret")
	if loadErr != nil {
		return nil, loadErr
	}

	log.Printf("Конфигурация admin загружена. Port: %s, CORS: %v", cfg.Port, cfg.AllowedOrigins())
	return &cfg, nil
}

// LoadDatabaseConfig читает только настройки PostgreSQL из окружения и секрет db_password.
// Используется утилитой миграций.
func LoadDatabaseConfig() (database.Config, error) {
	var dbCfg AdminDBConfig
	if err := cleanenv.ReadEnv(&dbCfg); err != nil {
		return database.Config{}, fmt.Errorf("ошибка загрузки настроек БД: %w", err)
	}
	password, err := utils.ReadSecret("db_password")
	if err != nil {
		return database.Config{}, err
	}
	dbCfg.Password = password
	cfg := AdminConfig{DB: dbCfg}
	return cfg.Database(), nil
}
