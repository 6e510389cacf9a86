package database

import (
	"fmt"
	"time"
)

// Config - параметры подключения к PostgreSQL.
type Config struct {
	Host               string
	Port               int
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxConnections     int
	MaxConnIdleMinutes int
}

// DSN возвращает строку подключения в формате key=value.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func (c Config) maxConnIdleTime() time.Duration {
	if c.MaxConnIdleMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.MaxConnIdleMinutes) * time.Minute
}
