package database

import (
	"context"
	"embed"

	"kingdom-server/pkg/migration"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewMigrator возвращает мигратор со встроенными миграциями схемы и начального каталога.
func NewMigrator(pool *pgxpool.Pool) *migration.Migrator {
	return migration.NewMigrator(migration.Config{
		MigrationsFS:   migrationsFS,
		MigrationsPath: "migrations",
	}, pool)
}

// Migrate применяет все миграции.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	return NewMigrator(pool).Up(ctx)
}
