package migration

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
)

const defaultMigrationsTable = "kingdom_schema_migrations"

// Config содержит настройки для миграций
type Config struct {
	MigrationsPath  string
	MigrationsFS    fs.FS
	MigrationsTable string        // По умолчанию kingdom_schema_migrations
	LockTimeout     time.Duration // По умолчанию 30 секунд
}

// Migrator выполняет миграции базы данных
type Migrator struct {
	config Config
	pool   *pgxpool.Pool
}

// NewMigrator создает новый экземпляр Migrator
func NewMigrator(config Config, pool *pgxpool.Pool) *Migrator {
	if config.MigrationsTable == "" {
		config.MigrationsTable = defaultMigrationsTable
	}
	if config.LockTimeout <= 0 {
		config.LockTimeout = 30 * time.Second
	}
	return &Migrator{
		config: config,
		pool:   pool,
	}
}

// Up применяет все доступные миграции
func (m *Migrator) Up(ctx context.Context) error {
	return m.run(ctx, "up", func(mg *migrate.Migrate) error { return mg.Up() })
}

// Down откатывает все миграции
func (m *Migrator) Down(ctx context.Context) error {
	return m.run(ctx, "down", func(mg *migrate.Migrate) error { return mg.Down() })
}

// Steps применяет (n > 0) или откатывает (n < 0) указанное число миграций
func (m *Migrator) Steps(ctx context.Context, n int) error {
	return m.run(ctx, fmt.Sprintf("steps(%d)", n), func(mg *migrate.Migrate) error { return mg.Steps(n) })
}

// ForceVersion устанавливает версию миграции принудительно (после ручного исправления dirty-состояния)
func (m *Migrator) ForceVersion(ctx context.Context, version uint) error {
	return m.run(ctx, fmt.Sprintf("force(%d)", version), func(mg *migrate.Migrate) error { return mg.Force(int(version)) })
}

// Version возвращает текущую версию миграции
func (m *Migrator) Version(ctx context.Context) (uint, bool, error) {
	mg, err := m.createMigrator(ctx)
	if err != nil {
		return 0, false, err
	}
	defer closeMigrator(mg)

	version, dirty, err := mg.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

func (m *Migrator) run(ctx context.Context, op string, fn func(*migrate.Migrate) error) error {
	mg, err := m.createMigrator(ctx)
	if err != nil {
		return err
	}
	defer closeMigrator(mg)

	started := time.Now()
	if err := fn(mg); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info().Str("op", op).Msg("database schema is up to date")
			return nil
		}
		return fmt.Errorf("migration %s failed: %w", op, err)
	}

	version, dirty, _ := mg.Version()
	log.Info().
		Str("op", op).
		Uint("version", version).
		Bool("dirty", dirty).
		Dur("took", time.Since(started)).
		Msg("database migrations applied")
	return nil
}

// createMigrator создает экземпляр migrate.Migrate поверх пула pgx
func (m *Migrator) createMigrator(ctx context.Context) (*migrate.Migrate, error) {
	if err := m.pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database is not reachable: %w", err)
	}

	db := stdlib.OpenDBFromPool(m.pool)

	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable: m.config.MigrationsTable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	source, err := iofs.New(m.config.MigrationsFS, m.config.MigrationsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	mg, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	mg.LockTimeout = m.config.LockTimeout
	return mg, nil
}

func closeMigrator(mg *migrate.Migrate) {
	if srcErr, dbErr := mg.Close(); srcErr != nil || dbErr != nil {
		log.Warn().AnErr("sourceErr", srcErr).AnErr("dbErr", dbErr).Msg("failed to close migrator")
	}
}
