package main

import (
	"context"
	"flag"
	"os"
	"time"

	"kingdom-server/internal/config"
	"kingdom-server/internal/database"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/zap"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	command := flag.String("cmd", "up", "up | down | steps | force | version")
	steps := flag.Int("n", 1, "number of steps for -cmd=steps (negative rolls back)")
	version := flag.Uint("version", 0, "version for -cmd=force")
	flag.Parse()

	dbCfg, err := config.LoadDatabaseConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load database config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPool(ctx, dbCfg, zap.NewNop())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()

	migrator := database.NewMigrator(pool)

	switch *command {
	case "up":
		err = migrator.Up(ctx)
	case "down":
		err = migrator.Down(ctx)
	case "steps":
		err = migrator.Steps(ctx, *steps)
	case "force":
		err = migrator.ForceVersion(ctx, *version)
	case "version":
		v, dirty, vErr := migrator.Version(ctx)
		if vErr == nil {
			log.Info().Uint("version", v).Bool("dirty", dirty).Msg("current migration version")
		}
		err = vErr
	default:
		log.Fatal().Str("cmd", *command).Msg("unknown command")
	}
	if err != nil {
		log.Fatal().Err(err).Str("cmd", *command).Msg("migration command failed")
	}
}
