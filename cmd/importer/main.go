package main

import (
	"context"
	"database/sql"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"reviews_importer/internal/adapters/observability"
	"reviews_importer/internal/adapters/places"
	redisad "reviews_importer/internal/adapters/redis"
	"reviews_importer/internal/app"
	"reviews_importer/internal/shared"
	mysqlrepo "reviews_importer/internal/storage/mysql"
)

// One-shot import run, the shell equivalent of the manual trigger.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	settings := app.NewSettingsService(mysqlrepo.NewSettings(db), cfg.SiteLocale)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	client, err := places.New(cfg.PlacesBase, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize places client")
	}

	imp := app.NewImportService(client, repo, settings, cache)
	if err := imp.Run(ctx, app.TriggerCLI); err != nil {
		log.Error().Err(err).Msg("import run failed")
		os.Exit(1)
	}
	log.Info().Msg("import run completed")
}
