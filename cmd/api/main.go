package main

import (
	"context"
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "reviews_importer/internal/adapters/http_server"
	"reviews_importer/internal/adapters/observability"
	"reviews_importer/internal/adapters/places"
	redisad "reviews_importer/internal/adapters/redis"
	"reviews_importer/internal/app"
	"reviews_importer/internal/shared"
	mysqlrepo "reviews_importer/internal/storage/mysql"
)

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	settingsRepo := mysqlrepo.NewSettings(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	settings := app.NewSettingsService(settingsRepo, cfg.SiteLocale)

	client, err := places.New(cfg.PlacesBase, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize places client")
	}
	imp := app.NewImportService(client, repo, settings, cache)
	q := app.NewQueryService(repo, settings, cache, cfg.CacheTTL)

	// recurring trigger; after each pass re-read the configured interval so a
	// settings change replaces the schedule on the next tick
	var sched *app.Scheduler
	sched = app.NewScheduler(func() {
		if err := imp.Run(ctx, app.TriggerCron); err != nil {
			log.Warn().Err(err).Msg("scheduled import failed")
		}
		sched.Reschedule(settings.Frequency(ctx))
	}, 0)
	sched.Start(settings.Frequency(ctx))
	defer sched.Stop()

	// http
	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Q:          q,
		Importer:   imp,
		AdminToken: cfg.AdminToken,
		Cache:      cache,
		SiteLocale: cfg.SiteLocale,
	})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
