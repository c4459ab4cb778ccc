package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "obras_portal/internal/adapters/http_server"
	"obras_portal/internal/adapters/observability"
	redisad "obras_portal/internal/adapters/redis"
	"obras_portal/internal/adapters/sheets"
	"obras_portal/internal/app"
	"obras_portal/internal/shared"
	mysqlrepo "obras_portal/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, observability.MetricsHandler(reg))

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cache.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, reads go straight to the database")
	}
	q := app.NewQueryService(repo, cache, cfg.CacheTTL)

	// on-demand sync is only offered when the sources are configured
	h := &server.Handlers{Q: q}
	if err := cfg.Validate(); err != nil {
		log.Warn().Err(err).Msg("POST /v1/sync disabled")
	} else {
		pipe, err := app.NewPipeline(sheets.New(cfg.FetchRPS, cfg.FetchTimeout), cfg.Sources)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize pipeline")
		}
		h.Ing = app.NewIngestionService(pipe, repo, cache)
	}

	// http
	srv := server.New(cfg.HTTPTimeout)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(h)

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}()

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
