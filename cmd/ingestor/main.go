package main

import (
	"context"
	"database/sql"
	"flag"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"obras_portal/internal/adapters/observability"
	redisad "obras_portal/internal/adapters/redis"
	"obras_portal/internal/adapters/sheets"
	"obras_portal/internal/app"
	"obras_portal/internal/domain"
	"obras_portal/internal/shared"
	mysqlrepo "obras_portal/internal/storage/mysql"
)

func main() {
	force := flag.Bool("force", false, "append a cache-busting token to the source URLs")
	dryRun := flag.Bool("dry-run", false, "fetch and assemble only; do not touch the database or cache")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	log.Info().
		Str("proyectos", cfg.Sources.Projects.URL).
		Str("meses", cfg.Sources.Months.URL).
		Str("fotos", cfg.Sources.Photos.URL).
		Bool("force", *force).
		Bool("dry_run", *dryRun).
		Msg("ingestor starting")

	pipe, err := app.NewPipeline(sheets.New(cfg.FetchRPS, cfg.FetchTimeout), cfg.Sources)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize pipeline")
	}

	var (
		repo  domain.ProjectRepository
		cache domain.Cache
	)
	if !*dryRun {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("db ping ok")
		repo = mysqlrepo.New(db)
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}

	ing := app.NewIngestionService(pipe, repo, cache)
	run, err := ing.Sync(ctx, app.SyncOptions{Force: *force, DryRun: *dryRun})
	if err != nil {
		log.Fatal().Err(err).Str("run", run.ID).Msg("ingestion failed")
	}
	log.Info().Str("run", run.ID).Int("projects", run.Projects).Msg("ingestion completed")
}
