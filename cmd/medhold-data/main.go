package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"medhold-data/internal/config"
	"medhold-data/internal/database"
	httpapi "medhold-data/internal/http"
	"medhold-data/internal/logging"
	"medhold-data/internal/repository"
	"medhold-data/internal/service"
	"medhold-data/internal/store"
)

func main() {
	cfg := config.Load()

	logger, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Format, "medhold-data")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Store: Postgres when the DB is enabled and reachable, in-memory otherwise
	// so the service still comes up for local development.
	var (
		db *sql.DB
		st repository.Store
	)
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			st = repository.NewPostgresStore(db, logger)
			logger.Info("DB enabled for medhold-data")
		} else {
			logger.Warn("DB enabled but connection failed, falling back to memory store", zap.Error(err))
		}
	}
	if st == nil {
		st = repository.NewMemoryStore()
		logger.Info("using in-memory store")
	}

	var (
		kv          store.KV
		redisClient *redis.Client
	)
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		kv = store.NewRedisKV(redisClient)
	} else {
		kv = store.NewMemoryKV()
	}

	registry := service.NewRegistryService(st, logger)
	stats := service.NewStatsService(st, kv, cfg.StatsCacheTTL, logger)
	export := service.NewExportService(st, logger)
	importer := service.NewImportService(st, logger)

	router := httpapi.NewRouter(logger)
	router.RegisterPersonnelRoutes(httpapi.NewPersonnelHandler(registry, logger))
	router.RegisterMovementRoutes(httpapi.NewMovementHandler(registry, logger))
	router.RegisterAbsenceRoutes(httpapi.NewAbsenceHandler(registry, logger))
	router.RegisterProblemRoutes(httpapi.NewProblemHandler(registry, logger))
	router.RegisterStatsRoutes(httpapi.NewStatsHandler(stats, logger))
	router.RegisterExportRoutes(httpapi.NewExportHandler(export, importer, logger))

	srv := service.NewServer(cfg.HTTP.Addr, router, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	evaluator := service.NewProblemEvaluator(st, logger)
	go evaluator.Run(ctx, cfg.ProblemCheckInterval)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if db != nil {
		_ = db.Close()
	}
}
