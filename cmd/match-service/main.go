// cmd/match-service/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"mentor-match/internal/api"
	"mentor-match/internal/common/camunda"
	"mentor-match/internal/common/config"
	"mentor-match/internal/common/database"
	"mentor-match/internal/common/logger"
	"mentor-match/internal/common/observability"
	"mentor-match/internal/common/validation"
	"mentor-match/internal/recommendation"
	"mentor-match/internal/repository"

	cms "mentor-match/internal/workers/mentor/calculate-match-score"
	rm "mentor-match/internal/workers/mentor/recommend-mentors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog, err := logger.New(logger.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{cfg.Logging.Output},
		InitialFields: map[string]interface{}{
			"service": cfg.App.Name,
			"version": cfg.App.Version,
			"env":     cfg.App.Environment,
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		zapLog.Fatal("match service stopped with error", zap.Error(err))
	}
	zapLog.Info("match service stopped gracefully")
}

func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	log.Info("starting match service", map[string]interface{}{
		"address":        cfg.Server.Address,
		"camunda":        cfg.Camunda.Enabled,
		"redis":          cfg.Database.Redis.Enabled(),
		"elasticsearch":  cfg.Database.Elasticsearch.Enabled(),
		"providerSource": cfg.Matching.ProviderSource,
	})

	obs, err := observability.New(cfg.Observability, nil)
	if err != nil {
		return fmt.Errorf("observability init: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			log.Warn("observability shutdown failed", map[string]interface{}{"error": err})
		}
	}()

	var checks []api.ReadinessCheck

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(ctx, func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		if err := pg.Ping(ctx); err != nil {
			_ = pg.Close()
			return err
		}
		return nil
	}, 15, 2*time.Second, nil, log, "PostgreSQL connection")
	if err != nil {
		return err
	}
	defer pg.Close()
	checks = append(checks, api.ReadinessCheck{Name: "postgres", Ping: pg.Ping})
	log.Info("PostgreSQL connected successfully", nil)

	pgStore := repository.NewPostgresStore(pg, log)
	var users repository.UserStore = pgStore
	var providers repository.ProviderStore = pgStore

	// --- Init Elasticsearch with retry (optional) ---
	var searcher repository.ProviderSearcher
	if cfg.Database.Elasticsearch.Enabled() {
		var es *database.ElasticsearchClient
		err = retryWithBackoff(ctx, func() error {
			var err error
			es, err = database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
			if err != nil {
				return err
			}
			return es.Ping(ctx)
		}, 15, 2*time.Second, nil, log, "Elasticsearch connection")
		if err != nil {
			return err
		}
		checks = append(checks, api.ReadinessCheck{Name: "elasticsearch", Ping: es.Ping})
		log.Info("Elasticsearch connected successfully", nil)

		searchStore := repository.NewSearchStore(es, cfg.Database.Elasticsearch.ProviderIndex, log)
		searcher = searchStore
		if cfg.Matching.ProviderSource == config.ProviderSourceElasticsearch {
			providers = searchStore
		}
	}

	// --- Init Redis with retry (optional) ---
	if cfg.Database.Redis.Enabled() {
		var redis *database.RedisClient
		err = retryWithBackoff(ctx, func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			if err := redis.Ping(ctx); err != nil {
				_ = redis.Close()
				return err
			}
			return nil
		}, 10, 2*time.Second, nil, log, "Redis connection")
		if err != nil {
			return err
		}
		defer redis.Close()
		checks = append(checks, api.ReadinessCheck{Name: "redis", Ping: redis.Ping})
		log.Info("Redis connected successfully", nil)

		cached := repository.NewCachedStore(users, providers, redis, repository.CacheTTLs{
			User:     time.Duration(cfg.Database.Redis.UserTTL) * time.Second,
			Provider: time.Duration(cfg.Database.Redis.ProviderTTL) * time.Second,
		}, log)
		users, providers = cached, cached
	}

	svc := recommendation.NewService(users, providers, recommendation.Limits{
		DefaultLimit: cfg.Matching.DefaultLimit,
		MaxLimit:     cfg.Matching.MaxLimit,
		MaxProviders: cfg.Matching.MaxProviders,
	}, obs, log)

	validator, err := validation.NewValidator()
	if err != nil {
		return fmt.Errorf("compile schemas: %w", err)
	}

	// --- Zeebe workers (optional) ---
	if cfg.Camunda.Enabled {
		var zeebe *camunda.Client
		err = retryWithBackoff(ctx, func() error {
			var err error
			zeebe, err = camunda.Connect(ctx, cfg.Camunda)
			return err
		}, 10, 2*time.Second, camunda.IsTransient, log, "Zeebe client initialization")
		if err != nil {
			return err
		}
		defer zeebe.Close()
		checks = append(checks, api.ReadinessCheck{Name: "zeebe", Ping: zeebe.HealthCheck})
		log.Info("Zeebe client connected successfully", nil)

		workers := camunda.NewWorkers(zeebe.GetClient(), log)
		defer workers.Close()

		workers.Start(rm.TaskType, config.GetWorkerConfig(cfg, rm.TaskType),
			rm.NewHandler(rm.LoadConfig(cfg), svc, validator, obs, log))
		workers.Start(cms.TaskType, config.GetWorkerConfig(cfg, cms.TaskType),
			cms.NewHandler(cms.LoadConfig(cfg), svc, validator, obs, log))

		log.Info("workers registered", map[string]interface{}{"running": workers.Running()})
	}

	// --- HTTP API ---
	srv := &http.Server{
		Addr: cfg.Server.Address,
		Handler: api.NewRouter(api.Options{
			Service:      svc,
			Validator:    validator,
			Searcher:     searcher,
			Checks:       checks,
			MaxBodyBytes: cfg.Server.MaxBodyBytes,
			Logger:       log,
		}),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", map[string]interface{}{"address": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// --- Graceful Shutdown ---
	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutdown signal received, draining requests", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
