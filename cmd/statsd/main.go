// Package main is the entry point for the NFL efficiency stats service.
//
// The binary wires the full pipeline: nflverse play-by-play retrieval,
// TOER computation, league ranking, the layered cache, the optional
// database-optimized strategy and the HTTP API. PostgreSQL and Redis are
// optional; without them the service runs fresh-remote only.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gridstats/nfl-efficiency-hub/config"
	"github.com/gridstats/nfl-efficiency-hub/internal/application/eventhandler"
	"github.com/gridstats/nfl-efficiency-hub/internal/application/orchestrator"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/ranking"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/stats"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/toer"
	"github.com/gridstats/nfl-efficiency-hub/internal/infrastructure/cache"
	"github.com/gridstats/nfl-efficiency-hub/internal/infrastructure/external/nflverse"
	"github.com/gridstats/nfl-efficiency-hub/internal/infrastructure/messaging"
	"github.com/gridstats/nfl-efficiency-hub/internal/infrastructure/persistence/postgres"
	"github.com/gridstats/nfl-efficiency-hub/internal/infrastructure/persistence/redis"
	"github.com/gridstats/nfl-efficiency-hub/internal/infrastructure/scheduler"
	"github.com/gridstats/nfl-efficiency-hub/internal/infrastructure/scheduler/jobs"
	"github.com/gridstats/nfl-efficiency-hub/internal/interface/rest"
	"github.com/gridstats/nfl-efficiency-hub/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION AND LOGGING
	// ─────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logOpts := logger.DefaultOptions()
	logOpts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	logOpts.AddCaller = cfg.App.Debug
	log := logger.New(logOpts)

	log.Info("starting nfl-efficiency-hub",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
	)

	// ─────────────────────────────────────────────────────────────────────
	// 2. DOMAIN ENGINES
	// ─────────────────────────────────────────────────────────────────────
	engine, err := toer.NewEngine()
	if err != nil {
		return fmt.Errorf("load rating rules: %w", err)
	}

	calc := stats.NewCalculator(log)
	proc := stats.NewGameProcessor(engine, log)
	ranker := ranking.NewEngine()

	// ─────────────────────────────────────────────────────────────────────
	// 3. EVENT BUS AND AUDIT TRAIL
	// ─────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultConfig()
	busCfg.Logger = log
	bus := messaging.NewInMemoryEventBus(busCfg)
	defer func() {
		_ = bus.Close()
	}()

	audit := eventhandler.NewAuditTrail(eventhandler.DefaultAuditConfig(), log)
	if err := audit.Register(bus); err != nil {
		return fmt.Errorf("register audit trail: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────
	// 4. NFLVERSE DATA SOURCE
	// ─────────────────────────────────────────────────────────────────────
	clientCfg := nflverse.DefaultClientConfig()
	if cfg.NFLVerse.BaseURL != "" {
		clientCfg.BaseURL = cfg.NFLVerse.BaseURL
	}
	if cfg.NFLVerse.RequestTimeout > 0 {
		clientCfg.Timeout = cfg.NFLVerse.RequestTimeout
	}
	if cfg.NFLVerse.MinRequestInterval > 0 {
		clientCfg.MinRequestInterval = cfg.NFLVerse.MinRequestInterval
	}
	if cfg.NFLVerse.UserAgent != "" {
		clientCfg.UserAgent = cfg.NFLVerse.UserAgent
	}
	clientCfg.Logger = log

	client := nflverse.NewClient(clientCfg)
	remote := nflverse.NewRepository(client)

	// ─────────────────────────────────────────────────────────────────────
	// 5. POSTGRESQL (OPTIONAL, DATABASE-OPTIMIZED STRATEGY)
	// ─────────────────────────────────────────────────────────────────────
	var conn *postgres.Connection
	var playRepo *postgres.PlayRepository

	if !cfg.Database.Disabled && cfg.Features.IsEnabled(config.FeatureDatabaseStrategy) {
		log.Info("connecting to database")
		conn, err = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		if err != nil {
			// The service degrades to fresh-remote instead of refusing to start.
			log.Warn("database unavailable, running fresh-remote only", logger.Err(err))
			conn = nil
		}
	}

	if conn != nil {
		defer conn.Close()

		if cfg.Database.MigrateOnStart {
			if err := postgres.NewMigrator(conn).Migrate(ctx); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			log.Info("database schema is up to date")
		}

		playRepo, err = postgres.NewPlayRepository(conn, log)
		if err != nil {
			return fmt.Errorf("init play repository: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────
	// 6. LEAGUE STATS CACHE (WITH OPTIONAL REDIS SNAPSHOT TIER)
	// ─────────────────────────────────────────────────────────────────────
	league, err := cache.NewLeagueStatsCache(remote, calc, proc, ranker, bus, log, cache.Config{
		CurrentSeasonTTL:  cfg.Cache.CurrentSeasonTTL,
		RawDataTTL:        cfg.Cache.RawDataTTL,
		MaxStatsEntries:   cfg.Cache.MaxStatsEntries,
		MaxRankingEntries: cfg.Cache.MaxRankingEntries,
		MaxRawEntries:     cfg.Cache.MaxRawEntries,
	})
	if err != nil {
		return fmt.Errorf("init league cache: %w", err)
	}

	var redisCache *redis.Cache
	if !cfg.Redis.Disabled && cfg.Features.IsEnabled(config.FeatureRedisSnapshots) {
		log.Info("connecting to redis")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns

		redisCache, err = redis.NewCache(ctx, redisCfg)
		if err != nil {
			log.Warn("redis unavailable, snapshot tier disabled", logger.Err(err))
			redisCache = nil
		} else {
			defer redisCache.Close()
			league = league.WithSnapshotStore(redis.NewSnapshotCache(redisCache))
			log.Info("redis snapshot tier enabled")
		}
	}

	// ─────────────────────────────────────────────────────────────────────
	// 7. ORCHESTRATOR
	// ─────────────────────────────────────────────────────────────────────
	var aggregate orchestrator.AggregateSource
	if playRepo != nil {
		aggregate = playRepo
	}

	orch, err := orchestrator.New(league, aggregate, calc, proc, bus, log)
	if err != nil {
		return fmt.Errorf("init orchestrator: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────
	// 8. BACKGROUND JOBS
	// ─────────────────────────────────────────────────────────────────────
	if cfg.Scheduler.Enabled {
		schedCfg := scheduler.DefaultConfig()
		schedCfg.Logger = log
		sched := scheduler.New(schedCfg)

		if err := sched.Register(
			jobs.NewRefreshSeasonJob(league, log),
			scheduler.NewIntervalSchedule(cfg.Scheduler.RefreshInterval),
		); err != nil {
			return fmt.Errorf("register refresh job: %w", err)
		}

		if playRepo != nil {
			if err := sched.Register(
				jobs.NewSyncDatabaseJob(league, playRepo, bus, log),
				scheduler.NewDailySchedule(cfg.Scheduler.SyncHour, cfg.Scheduler.SyncMinute, time.UTC),
			); err != nil {
				return fmt.Errorf("register sync job: %w", err)
			}
		}

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer func() {
			_ = sched.Stop()
		}()
	}

	// ─────────────────────────────────────────────────────────────────────
	// 9. HTTP API
	// ─────────────────────────────────────────────────────────────────────
	checks := []rest.HealthCheck{
		{
			Name: "nflverse",
			Check: func(ctx context.Context) error {
				if !client.IsHealthy(ctx) {
					return fmt.Errorf("nflverse release host unreachable")
				}
				return nil
			},
		},
	}
	if conn != nil {
		checks = append(checks, rest.HealthCheck{Name: "database", Check: conn.Ping})
	}
	if redisCache != nil {
		checks = append(checks, rest.HealthCheck{Name: "redis", Check: redisCache.Ping})
	}

	handler := rest.NewHandler(orch, league, checks, log).
		WithFeatures(rest.Features{
			CacheAdmin: cfg.Features.IsEnabled(config.FeatureCacheAdmin),
			Postseason: cfg.Features.IsEnabled(config.FeaturePostseasonStats),
		}).
		WithAuditTrail(audit)

	server := rest.NewServer(rest.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, handler, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()
	log.Info("http api listening",
		logger.String("addr", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)),
	)

	// ─────────────────────────────────────────────────────────────────────
	// 10. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", logger.Err(err))
	}

	log.Info("service stopped")
	return nil
}
