package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/XavierBriggs/Pythia/adapters/theoddsapi"
	"github.com/XavierBriggs/Pythia/internal/config"
	"github.com/XavierBriggs/Pythia/internal/delta"
	"github.com/XavierBriggs/Pythia/internal/fetcher"
	"github.com/XavierBriggs/Pythia/internal/identity"
	"github.com/XavierBriggs/Pythia/internal/scheduler"
	"github.com/XavierBriggs/Pythia/internal/store"
	"github.com/XavierBriggs/Pythia/internal/writer"
	"github.com/XavierBriggs/Pythia/sports"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", os.Getenv("PYTHIA_CONFIG"), "path to config file (optional)")
	flag.Parse()

	// .env is optional in deployed environments
	_ = godotenv.Load()

	bootLogger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "pythia").Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		bootLogger.Fatal().Err(err).Msg("invalid config")
	}

	logger := cfg.Logging.NewLogger(os.Stderr)

	catalog, err := config.BuildCatalog(sports.Defaults(), cfg.Catalog)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build sport catalog")
	}
	active, err := catalog.Active(cfg.Scheduler.ActiveSports)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to select active sports")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Alexandria DB connection
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open Alexandria DB")
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to ping Alexandria DB")
	}
	logger.Info().Msg("connected to Alexandria DB")

	// Redis is optional; without it records are stored but not published
	var (
		redisClient *redis.Client
		deltaEngine *delta.Engine
	)
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		deltaEngine = delta.NewEngine(redisClient, cfg.Redis.ConsensusTTL)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
	} else {
		logger.Warn().Msg("redis.addr not set, consensus changes will not be published")
	}

	client := theoddsapi.NewClient(cfg.OddsAPI.APIKey,
		theoddsapi.WithBaseURL(cfg.OddsAPI.BaseURL),
		theoddsapi.WithTimeout(cfg.OddsAPI.Timeout),
		theoddsapi.WithRetry(cfg.OddsAPI.MaxRetries, cfg.OddsAPI.RetryDelay),
	)
	quoteFetcher := fetcher.New(client, fetcher.Config{CallDelay: cfg.OddsAPI.CallDelay}, logger)

	sched := scheduler.NewScheduler(active, scheduler.Deps{
		Games:    store.NewGameStore(db),
		Fetcher:  quoteFetcher,
		Resolver: identity.NewResolver(store.NewRosterStore(db), cfg.Identity.AutoCreateSports, logger),
		Writer:   writer.NewWriter(db, redisClient, deltaEngine, logger),
	}, cfg.Scheduler.Concurrency, logger)

	for _, sport := range active {
		logger.Info().
			Str("sport", sport.SportKey).
			Strs("markets", sport.BaseMarkets).
			Strs("alternates", sport.AlternateMarkets).
			Strs("bookmakers", sport.Bookmakers).
			Int("lookahead_hours", sport.LookaheadHours).
			Msg("sport active")
	}

	if cfg.Scheduler.RunOnce {
		if _, err := sched.RunOnce(ctx); err != nil {
			logger.Fatal().Err(err).Msg("run failed")
		}
		return
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newRouter(sched, quoteFetcher, active, logger),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", cfg.Server.Addr).Msg("ops server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("ops server failed")
		}
	}()

	run := func() {
		if _, err := sched.RunOnce(ctx); err != nil {
			logger.Warn().Err(err).Msg("scheduled run skipped")
		}
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.Scheduler.Cron, run); err != nil {
		logger.Fatal().Err(err).Str("cron", cfg.Scheduler.Cron).Msg("invalid schedule")
	}
	c.Start()
	logger.Info().Str("cron", cfg.Scheduler.Cron).Msg("pythia started")

	// Don't wait for the first tick
	go run()

	<-ctx.Done()
	logger.Info().Msg("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("ops server shutdown")
	}

	// Wait for an in-flight run to notice cancellation
	select {
	case <-c.Stop().Done():
		logger.Info().Msg("pythia stopped")
	case <-shutdownCtx.Done():
		logger.Error().Msg("shutdown timeout exceeded")
		os.Exit(1)
	}
}
