package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/XavierBriggs/Pythia/internal/aggregate"
	"github.com/XavierBriggs/Pythia/internal/consensus"
	"github.com/XavierBriggs/Pythia/pkg/contracts"
	"github.com/XavierBriggs/Pythia/pkg/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

// Scheduler runs the props pipeline: for each active sport, for each game in
// its window, fetch → aggregate → resolve → select → upsert
type Scheduler struct {
	sports      []models.SportConfig
	games       contracts.GameSelector
	fetcher     contracts.QuoteFetcher
	aggregator  *aggregate.Aggregator
	resolver    contracts.IdentityResolver
	writer      contracts.RecordWriter
	concurrency int
	logger      zerolog.Logger
	now         func() time.Time

	runMu   sync.Mutex // one run at a time
	statsMu sync.RWMutex
	lastRun models.RunStats
	running bool
}

type quotaReporter interface {
	RateLimits() models.RateLimits
}

// Deps bundles the scheduler's collaborators
type Deps struct {
	Games    contracts.GameSelector
	Fetcher  contracts.QuoteFetcher
	Resolver contracts.IdentityResolver
	Writer   contracts.RecordWriter
}

// NewScheduler creates a new scheduler over the active sports. Concurrency is
// the number of games processed at once within a sport.
func NewScheduler(sports []models.SportConfig, deps Deps, concurrency int, logger zerolog.Logger) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}

	return &Scheduler{
		sports:      sports,
		games:       deps.Games,
		fetcher:     deps.Fetcher,
		aggregator:  aggregate.NewAggregator(logger),
		resolver:    deps.Resolver,
		writer:      deps.Writer,
		concurrency: concurrency,
		logger:      logger.With().Str("component", "scheduler").Logger(),
		now:         time.Now,
	}
}

// RunOnce processes every active sport once. Sports run in order; failures
// are logged and skipped so one bad game or sport never stops the run.
func (s *Scheduler) RunOnce(ctx context.Context) (models.RunStats, error) {
	if !s.runMu.TryLock() {
		return models.RunStats{}, fmt.Errorf("run already in progress")
	}
	defer s.runMu.Unlock()

	s.setRunning(true)
	defer s.setRunning(false)

	stats := models.RunStats{
		RunID:     uuid.NewString(),
		StartedAt: s.now(),
	}
	logger := s.logger.With().Str("run_id", stats.RunID).Logger()

	// Rosters may have changed since the last run
	s.resolver.Reset()

	for _, sport := range s.sports {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Add(s.processSport(ctx, sport, logger))
	}

	stats.Duration = time.Since(stats.StartedAt)
	s.setLastRun(stats)

	logger.Info().
		Int("sports", stats.Sports).
		Int("games", stats.Games).
		Int("games_skipped", stats.GamesSkipped).
		Int("quotes", stats.Quotes).
		Int("quotes_dropped", stats.QuotesDropped).
		Int("buckets", stats.Buckets).
		Int("buckets_unresolved", stats.BucketsUnresolved).
		Int("records_written", stats.RecordsWritten).
		Int("write_failures", stats.WriteFailures).
		Int("records_published", stats.RecordsPublished).
		Dur("duration", stats.Duration).
		Msg("run complete")

	if q, ok := s.fetcher.(quotaReporter); ok {
		limits := q.RateLimits()
		logger.Info().
			Int("requests_remaining", limits.RequestsRemaining).
			Int("requests_used", limits.RequestsUsed).
			Msg("vendor quota")
	}

	return stats, nil
}

// LastRun returns the stats of the most recent completed run
func (s *Scheduler) LastRun() models.RunStats {
	s.statsMu.RLock()
	defer s.statsMu.RUnlock()
	return s.lastRun
}

// Running reports whether a run is in progress
func (s *Scheduler) Running() bool {
	s.statsMu.RLock()
	defer s.statsMu.RUnlock()
	return s.running
}

func (s *Scheduler) setLastRun(stats models.RunStats) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.lastRun = stats
}

func (s *Scheduler) setRunning(running bool) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.running = running
}

// processSport runs every game in the sport's window through the pipeline
func (s *Scheduler) processSport(ctx context.Context, sport models.SportConfig, logger zerolog.Logger) models.RunStats {
	stats := models.RunStats{Sports: 1}
	logger = logger.With().Str("sport", sport.SportKey).Logger()

	games, err := s.games.UpcomingGames(ctx, sport, s.now())
	if err != nil {
		logger.Error().Err(err).Msg("load games failed, skipping sport")
		return stats
	}
	if len(games) == 0 {
		logger.Info().Int("lookahead_hours", sport.LookaheadHours).Msg("no games in window")
		return stats
	}

	var mu sync.Mutex
	p := pool.New().WithMaxGoroutines(s.concurrency)
	for _, game := range games {
		game := game
		p.Go(func() {
			gameStats := s.processGame(ctx, sport, game, logger)
			mu.Lock()
			stats.Add(gameStats)
			mu.Unlock()
		})
	}
	p.Wait()

	logger.Info().
		Int("games", stats.Games).
		Int("games_skipped", stats.GamesSkipped).
		Int("records_written", stats.RecordsWritten).
		Msg("sport complete")

	return stats
}

// processGame fetches, aggregates and persists the props of one game
func (s *Scheduler) processGame(ctx context.Context, sport models.SportConfig, game models.Game, logger zerolog.Logger) models.RunStats {
	stats := models.RunStats{Games: 1}
	logger = logger.With().Str("event_id", game.ExternalID).Int64("game_id", game.ID).Logger()
	start := time.Now()

	quotes, err := s.fetcher.FetchGame(ctx, sport, game)
	if err != nil {
		logger.Warn().Err(err).Msg("fetch failed, skipping game")
		stats.GamesSkipped++
		return stats
	}
	fetchDuration := time.Since(start)

	buckets, aggStats := s.aggregator.Aggregate(sport, quotes)
	stats.Quotes = aggStats.Quotes
	stats.QuotesDropped = aggStats.Dropped()
	stats.Buckets = len(buckets)

	records := make([]models.ConsensusRecord, 0, len(buckets))
	now := s.now()
	for _, bucket := range buckets {
		player, err := s.resolver.Resolve(ctx, bucket.PlayerName, game)
		if err != nil {
			logger.Error().Err(err).Str("player", bucket.PlayerName).Msg("resolve player failed")
			stats.BucketsUnresolved++
			continue
		}
		if player == nil {
			logger.Debug().Str("player", bucket.PlayerName).Str("stat_type", bucket.StatType).Msg("unknown player, dropping prop")
			stats.BucketsUnresolved++
			continue
		}

		sel, ok := consensus.Select(bucket)
		if !ok {
			continue
		}
		records = append(records, consensus.Build(game, *player, bucket, sel, now))
	}

	result := s.writer.UpsertRecords(ctx, records)
	stats.RecordsWritten = result.Written
	stats.WriteFailures = result.Failed
	stats.RecordsPublished = result.Published
	if len(result.Errors) > 0 {
		logger.Warn().Err(errors.Join(result.Errors...)).Int("failed", result.Failed).Msg("some records were not written")
	}

	logger.Debug().
		Int("quotes", stats.Quotes).
		Int("buckets", stats.Buckets).
		Int("records", len(records)).
		Int("written", result.Written).
		Dur("fetch", fetchDuration).
		Dur("total", time.Since(start)).
		Msg("game complete")

	return stats
}
