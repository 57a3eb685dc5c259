package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/XavierBriggs/Pythia/pkg/contracts"
	"github.com/XavierBriggs/Pythia/pkg/models"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Variant is one request shape in the fallback list
type Variant struct {
	Name              string
	IncludeAlternates bool
	FilterBookmakers  bool
}

// DefaultVariants is the fallback order: narrowest request first, then drop
// the bookmaker filter, then drop the alternate markets
var DefaultVariants = []Variant{
	{Name: "alternates+bookmakers", IncludeAlternates: true, FilterBookmakers: true},
	{Name: "alternates", IncludeAlternates: true, FilterBookmakers: false},
	{Name: "base", IncludeAlternates: false, FilterBookmakers: false},
}

// ErrAllVariantsRejected is returned when the vendor rejected every request shape
var ErrAllVariantsRejected = errors.New("all request variants rejected")

// Config holds fetcher configuration
type Config struct {
	CallDelay time.Duration // minimum spacing between vendor calls
	Variants  []Variant
}

// Fetcher pulls quotes for a game from the vendor. Every call, across all
// goroutines, waits on one shared limiter and passes one circuit breaker.
type Fetcher struct {
	provider contracts.OddsProvider
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
	variants []Variant
	logger   zerolog.Logger
}

var _ contracts.QuoteFetcher = (*Fetcher)(nil)

// New creates a fetcher
func New(provider contracts.OddsProvider, cfg Config, logger zerolog.Logger) *Fetcher {
	limit := rate.Inf
	if cfg.CallDelay > 0 {
		limit = rate.Every(cfg.CallDelay)
	}

	variants := cfg.Variants
	if len(variants) == 0 {
		variants = DefaultVariants
	}

	logger = logger.With().Str("component", "fetcher").Logger()

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "odds-api",
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		// A rejected request shape says nothing about vendor health
		IsSuccessful: func(err error) bool {
			return err == nil || IsRejection(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})

	return &Fetcher{
		provider: provider,
		limiter:  rate.NewLimiter(limit, 1),
		breaker:  breaker,
		variants: variants,
		logger:   logger,
	}
}

// FetchGame tries each request variant in order and returns the quotes of the
// first one the vendor accepts. Only rejections move on to the next variant;
// any other error ends the attempt for this game.
func (f *Fetcher) FetchGame(ctx context.Context, cfg models.SportConfig, game models.Game) ([]models.RawQuote, error) {
	tried := make(map[string]bool, len(f.variants))
	var lastErr error

	for _, v := range f.variants {
		opts := buildOptions(cfg, game, v)
		if opts == nil {
			continue
		}

		key := requestKey(opts)
		if tried[key] {
			continue
		}
		tried[key] = true

		result, err := f.call(ctx, opts)
		if err == nil {
			f.logger.Debug().
				Str("sport", cfg.SportKey).
				Str("event_id", game.ExternalID).
				Str("variant", v.Name).
				Int("quotes", len(result.Quotes)).
				Msg("fetched event odds")
			return result.Quotes, nil
		}

		if !IsRejection(err) {
			return nil, fmt.Errorf("fetch %s (%s): %w", game.ExternalID, v.Name, err)
		}

		f.logger.Info().
			Err(err).
			Str("event_id", game.ExternalID).
			Str("variant", v.Name).
			Msg("request variant rejected, falling back")
		lastErr = err
	}

	if lastErr == nil {
		return nil, fmt.Errorf("fetch %s: no request variants to try", game.ExternalID)
	}
	return nil, fmt.Errorf("fetch %s: %w: %w", game.ExternalID, ErrAllVariantsRejected, lastErr)
}

// RateLimits reports the vendor quota seen on the latest call
func (f *Fetcher) RateLimits() models.RateLimits {
	return f.provider.GetRateLimits()
}

func (f *Fetcher) call(ctx context.Context, opts *models.FetchEventOddsOptions) (*models.FetchResult, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	out, err := f.breaker.Execute(func() (interface{}, error) {
		return f.provider.FetchEventOdds(ctx, opts)
	})
	if err != nil {
		return nil, err
	}
	return out.(*models.FetchResult), nil
}

func buildOptions(cfg models.SportConfig, game models.Game, v Variant) *models.FetchEventOddsOptions {
	if v.FilterBookmakers && len(cfg.Bookmakers) == 0 {
		return nil
	}

	opts := &models.FetchEventOddsOptions{
		Sport:   cfg.ProviderKey,
		EventID: game.ExternalID,
		Regions: cfg.Regions,
		Markets: cfg.RequestMarkets(v.IncludeAlternates),
	}
	if v.FilterBookmakers {
		opts.Bookmakers = cfg.Bookmakers
	}
	return opts
}

func requestKey(opts *models.FetchEventOddsOptions) string {
	return strings.Join(opts.Markets, ",") + "|" + strings.Join(opts.Bookmakers, ",")
}

// IsRejection reports whether err is the vendor refusing the request shape
// (bad market or bookmaker combination) rather than a transient failure
func IsRejection(err error) bool {
	var statusErr contracts.StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	switch statusErr.HTTPStatus() {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
		return true
	}
	return false
}
