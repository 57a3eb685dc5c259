package aggregate

import (
	"strings"

	"github.com/XavierBriggs/Pythia/internal/normalize"
	"github.com/XavierBriggs/Pythia/pkg/models"
	"github.com/rs/zerolog"
)

// yesNoLine is the line recorded for yes/no outcomes the vendor sends without a point
const yesNoLine = 0.5

// Stats counts what happened to the quotes of one aggregation pass
type Stats struct {
	Quotes          int
	Kept            int
	DroppedBook     int
	DroppedMarket   int
	DroppedNoPlayer int
	DroppedSide     int
	DroppedNoPoint  int
}

// Dropped returns the number of quotes that did not reach a bucket
func (s Stats) Dropped() int {
	return s.Quotes - s.Kept
}

// Aggregator buckets raw quotes by (player, stat type). It holds no state
// between calls and is safe for concurrent use.
type Aggregator struct {
	logger zerolog.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		logger: logger.With().Str("component", "aggregator").Logger(),
	}
}

type bucketKey struct {
	player string
	stat   string
}

// Aggregate folds the quotes of a single game into prop buckets, returned in
// first-seen order. Quotes from books or markets the sport does not allow are
// dropped, as are outcomes that cannot be classified as over or under.
func (a *Aggregator) Aggregate(cfg models.SportConfig, quotes []models.RawQuote) ([]*models.PropBucket, Stats) {
	var stats Stats
	buckets := make(map[bucketKey]*models.PropBucket)
	ordered := make([]*models.PropBucket, 0)

	for _, q := range quotes {
		stats.Quotes++

		if !cfg.AllowsBook(q.BookKey) {
			stats.DroppedBook++
			continue
		}

		statType, alternate := models.SplitMarketKey(q.MarketKey)
		if !cfg.HasBaseMarket(statType) {
			stats.DroppedMarket++
			continue
		}

		player := strings.TrimSpace(q.Description)
		if player == "" {
			stats.DroppedNoPlayer++
			continue
		}

		yesNo := cfg.IsYesNo(statType)
		side := normalize.ClassifySide(q.OutcomeName, yesNo)
		if side == models.SideUnknown {
			stats.DroppedSide++
			a.logger.Warn().
				Str("event_id", q.EventID).
				Str("book", q.BookKey).
				Str("market", q.MarketKey).
				Str("outcome", q.OutcomeName).
				Msg("unclassifiable outcome dropped")
			continue
		}

		var line float64
		switch {
		case q.Point != nil:
			line = *q.Point
		case yesNo:
			line = yesNoLine
		default:
			stats.DroppedNoPoint++
			continue
		}

		key := bucketKey{player: player, stat: statType}
		bucket, ok := buckets[key]
		if !ok {
			bucket = models.NewPropBucket(player, statType)
			buckets[key] = bucket
			ordered = append(ordered, bucket)
		}

		prices := bucket.Rung(line).Prices(side)
		price := normalize.ToAmerican(q.Price)

		if alternate {
			// Alternate quotes never displace a book's main-market price
			if _, exists := prices[q.BookKey]; !exists {
				prices[q.BookKey] = price
			}
		} else {
			bucket.MainLineByBook[q.BookKey] = line
			prices[q.BookKey] = price
		}
		stats.Kept++
	}

	a.logger.Debug().
		Int("quotes", stats.Quotes).
		Int("kept", stats.Kept).
		Int("dropped_book", stats.DroppedBook).
		Int("dropped_market", stats.DroppedMarket).
		Int("buckets", len(ordered)).
		Msg("aggregated quotes")

	return ordered, stats
}
