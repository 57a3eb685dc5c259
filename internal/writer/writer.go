package writer

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/XavierBriggs/Pythia/internal/delta"
	"github.com/XavierBriggs/Pythia/pkg/contracts"
	"github.com/XavierBriggs/Pythia/pkg/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	streamKeyFormat = "props.consensus.%s" // props.consensus.basketball_nba
	streamMaxLen    = 10000
)

const upsertQuery = `
	INSERT INTO player_prop_odds (
		game_id, event_id, player_id, sport_key, stat_type, consensus_line,
		main_line_by_book, main_over_odds_by_book, main_under_odds_by_book,
		best_over_price, best_over_book, best_under_price, best_under_book,
		ladder, book_count, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7::jsonb, $8::jsonb, $9::jsonb,
		$10, $11, $12, $13,
		$14::jsonb, $15, $16
	)
	ON CONFLICT (game_id, player_id, stat_type, consensus_line) DO UPDATE SET
		event_id = EXCLUDED.event_id,
		sport_key = EXCLUDED.sport_key,
		main_line_by_book = EXCLUDED.main_line_by_book,
		main_over_odds_by_book = EXCLUDED.main_over_odds_by_book,
		main_under_odds_by_book = EXCLUDED.main_under_odds_by_book,
		best_over_price = EXCLUDED.best_over_price,
		best_over_book = EXCLUDED.best_over_book,
		best_under_price = EXCLUDED.best_under_price,
		best_under_book = EXCLUDED.best_under_book,
		ladder = EXCLUDED.ladder,
		book_count = EXCLUDED.book_count,
		updated_at = EXCLUDED.updated_at
`

// Writer upserts consensus records into Postgres and publishes the ones that
// changed to a per-sport Redis stream. Redis is optional.
type Writer struct {
	db     *sql.DB
	redis  *redis.Client
	delta  *delta.Engine
	logger zerolog.Logger
}

var _ contracts.RecordWriter = (*Writer)(nil)

// StreamMessage represents a message published to the Redis stream
type StreamMessage struct {
	models.ConsensusRecord
	ChangeType string `json:"change_type"`
}

// NewWriter creates a new writer. redisClient and deltaEngine may be nil, in
// which case nothing is published.
func NewWriter(db *sql.DB, redisClient *redis.Client, deltaEngine *delta.Engine, logger zerolog.Logger) *Writer {
	return &Writer{
		db:     db,
		redis:  redisClient,
		delta:  deltaEngine,
		logger: logger.With().Str("component", "writer").Logger(),
	}
}

// UpsertRecords writes each record independently. A failed record is logged
// and counted; the rest of the batch is still written.
func (w *Writer) UpsertRecords(ctx context.Context, records []models.ConsensusRecord) models.WriteResult {
	var result models.WriteResult
	if len(records) == 0 {
		return result
	}

	written := make([]models.ConsensusRecord, 0, len(records))
	for _, rec := range records {
		if err := w.upsert(ctx, rec); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, err)
			w.logger.Error().Err(err).
				Str("event_id", rec.EventID).
				Str("player_id", rec.PlayerID).
				Str("stat_type", rec.StatType).
				Float64("line", rec.ConsensusLine).
				Msg("upsert failed")
			continue
		}
		written = append(written, rec)
	}
	result.Written = len(written)

	if w.redis != nil && w.delta != nil {
		published, err := w.publishChanges(ctx, written)
		if err != nil {
			// Log but don't fail - DB is source of truth
			w.logger.Warn().Err(err).Msg("publish to stream failed")
		}
		result.Published = published
	}

	return result
}

func (w *Writer) upsert(ctx context.Context, rec models.ConsensusRecord) error {
	mainLines, err := json.Marshal(rec.MainLineByBook)
	if err != nil {
		return fmt.Errorf("marshal main lines: %w", err)
	}
	overOdds, err := json.Marshal(rec.MainOverOddsByBook)
	if err != nil {
		return fmt.Errorf("marshal over odds: %w", err)
	}
	underOdds, err := json.Marshal(rec.MainUnderOddsByBook)
	if err != nil {
		return fmt.Errorf("marshal under odds: %w", err)
	}
	ladder, err := json.Marshal(rec.Ladder)
	if err != nil {
		return fmt.Errorf("marshal ladder: %w", err)
	}

	overPrice, overBook := nullBest(rec.BestOver)
	underPrice, underBook := nullBest(rec.BestUnder)

	_, err = w.db.ExecContext(ctx, upsertQuery,
		rec.GameID, rec.EventID, rec.PlayerID, rec.SportKey, rec.StatType, rec.ConsensusLine,
		string(mainLines), string(overOdds), string(underOdds),
		overPrice, overBook, underPrice, underBook,
		string(ladder), rec.BookCount, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert player prop %s/%s/%s: %w", rec.EventID, rec.PlayerID, rec.StatType, err)
	}

	return nil
}

func nullBest(best *models.BestPrice) (sql.NullInt64, sql.NullString) {
	if best == nil {
		return sql.NullInt64{}, sql.NullString{}
	}
	return sql.NullInt64{Int64: int64(best.Price), Valid: true},
		sql.NullString{String: best.Book, Valid: true}
}

// publishChanges publishes records whose content moved since the last run
// and refreshes their cached fingerprints
func (w *Writer) publishChanges(ctx context.Context, records []models.ConsensusRecord) (int, error) {
	deltas, err := w.delta.DetectChanges(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("detect changes: %w", err)
	}
	if len(deltas) == 0 {
		return 0, nil
	}

	if err := w.publishToStream(ctx, deltas); err != nil {
		return 0, err
	}

	changed := make([]models.ConsensusRecord, len(deltas))
	for i, d := range deltas {
		changed[i] = d.Record
	}
	if err := w.delta.UpdateCache(ctx, changed); err != nil {
		// Next run republishes; not fatal
		w.logger.Warn().Err(err).Msg("update delta cache failed")
	}

	return len(deltas), nil
}

// publishToStream publishes deltas to each sport's Redis stream
func (w *Writer) publishToStream(ctx context.Context, deltas []delta.Delta) error {
	bySport := make(map[string][]delta.Delta)
	for _, d := range deltas {
		bySport[d.Record.SportKey] = append(bySport[d.Record.SportKey], d)
	}

	for sportKey, sportDeltas := range bySport {
		streamKey := fmt.Sprintf(streamKeyFormat, sportKey)

		pipe := w.redis.Pipeline()
		for _, d := range sportDeltas {
			msgJSON, err := json.Marshal(StreamMessage{
				ConsensusRecord: d.Record,
				ChangeType:      string(d.ChangeType),
			})
			if err != nil {
				return fmt.Errorf("marshal stream message: %w", err)
			}

			pipe.XAdd(ctx, &redis.XAddArgs{
				Stream: streamKey,
				MaxLen: streamMaxLen,
				Approx: true,
				Values: map[string]interface{}{
					"data": msgJSON,
				},
			})
		}

		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("redis pipeline exec for stream %s: %w", streamKey, err)
		}
	}

	return nil
}
