package delta

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/XavierBriggs/Pythia/pkg/models"
	"github.com/redis/go-redis/v9"
)

// Engine detects which consensus records moved since the last run by
// comparing content fingerprints cached in Redis
type Engine struct {
	redis *redis.Client
	ttl   time.Duration
}

// ChangeType indicates the type of change detected
type ChangeType string

const (
	ChangeTypeNew     ChangeType = "new"
	ChangeTypeUpdated ChangeType = "updated"
	ChangeTypeNone    ChangeType = "none"
)

// Delta represents a detected change
type Delta struct {
	Record     models.ConsensusRecord
	ChangeType ChangeType
}

// NewEngine creates a new delta detection engine
func NewEngine(redisClient *redis.Client, cacheTTL time.Duration) *Engine {
	return &Engine{
		redis: redisClient,
		ttl:   cacheTTL,
	}
}

// DetectChanges returns the records whose content differs from the cached
// fingerprint. UpdatedAt is ignored, so an unchanged re-run yields no deltas.
func (e *Engine) DetectChanges(ctx context.Context, records []models.ConsensusRecord) ([]Delta, error) {
	if len(records) == 0 {
		return nil, nil
	}

	keys := make([]string, len(records))
	for i, rec := range records {
		keys[i] = BuildKey(rec)
	}

	cachedValues, err := e.redis.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis mget: %w", err)
	}

	deltas := make([]Delta, 0, len(records))
	for i, rec := range records {
		fp, err := Fingerprint(rec)
		if err != nil {
			return nil, err
		}

		changeType := compare(fp, cachedValues[i])
		if changeType != ChangeTypeNone {
			deltas = append(deltas, Delta{Record: rec, ChangeType: changeType})
		}
	}

	return deltas, nil
}

// UpdateCache stores the fingerprints of records (write-through after a
// successful database write)
func (e *Engine) UpdateCache(ctx context.Context, records []models.ConsensusRecord) error {
	if len(records) == 0 {
		return nil
	}

	pipe := e.redis.Pipeline()
	for _, rec := range records {
		fp, err := Fingerprint(rec)
		if err != nil {
			return err
		}
		pipe.Set(ctx, BuildKey(rec), fp, e.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis pipeline exec: %w", err)
	}

	return nil
}

// BuildKey creates the Redis key for a record's natural key
// Format: props:consensus:{game_id}:{player_id}:{stat_type}:{line}
func BuildKey(rec models.ConsensusRecord) string {
	return fmt.Sprintf("props:consensus:%d:%s:%s:%s",
		rec.GameID,
		rec.PlayerID,
		rec.StatType,
		strconv.FormatFloat(rec.ConsensusLine, 'f', -1, 64),
	)
}

// Fingerprint serializes every field of rec except UpdatedAt
func Fingerprint(rec models.ConsensusRecord) (string, error) {
	rec.UpdatedAt = time.Time{}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("marshal fingerprint: %w", err)
	}
	return string(data), nil
}

func compare(fingerprint string, cachedValue interface{}) ChangeType {
	if cachedValue == nil {
		return ChangeTypeNew
	}

	cached, ok := cachedValue.(string)
	if !ok {
		// Cache corruption, treat as new
		return ChangeTypeNew
	}

	if cached == fingerprint {
		return ChangeTypeNone
	}
	return ChangeTypeUpdated
}
