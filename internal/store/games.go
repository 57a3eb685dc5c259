package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/XavierBriggs/Pythia/pkg/contracts"
	"github.com/XavierBriggs/Pythia/pkg/models"
)

// GameStore reads scheduled games from Postgres
type GameStore struct {
	db *sql.DB
}

var _ contracts.GameSelector = (*GameStore)(nil)

// NewGameStore creates a new game store
func NewGameStore(db *sql.DB) *GameStore {
	return &GameStore{db: db}
}

// UpcomingGames returns games of the sport starting within its lookahead
// window from now, earliest first. Games without a vendor event id are skipped.
func (s *GameStore) UpcomingGames(ctx context.Context, cfg models.SportConfig, now time.Time) ([]models.Game, error) {
	query := `
		SELECT id, external_id, sport_key, home_team, away_team, start_time
		FROM games
		WHERE sport_key = $1
		  AND start_time >= $2
		  AND start_time < $3
		  AND external_id IS NOT NULL
		  AND external_id <> ''
		ORDER BY start_time, id
	`

	rows, err := s.db.QueryContext(ctx, query, cfg.SportKey, now, now.Add(cfg.Lookahead()))
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var games []models.Game
	for rows.Next() {
		var g models.Game
		if err := rows.Scan(&g.ID, &g.ExternalID, &g.SportKey, &g.HomeTeam, &g.AwayTeam, &g.StartTime); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}

	return games, nil
}
