package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/XavierBriggs/Pythia/pkg/contracts"
	"github.com/XavierBriggs/Pythia/pkg/models"
)

// RosterStore reads and extends the players table
type RosterStore struct {
	db *sql.DB
}

var _ contracts.RosterStore = (*RosterStore)(nil)

// NewRosterStore creates a new roster store
func NewRosterStore(db *sql.DB) *RosterStore {
	return &RosterStore{db: db}
}

// PlayersBySport returns every player of a sport in insertion order
func (s *RosterStore) PlayersBySport(ctx context.Context, sportKey string) ([]models.PlayerIdentity, error) {
	query := `
		SELECT id, name, COALESCE(team, ''), sport_key
		FROM players
		WHERE sport_key = $1
		ORDER BY created_at, id
	`

	rows, err := s.db.QueryContext(ctx, query, sportKey)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var players []models.PlayerIdentity
	for rows.Next() {
		var p models.PlayerIdentity
		if err := rows.Scan(&p.ID, &p.Name, &p.Team, &p.SportKey); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}

	return players, nil
}

// CreatePlayer inserts a new roster entry. If another writer already created
// (sport, name) the existing row is returned instead.
func (s *RosterStore) CreatePlayer(ctx context.Context, p models.PlayerIdentity) (models.PlayerIdentity, error) {
	insert := `
		INSERT INTO players (id, name, team, sport_key, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (sport_key, name) DO NOTHING
		RETURNING id, name, COALESCE(team, ''), sport_key
	`

	var created models.PlayerIdentity
	err := s.db.QueryRowContext(ctx, insert, p.ID, p.Name, p.Team, p.SportKey).
		Scan(&created.ID, &created.Name, &created.Team, &created.SportKey)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.PlayerIdentity{}, fmt.Errorf("insert player: %w", err)
	}

	// Lost the race: read back the winner
	existing := `
		SELECT id, name, COALESCE(team, ''), sport_key
		FROM players
		WHERE sport_key = $1 AND name = $2
		LIMIT 1
	`
	if err := s.db.QueryRowContext(ctx, existing, p.SportKey, p.Name).
		Scan(&created.ID, &created.Name, &created.Team, &created.SportKey); err != nil {
		return models.PlayerIdentity{}, fmt.Errorf("read existing player: %w", err)
	}

	return created, nil
}
