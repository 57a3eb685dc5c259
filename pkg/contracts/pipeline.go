package contracts

import (
	"context"
	"time"

	"github.com/XavierBriggs/Pythia/pkg/models"
)

// GameSelector returns the games of a sport inside its lookahead window
type GameSelector interface {
	UpcomingGames(ctx context.Context, cfg models.SportConfig, now time.Time) ([]models.Game, error)
}

// QuoteFetcher returns every raw quote the vendor has for one game
type QuoteFetcher interface {
	FetchGame(ctx context.Context, cfg models.SportConfig, game models.Game) ([]models.RawQuote, error)
}

// RosterStore reads and extends the canonical player roster
type RosterStore interface {
	// PlayersBySport returns the roster in a stable read order
	PlayersBySport(ctx context.Context, sportKey string) ([]models.PlayerIdentity, error)

	// CreatePlayer inserts p unless (sport, name) already exists and returns the stored row
	CreatePlayer(ctx context.Context, p models.PlayerIdentity) (models.PlayerIdentity, error)
}

// IdentityResolver maps free-text player names to roster entries.
// A nil identity with a nil error means the name could not be resolved.
type IdentityResolver interface {
	Resolve(ctx context.Context, name string, game models.Game) (*models.PlayerIdentity, error)
	Reset()
}

// RecordWriter persists consensus records
type RecordWriter interface {
	UpsertRecords(ctx context.Context, records []models.ConsensusRecord) models.WriteResult
}
