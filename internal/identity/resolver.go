package identity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/XavierBriggs/Pythia/pkg/contracts"
	"github.com/XavierBriggs/Pythia/pkg/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Resolver maps free-text player names to roster identities. Rosters are
// loaded once per sport and cached until Reset. Auto-creation is serialized
// per sport.
type Resolver struct {
	store      contracts.RosterStore
	autoCreate map[string]bool
	logger     zerolog.Logger
	newID      func() string

	mu      sync.Mutex
	rosters map[string][]models.PlayerIdentity
	locks   map[string]*sync.Mutex
}

var _ contracts.IdentityResolver = (*Resolver)(nil)

// NewResolver creates a resolver. Only sports in autoCreateSports may have
// new roster entries synthesized.
func NewResolver(store contracts.RosterStore, autoCreateSports []string, logger zerolog.Logger) *Resolver {
	allowed := make(map[string]bool, len(autoCreateSports))
	for _, s := range autoCreateSports {
		allowed[s] = true
	}

	return &Resolver{
		store:      store,
		autoCreate: allowed,
		logger:     logger.With().Str("component", "identity").Logger(),
		newID:      func() string { return uuid.NewString() },
		rosters:    make(map[string][]models.PlayerIdentity),
		locks:      make(map[string]*sync.Mutex),
	}
}

// Reset drops every cached roster so the next Resolve reloads from the store
func (r *Resolver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rosters = make(map[string][]models.PlayerIdentity)
}

// Resolve returns the identity for name in game's sport, or nil when the name
// matches nobody and the sport does not allow auto-creation
func (r *Resolver) Resolve(ctx context.Context, name string, game models.Game) (*models.PlayerIdentity, error) {
	sport := game.SportKey
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}

	roster, err := r.roster(ctx, sport)
	if err != nil {
		return nil, err
	}

	if p := Match(roster, name); p != nil {
		return p, nil
	}

	if !r.autoCreate[sport] {
		return nil, nil
	}

	return r.create(ctx, name, game)
}

// Match applies exact then fuzzy matching against roster
func Match(roster []models.PlayerIdentity, name string) *models.PlayerIdentity {
	if p := exactMatch(roster, name); p != nil {
		return p
	}
	return fuzzyMatch(roster, name)
}

// exactMatch returns the single entry named exactly name. Duplicate names
// are ambiguous and fall through to fuzzy matching.
func exactMatch(roster []models.PlayerIdentity, name string) *models.PlayerIdentity {
	var found *models.PlayerIdentity
	for i := range roster {
		if roster[i].Name != name {
			continue
		}
		if found != nil {
			return nil
		}
		p := roster[i]
		found = &p
	}
	return found
}

// fuzzyMatch returns the first entry, in roster order, whose name equals,
// contains, or is contained in the query
func fuzzyMatch(roster []models.PlayerIdentity, name string) *models.PlayerIdentity {
	query := canonicalName(name)
	for i := range roster {
		stored := canonicalName(roster[i].Name)
		if stored == "" {
			continue
		}
		if stored == query || strings.Contains(query, stored) || strings.Contains(stored, query) {
			p := roster[i]
			return &p
		}
	}
	return nil
}

func canonicalName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// TeamAbbreviation derives a team code from the last word of a team's display
// name ("New York Yankees" -> "YANKEES")
func TeamAbbreviation(teamName string) string {
	fields := strings.Fields(teamName)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[len(fields)-1])
}

func (r *Resolver) create(ctx context.Context, name string, game models.Game) (*models.PlayerIdentity, error) {
	lock := r.sportLock(game.SportKey)
	lock.Lock()
	defer lock.Unlock()

	// Another goroutine may have created the player while we waited
	if p := Match(r.cached(game.SportKey), name); p != nil {
		return p, nil
	}

	created, err := r.store.CreatePlayer(ctx, models.PlayerIdentity{
		ID:       r.newID(),
		Name:     strings.TrimSpace(name),
		Team:     TeamAbbreviation(game.HomeTeam),
		SportKey: game.SportKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create player %q: %w", name, err)
	}

	r.mu.Lock()
	r.rosters[game.SportKey] = append(r.rosters[game.SportKey], created)
	r.mu.Unlock()

	r.logger.Info().
		Str("sport", game.SportKey).
		Str("player_id", created.ID).
		Str("player", created.Name).
		Str("team", created.Team).
		Msg("auto-created player")

	return &created, nil
}

func (r *Resolver) roster(ctx context.Context, sport string) ([]models.PlayerIdentity, error) {
	r.mu.Lock()
	roster, ok := r.rosters[sport]
	r.mu.Unlock()
	if ok {
		return roster, nil
	}

	lock := r.sportLock(sport)
	lock.Lock()
	defer lock.Unlock()

	r.mu.Lock()
	roster, ok = r.rosters[sport]
	r.mu.Unlock()
	if ok {
		return roster, nil
	}

	loaded, err := r.store.PlayersBySport(ctx, sport)
	if err != nil {
		return nil, fmt.Errorf("load roster for %s: %w", sport, err)
	}
	if loaded == nil {
		loaded = []models.PlayerIdentity{}
	}

	r.mu.Lock()
	r.rosters[sport] = loaded
	r.mu.Unlock()

	r.logger.Debug().Str("sport", sport).Int("players", len(loaded)).Msg("loaded roster")
	return loaded, nil
}

func (r *Resolver) cached(sport string) []models.PlayerIdentity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rosters[sport]
}

func (r *Resolver) sportLock(sport string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[sport]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[sport] = lock
	}
	return lock
}
