package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/XavierBriggs/Pythia/pkg/models"
)

// NewTestGame creates a test game starting hoursUntilStart from now
func NewTestGame(id int64, externalID, sportKey, homeTeam, awayTeam string, hoursUntilStart float64) models.Game {
	return models.Game{
		ID:         id,
		ExternalID: externalID,
		SportKey:   sportKey,
		HomeTeam:   homeTeam,
		AwayTeam:   awayTeam,
		StartTime:  time.Now().Add(time.Duration(hoursUntilStart * float64(time.Hour))),
	}
}

// NewTestQuote creates a test quote
func NewTestQuote(eventID, bookKey, marketKey, outcomeName, description string, price float64, point *float64) models.RawQuote {
	now := time.Now()
	return models.RawQuote{
		EventID:          eventID,
		BookKey:          bookKey,
		MarketKey:        marketKey,
		OutcomeName:      outcomeName,
		Description:      description,
		Price:            price,
		Point:            point,
		VendorLastUpdate: now,
		ReceivedAt:       now,
	}
}

// Float64Ptr creates a pointer to float64
func Float64Ptr(val float64) *float64 {
	return &val
}

// JSmithQuotes is the reference batter_hits scenario: fanduel lists 1.5 as its
// main line, draftkings lists 2.5 as its main line and 1.5 on its alternate ladder
func JSmithQuotes() []models.RawQuote {
	return []models.RawQuote{
		NewTestQuote("evt_mlb_1", "fanduel", "batter_hits", "Over", "J. Smith", -130, Float64Ptr(1.5)),
		NewTestQuote("evt_mlb_1", "fanduel", "batter_hits", "Under", "J. Smith", 110, Float64Ptr(1.5)),
		NewTestQuote("evt_mlb_1", "draftkings", "batter_hits_alternate", "Over", "J. Smith", -120, Float64Ptr(1.5)),
		NewTestQuote("evt_mlb_1", "draftkings", "batter_hits", "Over", "J. Smith", 140, Float64Ptr(2.5)),
		NewTestQuote("evt_mlb_1", "draftkings", "batter_hits", "Under", "J. Smith", -160, Float64Ptr(2.5)),
	}
}

// MockOddsProvider is a test provider that returns predetermined results
type MockOddsProvider struct {
	FetchEventOddsFunc func(opts *models.FetchEventOddsOptions) (*models.FetchResult, error)

	mu    sync.Mutex
	Calls []models.FetchEventOddsOptions
}

func (m *MockOddsProvider) FetchEventOdds(ctx context.Context, opts *models.FetchEventOddsOptions) (*models.FetchResult, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, *opts)
	m.mu.Unlock()

	if m.FetchEventOddsFunc != nil {
		return m.FetchEventOddsFunc(opts)
	}
	return &models.FetchResult{}, nil
}

func (m *MockOddsProvider) GetRateLimits() models.RateLimits {
	return models.RateLimits{RequestsRemaining: 500}
}

// CallCount returns the number of FetchEventOdds calls seen so far
func (m *MockOddsProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MemoryRosterStore is an in-memory RosterStore keyed by (sport, name)
type MemoryRosterStore struct {
	mu      sync.Mutex
	players []models.PlayerIdentity
	Creates int
	LoadErr error
}

// NewMemoryRosterStore creates a roster seeded with players, in read order
func NewMemoryRosterStore(players ...models.PlayerIdentity) *MemoryRosterStore {
	return &MemoryRosterStore{players: append([]models.PlayerIdentity(nil), players...)}
}

func (s *MemoryRosterStore) PlayersBySport(ctx context.Context, sportKey string) ([]models.PlayerIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.LoadErr != nil {
		return nil, s.LoadErr
	}

	var out []models.PlayerIdentity
	for _, p := range s.players {
		if p.SportKey == sportKey {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryRosterStore) CreatePlayer(ctx context.Context, p models.PlayerIdentity) (models.PlayerIdentity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		return models.PlayerIdentity{}, fmt.Errorf("player id is required")
	}
	for _, existing := range s.players {
		if existing.SportKey == p.SportKey && existing.Name == p.Name {
			return existing, nil
		}
	}

	s.Creates++
	s.players = append(s.players, p)
	return p, nil
}

// Players returns a copy of every stored player
func (s *MemoryRosterStore) Players() []models.PlayerIdentity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.PlayerIdentity(nil), s.players...)
}

// RecordingWriter is a RecordWriter that keeps records in memory keyed by
// their natural key
type RecordingWriter struct {
	mu      sync.Mutex
	Records map[string]models.ConsensusRecord
	Batches int
	FailOn  func(rec models.ConsensusRecord) error
}

// NewRecordingWriter creates an empty recording writer
func NewRecordingWriter() *RecordingWriter {
	return &RecordingWriter{Records: make(map[string]models.ConsensusRecord)}
}

// NaturalKey formats the upsert key of a record
func NaturalKey(rec models.ConsensusRecord) string {
	return fmt.Sprintf("%d|%s|%s|%g", rec.GameID, rec.PlayerID, rec.StatType, rec.ConsensusLine)
}

func (w *RecordingWriter) UpsertRecords(ctx context.Context, records []models.ConsensusRecord) models.WriteResult {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.Batches++
	var result models.WriteResult
	for _, rec := range records {
		if w.FailOn != nil {
			if err := w.FailOn(rec); err != nil {
				result.Failed++
				result.Errors = append(result.Errors, err)
				continue
			}
		}
		w.Records[NaturalKey(rec)] = rec
		result.Written++
	}
	return result
}

// Snapshot returns a copy of the stored records
func (w *RecordingWriter) Snapshot() map[string]models.ConsensusRecord {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make(map[string]models.ConsensusRecord, len(w.Records))
	for k, v := range w.Records {
		out[k] = v
	}
	return out
}
