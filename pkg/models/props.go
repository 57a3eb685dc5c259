package models

import (
	"sort"
	"strings"
	"time"
)

// AlternateSuffix marks a market whose lines only feed the ladder
const AlternateSuffix = "_alternate"

// SplitMarketKey returns the base stat type of a market key and whether the
// key named the alternate-lines variant
func SplitMarketKey(marketKey string) (string, bool) {
	if base, ok := strings.CutSuffix(marketKey, AlternateSuffix); ok {
		return base, true
	}
	return marketKey, false
}

// SportConfig is the read-only catalog entry for one sport
type SportConfig struct {
	SportKey         string   `mapstructure:"sport_key" json:"sport_key"`
	DisplayName      string   `mapstructure:"display_name" json:"display_name"`
	ProviderKey      string   `mapstructure:"provider_key" json:"provider_key"`
	BaseMarkets      []string `mapstructure:"base_markets" json:"base_markets"`
	AlternateMarkets []string `mapstructure:"alternate_markets" json:"alternate_markets"`
	YesNoMarkets     []string `mapstructure:"yes_no_markets" json:"yes_no_markets"`
	Bookmakers       []string `mapstructure:"bookmakers" json:"bookmakers"`
	Regions          []string `mapstructure:"regions" json:"regions"`
	LookaheadHours   int      `mapstructure:"lookahead_hours" json:"lookahead_hours"`
}

// AllowsBook reports whether quotes from bookKey are accepted for this sport
func (c SportConfig) AllowsBook(bookKey string) bool {
	return contains(c.Bookmakers, bookKey)
}

// HasBaseMarket reports whether statType is one of the sport's base markets
func (c SportConfig) HasBaseMarket(statType string) bool {
	return contains(c.BaseMarkets, statType)
}

// IsYesNo reports whether statType resolves yes/no outcomes to over/under
func (c SportConfig) IsYesNo(statType string) bool {
	return contains(c.YesNoMarkets, statType)
}

// RequestMarkets returns the market keys to ask the vendor for. Alternate
// variants follow the base markets when withAlternates is set.
func (c SportConfig) RequestMarkets(withAlternates bool) []string {
	markets := make([]string, 0, len(c.BaseMarkets)+len(c.AlternateMarkets))
	markets = append(markets, c.BaseMarkets...)
	if withAlternates {
		for _, m := range c.AlternateMarkets {
			markets = append(markets, m+AlternateSuffix)
		}
	}
	return markets
}

// Lookahead returns the game window length
func (c SportConfig) Lookahead() time.Duration {
	return time.Duration(c.LookaheadHours) * time.Hour
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Game is a scheduled game read from the relational store
type Game struct {
	ID         int64
	ExternalID string // vendor event id
	SportKey   string
	HomeTeam   string
	AwayTeam   string
	StartTime  time.Time
}

// Side is the over/under classification of an outcome
type Side string

const (
	SideOver    Side = "over"
	SideUnder   Side = "under"
	SideUnknown Side = "unknown"
)

// PlayerIdentity is a canonical roster entry
type PlayerIdentity struct {
	ID       string
	Name     string
	Team     string
	SportKey string
}

// LadderRung holds per-book prices for one line value
type LadderRung struct {
	Over  map[string]int
	Under map[string]int
}

// NewLadderRung creates an empty rung
func NewLadderRung() *LadderRung {
	return &LadderRung{
		Over:  make(map[string]int),
		Under: make(map[string]int),
	}
}

// Prices returns the book → price map for a side, nil for SideUnknown
func (r *LadderRung) Prices(side Side) map[string]int {
	switch side {
	case SideOver:
		return r.Over
	case SideUnder:
		return r.Under
	}
	return nil
}

// BookCount counts distinct books quoting either side of the rung
func (r *LadderRung) BookCount() int {
	n := len(r.Over)
	for book := range r.Under {
		if _, ok := r.Over[book]; !ok {
			n++
		}
	}
	return n
}

// PropBucket accumulates every quote for one (player, stat type) in a game.
// Every value of MainLineByBook is a key of Ladder.
type PropBucket struct {
	PlayerName     string
	StatType       string
	MainLineByBook map[string]float64
	Ladder         map[float64]*LadderRung
}

// NewPropBucket creates an empty bucket
func NewPropBucket(playerName, statType string) *PropBucket {
	return &PropBucket{
		PlayerName:     playerName,
		StatType:       statType,
		MainLineByBook: make(map[string]float64),
		Ladder:         make(map[float64]*LadderRung),
	}
}

// Rung returns the ladder entry for line, creating it if needed
func (b *PropBucket) Rung(line float64) *LadderRung {
	rung, ok := b.Ladder[line]
	if !ok {
		rung = NewLadderRung()
		b.Ladder[line] = rung
	}
	return rung
}

// Lines returns the ladder keys in ascending order
func (b *PropBucket) Lines() []float64 {
	lines := make([]float64, 0, len(b.Ladder))
	for line := range b.Ladder {
		lines = append(lines, line)
	}
	sort.Float64s(lines)
	return lines
}

// BestPrice is the most favorable price for a side and the book offering it
type BestPrice struct {
	Price int    `json:"price"`
	Book  string `json:"book"`
}

// LadderEntry is one persisted rung of the alternate-line ladder
type LadderEntry struct {
	Line  float64        `json:"line"`
	Over  map[string]int `json:"over"`
	Under map[string]int `json:"under"`
}

// ConsensusRecord is the persisted unit: one (game, player, stat, line)
type ConsensusRecord struct {
	GameID              int64              `json:"game_id"`
	EventID             string             `json:"event_id"`
	PlayerID            string             `json:"player_id"`
	PlayerName          string             `json:"player_name"`
	SportKey            string             `json:"sport_key"`
	StatType            string             `json:"stat_type"`
	ConsensusLine       float64            `json:"consensus_line"`
	MainLineByBook      map[string]float64 `json:"main_line_by_book"`
	MainOverOddsByBook  map[string]int     `json:"main_over_odds_by_book"`
	MainUnderOddsByBook map[string]int     `json:"main_under_odds_by_book"`
	BestOver            *BestPrice         `json:"best_over,omitempty"`
	BestUnder           *BestPrice         `json:"best_under,omitempty"`
	Ladder              []LadderEntry      `json:"ladder"`
	BookCount           int                `json:"book_count"`
	UpdatedAt           time.Time          `json:"updated_at"`
}

// WriteResult summarizes one batch of upserts
type WriteResult struct {
	Written   int
	Failed    int
	Published int
	Errors    []error
}

// RunStats summarizes one pass over every active sport
type RunStats struct {
	RunID             string        `json:"run_id"`
	StartedAt         time.Time     `json:"started_at"`
	Duration          time.Duration `json:"duration"`
	Sports            int           `json:"sports"`
	Games             int           `json:"games"`
	GamesSkipped      int           `json:"games_skipped"`
	Quotes            int           `json:"quotes"`
	QuotesDropped     int           `json:"quotes_dropped"`
	Buckets           int           `json:"buckets"`
	BucketsUnresolved int           `json:"buckets_unresolved"`
	RecordsWritten    int           `json:"records_written"`
	WriteFailures     int           `json:"write_failures"`
	RecordsPublished  int           `json:"records_published"`
}

// Add merges other's counters into s
func (s *RunStats) Add(other RunStats) {
	s.Sports += other.Sports
	s.Games += other.Games
	s.GamesSkipped += other.GamesSkipped
	s.Quotes += other.Quotes
	s.QuotesDropped += other.QuotesDropped
	s.Buckets += other.Buckets
	s.BucketsUnresolved += other.BucketsUnresolved
	s.RecordsWritten += other.RecordsWritten
	s.WriteFailures += other.WriteFailures
	s.RecordsPublished += other.RecordsPublished
}
