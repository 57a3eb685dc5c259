package scheduler_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/XavierBriggs/Pythia/internal/fetcher"
	"github.com/XavierBriggs/Pythia/internal/identity"
	"github.com/XavierBriggs/Pythia/internal/scheduler"
	"github.com/XavierBriggs/Pythia/pkg/models"
	"github.com/XavierBriggs/Pythia/pkg/testutil"
	"github.com/XavierBriggs/Pythia/sports/baseball_mlb"
	"github.com/XavierBriggs/Pythia/sports/basketball_nba"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGames struct {
	games map[string][]models.Game
	err   map[string]error
}

func (f *fakeGames) UpcomingGames(ctx context.Context, cfg models.SportConfig, now time.Time) ([]models.Game, error) {
	if err := f.err[cfg.SportKey]; err != nil {
		return nil, err
	}
	return f.games[cfg.SportKey], nil
}

type statusErr struct{ code int }

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", e.code) }
func (e statusErr) HTTPStatus() int { return e.code }

type harness struct {
	provider *testutil.MockOddsProvider
	roster   *testutil.MemoryRosterStore
	writer   *testutil.RecordingWriter
	sched    *scheduler.Scheduler
}

func newHarness(t *testing.T, sports []models.SportConfig, games *fakeGames, quotes map[string][]models.RawQuote, autoCreate []string, concurrency int, players ...models.PlayerIdentity) *harness {
	t.Helper()

	provider := &testutil.MockOddsProvider{
		FetchEventOddsFunc: func(opts *models.FetchEventOddsOptions) (*models.FetchResult, error) {
			q, ok := quotes[opts.EventID]
			if !ok {
				return nil, statusErr{code: 502}
			}
			return &models.FetchResult{Quotes: q}, nil
		},
	}
	roster := testutil.NewMemoryRosterStore(players...)
	writer := testutil.NewRecordingWriter()
	logger := zerolog.Nop()

	sched := scheduler.NewScheduler(sports, scheduler.Deps{
		Games:    games,
		Fetcher:  fetcher.New(provider, fetcher.Config{}, logger),
		Resolver: identity.NewResolver(roster, autoCreate, logger),
		Writer:   writer,
	}, concurrency, logger)

	return &harness{provider: provider, roster: roster, writer: writer, sched: sched}
}

func jSmith() models.PlayerIdentity {
	return models.PlayerIdentity{ID: "p-smith", Name: "J. Smith", Team: "NYY", SportKey: baseball_mlb.SportKey}
}

func mlbGame() models.Game {
	return testutil.NewTestGame(42, "evt_mlb_1", baseball_mlb.SportKey, "New York Yankees", "Boston Red Sox", 3)
}

func TestRunOnce_JSmithRecord(t *testing.T) {
	h := newHarness(t,
		[]models.SportConfig{baseball_mlb.DefaultConfig()},
		&fakeGames{games: map[string][]models.Game{baseball_mlb.SportKey: {mlbGame()}}},
		map[string][]models.RawQuote{"evt_mlb_1": testutil.JSmithQuotes()},
		nil, 1, jSmith(),
	)

	stats, err := h.sched.RunOnce(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, stats.RunID)
	assert.Equal(t, 1, stats.Sports)
	assert.Equal(t, 1, stats.Games)
	assert.Equal(t, 5, stats.Quotes)
	assert.Equal(t, 1, stats.Buckets)
	assert.Equal(t, 1, stats.RecordsWritten)
	assert.Zero(t, stats.WriteFailures)

	records := h.writer.Snapshot()
	require.Len(t, records, 1)
	rec, ok := records["42|p-smith|batter_hits|1.5"]
	require.True(t, ok)

	assert.Equal(t, "evt_mlb_1", rec.EventID)
	assert.Equal(t, "J. Smith", rec.PlayerName)
	assert.Equal(t, 1.5, rec.ConsensusLine)
	assert.Equal(t, map[string]float64{"fanduel": 1.5, "draftkings": 2.5}, rec.MainLineByBook)
	assert.Equal(t, map[string]int{"fanduel": -130, "draftkings": -120}, rec.MainOverOddsByBook)
	assert.Equal(t, map[string]int{"fanduel": 110}, rec.MainUnderOddsByBook)
	require.NotNil(t, rec.BestOver)
	assert.Equal(t, models.BestPrice{Price: -120, Book: "draftkings"}, *rec.BestOver)
	require.NotNil(t, rec.BestUnder)
	assert.Equal(t, models.BestPrice{Price: 110, Book: "fanduel"}, *rec.BestUnder)
	assert.Equal(t, 2, rec.BookCount)
	require.Len(t, rec.Ladder, 2)
	assert.Equal(t, 1.5, rec.Ladder[0].Line)
	assert.Equal(t, 2.5, rec.Ladder[1].Line)

	assert.Equal(t, 1, h.provider.CallCount())
	assert.Equal(t, stats, h.sched.LastRun())
	assert.False(t, h.sched.Running())
}

func TestRunOnce_Idempotent(t *testing.T) {
	h := newHarness(t,
		[]models.SportConfig{baseball_mlb.DefaultConfig()},
		&fakeGames{games: map[string][]models.Game{baseball_mlb.SportKey: {mlbGame()}}},
		map[string][]models.RawQuote{"evt_mlb_1": testutil.JSmithQuotes()},
		nil, 1, jSmith(),
	)

	_, err := h.sched.RunOnce(context.Background())
	require.NoError(t, err)
	first := h.writer.Snapshot()

	_, err = h.sched.RunOnce(context.Background())
	require.NoError(t, err)
	second := h.writer.Snapshot()

	require.Len(t, second, len(first))
	for key, rec := range first {
		other, ok := second[key]
		require.True(t, ok, key)
		rec.UpdatedAt = time.Time{}
		other.UpdatedAt = time.Time{}
		assert.Equal(t, rec, other)
	}
	assert.Equal(t, 2, h.writer.Batches)
}

func TestRunOnce_UnknownPlayerDropped(t *testing.T) {
	h := newHarness(t,
		[]models.SportConfig{baseball_mlb.DefaultConfig()},
		&fakeGames{games: map[string][]models.Game{baseball_mlb.SportKey: {mlbGame()}}},
		map[string][]models.RawQuote{"evt_mlb_1": testutil.JSmithQuotes()},
		nil, 1,
	)

	stats, err := h.sched.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Buckets)
	assert.Equal(t, 1, stats.BucketsUnresolved)
	assert.Zero(t, stats.RecordsWritten)
	assert.Empty(t, h.writer.Snapshot())
	assert.Empty(t, h.roster.Players())
}

func TestRunOnce_AutoCreatesForAllowedSport(t *testing.T) {
	h := newHarness(t,
		[]models.SportConfig{baseball_mlb.DefaultConfig()},
		&fakeGames{games: map[string][]models.Game{baseball_mlb.SportKey: {mlbGame()}}},
		map[string][]models.RawQuote{"evt_mlb_1": testutil.JSmithQuotes()},
		[]string{baseball_mlb.SportKey}, 1,
	)

	stats, err := h.sched.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.RecordsWritten)

	players := h.roster.Players()
	require.Len(t, players, 1)
	assert.Equal(t, "J. Smith", players[0].Name)
	assert.Equal(t, "YANKEES", players[0].Team)

	for _, rec := range h.writer.Snapshot() {
		assert.Equal(t, players[0].ID, rec.PlayerID)
	}
}

func TestRunOnce_FetchFailureSkipsGame(t *testing.T) {
	good := mlbGame()
	bad := testutil.NewTestGame(43, "evt_missing", baseball_mlb.SportKey, "Chicago Cubs", "St. Louis Cardinals", 4)

	h := newHarness(t,
		[]models.SportConfig{baseball_mlb.DefaultConfig()},
		&fakeGames{games: map[string][]models.Game{baseball_mlb.SportKey: {bad, good}}},
		map[string][]models.RawQuote{"evt_mlb_1": testutil.JSmithQuotes()},
		nil, 1, jSmith(),
	)

	stats, err := h.sched.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Games)
	assert.Equal(t, 1, stats.GamesSkipped)
	assert.Equal(t, 1, stats.RecordsWritten)
}

func TestRunOnce_GameLoadFailureSkipsSport(t *testing.T) {
	h := newHarness(t,
		[]models.SportConfig{basketball_nba.DefaultConfig(), baseball_mlb.DefaultConfig()},
		&fakeGames{
			games: map[string][]models.Game{baseball_mlb.SportKey: {mlbGame()}},
			err:   map[string]error{basketball_nba.SportKey: errors.New("connection refused")},
		},
		map[string][]models.RawQuote{"evt_mlb_1": testutil.JSmithQuotes()},
		nil, 1, jSmith(),
	)

	stats, err := h.sched.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Sports)
	assert.Equal(t, 1, stats.Games)
	assert.Equal(t, 1, stats.RecordsWritten)
}

func TestRunOnce_WriteFailuresCounted(t *testing.T) {
	h := newHarness(t,
		[]models.SportConfig{baseball_mlb.DefaultConfig()},
		&fakeGames{games: map[string][]models.Game{baseball_mlb.SportKey: {mlbGame()}}},
		map[string][]models.RawQuote{"evt_mlb_1": testutil.JSmithQuotes()},
		nil, 1, jSmith(),
	)
	h.writer.FailOn = func(rec models.ConsensusRecord) error {
		return errors.New("deadlock detected")
	}

	stats, err := h.sched.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Zero(t, stats.RecordsWritten)
	assert.Equal(t, 1, stats.WriteFailures)
}

func TestRunOnce_ConcurrentGames(t *testing.T) {
	var games []models.Game
	quotes := make(map[string][]models.RawQuote)
	for i := 0; i < 8; i++ {
		eventID := fmt.Sprintf("evt_mlb_%d", i+1)
		games = append(games, testutil.NewTestGame(int64(100+i), eventID, baseball_mlb.SportKey, "New York Yankees", "Boston Red Sox", 2))

		q := testutil.JSmithQuotes()
		for j := range q {
			q[j].EventID = eventID
		}
		quotes[eventID] = q
	}

	h := newHarness(t,
		[]models.SportConfig{baseball_mlb.DefaultConfig()},
		&fakeGames{games: map[string][]models.Game{baseball_mlb.SportKey: games}},
		quotes, nil, 4, jSmith(),
	)

	stats, err := h.sched.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 8, stats.Games)
	assert.Equal(t, 8, stats.RecordsWritten)
	assert.Len(t, h.writer.Snapshot(), 8)
	assert.Equal(t, 8, h.provider.CallCount())
}

func TestRunOnce_CancelledContext(t *testing.T) {
	h := newHarness(t,
		[]models.SportConfig{baseball_mlb.DefaultConfig()},
		&fakeGames{games: map[string][]models.Game{baseball_mlb.SportKey: {mlbGame()}}},
		map[string][]models.RawQuote{"evt_mlb_1": testutil.JSmithQuotes()},
		nil, 1, jSmith(),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.sched.RunOnce(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, h.provider.CallCount())
}

type blockingGames struct {
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingGames) UpcomingGames(ctx context.Context, cfg models.SportConfig, now time.Time) ([]models.Game, error) {
	if b.calls.Add(1) == 1 {
		close(b.entered)
		<-b.release
	}
	return nil, nil
}

func TestRunOnce_RejectsOverlappingRun(t *testing.T) {
	games := &blockingGames{entered: make(chan struct{}), release: make(chan struct{})}
	logger := zerolog.Nop()
	sched := scheduler.NewScheduler([]models.SportConfig{baseball_mlb.DefaultConfig()}, scheduler.Deps{
		Games:    games,
		Fetcher:  fetcher.New(&testutil.MockOddsProvider{}, fetcher.Config{}, logger),
		Resolver: identity.NewResolver(testutil.NewMemoryRosterStore(), nil, logger),
		Writer:   testutil.NewRecordingWriter(),
	}, 1, logger)

	done := make(chan error, 1)
	go func() {
		_, err := sched.RunOnce(context.Background())
		done <- err
	}()

	<-games.entered
	assert.True(t, sched.Running())

	_, err := sched.RunOnce(context.Background())
	assert.Error(t, err)

	close(games.release)
	require.NoError(t, <-done)
	assert.False(t, sched.Running())
}
