package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/XavierBriggs/Pythia/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGameStore_UpcomingGames(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	cfg := models.SportConfig{SportKey: "basketball_nba", LookaheadHours: 36}
	start := now.Add(3 * time.Hour)

	rows := sqlmock.NewRows([]string{"id", "external_id", "sport_key", "home_team", "away_team", "start_time"}).
		AddRow(7, "evt_1", "basketball_nba", "Los Angeles Lakers", "Boston Celtics", start).
		AddRow(8, "evt_2", "basketball_nba", "Miami Heat", "Chicago Bulls", start.Add(time.Hour))

	mock.ExpectQuery(`SELECT id, external_id, sport_key, home_team, away_team, start_time\s+FROM games`).
		WithArgs("basketball_nba", now, now.Add(36*time.Hour)).
		WillReturnRows(rows)

	games, err := NewGameStore(db).UpcomingGames(context.Background(), cfg, now)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, int64(7), games[0].ID)
	assert.Equal(t, "evt_1", games[0].ExternalID)
	assert.Equal(t, "Los Angeles Lakers", games[0].HomeTeam)
	assert.Equal(t, start, games[0].StartTime)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGameStore_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM games`).WillReturnError(errors.New("db down"))

	_, err = NewGameStore(db).UpcomingGames(context.Background(), models.SportConfig{SportKey: "x"}, time.Now())
	assert.ErrorContains(t, err, "query games")
}

func TestRosterStore_PlayersBySport(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name", "team", "sport_key"}).
		AddRow("p1", "Aaron Judge", "NYY", "baseball_mlb").
		AddRow("p2", "Juan Soto", "", "baseball_mlb")

	mock.ExpectQuery(`FROM players\s+WHERE sport_key = \$1\s+ORDER BY created_at, id`).
		WithArgs("baseball_mlb").
		WillReturnRows(rows)

	players, err := NewRosterStore(db).PlayersBySport(context.Background(), "baseball_mlb")
	require.NoError(t, err)
	assert.Equal(t, []models.PlayerIdentity{
		{ID: "p1", Name: "Aaron Judge", Team: "NYY", SportKey: "baseball_mlb"},
		{ID: "p2", Name: "Juan Soto", Team: "", SportKey: "baseball_mlb"},
	}, players)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterStore_CreatePlayer(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := models.PlayerIdentity{ID: "new-id", Name: "Rookie", Team: "YANKEES", SportKey: "baseball_mlb"}

	mock.ExpectQuery(`INSERT INTO players .* ON CONFLICT \(sport_key, name\) DO NOTHING`).
		WithArgs(p.ID, p.Name, p.Team, p.SportKey).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "team", "sport_key"}).
			AddRow(p.ID, p.Name, p.Team, p.SportKey))

	created, err := NewRosterStore(db).CreatePlayer(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterStore_CreatePlayerConflictReturnsExisting(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	p := models.PlayerIdentity{ID: "loser-id", Name: "Rookie", Team: "YANKEES", SportKey: "baseball_mlb"}

	mock.ExpectQuery(`INSERT INTO players`).
		WithArgs(p.ID, p.Name, p.Team, p.SportKey).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "team", "sport_key"}))
	mock.ExpectQuery(`SELECT id, name, COALESCE\(team, ''\), sport_key\s+FROM players\s+WHERE sport_key = \$1 AND name = \$2`).
		WithArgs(p.SportKey, p.Name).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "team", "sport_key"}).
			AddRow("winner-id", "Rookie", "YANKEES", "baseball_mlb"))

	created, err := NewRosterStore(db).CreatePlayer(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "winner-id", created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
