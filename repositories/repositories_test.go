package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/league-system/db"
	"github.com/Dosada05/league-system/models"
)

type fixture struct {
	conn        *sql.DB
	tournaments TournamentRepository
	teams       TeamRepository
	matches     MatchRepository
	results     MatchResultRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := db.Connect("sqlite", ":memory:", 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.Migrate(context.Background(), conn, db.SQLite, slog.New(slog.NewTextHandler(io.Discard, nil))))

	return &fixture{
		conn:        conn,
		tournaments: NewTournamentRepository(conn, db.SQLite),
		teams:       NewTeamRepository(conn, db.SQLite),
		matches:     NewMatchRepository(conn, db.SQLite),
		results:     NewMatchResultRepository(conn, db.SQLite),
	}
}

func (f *fixture) seed(t *testing.T, teamCount int) (*models.Tournament, []models.Team) {
	t.Helper()
	ctx := context.Background()

	tournament := &models.Tournament{LeagueID: "league-1", Name: "Primera"}
	require.NoError(t, f.tournaments.Create(ctx, tournament))

	for i := 0; i < teamCount; i++ {
		team := &models.Team{TournamentID: tournament.ID, Name: fmt.Sprintf("Club %02d", i+1)}
		require.NoError(t, f.teams.Create(ctx, team))
	}
	teams, err := f.teams.ListByTournament(ctx, nil, tournament.ID)
	require.NoError(t, err)
	require.Len(t, teams, teamCount)
	return tournament, teams
}

func TestTournamentRepository_GetAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	desc := "Temporada regular"
	start := "2026-03-07"
	created := &models.Tournament{LeagueID: "league-1", Name: "Apertura", Description: &desc, StartDate: &start}
	require.NoError(t, f.tournaments.Create(ctx, created))
	other := &models.Tournament{LeagueID: "league-2", Name: "Clausura", Status: models.StatusActive}
	require.NoError(t, f.tournaments.Create(ctx, other))

	got, err := f.tournaments.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Apertura", got.Name)
	assert.Equal(t, models.StatusUpcoming, got.Status)
	require.NotNil(t, got.Description)
	assert.Equal(t, desc, *got.Description)
	assert.Nil(t, got.EndDate)
	assert.False(t, got.CreatedAt.IsZero())

	_, err = f.tournaments.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	all, err := f.tournaments.List(ctx, ListTournamentsFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active := models.StatusActive
	filtered, err := f.tournaments.List(ctx, ListTournamentsFilter{Status: &active})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, other.ID, filtered[0].ID)

	league := "league-1"
	byLeague, err := f.tournaments.List(ctx, ListTournamentsFilter{LeagueID: &league, Limit: 10})
	require.NoError(t, err)
	require.Len(t, byLeague, 1)
	assert.Equal(t, created.ID, byLeague[0].ID)

	assert.ErrorIs(t, f.tournaments.Create(ctx, &models.Tournament{ID: created.ID, LeagueID: "x", Name: "dup"}), ErrTournamentConflict)
}

func TestTeamRepository_CreateAndConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tournament, teams := f.seed(t, 3)

	for i, team := range teams {
		assert.Equal(t, fmt.Sprintf("Club %02d", i+1), team.Name, "registration order")
		assert.Equal(t, tournament.ID, team.TournamentID)
	}

	err := f.teams.Create(ctx, &models.Team{TournamentID: tournament.ID, Name: "Club 01"})
	assert.ErrorIs(t, err, ErrTeamNameConflict)

	err = f.teams.Create(ctx, &models.Team{TournamentID: "no-such-tournament", Name: "Orphan"})
	assert.ErrorIs(t, err, ErrTeamTournamentInvalid)
}

func TestMatchRepository_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tournament, teams := f.seed(t, 3)

	fixtures := []*models.Match{
		{TournamentID: tournament.ID, HomeTeamID: teams[1].ID, AwayTeamID: teams[2].ID, Matchday: 2, Date: "2026-03-14", Time: "18:00"},
		{TournamentID: tournament.ID, HomeTeamID: teams[0].ID, AwayTeamID: teams[1].ID, Matchday: 1, Date: "2026-03-07", Time: "18:00"},
		{TournamentID: tournament.ID, HomeTeamID: teams[2].ID, AwayTeamID: teams[0].ID, Matchday: 3, Date: "2026-03-21", Time: "20:00"},
	}
	require.NoError(t, f.matches.BatchCreate(ctx, nil, fixtures))

	counts, err := f.matches.CountByTournament(ctx, nil, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, MatchCounts{Total: 3}, counts)

	listed, err := f.matches.ListByTournament(ctx, tournament.ID, ListMatchesFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{listed[0].Matchday, listed[1].Matchday, listed[2].Matchday})
	assert.Equal(t, "Club 01", listed[0].HomeTeamName)
	assert.Equal(t, "Club 02", listed[0].AwayTeamName)
	assert.Equal(t, models.MatchStatusPending, listed[0].Status)
	assert.Nil(t, listed[0].HomeScore)

	md := 2
	onlyTwo, err := f.matches.ListByTournament(ctx, tournament.ID, ListMatchesFilter{Matchday: &md})
	require.NoError(t, err)
	require.Len(t, onlyTwo, 1)
	assert.Equal(t, fixtures[0].ID, onlyTwo[0].ID)

	require.NoError(t, f.matches.UpdateResult(ctx, nil, fixtures[1].ID, 2, 1))
	played, err := f.matches.GetByID(ctx, nil, fixtures[1].ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, played.Status)
	require.NotNil(t, played.HomeScore)
	require.NotNil(t, played.AwayScore)
	assert.Equal(t, 2, *played.HomeScore)
	assert.Equal(t, 1, *played.AwayScore)

	completed, err := f.matches.ListCompletedByTournament(ctx, nil, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.CompletedMatch{{HomeTeamID: teams[0].ID, AwayTeamID: teams[1].ID, HomeScore: 2, AwayScore: 1}}, completed)

	status := models.MatchStatusCompleted
	done, err := f.matches.ListByTournament(ctx, tournament.ID, ListMatchesFilter{Status: &status})
	require.NoError(t, err)
	assert.Len(t, done, 1)

	require.NoError(t, f.matches.UpdateDetails(ctx, nil, fixtures[2].ID, "2026-03-22", "17:30", models.MatchStatusCancelled))
	moved, err := f.matches.GetByID(ctx, nil, fixtures[2].ID)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-22", moved.Date)
	assert.Equal(t, "17:30", moved.Time)
	assert.Equal(t, models.MatchStatusCancelled, moved.Status)

	counts, err = f.matches.CountByTournament(ctx, nil, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, MatchCounts{Total: 3, Completed: 1}, counts)

	pending := models.MatchStatusPending
	deleted, err := f.matches.DeleteByTournament(ctx, nil, tournament.ID, &pending)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	deleted, err = f.matches.DeleteByTournament(ctx, nil, tournament.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestMatchRepository_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tournament, teams := f.seed(t, 2)

	_, err := f.matches.GetByID(ctx, nil, "missing")
	assert.ErrorIs(t, err, ErrMatchNotFound)
	assert.ErrorIs(t, f.matches.UpdateResult(ctx, nil, "missing", 1, 0), ErrMatchNotFound)
	assert.ErrorIs(t, f.matches.UpdateDetails(ctx, nil, "missing", "2026-03-07", "18:00", models.MatchStatusPending), ErrMatchNotFound)

	err = f.matches.BatchCreate(ctx, nil, []*models.Match{
		{TournamentID: tournament.ID, HomeTeamID: teams[0].ID, AwayTeamID: "ghost", Matchday: 1, Date: "2026-03-07", Time: "18:00"},
	})
	assert.ErrorIs(t, err, ErrMatchTeamInvalid)

	pair := func() []*models.Match {
		return []*models.Match{{TournamentID: tournament.ID, HomeTeamID: teams[0].ID, AwayTeamID: teams[1].ID, Matchday: 1, Date: "2026-03-07", Time: "18:00"}}
	}
	require.NoError(t, f.matches.BatchCreate(ctx, nil, pair()))
	assert.ErrorIs(t, f.matches.BatchCreate(ctx, nil, pair()), ErrMatchConflict)

	same := []*models.Match{{TournamentID: tournament.ID, HomeTeamID: teams[0].ID, AwayTeamID: teams[0].ID, Matchday: 1, Date: "2026-03-07", Time: "18:00"}}
	assert.ErrorIs(t, f.matches.BatchCreate(ctx, nil, same), ErrMatchConstraint)
}

func TestMatchRepository_BatchCreateRollsBackInTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tournament, teams := f.seed(t, 2)

	tx, err := f.conn.BeginTx(ctx, nil)
	require.NoError(t, err)
	err = f.matches.BatchCreate(ctx, tx, []*models.Match{
		{TournamentID: tournament.ID, HomeTeamID: teams[0].ID, AwayTeamID: teams[1].ID, Matchday: 1, Date: "2026-03-07", Time: "18:00"},
		{TournamentID: tournament.ID, HomeTeamID: teams[0].ID, AwayTeamID: teams[1].ID, Matchday: 2, Date: "2026-03-14", Time: "18:00"},
	})
	require.Error(t, err)
	require.NoError(t, tx.Rollback())

	counts, err := f.matches.CountByTournament(ctx, nil, tournament.ID)
	require.NoError(t, err)
	assert.Zero(t, counts.Total)
}

func TestMatchResultRepository_History(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tournament, teams := f.seed(t, 2)

	match := &models.Match{TournamentID: tournament.ID, HomeTeamID: teams[0].ID, AwayTeamID: teams[1].ID, Matchday: 1, Date: "2026-03-07", Time: "18:00"}
	require.NoError(t, f.matches.BatchCreate(ctx, nil, []*models.Match{match}))

	note := "score corrected after review"
	first := &models.MatchResult{MatchID: match.ID, HomeScore: 1, AwayScore: 0, RecordedBy: "user-1"}
	require.NoError(t, f.results.Create(ctx, nil, first))
	time.Sleep(2 * time.Millisecond)
	second := &models.MatchResult{MatchID: match.ID, HomeScore: 1, AwayScore: 1, RecordedBy: "user-2", Notes: &note}
	require.NoError(t, f.results.Create(ctx, nil, second))

	history, err := f.results.ListByMatch(ctx, match.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	require.NotNil(t, history[0].Notes)
	assert.Equal(t, note, *history[0].Notes)
	assert.Equal(t, first.ID, history[1].ID)
	assert.Nil(t, history[1].Notes)

	err = f.results.Create(ctx, nil, &models.MatchResult{MatchID: "ghost", RecordedBy: "user-1"})
	assert.ErrorIs(t, err, ErrMatchResultMatchInvalid)
}

func TestTimeScanner(t *testing.T) {
	var got time.Time
	want := time.Date(2026, 3, 7, 18, 0, 0, 0, time.UTC)

	require.NoError(t, scanTime(&got).Scan(want))
	assert.True(t, want.Equal(got))

	require.NoError(t, scanTime(&got).Scan("2026-03-07 18:00:00"))
	assert.True(t, want.Equal(got))

	require.NoError(t, scanTime(&got).Scan([]byte("2026-03-07T18:00:00Z")))
	assert.True(t, want.Equal(got))

	assert.Error(t, scanTime(&got).Scan("yesterday"))
	assert.Error(t, scanTime(&got).Scan(42))
}
