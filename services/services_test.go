package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/league-system/brackets"
	"github.com/Dosada05/league-system/db"
	"github.com/Dosada05/league-system/models"
	"github.com/Dosada05/league-system/repositories"
	"github.com/Dosada05/league-system/standings"
	"github.com/Dosada05/league-system/storage"
)

type event struct {
	TournamentID string
	Type         string
	Payload      interface{}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []event
}

func (n *recordingNotifier) NotifyTournament(tournamentID, eventType string, payload interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event{tournamentID, eventType, payload})
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, e := range n.events {
		out[i] = e.Type
	}
	return out
}

type memoryCache struct {
	mu          sync.Mutex
	entries     map[string]*models.TournamentStats
	hits        int
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*models.TournamentStats)}
}

func (c *memoryCache) Get(_ context.Context, id string) (*models.TournamentStats, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats, ok := c.entries[id]
	if ok {
		c.hits++
	}
	return stats, ok, nil
}

func (c *memoryCache) Set(_ context.Context, stats *models.TournamentStats) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[stats.TournamentID] = stats
	return nil
}

func (c *memoryCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

type memoryUploader struct {
	objects map[string][]byte
	fail    error
}

func (u *memoryUploader) Upload(_ context.Context, key, _ string, reader io.Reader) (*storage.UploadResult, error) {
	if u.fail != nil {
		return nil, u.fail
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	u.objects[key] = data
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *memoryUploader) Delete(_ context.Context, key string) error {
	delete(u.objects, key)
	return nil
}

func (u *memoryUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

type env struct {
	conn        *sql.DB
	tournaments repositories.TournamentRepository
	teams       repositories.TeamRepository
	matches     repositories.MatchRepository
	results     repositories.MatchResultRepository
	cache       *memoryCache
	uploader    *memoryUploader
	notifier    *recordingNotifier

	schedule   ScheduleService
	match      MatchService
	standings  StandingsService
	tournament TournamentService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	conn, err := db.Connect("sqlite", ":memory:", 5*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, db.Migrate(context.Background(), conn, db.SQLite, logger))

	e := &env{
		conn:        conn,
		tournaments: repositories.NewTournamentRepository(conn, db.SQLite),
		teams:       repositories.NewTeamRepository(conn, db.SQLite),
		matches:     repositories.NewMatchRepository(conn, db.SQLite),
		results:     repositories.NewMatchResultRepository(conn, db.SQLite),
		cache:       newMemoryCache(),
		uploader:    &memoryUploader{objects: make(map[string][]byte)},
		notifier:    &recordingNotifier{},
	}
	e.standings = NewStandingsService(e.tournaments, e.teams, e.matches, e.cache, e.uploader, logger)
	e.schedule = NewScheduleService(conn, e.tournaments, e.teams, e.matches, brackets.NewRoundRobinGenerator(),
		e.cache, e.notifier, ScheduleDefaults{Kickoff: "18:00", RoundIntervalDays: 7}, logger)
	e.match = NewMatchService(conn, e.tournaments, e.matches, e.results, e.standings, e.cache, e.notifier, logger)
	e.tournament = NewTournamentService(e.tournaments, e.teams, e.uploader, logger)
	return e
}

func (e *env) seed(t *testing.T, teamCount int) (*models.Tournament, []models.Team) {
	t.Helper()
	ctx := context.Background()
	start := "2026-03-07"
	tournament := &models.Tournament{LeagueID: "league-1", Name: "Liga Amateur", StartDate: &start}
	require.NoError(t, e.tournaments.Create(ctx, tournament))
	for i := 0; i < teamCount; i++ {
		require.NoError(t, e.teams.Create(ctx, &models.Team{TournamentID: tournament.ID, Name: fmt.Sprintf("Club %02d", i+1)}))
	}
	teams, err := e.teams.ListByTournament(ctx, nil, tournament.ID)
	require.NoError(t, err)
	return tournament, teams
}

func TestScheduleService_GeneratePersistsFixtures(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tournament, teams := e.seed(t, 4)

	result, err := e.schedule.GenerateSchedule(ctx, tournament.ID, GenerateScheduleInput{DefaultTime: "19:30"})
	require.NoError(t, err)

	assert.Equal(t, "RoundRobin", result.Generator)
	assert.Equal(t, 6, result.Matchdays)
	assert.Len(t, result.Matches, 12)
	assert.Empty(t, result.Byes)
	assert.Equal(t, teams[0].ID, result.Matches[0].HomeTeamID)
	assert.Equal(t, teams[3].ID, result.Matches[0].AwayTeamID)
	assert.Equal(t, "Club 01", result.Matches[0].HomeTeamName)
	assert.Equal(t, "2026-03-07", result.Matches[0].Date)
	assert.Equal(t, "19:30", result.Matches[0].Time)
	assert.Equal(t, "2026-04-11", result.Matches[11].Date)

	stored, err := e.match.ListByTournament(ctx, tournament.ID, repositories.ListMatchesFilter{})
	require.NoError(t, err)
	require.Len(t, stored, 12)
	for _, m := range stored {
		assert.Equal(t, models.MatchStatusPending, m.Status)
	}

	assert.Equal(t, []string{brackets.EventScheduleGenerated}, e.notifier.types())
	assert.Contains(t, e.cache.invalidated, tournament.ID)
}

func TestScheduleService_OddRosterAndDefaults(t *testing.T) {
	e := newEnv(t)
	tournament, _ := e.seed(t, 3)

	result, err := e.schedule.GenerateSchedule(context.Background(), tournament.ID, GenerateScheduleInput{StartDate: "2026-05-02"})
	require.NoError(t, err)

	require.Len(t, result.Matches, 6)
	assert.Len(t, result.Byes, 6)
	assert.Equal(t, 6, result.Matchdays)
	assert.Equal(t, "18:00", result.Matches[0].Time, "configured default kickoff")
	assert.Equal(t, "2026-05-02", result.Matches[1].Date)
	assert.Equal(t, "2026-05-09", result.Matches[2].Date)
}

func TestScheduleService_ExistingScheduleRules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tournament, _ := e.seed(t, 4)

	first, err := e.schedule.GenerateSchedule(ctx, tournament.ID, GenerateScheduleInput{})
	require.NoError(t, err)

	_, err = e.schedule.GenerateSchedule(ctx, tournament.ID, GenerateScheduleInput{})
	require.ErrorIs(t, err, ErrScheduleExists)

	second, err := e.schedule.GenerateSchedule(ctx, tournament.ID, GenerateScheduleInput{StartDate: "2026-09-05", Replace: true})
	require.NoError(t, err)
	assert.NotEqual(t, first.Matches[0].ID, second.Matches[0].ID)

	counts, err := e.matches.CountByTournament(ctx, nil, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, counts.Total)

	_, err = e.match.RecordResult(ctx, second.Matches[0].ID, RecordResultInput{HomeScore: 1, AwayScore: 0}, "user-1")
	require.NoError(t, err)

	_, err = e.schedule.GenerateSchedule(ctx, tournament.ID, GenerateScheduleInput{Replace: true})
	require.ErrorIs(t, err, ErrScheduleLocked)

	counts, err = e.matches.CountByTournament(ctx, nil, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, repositories.MatchCounts{Total: 12, Completed: 1}, counts, "locked schedule left untouched")
}

func TestScheduleService_Errors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	lonely, _ := e.seed(t, 1)
	full, _ := e.seed(t, 4)
	noStart := &models.Tournament{LeagueID: "league-1", Name: "Sin fecha"}
	require.NoError(t, e.tournaments.Create(ctx, noStart))

	tests := []struct {
		name         string
		tournamentID string
		input        GenerateScheduleInput
		wantErr      error
	}{
		{"unknown tournament", "missing", GenerateScheduleInput{}, ErrTournamentNotFound},
		{"single team", lonely.ID, GenerateScheduleInput{}, brackets.ErrInsufficientTeams},
		{"bad kickoff", full.ID, GenerateScheduleInput{DefaultTime: "7pm"}, brackets.ErrInvalidKickoffTime},
		{"bad start date", full.ID, GenerateScheduleInput{StartDate: "07/03/2026"}, brackets.ErrInvalidStartDate},
		{"no start date anywhere", noStart.ID, GenerateScheduleInput{}, brackets.ErrInvalidStartDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.schedule.GenerateSchedule(ctx, tt.tournamentID, tt.input)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	counts, err := e.matches.CountByTournament(ctx, nil, full.ID)
	require.NoError(t, err)
	assert.Zero(t, counts.Total)
	assert.Empty(t, e.notifier.types())
}

func TestMatchService_RecordResultUpdatesStandings(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tournament, teams := e.seed(t, 4)
	schedule, err := e.schedule.GenerateSchedule(ctx, tournament.ID, GenerateScheduleInput{})
	require.NoError(t, err)

	before, err := e.standings.GetStandings(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Zero(t, before.Teams[0].Points)

	first := schedule.Matches[0] // Club 01 - Club 04
	note := "played behind closed doors"
	updated, err := e.match.RecordResult(ctx, first.ID, RecordResultInput{HomeScore: 3, AwayScore: 1, Notes: &note}, "user-7")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusCompleted, updated.Status)
	require.NotNil(t, updated.HomeScore)
	assert.Equal(t, 3, *updated.HomeScore)

	after, err := e.standings.GetStandings(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, teams[0].ID, after.Teams[0].TeamID)
	assert.Equal(t, 3, after.Teams[0].Points)
	assert.Equal(t, 2, after.Teams[0].GoalDifference)
	assert.Equal(t, teams[3].ID, after.Teams[3].TeamID)
	assert.Equal(t, 1, after.Teams[3].Losses)

	types := e.notifier.types()
	assert.Equal(t, []string{brackets.EventScheduleGenerated, brackets.EventMatchUpdated, brackets.EventStandingsUpdated}, types)

	// Correction keeps the history.
	_, err = e.match.RecordResult(ctx, first.ID, RecordResultInput{HomeScore: 1, AwayScore: 1}, "user-8")
	require.NoError(t, err)
	history, err := e.match.ListResults(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "user-8", history[0].RecordedBy)
	assert.Equal(t, "user-7", history[1].RecordedBy)

	corrected, err := e.standings.GetStandings(ctx, tournament.ID)
	require.NoError(t, err)
	for _, row := range corrected.Teams {
		if row.TeamID == teams[0].ID {
			assert.Equal(t, 1, row.Points)
			assert.Equal(t, 1, row.Draws)
		}
	}
}

func TestMatchService_RecordResultErrors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tournament, _ := e.seed(t, 2)
	schedule, err := e.schedule.GenerateSchedule(ctx, tournament.ID, GenerateScheduleInput{})
	require.NoError(t, err)
	matchID := schedule.Matches[0].ID

	_, err = e.match.RecordResult(ctx, matchID, RecordResultInput{HomeScore: -1}, "user-1")
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = e.match.RecordResult(ctx, "missing", RecordResultInput{}, "user-1")
	assert.ErrorIs(t, err, ErrMatchNotFound)

	cancelled := models.MatchStatusCancelled
	_, err = e.match.UpdateDetails(ctx, matchID, UpdateMatchInput{Status: &cancelled})
	require.NoError(t, err)
	_, err = e.match.RecordResult(ctx, matchID, RecordResultInput{HomeScore: 1}, "user-1")
	assert.ErrorIs(t, err, ErrMatchCancelled)

	history, err := e.match.ListResults(ctx, matchID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestMatchService_UpdateDetails(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tournament, _ := e.seed(t, 2)
	schedule, err := e.schedule.GenerateSchedule(ctx, tournament.ID, GenerateScheduleInput{})
	require.NoError(t, err)
	matchID := schedule.Matches[1].ID

	date, kickoff := "2026-03-15", "9:00"
	updated, err := e.match.UpdateDetails(ctx, matchID, UpdateMatchInput{Date: &date, Time: &kickoff})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", updated.Date)
	assert.Equal(t, "09:00", updated.Time)

	stored, err := e.match.GetByID(ctx, matchID)
	require.NoError(t, err)
	assert.Equal(t, "09:00", stored.Time)

	bad := "15-03-2026"
	_, err = e.match.UpdateDetails(ctx, matchID, UpdateMatchInput{Date: &bad})
	assert.ErrorIs(t, err, ErrInvalidMatchDate)

	completed := models.MatchStatusCompleted
	_, err = e.match.UpdateDetails(ctx, matchID, UpdateMatchInput{Status: &completed})
	assert.ErrorIs(t, err, ErrInvalidMatchStatus)

	_, err = e.match.RecordResult(ctx, matchID, RecordResultInput{HomeScore: 2, AwayScore: 2}, "user-1")
	require.NoError(t, err)
	_, err = e.match.UpdateDetails(ctx, matchID, UpdateMatchInput{Date: &date})
	assert.ErrorIs(t, err, ErrMatchAlreadyCompleted)

	_, err = e.match.UpdateDetails(ctx, "missing", UpdateMatchInput{})
	assert.ErrorIs(t, err, ErrMatchNotFound)
}

func TestMatchService_ListFilters(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tournament, _ := e.seed(t, 4)
	_, err := e.schedule.GenerateSchedule(ctx, tournament.ID, GenerateScheduleInput{})
	require.NoError(t, err)

	md := 3
	third, err := e.match.ListByTournament(ctx, tournament.ID, repositories.ListMatchesFilter{Matchday: &md})
	require.NoError(t, err)
	assert.Len(t, third, 2)

	zero := 0
	_, err = e.match.ListByTournament(ctx, tournament.ID, repositories.ListMatchesFilter{Matchday: &zero})
	assert.ErrorIs(t, err, ErrValidationFailed)

	weird := models.MatchStatus("postponed")
	_, err = e.match.ListByTournament(ctx, tournament.ID, repositories.ListMatchesFilter{Status: &weird})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = e.match.ListByTournament(ctx, "missing", repositories.ListMatchesFilter{})
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestStandingsService_CacheAndIntegrity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tournament, teams := e.seed(t, 2)

	_, err := e.standings.GetStandings(ctx, tournament.ID)
	require.NoError(t, err)
	_, err = e.standings.GetStandings(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, e.cache.hits)

	_, err = e.standings.GetStandings(ctx, "missing")
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	// A completed match against a team from another tournament.
	other, otherTeams := e.seed(t, 1)
	require.NotEqual(t, tournament.ID, other.ID)
	stray := &models.Match{TournamentID: tournament.ID, HomeTeamID: teams[0].ID, AwayTeamID: otherTeams[0].ID, Matchday: 1, Date: "2026-03-07", Time: "18:00"}
	require.NoError(t, e.matches.BatchCreate(ctx, nil, []*models.Match{stray}))
	require.NoError(t, e.matches.UpdateResult(ctx, nil, stray.ID, 1, 0))
	require.NoError(t, e.cache.Invalidate(ctx, tournament.ID))

	_, err = e.standings.GetStandings(ctx, tournament.ID)
	assert.ErrorIs(t, err, standings.ErrUnknownTeam)
}

func TestStandingsService_AllStatisticsAndExport(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	first, _ := e.seed(t, 2)
	second, _ := e.seed(t, 3)

	all, err := e.standings.GetAllStatistics(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	ids := map[string]int{}
	for _, stats := range all {
		ids[stats.TournamentID] = len(stats.Teams)
	}
	assert.Equal(t, map[string]int{first.ID: 2, second.ID: 3}, ids)

	exported, err := e.standings.ExportStandings(ctx, second.ID)
	require.NoError(t, err)
	assert.Contains(t, exported.Key, "standings/"+second.ID+"/")
	assert.Equal(t, "https://cdn.example.com/"+exported.Key, exported.URL)
	assert.Contains(t, string(e.uploader.objects[exported.Key]), `"exported_at"`)

	e.uploader.fail = errors.New("bucket unavailable")
	_, err = e.standings.ExportStandings(ctx, second.ID)
	assert.Error(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	disabled := NewStandingsService(e.tournaments, e.teams, e.matches, nil, nil, logger)
	_, err = disabled.ExportStandings(ctx, second.ID)
	assert.ErrorIs(t, err, ErrExportDisabled)
}

func TestTournamentService(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	tournament, _ := e.seed(t, 2)

	logo := "logos/club-03.png"
	require.NoError(t, e.teams.Create(ctx, &models.Team{TournamentID: tournament.ID, Name: "Club 03", LogoKey: &logo}))

	got, err := e.tournament.GetByID(ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, got.Teams, 3)
	require.NotNil(t, got.Teams[2].LogoURL)
	assert.Equal(t, "https://cdn.example.com/logos/club-03.png", *got.Teams[2].LogoURL)
	assert.Nil(t, got.Teams[0].LogoURL)

	_, err = e.tournament.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	teams, err := e.tournament.ListTeams(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, teams, 3)

	_, err = e.tournament.ListTeams(ctx, "missing")
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	list, err := e.tournament.List(ctx, repositories.ListTournamentsFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	bogus := models.TournamentStatus("archived")
	_, err = e.tournament.List(ctx, repositories.ListTournamentsFilter{Status: &bogus})
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, IsValidationError(fmt.Errorf("wrap: %w", brackets.ErrInsufficientTeams)))
	assert.True(t, IsValidationError(ErrInvalidScore))
	assert.False(t, IsValidationError(ErrScheduleExists))
	assert.False(t, IsValidationError(nil))
}
