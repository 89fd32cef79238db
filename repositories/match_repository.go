package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Dosada05/league-system/db"
	"github.com/Dosada05/league-system/models"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchConflict    = errors.New("fixture already exists for this pair of teams")
	ErrMatchTeamInvalid = errors.New("match references an unknown team or tournament")
	ErrMatchConstraint  = errors.New("match violates a table constraint")
)

type ListMatchesFilter struct {
	Matchday *int
	Status   *models.MatchStatus
}

// MatchCounts summarises the fixtures stored for a tournament.
type MatchCounts struct {
	Total     int
	Completed int
}

type MatchRepository interface {
	BatchCreate(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string, status *models.MatchStatus) (int64, error)
	CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (MatchCounts, error)
	ListByTournament(ctx context.Context, tournamentID string, filter ListMatchesFilter) ([]models.Match, error)
	GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error)
	UpdateDetails(ctx context.Context, exec SQLExecutor, id, date, kickoff string, status models.MatchStatus) error
	UpdateResult(ctx context.Context, exec SQLExecutor, id string, homeScore, awayScore int) error
	ListCompletedByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.CompletedMatch, error)
}

type sqlMatchRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewMatchRepository(conn *sql.DB, dialect db.Dialect) MatchRepository {
	return &sqlMatchRepository{db: conn, dialect: dialect}
}

func (r *sqlMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchSelect = `
	SELECT m.id, m.tournament_id, m.home_team_id, m.away_team_id, m.matchday,
	       m.match_date, m.match_time, m.status, m.home_score, m.away_score, m.created_at,
	       COALESCE(h.name, ''), COALESCE(a.name, '')
	FROM matches m
	LEFT JOIN teams h ON h.id = m.home_team_id
	LEFT JOIN teams a ON a.id = m.away_team_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	m := &models.Match{}
	var homeScore, awayScore sql.NullInt64
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.HomeTeamID, &m.AwayTeamID, &m.Matchday,
		&m.Date, &m.Time, &m.Status, &homeScore, &awayScore, scanTime(&m.CreatedAt),
		&m.HomeTeamName, &m.AwayTeamName,
	)
	if err != nil {
		return nil, err
	}
	if homeScore.Valid {
		v := int(homeScore.Int64)
		m.HomeScore = &v
	}
	if awayScore.Valid {
		v := int(awayScore.Int64)
		m.AwayScore = &v
	}
	return m, nil
}

func (r *sqlMatchRepository) BatchCreate(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	executor := r.getExecutor(exec)
	query := r.dialect.Rebind(`
		INSERT INTO matches (id, tournament_id, home_team_id, away_team_id, matchday, match_date, match_time, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	now := time.Now().UTC()
	for i, m := range matches {
		if m.ID == "" {
			m.ID = uuid.NewString()
		}
		if m.Status == "" {
			m.Status = models.MatchStatusPending
		}
		m.CreatedAt = now
		if _, err := executor.ExecContext(ctx, query,
			m.ID, m.TournamentID, m.HomeTeamID, m.AwayTeamID, m.Matchday, m.Date, m.Time, string(m.Status), m.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert fixture %d of %d: %w", i+1, len(matches), r.handleMatchError(err))
		}
	}
	return nil
}

// DeleteByTournament removes the fixtures of a tournament, all of them when
// status is nil.
func (r *sqlMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string, status *models.MatchStatus) (int64, error) {
	query := `DELETE FROM matches WHERE tournament_id = ?`
	args := []interface{}{tournamentID}
	if status != nil {
		query += ` AND status = ?`
		args = append(args, string(*status))
	}

	result, err := r.getExecutor(exec).ExecContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *sqlMatchRepository) CountByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) (MatchCounts, error) {
	query := r.dialect.Rebind(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0)
		FROM matches
		WHERE tournament_id = ?`)

	var counts MatchCounts
	err := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID).Scan(&counts.Total, &counts.Completed)
	return counts, err
}

func (r *sqlMatchRepository) ListByTournament(ctx context.Context, tournamentID string, filter ListMatchesFilter) ([]models.Match, error) {
	query := matchSelect + ` WHERE m.tournament_id = ?`
	args := []interface{}{tournamentID}

	if filter.Matchday != nil {
		query += ` AND m.matchday = ?`
		args = append(args, *filter.Matchday)
	}
	if filter.Status != nil {
		query += ` AND m.status = ?`
		args = append(args, string(*filter.Status))
	}
	query += ` ORDER BY m.matchday, m.match_date, m.match_time, m.created_at, m.id`

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func (r *sqlMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id string) (*models.Match, error) {
	query := r.dialect.Rebind(matchSelect + ` WHERE m.id = ?`)

	m, err := scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *sqlMatchRepository) UpdateDetails(ctx context.Context, exec SQLExecutor, id, date, kickoff string, status models.MatchStatus) error {
	query := r.dialect.Rebind(`UPDATE matches SET match_date = ?, match_time = ?, status = ? WHERE id = ?`)

	result, err := r.getExecutor(exec).ExecContext(ctx, query, date, kickoff, string(status), id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

// UpdateResult stores the score and marks the match completed.
func (r *sqlMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id string, homeScore, awayScore int) error {
	query := r.dialect.Rebind(`UPDATE matches SET home_score = ?, away_score = ?, status = ? WHERE id = ?`)

	result, err := r.getExecutor(exec).ExecContext(ctx, query, homeScore, awayScore, string(models.MatchStatusCompleted), id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *sqlMatchRepository) ListCompletedByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.CompletedMatch, error) {
	query := r.dialect.Rebind(`
		SELECT home_team_id, away_team_id, home_score, away_score
		FROM matches
		WHERE tournament_id = ? AND status = ? AND home_score IS NOT NULL AND away_score IS NOT NULL
		ORDER BY matchday, match_date, match_time, id`)

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID, string(models.MatchStatusCompleted))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	completed := make([]models.CompletedMatch, 0)
	for rows.Next() {
		var c models.CompletedMatch
		if err := rows.Scan(&c.HomeTeamID, &c.AwayTeamID, &c.HomeScore, &c.AwayScore); err != nil {
			return nil, err
		}
		completed = append(completed, c)
	}
	return completed, rows.Err()
}

func (r *sqlMatchRepository) handleMatchError(err error) error {
	switch classifyConstraint(err) {
	case constraintUnique:
		return ErrMatchConflict
	case constraintForeignKey:
		return ErrMatchTeamInvalid
	case constraintCheck:
		return ErrMatchConstraint
	}
	return err
}
