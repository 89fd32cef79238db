package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Dosada05/league-system/db"
	"github.com/Dosada05/league-system/models"
)

var (
	ErrTeamNameConflict      = errors.New("team name already taken in this tournament")
	ErrTeamTournamentInvalid = errors.New("team references an unknown tournament")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Team, error)
}

type sqlTeamRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewTeamRepository(conn *sql.DB, dialect db.Dialect) TeamRepository {
	return &sqlTeamRepository{db: conn, dialect: dialect}
}

func (r *sqlTeamRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlTeamRepository) Create(ctx context.Context, team *models.Team) error {
	if team.ID == "" {
		team.ID = uuid.NewString()
	}
	team.CreatedAt = time.Now().UTC()

	query := r.dialect.Rebind(`
		INSERT INTO teams (id, tournament_id, name, logo_key, created_at)
		VALUES (?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query, team.ID, team.TournamentID, team.Name, team.LogoKey, team.CreatedAt)
	switch classifyConstraint(err) {
	case constraintUnique:
		return ErrTeamNameConflict
	case constraintForeignKey:
		return ErrTeamTournamentInvalid
	}
	return err
}

// ListByTournament returns the roster in registration order. The order
// feeds the schedule generator, so it must be stable.
func (r *sqlTeamRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Team, error) {
	query := r.dialect.Rebind(`
		SELECT id, tournament_id, name, logo_key, created_at
		FROM teams
		WHERE tournament_id = ?
		ORDER BY created_at, name, id`)

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.TournamentID, &t.Name, &t.LogoKey, scanTime(&t.CreatedAt)); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}
