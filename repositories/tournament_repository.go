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
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTournamentConflict = errors.New("tournament already exists")
)

type ListTournamentsFilter struct {
	LeagueID *string
	Status   *models.TournamentStatus
	Limit    int
	Offset   int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id string) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
}

type sqlTournamentRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewTournamentRepository(conn *sql.DB, dialect db.Dialect) TournamentRepository {
	return &sqlTournamentRepository{db: conn, dialect: dialect}
}

const tournamentColumns = `id, league_id, name, description, start_date, end_date, status, created_at`

func (r *sqlTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = models.StatusUpcoming
	}
	t.CreatedAt = time.Now().UTC()

	query := r.dialect.Rebind(`
		INSERT INTO tournaments (` + tournamentColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.LeagueID, t.Name, t.Description, t.StartDate, t.EndDate, string(t.Status), t.CreatedAt)
	if classifyConstraint(err) == constraintUnique {
		return ErrTournamentConflict
	}
	return err
}

func (r *sqlTournamentRepository) GetByID(ctx context.Context, id string) (*models.Tournament, error) {
	query := r.dialect.Rebind(`SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = ?`)

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.LeagueID, &t.Name, &t.Description, &t.StartDate, &t.EndDate, &t.Status, scanTime(&t.CreatedAt),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *sqlTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`
	args := []interface{}{}

	if filter.LeagueID != nil {
		query += " AND league_id = ?"
		args = append(args, *filter.LeagueID)
	}
	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, string(*filter.Status))
	}

	query += " ORDER BY start_date DESC, created_at DESC, id"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, r.dialect.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID, &t.LeagueID, &t.Name, &t.Description, &t.StartDate, &t.EndDate, &t.Status, scanTime(&t.CreatedAt),
		); scanErr != nil {
			return nil, scanErr
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}
