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

var ErrMatchResultMatchInvalid = errors.New("result references an unknown match")

type MatchResultRepository interface {
	Create(ctx context.Context, exec SQLExecutor, result *models.MatchResult) error
	ListByMatch(ctx context.Context, matchID string) ([]models.MatchResult, error)
}

type sqlMatchResultRepository struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewMatchResultRepository(conn *sql.DB, dialect db.Dialect) MatchResultRepository {
	return &sqlMatchResultRepository{db: conn, dialect: dialect}
}

func (r *sqlMatchResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *sqlMatchResultRepository) Create(ctx context.Context, exec SQLExecutor, res *models.MatchResult) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	res.CreatedAt = time.Now().UTC()

	query := r.dialect.Rebind(`
		INSERT INTO match_results (id, match_id, home_score, away_score, recorded_by, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.getExecutor(exec).ExecContext(ctx, query,
		res.ID, res.MatchID, res.HomeScore, res.AwayScore, res.RecordedBy, res.Notes, res.CreatedAt)
	if classifyConstraint(err) == constraintForeignKey {
		return ErrMatchResultMatchInvalid
	}
	return err
}

// ListByMatch returns the result history of a match, newest first.
func (r *sqlMatchResultRepository) ListByMatch(ctx context.Context, matchID string) ([]models.MatchResult, error) {
	query := r.dialect.Rebind(`
		SELECT id, match_id, home_score, away_score, recorded_by, notes, created_at
		FROM match_results
		WHERE match_id = ?
		ORDER BY created_at DESC, id DESC`)

	rows, err := r.db.QueryContext(ctx, query, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]models.MatchResult, 0)
	for rows.Next() {
		var res models.MatchResult
		if err := rows.Scan(
			&res.ID, &res.MatchID, &res.HomeScore, &res.AwayScore, &res.RecordedBy, &res.Notes, scanTime(&res.CreatedAt),
		); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
