package models

import "time"

// TournamentStatus mirrors the status column of the tournaments table.
type TournamentStatus string

const (
	StatusUpcoming  TournamentStatus = "upcoming"
	StatusActive    TournamentStatus = "active"
	StatusCompleted TournamentStatus = "completed"
)

// Tournament is one competition inside a league. Leagues themselves are
// managed outside this service; only the id is kept for reference.
type Tournament struct {
	ID          string           `json:"id" db:"id"`
	LeagueID    string           `json:"league_id" db:"league_id"`
	Name        string           `json:"name" db:"name"`
	Description *string          `json:"description,omitempty" db:"description"`
	StartDate   *string          `json:"start_date,omitempty" db:"start_date"`
	EndDate     *string          `json:"end_date,omitempty" db:"end_date"`
	Status      TournamentStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`

	Teams []Team `json:"teams,omitempty" db:"-"`
}
