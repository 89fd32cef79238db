package models

import "time"

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCancelled MatchStatus = "cancelled"
)

func (s MatchStatus) Valid() bool {
	switch s {
	case MatchStatusPending, MatchStatusCompleted, MatchStatusCancelled:
		return true
	}
	return false
}

// Match is a persisted fixture. Date is stored as YYYY-MM-DD and Time as
// HH:MM so both SQL dialects keep them verbatim.
type Match struct {
	ID           string      `json:"id" db:"id"`
	TournamentID string      `json:"tournament_id" db:"tournament_id"`
	HomeTeamID   string      `json:"home_team_id" db:"home_team_id"`
	AwayTeamID   string      `json:"away_team_id" db:"away_team_id"`
	Matchday     int         `json:"matchday" db:"matchday"`
	Date         string      `json:"date" db:"match_date"`
	Time         string      `json:"time" db:"match_time"`
	Status       MatchStatus `json:"status" db:"status"`
	HomeScore    *int        `json:"home_score,omitempty" db:"home_score"`
	AwayScore    *int        `json:"away_score,omitempty" db:"away_score"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`

	HomeTeamName string `json:"home_team_name,omitempty" db:"-"`
	AwayTeamName string `json:"away_team_name,omitempty" db:"-"`
}

// MatchResult is one entry of the result history of a match. Every call
// to record a score appends a row, the match itself keeps the latest one.
type MatchResult struct {
	ID         string    `json:"id" db:"id"`
	MatchID    string    `json:"match_id" db:"match_id"`
	HomeScore  int       `json:"home_score" db:"home_score"`
	AwayScore  int       `json:"away_score" db:"away_score"`
	RecordedBy string    `json:"recorded_by" db:"recorded_by"`
	Notes      *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// CompletedMatch is the input of the standings aggregator.
type CompletedMatch struct {
	HomeTeamID string `json:"home_team_id"`
	AwayTeamID string `json:"away_team_id"`
	HomeScore  int    `json:"home_score"`
	AwayScore  int    `json:"away_score"`
}
