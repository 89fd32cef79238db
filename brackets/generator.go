package brackets

import (
	"context"
	"errors"
	"time"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrInsufficientTeams  = errors.New("not enough teams to generate a schedule (minimum 2)")
	ErrDuplicateTeam      = errors.New("team appears more than once in the roster")
	ErrInvalidTeam        = errors.New("team id must not be empty")
	ErrInvalidKickoffTime = errors.New("kickoff time must be in HH:MM format")
	ErrInvalidStartDate   = errors.New("schedule start date is required")
)

const (
	// DateLayout is the wire and storage format of fixture dates.
	DateLayout = "2006-01-02"
	// KickoffLayout is the wire and storage format of kickoff times.
	KickoffLayout = "15:04"

	DefaultRoundIntervalDays = 7
)

type GenerateScheduleParams struct {
	Teams       []models.Team
	StartDate   time.Time
	KickoffTime string

	// RoundIntervalDays is the gap between two date blocks, 7 when zero.
	RoundIntervalDays int
	// DateByMatchday dates every fixture by its matchday instead of by its
	// position in the emitted list.
	DateByMatchday bool
}

// Fixture is a generated pairing with its calendar slot.
type Fixture struct {
	HomeTeamID string    `json:"home_team_id"`
	AwayTeamID string    `json:"away_team_id"`
	Matchday   int       `json:"matchday"`
	Date       time.Time `json:"date"`
	Time       string    `json:"time"`
}

func (f Fixture) DateString() string {
	return f.Date.Format(DateLayout)
}

type ScheduleGenerator interface {
	Generate(ctx context.Context, params GenerateScheduleParams) ([]Fixture, error)

	GetName() string
}
