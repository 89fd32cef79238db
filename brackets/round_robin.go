package brackets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/league-system/models"
)

// byeSlot marks the placeholder added to odd rosters. Team ids are never
// empty, so it cannot collide with a real team.
const byeSlot = ""

// Pairing is a directed home/away meeting assigned to a matchday.
type Pairing struct {
	HomeTeamID string `json:"home_team_id"`
	AwayTeamID string `json:"away_team_id"`
	Matchday   int    `json:"matchday"`
}

// Bye records a team resting on a matchday.
type Bye struct {
	TeamID   string `json:"team_id"`
	Matchday int    `json:"matchday"`
}

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() ScheduleGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// Generate builds a double round-robin (home and away) with the circle
// method and assigns every fixture a date and the shared kickoff time.
func (g *RoundRobinGenerator) Generate(ctx context.Context, params GenerateScheduleParams) ([]Fixture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if params.StartDate.IsZero() {
		return nil, ErrInvalidStartDate
	}
	kickoff, err := ParseKickoff(params.KickoffTime)
	if err != nil {
		return nil, err
	}

	pairings, _, err := circle(params.Teams)
	if err != nil {
		return nil, err
	}

	interval := params.RoundIntervalDays
	if interval <= 0 {
		interval = DefaultRoundIntervalDays
	}
	perRound := matchesPerRound(len(params.Teams))
	y, m, d := params.StartDate.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	fixtures := make([]Fixture, len(pairings))
	for i, p := range pairings {
		block := i / perRound
		if params.DateByMatchday {
			block = p.Matchday - 1
		}
		fixtures[i] = Fixture{
			HomeTeamID: p.HomeTeamID,
			AwayTeamID: p.AwayTeamID,
			Matchday:   p.Matchday,
			Date:       start.AddDate(0, 0, block*interval),
			Time:       kickoff,
		}
	}
	return fixtures, nil
}

// GenerateSchedule is the plain function form of the round-robin generator
// with the default weekly spacing.
func GenerateSchedule(teams []models.Team, startDate time.Time, kickoff string) ([]Fixture, error) {
	return NewRoundRobinGenerator().Generate(context.Background(), GenerateScheduleParams{
		Teams:       teams,
		StartDate:   startDate,
		KickoffTime: kickoff,
	})
}

// Pairings returns the fixtures of the double round-robin in emission order
// (matchday ascending, then pairing position).
func Pairings(teams []models.Team) ([]Pairing, error) {
	pairings, _, err := circle(teams)
	return pairings, err
}

// Byes returns which team rests on which matchday. It is empty for even
// rosters.
func Byes(teams []models.Team) ([]Bye, error) {
	_, byes, err := circle(teams)
	return byes, err
}

// ParseKickoff validates an HH:MM time of day and returns it zero padded.
func ParseKickoff(s string) (string, error) {
	t, err := time.Parse(KickoffLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidKickoffTime, s)
	}
	return t.Format(KickoffLayout), nil
}

// matchesPerRound counts pairing slots per round including the bye slot.
func matchesPerRound(n int) int {
	if n%2 != 0 {
		n++
	}
	return n / 2
}

func circle(teams []models.Team) ([]Pairing, []Bye, error) {
	if len(teams) < 2 {
		return nil, nil, fmt.Errorf("%w: got %d", ErrInsufficientTeams, len(teams))
	}

	seen := make(map[string]struct{}, len(teams))
	slots := make([]string, 0, len(teams)+1)
	for _, t := range teams {
		if t.ID == "" {
			return nil, nil, fmt.Errorf("%w (team %q)", ErrInvalidTeam, t.Name)
		}
		if _, dup := seen[t.ID]; dup {
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateTeam, t.ID)
		}
		seen[t.ID] = struct{}{}
		slots = append(slots, t.ID)
	}
	if len(slots)%2 != 0 {
		slots = append(slots, byeSlot)
	}

	size := len(slots)
	rounds := size - 1
	perRound := size / 2

	pairings := make([]Pairing, 0, len(teams)*(len(teams)-1))
	var byes []Bye

	for round := 0; round < 2*rounds; round++ {
		matchday := round + 1
		for i := 0; i < perRound; i++ {
			home, away := slots[i], slots[size-1-i]
			if home == byeSlot || away == byeSlot {
				resting := home
				if resting == byeSlot {
					resting = away
				}
				byes = append(byes, Bye{TeamID: resting, Matchday: matchday})
				continue
			}
			// Second half replays the first with home and away swapped.
			if round >= rounds {
				home, away = away, home
			}
			pairings = append(pairings, Pairing{HomeTeamID: home, AwayTeamID: away, Matchday: matchday})
		}
		rotate(slots)
	}

	return pairings, byes, nil
}

// rotate keeps slot 0 fixed and moves every other slot one place to the
// right, the last one wrapping around to slot 1.
func rotate(slots []string) {
	last := slots[len(slots)-1]
	copy(slots[2:], slots[1:len(slots)-1])
	slots[1] = last
}
