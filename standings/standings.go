// Package standings derives league tables from completed match results.
package standings

import (
	"errors"
	"fmt"
	"sort"

	"github.com/Dosada05/league-system/models"
)

var (
	ErrUnknownTeam   = errors.New("match references a team outside the roster")
	ErrInvalidScore  = errors.New("match score must not be negative")
	ErrSameTeamMatch = errors.New("match has the same team on both sides")
	ErrDuplicateTeam = errors.New("team appears more than once in the roster")
)

const (
	PointsForWin  = 3
	PointsForDraw = 1
	PointsForLoss = 0
)

// Compute builds the ranked table for a roster from its completed matches.
// Rows are ordered by points, goal difference and goals scored (all
// descending), then by team name and id so the order is total. On any
// invalid input it returns no table at all.
func Compute(teams []models.Team, completed []models.CompletedMatch) ([]models.TeamStats, error) {
	index := make(map[string]*models.TeamStats, len(teams))
	for _, t := range teams {
		if _, dup := index[t.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTeam, t.ID)
		}
		index[t.ID] = &models.TeamStats{TeamID: t.ID, TeamName: t.Name}
	}

	for i, match := range completed {
		if err := Validate(match); err != nil {
			return nil, fmt.Errorf("match #%d: %w", i+1, err)
		}
		home, ok := index[match.HomeTeamID]
		if !ok {
			return nil, fmt.Errorf("match #%d: %w: %s", i+1, ErrUnknownTeam, match.HomeTeamID)
		}
		away, ok := index[match.AwayTeamID]
		if !ok {
			return nil, fmt.Errorf("match #%d: %w: %s", i+1, ErrUnknownTeam, match.AwayTeamID)
		}

		applyResult(home, match.HomeScore, match.AwayScore)
		applyResult(away, match.AwayScore, match.HomeScore)
	}

	table := make([]models.TeamStats, 0, len(index))
	for _, t := range teams {
		row := index[t.ID]
		row.GoalDifference = row.GoalsFor - row.GoalsAgainst
		table = append(table, *row)
	}

	Sort(table)
	for i := range table {
		table[i].Position = i + 1
	}
	return table, nil
}

// Validate checks a single result before it is aggregated or stored.
func Validate(match models.CompletedMatch) error {
	if match.HomeScore < 0 || match.AwayScore < 0 {
		return fmt.Errorf("%w: %d-%d", ErrInvalidScore, match.HomeScore, match.AwayScore)
	}
	if match.HomeTeamID == match.AwayTeamID {
		return fmt.Errorf("%w: %s", ErrSameTeamMatch, match.HomeTeamID)
	}
	return nil
}

func applyResult(row *models.TeamStats, scored, conceded int) {
	row.MatchesPlayed++
	row.GoalsFor += scored
	row.GoalsAgainst += conceded

	switch {
	case scored > conceded:
		row.Wins++
		row.Points += PointsForWin
	case scored == conceded:
		row.Draws++
		row.Points += PointsForDraw
	default:
		row.Losses++
		row.Points += PointsForLoss
	}
}

// Sort orders a table in ranking order in place.
func Sort(table []models.TeamStats) {
	sort.SliceStable(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		if a.TeamName != b.TeamName {
			return a.TeamName < b.TeamName
		}
		return a.TeamID < b.TeamID
	})
}
