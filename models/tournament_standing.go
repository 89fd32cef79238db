package models

// TeamStats is one row of a league table. It is always derived from the
// completed matches and never stored.
type TeamStats struct {
	Position       int    `json:"position"`
	TeamID         string `json:"team_id"`
	TeamName       string `json:"team_name"`
	MatchesPlayed  int    `json:"matches_played"`
	Wins           int    `json:"wins"`
	Draws          int    `json:"draws"`
	Losses         int    `json:"losses"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Points         int    `json:"points"`
}

// TournamentStats groups a ranked table with the tournament it belongs to.
type TournamentStats struct {
	TournamentID   string      `json:"tournament_id"`
	TournamentName string      `json:"tournament_name"`
	Teams          []TeamStats `json:"teams"`
}
