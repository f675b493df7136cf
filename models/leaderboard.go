package models

type LeaderboardRow struct {
	Position         int  `json:"position"`
	UserID           int  `json:"user_id"`
	PredictionPoints int  `json:"prediction_points"`
	BracketPoints    int  `json:"bracket_points"`
	TotalPoints      int  `json:"total_points"`
	TiebreakerGuess  *int `json:"tiebreaker_guess,omitempty"`
	TiebreakerDelta  *int `json:"tiebreaker_delta,omitempty"`
}

type Leaderboard struct {
	TournamentID     int              `json:"tournament_id"`
	LeagueID         int              `json:"league_id"`
	ActualGoalsSoFar int              `json:"actual_goals_so_far"`
	Rows             []LeaderboardRow `json:"rows"`
}
