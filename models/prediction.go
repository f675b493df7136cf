package models

import "time"

// Prediction is a user's persisted score call for one match.
type Prediction struct {
	ID           int       `json:"id" db:"id"`
	UserID       int       `json:"user_id" db:"user_id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	MatchID      int       `json:"match_id" db:"match_id"`
	HomeScore    int       `json:"home_score" db:"home_score"`
	AwayScore    int       `json:"away_score" db:"away_score"`
	IsJoker      bool      `json:"is_joker" db:"is_joker"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ScoredPrediction is a prediction together with the points it earned so far.
// Points stays 0 until the match is finished.
type ScoredPrediction struct {
	Prediction
	Points   int  `json:"points"`
	Finished bool `json:"finished"`
}

// TiebreakerGuess is a user's total-goals guess, used only to separate users
// tied on points in a leaderboard.
type TiebreakerGuess struct {
	UserID       int       `json:"user_id" db:"user_id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	LeagueID     int       `json:"league_id" db:"league_id"`
	TotalGoals   int       `json:"total_goals" db:"total_goals"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
