package models

// UnknownGroup collects teams whose match carried a malformed or missing group tag.
const UnknownGroup = "Desconocido"

// TeamStat is one row of a group table. It is always derived from match
// results and never stored or updated incrementally.
type TeamStat struct {
	Team           string `json:"team"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Drawn          int    `json:"drawn"`
	Lost           int    `json:"lost"`
	GoalsFor       int    `json:"goals_for"`
	GoalsAgainst   int    `json:"goals_against"`
	GoalDifference int    `json:"goal_difference"`
	Points         int    `json:"points"`
	Position       int    `json:"position"` // shared by teams tied on points, GD and GF
}

type GroupStandings struct {
	Group string     `json:"group"`
	Teams []TeamStat `json:"teams"`
}
