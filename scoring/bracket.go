package scoring

import (
	"strings"

	"github.com/Dosada05/prode/models"
)

// PointsBracketPick is earned for every knockout match whose winner the user picked.
const PointsBracketPick = 3

// Winner returns the team that won a finished knockout match. A level score
// (decided on penalties, which the feed does not carry) or a placeholder team
// has no known winner.
func Winner(m models.Match) (string, bool) {
	if !m.IsFinished() || !m.HasScore() || *m.HomeScore == *m.AwayScore {
		return "", false
	}
	team := m.HomeTeam
	if *m.AwayScore > *m.HomeScore {
		team = m.AwayTeam
	}
	if models.IsPlaceholderTeam(team) {
		return "", false
	}
	return strings.TrimSpace(team), true
}

// BracketPoints totals a pick map against the knockout results known so far.
func BracketPoints(matches []models.Match, picks models.BracketPicks) int {
	total := 0
	for _, m := range matches {
		if !models.IsKnockoutPhase(m.Phase) {
			continue
		}
		pick, ok := picks[m.ID]
		if !ok {
			continue
		}
		if winner, ok := Winner(m); ok && strings.EqualFold(strings.TrimSpace(pick), winner) {
			total += PointsBracketPick
		}
	}
	return total
}
