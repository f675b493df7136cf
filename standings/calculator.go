// Package standings derives group tables from match results.
//
// Two modes exist on purpose. Official uses authoritative results only and is
// what points and qualification are based on. Simulated fills matches without
// a final result with the user's own prediction, for the "what if" view.
package standings

import (
	"sort"
	"strings"

	"github.com/Dosada05/prode/models"
)

const (
	pointsWin  = 3
	pointsDraw = 1
)

type scoreline struct {
	home, away int
}

// Official computes group tables from finished group-stage matches. Matches
// that are not finished, lack a score, or break the score invariant are skipped.
func Official(matches []models.Match) []models.GroupStandings {
	t := newTable()
	for _, m := range matches {
		if models.IsKnockoutPhase(m.Phase) || !m.IsFinished() || !m.HasScore() || m.Validate() != nil {
			continue
		}
		t.add(GroupOf(m.Phase), m.HomeTeam, m.AwayTeam, scoreline{*m.HomeScore, *m.AwayScore})
	}
	return t.standings()
}

// Simulated is Official with the gaps filled from the user's predictions:
// a group match without a final result counts with the predicted score when
// one exists. Finished matches always use the real score.
func Simulated(matches []models.Match, predictions []models.Prediction) []models.GroupStandings {
	byMatch := make(map[int]models.Prediction, len(predictions))
	for _, p := range predictions {
		byMatch[p.MatchID] = p
	}

	t := newTable()
	for _, m := range matches {
		if models.IsKnockoutPhase(m.Phase) {
			continue
		}
		if m.IsFinished() && m.HasScore() && m.Validate() == nil {
			t.add(GroupOf(m.Phase), m.HomeTeam, m.AwayTeam, scoreline{*m.HomeScore, *m.AwayScore})
			continue
		}
		p, ok := byMatch[m.ID]
		if !ok || p.HomeScore < 0 || p.AwayScore < 0 {
			continue
		}
		t.add(GroupOf(m.Phase), m.HomeTeam, m.AwayTeam, scoreline{p.HomeScore, p.AwayScore})
	}
	return t.standings()
}

// GroupOf normalises a group-stage phase tag ("A", "group_b", "Grupo C") to
// its letter. Anything else lands in models.UnknownGroup.
func GroupOf(phase string) string {
	tag := strings.ToUpper(strings.TrimSpace(phase))
	for _, prefix := range []string{"GROUP_", "GROUP ", "GRUPO_", "GRUPO "} {
		if strings.HasPrefix(tag, prefix) {
			tag = strings.TrimSpace(strings.TrimPrefix(tag, prefix))
			break
		}
	}
	if len(tag) == 1 && tag[0] >= 'A' && tag[0] <= 'Z' {
		return tag
	}
	return models.UnknownGroup
}

type table struct {
	groups map[string]map[string]*models.TeamStat
}

func newTable() *table {
	return &table{groups: make(map[string]map[string]*models.TeamStat)}
}

func (t *table) stat(group, team string) *models.TeamStat {
	teams, ok := t.groups[group]
	if !ok {
		teams = make(map[string]*models.TeamStat)
		t.groups[group] = teams
	}
	s, ok := teams[team]
	if !ok {
		s = &models.TeamStat{Team: team}
		teams[team] = s
	}
	return s
}

func (t *table) add(group, homeTeam, awayTeam string, score scoreline) {
	home := t.stat(group, homeTeam)
	away := t.stat(group, awayTeam)

	home.Played++
	away.Played++
	home.GoalsFor += score.home
	home.GoalsAgainst += score.away
	away.GoalsFor += score.away
	away.GoalsAgainst += score.home

	switch {
	case score.home > score.away:
		home.Won++
		away.Lost++
		home.Points += pointsWin
	case score.home < score.away:
		away.Won++
		home.Lost++
		away.Points += pointsWin
	default:
		home.Drawn++
		away.Drawn++
		home.Points += pointsDraw
		away.Points += pointsDraw
	}
	home.GoalDifference = home.GoalsFor - home.GoalsAgainst
	away.GoalDifference = away.GoalsFor - away.GoalsAgainst
}

func (t *table) standings() []models.GroupStandings {
	names := make([]string, 0, len(t.groups))
	for g := range t.groups {
		names = append(names, g)
	}
	sort.Slice(names, func(i, j int) bool {
		if (names[i] == models.UnknownGroup) != (names[j] == models.UnknownGroup) {
			return names[j] == models.UnknownGroup
		}
		return names[i] < names[j]
	})

	out := make([]models.GroupStandings, 0, len(names))
	for _, g := range names {
		rows := make([]models.TeamStat, 0, len(t.groups[g]))
		for _, s := range t.groups[g] {
			rows = append(rows, *s)
		}
		Sort(rows)
		out = append(out, models.GroupStandings{Group: g, Teams: rows})
	}
	return out
}

// Sort orders rows by points, goal difference and goals for, all descending,
// and assigns positions. There is no further tie-break: rows equal on all
// three share a position and are listed by team code.
func Sort(rows []models.TeamStat) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.Team < b.Team
	})
	for i := range rows {
		if i > 0 && tied(rows[i-1], rows[i]) {
			rows[i].Position = rows[i-1].Position
			continue
		}
		rows[i].Position = i + 1
	}
}

func tied(a, b models.TeamStat) bool {
	return a.Points == b.Points && a.GoalDifference == b.GoalDifference && a.GoalsFor == b.GoalsFor
}
