package brackets

import (
	"sort"

	"github.com/Dosada05/prode/models"
)

// feederPair holds the matches whose winners fill the home and away slots of
// a later-round match.
type feederPair struct {
	Home *int
	Away *int
}

// orderedPhaseMatches groups format matches by phase, each phase ordered by
// bracket slot (matches without one go last, by id).
func orderedPhaseMatches(format Format, matches []models.Match) map[string][]models.Match {
	byPhase := make(map[string][]models.Match, len(format.Phases))
	for _, m := range matches {
		tag := normPhase(m.Phase)
		if format.HasPhase(tag) {
			byPhase[tag] = append(byPhase[tag], m)
		}
	}
	for _, list := range byPhase {
		sort.SliceStable(list, func(i, j int) bool {
			a, b := list[i], list[j]
			switch {
			case a.BracketID != nil && b.BracketID != nil && *a.BracketID != *b.BracketID:
				return *a.BracketID < *b.BracketID
			case (a.BracketID == nil) != (b.BracketID == nil):
				return a.BracketID != nil
			}
			return a.ID < b.ID
		})
	}
	return byPhase
}

// wireFeeders pairs each match with its feeder matches. Like building a
// single-elimination tree bottom-up, slot i of a round is fed by slots 2i and
// 2i+1 of the round before. A phase that is not exactly half its
// predecessor's size (or has none) gets no wiring rather than a wrong one.
func wireFeeders(format Format, byPhase map[string][]models.Match) map[int]feederPair {
	wiring := make(map[int]feederPair)
	for _, tag := range format.Phases {
		prev, ok := format.Predecessor(tag)
		if !ok {
			continue
		}
		current, previous := byPhase[tag], byPhase[prev]
		if len(current) == 0 || len(previous) != 2*len(current) {
			continue
		}
		for i, m := range current {
			home := previous[2*i].ID
			away := previous[2*i+1].ID
			wiring[m.ID] = feederPair{Home: &home, Away: &away}
		}
	}
	return wiring
}
