package brackets

import (
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Dosada05/prode/models"
)

var kickoff = time.Date(2026, 6, 28, 18, 0, 0, 0, time.UTC)

func ip(v int) *int { return &v }

func knockout(id int, phase string, slot int, date time.Time, home, away string) models.Match {
	return models.Match{
		ID:        id,
		Phase:     phase,
		BracketID: ip(slot),
		Date:      date,
		HomeTeam:  home,
		AwayTeam:  away,
		Status:    models.MatchStatusScheduled,
	}
}

func finish(m models.Match, home, away int) models.Match {
	m.HomeScore, m.AwayScore = ip(home), ip(away)
	m.Status = models.MatchStatusFinished
	return m
}

// continentalFixture builds a 16-team continental bracket: ids 1-8 round of
// 16, 9-12 quarter-finals, 13-14 semi-finals, 15 the final.
func continentalFixture() []models.Match {
	teams := []string{"ARG", "AUS", "NED", "USA", "FRA", "POL", "ENG", "SEN", "JPN", "CRO", "BRA", "KOR", "MAR", "ESP", "POR", "SUI"}
	var matches []models.Match
	for i := 0; i < 8; i++ {
		matches = append(matches, knockout(i+1, models.PhaseRound16, i+1, kickoff.Add(time.Duration(i)*3*time.Hour), teams[2*i], teams[2*i+1]))
	}
	for i := 0; i < 4; i++ {
		matches = append(matches, knockout(9+i, models.PhaseQuarterFinal, i+1, kickoff.Add(96*time.Hour), "W"+strconv.Itoa(2*i+1), "W"+strconv.Itoa(2*i+2)))
	}
	matches = append(matches,
		knockout(13, models.PhaseSemiFinal, 1, kickoff.Add(200*time.Hour), "W9", "W10"),
		knockout(14, models.PhaseSemiFinal, 2, kickoff.Add(201*time.Hour), "W11", "W12"),
		knockout(15, models.PhaseFinal, 1, kickoff.Add(300*time.Hour), "W13", "W14"),
	)
	return matches
}

func withoutDates(matches []models.Match) []models.Match {
	out := make([]models.Match, len(matches))
	for i, m := range matches {
		m.Date = time.Time{}
		out[i] = m
	}
	return out
}

func TestEvaluateLockInstant(t *testing.T) {
	state := EvaluateLocks(ContinentalFormat, continentalFixture(), kickoff.Add(-time.Hour))

	if state.FirstPhase != models.PhaseRound16 {
		t.Errorf("expected first phase %s, got %s", models.PhaseRound16, state.FirstPhase)
	}
	want := kickoff.Add(-30 * time.Minute)
	if state.LockInstant == nil || !state.LockInstant.Equal(want) {
		t.Fatalf("expected lock instant %v, got %v", want, state.LockInstant)
	}
	if state.GloballyLocked {
		t.Error("did not expect a global lock an hour before kickoff")
	}
}

func TestLockMonotonicity(t *testing.T) {
	matches := continentalFixture()
	lockInstant := kickoff.Add(-DefaultLockLead)
	r16 := matches[0]

	for _, before := range []time.Duration{-72 * time.Hour, -time.Hour, -time.Second} {
		state := EvaluateLocks(ContinentalFormat, matches, lockInstant.Add(before))
		if state.IsMatchLocked(r16) {
			t.Errorf("round of 16 match locked at lockInstant%v", before)
		}
	}

	for _, after := range []time.Duration{0, time.Nanosecond, time.Minute, 48 * time.Hour, 365 * 24 * time.Hour} {
		state := EvaluateLocks(ContinentalFormat, matches, lockInstant.Add(after))
		if !state.GloballyLocked {
			t.Errorf("expected global lock at lockInstant+%v", after)
		}
		for _, m := range matches {
			if !state.IsMatchLocked(m) {
				t.Errorf("match %d (%s) unlocked at lockInstant+%v", m.ID, m.Phase, after)
			}
		}
	}
}

func TestGlobalLockOverridesCompletedPredecessor(t *testing.T) {
	matches := continentalFixture()
	for i := 0; i < 8; i++ {
		matches[i] = finish(matches[i], 1, 0)
	}
	state := EvaluateLocks(ContinentalFormat, matches, kickoff.Add(30*24*time.Hour))
	if state.IsPhaseUnlocked(models.PhaseQuarterFinal) {
		t.Error("quarter-finals must stay locked after the lock instant")
	}
}

func TestSequentialGating(t *testing.T) {
	custom := Format{
		Name:         "mini",
		Phases:       []string{models.PhaseQuarter, models.PhaseSemi, models.PhaseFinal},
		Predecessors: map[string]string{models.PhaseSemi: models.PhaseQuarter, models.PhaseFinal: models.PhaseSemi},
		Final:        models.PhaseFinal,
	}
	matches := withoutDates([]models.Match{
		knockout(1, models.PhaseQuarter, 1, time.Time{}, "ARG", "NED"),
		knockout(2, models.PhaseQuarter, 2, time.Time{}, "CRO", "BRA"),
		knockout(3, models.PhaseQuarter, 3, time.Time{}, "MAR", "POR"),
		knockout(4, models.PhaseSemi, 1, time.Time{}, "W1", "W2"),
		knockout(5, models.PhaseFinal, 1, time.Time{}, "W4", "W3"),
	})
	matches[0] = finish(matches[0], 2, 2)
	matches[1] = finish(matches[1], 1, 1)

	now := kickoff
	state := EvaluateLocks(custom, matches, now)
	if state.LockInstant != nil {
		t.Fatalf("no dates known, expected no lock instant, got %v", state.LockInstant)
	}
	if state.IsPhaseUnlocked(models.PhaseSemi) {
		t.Error("semi-finals open with one quarter-final unfinished")
	}
	if !state.IsPhaseUnlocked(models.PhaseQuarter) {
		t.Error("first phase should be open")
	}

	matches[2] = finish(matches[2], 0, 1)
	state = EvaluateLocks(custom, matches, now)
	if !state.IsPhaseUnlocked(models.PhaseSemi) {
		t.Error("semi-finals should open once every quarter-final is finished")
	}
	if state.IsPhaseUnlocked(models.PhaseFinal) {
		t.Error("final should stay locked until the semi-final is finished")
	}

	quarter, _ := state.Phase(models.PhaseQuarter)
	if !quarter.AllMatchesCompleted || quarter.MatchCount != 3 {
		t.Errorf("unexpected quarter status: %+v", quarter)
	}
}

func TestCompletedStatusCountsAsFinished(t *testing.T) {
	matches := withoutDates(continentalFixture())
	for i := 0; i < 8; i++ {
		matches[i] = finish(matches[i], 3, 1)
		if i%2 == 0 {
			matches[i].Status = models.MatchStatusCompleted
		}
	}
	state := EvaluateLocks(ContinentalFormat, matches, kickoff)
	if !state.IsPhaseUnlocked(models.PhaseQuarterFinal) {
		t.Error("quarter-finals should open when the round of 16 is FINISHED/COMPLETED")
	}
}

func TestEmptyPhasesDoNotBlock(t *testing.T) {
	// No round of 32 and no quarter-finals in the feed.
	matches := []models.Match{
		finish(knockout(1, models.PhaseRound16, 1, time.Time{}, "ARG", "AUS"), 2, 1),
		finish(knockout(2, models.PhaseRound16, 2, time.Time{}, "NED", "USA"), 3, 1),
		knockout(3, models.PhaseSemi, 1, time.Time{}, "W1", "W2"),
	}
	state := EvaluateLocks(LeagueFormat, matches, kickoff)

	if state.FirstPhase != models.PhaseRound16 {
		t.Fatalf("expected first phase %s, got %q", models.PhaseRound16, state.FirstPhase)
	}
	if state.IsPhaseUnlocked(models.PhaseRound32) {
		t.Error("a phase before the first populated one has nothing to open")
	}
	if !state.IsPhaseUnlocked(models.PhaseQuarter) {
		t.Error("quarters follow a finished round of 16")
	}
	if !state.IsPhaseUnlocked(models.PhaseSemi) {
		t.Error("semis follow an empty quarter phase and must not be blocked by it")
	}
	if state.IsPhaseUnlocked(models.PhaseFinal) {
		t.Error("final follows an unfinished semi")
	}
}

func TestUnknownDatesExcludedFromLockInstant(t *testing.T) {
	matches := continentalFixture()
	matches[0].Date = time.Time{}

	state := EvaluateLocks(ContinentalFormat, matches, kickoff)
	if diff := cmp.Diff([]int{1}, state.SkippedDates); diff != "" {
		t.Errorf("skipped dates mismatch (-want +got):\n%s", diff)
	}
	want := matches[1].Date.Add(-DefaultLockLead)
	if state.LockInstant == nil || !state.LockInstant.Equal(want) {
		t.Errorf("expected lock instant %v, got %v", want, state.LockInstant)
	}
	if state.GloballyLocked {
		t.Error("kickoff is before the earliest known date minus the lead")
	}
}

func TestCustomLead(t *testing.T) {
	policy := NewLockPolicy(ContinentalFormat, 2*time.Hour)
	state := policy.Evaluate(continentalFixture(), kickoff.Add(-time.Hour))
	if !state.GloballyLocked {
		t.Error("expected a 2h lead to lock an hour before kickoff")
	}
}

func TestNonKnockoutMatchIsLocked(t *testing.T) {
	group := models.Match{ID: 99, Phase: "A", Status: models.MatchStatusScheduled}
	state := EvaluateLocks(ContinentalFormat, continentalFixture(), kickoff.Add(-48*time.Hour))
	if !state.IsMatchLocked(group) {
		t.Error("group-stage matches are not pickable in the bracket")
	}
}

func TestNoKnockoutMatches(t *testing.T) {
	state := EvaluateLocks(LeagueFormat, nil, kickoff)
	if state.FirstPhase != "" || state.LockInstant != nil || state.GloballyLocked {
		t.Errorf("unexpected state for empty bracket: %+v", state)
	}
	for _, st := range state.Phases {
		if st.IsUnlocked {
			t.Errorf("phase %s unlocked with no matches", st.Phase)
		}
		if !st.AllMatchesCompleted {
			t.Errorf("empty phase %s should count as completed", st.Phase)
		}
	}
}
