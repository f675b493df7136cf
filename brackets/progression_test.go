package brackets

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Dosada05/prode/models"
)

func beforeLock() time.Time { return kickoff.Add(-2 * time.Hour) }

func TestPickAndOverwrite(t *testing.T) {
	p := NewProgression(ContinentalFormat, continentalFixture(), nil)

	if err := p.Pick(1, "ARG", beforeLock()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Pick(1, " AUS ", beforeLock()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(models.BracketPicks{1: "AUS"}, p.Picks()); diff != "" {
		t.Errorf("picks mismatch (-want +got):\n%s", diff)
	}

	if err := p.Unpick(1, beforeLock()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Picks()) != 0 {
		t.Errorf("expected no picks after unpick, got %v", p.Picks())
	}
}

func TestPickRejections(t *testing.T) {
	seed := models.BracketPicks{1: "ARG", 2: "NED"}

	tests := []struct {
		name    string
		matchID int
		team    string
		now     time.Time
		wantErr error
	}{
		{name: "later phase not yet open", matchID: 9, team: "ARG", now: beforeLock(), wantErr: ErrMatchLocked},
		{name: "at lock instant", matchID: 1, team: "AUS", now: kickoff.Add(-DefaultLockLead), wantErr: ErrMatchLocked},
		{name: "during the tournament", matchID: 3, team: "FRA", now: kickoff.Add(24 * time.Hour), wantErr: ErrMatchLocked},
		{name: "unknown match", matchID: 99, team: "ARG", now: beforeLock(), wantErr: ErrMatchNotInBracket},
		{name: "empty team", matchID: 3, team: "  ", now: beforeLock(), wantErr: ErrInvalidPick},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProgression(ContinentalFormat, continentalFixture(), seed)
			before := p.Picks()

			err := p.Pick(tt.matchID, tt.team, tt.now)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if diff := cmp.Diff(before, p.Picks()); diff != "" {
				t.Errorf("rejected pick changed the map (-before +after):\n%s", diff)
			}
		})
	}
}

func TestUnpickLocked(t *testing.T) {
	p := NewProgression(ContinentalFormat, continentalFixture(), models.BracketPicks{1: "ARG"})
	if err := p.Unpick(1, kickoff); !errors.Is(err, ErrMatchLocked) {
		t.Fatalf("expected ErrMatchLocked, got %v", err)
	}
	if got := p.Picks()[1]; got != "ARG" {
		t.Errorf("expected pick to survive, got %q", got)
	}
}

func TestProgressionOwnsItsPicks(t *testing.T) {
	seed := models.BracketPicks{1: "ARG"}
	p := NewProgression(ContinentalFormat, continentalFixture(), seed)

	seed[1] = "AUS"
	out := p.Picks()
	out[2] = "NED"

	if diff := cmp.Diff(models.BracketPicks{1: "ARG"}, p.Picks()); diff != "" {
		t.Errorf("external mutation leaked in (-want +got):\n%s", diff)
	}
}

func TestWithLockLead(t *testing.T) {
	p := NewProgression(ContinentalFormat, continentalFixture(), nil, WithLockLead(3*time.Hour))
	if err := p.Pick(1, "ARG", beforeLock()); !errors.Is(err, ErrMatchLocked) {
		t.Fatalf("expected a 3h lead to lock two hours before kickoff, got %v", err)
	}
	locked, err := p.IsMatchLocked(1, beforeLock())
	if err != nil || !locked {
		t.Errorf("expected locked, got %v (err %v)", locked, err)
	}
}

func TestSlotsNeverShowPicks(t *testing.T) {
	matches := continentalFixture()
	picks := models.BracketPicks{1: "ARG", 2: "NED", 9: "ARG"}

	p := NewProgression(ContinentalFormat, matches, picks)
	home, away, err := p.Slots(9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(Slot{Placeholder: "W1", FeederMatchID: ip(1)}, home); diff != "" {
		t.Errorf("home slot mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Slot{Placeholder: "W2", FeederMatchID: ip(2)}, away); diff != "" {
		t.Errorf("away slot mismatch (-want +got):\n%s", diff)
	}

	// The feed confirms a winner that differs from the pick.
	matches[0] = finish(matches[0], 0, 1)
	matches[8].HomeTeam = "AUS"
	p = NewProgression(ContinentalFormat, matches, picks)
	home, _, _ = p.Slots(9)
	if diff := cmp.Diff(Slot{Team: "AUS", Confirmed: true}, home); diff != "" {
		t.Errorf("confirmed slot mismatch (-want +got):\n%s", diff)
	}
}

func TestFeederWiringFollowsBracketSlots(t *testing.T) {
	matches := continentalFixture()
	reversed := make([]models.Match, len(matches))
	for i, m := range matches {
		reversed[len(matches)-1-i] = m
	}

	p := NewProgression(ContinentalFormat, reversed, nil)
	home, away, err := p.Slots(15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if home.FeederMatchID == nil || *home.FeederMatchID != 13 {
		t.Errorf("expected final home slot fed by 13, got %v", home.FeederMatchID)
	}
	if away.FeederMatchID == nil || *away.FeederMatchID != 14 {
		t.Errorf("expected final away slot fed by 14, got %v", away.FeederMatchID)
	}
}

func TestUnevenPhaseHasNoFeeders(t *testing.T) {
	matches := continentalFixture()
	// Drop one quarter-final: three matches cannot pair with eight.
	matches = append(matches[:11], matches[12:]...)

	p := NewProgression(ContinentalFormat, matches, nil)
	home, _, err := p.Slots(9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if home.FeederMatchID != nil {
		t.Errorf("expected no feeder, got %d", *home.FeederMatchID)
	}
	if home.Placeholder != "W1" {
		t.Errorf("expected placeholder W1, got %q", home.Placeholder)
	}
}

func TestStrictPicks(t *testing.T) {
	p := NewProgression(ContinentalFormat, continentalFixture(), nil, WithStrictPicks())

	if err := p.Pick(1, "BRA", beforeLock()); !errors.Is(err, ErrInvalidPick) {
		t.Fatalf("expected ErrInvalidPick, got %v", err)
	}
	if err := p.Pick(1, "AUS", beforeLock()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	matches := withoutDates(continentalFixture())
	for i := 0; i < 8; i++ {
		matches[i] = finish(matches[i], 1, 0)
	}

	strict := NewProgression(ContinentalFormat, matches, nil, WithStrictPicks())
	if err := strict.Pick(9, "ARG", kickoff); !errors.Is(err, ErrInvalidPick) {
		t.Errorf("placeholder slots accept nothing in strict mode, got %v", err)
	}

	lenient := NewProgression(ContinentalFormat, matches, nil)
	if err := lenient.Pick(9, "ARG", kickoff); err != nil {
		t.Errorf("unexpected error without strict mode: %v", err)
	}
}

func TestChampionAndFinalists(t *testing.T) {
	p := NewProgression(ContinentalFormat, continentalFixture(), nil)
	if _, ok := p.Champion(); ok {
		t.Error("no pick on the final means no champion")
	}
	if got := p.Finalists(); len(got) != 0 {
		t.Errorf("expected no finalists, got %v", got)
	}

	p = NewProgression(ContinentalFormat, continentalFixture(), models.BracketPicks{13: "ARG", 14: "FRA", 15: "ARG"})
	champion, ok := p.Champion()
	if !ok || champion != "ARG" {
		t.Errorf("expected champion ARG, got %q (%v)", champion, ok)
	}
	if diff := cmp.Diff([]string{"ARG", "FRA"}, p.Finalists()); diff != "" {
		t.Errorf("finalists mismatch (-want +got):\n%s", diff)
	}
}

func TestBoard(t *testing.T) {
	p := NewProgression(ContinentalFormat, continentalFixture(), models.BracketPicks{1: "ARG", 15: "ARG"})
	board := p.Board(beforeLock())

	if len(board.Phases) != 4 {
		t.Fatalf("expected 4 phases, got %d", len(board.Phases))
	}
	if board.Champion != "ARG" {
		t.Errorf("expected champion ARG, got %q", board.Champion)
	}

	r16 := board.Phases[0]
	if r16.Phase != models.PhaseRound16 || !r16.IsUnlocked || len(r16.Matches) != 8 {
		t.Fatalf("unexpected round of 16: %+v", r16.PhaseStatus)
	}
	first := r16.Matches[0]
	if first.Pick != "ARG" || first.Locked {
		t.Errorf("unexpected first match: %+v", first)
	}
	if diff := cmp.Diff(Slot{Team: "ARG", Confirmed: true}, first.Home); diff != "" {
		t.Errorf("home slot mismatch (-want +got):\n%s", diff)
	}

	final := board.Phases[3]
	if final.IsUnlocked || !final.Matches[0].Locked {
		t.Error("final must be locked before the semi-finals are played")
	}
	if final.Matches[0].Home.Team != "" {
		t.Errorf("final slot shows %q, picks must not fill slots", final.Matches[0].Home.Team)
	}
}
