package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/Dosada05/prode/brackets"
	"github.com/Dosada05/prode/events"
	"github.com/Dosada05/prode/models"
)

type bracketFixture struct {
	matches   *memMatchRepo
	entries   *memBracketRepo
	publisher *recordingPublisher
	clock     *clockwork.FakeClock
	service   BracketService
}

func newBracketFixture(now time.Time, seed ...models.BracketEntry) *bracketFixture {
	f := &bracketFixture{
		matches:   newMemMatchRepo(fixtureMatches()...),
		entries:   newMemBracketRepo(seed...),
		publisher: &recordingPublisher{},
		clock:     clockwork.NewFakeClockAt(now),
	}
	f.entries.now = now
	f.service = NewBracketService(f.matches, f.entries, fixtureCatalog(), f.publisher, f.clock, false, quietLogger())
	return f
}

func TestBracketPickIsStored(t *testing.T) {
	f := newBracketFixture(kickoff.Add(-2 * time.Hour))

	view, err := f.service.Pick(context.Background(), 1, fixtureTournament, 0, 1, "ARG")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(models.BracketPicks{1: "ARG"}, view.Picks); diff != "" {
		t.Errorf("picks mismatch (-want +got):\n%s", diff)
	}
	if view.Format != brackets.ContinentalFormat.Name {
		t.Errorf("expected continental format, got %s", view.Format)
	}
	if view.UpdatedAt == nil || !view.UpdatedAt.Equal(f.clock.Now()) {
		t.Errorf("expected updated_at %v, got %v", f.clock.Now(), view.UpdatedAt)
	}

	stored, ok := f.entries.get(1, fixtureTournament, 0)
	if !ok || stored.Picks[1] != "ARG" {
		t.Fatalf("expected the pick to be stored, got %+v", stored)
	}
	if diff := cmp.Diff([]string{events.BracketSaved + "/7"}, f.publisher.published()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestBracketPickRejected(t *testing.T) {
	tests := []struct {
		name    string
		now     time.Time
		matchID int
		team    string
		wantErr error
	}{
		{name: "later phase still gated", now: kickoff.Add(-2 * time.Hour), matchID: 3, team: "ARG", wantErr: brackets.ErrMatchLocked},
		{name: "after the global lock", now: kickoff.Add(-10 * time.Minute), matchID: 1, team: "ARG", wantErr: brackets.ErrMatchLocked},
		{name: "group match", now: kickoff.Add(-2 * time.Hour), matchID: 101, team: "ARG", wantErr: brackets.ErrMatchNotInBracket},
		{name: "unknown match", now: kickoff.Add(-2 * time.Hour), matchID: 404, team: "ARG", wantErr: brackets.ErrMatchNotInBracket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBracketFixture(tt.now)
			_, err := f.service.Pick(context.Background(), 1, fixtureTournament, 0, tt.matchID, tt.team)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if _, ok := f.entries.get(1, fixtureTournament, 0); ok {
				t.Error("a rejected pick must not create an entry")
			}
			if len(f.publisher.published()) != 0 {
				t.Error("a rejected pick must not publish")
			}
		})
	}
}

func TestBracketEmptyTeamUnpicks(t *testing.T) {
	f := newBracketFixture(kickoff.Add(-2*time.Hour), models.BracketEntry{
		UserID: 1, TournamentID: fixtureTournament, Picks: models.BracketPicks{1: "ARG", 2: "FRA"},
	})

	view, err := f.service.Pick(context.Background(), 1, fixtureTournament, 0, 1, "  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(models.BracketPicks{2: "FRA"}, view.Picks); diff != "" {
		t.Errorf("picks mismatch (-want +got):\n%s", diff)
	}
}

func TestBracketSubmitPicksIsAllOrNothing(t *testing.T) {
	seed := models.BracketEntry{UserID: 1, TournamentID: fixtureTournament, Picks: models.BracketPicks{2: "FRA"}}
	f := newBracketFixture(kickoff.Add(-2*time.Hour), seed)

	_, err := f.service.SubmitPicks(context.Background(), 1, fixtureTournament, 0, models.BracketPicks{1: "ARG", 3: "ARG"})
	if !errors.Is(err, brackets.ErrMatchLocked) {
		t.Fatalf("expected ErrMatchLocked, got %v", err)
	}
	stored, _ := f.entries.get(1, fixtureTournament, 0)
	if diff := cmp.Diff(models.BracketPicks{2: "FRA"}, stored.Picks); diff != "" {
		t.Errorf("stored picks changed (-want +got):\n%s", diff)
	}
	if f.entries.saves != 0 {
		t.Errorf("expected no save, got %d", f.entries.saves)
	}

	view, err := f.service.SubmitPicks(context.Background(), 1, fixtureTournament, 0, models.BracketPicks{1: "ARG", 2: ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(models.BracketPicks{1: "ARG"}, view.Picks); diff != "" {
		t.Errorf("picks mismatch (-want +got):\n%s", diff)
	}
}

func TestBracketSubmitNothing(t *testing.T) {
	f := newBracketFixture(kickoff.Add(-2 * time.Hour))
	_, err := f.service.SubmitPicks(context.Background(), 1, fixtureTournament, 0, models.BracketPicks{})
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
}

func TestBracketClearKeepsLockedPicks(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		seed models.BracketPicks
		want models.BracketPicks
	}{
		{
			name: "before the lock",
			now:  kickoff.Add(-2 * time.Hour),
			seed: models.BracketPicks{1: "ARG", 2: "FRA", 99: "BRA"},
			want: models.BracketPicks{99: "BRA"},
		},
		{
			name: "after the lock",
			now:  kickoff,
			seed: models.BracketPicks{1: "ARG", 2: "FRA"},
			want: models.BracketPicks{1: "ARG", 2: "FRA"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBracketFixture(tt.now, models.BracketEntry{UserID: 1, TournamentID: fixtureTournament, Picks: tt.seed})
			view, err := f.service.ClearBracket(context.Background(), 1, fixtureTournament, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, view.Picks); diff != "" {
				t.Errorf("picks mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBracketGetWithoutEntry(t *testing.T) {
	f := newBracketFixture(kickoff.Add(-2 * time.Hour))

	view, err := f.service.GetBracket(context.Background(), 5, fixtureTournament, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Picks) != 0 || view.UpdatedAt != nil || view.LeagueID != 3 {
		t.Errorf("expected an empty league bracket, got %+v", view)
	}
	// Only the populated phases are shown: round of 16 and quarter-finals.
	if len(view.Board.Phases) != 2 {
		t.Errorf("expected 2 board phases, got %d", len(view.Board.Phases))
	}
	if f.entries.saves != 0 {
		t.Error("reading a bracket must not store it")
	}
}

func TestBracketLocks(t *testing.T) {
	f := newBracketFixture(kickoff.Add(-2 * time.Hour))

	state, err := f.service.Locks(context.Background(), fixtureTournament)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.GloballyLocked || !state.IsPhaseUnlocked(models.PhaseRound16) || state.IsPhaseUnlocked(models.PhaseQuarterFinal) {
		t.Errorf("unexpected state before the lock: %+v", state.Phases)
	}

	f.clock.Advance(2 * time.Hour)
	state, err = f.service.Locks(context.Background(), fixtureTournament)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !state.GloballyLocked {
		t.Error("expected the bracket to be locked at kickoff")
	}
}

func TestRescoreBrackets(t *testing.T) {
	f := newBracketFixture(kickoff.Add(3*time.Hour),
		models.BracketEntry{UserID: 1, TournamentID: fixtureTournament, Picks: models.BracketPicks{1: "arg"}},
		models.BracketEntry{UserID: 2, TournamentID: fixtureTournament, Picks: models.BracketPicks{1: "AUS"}},
		models.BracketEntry{UserID: 3, TournamentID: fixtureTournament, Picks: models.BracketPicks{1: "ARG"}, Points: 3},
	)
	if err := f.matches.UpdateResult(context.Background(), nil, 1, ip(2), ip(1), models.MatchStatusFinished); err != nil {
		t.Fatal(err)
	}

	changed, err := f.service.RescoreBrackets(context.Background(), fixtureTournament)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed != 1 {
		t.Errorf("expected 1 changed entry, got %d", changed)
	}

	for user, want := range map[int]int{1: 3, 2: 0, 3: 3} {
		e, _ := f.entries.get(user, fixtureTournament, 0)
		if e.Points != want {
			t.Errorf("user %d: expected %d points, got %d", user, want, e.Points)
		}
	}
}
