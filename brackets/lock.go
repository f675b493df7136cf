package brackets

import (
	"time"

	"github.com/Dosada05/prode/models"
)

// DefaultLockLead is how long before the first knockout kickoff every pick freezes.
const DefaultLockLead = 30 * time.Minute

// LockPolicy decides which knockout phases accept pick changes. It keeps no
// state: every evaluation is a function of the match list and the instant.
type LockPolicy struct {
	Format Format
	Lead   time.Duration
}

func NewLockPolicy(format Format, lead time.Duration) LockPolicy {
	if lead < 0 {
		lead = DefaultLockLead
	}
	return LockPolicy{Format: format, Lead: lead}
}

// LockState is the outcome of one evaluation.
type LockState struct {
	Format         string               `json:"format"`
	Now            time.Time            `json:"now"`
	FirstPhase     string               `json:"first_phase,omitempty"`
	LockInstant    *time.Time           `json:"lock_instant,omitempty"`
	GloballyLocked bool                 `json:"globally_locked"`
	Phases         []models.PhaseStatus `json:"phases"`
	// SkippedDates lists first-phase matches left out of the lock instant
	// because their date is unknown.
	SkippedDates []int `json:"skipped_dates,omitempty"`

	byPhase map[string]models.PhaseStatus
}

// EvaluateLocks runs the policy with the default lead.
func EvaluateLocks(format Format, matches []models.Match, now time.Time) LockState {
	return NewLockPolicy(format, DefaultLockLead).Evaluate(matches, now)
}

// Evaluate computes the state of every phase at now.
//
// The first phase of the format that has matches opens on its own; any other
// phase opens once every match of its predecessor is final, an empty
// predecessor counting as final. From lockInstant (earliest first-phase
// kickoff minus the lead) on, everything is locked.
func (p LockPolicy) Evaluate(matches []models.Match, now time.Time) LockState {
	byPhase := make(map[string][]models.Match, len(p.Format.Phases))
	for _, m := range matches {
		tag := normPhase(m.Phase)
		if p.Format.HasPhase(tag) {
			byPhase[tag] = append(byPhase[tag], m)
		}
	}

	state := LockState{
		Format:  p.Format.Name,
		Now:     now,
		Phases:  make([]models.PhaseStatus, 0, len(p.Format.Phases)),
		byPhase: make(map[string]models.PhaseStatus, len(p.Format.Phases)),
	}

	for _, tag := range p.Format.Phases {
		if len(byPhase[tag]) > 0 {
			state.FirstPhase = tag
			break
		}
	}

	if state.FirstPhase != "" {
		var earliest time.Time
		for _, m := range byPhase[state.FirstPhase] {
			if !m.HasDate() {
				state.SkippedDates = append(state.SkippedDates, m.ID)
				continue
			}
			if earliest.IsZero() || m.Date.Before(earliest) {
				earliest = m.Date
			}
		}
		if !earliest.IsZero() {
			instant := earliest.Add(-p.Lead)
			state.LockInstant = &instant
			state.GloballyLocked = !now.Before(instant)
		}
	}

	for _, tag := range p.Format.Phases {
		status := models.PhaseStatus{
			Phase:               tag,
			MatchCount:          len(byPhase[tag]),
			AllMatchesCompleted: allFinished(byPhase[tag]),
		}
		switch {
		case state.GloballyLocked:
			status.IsUnlocked = false
		case tag == state.FirstPhase:
			status.IsUnlocked = true
		default:
			prev, ok := p.Format.Predecessor(tag)
			// Phases before the first populated one have no matches to pick.
			status.IsUnlocked = ok && allFinished(byPhase[prev]) && state.FirstPhase != "" && p.after(tag, state.FirstPhase)
		}
		state.Phases = append(state.Phases, status)
		state.byPhase[tag] = status
	}

	return state
}

// after reports whether phase a is played after phase b in the format.
func (p LockPolicy) after(a, b string) bool {
	ia, ib := -1, -1
	for i, tag := range p.Format.Phases {
		if tag == a {
			ia = i
		}
		if tag == b {
			ib = i
		}
	}
	return ia > ib && ib >= 0
}

// Phase returns the status of one phase; unknown phases report locked.
func (s LockState) Phase(tag string) (models.PhaseStatus, bool) {
	st, ok := s.byPhase[normPhase(tag)]
	return st, ok
}

// IsPhaseUnlocked reports whether picks in the phase may change.
func (s LockState) IsPhaseUnlocked(tag string) bool {
	st, ok := s.Phase(tag)
	return ok && st.IsUnlocked
}

// IsMatchLocked is true once the global lock instant has passed or while the
// match's phase is locked. Matches outside the format are always locked.
func (s LockState) IsMatchLocked(m models.Match) bool {
	if s.GloballyLocked {
		return true
	}
	return !s.IsPhaseUnlocked(m.Phase)
}

func allFinished(matches []models.Match) bool {
	for _, m := range matches {
		if !m.IsFinished() {
			return false
		}
	}
	return true
}
