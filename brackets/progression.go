package brackets

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/prode/models"
)

var (
	ErrMatchLocked       = errors.New("MATCH_LOCKED: picks for this match can no longer change")
	ErrMatchNotInBracket = errors.New("match is not a knockout match of this bracket")
	ErrInvalidPick       = errors.New("INVALID_PICK: team is not one of the match's slot occupants")
)

// Slot is what a bracket position shows. Team is set only when the match
// record itself names a real team; a user's pick never fills a slot.
type Slot struct {
	Team          string `json:"team,omitempty"`
	Confirmed     bool   `json:"confirmed"`
	Placeholder   string `json:"placeholder,omitempty"`
	FeederMatchID *int   `json:"feeder_match_id,omitempty"`
}

type BoardMatch struct {
	MatchID   int                `json:"match_id"`
	BracketID *int               `json:"bracket_id,omitempty"`
	Phase     string             `json:"phase"`
	Date      time.Time          `json:"date"`
	Status    models.MatchStatus `json:"status"`
	HomeScore *int               `json:"home_score,omitempty"`
	AwayScore *int               `json:"away_score,omitempty"`
	Home      Slot               `json:"home"`
	Away      Slot               `json:"away"`
	Pick      string             `json:"pick,omitempty"`
	Locked    bool               `json:"locked"`
}

type BoardPhase struct {
	models.PhaseStatus
	Matches []BoardMatch `json:"matches"`
}

// Board is the read model of a user's bracket at one instant.
type Board struct {
	Locks     LockState    `json:"locks"`
	Phases    []BoardPhase `json:"phases"`
	Champion  string       `json:"champion,omitempty"`
	Finalists []string     `json:"finalists,omitempty"`
}

type Option func(*Progression)

// WithStrictPicks only accepts a pick naming one of the match's confirmed
// slot occupants.
func WithStrictPicks() Option {
	return func(p *Progression) { p.strict = true }
}

// WithLockLead overrides DefaultLockLead.
func WithLockLead(lead time.Duration) Option {
	return func(p *Progression) { p.policy = NewLockPolicy(p.policy.Format, lead) }
}

// Progression holds one user's picks over a snapshot of the tournament's
// matches. The pick map is copied in and out, so callers own persistence.
type Progression struct {
	policy  LockPolicy
	matches []models.Match
	byID    map[int]models.Match
	byPhase map[string][]models.Match
	feeders map[int]feederPair
	picks   models.BracketPicks
	strict  bool
}

func NewProgression(format Format, matches []models.Match, picks models.BracketPicks, opts ...Option) *Progression {
	p := &Progression{
		policy:  NewLockPolicy(format, DefaultLockLead),
		matches: matches,
		byID:    make(map[int]models.Match, len(matches)),
		picks:   picks.Clone(),
	}
	for _, opt := range opts {
		opt(p)
	}
	for _, m := range matches {
		if format.HasPhase(m.Phase) {
			p.byID[m.ID] = m
		}
	}
	p.byPhase = orderedPhaseMatches(format, matches)
	p.feeders = wireFeeders(format, p.byPhase)
	return p
}

// Locks evaluates the lock policy at now.
func (p *Progression) Locks(now time.Time) LockState {
	return p.policy.Evaluate(p.matches, now)
}

// IsMatchLocked reports whether the pick of a knockout match is frozen at now.
func (p *Progression) IsMatchLocked(matchID int, now time.Time) (bool, error) {
	m, ok := p.byID[matchID]
	if !ok {
		return true, fmt.Errorf("%w: match %d", ErrMatchNotInBracket, matchID)
	}
	return p.Locks(now).IsMatchLocked(m), nil
}

// Pick records team as the user's winner for a match, replacing any earlier
// pick. When it returns an error the pick map is untouched.
func (p *Progression) Pick(matchID int, team string, now time.Time) error {
	m, ok := p.byID[matchID]
	if !ok {
		return fmt.Errorf("%w: match %d", ErrMatchNotInBracket, matchID)
	}
	if p.Locks(now).IsMatchLocked(m) {
		return fmt.Errorf("%w: match %d (%s)", ErrMatchLocked, matchID, m.Phase)
	}
	team = strings.TrimSpace(team)
	if team == "" {
		return fmt.Errorf("%w: empty team for match %d", ErrInvalidPick, matchID)
	}
	if p.strict {
		home, away := p.slots(m)
		if !(home.Confirmed && home.Team == team) && !(away.Confirmed && away.Team == team) {
			return fmt.Errorf("%w: %q for match %d", ErrInvalidPick, team, matchID)
		}
	}
	p.picks[matchID] = team
	return nil
}

// Unpick removes the pick for a match, subject to the same locks as Pick.
func (p *Progression) Unpick(matchID int, now time.Time) error {
	m, ok := p.byID[matchID]
	if !ok {
		return fmt.Errorf("%w: match %d", ErrMatchNotInBracket, matchID)
	}
	if p.Locks(now).IsMatchLocked(m) {
		return fmt.Errorf("%w: match %d (%s)", ErrMatchLocked, matchID, m.Phase)
	}
	delete(p.picks, matchID)
	return nil
}

// Picks returns a copy of the current pick map.
func (p *Progression) Picks() models.BracketPicks {
	return p.picks.Clone()
}

// Slots returns what the home and away positions of a match display.
func (p *Progression) Slots(matchID int) (Slot, Slot, error) {
	m, ok := p.byID[matchID]
	if !ok {
		return Slot{}, Slot{}, fmt.Errorf("%w: match %d", ErrMatchNotInBracket, matchID)
	}
	home, away := p.slots(m)
	return home, away, nil
}

func (p *Progression) slots(m models.Match) (Slot, Slot) {
	wiring := p.feeders[m.ID]
	return slotFor(m.HomeTeam, wiring.Home), slotFor(m.AwayTeam, wiring.Away)
}

func slotFor(team string, feeder *int) Slot {
	if !models.IsPlaceholderTeam(team) {
		return Slot{Team: strings.TrimSpace(team), Confirmed: true}
	}
	return Slot{Placeholder: strings.TrimSpace(team), FeederMatchID: feeder}
}

// Champion is the pick recorded against the final; no pick means no champion.
func (p *Progression) Champion() (string, bool) {
	final, ok := p.finalMatch()
	if !ok {
		return "", false
	}
	team, ok := p.picks[final.ID]
	if !ok || team == "" {
		return "", false
	}
	return team, true
}

// Finalists are the picks recorded against the matches feeding the final,
// in bracket order.
func (p *Progression) Finalists() []string {
	final := p.policy.Format.Final
	prev, ok := p.policy.Format.Predecessor(final)
	if !ok {
		return nil
	}
	var out []string
	for _, m := range p.byPhase[prev] {
		if team, ok := p.picks[m.ID]; ok && team != "" {
			out = append(out, team)
		}
	}
	return out
}

func (p *Progression) finalMatch() (models.Match, bool) {
	list := p.byPhase[normPhase(p.policy.Format.Final)]
	if len(list) == 0 {
		return models.Match{}, false
	}
	return list[0], true
}

// Board assembles the full bracket view at now.
func (p *Progression) Board(now time.Time) Board {
	locks := p.Locks(now)
	board := Board{
		Locks:     locks,
		Phases:    make([]BoardPhase, 0, len(locks.Phases)),
		Finalists: p.Finalists(),
	}
	if champion, ok := p.Champion(); ok {
		board.Champion = champion
	}

	for _, status := range locks.Phases {
		list := p.byPhase[status.Phase]
		if len(list) == 0 {
			continue
		}
		phase := BoardPhase{PhaseStatus: status, Matches: make([]BoardMatch, 0, len(list))}
		for _, m := range list {
			home, away := p.slots(m)
			phase.Matches = append(phase.Matches, BoardMatch{
				MatchID:   m.ID,
				BracketID: m.BracketID,
				Phase:     status.Phase,
				Date:      m.Date,
				Status:    m.Status,
				HomeScore: m.HomeScore,
				AwayScore: m.AwayScore,
				Home:      home,
				Away:      away,
				Pick:      p.picks[m.ID],
				Locked:    locks.IsMatchLocked(m),
			})
		}
		board.Phases = append(board.Phases, phase)
	}
	return board
}
