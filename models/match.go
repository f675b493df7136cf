package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "SCHEDULED"
	MatchStatusLive      MatchStatus = "LIVE"
	MatchStatusFinished  MatchStatus = "FINISHED"
	MatchStatusCompleted MatchStatus = "COMPLETED"
)

var (
	ErrUnparseableDate   = errors.New("UNPARSEABLE_DATE: match date cannot be parsed")
	ErrScorePairMismatch = errors.New("home and away scores must be both present or both absent")
	ErrFinishedNoScore   = errors.New("finished match must carry both scores")
	ErrInvalidStatus     = errors.New("invalid match status")
)

// Match is the authoritative record of a fixture as supplied by the results feed.
// HomeTeam/AwayTeam may hold placeholders ("1A", "W49", "TBD") until the slot is decided.
type Match struct {
	ID           int         `json:"id"`
	TournamentID int         `json:"tournament_id"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	HomeScore    *int        `json:"home_score,omitempty"`
	AwayScore    *int        `json:"away_score,omitempty"`
	Status       MatchStatus `json:"status"`
	Phase        string      `json:"phase"`
	BracketID    *int        `json:"bracket_id,omitempty"`
	Date         time.Time   `json:"date"`
}

func (s MatchStatus) IsValid() bool {
	switch s {
	case MatchStatusScheduled, MatchStatusLive, MatchStatusFinished, MatchStatusCompleted:
		return true
	}
	return false
}

// IsFinished reports whether the result is final (FINISHED or COMPLETED).
func (s MatchStatus) IsFinished() bool {
	return s == MatchStatusFinished || s == MatchStatusCompleted
}

func (m Match) IsFinished() bool {
	return m.Status.IsFinished()
}

func (m Match) HasScore() bool {
	return m.HomeScore != nil && m.AwayScore != nil
}

// HasDate is false for matches whose date was missing or could not be parsed.
func (m Match) HasDate() bool {
	return !m.Date.IsZero()
}

// Validate checks the score/status invariants of a match record.
func (m Match) Validate() error {
	if !m.Status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, m.Status)
	}
	if (m.HomeScore == nil) != (m.AwayScore == nil) {
		return ErrScorePairMismatch
	}
	if m.IsFinished() && !m.HasScore() {
		return ErrFinishedNoScore
	}
	return nil
}

var matchDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseMatchDate parses a feed date. Dates without a zone are read as UTC.
func ParseMatchDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrUnparseableDate)
	}
	for _, layout := range matchDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableDate, raw)
}

// IsPlaceholderTeam reports whether a slot value is not yet a real team code.
// Real codes are letters only (ARG, BRA, ...); feeds fill undecided slots with
// seeds like "1A", "W49" or "TBD".
func IsPlaceholderTeam(code string) bool {
	code = strings.TrimSpace(code)
	if code == "" {
		return true
	}
	switch strings.ToUpper(code) {
	case "TBD", "TBA", "?":
		return true
	}
	return strings.ContainsAny(code, "0123456789")
}

func IntPtr(v int) *int {
	return &v
}
