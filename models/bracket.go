package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// BracketPicks maps a knockout match id to the team code the user picked to win it.
type BracketPicks map[int]string

// Clone returns an independent copy; a nil map clones to an empty one.
func (p BracketPicks) Clone() BracketPicks {
	out := make(BracketPicks, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// MarshalJSON writes the map with string keys, which is what JSON requires
// and what clients send back.
func (p BracketPicks) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(p))
	for k, v := range p {
		m[strconv.Itoa(k)] = v
	}
	return json.Marshal(m)
}

func (p *BracketPicks) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(BracketPicks, len(m))
	for k, v := range m {
		id, err := strconv.Atoi(k)
		if err != nil {
			return fmt.Errorf("bracket pick key %q is not a match id", k)
		}
		out[id] = v
	}
	*p = out
	return nil
}

// Value stores the picks as JSONB.
func (p BracketPicks) Value() (driver.Value, error) {
	b, err := p.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *BracketPicks) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*p = BracketPicks{}
		return nil
	case []byte:
		return p.UnmarshalJSON(v)
	case string:
		return p.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("cannot scan %T into BracketPicks", src)
	}
}

// BracketEntry is the stored bracket of one user in one tournament, optionally
// scoped to a league (LeagueID 0 means the global bracket).
type BracketEntry struct {
	ID           int          `json:"id" db:"id"`
	UserID       int          `json:"user_id" db:"user_id"`
	TournamentID int          `json:"tournament_id" db:"tournament_id"`
	LeagueID     int          `json:"league_id" db:"league_id"`
	Picks        BracketPicks `json:"picks" db:"picks"`
	Points       int          `json:"points" db:"points"`
	UpdatedAt    time.Time    `json:"updated_at" db:"updated_at"`
}
