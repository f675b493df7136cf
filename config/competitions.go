package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Dosada05/prode/brackets"
	"github.com/Dosada05/prode/models"
)

var ErrInvalidCompetitions = errors.New("invalid competitions file")

// CompetitionConfig binds one tournament to its bracket layout.
type CompetitionConfig struct {
	ID              int    `yaml:"id"`
	Name            string `yaml:"name"`
	Format          string `yaml:"format"`
	LockLeadMinutes *int   `yaml:"lock_lead_minutes"`
}

type competitionsFile struct {
	Formats     []brackets.Format   `yaml:"formats"`
	Tournaments []CompetitionConfig `yaml:"tournaments"`
}

// Competitions resolves bracket formats and lock leads per tournament.
// Tournaments that are not listed fall back to format detection and the
// default lead.
type Competitions struct {
	defaultLead time.Duration
	formats     map[string]brackets.Format
	tournaments map[int]CompetitionConfig
}

// NewCompetitions returns a catalog with only the builtin formats.
func NewCompetitions(defaultLead time.Duration) *Competitions {
	return &Competitions{
		defaultLead: defaultLead,
		formats:     brackets.BuiltinFormats(),
		tournaments: make(map[int]CompetitionConfig),
	}
}

// LoadCompetitions reads the YAML catalog at path. An empty path yields the
// builtin catalog.
func LoadCompetitions(path string, defaultLead time.Duration) (*Competitions, error) {
	if path == "" {
		return NewCompetitions(defaultLead), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read competitions file %s: %w", path, err)
	}
	return ParseCompetitions(data, defaultLead)
}

// ParseCompetitions decodes and validates a catalog. Custom phase tags are
// registered as knockout phases so group standings skip them.
func ParseCompetitions(data []byte, defaultLead time.Duration) (*Competitions, error) {
	var file competitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCompetitions, err)
	}

	c := NewCompetitions(defaultLead)
	for _, raw := range file.Formats {
		f := raw.Normalize()
		if _, builtin := c.formats[f.Name]; builtin {
			return nil, fmt.Errorf("%w: format %q shadows a builtin format", ErrInvalidCompetitions, f.Name)
		}
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCompetitions, err)
		}
		for _, phase := range f.Phases {
			models.RegisterKnockoutPhase(phase)
		}
		c.formats[f.Name] = f
	}

	for _, t := range file.Tournaments {
		if t.ID <= 0 {
			return nil, fmt.Errorf("%w: tournament id must be positive, got %d", ErrInvalidCompetitions, t.ID)
		}
		if _, dup := c.tournaments[t.ID]; dup {
			return nil, fmt.Errorf("%w: tournament %d listed twice", ErrInvalidCompetitions, t.ID)
		}
		if t.Format != "" {
			if _, ok := c.formats[t.Format]; !ok {
				return nil, fmt.Errorf("%w: tournament %d uses unknown format %q", ErrInvalidCompetitions, t.ID, t.Format)
			}
		}
		if t.LockLeadMinutes != nil && *t.LockLeadMinutes < 0 {
			return nil, fmt.Errorf("%w: tournament %d has a negative lock lead", ErrInvalidCompetitions, t.ID)
		}
		c.tournaments[t.ID] = t
	}
	return c, nil
}

// FormatFor returns the configured format, or the one detected from matches.
func (c *Competitions) FormatFor(tournamentID int, matches []models.Match) brackets.Format {
	if t, ok := c.tournaments[tournamentID]; ok && t.Format != "" {
		return c.formats[t.Format]
	}
	return brackets.DetectFormat(matches)
}

func (c *Competitions) LockLeadFor(tournamentID int) time.Duration {
	if t, ok := c.tournaments[tournamentID]; ok && t.LockLeadMinutes != nil {
		return time.Duration(*t.LockLeadMinutes) * time.Minute
	}
	return c.defaultLead
}

// Tournaments lists the configured tournaments by id.
func (c *Competitions) Tournaments() []CompetitionConfig {
	out := make([]CompetitionConfig, 0, len(c.tournaments))
	for _, t := range c.tournaments {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
