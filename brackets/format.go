package brackets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Dosada05/prode/models"
)

// Format describes the knockout rounds of a competition: their play order and
// the single phase whose completion opens each of them.
type Format struct {
	Name         string            `yaml:"name" json:"name"`
	Phases       []string          `yaml:"phases" json:"phases"`
	Predecessors map[string]string `yaml:"predecessors" json:"predecessors"`
	Final        string            `yaml:"final" json:"final"`
}

var (
	// LeagueFormat is the 32-team knockout with a third-place playoff.
	LeagueFormat = Format{
		Name: "league",
		Phases: []string{
			models.PhaseRound32,
			models.PhaseRound16,
			models.PhaseQuarter,
			models.PhaseSemi,
			models.PhaseThirdPlace,
			models.PhaseFinal,
		},
		Predecessors: map[string]string{
			models.PhaseRound16:    models.PhaseRound32,
			models.PhaseQuarter:    models.PhaseRound16,
			models.PhaseSemi:       models.PhaseQuarter,
			models.PhaseThirdPlace: models.PhaseSemi,
			models.PhaseFinal:      models.PhaseSemi,
		},
		Final: models.PhaseFinal,
	}

	// ContinentalFormat starts at the round of 16 and has no third-place match.
	ContinentalFormat = Format{
		Name: "continental",
		Phases: []string{
			models.PhaseRound16,
			models.PhaseQuarterFinal,
			models.PhaseSemiFinal,
			models.PhaseFinal,
		},
		Predecessors: map[string]string{
			models.PhaseQuarterFinal: models.PhaseRound16,
			models.PhaseSemiFinal:    models.PhaseQuarterFinal,
			models.PhaseFinal:        models.PhaseSemiFinal,
		},
		Final: models.PhaseFinal,
	}
)

var ErrInvalidFormat = errors.New("invalid bracket format")

// BuiltinFormats returns the formats known without configuration, by name.
func BuiltinFormats() map[string]Format {
	return map[string]Format{
		LeagueFormat.Name:      LeagueFormat,
		ContinentalFormat.Name: ContinentalFormat,
	}
}

// DetectFormat guesses the layout from the phase tags present in a match list.
// Tags only the continental layout uses win; otherwise the league layout is assumed.
func DetectFormat(matches []models.Match) Format {
	for _, m := range matches {
		switch normPhase(m.Phase) {
		case models.PhaseQuarterFinal, models.PhaseSemiFinal:
			return ContinentalFormat
		}
	}
	return LeagueFormat
}

// HasPhase reports whether tag is one of the format's knockout phases.
func (f Format) HasPhase(tag string) bool {
	tag = normPhase(tag)
	for _, p := range f.Phases {
		if p == tag {
			return true
		}
	}
	return false
}

// Predecessor returns the phase gating tag, if any.
func (f Format) Predecessor(tag string) (string, bool) {
	prev, ok := f.Predecessors[normPhase(tag)]
	return prev, ok && prev != ""
}

// Validate checks a format loaded from configuration. Every phase except the
// first needs a predecessor that is itself a phase of the format and comes
// earlier in the play order.
func (f Format) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidFormat)
	}
	if len(f.Phases) == 0 {
		return fmt.Errorf("%w: %s has no phases", ErrInvalidFormat, f.Name)
	}
	order := make(map[string]int, len(f.Phases))
	for i, p := range f.Phases {
		if _, dup := order[p]; dup {
			return fmt.Errorf("%w: %s lists phase %s twice", ErrInvalidFormat, f.Name, p)
		}
		order[p] = i
	}
	for i, p := range f.Phases {
		prev, ok := f.Predecessors[p]
		if i == 0 {
			if ok && prev != "" {
				return fmt.Errorf("%w: %s first phase %s cannot have a predecessor", ErrInvalidFormat, f.Name, p)
			}
			continue
		}
		if !ok || prev == "" {
			return fmt.Errorf("%w: %s phase %s has no predecessor", ErrInvalidFormat, f.Name, p)
		}
		prevIdx, known := order[prev]
		if !known || prevIdx >= i {
			return fmt.Errorf("%w: %s phase %s must follow %s", ErrInvalidFormat, f.Name, p, prev)
		}
	}
	if _, ok := order[f.Final]; !ok {
		return fmt.Errorf("%w: %s final phase %q is not one of its phases", ErrInvalidFormat, f.Name, f.Final)
	}
	return nil
}

// Normalize upper-cases phase tags so that feed and configuration spellings agree.
func (f Format) Normalize() Format {
	out := Format{
		Name:         f.Name,
		Phases:       make([]string, len(f.Phases)),
		Predecessors: make(map[string]string, len(f.Predecessors)),
		Final:        normPhase(f.Final),
	}
	for i, p := range f.Phases {
		out.Phases[i] = normPhase(p)
	}
	for k, v := range f.Predecessors {
		out.Predecessors[normPhase(k)] = normPhase(v)
	}
	return out
}

func normPhase(tag string) string {
	return strings.ToUpper(strings.TrimSpace(tag))
}
