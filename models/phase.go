package models

import "strings"

// Knockout phase tags. Group-stage matches carry the group letter instead.
const (
	PhaseRound32      = "ROUND_32"
	PhaseRound16      = "ROUND_16"
	PhaseQuarter      = "QUARTER"
	PhaseSemi         = "SEMI"
	PhaseFinal        = "FINAL"
	PhaseThirdPlace   = "3RD_PLACE"
	PhaseQuarterFinal = "QUARTER_FINAL"
	PhaseSemiFinal    = "SEMI_FINAL"
)

var knockoutPhases = map[string]bool{
	PhaseRound32:      true,
	PhaseRound16:      true,
	PhaseQuarter:      true,
	PhaseSemi:         true,
	PhaseFinal:        true,
	PhaseThirdPlace:   true,
	PhaseQuarterFinal: true,
	PhaseSemiFinal:    true,
}

// IsKnockoutPhase reports whether tag names a bracket round of either
// supported bracket layout.
func IsKnockoutPhase(tag string) bool {
	return knockoutPhases[strings.ToUpper(strings.TrimSpace(tag))]
}

// RegisterKnockoutPhase adds a tag used by a custom bracket format so that
// its matches are kept out of the group tables. Not safe for concurrent use;
// call it while loading configuration.
func RegisterKnockoutPhase(tag string) {
	knockoutPhases[strings.ToUpper(strings.TrimSpace(tag))] = true
}

// PhaseStatus is the derived lock state of one knockout phase.
type PhaseStatus struct {
	Phase               string `json:"phase"`
	IsUnlocked          bool   `json:"is_unlocked"`
	AllMatchesCompleted bool   `json:"all_matches_completed"`
	MatchCount          int    `json:"match_count"`
}
