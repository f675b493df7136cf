// Package scoring awards points for a score prediction against the final result.
package scoring

import (
	"errors"
	"fmt"

	"github.com/Dosada05/prode/models"
)

// Points of the rubric. A perfect call earns all four: 1+1+2+3 = 7.
const (
	PointsHomeGoals  = 1
	PointsAwayGoals  = 1
	PointsOutcome    = 2
	PointsExactScore = 3

	JokerMultiplier = 2
)

var ErrInvalidScore = errors.New("INVALID_SCORE: scores must be present and non-negative")

// Score applies the rubric to an actual result and a prediction. Every score
// must be present and non-negative; anything else is ErrInvalidScore, never a
// silent 0.
func Score(actualHome, actualAway, predictedHome, predictedAway *int, isJoker bool) (int, error) {
	if err := checkScore("actual home", actualHome); err != nil {
		return 0, err
	}
	if err := checkScore("actual away", actualAway); err != nil {
		return 0, err
	}
	if err := checkScore("predicted home", predictedHome); err != nil {
		return 0, err
	}
	if err := checkScore("predicted away", predictedAway); err != nil {
		return 0, err
	}

	ah, aa, ph, pa := *actualHome, *actualAway, *predictedHome, *predictedAway

	points := 0
	if ph == ah {
		points += PointsHomeGoals
	}
	if pa == aa {
		points += PointsAwayGoals
	}
	if sign(ah-aa) == sign(ph-pa) {
		points += PointsOutcome
	}
	if ph == ah && pa == aa {
		points += PointsExactScore
	}
	if isJoker {
		points *= JokerMultiplier
	}
	return points, nil
}

// ScoreMatch scores a stored prediction against a match record. Unfinished
// matches earn 0 without error; a finished match missing a score is invalid.
func ScoreMatch(match models.Match, prediction models.Prediction) (int, error) {
	if !match.IsFinished() {
		return 0, nil
	}
	if prediction.MatchID != match.ID {
		return 0, fmt.Errorf("prediction for match %d scored against match %d", prediction.MatchID, match.ID)
	}
	points, err := Score(match.HomeScore, match.AwayScore, &prediction.HomeScore, &prediction.AwayScore, prediction.IsJoker)
	if err != nil {
		return 0, fmt.Errorf("match %d: %w", match.ID, err)
	}
	return points, nil
}

// MaxPoints is the best a single prediction can earn.
func MaxPoints(isJoker bool) int {
	total := PointsHomeGoals + PointsAwayGoals + PointsOutcome + PointsExactScore
	if isJoker {
		total *= JokerMultiplier
	}
	return total
}

func checkScore(field string, v *int) error {
	if v == nil {
		return fmt.Errorf("%w: %s score is missing", ErrInvalidScore, field)
	}
	if *v < 0 {
		return fmt.Errorf("%w: %s score is %d", ErrInvalidScore, field, *v)
	}
	return nil
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
