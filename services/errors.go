package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	ErrNotFound         = errors.New("requested resource not found")
	ErrMatchNotFound    = errors.New("match not found")
	ErrValidationFailed = errors.New("validation failed")

	ErrIncompletePrediction = errors.New("INCOMPLETE_PREDICTION: both scores are required, or neither to clear the prediction")
	ErrPredictionLocked     = errors.New("PREDICTION_LOCKED: the match has started or is no longer scheduled")
	ErrTiebreakerLocked     = errors.New("TIEBREAKER_LOCKED: the knockout stage lock has passed")

	ErrStorageDisabled = errors.New("snapshot storage is not configured")
)
