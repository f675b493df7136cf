package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/prode/models"
	"github.com/Dosada05/prode/repositories"
	"github.com/Dosada05/prode/scoring"
)

// SavePredictionInput carries nullable scores: both nil clears the prediction.
type SavePredictionInput struct {
	HomeScore *int `json:"home_score"`
	AwayScore *int `json:"away_score"`
	IsJoker   bool `json:"is_joker"`
}

type UserScore struct {
	UserID       int `json:"user_id"`
	TournamentID int `json:"tournament_id"`
	Points       int `json:"points"`
	Scored       int `json:"scored_predictions"`
	Exact        int `json:"exact_predictions"`
}

type PredictionService interface {
	// SavePrediction stores or clears a prediction. A cleared prediction
	// returns nil without error.
	SavePrediction(ctx context.Context, userID, tournamentID, matchID int, input SavePredictionInput) (*models.Prediction, error)
	ListPredictions(ctx context.Context, userID, tournamentID int) ([]models.ScoredPrediction, error)
	UserScore(ctx context.Context, userID, tournamentID int) (*UserScore, error)
}

type predictionService struct {
	matchRepo      repositories.MatchRepository
	predictionRepo repositories.PredictionRepository
	clock          clockwork.Clock
	logger         *slog.Logger
}

func NewPredictionService(
	matchRepo repositories.MatchRepository,
	predictionRepo repositories.PredictionRepository,
	clock clockwork.Clock,
	logger *slog.Logger,
) PredictionService {
	return &predictionService{
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		clock:          clock,
		logger:         logger,
	}
}

// predictionLocked is true once the match left SCHEDULED or its kickoff passed.
func predictionLocked(m models.Match, now time.Time) bool {
	if m.Status != models.MatchStatusScheduled {
		return true
	}
	return m.HasDate() && !now.Before(m.Date)
}

func (s *predictionService) SavePrediction(ctx context.Context, userID, tournamentID, matchID int, input SavePredictionInput) (*models.Prediction, error) {
	clearing := input.HomeScore == nil && input.AwayScore == nil
	if !clearing {
		if input.HomeScore == nil || input.AwayScore == nil {
			return nil, ErrIncompletePrediction
		}
		if err := validateScores(input.HomeScore, input.AwayScore); err != nil {
			return nil, err
		}
	}

	m, err := loadMatch(ctx, s.matchRepo, tournamentID, matchID)
	if err != nil {
		return nil, err
	}
	if predictionLocked(*m, s.clock.Now()) {
		return nil, fmt.Errorf("%w: match %d", ErrPredictionLocked, matchID)
	}

	if clearing {
		err := s.predictionRepo.Delete(ctx, userID, matchID)
		if err != nil && !errors.Is(err, repositories.ErrPredictionNotFound) {
			return nil, fmt.Errorf("failed to clear prediction: %w", err)
		}
		return nil, nil
	}

	p := &models.Prediction{
		UserID:       userID,
		TournamentID: tournamentID,
		MatchID:      matchID,
		HomeScore:    *input.HomeScore,
		AwayScore:    *input.AwayScore,
		IsJoker:      input.IsJoker,
	}
	if err := s.predictionRepo.Upsert(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrPredictionMatchInvalid) {
			return nil, fmt.Errorf("%w: %d", ErrMatchNotFound, matchID)
		}
		return nil, fmt.Errorf("failed to save prediction: %w", err)
	}
	return p, nil
}

func (s *predictionService) ListPredictions(ctx context.Context, userID, tournamentID int) ([]models.ScoredPrediction, error) {
	var (
		matches     []models.Match
		predictions []models.Prediction
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		matches, err = s.matchRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		predictions, err = s.predictionRepo.ListByUser(gCtx, userID, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list predictions of user %d: %w", userID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s.score(ctx, matches, predictions), nil
}

// score attaches points to predictions. A prediction whose match vanished or
// cannot be scored earns nothing and is logged.
func (s *predictionService) score(ctx context.Context, matches []models.Match, predictions []models.Prediction) []models.ScoredPrediction {
	byID := make(map[int]models.Match, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}

	out := make([]models.ScoredPrediction, 0, len(predictions))
	for _, p := range predictions {
		sp := models.ScoredPrediction{Prediction: p}
		m, ok := byID[p.MatchID]
		if !ok {
			out = append(out, sp)
			continue
		}
		points, err := scoring.ScoreMatch(m, p)
		if err != nil {
			s.logger.WarnContext(ctx, "prediction could not be scored",
				slog.Int("match_id", p.MatchID),
				slog.Int("user_id", p.UserID),
				slog.Any("error", err),
			)
		}
		sp.Points = points
		sp.Finished = m.IsFinished()
		out = append(out, sp)
	}
	return out
}

func (s *predictionService) UserScore(ctx context.Context, userID, tournamentID int) (*UserScore, error) {
	scored, err := s.ListPredictions(ctx, userID, tournamentID)
	if err != nil {
		return nil, err
	}
	total := &UserScore{UserID: userID, TournamentID: tournamentID}
	for _, sp := range scored {
		if !sp.Finished {
			continue
		}
		total.Points += sp.Points
		total.Scored++
		if sp.Points >= scoring.MaxPoints(false) {
			total.Exact++
		}
	}
	return total, nil
}
