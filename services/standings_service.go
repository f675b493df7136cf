package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/prode/events"
	"github.com/Dosada05/prode/models"
	"github.com/Dosada05/prode/repositories"
	"github.com/Dosada05/prode/standings"
	"github.com/Dosada05/prode/storage"
)

// StandingsSnapshot is the document exported to object storage.
type StandingsSnapshot struct {
	TournamentID int                     `json:"tournament_id"`
	GeneratedAt  time.Time               `json:"generated_at"`
	Groups       []models.GroupStandings `json:"groups"`
}

type SnapshotResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type StandingsService interface {
	OfficialStandings(ctx context.Context, tournamentID int) ([]models.GroupStandings, error)
	SimulatedStandings(ctx context.Context, tournamentID, userID int) ([]models.GroupStandings, error)
	ExportSnapshot(ctx context.Context, tournamentID int) (*SnapshotResult, error)
}

type standingsService struct {
	matchRepo      repositories.MatchRepository
	predictionRepo repositories.PredictionRepository
	store          storage.ObjectStore
	publisher      events.Publisher
	clock          clockwork.Clock
	logger         *slog.Logger
}

// NewStandingsService builds the service; store may be nil, in which case
// snapshots cannot be exported.
func NewStandingsService(
	matchRepo repositories.MatchRepository,
	predictionRepo repositories.PredictionRepository,
	store storage.ObjectStore,
	publisher events.Publisher,
	clock clockwork.Clock,
	logger *slog.Logger,
) StandingsService {
	return &standingsService{
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		store:          store,
		publisher:      publisher,
		clock:          clock,
		logger:         logger,
	}
}

func (s *standingsService) OfficialStandings(ctx context.Context, tournamentID int) ([]models.GroupStandings, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	return standings.Official(matches), nil
}

func (s *standingsService) SimulatedStandings(ctx context.Context, tournamentID, userID int) ([]models.GroupStandings, error) {
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
	return standings.Simulated(matches, predictions), nil
}

func (s *standingsService) ExportSnapshot(ctx context.Context, tournamentID int) (*SnapshotResult, error) {
	if s.store == nil {
		return nil, ErrStorageDisabled
	}
	groups, err := s.OfficialStandings(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	body, err := json.Marshal(StandingsSnapshot{TournamentID: tournamentID, GeneratedAt: now, Groups: groups})
	if err != nil {
		return nil, fmt.Errorf("failed to encode standings snapshot: %w", err)
	}

	key := storage.SnapshotKey(tournamentID, "standings", now)
	uploaded, err := s.store.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to export standings of tournament %d: %w", tournamentID, err)
	}

	result := &SnapshotResult{Key: uploaded.Key, URL: uploaded.Location}
	s.logger.InfoContext(ctx, "standings snapshot exported", slog.Int("tournament_id", tournamentID), slog.String("key", result.Key))
	publish(ctx, s.publisher, s.logger, events.StandingsExported, tournamentID, result)
	return result, nil
}
