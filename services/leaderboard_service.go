package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/prode/brackets"
	"github.com/Dosada05/prode/models"
	"github.com/Dosada05/prode/repositories"
	"github.com/Dosada05/prode/scoring"
)

type LeaderboardService interface {
	// Leaderboard ranks the users of a tournament, or of one league when
	// leagueID is not 0.
	Leaderboard(ctx context.Context, tournamentID, leagueID int) (*models.Leaderboard, error)
	SaveTiebreaker(ctx context.Context, userID, tournamentID, leagueID, totalGoals int) (*models.TiebreakerGuess, error)
}

type leaderboardService struct {
	matchRepo      repositories.MatchRepository
	predictionRepo repositories.PredictionRepository
	bracketRepo    repositories.BracketRepository
	tiebreakerRepo repositories.TiebreakerRepository
	catalog        CompetitionCatalog
	clock          clockwork.Clock
	logger         *slog.Logger
}

func NewLeaderboardService(
	matchRepo repositories.MatchRepository,
	predictionRepo repositories.PredictionRepository,
	bracketRepo repositories.BracketRepository,
	tiebreakerRepo repositories.TiebreakerRepository,
	catalog CompetitionCatalog,
	clock clockwork.Clock,
	logger *slog.Logger,
) LeaderboardService {
	return &leaderboardService{
		matchRepo:      matchRepo,
		predictionRepo: predictionRepo,
		bracketRepo:    bracketRepo,
		tiebreakerRepo: tiebreakerRepo,
		catalog:        catalog,
		clock:          clock,
		logger:         logger,
	}
}

func (s *leaderboardService) Leaderboard(ctx context.Context, tournamentID, leagueID int) (*models.Leaderboard, error) {
	var (
		matches     []models.Match
		entries     []models.BracketEntry
		tiebreakers []models.TiebreakerGuess
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
		entries, err = s.bracketRepo.ListByLeague(gCtx, tournamentID, leagueID)
		if err != nil {
			return fmt.Errorf("failed to list brackets for tournament %d: %w", tournamentID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		tiebreakers, err = s.tiebreakerRepo.ListByLeague(gCtx, tournamentID, leagueID)
		if err != nil {
			return fmt.Errorf("failed to list tiebreakers for tournament %d: %w", tournamentID, err)
		}
		return nil
	})
	if leagueID == 0 {
		g.Go(func() error {
			var err error
			predictions, err = s.predictionRepo.ListByTournament(gCtx, tournamentID, nil)
			if err != nil {
				return fmt.Errorf("failed to list predictions for tournament %d: %w", tournamentID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make(map[int]*models.LeaderboardRow)
	row := func(userID int) *models.LeaderboardRow {
		r, ok := rows[userID]
		if !ok {
			r = &models.LeaderboardRow{UserID: userID}
			rows[userID] = r
		}
		return r
	}
	for _, e := range entries {
		row(e.UserID).BracketPoints = e.Points
	}
	for _, t := range tiebreakers {
		guess := t.TotalGoals
		row(t.UserID).TiebreakerGuess = &guess
	}

	// A league's members are known only through their league bracket or
	// tie-breaker; their predictions are tournament-wide.
	if leagueID != 0 && len(rows) > 0 {
		members := make([]int, 0, len(rows))
		for id := range rows {
			members = append(members, id)
		}
		sort.Ints(members)
		var err error
		predictions, err = s.predictionRepo.ListByTournament(ctx, tournamentID, members)
		if err != nil {
			return nil, fmt.Errorf("failed to list predictions for league %d: %w", leagueID, err)
		}
	}

	byID := make(map[int]models.Match, len(matches))
	actualGoals := 0
	for _, m := range matches {
		byID[m.ID] = m
		if m.IsFinished() && m.HasScore() {
			actualGoals += *m.HomeScore + *m.AwayScore
		}
	}
	for _, p := range predictions {
		r := row(p.UserID)
		m, ok := byID[p.MatchID]
		if !ok {
			continue
		}
		points, err := scoring.ScoreMatch(m, p)
		if err != nil {
			s.logger.WarnContext(ctx, "prediction could not be scored",
				slog.Int("match_id", p.MatchID),
				slog.Int("user_id", p.UserID),
				slog.Any("error", err),
			)
			continue
		}
		r.PredictionPoints += points
	}

	board := &models.Leaderboard{
		TournamentID:     tournamentID,
		LeagueID:         leagueID,
		ActualGoalsSoFar: actualGoals,
		Rows:             make([]models.LeaderboardRow, 0, len(rows)),
	}
	for _, r := range rows {
		r.TotalPoints = r.PredictionPoints + r.BracketPoints
		if r.TiebreakerGuess != nil {
			delta := *r.TiebreakerGuess - actualGoals
			if delta < 0 {
				delta = -delta
			}
			r.TiebreakerDelta = &delta
		}
		board.Rows = append(board.Rows, *r)
	}
	rankLeaderboard(board.Rows)
	return board, nil
}

// rankLeaderboard orders rows by total points, then by how close the
// tie-breaker guess is (no guess last), then by user id. Rows equal on points
// and tie-breaker distance share a position.
func rankLeaderboard(rows []models.LeaderboardRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if c := compareDelta(a.TiebreakerDelta, b.TiebreakerDelta); c != 0 {
			return c < 0
		}
		return a.UserID < b.UserID
	})
	for i := range rows {
		if i > 0 && rows[i].TotalPoints == rows[i-1].TotalPoints &&
			compareDelta(rows[i].TiebreakerDelta, rows[i-1].TiebreakerDelta) == 0 {
			rows[i].Position = rows[i-1].Position
			continue
		}
		rows[i].Position = i + 1
	}
}

func compareDelta(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case *a < *b:
		return -1
	case *a > *b:
		return 1
	}
	return 0
}

// SaveTiebreaker stores a total-goals guess. Guesses freeze with the bracket,
// at the global knockout lock.
func (s *leaderboardService) SaveTiebreaker(ctx context.Context, userID, tournamentID, leagueID, totalGoals int) (*models.TiebreakerGuess, error) {
	if totalGoals < 0 {
		return nil, fmt.Errorf("%w: total goals cannot be negative", ErrValidationFailed)
	}

	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	format := s.catalog.FormatFor(tournamentID, matches)
	state := brackets.NewLockPolicy(format, s.catalog.LockLeadFor(tournamentID)).Evaluate(matches, s.clock.Now())
	if state.GloballyLocked {
		return nil, ErrTiebreakerLocked
	}

	guess := &models.TiebreakerGuess{
		UserID:       userID,
		TournamentID: tournamentID,
		LeagueID:     leagueID,
		TotalGoals:   totalGoals,
	}
	if err := s.tiebreakerRepo.Upsert(ctx, guess); err != nil {
		return nil, fmt.Errorf("failed to save tiebreaker: %w", err)
	}
	return guess, nil
}
