package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/prode/brackets"
	"github.com/Dosada05/prode/events"
	"github.com/Dosada05/prode/models"
	"github.com/Dosada05/prode/repositories"
	"github.com/Dosada05/prode/scoring"
)

// BracketView is a user's bracket as the client renders it.
type BracketView struct {
	UserID       int                 `json:"user_id"`
	TournamentID int                 `json:"tournament_id"`
	LeagueID     int                 `json:"league_id"`
	Format       string              `json:"format"`
	Points       int                 `json:"points"`
	Picks        models.BracketPicks `json:"picks"`
	Board        brackets.Board      `json:"board"`
	UpdatedAt    *time.Time          `json:"updated_at,omitempty"`
}

type BracketService interface {
	GetBracket(ctx context.Context, userID, tournamentID, leagueID int) (*BracketView, error)
	Pick(ctx context.Context, userID, tournamentID, leagueID, matchID int, team string) (*BracketView, error)
	// SubmitPicks applies several picks at once; if any is rejected none is stored.
	SubmitPicks(ctx context.Context, userID, tournamentID, leagueID int, picks models.BracketPicks) (*BracketView, error)
	// ClearBracket removes the picks that can still change; locked picks stay.
	ClearBracket(ctx context.Context, userID, tournamentID, leagueID int) (*BracketView, error)
	Locks(ctx context.Context, tournamentID int) (brackets.LockState, error)
	// RescoreBrackets recomputes the cached points of every bracket of the
	// tournament and returns how many entries changed.
	RescoreBrackets(ctx context.Context, tournamentID int) (int, error)
}

type bracketService struct {
	matchRepo   repositories.MatchRepository
	bracketRepo repositories.BracketRepository
	catalog     CompetitionCatalog
	publisher   events.Publisher
	clock       clockwork.Clock
	strictPicks bool
	logger      *slog.Logger
}

func NewBracketService(
	matchRepo repositories.MatchRepository,
	bracketRepo repositories.BracketRepository,
	catalog CompetitionCatalog,
	publisher events.Publisher,
	clock clockwork.Clock,
	strictPicks bool,
	logger *slog.Logger,
) BracketService {
	return &bracketService{
		matchRepo:   matchRepo,
		bracketRepo: bracketRepo,
		catalog:     catalog,
		publisher:   publisher,
		clock:       clock,
		strictPicks: strictPicks,
		logger:      logger,
	}
}

// bracketState is everything one request needs: the stored entry (or a fresh
// one) and a progression seeded with its picks.
type bracketState struct {
	entry       *models.BracketEntry
	progression *brackets.Progression
	format      brackets.Format
	now         time.Time
}

func (s *bracketService) load(ctx context.Context, userID, tournamentID, leagueID int) (*bracketState, error) {
	var (
		matches []models.Match
		entry   *models.BracketEntry
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
		entry, err = s.bracketRepo.Get(gCtx, userID, tournamentID, leagueID)
		if errors.Is(err, repositories.ErrBracketNotFound) {
			entry = &models.BracketEntry{UserID: userID, TournamentID: tournamentID, LeagueID: leagueID, Picks: models.BracketPicks{}}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load bracket of user %d: %w", userID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	format := s.catalog.FormatFor(tournamentID, matches)
	opts := []brackets.Option{brackets.WithLockLead(s.catalog.LockLeadFor(tournamentID))}
	if s.strictPicks {
		opts = append(opts, brackets.WithStrictPicks())
	}
	return &bracketState{
		entry:       entry,
		progression: brackets.NewProgression(format, matches, entry.Picks, opts...),
		format:      format,
		now:         s.clock.Now(),
	}, nil
}

func (s *bracketService) view(ctx context.Context, st *bracketState) *BracketView {
	board := st.progression.Board(st.now)
	logSkippedDates(ctx, s.logger, st.entry.TournamentID, board.Locks)
	v := &BracketView{
		UserID:       st.entry.UserID,
		TournamentID: st.entry.TournamentID,
		LeagueID:     st.entry.LeagueID,
		Format:       st.format.Name,
		Points:       st.entry.Points,
		Picks:        st.progression.Picks(),
		Board:        board,
	}
	if !st.entry.UpdatedAt.IsZero() {
		updated := st.entry.UpdatedAt
		v.UpdatedAt = &updated
	}
	return v
}

func (s *bracketService) save(ctx context.Context, st *bracketState) error {
	st.entry.Picks = st.progression.Picks()
	if err := s.bracketRepo.Save(ctx, nil, st.entry); err != nil {
		return fmt.Errorf("failed to save bracket of user %d: %w", st.entry.UserID, err)
	}
	publish(ctx, s.publisher, s.logger, events.BracketSaved, st.entry.TournamentID, map[string]int{
		"user_id":   st.entry.UserID,
		"league_id": st.entry.LeagueID,
		"picks":     len(st.entry.Picks),
	})
	return nil
}

func (s *bracketService) GetBracket(ctx context.Context, userID, tournamentID, leagueID int) (*BracketView, error) {
	st, err := s.load(ctx, userID, tournamentID, leagueID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, st), nil
}

func (s *bracketService) Pick(ctx context.Context, userID, tournamentID, leagueID, matchID int, team string) (*BracketView, error) {
	st, err := s.load(ctx, userID, tournamentID, leagueID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(team) == "" {
		err = st.progression.Unpick(matchID, st.now)
	} else {
		err = st.progression.Pick(matchID, team, st.now)
	}
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, st); err != nil {
		return nil, err
	}
	return s.view(ctx, st), nil
}

func (s *bracketService) SubmitPicks(ctx context.Context, userID, tournamentID, leagueID int, picks models.BracketPicks) (*BracketView, error) {
	if len(picks) == 0 {
		return nil, fmt.Errorf("%w: no picks submitted", ErrValidationFailed)
	}
	st, err := s.load(ctx, userID, tournamentID, leagueID)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(picks))
	for id := range picks {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	// The progression is discarded on the first rejection, so nothing partial is saved.
	for _, id := range ids {
		team := picks[id]
		if strings.TrimSpace(team) == "" {
			err = st.progression.Unpick(id, st.now)
		} else {
			err = st.progression.Pick(id, team, st.now)
		}
		if err != nil {
			return nil, err
		}
	}

	if err := s.save(ctx, st); err != nil {
		return nil, err
	}
	return s.view(ctx, st), nil
}

func (s *bracketService) ClearBracket(ctx context.Context, userID, tournamentID, leagueID int) (*BracketView, error) {
	st, err := s.load(ctx, userID, tournamentID, leagueID)
	if err != nil {
		return nil, err
	}

	kept := 0
	for id := range st.progression.Picks() {
		if err := st.progression.Unpick(id, st.now); err != nil {
			if errors.Is(err, brackets.ErrMatchLocked) || errors.Is(err, brackets.ErrMatchNotInBracket) {
				kept++
				continue
			}
			return nil, err
		}
	}
	if kept > 0 {
		s.logger.DebugContext(ctx, "locked picks kept on clear", slog.Int("user_id", userID), slog.Int("kept", kept))
	}

	if err := s.save(ctx, st); err != nil {
		return nil, err
	}
	return s.view(ctx, st), nil
}

func (s *bracketService) Locks(ctx context.Context, tournamentID int) (brackets.LockState, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return brackets.LockState{}, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	format := s.catalog.FormatFor(tournamentID, matches)
	state := brackets.NewLockPolicy(format, s.catalog.LockLeadFor(tournamentID)).Evaluate(matches, s.clock.Now())
	logSkippedDates(ctx, s.logger, tournamentID, state)
	return state, nil
}

func (s *bracketService) RescoreBrackets(ctx context.Context, tournamentID int) (int, error) {
	var (
		matches []models.Match
		entries []models.BracketEntry
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
		entries, err = s.bracketRepo.ListByTournament(gCtx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list brackets for tournament %d: %w", tournamentID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return 0, err
	}

	changed := make(map[int]int)
	for _, e := range entries {
		if points := scoring.BracketPoints(matches, e.Picks); points != e.Points {
			changed[e.ID] = points
		}
	}
	if err := s.bracketRepo.UpdatePoints(ctx, nil, changed); err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "brackets rescored", slog.Int("tournament_id", tournamentID), slog.Int("changed", len(changed)))
	return len(changed), nil
}
