package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/Dosada05/prode/brackets"
	"github.com/Dosada05/prode/events"
	"github.com/Dosada05/prode/models"
	"github.com/Dosada05/prode/repositories"
	"github.com/Dosada05/prode/scoring"
)

// ImportMatchInput is one fixture of a results feed. Date is the feed's raw
// string; a value that cannot be parsed is imported as an unknown date.
type ImportMatchInput struct {
	ID        int    `json:"id"`
	HomeTeam  string `json:"home_team"`
	AwayTeam  string `json:"away_team"`
	HomeScore *int   `json:"home_score"`
	AwayScore *int   `json:"away_score"`
	Status    string `json:"status"`
	Phase     string `json:"phase"`
	BracketID *int   `json:"bracket_id"`
	Date      string `json:"date"`
}

type ImportSummary struct {
	Imported     int   `json:"imported"`
	UnknownDates []int `json:"unknown_dates,omitempty"`
}

type RecordResultInput struct {
	HomeScore *int               `json:"home_score"`
	AwayScore *int               `json:"away_score"`
	Status    models.MatchStatus `json:"status"`
}

type MatchService interface {
	ListMatches(ctx context.Context, tournamentID int) ([]models.Match, error)
	ImportMatches(ctx context.Context, tournamentID int, feed []ImportMatchInput) (*ImportSummary, error)
	RecordResult(ctx context.Context, tournamentID, matchID int, input RecordResultInput) (*models.Match, error)
}

type matchService struct {
	db               *sql.DB
	matchRepo        repositories.MatchRepository
	standingsService StandingsService
	bracketService   BracketService
	hub              Broadcaster
	publisher        events.Publisher
	exportSnapshots  bool
	logger           *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	standingsService StandingsService,
	bracketService BracketService,
	hub Broadcaster,
	publisher events.Publisher,
	exportSnapshots bool,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:               db,
		matchRepo:        matchRepo,
		standingsService: standingsService,
		bracketService:   bracketService,
		hub:              hub,
		publisher:        publisher,
		exportSnapshots:  exportSnapshots,
		logger:           logger,
	}
}

func (s *matchService) ListMatches(ctx context.Context, tournamentID int) ([]models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %d: %w", tournamentID, err)
	}
	if matches == nil {
		return []models.Match{}, nil
	}
	return matches, nil
}

// ImportMatches upserts a feed in one transaction. Every record is validated
// before anything is written.
func (s *matchService) ImportMatches(ctx context.Context, tournamentID int, feed []ImportMatchInput) (*ImportSummary, error) {
	if len(feed) == 0 {
		return nil, fmt.Errorf("%w: feed is empty", ErrValidationFailed)
	}

	summary := &ImportSummary{}
	matches := make([]models.Match, 0, len(feed))
	seen := make(map[int]bool, len(feed))
	for _, in := range feed {
		m, err := matchFromFeed(tournamentID, in)
		if err != nil {
			return nil, err
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("%w: match %d appears twice in the feed", ErrValidationFailed, m.ID)
		}
		seen[m.ID] = true
		if !m.HasDate() {
			summary.UnknownDates = append(summary.UnknownDates, m.ID)
		}
		matches = append(matches, m)
	}

	err := withTx(ctx, s.db, s.logger, func(exec repositories.SQLExecutor) error {
		for i := range matches {
			if err := s.matchRepo.Upsert(ctx, exec, &matches[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrMatchScoreInvalid) {
			return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
		return nil, fmt.Errorf("failed to import matches for tournament %d: %w", tournamentID, err)
	}
	summary.Imported = len(matches)

	if len(summary.UnknownDates) > 0 {
		sort.Ints(summary.UnknownDates)
		s.logger.WarnContext(ctx, "imported matches with an unknown date",
			slog.Int("tournament_id", tournamentID),
			slog.Any("match_ids", summary.UnknownDates),
			slog.Any("error", models.ErrUnparseableDate),
		)
	}
	s.logger.InfoContext(ctx, "matches imported", slog.Int("tournament_id", tournamentID), slog.Int("count", summary.Imported))

	broadcast(s.hub, tournamentID, brackets.MessageMatchUpdated, summary)
	publish(ctx, s.publisher, s.logger, events.MatchesImported, tournamentID, summary)
	s.afterResults(ctx, tournamentID, matches)
	return summary, nil
}

func matchFromFeed(tournamentID int, in ImportMatchInput) (models.Match, error) {
	if in.ID <= 0 {
		return models.Match{}, fmt.Errorf("%w: match id must be positive, got %d", ErrValidationFailed, in.ID)
	}
	status := models.MatchStatus(strings.ToUpper(strings.TrimSpace(in.Status)))
	if status == "" {
		status = models.MatchStatusScheduled
	}
	m := models.Match{
		ID:           in.ID,
		TournamentID: tournamentID,
		HomeTeam:     strings.TrimSpace(in.HomeTeam),
		AwayTeam:     strings.TrimSpace(in.AwayTeam),
		HomeScore:    in.HomeScore,
		AwayScore:    in.AwayScore,
		Status:       status,
		Phase:        strings.TrimSpace(in.Phase),
		BracketID:    in.BracketID,
	}
	if strings.TrimSpace(in.Date) != "" {
		// An unparseable date stays zero: the match is still imported.
		if date, err := models.ParseMatchDate(in.Date); err == nil {
			m.Date = date
		}
	}
	if err := validateScores(m.HomeScore, m.AwayScore); err != nil {
		return models.Match{}, fmt.Errorf("match %d: %w", m.ID, err)
	}
	if err := m.Validate(); err != nil {
		return models.Match{}, fmt.Errorf("%w: match %d: %w", ErrValidationFailed, m.ID, err)
	}
	return m, nil
}

func validateScores(home, away *int) error {
	if (home != nil && *home < 0) || (away != nil && *away < 0) {
		return fmt.Errorf("%w: scores cannot be negative", scoring.ErrInvalidScore)
	}
	return nil
}

// RecordResult stores a score and status change for one match, then pushes
// the update to viewers, rescoring brackets when a knockout match is decided.
func (s *matchService) RecordResult(ctx context.Context, tournamentID, matchID int, input RecordResultInput) (*models.Match, error) {
	m, err := loadMatch(ctx, s.matchRepo, tournamentID, matchID)
	if err != nil {
		return nil, err
	}

	if err := validateScores(input.HomeScore, input.AwayScore); err != nil {
		return nil, err
	}
	updated := *m
	updated.HomeScore = input.HomeScore
	updated.AwayScore = input.AwayScore
	if input.Status != "" {
		updated.Status = models.MatchStatus(strings.ToUpper(string(input.Status)))
	}
	if err := updated.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}

	err = withTx(ctx, s.db, s.logger, func(exec repositories.SQLExecutor) error {
		return s.matchRepo.UpdateResult(ctx, exec, matchID, updated.HomeScore, updated.AwayScore, updated.Status)
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchNotFound):
			return nil, fmt.Errorf("%w: %d", ErrMatchNotFound, matchID)
		case errors.Is(err, repositories.ErrMatchScoreInvalid):
			return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
		return nil, fmt.Errorf("failed to record result of match %d: %w", matchID, err)
	}

	s.logger.InfoContext(ctx, "match result recorded",
		slog.Int("tournament_id", tournamentID),
		slog.Int("match_id", matchID),
		slog.String("status", string(updated.Status)),
	)
	broadcast(s.hub, tournamentID, brackets.MessageMatchUpdated, updated)
	publish(ctx, s.publisher, s.logger, events.MatchResultRecorded, tournamentID, updated)
	s.afterResults(ctx, tournamentID, []models.Match{updated})
	return &updated, nil
}

// afterResults refreshes what depends on results: group tables for group
// matches, cached bracket points for knockout matches. Failures are logged;
// the results themselves are already stored.
func (s *matchService) afterResults(ctx context.Context, tournamentID int, changed []models.Match) {
	groupChanged, knockoutChanged := false, false
	for _, m := range changed {
		if models.IsKnockoutPhase(m.Phase) {
			knockoutChanged = true
		} else {
			groupChanged = true
		}
	}

	if groupChanged && s.standingsService != nil {
		groups, err := s.standingsService.OfficialStandings(ctx, tournamentID)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to refresh standings", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		} else {
			broadcast(s.hub, tournamentID, brackets.MessageStandingsUpdated, groups)
		}
		if s.exportSnapshots {
			if _, err := s.standingsService.ExportSnapshot(ctx, tournamentID); err != nil {
				s.logger.ErrorContext(ctx, "failed to export standings snapshot", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
			}
		}
	}

	if knockoutChanged && s.bracketService != nil {
		updated, err := s.bracketService.RescoreBrackets(ctx, tournamentID)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to rescore brackets", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
			return
		}
		broadcast(s.hub, tournamentID, brackets.MessageBracketUpdated, map[string]int{"rescored_entries": updated})
	}
}
