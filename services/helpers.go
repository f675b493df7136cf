package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/prode/brackets"
	"github.com/Dosada05/prode/events"
	"github.com/Dosada05/prode/models"
	"github.com/Dosada05/prode/repositories"
)

// Broadcaster pushes a message to every websocket client of a room.
type Broadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// CompetitionCatalog resolves the bracket layout and lock lead of a tournament.
type CompetitionCatalog interface {
	FormatFor(tournamentID int, matches []models.Match) brackets.Format
	LockLeadFor(tournamentID int) time.Duration
}

// withTx runs fn inside a transaction when a database is available; with no
// database (tests with in-memory repositories) fn gets a nil executor and the
// repositories fall back to their own handle.
func withTx(ctx context.Context, db *sql.DB, logger *slog.Logger, fn func(exec repositories.SQLExecutor) error) (txErr error) {
	if db == nil {
		return fn(nil)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.ErrorContext(ctx, "rollback failed", slog.Any("error", rbErr), slog.Any("cause", txErr))
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()
	return fn(tx)
}

func broadcast(hub Broadcaster, tournamentID int, msgType string, payload interface{}) {
	if hub == nil {
		return
	}
	room := brackets.RoomForTournament(tournamentID)
	hub.BroadcastToRoom(room, brackets.WebSocketMessage{Type: msgType, Payload: payload, RoomID: room})
}

// publish sends a domain event; failures are logged and never fail the request.
func publish(ctx context.Context, publisher events.Publisher, logger *slog.Logger, eventType string, tournamentID int, payload interface{}) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, eventType, tournamentID, payload); err != nil {
		logger.WarnContext(ctx, "failed to publish event",
			slog.String("event_type", eventType),
			slog.Int("tournament_id", tournamentID),
			slog.Any("error", err),
		)
	}
}

// logSkippedDates reports first-phase matches left out of the bracket lock.
func logSkippedDates(ctx context.Context, logger *slog.Logger, tournamentID int, state brackets.LockState) {
	if len(state.SkippedDates) == 0 {
		return
	}
	logger.WarnContext(ctx, "matches without a usable date ignored for the bracket lock",
		slog.Int("tournament_id", tournamentID),
		slog.Any("match_ids", state.SkippedDates),
		slog.Any("error", models.ErrUnparseableDate),
	)
}

// loadMatch fetches a match and checks that it belongs to the tournament.
func loadMatch(ctx context.Context, repo repositories.MatchRepository, tournamentID, matchID int) (*models.Match, error) {
	m, err := repo.GetByID(ctx, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrMatchNotFound, matchID)
		}
		return nil, fmt.Errorf("failed to load match %d: %w", matchID, err)
	}
	if m.TournamentID != tournamentID {
		return nil, fmt.Errorf("%w: %d in tournament %d", ErrMatchNotFound, matchID, tournamentID)
	}
	return m, nil
}
