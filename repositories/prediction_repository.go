package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Dosada05/prode/models"
)

var (
	ErrPredictionNotFound     = errors.New("prediction not found")
	ErrPredictionMatchInvalid = errors.New("prediction references an unknown match")
)

type PredictionRepository interface {
	ListByUser(ctx context.Context, userID, tournamentID int) ([]models.Prediction, error)
	// ListByTournament returns every prediction of the tournament, or only
	// those of userIDs when it is not empty.
	ListByTournament(ctx context.Context, tournamentID int, userIDs []int) ([]models.Prediction, error)
	Upsert(ctx context.Context, prediction *models.Prediction) error
	Delete(ctx context.Context, userID, matchID int) error
}

type postgresPredictionRepository struct {
	db *sql.DB
}

func NewPostgresPredictionRepository(db *sql.DB) PredictionRepository {
	return &postgresPredictionRepository{db: db}
}

const predictionColumns = `id, user_id, tournament_id, match_id, home_score, away_score, is_joker, updated_at`

func (r *postgresPredictionRepository) ListByUser(ctx context.Context, userID, tournamentID int) ([]models.Prediction, error) {
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE user_id = $1 AND tournament_id = $2 ORDER BY match_id`
	return r.list(ctx, query, userID, tournamentID)
}

func (r *postgresPredictionRepository) ListByTournament(ctx context.Context, tournamentID int, userIDs []int) ([]models.Prediction, error) {
	if len(userIDs) == 0 {
		query := `SELECT ` + predictionColumns + ` FROM predictions WHERE tournament_id = $1 ORDER BY user_id, match_id`
		return r.list(ctx, query, tournamentID)
	}
	ids := make([]int64, len(userIDs))
	for i, id := range userIDs {
		ids[i] = int64(id)
	}
	query := `SELECT ` + predictionColumns + ` FROM predictions WHERE tournament_id = $1 AND user_id = ANY($2) ORDER BY user_id, match_id`
	return r.list(ctx, query, tournamentID, pq.Array(ids))
}

func (r *postgresPredictionRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Prediction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	predictions := make([]models.Prediction, 0)
	for rows.Next() {
		var p models.Prediction
		if err := rows.Scan(
			&p.ID,
			&p.UserID,
			&p.TournamentID,
			&p.MatchID,
			&p.HomeScore,
			&p.AwayScore,
			&p.IsJoker,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan prediction row: %w", err)
		}
		predictions = append(predictions, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during prediction rows iteration: %w", err)
	}
	return predictions, nil
}

func (r *postgresPredictionRepository) Upsert(ctx context.Context, p *models.Prediction) error {
	query := `
		INSERT INTO predictions (user_id, tournament_id, match_id, home_score, away_score, is_joker, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT ON CONSTRAINT predictions_user_match_key DO UPDATE SET
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			is_joker   = EXCLUDED.is_joker,
			updated_at = NOW()
		RETURNING id, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.UserID,
		p.TournamentID,
		p.MatchID,
		p.HomeScore,
		p.AwayScore,
		p.IsJoker,
	).Scan(&p.ID, &p.UpdatedAt)
	if err != nil {
		if constraintName(err) == "predictions_match_id_fkey" {
			return fmt.Errorf("%w: match %d", ErrPredictionMatchInvalid, p.MatchID)
		}
		return fmt.Errorf("failed to upsert prediction for user %d match %d: %w", p.UserID, p.MatchID, err)
	}
	return nil
}

func (r *postgresPredictionRepository) Delete(ctx context.Context, userID, matchID int) error {
	query := `DELETE FROM predictions WHERE user_id = $1 AND match_id = $2`
	result, err := r.db.ExecContext(ctx, query, userID, matchID)
	if err != nil {
		return fmt.Errorf("failed to delete prediction for user %d match %d: %w", userID, matchID, err)
	}
	return checkAffectedRows(result, ErrPredictionNotFound)
}
