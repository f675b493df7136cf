package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/prode/models"
)

var ErrTiebreakerNotFound = errors.New("tiebreaker guess not found")

type TiebreakerRepository interface {
	Get(ctx context.Context, userID, tournamentID, leagueID int) (*models.TiebreakerGuess, error)
	ListByLeague(ctx context.Context, tournamentID, leagueID int) ([]models.TiebreakerGuess, error)
	Upsert(ctx context.Context, guess *models.TiebreakerGuess) error
}

type postgresTiebreakerRepository struct {
	db *sql.DB
}

func NewPostgresTiebreakerRepository(db *sql.DB) TiebreakerRepository {
	return &postgresTiebreakerRepository{db: db}
}

func (r *postgresTiebreakerRepository) Get(ctx context.Context, userID, tournamentID, leagueID int) (*models.TiebreakerGuess, error) {
	query := `
		SELECT user_id, tournament_id, league_id, total_goals, updated_at
		FROM tiebreaker_guesses
		WHERE user_id = $1 AND tournament_id = $2 AND league_id = $3`

	g := &models.TiebreakerGuess{}
	err := r.db.QueryRowContext(ctx, query, userID, tournamentID, leagueID).Scan(
		&g.UserID, &g.TournamentID, &g.LeagueID, &g.TotalGoals, &g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTiebreakerNotFound
		}
		return nil, fmt.Errorf("failed to scan tiebreaker of user %d: %w", userID, err)
	}
	return g, nil
}

func (r *postgresTiebreakerRepository) ListByLeague(ctx context.Context, tournamentID, leagueID int) ([]models.TiebreakerGuess, error) {
	query := `
		SELECT user_id, tournament_id, league_id, total_goals, updated_at
		FROM tiebreaker_guesses
		WHERE tournament_id = $1 AND league_id = $2
		ORDER BY user_id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tiebreakers for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	guesses := make([]models.TiebreakerGuess, 0)
	for rows.Next() {
		var g models.TiebreakerGuess
		if err := rows.Scan(&g.UserID, &g.TournamentID, &g.LeagueID, &g.TotalGoals, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tiebreaker row: %w", err)
		}
		guesses = append(guesses, g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tiebreaker rows iteration: %w", err)
	}
	return guesses, nil
}

func (r *postgresTiebreakerRepository) Upsert(ctx context.Context, guess *models.TiebreakerGuess) error {
	query := `
		INSERT INTO tiebreaker_guesses (user_id, tournament_id, league_id, total_goals, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, tournament_id, league_id) DO UPDATE SET
			total_goals = EXCLUDED.total_goals,
			updated_at  = NOW()
		RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, guess.UserID, guess.TournamentID, guess.LeagueID, guess.TotalGoals).Scan(&guess.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert tiebreaker of user %d: %w", guess.UserID, err)
	}
	return nil
}
