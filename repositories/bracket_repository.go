package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Dosada05/prode/models"
)

var ErrBracketNotFound = errors.New("bracket not found")

type BracketRepository interface {
	Get(ctx context.Context, userID, tournamentID, leagueID int) (*models.BracketEntry, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]models.BracketEntry, error)
	ListByLeague(ctx context.Context, tournamentID, leagueID int) ([]models.BracketEntry, error)
	// Save upserts the entry's picks; the last writer wins.
	Save(ctx context.Context, exec SQLExecutor, entry *models.BracketEntry) error
	UpdatePoints(ctx context.Context, exec SQLExecutor, points map[int]int) error
}

type postgresBracketRepository struct {
	db *sql.DB
}

func NewPostgresBracketRepository(db *sql.DB) BracketRepository {
	return &postgresBracketRepository{db: db}
}

const bracketColumns = `id, user_id, tournament_id, league_id, picks, points, updated_at`

func scanBracket(row interface{ Scan(...interface{}) error }) (models.BracketEntry, error) {
	var e models.BracketEntry
	err := row.Scan(&e.ID, &e.UserID, &e.TournamentID, &e.LeagueID, &e.Picks, &e.Points, &e.UpdatedAt)
	return e, err
}

func (r *postgresBracketRepository) Get(ctx context.Context, userID, tournamentID, leagueID int) (*models.BracketEntry, error) {
	query := `SELECT ` + bracketColumns + ` FROM bracket_entries WHERE user_id = $1 AND tournament_id = $2 AND league_id = $3`

	e, err := scanBracket(r.db.QueryRowContext(ctx, query, userID, tournamentID, leagueID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBracketNotFound
		}
		return nil, fmt.Errorf("failed to scan bracket of user %d: %w", userID, err)
	}
	return &e, nil
}

func (r *postgresBracketRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.BracketEntry, error) {
	query := `SELECT ` + bracketColumns + ` FROM bracket_entries WHERE tournament_id = $1 ORDER BY id`
	return r.list(ctx, query, tournamentID)
}

func (r *postgresBracketRepository) ListByLeague(ctx context.Context, tournamentID, leagueID int) ([]models.BracketEntry, error) {
	query := `SELECT ` + bracketColumns + ` FROM bracket_entries WHERE tournament_id = $1 AND league_id = $2 ORDER BY id`
	return r.list(ctx, query, tournamentID, leagueID)
}

func (r *postgresBracketRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.BracketEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query brackets: %w", err)
	}
	defer rows.Close()

	entries := make([]models.BracketEntry, 0)
	for rows.Next() {
		e, err := scanBracket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bracket row: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during bracket rows iteration: %w", err)
	}
	return entries, nil
}

func (r *postgresBracketRepository) Save(ctx context.Context, exec SQLExecutor, entry *models.BracketEntry) error {
	query := `
		INSERT INTO bracket_entries (user_id, tournament_id, league_id, picks, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT ON CONSTRAINT bracket_entries_user_tournament_league_key DO UPDATE SET
			picks      = EXCLUDED.picks,
			updated_at = NOW()
		RETURNING id, points, updated_at`

	if entry.Picks == nil {
		entry.Picks = models.BracketPicks{}
	}
	err := getExecutor(r.db, exec).QueryRowContext(ctx, query,
		entry.UserID,
		entry.TournamentID,
		entry.LeagueID,
		entry.Picks,
	).Scan(&entry.ID, &entry.Points, &entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save bracket of user %d: %w", entry.UserID, err)
	}
	return nil
}

// UpdatePoints writes cached bracket points, keyed by entry id, in one statement.
func (r *postgresBracketRepository) UpdatePoints(ctx context.Context, exec SQLExecutor, points map[int]int) error {
	if len(points) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(points))
	values := make([]int64, 0, len(points))
	for id, p := range points {
		ids = append(ids, int64(id))
		values = append(values, int64(p))
	}

	query := `
		UPDATE bracket_entries AS b
		SET points = v.points
		FROM (SELECT UNNEST($1::int[]) AS id, UNNEST($2::int[]) AS points) AS v
		WHERE b.id = v.id`

	if _, err := getExecutor(r.db, exec).ExecContext(ctx, query, pq.Array(ids), pq.Array(values)); err != nil {
		return fmt.Errorf("failed to update bracket points: %w", err)
	}
	return nil
}
