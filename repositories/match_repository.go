package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/prode/models"
)

var (
	ErrMatchNotFound     = errors.New("match not found")
	ErrMatchScoreInvalid = errors.New("match scores must be both present or both absent and not negative")
)

type MatchRepository interface {
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error)
	GetByID(ctx context.Context, id int) (*models.Match, error)
	Upsert(ctx context.Context, exec SQLExecutor, match *models.Match) error
	UpdateResult(ctx context.Context, exec SQLExecutor, id int, homeScore, awayScore *int, status models.MatchStatus) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

const matchColumns = `id, tournament_id, home_team, away_team, home_score, away_score, status, phase, bracket_id, match_date`

func scanMatch(row interface{ Scan(...interface{}) error }) (models.Match, error) {
	var (
		m                    models.Match
		homeScore, awayScore sql.NullInt64
		bracketID            sql.NullInt64
		date                 sql.NullTime
	)
	err := row.Scan(
		&m.ID,
		&m.TournamentID,
		&m.HomeTeam,
		&m.AwayTeam,
		&homeScore,
		&awayScore,
		&m.Status,
		&m.Phase,
		&bracketID,
		&date,
	)
	if err != nil {
		return m, err
	}
	m.HomeScore = intPtr(homeScore)
	m.AwayScore = intPtr(awayScore)
	m.BracketID = intPtr(bracketID)
	if date.Valid {
		m.Date = date.Time.UTC()
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 ORDER BY match_date ASC NULLS LAST, id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`

	m, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return &m, nil
}

// Upsert inserts a match from the feed or refreshes every column of an
// existing one.
func (r *postgresMatchRepository) Upsert(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches (` + matchColumns + `, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (id) DO UPDATE SET
			tournament_id = EXCLUDED.tournament_id,
			home_team     = EXCLUDED.home_team,
			away_team     = EXCLUDED.away_team,
			home_score    = EXCLUDED.home_score,
			away_score    = EXCLUDED.away_score,
			status        = EXCLUDED.status,
			phase         = EXCLUDED.phase,
			bracket_id    = EXCLUDED.bracket_id,
			match_date    = EXCLUDED.match_date,
			updated_at    = NOW()`

	_, err := getExecutor(r.db, exec).ExecContext(ctx, query,
		match.ID,
		match.TournamentID,
		match.HomeTeam,
		match.AwayTeam,
		nullInt(match.HomeScore),
		nullInt(match.AwayScore),
		match.Status,
		match.Phase,
		nullInt(match.BracketID),
		nullTime(match.Date),
	)
	return r.handleMatchError(err, match.ID)
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int, homeScore, awayScore *int, status models.MatchStatus) error {
	query := `
		UPDATE matches
		SET home_score = $1, away_score = $2, status = $3, updated_at = NOW()
		WHERE id = $4`

	result, err := getExecutor(r.db, exec).ExecContext(ctx, query, nullInt(homeScore), nullInt(awayScore), status, id)
	if err != nil {
		return r.handleMatchError(err, id)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error, id int) error {
	if err == nil {
		return nil
	}
	switch constraintName(err) {
	case "matches_score_pair", "matches_home_score_check", "matches_away_score_check":
		return fmt.Errorf("%w: match %d", ErrMatchScoreInvalid, id)
	}
	return fmt.Errorf("failed to write match %d: %w", id, err)
}
