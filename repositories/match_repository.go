package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/NareshCreations/billiards-tournament-system/models"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error
	DeleteBatch(ctx context.Context, exec SQLExecutor, ids []uuid.UUID) error
	ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]*models.Match, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, m *models.Match) error
	UpdateResult(ctx context.Context, exec SQLExecutor, m *models.Match) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) CreateBatch(ctx context.Context, exec SQLExecutor, matches []*models.Match) error {
	if exec == nil {
		exec = r.db
	}
	query := `
		INSERT INTO matches (id, round_id, external_id, player1_id, player2_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, m := range matches {
		if _, err := exec.ExecContext(ctx, query,
			m.ID, m.RoundID, m.ExternalID, m.Player1ID, m.Player2ID, m.Status,
		); err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("match %s references a missing round or player: %w", m.ID, err)
			}
			return fmt.Errorf("failed to insert match %s: %w", m.ID, err)
		}
	}
	return nil
}

func (r *postgresMatchRepository) DeleteBatch(ctx context.Context, exec SQLExecutor, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if exec == nil {
		exec = r.db
	}
	for _, id := range ids {
		if _, err := exec.ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete match %s: %w", id, err)
		}
	}
	return nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]*models.Match, error) {
	query := `
		SELECT m.id, m.round_id, m.external_id, m.player1_id, m.player2_id,
		       m.status, m.winner_id, m.score1, m.score2, m.started_at, m.completed_at
		FROM matches m
		JOIN rounds r ON r.id = m.round_id
		WHERE r.tournament_id = $1
		ORDER BY m.created_at`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	var out []*models.Match
	for rows.Next() {
		m := &models.Match{}
		if err := rows.Scan(
			&m.ID, &m.RoundID, &m.ExternalID, &m.Player1ID, &m.Player2ID,
			&m.Status, &m.WinnerID, &m.Score1, &m.Score2, &m.StartedAt, &m.CompletedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *postgresMatchRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	if exec == nil {
		exec = r.db
	}
	res, err := exec.ExecContext(ctx,
		`UPDATE matches SET status = $2, started_at = $3 WHERE id = $1`,
		m.ID, m.Status, m.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to update match %s status: %w", m.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMatchNotFound
	}
	return nil
}

func (r *postgresMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	if exec == nil {
		exec = r.db
	}
	res, err := exec.ExecContext(ctx, `
		UPDATE matches
		SET status = $2, winner_id = $3, score1 = $4, score2 = $5, completed_at = $6
		WHERE id = $1`,
		m.ID, m.Status, m.WinnerID, m.Score1, m.Score2, m.CompletedAt)
	if err != nil {
		return fmt.Errorf("failed to update match %s result: %w", m.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMatchNotFound
	}
	return nil
}
