package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/NareshCreations/billiards-tournament-system/models"
)

// WinnerRepository persists the append-only winner history and the
// organizer-assigned titles. History rows are never updated or deleted.
type WinnerRepository interface {
	AppendHistory(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, rec *models.WinnerRecord) error
	ListHistory(ctx context.Context, tournamentID uuid.UUID) ([]models.WinnerRecord, error)
	SaveTitles(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, entries []models.WinnerEntry) error
	ListTitles(ctx context.Context, tournamentID uuid.UUID) ([]models.WinnerEntry, error)
}

type postgresWinnerRepository struct {
	db *sql.DB
}

func NewPostgresWinnerRepository(db *sql.DB) WinnerRepository {
	return &postgresWinnerRepository{db: db}
}

func (r *postgresWinnerRepository) AppendHistory(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, rec *models.WinnerRecord) error {
	if exec == nil {
		exec = r.db
	}
	query := `
		INSERT INTO winner_history (tournament_id, player_id, round_id, match_id, won_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := exec.QueryRowContext(ctx, query,
		tournamentID, rec.PlayerID, rec.RoundID, rec.MatchID, rec.WonAt,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to append winner history: %w", err)
	}
	return nil
}

func (r *postgresWinnerRepository) ListHistory(ctx context.Context, tournamentID uuid.UUID) ([]models.WinnerRecord, error) {
	query := `
		SELECT id, player_id, round_id, match_id, won_at
		FROM winner_history
		WHERE tournament_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list winner history for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	var out []models.WinnerRecord
	for rows.Next() {
		var rec models.WinnerRecord
		if err := rows.Scan(&rec.ID, &rec.PlayerID, &rec.RoundID, &rec.MatchID, &rec.WonAt); err != nil {
			return nil, fmt.Errorf("failed to scan winner history row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *postgresWinnerRepository) SaveTitles(ctx context.Context, exec SQLExecutor, tournamentID uuid.UUID, entries []models.WinnerEntry) error {
	if exec == nil {
		exec = r.db
	}
	query := `
		INSERT INTO winner_titles (tournament_id, player_id, rank, title, selected)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tournament_id, player_id) DO UPDATE SET rank = $3, title = $4, selected = $5`

	for _, e := range entries {
		if _, err := exec.ExecContext(ctx, query,
			tournamentID, e.PlayerID, e.Rank, e.Title, e.Selected,
		); err != nil {
			return fmt.Errorf("failed to save title for player %s: %w", e.PlayerID, err)
		}
	}
	return nil
}

func (r *postgresWinnerRepository) ListTitles(ctx context.Context, tournamentID uuid.UUID) ([]models.WinnerEntry, error) {
	query := `
		SELECT player_id, rank, title, selected
		FROM winner_titles
		WHERE tournament_id = $1
		ORDER BY rank`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list winner titles for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	var out []models.WinnerEntry
	for rows.Next() {
		var e models.WinnerEntry
		if err := rows.Scan(&e.PlayerID, &e.Rank, &e.Title, &e.Selected); err != nil {
			return nil, fmt.Errorf("failed to scan winner title row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
