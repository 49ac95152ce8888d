package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/NareshCreations/billiards-tournament-system/models"
)

var (
	ErrTournamentNotFound     = errors.New("tournament not found")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
)

type TournamentRepository interface {
	Create(ctx context.Context, t *models.Tournament) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	ListByOrganizer(ctx context.Context, organizerID int) ([]*models.Tournament, error)
	ListByStatus(ctx context.Context, status models.TournamentStatus) ([]*models.Tournament, error)
	UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, status models.TournamentStatus, closedAt *time.Time) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (id, name, organizer_id, rules_text, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	err := r.db.QueryRowContext(ctx, query,
		t.ID,
		t.Name,
		t.OrganizerID,
		t.RulesText,
		t.Status,
	).Scan(&t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "tournaments_organizer_id_name_key") {
			return ErrTournamentNameConflict
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	query := `
		SELECT id, name, organizer_id, rules_text, status, created_at, closed_at
		FROM tournaments
		WHERE id = $1`

	t := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID,
		&t.Name,
		&t.OrganizerID,
		&t.RulesText,
		&t.Status,
		&t.CreatedAt,
		&t.ClosedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %s: %w", id, err)
	}
	return t, nil
}

func (r *postgresTournamentRepository) ListByOrganizer(ctx context.Context, organizerID int) ([]*models.Tournament, error) {
	query := `
		SELECT id, name, organizer_id, rules_text, status, created_at, closed_at
		FROM tournaments
		WHERE organizer_id = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, organizerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments for organizer %d: %w", organizerID, err)
	}
	defer rows.Close()

	var out []*models.Tournament
	for rows.Next() {
		t := &models.Tournament{}
		if err := rows.Scan(&t.ID, &t.Name, &t.OrganizerID, &t.RulesText, &t.Status, &t.CreatedAt, &t.ClosedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *postgresTournamentRepository) ListByStatus(ctx context.Context, status models.TournamentStatus) ([]*models.Tournament, error) {
	query := `
		SELECT id, name, organizer_id, rules_text, status, created_at, closed_at
		FROM tournaments
		WHERE status = $1
		ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments with status %s: %w", status, err)
	}
	defer rows.Close()

	var out []*models.Tournament
	for rows.Next() {
		t := &models.Tournament{}
		if err := rows.Scan(&t.ID, &t.Name, &t.OrganizerID, &t.RulesText, &t.Status, &t.CreatedAt, &t.ClosedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id uuid.UUID, status models.TournamentStatus, closedAt *time.Time) error {
	if exec == nil {
		exec = r.db
	}
	res, err := exec.ExecContext(ctx,
		`UPDATE tournaments SET status = $2, closed_at = $3 WHERE id = $1`,
		id, status, closedAt)
	if err != nil {
		return fmt.Errorf("failed to update tournament %s status: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTournamentNotFound
	}
	return nil
}
