package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/NareshCreations/billiards-tournament-system/models"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	CreateBatch(ctx context.Context, exec SQLExecutor, players []*models.Player) error
	ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]*models.Player, error)
	UpdatePlacementFields(ctx context.Context, exec SQLExecutor, p *models.Player) error
	UpdateAvatarKey(ctx context.Context, id uuid.UUID, key *string) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) CreateBatch(ctx context.Context, exec SQLExecutor, players []*models.Player) error {
	if exec == nil {
		exec = r.db
	}
	query := `
		INSERT INTO players
			(id, tournament_id, external_id, display_name, skill_tag, status, last_round_index_played)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`

	for _, p := range players {
		if _, err := exec.ExecContext(ctx, query,
			p.ID, p.TournamentID, p.ExternalID, p.DisplayName, p.SkillTag, p.Status, p.LastRoundIndexPlayed,
		); err != nil {
			return fmt.Errorf("failed to insert player %s: %w", p.ID, err)
		}
	}
	return nil
}

func (r *postgresPlayerRepository) ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]*models.Player, error) {
	query := `
		SELECT id, tournament_id, external_id, display_name, skill_tag, status,
		       current_round_id, last_round_index_played, is_previous_round_winner,
		       original_winning_round_id, last_winning_round_id, avatar_key
		FROM players
		WHERE tournament_id = $1
		ORDER BY display_name, id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list players for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	var out []*models.Player
	for rows.Next() {
		p := &models.Player{}
		if err := rows.Scan(
			&p.ID, &p.TournamentID, &p.ExternalID, &p.DisplayName, &p.SkillTag, &p.Status,
			&p.CurrentRoundID, &p.LastRoundIndexPlayed, &p.IsPreviousRoundWinner,
			&p.OriginalWinningRoundID, &p.LastWinningRoundID, &p.AvatarKey,
		); err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdatePlacementFields mirrors the mutable state the engine owns: status and
// the round-lineage columns.
func (r *postgresPlayerRepository) UpdatePlacementFields(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	if exec == nil {
		exec = r.db
	}
	query := `
		UPDATE players
		SET status = $2,
		    current_round_id = $3,
		    last_round_index_played = $4,
		    is_previous_round_winner = $5,
		    original_winning_round_id = $6,
		    last_winning_round_id = $7
		WHERE id = $1`

	res, err := exec.ExecContext(ctx, query,
		p.ID, p.Status, p.CurrentRoundID, p.LastRoundIndexPlayed,
		p.IsPreviousRoundWinner, p.OriginalWinningRoundID, p.LastWinningRoundID)
	if err != nil {
		return fmt.Errorf("failed to update player %s: %w", p.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPlayerNotFound
	}
	return nil
}

func (r *postgresPlayerRepository) UpdateAvatarKey(ctx context.Context, id uuid.UUID, key *string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE players SET avatar_key = $2 WHERE id = $1`, id, key)
	if err != nil {
		return fmt.Errorf("failed to update avatar for player %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPlayerNotFound
	}
	return nil
}
