package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/NareshCreations/billiards-tournament-system/models"
)

var (
	ErrRoundNotFound     = errors.New("round not found")
	ErrRoundNameConflict = errors.New("round display name is already in use")
)

type RoundRepository interface {
	Create(ctx context.Context, exec SQLExecutor, round *models.Round) error
	ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]*models.Round, error)
	UpdateDisplayName(ctx context.Context, exec SQLExecutor, id uuid.UUID, name string) error
	UpdateFrozen(ctx context.Context, exec SQLExecutor, id uuid.UUID, frozen bool, status models.RoundStatus) error
	UpdateShuffled(ctx context.Context, exec SQLExecutor, id uuid.UUID, shuffled bool) error
	Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error
	ReplacePlacement(ctx context.Context, exec SQLExecutor, roundID, playerID uuid.UUID, pl *models.Placement) error
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	if exec == nil {
		exec = r.db
	}
	query := `
		INSERT INTO rounds (id, tournament_id, display_name, ordinal_name, position, status, is_frozen, shuffled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := exec.ExecContext(ctx, query,
		round.ID, round.TournamentID, round.DisplayName, round.OrdinalName,
		round.Position, round.Status, round.IsFrozen, round.Shuffled)
	if err != nil {
		if isUniqueViolation(err, "rounds_tournament_id_display_name_key") {
			return ErrRoundNameConflict
		}
		return fmt.Errorf("failed to create round %s: %w", round.ID, err)
	}
	return nil
}

func (r *postgresRoundRepository) ListByTournament(ctx context.Context, tournamentID uuid.UUID) ([]*models.Round, error) {
	query := `
		SELECT id, tournament_id, display_name, ordinal_name, position, status, is_frozen, shuffled
		FROM rounds
		WHERE tournament_id = $1
		ORDER BY position`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	var out []*models.Round
	for rows.Next() {
		round := &models.Round{Placements: make(map[uuid.UUID]models.Placement)}
		if err := rows.Scan(
			&round.ID, &round.TournamentID, &round.DisplayName, &round.OrdinalName,
			&round.Position, &round.Status, &round.IsFrozen, &round.Shuffled,
		); err != nil {
			return nil, fmt.Errorf("failed to scan round row: %w", err)
		}
		out = append(out, round)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadPlacements(ctx, tournamentID, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresRoundRepository) loadPlacements(ctx context.Context, tournamentID uuid.UUID, rounds []*models.Round) error {
	byID := make(map[uuid.UUID]*models.Round, len(rounds))
	for _, round := range rounds {
		byID[round.ID] = round
	}

	query := `
		SELECT rp.round_id, rp.player_id, rp.kind, rp.match_id
		FROM round_placements rp
		JOIN rounds r ON r.id = rp.round_id
		WHERE r.tournament_id = $1`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return fmt.Errorf("failed to list placements for tournament %s: %w", tournamentID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var roundID, playerID uuid.UUID
		var kind models.PlacementKind
		var matchID *uuid.UUID
		if err := rows.Scan(&roundID, &playerID, &kind, &matchID); err != nil {
			return fmt.Errorf("failed to scan placement row: %w", err)
		}
		round, ok := byID[roundID]
		if !ok {
			continue
		}
		pl := models.Placement{Kind: kind}
		if matchID != nil {
			pl.MatchID = *matchID
		}
		round.Placements[playerID] = pl
	}
	return rows.Err()
}

func (r *postgresRoundRepository) UpdateDisplayName(ctx context.Context, exec SQLExecutor, id uuid.UUID, name string) error {
	if exec == nil {
		exec = r.db
	}
	res, err := exec.ExecContext(ctx, `UPDATE rounds SET display_name = $2 WHERE id = $1`, id, name)
	if err != nil {
		if isUniqueViolation(err, "rounds_tournament_id_display_name_key") {
			return ErrRoundNameConflict
		}
		return fmt.Errorf("failed to rename round %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoundNotFound
	}
	return nil
}

func (r *postgresRoundRepository) UpdateFrozen(ctx context.Context, exec SQLExecutor, id uuid.UUID, frozen bool, status models.RoundStatus) error {
	if exec == nil {
		exec = r.db
	}
	res, err := exec.ExecContext(ctx,
		`UPDATE rounds SET is_frozen = $2, status = $3 WHERE id = $1`, id, frozen, status)
	if err != nil {
		return fmt.Errorf("failed to freeze round %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoundNotFound
	}
	return nil
}

func (r *postgresRoundRepository) UpdateShuffled(ctx context.Context, exec SQLExecutor, id uuid.UUID, shuffled bool) error {
	if exec == nil {
		exec = r.db
	}
	_, err := exec.ExecContext(ctx, `UPDATE rounds SET shuffled = $2 WHERE id = $1`, id, shuffled)
	if err != nil {
		return fmt.Errorf("failed to update shuffled flag for round %s: %w", id, err)
	}
	return nil
}

func (r *postgresRoundRepository) Delete(ctx context.Context, exec SQLExecutor, id uuid.UUID) error {
	if exec == nil {
		exec = r.db
	}
	res, err := exec.ExecContext(ctx, `DELETE FROM rounds WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete round %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoundNotFound
	}
	return nil
}

// ReplacePlacement upserts one player's placement in a round, or removes it
// when pl is nil.
func (r *postgresRoundRepository) ReplacePlacement(ctx context.Context, exec SQLExecutor, roundID, playerID uuid.UUID, pl *models.Placement) error {
	if exec == nil {
		exec = r.db
	}
	if pl == nil {
		_, err := exec.ExecContext(ctx,
			`DELETE FROM round_placements WHERE round_id = $1 AND player_id = $2`, roundID, playerID)
		if err != nil {
			return fmt.Errorf("failed to clear placement of %s in round %s: %w", playerID, roundID, err)
		}
		return nil
	}

	var matchID *uuid.UUID
	if pl.MatchID != uuid.Nil {
		m := pl.MatchID
		matchID = &m
	}
	query := `
		INSERT INTO round_placements (round_id, player_id, kind, match_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (round_id, player_id) DO UPDATE SET kind = $3, match_id = $4`

	if _, err := exec.ExecContext(ctx, query, roundID, playerID, pl.Kind, matchID); err != nil {
		return fmt.Errorf("failed to upsert placement of %s in round %s: %w", playerID, roundID, err)
	}
	return nil
}
