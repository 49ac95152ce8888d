package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/NareshCreations/billiards-tournament-system/bracket"
	"github.com/NareshCreations/billiards-tournament-system/models"
	"github.com/NareshCreations/billiards-tournament-system/repositories"
)

// DefaultCommandTimeout bounds every remote write; expiry is reported like
// any other remote failure.
const DefaultCommandTimeout = 30 * time.Second

// withTx runs fn inside a transaction with a command timeout. A deadline
// expiry surfaces as ErrRemoteTimeout so the UI can hint at connectivity.
func withTx(ctx context.Context, db *sql.DB, timeout time.Duration, fn func(ctx context.Context, tx *sql.Tx) error) error {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w (rollback also failed: %v)", err, rbErr)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrRemoteTimeout
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrRemoteTimeout
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// persistPlayer mirrors one player's engine-owned fields and round placement
// from the post-apply state into storage.
func persistPlayer(ctx context.Context, tx *sql.Tx, playerRepo repositories.PlayerRepository, roundRepo repositories.RoundRepository, st *bracket.State, playerID uuid.UUID) error {
	p := st.Player(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	if err := playerRepo.UpdatePlacementFields(ctx, tx, p); err != nil {
		return err
	}

	// One placement row per round the player appears in; every other round
	// must not hold one.
	for _, r := range st.Rounds {
		pl, ok := r.Placements[playerID]
		if ok {
			if err := roundRepo.ReplacePlacement(ctx, tx, r.ID, playerID, &pl); err != nil {
				return err
			}
		} else if err := roundRepo.ReplacePlacement(ctx, tx, r.ID, playerID, nil); err != nil {
			return err
		}
	}
	return nil
}

// NewStateLoader assembles a tournament's engine state from the repositories.
func NewStateLoader(
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	roundRepo repositories.RoundRepository,
	matchRepo repositories.MatchRepository,
	winnerRepo repositories.WinnerRepository,
) StateLoader {
	return func(ctx context.Context, tournamentID uuid.UUID) (*bracket.State, error) {
		if _, err := tournamentRepo.GetByID(ctx, tournamentID); err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return nil, ErrTournamentNotFound
			}
			return nil, err
		}

		st := bracket.NewState(tournamentID)

		players, err := playerRepo.ListByTournament(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
		for _, p := range players {
			st.AddPlayer(p)
		}

		rounds, err := roundRepo.ListByTournament(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
		st.Rounds = rounds

		matches, err := matchRepo.ListByTournament(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if r := st.Round(m.RoundID); r != nil {
				r.Matches = append(r.Matches, m)
			}
		}

		history, err := winnerRepo.ListHistory(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
		st.History = history
		st.RebuildProjection()

		// Overlay persisted titles/ranks onto the derived projection.
		titles, err := winnerRepo.ListTitles(ctx, tournamentID)
		if err != nil {
			return nil, err
		}
		if len(titles) > 0 {
			eff, err := st.ValidateSaveDraft(&bracket.RankingDraft{Entries: prunedTitles(st, titles)})
			if err == nil {
				st.ApplySaveDraft(eff)
			}
		}
		return st, nil
	}
}

// prunedTitles drops persisted title rows whose players have left the
// projection (e.g. superseded winners).
func prunedTitles(st *bracket.State, titles []models.WinnerEntry) []models.WinnerEntry {
	inProjection := make(map[uuid.UUID]bool, len(st.Projection))
	for _, e := range st.Projection {
		inProjection[e.PlayerID] = true
	}
	kept := titles[:0]
	for _, e := range titles {
		if inProjection[e.PlayerID] {
			kept = append(kept, e)
		}
	}
	return kept
}
