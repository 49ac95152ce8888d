package services

import (
	"context"
	"database/sql"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/NareshCreations/billiards-tournament-system/bracket"
	"github.com/NareshCreations/billiards-tournament-system/live"
	"github.com/NareshCreations/billiards-tournament-system/models"
	"github.com/NareshCreations/billiards-tournament-system/repositories"
)

type RoundService interface {
	Create(ctx context.Context, tournamentID uuid.UUID, displayName string) (*models.Round, error)
	Rename(ctx context.Context, tournamentID, roundID uuid.UUID, displayName string) (*models.Round, error)
	Freeze(ctx context.Context, tournamentID, roundID uuid.UUID) (*models.Round, error)
	Close(ctx context.Context, tournamentID, roundID uuid.UUID) error
	Shuffle(ctx context.Context, tournamentID, roundID uuid.UUID) (*models.Round, error)
	Move(ctx context.Context, tournamentID uuid.UUID, cmd bracket.MoveCommand) (*bracket.MoveEffect, error)
}

type roundService struct {
	db             *sql.DB
	roundRepo      repositories.RoundRepository
	matchRepo      repositories.MatchRepository
	playerRepo     repositories.PlayerRepository
	store          *StateStore
	hub            *live.Hub
	commandTimeout time.Duration
	logger         *slog.Logger
}

func NewRoundService(
	db *sql.DB,
	roundRepo repositories.RoundRepository,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	store *StateStore,
	hub *live.Hub,
	commandTimeout time.Duration,
	logger *slog.Logger,
) RoundService {
	return &roundService{
		db:             db,
		roundRepo:      roundRepo,
		matchRepo:      matchRepo,
		playerRepo:     playerRepo,
		store:          store,
		hub:            hub,
		commandTimeout: commandTimeout,
		logger:         logger,
	}
}

func (s *roundService) Create(ctx context.Context, tournamentID uuid.UUID, displayName string) (*models.Round, error) {
	var created *models.Round
	err := s.store.With(ctx, tournamentID, func(st *bracket.State) (*bracket.State, error) {
		eff, err := st.ValidateCreateRound(displayName)
		if err != nil {
			return nil, err
		}
		next := st.Clone()
		next.ApplyCreateRound(eff)

		err = withTx(ctx, s.db, s.commandTimeout, func(ctx context.Context, tx *sql.Tx) error {
			return s.roundRepo.Create(ctx, tx, eff.Round)
		})
		if err != nil {
			return nil, err
		}
		created = eff.Round
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastTournament(tournamentID, live.EventRoundCreated, created)
	s.logger.Info("round created", "tournament_id", tournamentID, "round_id", created.ID, "name", created.DisplayName)
	return created, nil
}

func (s *roundService) Rename(ctx context.Context, tournamentID, roundID uuid.UUID, displayName string) (*models.Round, error) {
	var renamed *models.Round
	err := s.store.With(ctx, tournamentID, func(st *bracket.State) (*bracket.State, error) {
		eff, err := st.ValidateRenameRound(roundID, displayName)
		if err != nil {
			return nil, err
		}
		next := st.Clone()
		next.ApplyRenameRound(eff)

		err = withTx(ctx, s.db, s.commandTimeout, func(ctx context.Context, tx *sql.Tx) error {
			return s.roundRepo.UpdateDisplayName(ctx, tx, eff.RoundID, eff.Name)
		})
		if err != nil {
			return nil, err
		}
		renamed = next.Round(eff.RoundID)
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastTournament(tournamentID, live.EventRoundRenamed, renamed)
	return renamed, nil
}

// Freeze permanently locks a round. There is no unfreeze.
func (s *roundService) Freeze(ctx context.Context, tournamentID, roundID uuid.UUID) (*models.Round, error) {
	var frozen *models.Round
	err := s.store.With(ctx, tournamentID, func(st *bracket.State) (*bracket.State, error) {
		eff, err := st.ValidateFreezeRound(roundID)
		if err != nil {
			return nil, err
		}
		next := st.Clone()
		next.ApplyFreezeRound(eff)

		err = withTx(ctx, s.db, s.commandTimeout, func(ctx context.Context, tx *sql.Tx) error {
			return s.roundRepo.UpdateFrozen(ctx, tx, eff.RoundID, true, models.RoundStatusCompleted)
		})
		if err != nil {
			return nil, err
		}
		frozen = next.Round(eff.RoundID)
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastTournament(tournamentID, live.EventRoundFrozen, frozen)
	s.logger.Info("round frozen", "tournament_id", tournamentID, "round_id", roundID)
	return frozen, nil
}

func (s *roundService) Close(ctx context.Context, tournamentID, roundID uuid.UUID) error {
	err := s.store.With(ctx, tournamentID, func(st *bracket.State) (*bracket.State, error) {
		eff, err := st.ValidateCloseRound(roundID)
		if err != nil {
			return nil, err
		}
		next := st.Clone()
		next.ApplyCloseRound(eff)

		err = withTx(ctx, s.db, s.commandTimeout, func(ctx context.Context, tx *sql.Tx) error {
			return s.roundRepo.Delete(ctx, tx, eff.RoundID)
		})
		if err != nil {
			return nil, err
		}
		return next, nil
	})
	if err != nil {
		return err
	}

	s.hub.BroadcastTournament(tournamentID, live.EventRoundClosed, map[string]interface{}{"round_id": roundID})
	s.logger.Info("round closed", "tournament_id", tournamentID, "round_id", roundID)
	return nil
}

func (s *roundService) Shuffle(ctx context.Context, tournamentID, roundID uuid.UUID) (*models.Round, error) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var shuffled *models.Round
	err := s.store.With(ctx, tournamentID, func(st *bracket.State) (*bracket.State, error) {
		eff, err := st.ValidateShuffle(roundID, rng)
		if err != nil {
			return nil, err
		}
		next := st.Clone()
		next.ApplyShuffle(eff)

		err = withTx(ctx, s.db, s.commandTimeout, func(ctx context.Context, tx *sql.Tx) error {
			if len(eff.RemovedMatchIDs) > 0 {
				if err := s.matchRepo.DeleteBatch(ctx, tx, eff.RemovedMatchIDs); err != nil {
					return err
				}
			}
			if err := s.matchRepo.CreateBatch(ctx, tx, eff.NewMatches); err != nil {
				return err
			}
			if err := s.roundRepo.UpdateShuffled(ctx, tx, eff.RoundID, true); err != nil {
				return err
			}
			for _, m := range eff.NewMatches {
				for _, pid := range []uuid.UUID{m.Player1ID, m.Player2ID} {
					if err := persistPlayer(ctx, tx, s.playerRepo, s.roundRepo, next, pid); err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		shuffled = next.Round(eff.RoundID)
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastTournament(tournamentID, live.EventRoundShuffled, shuffled)
	s.logger.Info("round shuffled", "tournament_id", tournamentID, "round_id", roundID, "matches", len(shuffled.Matches))
	return shuffled, nil
}

// Move transfers players between the staging pool and round lists. Players
// already at the destination are reported as skipped rather than failing the
// whole command.
func (s *roundService) Move(ctx context.Context, tournamentID uuid.UUID, cmd bracket.MoveCommand) (*bracket.MoveEffect, error) {
	var applied *bracket.MoveEffect
	err := s.store.With(ctx, tournamentID, func(st *bracket.State) (*bracket.State, error) {
		eff, err := st.ValidateMove(cmd)
		if err != nil {
			return nil, err
		}
		next := st.Clone()
		next.ApplyMove(eff)

		err = withTx(ctx, s.db, s.commandTimeout, func(ctx context.Context, tx *sql.Tx) error {
			for _, pid := range eff.Moved {
				if err := persistPlayer(ctx, tx, s.playerRepo, s.roundRepo, next, pid); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		applied = eff
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastTournament(tournamentID, live.EventPlayersMoved, applied)
	return applied, nil
}
