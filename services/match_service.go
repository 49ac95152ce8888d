package services

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/NareshCreations/billiards-tournament-system/bracket"
	"github.com/NareshCreations/billiards-tournament-system/live"
	"github.com/NareshCreations/billiards-tournament-system/models"
	"github.com/NareshCreations/billiards-tournament-system/repositories"
)

type MatchService interface {
	Start(ctx context.Context, tournamentID, matchID uuid.UUID) (*models.Match, error)
	SelectWinner(ctx context.Context, tournamentID, matchID, winnerID uuid.UUID, score1, score2 *int) (*models.Match, error)
	Cancel(ctx context.Context, tournamentID, matchID uuid.UUID) error
}

type matchService struct {
	db             *sql.DB
	matchRepo      repositories.MatchRepository
	playerRepo     repositories.PlayerRepository
	roundRepo      repositories.RoundRepository
	winnerRepo     repositories.WinnerRepository
	store          *StateStore
	hub            *live.Hub
	commandTimeout time.Duration
	logger         *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	roundRepo repositories.RoundRepository,
	winnerRepo repositories.WinnerRepository,
	store *StateStore,
	hub *live.Hub,
	commandTimeout time.Duration,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:             db,
		matchRepo:      matchRepo,
		playerRepo:     playerRepo,
		roundRepo:      roundRepo,
		winnerRepo:     winnerRepo,
		store:          store,
		hub:            hub,
		commandTimeout: commandTimeout,
		logger:         logger,
	}
}

func (s *matchService) Start(ctx context.Context, tournamentID, matchID uuid.UUID) (*models.Match, error) {
	var started *models.Match
	err := s.store.With(ctx, tournamentID, func(st *bracket.State) (*bracket.State, error) {
		eff, err := st.ValidateStartMatch(matchID)
		if err != nil {
			return nil, err
		}
		next := st.Clone()
		next.ApplyStartMatch(eff)

		_, m := next.MatchRound(eff.MatchID)
		err = withTx(ctx, s.db, s.commandTimeout, func(ctx context.Context, tx *sql.Tx) error {
			return s.matchRepo.UpdateStatus(ctx, tx, m)
		})
		if err != nil {
			return nil, err
		}
		started = m
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastTournament(tournamentID, live.EventMatchStarted, started)
	return started, nil
}

// SelectWinner records a match result. Choosing the other player of an
// already-decided match replaces the result: the superseded winner is
// demoted, the reinstated player returns to the match, and a fresh history
// record is appended (history is never rewritten).
func (s *matchService) SelectWinner(ctx context.Context, tournamentID, matchID, winnerID uuid.UUID, score1, score2 *int) (*models.Match, error) {
	var decided *models.Match
	err := s.store.With(ctx, tournamentID, func(st *bracket.State) (*bracket.State, error) {
		eff, err := st.ValidateSelectWinner(matchID, winnerID, score1, score2)
		if err != nil {
			return nil, err
		}
		next := st.Clone()
		next.ApplySelectWinner(eff)

		_, m := next.MatchRound(eff.MatchID)
		rec := &next.History[len(next.History)-1]

		err = withTx(ctx, s.db, s.commandTimeout, func(ctx context.Context, tx *sql.Tx) error {
			if err := s.matchRepo.UpdateResult(ctx, tx, m); err != nil {
				return err
			}
			if err := s.winnerRepo.AppendHistory(ctx, tx, tournamentID, rec); err != nil {
				return err
			}
			touched := []uuid.UUID{eff.WinnerID, eff.LoserID}
			if eff.PrevWinner != nil {
				touched = append(touched, *eff.PrevWinner)
			}
			if eff.PrevLoser != nil {
				touched = append(touched, *eff.PrevLoser)
			}
			seen := make(map[uuid.UUID]bool, len(touched))
			for _, pid := range touched {
				if seen[pid] {
					continue
				}
				seen[pid] = true
				if err := persistPlayer(ctx, tx, s.playerRepo, s.roundRepo, next, pid); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		decided = m
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastTournament(tournamentID, live.EventMatchCompleted, decided)
	s.logger.Info("match winner selected", "tournament_id", tournamentID, "match_id", matchID, "winner_id", winnerID)
	return decided, nil
}

func (s *matchService) Cancel(ctx context.Context, tournamentID, matchID uuid.UUID) error {
	err := s.store.With(ctx, tournamentID, func(st *bracket.State) (*bracket.State, error) {
		eff, err := st.ValidateCancelMatch(matchID)
		if err != nil {
			return nil, err
		}

		// Capture the participants before the match disappears from the
		// applied state.
		_, m := st.MatchRound(eff.MatchID)
		p1, p2 := m.Player1ID, m.Player2ID

		next := st.Clone()
		next.ApplyCancelMatch(eff)

		err = withTx(ctx, s.db, s.commandTimeout, func(ctx context.Context, tx *sql.Tx) error {
			if err := s.matchRepo.DeleteBatch(ctx, tx, []uuid.UUID{eff.MatchID}); err != nil {
				return err
			}
			for _, pid := range []uuid.UUID{p1, p2} {
				if err := persistPlayer(ctx, tx, s.playerRepo, s.roundRepo, next, pid); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		return next, nil
	})
	if err != nil {
		return err
	}

	s.hub.BroadcastTournament(tournamentID, live.EventMatchCanceled, map[string]interface{}{"match_id": matchID})
	return nil
}
