package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/NareshCreations/billiards-tournament-system/bracket"
	"github.com/NareshCreations/billiards-tournament-system/live"
	"github.com/NareshCreations/billiards-tournament-system/models"
	"github.com/NareshCreations/billiards-tournament-system/repositories"
)

type TournamentService interface {
	Create(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error)
	List(ctx context.Context, organizerID int) ([]*models.Tournament, error)
	GetSnapshot(ctx context.Context, tournamentID uuid.UUID) (*models.TournamentSnapshot, error)
	Close(ctx context.Context, tournamentID uuid.UUID, organizerID int) (*models.Tournament, error)
	ImportRoster(ctx context.Context, tournamentID uuid.UUID, organizerID int, input RosterInput) ([]*models.Player, error)
	CompleteDecided(ctx context.Context) error
}

type CreateTournamentInput struct {
	Name      string  `json:"name"`
	RulesText *string `json:"rules_text"`
}

type RosterInput struct {
	Players []RosterPlayerInput `json:"players"`
}

type RosterPlayerInput struct {
	ExternalID  *string `json:"external_id"`
	DisplayName string  `json:"display_name"`
	SkillTag    *string `json:"skill_tag"`
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	playerRepo     repositories.PlayerRepository
	store          *StateStore
	hub            *live.Hub
	commandTimeout time.Duration
	logger         *slog.Logger
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	playerRepo repositories.PlayerRepository,
	store *StateStore,
	hub *live.Hub,
	commandTimeout time.Duration,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		playerRepo:     playerRepo,
		store:          store,
		hub:            hub,
		commandTimeout: commandTimeout,
		logger:         logger,
	}
}

func (s *tournamentService) Create(ctx context.Context, organizerID int, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	t := &models.Tournament{
		ID:          uuid.New(),
		Name:        name,
		OrganizerID: organizerID,
		RulesText:   input.RulesText,
		Status:      models.TournamentStatusActive,
	}

	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	s.logger.Info("tournament created", "tournament_id", t.ID, "organizer_id", organizerID)
	return t, nil
}

func (s *tournamentService) List(ctx context.Context, organizerID int) ([]*models.Tournament, error) {
	tournaments, err := s.tournamentRepo.ListByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	return tournaments, nil
}

// GetSnapshot assembles the full render state: the tournament row from
// storage and the engine view (rounds, staging pool, winner projection) from
// the state store, fetched concurrently.
func (s *tournamentService) GetSnapshot(ctx context.Context, tournamentID uuid.UUID) (*models.TournamentSnapshot, error) {
	snapshot := &models.TournamentSnapshot{}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.tournamentRepo.GetByID(gCtx, tournamentID)
		if err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return ErrTournamentNotFound
			}
			return fmt.Errorf("failed to fetch tournament %s: %w", tournamentID, err)
		}
		snapshot.Tournament = t
		return nil
	})

	g.Go(func() error {
		return s.store.With(gCtx, tournamentID, func(st *bracket.State) (*bracket.State, error) {
			// Read-only access; clone so the snapshot cannot alias state the
			// next command mutates.
			view := st.Clone()
			snapshot.Rounds = view.Rounds
			snapshot.StagingPool = view.StagingPool()
			snapshot.Winners = view.Projection
			return nil, nil
		})
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if snapshot.Rounds == nil {
		snapshot.Rounds = []*models.Round{}
	}
	if snapshot.StagingPool == nil {
		snapshot.StagingPool = []*models.Player{}
	}
	if snapshot.Winners == nil {
		snapshot.Winners = []models.WinnerEntry{}
	}
	return snapshot, nil
}

// Close marks a tournament closed. Closing an already-closed tournament is a
// no-op so retried confirmations stay safe.
func (s *tournamentService) Close(ctx context.Context, tournamentID uuid.UUID, organizerID int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to fetch tournament %s: %w", tournamentID, err)
	}
	if t.OrganizerID != organizerID {
		return nil, ErrForbiddenOperation
	}
	if t.Status == models.TournamentStatusClosed {
		return t, nil
	}

	now := time.Now().UTC()
	err = withTx(ctx, s.db, s.commandTimeout, func(ctx context.Context, tx *sql.Tx) error {
		return s.tournamentRepo.UpdateStatus(ctx, tx, tournamentID, models.TournamentStatusClosed, &now)
	})
	if err != nil {
		return nil, err
	}

	t.Status = models.TournamentStatusClosed
	t.ClosedAt = &now
	s.store.Invalidate(tournamentID)
	s.hub.BroadcastTournament(tournamentID, live.EventTournamentDone, t)
	s.logger.Info("tournament closed", "tournament_id", tournamentID)
	return t, nil
}

// ImportRoster pulls a player list into the staging pool. Existing players
// (matched on external identity) are left untouched.
func (s *tournamentService) ImportRoster(ctx context.Context, tournamentID uuid.UUID, organizerID int, input RosterInput) ([]*models.Player, error) {
	if len(input.Players) == 0 {
		return nil, ErrRosterEmpty
	}

	t, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to fetch tournament %s: %w", tournamentID, err)
	}
	if t.OrganizerID != organizerID {
		return nil, ErrForbiddenOperation
	}
	if t.Status == models.TournamentStatusClosed {
		return nil, ErrTournamentClosed
	}

	players := make([]*models.Player, 0, len(input.Players))
	for _, in := range input.Players {
		name := strings.TrimSpace(in.DisplayName)
		if name == "" {
			return nil, fmt.Errorf("%w: player display name is required", ErrValidationFailed)
		}
		players = append(players, &models.Player{
			ID:                   uuid.New(),
			TournamentID:         tournamentID,
			ExternalID:           in.ExternalID,
			DisplayName:          name,
			SkillTag:             in.SkillTag,
			Status:               models.PlayerStatusAvailable,
			LastRoundIndexPlayed: -1,
		})
	}

	err = withTx(ctx, s.db, s.commandTimeout, func(ctx context.Context, tx *sql.Tx) error {
		return s.playerRepo.CreateBatch(ctx, tx, players)
	})
	if err != nil {
		return nil, err
	}

	s.store.Invalidate(tournamentID)
	s.hub.BroadcastTournament(tournamentID, live.EventRosterImported, map[string]interface{}{
		"count": len(players),
	})
	s.logger.Info("roster imported", "tournament_id", tournamentID, "players", len(players))
	return players, nil
}

// CompleteDecided moves active tournaments whose bracket has produced a
// champion in a frozen final round to completed. Called from the status
// sweeper in main.
func (s *tournamentService) CompleteDecided(ctx context.Context) error {
	active, err := s.tournamentRepo.ListByStatus(ctx, models.TournamentStatusActive)
	if err != nil {
		return fmt.Errorf("failed to list active tournaments: %w", err)
	}

	for _, t := range active {
		decided := false
		err := s.store.With(ctx, t.ID, func(st *bracket.State) (*bracket.State, error) {
			last := st.LastRound()
			if last == nil || !last.IsFrozen {
				return nil, nil
			}
			decided = len(last.WinnerIDs()) > 0
			return nil, nil
		})
		if err != nil {
			s.logger.Error("status sweep failed to load state", "tournament_id", t.ID, "error", err)
			continue
		}
		if !decided {
			continue
		}

		err = withTx(ctx, s.db, s.commandTimeout, func(ctx context.Context, tx *sql.Tx) error {
			return s.tournamentRepo.UpdateStatus(ctx, tx, t.ID, models.TournamentStatusCompleted, nil)
		})
		if err != nil {
			s.logger.Error("status sweep failed to complete tournament", "tournament_id", t.ID, "error", err)
			continue
		}
		s.logger.Info("tournament completed by sweep", "tournament_id", t.ID)
	}
	return nil
}
