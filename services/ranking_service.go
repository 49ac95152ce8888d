package services

import (
	"context"
	"database/sql"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/NareshCreations/billiards-tournament-system/bracket"
	"github.com/NareshCreations/billiards-tournament-system/live"
	"github.com/NareshCreations/billiards-tournament-system/models"
	"github.com/NareshCreations/billiards-tournament-system/repositories"
)

type RankingService interface {
	Projection(ctx context.Context, tournamentID uuid.UUID) ([]models.WinnerEntry, error)
	OpenDraft(ctx context.Context, tournamentID uuid.UUID) ([]models.WinnerEntry, error)
	SaveDraft(ctx context.Context, tournamentID uuid.UUID, input SaveDraftInput) (*SaveDraftResult, error)
}

type SaveDraftInput struct {
	Entries []DraftEntryInput `json:"entries"`
}

type DraftEntryInput struct {
	PlayerID uuid.UUID `json:"player_id"`
	Rank     int       `json:"rank"`
	Title    string    `json:"title"`
	Selected bool      `json:"selected"`
}

// SaveDraftResult reports the committed entries plus how many could not be
// written through because their players carry no external identity.
type SaveDraftResult struct {
	Entries []models.WinnerEntry `json:"entries"`
	Skipped int                  `json:"skipped"`
}

type rankingService struct {
	db             *sql.DB
	winnerRepo     repositories.WinnerRepository
	store          *StateStore
	hub            *live.Hub
	commandTimeout time.Duration
	logger         *slog.Logger
}

func NewRankingService(
	db *sql.DB,
	winnerRepo repositories.WinnerRepository,
	store *StateStore,
	hub *live.Hub,
	commandTimeout time.Duration,
	logger *slog.Logger,
) RankingService {
	return &rankingService{
		db:             db,
		winnerRepo:     winnerRepo,
		store:          store,
		hub:            hub,
		commandTimeout: commandTimeout,
		logger:         logger,
	}
}

func (s *rankingService) Projection(ctx context.Context, tournamentID uuid.UUID) ([]models.WinnerEntry, error) {
	var out []models.WinnerEntry
	err := s.store.With(ctx, tournamentID, func(st *bracket.State) (*bracket.State, error) {
		out = append([]models.WinnerEntry(nil), st.Projection...)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.WinnerEntry{}
	}
	return out, nil
}

// OpenDraft returns a fresh edit buffer over the top of the projection.
func (s *rankingService) OpenDraft(ctx context.Context, tournamentID uuid.UUID) ([]models.WinnerEntry, error) {
	var out []models.WinnerEntry
	err := s.store.With(ctx, tournamentID, func(st *bracket.State) (*bracket.State, error) {
		out = st.NewRankingDraft().Entries
		return nil, nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.WinnerEntry{}
	}
	return out, nil
}

// SaveDraft replays the organizer's edits onto a fresh draft and commits the
// result. Edits buffered client-side have no effect until this call.
func (s *rankingService) SaveDraft(ctx context.Context, tournamentID uuid.UUID, input SaveDraftInput) (*SaveDraftResult, error) {
	var result *SaveDraftResult
	err := s.store.With(ctx, tournamentID, func(st *bracket.State) (*bracket.State, error) {
		draft := st.NewRankingDraft()
		for _, e := range input.Entries {
			if err := draft.SetTitle(e.PlayerID, e.Title); err != nil {
				return nil, err
			}
			if err := draft.SetSelected(e.PlayerID, e.Selected); err != nil {
				return nil, err
			}
		}
		ordered := append([]DraftEntryInput(nil), input.Entries...)
		sort.SliceStable(ordered, func(a, b int) bool { return ordered[a].Rank < ordered[b].Rank })
		for i, e := range ordered {
			if err := draft.MoveRank(e.PlayerID, i+1); err != nil {
				return nil, err
			}
		}

		eff, err := st.ValidateSaveDraft(draft)
		if err != nil {
			return nil, err
		}
		next := st.Clone()
		next.ApplySaveDraft(eff)

		err = withTx(ctx, s.db, s.commandTimeout, func(ctx context.Context, tx *sql.Tx) error {
			if len(eff.Persist) == 0 {
				return nil
			}
			return s.winnerRepo.SaveTitles(ctx, tx, tournamentID, eff.Persist)
		})
		if err != nil {
			return nil, err
		}
		result = &SaveDraftResult{Entries: eff.Entries, Skipped: eff.Skipped}
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.BroadcastTournament(tournamentID, live.EventRankingSaved, result)
	s.logger.Info("ranking draft saved", "tournament_id", tournamentID, "entries", len(result.Entries), "skipped", result.Skipped)
	return result, nil
}
