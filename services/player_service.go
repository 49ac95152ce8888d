package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"github.com/NareshCreations/billiards-tournament-system/bracket"
	"github.com/NareshCreations/billiards-tournament-system/models"
	"github.com/NareshCreations/billiards-tournament-system/repositories"
	"github.com/NareshCreations/billiards-tournament-system/storage"
)

var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

type PlayerService interface {
	UploadAvatar(ctx context.Context, tournamentID, playerID uuid.UUID, contentType string, file io.Reader) (*models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	uploader   storage.FileUploader
	store      *StateStore
	logger     *slog.Logger
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	uploader storage.FileUploader,
	store *StateStore,
	logger *slog.Logger,
) PlayerService {
	return &playerService{
		playerRepo: playerRepo,
		uploader:   uploader,
		store:      store,
		logger:     logger,
	}
}

// UploadAvatar stores a player's avatar image and records the object key.
// The previous avatar object, if any, is removed best-effort.
func (s *playerService) UploadAvatar(ctx context.Context, tournamentID, playerID uuid.UUID, contentType string, file io.Reader) (*models.Player, error) {
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported avatar content type %q", ErrValidationFailed, contentType)
	}

	var player models.Player
	var oldKey *string
	err := s.store.With(ctx, tournamentID, func(st *bracket.State) (*bracket.State, error) {
		p := st.Player(playerID)
		if p == nil {
			return nil, ErrPlayerNotFound
		}
		player = *p
		oldKey = p.AvatarKey
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("avatars/%s/%s-%s%s", tournamentID, slug.Make(player.DisplayName), playerID, ext)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	if err := s.playerRepo.UpdateAvatarKey(ctx, playerID, &result.Key); err != nil {
		return nil, err
	}
	s.store.Invalidate(tournamentID)

	if oldKey != nil && *oldKey != "" && *oldKey != result.Key {
		if err := s.uploader.Delete(ctx, *oldKey); err != nil {
			s.logger.Warn("failed to delete previous avatar object", "key", *oldKey, "error", err)
		}
	}

	player.AvatarKey = &result.Key
	url := s.uploader.GetPublicURL(result.Key)
	player.AvatarURL = &url
	s.logger.Info("player avatar uploaded", "player_id", playerID, "key", result.Key)
	return &player, nil
}
