package models

import "github.com/google/uuid"

// PlayerStatus mirrors the status ENUM in the players table.
type PlayerStatus string

const (
	PlayerStatusAvailable  PlayerStatus = "available"
	PlayerStatusInRound    PlayerStatus = "in_round"
	PlayerStatusInMatch    PlayerStatus = "in_match"
	PlayerStatusInLobby    PlayerStatus = "in_lobby"
	PlayerStatusEliminated PlayerStatus = "eliminated"
	PlayerStatusWaiting    PlayerStatus = "waiting"
	PlayerStatusWinner     PlayerStatus = "winner"
)

// Player is a tournament roster entry. ExternalID is the stable identity the
// persistence layer keys winner titles on; players created from an unsynced
// roster may not have one.
type Player struct {
	ID           uuid.UUID    `json:"id" db:"id"`
	TournamentID uuid.UUID    `json:"tournament_id" db:"tournament_id"`
	ExternalID   *string      `json:"external_id,omitempty" db:"external_id"`
	DisplayName  string       `json:"display_name" db:"display_name"`
	SkillTag     *string      `json:"skill_tag,omitempty" db:"skill_tag"`
	Status       PlayerStatus `json:"status" db:"status"`

	// Round lineage. CurrentRoundID is nil while the player sits in the
	// staging pool. LastRoundIndexPlayed is -1 until the player has been in
	// a round at least once.
	CurrentRoundID        *uuid.UUID `json:"current_round_id,omitempty" db:"current_round_id"`
	LastRoundIndexPlayed  int        `json:"last_round_index_played" db:"last_round_index_played"`
	IsPreviousRoundWinner bool       `json:"is_previous_round_winner" db:"is_previous_round_winner"`

	// OriginalWinningRoundID is the first round the player ever won,
	// LastWinningRoundID the most recent one. Both stay set after the player
	// moves on; they bound backward movement and pool routing.
	OriginalWinningRoundID *uuid.UUID `json:"original_winning_round_id,omitempty" db:"original_winning_round_id"`
	LastWinningRoundID     *uuid.UUID `json:"last_winning_round_id,omitempty" db:"last_winning_round_id"`

	AvatarKey *string `json:"-" db:"avatar_key"`
	AvatarURL *string `json:"avatar_url,omitempty" db:"-"`
}
