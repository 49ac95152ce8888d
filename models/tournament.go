package models

import (
	"time"

	"github.com/google/uuid"
)

type TournamentStatus string

const (
	TournamentStatusActive    TournamentStatus = "active"
	TournamentStatusCompleted TournamentStatus = "completed"
	TournamentStatusClosed    TournamentStatus = "closed"
)

// Tournament is the organizer-facing competition record. RulesText is opaque
// organizer-entered text (race length, ball-in-hand conventions and so on);
// the engine never interprets it.
type Tournament struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	OrganizerID int              `json:"organizer_id" db:"organizer_id"`
	RulesText   *string          `json:"rules_text,omitempty" db:"rules_text"`
	Status      TournamentStatus `json:"status" db:"status"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	ClosedAt    *time.Time       `json:"closed_at,omitempty" db:"closed_at"`
}

// TournamentSnapshot is what the UI re-renders from after every accepted
// command: the full round sequence, the staging pool, and the winner
// projection.
type TournamentSnapshot struct {
	Tournament  *Tournament   `json:"tournament"`
	Rounds      []*Round      `json:"rounds"`
	StagingPool []*Player     `json:"staging_pool"`
	Winners     []WinnerEntry `json:"winners"`
}
