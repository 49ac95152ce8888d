package models

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchStatusPending   MatchStatus = "pending"
	MatchStatusActive    MatchStatus = "active"
	MatchStatusCompleted MatchStatus = "completed"
)

// Match is a head-to-head pairing inside a round. ExternalID is assigned the
// first time the match is mirrored to persistent storage.
type Match struct {
	ID         uuid.UUID   `json:"id" db:"id"`
	RoundID    uuid.UUID   `json:"round_id" db:"round_id"`
	ExternalID *string     `json:"external_id,omitempty" db:"external_id"`
	Player1ID  uuid.UUID   `json:"player1_id" db:"player1_id"`
	Player2ID  uuid.UUID   `json:"player2_id" db:"player2_id"`
	Status     MatchStatus `json:"status" db:"status"`
	WinnerID   *uuid.UUID  `json:"winner_id,omitempty" db:"winner_id"`
	Score1     *int        `json:"score1,omitempty" db:"score1"`
	Score2     *int        `json:"score2,omitempty" db:"score2"`

	StartedAt   *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// Has reports whether id is one of the two participants.
func (m *Match) Has(id uuid.UUID) bool {
	return m.Player1ID == id || m.Player2ID == id
}

// Opponent returns the other participant of the match.
func (m *Match) Opponent(id uuid.UUID) (uuid.UUID, bool) {
	switch id {
	case m.Player1ID:
		return m.Player2ID, true
	case m.Player2ID:
		return m.Player1ID, true
	}
	return uuid.Nil, false
}
