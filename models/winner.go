package models

import (
	"time"

	"github.com/google/uuid"
)

// WinnerRecord is one entry of the append-only winner history. Superseded
// winners keep their records; the display projection is derived on top.
type WinnerRecord struct {
	ID       int       `json:"id" db:"id"`
	PlayerID uuid.UUID `json:"player_id" db:"player_id"`
	RoundID  uuid.UUID `json:"round_id" db:"round_id"`
	MatchID  uuid.UUID `json:"match_id" db:"match_id"`
	WonAt    time.Time `json:"won_at" db:"won_at"`
}

// WinnerEntry is one row of the winner display projection: at most one entry
// per player, keeping the player's latest win, ranked most-recent-first and
// annotated with the organizer-assigned title.
type WinnerEntry struct {
	PlayerID uuid.UUID `json:"player_id" db:"player_id"`
	RoundID  uuid.UUID `json:"round_id" db:"round_id"`
	WonAt    time.Time `json:"won_at" db:"won_at"`
	Rank     int       `json:"rank" db:"rank"`
	Title    string    `json:"title" db:"title"`
	Selected bool      `json:"selected" db:"selected"`
}

// PredefinedTitles are the suggested champion titles; the organizer may also
// enter free text.
var PredefinedTitles = []string{
	"Champion",
	"Runner-Up",
	"Semi-Finalist",
	"Break & Run King",
	"Best Newcomer",
}
