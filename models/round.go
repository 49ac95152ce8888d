package models

import "github.com/google/uuid"

type RoundStatus string

const (
	RoundStatusOpen      RoundStatus = "open"
	RoundStatusCompleted RoundStatus = "completed"
)

// PlacementKind is the single tagged state a player holds inside a round.
// The round derives its players/winners/losers views from these placements,
// so a player can never be listed in two of them at once.
type PlacementKind string

const (
	PlacementStaged     PlacementKind = "staged"
	PlacementPaired     PlacementKind = "paired"
	PlacementEliminated PlacementKind = "eliminated"
	PlacementChampion   PlacementKind = "champion"
)

type Placement struct {
	Kind    PlacementKind `json:"kind" db:"kind"`
	MatchID uuid.UUID     `json:"match_id,omitempty" db:"match_id"`
}

// Round is one ordered stage of the tournament. Position (the round's index
// in the tournament sequence) is authoritative for ordering rules;
// OrdinalName is the internal "round-N" name, DisplayName the
// organizer-editable one.
type Round struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	TournamentID uuid.UUID   `json:"tournament_id" db:"tournament_id"`
	DisplayName  string      `json:"display_name" db:"display_name"`
	OrdinalName  string      `json:"ordinal_name" db:"ordinal_name"`
	Position     int         `json:"position" db:"position"`
	Status       RoundStatus `json:"status" db:"status"`
	IsFrozen     bool        `json:"is_frozen" db:"is_frozen"`

	// Shuffled records whether the round has been paired at least once. The
	// UI uses it to hide the first-shuffle affordance; no rule depends on it.
	Shuffled bool `json:"shuffled" db:"shuffled"`

	Matches    []*Match                `json:"matches"`
	Placements map[uuid.UUID]Placement `json:"placements"`
}

// PlayerIDs returns the round's active player set: everyone staged or paired,
// excluding resolved winners and losers.
func (r *Round) PlayerIDs() []uuid.UUID {
	return r.idsWhere(func(p Placement) bool {
		return p.Kind == PlacementStaged || p.Kind == PlacementPaired
	})
}

// StagedIDs returns players in the round that no match references yet.
func (r *Round) StagedIDs() []uuid.UUID {
	return r.idsWhere(func(p Placement) bool { return p.Kind == PlacementStaged })
}

func (r *Round) WinnerIDs() []uuid.UUID {
	return r.idsWhere(func(p Placement) bool { return p.Kind == PlacementChampion })
}

func (r *Round) LoserIDs() []uuid.UUID {
	return r.idsWhere(func(p Placement) bool { return p.Kind == PlacementEliminated })
}

func (r *Round) idsWhere(keep func(Placement) bool) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Placements))
	for id, p := range r.Placements {
		if keep(p) {
			ids = append(ids, id)
		}
	}
	return ids
}

// IsEmpty reports whether the round holds nothing at all; only an empty last
// round may be closed.
func (r *Round) IsEmpty() bool {
	return len(r.Placements) == 0 && len(r.Matches) == 0
}

// IsActive reports whether anything has happened in the round yet. Forward
// moves may not skip over inactive rounds.
func (r *Round) IsActive() bool {
	return len(r.Placements) > 0 || len(r.Matches) > 0
}

// MatchByID looks a match up in the round's match list.
func (r *Round) MatchByID(id uuid.UUID) *Match {
	for _, m := range r.Matches {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// CompletedMatchCount is used by the forward-movement gate.
func (r *Round) CompletedMatchCount() int {
	n := 0
	for _, m := range r.Matches {
		if m.Status == MatchStatusCompleted {
			n++
		}
	}
	return n
}
