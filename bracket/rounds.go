package bracket

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/NareshCreations/billiards-tournament-system/models"
)

type CreateRoundEffect struct {
	Round *models.Round
}

// ValidateCreateRound appends a new round at the end of the sequence. A
// display name stays reserved while any existing round uses it and is freed
// again when that round is closed.
func (s *State) ValidateCreateRound(displayName string) (*CreateRoundEffect, error) {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return nil, reject(RejectDuplicateRoundName, "round name must not be empty")
	}
	for _, r := range s.Rounds {
		if strings.EqualFold(r.DisplayName, name) {
			return nil, reject(RejectDuplicateRoundName, "a round named %q already exists", r.DisplayName)
		}
	}
	position := len(s.Rounds) + 1
	return &CreateRoundEffect{Round: &models.Round{
		ID:           uuid.New(),
		TournamentID: s.TournamentID,
		DisplayName:  name,
		OrdinalName:  fmt.Sprintf("round-%d", position),
		Position:     position,
		Status:       models.RoundStatusOpen,
		Placements:   make(map[uuid.UUID]models.Placement),
	}}, nil
}

func (s *State) ApplyCreateRound(eff *CreateRoundEffect) {
	s.Rounds = append(s.Rounds, eff.Round)
}

type RenameRoundEffect struct {
	RoundID uuid.UUID
	Name    string
}

// ValidateRenameRound changes a round's display name under the same
// uniqueness rule as creation. Renaming a frozen round is allowed: the name
// is presentation, not round content.
func (s *State) ValidateRenameRound(roundID uuid.UUID, displayName string) (*RenameRoundEffect, error) {
	r := s.Round(roundID)
	if r == nil {
		return nil, reject(RejectRoundNotFound, "round %s not found", roundID)
	}
	name := strings.TrimSpace(displayName)
	if name == "" {
		return nil, reject(RejectDuplicateRoundName, "round name must not be empty")
	}
	for _, other := range s.Rounds {
		if other.ID != r.ID && strings.EqualFold(other.DisplayName, name) {
			return nil, reject(RejectDuplicateRoundName, "a round named %q already exists", other.DisplayName)
		}
	}
	return &RenameRoundEffect{RoundID: r.ID, Name: name}, nil
}

func (s *State) ApplyRenameRound(eff *RenameRoundEffect) {
	if r := s.Round(eff.RoundID); r != nil {
		r.DisplayName = eff.Name
	}
}

type FreezeRoundEffect struct {
	RoundID uuid.UUID
}

// ValidateFreezeRound locks a round permanently. Every match must be
// completed and no player may remain unpaired.
func (s *State) ValidateFreezeRound(roundID uuid.UUID) (*FreezeRoundEffect, error) {
	r := s.Round(roundID)
	if r == nil {
		return nil, reject(RejectRoundNotFound, "round %s not found", roundID)
	}
	if r.IsFrozen {
		return nil, reject(RejectAlreadyFrozen, "round %q is already frozen", r.DisplayName)
	}
	for _, m := range r.Matches {
		if m.Status != models.MatchStatusCompleted {
			return nil, reject(RejectMatchesUnfinished,
				"round %q still has unfinished matches", r.DisplayName)
		}
	}
	if n := len(r.StagedIDs()); n > 0 {
		return nil, reject(RejectUnpairedPlayers,
			"round %q still has %d unpaired players", r.DisplayName, n)
	}
	return &FreezeRoundEffect{RoundID: r.ID}, nil
}

func (s *State) ApplyFreezeRound(eff *FreezeRoundEffect) {
	if r := s.Round(eff.RoundID); r != nil {
		r.IsFrozen = true
		r.Status = models.RoundStatusCompleted
	}
}

type CloseRoundEffect struct {
	RoundID uuid.UUID
}

// ValidateCloseRound removes a round. Only the last round of the sequence
// may go, and only while it is completely empty.
func (s *State) ValidateCloseRound(roundID uuid.UUID) (*CloseRoundEffect, error) {
	r := s.Round(roundID)
	if r == nil {
		return nil, reject(RejectRoundNotFound, "round %s not found", roundID)
	}
	if last := s.LastRound(); last == nil || last.ID != r.ID {
		return nil, reject(RejectRoundNotLast, "round %q is not the last round, only the last round can be closed", r.DisplayName)
	}
	if !r.IsEmpty() {
		return nil, reject(RejectRoundNotEmpty, "round %q is not empty and cannot be closed", r.DisplayName)
	}
	return &CloseRoundEffect{RoundID: r.ID}, nil
}

func (s *State) ApplyCloseRound(eff *CloseRoundEffect) {
	kept := s.Rounds[:0]
	for _, r := range s.Rounds {
		if r.ID != eff.RoundID {
			kept = append(kept, r)
		}
	}
	s.Rounds = kept
}
