package bracket

import (
	"time"

	"github.com/google/uuid"

	"github.com/NareshCreations/billiards-tournament-system/models"
)

type StartMatchEffect struct {
	RoundID   uuid.UUID
	MatchID   uuid.UUID
	StartedAt time.Time
}

// ValidateStartMatch transitions a pending match toward active play.
func (s *State) ValidateStartMatch(matchID uuid.UUID) (*StartMatchEffect, error) {
	r, m := s.MatchRound(matchID)
	if m == nil {
		return nil, reject(RejectMatchNotFound, "match %s not found", matchID)
	}
	if r.IsFrozen {
		return nil, reject(RejectFrozenRound, "round %q is frozen, its matches cannot start", r.DisplayName)
	}
	if m.Status != models.MatchStatusPending {
		return nil, reject(RejectMatchNotPending, "match is %s, only pending matches can start", m.Status)
	}
	if s.Player(m.Player1ID) == nil || s.Player(m.Player2ID) == nil {
		return nil, reject(RejectPlayerNotFound, "match references an unknown player")
	}
	return &StartMatchEffect{RoundID: r.ID, MatchID: m.ID, StartedAt: time.Now()}, nil
}

func (s *State) ApplyStartMatch(eff *StartMatchEffect) {
	_, m := s.MatchRound(eff.MatchID)
	if m == nil {
		return
	}
	started := eff.StartedAt
	m.Status = models.MatchStatusActive
	m.StartedAt = &started
}

// SelectWinnerEffect records a winner choice, including the demotion chain
// when a previously recorded winner is being replaced.
type SelectWinnerEffect struct {
	RoundID    uuid.UUID
	MatchID    uuid.UUID
	WinnerID   uuid.UUID
	LoserID    uuid.UUID
	PrevWinner *uuid.UUID
	PrevLoser  *uuid.UUID
	Score1     *int
	Score2     *int
	WonAt      time.Time
}

// ValidateSelectWinner checks a winner choice against the match. Choosing
// the already-recorded winner again is refused; choosing the other player
// demotes the previous winner and reinstates the previous loser.
func (s *State) ValidateSelectWinner(matchID, winnerID uuid.UUID, score1, score2 *int) (*SelectWinnerEffect, error) {
	r, m := s.MatchRound(matchID)
	if m == nil {
		return nil, reject(RejectMatchNotFound, "match %s not found", matchID)
	}
	if r.IsFrozen {
		return nil, reject(RejectFrozenRound, "round %q is frozen, its results cannot change", r.DisplayName)
	}
	loserID, ok := m.Opponent(winnerID)
	if !ok {
		return nil, reject(RejectWinnerNotInMatch, "player %s is not a participant of this match", winnerID)
	}
	if m.WinnerID != nil && *m.WinnerID == winnerID {
		return nil, reject(RejectSameWinner, "%s is already the recorded winner of this match",
			s.playerName(winnerID))
	}

	eff := &SelectWinnerEffect{
		RoundID:  r.ID,
		MatchID:  m.ID,
		WinnerID: winnerID,
		LoserID:  loserID,
		Score1:   score1,
		Score2:   score2,
		WonAt:    time.Now(),
	}
	if m.WinnerID != nil {
		prev := *m.WinnerID
		eff.PrevWinner = &prev
		if prevLoser, ok := m.Opponent(prev); ok {
			eff.PrevLoser = &prevLoser
		}
	}
	return eff, nil
}

func (s *State) ApplySelectWinner(eff *SelectWinnerEffect) {
	r, m := s.MatchRound(eff.MatchID)
	if m == nil {
		return
	}

	// Winner change: the superseded winner joins the losers, the player it
	// had eliminated is no longer eliminated.
	if eff.PrevWinner != nil {
		if p := s.Player(*eff.PrevWinner); p != nil {
			s.place(p, r, models.Placement{Kind: models.PlacementEliminated}, models.PlayerStatusEliminated)
		}
	}
	if eff.PrevLoser != nil {
		if p := s.Player(*eff.PrevLoser); p != nil {
			s.place(p, r, models.Placement{Kind: models.PlacementPaired, MatchID: m.ID}, models.PlayerStatusInMatch)
		}
	}

	if loser := s.Player(eff.LoserID); loser != nil {
		s.place(loser, r, models.Placement{Kind: models.PlacementEliminated}, models.PlayerStatusEliminated)
	}
	if winner := s.Player(eff.WinnerID); winner != nil {
		s.place(winner, r, models.Placement{Kind: models.PlacementChampion}, models.PlayerStatusWinner)
		rid := r.ID
		winner.LastWinningRoundID = &rid
		if winner.OriginalWinningRoundID == nil {
			winner.OriginalWinningRoundID = &rid
		}
		winner.LastRoundIndexPlayed = r.Position
	}

	winnerID := eff.WinnerID
	completed := eff.WonAt
	m.Status = models.MatchStatusCompleted
	m.WinnerID = &winnerID
	m.Score1 = eff.Score1
	m.Score2 = eff.Score2
	m.CompletedAt = &completed

	if eff.PrevWinner != nil {
		if p := s.Player(*eff.PrevWinner); p != nil {
			s.resetWinningLineage(p)
		}
	}

	s.History = append(s.History, models.WinnerRecord{
		PlayerID: eff.WinnerID,
		RoundID:  r.ID,
		MatchID:  m.ID,
		WonAt:    eff.WonAt,
	})
	s.RebuildProjection()
}

type CancelMatchEffect struct {
	RoundID uuid.UUID
	MatchID uuid.UUID
}

// ValidateCancelMatch deletes a pending or active match, returning both of
// its players to the round's unpaired set.
func (s *State) ValidateCancelMatch(matchID uuid.UUID) (*CancelMatchEffect, error) {
	r, m := s.MatchRound(matchID)
	if m == nil {
		return nil, reject(RejectMatchNotFound, "match %s not found", matchID)
	}
	if r.IsFrozen {
		return nil, reject(RejectFrozenRound, "round %q is frozen, its matches cannot be cancelled", r.DisplayName)
	}
	if m.Status == models.MatchStatusCompleted {
		return nil, reject(RejectMatchCompleted, "a completed match cannot be cancelled")
	}
	return &CancelMatchEffect{RoundID: r.ID, MatchID: m.ID}, nil
}

func (s *State) ApplyCancelMatch(eff *CancelMatchEffect) {
	r, m := s.MatchRound(eff.MatchID)
	if m == nil {
		return
	}

	kept := r.Matches[:0]
	for _, other := range r.Matches {
		if other.ID != m.ID {
			kept = append(kept, other)
		}
	}
	r.Matches = kept

	for _, pid := range []uuid.UUID{m.Player1ID, m.Player2ID} {
		if p := s.Player(pid); p != nil {
			s.place(p, r, models.Placement{Kind: models.PlacementStaged}, models.PlayerStatusInRound)
		}
	}
}

// resetWinningLineage recomputes a player's winning-round bounds from the
// matches that still name them as winner. A demoted winner whose only win
// was superseded loses the lineage entirely, so pool moves no longer route
// them back into a winner list.
func (s *State) resetWinningLineage(p *models.Player) {
	p.OriginalWinningRoundID = nil
	p.LastWinningRoundID = nil
	for _, r := range s.Rounds {
		for _, m := range r.Matches {
			if m.WinnerID == nil || *m.WinnerID != p.ID {
				continue
			}
			rid := r.ID
			if p.OriginalWinningRoundID == nil {
				p.OriginalWinningRoundID = &rid
			}
			p.LastWinningRoundID = &rid
		}
	}
}

func (s *State) playerName(id uuid.UUID) string {
	if p := s.Player(id); p != nil {
		return p.DisplayName
	}
	return id.String()
}
