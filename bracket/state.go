// Package bracket implements the tournament round and bracket progression
// engine: how players are partitioned into rounds, paired into matches,
// resolved into winners and losers, and ranked into a final champion list.
//
// The package is pure. Every command is two-phase: a Validate function checks
// the command against a State and returns an Effect, and an Apply function
// writes the Effect into the State. Callers run their remote write between
// the two phases, so local state only ever changes after the backend has
// confirmed the mutation.
package bracket

import (
	"sort"

	"github.com/google/uuid"

	"github.com/NareshCreations/billiards-tournament-system/models"
)

// State is the canonical in-memory representation of one tournament: the
// player pool, the ordered round sequence, the append-only winner history,
// and the derived winner display projection.
type State struct {
	TournamentID uuid.UUID
	Players      map[uuid.UUID]*models.Player
	Rounds       []*models.Round
	History      []models.WinnerRecord
	Projection   []models.WinnerEntry
	Policy       Policy
}

func NewState(tournamentID uuid.UUID) *State {
	return &State{
		TournamentID: tournamentID,
		Players:      make(map[uuid.UUID]*models.Player),
		Policy:       DefaultPolicy(),
	}
}

// AddPlayer registers a roster entry into the staging pool. Players are never
// removed for the lifetime of the tournament.
func (s *State) AddPlayer(p *models.Player) {
	if p.Status == "" {
		p.Status = models.PlayerStatusAvailable
	}
	if p.LastRoundIndexPlayed == 0 && p.CurrentRoundID == nil {
		p.LastRoundIndexPlayed = -1
	}
	s.Players[p.ID] = p
}

func (s *State) Player(id uuid.UUID) *models.Player {
	return s.Players[id]
}

func (s *State) Round(id uuid.UUID) *models.Round {
	for _, r := range s.Rounds {
		if r.ID == id {
			return r
		}
	}
	return nil
}

// RoundIndex returns the position of the round in the sequence, or -1.
func (s *State) RoundIndex(id uuid.UUID) int {
	for i, r := range s.Rounds {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (s *State) LastRound() *models.Round {
	if len(s.Rounds) == 0 {
		return nil
	}
	return s.Rounds[len(s.Rounds)-1]
}

// MatchRound locates a match and the round that owns it.
func (s *State) MatchRound(matchID uuid.UUID) (*models.Round, *models.Match) {
	for _, r := range s.Rounds {
		if m := r.MatchByID(matchID); m != nil {
			return r, m
		}
	}
	return nil, nil
}

// StagingPool returns every player not currently assigned to a round, in a
// stable display-name order.
func (s *State) StagingPool() []*models.Player {
	pool := make([]*models.Player, 0, len(s.Players))
	for _, p := range s.Players {
		if p.CurrentRoundID == nil {
			pool = append(pool, p)
		}
	}
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].DisplayName != pool[j].DisplayName {
			return pool[i].DisplayName < pool[j].DisplayName
		}
		return pool[i].ID.String() < pool[j].ID.String()
	})
	return pool
}

// Clone deep-copies the state. Callers apply effects to the clone, persist,
// and swap it in only once the remote write has been confirmed.
func (s *State) Clone() *State {
	out := &State{
		TournamentID: s.TournamentID,
		Players:      make(map[uuid.UUID]*models.Player, len(s.Players)),
		Rounds:       make([]*models.Round, 0, len(s.Rounds)),
		History:      append([]models.WinnerRecord(nil), s.History...),
		Projection:   append([]models.WinnerEntry(nil), s.Projection...),
		Policy:       s.Policy,
	}
	for id, p := range s.Players {
		cp := *p
		out.Players[id] = &cp
	}
	for _, r := range s.Rounds {
		cr := *r
		cr.Matches = make([]*models.Match, len(r.Matches))
		for i, m := range r.Matches {
			cm := *m
			cr.Matches[i] = &cm
		}
		cr.Placements = make(map[uuid.UUID]models.Placement, len(r.Placements))
		for id, pl := range r.Placements {
			cr.Placements[id] = pl
		}
		out.Rounds = append(out.Rounds, &cr)
	}
	return out
}

// sortedIDs gives map-derived ID sets a deterministic order before any
// shuffle or comparison.
func sortedIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}
