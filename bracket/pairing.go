package bracket

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/NareshCreations/billiards-tournament-system/models"
)

// ShuffleEffect replaces (full re-pair) or extends (partial pairing) a
// round's match list with freshly drawn pending matches.
type ShuffleEffect struct {
	RoundID         uuid.UUID
	Full            bool
	RemovedMatchIDs []uuid.UUID
	NewMatches      []*models.Match
}

// ValidateShuffle pairs a round. If every player already belongs to some
// match the whole round is re-paired from scratch; otherwise only the
// unmatched players are drawn. The shuffle pool must be even-sized. The
// permutation comes from rng so callers can seed it.
func (s *State) ValidateShuffle(roundID uuid.UUID, rng *rand.Rand) (*ShuffleEffect, error) {
	r := s.Round(roundID)
	if r == nil {
		return nil, reject(RejectRoundNotFound, "round %s not found", roundID)
	}
	if r.IsFrozen {
		return nil, reject(RejectFrozenRound, "round %q is frozen and cannot be shuffled", r.DisplayName)
	}

	staged := sortedIDs(r.StagedIDs())
	eff := &ShuffleEffect{RoundID: r.ID}

	var pool []uuid.UUID
	if len(staged) == 0 {
		// Everyone is already in a match: full re-pair over the whole
		// player list, discarding the existing matches.
		pool = sortedIDs(r.PlayerIDs())
		if len(pool) == 0 {
			return nil, reject(RejectNothingToPair, "round %q has no players to pair", r.DisplayName)
		}
		eff.Full = true
		for _, m := range r.Matches {
			// Completed matches are results, not pairings; they survive a
			// full re-pair.
			if m.Status != models.MatchStatusCompleted {
				eff.RemovedMatchIDs = append(eff.RemovedMatchIDs, m.ID)
			}
		}
	} else {
		pool = staged
	}

	if len(pool)%2 != 0 {
		return nil, reject(RejectOddPool,
			"cannot pair %d players in round %q: 1 player would be left without an opponent",
			len(pool), r.DisplayName)
	}

	// Fisher–Yates, then consecutive elements become opponents.
	for i := len(pool) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}
	for i := 0; i < len(pool); i += 2 {
		eff.NewMatches = append(eff.NewMatches, &models.Match{
			ID:        uuid.New(),
			RoundID:   r.ID,
			Player1ID: pool[i],
			Player2ID: pool[i+1],
			Status:    models.MatchStatusPending,
		})
	}
	return eff, nil
}

// ApplyShuffle writes the new pairing into the round.
func (s *State) ApplyShuffle(eff *ShuffleEffect) {
	r := s.Round(eff.RoundID)
	if r == nil {
		return
	}

	if eff.Full {
		removed := make(map[uuid.UUID]bool, len(eff.RemovedMatchIDs))
		for _, id := range eff.RemovedMatchIDs {
			removed[id] = true
		}
		kept := r.Matches[:0]
		for _, m := range r.Matches {
			if !removed[m.ID] {
				kept = append(kept, m)
			}
		}
		r.Matches = kept
	}

	for _, m := range eff.NewMatches {
		r.Matches = append(r.Matches, m)
		for _, pid := range []uuid.UUID{m.Player1ID, m.Player2ID} {
			r.Placements[pid] = models.Placement{Kind: models.PlacementPaired, MatchID: m.ID}
			if p := s.Player(pid); p != nil {
				p.Status = models.PlayerStatusInMatch
			}
		}
	}
	r.Shuffled = true
}
