package bracket

import (
	"github.com/google/uuid"

	"github.com/NareshCreations/billiards-tournament-system/models"
)

// ListKind names one of a round's three derived collections.
type ListKind string

const (
	ListPlayers ListKind = "players"
	ListWinners ListKind = "winners"
	ListLosers  ListKind = "losers"
)

// Location is either the staging pool or one list of one round.
type Location struct {
	Pool    bool      `json:"pool"`
	RoundID uuid.UUID `json:"round_id,omitempty"`
	List    ListKind  `json:"list,omitempty"`
}

func PoolLocation() Location {
	return Location{Pool: true}
}

func RoundLocation(roundID uuid.UUID, list ListKind) Location {
	return Location{RoundID: roundID, List: list}
}

// MoveCommand proposes transferring a player set between two locations.
type MoveCommand struct {
	PlayerIDs []uuid.UUID
	From      Location
	To        Location
}

// MoveEffect is the accepted outcome of a MoveCommand. Skipped players were
// already present at the destination; Routed maps players that a pool move
// sent back to their original winning round's winner list instead.
type MoveEffect struct {
	From    Location
	To      Location
	Moved   []uuid.UUID
	Skipped []uuid.UUID
	Routed  map[uuid.UUID]uuid.UUID
}

// ValidateMove applies the movement rules in order: frozen destination,
// forward-progression gate, winner back-move bound, destination parity, and
// pool routing. It never mutates state; on success the returned effect is
// what ApplyMove will write.
func (s *State) ValidateMove(cmd MoveCommand) (*MoveEffect, error) {
	if len(cmd.PlayerIDs) == 0 {
		return nil, reject(RejectEmptySelection, "no players selected to move")
	}

	var src, dst *models.Round
	if !cmd.From.Pool {
		if src = s.Round(cmd.From.RoundID); src == nil {
			return nil, reject(RejectRoundNotFound, "source round %s not found", cmd.From.RoundID)
		}
		if src.IsFrozen {
			return nil, reject(RejectFrozenRound, "round %q is frozen and cannot be changed", src.DisplayName)
		}
	}
	if !cmd.To.Pool {
		if dst = s.Round(cmd.To.RoundID); dst == nil {
			return nil, reject(RejectRoundNotFound, "destination round %s not found", cmd.To.RoundID)
		}
		if dst.IsFrozen {
			return nil, reject(RejectFrozenRound, "round %q is frozen and cannot accept players", dst.DisplayName)
		}
	}

	eff := &MoveEffect{
		From:   cmd.From,
		To:     cmd.To,
		Routed: make(map[uuid.UUID]uuid.UUID),
	}

	for _, id := range cmd.PlayerIDs {
		p := s.Player(id)
		if p == nil {
			return nil, reject(RejectPlayerNotFound, "player %s not found", id)
		}
		if alreadyAt(p, dst, cmd.To) {
			eff.Skipped = append(eff.Skipped, id)
			continue
		}
		if err := s.checkAtSource(p, src, cmd.From); err != nil {
			return nil, err
		}
		eff.Moved = append(eff.Moved, id)
	}

	forward := src != nil && dst != nil && dst.Position > src.Position
	backward := src != nil && dst != nil && dst.Position < src.Position

	if forward {
		if s.Policy.RequireCompletedMatchToAdvance && src.CompletedMatchCount() == 0 {
			return nil, reject(RejectNoCompletedMatch,
				"round %q has no completed match yet, players cannot advance out of it", src.DisplayName)
		}
		if s.Policy.ForbidSkippingDormantRounds && dst.Position != src.Position+1 {
			for _, between := range s.Rounds {
				if between.Position > src.Position && between.Position < dst.Position && !between.IsActive() {
					return nil, reject(RejectDormantGap,
						"cannot skip over round %q: nothing has happened in it yet", between.DisplayName)
				}
			}
		}
	}

	if backward && cmd.From.List == ListWinners && s.Policy.BoundWinnerBackMoves {
		for _, id := range eff.Moved {
			p := s.Player(id)
			if p.LastWinningRoundID == nil {
				continue
			}
			won := s.Round(*p.LastWinningRoundID)
			if won != nil && dst.Position < won.Position {
				return nil, reject(RejectBehindWinningRound,
					"%s won round %q and cannot move back past it", p.DisplayName, won.DisplayName)
			}
		}
	}

	if dst != nil && cmd.To.List == ListPlayers && s.Policy.EnforceEvenPairing {
		// Advancing winners into the next round's player list is validated
		// at pairing time instead; winner-list destinations have no parity
		// at all.
		exempt := cmd.From.List == ListWinners && src != nil && dst.Position == src.Position+1
		if !exempt {
			after := len(dst.StagedIDs()) + len(eff.Moved)
			if after%2 != 0 {
				return nil, reject(RejectParity,
					"round %q would hold %d unpaired players, an even count is required", dst.DisplayName, after)
			}
		}
	}

	if cmd.To.Pool {
		for _, id := range eff.Moved {
			p := s.Player(id)
			if p.OriginalWinningRoundID == nil {
				continue
			}
			home := s.Round(*p.OriginalWinningRoundID)
			if home == nil || (src != nil && home.ID == src.ID && cmd.From.List == ListWinners) {
				continue
			}
			if home.IsFrozen {
				return nil, reject(RejectFrozenRound,
					"%s belongs to the winner list of frozen round %q", p.DisplayName, home.DisplayName)
			}
			eff.Routed[id] = home.ID
		}
	}

	return eff, nil
}

// ApplyMove writes an accepted move into the state.
func (s *State) ApplyMove(eff *MoveEffect) {
	for _, id := range eff.Moved {
		p := s.Player(id)

		if !eff.From.Pool {
			if src := s.Round(eff.From.RoundID); src != nil {
				delete(src.Placements, id)
			}
		}

		if home, routed := eff.Routed[id]; routed {
			s.place(p, s.Round(home), models.Placement{Kind: models.PlacementChampion}, models.PlayerStatusWinner)
			continue
		}
		if eff.To.Pool {
			p.CurrentRoundID = nil
			p.Status = models.PlayerStatusAvailable
			continue
		}

		dst := s.Round(eff.To.RoundID)
		switch eff.To.List {
		case ListWinners:
			s.place(p, dst, models.Placement{Kind: models.PlacementChampion}, models.PlayerStatusWinner)
		case ListLosers:
			s.place(p, dst, models.Placement{Kind: models.PlacementEliminated}, models.PlayerStatusEliminated)
		default:
			s.place(p, dst, models.Placement{Kind: models.PlacementStaged}, models.PlayerStatusInRound)
			p.IsPreviousRoundWinner = eff.From.List == ListWinners
			p.LastRoundIndexPlayed = dst.Position
		}
	}
}

// place writes a player's placement in a round. A player holds at most one
// placement at a time, so any placement in another round is released first.
func (s *State) place(p *models.Player, r *models.Round, pl models.Placement, status models.PlayerStatus) {
	if p.CurrentRoundID != nil && *p.CurrentRoundID != r.ID {
		if prev := s.Round(*p.CurrentRoundID); prev != nil {
			delete(prev.Placements, p.ID)
		}
	}
	if r.Placements == nil {
		r.Placements = make(map[uuid.UUID]models.Placement)
	}
	r.Placements[p.ID] = pl
	rid := r.ID
	p.CurrentRoundID = &rid
	p.Status = status
}

func alreadyAt(p *models.Player, dst *models.Round, to Location) bool {
	if to.Pool {
		return p.CurrentRoundID == nil
	}
	if dst == nil {
		return false
	}
	pl, ok := dst.Placements[p.ID]
	if !ok {
		return false
	}
	switch to.List {
	case ListWinners:
		return pl.Kind == models.PlacementChampion
	case ListLosers:
		return pl.Kind == models.PlacementEliminated
	default:
		return pl.Kind == models.PlacementStaged || pl.Kind == models.PlacementPaired
	}
}

func (s *State) checkAtSource(p *models.Player, src *models.Round, from Location) error {
	if from.Pool {
		if p.CurrentRoundID != nil {
			return reject(RejectNotAtSource, "%s is not in the staging pool", p.DisplayName)
		}
		return nil
	}
	pl, ok := src.Placements[p.ID]
	if !ok {
		return reject(RejectNotAtSource, "%s is not in round %q", p.DisplayName, src.DisplayName)
	}
	switch from.List {
	case ListWinners:
		if pl.Kind != models.PlacementChampion {
			return reject(RejectNotAtSource, "%s is not a winner of round %q", p.DisplayName, src.DisplayName)
		}
	case ListLosers:
		if pl.Kind != models.PlacementEliminated {
			return reject(RejectNotAtSource, "%s is not a loser of round %q", p.DisplayName, src.DisplayName)
		}
	default:
		if pl.Kind != models.PlacementStaged {
			return reject(RejectNotAtSource,
				"%s is tied up in a match of round %q and cannot be moved", p.DisplayName, src.DisplayName)
		}
	}
	return nil
}
