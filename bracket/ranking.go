package bracket

import (
	"sort"

	"github.com/google/uuid"

	"github.com/NareshCreations/billiards-tournament-system/models"
)

// RebuildProjection derives the winner display projection from the history:
// one entry per player, keeping only the latest win, ranked most recent
// first. Organizer-assigned titles and selection flags survive the rebuild.
func (s *State) RebuildProjection() {
	titles := make(map[uuid.UUID]string, len(s.Projection))
	selected := make(map[uuid.UUID]bool, len(s.Projection))
	known := make(map[uuid.UUID]bool, len(s.Projection))
	for _, e := range s.Projection {
		titles[e.PlayerID] = e.Title
		selected[e.PlayerID] = e.Selected
		known[e.PlayerID] = true
	}

	latest := make(map[uuid.UUID]int)
	for i, rec := range s.History {
		// A record whose match no longer names this player as winner was
		// superseded by a winner change; the history keeps it, the
		// projection does not.
		if _, m := s.MatchRound(rec.MatchID); m != nil {
			if m.WinnerID == nil || *m.WinnerID != rec.PlayerID {
				continue
			}
		}
		latest[rec.PlayerID] = i
	}

	indexes := make([]int, 0, len(latest))
	for _, i := range latest {
		indexes = append(indexes, i)
	}
	// Most recent win first; history order breaks WonAt ties.
	sort.Slice(indexes, func(a, b int) bool {
		ra, rb := s.History[indexes[a]], s.History[indexes[b]]
		if !ra.WonAt.Equal(rb.WonAt) {
			return ra.WonAt.After(rb.WonAt)
		}
		return indexes[a] > indexes[b]
	})

	s.Projection = s.Projection[:0]
	for rank, i := range indexes {
		rec := s.History[i]
		sel := true
		if known[rec.PlayerID] {
			sel = selected[rec.PlayerID]
		}
		s.Projection = append(s.Projection, models.WinnerEntry{
			PlayerID: rec.PlayerID,
			RoundID:  rec.RoundID,
			WonAt:    rec.WonAt,
			Rank:     rank + 1,
			Title:    titles[rec.PlayerID],
			Selected: sel,
		})
	}
}

// RankingDraft is the organizer's working copy of the top of the projection.
// Edits live here until an explicit save commits them back.
type RankingDraft struct {
	Entries []models.WinnerEntry
}

// NewRankingDraft copies the top entries of the projection, capped by
// policy.
func (s *State) NewRankingDraft() *RankingDraft {
	n := len(s.Projection)
	if max := s.Policy.MaxRankedWinners; max > 0 && n > max {
		n = max
	}
	d := &RankingDraft{Entries: make([]models.WinnerEntry, n)}
	copy(d.Entries, s.Projection[:n])
	return d
}

func (d *RankingDraft) find(playerID uuid.UUID) (int, error) {
	for i := range d.Entries {
		if d.Entries[i].PlayerID == playerID {
			return i, nil
		}
	}
	return 0, reject(RejectNotInDraft, "player %s is not part of the ranking draft", playerID)
}

func (d *RankingDraft) SetTitle(playerID uuid.UUID, title string) error {
	i, err := d.find(playerID)
	if err != nil {
		return err
	}
	d.Entries[i].Title = title
	return nil
}

func (d *RankingDraft) SetSelected(playerID uuid.UUID, sel bool) error {
	i, err := d.find(playerID)
	if err != nil {
		return err
	}
	d.Entries[i].Selected = sel
	return nil
}

// MoveRank assigns a new rank to a player, shifting everyone in between.
func (d *RankingDraft) MoveRank(playerID uuid.UUID, newRank int) error {
	i, err := d.find(playerID)
	if err != nil {
		return err
	}
	if newRank < 1 || newRank > len(d.Entries) {
		return reject(RejectBadRank, "rank %d is out of range 1..%d", newRank, len(d.Entries))
	}
	entry := d.Entries[i]
	d.Entries = append(d.Entries[:i], d.Entries[i+1:]...)
	d.Entries = append(d.Entries[:newRank-1], append([]models.WinnerEntry{entry}, d.Entries[newRank-1:]...)...)
	for j := range d.Entries {
		d.Entries[j].Rank = j + 1
	}
	return nil
}

// SaveDraftEffect commits draft edits. Persist holds only the entries whose
// players carry a stable external identity; the rest are still applied to
// the projection but reported as skipped.
type SaveDraftEffect struct {
	Entries []models.WinnerEntry
	Persist []models.WinnerEntry
	Skipped int
}

func (s *State) ValidateSaveDraft(d *RankingDraft) (*SaveDraftEffect, error) {
	eff := &SaveDraftEffect{Entries: make([]models.WinnerEntry, len(d.Entries))}
	copy(eff.Entries, d.Entries)
	for _, e := range eff.Entries {
		p := s.Player(e.PlayerID)
		if p == nil {
			return nil, reject(RejectPlayerNotFound, "draft references unknown player %s", e.PlayerID)
		}
		if p.ExternalID == nil || *p.ExternalID == "" {
			eff.Skipped++
			continue
		}
		eff.Persist = append(eff.Persist, e)
	}
	return eff, nil
}

func (s *State) ApplySaveDraft(eff *SaveDraftEffect) {
	byPlayer := make(map[uuid.UUID]models.WinnerEntry, len(eff.Entries))
	for _, e := range eff.Entries {
		byPlayer[e.PlayerID] = e
	}
	for i := range s.Projection {
		if e, ok := byPlayer[s.Projection[i].PlayerID]; ok {
			s.Projection[i].Title = e.Title
			s.Projection[i].Rank = e.Rank
			s.Projection[i].Selected = e.Selected
		}
	}
	sort.SliceStable(s.Projection, func(a, b int) bool {
		return s.Projection[a].Rank < s.Projection[b].Rank
	})
}
