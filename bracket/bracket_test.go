package bracket

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/NareshCreations/billiards-tournament-system/models"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	return NewState(uuid.New())
}

func addPlayers(t *testing.T, s *State, n int) []*models.Player {
	t.Helper()
	players := make([]*models.Player, n)
	for i := 0; i < n; i++ {
		ext := fmt.Sprintf("ext-%d", i+1)
		p := &models.Player{
			ID:          uuid.New(),
			DisplayName: fmt.Sprintf("Player %02d", i+1),
			ExternalID:  &ext,
		}
		s.AddPlayer(p)
		players[i] = p
	}
	return players
}

func addRound(t *testing.T, s *State, name string) *models.Round {
	t.Helper()
	eff, err := s.ValidateCreateRound(name)
	require.NoError(t, err)
	s.ApplyCreateRound(eff)
	return eff.Round
}

func stagePlayers(t *testing.T, s *State, r *models.Round, players ...*models.Player) {
	t.Helper()
	ids := make([]uuid.UUID, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	eff, err := s.ValidateMove(MoveCommand{
		PlayerIDs: ids,
		From:      PoolLocation(),
		To:        RoundLocation(r.ID, ListPlayers),
	})
	require.NoError(t, err)
	s.ApplyMove(eff)
}

func shuffleRound(t *testing.T, s *State, r *models.Round, seed int64) *ShuffleEffect {
	t.Helper()
	eff, err := s.ValidateShuffle(r.ID, rand.New(rand.NewSource(seed)))
	require.NoError(t, err)
	s.ApplyShuffle(eff)
	return eff
}

func winMatch(t *testing.T, s *State, m *models.Match, winner uuid.UUID) {
	t.Helper()
	eff, err := s.ValidateSelectWinner(m.ID, winner, nil, nil)
	require.NoError(t, err)
	s.ApplySelectWinner(eff)
}

// assertDisjoint checks the winner/loser exclusivity invariant: the derived
// players, winners, and losers views of a round never share a player id.
func assertDisjoint(t *testing.T, r *models.Round) {
	t.Helper()
	seen := make(map[uuid.UUID]string)
	for _, set := range []struct {
		name string
		ids  []uuid.UUID
	}{
		{"players", r.PlayerIDs()},
		{"winners", r.WinnerIDs()},
		{"losers", r.LoserIDs()},
	} {
		for _, id := range set.ids {
			if prev, dup := seen[id]; dup {
				t.Fatalf("player %s appears in both %s and %s of round %q", id, prev, set.name, r.DisplayName)
			}
			seen[id] = set.name
		}
	}
}
