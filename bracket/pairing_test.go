package bracket

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NareshCreations/billiards-tournament-system/models"
)

func TestShuffleFirstRoundScenario(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 4)
	r := addRound(t, s, "First Round")
	stagePlayers(t, s, r, players...)

	eff := shuffleRound(t, s, r, 1)

	require.Len(t, r.Matches, 2, "4 players should pair into 2 matches")
	assert.Len(t, r.PlayerIDs(), 4, "the round's player list must be unchanged by pairing")
	assert.True(t, r.Shuffled)

	seen := make(map[uuid.UUID]bool)
	for _, m := range eff.NewMatches {
		assert.Equal(t, models.MatchStatusPending, m.Status)
		assert.NotEqual(t, m.Player1ID, m.Player2ID)
		seen[m.Player1ID] = true
		seen[m.Player2ID] = true
	}
	assert.Len(t, seen, 4, "every player must appear in exactly one match")

	// Selecting a winner for match 1 leaves only match 2's players active.
	m1, m2 := r.Matches[0], r.Matches[1]
	winMatch(t, s, m1, m1.Player1ID)

	assert.ElementsMatch(t, []uuid.UUID{m1.Player1ID}, r.WinnerIDs())
	assert.ElementsMatch(t, []uuid.UUID{m1.Player2ID}, r.LoserIDs())
	assert.ElementsMatch(t, []uuid.UUID{m2.Player1ID, m2.Player2ID}, r.PlayerIDs())
	assert.Equal(t, models.PlayerStatusEliminated, s.Player(m1.Player2ID).Status)
	assertDisjoint(t, r)
}

func TestShuffleOddPoolRejectedWithDeficit(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 4)
	r := addRound(t, s, "First Round")
	// Stage 3 of 4: bypass the move parity gate by staging directly.
	for _, p := range players[:3] {
		s.place(p, r, models.Placement{Kind: models.PlacementStaged}, models.PlayerStatusInRound)
	}

	_, err := s.ValidateShuffle(r.ID, rand.New(rand.NewSource(1)))
	require.Error(t, err)
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectOddPool, rej.Code)
	assert.Contains(t, rej.Message, "3 players")
	assert.Contains(t, rej.Message, "1 player would be left")
	assert.Empty(t, r.Matches, "no matches may be created on rejection")
}

func TestShufflePartialPairsOnlyUnmatchedPlayers(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 6)
	r := addRound(t, s, "First Round")
	stagePlayers(t, s, r, players[:4]...)
	shuffleRound(t, s, r, 7)
	existing := append([]*models.Match{}, r.Matches...)

	stagePlayers(t, s, r, players[4:]...)
	eff := shuffleRound(t, s, r, 8)

	assert.False(t, eff.Full)
	assert.Empty(t, eff.RemovedMatchIDs, "partial pairing must preserve existing matches")
	require.Len(t, eff.NewMatches, 1)
	assert.ElementsMatch(t,
		[]uuid.UUID{players[4].ID, players[5].ID},
		[]uuid.UUID{eff.NewMatches[0].Player1ID, eff.NewMatches[0].Player2ID})
	require.Len(t, r.Matches, 3)
	assert.Equal(t, existing[0].ID, r.Matches[0].ID)
	assert.Equal(t, existing[1].ID, r.Matches[1].ID)
}

func TestShuffleFullRepairReplacesAllMatches(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 4)
	r := addRound(t, s, "First Round")
	stagePlayers(t, s, r, players...)
	first := shuffleRound(t, s, r, 3)

	// Everyone is paired, so the next shuffle is a full re-pair.
	eff := shuffleRound(t, s, r, 4)

	assert.True(t, eff.Full)
	assert.Len(t, eff.RemovedMatchIDs, len(first.NewMatches))
	require.Len(t, r.Matches, 2)
	for _, m := range r.Matches {
		for _, old := range first.NewMatches {
			assert.NotEqual(t, old.ID, m.ID)
		}
	}
	assert.Len(t, r.PlayerIDs(), 4)
}

func TestShuffleDeterministicUnderSeed(t *testing.T) {
	build := func() (*State, *models.Round) {
		s := NewState(uuid.MustParse("6b1e0b1e-0000-4000-8000-000000000001"))
		r := addRound(t, s, "First Round")
		players := make([]*models.Player, 8)
		for i := range players {
			players[i] = &models.Player{
				ID:          uuid.MustParse(fmt.Sprintf("00000000-0000-4000-8000-%012d", i+1)),
				DisplayName: fmt.Sprintf("Player %02d", i+1),
			}
			s.AddPlayer(players[i])
		}
		stagePlayers(t, s, r, players...)
		return s, r
	}

	// Same player set and same seed must give the same pairing.
	s1, r1 := build()
	s2, r2 := build()
	e1, err := s1.ValidateShuffle(r1.ID, rand.New(rand.NewSource(42)))
	require.NoError(t, err)
	e2, err := s2.ValidateShuffle(r2.ID, rand.New(rand.NewSource(42)))
	require.NoError(t, err)

	require.Len(t, e2.NewMatches, len(e1.NewMatches))
	for i := range e1.NewMatches {
		assert.Equal(t, e1.NewMatches[i].Player1ID, e2.NewMatches[i].Player1ID)
		assert.Equal(t, e1.NewMatches[i].Player2ID, e2.NewMatches[i].Player2ID)
	}
}

func TestShuffleFrozenRoundRejected(t *testing.T) {
	s := newTestState(t)
	r := addRound(t, s, "First Round")
	r.IsFrozen = true

	_, err := s.ValidateShuffle(r.ID, rand.New(rand.NewSource(1)))
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectFrozenRound, rej.Code)
	assert.Contains(t, rej.Message, "frozen")
}
