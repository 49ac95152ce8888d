package bracket

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NareshCreations/billiards-tournament-system/models"
)

func TestMoveToFrozenRoundRejectedWithoutMutation(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 2)
	r1 := addRound(t, s, "First Round")
	r2 := addRound(t, s, "Second Round")
	stagePlayers(t, s, r1, players...)
	r2.IsFrozen = true

	before1, _ := json.Marshal(r1)
	before2, _ := json.Marshal(r2)

	_, err := s.ValidateMove(MoveCommand{
		PlayerIDs: []uuid.UUID{players[0].ID, players[1].ID},
		From:      RoundLocation(r1.ID, ListPlayers),
		To:        RoundLocation(r2.ID, ListPlayers),
	})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectFrozenRound, rej.Code)
	assert.Contains(t, rej.Message, "frozen")

	after1, _ := json.Marshal(r1)
	after2, _ := json.Marshal(r2)
	assert.Equal(t, string(before1), string(after1), "source round must be untouched")
	assert.Equal(t, string(before2), string(after2), "destination round must be untouched")
}

func TestMoveOutOfFrozenRoundRejected(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 2)
	r1 := addRound(t, s, "First Round")
	stagePlayers(t, s, r1, players...)
	r1.IsFrozen = true

	_, err := s.ValidateMove(MoveCommand{
		PlayerIDs: []uuid.UUID{players[0].ID},
		From:      RoundLocation(r1.ID, ListPlayers),
		To:        PoolLocation(),
	})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectFrozenRound, rej.Code)
}

func TestMoveParityEnforcedOnDestination(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 3)
	r1 := addRound(t, s, "First Round")

	_, err := s.ValidateMove(MoveCommand{
		PlayerIDs: []uuid.UUID{players[0].ID},
		From:      PoolLocation(),
		To:        RoundLocation(r1.ID, ListPlayers),
	})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectParity, rej.Code)
	assert.Contains(t, rej.Message, "even")

	// Two at once is fine.
	eff, err := s.ValidateMove(MoveCommand{
		PlayerIDs: []uuid.UUID{players[0].ID, players[1].ID},
		From:      PoolLocation(),
		To:        RoundLocation(r1.ID, ListPlayers),
	})
	require.NoError(t, err)
	s.ApplyMove(eff)
	assert.Len(t, r1.StagedIDs(), 2)
	assert.Equal(t, models.PlayerStatusInRound, s.Player(players[0].ID).Status)
}

func TestMoveParityPropertyRandomized(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	for trial := 0; trial < 50; trial++ {
		s := newTestState(t)
		players := addPlayers(t, s, 12)
		r := addRound(t, s, "First Round")
		pre := rng.Intn(4) * 2 // even pre-staged count
		for _, p := range players[:pre] {
			s.place(p, r, models.Placement{Kind: models.PlacementStaged}, models.PlayerStatusInRound)
		}

		take := 1 + rng.Intn(6)
		ids := make([]uuid.UUID, 0, take)
		for _, p := range players[pre : pre+take] {
			ids = append(ids, p.ID)
		}
		eff, err := s.ValidateMove(MoveCommand{
			PlayerIDs: ids,
			From:      PoolLocation(),
			To:        RoundLocation(r.ID, ListPlayers),
		})
		if err != nil {
			rej, ok := AsRejection(err)
			require.True(t, ok)
			assert.Equal(t, RejectParity, rej.Code)
			assert.Len(t, r.StagedIDs(), pre, "rejection must not mutate")
			continue
		}
		s.ApplyMove(eff)
		assert.Equal(t, 0, len(r.StagedIDs())%2, "accepted move must leave an even unpaired count")
	}
}

func TestForwardMoveRequiresCompletedMatch(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 4)
	r1 := addRound(t, s, "First Round")
	r2 := addRound(t, s, "Second Round")
	stagePlayers(t, s, r1, players...)

	_, err := s.ValidateMove(MoveCommand{
		PlayerIDs: []uuid.UUID{players[0].ID, players[1].ID},
		From:      RoundLocation(r1.ID, ListPlayers),
		To:        RoundLocation(r2.ID, ListPlayers),
	})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectNoCompletedMatch, rej.Code)
}

func TestForwardMoveCannotSkipDormantRound(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 4)
	r1 := addRound(t, s, "First Round")
	addRound(t, s, "Second Round") // stays dormant
	r3 := addRound(t, s, "Final")
	stagePlayers(t, s, r1, players...)
	shuffleRound(t, s, r1, 5)
	winMatch(t, s, r1.Matches[0], r1.Matches[0].Player1ID)
	winMatch(t, s, r1.Matches[1], r1.Matches[1].Player1ID)

	winners := r1.WinnerIDs()
	_, err := s.ValidateMove(MoveCommand{
		PlayerIDs: winners,
		From:      RoundLocation(r1.ID, ListWinners),
		To:        RoundLocation(r3.ID, ListPlayers),
	})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectDormantGap, rej.Code)
	assert.Contains(t, rej.Message, "Second Round")
}

func TestWinnersAdvanceToNextRoundWithoutParityPrecheck(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 4)
	r1 := addRound(t, s, "First Round")
	r2 := addRound(t, s, "Second Round")
	stagePlayers(t, s, r1, players...)
	shuffleRound(t, s, r1, 5)
	winMatch(t, s, r1.Matches[0], r1.Matches[0].Player1ID)

	// One winner advancing alone would fail parity, but winner advancement
	// to the immediate next round is validated at pairing time instead.
	winners := r1.WinnerIDs()
	require.Len(t, winners, 1)
	eff, err := s.ValidateMove(MoveCommand{
		PlayerIDs: winners,
		From:      RoundLocation(r1.ID, ListWinners),
		To:        RoundLocation(r2.ID, ListPlayers),
	})
	require.NoError(t, err)
	s.ApplyMove(eff)

	p := s.Player(winners[0])
	assert.True(t, p.IsPreviousRoundWinner)
	assert.Equal(t, r2.ID, *p.CurrentRoundID)
	assert.Len(t, r2.StagedIDs(), 1)
}

func TestWinnerCannotMoveBackPastWinningRound(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 6)
	r1 := addRound(t, s, "First Round")
	r2 := addRound(t, s, "Second Round")
	stagePlayers(t, s, r1, players[:4]...)
	shuffleRound(t, s, r1, 5)
	winMatch(t, s, r1.Matches[0], r1.Matches[0].Player1ID)
	winMatch(t, s, r1.Matches[1], r1.Matches[1].Player1ID)

	// Advance both first-round winners and let one win the second round.
	adv, err := s.ValidateMove(MoveCommand{
		PlayerIDs: r1.WinnerIDs(),
		From:      RoundLocation(r1.ID, ListWinners),
		To:        RoundLocation(r2.ID, ListPlayers),
	})
	require.NoError(t, err)
	s.ApplyMove(adv)
	shuffleRound(t, s, r2, 6)
	winMatch(t, s, r2.Matches[0], r2.Matches[0].Player1ID)
	champion := r2.Matches[0].Player1ID

	_, err = s.ValidateMove(MoveCommand{
		PlayerIDs: []uuid.UUID{champion},
		From:      RoundLocation(r2.ID, ListWinners),
		To:        RoundLocation(r1.ID, ListWinners),
	})
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectBehindWinningRound, rej.Code)
	assert.Contains(t, rej.Message, "Second Round")
}

func TestPoolMoveRoutesWinnerToOriginalWinningRound(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 4)
	r1 := addRound(t, s, "First Round")
	r2 := addRound(t, s, "Second Round")
	stagePlayers(t, s, r1, players...)
	shuffleRound(t, s, r1, 5)
	winMatch(t, s, r1.Matches[0], r1.Matches[0].Player1ID)
	winner := r1.Matches[0].Player1ID

	adv, err := s.ValidateMove(MoveCommand{
		PlayerIDs: []uuid.UUID{winner},
		From:      RoundLocation(r1.ID, ListWinners),
		To:        RoundLocation(r2.ID, ListPlayers),
	})
	require.NoError(t, err)
	s.ApplyMove(adv)

	// Sending the winner "to the pool" routes them back to the winner list
	// of the round they originally won.
	back, err := s.ValidateMove(MoveCommand{
		PlayerIDs: []uuid.UUID{winner},
		From:      RoundLocation(r2.ID, ListPlayers),
		To:        PoolLocation(),
	})
	require.NoError(t, err)
	require.Equal(t, r1.ID, back.Routed[winner])
	s.ApplyMove(back)

	assert.Contains(t, r1.WinnerIDs(), winner)
	assert.Equal(t, r1.ID, *s.Player(winner).CurrentRoundID)
	assert.Equal(t, models.PlayerStatusWinner, s.Player(winner).Status)
}

func TestMoveSkipsPlayersAlreadyAtDestination(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 4)
	r1 := addRound(t, s, "First Round")
	stagePlayers(t, s, r1, players[:2]...)

	ids := []uuid.UUID{players[0].ID, players[1].ID, players[2].ID, players[3].ID}
	eff, err := s.ValidateMove(MoveCommand{
		PlayerIDs: ids,
		From:      PoolLocation(),
		To:        RoundLocation(r1.ID, ListPlayers),
	})
	require.NoError(t, err)
	assert.Len(t, eff.Moved, 2)
	assert.Len(t, eff.Skipped, 2)
	s.ApplyMove(eff)
	assert.Len(t, r1.StagedIDs(), 4)
}
