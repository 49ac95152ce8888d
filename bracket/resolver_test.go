package bracket

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NareshCreations/billiards-tournament-system/models"
)

func TestStartMatchTransitionsPendingToActive(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 4)
	r := addRound(t, s, "First Round")
	stagePlayers(t, s, r, players...)
	shuffleRound(t, s, r, 2)
	m := r.Matches[0]

	eff, err := s.ValidateStartMatch(m.ID)
	require.NoError(t, err)
	s.ApplyStartMatch(eff)
	assert.Equal(t, models.MatchStatusActive, m.Status)
	require.NotNil(t, m.StartedAt)

	_, err = s.ValidateStartMatch(m.ID)
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectMatchNotPending, rej.Code)
}

func TestSelectWinnerChangeDemotesPreviousWinner(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 2)
	r := addRound(t, s, "First Round")
	stagePlayers(t, s, r, players...)
	shuffleRound(t, s, r, 2)
	m := r.Matches[0]
	p1, p2 := m.Player1ID, m.Player2ID

	winMatch(t, s, m, p1)
	require.Len(t, s.History, 1)

	// Changing the winner: p1 is demoted to the losers, p2 is no longer
	// eliminated and becomes the winner.
	winMatch(t, s, m, p2)
	assert.ElementsMatch(t, []uuid.UUID{p2}, r.WinnerIDs())
	assert.ElementsMatch(t, []uuid.UUID{p1}, r.LoserIDs())
	assert.Equal(t, models.PlayerStatusEliminated, s.Player(p1).Status)
	assert.Equal(t, models.PlayerStatusWinner, s.Player(p2).Status)
	assert.Equal(t, p2, *m.WinnerID)
	assertDisjoint(t, r)

	// History is append-only even on winner change.
	require.Len(t, s.History, 2)
	assert.Equal(t, p1, s.History[0].PlayerID)
	assert.Equal(t, p2, s.History[1].PlayerID)

	// The projection deduplicates: one entry, the most recent win.
	require.Len(t, s.Projection, 1)
	assert.Equal(t, p2, s.Projection[0].PlayerID)
}

func TestWinnerChangeAfterAdvancementReleasesLaterPlacement(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 2)
	r1 := addRound(t, s, "First Round")
	r2 := addRound(t, s, "Second Round")
	stagePlayers(t, s, r1, players...)
	shuffleRound(t, s, r1, 2)
	m := r1.Matches[0]
	p1, p2 := m.Player1ID, m.Player2ID

	winMatch(t, s, m, p1)
	adv, err := s.ValidateMove(MoveCommand{
		PlayerIDs: []uuid.UUID{p1},
		From:      RoundLocation(r1.ID, ListWinners),
		To:        RoundLocation(r2.ID, ListPlayers),
	})
	require.NoError(t, err)
	s.ApplyMove(adv)
	require.Contains(t, r2.StagedIDs(), p1)

	// Changing the winner pulls the advanced player back into round one's
	// losers; round two must not keep a stale placement for them.
	winMatch(t, s, m, p2)
	assert.NotContains(t, r2.PlayerIDs(), p1)
	assert.Empty(t, r2.StagedIDs())
	assert.ElementsMatch(t, []uuid.UUID{p1}, r1.LoserIDs())
	assert.Equal(t, r1.ID, *s.Player(p1).CurrentRoundID)
	assert.Equal(t, models.PlayerStatusEliminated, s.Player(p1).Status)
	assertDisjoint(t, r1)
	assertDisjoint(t, r2)
}

func TestWinnerChangeClearsDemotedWinnerLineage(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 2)
	r := addRound(t, s, "First Round")
	stagePlayers(t, s, r, players...)
	shuffleRound(t, s, r, 2)
	m := r.Matches[0]
	p1, p2 := m.Player1ID, m.Player2ID

	winMatch(t, s, m, p1)
	winMatch(t, s, m, p2)

	demoted := s.Player(p1)
	assert.Nil(t, demoted.OriginalWinningRoundID)
	assert.Nil(t, demoted.LastWinningRoundID)

	// A demoted winner sent to the pool goes to the pool, not back into the
	// winner list of the round they no longer hold.
	back, err := s.ValidateMove(MoveCommand{
		PlayerIDs: []uuid.UUID{p1},
		From:      RoundLocation(r.ID, ListLosers),
		To:        PoolLocation(),
	})
	require.NoError(t, err)
	assert.Empty(t, back.Routed)
	s.ApplyMove(back)

	assert.Nil(t, demoted.CurrentRoundID)
	assert.Equal(t, models.PlayerStatusAvailable, demoted.Status)
	assert.ElementsMatch(t, []uuid.UUID{p2}, r.WinnerIDs())
}

func TestSelectSameWinnerAgainRejected(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 2)
	r := addRound(t, s, "First Round")
	stagePlayers(t, s, r, players...)
	shuffleRound(t, s, r, 2)
	m := r.Matches[0]
	winMatch(t, s, m, m.Player1ID)

	_, err := s.ValidateSelectWinner(m.ID, m.Player1ID, nil, nil)
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectSameWinner, rej.Code)
	assert.Len(t, s.History, 1, "rejection must not append history")
}

func TestSelectWinnerRejectsNonParticipant(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 4)
	r := addRound(t, s, "First Round")
	stagePlayers(t, s, r, players[:2]...)
	shuffleRound(t, s, r, 2)

	_, err := s.ValidateSelectWinner(r.Matches[0].ID, players[3].ID, nil, nil)
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectWinnerNotInMatch, rej.Code)
}

func TestSelectWinnerUpdatesLineage(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 2)
	r := addRound(t, s, "First Round")
	stagePlayers(t, s, r, players...)
	shuffleRound(t, s, r, 2)
	m := r.Matches[0]
	winMatch(t, s, m, m.Player1ID)

	w := s.Player(m.Player1ID)
	require.NotNil(t, w.LastWinningRoundID)
	assert.Equal(t, r.ID, *w.LastWinningRoundID)
	require.NotNil(t, w.OriginalWinningRoundID)
	assert.Equal(t, r.ID, *w.OriginalWinningRoundID)
	assert.Equal(t, r.Position, w.LastRoundIndexPlayed)
}

func TestCancelMatchReturnsPlayersToUnpairedSet(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 4)
	r := addRound(t, s, "First Round")
	stagePlayers(t, s, r, players...)
	shuffleRound(t, s, r, 2)
	m := r.Matches[0]
	p1, p2 := m.Player1ID, m.Player2ID

	eff, err := s.ValidateCancelMatch(m.ID)
	require.NoError(t, err)
	s.ApplyCancelMatch(eff)

	assert.Len(t, r.Matches, 1)
	assert.Nil(t, r.MatchByID(m.ID))
	for _, pid := range []uuid.UUID{p1, p2} {
		assert.Contains(t, r.StagedIDs(), pid)
		assert.Equal(t, models.PlayerStatusInRound, s.Player(pid).Status)
		assert.Equal(t, r.ID, *s.Player(pid).CurrentRoundID, "round membership is preserved")
	}
}

func TestCancelCompletedMatchRejected(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 2)
	r := addRound(t, s, "First Round")
	stagePlayers(t, s, r, players...)
	shuffleRound(t, s, r, 2)
	m := r.Matches[0]
	winMatch(t, s, m, m.Player1ID)

	_, err := s.ValidateCancelMatch(m.ID)
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectMatchCompleted, rej.Code)
}

func TestWinnerHistoryMonotonicUnderWinnerChanges(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 2)
	r := addRound(t, s, "First Round")
	stagePlayers(t, s, r, players...)
	shuffleRound(t, s, r, 2)
	m := r.Matches[0]

	prev := 0
	winners := []uuid.UUID{m.Player1ID, m.Player2ID, m.Player1ID, m.Player2ID}
	for _, w := range winners {
		winMatch(t, s, m, w)
		assert.Greater(t, len(s.History), prev)
		prev = len(s.History)
		assertDisjoint(t, r)
	}
	assert.Len(t, s.History, 4)
	require.Len(t, s.Projection, 1)
	assert.Equal(t, m.Player2ID, s.Projection[0].PlayerID)
}
