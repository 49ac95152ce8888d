package bracket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NareshCreations/billiards-tournament-system/models"
)

func TestCreateRoundAssignsOrdinal(t *testing.T) {
	s := newTestState(t)
	r1 := addRound(t, s, "First Round")
	r2 := addRound(t, s, "Quarter Final")

	assert.Equal(t, 1, r1.Position)
	assert.Equal(t, "round-1", r1.OrdinalName)
	assert.Equal(t, 2, r2.Position)
	assert.Equal(t, "round-2", r2.OrdinalName)
	assert.Equal(t, models.RoundStatusOpen, r2.Status)
}

func TestDuplicateRoundNameFreedByClosing(t *testing.T) {
	s := newTestState(t)
	addRound(t, s, "First Round")
	semi := addRound(t, s, "Semi Final")

	_, err := s.ValidateCreateRound("Semi Final")
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectDuplicateRoundName, rej.Code)

	// Case-insensitive: the name is held however it is spelled.
	_, err = s.ValidateCreateRound("semi final")
	require.Error(t, err)

	closeEff, err := s.ValidateCloseRound(semi.ID)
	require.NoError(t, err)
	s.ApplyCloseRound(closeEff)

	// The name becomes available again once the round is gone.
	eff, err := s.ValidateCreateRound("Semi Final")
	require.NoError(t, err)
	s.ApplyCreateRound(eff)
	assert.Equal(t, "Semi Final", eff.Round.DisplayName)
}

func TestCloseRoundRequiresEmptyAndLast(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 2)
	r1 := addRound(t, s, "First Round")
	r2 := addRound(t, s, "Second Round")

	// Not last.
	_, err := s.ValidateCloseRound(r1.ID)
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectRoundNotLast, rej.Code)

	// Last but not empty.
	stagePlayers(t, s, r2, players...)
	_, err = s.ValidateCloseRound(r2.ID)
	rej, ok = AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectRoundNotEmpty, rej.Code)
	assert.Len(t, s.Rounds, 2, "rejection must not remove anything")

	// Empty and last succeeds.
	back, err := s.ValidateMove(MoveCommand{
		PlayerIDs: r2.StagedIDs(),
		From:      RoundLocation(r2.ID, ListPlayers),
		To:        PoolLocation(),
	})
	require.NoError(t, err)
	s.ApplyMove(back)
	eff, err := s.ValidateCloseRound(r2.ID)
	require.NoError(t, err)
	s.ApplyCloseRound(eff)
	assert.Len(t, s.Rounds, 1)
}

func TestFreezeRoundPreconditionsAndImmutability(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 4)
	r := addRound(t, s, "First Round")
	stagePlayers(t, s, r, players...)
	shuffleRound(t, s, r, 9)

	_, err := s.ValidateFreezeRound(r.ID)
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectMatchesUnfinished, rej.Code)

	winMatch(t, s, r.Matches[0], r.Matches[0].Player1ID)
	winMatch(t, s, r.Matches[1], r.Matches[1].Player1ID)

	eff, err := s.ValidateFreezeRound(r.ID)
	require.NoError(t, err)
	s.ApplyFreezeRound(eff)
	assert.True(t, r.IsFrozen)
	assert.Equal(t, models.RoundStatusCompleted, r.Status)

	// Every mutating command against the frozen round must now fail.
	_, err = s.ValidateFreezeRound(r.ID)
	require.Error(t, err)

	_, err = s.ValidateSelectWinner(r.Matches[0].ID, r.Matches[0].Player2ID, nil, nil)
	rej, ok = AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectFrozenRound, rej.Code)

	_, err = s.ValidateCancelMatch(r.Matches[0].ID)
	rej, ok = AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectFrozenRound, rej.Code)

	_, err = s.ValidateMove(MoveCommand{
		PlayerIDs: r.WinnerIDs(),
		From:      RoundLocation(r.ID, ListWinners),
		To:        PoolLocation(),
	})
	rej, ok = AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectFrozenRound, rej.Code)
}

func TestFreezeRoundRejectsUnpairedPlayers(t *testing.T) {
	s := newTestState(t)
	players := addPlayers(t, s, 4)
	r := addRound(t, s, "First Round")
	stagePlayers(t, s, r, players[:2]...)
	shuffleRound(t, s, r, 9)
	winMatch(t, s, r.Matches[0], r.Matches[0].Player1ID)
	stagePlayers(t, s, r, players[2:]...)

	_, err := s.ValidateFreezeRound(r.ID)
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectUnpairedPlayers, rej.Code)
	assert.Contains(t, rej.Message, "2 unpaired")
}

func TestRenameRoundKeepsNameUnique(t *testing.T) {
	s := newTestState(t)
	r1 := addRound(t, s, "First Round")
	addRound(t, s, "Semi Final")

	_, err := s.ValidateRenameRound(r1.ID, "Semi Final")
	rej, ok := AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, RejectDuplicateRoundName, rej.Code)

	eff, err := s.ValidateRenameRound(r1.ID, "Opening Round")
	require.NoError(t, err)
	s.ApplyRenameRound(eff)
	assert.Equal(t, "Opening Round", r1.DisplayName)
	assert.Equal(t, "round-1", r1.OrdinalName, "the internal ordinal name never changes")
}
