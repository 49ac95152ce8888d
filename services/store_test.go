package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NareshCreations/billiards-tournament-system/bracket"
	"github.com/NareshCreations/billiards-tournament-system/models"
)

func countingLoader(t *testing.T, calls *int) StateLoader {
	t.Helper()
	return func(ctx context.Context, tournamentID uuid.UUID) (*bracket.State, error) {
		*calls++
		st := bracket.NewState(tournamentID)
		st.AddPlayer(&models.Player{ID: uuid.New(), TournamentID: tournamentID, DisplayName: "Seed Player"})
		return st, nil
	}
}

func TestStateStoreLoadsOnceAndCaches(t *testing.T) {
	calls := 0
	store := NewStateStore(countingLoader(t, &calls))
	id := uuid.New()

	for i := 0; i < 3; i++ {
		err := store.With(context.Background(), id, func(st *bracket.State) (*bracket.State, error) {
			require.NotNil(t, st)
			return nil, nil
		})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, calls)
}

func TestStateStoreSwapsOnlyOnSuccess(t *testing.T) {
	calls := 0
	store := NewStateStore(countingLoader(t, &calls))
	id := uuid.New()

	boom := errors.New("persist failed")
	err := store.With(context.Background(), id, func(st *bracket.State) (*bracket.State, error) {
		next := st.Clone()
		next.AddPlayer(&models.Player{ID: uuid.New(), TournamentID: id, DisplayName: "Should Not Stick"})
		return next, boom
	})
	require.ErrorIs(t, err, boom)

	err = store.With(context.Background(), id, func(st *bracket.State) (*bracket.State, error) {
		assert.Len(t, st.Players, 1)
		return nil, nil
	})
	require.NoError(t, err)

	err = store.With(context.Background(), id, func(st *bracket.State) (*bracket.State, error) {
		next := st.Clone()
		next.AddPlayer(&models.Player{ID: uuid.New(), TournamentID: id, DisplayName: "Sticks"})
		return next, nil
	})
	require.NoError(t, err)

	err = store.With(context.Background(), id, func(st *bracket.State) (*bracket.State, error) {
		assert.Len(t, st.Players, 2)
		return nil, nil
	})
	require.NoError(t, err)
}

func TestStateStoreInvalidateForcesReload(t *testing.T) {
	calls := 0
	store := NewStateStore(countingLoader(t, &calls))
	id := uuid.New()

	require.NoError(t, store.With(context.Background(), id, func(st *bracket.State) (*bracket.State, error) {
		return nil, nil
	}))
	store.Invalidate(id)
	require.NoError(t, store.With(context.Background(), id, func(st *bracket.State) (*bracket.State, error) {
		return nil, nil
	}))
	assert.Equal(t, 2, calls)
}

func TestStateStoreLoaderErrorPropagates(t *testing.T) {
	boom := errors.New("load failed")
	store := NewStateStore(func(ctx context.Context, tournamentID uuid.UUID) (*bracket.State, error) {
		return nil, boom
	})

	err := store.With(context.Background(), uuid.New(), func(st *bracket.State) (*bracket.State, error) {
		t.Fatal("fn must not run when loading fails")
		return nil, nil
	})
	assert.ErrorIs(t, err, boom)
}
