package services

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/NareshCreations/billiards-tournament-system/bracket"
)

// StateLoader hydrates a tournament's engine state from persistence.
type StateLoader func(ctx context.Context, tournamentID uuid.UUID) (*bracket.State, error)

// StateStore caches one engine State per tournament and serializes commands
// against it: exactly one command runs against a given tournament at a time,
// which is the only locking discipline the engine needs.
type StateStore struct {
	mu      sync.Mutex
	loader  StateLoader
	entries map[uuid.UUID]*stateEntry
}

type stateEntry struct {
	mu    sync.Mutex
	state *bracket.State
}

func NewStateStore(loader StateLoader) *StateStore {
	return &StateStore{
		loader:  loader,
		entries: make(map[uuid.UUID]*stateEntry),
	}
}

// With runs fn under the tournament's lock. When fn returns a non-nil next
// state it replaces the cached one; on error nothing changes, so a failed
// remote write leaves local state exactly as it was.
func (s *StateStore) With(ctx context.Context, tournamentID uuid.UUID, fn func(st *bracket.State) (*bracket.State, error)) error {
	entry := s.entry(tournamentID)
	entry.mu.Lock()
	defer entry.mu.Unlock()

	if entry.state == nil {
		st, err := s.loader(ctx, tournamentID)
		if err != nil {
			return err
		}
		entry.state = st
	}

	next, err := fn(entry.state)
	if err != nil {
		return err
	}
	if next != nil {
		entry.state = next
	}
	return nil
}

// Invalidate drops the cached state, forcing a reload on next use.
func (s *StateStore) Invalidate(tournamentID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, tournamentID)
}

func (s *StateStore) entry(tournamentID uuid.UUID) *stateEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[tournamentID]
	if !ok {
		e = &stateEntry{}
		s.entries[tournamentID] = e
	}
	return e
}
