// internal/store/memory.go
//
// In-memory implementation of the Store interface for active rounds.
//
// Characteristics:
//   - Stores *game.Round objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex; Update runs its callback under the write
//     lock so two submissions to the same round never interleave.
//   - Sweep drops rounds idle longer than a TTL.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/wordimize/internal/game"
)

// ErrNotFound is returned for unknown round ids.
var ErrNotFound = errors.New("store: round not found")

// Store defines the persistence interface for active rounds.
type Store interface {
	// Save persists or replaces a round.
	Save(ctx context.Context, r *game.Round) error

	// Get returns a snapshot of the round with the given id.
	Get(ctx context.Context, id string) (game.Round, error)

	// Update applies fn to the stored round while holding exclusive access.
	// The returned snapshot reflects the round after fn.
	Update(ctx context.Context, id string, fn func(*game.Round) error) (game.Round, error)

	// Delete removes a round. Deleting a missing id is not an error.
	Delete(ctx context.Context, id string) error

	// Sweep removes rounds not updated within idle and reports how many went.
	Sweep(ctx context.Context, idle time.Duration) (int, error)

	// Len reports the number of active rounds.
	Len() int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu     sync.RWMutex
	rounds map[string]*game.Round
	now    func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{rounds: make(map[string]*game.Round), now: time.Now}
}

func (m *memory) Save(ctx context.Context, r *game.Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rounds[r.ID] = r
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (game.Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if r, ok := m.rounds[id]; ok {
		return r.Snapshot(), nil
	}
	return game.Round{}, ErrNotFound
}

func (m *memory) Update(ctx context.Context, id string, fn func(*game.Round) error) (game.Round, error) {
	if err := ctx.Err(); err != nil {
		return game.Round{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[id]
	if !ok {
		return game.Round{}, ErrNotFound
	}
	if err := fn(r); err != nil {
		return r.Snapshot(), err
	}
	return r.Snapshot(), nil
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rounds, id)
	return nil
}

func (m *memory) Sweep(ctx context.Context, idle time.Duration) (int, error) {
	cutoff := m.now().Add(-idle)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, r := range m.rounds {
		if r.UpdatedAt.Before(cutoff) {
			delete(m.rounds, id)
			removed++
		}
	}
	return removed, nil
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rounds)
}
