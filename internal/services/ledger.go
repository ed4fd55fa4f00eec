// Package services holds the write-side use cases. All mutations funnel
// through the Ledger so concurrent requests see read-modify-write as one
// atomic step.
package services

import (
	"context"
	"fmt"
	"sync"

	"fluxoconta/internal/core"
)

// Store is the persistence the services need: load everything, commit
// everything.
type Store interface {
	Load(ctx context.Context) (core.Snapshot, error)
	Commit(ctx context.Context, snap core.Snapshot) error
}

// Ledger serializes snapshot mutations. The store itself commits
// atomically; the mutex closes the load-to-commit gap between callers.
type Ledger struct {
	mu    sync.Mutex
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

// Update loads the snapshot, applies fn to a copy, and commits the result.
// When fn returns an error nothing is persisted.
func (l *Ledger) Update(ctx context.Context, fn func(*core.Snapshot) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap, err := l.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	next := snap.Clone()
	if err := fn(&next); err != nil {
		return err
	}

	if err := l.store.Commit(ctx, next); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// View reads the current snapshot without taking the write lock.
func (l *Ledger) View(ctx context.Context) (core.Snapshot, error) {
	return l.store.Load(ctx)
}
