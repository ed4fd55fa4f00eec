package services

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"fluxoconta/internal/core"
)

// fakeStore keeps snapshots in memory for service tests.
type fakeStore struct {
	mu      sync.Mutex
	snap    core.Snapshot
	commits int
}

func (f *fakeStore) Load(ctx context.Context) (core.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap.Clone(), nil
}

func (f *fakeStore) Commit(ctx context.Context, snap core.Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snap = snap
	f.commits++
	return nil
}

func newTestLedger() (*Ledger, *fakeStore) {
	store := &fakeStore{}
	return NewLedger(store), store
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
