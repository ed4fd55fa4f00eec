// Package storage persists the three domain collections as JSON documents in
// a sqlite key-value table. Reads and writes are wholesale: a snapshot in, a
// snapshot out, committed in a single transaction.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"fluxoconta/internal/core"

	_ "modernc.org/sqlite"
)

const (
	keyTransactions = "finance_transactions"
	keyCategories   = "finance_categories"
	keyHistory      = "finance_import_history"
)

type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load reads the full snapshot. Collections that were never written come
// back as empty slices, not nil errors.
func (s *Store) Load(ctx context.Context) (core.Snapshot, error) {
	var snap core.Snapshot
	if err := s.readJSON(ctx, keyTransactions, &snap.Transactions); err != nil {
		return core.Snapshot{}, fmt.Errorf("load transactions: %w", err)
	}
	if err := s.readJSON(ctx, keyCategories, &snap.Categories); err != nil {
		return core.Snapshot{}, fmt.Errorf("load categories: %w", err)
	}
	if err := s.readJSON(ctx, keyHistory, &snap.History); err != nil {
		return core.Snapshot{}, fmt.Errorf("load history: %w", err)
	}
	return snap, nil
}

// Commit writes the full snapshot atomically. Either all three collections
// update or none do.
func (s *Store) Commit(ctx context.Context, snap core.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := writeJSON(ctx, tx, keyTransactions, snap.Transactions); err != nil {
		return fmt.Errorf("store transactions: %w", err)
	}
	if err := writeJSON(ctx, tx, keyCategories, snap.Categories); err != nil {
		return fmt.Errorf("store categories: %w", err)
	}
	if err := writeJSON(ctx, tx, keyHistory, snap.History); err != nil {
		return fmt.Errorf("store history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.Debug("Snapshot committed",
		"transactions", len(snap.Transactions),
		"categories", len(snap.Categories),
		"history", len(snap.History))
	return nil
}

// EnsureSeed writes the default category set if no categories exist yet.
func (s *Store) EnsureSeed(ctx context.Context) error {
	var existing []core.Category
	if err := s.readJSON(ctx, keyCategories, &existing); err != nil {
		return fmt.Errorf("check categories: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := writeJSON(ctx, tx, keyCategories, core.DefaultCategories()); err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	slog.Info("Seeded default categories", "count", len(core.DefaultCategories()))
	return nil
}

func (s *Store) readJSON(ctx context.Context, key string, dest any) error {
	var raw string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM collections WHERE key = ?", key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("select %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func writeJSON(ctx context.Context, tx *sql.Tx, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO collections (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP`,
		key, string(raw))
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}
