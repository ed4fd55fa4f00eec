package services

import (
	"context"
	"fmt"
	"log/slog"

	"fluxoconta/internal/core"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an ID does not resolve to a stored record.
var ErrNotFound = fmt.Errorf("record not found")

type TransactionService struct {
	ledger *Ledger
	logger *slog.Logger
}

func NewTransactionService(ledger *Ledger, logger *slog.Logger) *TransactionService {
	return &TransactionService{ledger: ledger, logger: logger}
}

// Add validates and stores a single transaction. A missing ID gets one
// assigned; a colliding ID is rejected.
func (s *TransactionService) Add(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Category == "" {
		tx.Category = core.Uncategorized
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("validate transaction: %w", err)
	}

	err := s.ledger.Update(ctx, func(snap *core.Snapshot) error {
		for _, existing := range snap.Transactions {
			if existing.ID == tx.ID {
				return core.ErrDuplicateID
			}
		}
		snap.Transactions = append(snap.Transactions, tx)
		return nil
	})
	if err != nil {
		return core.Transaction{}, err
	}

	s.logger.Info("Transaction added", "id", tx.ID, "type", tx.Type, "amount", tx.Amount)
	return tx, nil
}

// Update replaces the stored transaction with the same ID.
func (s *TransactionService) Update(ctx context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("validate transaction: %w", err)
	}

	return s.ledger.Update(ctx, func(snap *core.Snapshot) error {
		for i, existing := range snap.Transactions {
			if existing.ID == tx.ID {
				snap.Transactions[i] = tx
				return nil
			}
		}
		return ErrNotFound
	})
}

// Delete removes a transaction by ID.
func (s *TransactionService) Delete(ctx context.Context, id string) error {
	return s.ledger.Update(ctx, func(snap *core.Snapshot) error {
		for i, existing := range snap.Transactions {
			if existing.ID == id {
				snap.Transactions = append(snap.Transactions[:i], snap.Transactions[i+1:]...)
				return nil
			}
		}
		return ErrNotFound
	})
}

// List returns every stored transaction.
func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	snap, err := s.ledger.View(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Transactions, nil
}
