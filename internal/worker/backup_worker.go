// Package worker mirrors the ledger to an external spreadsheet: incremental
// appends driven by import events, plus a periodic full rewrite.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fluxoconta/internal/amqp"
	"fluxoconta/internal/core"
	"fluxoconta/internal/services"
	"fluxoconta/internal/sheets"
)

type BackupWorker struct {
	store    services.Store
	appender sheets.TransactionAppender
	replacer sheets.SnapshotReplacer
	logger   *slog.Logger
}

func NewBackupWorker(store services.Store, appender sheets.TransactionAppender, replacer sheets.SnapshotReplacer, logger *slog.Logger) *BackupWorker {
	return &BackupWorker{
		store:    store,
		appender: appender,
		replacer: replacer,
		logger:   logger,
	}
}

// HandleImportEvent mirrors the transactions named by an import event.
// IDs that no longer resolve (deleted since the event) are skipped.
func (w *BackupWorker) HandleImportEvent(msg *amqp.ImportEventMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap, err := w.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	wanted := make(map[string]bool, len(msg.TransactionIDs))
	for _, id := range msg.TransactionIDs {
		wanted[id] = true
	}

	var txs []core.Transaction
	for _, tx := range snap.Transactions {
		if wanted[tx.ID] {
			txs = append(txs, tx)
		}
	}

	if len(txs) < len(msg.TransactionIDs) {
		w.logger.Warn("Some imported transactions no longer exist",
			"expected", len(msg.TransactionIDs),
			"found", len(txs),
			"filename", msg.Filename)
	}
	if len(txs) == 0 {
		return nil
	}

	if err := w.appender.AppendTransactions(ctx, txs); err != nil {
		return fmt.Errorf("append transactions: %w", err)
	}

	w.logger.Info("Backed up imported transactions",
		"filename", msg.Filename,
		"count", len(txs))
	return nil
}

// RunPeriodicBackup rewrites the full sheet every interval until the context
// is cancelled. A failed rewrite is logged and retried on the next tick.
func (w *BackupWorker) RunPeriodicBackup(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Info("Periodic backup started", "interval", interval)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Periodic backup stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if err := w.fullBackup(ctx); err != nil {
				w.logger.Error("Full backup failed", "error", err)
			}
		}
	}
}

func (w *BackupWorker) fullBackup(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	snap, err := w.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	if err := w.replacer.ReplaceTransactions(ctx, snap.Transactions); err != nil {
		return fmt.Errorf("replace transactions: %w", err)
	}

	w.logger.Info("Full backup completed", "transactions", len(snap.Transactions))
	return nil
}
