// Package sheets defines the outbound ports the backup worker writes through.
package sheets

import (
	"context"

	"fluxoconta/internal/core"
)

type (
	// TransactionAppender mirrors newly imported transactions to an
	// external sheet.
	TransactionAppender interface {
		AppendTransactions(ctx context.Context, txs []core.Transaction) error
	}

	// SnapshotReplacer rewrites the external sheet with the full ledger.
	SnapshotReplacer interface {
		ReplaceTransactions(ctx context.Context, txs []core.Transaction) error
	}
)
