package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fluxoconta/internal/core"

	"github.com/google/uuid"
)

// appendChunkSize bounds how many transactions are appended between context
// checks, so a cancelled commit stops before touching the store.
const appendChunkSize = 500

// CommitOptions toggle the optional stages of an import commit.
type CommitOptions struct {
	CreateCategories   bool `json:"createCategories"`
	ExpandInstallments bool `json:"expandInstallments"`
	SkipDuplicates     bool `json:"skipDuplicates"`
}

// DefaultCommitOptions enables every stage.
func DefaultCommitOptions() CommitOptions {
	return CommitOptions{CreateCategories: true, ExpandInstallments: true, SkipDuplicates: true}
}

// CommitResult summarizes what a commit changed.
type CommitResult struct {
	Imported          int        `json:"imported"`
	Duplicates        int        `json:"duplicates"`
	CategoriesCreated int        `json:"categoriesCreated"`
	Stats             core.Stats `json:"stats"`
	TransactionIDs    []string   `json:"-"`
}

// ImportEventPublisher notifies downstream consumers that an import landed.
type ImportEventPublisher interface {
	PublishImportEvent(ctx context.Context, filename string, ids []string, stats core.Stats) error
}

type ImportService struct {
	ledger    *Ledger
	publisher ImportEventPublisher
	logger    *slog.Logger
}

// NewImportService wires the commit pipeline. publisher may be nil when
// messaging is disabled.
func NewImportService(ledger *Ledger, publisher ImportEventPublisher, logger *slog.Logger) *ImportService {
	return &ImportService{ledger: ledger, publisher: publisher, logger: logger}
}

// Commit persists a parsed batch: create referenced categories, expand
// installments, drop duplicates, append what remains, and record a history
// entry. When every transaction turns out to be a duplicate the category
// creations still persist and the commit reports core.ErrNoNewData.
func (s *ImportService) Commit(ctx context.Context, batch *core.ImportBatch, filename string, opts CommitOptions) (CommitResult, error) {
	var result CommitResult

	err := s.ledger.Update(ctx, func(snap *core.Snapshot) error {
		if opts.CreateCategories {
			result.CategoriesCreated = createCategories(snap, batch)
		}

		incoming := batch.Valid
		if opts.ExpandInstallments {
			incoming = expandInstallments(incoming)
		}

		if opts.SkipDuplicates {
			incoming, result.Duplicates = skipDuplicates(snap.Transactions, incoming)
		}

		if len(incoming) == 0 {
			// Keep the category creations, report the zero-effect outcome.
			return nil
		}

		for start := 0; start < len(incoming); start += appendChunkSize {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("commit interrupted: %w", err)
			}
			end := min(start+appendChunkSize, len(incoming))
			snap.Transactions = append(snap.Transactions, incoming[start:end]...)
		}

		result.Imported = len(incoming)
		result.Stats = core.StatsOf(incoming)
		result.TransactionIDs = make([]string, len(incoming))
		for i, tx := range incoming {
			result.TransactionIDs[i] = tx.ID
		}

		snap.History = append([]core.HistoryEntry{{
			Date:     time.Now().UTC(),
			Filename: filename,
			Count:    result.Imported,
			Stats:    result.Stats,
		}}, snap.History...)
		if len(snap.History) > core.HistoryLimit {
			snap.History = snap.History[:core.HistoryLimit]
		}
		return nil
	})
	if err != nil {
		return CommitResult{}, err
	}

	if result.Imported == 0 {
		return result, core.ErrNoNewData
	}

	s.logger.Info("Import committed",
		"filename", filename,
		"imported", result.Imported,
		"duplicates", result.Duplicates,
		"categories_created", result.CategoriesCreated)

	if s.publisher != nil {
		// Publishing is best effort. A broker outage must not undo a commit
		// that already landed.
		if err := s.publisher.PublishImportEvent(ctx, filename, result.TransactionIDs, result.Stats); err != nil {
			s.logger.Warn("Import event not published", "error", err)
		}
	}

	return result, nil
}

// createCategories adds every referenced but unknown category. Auto-created
// categories default to expense; the user can retype them later.
func createCategories(snap *core.Snapshot, batch *core.ImportBatch) int {
	created := 0
	for _, name := range batch.CategoriesToCreate {
		if _, exists := snap.FindCategory(name); exists {
			continue
		}
		snap.Categories = append(snap.Categories, core.Category{
			ID:    uuid.NewString(),
			Nome:  name,
			Tipo:  core.Expense,
			Cor:   core.RandomColor(),
			Icone: core.DefaultGlyph,
		})
		created++
	}
	return created
}

// expandInstallments turns each multi-installment credit purchase into one
// transaction per installment index 1..N, regardless of which installment the
// statement row carried. Each sibling keeps the full amount, lands (i-1)
// months after the source date and carries a "(Parcela i/N)" suffix. The
// first sibling keeps the source row's ID.
func expandInstallments(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Type != core.Credit || tx.TotalInstallments <= 1 {
			out = append(out, tx)
			continue
		}
		base := tx.Description
		for i := 1; i <= tx.TotalInstallments; i++ {
			sibling := tx
			if i > 1 {
				sibling.ID = uuid.NewString()
			}
			sibling.Installment = i
			sibling.Date = tx.Date.AddMonths(i - 1)
			sibling.Description = fmt.Sprintf("%s (Parcela %d/%d)", base, i, tx.TotalInstallments)
			out = append(out, sibling)
		}
	}
	return out
}

// skipDuplicates drops incoming transactions that already exist, keyed on
// date, description, amount and type. Duplicates inside the batch itself
// collapse too.
func skipDuplicates(existing, incoming []core.Transaction) ([]core.Transaction, int) {
	seen := make(map[string]bool, len(existing)+len(incoming))
	for _, tx := range existing {
		seen[tx.DedupKey()] = true
	}

	kept := make([]core.Transaction, 0, len(incoming))
	dropped := 0
	for _, tx := range incoming {
		key := tx.DedupKey()
		if seen[key] {
			dropped++
			continue
		}
		seen[key] = true
		kept = append(kept, tx)
	}
	return kept, dropped
}
