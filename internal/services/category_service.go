package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fluxoconta/internal/core"

	"github.com/google/uuid"
)

// ErrCategoryExists is returned when a category name is already taken.
var ErrCategoryExists = fmt.Errorf("category already exists")

type CategoryService struct {
	ledger *Ledger
	logger *slog.Logger
}

func NewCategoryService(ledger *Ledger, logger *slog.Logger) *CategoryService {
	return &CategoryService{ledger: ledger, logger: logger}
}

// Create stores a new category. Names are unique case-insensitively; a
// missing color or icon falls back to the defaults.
func (s *CategoryService) Create(ctx context.Context, cat core.Category) (core.Category, error) {
	if cat.ID == "" {
		cat.ID = uuid.NewString()
	}
	if cat.Cor == "" {
		cat.Cor = core.RandomColor()
	}
	if cat.Icone == "" {
		cat.Icone = core.DefaultGlyph
	}
	if err := cat.Validate(); err != nil {
		return core.Category{}, fmt.Errorf("validate category: %w", err)
	}

	err := s.ledger.Update(ctx, func(snap *core.Snapshot) error {
		if _, exists := snap.FindCategory(cat.Nome); exists {
			return ErrCategoryExists
		}
		snap.Categories = append(snap.Categories, cat)
		return nil
	})
	if err != nil {
		return core.Category{}, err
	}

	s.logger.Info("Category created", "id", cat.ID, "nome", cat.Nome)
	return cat, nil
}

// Update replaces a category. A rename cascades to every transaction that
// carries the old name.
func (s *CategoryService) Update(ctx context.Context, cat core.Category) error {
	if err := cat.Validate(); err != nil {
		return fmt.Errorf("validate category: %w", err)
	}

	return s.ledger.Update(ctx, func(snap *core.Snapshot) error {
		for i, existing := range snap.Categories {
			if existing.ID != cat.ID {
				continue
			}
			if !strings.EqualFold(existing.Nome, cat.Nome) {
				if _, taken := snap.FindCategory(cat.Nome); taken {
					return ErrCategoryExists
				}
				retag(snap, existing.Nome, cat.Nome)
			}
			snap.Categories[i] = cat
			return nil
		}
		return ErrNotFound
	})
}

// Delete removes a category. Its transactions survive and fall back to the
// uncategorized bucket.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	return s.ledger.Update(ctx, func(snap *core.Snapshot) error {
		for i, existing := range snap.Categories {
			if existing.ID == id {
				snap.Categories = append(snap.Categories[:i], snap.Categories[i+1:]...)
				retag(snap, existing.Nome, core.Uncategorized)
				return nil
			}
		}
		return ErrNotFound
	})
}

// List returns every stored category.
func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	snap, err := s.ledger.View(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Categories, nil
}

func retag(snap *core.Snapshot, from, to string) {
	for i, tx := range snap.Transactions {
		if strings.EqualFold(tx.Category, from) {
			snap.Transactions[i].Category = to
		}
	}
}
