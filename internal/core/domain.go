package core

import (
	"errors"
	"strconv"
	"strings"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
	Credit  TransactionType = "credit"
)

// Uncategorized is the fallback category assigned when no category applies
// or when a referenced category has been deleted.
const Uncategorized = "Sem categoria"

// HistoryLimit caps the import history at the most recent entries.
const HistoryLimit = 20

type (
	TransactionType string

	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Date        Date            `json:"date"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Amount      float64         `json:"amount"`

		// Credit-card fields, only meaningful when Type == Credit.
		Card              string `json:"card,omitempty"`
		Installment       int    `json:"installment,omitempty"`
		TotalInstallments int    `json:"totalInstallments,omitempty"`
	}

	Category struct {
		ID        string          `json:"id"`
		Nome      string          `json:"nome"`
		Tipo      TransactionType `json:"tipo"`
		Cor       string          `json:"cor"`
		Icone     string          `json:"icone"`
		Orcamento float64         `json:"orcamento"`
	}

	// Stats aggregates amounts per transaction type.
	Stats struct {
		Income  float64 `json:"income"`
		Expense float64 `json:"expense"`
		Credit  float64 `json:"credit"`
	}

	// RowError describes a rejected import row. Row is the 1-based source
	// row number, counting the header as row 1.
	RowError struct {
		Row    int    `json:"row"`
		Reason string `json:"reason"`
	}

	// ImportBatch is the outcome of parsing an import file.
	ImportBatch struct {
		Valid              []Transaction `json:"valid"`
		Invalid            []RowError    `json:"invalid"`
		CategoriesToCreate []string      `json:"categoriesToCreate"`
		Stats              Stats         `json:"stats"`
	}
)

var (
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrEmptyDescription   = errors.New("empty description")
	ErrInvalidInstallment = errors.New("invalid installment fields")
	ErrDuplicateID        = errors.New("duplicate id")
	ErrEmptyCategoryName  = errors.New("empty category name")
	ErrInvalidBudget      = errors.New("invalid budget")
)

func (tt TransactionType) Valid() bool {
	switch tt {
	case Income, Expense, Credit:
		return true
	}
	return false
}

// ClassifyType infers a transaction type from free text. The keyword table
// is closed:
//
//	entrada, receita, income                   -> income
//	cartao, cartão, credito, crédito, credit   -> credit
//	anything else                              -> expense
func ClassifyType(raw string) TransactionType {
	v := strings.ToLower(strings.TrimSpace(raw))
	for _, kw := range []string{"entrada", "receita", "income"} {
		if strings.Contains(v, kw) {
			return Income
		}
	}
	for _, kw := range []string{"cartao", "cartão", "credito", "crédito", "credit"} {
		if strings.Contains(v, kw) {
			return Credit
		}
	}
	return Expense
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if t.Type != Credit {
		if t.Card != "" || t.Installment != 0 || t.TotalInstallments != 0 {
			return ErrInvalidInstallment
		}
		return nil
	}
	if t.Installment == 0 && t.TotalInstallments == 0 {
		return nil
	}
	if t.Installment < 1 || t.TotalInstallments < t.Installment {
		return ErrInvalidInstallment
	}
	return nil
}

// DedupKey identifies a transaction for duplicate detection. Category and
// card are deliberately excluded: two rows that differ only in those fields
// describe the same financial event.
func (t Transaction) DedupKey() string {
	return t.Date.String() + "|" + t.Description + "|" +
		strconv.FormatFloat(t.Amount, 'f', -1, 64) + "|" + string(t.Type)
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Nome) == "" {
		return ErrEmptyCategoryName
	}
	if !c.Tipo.Valid() {
		return ErrInvalidType
	}
	if c.Orcamento < 0 {
		return ErrInvalidBudget
	}
	return nil
}

// Add accumulates a transaction amount into the matching bucket. Unknown
// types are ignored.
func (s *Stats) Add(t Transaction) {
	switch t.Type {
	case Income:
		s.Income += t.Amount
	case Expense:
		s.Expense += t.Amount
	case Credit:
		s.Credit += t.Amount
	}
}

// Balance is income minus expenses and card charges.
func (s Stats) Balance() float64 {
	return s.Income - s.Expense - s.Credit
}

// StatsOf sums amounts per type over the given transactions.
func StatsOf(txs []Transaction) Stats {
	var s Stats
	for _, t := range txs {
		s.Add(t)
	}
	return s
}
