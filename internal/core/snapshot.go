package core

import (
	"strings"
	"time"
)

// HistoryEntry records one completed import.
type HistoryEntry struct {
	Date     time.Time `json:"date"`
	Filename string    `json:"filename"`
	Count    int       `json:"count"`
	Stats    Stats     `json:"stats"`
}

// Snapshot is the full persisted state: the three collections the store
// reads and writes wholesale. Mutations happen by loading a snapshot,
// transforming it, and committing the result in one step.
type Snapshot struct {
	Transactions []Transaction  `json:"transactions"`
	Categories   []Category     `json:"categories"`
	History      []HistoryEntry `json:"history"`
}

// Clone returns a deep-enough copy: the slices are fresh, the elements are
// value types.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Transactions: make([]Transaction, len(s.Transactions)),
		Categories:   make([]Category, len(s.Categories)),
		History:      make([]HistoryEntry, len(s.History)),
	}
	copy(out.Transactions, s.Transactions)
	copy(out.Categories, s.Categories)
	copy(out.History, s.History)
	return out
}

// FindCategory looks a category up by case-insensitive name.
func (s Snapshot) FindCategory(name string) (Category, bool) {
	for _, c := range s.Categories {
		if strings.EqualFold(c.Nome, name) {
			return c, true
		}
	}
	return Category{}, false
}
