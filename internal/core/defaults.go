package core

import (
	"fmt"
	"math/rand"
	"strings"
)

// DefaultGlyph decorates categories that never picked an icon.
const DefaultGlyph = "📌"

// Palette holds the display colors assigned to auto-created categories.
var Palette = []string{
	"#3498db", "#e74c3c", "#2ecc71", "#f39c12", "#9b59b6",
	"#1abc9c", "#e67e22", "#e91e63", "#00bcd4", "#8e44ad",
}

// RandomColor picks a palette color for a new category.
func RandomColor() string {
	return Palette[rand.Intn(len(Palette))]
}

// TypeLabel returns the Portuguese display label for a transaction type.
func TypeLabel(tt TransactionType) string {
	switch tt {
	case Income:
		return "Entrada"
	case Expense:
		return "Saída"
	case Credit:
		return "Cartão"
	}
	return string(tt)
}

// FormatBRL renders an amount as Brazilian currency, e.g. "R$ 1.234,56".
func FormatBRL(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	cents := int64(v*100 + 0.5)
	intPart := cents / 100
	frac := cents % 100

	digits := fmt.Sprintf("%d", intPart)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	s := fmt.Sprintf("R$ %s,%02d", b.String(), frac)
	if neg {
		return "-" + s
	}
	return s
}

// DefaultCategories seeds a fresh store, mirroring the starter set users get
// before importing anything.
func DefaultCategories() []Category {
	return []Category{
		{ID: "1", Nome: "Salário", Tipo: Income, Cor: "#2ecc71", Icone: "💼"},
		{ID: "2", Nome: "Freelance", Tipo: Income, Cor: "#3498db", Icone: "💻"},
		{ID: "3", Nome: "Investimentos", Tipo: Income, Cor: "#9b59b6", Icone: "📈"},
		{ID: "4", Nome: "Alimentação", Tipo: Expense, Cor: "#e74c3c", Icone: "🍔", Orcamento: 800},
		{ID: "5", Nome: "Transporte", Tipo: Expense, Cor: "#f39c12", Icone: "🚗", Orcamento: 300},
		{ID: "6", Nome: "Moradia", Tipo: Expense, Cor: "#1abc9c", Icone: "🏠", Orcamento: 1500},
		{ID: "7", Nome: "Saúde", Tipo: Expense, Cor: "#e67e22", Icone: "💊", Orcamento: 200},
		{ID: "8", Nome: "Compras", Tipo: Credit, Cor: "#f1c40f", Icone: "🛍️", Orcamento: 500},
		{ID: "9", Nome: "Lazer", Tipo: Credit, Cor: "#e91e63", Icone: "🎮", Orcamento: 300},
		{ID: "10", Nome: "Assinaturas", Tipo: Credit, Cor: "#00bcd4", Icone: "📺", Orcamento: 150},
	}
}
