// Package reports computes the read-side aggregations: totals, groupings,
// month-over-month variance and summary statistics. Everything operates on
// plain transaction slices; callers pick the window first.
package reports

import (
	"math"
	"sort"

	"fluxoconta/internal/core"
)

// CategorySlice is a ranked aggregation bucket.
type CategorySlice struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// OverflowBucket collects everything past the top-N cut.
const OverflowBucket = "Outros"

// Variance compares one month's spending against the previous month.
// Defined is false when the prior month has no spending, in which case
// Percent carries no meaning.
type Variance struct {
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Percent  float64 `json:"percent"`
	Defined  bool    `json:"defined"`
}

// Summary is the statistics block of the report endpoints.
type Summary struct {
	Totals            core.Stats `json:"totals"`
	Balance           float64    `json:"balance"`
	AvgMonthlyExpense float64    `json:"avgMonthlyExpense"`
	SavingsRate       float64    `json:"savingsRate"`
	LargestIncome     float64    `json:"largestIncome"`
	LargestExpense    float64    `json:"largestExpense"`
	TopCategory       string     `json:"topCategory"`
	InstallmentTotal  float64    `json:"installmentTotal"`
	Count             int        `json:"count"`
}

// FilterByWindow returns the transactions dated inside the window.
func FilterByWindow(txs []core.Transaction, w Window) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if w.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

// TotalsByType sums amounts into the three type buckets.
func TotalsByType(txs []core.Transaction) core.Stats {
	return core.StatsOf(txs)
}

// GroupByCategory ranks spending (expenses plus card charges) per category,
// highest first. Categories tied on total keep their first-encounter order.
func GroupByCategory(txs []core.Transaction) []CategorySlice {
	totals := make(map[string]float64)
	var order []string
	for _, t := range txs {
		if t.Type == core.Income {
			continue
		}
		if _, seen := totals[t.Category]; !seen {
			order = append(order, t.Category)
		}
		totals[t.Category] += t.Amount
	}

	out := make([]CategorySlice, 0, len(order))
	for _, name := range order {
		out = append(out, CategorySlice{Category: name, Total: totals[name]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	return out
}

// TopN keeps the n largest category slices and folds the rest into a single
// overflow bucket. The input must already be ranked.
func TopN(slices []CategorySlice, n int) []CategorySlice {
	if n <= 0 || len(slices) <= n {
		return slices
	}
	out := make([]CategorySlice, n, n+1)
	copy(out, slices[:n])

	var rest float64
	for _, s := range slices[n:] {
		rest += s.Total
	}
	if rest > 0 {
		out = append(out, CategorySlice{Category: OverflowBucket, Total: rest})
	}
	return out
}

// GroupByMonth buckets per-type totals by "YYYY-MM" key.
func GroupByMonth(txs []core.Transaction) map[string]core.Stats {
	out := make(map[string]core.Stats)
	for _, t := range txs {
		s := out[t.Date.MonthKey()]
		s.Add(t)
		out[t.Date.MonthKey()] = s
	}
	return out
}

// SortedMonthKeys returns the month keys in chronological order. The
// "YYYY-MM" shape sorts lexically.
func SortedMonthKeys(byMonth map[string]core.Stats) []string {
	keys := make([]string, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GroupByDay buckets per-type totals by ISO date, for calendar views.
func GroupByDay(txs []core.Transaction) map[string]core.Stats {
	out := make(map[string]core.Stats)
	for _, t := range txs {
		s := out[t.Date.String()]
		s.Add(t)
		out[t.Date.String()] = s
	}
	return out
}

// MonthVariance is one column of the monthly variance series.
type MonthVariance struct {
	Month string `json:"month"`
	Variance
}

// VarianceSeries computes, for every month of the grouping in chronological
// order, the spending change (expense plus credit) relative to the month
// before it in the series. The first month, and any month following one
// without spending, stays Defined=false.
func VarianceSeries(byMonth map[string]core.Stats) []MonthVariance {
	keys := SortedMonthKeys(byMonth)
	out := make([]MonthVariance, 0, len(keys))
	for i, k := range keys {
		s := byMonth[k]
		mv := MonthVariance{Month: k, Variance: Variance{Current: s.Expense + s.Credit}}
		if i > 0 {
			prev := byMonth[keys[i-1]]
			mv.Previous = prev.Expense + prev.Credit
			if mv.Previous > 0 {
				mv.Percent = (mv.Current - mv.Previous) / mv.Previous * 100
				mv.Defined = true
			}
		}
		out = append(out, mv)
	}
	return out
}

// MonthOverMonthVariance compares spending (expense plus credit) of the
// month containing ref against the previous calendar month.
func MonthOverMonthVariance(txs []core.Transaction, ref core.Date) Variance {
	current := spendingIn(txs, MonthWindow(ref.Year(), int(ref.Month())))
	prev := ref.AddMonths(-1)
	previous := spendingIn(txs, MonthWindow(prev.Year(), int(prev.Month())))

	v := Variance{Current: current, Previous: previous}
	if previous > 0 {
		v.Percent = (current - previous) / previous * 100
		v.Defined = true
	}
	return v
}

func spendingIn(txs []core.Transaction, w Window) float64 {
	var total float64
	for _, t := range txs {
		if t.Type != core.Income && w.Contains(t.Date) {
			total += t.Amount
		}
	}
	return total
}

// Statistics computes the summary block over a window of transactions.
// The monthly average divides total spending by the number of 30-day
// stretches the window spans, never less than one.
func Statistics(txs []core.Transaction, w Window) Summary {
	s := Summary{Totals: core.StatsOf(txs), Count: len(txs)}
	s.Balance = s.Totals.Balance()

	spending := s.Totals.Expense + s.Totals.Credit
	months := math.Ceil(float64(w.Days()) / 30)
	if months < 1 {
		months = 1
	}
	s.AvgMonthlyExpense = spending / months

	if s.Totals.Income > 0 {
		s.SavingsRate = (s.Totals.Income - spending) / s.Totals.Income * 100
	}

	for _, t := range txs {
		switch {
		case t.Type == core.Income && t.Amount > s.LargestIncome:
			s.LargestIncome = t.Amount
		case t.Type != core.Income && t.Amount > s.LargestExpense:
			s.LargestExpense = t.Amount
		}
		if t.Type == core.Credit && t.TotalInstallments > 1 {
			s.InstallmentTotal += t.Amount
		}
	}

	if ranked := GroupByCategory(txs); len(ranked) > 0 {
		s.TopCategory = ranked[0].Category
	}
	return s
}
