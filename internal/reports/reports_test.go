package reports

import (
	"errors"
	"testing"

	"fluxoconta/internal/core"
)

func tx(tt core.TransactionType, date core.Date, category string, amount float64) core.Transaction {
	return core.Transaction{Type: tt, Date: date, Description: "x", Category: category, Amount: amount}
}

func TestWindowContainsInclusive(t *testing.T) {
	w := Window{Start: core.NewDate(2026, 1, 10), End: core.NewDate(2026, 1, 20)}
	cases := []struct {
		d    core.Date
		want bool
	}{
		{core.NewDate(2026, 1, 9), false},
		{core.NewDate(2026, 1, 10), true},
		{core.NewDate(2026, 1, 15), true},
		{core.NewDate(2026, 1, 20), true},
		{core.NewDate(2026, 1, 21), false},
	}
	for i, tc := range cases {
		if got := w.Contains(tc.d); got != tc.want {
			t.Fatalf("case %d (%s): got %v", i, tc.d, got)
		}
	}
}

func TestResolvePeriod(t *testing.T) {
	ref := core.NewDate(2026, 8, 31)
	cases := []struct {
		p     Period
		start string
	}{
		{PeriodMonth, "2026-07-31"},
		{PeriodQuarter, "2026-05-31"},
		{PeriodSemester, "2026-03-03"},
		{PeriodYear, "2025-08-31"},
	}
	for i, tc := range cases {
		w, err := ResolvePeriod(tc.p, ref)
		if err != nil {
			t.Fatalf("case %d: unexpected error %v", i, err)
		}
		if w.Start.String() != tc.start || w.End.String() != "2026-08-31" {
			t.Fatalf("case %d: got %s..%s", i, w.Start, w.End)
		}
	}

	if _, err := ResolvePeriod("decade", ref); err == nil {
		t.Fatalf("expected error for unknown period")
	}
}

func TestCustomWindow(t *testing.T) {
	if _, err := CustomWindow(core.NewDate(2026, 2, 1), core.NewDate(2026, 1, 1)); !errors.Is(err, core.ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	w, err := CustomWindow(core.NewDate(2026, 1, 1), core.NewDate(2026, 1, 1))
	if err != nil {
		t.Fatalf("single-day range should be allowed: %v", err)
	}
	if w.Days() != 1 {
		t.Fatalf("got %d days", w.Days())
	}
}

func TestGroupByCategoryRankingAndTies(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Expense, core.NewDate(2026, 1, 1), "Moradia", 100),
		tx(core.Expense, core.NewDate(2026, 1, 2), "Transporte", 50),
		tx(core.Credit, core.NewDate(2026, 1, 3), "Lazer", 50),
		tx(core.Expense, core.NewDate(2026, 1, 4), "Moradia", 200),
		// Income never enters the ranking.
		tx(core.Income, core.NewDate(2026, 1, 5), "Salário", 9999),
	}

	ranked := GroupByCategory(txs)
	if len(ranked) != 3 {
		t.Fatalf("got %d slices", len(ranked))
	}
	if ranked[0].Category != "Moradia" || ranked[0].Total != 300 {
		t.Fatalf("unexpected top slice: %+v", ranked[0])
	}
	// Transporte and Lazer tie at 50; first encountered wins.
	if ranked[1].Category != "Transporte" || ranked[2].Category != "Lazer" {
		t.Fatalf("tie order broken: %+v", ranked[1:])
	}
}

func TestTopN(t *testing.T) {
	slices := []CategorySlice{
		{"A", 100}, {"B", 90}, {"C", 80}, {"D", 70},
	}
	top := TopN(slices, 2)
	if len(top) != 3 {
		t.Fatalf("got %d slices", len(top))
	}
	if top[2].Category != OverflowBucket || top[2].Total != 150 {
		t.Fatalf("unexpected overflow bucket: %+v", top[2])
	}

	if got := TopN(slices, 10); len(got) != 4 {
		t.Fatalf("short input should pass through, got %d", len(got))
	}
}

func TestGroupByMonthAndKeys(t *testing.T) {
	txs := []core.Transaction{
		tx(core.Income, core.NewDate(2026, 1, 5), "Salário", 5000),
		tx(core.Expense, core.NewDate(2026, 1, 20), "Moradia", 1500),
		tx(core.Expense, core.NewDate(2026, 3, 2), "Moradia", 1500),
	}

	byMonth := GroupByMonth(txs)
	if len(byMonth) != 2 {
		t.Fatalf("got %d buckets", len(byMonth))
	}
	jan := byMonth["2026-01"]
	if jan.Income != 5000 || jan.Expense != 1500 {
		t.Fatalf("unexpected january: %+v", jan)
	}

	keys := SortedMonthKeys(byMonth)
	if len(keys) != 2 || keys[0] != "2026-01" || keys[1] != "2026-03" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestMonthOverMonthVariance(t *testing.T) {
	ref := core.NewDate(2026, 2, 15)
	txs := []core.Transaction{
		tx(core.Expense, core.NewDate(2026, 1, 10), "Moradia", 200),
		tx(core.Credit, core.NewDate(2026, 1, 12), "Lazer", 100),
		tx(core.Expense, core.NewDate(2026, 2, 5), "Moradia", 450),
	}

	v := MonthOverMonthVariance(txs, ref)
	if !v.Defined {
		t.Fatalf("expected defined variance")
	}
	if v.Current != 450 || v.Previous != 300 || v.Percent != 50 {
		t.Fatalf("unexpected variance: %+v", v)
	}

	// No prior spending leaves the percentage undefined.
	v = MonthOverMonthVariance(txs, core.NewDate(2026, 1, 15))
	if v.Defined {
		t.Fatalf("expected undefined variance, got %+v", v)
	}
	if v.Current != 300 || v.Previous != 0 {
		t.Fatalf("unexpected totals: %+v", v)
	}
}

func TestVarianceSeries(t *testing.T) {
	byMonth := GroupByMonth([]core.Transaction{
		tx(core.Expense, core.NewDate(2026, 1, 10), "Moradia", 100),
		tx(core.Expense, core.NewDate(2026, 2, 5), "Moradia", 150),
		tx(core.Credit, core.NewDate(2026, 2, 12), "Lazer", 50),
		tx(core.Expense, core.NewDate(2026, 3, 8), "Moradia", 100),
	})

	series := VarianceSeries(byMonth)
	if len(series) != 3 {
		t.Fatalf("got %d entries", len(series))
	}
	if series[0].Month != "2026-01" || series[0].Defined {
		t.Fatalf("first month has no predecessor: %+v", series[0])
	}
	if series[1].Month != "2026-02" || !series[1].Defined || series[1].Percent != 100 {
		t.Fatalf("unexpected second entry: %+v", series[1])
	}
	if series[2].Month != "2026-03" || !series[2].Defined || series[2].Percent != -50 {
		t.Fatalf("unexpected third entry: %+v", series[2])
	}

	// Income is not spending, so a month holding only income leaves the
	// following month undefined.
	byMonth = GroupByMonth([]core.Transaction{
		tx(core.Income, core.NewDate(2026, 1, 10), "Salário", 5000),
		tx(core.Expense, core.NewDate(2026, 2, 5), "Moradia", 100),
	})
	series = VarianceSeries(byMonth)
	if len(series) != 2 || series[1].Defined {
		t.Fatalf("zero prior spending must stay undefined: %+v", series)
	}
}

func TestStatistics(t *testing.T) {
	w := Window{Start: core.NewDate(2026, 1, 1), End: core.NewDate(2026, 2, 28)}
	txs := []core.Transaction{
		tx(core.Income, core.NewDate(2026, 1, 5), "Salário", 6000),
		tx(core.Expense, core.NewDate(2026, 1, 10), "Moradia", 1500),
		tx(core.Expense, core.NewDate(2026, 2, 10), "Moradia", 1500),
		{Type: core.Credit, Date: core.NewDate(2026, 2, 15), Description: "iPhone", Category: "Eletrônicos", Amount: 1000, Installment: 1, TotalInstallments: 12},
	}

	s := Statistics(txs, w)
	if s.Count != 4 {
		t.Fatalf("count: %d", s.Count)
	}
	if s.Balance != 2000 {
		t.Fatalf("balance: %v", s.Balance)
	}
	// 60 days -> ceil(60/30) = 2 months of spending.
	if s.AvgMonthlyExpense != 2000 {
		t.Fatalf("avg monthly expense: %v", s.AvgMonthlyExpense)
	}
	// (6000 - 4000) / 6000
	if s.SavingsRate < 33.3 || s.SavingsRate > 33.4 {
		t.Fatalf("savings rate: %v", s.SavingsRate)
	}
	if s.LargestIncome != 6000 || s.LargestExpense != 1500 {
		t.Fatalf("largest: %+v", s)
	}
	if s.TopCategory != "Moradia" {
		t.Fatalf("top category: %q", s.TopCategory)
	}
	if s.InstallmentTotal != 1000 {
		t.Fatalf("installment total: %v", s.InstallmentTotal)
	}
}

func TestStatisticsZeroIncome(t *testing.T) {
	w := Window{Start: core.NewDate(2026, 1, 1), End: core.NewDate(2026, 1, 31)}
	txs := []core.Transaction{
		tx(core.Expense, core.NewDate(2026, 1, 10), "Moradia", 500),
	}
	s := Statistics(txs, w)
	if s.SavingsRate != 0 {
		t.Fatalf("savings rate should stay zero without income, got %v", s.SavingsRate)
	}
}

func TestMonthWindow(t *testing.T) {
	w := MonthWindow(2026, 2)
	if w.Start.String() != "2026-02-01" || w.End.String() != "2026-02-28" {
		t.Fatalf("got %s..%s", w.Start, w.End)
	}
	w = MonthWindow(2024, 2)
	if w.End.String() != "2024-02-29" {
		t.Fatalf("leap year end: %s", w.End)
	}
}
