package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"fluxoconta/internal/core"
	"fluxoconta/internal/reports"
)

const topCategoryCount = 6

func (s *Server) writeCached(w http.ResponseWriter, key string, build func() (any, error)) {
	if raw, found := s.reportCache.Get(key); found {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
		return
	}

	v, err := build()
	if err != nil {
		if errors.Is(err, core.ErrInvalidRange) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("Report build error", "error", err, "key", key)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	raw, err := json.Marshal(v)
	if err != nil {
		slog.Error("Report encode error", "error", err, "key", key)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.reportCache.Set(key, raw)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

type dashboardResponse struct {
	Month         core.Stats              `json:"month"`
	MonthBalance  float64                 `json:"monthBalance"`
	Variance      reports.Variance        `json:"variance"`
	TopCategories []reports.CategorySlice `json:"topCategories"`
	ByMonth       map[string]core.Stats   `json:"byMonth"`
	MonthKeys     []string                `json:"monthKeys"`
	Recent        []core.Transaction      `json:"recent"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.writeCached(w, "dashboard", func() (any, error) {
		snap, err := s.ledger.View(r.Context())
		if err != nil {
			return nil, err
		}

		today := core.Today()
		monthWindow := reports.MonthWindow(today.Year(), int(today.Month()))
		monthTxs := reports.FilterByWindow(snap.Transactions, monthWindow)

		halfYear := reports.Window{Start: today.AddMonths(-6), End: today}
		recentTxs := reports.FilterByWindow(snap.Transactions, halfYear)
		byMonth := reports.GroupByMonth(recentTxs)

		resp := dashboardResponse{
			Month:         reports.TotalsByType(monthTxs),
			Variance:      reports.MonthOverMonthVariance(snap.Transactions, today),
			TopCategories: reports.TopN(reports.GroupByCategory(monthTxs), topCategoryCount),
			ByMonth:       byMonth,
			MonthKeys:     reports.SortedMonthKeys(byMonth),
		}
		resp.MonthBalance = resp.Month.Balance()

		sorted := make([]core.Transaction, len(snap.Transactions))
		copy(sorted, snap.Transactions)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Date.After(sorted[j].Date.Time)
		})
		if len(sorted) > 10 {
			sorted = sorted[:10]
		}
		resp.Recent = sorted

		return resp, nil
	})
}

type calendarResponse struct {
	Year   int                   `json:"year"`
	Month  int                   `json:"month"`
	ByDay  map[string]core.Stats `json:"byDay"`
	Totals core.Stats            `json:"totals"`
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	today := core.Today()
	year := queryInt(r, "year", today.Year())
	month := queryInt(r, "month", int(today.Month()))
	if month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "month must be between 1 and 12")
		return
	}

	key := "calendar:" + strconv.Itoa(year) + "-" + strconv.Itoa(month)
	s.writeCached(w, key, func() (any, error) {
		snap, err := s.ledger.View(r.Context())
		if err != nil {
			return nil, err
		}

		monthTxs := reports.FilterByWindow(snap.Transactions, reports.MonthWindow(year, month))
		return calendarResponse{
			Year:   year,
			Month:  month,
			ByDay:  reports.GroupByDay(monthTxs),
			Totals: reports.TotalsByType(monthTxs),
		}, nil
	})
}

type reportResponse struct {
	Window          reports.Window          `json:"window"`
	Summary         reports.Summary         `json:"summary"`
	ByCategory      []reports.CategorySlice `json:"byCategory"`
	ByMonth         map[string]core.Stats   `json:"byMonth"`
	MonthKeys       []string                `json:"monthKeys"`
	MonthlyVariance []reports.MonthVariance `json:"monthlyVariance"`
}

// handleReports serves either a named period (?period=month|quarter|
// semester|year) or a custom range (?start=YYYY-MM-DD&end=YYYY-MM-DD).
func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	window, err := resolveWindow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := "reports:" + window.Start.String() + ":" + window.End.String()
	s.writeCached(w, key, func() (any, error) {
		snap, err := s.ledger.View(r.Context())
		if err != nil {
			return nil, err
		}

		txs := reports.FilterByWindow(snap.Transactions, window)
		byMonth := reports.GroupByMonth(txs)

		return reportResponse{
			Window:          window,
			Summary:         reports.Statistics(txs, window),
			ByCategory:      reports.TopN(reports.GroupByCategory(txs), topCategoryCount),
			ByMonth:         byMonth,
			MonthKeys:       reports.SortedMonthKeys(byMonth),
			MonthlyVariance: reports.VarianceSeries(byMonth),
		}, nil
	})
}

func resolveWindow(r *http.Request) (reports.Window, error) {
	startRaw := r.URL.Query().Get("start")
	endRaw := r.URL.Query().Get("end")

	if startRaw != "" || endRaw != "" {
		start, err := core.ParseDate(startRaw)
		if err != nil {
			return reports.Window{}, err
		}
		end, err := core.ParseDate(endRaw)
		if err != nil {
			return reports.Window{}, err
		}
		return reports.CustomWindow(start, end)
	}

	period := reports.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = reports.PeriodMonth
	}
	return reports.ResolvePeriod(period, core.Today())
}

func queryInt(r *http.Request, name string, fallback int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
