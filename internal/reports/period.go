package reports

import (
	"fmt"

	"fluxoconta/internal/core"
)

// Period identifies a relative reporting window ending today.
type Period string

const (
	PeriodMonth    Period = "month"
	PeriodQuarter  Period = "quarter"
	PeriodSemester Period = "semester"
	PeriodYear     Period = "year"
)

// Window is an inclusive date range. Both endpoints belong to the range.
type Window struct {
	Start core.Date `json:"start"`
	End   core.Date `json:"end"`
}

// Contains reports whether d falls inside the window, endpoints included.
func (w Window) Contains(d core.Date) bool {
	return !d.Before(w.Start.Time) && !d.After(w.End.Time)
}

// Days is the window length in calendar days, endpoints included.
func (w Window) Days() int {
	return int(w.End.Sub(w.Start.Time).Hours()/24) + 1
}

// monthsBack maps each named period to how far the window reaches.
var monthsBack = map[Period]int{
	PeriodMonth:    1,
	PeriodQuarter:  3,
	PeriodSemester: 6,
	PeriodYear:     12,
}

// ResolvePeriod turns a named period into a concrete window ending at the
// reference date.
func ResolvePeriod(p Period, ref core.Date) (Window, error) {
	n, ok := monthsBack[p]
	if !ok {
		return Window{}, fmt.Errorf("unknown period %q", p)
	}
	return Window{Start: ref.AddMonths(-n), End: ref}, nil
}

// CustomWindow builds a window from explicit endpoints.
func CustomWindow(start, end core.Date) (Window, error) {
	if start.After(end.Time) {
		return Window{}, core.ErrInvalidRange
	}
	return Window{Start: start, End: end}, nil
}

// MonthWindow is the window covering one calendar month.
func MonthWindow(year, month int) Window {
	start := core.NewDate(year, month, 1)
	return Window{Start: start, End: start.AddMonths(1).AddDays(-1)}
}
