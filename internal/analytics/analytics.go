// Package analytics derives spending statistics from a ledger snapshot.
//
// Compute is a pure function of the snapshot and the evaluation time: it does
// no I/O and holds no state, so it is safe to call concurrently.
package analytics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"dailyspend/internal/core"
)

const (
	// TrendDays is the length of the daily trend series.
	TrendDays = 30
	// TopN caps the ranked category list.
	TopN = 5
)

type (
	CategoryTotal struct {
		Category string
		Total    decimal.Decimal
	}

	DailyPoint struct {
		Date   core.Date
		Amount decimal.Decimal
	}

	// AllTime summarises the whole ledger regardless of date.
	AllTime struct {
		Count          int
		Total          decimal.Decimal
		CategoriesUsed int
	}

	Bundle struct {
		// Today is the calendar date the bundle was computed for.
		Today          core.Date
		TotalThisMonth decimal.Decimal
		TotalToday     decimal.Decimal
		TotalYesterday decimal.Decimal
		AveragePerDay  decimal.Decimal
		// Breakdown holds one entry per category with at least one expense,
		// in order of first appearance in the expense sequence.
		Breakdown      []CategoryTotal
		TopCategories  []CategoryTotal
		Trend          []DailyPoint // oldest first, always TrendDays long
		CountThisMonth int
		AllTime        AllTime
	}
)

// Compute builds the analytics bundle for s as seen at now. Day and month
// windows use the calendar fields of now in its own location.
func Compute(s core.Snapshot, now time.Time) Bundle {
	today := core.DateOf(now)
	yesterday := today.AddDays(-1)
	first := today.AddDays(1 - TrendDays)

	b := Bundle{
		Today:          today,
		TotalThisMonth: decimal.Zero,
		TotalToday:     decimal.Zero,
		TotalYesterday: decimal.Zero,
		AveragePerDay:  decimal.Zero,
		Breakdown:      []CategoryTotal{},
		TopCategories:  []CategoryTotal{},
		Trend:          make([]DailyPoint, TrendDays),
		AllTime:        AllTime{Total: decimal.Zero},
	}
	for i := range b.Trend {
		b.Trend[i] = DailyPoint{Date: first.AddDays(i), Amount: decimal.Zero}
	}

	index := make(map[string]int)
	for _, e := range s.Expenses {
		switch {
		case e.Date.Equal(today.Time):
			b.TotalToday = b.TotalToday.Add(e.Amount)
		case e.Date.Equal(yesterday.Time):
			b.TotalYesterday = b.TotalYesterday.Add(e.Amount)
		}
		if e.Date.SameMonth(today) {
			b.TotalThisMonth = b.TotalThisMonth.Add(e.Amount)
			b.CountThisMonth++
		}
		if n, ok := trendIndex(first, e.Date); ok {
			b.Trend[n].Amount = b.Trend[n].Amount.Add(e.Amount)
		}

		i, seen := index[e.Category]
		if !seen {
			i = len(b.Breakdown)
			index[e.Category] = i
			b.Breakdown = append(b.Breakdown, CategoryTotal{Category: e.Category, Total: decimal.Zero})
		}
		b.Breakdown[i].Total = b.Breakdown[i].Total.Add(e.Amount)

		b.AllTime.Count++
		b.AllTime.Total = b.AllTime.Total.Add(e.Amount)
	}
	b.AllTime.CategoriesUsed = len(b.Breakdown)

	// Day of month is always >= 1.
	b.AveragePerDay = b.TotalThisMonth.Div(decimal.NewFromInt(int64(today.Day())))
	b.TopCategories = topCategories(b.Breakdown, TopN)
	return b
}

// trendIndex returns the position of d in the series starting at first.
// Dates are midnight UTC, so whole-day division is exact.
func trendIndex(first, d core.Date) (int, bool) {
	if d.Before(first.Time) {
		return 0, false
	}
	n := int(d.Sub(first.Time) / (24 * time.Hour))
	if n >= TrendDays {
		return 0, false
	}
	return n, true
}

func topCategories(breakdown []CategoryTotal, n int) []CategoryTotal {
	ranked := make([]CategoryTotal, len(breakdown))
	copy(ranked, breakdown)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total.GreaterThan(ranked[j].Total)
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// CategoryTotal returns the breakdown entry for category.
func (b Bundle) CategoryTotal(category string) (decimal.Decimal, bool) {
	for _, c := range b.Breakdown {
		if c.Category == category {
			return c.Total, true
		}
	}
	return decimal.Zero, false
}

// LastDays returns the newest n points of the trend series.
func (b Bundle) LastDays(n int) []DailyPoint {
	if n >= len(b.Trend) {
		return b.Trend
	}
	if n <= 0 {
		return nil
	}
	return b.Trend[len(b.Trend)-n:]
}
