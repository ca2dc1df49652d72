package analytics

import "github.com/shopspring/decimal"

// InsightKind identifies one of the spending observations shown alongside
// the statistics.
type InsightKind string

const (
	InsightMoreThanYesterday InsightKind = "more_than_yesterday"
	InsightLessThanYesterday InsightKind = "less_than_yesterday"
	InsightAboveAverage      InsightKind = "above_average"
)

type Insight struct {
	Kind InsightKind
	// Delta is the absolute difference against yesterday. Zero for
	// InsightAboveAverage.
	Delta decimal.Decimal
}

var monthProjectionDays = decimal.NewFromInt(30)

// Insights lists the observations that hold for b, in a fixed order.
func Insights(b Bundle) []Insight {
	var out []Insight
	switch {
	case b.TotalToday.GreaterThan(b.TotalYesterday):
		out = append(out, Insight{Kind: InsightMoreThanYesterday, Delta: b.TotalToday.Sub(b.TotalYesterday)})
	case b.TotalToday.LessThan(b.TotalYesterday) && b.TotalYesterday.IsPositive():
		out = append(out, Insight{Kind: InsightLessThanYesterday, Delta: b.TotalYesterday.Sub(b.TotalToday)})
	}
	if b.TotalThisMonth.GreaterThan(b.AveragePerDay.Mul(monthProjectionDays)) {
		out = append(out, Insight{Kind: InsightAboveAverage, Delta: decimal.Zero})
	}
	return out
}
