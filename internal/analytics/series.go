package analytics

import (
	"sort"
	"strconv"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

type bucket struct {
	actual, forecast float64
}

// group sums dated records under the key produced by keyFn and returns the
// points sorted by key. Undated records are skipped.
func group(records []domain.HistoricalRecord, keyFn func(domain.HistoricalRecord) string) []domain.SeriesPoint {
	buckets := map[string]*bucket{}
	for _, r := range records {
		if !r.Dated() {
			continue
		}
		key := keyFn(r)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		b.actual += r.ActualQty
		b.forecast += r.ForecastQty
	}

	points := make([]domain.SeriesPoint, 0, len(buckets))
	for key, b := range buckets {
		points = append(points, domain.SeriesPoint{Period: key, Actual: b.actual, Forecast: b.forecast})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Period < points[j].Period })
	return points
}

// DailyTrend sums actual and forecast per day.
func DailyTrend(records []domain.HistoricalRecord) []domain.SeriesPoint {
	return group(records, func(r domain.HistoricalRecord) string { return r.Date.Format(dayLayout) })
}

// MonthlyTotals sums actual and forecast per YYYY-MM.
func MonthlyTotals(records []domain.HistoricalRecord) []domain.SeriesPoint {
	return group(records, func(r domain.HistoricalRecord) string { return r.Date.Format(monthLayout) })
}

// YearlyTotals sums actual and forecast per year.
func YearlyTotals(records []domain.HistoricalRecord) []domain.SeriesPoint {
	return group(records, func(r domain.HistoricalRecord) string { return strconv.Itoa(r.Date.Year()) })
}

// ErrorSeries is forecast minus actual per day.
func ErrorSeries(records []domain.HistoricalRecord) []domain.ErrorPoint {
	daily := DailyTrend(records)
	out := make([]domain.ErrorPoint, len(daily))
	for i, p := range daily {
		out[i] = domain.ErrorPoint{Date: p.Period, Error: p.Forecast - p.Actual}
	}
	return out
}
