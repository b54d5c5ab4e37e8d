package analytics

import (
	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/andresuchdata/supplychain-brain/internal/forecast"
)

// BuildOverview assembles the data analysis page for filter.
func BuildOverview(records []domain.HistoricalRecord, filter domain.AnalysisFilter) (domain.Overview, error) {
	subset := Apply(records, filter)
	if len(subset) == 0 {
		return domain.Overview{Filter: filter}, ErrNoRecords
	}

	kpis := Summarize(subset)
	return domain.Overview{
		Filter:     filter,
		KPIs:       kpis,
		DailyTrend: DailyTrend(subset),
		Monthly:    MonthlyTotals(subset),
		Categories: CategoryBreakdown(subset),
		Insight:    BuildInsight(kpis.BiasPct/100, filter.CustomerType),
	}, nil
}

// BuildCustomerProfile assembles the customer analysis page. An empty years
// slice selects every year.
func BuildCustomerProfile(records []domain.HistoricalRecord, customerID string, years []int) (domain.CustomerProfile, error) {
	profile := domain.CustomerProfile{CustomerID: customerID, Years: years}

	subset := Apply(records, domain.AnalysisFilter{CustomerID: customerID, Years: years})
	if len(subset) == 0 {
		return profile, ErrNoRecords
	}

	profile.CustomerType = dominantType(subset)
	profile.KPIs = Summarize(subset)
	profile.TimeSeries = DailyTrend(subset)
	profile.Monthly = MonthlyTotals(subset)
	profile.Yearly = YearlyTotals(subset)
	profile.Categories = CategoryBreakdown(subset)
	profile.Errors = ErrorSeries(subset)
	profile.Accuracy = Accuracy(subset)
	profile.Bias = forecast.ComputeBiasStatistics(subset)
	profile.Insight = BuildInsight(profile.KPIs.BiasPct/100, profile.CustomerType)

	return profile, nil
}

func dominantType(records []domain.HistoricalRecord) string {
	counts := map[string]int{}
	best, bestCount := "", 0
	for _, r := range records {
		counts[r.CustomerType]++
		c := counts[r.CustomerType]
		if c > bestCount || (c == bestCount && r.CustomerType < best) {
			best, bestCount = r.CustomerType, c
		}
	}
	return best
}
