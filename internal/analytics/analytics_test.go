package analytics

import (
	"testing"
	"time"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fixture() []domain.HistoricalRecord {
	return []domain.HistoricalRecord{
		{Date: day(2023, 12, 1), CustomerID: "C1", CustomerType: "TOP", ProductID: "P1", Category: "Drinks", ActualQty: 100, ForecastQty: 130, UnitPrice: 2, HasPrice: true},
		{Date: day(2024, 1, 1), CustomerID: "C1", CustomerType: "TOP", ProductID: "P1", Category: "Drinks", ActualQty: 100, ForecastQty: 120, UnitPrice: 4, HasPrice: true},
		{Date: day(2024, 1, 1), CustomerID: "C2", CustomerType: "RETAIL", ProductID: "P2", Category: "Snacks", ActualQty: 50, ForecastQty: 40},
		{Date: day(2024, 1, 15), CustomerID: "C2", CustomerType: "RETAIL", ProductID: "P2", Category: "Snacks", ActualQty: 0, ForecastQty: 10},
		{CustomerID: "C2", CustomerType: "RETAIL", ProductID: "P2", ActualQty: 10, ForecastQty: 10},
	}
}

func TestApply(t *testing.T) {
	records := fixture()

	assert.Len(t, Apply(records, domain.AnalysisFilter{}), 5)
	assert.Len(t, Apply(records, domain.AnalysisFilter{CustomerType: "TOP"}), 2)
	assert.Len(t, Apply(records, domain.AnalysisFilter{Category: "Snacks"}), 2)
	assert.Len(t, Apply(records, domain.AnalysisFilter{Years: []int{2024}}), 3)
	assert.Len(t, Apply(records, domain.AnalysisFilter{CustomerID: "C2", Years: []int{2024}}), 2)
	assert.Empty(t, Apply(records, domain.AnalysisFilter{Years: []int{2019}}))
}

func TestSummarize(t *testing.T) {
	kpi := Summarize(fixture())

	assert.Equal(t, 260.0, kpi.TotalActual)
	assert.Equal(t, 310.0, kpi.TotalForecast)
	assert.InDelta(t, 50.0/260*100, kpi.BiasPct, 1e-9)
	assert.False(t, kpi.BiasHealthy)
	assert.Equal(t, 3.0, kpi.AvgUnitPrice)
	assert.Equal(t, 780.0, kpi.AmountEstimate)
	assert.Equal(t, 5, kpi.RowCount)
	assert.Equal(t, 52.0, kpi.AvgOrder)
	assert.Equal(t, []int{2023, 2024}, kpi.Years)
}

func TestSummarizeEmpty(t *testing.T) {
	kpi := Summarize(nil)
	assert.Equal(t, 0.0, kpi.BiasPct)
	assert.Equal(t, 0.0, kpi.AvgOrder)
	assert.True(t, kpi.BiasHealthy)
}

func TestBiasPctZeroActual(t *testing.T) {
	assert.Equal(t, 0.0, BiasPct(0, 500))
	assert.InDelta(t, -20.0, BiasPct(100, 80), 1e-9)
}

func TestAccuracy(t *testing.T) {
	m := Accuracy(fixture())

	assert.InDelta(t, (30+20+10+10+0)/5.0, m.MAE, 1e-9)
	assert.InDelta(t, (30+20+20+0)/4.0, m.MAPE, 1e-9)
}

func TestSeries(t *testing.T) {
	records := fixture()

	daily := DailyTrend(records)
	require.Len(t, daily, 3)
	assert.Equal(t, "2023-12-01", daily[0].Period)
	assert.Equal(t, domain.SeriesPoint{Period: "2024-01-01", Actual: 150, Forecast: 160}, daily[1])

	monthly := MonthlyTotals(records)
	require.Len(t, monthly, 2)
	assert.Equal(t, domain.SeriesPoint{Period: "2024-01", Actual: 150, Forecast: 170}, monthly[1])

	yearly := YearlyTotals(records)
	require.Len(t, yearly, 2)
	assert.Equal(t, "2023", yearly[0].Period)

	errs := ErrorSeries(records)
	require.Len(t, errs, 3)
	assert.Equal(t, 10.0, errs[1].Error)
	assert.Equal(t, 10.0, errs[2].Error)
}

func TestCategoryBreakdown(t *testing.T) {
	cats := CategoryBreakdown(fixture())
	require.Len(t, cats, 3)

	assert.Equal(t, "Drinks", cats[0].Category)
	assert.InDelta(t, 200.0/260*100, cats[0].SharePct, 1e-9)
	assert.Equal(t, "Snacks", cats[1].Category)
	assert.Equal(t, "Uncategorized", cats[2].Category)
}

func TestOptions(t *testing.T) {
	opts := Options(fixture())

	assert.Equal(t, []string{"RETAIL", "TOP"}, opts.CustomerTypes)
	assert.Equal(t, []string{"Drinks", "Snacks"}, opts.Categories)
	assert.Equal(t, []string{"C1", "C2"}, opts.Customers)
	assert.Equal(t, []string{"P1", "P2"}, opts.Products)
	assert.Equal(t, []int{2023, 2024}, opts.Years)
}

func TestTopCustomers(t *testing.T) {
	top := TopCustomers(fixture(), 1)
	require.Len(t, top, 1)
	assert.Equal(t, CustomerCount{CustomerID: "C2", Count: 3}, top[0])

	assert.Len(t, TopCustomers(fixture(), 0), 2)
}

func TestBuildOverview(t *testing.T) {
	ov, err := BuildOverview(fixture(), domain.AnalysisFilter{CustomerType: "TOP"})
	require.NoError(t, err)

	assert.Equal(t, 200.0, ov.KPIs.TotalActual)
	assert.Len(t, ov.DailyTrend, 2)
	assert.Equal(t, domain.DiagnosisOverForecast, ov.Insight.Diagnosis)

	_, err = BuildOverview(fixture(), domain.AnalysisFilter{Category: "Frozen"})
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestBuildCustomerProfile(t *testing.T) {
	profile, err := BuildCustomerProfile(fixture(), "C1", []int{2024})
	require.NoError(t, err)

	assert.Equal(t, "TOP", profile.CustomerType)
	assert.Equal(t, 1, profile.KPIs.RowCount)
	assert.Equal(t, 1, profile.Bias.RecordCount)
	assert.InDelta(t, 0.2, profile.Bias.AverageBiasRate, 1e-9)
	assert.Len(t, profile.Yearly, 1)

	_, err = BuildCustomerProfile(fixture(), "C404", nil)
	assert.ErrorIs(t, err, ErrNoRecords)
}

func TestBuildInsight(t *testing.T) {
	over := BuildInsight(0.25, "TOP")
	assert.Equal(t, domain.DiagnosisOverForecast, over.Diagnosis)
	assert.Equal(t, 24, over.SuggestedDOI)
	assert.Contains(t, over.Strategy, "Quarterly")

	under := BuildInsight(-0.2, "RETAIL")
	assert.Equal(t, domain.DiagnosisUnderForecast, under.Diagnosis)
	assert.Zero(t, under.SuggestedDOI)
	assert.Contains(t, under.Strategy, "Poisson")

	mild := BuildInsight(0.12, "RETAIL")
	assert.Equal(t, domain.DiagnosisHealthy, mild.Diagnosis)
	assert.Equal(t, 26, mild.SuggestedDOI)

	flat := BuildInsight(0, "")
	assert.Equal(t, domain.DiagnosisHealthy, flat.Diagnosis)
	assert.Zero(t, flat.SuggestedDOI)
}
