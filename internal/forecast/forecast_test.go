package forecast

import (
	"testing"
	"time"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(date string, actual, forecast float64) domain.HistoricalRecord {
	var d time.Time
	if date != "" {
		d, _ = time.Parse("2006-01-02", date)
	}
	return domain.HistoricalRecord{
		Date:         d,
		CustomerID:   "C1",
		CustomerType: "TOP",
		ActualQty:    actual,
		ForecastQty:  forecast,
	}
}

func overForecastHistory(n int) []domain.HistoricalRecord {
	history := make([]domain.HistoricalRecord, 0, n)
	start := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		actual := float64(100 + i*10)
		history = append(history, domain.HistoricalRecord{
			Date:        start.AddDate(0, i, 0),
			CustomerID:  "C1",
			ActualQty:   actual,
			ForecastQty: actual * 1.2,
		})
	}
	return history
}

func TestBiasRate(t *testing.T) {
	assert.InDelta(t, 0.5, BiasRate(rec("", 100, 150)), 1e-9)
	assert.InDelta(t, -0.25, BiasRate(rec("", 100, 75)), 1e-9)
	assert.Equal(t, 0.0, BiasRate(rec("", 0, 40)))
}

func TestComputeBiasStatisticsEmpty(t *testing.T) {
	assert.Equal(t, domain.BiasStatistics{}, ComputeBiasStatistics(nil))
}

func TestComputeBiasStatisticsRecordCount(t *testing.T) {
	history := overForecastHistory(7)
	assert.Equal(t, len(history), ComputeBiasStatistics(history).RecordCount)
}

func TestComputeBiasStatisticsPerfectForecast(t *testing.T) {
	history := []domain.HistoricalRecord{
		rec("2024-01-01", 10, 10),
		rec("2024-02-01", 20, 20),
		rec("2024-03-01", 0, 0),
	}
	stats := ComputeBiasStatistics(history)

	assert.Equal(t, 0.0, stats.AverageBiasRate)
	assert.Equal(t, 0.0, stats.MAE)
	assert.Equal(t, 0.0, stats.MAPE)
	assert.Equal(t, 0.0, stats.StdError)
}

func TestComputeBiasStatisticsValues(t *testing.T) {
	history := []domain.HistoricalRecord{
		rec("2024-01-01", 100, 120), // +0.2
		rec("2024-02-01", 100, 80),  // -0.2
		rec("2024-03-01", 0, 50),    // 0, excluded from MAPE
	}
	stats := ComputeBiasStatistics(history)

	assert.InDelta(t, 0.0, stats.AverageBiasRate, 1e-9)
	assert.InDelta(t, 20.0, stats.MAPE, 1e-9)
	assert.InDelta(t, 30.0, stats.MAE, 1e-9)
	assert.InDelta(t, 0.2, stats.StdError, 1e-9)
	assert.Equal(t, 3, stats.RecordCount)
}

func TestComputeBiasStatisticsSingleRowHasNoNaN(t *testing.T) {
	stats := ComputeBiasStatistics([]domain.HistoricalRecord{rec("2024-01-01", 0, 10)})

	assert.Equal(t, 0.0, stats.StdError)
	assert.Equal(t, 0.0, stats.MAPE)
	assert.InDelta(t, 10.0, stats.MAE, 1e-9)
	assert.Equal(t, 1, stats.RecordCount)
}

func TestSeasonalFactor(t *testing.T) {
	history := []domain.HistoricalRecord{
		rec("2023-03-01", 100, 140), // 0.4
		rec("2024-03-01", 100, 120), // 0.2
		rec("2024-04-01", 100, 100), // 0
		rec("2024-05-01", 100, 100), // 0
	}

	factor := SeasonalFactor(history, time.March)
	require.NotNil(t, factor)
	assert.InDelta(t, 0.3/0.15, *factor, 1e-9)

	assert.Nil(t, SeasonalFactor(history, time.December))
}

func TestSeasonalFactorZeroOverallBias(t *testing.T) {
	history := []domain.HistoricalRecord{
		rec("2024-03-01", 100, 120),
		rec("2024-04-01", 100, 80),
	}
	assert.Nil(t, SeasonalFactor(history, time.March))
}

func TestMonthBiasRateSkipsUndated(t *testing.T) {
	history := []domain.HistoricalRecord{
		rec("", 100, 300),
		rec("2024-06-10", 100, 110),
	}
	rate, ok := MonthBiasRate(history, time.June)
	require.True(t, ok)
	assert.InDelta(t, 0.1, rate, 1e-9)

	_, ok = MonthBiasRate(history, time.January)
	assert.False(t, ok)
}

func TestPredictActualDemandEmptyHistory(t *testing.T) {
	p := PredictActualDemand(nil, PredictParams{TargetMonth: time.May, UserForecast: 500, UseSeasonal: true})

	assert.Equal(t, 500.0, p.PredictedActual)
	assert.InDelta(t, 400, p.ConfidenceInterval.Lower, 1e-9)
	assert.InDelta(t, 600, p.ConfidenceInterval.Upper, 1e-9)
	assert.Equal(t, domain.ReliabilityLow, p.Reliability)
	assert.Equal(t, WarningNoHistory, p.Warning)
	assert.Equal(t, 0, p.RecordCount)
}

func TestPredictActualDemandConsistentOverForecast(t *testing.T) {
	history := overForecastHistory(12)

	stats := ComputeBiasStatistics(history)
	assert.InDelta(t, 0.2, stats.AverageBiasRate, 1e-9)

	p := PredictActualDemand(history, PredictParams{UserForecast: 1200})
	assert.InDelta(t, 960, p.PredictedActual, 1e-6)
	assert.Equal(t, domain.ReliabilityHigh, p.Reliability)
	assert.Empty(t, p.Warning)
	// zero spread in bias rates collapses the interval
	assert.InDelta(t, p.PredictedActual, p.ConfidenceInterval.Lower, 1e-6)
	assert.InDelta(t, p.PredictedActual, p.ConfidenceInterval.Upper, 1e-6)
}

func TestPredictActualDemandSeasonalOverride(t *testing.T) {
	history := []domain.HistoricalRecord{
		rec("2023-12-01", 100, 150), // 0.5
		rec("2024-01-01", 100, 100),
		rec("2024-02-01", 100, 100),
		rec("2024-03-01", 100, 100),
		rec("2024-12-01", 100, 150), // 0.5
	}

	seasonal := PredictActualDemand(history, PredictParams{TargetMonth: time.December, UserForecast: 1000, UseSeasonal: true})
	assert.True(t, seasonal.SeasonalApplied)
	assert.InDelta(t, 0.5, seasonal.BiasRateUsed, 1e-9)
	assert.InDelta(t, 500, seasonal.PredictedActual, 1e-6)
	require.NotNil(t, seasonal.SeasonalFactor)
	assert.InDelta(t, 2.5, *seasonal.SeasonalFactor, 1e-9)
	assert.Equal(t, domain.ReliabilityMedium, seasonal.Reliability)

	flat := PredictActualDemand(history, PredictParams{TargetMonth: time.December, UserForecast: 1000})
	assert.False(t, flat.SeasonalApplied)
	assert.InDelta(t, 0.2, flat.BiasRateUsed, 1e-9)
	assert.InDelta(t, 800, flat.PredictedActual, 1e-6)

	noMonth := PredictActualDemand(history, PredictParams{TargetMonth: time.July, UserForecast: 1000, UseSeasonal: true})
	assert.False(t, noMonth.SeasonalApplied)
	assert.InDelta(t, 0.2, noMonth.BiasRateUsed, 1e-9)
	assert.Nil(t, noMonth.SeasonalFactor)
}

func TestPredictActualDemandNeverNegative(t *testing.T) {
	history := []domain.HistoricalRecord{
		rec("2024-01-01", 10, 50), // 4.0
		rec("2024-02-01", 10, 30), // 2.0
	}
	p := PredictActualDemand(history, PredictParams{UserForecast: 100})

	assert.Equal(t, 0.0, p.PredictedActual)
	assert.Equal(t, 0.0, p.ConfidenceInterval.Lower)
	assert.GreaterOrEqual(t, p.ConfidenceInterval.Upper, 0.0)
}

func TestConfidenceInterval(t *testing.T) {
	ci := ConfidenceInterval(100, 0.1, 0.95)
	assert.InDelta(t, 100-19.6, ci.Lower, 1e-9)
	assert.InDelta(t, 100+19.6, ci.Upper, 1e-9)

	ci = ConfidenceInterval(100, 1, 0.99)
	assert.Equal(t, 0.0, ci.Lower)
	assert.InDelta(t, 358, ci.Upper, 1e-9)
}

func TestZForConfidence(t *testing.T) {
	assert.Equal(t, 1.96, ZForConfidence(0.95))
	assert.Equal(t, 2.58, ZForConfidence(0.99))
	assert.Equal(t, 1.645, ZForConfidence(0.90))
	assert.Equal(t, 1.645, ZForConfidence(0.5))
}

func TestReliabilityFor(t *testing.T) {
	tests := []struct {
		count int
		want  domain.Reliability
	}{
		{0, domain.ReliabilityLow},
		{4, domain.ReliabilityLow},
		{5, domain.ReliabilityMedium},
		{9, domain.ReliabilityMedium},
		{10, domain.ReliabilityHigh},
		{250, domain.ReliabilityHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReliabilityFor(tt.count), "count=%d", tt.count)
	}
}
