// Package forecast estimates how a customer's forecasts historically deviate
// from actual demand and corrects new forecasts accordingly.
package forecast

import (
	"math"
	"time"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"gonum.org/v1/gonum/stat"
)

// BiasRate is (forecast - actual) / actual, or 0 when actual is 0.
func BiasRate(r domain.HistoricalRecord) float64 {
	if r.ActualQty == 0 {
		return 0
	}
	return (r.ForecastQty - r.ActualQty) / r.ActualQty
}

func biasRates(history []domain.HistoricalRecord) []float64 {
	rates := make([]float64, len(history))
	for i, r := range history {
		rates[i] = BiasRate(r)
	}
	return rates
}

// ComputeBiasStatistics summarises the forecast error of history. An empty
// history yields all zeros; any NaN is reported as 0.
func ComputeBiasStatistics(history []domain.HistoricalRecord) domain.BiasStatistics {
	if len(history) == 0 {
		return domain.BiasStatistics{}
	}

	rates := biasRates(history)

	var (
		absErrSum float64
		apeSum    float64
		apeCount  int
	)
	for i, r := range history {
		absErrSum += math.Abs(r.ForecastQty - r.ActualQty)
		if r.ActualQty != 0 {
			apeSum += math.Abs(rates[i]) * 100
			apeCount++
		}
	}

	var mape float64
	if apeCount > 0 {
		mape = apeSum / float64(apeCount)
	}

	var stdErr float64
	if len(rates) > 1 {
		stdErr = stat.StdDev(rates, nil)
	}

	return domain.BiasStatistics{
		AverageBiasRate: finite(stat.Mean(rates, nil)),
		MAPE:            finite(mape),
		MAE:             finite(absErrSum / float64(len(history))),
		StdError:        finite(stdErr),
		RecordCount:     len(history),
	}
}

// MonthBiasRate is the mean bias rate of dated records falling in month,
// across all years. ok is false when no record matches.
func MonthBiasRate(history []domain.HistoricalRecord, month time.Month) (rate float64, ok bool) {
	var rates []float64
	for _, r := range history {
		if r.Dated() && r.Date.Month() == month {
			rates = append(rates, BiasRate(r))
		}
	}
	if len(rates) == 0 {
		return 0, false
	}
	return stat.Mean(rates, nil), true
}

// SeasonalFactor is the month bias rate divided by the overall bias rate.
// It returns nil when the month has no records or the overall rate is zero.
func SeasonalFactor(history []domain.HistoricalRecord, month time.Month) *float64 {
	monthRate, ok := MonthBiasRate(history, month)
	if !ok {
		return nil
	}

	overall := ComputeBiasStatistics(history).AverageBiasRate
	if overall == 0 {
		return nil
	}

	factor := monthRate / overall
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		return nil
	}
	return &factor
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
