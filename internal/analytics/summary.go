package analytics

import (
	"math"
	"sort"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
)

// healthyBiasPct is the absolute bias below which a forecast is considered on target.
const healthyBiasPct = 10

// BiasPct is (forecast - actual) / actual * 100, or 0 when actual is 0.
func BiasPct(actual, forecast float64) float64 {
	if actual == 0 {
		return 0
	}
	return (forecast - actual) / actual * 100
}

// Summarize computes the KPI panel for records.
func Summarize(records []domain.HistoricalRecord) domain.KPISummary {
	var (
		kpi        domain.KPISummary
		priceSum   float64
		priceCount int
	)
	for _, r := range records {
		kpi.TotalActual += r.ActualQty
		kpi.TotalForecast += r.ForecastQty
		if r.HasPrice {
			priceSum += r.UnitPrice
			priceCount++
		}
	}

	kpi.RowCount = len(records)
	kpi.BiasPct = BiasPct(kpi.TotalActual, kpi.TotalForecast)
	kpi.BiasHealthy = math.Abs(kpi.BiasPct) < healthyBiasPct
	if priceCount > 0 {
		kpi.AvgUnitPrice = priceSum / float64(priceCount)
	}
	kpi.AmountEstimate = kpi.TotalActual * kpi.AvgUnitPrice
	if kpi.RowCount > 0 {
		kpi.AvgOrder = kpi.TotalActual / float64(kpi.RowCount)
	}
	kpi.Years = Years(records)

	return kpi
}

// Accuracy is MAE and MAPE over rows plus the aggregate bias percentage.
// MAPE ignores rows whose actual is zero.
func Accuracy(records []domain.HistoricalRecord) domain.AccuracyMetrics {
	if len(records) == 0 {
		return domain.AccuracyMetrics{}
	}

	var (
		absSum, apeSum   float64
		actual, forecast float64
		apeCount         int
	)
	for _, r := range records {
		diff := r.ForecastQty - r.ActualQty
		absSum += math.Abs(diff)
		if r.ActualQty != 0 {
			apeSum += math.Abs(diff/r.ActualQty) * 100
			apeCount++
		}
		actual += r.ActualQty
		forecast += r.ForecastQty
	}

	metrics := domain.AccuracyMetrics{
		MAE:     absSum / float64(len(records)),
		BiasPct: BiasPct(actual, forecast),
	}
	if apeCount > 0 {
		metrics.MAPE = apeSum / float64(apeCount)
	}
	return metrics
}

// CategoryBreakdown totals records per category with its share of actual demand.
func CategoryBreakdown(records []domain.HistoricalRecord) []domain.CategoryShare {
	byCategory := map[string]*domain.CategoryShare{}
	var total float64
	for _, r := range records {
		name := r.Category
		if name == "" {
			name = "Uncategorized"
		}
		share, ok := byCategory[name]
		if !ok {
			share = &domain.CategoryShare{Category: name}
			byCategory[name] = share
		}
		share.Actual += r.ActualQty
		share.Forecast += r.ForecastQty
		total += r.ActualQty
	}

	out := make([]domain.CategoryShare, 0, len(byCategory))
	for _, share := range byCategory {
		if total > 0 {
			share.SharePct = share.Actual / total * 100
		}
		out = append(out, *share)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Actual != out[j].Actual {
			return out[i].Actual > out[j].Actual
		}
		return out[i].Category < out[j].Category
	})
	return out
}
