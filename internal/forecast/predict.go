package forecast

import (
	"math"
	"time"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
)

// WarningNoHistory is set on predictions made without any history.
const WarningNoHistory = "no history"

// DefaultConfidenceLevel applies when PredictParams leaves ConfidenceLevel unset.
const DefaultConfidenceLevel = 0.95

const (
	noHistoryLowerFactor = 0.8
	noHistoryUpperFactor = 1.2

	mediumReliabilityMin = 5
	highReliabilityMin   = 10
)

// PredictParams describes a single forecast to correct.
type PredictParams struct {
	// TargetMonth is the calendar month of the forecast; zero disables seasonality.
	TargetMonth     time.Month
	UserForecast    float64
	UseSeasonal     bool
	ConfidenceLevel float64
}

// PredictActualDemand corrects UserForecast by the historical bias of history.
//
// With UseSeasonal set and at least one record in TargetMonth, the month's own
// mean bias rate replaces the overall rate. The seasonal factor is reported
// but does not scale the correction.
func PredictActualDemand(history []domain.HistoricalRecord, p PredictParams) domain.DemandPrediction {
	if len(history) == 0 {
		return domain.DemandPrediction{
			PredictedActual: p.UserForecast,
			ConfidenceInterval: domain.ConfidenceInterval{
				Lower: p.UserForecast * noHistoryLowerFactor,
				Upper: p.UserForecast * noHistoryUpperFactor,
			},
			Reliability: domain.ReliabilityLow,
			Warning:     WarningNoHistory,
		}
	}

	stats := ComputeBiasStatistics(history)
	bias := stats.AverageBiasRate

	var (
		factor  *float64
		applied bool
	)
	if p.TargetMonth >= time.January && p.TargetMonth <= time.December {
		factor = SeasonalFactor(history, p.TargetMonth)
		if p.UseSeasonal {
			if monthRate, ok := MonthBiasRate(history, p.TargetMonth); ok && !math.IsNaN(monthRate) {
				bias = monthRate
				applied = true
			}
		}
	}

	predicted := math.Max(0, p.UserForecast*(1-bias))

	level := p.ConfidenceLevel
	if level == 0 {
		level = DefaultConfidenceLevel
	}

	return domain.DemandPrediction{
		PredictedActual:    predicted,
		ConfidenceInterval: ConfidenceInterval(predicted, stats.StdError, level),
		BiasRateUsed:       bias,
		MAPE:               stats.MAPE,
		MAE:                stats.MAE,
		StdError:           stats.StdError,
		RecordCount:        stats.RecordCount,
		SeasonalFactor:     factor,
		SeasonalApplied:    applied,
		Reliability:        ReliabilityFor(stats.RecordCount),
	}
}

// ConfidenceInterval spreads predicted by predicted*stdErr*z on each side,
// clamping the lower bound at zero.
func ConfidenceInterval(predicted, stdErr, level float64) domain.ConfidenceInterval {
	margin := predicted * stdErr * ZForConfidence(level)
	return domain.ConfidenceInterval{
		Lower: math.Max(0, predicted-margin),
		Upper: predicted + margin,
	}
}

// ZForConfidence maps the supported confidence levels to a z multiplier.
// Anything other than 0.95 or 0.99 gets the 90% value.
func ZForConfidence(level float64) float64 {
	switch {
	case nearly(level, 0.95):
		return 1.96
	case nearly(level, 0.99):
		return 2.58
	default:
		return 1.645
	}
}

// ReliabilityFor grades a prediction by how many records back it.
func ReliabilityFor(count int) domain.Reliability {
	switch {
	case count >= highReliabilityMin:
		return domain.ReliabilityHigh
	case count >= mediumReliabilityMin:
		return domain.ReliabilityMedium
	default:
		return domain.ReliabilityLow
	}
}

func nearly(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
