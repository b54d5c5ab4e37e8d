// Package inventory sizes safety stock, reorder point and target stock under a
// normal-demand approximation.
package inventory

import (
	"errors"
	"fmt"
	"math"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrInvalidServiceLevel = errors.New("service level must be strictly between 0 and 1")
	ErrInvalidLeadTime     = errors.New("lead time and review period must not be negative")
	ErrInvalidDaysInMonth  = errors.New("days in month must be positive")
)

const (
	DefaultDaysInMonth = 30

	// maeToStdDev inflates a mean absolute error into a standard deviation proxy.
	maeToStdDev = 1.25
)

// PolicyParams are the inputs of Policy. All quantities are per day.
type PolicyParams struct {
	DailyDemand      float64 `json:"daily_demand"`
	DailyStdDev      float64 `json:"daily_std_dev"`
	LeadTimeDays     float64 `json:"lead_time_days"`
	ServiceLevel     float64 `json:"service_level"`
	ReviewPeriodDays float64 `json:"review_period_days"`
}

// MonthlyParams are the inputs of MonthlyStrategy.
type MonthlyParams struct {
	MonthlyDemand float64 `json:"monthly_demand"`
	MAE           float64 `json:"mae"`
	LeadTimeDays  float64 `json:"lead_time_days"`
	ServiceLevel  float64 `json:"service_level"`
	DaysInMonth   float64 `json:"days_in_month"`
}

// ZScore returns the inverse standard normal CDF of serviceLevel.
func ZScore(serviceLevel float64) (float64, error) {
	if !(serviceLevel > 0 && serviceLevel < 1) {
		return 0, fmt.Errorf("%w: got %v", ErrInvalidServiceLevel, serviceLevel)
	}
	return distuv.UnitNormal.Quantile(serviceLevel), nil
}

// Policy computes
//
//	SS  = z * dailyStdDev * sqrt(leadTime)
//	ROP = dailyDemand * leadTime + SS
//	TSL = dailyDemand * (leadTime + reviewPeriod) + SS
//
// Outputs are floored at zero and rounded to two decimals.
func Policy(p PolicyParams) (domain.InventoryPolicy, error) {
	if p.LeadTimeDays < 0 || p.ReviewPeriodDays < 0 {
		return domain.InventoryPolicy{}, ErrInvalidLeadTime
	}

	z, err := ZScore(p.ServiceLevel)
	if err != nil {
		return domain.InventoryPolicy{}, err
	}

	safetyStock := z * p.DailyStdDev * math.Sqrt(p.LeadTimeDays)
	leadTimeDemand := p.DailyDemand * p.LeadTimeDays
	reorderPoint := leadTimeDemand + safetyStock
	target := p.DailyDemand*(p.LeadTimeDays+p.ReviewPeriodDays) + safetyStock

	return domain.InventoryPolicy{
		SafetyStock:      nonNegative(safetyStock),
		ReorderPoint:     nonNegative(reorderPoint),
		TargetStockLevel: nonNegative(target),
		LeadTimeDemand:   nonNegative(leadTimeDemand),
		ZScore:           Round2(z),
	}, nil
}

// MonthlyStrategy adapts a monthly demand and its MAE to Policy, using the
// month as review period.
func MonthlyStrategy(p MonthlyParams) (domain.InventoryPolicy, error) {
	days := p.DaysInMonth
	if days == 0 {
		days = DefaultDaysInMonth
	}
	if days < 0 {
		return domain.InventoryPolicy{}, ErrInvalidDaysInMonth
	}

	monthlyStdDev := p.MAE * maeToStdDev

	return Policy(PolicyParams{
		DailyDemand:      p.MonthlyDemand / days,
		DailyStdDev:      monthlyStdDev / math.Sqrt(days),
		LeadTimeDays:     p.LeadTimeDays,
		ServiceLevel:     p.ServiceLevel,
		ReviewPeriodDays: days,
	})
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func nonNegative(v float64) float64 {
	return math.Max(0, Round2(v))
}
