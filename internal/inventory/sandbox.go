package inventory

import (
	"math"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
)

const (
	DefaultSandboxMonthlyDemand = 5000
	DefaultSandboxMonthlyStdDev = 1000

	curveMinServiceLevel = 0.80
	curveMaxServiceLevel = 0.99
	curvePoints          = 20
)

// SandboxParams drive the service-level trade-off explorer.
type SandboxParams struct {
	ServiceLevel  float64 `json:"service_level"`
	LeadTimeDays  float64 `json:"lead_time_days"`
	UnitCost      float64 `json:"unit_cost"`
	MonthlyDemand float64 `json:"monthly_demand"`
	MonthlyStdDev float64 `json:"monthly_std_dev"`
}

// Sandbox shows what a service level costs in stock held. Safety stock uses
// the monthly deviation scaled to the lead time, cycle stock is half a month
// of demand.
func Sandbox(p SandboxParams) (domain.SandboxResult, error) {
	if p.LeadTimeDays < 0 {
		return domain.SandboxResult{}, ErrInvalidLeadTime
	}
	if p.MonthlyDemand == 0 {
		p.MonthlyDemand = DefaultSandboxMonthlyDemand
	}
	if p.MonthlyStdDev == 0 {
		p.MonthlyStdDev = DefaultSandboxMonthlyStdDev
	}

	z, err := ZScore(p.ServiceLevel)
	if err != nil {
		return domain.SandboxResult{}, err
	}

	cycle := p.MonthlyDemand / 2
	ss := sandboxSafetyStock(z, p)

	curve := make([]domain.SandboxPoint, 0, curvePoints)
	step := (curveMaxServiceLevel - curveMinServiceLevel) / float64(curvePoints-1)
	for i := 0; i < curvePoints; i++ {
		level := curveMinServiceLevel + float64(i)*step
		zi, err := ZScore(level)
		if err != nil {
			return domain.SandboxResult{}, err
		}
		ssi := sandboxSafetyStock(zi, p)
		curve = append(curve, domain.SandboxPoint{
			ServiceLevel: Round2(level),
			SafetyStock:  nonNegative(ssi),
			HoldingCost:  nonNegative((ssi + cycle) * p.UnitCost),
		})
	}

	return domain.SandboxResult{
		ServiceLevel:        p.ServiceLevel,
		LeadTimeDays:        p.LeadTimeDays,
		ZScore:              Round2(z),
		SafetyStock:         nonNegative(ss),
		CycleStock:          nonNegative(cycle),
		HoldingCost:         nonNegative((ss + cycle) * p.UnitCost),
		StockoutProbability: Round2((1 - p.ServiceLevel) * 100),
		Curve:               curve,
	}, nil
}

func sandboxSafetyStock(z float64, p SandboxParams) float64 {
	return math.Max(0, z*p.MonthlyStdDev*math.Sqrt(p.LeadTimeDays/DefaultDaysInMonth))
}
