package analytics

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
)

const (
	overForecastThreshold  = 0.15
	underForecastThreshold = -0.10
	doiReductionThreshold  = 0.10
	baselineDOI            = 30

	topCustomerType = "TOP"
)

// BuildInsight reads a bias rate (fraction, not percent) and the customer
// segment into a diagnosis and stocking recommendation.
func BuildInsight(biasRate float64, customerType string) domain.Insight {
	insight := domain.Insight{BiasRate: biasRate}

	switch {
	case biasRate > overForecastThreshold:
		insight.Diagnosis = domain.DiagnosisOverForecast
		insight.Summary = fmt.Sprintf("Forecasts run %.1f%% above actual demand. Orders amplified upstream risk a bullwhip effect and excess stock.", biasRate*100)
	case biasRate < underForecastThreshold:
		insight.Diagnosis = domain.DiagnosisUnderForecast
		insight.Summary = fmt.Sprintf("Forecasts run %.1f%% below actual demand. Expect stock-outs and lost sales without a larger buffer.", -biasRate*100)
	default:
		insight.Diagnosis = domain.DiagnosisHealthy
		insight.Summary = fmt.Sprintf("Forecast bias of %.1f%% is within the healthy band.", biasRate*100)
	}

	switch {
	case strings.EqualFold(customerType, topCustomerType):
		insight.Strategy = "Quarterly pulse: large, lumpy orders. Align replenishment with the customer's quarterly cycle and hold a pre-build before each peak."
	case customerType == "":
		insight.Strategy = "Mixed segments: review customer-level bias before changing stocking policy."
	default:
		insight.Strategy = "Long-tail demand behaves like a Poisson process. Pool risk across customers and keep buffers at the aggregate level."
	}

	if biasRate > doiReductionThreshold {
		insight.SuggestedDOI = int(baselineDOI / (1 + biasRate))
		insight.Recommendation = fmt.Sprintf("Reduce days of inventory from %d to %d to release working capital.", baselineDOI, insight.SuggestedDOI)
	} else {
		insight.Recommendation = "Protect supply with dynamic safety stock sized from the observed forecast error."
	}

	return insight
}
