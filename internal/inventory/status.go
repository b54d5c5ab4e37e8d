package inventory

import (
	"math"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
)

// criticalRatio marks stock below this share of the reorder point as critical.
const criticalRatio = 0.8

// Assess classifies currentStock against policy and derives days of cover and
// a suggested order quantity that tops stock back up to the target level.
func Assess(policy domain.InventoryPolicy, dailyDemand, currentStock float64) domain.StockAssessment {
	assessment := domain.StockAssessment{
		CurrentStock: currentStock,
		Status:       classify(policy, currentStock),
	}

	// 1. Current days of cover
	if dailyDemand > 0 {
		assessment.DaysOfCover = Round2(currentStock / dailyDemand)
	}

	// 2. Order up to target once stock is at or below the reorder point
	if currentStock <= policy.ReorderPoint {
		assessment.SuggestedOrderQty = math.Ceil(math.Max(0, policy.TargetStockLevel-currentStock))
	}

	return assessment
}

func classify(policy domain.InventoryPolicy, stock float64) domain.StockStatus {
	switch {
	case stock < criticalRatio*policy.ReorderPoint:
		return domain.StockCritical
	case stock < policy.ReorderPoint:
		return domain.StockReorder
	case policy.TargetStockLevel > 0 && stock > policy.TargetStockLevel:
		return domain.StockOverstock
	default:
		return domain.StockHealthy
	}
}
