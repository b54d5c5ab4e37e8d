package domain

// InventoryPolicy is the output of the policy calculator. Quantities are
// non-negative and rounded to two decimals.
type InventoryPolicy struct {
	SafetyStock      float64 `json:"safety_stock"`
	ReorderPoint     float64 `json:"reorder_point"`
	TargetStockLevel float64 `json:"target_stock_level"`
	LeadTimeDemand   float64 `json:"lead_time_demand"`
	ZScore           float64 `json:"z_score"`
}

// StockAssessment places a current stock level against a policy.
type StockAssessment struct {
	CurrentStock      float64     `json:"current_stock"`
	Status            StockStatus `json:"status"`
	DaysOfCover       float64     `json:"days_of_cover"`
	SuggestedOrderQty float64     `json:"suggested_order_qty"`
}

type SandboxPoint struct {
	ServiceLevel float64 `json:"service_level"`
	SafetyStock  float64 `json:"safety_stock"`
	HoldingCost  float64 `json:"holding_cost"`
}

// SandboxResult is the what-if view of one service level / lead time pair.
type SandboxResult struct {
	ServiceLevel        float64        `json:"service_level"`
	LeadTimeDays        float64        `json:"lead_time_days"`
	ZScore              float64        `json:"z_score"`
	SafetyStock         float64        `json:"safety_stock"`
	CycleStock          float64        `json:"cycle_stock"`
	HoldingCost         float64        `json:"holding_cost"`
	StockoutProbability float64        `json:"stockout_probability_pct"`
	Curve               []SandboxPoint `json:"curve"`
}

// DashboardItem is one customer row of the inventory dashboard.
type DashboardItem struct {
	CustomerID       string           `json:"customer_id"`
	RecordCount      int              `json:"record_count"`
	AvgMonthlyDemand float64          `json:"avg_monthly_demand"`
	MAE              float64          `json:"mae"`
	Policy           InventoryPolicy  `json:"policy"`
	Assessment       *StockAssessment `json:"assessment,omitempty"`
}

type InventoryDashboard struct {
	ItemCount    int             `json:"item_count"`
	LeadTimeDays float64         `json:"lead_time_days"`
	ServiceLevel float64         `json:"service_level"`
	Items        []DashboardItem `json:"items"`
}
