package domain

import "strings"

type Page string

const (
	PageHome              Page = "Home"
	PageDataAnalysis      Page = "Data Analysis"
	PageCustomerAnalysis  Page = "Customer Analysis"
	PageInventoryStrategy Page = "Inventory Strategy"
)

var pageCodes = map[string]Page{
	"home":               PageHome,
	"data analysis":      PageDataAnalysis,
	"data_analysis":      PageDataAnalysis,
	"customer analysis":  PageCustomerAnalysis,
	"customer_analysis":  PageCustomerAnalysis,
	"inventory strategy": PageInventoryStrategy,
	"inventory_strategy": PageInventoryStrategy,
}

// ParsePage returns the page for a label (case-insensitive, spaces or underscores).
func ParsePage(label string) (Page, bool) {
	page, ok := pageCodes[strings.ToLower(strings.TrimSpace(label))]

	return page, ok
}

// RequiresData reports whether the page can only render with a loaded dataset.
func (p Page) RequiresData() bool {
	return p != PageHome
}

type InventoryView string

const (
	InventoryViewDashboard  InventoryView = "dashboard"
	InventoryViewPrediction InventoryView = "prediction"
)

// ParseInventoryView accepts "dashboard" or "prediction".
func ParseInventoryView(label string) (InventoryView, bool) {
	switch InventoryView(strings.ToLower(strings.TrimSpace(label))) {
	case InventoryViewDashboard:
		return InventoryViewDashboard, true
	case InventoryViewPrediction:
		return InventoryViewPrediction, true
	}

	return "", false
}

type StockStatus string

const (
	StockCritical  StockStatus = "critical"
	StockReorder   StockStatus = "reorder"
	StockHealthy   StockStatus = "healthy"
	StockOverstock StockStatus = "overstock"
)

var stockStatusLabels = map[StockStatus]string{
	StockCritical:  "Critical",
	StockReorder:   "Reorder",
	StockHealthy:   "Normal",
	StockOverstock: "Overstock",
}

// Label returns a human-readable label for a stock status.
func (s StockStatus) Label() string {
	if label, ok := stockStatusLabels[s]; ok {
		return label
	}

	return "Unknown"
}
