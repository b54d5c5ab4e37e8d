package service

import (
	"time"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
)

func rec(customer string, y int, m time.Month, actual, forecast float64) domain.HistoricalRecord {
	return domain.HistoricalRecord{
		Date:         time.Date(y, m, 1, 0, 0, 0, 0, time.UTC),
		CustomerID:   customer,
		CustomerType: "TOP",
		ProductID:    "P1",
		ActualQty:    actual,
		ForecastQty:  forecast,
	}
}

// fixtureDataset: C1 over-forecasts by 20% every month, C2 is perfectly forecast.
func fixtureDataset() *domain.Dataset {
	var records []domain.HistoricalRecord
	for m := time.January; m <= time.June; m++ {
		records = append(records, rec("C1", 2024, m, 100, 120))
	}
	records = append(records, rec("C2", 2024, time.January, 50, 50))
	return &domain.Dataset{
		Name:     "fixture.csv",
		Source:   "test",
		Schema:   domain.Schema{Columns: []string{"Date", "Customer_ID", "Actual_Qty", "Forecast_Qty"}},
		Records:  records,
		LoadedAt: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	}
}
