package domain

import "time"

// BiasStatistics summarises how a forecast historically deviated from actuals.
type BiasStatistics struct {
	AverageBiasRate float64 `json:"average_bias_rate"`
	MAPE            float64 `json:"mape"`
	MAE             float64 `json:"mae"`
	StdError        float64 `json:"std_error"`
	RecordCount     int     `json:"record_count"`
}

type Reliability string

const (
	ReliabilityLow    Reliability = "low"
	ReliabilityMedium Reliability = "medium"
	ReliabilityHigh   Reliability = "high"
)

type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// DemandPrediction is a bias-corrected forecast.
type DemandPrediction struct {
	PredictedActual    float64            `json:"predicted_actual"`
	ConfidenceInterval ConfidenceInterval `json:"confidence_interval"`
	BiasRateUsed       float64            `json:"bias_rate_used"`
	MAPE               float64            `json:"mape"`
	MAE                float64            `json:"mae"`
	StdError           float64            `json:"std_error"`
	RecordCount        int                `json:"record_count"`
	SeasonalFactor     *float64           `json:"seasonal_factor"`
	SeasonalApplied    bool               `json:"seasonal_applied"`
	Reliability        Reliability        `json:"reliability"`
	Warning            string             `json:"warning,omitempty"`
}

// ForecastInput is one row of the bulk planning table.
type ForecastInput struct {
	Year         int     `json:"year"`
	Month        int     `json:"month"`
	CustomerID   string  `json:"customer_id"`
	ProductID    string  `json:"product_id"`
	UserForecast float64 `json:"user_forecast"`
}

// SimulationRow is the outcome for one ForecastInput.
type SimulationRow struct {
	Year            int         `json:"year"`
	Month           int         `json:"month"`
	CustomerID      string      `json:"customer_id"`
	ProductID       string      `json:"product_id"`
	UserForecast    float64     `json:"user_forecast"`
	PredictedActual float64     `json:"predicted_actual"`
	Correction      string      `json:"correction"`
	SafetyStock     float64     `json:"safety_stock"`
	ReorderPoint    float64     `json:"reorder_point"`
	MaxStock        float64     `json:"max_stock"`
	Reliability     Reliability `json:"reliability,omitempty"`
	Error           string      `json:"error,omitempty"`
}

// PeriodProductTotal groups predicted demand by month and product.
type PeriodProductTotal struct {
	Period     string  `json:"period"`
	CustomerID string  `json:"customer_id,omitempty"`
	ProductID  string  `json:"product_id"`
	Predicted  float64 `json:"predicted"`
	Forecast   float64 `json:"forecast"`
}

type SimulationResult struct {
	LeadTimeDays   float64              `json:"lead_time_days"`
	ServiceLevel   float64              `json:"service_level"`
	Rows           []SimulationRow      `json:"rows"`
	TotalPredicted float64              `json:"total_predicted"`
	FailedRows     int                  `json:"failed_rows"`
	ByProduct      []PeriodProductTotal `json:"by_product"`
	ByCustomer     []PeriodProductTotal `json:"by_customer_product"`
	RanAt          time.Time            `json:"ran_at"`
}
