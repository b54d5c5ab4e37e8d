package domain

// AnalysisFilter narrows a dataset before aggregation. Empty fields match all.
type AnalysisFilter struct {
	CustomerType string `json:"customer_type,omitempty"`
	Category     string `json:"category,omitempty"`
	CustomerID   string `json:"customer_id,omitempty"`
	Years        []int  `json:"years,omitempty"`
}

// KPISummary holds the headline numbers of an analysis page.
type KPISummary struct {
	TotalActual    float64 `json:"total_actual"`
	TotalForecast  float64 `json:"total_forecast"`
	BiasPct        float64 `json:"bias_pct"`
	BiasHealthy    bool    `json:"bias_healthy"`
	AvgUnitPrice   float64 `json:"avg_unit_price"`
	AmountEstimate float64 `json:"amount_estimate"`
	RowCount       int     `json:"row_count"`
	AvgOrder       float64 `json:"avg_order"`
	Years          []int   `json:"years"`
}

// SeriesPoint is an actual/forecast pair for one period label.
type SeriesPoint struct {
	Period   string  `json:"period"`
	Actual   float64 `json:"actual"`
	Forecast float64 `json:"forecast"`
}

type CategoryShare struct {
	Category string  `json:"category"`
	Actual   float64 `json:"actual"`
	Forecast float64 `json:"forecast"`
	SharePct float64 `json:"share_pct"`
}

type ErrorPoint struct {
	Date  string  `json:"date"`
	Error float64 `json:"error"`
}

type AccuracyMetrics struct {
	MAE     float64 `json:"mae"`
	MAPE    float64 `json:"mape"`
	BiasPct float64 `json:"bias_pct"`
}

// Overview is the payload of the data analysis page.
type Overview struct {
	Filter     AnalysisFilter  `json:"filter"`
	KPIs       KPISummary      `json:"kpis"`
	DailyTrend []SeriesPoint   `json:"daily_trend"`
	Monthly    []SeriesPoint   `json:"monthly"`
	Categories []CategoryShare `json:"categories"`
	Insight    Insight         `json:"insight"`
}

// CustomerProfile is the payload of the customer analysis page.
type CustomerProfile struct {
	CustomerID   string          `json:"customer_id"`
	CustomerType string          `json:"customer_type"`
	Years        []int           `json:"years"`
	KPIs         KPISummary      `json:"kpis"`
	TimeSeries   []SeriesPoint   `json:"time_series"`
	Monthly      []SeriesPoint   `json:"monthly"`
	Yearly       []SeriesPoint   `json:"yearly"`
	Categories   []CategoryShare `json:"categories"`
	Errors       []ErrorPoint    `json:"errors"`
	Accuracy     AccuracyMetrics `json:"accuracy"`
	Bias         BiasStatistics  `json:"bias"`
	Insight      Insight         `json:"insight"`
}

// FilterOptions lists the distinct values a client can filter on.
type FilterOptions struct {
	CustomerTypes []string `json:"customer_types"`
	Categories    []string `json:"categories"`
	Customers     []string `json:"customers"`
	Products      []string `json:"products"`
	Years         []int    `json:"years"`
}

type Diagnosis string

const (
	DiagnosisOverForecast  Diagnosis = "over_forecast"
	DiagnosisUnderForecast Diagnosis = "under_forecast"
	DiagnosisHealthy       Diagnosis = "healthy"
)

// Insight is the rule-based reading of a bias figure.
type Insight struct {
	BiasRate       float64   `json:"bias_rate"`
	Diagnosis      Diagnosis `json:"diagnosis"`
	Summary        string    `json:"summary"`
	Strategy       string    `json:"strategy"`
	Recommendation string    `json:"recommendation"`
	SuggestedDOI   int       `json:"suggested_doi,omitempty"`
}
