package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/andresuchdata/supplychain-brain/internal/analytics"
	"github.com/andresuchdata/supplychain-brain/internal/config"
	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/andresuchdata/supplychain-brain/internal/forecast"
	"github.com/andresuchdata/supplychain-brain/internal/inventory"
)

const (
	defaultInputMonths   = 3
	defaultUserForecast  = 1000.0
	maeProxyRatio        = 0.2
	dashboardTopN        = 8
	fallbackLeadTimeDays = 15
	fallbackServiceLevel = 0.95
)

// PredictRequest is a single bias-corrected forecast, optionally with the
// inventory policy for the predicted month.
type PredictRequest struct {
	CustomerID      string  `json:"customer_id"`
	Month           int     `json:"month"`
	UserForecast    float64 `json:"user_forecast"`
	UseSeasonal     *bool   `json:"use_seasonal,omitempty"`
	ConfidenceLevel float64 `json:"confidence_level,omitempty"`
	WithPolicy      bool    `json:"with_policy"`
	LeadTimeDays    float64 `json:"lead_time_days,omitempty"`
	ServiceLevel    float64 `json:"service_level,omitempty"`
}

type PredictResult struct {
	CustomerID string                  `json:"customer_id"`
	Month      int                     `json:"month"`
	Prediction domain.DemandPrediction `json:"prediction"`
	Policy     *domain.InventoryPolicy `json:"policy,omitempty"`
	Insight    domain.Insight          `json:"insight"`
}

// DashboardRequest carries optional current stock levels per customer.
type DashboardRequest struct {
	LeadTimeDays float64            `json:"lead_time_days,omitempty"`
	ServiceLevel float64            `json:"service_level,omitempty"`
	TopN         int                `json:"top_n,omitempty"`
	CurrentStock map[string]float64 `json:"current_stock,omitempty"`
}

type PlanningService struct {
	leadTimeDays float64
	serviceLevel float64
	now          func() time.Time
}

func NewPlanningService(cfg config.SessionConfig) *PlanningService {
	lt, sl := cfg.SimulationLT, cfg.SimulationSL
	if lt <= 0 {
		lt = fallbackLeadTimeDays
	}
	if !(sl > 0 && sl < 1) {
		sl = fallbackServiceLevel
	}
	return &PlanningService{leadTimeDays: lt, serviceLevel: sl, now: time.Now}
}

func (s *PlanningService) Predict(ds *domain.Dataset, req PredictRequest) (*PredictResult, error) {
	if req.CustomerID == "" {
		return nil, fmt.Errorf("%w: customer_id is required", ErrInvalidInput)
	}
	if req.Month < 0 || req.Month > 12 {
		return nil, fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
	}
	if req.UserForecast < 0 {
		return nil, fmt.Errorf("%w: user_forecast must not be negative", ErrInvalidInput)
	}

	useSeasonal := true
	if req.UseSeasonal != nil {
		useSeasonal = *req.UseSeasonal
	}

	history := analytics.ForCustomer(ds.Records, req.CustomerID)
	pred := forecast.PredictActualDemand(history, forecast.PredictParams{
		TargetMonth:     time.Month(req.Month),
		UserForecast:    req.UserForecast,
		UseSeasonal:     useSeasonal,
		ConfidenceLevel: req.ConfidenceLevel,
	})

	res := &PredictResult{
		CustomerID: req.CustomerID,
		Month:      req.Month,
		Prediction: pred,
		Insight:    analytics.BuildInsight(pred.BiasRateUsed, customerTypeOf(history)),
	}

	if req.WithPolicy {
		policy, err := s.policyFor(pred, s.orDefaultLT(req.LeadTimeDays), s.orDefaultSL(req.ServiceLevel))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		res.Policy = &policy
	}
	return res, nil
}

// DefaultInputs returns the three months after now for the first customer and
// product of ds.
func (s *PlanningService) DefaultInputs(ds *domain.Dataset) []domain.ForecastInput {
	opts := analytics.Options(ds.Records)
	customer, product := "Unknown", "Unknown"
	if len(opts.Customers) > 0 {
		customer = opts.Customers[0]
	}
	if len(opts.Products) > 0 {
		product = opts.Products[0]
	}

	now := s.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	rows := make([]domain.ForecastInput, defaultInputMonths)
	for i := range rows {
		t := first.AddDate(0, i+1, 0)
		rows[i] = domain.ForecastInput{
			Year:         t.Year(),
			Month:        int(t.Month()),
			CustomerID:   customer,
			ProductID:    product,
			UserForecast: defaultUserForecast,
		}
	}
	return rows
}

// RunSimulation predicts every input row and sizes its monthly policy. Row
// failures are reported on the row and never abort the run.
func (s *PlanningService) RunSimulation(ds *domain.Dataset, inputs []domain.ForecastInput, leadTimeDays, serviceLevel float64) (*domain.SimulationResult, error) {
	lt, sl := s.orDefaultLT(leadTimeDays), s.orDefaultSL(serviceLevel)
	if _, err := inventory.ZScore(sl); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if lt < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, inventory.ErrInvalidLeadTime)
	}

	byCustomer := map[string][]domain.HistoricalRecord{}
	for _, r := range ds.Records {
		byCustomer[r.CustomerID] = append(byCustomer[r.CustomerID], r)
	}

	result := &domain.SimulationResult{
		LeadTimeDays: lt,
		ServiceLevel: sl,
		Rows:         make([]domain.SimulationRow, 0, len(inputs)),
		RanAt:        s.now().UTC(),
	}

	for _, in := range inputs {
		row := domain.SimulationRow{
			Year:         in.Year,
			Month:        in.Month,
			CustomerID:   in.CustomerID,
			ProductID:    in.ProductID,
			UserForecast: in.UserForecast,
		}

		if err := validateInput(in); err != nil {
			row.Error = err.Error()
			result.FailedRows++
			result.Rows = append(result.Rows, row)
			continue
		}

		pred := forecast.PredictActualDemand(byCustomer[in.CustomerID], forecast.PredictParams{
			TargetMonth:  time.Month(in.Month),
			UserForecast: in.UserForecast,
			UseSeasonal:  true,
		})
		policy, err := s.policyFor(pred, lt, sl)
		if err != nil {
			row.Error = err.Error()
			result.FailedRows++
			result.Rows = append(result.Rows, row)
			continue
		}

		row.PredictedActual = inventory.Round2(pred.PredictedActual)
		row.Correction = fmt.Sprintf("%+.1f%%", pred.BiasRateUsed*100)
		row.SafetyStock = policy.SafetyStock
		row.ReorderPoint = policy.ReorderPoint
		row.MaxStock = policy.TargetStockLevel
		row.Reliability = pred.Reliability

		result.TotalPredicted += pred.PredictedActual
		result.Rows = append(result.Rows, row)
	}

	result.TotalPredicted = inventory.Round2(result.TotalPredicted)
	result.ByProduct = groupRows(result.Rows, false)
	result.ByCustomer = groupRows(result.Rows, true)
	return result, nil
}

// Dashboard sizes a policy for the top customers by record count.
func (s *PlanningService) Dashboard(ds *domain.Dataset, req DashboardRequest) (*domain.InventoryDashboard, error) {
	lt, sl := s.orDefaultLT(req.LeadTimeDays), s.orDefaultSL(req.ServiceLevel)
	topN := req.TopN
	if topN <= 0 {
		topN = dashboardTopN
	}

	dash := &domain.InventoryDashboard{
		LeadTimeDays: lt,
		ServiceLevel: sl,
		Items:        []domain.DashboardItem{},
	}

	for _, c := range analytics.TopCustomers(ds.Records, topN) {
		history := analytics.ForCustomer(ds.Records, c.CustomerID)
		stats := forecast.ComputeBiasStatistics(history)
		monthly := avgMonthlyDemand(history)

		policy, err := inventory.MonthlyStrategy(inventory.MonthlyParams{
			MonthlyDemand: monthly,
			MAE:           maeOrProxy(stats.MAE, monthly),
			LeadTimeDays:  lt,
			ServiceLevel:  sl,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}

		item := domain.DashboardItem{
			CustomerID:       c.CustomerID,
			RecordCount:      c.Count,
			AvgMonthlyDemand: inventory.Round2(monthly),
			MAE:              inventory.Round2(stats.MAE),
			Policy:           policy,
		}
		if stock, ok := req.CurrentStock[c.CustomerID]; ok {
			a := inventory.Assess(policy, monthly/inventory.DefaultDaysInMonth, stock)
			item.Assessment = &a
		}
		dash.Items = append(dash.Items, item)
	}

	dash.ItemCount = len(dash.Items)
	return dash, nil
}

func (s *PlanningService) policyFor(pred domain.DemandPrediction, lt, sl float64) (domain.InventoryPolicy, error) {
	return inventory.MonthlyStrategy(inventory.MonthlyParams{
		MonthlyDemand: pred.PredictedActual,
		MAE:           maeOrProxy(pred.MAE, pred.PredictedActual),
		LeadTimeDays:  lt,
		ServiceLevel:  sl,
	})
}

func (s *PlanningService) orDefaultLT(v float64) float64 {
	if v == 0 {
		return s.leadTimeDays
	}
	return v
}

func (s *PlanningService) orDefaultSL(v float64) float64 {
	if v == 0 {
		return s.serviceLevel
	}
	return v
}

// maeOrProxy substitutes 20% of demand when history shows no error at all.
func maeOrProxy(mae, demand float64) float64 {
	if mae == 0 && demand > 0 {
		return demand * maeProxyRatio
	}
	return mae
}

func validateInput(in domain.ForecastInput) error {
	switch {
	case in.Month < 1 || in.Month > 12:
		return fmt.Errorf("month %d out of range", in.Month)
	case in.CustomerID == "":
		return fmt.Errorf("customer_id is required")
	case in.UserForecast < 0:
		return fmt.Errorf("user_forecast must not be negative")
	}
	return nil
}

// avgMonthlyDemand averages actual demand over the months present in history.
// Without dated rows it falls back to the mean record quantity.
func avgMonthlyDemand(history []domain.HistoricalRecord) float64 {
	months := analytics.MonthlyTotals(history)
	if len(months) > 0 {
		var total float64
		for _, m := range months {
			total += m.Actual
		}
		return total / float64(len(months))
	}
	if len(history) == 0 {
		return 0
	}
	var total float64
	for _, r := range history {
		total += r.ActualQty
	}
	return total / float64(len(history))
}

func customerTypeOf(history []domain.HistoricalRecord) string {
	if len(history) == 0 {
		return ""
	}
	return history[0].CustomerType
}

func groupRows(rows []domain.SimulationRow, withCustomer bool) []domain.PeriodProductTotal {
	type key struct{ period, customer, product string }
	totals := map[key]*domain.PeriodProductTotal{}
	for _, r := range rows {
		if r.Error != "" {
			continue
		}
		k := key{period: fmt.Sprintf("%d-%02d", r.Year, r.Month), product: r.ProductID}
		if withCustomer {
			k.customer = r.CustomerID
		}
		t, ok := totals[k]
		if !ok {
			t = &domain.PeriodProductTotal{Period: k.period, CustomerID: k.customer, ProductID: k.product}
			totals[k] = t
		}
		t.Predicted += r.PredictedActual
		t.Forecast += r.UserForecast
	}

	out := make([]domain.PeriodProductTotal, 0, len(totals))
	for _, t := range totals {
		t.Predicted = inventory.Round2(t.Predicted)
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[i].Period < out[j].Period
		}
		if out[i].CustomerID != out[j].CustomerID {
			return out[i].CustomerID < out[j].CustomerID
		}
		return out[i].ProductID < out[j].ProductID
	})
	return out
}
