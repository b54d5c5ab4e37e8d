package service

import (
	"testing"
	"time"

	"github.com/andresuchdata/supplychain-brain/internal/config"
	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPlanning(now time.Time) *PlanningService {
	s := NewPlanningService(config.SessionConfig{SimulationLT: 15, SimulationSL: 0.95})
	s.now = func() time.Time { return now }
	return s
}

func TestNewPlanningServiceFallbacks(t *testing.T) {
	s := NewPlanningService(config.SessionConfig{})
	assert.Equal(t, 15.0, s.leadTimeDays)
	assert.Equal(t, 0.95, s.serviceLevel)
}

func TestDefaultInputsRollOverYear(t *testing.T) {
	s := newPlanning(time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC))
	rows := s.DefaultInputs(fixtureDataset())

	require.Len(t, rows, 3)
	assert.Equal(t, domain.ForecastInput{Year: 2024, Month: 12, CustomerID: "C1", ProductID: "P1", UserForecast: 1000}, rows[0])
	assert.Equal(t, 2025, rows[1].Year)
	assert.Equal(t, 1, rows[1].Month)
	assert.Equal(t, 2, rows[2].Month)
}

func TestDefaultInputsEmptyDataset(t *testing.T) {
	rows := newPlanning(time.Now()).DefaultInputs(&domain.Dataset{})
	require.Len(t, rows, 3)
	assert.Equal(t, "Unknown", rows[0].CustomerID)
}

func TestRunSimulation(t *testing.T) {
	s := newPlanning(time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))
	inputs := []domain.ForecastInput{
		{Year: 2024, Month: 8, CustomerID: "C1", ProductID: "P1", UserForecast: 1000},
		{Year: 2024, Month: 8, CustomerID: "NEW", ProductID: "P2", UserForecast: 1000},
		{Year: 2024, Month: 13, CustomerID: "C1", ProductID: "P1", UserForecast: 1000},
	}

	res, err := s.RunSimulation(fixtureDataset(), inputs, 0, 0)
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)

	c1 := res.Rows[0]
	assert.InDelta(t, 800, c1.PredictedActual, 1e-9)
	assert.Equal(t, "+20.0%", c1.Correction)
	assert.Greater(t, c1.SafetyStock, 0.0)
	assert.GreaterOrEqual(t, c1.ReorderPoint, c1.SafetyStock)
	assert.GreaterOrEqual(t, c1.MaxStock, c1.ReorderPoint)
	assert.Equal(t, domain.ReliabilityMedium, c1.Reliability)

	unknown := res.Rows[1]
	assert.Equal(t, 1000.0, unknown.PredictedActual)
	assert.Equal(t, "+0.0%", unknown.Correction)
	assert.Greater(t, unknown.SafetyStock, 0.0, "MAE proxy keeps a buffer without history")

	assert.NotEmpty(t, res.Rows[2].Error)
	assert.Equal(t, 1, res.FailedRows)
	assert.InDelta(t, 1800, res.TotalPredicted, 1e-9)
	assert.Equal(t, 15.0, res.LeadTimeDays)

	require.Len(t, res.ByProduct, 2)
	assert.Equal(t, "2024-08", res.ByProduct[0].Period)
	assert.Equal(t, "P1", res.ByProduct[0].ProductID)
	require.Len(t, res.ByCustomer, 2)
	assert.Equal(t, "C1", res.ByCustomer[0].CustomerID)
}

func TestRunSimulationRejectsServiceLevel(t *testing.T) {
	_, err := newPlanning(time.Now()).RunSimulation(fixtureDataset(), nil, 15, 1.2)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestPredict(t *testing.T) {
	s := newPlanning(time.Now())

	res, err := s.Predict(fixtureDataset(), PredictRequest{CustomerID: "C1", Month: 3, UserForecast: 500, WithPolicy: true})
	require.NoError(t, err)
	assert.InDelta(t, 400, res.Prediction.PredictedActual, 1e-9)
	assert.True(t, res.Prediction.SeasonalApplied)
	require.NotNil(t, res.Policy)
	assert.Equal(t, domain.DiagnosisOverForecast, res.Insight.Diagnosis)

	off := false
	res, err = s.Predict(fixtureDataset(), PredictRequest{CustomerID: "C1", Month: 3, UserForecast: 500, UseSeasonal: &off})
	require.NoError(t, err)
	assert.False(t, res.Prediction.SeasonalApplied)
	assert.Nil(t, res.Policy)
}

func TestPredictValidation(t *testing.T) {
	s := newPlanning(time.Now())
	_, err := s.Predict(fixtureDataset(), PredictRequest{Month: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Predict(fixtureDataset(), PredictRequest{CustomerID: "C1", Month: 14})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Predict(fixtureDataset(), PredictRequest{CustomerID: "C1", UserForecast: -1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDashboard(t *testing.T) {
	s := newPlanning(time.Now())
	dash, err := s.Dashboard(fixtureDataset(), DashboardRequest{CurrentStock: map[string]float64{"C1": 0}})
	require.NoError(t, err)

	require.Equal(t, 2, dash.ItemCount)
	first := dash.Items[0]
	assert.Equal(t, "C1", first.CustomerID)
	assert.Equal(t, 6, first.RecordCount)
	assert.InDelta(t, 100, first.AvgMonthlyDemand, 1e-9)
	assert.InDelta(t, 20, first.MAE, 1e-9)
	require.NotNil(t, first.Assessment)
	assert.Equal(t, domain.StockCritical, first.Assessment.Status)
	assert.Nil(t, dash.Items[1].Assessment)
}

func TestMaeOrProxy(t *testing.T) {
	assert.Equal(t, 20.0, maeOrProxy(0, 100))
	assert.Equal(t, 5.0, maeOrProxy(5, 100))
	assert.Equal(t, 0.0, maeOrProxy(0, 0))
}
