package handlers

import (
	"net/http"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/andresuchdata/supplychain-brain/internal/service"
	"github.com/andresuchdata/supplychain-brain/internal/session"
	"github.com/gin-gonic/gin"
)

const maxForecastRows = 500

type ForecastHandler struct {
	store    *session.Store
	planning *service.PlanningService
}

func NewForecastHandler(store *session.Store, planning *service.PlanningService) *ForecastHandler {
	return &ForecastHandler{store: store, planning: planning}
}

type inputsRequest struct {
	Rows []domain.ForecastInput `json:"rows"`
}

type simulateRequest struct {
	Rows         []domain.ForecastInput `json:"rows,omitempty"`
	LeadTimeDays float64                `json:"lead_time_days,omitempty"`
	ServiceLevel float64                `json:"service_level,omitempty"`
}

func (h *ForecastHandler) Predict(c *gin.Context) {
	_, ds, ok := datasetFrom(c, h.store)
	if !ok {
		return
	}

	var req service.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.planning.Predict(ds, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GetInputs returns the stored input table, or the default one.
func (h *ForecastHandler) GetInputs(c *gin.Context) {
	sess, ds, ok := datasetFrom(c, h.store)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, inputsRequest{Rows: h.inputsFor(sess, ds)})
}

func (h *ForecastHandler) PutInputs(c *gin.Context) {
	sess, _, ok := datasetFrom(c, h.store)
	if !ok {
		return
	}

	var req inputsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if len(req.Rows) > maxForecastRows {
		badRequest(c, "too many rows")
		return
	}

	sess.SetForecastInputs(req.Rows)
	c.JSON(http.StatusOK, inputsRequest{Rows: sess.ForecastInputs()})
}

// Simulate runs the bulk forecast over the request rows, falling back to the
// stored input table.
func (h *ForecastHandler) Simulate(c *gin.Context) {
	sess, ds, ok := datasetFrom(c, h.store)
	if !ok {
		return
	}

	var req simulateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	if len(req.Rows) > maxForecastRows {
		badRequest(c, "too many rows")
		return
	}

	rows := req.Rows
	if len(rows) == 0 {
		rows = h.inputsFor(sess, ds)
	} else {
		sess.SetForecastInputs(rows)
	}

	res, err := h.planning.RunSimulation(ds, rows, req.LeadTimeDays, req.ServiceLevel)
	if err != nil {
		respondError(c, err)
		return
	}
	sess.SetSimulation(res)
	c.JSON(http.StatusOK, res)
}

func (h *ForecastHandler) Results(c *gin.Context) {
	sess, ok := sessionFrom(c, h.store)
	if !ok {
		return
	}
	res := sess.Simulation()
	if res == nil {
		c.JSON(http.StatusNotFound, gin.H{"warning": "no simulation has been run yet"})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ForecastHandler) inputsFor(sess *session.Session, ds *domain.Dataset) []domain.ForecastInput {
	if rows := sess.ForecastInputs(); len(rows) > 0 {
		return rows
	}
	rows := h.planning.DefaultInputs(ds)
	sess.SetForecastInputs(rows)
	return rows
}
