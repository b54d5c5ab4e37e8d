package handlers

import (
	"net/http"

	"github.com/andresuchdata/supplychain-brain/internal/inventory"
	"github.com/andresuchdata/supplychain-brain/internal/service"
	"github.com/andresuchdata/supplychain-brain/internal/session"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	store    *session.Store
	planning *service.PlanningService
}

func NewInventoryHandler(store *session.Store, planning *service.PlanningService) *InventoryHandler {
	return &InventoryHandler{store: store, planning: planning}
}

func (h *InventoryHandler) Policy(c *gin.Context) {
	var req inventory.PolicyParams
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	policy, err := inventory.Policy(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, policy)
}

func (h *InventoryHandler) Monthly(c *gin.Context) {
	req := inventory.MonthlyParams{DaysInMonth: inventory.DefaultDaysInMonth}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	policy, err := inventory.MonthlyStrategy(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, policy)
}

func (h *InventoryHandler) Sandbox(c *gin.Context) {
	var req inventory.SandboxParams
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := inventory.Sandbox(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *InventoryHandler) Dashboard(c *gin.Context) {
	_, ds, ok := datasetFrom(c, h.store)
	if !ok {
		return
	}

	var req service.DashboardRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	dash, err := h.planning.Dashboard(ds, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}
