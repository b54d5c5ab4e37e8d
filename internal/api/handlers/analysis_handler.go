package handlers

import (
	"net/http"

	"github.com/andresuchdata/supplychain-brain/internal/service"
	"github.com/andresuchdata/supplychain-brain/internal/session"
	"github.com/gin-gonic/gin"
)

type AnalysisHandler struct {
	store     *session.Store
	analytics *service.AnalyticsService
}

func NewAnalysisHandler(store *session.Store, analytics *service.AnalyticsService) *AnalysisHandler {
	return &AnalysisHandler{store: store, analytics: analytics}
}

func (h *AnalysisHandler) Options(c *gin.Context) {
	_, ds, ok := datasetFrom(c, h.store)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.analytics.Options(ds))
}

func (h *AnalysisHandler) Overview(c *gin.Context) {
	_, ds, ok := datasetFrom(c, h.store)
	if !ok {
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	overview, err := h.analytics.Overview(c.Request.Context(), ds, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *AnalysisHandler) Customer(c *gin.Context) {
	_, ds, ok := datasetFrom(c, h.store)
	if !ok {
		return
	}

	years, err := parseYears(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	profile, err := h.analytics.CustomerProfile(c.Request.Context(), ds, c.Param("customer"), years)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
