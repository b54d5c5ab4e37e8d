package handlers

import (
	"net/http"

	"github.com/andresuchdata/supplychain-brain/internal/service"
	"github.com/gin-gonic/gin"
)

type DatasetHandler struct {
	datasets *service.DatasetService
}

func NewDatasetHandler(datasets *service.DatasetService) *DatasetHandler {
	return &DatasetHandler{datasets: datasets}
}

// List returns the shared dataset library.
func (h *DatasetHandler) List(c *gin.Context) {
	infos, err := h.datasets.ListLibrary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, infos)
}

// Objects lists dataset files in object storage under ?prefix.
func (h *DatasetHandler) Objects(c *gin.Context) {
	objects, err := h.datasets.ListObjects(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, objects)
}
