package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/andresuchdata/supplychain-brain/internal/service"
	"github.com/andresuchdata/supplychain-brain/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type SessionHandler struct {
	store          *session.Store
	datasets       *service.DatasetService
	analytics      *service.AnalyticsService
	maxUploadBytes int64
}

func NewSessionHandler(store *session.Store, datasets *service.DatasetService, analytics *service.AnalyticsService, maxUploadBytes int64) *SessionHandler {
	return &SessionHandler{store: store, datasets: datasets, analytics: analytics, maxUploadBytes: maxUploadBytes}
}

type navigateRequest struct {
	Page          string `json:"page" binding:"required"`
	InventoryView string `json:"inventory_view"`
}

type loadRequest struct {
	Source string `json:"source" binding:"required"`
	Ref    string `json:"ref" binding:"required"`
}

// Create starts a session, preloading the default dataset when one is configured.
func (h *SessionHandler) Create(c *gin.Context) {
	sess := h.store.Create()

	ds, err := h.datasets.Default()
	if err != nil {
		log.Warn().Err(err).Str("session", sess.ID).Msg("default dataset not loaded")
	} else if ds != nil {
		sess.SetDataset(ds)
	}

	c.JSON(http.StatusCreated, sess.Snapshot())
}

func (h *SessionHandler) Get(c *gin.Context) {
	sess, ok := sessionFrom(c, h.store)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

func (h *SessionHandler) Delete(c *gin.Context) {
	sess, ok := sessionFrom(c, h.store)
	if !ok {
		return
	}
	if ds, err := sess.Dataset(); err == nil {
		h.analytics.Invalidate(c.Request.Context(), ds)
	}
	h.store.Delete(sess.ID)
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) Navigate(c *gin.Context) {
	sess, ok := sessionFrom(c, h.store)
	if !ok {
		return
	}

	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	page, ok := domain.ParsePage(req.Page)
	if !ok {
		badRequest(c, fmt.Sprintf("unknown page %q", req.Page))
		return
	}

	var view domain.InventoryView
	if req.InventoryView != "" {
		if view, ok = domain.ParseInventoryView(req.InventoryView); !ok {
			badRequest(c, fmt.Sprintf("unknown inventory view %q", req.InventoryView))
			return
		}
	}

	if err := sess.Navigate(page, view); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess.Snapshot())
}

// Upload replaces the session dataset with a multipart "file" (CSV or XLSX).
func (h *SessionHandler) Upload(c *gin.Context) {
	sess, ok := sessionFrom(c, h.store)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "no file provided")
		return
	}
	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds %d bytes", h.maxUploadBytes)})
		return
	}

	f, err := file.Open()
	if err != nil {
		badRequest(c, "unable to read uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		badRequest(c, "unable to read uploaded file")
		return
	}

	ds, err := h.datasets.Upload(c.Request.Context(), file.Filename, data)
	if err != nil {
		respondError(c, err)
		return
	}
	h.replaceDataset(c, sess, ds)
}

// Load replaces the session dataset from a file, object, Drive or library source.
func (h *SessionHandler) Load(c *gin.Context) {
	sess, ok := sessionFrom(c, h.store)
	if !ok {
		return
	}

	var req loadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ds, err := h.datasets.Load(c.Request.Context(), req.Source, req.Ref)
	if err != nil {
		respondError(c, err)
		return
	}
	h.replaceDataset(c, sess, ds)
}

func (h *SessionHandler) replaceDataset(c *gin.Context, sess *session.Session, ds *domain.Dataset) {
	if old, err := sess.Dataset(); err == nil {
		h.analytics.Invalidate(c.Request.Context(), old)
	}
	sess.SetDataset(ds)
	c.JSON(http.StatusOK, ds.Meta())
}
