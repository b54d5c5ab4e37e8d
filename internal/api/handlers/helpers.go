package handlers

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/andresuchdata/supplychain-brain/internal/analytics"
	"github.com/andresuchdata/supplychain-brain/internal/domain"
	"github.com/andresuchdata/supplychain-brain/internal/ingest"
	"github.com/andresuchdata/supplychain-brain/internal/inventory"
	"github.com/andresuchdata/supplychain-brain/internal/repository/postgres"
	"github.com/andresuchdata/supplychain-brain/internal/service"
	"github.com/andresuchdata/supplychain-brain/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// respondError maps package errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var missing *ingest.MissingColumnsError
	switch {
	case errors.Is(err, analytics.ErrNoRecords):
		c.JSON(http.StatusNotFound, gin.H{"warning": err.Error()})
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, postgres.ErrDatasetNotFound),
		errors.Is(err, fs.ErrNotExist):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, session.ErrNoDataset), errors.Is(err, service.ErrChatBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSourceUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	case errors.As(err, &missing),
		errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, session.ErrUnknownPage),
		errors.Is(err, ingest.ErrEmptyFile),
		errors.Is(err, ingest.ErrUnsupportedFormat),
		errors.Is(err, inventory.ErrInvalidServiceLevel),
		errors.Is(err, inventory.ErrInvalidLeadTime),
		errors.Is(err, inventory.ErrInvalidDaysInMonth):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// parseYears accepts ?years=2023&years=2024 as well as ?years=2023,2024.
func parseYears(c *gin.Context) ([]int, error) {
	var years []int
	seen := map[int]struct{}{}
	for _, raw := range c.QueryArray("years") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			y, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid year %q", part)
			}
			if _, ok := seen[y]; ok {
				continue
			}
			seen[y] = struct{}{}
			years = append(years, y)
		}
	}
	return years, nil
}

func parseFilter(c *gin.Context) (domain.AnalysisFilter, error) {
	years, err := parseYears(c)
	if err != nil {
		return domain.AnalysisFilter{}, err
	}
	return domain.AnalysisFilter{
		CustomerType: allAsEmpty(c.Query("customer_type")),
		Category:     allAsEmpty(c.Query("category")),
		CustomerID:   allAsEmpty(c.Query("customer")),
		Years:        years,
	}, nil
}

// allAsEmpty treats the "All" option of a dropdown as no filter.
func allAsEmpty(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}

// sessionFrom resolves the :id path parameter, writing the error response
// when the session does not exist.
func sessionFrom(c *gin.Context, store *session.Store) (*session.Session, bool) {
	sess, err := store.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return sess, true
}

// datasetFrom resolves the session and its dataset.
func datasetFrom(c *gin.Context, store *session.Store) (*session.Session, *domain.Dataset, bool) {
	sess, ok := sessionFrom(c, store)
	if !ok {
		return nil, nil, false
	}
	ds, err := sess.Dataset()
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	return sess, ds, true
}
