package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/raine/market-dashboard/internal/chart"
	"github.com/raine/market-dashboard/internal/dashboard"
	"github.com/raine/market-dashboard/internal/export"
	"github.com/raine/market-dashboard/internal/history"
	"github.com/raine/market-dashboard/internal/listing"
	"github.com/rs/zerolog/log"
)

const (
	MsgNoResults    = "No results found. Try a different search term."
	MsgSearchFailed = "Search failed."
	MsgSearchBusy   = "A search is already in progress."
)

// DashboardService is the dashboard session served over HTTP.
type DashboardService interface {
	Search(ctx context.Context, q listing.Query) (*dashboard.Dashboard, error)
	Rerun(ctx context.Context, entryID string) (*dashboard.Dashboard, error)
	Current() (*dashboard.Dashboard, bool)
	Chart(id string) (chart.Instance, bool)
	ExportCSV() (filename, body string, err error)
	History() []history.Entry
	ClearHistory() error
}

var _ DashboardService = (*dashboard.Service)(nil)

// pngSource is a chart instance that can be served as an image.
type pngSource interface {
	PNG() ([]byte, bool)
}

type DashboardHandler struct {
	svc DashboardService
}

func NewDashboardHandler(svc DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/search", h.Search)
	r.GET("/dashboard", h.GetDashboard)
	r.GET("/charts/:id", h.GetChart)
	r.GET("/export.csv", h.ExportCSV)
	r.GET("/history", h.ListHistory)
	r.DELETE("/history", h.ClearHistory)
	r.POST("/history/:id/search", h.RerunHistory)
}

func (h *DashboardHandler) Search(c *gin.Context) {
	var q listing.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid search request", "details": err.Error()})
		return
	}

	d, err := h.svc.Search(c.Request.Context(), q)
	h.respondSearch(c, d, err)
}

func (h *DashboardHandler) RerunHistory(c *gin.Context) {
	d, err := h.svc.Rerun(c.Request.Context(), c.Param("id"))
	if errors.Is(err, dashboard.ErrEntryNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "history entry not found"})
		return
	}
	h.respondSearch(c, d, err)
}

func (h *DashboardHandler) respondSearch(c *gin.Context, d *dashboard.Dashboard, err error) {
	var validationErr *listing.ValidationError
	var searchErr *dashboard.SearchError

	switch {
	case err == nil:
		c.JSON(http.StatusOK, d)
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "field": validationErr.Field})
	case errors.Is(err, dashboard.ErrNoResults):
		c.JSON(http.StatusOK, gin.H{"message": MsgNoResults})
	case errors.Is(err, dashboard.ErrSearchInProgress):
		c.JSON(http.StatusConflict, gin.H{"error": MsgSearchBusy})
	case errors.As(err, &searchErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": MsgSearchFailed, "details": searchErr.Err.Error()})
	default:
		log.Error().Err(err).Msg("search request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": MsgSearchFailed})
	}
}

func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	d, ok := h.svc.Current()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no search has been run yet"})
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *DashboardHandler) GetChart(c *gin.Context) {
	id := c.Param("id")
	inst, ok := h.svc.Chart(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "chart not found"})
		return
	}

	src, ok := inst.(pngSource)
	if !ok {
		c.JSON(http.StatusNotAcceptable, gin.H{"error": "chart has no image"})
		return
	}
	data, ok := src.PNG()
	if !ok {
		// Replaced between lookup and read.
		c.JSON(http.StatusNotFound, gin.H{"error": "chart not found"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", data)
}

func (h *DashboardHandler) ExportCSV(c *gin.Context) {
	filename, body, err := h.svc.ExportCSV()
	if errors.Is(err, dashboard.ErrNoDashboard) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no results to export"})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to export csv")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export csv"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, export.ContentType, []byte(body))
}

func (h *DashboardHandler) ListHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": h.svc.History()})
}

func (h *DashboardHandler) ClearHistory(c *gin.Context) {
	if err := h.svc.ClearHistory(); err != nil {
		log.Error().Err(err).Msg("failed to clear history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear history"})
		return
	}
	c.Status(http.StatusNoContent)
}
