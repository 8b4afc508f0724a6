package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbamaint/hogrisk-backend/internal/apperr"
	"github.com/tbamaint/hogrisk-backend/internal/logger"
	"github.com/tbamaint/hogrisk-backend/internal/services"
)

type AnalyticsHandler struct {
	log              *logger.Logger
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(log *logger.Logger, analyticsService services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		log:              log.With("handler", "AnalyticsHandler"),
		analyticsService: analyticsService,
	}
}

func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	days, ok := parseDaysQuery(c)
	if !ok {
		return
	}
	snapshot, err := h.analyticsService.Dashboard(c.Request.Context(), days)
	if err != nil {
		h.log.Error("Dashboard failed", "error", err)
		RespondError(c, err)
		return
	}
	RespondOK(c, snapshot)
}

func (h *AnalyticsHandler) Predictive(c *gin.Context) {
	report, err := h.analyticsService.Predictive(c.Request.Context())
	if err != nil {
		h.log.Error("Predictive failed", "error", err)
		RespondError(c, err)
		return
	}
	RespondOK(c, report)
}

func (h *AnalyticsHandler) Export(c *gin.Context) {
	days, ok := parseDaysQuery(c)
	if !ok {
		return
	}
	result, err := h.analyticsService.Export(c.Request.Context(), days, c.Query("format"))
	if err != nil {
		h.log.Error("Export failed", "error", err)
		RespondError(c, err)
		return
	}
	if result.Format == "csv" {
		c.Header("Content-Disposition", `attachment; filename="assessments.csv"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(result.CSV))
		return
	}
	RespondOK(c, gin.H{"assessments": result.Rows})
}

func parseDaysQuery(c *gin.Context) (int, bool) {
	raw := c.Query("days")
	if raw == "" {
		return 0, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 {
		RespondError(c, apperr.Validation("invalid days value %q", raw))
		return 0, false
	}
	return days, true
}
