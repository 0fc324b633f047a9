package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/faithbridge/member-insights/internal/cache"
	"github.com/faithbridge/member-insights/internal/services"
	"github.com/faithbridge/member-insights/internal/store"
)

// Handlers contains the HTTP surface of the prediction engine.
type Handlers struct {
	predictions *services.PredictionService
	reportCache *cache.ReportCache
	logger      *zap.Logger
}

// NewHandlers creates handlers with their dependencies. reportCache may
// be nil when Redis is not configured.
func NewHandlers(predictions *services.PredictionService, reportCache *cache.ReportCache, logger *zap.Logger) *Handlers {
	return &Handlers{
		predictions: predictions,
		reportCache: reportCache,
		logger:      logger,
	}
}

// RegisterRoutes wires the API routes to the router.
func (h *Handlers) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		insights := v1.Group("/insights")
		{
			insights.GET("/report", h.GetReport)
			insights.GET("/members/:id/recommendation", h.GetMemberRecommendation)
		}
	}
}

// GetReport handles GET /api/v1/insights/report?scope=
func (h *Handlers) GetReport(c *gin.Context) {
	// Normalized before the cache lookup so arbitrary scope values
	// collapse onto the "all" cache entry.
	scope := services.NormalizeScope(c.DefaultQuery("scope", "all"))

	if payload, ok := h.reportCache.Get(c.Request.Context(), scope); ok {
		c.Data(http.StatusOK, "application/json", payload)
		return
	}

	report, err := h.predictions.GenerateReport(c.Request.Context(), scope)
	if err != nil {
		h.logger.Error("Failed to generate report",
			zap.String("scope", scope),
			zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrDataUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": "Failed to generate report"})
		return
	}

	payload, err := json.Marshal(report)
	if err != nil {
		h.logger.Error("Failed to encode report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode report"})
		return
	}

	h.reportCache.Set(c.Request.Context(), scope, payload)
	c.Data(http.StatusOK, "application/json", payload)
}

// GetMemberRecommendation handles GET /api/v1/insights/members/:id/recommendation
func (h *Handlers) GetMemberRecommendation(c *gin.Context) {
	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid member ID"})
		return
	}

	recommendation, err := h.predictions.GenerateMemberRecommendation(c.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, store.ErrMemberNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
			return
		}
		h.logger.Error("Failed to generate member recommendation",
			zap.String("member_id", memberID.String()),
			zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrDataUnavailable) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"error": "Failed to generate recommendation"})
		return
	}

	c.JSON(http.StatusOK, recommendation)
}
