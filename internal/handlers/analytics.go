package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/brightpath-edu/brightpath-backend/internal/logger"
	"github.com/brightpath-edu/brightpath-backend/internal/services"
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

// GET /api/analytics
func (h *AnalyticsHandler) GetUserAnalytics(c *gin.Context) {
	userID, err := authedUserID(c)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	out, err := h.analyticsService.GetUserAnalytics(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, out)
}

// GET /api/analytics/dashboard
func (h *AnalyticsHandler) GetDashboardAnalytics(c *gin.Context) {
	userID, err := authedUserID(c)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	out, err := h.analyticsService.GetDashboardAnalytics(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, out)
}

// POST /api/analytics/refresh recomputes, skipping the memoized copy.
func (h *AnalyticsHandler) Refresh(c *gin.Context) {
	userID, err := authedUserID(c)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	out, err := h.analyticsService.RefreshUserAnalytics(c.Request.Context(), userID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, out)
}
