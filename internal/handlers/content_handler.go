package handlers

import (
	"net/http"

	"advisory-service/internal/models"
	"advisory-service/internal/services"
	"advisory-service/internal/utils"

	"github.com/gin-gonic/gin"
)

// ContentHandler serves the read-only pages: landing and dashboard.
type ContentHandler struct {
	contentService   services.IContentService
	dashboardService services.IDashboardService
}

func NewContentHandler(contentService services.IContentService, dashboardService services.IDashboardService) *ContentHandler {
	return &ContentHandler{
		contentService:   contentService,
		dashboardService: dashboardService,
	}
}

func (h *ContentHandler) RegisterRoutes(router *gin.Engine) {
	contentGr := router.Group("/advisory/public/api/v1")
	contentGr.GET("/landing", h.GetLanding)
	contentGr.GET("/dashboard", h.GetDashboard)
}

func (h *ContentHandler) GetLanding(c *gin.Context) {
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(h.contentService.Landing()))
}

func (h *ContentHandler) GetDashboard(c *gin.Context) {
	days, err := utils.GetQueryParamAsInt(c, "days", services.DefaultForecastDays)
	if err != nil {
		respondError(c, models.NewInvalidInput("days", err.Error()))
		return
	}

	dashboard, err := h.dashboardService.GetDashboard(c.Request.Context(), days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(dashboard))
}
