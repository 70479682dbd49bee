package handlers

import (
	"net/http"

	"advisory-service/internal/models"
	"advisory-service/internal/services"
	"advisory-service/internal/utils"

	"github.com/gin-gonic/gin"
)

type CropHandler struct {
	cropService services.ICropService
	views       *ViewHandler[models.CropSuggestionRequest, models.CropSuggestionResult]
}

func NewCropHandler(cropService services.ICropService, views services.IViewService[models.CropSuggestionRequest, models.CropSuggestionResult]) *CropHandler {
	return &CropHandler{
		cropService: cropService,
		views:       NewViewHandler(views),
	}
}

func (h *CropHandler) RegisterRoutes(router *gin.Engine) {
	cropGr := router.Group("/advisory/public/api/v1/crops")
	cropGr.POST("/recommendations", h.Recommend)
	cropGr.GET("/options", h.Options)
	h.views.RegisterRoutes(cropGr)
}

func (h *CropHandler) Recommend(c *gin.Context) {
	var req models.CropRecommendationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	recommendations, err := h.cropService.Recommend(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(gin.H{"recommendations": recommendations}))
}

func (h *CropHandler) Options(c *gin.Context) {
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(h.cropService.Options()))
}
