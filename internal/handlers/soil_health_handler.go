package handlers

import (
	"fmt"
	"io"
	"net/http"

	"advisory-service/internal/models"
	"advisory-service/internal/services"
	"advisory-service/internal/utils"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 10 << 20

type SoilHealthHandler struct {
	soilService services.ISoilHealthService
	views       *ViewHandler[models.SoilForm, models.SoilHealthReport]
}

func NewSoilHealthHandler(soilService services.ISoilHealthService, views services.IViewService[models.SoilForm, models.SoilHealthReport]) *SoilHealthHandler {
	return &SoilHealthHandler{
		soilService: soilService,
		views:       NewViewHandler(views),
	}
}

func (h *SoilHealthHandler) RegisterRoutes(router *gin.Engine) {
	soilGr := router.Group("/advisory/public/api/v1/soil-health")
	soilGr.POST("/evaluate", h.Evaluate)
	soilGr.POST("/reports", h.UploadReport)
	h.views.RegisterRoutes(soilGr)
}

func (h *SoilHealthHandler) Evaluate(c *gin.Context) {
	strict, err := utils.GetQueryParamAsBool(c, "strict", false)
	if err != nil {
		respondError(c, models.NewInvalidInput("strict", err.Error()))
		return
	}

	var form models.SoilForm
	if err := c.ShouldBindJSON(&form); err != nil {
		respondBindError(c, err)
		return
	}

	report, err := h.soilService.Evaluate(form, strict)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(report))
}

// UploadReport takes a multipart "file" field holding a PDF, JPEG or PNG soil test report.
func (h *SoilHealthHandler) UploadReport(c *gin.Context) {
	fileName, data, err := readUpload(c, "file", maxUploadBytes)
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.soilService.UploadReport(c.Request.Context(), fileName, data)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(result))
}

// readUpload reads one multipart file field, refusing anything over limit bytes.
func readUpload(c *gin.Context, field string, limit int64) (string, []byte, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return "", nil, models.NewInvalidInput(field, field+" is required")
	}
	if fileHeader.Size > limit {
		return "", nil, models.NewInvalidInput(field, fmt.Sprintf("%s exceeds %d MB", field, limit>>20))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return fileHeader.Filename, data, nil
}
