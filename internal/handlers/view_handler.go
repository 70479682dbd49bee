package handlers

import (
	"net/http"

	"advisory-service/internal/services"
	"advisory-service/internal/utils"

	"github.com/gin-gonic/gin"
)

// ViewHandler exposes one page's view lifecycle: create, read and submit.
type ViewHandler[In any, Out any] struct {
	service services.IViewService[In, Out]
}

func NewViewHandler[In any, Out any](service services.IViewService[In, Out]) *ViewHandler[In, Out] {
	return &ViewHandler[In, Out]{service: service}
}

func (h *ViewHandler[In, Out]) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/views", h.CreateView)
	group.GET("/views/:id", h.GetView)
	group.POST("/views/:id/submit", h.SubmitView)
}

func (h *ViewHandler[In, Out]) CreateView(c *gin.Context) {
	view, err := h.service.Create(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.CreateSuccessResponse(view))
}

func (h *ViewHandler[In, Out]) GetView(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(view))
}

// SubmitView answers 202 with the submitting view; the result shows up on GET once the task resolves.
func (h *ViewHandler[In, Out]) SubmitView(c *gin.Context) {
	var input In
	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	submitting, _, err := h.service.Submit(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, utils.CreateSuccessResponse(submitting))
}
