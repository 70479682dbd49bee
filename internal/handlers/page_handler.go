package handlers

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"advisory-service/internal/models"
	"advisory-service/internal/services"
	"advisory-service/internal/viewstate"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// LoadTemplates parses the embedded page templates.
func LoadTemplates() (*template.Template, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page templates: %w", err)
	}
	return tmpl, nil
}

type pageData struct {
	Title      string
	Brand      string
	Active     string
	Navigation []models.NavLink
	Error      string
	Content    any
}

type nutrientRow struct {
	Label string
	models.NutrientAssessment
	Tone models.Tone
}

type soilPage struct {
	ViewID    string
	Form      models.SoilForm
	Upload    *models.ReportUploadResult
	Report    *models.SoilHealthReport
	Nutrients []nutrientRow
}

type cropPage struct {
	ViewID    string
	Form      models.CropSuggestionRequest
	SoilTypes []models.Option
	Result    *models.CropSuggestionResult
}

type chatPage struct {
	Conversation     *models.Conversation
	Languages        []models.Language
	QuickSuggestions []models.QuickSuggestion
}

var nutrientLabels = map[string]string{
	models.NutrientPH:         "pH",
	models.NutrientNitrogen:   "Nitrogen",
	models.NutrientPhosphorus: "Phosphorus",
	models.NutrientPotassium:  "Potassium",
}

// PageHandler renders the server-side pages. GET shows the idle view; POST submits and waits for the result.
type PageHandler struct {
	contentService   services.IContentService
	dashboardService services.IDashboardService
	soilService      services.ISoilHealthService
	soilViews        services.IViewService[models.SoilForm, models.SoilHealthReport]
	cropViews        services.IViewService[models.CropSuggestionRequest, models.CropSuggestionResult]
	chatService      services.IChatService
}

func NewPageHandler(
	contentService services.IContentService,
	dashboardService services.IDashboardService,
	soilService services.ISoilHealthService,
	soilViews services.IViewService[models.SoilForm, models.SoilHealthReport],
	cropViews services.IViewService[models.CropSuggestionRequest, models.CropSuggestionResult],
	chatService services.IChatService,
) *PageHandler {
	return &PageHandler{
		contentService:   contentService,
		dashboardService: dashboardService,
		soilService:      soilService,
		soilViews:        soilViews,
		cropViews:        cropViews,
		chatService:      chatService,
	}
}

func (h *PageHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.Landing)
	router.GET("/dashboard", h.Dashboard)
	router.GET("/soil-health", h.SoilHealth)
	router.POST("/soil-health", h.SubmitSoilHealth)
	router.POST("/soil-health/report", h.UploadSoilReport)
	router.GET("/crop-suggestion", h.CropSuggestion)
	router.POST("/crop-suggestion", h.SubmitCropSuggestion)
	router.GET("/chatbot", h.Chatbot)
	router.POST("/chatbot", h.SendChatMessage)
}

func (h *PageHandler) render(c *gin.Context, status int, name, title, active string, content any, err error) {
	data := pageData{
		Title:      title,
		Brand:      "Krishi Mitr",
		Active:     active,
		Navigation: h.contentService.Navigation(),
		Content:    content,
	}
	if err != nil {
		data.Error = pageErrorMessage(err)
	}
	c.HTML(status, name, data)
}

func pageErrorMessage(err error) string {
	_, status := MapErrorToHTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("page request failed: %v", err)
		return "Something went wrong. Please try again."
	}
	return err.Error()
}

func (h *PageHandler) Landing(c *gin.Context) {
	h.render(c, http.StatusOK, "landing.html", "Home", "/", h.contentService.Landing(), nil)
}

func (h *PageHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.dashboardService.GetDashboard(c.Request.Context(), services.DefaultForecastDays)
	if err != nil {
		_, status := MapErrorToHTTPStatus(err)
		h.render(c, status, "dashboard.html", "Dashboard", "/dashboard", &models.Dashboard{}, err)
		return
	}
	h.render(c, http.StatusOK, "dashboard.html", "Dashboard", "/dashboard", dashboard, nil)
}

// submitAndWait submits input to the view named by viewID, creating a fresh view when it is
// missing or expired, and waits for the result.
func submitAndWait[In any, Out any](c *gin.Context, svc services.IViewService[In, Out], viewID string, input In) (viewstate.View[In, Out], error) {
	ctx := c.Request.Context()
	if viewID != "" {
		if _, err := svc.Get(ctx, viewID); errors.Is(err, models.ErrNotFound) {
			viewID = ""
		}
	}
	if viewID == "" {
		view, err := svc.Create(ctx)
		if err != nil {
			return view, err
		}
		viewID = view.ID
	}

	submitting, task, err := svc.Submit(ctx, viewID, input)
	if err != nil {
		return submitting, err
	}
	return task.Await(ctx)
}

func (h *PageHandler) SoilHealth(c *gin.Context) {
	view, err := h.soilViews.Create(c.Request.Context())
	if err != nil {
		h.render(c, http.StatusInternalServerError, "soil_health.html", "Soil Health", "/soil-health", soilPage{}, err)
		return
	}
	h.render(c, http.StatusOK, "soil_health.html", "Soil Health", "/soil-health", soilPage{ViewID: view.ID}, nil)
}

func (h *PageHandler) SubmitSoilHealth(c *gin.Context) {
	var form models.SoilForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusBadRequest, "soil_health.html", "Soil Health", "/soil-health", soilPage{Form: form}, models.ErrInvalidInput)
		return
	}

	view, err := submitAndWait(c, h.soilViews, c.PostForm("viewId"), form)
	if err != nil {
		if c.Request.Context().Err() != nil {
			return
		}
		_, status := MapErrorToHTTPStatus(err)
		h.render(c, status, "soil_health.html", "Soil Health", "/soil-health", soilPage{ViewID: c.PostForm("viewId"), Form: form}, err)
		return
	}

	page := soilPage{ViewID: view.ID, Form: form, Report: view.Result}
	if view.Input != nil {
		page.Form = *view.Input
	}
	if view.Result != nil {
		for _, key := range models.TrackedNutrients {
			assessment := view.Result.Nutrients[key]
			page.Nutrients = append(page.Nutrients, nutrientRow{
				Label:              nutrientLabels[key],
				NutrientAssessment: assessment,
				Tone:               models.StatusTone(assessment.Status),
			})
		}
	}
	h.render(c, http.StatusOK, "soil_health.html", "Soil Health", "/soil-health", page, nil)
}

// UploadSoilReport extracts readings from an uploaded report and prefills the form with them.
// The farmer still submits the form to get the analysis.
func (h *PageHandler) UploadSoilReport(c *gin.Context) {
	page := soilPage{ViewID: c.PostForm("viewId")}

	fileName, data, err := readUpload(c, "file", maxUploadBytes)
	if err == nil {
		page.Upload, err = h.soilService.UploadReport(c.Request.Context(), fileName, data)
	}
	if err != nil {
		if c.Request.Context().Err() != nil {
			return
		}
		_, status := MapErrorToHTTPStatus(err)
		h.render(c, status, "soil_health.html", "Soil Health", "/soil-health", page, err)
		return
	}

	page.Form = page.Upload.Form
	h.render(c, http.StatusOK, "soil_health.html", "Soil Health", "/soil-health", page, nil)
}

func (h *PageHandler) CropSuggestion(c *gin.Context) {
	page := cropPage{SoilTypes: models.SoilTypeOptions}
	view, err := h.cropViews.Create(c.Request.Context())
	if err != nil {
		h.render(c, http.StatusInternalServerError, "crop_suggestion.html", "Crop Advisory", "/crop-suggestion", page, err)
		return
	}
	page.ViewID = view.ID
	h.render(c, http.StatusOK, "crop_suggestion.html", "Crop Advisory", "/crop-suggestion", page, nil)
}

func (h *PageHandler) SubmitCropSuggestion(c *gin.Context) {
	page := cropPage{ViewID: c.PostForm("viewId"), SoilTypes: models.SoilTypeOptions}
	if err := c.ShouldBind(&page.Form); err != nil {
		h.render(c, http.StatusBadRequest, "crop_suggestion.html", "Crop Advisory", "/crop-suggestion", page, models.ErrInvalidInput)
		return
	}

	view, err := submitAndWait(c, h.cropViews, page.ViewID, page.Form)
	if err != nil {
		if c.Request.Context().Err() != nil {
			return
		}
		_, status := MapErrorToHTTPStatus(err)
		h.render(c, status, "crop_suggestion.html", "Crop Advisory", "/crop-suggestion", page, err)
		return
	}

	page.ViewID = view.ID
	page.Result = view.Result
	if view.Input != nil {
		page.Form = *view.Input
	}
	h.render(c, http.StatusOK, "crop_suggestion.html", "Crop Advisory", "/crop-suggestion", page, nil)
}

func (h *PageHandler) chatPage(conversation *models.Conversation) chatPage {
	meta := h.chatService.Meta()
	return chatPage{
		Conversation:     conversation,
		Languages:        meta.Languages,
		QuickSuggestions: meta.QuickSuggestions,
	}
}

func (h *PageHandler) Chatbot(c *gin.Context) {
	conversation, err := h.chatService.StartConversation(c.Request.Context(), c.Query("language"))
	if err != nil {
		_, status := MapErrorToHTTPStatus(err)
		h.render(c, status, "chatbot.html", "AI Assistant", "/chatbot", h.chatPage(&models.Conversation{}), err)
		return
	}
	h.render(c, http.StatusOK, "chatbot.html", "AI Assistant", "/chatbot", h.chatPage(conversation), nil)
}

func (h *PageHandler) SendChatMessage(c *gin.Context) {
	ctx := c.Request.Context()
	var req models.ChatRequest
	if err := c.ShouldBind(&req); err != nil {
		h.render(c, http.StatusBadRequest, "chatbot.html", "AI Assistant", "/chatbot", h.chatPage(&models.Conversation{}), models.ErrInvalidInput)
		return
	}

	conversationID := req.ConversationID
	if _, err := h.chatService.GetConversation(ctx, conversationID); err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			_, status := MapErrorToHTTPStatus(err)
			h.render(c, status, "chatbot.html", "AI Assistant", "/chatbot", h.chatPage(&models.Conversation{}), err)
			return
		}
		conversation, startErr := h.chatService.StartConversation(ctx, req.Language)
		if startErr != nil {
			_, status := MapErrorToHTTPStatus(startErr)
			h.render(c, status, "chatbot.html", "AI Assistant", "/chatbot", h.chatPage(&models.Conversation{}), startErr)
			return
		}
		conversationID = conversation.ID
	}

	_, sendErr := h.chatService.SendMessage(ctx, conversationID, req.Text)
	if sendErr != nil && ctx.Err() != nil {
		return
	}

	conversation, err := h.chatService.GetConversation(ctx, conversationID)
	if err != nil {
		_, status := MapErrorToHTTPStatus(err)
		h.render(c, status, "chatbot.html", "AI Assistant", "/chatbot", h.chatPage(&models.Conversation{}), err)
		return
	}

	status := http.StatusOK
	if sendErr != nil {
		_, status = MapErrorToHTTPStatus(sendErr)
	}
	h.render(c, status, "chatbot.html", "AI Assistant", "/chatbot", h.chatPage(conversation), sendErr)
}
