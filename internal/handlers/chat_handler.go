package handlers

import (
	"errors"
	"io"
	"net/http"

	"advisory-service/internal/models"
	"advisory-service/internal/services"
	"advisory-service/internal/utils"

	"github.com/gin-gonic/gin"
)

const maxAudioBytes = 5 << 20

type ChatHandler struct {
	chatService services.IChatService
}

func NewChatHandler(chatService services.IChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) RegisterRoutes(router *gin.Engine) {
	chatGr := router.Group("/advisory/public/api/v1/chat")
	chatGr.GET("/meta", h.Meta)
	chatGr.POST("/conversations", h.StartConversation)
	chatGr.GET("/conversations/:id", h.GetConversation)
	chatGr.POST("/conversations/:id/messages", h.SendMessage)
	chatGr.POST("/voice", h.Transcribe)
}

func (h *ChatHandler) Meta(c *gin.Context) {
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(h.chatService.Meta()))
}

// StartConversation accepts an optional {"language": "..."} body.
func (h *ChatHandler) StartConversation(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondBindError(c, err)
		return
	}

	conversation, err := h.chatService.StartConversation(c.Request.Context(), req.Language)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.CreateSuccessResponse(conversation))
}

func (h *ChatHandler) GetConversation(c *gin.Context) {
	conversation, err := h.chatService.GetConversation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(conversation))
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	reply, err := h.chatService.SendMessage(c.Request.Context(), c.Param("id"), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(reply))
}

// Transcribe takes a multipart "audio" recording and an optional "language" field.
func (h *ChatHandler) Transcribe(c *gin.Context) {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		respondError(c, models.NewInvalidInput("audio", "audio recording is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioBytes))
	if err != nil {
		respondError(c, err)
		return
	}

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "audio/webm"
	}

	transcript, err := h.chatService.Transcribe(c.Request.Context(), c.PostForm("language"), mimeType, audio)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.CreateSuccessResponse(transcript))
}
