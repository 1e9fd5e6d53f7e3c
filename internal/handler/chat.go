package handler

import (
	"errors"
	"net/http"

	"ghid/internal/model"
	"ghid/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles conversation HTTP requests
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// Send handles POST /api/v1/chat
func (h *ChatHandler) Send(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	msg, convCtx, took, err := h.chatService.Send(c.Request.Context(), req.SessionID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Message text is empty"})
		case errors.Is(err, service.ErrSessionBusy):
			c.JSON(http.StatusConflict, gin.H{"error": "A previous message is still being processed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Chat failed: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, model.ChatResponse{
		Message: msg,
		Context: convCtx,
		Took:    took,
	})
}

// History handles GET /api/v1/chat/:id/history
func (h *ChatHandler) History(c *gin.Context) {
	sessionID := c.Param("id")

	messages, err := h.chatService.History(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, model.HistoryResponse{
		SessionID: sessionID,
		Messages:  messages,
	})
}

// Context handles GET /api/v1/chat/:id/context
func (h *ChatHandler) Context(c *gin.Context) {
	convCtx, err := h.chatService.Context(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, convCtx)
}

// Reset handles POST /api/v1/chat/:id/reset
func (h *ChatHandler) Reset(c *gin.Context) {
	if err := h.chatService.Reset(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
