package handler

import (
	"net/http"

	"ghid/internal/catalog"
	"ghid/internal/model"
	"ghid/internal/repository"

	"github.com/gin-gonic/gin"
)

// FeedbackHandler records user actions on recommendation cards
type FeedbackHandler struct {
	repo    *repository.PostgresRepository // nil when the store is disabled
	catalog *catalog.Catalog
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(repo *repository.PostgresRepository, cat *catalog.Catalog) *FeedbackHandler {
	return &FeedbackHandler{
		repo:    repo,
		catalog: cat,
	}
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	validActions := map[string]bool{
		"click":        true,
		"view_details": true,
		"reserve":      true,
	}
	if !validActions[req.Action] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid action. Must be one of: click, view_details, reserve"})
		return
	}

	if h.catalog.Get(req.LocationID) == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Location not found"})
		return
	}

	if h.repo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Feedback store is not configured"})
		return
	}

	if err := h.repo.LogFeedback(c.Request.Context(), req.SessionID, req.LocationID, req.Action); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log feedback: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.FeedbackResponse{
		Success: true,
		Message: "Feedback logged successfully",
	})
}
