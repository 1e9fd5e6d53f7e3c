package handler

import (
	"net/http"
	"strconv"

	"ghid/internal/model"
	"ghid/internal/service"

	"github.com/gin-gonic/gin"
)

// EmbeddingHandler exposes the similar-locations feature
type EmbeddingHandler struct {
	embeddings *service.EmbeddingService
}

// NewEmbeddingHandler creates a new embedding handler
func NewEmbeddingHandler(embeddings *service.EmbeddingService) *EmbeddingHandler {
	return &EmbeddingHandler{
		embeddings: embeddings,
	}
}

// Rebuild handles POST /api/v1/embeddings/rebuild
func (h *EmbeddingHandler) Rebuild(c *gin.Context) {
	if !h.embeddings.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Embeddings require an API key and a configured database"})
		return
	}

	embedded, errs, err := h.embeddings.Rebuild(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Rebuild failed: " + err.Error()})
		return
	}

	resp := model.EmbeddingRebuildResponse{
		Embedded: embedded,
		Failed:   len(errs),
		Errors:   errs,
	}
	if len(errs) > 0 {
		c.JSON(http.StatusPartialContent, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Similar handles GET /api/v1/locations/:id/similar
func (h *EmbeddingHandler) Similar(c *gin.Context) {
	if !h.embeddings.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Embeddings require an API key and a configured database"})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid location ID"})
		return
	}

	limit := 3
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	results, err := h.embeddings.SimilarLocations(c.Request.Context(), id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Similar lookup failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, model.LocationsResponse{
		Results: results,
		Total:   len(results),
	})
}
