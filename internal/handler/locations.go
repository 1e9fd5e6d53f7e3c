package handler

import (
	"net/http"
	"strconv"
	"strings"

	"ghid/internal/catalog"
	"ghid/internal/model"
	"ghid/internal/utils"

	"github.com/gin-gonic/gin"
)

// LocationHandler serves the read-only location catalog
type LocationHandler struct {
	catalog *catalog.Catalog
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(cat *catalog.Catalog) *LocationHandler {
	return &LocationHandler{
		catalog: cat,
	}
}

// List handles GET /api/v1/locations with optional city/category
// filters, both case- and diacritic-insensitive.
func (h *LocationHandler) List(c *gin.Context) {
	city := c.Query("city")
	category := utils.Normalize(c.Query("category"))

	results := h.catalog.ByCity(city)
	if category != "" {
		filtered := make([]model.Location, 0, len(results))
		for _, loc := range results {
			if strings.Contains(utils.Normalize(loc.Category), category) {
				filtered = append(filtered, loc)
			}
		}
		results = filtered
	}

	c.JSON(http.StatusOK, model.LocationsResponse{
		Results: results,
		Total:   len(results),
	})
}

// Get handles GET /api/v1/locations/:id
func (h *LocationHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid location ID"})
		return
	}

	loc := h.catalog.Get(id)
	if loc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Location not found"})
		return
	}

	c.JSON(http.StatusOK, loc)
}

// Cities handles GET /api/v1/cities
func (h *LocationHandler) Cities(c *gin.Context) {
	c.JSON(http.StatusOK, model.CitiesResponse{
		Cities: h.catalog.Cities(),
	})
}
